package tokenizerapi

import "errors"

// Error kinds recognized by callers of the core services. Conditional write
// rejections from the store are translated into these at the component
// boundary rather than bubbling up as raw storage errors.
var (
	ErrQueueNotFound          = errors.New("queue not found")
	ErrQueueFull              = errors.New("queue is at capacity")
	ErrQueueExhausted         = errors.New("no unprocessed tokens remain")
	ErrNotOwner               = errors.New("requester does not own the queue")
	ErrAlreadySubscribed      = errors.New("user already holds a token for the queue")
	ErrCannotUnsubscribeOwner = errors.New("queue owner cannot unsubscribe from their own queue")
	ErrSubscriptionNotFound   = errors.New("subscription not found")

	// ErrConditionFailed reports a conditional write rejection no more
	// specific kind explains.
	ErrConditionFailed = errors.New("storage condition failed")
)

func IsQueueNotFound(err error) bool  { return errors.Is(err, ErrQueueNotFound) }
func IsQueueFull(err error) bool      { return errors.Is(err, ErrQueueFull) }
func IsQueueExhausted(err error) bool { return errors.Is(err, ErrQueueExhausted) }
func IsNotOwner(err error) bool       { return errors.Is(err, ErrNotOwner) }

func IsAlreadySubscribed(err error) bool      { return errors.Is(err, ErrAlreadySubscribed) }
func IsCannotUnsubscribeOwner(err error) bool { return errors.Is(err, ErrCannotUnsubscribeOwner) }
func IsSubscriptionNotFound(err error) bool   { return errors.Is(err, ErrSubscriptionNotFound) }
