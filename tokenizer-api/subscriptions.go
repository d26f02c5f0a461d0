package tokenizerapi

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/tokenizer-systems/tokenizer-go/tokenizer-api/userdao"
	tokenizerddb "github.com/tokenizer-systems/tokenizer-go/tokenizer-ddb"
)

// SubscriptionManager creates and removes the links between users and
// queues, and answers listing and ownership queries over them.
type SubscriptionManager struct {
	subs   SubscriptionStore
	issuer *TokenIssuer
}

func NewSubscriptionManager(subs SubscriptionStore, issuer *TokenIssuer) *SubscriptionManager {
	return &SubscriptionManager{
		subs:   subs,
		issuer: issuer,
	}
}

// Subscribe issues the next token of the queue and records the user's
// subscription in WAITING state. A user holds at most one active ticket per
// queue; a duplicate subscribe fails with ErrAlreadySubscribed and the
// freshly issued token number stays orphaned rather than being reclaimed.
func (s *SubscriptionManager) Subscribe(ctx context.Context, userID, queueID string) (int, error) {
	token, err := s.issuer.IssueToken(ctx, queueID)
	if err != nil {
		return 0, err
	}

	sub := userdao.Subscription{
		UserID:      userID,
		QueueID:     queueID,
		UserName:    userID,
		Owner:       false,
		TokenNumber: token,
		State:       userdao.StateWaiting,
	}
	if err := s.subs.Create(ctx, sub); err != nil {
		if tokenizerddb.IsConditionalCheckFailed(err) {
			zerolog.Ctx(ctx).Warn().
				Str("user_id", userID).
				Str("queue_id", queueID).
				Int("orphaned_token", token).
				Msg("duplicate subscribe left an orphaned token")
			return 0, fmt.Errorf("user %v already subscribed to queue %v: %w", userID, queueID, ErrAlreadySubscribed)
		}
		return 0, err
	}

	zerolog.Ctx(ctx).Info().
		Str("user_id", userID).
		Str("queue_id", queueID).
		Int("token_number", token).
		Msg("created subscription")
	return token, nil
}

// CreateOwnerLink records queue ownership for its creator. The owner row
// holds token number zero: owners process the queue, they do not wait in it.
func (s *SubscriptionManager) CreateOwnerLink(ctx context.Context, userID, queueID string) error {
	return s.subs.Save(ctx, userdao.Subscription{
		UserID:   userID,
		QueueID:  queueID,
		UserName: userID,
		Owner:    true,
	})
}

// Unsubscribe deletes the link between a user and a queue. With protectOwner
// set (the normal un-subscribe path) the delete is conditioned on the row
// not being the owner row and fails with ErrCannotUnsubscribeOwner;
// protectOwner=false removes the owner's link specifically, as the final
// step of queue deletion.
func (s *SubscriptionManager) Unsubscribe(ctx context.Context, userID, queueID string, protectOwner bool) error {
	err := s.subs.Delete(ctx, userID, queueID, !protectOwner)
	if err == nil {
		zerolog.Ctx(ctx).Info().
			Str("user_id", userID).
			Str("queue_id", queueID).
			Msg("deleted subscription")
		return nil
	}
	if !tokenizerddb.IsConditionalCheckFailed(err) {
		return err
	}

	// The store reports "no such row" and "row owner mismatch" as the same
	// conditional failure; a follow-up read tells them apart.
	sub, getErr := s.subs.Get(ctx, userID, queueID)
	if getErr != nil {
		return fmt.Errorf("failed to classify rejected unsubscribe of %v from queue %v: %w", userID, queueID, getErr)
	}
	if sub == nil {
		return fmt.Errorf("user %v has no subscription to queue %v: %w", userID, queueID, ErrSubscriptionNotFound)
	}
	if protectOwner && sub.Owner {
		return fmt.Errorf("user %v owns queue %v: %w", userID, queueID, ErrCannotUnsubscribeOwner)
	}
	return fmt.Errorf("failed to unsubscribe %v from queue %v: %w", userID, queueID, ErrConditionFailed)
}

// ListSubscribers returns every subscription for the queue, owner included.
func (s *SubscriptionManager) ListSubscribers(ctx context.Context, queueID string) ([]userdao.Subscription, error) {
	return s.subs.QueryByQueue(ctx, queueID)
}

// ListUserQueues returns the queues a user is linked to, optionally
// restricted to links whose ownership matches owned.
func (s *SubscriptionManager) ListUserQueues(ctx context.Context, userID string, owned *bool) ([]userdao.Subscription, error) {
	return s.subs.QueryByUser(ctx, userID, owned)
}

// IsOwner reports whether the user holds the owner row for the queue.
func (s *SubscriptionManager) IsOwner(ctx context.Context, userID, queueID string) (bool, error) {
	sub, err := s.subs.Get(ctx, userID, queueID)
	if err != nil {
		return false, err
	}
	return sub != nil && sub.Owner, nil
}
