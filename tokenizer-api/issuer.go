package tokenizerapi

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	tokenizerddb "github.com/tokenizer-systems/tokenizer-go/tokenizer-ddb"
)

// TokenIssuer hands out ticket numbers by advancing a queue's
// generated-token counter. The increment and its capacity check happen as a
// single conditional update in the store, so concurrent callers never lose
// or duplicate a token.
type TokenIssuer struct {
	queues QueueStore
}

func NewTokenIssuer(queues QueueStore) *TokenIssuer {
	return &TokenIssuer{queues: queues}
}

// IssueToken returns the next ticket number for the queue. Fails with
// ErrQueueFull when the queue is at capacity and ErrQueueNotFound when no
// such queue exists; in both cases the counter is unchanged.
func (s *TokenIssuer) IssueToken(ctx context.Context, queueID string) (int, error) {
	token, err := s.queues.IncrementLastGeneratedToken(ctx, queueID)
	if err != nil {
		if tokenizerddb.IsConditionalCheckFailed(err) {
			return 0, s.classifyRejection(ctx, queueID)
		}
		return 0, err
	}

	zerolog.Ctx(ctx).Info().
		Str("queue_id", queueID).
		Int("token_number", token).
		Msg("issued token")
	return token, nil
}

// A capacity condition can also fail because the queue row is missing; one
// follow-up read tells the two apart.
func (s *TokenIssuer) classifyRejection(ctx context.Context, queueID string) error {
	queue, err := s.queues.Get(ctx, queueID)
	if err != nil {
		return fmt.Errorf("failed to classify rejected issue for queue %v: %w", queueID, err)
	}
	if queue == nil {
		return fmt.Errorf("cannot issue token for queue %v: %w", queueID, ErrQueueNotFound)
	}
	return fmt.Errorf("cannot issue token for queue %v (size %v): %w", queueID, queue.MaxSize, ErrQueueFull)
}
