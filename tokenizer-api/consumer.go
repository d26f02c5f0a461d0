package tokenizerapi

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/tokenizer-systems/tokenizer-go/tokenizer-api/userdao"
	tokenizerddb "github.com/tokenizer-systems/tokenizer-go/tokenizer-ddb"
)

// TokenConsumer advances a queue's processed-token cursor and transitions
// the subscriber at that position to DONE.
type TokenConsumer struct {
	queues QueueStore
	subs   SubscriptionStore
	authz  *AuthorizationGate
}

func NewTokenConsumer(queues QueueStore, subs SubscriptionStore, authz *AuthorizationGate) *TokenConsumer {
	return &TokenConsumer{
		queues: queues,
		subs:   subs,
		authz:  authz,
	}
}

// ProcessNext consumes the next outstanding token of the queue on behalf of
// its owner and returns the new processed-token value. Fails with
// ErrNotOwner before any mutation when the requester does not own the
// queue, and with ErrQueueExhausted when every issued token has already
// been processed. Marking the subscriber at the new position DONE is
// best-effort: a position left vacant by an unsubscribe is logged and the
// cursor is not rolled back.
func (s *TokenConsumer) ProcessNext(ctx context.Context, requesterID, queueID string) (int, error) {
	owner, err := s.authz.IsOwner(ctx, requesterID, queueID)
	if err != nil {
		return 0, err
	}
	if !owner {
		return 0, fmt.Errorf("user %v cannot process queue %v: %w", requesterID, queueID, ErrNotOwner)
	}

	token, err := s.queues.IncrementLastProcessedToken(ctx, queueID)
	if err != nil {
		if tokenizerddb.IsConditionalCheckFailed(err) {
			return 0, s.classifyRejection(ctx, queueID)
		}
		return 0, err
	}

	s.markProcessed(ctx, queueID, token)
	return token, nil
}

func (s *TokenConsumer) classifyRejection(ctx context.Context, queueID string) error {
	queue, err := s.queues.Get(ctx, queueID)
	if err != nil {
		return fmt.Errorf("failed to classify rejected process for queue %v: %w", queueID, err)
	}
	if queue == nil {
		return fmt.Errorf("cannot process queue %v: %w", queueID, ErrQueueNotFound)
	}
	return fmt.Errorf("cannot process queue %v: %w", queueID, ErrQueueExhausted)
}

func (s *TokenConsumer) markProcessed(ctx context.Context, queueID string, tokenNumber int) {
	logger := zerolog.Ctx(ctx).With().
		Str("queue_id", queueID).
		Int("token_number", tokenNumber).
		Logger()

	sub, err := s.subs.FindByPosition(ctx, queueID, tokenNumber)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to look up subscriber at processed position")
		return
	}
	if sub == nil {
		logger.Warn().Msg("no subscriber at processed position")
		return
	}

	sub.State = userdao.StateDone
	if err := s.subs.Save(ctx, *sub); err != nil {
		logger.Warn().Err(err).Str("user_id", sub.UserID).Msg("failed to mark subscriber as processed")
		return
	}
	logger.Info().Str("user_id", sub.UserID).Msg("processed token")
}
