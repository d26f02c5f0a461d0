package tokenizerapi

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/tokenizer-systems/tokenizer-go/tokenizer-api/queuedao"
	tokenizerddb "github.com/tokenizer-systems/tokenizer-go/tokenizer-ddb"
	"golang.org/x/sync/errgroup"
)

// unsubscribeLimit caps the fan-out of cascade deletes.
const unsubscribeLimit = 8

// QueueLifecycle creates, describes, updates, and deletes queue records,
// cascading subscriber cleanup on delete.
type QueueLifecycle struct {
	queues QueueStore
	subs   *SubscriptionManager
	authz  *AuthorizationGate
}

func NewQueueLifecycle(queues QueueStore, subs *SubscriptionManager, authz *AuthorizationGate) *QueueLifecycle {
	return &QueueLifecycle{
		queues: queues,
		subs:   subs,
		authz:  authz,
	}
}

// Create writes a fresh queue with zeroed counters and the owner's
// subscription row. The two writes are one logical operation but not one
// transaction: if the owner row fails after the queue row succeeded, the
// queue is left orphaned and the failure is reported rather than retried.
func (s *QueueLifecycle) Create(ctx context.Context, ownerID, queueName string, maxSize int, disabled bool) (string, error) {
	if maxSize <= 0 {
		maxSize = queuedao.DefaultMaxSize
	}
	queueID := uuid.NewString()

	queue := queuedao.Queue{
		QueueID:            queueID,
		QueueName:          queueName,
		LastGeneratedToken: 0,
		LastProcessedToken: 0,
		MaxSize:            maxSize,
		Disabled:           disabled,
	}
	if err := s.queues.Save(ctx, queue); err != nil {
		return "", fmt.Errorf("failed to create queue for user %v: %w", ownerID, err)
	}

	if err := s.subs.CreateOwnerLink(ctx, ownerID, queueID); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).
			Str("queue_id", queueID).
			Str("user_id", ownerID).
			Msg("queue created but owner link failed; queue is orphaned")
		return "", fmt.Errorf("failed to record ownership of queue %v for user %v: %w", queueID, ownerID, err)
	}

	zerolog.Ctx(ctx).Info().
		Str("queue_id", queueID).
		Str("user_id", ownerID).
		Int("max_size", maxSize).
		Msg("created queue")
	return queueID, nil
}

// Describe returns the queue record, or ErrQueueNotFound.
func (s *QueueLifecycle) Describe(ctx context.Context, queueID string) (*queuedao.Queue, error) {
	queue, err := s.queues.Get(ctx, queueID)
	if err != nil {
		return nil, err
	}
	if queue == nil {
		return nil, fmt.Errorf("cannot describe queue %v: %w", queueID, ErrQueueNotFound)
	}
	return queue, nil
}

// Update applies a partial update: nil fields are left untouched in
// storage. Fails with ErrQueueNotFound when the queue row does not exist.
func (s *QueueLifecycle) Update(ctx context.Context, queueID string, queueName *string, maxSize *int, disabled *bool) error {
	if err := s.queues.Update(ctx, queueID, queueName, maxSize, disabled); err != nil {
		if tokenizerddb.IsConditionalCheckFailed(err) {
			return fmt.Errorf("cannot update queue %v: %w", queueID, ErrQueueNotFound)
		}
		return err
	}
	return nil
}

// Delete removes a queue on behalf of its owner: unsubscribe every non-owner
// subscriber, delete the queue row, then delete the owner's link. The steps
// are not one transaction; a failure partway leaves a partially-cleaned
// state and is reported as a single failure for the whole operation.
func (s *QueueLifecycle) Delete(ctx context.Context, requesterID, queueID string) error {
	owner, err := s.authz.IsOwner(ctx, requesterID, queueID)
	if err != nil {
		return err
	}
	if !owner {
		return fmt.Errorf("user %v cannot delete queue %v: %w", requesterID, queueID, ErrNotOwner)
	}

	subscribers, err := s.subs.ListSubscribers(ctx, queueID)
	if err != nil {
		return fmt.Errorf("failed to list subscribers while deleting queue %v: %w", queueID, err)
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(unsubscribeLimit)
	for _, sub := range subscribers {
		if sub.Owner {
			continue
		}
		sub := sub
		group.Go(func() error {
			zerolog.Ctx(ctx).Info().
				Str("user_id", sub.UserID).
				Str("queue_id", queueID).
				Msg("unsubscribing user from deleted queue")
			return s.subs.Unsubscribe(groupCtx, sub.UserID, queueID, true)
		})
	}
	if err := group.Wait(); err != nil {
		return fmt.Errorf("failed to unsubscribe subscribers of queue %v: %w", queueID, err)
	}

	if err := s.queues.Delete(ctx, queueID); err != nil {
		return fmt.Errorf("failed to delete queue %v: %w", queueID, err)
	}

	if err := s.subs.Unsubscribe(ctx, requesterID, queueID, false); err != nil {
		return fmt.Errorf("failed to remove ownership link for queue %v: %w", queueID, err)
	}

	zerolog.Ctx(ctx).Info().
		Str("queue_id", queueID).
		Str("user_id", requesterID).
		Int("subscribers", len(subscribers)).
		Msg("deleted queue")
	return nil
}

// ListQueues returns one page of queues plus the pagination token for the
// next page, empty when the listing is complete.
func (s *QueueLifecycle) ListQueues(ctx context.Context, paginationToken string) ([]queuedao.Queue, string, error) {
	return s.queues.Scan(ctx, paginationToken)
}
