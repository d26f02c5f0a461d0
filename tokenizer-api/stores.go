package tokenizerapi

import (
	"context"

	"github.com/tokenizer-systems/tokenizer-go/tokenizer-api/queuedao"
	"github.com/tokenizer-systems/tokenizer-go/tokenizer-api/userdao"
)

// QueueStore is the slice of the queues table the core services depend on.
// *queuedao.DAO is the production implementation.
type QueueStore interface {
	Save(ctx context.Context, queue queuedao.Queue) error
	Get(ctx context.Context, queueID string) (*queuedao.Queue, error)
	Update(ctx context.Context, queueID string, queueName *string, maxSize *int, disabled *bool) error
	IncrementLastGeneratedToken(ctx context.Context, queueID string) (int, error)
	IncrementLastProcessedToken(ctx context.Context, queueID string) (int, error)
	Delete(ctx context.Context, queueID string) error
	Scan(ctx context.Context, paginationToken string) ([]queuedao.Queue, string, error)
}

// SubscriptionStore is the slice of the subscriptions table the core
// services depend on. *userdao.DAO is the production implementation.
type SubscriptionStore interface {
	Save(ctx context.Context, sub userdao.Subscription) error
	Create(ctx context.Context, sub userdao.Subscription) error
	Get(ctx context.Context, userID, queueID string) (*userdao.Subscription, error)
	Delete(ctx context.Context, userID, queueID string, owner bool) error
	QueryByQueue(ctx context.Context, queueID string) ([]userdao.Subscription, error)
	FindByPosition(ctx context.Context, queueID string, tokenNumber int) (*userdao.Subscription, error)
	QueryByUser(ctx context.Context, userID string, owner *bool) ([]userdao.Subscription, error)
}
