package tokenizerapi

import (
	"context"
	"sort"
	"sync"

	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/tokenizer-systems/tokenizer-go/tokenizer-api/queuedao"
	"github.com/tokenizer-systems/tokenizer-go/tokenizer-api/userdao"
	tokenizercli "github.com/tokenizer-systems/tokenizer-go/tokenizer-cli"
)

var testService = tokenizercli.Service{Name: "tokenizer-api", Version: "test"}

func conditionFailed() error {
	return awserr.New(dynamodb.ErrCodeConditionalCheckFailedException, "The conditional request failed", nil)
}

// fakeStore is an in-memory stand-in for both tables. Conditional mutations
// are evaluated under one lock, mirroring the atomicity the real store
// provides per item, and rejections surface as the same conditional-check
// error the SDK returns.
type fakeStore struct {
	mu       sync.Mutex
	queues   map[string]queuedao.Queue
	subs     map[string]map[string]userdao.Subscription
	pageSize int

	getQueueErr error // injected failure for Get
	saveSubErr  error // injected failure for subscription Save
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		queues:   map[string]queuedao.Queue{},
		subs:     map[string]map[string]userdao.Subscription{},
		pageSize: 100,
	}
}

func (f *fakeStore) Save(ctx context.Context, queue queuedao.Queue) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queues[queue.QueueID] = queue
	return nil
}

func (f *fakeStore) Get(ctx context.Context, queueID string) (*queuedao.Queue, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getQueueErr != nil {
		return nil, f.getQueueErr
	}
	queue, ok := f.queues[queueID]
	if !ok {
		return nil, nil
	}
	return &queue, nil
}

func (f *fakeStore) Update(ctx context.Context, queueID string, queueName *string, maxSize *int, disabled *bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	queue, ok := f.queues[queueID]
	if !ok {
		return conditionFailed()
	}
	if queueName != nil {
		queue.QueueName = *queueName
	}
	if maxSize != nil {
		queue.MaxSize = *maxSize
	}
	if disabled != nil {
		queue.Disabled = *disabled
	}
	f.queues[queueID] = queue
	return nil
}

func (f *fakeStore) IncrementLastGeneratedToken(ctx context.Context, queueID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	queue, ok := f.queues[queueID]
	if !ok || queue.LastGeneratedToken >= queue.MaxSize {
		return 0, conditionFailed()
	}
	queue.LastGeneratedToken++
	f.queues[queueID] = queue
	return queue.LastGeneratedToken, nil
}

func (f *fakeStore) IncrementLastProcessedToken(ctx context.Context, queueID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	queue, ok := f.queues[queueID]
	if !ok || queue.LastProcessedToken >= queue.LastGeneratedToken {
		return 0, conditionFailed()
	}
	queue.LastProcessedToken++
	f.queues[queueID] = queue
	return queue.LastProcessedToken, nil
}

func (f *fakeStore) Delete(ctx context.Context, queueID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.queues, queueID)
	return nil
}

func (f *fakeStore) Scan(ctx context.Context, paginationToken string) ([]queuedao.Queue, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var ids []string
	for id := range f.queues {
		if paginationToken == "" || id > paginationToken {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	var page []queuedao.Queue
	var next string
	for i, id := range ids {
		if i == f.pageSize {
			next = page[len(page)-1].QueueID
			break
		}
		page = append(page, f.queues[id])
	}
	return page, next, nil
}

func (f *fakeStore) SaveSub(ctx context.Context, sub userdao.Subscription) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveSubErr != nil {
		return f.saveSubErr
	}
	f.putSubLocked(sub)
	return nil
}

func (f *fakeStore) Create(ctx context.Context, sub userdao.Subscription) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.subs[sub.UserID][sub.QueueID]; ok {
		return conditionFailed()
	}
	f.putSubLocked(sub)
	return nil
}

func (f *fakeStore) GetSub(ctx context.Context, userID, queueID string) (*userdao.Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	sub, ok := f.subs[userID][queueID]
	if !ok {
		return nil, nil
	}
	return &sub, nil
}

func (f *fakeStore) DeleteSub(ctx context.Context, userID, queueID string, owner bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	sub, ok := f.subs[userID][queueID]
	if !ok || sub.Owner != owner {
		return conditionFailed()
	}
	delete(f.subs[userID], queueID)
	return nil
}

func (f *fakeStore) QueryByQueue(ctx context.Context, queueID string) ([]userdao.Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []userdao.Subscription
	for _, byQueue := range f.subs {
		if sub, ok := byQueue[queueID]; ok {
			out = append(out, sub)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

func (f *fakeStore) FindByPosition(ctx context.Context, queueID string, tokenNumber int) (*userdao.Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, byQueue := range f.subs {
		if sub, ok := byQueue[queueID]; ok && !sub.Owner && sub.TokenNumber == tokenNumber {
			return &sub, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) QueryByUser(ctx context.Context, userID string, owner *bool) ([]userdao.Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []userdao.Subscription
	for _, sub := range f.subs[userID] {
		if owner == nil || sub.Owner == *owner {
			out = append(out, sub)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].QueueID < out[j].QueueID })
	return out, nil
}

func (f *fakeStore) putSubLocked(sub userdao.Subscription) {
	byQueue, ok := f.subs[sub.UserID]
	if !ok {
		byQueue = map[string]userdao.Subscription{}
		f.subs[sub.UserID] = byQueue
	}
	byQueue[sub.QueueID] = sub
}

// subStore adapts fakeStore to the SubscriptionStore interface; the
// queue-side method set already matches QueueStore.
type subStore struct {
	*fakeStore
}

func (s subStore) Save(ctx context.Context, sub userdao.Subscription) error {
	return s.SaveSub(ctx, sub)
}

func (s subStore) Get(ctx context.Context, userID, queueID string) (*userdao.Subscription, error) {
	return s.GetSub(ctx, userID, queueID)
}

func (s subStore) Delete(ctx context.Context, userID, queueID string, owner bool) error {
	return s.DeleteSub(ctx, userID, queueID, owner)
}

// newFixture wires the full service graph onto a single fake store.
func newFixture() (*fakeStore, *Handler) {
	store := newFakeStore()
	handler := NewHandler(testService, store, subStore{store}, nil)
	return store, handler
}
