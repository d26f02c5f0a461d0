package tokenizerapi

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/tj/assert"
	"github.com/tokenizer-systems/tokenizer-go/tokenizer-api/userdao"
)

func TestSubscribe_AssignsIncreasingTokens(t *testing.T) {
	ctx := context.Background()
	store, handler := newFixture()
	queueID := setupQueue(t, store, handler, "alice", 5)

	token, err := handler.Subscriptions.Subscribe(ctx, "bob", queueID)
	assert.Nil(t, err)
	assert.Equal(t, 1, token)

	token, err = handler.Subscriptions.Subscribe(ctx, "carol", queueID)
	assert.Nil(t, err)
	assert.Equal(t, 2, token)

	sub, err := store.GetSub(ctx, "bob", queueID)
	assert.Nil(t, err)
	assert.NotNil(t, sub)
	assert.False(t, sub.Owner)
	assert.Equal(t, 1, sub.TokenNumber)
	assert.Equal(t, userdao.StateWaiting, sub.State)
	assert.Equal(t, "bob", sub.UserName)

	// the owner row carries the requester identity as well
	owner, err := store.GetSub(ctx, "alice", queueID)
	assert.Nil(t, err)
	assert.Equal(t, "alice", owner.UserName)
}

func TestSubscribe_Duplicate(t *testing.T) {
	ctx := context.Background()
	store, handler := newFixture()
	queueID := setupQueue(t, store, handler, "alice", 5)

	_, err := handler.Subscriptions.Subscribe(ctx, "bob", queueID)
	assert.Nil(t, err)

	_, err = handler.Subscriptions.Subscribe(ctx, "bob", queueID)
	assert.True(t, IsAlreadySubscribed(err))

	// the second token stays issued; the counter is not reclaimed
	queue, err := store.Get(ctx, queueID)
	assert.Nil(t, err)
	assert.Equal(t, 2, queue.LastGeneratedToken)

	// bob still holds his original position
	sub, err := store.GetSub(ctx, "bob", queueID)
	assert.Nil(t, err)
	assert.Equal(t, 1, sub.TokenNumber)
}

func TestUnsubscribe_ProtectsOwner(t *testing.T) {
	ctx := context.Background()
	store, handler := newFixture()
	queueID := setupQueue(t, store, handler, "alice", 5)

	err := handler.Subscriptions.Unsubscribe(ctx, "alice", queueID, true)
	assert.True(t, IsCannotUnsubscribeOwner(err))

	// the owner row is intact
	sub, err := store.GetSub(ctx, "alice", queueID)
	assert.Nil(t, err)
	assert.NotNil(t, sub)
	assert.True(t, sub.Owner)
}

func TestUnsubscribe_NotSubscribed(t *testing.T) {
	ctx := context.Background()
	store, handler := newFixture()
	queueID := setupQueue(t, store, handler, "alice", 5)

	err := handler.Subscriptions.Unsubscribe(ctx, "bob", queueID, true)
	assert.True(t, IsSubscriptionNotFound(err))
}

func TestUnsubscribe_RemovesOwnerLinkWhenUnprotected(t *testing.T) {
	ctx := context.Background()
	store, handler := newFixture()
	queueID := setupQueue(t, store, handler, "alice", 5)

	err := handler.Subscriptions.Unsubscribe(ctx, "alice", queueID, false)
	assert.Nil(t, err)

	sub, err := store.GetSub(ctx, "alice", queueID)
	assert.Nil(t, err)
	assert.Nil(t, sub)
}

func TestListSubscribers(t *testing.T) {
	ctx := context.Background()
	store, handler := newFixture()
	queueID := setupQueue(t, store, handler, "alice", 5)

	_, err := handler.Subscriptions.Subscribe(ctx, "bob", queueID)
	assert.Nil(t, err)
	_, err = handler.Subscriptions.Subscribe(ctx, "carol", queueID)
	assert.Nil(t, err)

	subs, err := handler.Subscriptions.ListSubscribers(ctx, queueID)
	assert.Nil(t, err)
	assert.Len(t, subs, 3) // owner row included
}

func TestListUserQueues_OwnedFilter(t *testing.T) {
	ctx := context.Background()
	store, handler := newFixture()
	owned := setupQueue(t, store, handler, "alice", 5)
	other := setupQueue(t, store, handler, "bob", 5)

	_, err := handler.Subscriptions.Subscribe(ctx, "alice", other)
	assert.Nil(t, err)

	all, err := handler.Subscriptions.ListUserQueues(ctx, "alice", nil)
	assert.Nil(t, err)
	assert.Len(t, all, 2)

	ownedOnly, err := handler.Subscriptions.ListUserQueues(ctx, "alice", aws.Bool(true))
	assert.Nil(t, err)
	assert.Len(t, ownedOnly, 1)
	assert.Equal(t, owned, ownedOnly[0].QueueID)

	subscribedOnly, err := handler.Subscriptions.ListUserQueues(ctx, "alice", aws.Bool(false))
	assert.Nil(t, err)
	assert.Len(t, subscribedOnly, 1)
	assert.Equal(t, other, subscribedOnly[0].QueueID)
}

func TestIsOwner(t *testing.T) {
	ctx := context.Background()
	store, handler := newFixture()
	queueID := setupQueue(t, store, handler, "alice", 5)

	_, err := handler.Subscriptions.Subscribe(ctx, "bob", queueID)
	assert.Nil(t, err)

	owner, err := handler.Authz.IsOwner(ctx, "alice", queueID)
	assert.Nil(t, err)
	assert.True(t, owner)

	owner, err = handler.Authz.IsOwner(ctx, "bob", queueID)
	assert.Nil(t, err)
	assert.False(t, owner)

	// absence of the row is not an error
	owner, err = handler.Authz.IsOwner(ctx, "nobody", queueID)
	assert.Nil(t, err)
	assert.False(t, owner)
}
