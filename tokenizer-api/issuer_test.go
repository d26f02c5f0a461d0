package tokenizerapi

import (
	"context"
	"sort"
	"sync"
	"testing"

	"github.com/tj/assert"
	"github.com/tokenizer-systems/tokenizer-go/tokenizer-api/queuedao"
	"golang.org/x/sync/errgroup"
)

func TestTokenIssuer_Sequential(t *testing.T) {
	ctx := context.Background()
	store, handler := newFixture()

	err := store.Save(ctx, queuedao.Queue{QueueID: "q1", MaxSize: 3})
	assert.Nil(t, err)

	for want := 1; want <= 3; want++ {
		token, err := handler.Issuer.IssueToken(ctx, "q1")
		assert.Nil(t, err)
		assert.Equal(t, want, token)
	}

	_, err = handler.Issuer.IssueToken(ctx, "q1")
	assert.True(t, IsQueueFull(err))

	queue, err := store.Get(ctx, "q1")
	assert.Nil(t, err)
	assert.Equal(t, 3, queue.LastGeneratedToken)
}

func TestTokenIssuer_QueueNotFound(t *testing.T) {
	ctx := context.Background()
	_, handler := newFixture()

	_, err := handler.Issuer.IssueToken(ctx, "missing")
	assert.True(t, IsQueueNotFound(err))
}

func TestTokenIssuer_Concurrent(t *testing.T) {
	const maxSize = 25
	const callers = 100

	ctx := context.Background()
	store, handler := newFixture()

	err := store.Save(ctx, queuedao.Queue{QueueID: "q1", MaxSize: maxSize})
	assert.Nil(t, err)

	var mu sync.Mutex
	var issued []int
	var rejected int

	group, groupCtx := errgroup.WithContext(ctx)
	for i := 0; i < callers; i++ {
		group.Go(func() error {
			token, err := handler.Issuer.IssueToken(groupCtx, "q1")
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				assert.True(t, IsQueueFull(err))
				rejected++
				return nil
			}
			issued = append(issued, token)
			return nil
		})
	}
	assert.Nil(t, group.Wait())

	// exactly maxSize tokens, a permutation of 1..maxSize, no lost or
	// duplicated increments
	assert.Len(t, issued, maxSize)
	assert.Equal(t, callers-maxSize, rejected)
	sort.Ints(issued)
	for i, token := range issued {
		assert.Equal(t, i+1, token)
	}

	queue, err := store.Get(ctx, "q1")
	assert.Nil(t, err)
	assert.Equal(t, maxSize, queue.LastGeneratedToken)
}
