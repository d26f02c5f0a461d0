package tokenizerapi

import "context"

// AuthorizationGate answers ownership questions from subscription records.
// Stateless and uncached: ownership only ever changes via queue deletion,
// which is terminal for the queue.
type AuthorizationGate struct {
	subs *SubscriptionManager
}

func NewAuthorizationGate(subs *SubscriptionManager) *AuthorizationGate {
	return &AuthorizationGate{subs: subs}
}

// IsOwner reports whether the user holds the owner row for the queue. An
// absent row is not an error, just not an owner.
func (g *AuthorizationGate) IsOwner(ctx context.Context, userID, queueID string) (bool, error) {
	return g.subs.IsOwner(ctx, userID, queueID)
}
