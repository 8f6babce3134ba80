// Package identity adapts the external identity gateway: it turns a request
// credential into a stable caller id and display name.
package identity

import "context"

// Actor is the authenticated caller of a request
type Actor struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type contextKey struct{}

// WithActor returns a copy of ctx carrying actor
func WithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, contextKey{}, actor)
}

// FromContext returns the actor stored in ctx
func FromContext(ctx context.Context) (Actor, bool) {
	actor, ok := ctx.Value(contextKey{}).(Actor)
	return actor, ok && actor.ID != ""
}
