package auth

import (
	"context"

	"github.com/chainsafe/solana-bridge-middleware/pkg/bridge"
)

// Context keys for authentication data
type contextKey string

const (
	// ContextKeyCaller is the context key for the authenticated caller address
	ContextKeyCaller contextKey = "caller"
	// ContextKeySubject is the context key for the raw token subject
	ContextKeySubject contextKey = "subject"
)

// WithCaller adds the caller address to the context
func WithCaller(ctx context.Context, caller bridge.Address) context.Context {
	return context.WithValue(ctx, ContextKeyCaller, caller)
}

// CallerFromContext retrieves the caller address from the context
func CallerFromContext(ctx context.Context) (bridge.Address, bool) {
	addr, ok := ctx.Value(ContextKeyCaller).(bridge.Address)
	return addr, ok
}

// WithSubject adds the token subject to the context
func WithSubject(ctx context.Context, subject string) context.Context {
	return context.WithValue(ctx, ContextKeySubject, subject)
}

// SubjectFromContext retrieves the token subject from the context
func SubjectFromContext(ctx context.Context) (string, bool) {
	sub, ok := ctx.Value(ContextKeySubject).(string)
	return sub, ok
}
