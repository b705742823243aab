// Package social defines the contract for resolving social-provider
// identities and a reference HTTP userinfo implementation.
package social

import (
	"context"
	"fmt"
)

// ErrorKind classifies resolver failures so callers can separate bad
// identities from provider outages.
type ErrorKind int

const (
	// ErrorKindClient means the provider rejected the identity.
	ErrorKindClient ErrorKind = iota
	// ErrorKindProvider means the provider answered with an error of its own.
	ErrorKindProvider
	// ErrorKindServer means the provider could not be reached or answered
	// with a server failure.
	ErrorKindServer
)

// ProviderError wraps a resolver failure with its classification.
type ProviderError struct {
	Provider string
	Kind     ErrorKind
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("social provider %s: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// UserInfo is the provider's view of a resolved identity.
type UserInfo struct {
	UserID        string
	Email         string
	EmailVerified bool
	Name          string
}

// Resolver resolves a provider-scoped user id to the provider's current view
// of that identity. Implementations classify failures via [ProviderError].
type Resolver interface {
	Resolve(ctx context.Context, provider, userID string) (*UserInfo, error)
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(ctx context.Context, provider, userID string) (*UserInfo, error)

func (f ResolverFunc) Resolve(ctx context.Context, provider, userID string) (*UserInfo, error) {
	return f(ctx, provider, userID)
}
