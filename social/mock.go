package social

import (
	"context"
	"errors"
	"sync"
)

// MockResolver is an in-memory resolver for tests and local development.
type MockResolver struct {
	mu    sync.RWMutex
	users map[string]map[string]*UserInfo
}

func NewMockResolver() *MockResolver {
	return &MockResolver{users: make(map[string]map[string]*UserInfo)}
}

// Register makes the identity resolvable.
func (m *MockResolver) Register(provider string, info *UserInfo) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.users[provider] == nil {
		m.users[provider] = make(map[string]*UserInfo)
	}
	m.users[provider][info.UserID] = info
}

func (m *MockResolver) Resolve(_ context.Context, provider, userID string) (*UserInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	info, ok := m.users[provider][userID]
	if !ok {
		return nil, &ProviderError{
			Provider: provider,
			Kind:     ErrorKindClient,
			Err:      errors.New("unknown user"),
		}
	}
	cp := *info
	return &cp, nil
}
