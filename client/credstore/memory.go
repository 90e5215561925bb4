package credstore

import (
	"context"
	"sync"

	"github.com/leaselink/leaselink/client/api"
)

// MemoryStore keeps the credential record in memory. It is used in tests and
// in processes that should not persist credentials across restarts.
type MemoryStore struct {
	mu    sync.Mutex
	token string
	user  *api.User
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Save(ctx context.Context, token string, user *api.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	copied := *user
	s.mu.Lock()
	s.token = token
	s.user = &copied
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Load(ctx context.Context) (string, *api.User, error) {
	if err := ctx.Err(); err != nil {
		return "", nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.token == "" || s.user == nil {
		return "", nil, ErrNoCredentials
	}
	copied := *s.user
	return s.token, &copied, nil
}

func (s *MemoryStore) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	s.token = ""
	s.user = nil
	s.mu.Unlock()
	return nil
}
