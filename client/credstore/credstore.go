// Package credstore persists the signed-in account's bearer token and profile
// between process runs. One record per store: saving overwrites, clearing
// removes it entirely.
package credstore

import (
	"context"
	"errors"

	"github.com/leaselink/leaselink/client/api"
)

// ErrNoCredentials is returned by Load when no usable record is stored.
// A corrupt or unreadable record is reported the same way as an absent one.
var ErrNoCredentials = errors.New("no stored credentials")

// Store persists a single {token, user} record.
type Store interface {
	// Save overwrites the stored record.
	Save(ctx context.Context, token string, user *api.User) error

	// Load returns the stored record, or ErrNoCredentials when absent.
	Load(ctx context.Context) (string, *api.User, error)

	// Clear removes the stored record. Clearing an empty store is a no-op.
	Clear(ctx context.Context) error
}

// record is the serialized form. Token and user travel together so a partial
// write can never leave a token without its account.
type record struct {
	Token string    `json:"token"`
	User  *api.User `json:"user"`
}
