package credstore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/leaselink/leaselink/client/api"
)

// FileStore persists the credential record as a single JSON file. Writes go
// through a temp file and rename so readers never observe a partial record.
type FileStore struct {
	path string
}

// NewFileStore creates a file-backed store at the given path. The parent
// directory is created on first save.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Save(ctx context.Context, token string, user *api.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(record{Token: token, User: user})
	if err != nil {
		return fmt.Errorf("marshal credentials: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create credentials dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".credentials-*")
	if err != nil {
		return fmt.Errorf("create temp credentials file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write credentials: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("chmod credentials: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close credentials: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replace credentials: %w", err)
	}
	return nil
}

func (s *FileStore) Load(ctx context.Context) (string, *api.User, error) {
	if err := ctx.Err(); err != nil {
		return "", nil, err
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		// Missing and unreadable files both mean "not signed in".
		return "", nil, ErrNoCredentials
	}

	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return "", nil, ErrNoCredentials
	}
	if rec.Token == "" || rec.User == nil {
		return "", nil, ErrNoCredentials
	}
	return rec.Token, rec.User, nil
}

func (s *FileStore) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove credentials: %w", err)
	}
	return nil
}
