// Package session owns the client-side authentication lifecycle: restoring a
// stored session at startup, signing in and out, and broadcasting state to
// observers such as the navigation gate.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/leaselink/leaselink/client/api"
	"github.com/leaselink/leaselink/client/credstore"
	"github.com/leaselink/leaselink/pkg/validate"
)

// ErrOperationInFlight is returned when an auth operation is started while
// another one is still pending. Operations are not queued.
var ErrOperationInFlight = errors.New("another auth operation is in progress")

// Backend is the slice of the API client the manager needs.
type Backend interface {
	Login(ctx context.Context, email, password, role string) (*api.AuthSession, error)
	Signup(ctx context.Context, input api.SignupInput) (*api.AuthSession, error)
	ValidateToken(ctx context.Context, token string) (*api.User, error)
}

// Manager is the session state container. All fields are private; observers
// read state through Snapshot and Subscribe. Construct one per app, inject it
// where needed.
type Manager struct {
	backend Backend
	store   credstore.Store
	logger  *slog.Logger

	mu          sync.Mutex
	state       State
	token       string
	user        *api.User
	err         error
	inFlight    bool
	generation  uint64
	restored    bool
	subscribers map[int]func(Snapshot)
	nextSubID   int

	// storeMu serializes credential store writes so a sign-out's Clear can
	// never be overwritten by the Save of an operation it superseded.
	storeMu sync.Mutex
}

// NewManager creates a session manager in StateUnknown.
func NewManager(backend Backend, store credstore.Store, logger *slog.Logger) *Manager {
	return &Manager{
		backend:     backend,
		store:       store,
		logger:      logger,
		state:       StateUnknown,
		subscribers: make(map[int]func(Snapshot)),
	}
}

// Snapshot returns the current session state.
func (m *Manager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

// Subscribe registers an observer that is called with a snapshot on every
// settled transition. The returned function unsubscribes.
func (m *Manager) Subscribe(fn func(Snapshot)) func() {
	m.mu.Lock()
	id := m.nextSubID
	m.nextSubID++
	m.subscribers[id] = fn
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.subscribers, id)
		m.mu.Unlock()
	}
}

// LoadStoredAuth restores the session from the credential store, validating
// the stored token against the backend. It is idempotent: once the session has
// settled, further calls are no-ops. Restore failures settle as
// unauthenticated; the stored credential is cleared only when the backend
// explicitly rejects the token.
func (m *Manager) LoadStoredAuth(ctx context.Context) error {
	m.mu.Lock()
	if m.restored {
		m.mu.Unlock()
		return nil
	}
	m.mu.Unlock()

	gen, _, err := m.begin()
	if err != nil {
		return err
	}

	token, _, err := m.store.Load(ctx)
	if err != nil {
		if !errors.Is(err, credstore.ErrNoCredentials) {
			m.logger.WarnContext(ctx, "credential load failed", slog.String("error", err.Error()))
		}
		m.settle(gen, Snapshot{State: StateUnauthenticated}, true)
		return nil
	}

	user, err := m.backend.ValidateToken(ctx, token)
	if err != nil {
		if errors.Is(err, api.ErrInvalidToken) {
			// The token is dead; drop it so the next startup skips the round trip.
			if clearErr := m.store.Clear(ctx); clearErr != nil {
				m.logger.WarnContext(ctx, "credential clear failed", slog.String("error", clearErr.Error()))
			}
			m.settle(gen, Snapshot{State: StateUnauthenticated}, true)
			return nil
		}
		// Backend unreachable: fail closed for this run, keep the credential.
		m.settle(gen, Snapshot{State: StateUnauthenticated, Err: err}, true)
		return err
	}

	m.settle(gen, Snapshot{State: StateAuthenticated, Token: token, User: user}, true)
	return nil
}

// SignIn authenticates with email and password and persists the session.
// On failure the session returns to its previous settled state with Err set.
func (m *Manager) SignIn(ctx context.Context, email, password, role string) error {
	if !validate.Email(email) {
		return fmt.Errorf("%w: malformed email address", api.ErrInvalidInput)
	}
	if !validate.Password(password) {
		return fmt.Errorf("%w: password must be at least %d characters", api.ErrInvalidInput, validate.MinPasswordLength)
	}

	gen, prev, err := m.begin()
	if err != nil {
		return err
	}

	session, err := m.backend.Login(ctx, email, password, role)
	if err != nil {
		prev.Err = err
		m.settle(gen, prev, false)
		return err
	}

	if m.settle(gen, Snapshot{State: StateAuthenticated, Token: session.Token, User: session.User}, true) {
		m.persist(ctx, gen, session)
	}
	return nil
}

// SignUp creates an account and signs in with it.
func (m *Manager) SignUp(ctx context.Context, input api.SignupInput) error {
	if !validate.Email(input.Email) {
		return fmt.Errorf("%w: malformed email address", api.ErrInvalidInput)
	}
	if !validate.Password(input.Password) {
		return fmt.Errorf("%w: password must be at least %d characters", api.ErrInvalidInput, validate.MinPasswordLength)
	}
	if !validate.Phone(input.Phone) {
		return fmt.Errorf("%w: phone must be 10 digits", api.ErrInvalidInput)
	}

	gen, prev, err := m.begin()
	if err != nil {
		return err
	}

	session, err := m.backend.Signup(ctx, input)
	if err != nil {
		prev.Err = err
		m.settle(gen, prev, false)
		return err
	}

	if m.settle(gen, Snapshot{State: StateAuthenticated, Token: session.Token, User: session.User}, true) {
		m.persist(ctx, gen, session)
	}
	return nil
}

// SignOut clears the in-memory session immediately and then clears the
// credential store. It does not wait for a pending operation: it supersedes
// it, so a slow sign-in that completes after sign-out cannot resurrect the
// session. A store failure is returned but the session stays signed out.
func (m *Manager) SignOut(ctx context.Context) error {
	m.mu.Lock()
	m.generation++
	m.state = StateUnauthenticated
	m.token = ""
	m.user = nil
	m.err = nil
	m.restored = true
	subs, snap := m.observersLocked()
	m.mu.Unlock()

	notify(subs, snap)

	// Taking storeMu waits out a Save already in progress, so the Clear
	// below is always the last write for the superseded session.
	m.storeMu.Lock()
	err := m.store.Clear(ctx)
	m.storeMu.Unlock()
	if err != nil {
		m.logger.WarnContext(ctx, "credential clear failed", slog.String("error", err.Error()))
		return err
	}
	return nil
}

// begin claims the single in-flight slot and moves the session to
// StateLoading. It returns the operation's generation and the previous
// settled snapshot for failure rollback.
func (m *Manager) begin() (uint64, Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.inFlight {
		return 0, Snapshot{}, ErrOperationInFlight
	}
	m.inFlight = true
	m.generation++

	prev := m.snapshotLocked()
	prev.Err = nil
	if !prev.State.Settled() {
		prev = Snapshot{State: StateUnauthenticated}
	}

	m.state = StateLoading
	m.err = nil
	return m.generation, prev, nil
}

// settle releases the in-flight slot and applies the result, unless a newer
// operation (sign-out) superseded this one, in which case the result is
// dropped. It reports whether the result was applied.
func (m *Manager) settle(gen uint64, result Snapshot, restored bool) bool {
	m.mu.Lock()
	m.inFlight = false
	if gen != m.generation {
		m.mu.Unlock()
		return false
	}

	m.state = result.State
	m.token = result.Token
	m.user = result.User
	m.err = result.Err
	if restored {
		m.restored = true
	}
	subs, snap := m.observersLocked()
	m.mu.Unlock()

	notify(subs, snap)
	return true
}

// persist writes the fresh session to the credential store. The generation
// is re-checked under storeMu: a sign-out that supersedes this operation
// either bumped the generation before the check, skipping the save, or is
// waiting on storeMu and clears the store right after it. Persistence is
// best effort otherwise: a signed-in session is kept in memory even if the
// disk write fails.
func (m *Manager) persist(ctx context.Context, gen uint64, session *api.AuthSession) {
	m.storeMu.Lock()
	defer m.storeMu.Unlock()

	m.mu.Lock()
	superseded := gen != m.generation
	m.mu.Unlock()
	if superseded {
		return
	}

	if err := m.store.Save(ctx, session.Token, session.User); err != nil {
		m.logger.WarnContext(ctx, "credential save failed", slog.String("error", err.Error()))
	}
}

func (m *Manager) snapshotLocked() Snapshot {
	snap := Snapshot{State: m.state, Token: m.token, Err: m.err}
	if m.user != nil {
		copied := *m.user
		snap.User = &copied
	}
	return snap
}

func (m *Manager) observersLocked() ([]func(Snapshot), Snapshot) {
	subs := make([]func(Snapshot), 0, len(m.subscribers))
	for _, fn := range m.subscribers {
		subs = append(subs, fn)
	}
	return subs, m.snapshotLocked()
}

func notify(subs []func(Snapshot), snap Snapshot) {
	for _, fn := range subs {
		fn(snap)
	}
}
