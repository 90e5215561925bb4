package session

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/leaselink/leaselink/client/api"
	"github.com/leaselink/leaselink/client/credstore"
)

// --- Mock Backend ---

type mockBackend struct {
	mock.Mock
}

func (m *mockBackend) Login(ctx context.Context, email, password, role string) (*api.AuthSession, error) {
	args := m.Called(ctx, email, password, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*api.AuthSession), args.Error(1)
}

func (m *mockBackend) Signup(ctx context.Context, input api.SignupInput) (*api.AuthSession, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*api.AuthSession), args.Error(1)
}

func (m *mockBackend) ValidateToken(ctx context.Context, token string) (*api.User, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*api.User), args.Error(1)
}

// failingStore wraps a store and fails Clear.
type failingStore struct {
	credstore.Store
}

func (s *failingStore) Clear(ctx context.Context) error {
	return errors.New("disk on fire")
}

// gatedStore wraps a store and parks Save until saveGate is closed, so a
// test can interleave other store traffic with a save in progress.
type gatedStore struct {
	credstore.Store
	saveStarted chan struct{}
	saveGate    chan struct{}
}

func newGatedStore() *gatedStore {
	return &gatedStore{
		Store:       credstore.NewMemoryStore(),
		saveStarted: make(chan struct{}),
		saveGate:    make(chan struct{}),
	}
}

func (s *gatedStore) Save(ctx context.Context, token string, user *api.User) error {
	close(s.saveStarted)
	<-s.saveGate
	return s.Store.Save(ctx, token, user)
}

// --- Helpers ---

func sessionTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func testUser() *api.User {
	return &api.User{ID: "u-1", Name: "Priya Sharma", Email: "priya@example.com", Role: "owner"}
}

func testSession() *api.AuthSession {
	return &api.AuthSession{User: testUser(), Token: "jwt-token"}
}

func newTestManager(backend *mockBackend) (*Manager, *credstore.MemoryStore) {
	store := credstore.NewMemoryStore()
	return NewManager(backend, store, sessionTestLogger()), store
}

// --- Initial state ---

func TestManager_StartsUnknown(t *testing.T) {
	manager, _ := newTestManager(new(mockBackend))

	snap := manager.Snapshot()
	assert.Equal(t, StateUnknown, snap.State)
	assert.Empty(t, snap.Token)
	assert.Nil(t, snap.User)
}

// --- LoadStoredAuth ---

func TestLoadStoredAuth_NoCredentials(t *testing.T) {
	backend := new(mockBackend)
	manager, _ := newTestManager(backend)

	err := manager.LoadStoredAuth(context.Background())

	require.NoError(t, err)
	assert.Equal(t, StateUnauthenticated, manager.Snapshot().State)
	backend.AssertNotCalled(t, "ValidateToken", mock.Anything, mock.Anything)
}

func TestLoadStoredAuth_ValidToken(t *testing.T) {
	backend := new(mockBackend)
	manager, store := newTestManager(backend)
	require.NoError(t, store.Save(context.Background(), "stored-token", testUser()))

	backend.On("ValidateToken", mock.Anything, "stored-token").Return(testUser(), nil)

	err := manager.LoadStoredAuth(context.Background())

	require.NoError(t, err)
	snap := manager.Snapshot()
	assert.Equal(t, StateAuthenticated, snap.State)
	assert.Equal(t, "stored-token", snap.Token)
	require.NotNil(t, snap.User)
	assert.Equal(t, "u-1", snap.User.ID)
}

func TestLoadStoredAuth_RejectedTokenClearsStore(t *testing.T) {
	backend := new(mockBackend)
	manager, store := newTestManager(backend)
	require.NoError(t, store.Save(context.Background(), "dead-token", testUser()))

	backend.On("ValidateToken", mock.Anything, "dead-token").Return(nil, api.ErrInvalidToken)

	err := manager.LoadStoredAuth(context.Background())

	require.NoError(t, err)
	assert.Equal(t, StateUnauthenticated, manager.Snapshot().State)

	_, _, loadErr := store.Load(context.Background())
	assert.ErrorIs(t, loadErr, credstore.ErrNoCredentials)
}

func TestLoadStoredAuth_BackendUnreachableKeepsCredential(t *testing.T) {
	backend := new(mockBackend)
	manager, store := newTestManager(backend)
	require.NoError(t, store.Save(context.Background(), "stored-token", testUser()))

	backend.On("ValidateToken", mock.Anything, "stored-token").Return(nil, api.ErrUnavailable)

	err := manager.LoadStoredAuth(context.Background())

	assert.ErrorIs(t, err, api.ErrUnavailable)
	snap := manager.Snapshot()
	assert.Equal(t, StateUnauthenticated, snap.State)
	assert.ErrorIs(t, snap.Err, api.ErrUnavailable)

	// The credential survives a transient outage.
	token, _, loadErr := store.Load(context.Background())
	require.NoError(t, loadErr)
	assert.Equal(t, "stored-token", token)
}

func TestLoadStoredAuth_Idempotent(t *testing.T) {
	backend := new(mockBackend)
	manager, store := newTestManager(backend)
	require.NoError(t, store.Save(context.Background(), "stored-token", testUser()))

	backend.On("ValidateToken", mock.Anything, "stored-token").Return(testUser(), nil).Once()

	require.NoError(t, manager.LoadStoredAuth(context.Background()))
	require.NoError(t, manager.LoadStoredAuth(context.Background()))

	assert.Equal(t, StateAuthenticated, manager.Snapshot().State)
	backend.AssertExpectations(t)
}

// --- SignIn ---

func TestSignIn_Success(t *testing.T) {
	backend := new(mockBackend)
	manager, store := newTestManager(backend)

	backend.On("Login", mock.Anything, "priya@example.com", "SecurePass123", "owner").
		Return(testSession(), nil)

	err := manager.SignIn(context.Background(), "priya@example.com", "SecurePass123", "owner")

	require.NoError(t, err)
	snap := manager.Snapshot()
	assert.Equal(t, StateAuthenticated, snap.State)
	assert.Equal(t, "jwt-token", snap.Token)

	token, _, loadErr := store.Load(context.Background())
	require.NoError(t, loadErr)
	assert.Equal(t, "jwt-token", token)
}

func TestSignIn_BadCredentialsReturnsToSettledState(t *testing.T) {
	backend := new(mockBackend)
	manager, store := newTestManager(backend)
	require.NoError(t, manager.LoadStoredAuth(context.Background())) // settle unauthenticated

	backend.On("Login", mock.Anything, "priya@example.com", "WrongPass999", "").
		Return(nil, api.ErrInvalidCredentials)

	err := manager.SignIn(context.Background(), "priya@example.com", "WrongPass999", "")

	assert.ErrorIs(t, err, api.ErrInvalidCredentials)
	snap := manager.Snapshot()
	assert.Equal(t, StateUnauthenticated, snap.State)
	assert.ErrorIs(t, snap.Err, api.ErrInvalidCredentials)
	assert.Empty(t, snap.Token)

	_, _, loadErr := store.Load(context.Background())
	assert.ErrorIs(t, loadErr, credstore.ErrNoCredentials)
}

func TestSignIn_LocalValidationSkipsBackend(t *testing.T) {
	backend := new(mockBackend)
	manager, _ := newTestManager(backend)

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{"malformed email", "not an email", "SecurePass123"},
		{"missing domain dot", "priya@localhost", "SecurePass123"},
		{"short password", "priya@example.com", "short"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := manager.SignIn(context.Background(), tt.email, tt.password, "")
			assert.ErrorIs(t, err, api.ErrInvalidInput)
		})
	}

	backend.AssertNotCalled(t, "Login", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	assert.Equal(t, StateUnknown, manager.Snapshot().State)
}

func TestSignIn_SecondOperationRejected(t *testing.T) {
	backend := new(mockBackend)
	manager, _ := newTestManager(backend)

	release := make(chan time.Time)
	backend.On("Login", mock.Anything, "priya@example.com", "SecurePass123", "").
		WaitUntil(release).Return(testSession(), nil)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = manager.SignIn(context.Background(), "priya@example.com", "SecurePass123", "")
	}()

	// Wait for the first operation to claim the slot.
	require.Eventually(t, func() bool {
		return manager.Snapshot().State == StateLoading
	}, time.Second, time.Millisecond)

	err := manager.SignIn(context.Background(), "arjun@example.com", "OtherPass456", "")
	assert.ErrorIs(t, err, ErrOperationInFlight)

	close(release)
	wg.Wait()
	assert.Equal(t, StateAuthenticated, manager.Snapshot().State)
}

func TestSignOut_SupersedesSlowSignIn(t *testing.T) {
	backend := new(mockBackend)
	manager, store := newTestManager(backend)

	release := make(chan time.Time)
	backend.On("Login", mock.Anything, "priya@example.com", "SecurePass123", "").
		WaitUntil(release).Return(testSession(), nil)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = manager.SignIn(context.Background(), "priya@example.com", "SecurePass123", "")
	}()

	require.Eventually(t, func() bool {
		return manager.Snapshot().State == StateLoading
	}, time.Second, time.Millisecond)

	require.NoError(t, manager.SignOut(context.Background()))

	// The sign-in completes afterwards; its stale result must be dropped.
	close(release)
	wg.Wait()

	snap := manager.Snapshot()
	assert.Equal(t, StateUnauthenticated, snap.State)
	assert.Empty(t, snap.Token)
	assert.Nil(t, snap.User)

	// The dropped result must not have been persisted either.
	_, _, err := store.Load(context.Background())
	assert.ErrorIs(t, err, credstore.ErrNoCredentials)
}

func TestSignOut_ClearsStoreDespiteInFlightSave(t *testing.T) {
	backend := new(mockBackend)
	store := newGatedStore()
	manager := NewManager(backend, store, sessionTestLogger())

	backend.On("Login", mock.Anything, "priya@example.com", "SecurePass123", "").
		Return(testSession(), nil)

	var signIn sync.WaitGroup
	signIn.Add(1)
	go func() {
		defer signIn.Done()
		_ = manager.SignIn(context.Background(), "priya@example.com", "SecurePass123", "")
	}()

	// The sign-in has settled in memory but its save is still parked.
	<-store.saveStarted
	assert.Equal(t, StateAuthenticated, manager.Snapshot().State)

	var signOut sync.WaitGroup
	signOut.Add(1)
	go func() {
		defer signOut.Done()
		_ = manager.SignOut(context.Background())
	}()

	require.Eventually(t, func() bool {
		return manager.Snapshot().State == StateUnauthenticated
	}, time.Second, time.Millisecond)

	// Release the save; sign-out's clear must still win on disk.
	close(store.saveGate)
	signIn.Wait()
	signOut.Wait()

	_, _, err := store.Load(context.Background())
	assert.ErrorIs(t, err, credstore.ErrNoCredentials)
}

// --- SignUp ---

func TestSignUp_Success(t *testing.T) {
	backend := new(mockBackend)
	manager, _ := newTestManager(backend)

	input := api.SignupInput{
		Name: "Priya Sharma", Email: "priya@example.com",
		Password: "SecurePass123", Phone: "9876543210", Role: "owner",
	}
	backend.On("Signup", mock.Anything, input).Return(testSession(), nil)

	err := manager.SignUp(context.Background(), input)

	require.NoError(t, err)
	assert.Equal(t, StateAuthenticated, manager.Snapshot().State)
}

func TestSignUp_InvalidPhone(t *testing.T) {
	backend := new(mockBackend)
	manager, _ := newTestManager(backend)

	input := api.SignupInput{
		Name: "Priya Sharma", Email: "priya@example.com",
		Password: "SecurePass123", Phone: "12345", Role: "owner",
	}

	err := manager.SignUp(context.Background(), input)

	assert.ErrorIs(t, err, api.ErrInvalidInput)
	backend.AssertNotCalled(t, "Signup", mock.Anything, mock.Anything)
}

// --- SignOut ---

func TestSignOut_ClearsMemoryEvenWhenStoreFails(t *testing.T) {
	backend := new(mockBackend)
	store := &failingStore{Store: credstore.NewMemoryStore()}
	manager := NewManager(backend, store, sessionTestLogger())

	backend.On("Login", mock.Anything, "priya@example.com", "SecurePass123", "").
		Return(testSession(), nil)
	require.NoError(t, manager.SignIn(context.Background(), "priya@example.com", "SecurePass123", ""))

	err := manager.SignOut(context.Background())

	assert.Error(t, err)
	snap := manager.Snapshot()
	assert.Equal(t, StateUnauthenticated, snap.State)
	assert.Empty(t, snap.Token)
	assert.Nil(t, snap.User)
}

// --- Subscribe ---

func TestSubscribe_NotifiedOnSettledTransitions(t *testing.T) {
	backend := new(mockBackend)
	manager, _ := newTestManager(backend)

	var mu sync.Mutex
	var seen []State
	unsubscribe := manager.Subscribe(func(snap Snapshot) {
		mu.Lock()
		seen = append(seen, snap.State)
		mu.Unlock()
	})

	backend.On("Login", mock.Anything, "priya@example.com", "SecurePass123", "").
		Return(testSession(), nil)

	require.NoError(t, manager.LoadStoredAuth(context.Background()))
	require.NoError(t, manager.SignIn(context.Background(), "priya@example.com", "SecurePass123", ""))
	require.NoError(t, manager.SignOut(context.Background()))

	mu.Lock()
	assert.Equal(t, []State{StateUnauthenticated, StateAuthenticated, StateUnauthenticated}, seen)
	mu.Unlock()

	unsubscribe()
	backend.On("Login", mock.Anything, "arjun@example.com", "OtherPass456", "").
		Return(testSession(), nil)
	require.NoError(t, manager.SignIn(context.Background(), "arjun@example.com", "OtherPass456", ""))

	mu.Lock()
	assert.Len(t, seen, 3)
	mu.Unlock()
}

func TestSnapshot_UserIsACopy(t *testing.T) {
	backend := new(mockBackend)
	manager, _ := newTestManager(backend)

	backend.On("Login", mock.Anything, "priya@example.com", "SecurePass123", "").
		Return(testSession(), nil)
	require.NoError(t, manager.SignIn(context.Background(), "priya@example.com", "SecurePass123", ""))

	first := manager.Snapshot()
	first.User.Email = "mutated@example.com"

	second := manager.Snapshot()
	assert.Equal(t, "priya@example.com", second.User.Email)
}
