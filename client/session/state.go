package session

import "github.com/leaselink/leaselink/client/api"

// State is the authentication state of the session.
type State int

const (
	// StateUnknown is the initial state before stored credentials are checked.
	StateUnknown State = iota

	// StateLoading means an auth operation is in progress.
	StateLoading

	// StateAuthenticated means a signed-in user with a valid token is present.
	StateAuthenticated

	// StateUnauthenticated means no valid session exists.
	StateUnauthenticated
)

func (s State) String() string {
	switch s {
	case StateUnknown:
		return "unknown"
	case StateLoading:
		return "loading"
	case StateAuthenticated:
		return "authenticated"
	case StateUnauthenticated:
		return "unauthenticated"
	default:
		return "invalid"
	}
}

// Settled reports whether the state is a resting state rather than a
// transitional one.
func (s State) Settled() bool {
	return s == StateAuthenticated || s == StateUnauthenticated
}

// Snapshot is an immutable view of the session handed to observers. User is a
// copy; mutating it does not affect the session.
type Snapshot struct {
	State State
	Token string
	User  *api.User
	Err   error
}
