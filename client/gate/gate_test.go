package gate

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/leaselink/leaselink/client/api"
	"github.com/leaselink/leaselink/client/session"
)

func ownerSnapshot() session.Snapshot {
	return session.Snapshot{
		State: session.StateAuthenticated,
		Token: "jwt-token",
		User:  &api.User{ID: "u-1", Role: "owner"},
	}
}

func tenantSnapshot() session.Snapshot {
	return session.Snapshot{
		State: session.StateAuthenticated,
		Token: "jwt-token",
		User:  &api.User{ID: "u-2", Role: "tenant"},
	}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name string
		snap session.Snapshot
		want Decision
	}{
		{"unknown shows loading", session.Snapshot{State: session.StateUnknown}, StackLoading},
		{"loading shows loading", session.Snapshot{State: session.StateLoading}, StackLoading},
		{"unauthenticated shows auth", session.Snapshot{State: session.StateUnauthenticated}, StackAuth},
		{"unauthenticated with error shows auth", session.Snapshot{State: session.StateUnauthenticated, Err: errors.New("backend down")}, StackAuth},
		{"authenticated shows main", ownerSnapshot(), StackMain},
		{"authenticated without token falls back to auth", session.Snapshot{State: session.StateAuthenticated, User: &api.User{ID: "u-1"}}, StackAuth},
		{"authenticated without user falls back to auth", session.Snapshot{State: session.StateAuthenticated, Token: "jwt-token"}, StackAuth},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Resolve(tt.snap))
		})
	}
}

func TestAllowed_OwnerScreens(t *testing.T) {
	owner := ownerSnapshot()

	assert.True(t, Allowed(owner, ScreenDashboard))
	assert.True(t, Allowed(owner, ScreenProperties))
	assert.True(t, Allowed(owner, ScreenAddProperty))
	assert.True(t, Allowed(owner, ScreenCollections))
	assert.True(t, Allowed(owner, ScreenProfile))

	assert.False(t, Allowed(owner, ScreenMyRental))
	assert.False(t, Allowed(owner, ScreenPayRent))
	assert.False(t, Allowed(owner, ScreenMyPayments))
	assert.False(t, Allowed(owner, ScreenPropertySelection))
	assert.False(t, Allowed(owner, ScreenAgreement))
	assert.False(t, Allowed(owner, ScreenPaymentSetup))
}

func TestAllowed_TenantScreens(t *testing.T) {
	tenant := tenantSnapshot()

	assert.True(t, Allowed(tenant, ScreenDashboard))
	assert.True(t, Allowed(tenant, ScreenMyRental))
	assert.True(t, Allowed(tenant, ScreenPayRent))
	assert.True(t, Allowed(tenant, ScreenMyPayments))
	assert.True(t, Allowed(tenant, ScreenProfile))
	assert.True(t, Allowed(tenant, ScreenPropertySelection))
	assert.True(t, Allowed(tenant, ScreenAgreement))
	assert.True(t, Allowed(tenant, ScreenPaymentSetup))

	assert.False(t, Allowed(tenant, ScreenProperties))
	assert.False(t, Allowed(tenant, ScreenAddProperty))
	assert.False(t, Allowed(tenant, ScreenCollections))
}

func TestAllowed_DeniesOutsideMainStack(t *testing.T) {
	assert.False(t, Allowed(session.Snapshot{State: session.StateUnknown}, ScreenDashboard))
	assert.False(t, Allowed(session.Snapshot{State: session.StateLoading}, ScreenDashboard))
	assert.False(t, Allowed(session.Snapshot{State: session.StateUnauthenticated}, ScreenDashboard))
}

func TestAllowed_UnknownScreenDenied(t *testing.T) {
	assert.False(t, Allowed(ownerSnapshot(), Screen("admin_panel")))
}
