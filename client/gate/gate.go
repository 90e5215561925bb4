// Package gate decides which navigation stack and screens a session may see.
// It is pure policy over a session snapshot and holds no state of its own.
package gate

import (
	"github.com/leaselink/leaselink/client/session"
)

// Decision names the navigation stack to present.
type Decision int

const (
	// StackLoading is shown while the session state is not yet settled.
	StackLoading Decision = iota

	// StackAuth holds the unauthenticated screens (login, signup, reset).
	StackAuth

	// StackMain holds the signed-in app.
	StackMain
)

func (d Decision) String() string {
	switch d {
	case StackLoading:
		return "loading"
	case StackAuth:
		return "auth"
	case StackMain:
		return "main"
	default:
		return "invalid"
	}
}

// Screen identifies a screen inside the main stack.
type Screen string

const (
	ScreenDashboard    Screen = "dashboard"
	ScreenProperties   Screen = "properties"
	ScreenAddProperty  Screen = "add_property"
	ScreenEditProperty Screen = "edit_property"
	ScreenCollections  Screen = "collections"
	ScreenMyRental     Screen = "my_rental"
	ScreenPayRent      Screen = "pay_rent"
	ScreenMyPayments   Screen = "my_payments"
	ScreenProfile      Screen = "profile"

	// Tenant onboarding flow, walked once after the first sign-in.
	ScreenPropertySelection Screen = "property_selection"
	ScreenAgreement         Screen = "agreement"
	ScreenPaymentSetup      Screen = "payment_setup"
)

// screenRoles is the fixed registry of which roles may open each screen.
var screenRoles = map[Screen]map[string]bool{
	ScreenDashboard:    {"owner": true, "tenant": true},
	ScreenProperties:   {"owner": true},
	ScreenAddProperty:  {"owner": true},
	ScreenEditProperty: {"owner": true},
	ScreenCollections:  {"owner": true},
	ScreenMyRental:     {"tenant": true},
	ScreenPayRent:      {"tenant": true},
	ScreenMyPayments:   {"tenant": true},
	ScreenProfile:      {"owner": true, "tenant": true},

	ScreenPropertySelection: {"tenant": true},
	ScreenAgreement:         {"tenant": true},
	ScreenPaymentSetup:      {"tenant": true},
}

// Resolve maps a session snapshot to the navigation stack to present.
// Anything that is not a settled authenticated session falls through to the
// loading or auth stack; the main stack is never reachable without a token.
func Resolve(snap session.Snapshot) Decision {
	switch snap.State {
	case session.StateUnknown, session.StateLoading:
		return StackLoading
	case session.StateAuthenticated:
		if snap.Token == "" || snap.User == nil {
			return StackAuth
		}
		return StackMain
	default:
		return StackAuth
	}
}

// Allowed reports whether the session may open the given screen. Unknown
// screens and unsettled sessions are denied.
func Allowed(snap session.Snapshot, screen Screen) bool {
	if Resolve(snap) != StackMain {
		return false
	}
	roles, ok := screenRoles[screen]
	if !ok {
		return false
	}
	return roles[snap.User.Role]
}
