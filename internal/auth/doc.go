// Package auth owns the client-side session lifecycle.
//
// [Service] wraps the three backend interactions (login, logout, verify) and
// their persistence side effects on the session store. [SessionController]
// sits above it as the single source of truth for "may protected views
// render", exposing a tri-state machine:
//
//	StateVerifying (initial) → StateAuthenticated | StateUnauthenticated
//
// [SessionController.Begin] runs the one-time verification handshake against
// the backend and is idempotent: duplicate or concurrent invocations apply at
// most one state transition, and an in-flight verification that is overtaken
// by an explicit login or logout discards its result instead of clobbering
// the newer state. After the initial resolution the state only changes
// through explicit [SessionController.Login] / [SessionController.Logout]
// calls; a token rejected later at the request level is handled by the
// gateway client, not by demoting the state from here.
package auth
