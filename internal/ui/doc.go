// Package ui implements the interactive admin console built with bubbletea.
//
// # Views
//
// The console is a state machine over [ViewState]:
//
//	GateView          → shown while the stored session is being verified
//	LoginView         → credential form, shown only once the check resolves unauthenticated
//	EpisodeListView   → episode management (create, edit, publish, delete)
//	EpisodeFormView   → episode editor with field-level validation
//	LinkListView      → official link management with reordering
//	LinkFormView      → link editor
//	ConfirmDeleteView → destructive actions require an explicit yes
//
// The gate view holds until the session check resolves; a slow backend never
// bounces an authenticated operator through the login form.
//
// # Requests
//
// All backend calls run as [tea.Cmd] functions off the update loop. List
// fetches carry a request ID so a response that arrives after a newer fetch
// is dropped instead of clobbering fresh state. Form submissions validate
// locally first and never dispatch an invalid payload.
package ui
