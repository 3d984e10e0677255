// Package site serves the public promotional website.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method filtering.
//
// # Pages
//
// All pages are rendered server-side from html/template files embedded in the binary.
// Content comes from the backend's public endpoints on every request; the site holds no
// state of its own.
//
//	GET /              → Home: hero section, published episode grid, official links
//	GET /episodes/{id} → Episode detail with streaming links
//	GET /about         → About the show
//	GET /participate   → Participation call with contact links
//
// # Middleware
//
// [RequestLogger] logs method, path, status and duration per request.
// [RateLimit] applies a per-client token bucket to keep a public deployment polite.
package site
