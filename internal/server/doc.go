// Package server provides HTTP routing, middleware, and the bridge's route handlers.
//
// # Router Infrastructure
//
// [Router] wraps [http.ServeMux] with a middleware stack. [Middleware] wraps
// handlers in reverse order (last added executes first), following the
// standard Go pattern. Handlers implement the [Handler] interface so route
// definitions live with the implementation.
//
// # Routes
//
//	GET /login        → 302 redirect to the Spotify authorize endpoint
//	GET /callback     → exchanges the authorization code and persists tokens
//	GET /now-playing  → the projection polled by the overlay widget
//	GET /health       → service and auth status
//	GET /             → embedded overlay widget assets
//
// # OAuth Callback Handler
//
// [OAuthHandler] implements the one-shot callback used by the CLI login flow:
// a temporary server receives the redirect, validates the state parameter,
// exchanges the code, and delivers the result through a channel. It processes
// only one callback to prevent replay.
package server
