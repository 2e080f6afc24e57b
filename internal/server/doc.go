// Package server provides HTTP routing, middleware, and the JSON API for
// the web workflow: upload an export, preview the match report, confirm,
// reorder.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
// [Middleware] wraps handlers in reverse order (last added executes
// first), following the standard Go pattern. The [BasicRouter]
// implementation uses [http.ServeMux] internally with method filtering.
//
// # Plex PIN sessions
//
// [PinSessions] holds in-flight plex.tv PIN logins keyed by session id.
// Sessions expire after ten minutes and are removed as soon as a token is
// claimed; the token itself is never stored server-side. It travels back
// to the browser, which presents it on later requests via the
// X-Plex-Token header.
//
// # Confirmation gate
//
// POST /api/reorder refuses to act unless the request body carries
// "confirm": true. The preview endpoint exposes the full match report
// (tiers and unmatched entries included) so the user can inspect what a
// reorder would do before confirming.
package server
