// Package playlist implements the import-and-reorder core: parsing Apple
// Music text/CSV exports into an ordered track list, matching imported
// tracks against a snapshot of the server playlist with tiered fallbacks,
// and planning the anchor-relative move operations that bring the server
// order in line with the import order.
//
// Everything in this package is a pure computation over immutable
// snapshots. Talking to the Plex server is the job of internal/services
// and internal/tasks.
package playlist
