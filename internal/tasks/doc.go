// package tasks orchestrates reorder runs against a media server.
//
// The core abstraction is [ReorderEngine], which snapshots the server
// playlist, runs matching and planning from internal/playlist, and applies
// the planned moves one at a time. Operations emit progress updates via
// channels for non-blocking status reporting to CLI/UI layers.
//
// Preview never mutates the server; Execute takes the plan the caller has
// confirmed. That split is the confirmation gate: the UI layers (CLI flag,
// HTTP confirm field, TUI view) all sit between the two calls.
package tasks
