// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI provides a multi-view workflow for playlist reordering:
//  1. [PlaylistListView] : Browse and select a Plex playlist
//  2. [PreviewView] : Inspect match results before committing
//  3. [ConfirmView] : Confirm the reorder operation
//  4. [ReorderView] : Monitor real-time progress updates
//  5. [ResultView] : Display applied moves and unmatched tracks
//
// The [Model] implements bubbletea's standard Init/Update/View pattern.
// Progress updates flow through a channel from the ReorderEngine, providing
// non-blocking status reporting while moves are applied.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, y/n, q) with
// contextual help displayed via charmbracelet/bubbles/help.
package ui
