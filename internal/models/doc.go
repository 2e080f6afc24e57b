// Package models defines the entities plexorder persists between HTTP
// requests: uploaded playlist exports and reorder run summaries.
//
// Match results and move plans are deliberately NOT modeled here; they
// are transient, recomputed from a fresh server snapshot on every preview
// or reorder request.
package models
