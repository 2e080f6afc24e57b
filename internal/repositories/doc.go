// package repositories provides the sqlite persistence layer for uploads
// and reorder run history.
package repositories
