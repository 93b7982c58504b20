// Package repositories implements SQLite persistence for the rewrite journal.
//
// [RunRepository] stores one row per attempted playlist rewrite: the playlist, the chosen criterion,
// the track IDs before and after sorting, and how far the remove/re-add phases got. A run that fails
// part way keeps the original order on record so it can be restored by hand.
//
// Runs are soft deleted via deleted_at and excluded from queries by default.
// Sequence numbers give a stable, human-readable ordering (run #1, #2, ...) independent of UUIDs;
// [NextSequence] atomically increments the per-table counter in its dedicated sequence table.
package repositories
