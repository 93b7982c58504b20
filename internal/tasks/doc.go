// Package tasks reorders playlists and writes the new order back with real-time progress reporting.
//
// # Core Operations
//
//  1. [Sort] : Pure, stable reordering of [models.TrackItem] values by a [models.Criterion]
//     - Track name or first artist, case-insensitive, ascending or descending
//     - Added-at instant, newest or oldest first
//     - Unknown criteria return the input order unchanged
//
//  2. [Rewriter.Rewrite] : Replace a playlist's contents with a sorted ID sequence
//     - Equal sequences are a no-op with zero remote calls
//     - Removal phase: every original ID, removed in batches of at most 100
//     - Addition phase: the sorted IDs, appended in batches of at most 100
//     - Calls are paced by a [rate.Limiter]
//
// # Atomicity
//
// The streaming API offers no transactional replace, so a rewrite is not atomic.
// An error during either phase leaves the playlist partially modified: some tracks
// removed, or some re-added. The returned error names the phase and batch, and the
// optional [Journal] keeps the original ID sequence so the playlist can be restored
// by hand. Callers must not retry automatically.
//
// # Progress Reporting
//
// Rewrites use non-blocking channels for progress updates.
// The [ProgressUpdate] struct contains phase, batch counters and a message.
// Updates use select with default to prevent blocking.
package tasks
