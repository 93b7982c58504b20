package models

import (
	"fmt"
	"slices"
	"time"
)

// RunStatus is the lifecycle state of a [RewriteRun].
type RunStatus string

const (
	RunStarted   RunStatus = "started"
	RunCompleted RunStatus = "completed"
	RunFailed    RunStatus = "failed"
	RunNoop      RunStatus = "noop"
)

// Valid reports whether s is a known status.
func (s RunStatus) Valid() bool {
	switch s {
	case RunStarted, RunCompleted, RunFailed, RunNoop:
		return true
	}
	return false
}

// RewriteRun records one attempt to reorder a playlist.
//
// OriginalIDs holds what the playlist contained before any removal, so a failed
// run can be restored by hand.
type RewriteRun struct {
	id           string
	sequence     int
	playlistID   string
	playlistName string
	criterion    Criterion
	originalIDs  []string
	sortedIDs    []string
	status       RunStatus
	phase        string
	batchesDone  int
	errorText    string
	createdAt    time.Time
	updatedAt    time.Time
	deletedAt    *time.Time
}

// NewRewriteRun creates a run in the [RunStarted] state.
func NewRewriteRun(playlistID, playlistName string, criterion Criterion, originalIDs, sortedIDs []string) *RewriteRun {
	now := time.Now().UTC()
	return &RewriteRun{
		playlistID:   playlistID,
		playlistName: playlistName,
		criterion:    criterion,
		originalIDs:  slices.Clone(originalIDs),
		sortedIDs:    slices.Clone(sortedIDs),
		status:       RunStarted,
		createdAt:    now,
		updatedAt:    now,
	}
}

func (r *RewriteRun) ID() string { return r.id }
func (r *RewriteRun) Sequence() int { return r.sequence }
func (r *RewriteRun) PlaylistID() string { return r.playlistID }
func (r *RewriteRun) PlaylistName() string { return r.playlistName }
func (r *RewriteRun) Criterion() Criterion { return r.criterion }
func (r *RewriteRun) OriginalIDs() []string { return r.originalIDs }
func (r *RewriteRun) SortedIDs() []string { return r.sortedIDs }
func (r *RewriteRun) Status() RunStatus { return r.status }
func (r *RewriteRun) Phase() string { return r.phase }
func (r *RewriteRun) BatchesDone() int { return r.batchesDone }
func (r *RewriteRun) ErrorText() string { return r.errorText }
func (r *RewriteRun) CreatedAt() time.Time { return r.createdAt }
func (r *RewriteRun) UpdatedAt() time.Time { return r.updatedAt }
func (r *RewriteRun) DeletedAt() *time.Time { return r.deletedAt }
func (r *RewriteRun) TrackCount() int { return len(r.originalIDs) }
func (r *RewriteRun) SetID(id string) { r.id = id }
func (r *RewriteRun) SetSequence(seq int) { r.sequence = seq }
func (r *RewriteRun) SetCreatedAt(t time.Time) { r.createdAt = t }
func (r *RewriteRun) SetUpdatedAt(t time.Time) { r.updatedAt = t }
func (r *RewriteRun) SetDeletedAt(t *time.Time) { r.deletedAt = t }

// SetProgress records the phase reached and the number of batches issued in it.
func (r *RewriteRun) SetProgress(phase string, batches int) {
	r.phase = phase
	r.batchesDone = batches
}

// Complete marks the run as finished.
func (r *RewriteRun) Complete() { r.status = RunCompleted }

// MarkNoop marks the run as needing no remote changes.
func (r *RewriteRun) MarkNoop() { r.status = RunNoop }

// Fail marks the run as failed with err's text.
func (r *RewriteRun) Fail(err error) {
	r.status = RunFailed
	if err != nil {
		r.errorText = err.Error()
	}
}

// Restore sets the stored status and error text when loading from the database.
func (r *RewriteRun) Restore(status RunStatus, errorText string) {
	r.status = status
	r.errorText = errorText
}

// Validate checks the run has a playlist, a valid criterion and a known status.
func (r *RewriteRun) Validate() error {
	if r.playlistID == "" {
		return fmt.Errorf("playlist id is required")
	}
	if !r.criterion.Valid() {
		return fmt.Errorf("invalid criterion: %d", r.criterion)
	}
	if !r.status.Valid() {
		return fmt.Errorf("invalid status: %q", r.status)
	}
	return nil
}
