package tasks

import (
	"fmt"
)

// ProgressUpdate represents a progress event during a playlist rewrite.
//
// Used to send real-time updates to the CLI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current batch number within phase
	Total   int    // Total batches in this phase
	Message string // Human-readable message for display
}

// Operation phase enumeration
type Phase int

const (
	RemoveTracks Phase = iota
	AddTracks
)

func (p Phase) String() string {
	switch p {
	case RemoveTracks:
		return "remove"
	case AddTracks:
		return "add"
	default:
		return ""
	}
}

func startingUpdate(phase Phase, total, tracks int) ProgressUpdate {
	verb := "Removing"
	if phase == AddTracks {
		verb = "Adding"
	}
	return ProgressUpdate{
		Phase:   phase,
		Step:    0,
		Total:   total,
		Message: fmt.Sprintf("%s %d tracks in %d batches...", verb, tracks, total),
	}
}

func batchUpdate(phase Phase, step, total, size int) ProgressUpdate {
	verb := "removed"
	if phase == AddTracks {
		verb = "added"
	}
	return ProgressUpdate{
		Phase:   phase,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s %d tracks", step, total, verb, size),
	}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}
