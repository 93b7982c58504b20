package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"github.com/desertthunder/plsort/internal/models"
	"github.com/desertthunder/plsort/internal/shared"
)

// PlaylistWriter is the subset of a streaming session needed to rewrite a playlist.
type PlaylistWriter interface {
	// RemoveTracks removes every occurrence of ids from the playlist. At most 100 ids per call.
	RemoveTracks(ctx context.Context, playlistID string, ids []string) error
	// AddTracks appends ids to the end of the playlist. At most 100 ids per call.
	AddTracks(ctx context.Context, playlistID string, ids []string) error
}

// Journal persists [models.RewriteRun] records.
//
// Implemented by repositories.RunRepository.
type Journal interface {
	Create(run *models.RewriteRun) error
	Update(run *models.RewriteRun) error
}

// Outcome is the result of a successful [Rewriter.Rewrite].
type Outcome int

const (
	OutcomeNoop Outcome = iota
	OutcomeRewritten
)

func (o Outcome) String() string {
	switch o {
	case OutcomeNoop:
		return "noop"
	case OutcomeRewritten:
		return "rewritten"
	default:
		return ""
	}
}

// RewriteRequest describes a single playlist reorder.
type RewriteRequest struct {
	PlaylistID   string
	PlaylistName string
	Criterion    models.Criterion
	OriginalIDs  []string
	SortedIDs    []string
}

// RewriterOpts configures a [Rewriter].
type RewriterOpts struct {
	BatchSize int           // IDs per remote call, clamped to 1..100 (default: 100)
	Pacing    time.Duration // Minimum gap between remote calls; zero disables pacing
	Journal   Journal       // Optional run journal
	Logger    *log.Logger
}

// Rewriter replaces a playlist's contents with a new ordering using batched remove and add calls.
type Rewriter struct {
	writer    PlaylistWriter
	batchSize int
	pacing    time.Duration
	journal   Journal
	logger    *log.Logger
}

// NewRewriter creates a [Rewriter] that issues calls through w.
func NewRewriter(w PlaylistWriter, opts RewriterOpts) *Rewriter {
	size := opts.BatchSize
	if size <= 0 || size > shared.MaxBatchSize {
		size = shared.MaxBatchSize
	}

	logger := opts.Logger
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	return &Rewriter{
		writer:    w,
		batchSize: size,
		pacing:    max(opts.Pacing, 0),
		journal:   opts.Journal,
		logger:    shared.WithLogger(logger, "component", "rewriter"),
	}
}

// Rewrite applies req to the remote playlist.
//
// Identical original and sorted sequences return [OutcomeNoop] without any remote call.
// Otherwise every original ID is removed in batches, then the sorted IDs are appended in batches.
// The operation is not atomic: a returned error means the playlist is in an unknown partial state.
func (r *Rewriter) Rewrite(ctx context.Context, progress chan<- ProgressUpdate, req RewriteRequest) (Outcome, error) {
	run := models.NewRewriteRun(req.PlaylistID, req.PlaylistName, req.Criterion, req.OriginalIDs, req.SortedIDs)

	if sameOrder(req.OriginalIDs, req.SortedIDs) {
		run.MarkNoop()
		r.record(run, true)
		r.logger.Debug("playlist already ordered", "playlist", req.PlaylistID)
		return OutcomeNoop, nil
	}
	r.record(run, true)

	limit := rate.Inf
	if r.pacing > 0 {
		limit = rate.Every(r.pacing)
	}
	limiter := rate.NewLimiter(limit, 1)

	phases := []struct {
		phase Phase
		ids   []string
		call  func(context.Context, string, []string) error
		label string
	}{
		{RemoveTracks, req.OriginalIDs, r.writer.RemoveTracks, "removal phase"},
		{AddTracks, req.SortedIDs, r.writer.AddTracks, "addition phase"},
	}

	for _, p := range phases {
		chunks := batches(p.ids, r.batchSize)
		sendProgress(progress, startingUpdate(p.phase, len(chunks), len(p.ids)))

		for i, chunk := range chunks {
			err := limiter.Wait(ctx)
			if err == nil {
				err = p.call(ctx, req.PlaylistID, chunk)
			}
			if err != nil {
				err = fmt.Errorf("%s, batch %d/%d: %w", p.label, i+1, len(chunks), err)
				run.SetProgress(p.phase.String(), i)
				run.Fail(err)
				r.record(run, false)
				r.logger.Error("rewrite interrupted", "playlist", req.PlaylistID, "phase", p.phase, "batch", i+1, "error", err)
				return OutcomeRewritten, err
			}

			run.SetProgress(p.phase.String(), i+1)
			sendProgress(progress, batchUpdate(p.phase, i+1, len(chunks), len(chunk)))
			r.logger.Debug("batch done", "phase", p.phase, "batch", i+1, "of", len(chunks), "size", len(chunk))
		}
	}

	run.Complete()
	r.record(run, false)
	return OutcomeRewritten, nil
}

// record writes run to the journal. Failures are logged and otherwise ignored.
func (r *Rewriter) record(run *models.RewriteRun, create bool) {
	if r.journal == nil {
		return
	}

	var err error
	if create {
		err = r.journal.Create(run)
	} else if run.ID() != "" {
		err = r.journal.Update(run)
	}
	if err != nil {
		r.logger.Warn("failed to record rewrite run", "playlist", run.PlaylistID(), "error", err)
	}
}
