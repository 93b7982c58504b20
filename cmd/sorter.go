package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/plsort/internal/formatter"
	"github.com/desertthunder/plsort/internal/models"
	"github.com/desertthunder/plsort/internal/services"
	"github.com/desertthunder/plsort/internal/shared"
	"github.com/desertthunder/plsort/internal/tasks"
)

// Sort runs the interactive sorter: validate configuration, establish the session, then loop over
// playlist selection until the user exits.
func (r *Runner) Sort(ctx context.Context, cmd *cli.Command) error {
	if err := r.config.Validate(); err != nil {
		return err
	}

	if r.service == nil {
		svc, err := r.connect(ctx)
		if err != nil {
			return err
		}
		r.service = svc
	}

	return r.sortLoop(ctx)
}

// sortLoop drives playlist selection, criterion choice, confirmation and rewrite.
//
// It returns nil for every way the session can end normally: exit choice, end of input, token expiry
// or an empty account. Only output failures surface as errors.
func (r *Runner) sortLoop(ctx context.Context) error {
	defer r.writePlainln("Program finished.")

	r.writePlainln("%s", r.palette.Title("--- SPOTIFY PLAYLIST SORTER ---"))
	user, err := r.service.CurrentUser(ctx)
	if err != nil {
		r.writePlain("Could not load your profile.\n")
		r.reportAPIError(err)
		return nil
	}
	if err := r.writePlain("Hello, %s!\n", user.Name()); err != nil {
		return err
	}

	rewriter := r.newRewriter()

	for {
		r.writePlainln("Fetching your playlists...")
		playlists, err := r.service.GetPlaylists(ctx)
		if err != nil {
			if r.reportAPIError(err) {
				return nil
			}
			retry, err := r.confirm("Try fetching your playlists again?")
			if err != nil {
				return r.endOfInput(err)
			}
			if !retry {
				r.writePlain("Exiting. Goodbye!\n")
				return nil
			}
			continue
		}
		if len(playlists) == 0 {
			r.writePlain("No playlists found in your account.\n")
			return nil
		}

		r.writePlainln("%s", r.palette.Title("--- YOUR PLAYLISTS ---"))
		if err := r.writePlain("%s", formatter.FormatPlaylistMenu(playlists)); err != nil {
			return err
		}

		choice, err := r.promptChoice("Choose a playlist number to sort (or 0 to exit): ", len(playlists),
			"Invalid choice. Please enter a number from the list.")
		if err != nil {
			return r.endOfInput(err)
		}
		if choice == 0 {
			r.writePlain("Exiting. Goodbye!\n")
			return nil
		}

		done, err := r.sortPlaylist(ctx, rewriter, playlists[choice-1])
		if done {
			return err
		}
	}
}

// sortPlaylist handles one selected playlist. done reports whether the loop must end.
func (r *Runner) sortPlaylist(ctx context.Context, rewriter *tasks.Rewriter, pl models.Playlist) (done bool, err error) {
	r.writePlainln("Selected playlist: '%s'", pl.Name)
	r.writePlainln("%s", r.palette.Title("--- CHOOSE A SORT CRITERION ---"))
	r.writePlain("%s", formatter.FormatCriterionMenu())

	choice, err := r.promptChoice("Choose a sort criterion number: ", len(models.Criteria),
		"Invalid sort criterion. Please choose a number from the list.")
	if err != nil {
		return true, r.endOfInput(err)
	}
	criterion, err := models.ParseCriterion(choice)
	if err != nil || criterion == models.CriterionCancel {
		r.writePlain("Operation cancelled.\n")
		return false, nil
	}

	ok, err := r.confirm(fmt.Sprintf("Are you sure you want to sort '%s' by %s? This changes the order of its tracks.",
		pl.Name, criterion.Label()))
	if err != nil {
		return true, r.endOfInput(err)
	}
	if !ok {
		r.writePlain("Operation cancelled.\n")
		return false, nil
	}

	r.writePlainln("Fetching tracks of '%s'...", pl.Name)
	tracks, err := r.service.GetPlaylistTracks(ctx, pl.ID)
	if err != nil {
		return r.reportAPIError(err), nil
	}
	if len(tracks) == 0 {
		r.writePlain("The playlist '%s' is empty or has no valid tracks. Nothing to sort.\n", pl.Name)
		return false, nil
	}
	r.writePlain("Tracks found: %d\n", len(tracks))

	r.writePlain("Sorting tracks...\n")
	sorted := tasks.Sort(tracks, criterion)

	outcome, err := r.rewrite(ctx, rewriter, tasks.RewriteRequest{
		PlaylistID:   pl.ID,
		PlaylistName: pl.Name,
		Criterion:    criterion,
		OriginalIDs:  tasks.TrackIDs(tracks),
		SortedIDs:    tasks.TrackIDs(sorted),
	})
	if err != nil {
		stop := r.reportAPIError(err)
		if r.journal != nil {
			r.writePlain("%s\n", r.palette.Warn("The playlist may be partially rewritten. Its original order is kept in the rewrite journal (plsort history --csv)."))
		}
		return stop, nil
	}

	if outcome == tasks.OutcomeNoop {
		r.writePlain("The playlist is already in the desired order. No changes needed.\n")
		return false, nil
	}

	r.writePlainln("%s", r.palette.OK(fmt.Sprintf("Playlist '%s' sorted successfully!", pl.Name)))
	return false, nil
}

// rewrite runs req through rewriter while one goroutine prints its progress updates.
func (r *Runner) rewrite(ctx context.Context, rewriter *tasks.Rewriter, req tasks.RewriteRequest) (tasks.Outcome, error) {
	progress := make(chan tasks.ProgressUpdate, progressBuffer(len(req.OriginalIDs), len(req.SortedIDs), r.config.Rewrite.BatchSize))
	printed := make(chan struct{})

	go func() {
		defer close(printed)
		for update := range progress {
			r.writePlain("  %s\n", update.Message)
		}
	}()

	outcome, err := rewriter.Rewrite(ctx, progress, req)
	close(progress)
	<-printed

	return outcome, err
}

func (r *Runner) newRewriter() *tasks.Rewriter {
	opts := tasks.RewriterOpts{
		BatchSize: r.config.Rewrite.BatchSize,
		Pacing:    r.config.Pacing(),
		Logger:    r.logger,
	}

	if journal, err := r.openJournal(); err != nil {
		r.logger.Warn("rewrite journal disabled", "error", err)
	} else {
		opts.Journal = journal
	}

	return tasks.NewRewriter(r.service, opts)
}

// reportAPIError classifies err, tells the user what happened and reports whether the loop must end.
func (r *Runner) reportAPIError(err error) (stop bool) {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		r.logger.Warn("interrupted", "error", err)
		return true
	}

	err = services.ClassifyError(err)
	r.logger.Error("spotify request failed", "error", err)
	r.writePlain("%s\n", r.palette.Err(fmt.Sprintf("Spotify API error: %v", err)))

	switch {
	case errors.Is(err, shared.ErrTokenExpired):
		r.writePlain("Your access token has expired. Please restart plsort to authenticate again.\n")
		return true
	case errors.Is(err, shared.ErrPlaylistNotFound):
		r.writePlain("The playlist was not found or you do not have access to it.\n")
	case errors.Is(err, shared.ErrPermissionDenied):
		r.writePlain("You do not have permission to modify this playlist. Check the granted scopes.\n")
	default:
		r.writePlain("An unexpected Spotify API error occurred.\n")
	}
	return false
}

// endOfInput turns a closed stdin into a normal exit.
func (r *Runner) endOfInput(err error) error {
	if isInputClosed(err) {
		r.writePlainln("Input closed. Exiting.")
		return nil
	}
	return err
}

// progressBuffer sizes the progress channel to hold every update of a rewrite.
func progressBuffer(removed, added, batchSize int) int {
	if batchSize <= 0 || batchSize > shared.MaxBatchSize {
		batchSize = shared.MaxBatchSize
	}
	chunks := func(n int) int { return (n + batchSize - 1) / batchSize }
	return chunks(removed) + chunks(added) + 2
}
