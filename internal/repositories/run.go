package repositories

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/plsort/internal/models"
	"github.com/desertthunder/plsort/internal/shared"
)

// ErrRunNotFound is returned when no live rewrite run matches the requested ID.
var ErrRunNotFound = errors.New("rewrite run not found")

const runColumns = `id, sequence, playlist_id, playlist_name, criterion, original_ids, sorted_ids,
	status, phase, batches_done, error, created_at, updated_at, deleted_at`

// RunRepository implements models.Repository[*models.RewriteRun] for the rewrite journal.
//
// It also satisfies the journal interface the rewriter records progress through.
type RunRepository struct {
	db *sql.DB
}

// NewRunRepository creates a new RunRepository with the given database connection
func NewRunRepository(db *sql.DB) *RunRepository {
	return &RunRepository{db: db}
}

// Create inserts a new run with a generated ID and sequence
func (r *RunRepository) Create(run *models.RewriteRun) error {
	if err := run.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	original, err := encodeIDs(run.OriginalIDs())
	if err != nil {
		return err
	}
	sorted, err := encodeIDs(run.SortedIDs())
	if err != nil {
		return err
	}

	sequence, err := NextSequence(r.db, "rewrite_runs")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()

	query := `
		INSERT INTO rewrite_runs (
			id, sequence, playlist_id, playlist_name, criterion, original_ids, sorted_ids,
			status, phase, batches_done, error, created_at, updated_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		id,
		sequence,
		run.PlaylistID(),
		run.PlaylistName(),
		int(run.Criterion()),
		original,
		sorted,
		string(run.Status()),
		run.Phase(),
		run.BatchesDone(),
		run.ErrorText(),
		run.CreatedAt(),
		run.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert rewrite run: %w", err)
	}

	run.SetID(id)
	run.SetSequence(sequence)
	return nil
}

// Get retrieves a run by ID, excluding soft-deleted runs
func (r *RunRepository) Get(id string) (*models.RewriteRun, error) {
	query := `SELECT ` + runColumns + ` FROM rewrite_runs WHERE id = ? AND deleted_at IS NULL`
	return scanRun(r.db.QueryRow(query, id))
}

// Update persists the run's status, phase, progress and error text.
func (r *RunRepository) Update(run *models.RewriteRun) error {
	if err := run.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now().UTC()
	run.SetUpdatedAt(now)

	query := `
		UPDATE rewrite_runs
		SET status = ?, phase = ?, batches_done = ?, error = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query,
		string(run.Status()),
		run.Phase(),
		run.BatchesDone(),
		run.ErrorText(),
		now,
		run.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update rewrite run: %w", err)
	}

	return requireRow(result, run.ID())
}

// Delete soft-deletes a run by ID
func (r *RunRepository) Delete(id string) error {
	query := `UPDATE rewrite_runs SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`

	result, err := r.db.Exec(query, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to delete rewrite run: %w", err)
	}

	return requireRow(result, id)
}

// List retrieves runs matching criteria, oldest first.
//
// Supported keys are "playlist_id" and "status" (string or [models.RunStatus]).
func (r *RunRepository) List(criteria map[string]any) ([]*models.RewriteRun, error) {
	query := `SELECT ` + runColumns + ` FROM rewrite_runs WHERE deleted_at IS NULL`
	args := []any{}

	if playlistID, ok := criteria["playlist_id"].(string); ok && playlistID != "" {
		query += " AND playlist_id = ?"
		args = append(args, playlistID)
	}

	switch status := criteria["status"].(type) {
	case string:
		if status != "" {
			query += " AND status = ?"
			args = append(args, status)
		}
	case models.RunStatus:
		query += " AND status = ?"
		args = append(args, string(status))
	}

	query += " ORDER BY sequence ASC"
	return r.query(query, args...)
}

// Recent returns up to limit runs, newest first. A non-positive limit returns every run.
func (r *RunRepository) Recent(limit int) ([]*models.RewriteRun, error) {
	query := `SELECT ` + runColumns + ` FROM rewrite_runs WHERE deleted_at IS NULL ORDER BY sequence DESC`
	if limit > 0 {
		return r.query(query+" LIMIT ?", limit)
	}
	return r.query(query)
}

func (r *RunRepository) query(query string, args ...any) ([]*models.RewriteRun, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query rewrite runs: %w", err)
	}
	defer rows.Close()

	var runs []*models.RewriteRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return runs, nil
}

// scanner is satisfied by both [sql.Row] and [sql.Rows].
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*models.RewriteRun, error) {
	var (
		id           string
		sequence     int
		playlistID   string
		playlistName string
		criterion    int
		originalRaw  string
		sortedRaw    string
		status       string
		phase        string
		batchesDone  int
		errorText    string
		createdAt    time.Time
		updatedAt    time.Time
		deletedAt    sql.NullTime
	)

	err := row.Scan(&id, &sequence, &playlistID, &playlistName, &criterion, &originalRaw, &sortedRaw,
		&status, &phase, &batchesDone, &errorText, &createdAt, &updatedAt, &deletedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan rewrite run: %w", err)
	}

	var original, sorted []string
	if err := json.Unmarshal([]byte(originalRaw), &original); err != nil {
		return nil, fmt.Errorf("failed to decode original ids of run %s: %w", id, err)
	}
	if err := json.Unmarshal([]byte(sortedRaw), &sorted); err != nil {
		return nil, fmt.Errorf("failed to decode sorted ids of run %s: %w", id, err)
	}

	run := models.NewRewriteRun(playlistID, playlistName, models.Criterion(criterion), original, sorted)
	run.SetID(id)
	run.SetSequence(sequence)
	run.SetProgress(phase, batchesDone)
	run.Restore(models.RunStatus(status), errorText)
	run.SetCreatedAt(createdAt)
	run.SetUpdatedAt(updatedAt)
	if deletedAt.Valid {
		run.SetDeletedAt(&deletedAt.Time)
	}

	return run, nil
}

func encodeIDs(ids []string) (string, error) {
	if ids == nil {
		ids = []string{}
	}
	data, err := json.Marshal(ids)
	if err != nil {
		return "", fmt.Errorf("failed to encode track ids: %w", err)
	}
	return string(data), nil
}

func requireRow(result sql.Result, id string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return nil
}
