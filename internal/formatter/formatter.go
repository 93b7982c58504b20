// package formatter renders menus and rewrite journal listings as plain text, tables and CSV
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/desertthunder/plsort/internal/models"
)

const timeLayout = "2006-01-02 15:04"

var runHeaders = []string{"Run", "Created", "Playlist", "Criterion", "Status", "Progress", "Tracks", "Error"}

// FormatPlaylistMenu lists playlists numbered from 1 with their track counts, followed by the exit entry.
func FormatPlaylistMenu(playlists []models.Playlist) string {
	var b strings.Builder
	for i, p := range playlists {
		fmt.Fprintf(&b, "[%d] %s (%d tracks)\n", i+1, p.Name, p.TrackCount)
	}
	b.WriteString("[0] Exit\n")
	return b.String()
}

// FormatCriterionMenu lists the sort criteria by number, with 0 cancelling back to playlist selection.
func FormatCriterionMenu() string {
	var b strings.Builder
	b.WriteString("  0 - Cancel and return to playlist selection\n")
	for _, c := range models.Criteria {
		fmt.Fprintf(&b, "  %d - %s\n", int(c), c.Label())
	}
	return b.String()
}

// FormatRunsText renders journal entries as a bordered table, newest first as given.
func FormatRunsText(runs []*models.RewriteRun) string {
	if len(runs) == 0 {
		return "No rewrites recorded.\n"
	}

	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		rows = append(rows, []string{
			strconv.Itoa(run.Sequence()),
			run.CreatedAt().Local().Format(timeLayout),
			run.PlaylistName(),
			run.Criterion().Label(),
			string(run.Status()),
			runProgress(run),
			strconv.Itoa(run.TrackCount()),
			truncate(run.ErrorText(), 40),
		})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(runHeaders...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			style := lipgloss.NewStyle().Padding(0, 1)
			if row == table.HeaderRow {
				return style.Bold(true)
			}
			return style
		})

	return t.String() + "\n"
}

// ExportRunsToCSV converts journal entries to CSV with columns:
// Run, ID, Playlist ID, Playlist, Criterion, Status, Phase, Batches, Tracks, Created, Error, Original IDs.
//
// Original IDs are separated by ";" so a partially rewritten playlist can be rebuilt from the export.
func ExportRunsToCSV(runs []*models.RewriteRun) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Run", "ID", "Playlist ID", "Playlist", "Criterion", "Status", "Phase", "Batches", "Tracks", "Created", "Error", "Original IDs"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, run := range runs {
		record := []string{
			strconv.Itoa(run.Sequence()),
			run.ID(),
			run.PlaylistID(),
			run.PlaylistName(),
			run.Criterion().String(),
			string(run.Status()),
			run.Phase(),
			strconv.Itoa(run.BatchesDone()),
			strconv.Itoa(run.TrackCount()),
			run.CreatedAt().UTC().Format(time.RFC3339),
			run.ErrorText(),
			strings.Join(run.OriginalIDs(), ";"),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// WriteRunsCSV writes the CSV export of runs to path, defaulting to plsort_history.csv.
//
// Returns the path written.
func WriteRunsCSV(runs []*models.RewriteRun, path string) (string, error) {
	if path == "" {
		path = "plsort_history.csv"
	}

	data, err := ExportRunsToCSV(runs)
	if err != nil {
		return "", fmt.Errorf("failed to generate CSV: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write CSV file: %w", err)
	}

	return path, nil
}

func runProgress(run *models.RewriteRun) string {
	if run.Phase() == "" {
		return "-"
	}
	return fmt.Sprintf("%s (%d batches)", run.Phase(), run.BatchesDone())
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
