package tasks

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"github.com/desertthunder/plsort/internal/models"
)

// addedAtLayouts are tried in order when parsing a track's added-at timestamp.
// Layouts without an offset are read as UTC.
var addedAtLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// Sort returns tracks reordered by c. The input slice is never modified.
//
// Sorting is stable: entries with equal keys keep their original relative order,
// for descending criteria too. An unknown criterion, or [models.CriterionCancel],
// returns the tracks in their original order.
func Sort(tracks []models.TrackItem, c models.Criterion) []models.TrackItem {
	sorted := slices.Clone(tracks)
	if sorted == nil {
		sorted = []models.TrackItem{}
	}

	compare := comparator(c)
	if compare == nil {
		return sorted
	}

	if c.Descending() {
		asc := compare
		compare = func(a, b models.TrackItem) int { return asc(b, a) }
	}

	slices.SortStableFunc(sorted, compare)
	return sorted
}

// comparator returns the ascending comparison for c's key, or nil for unknown criteria.
func comparator(c models.Criterion) func(a, b models.TrackItem) int {
	switch c {
	case models.TrackNameAsc, models.TrackNameDesc:
		return func(a, b models.TrackItem) int {
			return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
		}
	case models.ArtistNameAsc, models.ArtistNameDesc:
		return func(a, b models.TrackItem) int {
			return strings.Compare(strings.ToLower(a.PrimaryArtist()), strings.ToLower(b.PrimaryArtist()))
		}
	case models.AddedNewest, models.AddedOldest:
		return func(a, b models.TrackItem) int {
			return ParseAddedAt(a.AddedAt).Compare(ParseAddedAt(b.AddedAt))
		}
	default:
		return nil
	}
}

// ParseAddedAt parses an ISO-8601 added-at value into an instant.
// Unparseable values yield the zero time so they sort before every real timestamp.
func ParseAddedAt(s string) time.Time {
	s = strings.TrimSpace(s)
	for _, layout := range addedAtLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// TrackIDs extracts the ordered ID sequence from tracks.
func TrackIDs(tracks []models.TrackItem) []string {
	ids := make([]string, 0, len(tracks))
	for _, t := range tracks {
		ids = append(ids, t.ID)
	}
	return ids
}

// sameOrder reports whether a and b hold the same IDs in the same order.
func sameOrder(a, b []string) bool {
	return slices.Equal(a, b)
}

// batches splits ids into consecutive chunks of at most size entries.
func batches(ids []string, size int) [][]string {
	size = cmp.Or(max(size, 0), 100)
	var out [][]string
	for chunk := range slices.Chunk(ids, size) {
		out = append(out, chunk)
	}
	return out
}
