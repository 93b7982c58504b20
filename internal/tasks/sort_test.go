package tasks

import (
	"slices"
	"testing"
	"time"

	"github.com/desertthunder/plsort/internal/models"
)

func track(id, name, artist, addedAt string) models.TrackItem {
	var artists []string
	if artist != "" {
		artists = []string{artist}
	}
	return models.TrackItem{ID: id, Name: name, Artists: artists, AddedAt: addedAt}
}

func fixtureTracks() []models.TrackItem {
	return []models.TrackItem{
		track("1", "delta", "Echo", "2021-03-01T00:00:00Z"),
		track("2", "Alpha", "charlie", "2020-01-01T00:00:00Z"),
		track("3", "charlie", "Alpha", "2022-06-15T12:30:00Z"),
		track("4", "Bravo", "delta", "2019-11-20T08:00:00Z"),
		track("5", "echo", "bravo", "2023-02-02T02:02:02Z"),
	}
}

func TestSort(t *testing.T) {
	t.Run("orders by each criterion", func(t *testing.T) {
		tests := []struct {
			criterion models.Criterion
			want      []string
		}{
			{models.TrackNameAsc, []string{"2", "4", "3", "1", "5"}},
			{models.TrackNameDesc, []string{"5", "1", "3", "4", "2"}},
			{models.ArtistNameAsc, []string{"3", "5", "2", "4", "1"}},
			{models.ArtistNameDesc, []string{"1", "4", "2", "5", "3"}},
			{models.AddedNewest, []string{"5", "3", "1", "2", "4"}},
			{models.AddedOldest, []string{"4", "2", "1", "3", "5"}},
		}

		for _, tt := range tests {
			t.Run(tt.criterion.String(), func(t *testing.T) {
				got := TrackIDs(Sort(fixtureTracks(), tt.criterion))
				if !slices.Equal(got, tt.want) {
					t.Errorf("Sort(%v) = %v, want %v", tt.criterion, got, tt.want)
				}
			})
		}
	})

	t.Run("does not mutate input", func(t *testing.T) {
		input := fixtureTracks()
		before := TrackIDs(input)
		Sort(input, models.TrackNameAsc)
		if !slices.Equal(TrackIDs(input), before) {
			t.Errorf("input was reordered: %v", TrackIDs(input))
		}
	})

	t.Run("is idempotent", func(t *testing.T) {
		for _, c := range models.Criteria {
			once := Sort(fixtureTracks(), c)
			twice := Sort(once, c)
			if !slices.Equal(TrackIDs(once), TrackIDs(twice)) {
				t.Errorf("%v: sorting twice changed order %v -> %v", c, TrackIDs(once), TrackIDs(twice))
			}
		}
	})

	t.Run("opposite criteria are reverses without ties", func(t *testing.T) {
		pairs := [][2]models.Criterion{
			{models.TrackNameAsc, models.TrackNameDesc},
			{models.ArtistNameAsc, models.ArtistNameDesc},
			{models.AddedOldest, models.AddedNewest},
		}
		for _, p := range pairs {
			asc := TrackIDs(Sort(fixtureTracks(), p[0]))
			desc := TrackIDs(Sort(fixtureTracks(), p[1]))
			slices.Reverse(desc)
			if !slices.Equal(asc, desc) {
				t.Errorf("%v and %v are not reverses: %v vs %v", p[0], p[1], asc, desc)
			}
		}
	})

	t.Run("ties keep original order", func(t *testing.T) {
		tracks := []models.TrackItem{
			track("a", "Same", "X", "2021-01-01T00:00:00Z"),
			track("b", "same", "x", "2021-01-01T00:00:00Z"),
			track("c", "SAME", "X", "2021-01-01T00:00:00Z"),
		}
		for _, c := range models.Criteria {
			got := TrackIDs(Sort(tracks, c))
			if !slices.Equal(got, []string{"a", "b", "c"}) {
				t.Errorf("%v reordered ties: %v", c, got)
			}
		}
	})

	t.Run("descending keeps ties stable among distinct keys", func(t *testing.T) {
		tracks := []models.TrackItem{
			track("a", "b", "", ""),
			track("b", "a", "", ""),
			track("c", "B", "", ""),
		}
		got := TrackIDs(Sort(tracks, models.TrackNameDesc))
		if !slices.Equal(got, []string{"a", "c", "b"}) {
			t.Errorf("Sort() = %v, want [a c b]", got)
		}
	})

	t.Run("missing artist sorts as empty key", func(t *testing.T) {
		tracks := []models.TrackItem{
			track("a", "x", "Zed", ""),
			track("b", "y", "", ""),
		}
		got := TrackIDs(Sort(tracks, models.ArtistNameAsc))
		if !slices.Equal(got, []string{"b", "a"}) {
			t.Errorf("Sort() = %v, want [b a]", got)
		}
	})

	t.Run("unknown or cancel criterion keeps order", func(t *testing.T) {
		for _, c := range []models.Criterion{models.CriterionCancel, models.Criterion(7), models.Criterion(-3)} {
			input := fixtureTracks()
			got := Sort(input, c)
			if !slices.EqualFunc(got, input, func(a, b models.TrackItem) bool { return a.ID == b.ID && a.Name == b.Name }) {
				t.Errorf("%v changed order: %v", c, TrackIDs(got))
			}
		}
	})

	t.Run("empty input", func(t *testing.T) {
		got := Sort(nil, models.TrackNameAsc)
		if got == nil || len(got) != 0 {
			t.Errorf("Sort(nil) = %#v, want empty slice", got)
		}
	})

	t.Run("end to end example", func(t *testing.T) {
		tracks := []models.TrackItem{
			track("B", "B", "X", "2021-01-01T00:00:00Z"),
			track("A", "A", "Y", "2022-01-01T00:00:00Z"),
		}
		for _, c := range []models.Criterion{models.TrackNameAsc, models.AddedNewest} {
			got := TrackIDs(Sort(tracks, c))
			if !slices.Equal(got, []string{"A", "B"}) {
				t.Errorf("%v: got %v, want [A B]", c, got)
			}
		}
	})
}

func TestParseAddedAt(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"2021-01-01T00:00:00Z", time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)},
		{"2021-01-01T02:00:00+02:00", time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)},
		{"2021-01-01T00:00:00.250Z", time.Date(2021, 1, 1, 0, 0, 0, 250_000_000, time.UTC)},
		{"2021-01-01T00:00:00", time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)},
		{"2021-01-01", time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)},
		{"", time.Time{}},
		{"yesterday", time.Time{}},
	}

	for _, tt := range tests {
		if got := ParseAddedAt(tt.in); !got.Equal(tt.want) {
			t.Errorf("ParseAddedAt(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestBatches(t *testing.T) {
	ids := make([]string, 250)
	for i := range ids {
		ids[i] = string(rune('a' + i%26))
	}

	got := batches(ids, 100)
	if len(got) != 3 {
		t.Fatalf("expected 3 batches, got %d", len(got))
	}
	sizes := []int{len(got[0]), len(got[1]), len(got[2])}
	if !slices.Equal(sizes, []int{100, 100, 50}) {
		t.Errorf("batch sizes = %v, want [100 100 50]", sizes)
	}

	if len(batches(nil, 100)) != 0 {
		t.Error("expected no batches for empty input")
	}
	if len(batches(ids[:5], 0)) != 1 {
		t.Error("zero size should fall back to the maximum")
	}
}
