package models

import "fmt"

// Criterion selects the ordering applied to a playlist.
//
// The numeric values are the menu choices shown to the user.
type Criterion int

const (
	CriterionCancel Criterion = iota
	TrackNameAsc
	TrackNameDesc
	ArtistNameAsc
	ArtistNameDesc
	AddedNewest
	AddedOldest
)

// Criteria lists the selectable orderings in menu order.
var Criteria = []Criterion{
	TrackNameAsc,
	TrackNameDesc,
	ArtistNameAsc,
	ArtistNameDesc,
	AddedNewest,
	AddedOldest,
}

var criterionLabels = map[Criterion]string{
	CriterionCancel: "Cancel",
	TrackNameAsc:    "Track name (A-Z)",
	TrackNameDesc:   "Track name (Z-A)",
	ArtistNameAsc:   "Artist name (A-Z)",
	ArtistNameDesc:  "Artist name (Z-A)",
	AddedNewest:     "Date added (newest first)",
	AddedOldest:     "Date added (oldest first)",
}

var criterionNames = map[Criterion]string{
	CriterionCancel: "cancel",
	TrackNameAsc:    "track_name_asc",
	TrackNameDesc:   "track_name_desc",
	ArtistNameAsc:   "artist_name_asc",
	ArtistNameDesc:  "artist_name_desc",
	AddedNewest:     "added_newest",
	AddedOldest:     "added_oldest",
}

// Valid reports whether c is one of the six sort orderings.
// [CriterionCancel] is not valid.
func (c Criterion) Valid() bool {
	return c >= TrackNameAsc && c <= AddedOldest
}

// Descending reports whether c orders from high to low.
func (c Criterion) Descending() bool {
	switch c {
	case TrackNameDesc, ArtistNameDesc, AddedNewest:
		return true
	default:
		return false
	}
}

func (c Criterion) String() string {
	if name, ok := criterionNames[c]; ok {
		return name
	}
	return fmt.Sprintf("criterion(%d)", int(c))
}

// Label is the human readable menu text for c.
func (c Criterion) Label() string {
	if label, ok := criterionLabels[c]; ok {
		return label
	}
	return "Unknown"
}

// ParseCriterion converts a menu choice into a [Criterion].
//
// Zero parses to [CriterionCancel]; anything outside 0-6 is an error.
func ParseCriterion(choice int) (Criterion, error) {
	c := Criterion(choice)
	if c == CriterionCancel || c.Valid() {
		return c, nil
	}
	return CriterionCancel, fmt.Errorf("unknown sort criterion %d", choice)
}
