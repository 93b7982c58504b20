package models

// User is the account the session is authorized for.
type User struct {
	ID          string
	DisplayName string
}

// Name returns the display name, falling back to the account ID.
func (u *User) Name() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.ID
}

// Playlist represents a playlist owned by or shared with the user.
type Playlist struct {
	ID            string
	Name          string
	TrackCount    int
	Owner         string
	Collaborative bool
}

// TrackItem is a single playlist entry.
//
// AddedAt is kept as the ISO-8601 string the API returned; parsing happens at sort time.
type TrackItem struct {
	ID      string
	Name    string
	Artists []string
	AddedAt string
}

// PrimaryArtist returns the first listed artist, or "" when there is none.
func (t TrackItem) PrimaryArtist() string {
	if len(t.Artists) == 0 {
		return ""
	}
	return t.Artists[0]
}
