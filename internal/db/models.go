package db

import "time"

// RawEvent is one music playback record from the streaming history export.
// Privacy and operational fields of the export are never carried here.
type RawEvent struct {
	TS          string // ISO-8601 UTC, e.g. 2023-06-09T04:00:00Z
	Platform    string
	MsPlayed    int64
	TrackName   *string // nullable
	ArtistName  *string // nullable
	AlbumName   *string // nullable
	ReasonStart *string // nullable
	ReasonEnd   *string // nullable
	Shuffle     *bool   // nullable
	TrackID     string  // derived from spotify:track:<id>
}

// CleanEvent is a RawEvent with localized date parts and a normalized platform.
type CleanEvent struct {
	Platform    string
	MsPlayed    int64
	TrackName   *string
	ArtistName  *string
	AlbumName   *string
	ReasonStart *string
	ReasonEnd   *string
	Shuffle     *bool
	TrackID     string
	Datetime    time.Time // in the target zone
	StreamDate  string    // 2006-01-02
	StreamTime  string    // 15:04:05
	StreamYear  int
	StreamMonth int
	StreamDay   int
}

// Track is a flattened catalog track joined with its listening time.
type Track struct {
	Name         string
	AlbumID      string
	Popularity   int64
	DiscNumber   int64
	TrackNumber  int64
	ID           string
	Explicit     bool
	ExternalURLs string
	DurationMs   int64
	MsPlayed     int64
}

// TrackArtist links a track to one of its artists.
type TrackArtist struct {
	TrackID  string
	ArtistID string
}

// Artist is a flattened catalog artist joined with its listening time.
type Artist struct {
	Name         string
	Popularity   int64
	ID           string
	ExternalURLs string
	Followers    int64
	MsPlayed     int64
}

// ArtistGenre links an artist to one of its genres.
type ArtistGenre struct {
	ArtistID string
	Genre    string
}

// Album is a flattened catalog album joined with its listening time.
// Release parts keep the provider's text form ("03" stays "03").
type Album struct {
	Name                 string
	Type                 string
	NumTracks            int64
	ID                   string
	ExternalURLs         string
	Popularity           int64
	Image                *string // url of the lowest resolution image
	ReleaseDate          string
	ReleaseDatePrecision string
	ReleaseYear          *string
	ReleaseMonth         *string
	ReleaseDay           *string
	MsPlayed             int64
}

// AlbumArtist links an album to one of its artists.
type AlbumArtist struct {
	AlbumID  string
	ArtistID string
}

// AudioFeatures holds the acoustic attributes of one analyzed track.
type AudioFeatures struct {
	TrackID          string
	Acousticness     float64
	AnalysisURL      string
	Danceability     float64
	DurationMs       int64
	Energy           float64
	Instrumentalness float64
	Key              int64
	Liveness         float64
	Loudness         float64
	Mode             int64
	Speechiness      float64
	Tempo            float64
	TimeSignature    int64
	Valence          float64
}

// FeatureColumns are the numeric audio feature columns, in table order.
var FeatureColumns = []string{
	"acousticness",
	"danceability",
	"duration_ms",
	"energy",
	"instrumentalness",
	"key",
	"liveness",
	"loudness",
	"mode",
	"speechiness",
	"tempo",
	"time_signature",
	"valence",
}

// Vector returns the numeric features aligned with FeatureColumns.
func (f AudioFeatures) Vector() []float64 {
	return []float64{
		f.Acousticness,
		f.Danceability,
		float64(f.DurationMs),
		f.Energy,
		f.Instrumentalness,
		float64(f.Key),
		f.Liveness,
		f.Loudness,
		float64(f.Mode),
		f.Speechiness,
		f.Tempo,
		float64(f.TimeSignature),
		f.Valence,
	}
}

// OwnedFeatures is one audio feature vector attributed to an owning entity.
type OwnedFeatures struct {
	OwnerID string
	Values  []float64 // aligned with FeatureColumns
}

// FeatureAggregate is the per-owner mean of every feature column.
type FeatureAggregate struct {
	OwnerID string
	Means   []float64 // aligned with FeatureColumns
}
