// Package history loads and cleans a Spotify "Extended Streaming History" export.
package history

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/goccy/go-json"

	"github.com/justestif/spotify-history-warehouse/internal/db"
)

// Sentinel errors.
var (
	// ErrMissingField is returned when a music record lacks a required field.
	ErrMissingField = errors.New("missing required field")

	// ErrMalformedURI is returned when a track uri is not spotify:track:<id>.
	ErrMalformedURI = errors.New("malformed track uri")
)

// exportRecord is one element of an export file. Privacy and operational
// fields (username, conn_country, ip_addr_decrypted, user_agent_decrypted,
// offline, offline_timestamp, skipped, incognito_mode) and the episode
// fields are deliberately not decoded.
type exportRecord struct {
	TS          *string `json:"ts"`
	Platform    *string `json:"platform"`
	MsPlayed    *int64  `json:"ms_played"`
	TrackName   *string `json:"master_metadata_track_name"`
	ArtistName  *string `json:"master_metadata_album_artist_name"`
	AlbumName   *string `json:"master_metadata_album_album_name"`
	TrackURI    *string `json:"spotify_track_uri"`
	ReasonStart *string `json:"reason_start"`
	ReasonEnd   *string `json:"reason_end"`
	Shuffle     *bool   `json:"shuffle"`
}

// Load reads every export file matching pattern and returns the music
// playback events sorted by timestamp. Files are read in lexical path order.
// Records without a track uri (podcast and episode listens) are dropped.
// An empty match yields an empty slice.
func Load(pattern string) ([]db.RawEvent, error) {
	paths, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("matching %q: %w", pattern, err)
	}

	events := []db.RawEvent{}
	for _, path := range paths {
		fileEvents, err := loadFile(path)
		if err != nil {
			return nil, err
		}
		events = append(events, fileEvents...)
	}

	// ISO-8601 UTC strings sort chronologically. Stable so equal timestamps
	// keep file order.
	slices.SortStableFunc(events, func(a, b db.RawEvent) int {
		return strings.Compare(a.TS, b.TS)
	})

	return events, nil
}

func loadFile(path string) ([]db.RawEvent, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var records []exportRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	events := make([]db.RawEvent, 0, len(records))
	for i, rec := range records {
		if rec.TrackURI == nil {
			continue
		}
		event, err := convertRecord(rec)
		if err != nil {
			return nil, fmt.Errorf("%s record %d: %w", path, i, err)
		}
		events = append(events, event)
	}
	return events, nil
}

// convertRecord converts a music record, deriving the track id from its uri.
func convertRecord(rec exportRecord) (db.RawEvent, error) {
	switch {
	case rec.TS == nil:
		return db.RawEvent{}, fmt.Errorf("%w: ts", ErrMissingField)
	case rec.MsPlayed == nil:
		return db.RawEvent{}, fmt.Errorf("%w: ms_played", ErrMissingField)
	case rec.Platform == nil:
		return db.RawEvent{}, fmt.Errorf("%w: platform", ErrMissingField)
	}

	trackID, err := TrackID(*rec.TrackURI)
	if err != nil {
		return db.RawEvent{}, err
	}

	return db.RawEvent{
		TS:          *rec.TS,
		Platform:    *rec.Platform,
		MsPlayed:    *rec.MsPlayed,
		TrackName:   rec.TrackName,
		ArtistName:  rec.ArtistName,
		AlbumName:   rec.AlbumName,
		ReasonStart: rec.ReasonStart,
		ReasonEnd:   rec.ReasonEnd,
		Shuffle:     rec.Shuffle,
		TrackID:     trackID,
	}, nil
}

// TrackID extracts <id> from a spotify:track:<id> uri.
func TrackID(uri string) (string, error) {
	parts := strings.Split(uri, ":")
	if len(parts) != 3 || parts[0] != "spotify" || parts[1] != "track" || parts[2] == "" {
		return "", fmt.Errorf("%w: %q", ErrMalformedURI, uri)
	}
	return parts[2], nil
}
