package history

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/justestif/spotify-history-warehouse/internal/db"
)

const (
	// TimestampLayout is the export's ts format (%Y-%m-%dT%H:%M:%SZ).
	TimestampLayout = "2006-01-02T15:04:05Z"

	// DefaultTimeZone is US/Eastern, daylight saving aware.
	DefaultTimeZone = "America/New_York"
)

// ErrBadTimestamp is returned when an event ts does not match TimestampLayout.
var ErrBadTimestamp = errors.New("unparseable timestamp")

// PlatformRule rewrites any platform containing Contains to Label.
type PlatformRule struct {
	Contains string
	Label    string
}

// DefaultPlatformRules map raw platform strings to a small vocabulary.
var DefaultPlatformRules = []PlatformRule{
	{Contains: "iPhone", Label: "iPhone"},
	{Contains: "OS X", Label: "Laptop"},
	{Contains: "osx", Label: "Laptop"},
	{Contains: "Windows", Label: "Laptop"},
	{Contains: "samsung", Label: "TV"},
	{Contains: "sonos", Label: "Sonos"},
}

// NormalizePlatform returns the label of the first rule whose substring
// occurs in platform (case-sensitive). Rules are tested against the original
// value only, so a label never cascades into a later rule. Unmatched values
// are returned unchanged.
func NormalizePlatform(platform string, rules []PlatformRule) string {
	for _, r := range rules {
		if strings.Contains(platform, r.Contains) {
			return r.Label
		}
	}
	return platform
}

// Cleaner localizes timestamps and normalizes platforms.
type Cleaner struct {
	loc   *time.Location
	rules []PlatformRule
}

// NewCleaner creates a Cleaner converting to loc. Nil rules means
// DefaultPlatformRules; an empty non-nil slice disables rewriting.
func NewCleaner(loc *time.Location, rules []PlatformRule) *Cleaner {
	if rules == nil {
		rules = DefaultPlatformRules
	}
	return &Cleaner{loc: loc, rules: rules}
}

// NewCleanerForZone loads the named IANA zone and creates a Cleaner.
func NewCleanerForZone(zone string, rules []PlatformRule) (*Cleaner, error) {
	if zone == "" {
		zone = DefaultTimeZone
	}
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return nil, fmt.Errorf("loading time zone %q: %w", zone, err)
	}
	return NewCleaner(loc, rules), nil
}

// Clean derives one CleanEvent per raw event, preserving order.
func (c *Cleaner) Clean(raw []db.RawEvent) ([]db.CleanEvent, error) {
	events := make([]db.CleanEvent, 0, len(raw))
	for i, e := range raw {
		local, err := c.Localize(e.TS)
		if err != nil {
			return nil, fmt.Errorf("event %d: %w", i, err)
		}

		events = append(events, db.CleanEvent{
			Platform:    NormalizePlatform(e.Platform, c.rules),
			MsPlayed:    e.MsPlayed,
			TrackName:   e.TrackName,
			ArtistName:  e.ArtistName,
			AlbumName:   e.AlbumName,
			ReasonStart: e.ReasonStart,
			ReasonEnd:   e.ReasonEnd,
			Shuffle:     e.Shuffle,
			TrackID:     e.TrackID,
			Datetime:    local,
			StreamDate:  local.Format(time.DateOnly),
			StreamTime:  local.Format(time.TimeOnly),
			StreamYear:  local.Year(),
			StreamMonth: int(local.Month()),
			StreamDay:   local.Day(),
		})
	}
	return events, nil
}

// Localize parses a UTC export timestamp and converts it to the cleaner's zone.
func (c *Cleaner) Localize(ts string) (time.Time, error) {
	t, err := time.ParseInLocation(TimestampLayout, ts, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrBadTimestamp, ts)
	}
	return t.In(c.loc), nil
}
