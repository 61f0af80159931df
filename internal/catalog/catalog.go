// Package catalog flattens Spotify "several items" responses into snapshot rows.
//
// Every Flatten function takes the raw response pages of one entity kind, in
// fetch order. Null page elements (ids the provider could not resolve) produce
// no rows. Entity rows are inner-joined to a listening map keyed by id, so
// entities without plays are dropped; join rows are never filtered.
package catalog

import (
	"errors"
	"fmt"

	"github.com/goccy/go-json"
)

// Sentinel errors.
var (
	// ErrMissingField is returned when a non-null element lacks a required field.
	ErrMissingField = errors.New("missing required field")

	// ErrUnknownPrecision is returned for an album release_date_precision
	// other than year, month or day.
	ErrUnknownPrecision = errors.New("unknown release date precision")

	// ErrMalformedDate is returned when a release date does not have the
	// number of parts its precision implies.
	ErrMalformedDate = errors.New("malformed release date")
)

// Response wrapper keys.
const (
	KeyTracks        = "tracks"
	KeyArtists       = "artists"
	KeyAlbums        = "albums"
	KeyAudioFeatures = "audio_features"
)

// element is one non-null page item with its position for error messages.
type element[T any] struct {
	page  int
	index int
	value *T
}

func (e element[T]) reader(kind string) *fieldReader {
	return &fieldReader{kind: kind, page: e.page, index: e.index}
}

// decodePages decodes the array under key from every page, skipping nulls.
func decodePages[T any](pages [][]byte, key string) ([]element[T], error) {
	var elems []element[T]
	for p, data := range pages {
		var wrapper map[string]json.RawMessage
		if err := json.Unmarshal(data, &wrapper); err != nil {
			return nil, fmt.Errorf("decoding %s page %d: %w", key, p, err)
		}
		raw, ok := wrapper[key]
		if !ok {
			return nil, fmt.Errorf("%w: %s page %d: %q", ErrMissingField, key, p, key)
		}

		var items []*T
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, fmt.Errorf("decoding %s page %d: %w", key, p, err)
		}
		for i, item := range items {
			if item == nil {
				continue
			}
			elems = append(elems, element[T]{page: p, index: i, value: item})
		}
	}
	return elems, nil
}

// fieldReader dereferences required fields, remembering the first missing one.
type fieldReader struct {
	kind  string
	page  int
	index int
	err   error
}

func (r *fieldReader) fail(name string) {
	if r.err == nil {
		r.err = fmt.Errorf("%w: %s page %d element %d: %s", ErrMissingField, r.kind, r.page, r.index, name)
	}
}

func field[T any](r *fieldReader, name string, v *T) T {
	if v == nil {
		r.fail(name)
		var zero T
		return zero
	}
	return *v
}

// externalURLs is the provider's external_urls object.
type externalURLs struct {
	Spotify *string `json:"spotify"`
}

func spotifyURL(r *fieldReader, u *externalURLs) string {
	if u == nil {
		r.fail("external_urls")
		return ""
	}
	return field(r, "external_urls.spotify", u.Spotify)
}

// idRef is a nested object referenced only by id (simplified artist, album).
type idRef struct {
	ID *string `json:"id"`
}

// refIDs returns the ids of a required list of references. Null entries are skipped.
func refIDs(r *fieldReader, name string, refs *[]*idRef) []string {
	if refs == nil {
		r.fail(name)
		return nil
	}
	ids := make([]string, 0, len(*refs))
	for _, ref := range *refs {
		if ref == nil {
			continue
		}
		ids = append(ids, field(r, name+".id", ref.ID))
	}
	return ids
}
