// Package batch partitions id lists into provider-sized request batches.
package batch

import (
	"errors"
	"iter"
	"strings"
)

// Spotify "several items" endpoint limits.
const (
	AlbumLimit         = 20
	TrackLimit         = 50
	ArtistLimit        = 50
	AudioFeaturesLimit = 100
)

// ErrInvalidSize is returned for a batch size below one.
var ErrInvalidSize = errors.New("batch size must be positive")

// Batch is one contiguous group of ids submitted in a single request.
type Batch struct {
	Index int      // zero-based position in the plan
	Start int      // offset of IDs[0] in the planned sequence
	IDs   []string // shares memory with the planned slice
}

// Query renders the ids as a comma-joined request parameter.
func (b Batch) Query() string {
	return strings.Join(b.IDs, ",")
}

// End returns the offset just past the last id of the batch.
func (b Batch) End() int {
	return b.Start + len(b.IDs)
}

// Count returns the number of batches Plan yields: ceil(n/size).
func Count(n, size int) (int, error) {
	if size <= 0 {
		return 0, ErrInvalidSize
	}
	return (n + size - 1) / size, nil
}

// Plan yields successive batches of at most size ids, in input order.
// The sequence is lazy and may be ranged over any number of times.
// A non-positive size yields nothing; check it with Count first.
func Plan(ids []string, size int) iter.Seq[Batch] {
	return func(yield func(Batch) bool) {
		if size <= 0 {
			return
		}
		for i, start := 0, 0; start < len(ids); i, start = i+1, start+size {
			end := min(start+size, len(ids))
			if !yield(Batch{Index: i, Start: start, IDs: ids[start:end]}) {
				return
			}
		}
	}
}
