package spotify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
)

// stubFetcher records every request and echoes the ids back as the page.
type stubFetcher struct {
	calls  []string
	failAt int // 1-based call number to fail on, 0 never
}

func (s *stubFetcher) Fetch(_ context.Context, kind Kind, ids string) ([]byte, error) {
	s.calls = append(s.calls, ids)
	if s.failAt == len(s.calls) {
		return nil, errors.New("boom")
	}
	return []byte(kind.Path() + ":" + ids), nil
}

func TestFetchAll(t *testing.T) {
	ids := make([]string, 45)
	for i := range ids {
		ids[i] = fmt.Sprintf("id%02d", i)
	}

	f := &stubFetcher{}
	pages, err := FetchAll(context.Background(), f, Albums, ids, Albums.Limit())
	if err != nil {
		t.Fatalf("FetchAll() error = %v", err)
	}

	if len(pages) != 3 || len(f.calls) != 3 {
		t.Fatalf("got %d pages from %d calls, want 3", len(pages), len(f.calls))
	}
	if n := len(strings.Split(f.calls[2], ",")); n != 5 {
		t.Errorf("last batch has %d ids, want 5", n)
	}
	if !strings.HasPrefix(string(pages[0]), "albums:id00,") {
		t.Errorf("pages[0] = %s", pages[0])
	}
}

func TestFetchAllAbortsOnError(t *testing.T) {
	f := &stubFetcher{failAt: 2}
	_, err := FetchAll(context.Background(), f, Tracks, []string{"a", "b", "c"}, 1)
	if err == nil || !strings.Contains(err.Error(), "tracks 2-2 of 3") {
		t.Fatalf("FetchAll() error = %v, want batch 2 failure", err)
	}
	if len(f.calls) != 2 {
		t.Errorf("made %d calls, want 2", len(f.calls))
	}
}

func TestFetchAllEmpty(t *testing.T) {
	f := &stubFetcher{}
	pages, err := FetchAll(context.Background(), f, Tracks, nil, 50)
	if err != nil {
		t.Fatalf("FetchAll() error = %v", err)
	}
	if len(pages) != 0 || len(f.calls) != 0 {
		t.Errorf("got %d pages and %d calls, want none", len(pages), len(f.calls))
	}
}

func TestFetchAllCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := &stubFetcher{}
	if _, err := FetchAll(ctx, f, Tracks, []string{"a"}, 50); !errors.Is(err, context.Canceled) {
		t.Errorf("FetchAll() error = %v, want context.Canceled", err)
	}
	if len(f.calls) != 0 {
		t.Errorf("made %d calls, want 0", len(f.calls))
	}
}
