package batch

import (
	"errors"
	"fmt"
	"slices"
	"testing"
)

func makeIDs(n int) []string {
	ids := make([]string, n)
	for i := range ids {
		ids[i] = fmt.Sprintf("id%03d", i)
	}
	return ids
}

func TestPlanPartition(t *testing.T) {
	tests := []struct {
		name        string
		totalIDs    int
		size        int
		wantBatches int
	}{
		{"empty", 0, 50, 0},
		{"single id", 1, 50, 1},
		{"less than limit", 19, 20, 1},
		{"exactly limit", 50, 50, 1},
		{"one over limit", 101, 100, 2},
		{"exactly double", 200, 100, 2},
		{"ragged tail", 250, 100, 3},
		{"size one", 7, 1, 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ids := makeIDs(tt.totalIDs)

			var got []string
			batches := 0
			for b := range Plan(ids, tt.size) {
				if b.Index != batches {
					t.Errorf("batch index = %d, want %d", b.Index, batches)
				}
				if len(b.IDs) == 0 || len(b.IDs) > tt.size {
					t.Errorf("batch %d has %d ids, want 1..%d", b.Index, len(b.IDs), tt.size)
				}
				if b.Start != len(got) {
					t.Errorf("batch %d start = %d, want %d", b.Index, b.Start, len(got))
				}
				got = append(got, b.IDs...)
				batches++
			}

			if batches != tt.wantBatches {
				t.Errorf("got %d batches, want %d", batches, tt.wantBatches)
			}
			if n, _ := Count(tt.totalIDs, tt.size); n != batches {
				t.Errorf("Count() = %d, Plan yielded %d", n, batches)
			}
			if !slices.Equal(got, ids) {
				t.Errorf("concatenated batches differ from input")
			}
		})
	}
}

func TestPlanPreservesDuplicates(t *testing.T) {
	ids := []string{"a", "b", "a", "c", "a"}

	var got []string
	for b := range Plan(ids, 2) {
		got = append(got, b.IDs...)
	}

	if !slices.Equal(got, ids) {
		t.Errorf("got %v, want %v", got, ids)
	}
}

func TestPlanRestartable(t *testing.T) {
	seq := Plan(makeIDs(5), 2)

	var first, second []string
	for b := range seq {
		first = append(first, b.Query())
	}
	for b := range seq {
		second = append(second, b.Query())
	}

	if !slices.Equal(first, second) {
		t.Errorf("second pass = %v, want %v", second, first)
	}
}

func TestPlanStopsEarly(t *testing.T) {
	seen := 0
	for range Plan(makeIDs(10), 3) {
		seen++
		if seen == 2 {
			break
		}
	}
	if seen != 2 {
		t.Errorf("seen = %d, want 2", seen)
	}
}

func TestBatchQuery(t *testing.T) {
	tests := []struct {
		name string
		ids  []string
		want string
	}{
		{"single", []string{"4uLU6hMCjMI75M1A2tKUQC"}, "4uLU6hMCjMI75M1A2tKUQC"},
		{"several", []string{"a", "b", "c"}, "a,b,c"},
		{"empty", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := (Batch{IDs: tt.ids}).Query(); got != tt.want {
				t.Errorf("Query() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestInvalidSize(t *testing.T) {
	if _, err := Count(10, 0); !errors.Is(err, ErrInvalidSize) {
		t.Errorf("Count() error = %v, want ErrInvalidSize", err)
	}

	for range Plan(makeIDs(3), -1) {
		t.Fatal("Plan yielded a batch for a negative size")
	}
}
