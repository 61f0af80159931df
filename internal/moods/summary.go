package moods

import (
	"fmt"
	"strings"
	"time"
)

const sampleTrackCount = 3

// FormatSummary returns a human-readable summary of moods, listing up to
// three sample tracks each. names maps track ids to display names; ids
// without a name are printed as is.
func FormatSummary(moods []Mood, names map[string]string) string {
	var sb strings.Builder

	total := 0
	for _, m := range moods {
		total += len(m.TrackIDs)
	}

	if len(moods) == 0 {
		sb.WriteString("No moods found\n")
		return sb.String()
	}

	fmt.Fprintf(&sb, "Found %d %s from %d %s\n",
		len(moods), plural(len(moods), "mood", "moods"), total, plural(total, "track", "tracks"))

	for i, m := range moods {
		sb.WriteString("\n")
		sb.WriteString(formatMood(i+1, m, names))
	}
	return sb.String()
}

func formatMood(num int, m Mood, names map[string]string) string {
	var sb strings.Builder

	listened := (time.Duration(m.MsPlayed) * time.Millisecond).Round(time.Second)
	fmt.Fprintf(&sb, "Mood %d: %s (%d %s, %s listened)\n",
		num, m.Name, len(m.TrackIDs), plural(len(m.TrackIDs), "track", "tracks"), listened)
	fmt.Fprintf(&sb, "  %s\n", m.Description)

	for _, id := range m.TrackIDs[:min(sampleTrackCount, len(m.TrackIDs))] {
		name, ok := names[id]
		if !ok {
			name = id
		}
		fmt.Fprintf(&sb, "  • %q\n", name)
	}

	if remaining := len(m.TrackIDs) - sampleTrackCount; remaining > 0 {
		fmt.Fprintf(&sb, "  ... and %d more\n", remaining)
	}
	return sb.String()
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
