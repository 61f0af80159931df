package moods

// Name describes a centroid with a 2x2 energy/valence quadrant:
//
//   - high energy, high valence: "Upbeat Party"
//   - high energy, low valence:  "Intense & Dark"
//   - low energy, high valence:  "Chill & Happy"
//   - low energy, low valence:   "Reflective & Melancholy"
//
// Acousticness above 0.6 appends " (Acoustic)".
func Name(centroid map[string]float64) string {
	var name string
	switch high, positive := highEnergy(centroid), positiveValence(centroid); {
	case high && positive:
		name = "Upbeat Party"
	case high:
		name = "Intense & Dark"
	case positive:
		name = "Chill & Happy"
	default:
		name = "Reflective & Melancholy"
	}

	if centroid["acousticness"] > 0.6 {
		return name + " (Acoustic)"
	}
	return name
}

// Describe returns a one-line description of a centroid's quadrant.
func Describe(centroid map[string]float64) string {
	switch high, positive := highEnergy(centroid), positiveValence(centroid); {
	case high && positive:
		return "High-energy, positive vibes for dancing and celebrations"
	case high:
		return "Intense, driving energy with darker emotional tones"
	case positive:
		return "Relaxed and uplifting"
	default:
		return "Contemplative and introspective"
	}
}

func highEnergy(c map[string]float64) bool      { return c["energy"] > 0.6 }
func positiveValence(c map[string]float64) bool { return c["valence"] > 0.5 }
