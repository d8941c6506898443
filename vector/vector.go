// Package vector provides the similarity arithmetic shared by the storage
// backends and the retriever.
package vector

import "math"

// Cosine returns the cosine similarity of a and b in [-1, 1].
// It returns 0 when either vector has zero norm or the lengths differ.
func Cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}
	if normA == 0 || normB == 0 {
		return 0
	}

	sim := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	// Guard against rounding just outside the range.
	return math.Max(-1, math.Min(1, sim))
}

// Score converts a cosine similarity to a relevance score in [0, 1].
// Negative similarities score 0.
func Score(sim float64) float32 {
	if sim <= 0 || math.IsNaN(sim) {
		return 0
	}
	if sim > 1 {
		return 1
	}
	return float32(sim)
}

// Normalize returns a unit-length copy of v.
// Zero vectors are returned as a zero vector of the same length.
func Normalize(v []float32) []float32 {
	if len(v) == 0 {
		return v
	}

	var magnitude float64
	for _, val := range v {
		magnitude += float64(val) * float64(val)
	}
	magnitude = math.Sqrt(magnitude)

	result := make([]float32, len(v))
	if magnitude == 0 {
		return result
	}
	for i, val := range v {
		result[i] = float32(float64(val) / magnitude)
	}
	return result
}
