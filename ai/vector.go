package ai

import "math"

// NormalizeVector scales a vector to unit length in place and returns
// it. Zero vectors are returned unchanged. Stored vectors are always
// normalized, so dot product equals cosine similarity at query time.
func NormalizeVector(vector []float32) []float32 {
	var sumSquares float64
	for _, v := range vector {
		sumSquares += float64(v) * float64(v)
	}
	if sumSquares == 0 {
		return vector
	}

	norm := float32(1.0 / math.Sqrt(sumSquares))
	for i := range vector {
		vector[i] *= norm
	}
	return vector
}

// Similarity computes cosine similarity between two normalized vectors,
// clamped into [0, 1] so downstream boosts never flip a score's sign.
func Similarity(a, b []float32) float32 {
	var sum float32
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		sum += a[i] * b[i]
	}
	if sum < 0 {
		return 0
	}
	if sum > 1 {
		return 1
	}
	return sum
}
