package optimization

import (
	"sort"
)

// ProjectSimplex returns the Euclidean projection of v onto
// {w : w >= 0, Σw = 1}. Every entry of the result is in [0, 1].
func ProjectSimplex(v []float64) []float64 {
	n := len(v)
	u := make([]float64, n)
	copy(u, v)
	sort.Sort(sort.Reverse(sort.Float64Slice(u)))

	var cum, theta float64
	for i, ui := range u {
		cum += ui
		t := (cum - 1) / float64(i+1)
		if ui-t > 0 {
			theta = t
		}
	}

	w := make([]float64, n)
	for i, vi := range v {
		if d := vi - theta; d > 0 {
			w[i] = d
		}
	}
	return w
}
