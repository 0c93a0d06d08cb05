// Package score implements the two-stage scoring pipeline: the preliminary
// intensity-weighted shared-peak score (Sp) used to shortlist candidates,
// and the FFT-accelerated cross-correlation score (XCorr) applied to the
// shortlist.
package score

// SpResult is the preliminary score of one candidate against one spectrum.
type SpResult struct {
	Sp      float64
	Matches int
}

// Sp accumulates the observed intensity at every bin where the theoretical
// vector is non-zero: Sp = sum over i of v[i]*t[i], with Matches counting
// bins where both vectors are non-zero. Both vectors must share the grid.
func Sp(observed, theoretical []float64) SpResult {
	var r SpResult
	n := len(observed)
	if len(theoretical) < n {
		n = len(theoretical)
	}
	for i := 0; i < n; i++ {
		t := theoretical[i]
		if t <= 0 {
			continue
		}
		v := observed[i]
		r.Sp += v * t
		if v > 0 {
			r.Matches++
		}
	}
	return r
}
