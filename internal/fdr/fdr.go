// Package fdr turns per-spectrum best scores from parallel target and decoy
// searches into false-discovery-rate estimates and monotone q-values.
package fdr

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// PSM is a peptide-spectrum match: one candidate scored against one
// spectrum. QValue is assigned by Assign after the whole run completes.
type PSM struct {
	ScanID          string
	PeptideSequence string
	ProteinID       string
	GlycanComp      string
	GlycanClass     string
	Charge          int
	PrecursorMZ     float64
	Sp              float64
	SpMatches       int
	XCorr           float64
	PPMError        float64
	IsDecoy         bool
	QValue          float64
}

// Assign sorts the PSMs by decreasing XCorr, walks the list accumulating
// target and decoy counts, computes FDR = factor*D/(T+D) at each position
// (capped at 1), and assigns q-values as the running minimum FDR from the
// low-score end. Tied scores receive identical q-values. The input slice is
// sorted in place and returned.
//
// factor is the multiplier on the decoy count: 2 for the standard
// concatenated target-decoy competition with equal-size libraries, 1 for a
// pooled search.
func Assign(psms []*PSM, factor float64) []*PSM {
	if len(psms) == 0 {
		return psms
	}
	sort.SliceStable(psms, func(i, j int) bool {
		return psms[i].XCorr > psms[j].XCorr
	})

	fdrs := make([]float64, len(psms))
	targets, decoys := 0, 0
	for i, p := range psms {
		if p.IsDecoy {
			decoys++
		} else {
			targets++
		}
		total := targets + decoys
		f := 0.0
		if total > 0 {
			f = factor * float64(decoys) / float64(total)
		}
		if f > 1 {
			f = 1
		}
		fdrs[i] = f
	}

	// Monotone minimum from the right.
	minFDR := 1.0
	for i := len(psms) - 1; i >= 0; i-- {
		if fdrs[i] < minFDR {
			minFDR = fdrs[i]
		}
		psms[i].QValue = minFDR
	}

	// Ties share the q-value of the best-placed member of the tie group.
	for i := 1; i < len(psms); i++ {
		if psms[i].XCorr == psms[i-1].XCorr {
			psms[i].QValue = psms[i-1].QValue
		}
	}

	return psms
}

// Filter returns the target PSMs whose q-value is at most threshold.
// Assign must have run first.
func Filter(psms []*PSM, threshold float64) []*PSM {
	var out []*PSM
	for _, p := range psms {
		if !p.IsDecoy && p.QValue <= threshold {
			out = append(out, p)
		}
	}
	return out
}

// Statistics summarizes the score distributions of a completed run.
type Statistics struct {
	Total            int
	Targets          int
	Decoys           int
	AcceptedAt       map[float64]int // threshold -> accepted target count
	TargetXCorrMean  float64
	TargetXCorrP50   float64
	DecoyXCorrMean   float64
	DecoyXCorrP50    float64
}

// reportThresholds are the FDR cutoffs reported in the run summary.
var reportThresholds = []float64{0.001, 0.01, 0.05, 0.10}

// Stats computes summary statistics over assigned PSMs.
func Stats(psms []*PSM) Statistics {
	st := Statistics{AcceptedAt: make(map[float64]int)}
	var targetScores, decoyScores []float64
	for _, p := range psms {
		if p.IsDecoy {
			decoyScores = append(decoyScores, p.XCorr)
		} else {
			targetScores = append(targetScores, p.XCorr)
		}
	}
	st.Total = len(psms)
	st.Targets = len(targetScores)
	st.Decoys = len(decoyScores)
	for _, thr := range reportThresholds {
		st.AcceptedAt[thr] = len(Filter(psms, thr))
	}
	if len(targetScores) > 0 {
		st.TargetXCorrMean = stat.Mean(targetScores, nil)
		sort.Float64s(targetScores)
		st.TargetXCorrP50 = stat.Quantile(0.5, stat.Empirical, targetScores, nil)
	}
	if len(decoyScores) > 0 {
		st.DecoyXCorrMean = stat.Mean(decoyScores, nil)
		sort.Float64s(decoyScores)
		st.DecoyXCorrP50 = stat.Quantile(0.5, stat.Empirical, decoyScores, nil)
	}
	return st
}
