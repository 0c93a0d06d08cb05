package score

import (
	"errors"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
)

// ErrNonFinite is returned when the correlation produces a non-finite
// value. On validated inputs this indicates a numerical fault and the run
// must be aborted rather than emit meaningless scores.
var ErrNonFinite = errors.New("cross-correlation produced a non-finite value")

// DefaultLag is the background lag window half-width in bins.
const DefaultLag = 75

// XCorrResult holds the correlation score and its components.
type XCorrResult struct {
	XCorr      float64 // R[0] minus background
	RawAtZero  float64 // R[0]
	Background float64 // mean R over the lag window excluding lags -1..1
}

// XCorrScorer computes cross-correlation scores via FFT. The transform plan
// and scratch buffers are owned by the scorer, so each worker needs its own
// instance; a single scorer must not be shared between goroutines.
type XCorrScorer struct {
	numBins int
	lag     int
	padded  int
	fft     *fourier.FFT

	padV, padT []float64
	coefV      []complex128
	coefT      []complex128
	corr       []float64
}

// NewXCorrScorer builds a scorer for vectors of length numBins with a
// background lag window of +-lag bins. The FFT length is the next power of
// two at least 2*numBins so that circular correlation equals the direct
// correlation over the whole lag window.
func NewXCorrScorer(numBins, lag int) *XCorrScorer {
	padded := 1
	for padded < 2*numBins {
		padded <<= 1
	}
	return &XCorrScorer{
		numBins: numBins,
		lag:     lag,
		padded:  padded,
		fft:     fourier.NewFFT(padded),
		padV:    make([]float64, padded),
		padT:    make([]float64, padded),
		coefV:   make([]complex128, padded/2+1),
		coefT:   make([]complex128, padded/2+1),
		corr:    make([]float64, padded),
	}
}

// Score computes R[tau] = sum over i of v[i]*t[i-tau] for tau in
// [-lag, lag] through the frequency domain, subtracts the mean correlation
// over the window excluding lags {-1, 0, 1}, and returns R[0] minus that
// background.
func (x *XCorrScorer) Score(observed, theoretical []float64) (XCorrResult, error) {
	var res XCorrResult

	copy(x.padV, observed)
	zero(x.padV[len(observed):])
	copy(x.padT, theoretical)
	zero(x.padT[len(theoretical):])

	x.fft.Coefficients(x.coefV, x.padV)
	x.fft.Coefficients(x.coefT, x.padT)

	// Correlation theorem: IFFT(F(v) * conj(F(t)))[tau] = R[tau], with
	// negative lags wrapped to the top of the sequence.
	for k := range x.coefV {
		x.coefV[k] *= cmplx.Conj(x.coefT[k])
	}
	x.fft.Sequence(x.corr, x.coefV)

	// gonum's FFT round trip scales by the sequence length.
	scale := 1.0 / float64(x.padded)

	res.RawAtZero = x.corr[0] * scale

	sum := 0.0
	count := 0
	for tau := -x.lag; tau <= x.lag; tau++ {
		if tau >= -1 && tau <= 1 {
			continue
		}
		idx := tau
		if idx < 0 {
			idx += x.padded
		}
		sum += x.corr[idx] * scale
		count++
	}
	if count > 0 {
		res.Background = sum / float64(count)
	}
	res.XCorr = res.RawAtZero - res.Background

	if math.IsNaN(res.XCorr) || math.IsInf(res.XCorr, 0) {
		return res, ErrNonFinite
	}
	return res, nil
}

func zero(s []float64) {
	for i := range s {
		s[i] = 0
	}
}
