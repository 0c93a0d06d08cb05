package spectrum

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Grid defaults; the bin width avoids systematic binning error against the
// spacing of peptide isotopes.
const (
	DefaultBinWidth   = 1.000508
	DefaultMaxMZ      = 2000.0
	DefaultRegions    = 10
	precursorWindowDa = 15.0
	regionTargetMax   = 50.0
)

// Preprocessor bins, reshapes and regionally normalizes spectra onto a
// fixed grid. It is stateless apart from its configuration and safe for
// concurrent use.
type Preprocessor struct {
	BinWidth float64
	MaxMZ    float64
	Regions  int
}

// NewPreprocessor returns a preprocessor with the default grid.
func NewPreprocessor() *Preprocessor {
	return &Preprocessor{
		BinWidth: DefaultBinWidth,
		MaxMZ:    DefaultMaxMZ,
		Regions:  DefaultRegions,
	}
}

// NumBins is the length of the produced vectors.
func (p *Preprocessor) NumBins() int {
	return int(math.Ceil(p.MaxMZ / p.BinWidth))
}

// Bin maps an m/z value to its bin index, clipped to the grid.
func (p *Preprocessor) Bin(mz float64) int {
	idx := int(mz / p.BinWidth)
	if idx < 0 {
		return 0
	}
	if n := p.NumBins(); idx >= n {
		return n - 1
	}
	return idx
}

// Processed is the fixed-length intensity vector derived from a spectrum,
// keeping the scan identity and precursor metadata for downstream scoring.
type Processed struct {
	ScanID          string
	PrecursorMZ     float64
	PrecursorCharge int
	Bins            []float64
}

// Process applies, in order: peak filtering (non-positive intensity, out of
// grid range, within ±15 Da of the precursor), intensity accumulation into
// bins, square-root reshaping, and regional max normalization to 50. A
// spectrum whose peaks are all filtered out yields the all-zero vector; the
// caller decides whether to skip scoring.
func (p *Preprocessor) Process(s *Spectrum) (*Processed, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	numBins := p.NumBins()
	bins := make([]float64, numBins)

	for i := range s.MZ {
		mz, intensity := s.MZ[i], s.Intensity[i]
		if intensity <= 0 || mz < 0 || mz > p.MaxMZ {
			continue
		}
		if s.PrecursorMZ > 0 && math.Abs(mz-s.PrecursorMZ) <= precursorWindowDa {
			continue
		}
		bins[p.Bin(mz)] += intensity
	}

	for i := range bins {
		bins[i] = math.Sqrt(bins[i])
	}

	p.normalizeRegions(bins)

	return &Processed{
		ScanID:          s.ScanID,
		PrecursorMZ:     s.PrecursorMZ,
		PrecursorCharge: s.PrecursorCharge,
		Bins:            bins,
	}, nil
}

// normalizeRegions scales each of the Regions equal windows so its maximum
// becomes 50; all-zero windows are left untouched. The last window absorbs
// the division remainder.
func (p *Preprocessor) normalizeRegions(bins []float64) {
	size := len(bins) / p.Regions
	if size == 0 {
		size = len(bins)
	}
	for r := 0; r < p.Regions; r++ {
		start := r * size
		end := start + size
		if r == p.Regions-1 || end > len(bins) {
			end = len(bins)
		}
		if start >= end {
			break
		}
		region := bins[start:end]
		max := floats.Max(region)
		if max > 0 {
			floats.Scale(regionTargetMax/max, region)
		}
	}
}
