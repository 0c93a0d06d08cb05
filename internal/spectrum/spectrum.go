// Package spectrum defines the MS/MS spectrum record consumed by the search
// engine and the SEQUEST-style preprocessing that turns a peak list into the
// fixed-length intensity vector used by both scorers.
package spectrum

import (
	"fmt"
	"math"
)

// Spectrum is a single centroided spectrum as delivered by a Source.
// MZ and Intensity are parallel arrays sorted by non-decreasing m/z.
// PrecursorCharge is 0 when the charge is unknown.
type Spectrum struct {
	ScanID          string
	RetentionTime   float64 // seconds
	MSLevel         int
	PrecursorMZ     float64
	PrecursorCharge int
	MZ              []float64
	Intensity       []float64
}

// Source yields spectra one at a time. Next returns nil when the stream is
// exhausted; a non-nil error aborts the run.
type Source interface {
	Next() (*Spectrum, error)
}

// MalformedSpectrumError reports a spectrum that violates the structural
// invariants of the data model.
type MalformedSpectrumError struct {
	ScanID string
	Reason string
}

func (e *MalformedSpectrumError) Error() string {
	return fmt.Sprintf("spectrum %s: %s", e.ScanID, e.Reason)
}

// Validate checks the structural invariants: parallel arrays of equal
// length, finite non-negative values, m/z monotonically non-decreasing.
func (s *Spectrum) Validate() error {
	if len(s.MZ) != len(s.Intensity) {
		return &MalformedSpectrumError{
			ScanID: s.ScanID,
			Reason: fmt.Sprintf("mz/intensity length mismatch: %d vs %d", len(s.MZ), len(s.Intensity)),
		}
	}
	for i := range s.MZ {
		if math.IsNaN(s.MZ[i]) || math.IsInf(s.MZ[i], 0) ||
			math.IsNaN(s.Intensity[i]) || math.IsInf(s.Intensity[i], 0) {
			return &MalformedSpectrumError{
				ScanID: s.ScanID,
				Reason: fmt.Sprintf("non-finite value at peak %d", i),
			}
		}
		if s.MZ[i] < 0 || s.Intensity[i] < 0 {
			return &MalformedSpectrumError{
				ScanID: s.ScanID,
				Reason: fmt.Sprintf("negative value at peak %d", i),
			}
		}
		if i > 0 && s.MZ[i] < s.MZ[i-1] {
			return &MalformedSpectrumError{
				ScanID: s.ScanID,
				Reason: fmt.Sprintf("m/z not sorted at peak %d", i),
			}
		}
	}
	return nil
}
