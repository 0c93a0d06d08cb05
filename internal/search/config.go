package search

import "runtime"

// Config holds the recognized search parameters. Zero values are replaced
// by defaults in Normalize, except MissedCleavages and MaxCandidates, whose
// zero values are kept.
type Config struct {
	Enzyme           string  // cleavage rule name
	MissedCleavages  int     // max missed cleavage sites, inclusive
	MinPeptideLength int     // inclusive
	MaxPeptideLength int     // inclusive
	TolerancePPM     float64 // precursor mass window half-width
	SpTopK           int     // candidates retained after preliminary scoring
	MaxCharge        int     // max fragment charge considered
	BinWidth         float64 // preprocessing bin width in Da
	MaxMZ            float64 // upper bound of the bin grid
	Regions          int     // normalization windows
	FDRThreshold     float64 // q-value cutoff
	DecoyFactor      float64 // multiplier on decoy count in FDR
	Workers          int     // worker pool size; 0 means NumCPU
	MaxCandidates    int     // cap on candidates per query; 0 = unlimited
	ReportTopN       int     // PSMs reported per spectrum (best first)
}

// DefaultConfig returns the documented defaults.
func DefaultConfig() Config {
	return Config{
		Enzyme:           "trypsin",
		MissedCleavages:  2,
		MinPeptideLength: 6,
		MaxPeptideLength: 40,
		TolerancePPM:     10.0,
		SpTopK:           500,
		MaxCharge:        2,
		BinWidth:         1.000508,
		MaxMZ:            2000.0,
		Regions:          10,
		FDRThreshold:     0.01,
		DecoyFactor:      2,
		MaxCandidates:    5000,
		ReportTopN:       1,
	}
}

// Normalize fills unset fields with their defaults.
func (c *Config) Normalize() {
	def := DefaultConfig()
	if c.Enzyme == "" {
		c.Enzyme = def.Enzyme
	}
	if c.MinPeptideLength == 0 {
		c.MinPeptideLength = def.MinPeptideLength
	}
	if c.MaxPeptideLength == 0 {
		c.MaxPeptideLength = def.MaxPeptideLength
	}
	if c.TolerancePPM == 0 {
		c.TolerancePPM = def.TolerancePPM
	}
	if c.SpTopK == 0 {
		c.SpTopK = def.SpTopK
	}
	if c.MaxCharge == 0 {
		c.MaxCharge = def.MaxCharge
	}
	if c.BinWidth == 0 {
		c.BinWidth = def.BinWidth
	}
	if c.MaxMZ == 0 {
		c.MaxMZ = def.MaxMZ
	}
	if c.Regions == 0 {
		c.Regions = def.Regions
	}
	if c.FDRThreshold == 0 {
		c.FDRThreshold = def.FDRThreshold
	}
	if c.DecoyFactor == 0 {
		c.DecoyFactor = def.DecoyFactor
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.ReportTopN <= 0 {
		c.ReportTopN = 1
	}
}
