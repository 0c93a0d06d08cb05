// Package theo predicts the fragment ions of a glycopeptide candidate and
// vectorizes them onto the same bin grid as the observed spectra: b/y
// backbone ions, glycan-stub (Y) ions on the y series, and diagnostic
// oxonium ions gated by the glycan composition.
package theo

import (
	"fmt"

	"github.com/jonghyeonseol/Glycolamp/internal/digest"
	"github.com/jonghyeonseol/Glycolamp/internal/glycan"
	"github.com/jonghyeonseol/Glycolamp/internal/mass"
	"github.com/jonghyeonseol/Glycolamp/internal/spectrum"
)

// Relative intensities per ion family.
const (
	intensityBackbone = 1.0
	intensityStub     = 0.5
	intensityOxonium  = 0.8
)

// Peak is a predicted fragment ion.
type Peak struct {
	MZ        float64
	Intensity float64
	Label     string
	Charge    int
}

// oxonium ions are singly charged diagnostic glycan fragments; each is
// emitted only when the composition contains the species it derives from.
var oxoniumIons = []struct {
	mz    float64
	label string
	gate  func(g *glycan.Glycan) bool
}{
	{204.0867, "oxonium-HexNAc", func(g *glycan.Glycan) bool { return g.HexNAc > 0 }},
	{366.1396, "oxonium-HexNAc-Hex", func(g *glycan.Glycan) bool { return g.HexNAc > 0 && g.Hex > 0 }},
	{163.0601, "oxonium-Hex", func(g *glycan.Glycan) bool { return g.Hex > 0 }},
	{147.0652, "oxonium-Fuc", func(g *glycan.Glycan) bool { return g.Fuc > 0 }},
	{292.1027, "oxonium-NeuAc", func(g *glycan.Glycan) bool { return g.NeuAc > 0 }},
	{512.1972, "oxonium-HexNAc-Hex-Fuc", func(g *glycan.Glycan) bool { return g.HexNAc > 0 && g.Hex > 0 && g.Fuc > 0 }},
	{657.2350, "oxonium-HexNAc-Hex-NeuAc", func(g *glycan.Glycan) bool { return g.HexNAc > 0 && g.Hex > 0 && g.NeuAc > 0 }},
}

// Builder generates theoretical spectra on a fixed grid. It is read-only
// after construction and safe for concurrent use.
type Builder struct {
	MaxCharge int
	BinWidth  float64
	MaxMZ     float64
}

// NewBuilder returns a builder matching the preprocessor grid.
func NewBuilder(maxCharge int, p *spectrum.Preprocessor) *Builder {
	return &Builder{MaxCharge: maxCharge, BinWidth: p.BinWidth, MaxMZ: p.MaxMZ}
}

// Peaks predicts the fragment ion set for a candidate peptide+glycan pair.
func (b *Builder) Peaks(pep *digest.Peptide, gly *glycan.Glycan) []Peak {
	seq := pep.Sequence
	n := len(seq)
	peaks := make([]Peak, 0, 4*n*b.MaxCharge+len(oxoniumIons))

	// Prefix masses for b ions.
	prefix := 0.0
	for i := 0; i < n-1; i++ {
		prefix += mass.Residue[seq[i]]
		for c := 1; c <= b.MaxCharge; c++ {
			peaks = append(peaks, Peak{
				MZ:        (prefix + float64(c)*mass.Proton) / float64(c),
				Intensity: intensityBackbone,
				Label:     fmt.Sprintf("b%d", i+1),
				Charge:    c,
			})
		}
	}

	// Suffix masses for y ions, plus the glycan stub riding on each y ion:
	// the glycan stays attached to the C-terminal fragment.
	suffix := mass.Water
	for i := 0; i < n-1; i++ {
		suffix += mass.Residue[seq[n-1-i]]
		for c := 1; c <= b.MaxCharge; c++ {
			fc := float64(c)
			ymz := (suffix + fc*mass.Proton) / fc
			peaks = append(peaks, Peak{
				MZ:        ymz,
				Intensity: intensityBackbone,
				Label:     fmt.Sprintf("y%d", i+1),
				Charge:    c,
			})
			peaks = append(peaks, Peak{
				MZ:        ymz + gly.Mass/fc,
				Intensity: intensityStub,
				Label:     fmt.Sprintf("Y%d", i+1),
				Charge:    c,
			})
		}
	}

	for _, ox := range oxoniumIons {
		if !ox.gate(gly) {
			continue
		}
		peaks = append(peaks, Peak{
			MZ:        ox.mz,
			Intensity: intensityOxonium,
			Label:     ox.label,
			Charge:    1,
		})
	}

	return peaks
}

// Vector bins a peak set onto the grid, keeping the maximum intensity per
// bin and dropping peaks outside [0, MaxMZ].
func (b *Builder) Vector(peaks []Peak) []float64 {
	// Same bin count as the preprocessor grid: ceil(MaxMZ / BinWidth).
	numBins := ceilDiv(b.MaxMZ, b.BinWidth)
	bins := make([]float64, numBins)
	for _, p := range peaks {
		if p.MZ < 0 || p.MZ > b.MaxMZ {
			continue
		}
		idx := int(p.MZ / b.BinWidth)
		if idx >= numBins {
			idx = numBins - 1
		}
		if p.Intensity > bins[idx] {
			bins[idx] = p.Intensity
		}
	}
	return bins
}

func ceilDiv(x, w float64) int {
	n := int(x / w)
	if float64(n)*w < x {
		n++
	}
	return n
}

// Generate predicts and vectorizes in one step.
func (b *Builder) Generate(pep *digest.Peptide, gly *glycan.Glycan) []float64 {
	return b.Vector(b.Peaks(pep, gly))
}
