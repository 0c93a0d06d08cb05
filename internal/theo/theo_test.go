package theo

import (
	"math"
	"strings"
	"testing"

	"github.com/jonghyeonseol/Glycolamp/internal/digest"
	"github.com/jonghyeonseol/Glycolamp/internal/glycan"
	"github.com/jonghyeonseol/Glycolamp/internal/mass"
	"github.com/jonghyeonseol/Glycolamp/internal/spectrum"
)

func testCandidate(t *testing.T, seq, composition string) (*digest.Peptide, *glycan.Glycan) {
	t.Helper()
	m, err := mass.Peptide(seq)
	if err != nil {
		t.Fatalf("mass.Peptide(%q): %v", seq, err)
	}
	pep := &digest.Peptide{Sequence: seq, ProteinID: "P1", Mass: m, Sequons: digest.Sequons(seq)}
	g, err := glycan.Parse(composition)
	if err != nil {
		t.Fatalf("glycan.Parse(%q): %v", composition, err)
	}
	return pep, &g
}

func findPeak(peaks []Peak, label string, charge int) (Peak, bool) {
	for _, p := range peaks {
		if p.Label == label && p.Charge == charge {
			return p, true
		}
	}
	return Peak{}, false
}

func TestBackboneIons(t *testing.T) {
	b := NewBuilder(2, spectrum.NewPreprocessor())
	pep, gly := testCandidate(t, "NGTK", "H5N2")
	peaks := b.Peaks(pep, gly)

	// b1 at charge 1: N residue + proton.
	b1, ok := findPeak(peaks, "b1", 1)
	if !ok {
		t.Fatal("b1 missing")
	}
	want := mass.Residue['N'] + mass.Proton
	if math.Abs(b1.MZ-want) > 1e-9 {
		t.Errorf("b1 m/z = %f, want %f", b1.MZ, want)
	}

	// y2 at charge 2: (water + T + K + 2 protons) / 2.
	y2, ok := findPeak(peaks, "y2", 2)
	if !ok {
		t.Fatal("y2 missing")
	}
	want = (mass.Water + mass.Residue['T'] + mass.Residue['K'] + 2*mass.Proton) / 2
	if math.Abs(y2.MZ-want) > 1e-9 {
		t.Errorf("y2 m/z = %f, want %f", y2.MZ, want)
	}

	// No b4/y4 for a length-4 peptide.
	if _, ok := findPeak(peaks, "b4", 1); ok {
		t.Error("unexpected b4 ion")
	}
	if _, ok := findPeak(peaks, "y4", 1); ok {
		t.Error("unexpected y4 ion")
	}

	// b/y intensity is 1.0.
	if b1.Intensity != 1.0 || y2.Intensity != 1.0 {
		t.Errorf("backbone intensities = %f, %f, want 1.0", b1.Intensity, y2.Intensity)
	}
}

func TestStubIons(t *testing.T) {
	b := NewBuilder(2, spectrum.NewPreprocessor())
	pep, gly := testCandidate(t, "NGTK", "H5N2")
	peaks := b.Peaks(pep, gly)

	y1, ok := findPeak(peaks, "y1", 1)
	if !ok {
		t.Fatal("y1 missing")
	}
	stub, ok := findPeak(peaks, "Y1", 1)
	if !ok {
		t.Fatal("Y1 stub missing")
	}
	if math.Abs(stub.MZ-(y1.MZ+gly.Mass)) > 1e-9 {
		t.Errorf("Y1 m/z = %f, want y1 + glycan = %f", stub.MZ, y1.MZ+gly.Mass)
	}
	if stub.Intensity != 0.5 {
		t.Errorf("stub intensity = %f, want 0.5", stub.Intensity)
	}

	// Charge-2 stub carries g/2.
	y1z2, _ := findPeak(peaks, "y1", 2)
	stubz2, ok := findPeak(peaks, "Y1", 2)
	if !ok {
		t.Fatal("Y1 charge-2 stub missing")
	}
	if math.Abs(stubz2.MZ-(y1z2.MZ+gly.Mass/2)) > 1e-9 {
		t.Errorf("Y1^2 m/z = %f, want %f", stubz2.MZ, y1z2.MZ+gly.Mass/2)
	}

	// No stub family on the b series.
	for _, p := range peaks {
		if strings.HasPrefix(p.Label, "b") && p.Intensity == 0.5 {
			t.Fatalf("unexpected stub on b series: %+v", p)
		}
	}
}

func TestOxoniumGating(t *testing.T) {
	b := NewBuilder(2, spectrum.NewPreprocessor())

	tests := []struct {
		composition string
		present     []string
		absent      []string
	}{
		{"H5N2",
			[]string{"oxonium-HexNAc", "oxonium-Hex", "oxonium-HexNAc-Hex"},
			[]string{"oxonium-Fuc", "oxonium-NeuAc", "oxonium-HexNAc-Hex-Fuc", "oxonium-HexNAc-Hex-NeuAc"}},
		{"H5N4F1A2",
			[]string{"oxonium-HexNAc", "oxonium-Hex", "oxonium-Fuc", "oxonium-NeuAc",
				"oxonium-HexNAc-Hex", "oxonium-HexNAc-Hex-Fuc", "oxonium-HexNAc-Hex-NeuAc"},
			nil},
		{"H5N4F1",
			[]string{"oxonium-Fuc", "oxonium-HexNAc-Hex-Fuc"},
			[]string{"oxonium-NeuAc", "oxonium-HexNAc-Hex-NeuAc"}},
	}
	for _, tc := range tests {
		pep, gly := testCandidate(t, "NGTK", tc.composition)
		peaks := b.Peaks(pep, gly)
		for _, label := range tc.present {
			p, ok := findPeak(peaks, label, 1)
			if !ok {
				t.Errorf("%s: %s missing", tc.composition, label)
				continue
			}
			if p.Intensity != 0.8 {
				t.Errorf("%s: %s intensity = %f, want 0.8", tc.composition, label, p.Intensity)
			}
		}
		for _, label := range tc.absent {
			if _, ok := findPeak(peaks, label, 1); ok {
				t.Errorf("%s: %s should not be emitted", tc.composition, label)
			}
		}
	}
}

func TestVector(t *testing.T) {
	p := spectrum.NewPreprocessor()
	b := NewBuilder(2, p)
	pep, gly := testCandidate(t, "NGTK", "H5N2")
	vec := b.Vector(b.Peaks(pep, gly))

	if len(vec) != p.NumBins() {
		t.Fatalf("vector length = %d, want %d", len(vec), p.NumBins())
	}

	// The HexNAc oxonium lands at bin floor(204.0867/1.000508).
	oxBin := int(204.0867 / p.BinWidth)
	if vec[oxBin] != 0.8 {
		t.Errorf("oxonium bin %d = %f, want 0.8", oxBin, vec[oxBin])
	}

	// Max-in-bin: place a backbone and a stub ion in the same bin by hand.
	peaks := []Peak{
		{MZ: 300.2, Intensity: 0.5, Label: "Y1", Charge: 1},
		{MZ: 300.4, Intensity: 1.0, Label: "b2", Charge: 1},
	}
	vec = b.Vector(peaks)
	if got := vec[int(300.2/p.BinWidth)]; got != 1.0 {
		t.Errorf("shared bin = %f, want max 1.0", got)
	}

	// Out-of-range peaks are dropped.
	vec = b.Vector([]Peak{{MZ: 2500.0, Intensity: 1.0}})
	for i, v := range vec {
		if v != 0 {
			t.Fatalf("bin %d = %f after out-of-range peak", i, v)
		}
	}
}
