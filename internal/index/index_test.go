package index

import (
	"math"
	"testing"

	"github.com/jonghyeonseol/Glycolamp/internal/digest"
	"github.com/jonghyeonseol/Glycolamp/internal/glycan"
	"github.com/jonghyeonseol/Glycolamp/internal/mass"
)

func testPeptide(seq string, m float64, sequons []int) digest.Peptide {
	return digest.Peptide{Sequence: seq, ProteinID: "P1", Mass: m, Sequons: sequons}
}

func testGlycan(t *testing.T, composition string) glycan.Glycan {
	t.Helper()
	g, err := glycan.Parse(composition)
	if err != nil {
		t.Fatalf("Parse(%q): %v", composition, err)
	}
	return g
}

func TestBuildSkipsSequonFreePeptides(t *testing.T) {
	peptides := []digest.Peptide{
		testPeptide("NGTDEK", 700, []int{1}),
		testPeptide("MK", 200, nil),
	}
	glycans := []glycan.Glycan{testGlycan(t, "H5N2"), testGlycan(t, "H5N4F1A2")}
	ix := Build(peptides, glycans)
	if ix.Len() != 2 {
		t.Errorf("index size = %d, want 2", ix.Len())
	}
}

func TestBuildSorted(t *testing.T) {
	peptides := []digest.Peptide{
		testPeptide("NGTDEK", 700, []int{1}),
		testPeptide("NVSAAK", 600, []int{1}),
	}
	glycans := glycan.DefaultLibrary()
	ix := Build(peptides, glycans)
	for i := 1; i < len(ix.candidates); i++ {
		if ix.candidates[i].Mass < ix.candidates[i-1].Mass {
			t.Fatalf("candidates not sorted at %d", i)
		}
	}
	// Candidate mass equals peptide mass + glycan mass.
	for _, c := range ix.candidates {
		if math.Abs(c.Mass-(c.Peptide.Mass+c.Glycan.Mass)) > 1e-6 {
			t.Fatalf("mass invariant violated: %f vs %f + %f",
				c.Mass, c.Peptide.Mass, c.Glycan.Mass)
		}
	}
}

func TestQueryWindow(t *testing.T) {
	// Peptide mass 1000.5 + glycan H5N4F1A2 gives the candidate mass.
	g := testGlycan(t, "H5N4F1A2")
	peptides := []digest.Peptide{testPeptide("NGTDEK", 1000.5, []int{1})}
	ix := Build(peptides, []glycan.Glycan{g})
	candMass := 1000.5 + g.Mass

	const tol = 10.0
	z := 2

	// Exact match: ppm error approximately zero.
	matches := ix.Query(mass.MZ(candMass, z), z, tol, QueryOptions{})
	if len(matches) != 1 {
		t.Fatalf("exact query: %d matches, want 1", len(matches))
	}
	if math.Abs(matches[0].PPMError) > 1e-6 {
		t.Errorf("exact query ppm = %g, want ~0", matches[0].PPMError)
	}

	// Exactly +10 ppm is at the boundary and must be included.
	mzHigh := mass.MZ(candMass*(1+tol*1e-6), z)
	matches = ix.Query(mzHigh, z, tol, QueryOptions{})
	if len(matches) != 1 {
		t.Fatalf("boundary query: %d matches, want 1", len(matches))
	}
	if math.Abs(matches[0].PPMError-tol) > 1e-6 {
		t.Errorf("boundary ppm = %f, want %f", matches[0].PPMError, tol)
	}

	// Just beyond the boundary must be excluded.
	mzOut := mass.MZ(candMass*(1+10.2e-6), z)
	if got := ix.Query(mzOut, z, tol, QueryOptions{}); len(got) != 0 {
		t.Errorf("out-of-window query: %d matches, want 0", len(got))
	}

	// Same on the low side.
	mzLow := mass.MZ(candMass*(1-tol*1e-6), z)
	matches = ix.Query(mzLow, z, tol, QueryOptions{})
	if len(matches) != 1 {
		t.Fatalf("low boundary query: %d matches, want 1", len(matches))
	}
	if math.Abs(matches[0].PPMError+tol) > 1e-6 {
		t.Errorf("low boundary ppm = %f, want %f", matches[0].PPMError, -tol)
	}
}

func TestQueryMaxCandidates(t *testing.T) {
	// Many peptides at nearly identical mass.
	var peptides []digest.Peptide
	for i := 0; i < 20; i++ {
		m := 1000.0 + float64(i)*1e-4
		peptides = append(peptides, testPeptide("NGTDEK", m, []int{1}))
	}
	g := testGlycan(t, "H5N2")
	ix := Build(peptides, []glycan.Glycan{g})

	target := 1000.0 + g.Mass
	matches := ix.Query(mass.MZ(target, 2), 2, 10.0, QueryOptions{MaxCandidates: 5})
	if len(matches) != 5 {
		t.Fatalf("capped query: %d matches, want 5", len(matches))
	}
	// Closest |ppm| first after capping.
	for i := 1; i < len(matches); i++ {
		if math.Abs(matches[i].PPMError) < math.Abs(matches[i-1].PPMError) {
			t.Errorf("capped matches not ordered by |ppm| at %d", i)
		}
	}
}

func TestEmptyIndex(t *testing.T) {
	ix := Build(nil, glycan.DefaultLibrary())
	if ix.Len() != 0 {
		t.Errorf("index over no peptides has %d candidates", ix.Len())
	}
	ix = Build([]digest.Peptide{testPeptide("MK", 200, nil)}, glycan.DefaultLibrary())
	if ix.Len() != 0 {
		t.Errorf("index over sequon-free peptides has %d candidates", ix.Len())
	}
}
