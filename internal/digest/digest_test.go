package digest

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func mustRule(t *testing.T, name string) Rule {
	t.Helper()
	r, err := RuleByName(name)
	if err != nil {
		t.Fatalf("RuleByName(%q): %v", name, err)
	}
	return r
}

func sequences(peptides []Peptide) []string {
	out := make([]string, len(peptides))
	for i, p := range peptides {
		out[i] = p.Sequence
	}
	return out
}

func TestDigestTrypsin(t *testing.T) {
	trypsin := mustRule(t, "trypsin")
	peptides, err := Digest("P1", "MKNGTDEK", trypsin, Options{MinLength: 2, MaxLength: 30})
	if err != nil {
		t.Fatalf("Digest: %v", err)
	}
	want := []string{"MK", "NGTDEK"}
	if diff := cmp.Diff(want, sequences(peptides)); diff != "" {
		t.Fatalf("peptide mismatch (-want +got):\n%s", diff)
	}
	ngtdek := peptides[1]
	if diff := cmp.Diff([]int{1}, ngtdek.Sequons); diff != "" {
		t.Errorf("NGTDEK sequons (-want +got):\n%s", diff)
	}
	if ngtdek.Start != 3 || ngtdek.End != 8 {
		t.Errorf("NGTDEK span = %d..%d, want 3..8", ngtdek.Start, ngtdek.End)
	}
	if ngtdek.MissedCleavages != 0 {
		t.Errorf("NGTDEK missed cleavages = %d, want 0", ngtdek.MissedCleavages)
	}
}

func TestDigestLengthFilter(t *testing.T) {
	trypsin := mustRule(t, "trypsin")
	peptides, err := Digest("P1", "MKNGTDEK", trypsin, Options{MinLength: 3, MaxLength: 30})
	if err != nil {
		t.Fatalf("Digest: %v", err)
	}
	// MK (length 2) falls below the minimum.
	want := []string{"NGTDEK"}
	if diff := cmp.Diff(want, sequences(peptides)); diff != "" {
		t.Errorf("peptide mismatch (-want +got):\n%s", diff)
	}
}

func TestDigestProlineBlock(t *testing.T) {
	trypsin := mustRule(t, "trypsin")
	// K followed by P is not cleaved; K at the end of GKPAR's K..., R is.
	peptides, err := Digest("P1", "GKPARLK", trypsin, Options{MinLength: 1, MaxLength: 30})
	if err != nil {
		t.Fatalf("Digest: %v", err)
	}
	want := []string{"GKPAR", "LK"}
	if diff := cmp.Diff(want, sequences(peptides)); diff != "" {
		t.Errorf("peptide mismatch (-want +got):\n%s", diff)
	}
}

func TestDigestMissedCleavages(t *testing.T) {
	trypsin := mustRule(t, "trypsin")
	peptides, err := Digest("P1", "AKCKDK", trypsin,
		Options{MissedCleavages: 2, MinLength: 1, MaxLength: 30})
	if err != nil {
		t.Fatalf("Digest: %v", err)
	}
	want := []string{"AK", "AKCK", "AKCKDK", "CK", "CKDK", "DK"}
	if diff := cmp.Diff(want, sequences(peptides)); diff != "" {
		t.Errorf("peptide mismatch (-want +got):\n%s", diff)
	}
	// Interior cleavage sites never exceed the missed-cleavage bound.
	for _, p := range peptides {
		if p.MissedCleavages > 2 {
			t.Errorf("%s: missed cleavages %d > 2", p.Sequence, p.MissedCleavages)
		}
	}
}

func TestDigestInvalidResidue(t *testing.T) {
	trypsin := mustRule(t, "trypsin")
	_, err := Digest("P1", "MKXNGTDEK", trypsin, Options{MinLength: 1, MaxLength: 30})
	var ise *InvalidSequenceError
	if !errors.As(err, &ise) {
		t.Fatalf("expected InvalidSequenceError, got %v", err)
	}
	if ise.Position != 3 {
		t.Errorf("error position = %d, want 3", ise.Position)
	}
}

func TestRuleByNameUnknown(t *testing.T) {
	_, err := RuleByName("dispase")
	if !errors.Is(err, ErrUnknownEnzyme) {
		t.Errorf("expected ErrUnknownEnzyme, got %v", err)
	}
}

func TestSequons(t *testing.T) {
	tests := []struct {
		seq  string
		want []int
	}{
		{"NGTDEK", []int{1}},
		{"NPTDEK", nil},       // X == P
		{"NGADEK", nil}, // third residue not S/T
		{"ANGSNGT", []int{2, 5}},
		{"AAANKT", []int{4}},
		{"NN", nil},
	}
	for _, tc := range tests {
		got := Sequons(tc.seq)
		if diff := cmp.Diff(tc.want, got); diff != "" {
			t.Errorf("Sequons(%q) mismatch (-want +got):\n%s", tc.seq, diff)
		}
	}
}

func TestDecoy(t *testing.T) {
	trypsin := mustRule(t, "trypsin")
	peptides, err := Digest("P1", "ACDEFK", trypsin, Options{MinLength: 1, MaxLength: 30})
	if err != nil {
		t.Fatalf("Digest: %v", err)
	}
	target := peptides[0]
	d, ok := Decoy(target)
	if !ok {
		t.Fatal("decoy unexpectedly collapsed onto target")
	}
	if d.Sequence != "AFEDCK" {
		t.Errorf("decoy sequence = %q, want %q", d.Sequence, "AFEDCK")
	}
	if len(d.Sequence) != len(target.Sequence) {
		t.Errorf("decoy length %d != target length %d", len(d.Sequence), len(target.Sequence))
	}
	if math.Abs(d.Mass-target.Mass) > 1e-9 {
		t.Errorf("decoy mass %f != target mass %f", d.Mass, target.Mass)
	}
	if d.Sequence[0] != target.Sequence[0] ||
		d.Sequence[len(d.Sequence)-1] != target.Sequence[len(target.Sequence)-1] {
		t.Error("decoy termini differ from target termini")
	}
	if !strings.HasPrefix(d.ProteinID, DecoyPrefix) {
		t.Errorf("decoy protein id = %q, missing %q prefix", d.ProteinID, DecoyPrefix)
	}
}

func TestDecoySequonsRecomputed(t *testing.T) {
	p := Peptide{Sequence: "NGTAAK", ProteinID: "P1", Mass: 100, Sequons: Sequons("NGTAAK")}
	if len(p.Sequons) != 1 {
		t.Fatalf("target sequons = %v", p.Sequons)
	}
	d, ok := Decoy(p)
	if !ok {
		t.Fatal("decoy collapsed")
	}
	// NGTAAK -> N AATG K: the NGT motif is destroyed.
	if d.Sequence != "NAATGK" {
		t.Fatalf("decoy sequence = %q", d.Sequence)
	}
	if len(d.Sequons) != 0 {
		t.Errorf("decoy sequons = %v, want none", d.Sequons)
	}
}

func TestDecoyPalindromeDropped(t *testing.T) {
	p := Peptide{Sequence: "AGGGK", ProteinID: "P1"}
	if _, ok := Decoy(p); ok {
		t.Error("palindromic interior should collapse and be flagged")
	}
	decoys, dropped := Decoys([]Peptide{p})
	if len(decoys) != 0 || dropped != 1 {
		t.Errorf("Decoys = %d kept, %d dropped; want 0 kept, 1 dropped", len(decoys), dropped)
	}
}

func TestStats(t *testing.T) {
	peptides := []Peptide{
		{Sequence: "NGTDEK", Mass: 100, Sequons: []int{1}},
		{Sequence: "MK", Mass: 50},
		{Sequence: "NGTDEK", Mass: 100, Sequons: []int{1}},
	}
	st := Stats(peptides)
	if st.Total != 3 || st.WithSequons != 2 || st.UniqueSeqs != 2 {
		t.Errorf("Stats = %+v", st)
	}
	if st.MinMass != 50 || st.MaxMass != 100 {
		t.Errorf("mass range = %f..%f", st.MinMass, st.MaxMass)
	}
}
