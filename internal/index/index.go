// Package index builds the searchable glycopeptide candidate index: the
// Cartesian product of sequon-bearing peptides and glycan compositions,
// sorted by neutral mass for O(log n + k) precursor window queries.
package index

import (
	"errors"
	"sort"

	"github.com/jonghyeonseol/Glycolamp/internal/digest"
	"github.com/jonghyeonseol/Glycolamp/internal/glycan"
	"github.com/jonghyeonseol/Glycolamp/internal/mass"
)

// ErrEmptyIndex is returned when the index holds no candidates at search
// start: either no peptide carries a sequon or the glycan library is empty.
var ErrEmptyIndex = errors.New("candidate index is empty")

// Candidate pairs a sequon-bearing peptide with a glycan composition.
// Mass is the precomputed neutral mass peptide + glycan.
type Candidate struct {
	Mass    float64
	Peptide *digest.Peptide
	Glycan  *glycan.Glycan
}

// Match is a candidate returned from a window query, annotated with its
// signed ppm error relative to the observed neutral mass.
type Match struct {
	*Candidate
	PPMError float64
}

// Index is immutable after Build; concurrent queries are safe.
type Index struct {
	candidates []Candidate
}

// Build constructs the index from peptides and glycans. Peptides without a
// sequon are skipped. Candidates with equal mass keep their insertion order.
func Build(peptides []digest.Peptide, glycans []glycan.Glycan) *Index {
	n := 0
	for i := range peptides {
		if peptides[i].HasSequon() {
			n++
		}
	}
	candidates := make([]Candidate, 0, n*len(glycans))
	for i := range peptides {
		p := &peptides[i]
		if !p.HasSequon() {
			continue
		}
		for j := range glycans {
			g := &glycans[j]
			candidates = append(candidates, Candidate{
				Mass:    p.Mass + g.Mass,
				Peptide: p,
				Glycan:  g,
			})
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Mass < candidates[j].Mass
	})
	return &Index{candidates: candidates}
}

// Len returns the number of candidates in the index.
func (ix *Index) Len() int { return len(ix.candidates) }

// QueryOptions tune a window query.
type QueryOptions struct {
	// MaxCandidates caps the number of returned matches; 0 means unlimited.
	// When the cap applies, the matches with the smallest |ppm| are kept.
	MaxCandidates int
}

// boundarySlack (in ppm) keeps candidates sitting exactly on the tolerance
// boundary inside the window despite floating-point rounding.
const boundarySlack = 1e-9

// Query returns every candidate whose |ppm error| against the neutral mass
// of (mz, z) is at most tolPPM. The window bounds follow from
// |M - m|/m <= t: masses in [M/(1+t), M/(1-t)], located with two binary
// searches.
func (ix *Index) Query(mz float64, z int, tolPPM float64, opts QueryOptions) []Match {
	observed := mass.Neutral(mz, z)
	t := tolPPM * 1e-6
	lo := observed / (1 + t) * (1 - 1e-12)
	hi := observed / (1 - t) * (1 + 1e-12)

	i1 := sort.Search(len(ix.candidates), func(i int) bool {
		return ix.candidates[i].Mass >= lo
	})
	i2 := sort.Search(len(ix.candidates), func(i int) bool {
		return ix.candidates[i].Mass > hi
	})

	matches := make([]Match, 0, i2-i1)
	for i := i1; i < i2; i++ {
		c := &ix.candidates[i]
		ppm := mass.PPMError(observed, c.Mass)
		if ppm < -tolPPM-boundarySlack || ppm > tolPPM+boundarySlack {
			continue
		}
		matches = append(matches, Match{Candidate: c, PPMError: ppm})
	}
	if opts.MaxCandidates > 0 && len(matches) > opts.MaxCandidates {
		sort.SliceStable(matches, func(i, j int) bool {
			return abs(matches[i].PPMError) < abs(matches[j].PPMError)
		})
		matches = matches[:opts.MaxCandidates]
	}
	return matches
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

// Statistics describes the size of the index.
type Statistics struct {
	Candidates     int
	SequonPeptides int
	Glycans        int
	MemoryEstimate int // bytes, records only
}

// Stats reports index size information.
func Stats(ix *Index, peptides []digest.Peptide, glycans []glycan.Glycan) Statistics {
	st := Statistics{
		Candidates:     ix.Len(),
		Glycans:        len(glycans),
		MemoryEstimate: ix.Len() * 24,
	}
	for i := range peptides {
		if peptides[i].HasSequon() {
			st.SequonPeptides++
		}
	}
	return st
}
