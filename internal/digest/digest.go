// Package digest performs in-silico enzymatic digestion of protein sequences
// and annotates the resulting peptides with N-glycosylation sequons
// (the N-X-S/T motif, X != P).
package digest

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jonghyeonseol/Glycolamp/internal/mass"
)

// ErrUnknownEnzyme is returned when a cleavage rule name is not recognized.
var ErrUnknownEnzyme = errors.New("unknown enzyme")

// InvalidSequenceError reports an unsupported residue in a protein sequence.
type InvalidSequenceError struct {
	ProteinID string
	Position  int // 1-based
	Residue   byte
}

func (e *InvalidSequenceError) Error() string {
	return fmt.Sprintf("protein %s: invalid residue %q at position %d",
		e.ProteinID, e.Residue, e.Position)
}

// Rule describes a cleavage rule: cut on the C-terminal side of any residue
// in CleaveAfter, unless the next residue is in BlockNext.
type Rule struct {
	Name        string
	CleaveAfter string
	BlockNext   string
}

// rules is the table of recognized cleavage rules.
var rules = map[string]Rule{
	"trypsin":      {Name: "trypsin", CleaveAfter: "KR", BlockNext: "P"},
	"chymotrypsin": {Name: "chymotrypsin", CleaveAfter: "FWY"},
	"pepsin":       {Name: "pepsin", CleaveAfter: "FL"},
	"lysc":         {Name: "lysc", CleaveAfter: "K"},
	"argc":         {Name: "argc", CleaveAfter: "R"},
	"gluc":         {Name: "gluc", CleaveAfter: "DE"},
}

// RuleByName looks up a cleavage rule by its name (case insensitive).
func RuleByName(name string) (Rule, error) {
	r, ok := rules[strings.ToLower(name)]
	if !ok {
		return Rule{}, fmt.Errorf("%w: %q", ErrUnknownEnzyme, name)
	}
	return r, nil
}

// RuleNames returns the recognized rule names.
func RuleNames() []string {
	return []string{"trypsin", "chymotrypsin", "pepsin", "lysc", "argc", "gluc"}
}

// Peptide is a digestion product. Positions are 1-based and refer to the
// parent protein; Sequons holds the 1-based positions (within the peptide)
// of the N of each N-X-S/T motif.
type Peptide struct {
	Sequence        string
	ProteinID       string
	Start           int
	End             int
	MissedCleavages int
	Mass            float64
	Sequons         []int
}

// HasSequon reports whether the peptide carries at least one
// N-glycosylation sequon.
func (p *Peptide) HasSequon() bool { return len(p.Sequons) > 0 }

// Options bound the digestion products.
type Options struct {
	MissedCleavages int
	MinLength       int
	MaxLength       int
}

// Digest cleaves a protein sequence according to rule and emits every
// peptide with up to opts.MissedCleavages missed cleavage sites whose length
// lies in [MinLength, MaxLength]. The sequence must consist of the 20
// standard amino acids; anything else fails with InvalidSequenceError.
func Digest(proteinID, sequence string, rule Rule, opts Options) ([]Peptide, error) {
	for i := 0; i < len(sequence); i++ {
		if _, ok := mass.Residue[sequence[i]]; !ok {
			return nil, &InvalidSequenceError{
				ProteinID: proteinID,
				Position:  i + 1,
				Residue:   sequence[i],
			}
		}
	}

	sites := cleavageSites(sequence, rule)

	var peptides []Peptide
	for i := 0; i < len(sites)-1; i++ {
		for k := 0; k <= opts.MissedCleavages && i+k+1 < len(sites); k++ {
			start := sites[i]
			end := sites[i+k+1]
			seq := sequence[start:end]
			if len(seq) < opts.MinLength || len(seq) > opts.MaxLength {
				continue
			}
			m, err := mass.Peptide(seq)
			if err != nil {
				// Residues were validated above.
				return nil, err
			}
			peptides = append(peptides, Peptide{
				Sequence:        seq,
				ProteinID:       proteinID,
				Start:           start + 1,
				End:             end,
				MissedCleavages: k,
				Mass:            m,
				Sequons:         Sequons(seq),
			})
		}
	}
	return peptides, nil
}

// cleavageSites returns the ordered cleavage points of sequence under rule,
// including 0 and len(sequence).
func cleavageSites(sequence string, rule Rule) []int {
	sites := []int{0}
	for i := 0; i < len(sequence)-1; i++ {
		if !strings.ContainsRune(rule.CleaveAfter, rune(sequence[i])) {
			continue
		}
		if rule.BlockNext != "" && strings.ContainsRune(rule.BlockNext, rune(sequence[i+1])) {
			continue
		}
		sites = append(sites, i+1)
	}
	sites = append(sites, len(sequence))
	return sites
}

// Sequons returns the 1-based positions of each N-X-S/T motif (X != P)
// in seq.
func Sequons(seq string) []int {
	var sites []int
	for i := 0; i+2 < len(seq); i++ {
		if seq[i] == 'N' && seq[i+1] != 'P' && (seq[i+2] == 'S' || seq[i+2] == 'T') {
			sites = append(sites, i+1)
		}
	}
	return sites
}

// Statistics summarizes a digestion result.
type Statistics struct {
	Total         int
	WithSequons   int
	MinMass       float64
	MaxMass       float64
	MinLength     int
	MaxLength     int
	UniqueSeqs    int
	AverageLength float64
}

// Stats computes summary statistics over a peptide set.
func Stats(peptides []Peptide) Statistics {
	var st Statistics
	st.Total = len(peptides)
	if len(peptides) == 0 {
		return st
	}
	st.MinMass = peptides[0].Mass
	st.MaxMass = peptides[0].Mass
	st.MinLength = len(peptides[0].Sequence)
	st.MaxLength = len(peptides[0].Sequence)
	seen := make(map[string]struct{}, len(peptides))
	lenSum := 0
	for i := range peptides {
		p := &peptides[i]
		if p.HasSequon() {
			st.WithSequons++
		}
		if p.Mass < st.MinMass {
			st.MinMass = p.Mass
		}
		if p.Mass > st.MaxMass {
			st.MaxMass = p.Mass
		}
		n := len(p.Sequence)
		if n < st.MinLength {
			st.MinLength = n
		}
		if n > st.MaxLength {
			st.MaxLength = n
		}
		lenSum += n
		seen[p.Sequence] = struct{}{}
	}
	st.UniqueSeqs = len(seen)
	st.AverageLength = float64(lenSum) / float64(len(peptides))
	return st
}
