package digest

// DecoyPrefix marks decoy protein identifiers.
const DecoyPrefix = "DECOY_"

// Decoy produces the terminus-preserving reversed decoy of a target peptide:
// the first and last residues stay in place (preserving the enzymatic
// terminus) and the interior is reversed. Mass and length are unchanged.
// The sequon set is recomputed on the decoy sequence, never copied.
//
// The second return value is false when the decoy collapses onto the target
// sequence (interior palindromes); such decoys must not be searched because
// they would violate target/decoy disjointness.
func Decoy(target Peptide) (Peptide, bool) {
	seq := []byte(target.Sequence)
	if len(seq) > 3 {
		for i, j := 1, len(seq)-2; i < j; i, j = i+1, j-1 {
			seq[i], seq[j] = seq[j], seq[i]
		}
	}
	decoySeq := string(seq)
	d := Peptide{
		Sequence:        decoySeq,
		ProteinID:       DecoyPrefix + target.ProteinID,
		Start:           target.Start,
		End:             target.End,
		MissedCleavages: target.MissedCleavages,
		Mass:            target.Mass,
		Sequons:         Sequons(decoySeq),
	}
	return d, decoySeq != target.Sequence
}

// Decoys maps a target peptide set to its decoy set, dropping decoys that
// collapse onto their targets. The returned count of dropped palindromes is
// reported in the run summary.
func Decoys(targets []Peptide) ([]Peptide, int) {
	decoys := make([]Peptide, 0, len(targets))
	dropped := 0
	for i := range targets {
		d, ok := Decoy(targets[i])
		if !ok {
			dropped++
			continue
		}
		decoys = append(decoys, d)
	}
	return decoys, dropped
}
