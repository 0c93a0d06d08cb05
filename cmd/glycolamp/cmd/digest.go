package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonghyeonseol/Glycolamp/internal/digest"
	"github.com/jonghyeonseol/Glycolamp/internal/fasta"
)

var digestCmd = &cobra.Command{
	Use:   "digest",
	Short: "Digest a protein database and report peptide statistics",
	Long: `Digest a FASTA protein database in silico and print statistics about
the resulting peptides, including how many carry N-glycosylation sequons.`,
	RunE: runDigest,
}

func runDigest(cmd *cobra.Command, args []string) error {
	rule, err := digest.RuleByName(enzyme)
	if err != nil {
		return err
	}
	f, err := os.Open(fastaFile)
	if err != nil {
		return fmt.Errorf("failed to open FASTA file: %w", err)
	}
	defer f.Close()

	opts := digest.Options{
		MissedCleavages: missedCleavages,
		MinLength:       minLength,
		MaxLength:       maxLength,
	}

	var peptides []digest.Peptide
	proteinCount := 0
	err = fasta.ForEach(f, func(p fasta.Protein) error {
		proteinCount++
		ps, err := digest.Digest(p.ID, p.Sequence, rule, opts)
		if err != nil {
			log.Printf("skipping protein: %v", err)
			return nil
		}
		peptides = append(peptides, ps...)
		return nil
	})
	if err != nil {
		return err
	}

	st := digest.Stats(peptides)
	fmt.Printf("Proteins: %d\n", proteinCount)
	fmt.Printf("Peptides: %d (%d unique sequences)\n", st.Total, st.UniqueSeqs)
	fmt.Printf("With sequons: %d\n", st.WithSequons)
	if st.Total > 0 {
		fmt.Printf("Mass range: %.2f - %.2f Da\n", st.MinMass, st.MaxMass)
		fmt.Printf("Length range: %d - %d (mean %.1f)\n", st.MinLength, st.MaxLength, st.AverageLength)
	}
	return nil
}
