package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonghyeonseol/Glycolamp/internal/glycan"
)

var glycansCmd = &cobra.Command{
	Use:   "glycans",
	Short: "List the glycan composition library",
	Long: `Print the glycan compositions that would be used for a search, with
their monoisotopic masses and structural classes.`,
	RunE: runGlycans,
}

func runGlycans(cmd *cobra.Command, args []string) error {
	glycans := glycan.DefaultLibrary()
	if glycanFile != "" {
		f, err := os.Open(glycanFile)
		if err != nil {
			return fmt.Errorf("failed to open glycan file: %w", err)
		}
		defer f.Close()
		var errs []error
		glycans, errs = glycan.Load(f)
		for _, e := range errs {
			log.Printf("skipping glycan: %v", e)
		}
	}

	fmt.Println("composition\tmass\tclass")
	for _, g := range glycans {
		fmt.Printf("%s\t%.6f\t%s\n", g.Composition, g.Mass, g.Class)
	}

	st := glycan.Stats(glycans)
	fmt.Printf("\nTotal: %d\n", st.Total)
	for _, class := range []string{"HM", "F", "S", "SF", "C/H"} {
		if n := st.ByClass[class]; n > 0 {
			fmt.Printf("  %s: %d\n", class, n)
		}
	}
	return nil
}
