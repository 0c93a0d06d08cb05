// Package cmd provides the CLI command implementations.
package cmd

import (
	"github.com/spf13/cobra"
)

var (
	// Shared database/digestion flags
	fastaFile       string
	glycanFile      string
	enzyme          string
	missedCleavages int
	minLength       int
	maxLength       int

	// Search flags
	mzmlFile     string
	outputFile   string
	cacheFile    string
	tolerancePPM float64
	spTopK       int
	maxCharge    int
	binWidth     float64
	maxMZ        float64
	regions      int
	fdrThreshold float64
	decoyFactor  float64
	workers      int
	minPeaks     int
	reportTopN   int
	quiet        bool
)

var rootCmd = &cobra.Command{
	Use:   "glycolamp",
	Short: "Glycolamp - intact N-glycopeptide identification from MS/MS spectra",
	Long: `Glycolamp identifies intact N-linked glycopeptides from tandem mass
spectra. It digests a protein database in silico, pairs sequon-bearing
peptides with a glycan composition library, scores each MS/MS spectrum
against the matching candidates (preliminary shared-peak score followed by
FFT cross-correlation) and reports peptide+glycan assignments qualified by
target-decoy q-values.`,
	Version:       "1.0.0",
	SilenceUsage:  true,
	SilenceErrors: false,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(digestCmd)
	rootCmd.AddCommand(glycansCmd)

	for _, c := range []*cobra.Command{searchCmd, digestCmd} {
		c.Flags().StringVarP(&fastaFile, "fasta", "f", "", "Protein database in FASTA format (required)")
		c.Flags().StringVar(&enzyme, "enzyme", "trypsin", "Cleavage rule: trypsin, chymotrypsin, pepsin, lysc, argc, gluc")
		c.Flags().IntVar(&missedCleavages, "missed-cleavages", 2, "Maximum missed cleavage sites")
		c.Flags().IntVar(&minLength, "min-length", 6, "Minimum peptide length")
		c.Flags().IntVar(&maxLength, "max-length", 40, "Maximum peptide length")
		c.MarkFlagRequired("fasta")
	}

	searchCmd.Flags().StringVarP(&mzmlFile, "mzml", "i", "", "MS/MS spectra in mzML format (required)")
	searchCmd.Flags().StringVarP(&outputFile, "out", "o", "", "Output TSV file (default: stdout)")
	searchCmd.Flags().StringVar(&glycanFile, "glycans", "", "Glycan composition file, one per line (default: built-in library)")
	searchCmd.Flags().StringVar(&cacheFile, "cache", "", "SQLite file caching digestion results between runs")
	searchCmd.Flags().Float64Var(&tolerancePPM, "tolerance", 10.0, "Precursor mass tolerance in ppm")
	searchCmd.Flags().IntVar(&spTopK, "sp-top-k", 500, "Candidates kept after preliminary scoring")
	searchCmd.Flags().IntVar(&maxCharge, "max-charge", 2, "Maximum fragment charge")
	searchCmd.Flags().Float64Var(&binWidth, "bin-width", 1.000508, "Spectrum bin width in Da")
	searchCmd.Flags().Float64Var(&maxMZ, "max-mz", 2000.0, "Upper bound of the bin grid")
	searchCmd.Flags().IntVar(&regions, "regions", 10, "Number of normalization windows")
	searchCmd.Flags().Float64Var(&fdrThreshold, "fdr", 0.01, "q-value acceptance threshold")
	searchCmd.Flags().Float64Var(&decoyFactor, "decoy-factor", 2, "Multiplier on the decoy count in FDR estimation")
	searchCmd.Flags().IntVar(&workers, "workers", 0, "Worker pool size (0 = number of CPUs)")
	searchCmd.Flags().IntVar(&minPeaks, "min-peaks", 10, "Minimum fragment peaks per spectrum")
	searchCmd.Flags().IntVar(&reportTopN, "top-n", 1, "PSMs reported per spectrum")
	searchCmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Suppress progress output")
	searchCmd.MarkFlagRequired("mzml")

	glycansCmd.Flags().StringVar(&glycanFile, "glycans", "", "Glycan composition file (default: built-in library)")
}
