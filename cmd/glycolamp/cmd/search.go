package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonghyeonseol/Glycolamp/internal/cache"
	"github.com/jonghyeonseol/Glycolamp/internal/fasta"
	"github.com/jonghyeonseol/Glycolamp/internal/fdr"
	"github.com/jonghyeonseol/Glycolamp/internal/glycan"
	"github.com/jonghyeonseol/Glycolamp/internal/mzml"
	"github.com/jonghyeonseol/Glycolamp/internal/search"
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search MS/MS spectra for glycopeptide identifications",
	Long: `Search an mzML file against an in-silico glycopeptide database.

Examples:
  # Search with the built-in glycan library at 1% FDR
  glycolamp search --fasta human.fasta --mzml run01.mzML --out run01.tsv

  # Custom glycans, wider tolerance, cached digestion
  glycolamp search --fasta human.fasta --mzml run01.mzML \
    --glycans glycans.txt --tolerance 20 --cache digest-cache.db`,
	RunE: runSearch,
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	glycans, err := loadGlycans()
	if err != nil {
		return err
	}

	cfg := search.Config{
		Enzyme:           enzyme,
		MissedCleavages:  missedCleavages,
		MinPeptideLength: minLength,
		MaxPeptideLength: maxLength,
		TolerancePPM:     tolerancePPM,
		SpTopK:           spTopK,
		MaxCharge:        maxCharge,
		BinWidth:         binWidth,
		MaxMZ:            maxMZ,
		Regions:          regions,
		FDRThreshold:     fdrThreshold,
		DecoyFactor:      decoyFactor,
		Workers:          workers,
		ReportTopN:       reportTopN,
	}

	t := time.Now()
	engine, err := buildEngine(cfg, glycans)
	if err != nil {
		return err
	}
	if !quiet {
		fmt.Fprintf(os.Stderr, "Index: %d candidates from %d peptides x %d glycans (%s)\n",
			engine.TargetIndexLen(), len(engine.Peptides), len(glycans), time.Since(t).Round(time.Millisecond))
		if engine.DroppedPalindrome > 0 {
			fmt.Fprintf(os.Stderr, "Dropped %d palindromic decoys\n", engine.DroppedPalindrome)
		}
	}

	mzFile, err := os.Open(mzmlFile)
	if err != nil {
		return fmt.Errorf("failed to open mzML file: %w", err)
	}
	defer mzFile.Close()
	msData, err := mzml.Read(mzFile)
	if err != nil {
		return fmt.Errorf("failed to parse mzML file: %w", err)
	}

	t = time.Now()
	res, err := engine.Run(ctx, mzml.NewSource(msData, minPeaks))
	if err != nil {
		if res != nil && ctx.Err() != nil && len(res.PSMs) > 0 {
			log.Printf("search interrupted; %d partial PSMs discarded (no FDR computed)", len(res.PSMs))
		}
		return err
	}
	if !quiet {
		fmt.Fprintf(os.Stderr, "Scored %d of %d spectra (%s)\n",
			res.Summary.SpectraScored, res.Summary.SpectraRead, time.Since(t).Round(time.Millisecond))
	}

	if err := writePSMs(res.Accepted); err != nil {
		return err
	}
	if !quiet {
		printSummary(res)
	}
	return nil
}

// buildEngine constructs the search engine, going through the digestion
// cache when one is configured.
func buildEngine(cfg search.Config, glycans []glycan.Glycan) (*search.Engine, error) {
	proteins, err := loadProteins()
	if err != nil {
		return nil, err
	}
	warn := func(err error) { log.Printf("skipping protein: %v", err) }

	if cacheFile == "" {
		return search.NewEngine(cfg, proteins, glycans, warn)
	}

	key, err := digestCacheKey(glycans)
	if err != nil {
		return nil, err
	}
	store, err := cache.Open(cacheFile)
	if err != nil {
		return nil, err
	}
	defer store.Close()

	if blob, ok, err := store.Get(key); err != nil {
		log.Printf("cache read failed, digesting instead: %v", err)
	} else if ok {
		snap, err := cache.DecodeSnapshot(blob)
		if err != nil {
			log.Printf("cache entry unreadable, digesting instead: %v", err)
		} else {
			if !quiet {
				fmt.Fprintln(os.Stderr, "Restored digestion from cache")
			}
			return search.NewEngineFromPeptides(cfg, snap.Peptides, snap.Decoys,
				snap.DroppedPalindrome, glycans)
		}
	}

	engine, err := search.NewEngine(cfg, proteins, glycans, warn)
	if err != nil {
		return nil, err
	}
	blob, err := cache.EncodeSnapshot(&cache.Snapshot{
		Peptides:          engine.Peptides,
		Decoys:            engine.DecoyPeptides,
		DroppedPalindrome: engine.DroppedPalindrome,
	})
	if err == nil {
		err = store.Put(key, blob)
	}
	if err != nil {
		log.Printf("cache write failed: %v", err)
	}
	return engine, nil
}

func digestCacheKey(glycans []glycan.Glycan) (string, error) {
	f, err := os.Open(fastaFile)
	if err != nil {
		return "", err
	}
	defer f.Close()
	compositions := make([]string, len(glycans))
	for i, g := range glycans {
		compositions[i] = g.Composition
	}
	return cache.Key(f, compositions, enzyme, missedCleavages, minLength, maxLength)
}

func loadProteins() ([]search.Protein, error) {
	f, err := os.Open(fastaFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open FASTA file: %w", err)
	}
	defer f.Close()
	records, err := fasta.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse FASTA file: %w", err)
	}
	proteins := make([]search.Protein, len(records))
	for i, r := range records {
		proteins[i] = search.Protein{ID: r.ID, Description: r.Description, Sequence: r.Sequence}
	}
	return proteins, nil
}

func loadGlycans() ([]glycan.Glycan, error) {
	if glycanFile == "" {
		return glycan.DefaultLibrary(), nil
	}
	f, err := os.Open(glycanFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open glycan file: %w", err)
	}
	defer f.Close()
	glycans, errs := glycan.Load(f)
	for _, e := range errs {
		log.Printf("skipping glycan: %v", e)
	}
	if len(glycans) == 0 {
		return nil, fmt.Errorf("no valid glycan compositions in %s", glycanFile)
	}
	return glycans, nil
}

func writePSMs(psms []*fdr.PSM) error {
	out := os.Stdout
	if outputFile != "" {
		f, err := os.Create(outputFile)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		out = f
	}
	fmt.Fprintln(out, "scan\tpeptide\tprotein\tglycan\tglycan_class\tcharge\tprecursor_mz\tppm_error\tsp\txcorr\tq_value")
	for _, p := range psms {
		fmt.Fprintf(out, "%s\t%s\t%s\t%s\t%s\t%d\t%.6f\t%+.2f\t%.4f\t%.4f\t%.6f\n",
			p.ScanID, p.PeptideSequence, p.ProteinID, p.GlycanComp, p.GlycanClass,
			p.Charge, p.PrecursorMZ, p.PPMError, p.Sp, p.XCorr, p.QValue)
	}
	return nil
}

func printSummary(res *search.Result) {
	s := res.Summary
	fmt.Fprintf(os.Stderr, "\nSpectra: %d read, %d scored\n", s.SpectraRead, s.SpectraScored)
	if len(s.Skipped) > 0 {
		reasons := make([]string, 0, len(s.Skipped))
		for r := range s.Skipped {
			reasons = append(reasons, r)
		}
		sort.Strings(reasons)
		for _, r := range reasons {
			fmt.Fprintf(os.Stderr, "  skipped (%s): %d\n", r, s.Skipped[r])
		}
	}
	fmt.Fprintf(os.Stderr, "PSMs: %d target, %d decoy\n", s.TargetPSMs, s.DecoyPSMs)
	fmt.Fprintf(os.Stderr, "Accepted at q<=%.3g: %d\n", fdrThreshold, s.Accepted)
	st := s.FDR
	if st.Targets > 0 {
		fmt.Fprintf(os.Stderr, "Target XCorr: mean %.4f median %.4f\n",
			st.TargetXCorrMean, st.TargetXCorrP50)
	}
	if st.Decoys > 0 {
		fmt.Fprintf(os.Stderr, "Decoy XCorr: mean %.4f median %.4f\n",
			st.DecoyXCorrMean, st.DecoyXCorrP50)
	}
	thresholds := make([]float64, 0, len(st.AcceptedAt))
	for thr := range st.AcceptedAt {
		thresholds = append(thresholds, thr)
	}
	sort.Float64s(thresholds)
	for _, thr := range thresholds {
		fmt.Fprintf(os.Stderr, "  accepted at q<=%.3g: %d\n", thr, st.AcceptedAt[thr])
	}
}
