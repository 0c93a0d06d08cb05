// Package search drives spectra through the identification pipeline:
// candidate lookup, preprocessing, theoretical spectrum generation,
// preliminary scoring, cross-correlation rescoring and target-decoy FDR.
// Spectra are processed concurrently on a bounded worker pool; the
// candidate indexes and glycan catalog are shared read-only.
package search

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/jonghyeonseol/Glycolamp/internal/digest"
	"github.com/jonghyeonseol/Glycolamp/internal/fdr"
	"github.com/jonghyeonseol/Glycolamp/internal/glycan"
	"github.com/jonghyeonseol/Glycolamp/internal/index"
	"github.com/jonghyeonseol/Glycolamp/internal/score"
	"github.com/jonghyeonseol/Glycolamp/internal/spectrum"
	"github.com/jonghyeonseol/Glycolamp/internal/theo"
)

// Skip reasons recorded in the run summary.
const (
	SkipNotMS2        = "not-ms2"
	SkipBadCharge     = "bad-charge"
	SkipMalformed     = "malformed"
	SkipNoCandidates  = "no-candidates"
	SkipEmptySpectrum = "empty-spectrum"
)

// unknownChargeStates are tried when the precursor charge is not annotated.
var unknownChargeStates = []int{2, 3, 4}

// Engine owns the search space and configuration. Build it once, then call
// Run for each spectrum stream.
type Engine struct {
	cfg     Config
	target  *index.Index
	decoy   *index.Index
	preproc *spectrum.Preprocessor
	builder *theo.Builder

	Peptides          []digest.Peptide
	DecoyPeptides     []digest.Peptide
	Glycans           []glycan.Glycan
	DroppedPalindrome int
}

// NewEngine digests the proteins, derives the decoy peptide set and builds
// the target and decoy candidate indexes. Proteins with invalid residues
// are skipped and reported through warn (which may be nil); an empty target
// index is fatal.
func NewEngine(cfg Config, proteins []Protein, glycans []glycan.Glycan, warn func(error)) (*Engine, error) {
	cfg.Normalize()
	rule, err := digest.RuleByName(cfg.Enzyme)
	if err != nil {
		return nil, err
	}
	if len(glycans) == 0 {
		return nil, index.ErrEmptyIndex
	}

	opts := digest.Options{
		MissedCleavages: cfg.MissedCleavages,
		MinLength:       cfg.MinPeptideLength,
		MaxLength:       cfg.MaxPeptideLength,
	}

	var peptides []digest.Peptide
	for _, prot := range proteins {
		ps, err := digest.Digest(prot.ID, prot.Sequence, rule, opts)
		if err != nil {
			if warn != nil {
				warn(err)
			}
			continue
		}
		peptides = append(peptides, ps...)
	}

	decoys, dropped := digest.Decoys(peptides)
	return NewEngineFromPeptides(cfg, peptides, decoys, dropped, glycans)
}

// NewEngineFromPeptides builds an engine from an already-digested peptide
// set, e.g. one restored from the on-disk cache.
func NewEngineFromPeptides(cfg Config, peptides, decoys []digest.Peptide,
	droppedPalindromes int, glycans []glycan.Glycan) (*Engine, error) {

	cfg.Normalize()
	if len(glycans) == 0 {
		return nil, index.ErrEmptyIndex
	}
	e := &Engine{
		cfg:               cfg,
		Peptides:          peptides,
		DecoyPeptides:     decoys,
		Glycans:           glycans,
		DroppedPalindrome: droppedPalindromes,
		preproc: &spectrum.Preprocessor{
			BinWidth: cfg.BinWidth,
			MaxMZ:    cfg.MaxMZ,
			Regions:  cfg.Regions,
		},
	}
	e.builder = theo.NewBuilder(cfg.MaxCharge, e.preproc)
	e.target = index.Build(peptides, glycans)
	e.decoy = index.Build(decoys, glycans)
	if e.target.Len() == 0 {
		return nil, index.ErrEmptyIndex
	}
	return e, nil
}

// Protein is the input record for the engine: an identifier, a free-text
// description and an amino-acid sequence.
type Protein struct {
	ID          string
	Description string
	Sequence    string
}

// Config returns the engine's normalized configuration.
func (e *Engine) Config() Config { return e.cfg }

// TargetIndexLen returns the number of candidates in the target index.
func (e *Engine) TargetIndexLen() int { return e.target.Len() }

// Summary reports what happened to every input spectrum.
type Summary struct {
	SpectraRead   int
	SpectraScored int
	Skipped       map[string]int
	TargetPSMs    int
	DecoyPSMs     int
	Accepted      int
	FDR           fdr.Statistics
}

// Result is the outcome of a completed run.
type Result struct {
	// PSMs holds the per-spectrum best target and decoy matches with
	// assigned q-values, sorted by decreasing XCorr.
	PSMs []*fdr.PSM
	// Accepted is the subset of target PSMs passing the q-value threshold.
	Accepted []*fdr.PSM
	Summary  Summary
}

// specOutcome carries one spectrum's results from a worker to the collector.
type specOutcome struct {
	skipReason string
	psms       []*fdr.PSM // target PSMs first, then decoy; best first per side
	err        error
}

// Run consumes src until exhaustion, scoring each MS2 spectrum against the
// target and decoy indexes, and computes q-values over the per-spectrum
// best scores. Cancellation via ctx is honored between spectra: workers
// finish their current spectrum and the partial PSM set is returned without
// FDR assignment.
func (e *Engine) Run(ctx context.Context, src spectrum.Source) (*Result, error) {
	jobs := make(chan *spectrum.Spectrum, e.cfg.Workers*2)
	results := make(chan specOutcome, e.cfg.Workers*2)

	var wg sync.WaitGroup
	wg.Add(e.cfg.Workers)
	for w := 0; w < e.cfg.Workers; w++ {
		go func() {
			defer wg.Done()
			worker := e.newWorker()
			for s := range jobs {
				select {
				case <-ctx.Done():
					// Drain without processing.
					continue
				default:
				}
				results <- worker.score(s)
			}
		}()
	}

	summary := Summary{Skipped: make(map[string]int)}
	var all []*fdr.PSM
	var workerErr error

	var cwg sync.WaitGroup
	cwg.Add(1)
	go func() {
		defer cwg.Done()
		for out := range results {
			if out.err != nil {
				if workerErr == nil {
					workerErr = out.err
				}
				continue
			}
			if out.skipReason != "" {
				summary.Skipped[out.skipReason]++
				continue
			}
			summary.SpectraScored++
			for _, p := range out.psms {
				if p.IsDecoy {
					summary.DecoyPSMs++
				} else {
					summary.TargetPSMs++
				}
			}
			all = append(all, out.psms...)
		}
	}()

	var readErr error
feed:
	for {
		select {
		case <-ctx.Done():
			break feed
		default:
		}
		s, err := src.Next()
		if err != nil {
			readErr = err
			break
		}
		if s == nil {
			break
		}
		summary.SpectraRead++
		select {
		case jobs <- s:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()
	close(results)
	cwg.Wait()

	if readErr != nil {
		return nil, readErr
	}
	if workerErr != nil {
		return nil, workerErr
	}

	res := &Result{PSMs: all, Summary: summary}
	if ctx.Err() != nil {
		// Partial results remain valid PSMs but FDR is not computed.
		return res, ctx.Err()
	}

	fdr.Assign(res.PSMs, e.cfg.DecoyFactor)
	res.Accepted = fdr.Filter(res.PSMs, e.cfg.FDRThreshold)
	res.Summary.Accepted = len(res.Accepted)
	res.Summary.FDR = fdr.Stats(res.PSMs)
	return res, nil
}

// worker holds the per-goroutine scoring state: the FFT plan and the
// theoretical-vector memo, keyed by candidate identity. Nothing here is
// shared between goroutines.
type worker struct {
	engine *Engine
	xcorr  *score.XCorrScorer
	memo   map[memoKey][]float64
}

type memoKey struct {
	peptide *digest.Peptide
	glycan  *glycan.Glycan
}

func (e *Engine) newWorker() *worker {
	return &worker{
		engine: e,
		xcorr:  score.NewXCorrScorer(e.preproc.NumBins(), score.DefaultLag),
		memo:   make(map[memoKey][]float64),
	}
}

func (w *worker) vector(m index.Match) []float64 {
	key := memoKey{peptide: m.Peptide, glycan: m.Glycan}
	if v, ok := w.memo[key]; ok {
		return v
	}
	v := w.engine.builder.Generate(m.Peptide, m.Glycan)
	w.memo[key] = v
	return v
}

// score runs the full per-spectrum pipeline against both indexes.
func (w *worker) score(s *spectrum.Spectrum) specOutcome {
	e := w.engine

	if s.MSLevel != 2 {
		return specOutcome{skipReason: SkipNotMS2}
	}
	if s.PrecursorCharge < 0 || s.PrecursorCharge > 8 || s.PrecursorMZ <= 0 {
		return specOutcome{skipReason: SkipBadCharge}
	}

	processed, err := e.preproc.Process(s)
	if err != nil {
		var mse *spectrum.MalformedSpectrumError
		if errors.As(err, &mse) {
			return specOutcome{skipReason: SkipMalformed}
		}
		return specOutcome{err: err}
	}
	if allZero(processed.Bins) {
		return specOutcome{skipReason: SkipEmptySpectrum}
	}

	charges := []int{s.PrecursorCharge}
	if s.PrecursorCharge == 0 {
		charges = unknownChargeStates
	}

	targets, err := w.scoreIndex(processed, s, e.target, charges, false)
	if err != nil {
		return specOutcome{err: err}
	}
	decoys, err := w.scoreIndex(processed, s, e.decoy, charges, true)
	if err != nil {
		return specOutcome{err: err}
	}
	if len(targets) == 0 && len(decoys) == 0 {
		return specOutcome{skipReason: SkipNoCandidates}
	}
	return specOutcome{psms: append(targets, decoys...)}
}

// scoreIndex queries one index over the charge states, shortlists by Sp and
// rescans the shortlist with XCorr, returning up to ReportTopN PSMs.
func (w *worker) scoreIndex(processed *spectrum.Processed, s *spectrum.Spectrum,
	ix *index.Index, charges []int, isDecoy bool) ([]*fdr.PSM, error) {

	e := w.engine

	type scored struct {
		match  index.Match
		charge int
		sp     score.SpResult
	}
	var candidates []scored
	for _, z := range charges {
		for _, m := range ix.Query(s.PrecursorMZ, z, e.cfg.TolerancePPM,
			index.QueryOptions{MaxCandidates: e.cfg.MaxCandidates}) {
			candidates = append(candidates, scored{match: m, charge: z})
		}
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	for i := range candidates {
		candidates[i].sp = score.Sp(processed.Bins, w.vector(candidates[i].match))
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].sp.Sp > candidates[j].sp.Sp
	})
	if len(candidates) > e.cfg.SpTopK {
		candidates = candidates[:e.cfg.SpTopK]
	}

	psms := make([]*fdr.PSM, 0, len(candidates))
	for i := range candidates {
		c := &candidates[i]
		xr, err := w.xcorr.Score(processed.Bins, w.vector(c.match))
		if err != nil {
			return nil, fmt.Errorf("spectrum %s: %w", s.ScanID, err)
		}
		psms = append(psms, &fdr.PSM{
			ScanID:          s.ScanID,
			PeptideSequence: c.match.Peptide.Sequence,
			ProteinID:       c.match.Peptide.ProteinID,
			GlycanComp:      c.match.Glycan.Composition,
			GlycanClass:     c.match.Glycan.Class.String(),
			Charge:          c.charge,
			PrecursorMZ:     s.PrecursorMZ,
			Sp:              c.sp.Sp,
			SpMatches:       c.sp.Matches,
			XCorr:           xr.XCorr,
			PPMError:        c.match.PPMError,
			IsDecoy:         isDecoy,
		})
	}
	sort.SliceStable(psms, func(i, j int) bool { return psms[i].XCorr > psms[j].XCorr })
	if len(psms) > e.cfg.ReportTopN {
		psms = psms[:e.cfg.ReportTopN]
	}
	return psms, nil
}

func allZero(v []float64) bool {
	for _, x := range v {
		if x != 0 {
			return false
		}
	}
	return true
}
