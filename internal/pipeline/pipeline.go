// Package pipeline drives one end-to-end segmentation run: it discovers
// TextGrid/WAV pairs, runs the parse → filter → slice → write chain per pair,
// accumulates segment records into the manifest, and optionally deletes
// originals for pairs that produced output.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/spokenlab/tgsplit/internal/audio"
	"github.com/spokenlab/tgsplit/internal/format"
	"github.com/spokenlab/tgsplit/internal/manifest"
	"github.com/spokenlab/tgsplit/internal/segment"
	"github.com/spokenlab/tgsplit/internal/speech"
	"github.com/spokenlab/tgsplit/internal/textgrid"
)

// textGridExt is the alignment file extension discovered in the TextGrid
// directory.
const textGridExt = ".TextGrid"

// Config holds everything one run needs. Zero values for optional fields are
// replaced with package defaults by New.
type Config struct {
	TextGridDir string
	WAVDir      string
	OutputDir   string

	// Tier is the ordinal of the annotation tier to extract (default 4).
	Tier int

	// MinDuration is the minimum realized segment duration in seconds
	// (default 0.5).
	MinDuration float64

	// MaxFilenameLength caps the slug computed from each transcription
	// (default 50).
	MaxFilenameLength int

	// Markers overrides the non-speech marker patterns (default
	// speech.DefaultMarkers).
	Markers []string

	// MinContentLength overrides the minimum trimmed label length
	// (default 2).
	MinContentLength int

	DeleteOriginals bool
	Verbose         bool
	SaveManifest    bool
	ManifestFormat  manifest.Format

	// Parallel is the number of pairs processed concurrently. 1 (the
	// default) preserves strictly sequential processing; higher values fan
	// pairs out with per-pair local state and serialized manifest appends.
	Parallel int
}

// Pair is one discovered alignment/audio pairing.
type Pair struct {
	Base         string
	TextGridPath string
	WAVPath      string
}

// PairResult is the per-pair outcome aggregated by the orchestrator. Err is
// non-nil when the pair was abandoned (structural or I/O failure); a pair
// can also complete with zero segments when every interval was filtered or
// too short.
type PairResult struct {
	Pair

	// KeptIntervals is the number of intervals that survived the speech
	// filter.
	KeptIntervals int

	// Segments is the number of segment files written.
	Segments int

	Err error
}

// processed reports whether the pair completed the parse/filter/slice chain
// with at least one clean interval and no fatal error.
func (r PairResult) processed() bool {
	return r.Err == nil && r.KeptIntervals > 0
}

// deletable reports whether the pair is eligible for original-file deletion:
// it must actually have produced output.
func (r PairResult) deletable() bool {
	return r.Err == nil && r.Segments > 0
}

// Summary is the run outcome reported to the user.
type Summary struct {
	PairsFound     int
	PairsProcessed int
	PairsDeleted   int
	Segments       int
	TotalDuration  float64
	ManifestPath   string
}

// Orchestrator runs one segmentation pass. Construct with New; one
// Orchestrator per run.
type Orchestrator struct {
	cfg     Config
	stderr  io.Writer
	filter  *speech.Filter
	cutter  segment.Cutter
	writer  *segment.Writer
	builder *manifest.Builder
}

// New validates cfg, fills in defaults, and returns a ready Orchestrator.
// Nonexistent root directories are a configuration error: the run must abort
// before any processing.
func New(cfg Config, stderr io.Writer) (*Orchestrator, error) {
	if stderr == nil {
		stderr = os.Stderr
	}
	if cfg.Tier == 0 {
		cfg.Tier = textgrid.DefaultTier
	}
	if cfg.MinDuration == 0 {
		cfg.MinDuration = segment.DefaultMinDuration
	}
	if cfg.MaxFilenameLength == 0 {
		cfg.MaxFilenameLength = segment.DefaultMaxTextLength
	}
	if cfg.ManifestFormat == "" {
		cfg.ManifestFormat = manifest.FormatCSV
	}
	if cfg.Parallel < 1 {
		cfg.Parallel = 1
	}

	for _, d := range []string{cfg.TextGridDir, cfg.WAVDir} {
		info, err := os.Stat(d)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrMissingDir, d)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("%w: %s is not a directory", ErrMissingDir, d)
		}
	}
	if err := os.MkdirAll(cfg.OutputDir, 0750); err != nil { // #nosec G301 -- corpus output dir
		return nil, fmt.Errorf("cannot create output directory: %w", err)
	}

	var filterOpts []speech.Option
	if cfg.Markers != nil {
		filterOpts = append(filterOpts, speech.WithMarkers(cfg.Markers))
	}
	if cfg.MinContentLength > 0 {
		filterOpts = append(filterOpts, speech.WithMinContentLength(cfg.MinContentLength))
	}
	filter, err := speech.NewFilter(filterOpts...)
	if err != nil {
		return nil, fmt.Errorf("invalid marker pattern: %w", err)
	}

	return &Orchestrator{
		cfg:     cfg,
		stderr:  stderr,
		filter:  filter,
		cutter:  segment.Cutter{MinDuration: cfg.MinDuration},
		writer:  segment.NewWriter(cfg.OutputDir, cfg.MaxFilenameLength),
		builder: manifest.NewBuilder(),
	}, nil
}

// Run executes the full pass and returns the Summary. Per-pair and
// per-interval failures are logged and skipped; only context cancellation
// propagates as an error.
func (o *Orchestrator) Run(ctx context.Context) (Summary, error) {
	pairs, err := o.discover()
	if err != nil {
		return Summary{}, err
	}

	o.logf("Found %s\n", format.Count(len(pairs), "TextGrid/WAV pair"))

	results := o.processAll(ctx, pairs)
	if err := ctx.Err(); err != nil {
		return Summary{}, err
	}

	summary := Summary{PairsFound: len(pairs)}
	for _, r := range results {
		if r.processed() {
			summary.PairsProcessed++
		}
		summary.Segments += r.Segments
	}
	summary.TotalDuration = o.builder.TotalDuration()

	if o.cfg.SaveManifest {
		path, err := o.writeManifest()
		if err != nil {
			o.logf("Error: failed to write manifest: %v\n", err)
		} else if path != "" {
			summary.ManifestPath = path
			o.logf("Manifest saved: %s (%s, %s total)\n",
				path,
				format.Count(o.builder.Len(), "segment"),
				format.Seconds(summary.TotalDuration))
		}
	}

	if o.cfg.DeleteOriginals {
		summary.PairsDeleted = o.deleteOriginals(results)
	}

	o.logf("Processing complete: %d/%d pairs, %s written to %s\n",
		summary.PairsProcessed, summary.PairsFound,
		format.Count(summary.Segments, "segment"), o.cfg.OutputDir)

	return summary, nil
}

// discover lists TextGrid files and pairs each with its same-named WAV.
// Alignment files without a matching audio file are reported and skipped.
func (o *Orchestrator) discover() ([]Pair, error) {
	entries, err := os.ReadDir(o.cfg.TextGridDir)
	if err != nil {
		return nil, fmt.Errorf("cannot read TextGrid directory: %w", err)
	}

	var pairs []Pair
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), textGridExt) {
			continue
		}
		base := strings.TrimSuffix(e.Name(), textGridExt)
		wavPath := filepath.Join(o.cfg.WAVDir, base+".wav")
		if _, err := os.Stat(wavPath); err != nil {
			o.logf("Warning: no corresponding WAV file found for %s\n", e.Name())
			continue
		}
		pairs = append(pairs, Pair{
			Base:         base,
			TextGridPath: filepath.Join(o.cfg.TextGridDir, e.Name()),
			WAVPath:      wavPath,
		})
	}
	return pairs, nil
}

// processAll runs every pair, sequentially by default or fanned out when
// Parallel > 1. Results keep discovery order regardless of completion order.
func (o *Orchestrator) processAll(ctx context.Context, pairs []Pair) []PairResult {
	results := make([]PairResult, len(pairs))

	if o.cfg.Parallel == 1 {
		for i, p := range pairs {
			if ctx.Err() != nil {
				results[i] = PairResult{Pair: p, Err: ctx.Err()}
				continue
			}
			results[i] = o.processPair(p)
		}
		return results
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.cfg.Parallel)
	for i, p := range pairs {
		g.Go(func() error {
			if gctx.Err() != nil {
				results[i] = PairResult{Pair: p, Err: gctx.Err()}
				return nil
			}
			results[i] = o.processPair(p)
			return nil
		})
	}
	_ = g.Wait() // workers never return errors; failures live in results
	return results
}

// processPair runs parse → filter → slice+write for one pair. All failures
// are converted to a logged PairResult; nothing escapes to abort the run.
func (o *Orchestrator) processPair(p Pair) PairResult {
	result := PairResult{Pair: p}

	o.logf("Processing: %s%s\n", p.Base, textGridExt)

	intervals, encodingUsed, err := textgrid.ParseFile(p.TextGridPath, o.cfg.Tier)
	if err != nil {
		o.logf("Error: %v\n", err)
		result.Err = err
		return result
	}
	if o.cfg.Verbose {
		o.logf("Decoded %s with %s encoding\n", p.Base+textGridExt, encodingUsed)
	}

	kept := make([]textgrid.Interval, 0, len(intervals))
	for _, iv := range intervals {
		if o.filter.Keep(iv.Text) {
			kept = append(kept, iv)
		}
	}
	result.KeptIntervals = len(kept)
	if len(kept) == 0 {
		o.logf("No clean intervals found in %s%s\n", p.Base, textGridExt)
		return result
	}
	o.logf("Found %s\n", format.Count(len(kept), "clean speech interval"))

	buf, err := audio.Load(p.WAVPath)
	if err != nil {
		o.logf("Error: %v\n", err)
		result.Err = err
		return result
	}

	absTG := mustAbs(p.TextGridPath)
	absWAV := mustAbs(p.WAVPath)

	// The segment index is the interval's position among the kept
	// intervals; too-short candidates consume an index without producing a
	// file, so indices stay aligned with the filtered tier.
	for i, iv := range kept {
		sub, ok := o.cutter.Cut(buf, iv)
		if !ok {
			if o.cfg.Verbose {
				o.logf("Skipping short segment (%s): %q\n",
					format.Seconds(sub.Duration()), strings.TrimSpace(iv.Text))
			}
			continue
		}

		seg, err := o.writer.Write(sub, iv, p.Base, i, absTG, absWAV)
		if err != nil {
			o.logf("Error: %v\n", err)
			continue
		}

		o.builder.Add(seg)
		result.Segments++

		if o.cfg.Verbose {
			o.logf("Saved: %s (%s) %q\n",
				filepath.Base(seg.AudioPath), format.Seconds(seg.Duration), seg.Transcription)
		} else {
			o.logf("Saved: %s\n", filepath.Base(seg.AudioPath))
		}
	}

	o.logf("Saved %s from %s\n", format.Count(result.Segments, "segment"), p.Base)
	return result
}

// writeManifest finalizes the manifest once, after all pairs are done.
func (o *Orchestrator) writeManifest() (string, error) {
	return o.builder.Write(o.cfg.OutputDir, o.cfg.ManifestFormat, manifest.Settings{
		TextGridDir:       mustAbs(o.cfg.TextGridDir),
		WAVDir:            mustAbs(o.cfg.WAVDir),
		OutputDir:         mustAbs(o.cfg.OutputDir),
		MinDuration:       o.cfg.MinDuration,
		MaxFilenameLength: o.cfg.MaxFilenameLength,
		DeleteOriginals:   o.cfg.DeleteOriginals,
	})
}

// deleteOriginals removes the alignment and audio files of every deletable
// pair. A failure on one pair is logged and does not block the others.
func (o *Orchestrator) deleteOriginals(results []PairResult) int {
	deleted := 0
	for _, r := range results {
		if !r.deletable() {
			continue
		}
		if err := os.Remove(r.TextGridPath); err != nil {
			o.logf("Error deleting %s: %v\n", r.TextGridPath, err)
			continue
		}
		if err := os.Remove(r.WAVPath); err != nil {
			o.logf("Error deleting %s: %v\n", r.WAVPath, err)
			continue
		}
		deleted++
		o.logf("Deleted: %s%s and %s.wav\n", r.Base, textGridExt, r.Base)
	}
	o.logf("Deleted %s of original files\n", format.Count(deleted, "pair"))
	return deleted
}

func (o *Orchestrator) logf(formatStr string, args ...any) {
	fmt.Fprintf(o.stderr, formatStr, args...)
}

// mustAbs resolves a path to absolute form, falling back to the input when
// resolution fails (e.g. the working directory vanished).
func mustAbs(p string) string {
	abs, err := filepath.Abs(p)
	if err != nil {
		return p
	}
	return abs
}
