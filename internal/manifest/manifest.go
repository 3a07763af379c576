// Package manifest accumulates segment records across one processing run and
// serializes them once, at run end, as either a flat CSV or a nested JSON
// document with run-level metadata.
package manifest

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/spokenlab/tgsplit/internal/segment"
)

// Format selects the manifest serialization.
type Format string

// Supported manifest formats.
const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// Filenames written under the output root.
const (
	csvFilename  = "manifest.csv"
	jsonFilename = "manifest.json"
)

// ParseFormat validates a user-supplied format string.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatCSV, FormatJSON:
		return Format(s), nil
	default:
		return "", fmt.Errorf("%w: %q (expected csv or json)", ErrUnknownFormat, s)
	}
}

// columns is the fixed, stable CSV column order.
var columns = []string{
	"audio_path", "relative_path", "transcription", "duration",
	"start_time", "end_time", "original_textgrid", "original_wav",
	"base_filename", "segment_index", "sample_rate",
}

// Settings is the run configuration snapshot embedded in the JSON metadata
// block. Directory paths are expected to be resolved to absolute form.
type Settings struct {
	TextGridDir       string
	WAVDir            string
	OutputDir         string
	MinDuration       float64
	MaxFilenameLength int
	DeleteOriginals   bool
}

// Builder accumulates segment records for one run. Appends are serialized so
// pairs may be processed concurrently; everything else is single-writer at
// finalize time.
type Builder struct {
	mu       sync.Mutex
	segments []segment.Segment
}

// NewBuilder returns an empty accumulator. One Builder per run, owned by the
// orchestrator and never shared across runs.
func NewBuilder() *Builder {
	return &Builder{}
}

// Add appends one finalized segment record.
func (b *Builder) Add(s segment.Segment) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.segments = append(b.segments, s)
}

// Len returns the number of accumulated records.
func (b *Builder) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.segments)
}

// TotalDuration sums the realized durations of all accumulated records, in
// seconds.
func (b *Builder) TotalDuration() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	var total float64
	for _, s := range b.segments {
		total += s.Duration
	}
	return total
}

// Segments returns a copy of the accumulated records.
func (b *Builder) Segments() []segment.Segment {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]segment.Segment, len(b.segments))
	copy(out, b.segments)
	return out
}

// Write serializes the manifest under outputRoot in the requested format and
// returns the path written. If zero segments were accumulated no file is
// written and the returned path is empty; this is not an error. The file is
// produced from a fully marshaled buffer in a single write, so a crash
// mid-run never leaves a partial manifest.
func (b *Builder) Write(outputRoot string, format Format, settings Settings) (string, error) {
	segments := b.Segments()
	if len(segments) == 0 {
		return "", nil
	}

	switch format {
	case FormatCSV:
		path := filepath.Join(outputRoot, csvFilename)
		return path, writeCSV(path, segments)
	case FormatJSON:
		path := filepath.Join(outputRoot, jsonFilename)
		return path, writeJSON(path, segments, settings)
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

func writeCSV(path string, segments []segment.Segment) error {
	// #nosec G302 G304 -- manifest under the user-chosen output root
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("cannot create manifest: %w", err)
	}
	defer func() { _ = f.Close() }()

	w := csv.NewWriter(f)
	if err := w.Write(columns); err != nil {
		return fmt.Errorf("failed to write manifest header: %w", err)
	}
	for _, s := range segments {
		row := []string{
			s.AudioPath,
			s.RelativePath,
			s.Transcription,
			formatFloat(s.Duration),
			formatFloat(s.StartTime),
			formatFloat(s.EndTime),
			s.SourceTextGrid,
			s.SourceWAV,
			s.BaseName,
			strconv.Itoa(s.Index),
			strconv.Itoa(s.SampleRate),
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("failed to write manifest row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush manifest: %w", err)
	}
	return nil
}

// document is the nested JSON manifest shape.
type document struct {
	Metadata metadata          `json:"metadata"`
	Segments []segment.Segment `json:"segments"`
}

type metadata struct {
	TotalSegments      int                `json:"total_segments"`
	TotalDuration      float64            `json:"total_duration"`
	TextGridDir        string             `json:"textgrid_dir"`
	WAVDir             string             `json:"wav_dir"`
	OutputDir          string             `json:"output_dir"`
	MinDuration        float64            `json:"min_duration"`
	ProcessingSettings processingSettings `json:"processing_settings"`
}

type processingSettings struct {
	DeleteOriginals   bool    `json:"delete_originals"`
	MaxFilenameLength int     `json:"max_filename_length"`
	MinDuration       float64 `json:"min_duration"`
}

func writeJSON(path string, segments []segment.Segment, settings Settings) error {
	var total float64
	for _, s := range segments {
		total += s.Duration
	}

	doc := document{
		Metadata: metadata{
			TotalSegments: len(segments),
			TotalDuration: total,
			TextGridDir:   settings.TextGridDir,
			WAVDir:        settings.WAVDir,
			OutputDir:     settings.OutputDir,
			MinDuration:   settings.MinDuration,
			ProcessingSettings: processingSettings{
				DeleteOriginals:   settings.DeleteOriginals,
				MaxFilenameLength: settings.MaxFilenameLength,
				MinDuration:       settings.MinDuration,
			},
		},
		Segments: segments,
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil { // #nosec G306 -- manifest file
		return fmt.Errorf("cannot write manifest: %w", err)
	}
	return nil
}

// formatFloat renders a float without trailing zeros, matching the rounded
// three-decimal precision recorded on segments.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
