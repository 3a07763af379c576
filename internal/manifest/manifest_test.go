package manifest_test

import (
	"encoding/csv"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"testing"

	"github.com/spokenlab/tgsplit/internal/manifest"
	"github.com/spokenlab/tgsplit/internal/segment"
)

func sampleSegment(base string, index int, duration float64) segment.Segment {
	return segment.Segment{
		AudioPath:      "/out/" + base + "/" + base + "_000.wav",
		RelativePath:   filepath.Join(base, base+"_000.wav"),
		Transcription:  "hello world",
		Duration:       duration,
		StartTime:      1.0,
		EndTime:        1.0 + duration,
		SourceTextGrid: "/tg/" + base + ".TextGrid",
		SourceWAV:      "/wav/" + base + ".wav",
		BaseName:       base,
		Index:          index,
		SampleRate:     16000,
	}
}

var settings = manifest.Settings{
	TextGridDir:       "/tg",
	WAVDir:            "/wav",
	OutputDir:         "/out",
	MinDuration:       0.5,
	MaxFilenameLength: 50,
}

// ---------------------------------------------------------------------------
// ParseFormat
// ---------------------------------------------------------------------------

func TestParseFormat(t *testing.T) {
	t.Parallel()

	for _, valid := range []string{"csv", "json"} {
		if _, err := manifest.ParseFormat(valid); err != nil {
			t.Errorf("ParseFormat(%q) error = %v", valid, err)
		}
	}
	if _, err := manifest.ParseFormat("yaml"); err == nil {
		t.Error("ParseFormat(yaml) expected error")
	}
}

// ---------------------------------------------------------------------------
// Builder accumulation
// ---------------------------------------------------------------------------

func TestBuilder_Accumulate(t *testing.T) {
	t.Parallel()

	b := manifest.NewBuilder()
	if b.Len() != 0 {
		t.Fatalf("new builder Len() = %d, want 0", b.Len())
	}

	b.Add(sampleSegment("a", 0, 2.0))
	b.Add(sampleSegment("b", 0, 0.5))

	if b.Len() != 2 {
		t.Errorf("Len() = %d, want 2", b.Len())
	}
	if got := b.TotalDuration(); math.Abs(got-2.5) > 1e-9 {
		t.Errorf("TotalDuration() = %v, want 2.5", got)
	}
}

func TestBuilder_ConcurrentAdds(t *testing.T) {
	t.Parallel()

	b := manifest.NewBuilder()
	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			b.Add(sampleSegment("p", 0, 1.0))
		}()
	}
	wg.Wait()

	if b.Len() != 50 {
		t.Errorf("Len() = %d after concurrent adds, want 50", b.Len())
	}
}

// ---------------------------------------------------------------------------
// Write - zero segments means no file
// ---------------------------------------------------------------------------

func TestBuilder_WriteZeroSegments(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path, err := manifest.NewBuilder().Write(dir, manifest.FormatCSV, settings)
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if path != "" {
		t.Errorf("Write() path = %q, want empty for zero segments", path)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("output dir has %d entries, want none", len(entries))
	}
}

// ---------------------------------------------------------------------------
// Write - CSV round trip
// ---------------------------------------------------------------------------

func TestBuilder_WriteCSV(t *testing.T) {
	t.Parallel()

	b := manifest.NewBuilder()
	b.Add(sampleSegment("rec01", 0, 2.0))
	b.Add(sampleSegment("rec02", 3, 0.75))

	dir := t.TempDir()
	path, err := b.Write(dir, manifest.FormatCSV, settings)
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if filepath.Base(path) != "manifest.csv" {
		t.Errorf("Write() path = %q, want manifest.csv under the output root", path)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = f.Close() }()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("reading manifest back: %v", err)
	}

	// Header plus one row per segment.
	if len(rows) != 3 {
		t.Fatalf("manifest has %d rows, want 3", len(rows))
	}

	wantHeader := []string{
		"audio_path", "relative_path", "transcription", "duration",
		"start_time", "end_time", "original_textgrid", "original_wav",
		"base_filename", "segment_index", "sample_rate",
	}
	for i, col := range wantHeader {
		if rows[0][i] != col {
			t.Errorf("header[%d] = %q, want %q", i, rows[0][i], col)
		}
	}

	// Durations survive the round trip within rounding tolerance.
	for i, want := range []float64{2.0, 0.75} {
		got, err := strconv.ParseFloat(rows[i+1][3], 64)
		if err != nil {
			t.Fatalf("row %d duration: %v", i+1, err)
		}
		if math.Abs(got-want) > 1e-3 {
			t.Errorf("row %d duration = %v, want ~%v", i+1, got, want)
		}
	}

	if rows[2][9] != "3" {
		t.Errorf("segment_index = %q, want 3", rows[2][9])
	}
}

// ---------------------------------------------------------------------------
// Write - JSON document shape
// ---------------------------------------------------------------------------

func TestBuilder_WriteJSON(t *testing.T) {
	t.Parallel()

	b := manifest.NewBuilder()
	b.Add(sampleSegment("rec01", 0, 2.0))
	b.Add(sampleSegment("rec01", 1, 1.0))

	dir := t.TempDir()
	path, err := b.Write(dir, manifest.FormatJSON, settings)
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if filepath.Base(path) != "manifest.json" {
		t.Errorf("Write() path = %q, want manifest.json under the output root", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	var doc struct {
		Metadata struct {
			TotalSegments int     `json:"total_segments"`
			TotalDuration float64 `json:"total_duration"`
			OutputDir     string  `json:"output_dir"`
			MinDuration   float64 `json:"min_duration"`
			Processing    struct {
				MaxFilenameLength int `json:"max_filename_length"`
			} `json:"processing_settings"`
		} `json:"metadata"`
		Segments []segment.Segment `json:"segments"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("unmarshal manifest: %v", err)
	}

	if doc.Metadata.TotalSegments != 2 {
		t.Errorf("total_segments = %d, want 2", doc.Metadata.TotalSegments)
	}
	if math.Abs(doc.Metadata.TotalDuration-3.0) > 1e-9 {
		t.Errorf("total_duration = %v, want 3.0", doc.Metadata.TotalDuration)
	}
	if doc.Metadata.OutputDir != "/out" {
		t.Errorf("output_dir = %q, want /out", doc.Metadata.OutputDir)
	}
	if doc.Metadata.Processing.MaxFilenameLength != 50 {
		t.Errorf("max_filename_length = %d, want 50", doc.Metadata.Processing.MaxFilenameLength)
	}
	if len(doc.Segments) != 2 {
		t.Fatalf("segments = %d entries, want 2", len(doc.Segments))
	}
	if doc.Segments[1].Index != 1 || doc.Segments[1].Transcription != "hello world" {
		t.Errorf("segment[1] = %+v", doc.Segments[1])
	}
}
