package segment

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spokenlab/tgsplit/internal/audio"
	"github.com/spokenlab/tgsplit/internal/textgrid"
)

// Writer persists segment audio files under a deterministic naming scheme:
// <root>/<base>/<base>_<index %03d>.wav. The per-parent subdirectory is
// created on first use; creation is idempotent so concurrent pairs sharing a
// root are safe.
type Writer struct {
	// OutputRoot is the directory all segment files and the manifest are
	// written under. Relative paths on returned Segments are relative to it.
	OutputRoot string

	// MaxTextLength caps the slug computed from each transcription.
	MaxTextLength int
}

// NewWriter creates a Writer rooted at outputRoot.
func NewWriter(outputRoot string, maxTextLength int) *Writer {
	if maxTextLength <= 0 {
		maxTextLength = DefaultMaxTextLength
	}
	return &Writer{OutputRoot: outputRoot, MaxTextLength: maxTextLength}
}

// Write persists one sliced candidate and returns its finalized record.
// base is the shared filename stem of the alignment/audio pair, index the
// zero-based position of the interval within that pair.
func (w *Writer) Write(buf *audio.Buffer, iv textgrid.Interval, base string, index int, sourceTextGrid, sourceWAV string) (Segment, error) {
	dir := filepath.Join(w.OutputRoot, base)
	if err := os.MkdirAll(dir, 0750); err != nil { // #nosec G301 -- corpus output dir
		return Segment{}, fmt.Errorf("cannot create segment directory: %w", err)
	}

	name := fmt.Sprintf("%s_%03d.wav", base, index)
	path := filepath.Join(dir, name)

	if err := audio.Write(path, buf); err != nil {
		return Segment{}, fmt.Errorf("segment %s: %w", name, err)
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		absPath = path
	}

	// The manifest records the trimmed label; surrounding whitespace is an
	// artifact of the TextGrid quoting.
	text := strings.TrimSpace(iv.Text)

	return Segment{
		AudioPath:      absPath,
		RelativePath:   filepath.Join(base, name),
		Transcription:  text,
		Duration:       round3(buf.Duration()),
		StartTime:      round3(iv.XMin),
		EndTime:        round3(iv.XMax),
		SourceTextGrid: sourceTextGrid,
		SourceWAV:      sourceWAV,
		BaseName:       base,
		Index:          index,
		SampleRate:     buf.SampleRate,
		SafeText:       SafeText(text, w.MaxTextLength),
	}, nil
}
