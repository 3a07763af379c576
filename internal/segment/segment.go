// Package segment materializes kept speech intervals as individual audio
// files and produces the per-segment records aggregated into the manifest.
package segment

import (
	"math"
	"regexp"

	"github.com/spokenlab/tgsplit/internal/audio"
	"github.com/spokenlab/tgsplit/internal/textgrid"
)

// DefaultMinDuration is the minimum realized segment duration in seconds.
const DefaultMinDuration = 0.5

// DefaultMaxTextLength caps the text part of the filesystem-safe slug.
const DefaultMaxTextLength = 50

// Segment describes one interval that survived filtering and duration
// thresholding and was written to disk. Field tags define the manifest
// column names. Immutable once created.
type Segment struct {
	AudioPath      string  `json:"audio_path"`
	RelativePath   string  `json:"relative_path"`
	Transcription  string  `json:"transcription"`
	Duration       float64 `json:"duration"`
	StartTime      float64 `json:"start_time"`
	EndTime        float64 `json:"end_time"`
	SourceTextGrid string  `json:"original_textgrid"`
	SourceWAV      string  `json:"original_wav"`
	BaseName       string  `json:"base_filename"`
	Index          int     `json:"segment_index"`
	SampleRate     int     `json:"sample_rate"`

	// SafeText is a filesystem-safe slug of the transcription. The output
	// filename uses the zero-padded index instead, but the slug is kept on
	// the record for downstream tooling. Not serialized into the manifest.
	SafeText string `json:"-"`
}

// Cutter turns an interval into a segment-audio candidate, applying the
// minimum-duration policy.
type Cutter struct {
	// MinDuration is the minimum realized duration in seconds. Candidates
	// strictly below it are discarded; exactly at it they are kept.
	MinDuration float64
}

// Cut slices buf to the interval's bounds and reports whether the candidate
// passes the minimum-duration check. The check uses the realized duration of
// the slice, not the annotated span, so boundary clamping and sample
// truncation are accounted for.
func (c Cutter) Cut(buf *audio.Buffer, iv textgrid.Interval) (*audio.Buffer, bool) {
	sub := buf.Slice(iv.XMin, iv.XMax)
	return sub, sub.Duration() >= c.MinDuration
}

// nonSlugRe matches runes stripped from slugs: anything that is not a
// letter, digit, underscore, whitespace, or hyphen.
var (
	nonSlugRe    = regexp.MustCompile(`[^\p{L}\p{N}_\s-]`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// SafeText derives a filesystem-safe slug from a transcription label:
// disallowed runes are stripped, the result is capped at max runes, and
// whitespace runs become single underscores.
func SafeText(label string, max int) string {
	s := nonSlugRe.ReplaceAllString(label, "")
	if r := []rune(s); max >= 0 && len(r) > max {
		s = string(r[:max])
	}
	return whitespaceRe.ReplaceAllString(s, "_")
}

// round3 rounds to three decimals, the precision recorded in the manifest.
func round3(x float64) float64 {
	return math.Round(x*1000) / 1000
}
