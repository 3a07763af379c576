// Package textgrid parses Praat TextGrid alignment files: it probes a fixed
// chain of text encodings, locates one annotation tier by ordinal, and
// extracts that tier's labeled time intervals.
package textgrid

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
)

// DefaultTier is the tier ordinal holding utterance-level transcriptions in
// the corpora this tool was built for.
const DefaultTier = 4

// Interval is one time-bounded, labeled span from a TextGrid tier.
// Bounds are in seconds from the start of the recording.
type Interval struct {
	XMin float64
	XMax float64
	Text string
}

// Span returns the annotated length of the interval in seconds.
// The realized duration of a sliced segment is authoritative and may differ
// by up to one sample.
func (iv Interval) Span() float64 {
	return iv.XMax - iv.XMin
}

var (
	// itemHeaderRe matches a tier block header, capturing its ordinal.
	itemHeaderRe = regexp.MustCompile(`item \[(\d+)\]:`)

	// intervalRe matches one interval record inside a tier block. Records
	// span multiple lines; (?s) lets the whitespace classes cross them.
	// Quotes inside labels are escaped by doubling, per the TextGrid format.
	intervalRe = regexp.MustCompile(`(?s)intervals \[\d+\]:\s*xmin = ([\d.]+)\s*xmax = ([\d.]+)\s*text = "((?:[^"]|"")*)"`)
)

// ParseTier extracts all interval records from the tier with the given
// ordinal, in file order. A missing tier or a tier with no records yields an
// empty slice. Records with unparseable numeric fields are skipped.
func ParseTier(content string, tier int) []Interval {
	block, ok := tierBlock(content, tier)
	if !ok {
		return nil
	}

	var intervals []Interval
	for _, m := range intervalRe.FindAllStringSubmatch(block, -1) {
		xmin, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			continue
		}
		xmax, err := strconv.ParseFloat(m[2], 64)
		if err != nil {
			continue
		}
		intervals = append(intervals, Interval{
			XMin: xmin,
			XMax: xmax,
			Text: unescapeLabel(m[3]),
		})
	}
	return intervals
}

// tierBlock returns the content of the "item [tier]:" block, from the end of
// its header to the start of the next block header or end of file.
func tierBlock(content string, tier int) (string, bool) {
	headers := itemHeaderRe.FindAllStringSubmatchIndex(content, -1)
	for i, h := range headers {
		n, err := strconv.Atoi(content[h[2]:h[3]])
		if err != nil || n != tier {
			continue
		}
		start := h[1]
		end := len(content)
		if i+1 < len(headers) {
			end = headers[i+1][0]
		}
		return content[start:end], true
	}
	return "", false
}

// unescapeLabel converts doubled quotes back to literal quotes.
func unescapeLabel(s string) string {
	return strings.ReplaceAll(s, `""`, `"`)
}

// ParseFile reads, decodes, and parses one TextGrid file, returning the
// intervals of the requested tier and the encoding that was used to decode
// the file. Read and decode failures are structural errors; the caller is
// expected to log and skip the file.
func ParseFile(path string, tier int) ([]Interval, string, error) {
	raw, err := os.ReadFile(path) // #nosec G304 -- path comes from directory discovery
	if err != nil {
		return nil, "", fmt.Errorf("%w: %s: %v", ErrUnreadable, path, err)
	}

	content, encodingUsed, err := DecodeText(raw)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", path, err)
	}

	return ParseTier(content, tier), encodingUsed, nil
}
