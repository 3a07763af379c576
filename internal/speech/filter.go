// Package speech classifies transcription labels as usable speech or
// non-speech annotation artifacts (noise markers, silence, laughter, ...).
package speech

import (
	"regexp"
	"strings"
)

// DefaultMinContentLength is the minimum trimmed label length for a label to
// count as speech. Shorter labels are stray punctuation or artifacts.
const DefaultMinContentLength = 2

// DefaultMarkers are the non-speech annotation markers used by the corpora
// this tool targets. Matching is case-insensitive and a marker anywhere in
// the label discards the whole interval.
var DefaultMarkers = []string{
	`<NOISE>`,
	`<IVER>`,
	`<VOCNOISE>`,
	`<LAUGH.*?>`,
	`<SIL>`,
	`<UNKNOWN>`,
	`<PRIVATE\.INFO>`,
}

// Filter decides whether a label is clean speech. The zero value is not
// usable; construct with NewFilter.
type Filter struct {
	markers   []*regexp.Regexp
	minLength int
}

// Option configures a Filter.
type Option func(*Filter) error

// WithMarkers replaces the default marker patterns. Each pattern is compiled
// case-insensitively.
func WithMarkers(patterns []string) Option {
	return func(f *Filter) error {
		compiled, err := compileMarkers(patterns)
		if err != nil {
			return err
		}
		f.markers = compiled
		return nil
	}
}

// WithMinContentLength overrides the minimum trimmed label length.
// Values below 1 are clamped to 1 so empty labels are always discarded.
func WithMinContentLength(n int) Option {
	return func(f *Filter) error {
		if n < 1 {
			n = 1
		}
		f.minLength = n
		return nil
	}
}

// NewFilter creates a Filter with the default marker set and minimum content
// length, then applies options.
func NewFilter(opts ...Option) (*Filter, error) {
	markers, err := compileMarkers(DefaultMarkers)
	if err != nil {
		return nil, err
	}

	f := &Filter{
		markers:   markers,
		minLength: DefaultMinContentLength,
	}
	for _, opt := range opts {
		if err := opt(f); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// Keep reports whether label is clean speech worth segmenting.
// It is a pure predicate: no I/O, no state.
func (f *Filter) Keep(label string) bool {
	label = strings.TrimSpace(label)

	if len([]rune(label)) < f.minLength {
		return false
	}
	for _, m := range f.markers {
		if m.MatchString(label) {
			return false
		}
	}
	return true
}

func compileMarkers(patterns []string) ([]*regexp.Regexp, error) {
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(`(?i)` + p)
		if err != nil {
			return nil, err
		}
		compiled = append(compiled, re)
	}
	return compiled, nil
}
