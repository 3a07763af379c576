package format

import (
	"fmt"
	"time"
)

// Duration formats a duration as HH:MM:SS or MM:SS.
func Duration(d time.Duration) string {
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	if h > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}

// Seconds formats a duration in seconds with two decimals, e.g. "2.00s".
// Used for per-segment durations where sub-second precision matters.
func Seconds(sec float64) string {
	return fmt.Sprintf("%.2fs", sec)
}

// Count formats a count with a singular/plural noun, e.g. "1 segment",
// "3 segments".
func Count(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
