package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// confirm prints prompt to w and reads one line from r. Only "y" or "yes"
// (case-insensitive) count as confirmation; anything else, including EOF,
// declines. The prompt is asked once, before any processing begins.
func confirm(r io.Reader, w io.Writer, prompt string) bool {
	fmt.Fprint(w, prompt)

	scanner := bufio.NewScanner(r)
	if !scanner.Scan() {
		return false
	}

	switch strings.ToLower(strings.TrimSpace(scanner.Text())) {
	case "y", "yes":
		return true
	default:
		return false
	}
}
