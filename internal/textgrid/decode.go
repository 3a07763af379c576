package textgrid

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// utf8BOM is the byte order mark as encoded in UTF-8.
const utf8BOM = "\ufeff"

// candidate is one leg of the encoding fallback chain.
type candidate struct {
	name string
	enc  encoding.Encoding
}

// candidates is the fixed probe order for TextGrid files. Praat writes
// UTF-8 or UTF-16 depending on content; older corpora ship Latin-1 or
// CP1252. Latin-1 accepts any byte sequence, so it (and CP1252 after it)
// terminates the chain for arbitrary input.
var candidates = []candidate{
	{"utf-16", unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM)},
	{"utf-16le", unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)},
	{"utf-16be", unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)},
	{"latin-1", charmap.ISO8859_1},
	{"cp1252", charmap.Windows1252},
}

// DecodeText decodes raw file bytes using the first encoding in the probe
// chain (UTF-8, UTF-16 with BOM, UTF-16LE, UTF-16BE, Latin-1, CP1252) that
// decodes without error. It returns the decoded text and the name of the
// encoding used, or ErrUndecodable if no candidate succeeds.
func DecodeText(raw []byte) (text, encodingUsed string, err error) {
	// UTF-8 first: validate directly rather than transforming.
	if utf8.Valid(raw) {
		return strings.TrimPrefix(string(raw), utf8BOM), "utf-8", nil
	}

	for _, c := range candidates {
		decoded, err := c.enc.NewDecoder().Bytes(raw)
		if err != nil {
			continue
		}
		s := string(decoded)
		// The unicode decoders substitute U+FFFD for malformed input
		// instead of failing; treat substitution as a failed probe.
		if strings.ContainsRune(s, utf8.RuneError) {
			continue
		}
		return s, c.name, nil
	}

	return "", "", fmt.Errorf("%w: tried utf-8, utf-16, utf-16le, utf-16be, latin-1, cp1252", ErrUndecodable)
}
