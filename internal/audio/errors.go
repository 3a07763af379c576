package audio

import "errors"

// ErrInvalidWAV indicates the file is not a readable RIFF/WAV file.
var ErrInvalidWAV = errors.New("not a valid WAV file")

// ErrEmptyBuffer indicates an operation was attempted on a buffer with no
// samples.
var ErrEmptyBuffer = errors.New("empty audio buffer")
