package pipeline

import "errors"

// ErrMissingDir indicates a required root directory does not exist.
// This is a configuration error and aborts the run before any processing.
var ErrMissingDir = errors.New("directory does not exist")

// ErrNoPairsProcessed indicates the run completed without successfully
// processing a single alignment/audio pair.
var ErrNoPairsProcessed = errors.New("no file pairs were successfully processed")
