package textgrid

import "errors"

// ErrUndecodable indicates the file content could not be decoded with any
// supported text encoding.
var ErrUndecodable = errors.New("undecodable textgrid file")

// ErrUnreadable indicates the file could not be read from disk.
var ErrUnreadable = errors.New("unreadable textgrid file")
