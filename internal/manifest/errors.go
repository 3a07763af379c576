package manifest

import "errors"

// ErrUnknownFormat indicates a manifest format other than csv or json.
var ErrUnknownFormat = errors.New("unknown manifest format")
