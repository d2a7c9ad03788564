package importer

import "errors"

// ErrFormatUnrecognized is returned when a parser cannot find the
// structural markers it needs (headers, block keywords, metadata tags).
// Callers surface it as a "format not recognized" message; it is not a
// fault and leaves existing state untouched.
var ErrFormatUnrecognized = errors.New("format not recognized")
