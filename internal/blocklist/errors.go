package blocklist

import "errors"

// ErrNotFound indicates no entry exists for the source title.
var ErrNotFound = errors.New("blocklist entry not found")
