package cache

import "errors"

// ErrNotWatchable is returned by Watch when the wrapped source has no change feed.
var ErrNotWatchable = errors.New("wrapped source does not support watching")
