package extract

import "errors"

// ErrExtractionTooShort indicates every strategy in the cascade produced
// content (or a title) below the acceptance threshold.
var ErrExtractionTooShort = errors.New("extraction: all strategies produced content below threshold")
