package extract

import "errors"

var (
	// ErrEmptyDocument means the first page carried too little text to be a
	// hearing list, typically a scanned image.
	ErrEmptyDocument = errors.New("document has no extractable text")
	// ErrStyleUndetectable means no qualifying span was found on the first
	// page, so the body style is unknown.
	ErrStyleUndetectable = errors.New("body text style undetectable")
)
