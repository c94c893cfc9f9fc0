package csvfeed

import "errors"

var (
	// ErrEmptyFile is returned when the feed has no content at all
	ErrEmptyFile = errors.New("csv feed is empty")

	// ErrInvalidEncoding is returned in strict mode when the feed is not UTF-8
	ErrInvalidEncoding = errors.New("csv feed is not valid UTF-8")

	// ErrMissingHeader is returned when the feed has no header row
	ErrMissingHeader = errors.New("csv feed missing header row")
)
