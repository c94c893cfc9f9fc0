// Package storage provides the sources the legacy catalog CSV feed is read from.
package storage

import (
	"context"
	"errors"
	"io"
)

// ErrFeedNotFound is returned when the configured feed object does not exist
var ErrFeedNotFound = errors.New("storage: catalog feed not found")

// FeedSource yields the raw bytes of the catalog CSV feed.
// Callers must close the returned reader.
type FeedSource interface {
	Open(ctx context.Context) (io.ReadCloser, error)
	// Name identifies the source in logs
	Name() string
}
