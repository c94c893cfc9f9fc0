package storage

import (
	"bytes"
	"context"
	"io"
)

// StaticFeedSource serves a fixed CSV document. Used when no feed is
// configured and in tests.
type StaticFeedSource struct {
	data []byte
}

// NewStaticFeedSource creates a source over data
func NewStaticFeedSource(data []byte) *StaticFeedSource {
	return &StaticFeedSource{data: data}
}

// Open returns a reader over the document
func (s *StaticFeedSource) Open(context.Context) (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(s.data)), nil
}

// Name identifies the source in logs
func (s *StaticFeedSource) Name() string {
	return "static"
}

var _ FeedSource = (*StaticFeedSource)(nil)
