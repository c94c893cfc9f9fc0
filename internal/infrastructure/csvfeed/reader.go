// Package csvfeed reads header-driven CSV exports such as the legacy catalog
// feed. It strips a UTF-8 BOM, transcodes Windows-1252 spreadsheets to UTF-8
// and hands out rows keyed by (normalized) header name.
package csvfeed

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

const (
	EncodingUTF8        = "utf-8"
	EncodingWindows1252 = "windows-1252"

	sniffSize = 4096
)

// Reader parses a CSV stream one row at a time
type Reader struct {
	delimiter  rune
	lazyQuotes bool
	trimSpace  bool
	strictUTF8 bool
	normalize  func(string) string

	encoding   string
	headers    []string
	headerMap  map[string]int
	currentRow int
	totalRows  int
	reader     *csv.Reader
}

// Option configures a Reader
type Option func(*Reader)

// WithDelimiter sets the field delimiter (default is comma)
func WithDelimiter(d rune) Option {
	return func(r *Reader) {
		r.delimiter = d
	}
}

// WithLazyQuotes toggles lenient quote handling (default on)
func WithLazyQuotes(lazy bool) Option {
	return func(r *Reader) {
		r.lazyQuotes = lazy
	}
}

// WithTrimSpace toggles trimming of header and field values (default on)
func WithTrimSpace(trim bool) Option {
	return func(r *Reader) {
		r.trimSpace = trim
	}
}

// WithHeaderNormalizer rewrites header names before they are indexed,
// e.g. to lower-case them or map aliases onto canonical names
func WithHeaderNormalizer(fn func(string) string) Option {
	return func(r *Reader) {
		r.normalize = fn
	}
}

// WithStrictUTF8 rejects non UTF-8 input instead of decoding it as Windows-1252
func WithStrictUTF8() Option {
	return func(r *Reader) {
		r.strictUTF8 = true
	}
}

// NewReader prepares a Reader over src. It fails with ErrEmptyFile when src
// has no bytes after the BOM.
func NewReader(src io.Reader, opts ...Option) (*Reader, error) {
	r := &Reader{
		delimiter:  ',',
		lazyQuotes: true,
		trimSpace:  true,
		headerMap:  make(map[string]int),
		encoding:   EncodingUTF8,
	}
	for _, opt := range opts {
		opt(r)
	}

	buf := bufio.NewReaderSize(src, sniffSize)

	bom, err := buf.Peek(3)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to read feed: %w", err)
	}
	if bytes.Equal(bom, []byte{0xEF, 0xBB, 0xBF}) {
		_, _ = buf.Discard(3)
	}

	head, err := buf.Peek(sniffSize)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return nil, fmt.Errorf("failed to read feed for encoding detection: %w", err)
	}
	if len(head) == 0 {
		return nil, ErrEmptyFile
	}

	var in io.Reader = buf
	if !validUTF8Prefix(head, len(head) == sniffSize) {
		if r.strictUTF8 {
			return nil, ErrInvalidEncoding
		}
		r.encoding = EncodingWindows1252
		in = charmap.Windows1252.NewDecoder().Reader(buf)
	}

	r.reader = csv.NewReader(in)
	r.reader.Comma = r.delimiter
	r.reader.LazyQuotes = r.lazyQuotes
	r.reader.TrimLeadingSpace = r.trimSpace
	r.reader.FieldsPerRecord = -1
	return r, nil
}

// FromBytes creates a Reader over data
func FromBytes(data []byte, opts ...Option) (*Reader, error) {
	return NewReader(bytes.NewReader(data), opts...)
}

// validUTF8Prefix reports whether b is valid UTF-8. When b was cut at the
// sniff window a trailing partial rune is tolerated.
func validUTF8Prefix(b []byte, truncated bool) bool {
	if utf8.Valid(b) {
		return true
	}
	if !truncated {
		return false
	}
	for i := 1; i < utf8.UTFMax && i < len(b); i++ {
		if utf8.RuneStart(b[len(b)-i]) {
			return utf8.Valid(b[:len(b)-i])
		}
	}
	return false
}

// Encoding returns the detected source encoding
func (r *Reader) Encoding() string {
	return r.encoding
}

// ParseHeader reads the header row. When two columns normalize to the same
// name the first one wins.
func (r *Reader) ParseHeader() error {
	record, err := r.reader.Read()
	if errors.Is(err, io.EOF) {
		return ErrMissingHeader
	}
	if err != nil {
		return fmt.Errorf("failed to read header: %w", err)
	}

	r.headers = make([]string, len(record))
	for i, h := range record {
		if r.trimSpace {
			h = strings.TrimSpace(h)
		}
		if r.normalize != nil {
			h = r.normalize(h)
		}
		r.headers[i] = h
		if _, seen := r.headerMap[h]; !seen && h != "" {
			r.headerMap[h] = i
		}
	}
	if len(r.headerMap) == 0 {
		return ErrMissingHeader
	}

	r.currentRow = 1
	return nil
}

// Headers returns the header names in column order
func (r *Reader) Headers() []string {
	return r.headers
}

// HasHeader checks if a header exists
func (r *Reader) HasHeader(name string) bool {
	_, ok := r.headerMap[name]
	return ok
}

// ColumnIndex returns the index of a column by name
func (r *Reader) ColumnIndex(name string) (int, bool) {
	idx, ok := r.headerMap[name]
	return idx, ok
}

// MissingHeaders returns the names in required that the header lacks
func (r *Reader) MissingHeaders(required ...string) []string {
	var missing []string
	for _, h := range required {
		if !r.HasHeader(h) {
			missing = append(missing, h)
		}
	}
	return missing
}

// Row is one data row with its 1-indexed line number (the header is line 1)
type Row struct {
	LineNumber int
	Data       map[string]string
	RawFields  []string
}

// Get returns the value for a column by header name
func (r *Row) Get(header string) string {
	return r.Data[header]
}

// GetOrDefault returns the value for a column, or def if it is blank
func (r *Row) GetOrDefault(header, def string) string {
	if val, ok := r.Data[header]; ok && val != "" {
		return val
	}
	return def
}

// IsEmpty returns true if the row has no non-empty values
func (r *Row) IsEmpty() bool {
	for _, v := range r.Data {
		if v != "" {
			return false
		}
	}
	return true
}

// ReadRow reads the next row. It returns io.EOF at the end of the feed.
func (r *Reader) ReadRow() (*Row, error) {
	record, err := r.reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, io.EOF
	}
	r.currentRow++
	if err != nil {
		return nil, fmt.Errorf("error reading line %d: %w", r.currentRow, err)
	}
	r.totalRows++

	row := &Row{
		LineNumber: r.currentRow,
		Data:       make(map[string]string, len(r.headerMap)),
		RawFields:  record,
	}
	for name, i := range r.headerMap {
		if i >= len(record) {
			row.Data[name] = ""
			continue
		}
		value := record[i]
		if r.trimSpace {
			value = strings.TrimSpace(value)
		}
		row.Data[name] = value
	}
	return row, nil
}

// ReadAllRows reads the remaining rows, skipping completely empty ones
func (r *Reader) ReadAllRows() ([]*Row, error) {
	var rows []*Row
	for {
		row, err := r.ReadRow()
		if errors.Is(err, io.EOF) {
			return rows, nil
		}
		if err != nil {
			return rows, err
		}
		if row.IsEmpty() {
			continue
		}
		rows = append(rows, row)
	}
}

// CurrentRow returns the line number of the last row read
func (r *Reader) CurrentRow() int {
	return r.currentRow
}

// TotalRows returns the number of data rows read so far
func (r *Reader) TotalRows() int {
	return r.totalRows
}
