package dump

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/cidralias/cidralias/internal/apperr"
)

// Record is one dump row. Each field is itself a pipe-separated list:
// raw subnet/IP tokens, domain names, and URLs.
type Record struct {
	Subnets string
	Domains string
	URLs    string
}

// Reader iterates the records of a dump stream. The first line of the
// stream is an "Updated on ..." metadata header and is skipped
// unconditionally.
type Reader struct {
	csv           *csv.Reader
	headerSkipped bool
	n             int // data records returned so far
}

// NewReader wraps r (already transcoded to UTF-8) as a dump record reader.
func NewReader(r io.Reader) *Reader {
	cr := csv.NewReader(r)
	cr.Comma = ';'
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true
	return &Reader{csv: cr}
}

// Next returns the next record, or io.EOF at the end of the stream.
// A record with fewer than three fields is structurally broken and yields
// apperr.ErrMalformedRecord; there is no safe partial reading of it.
func (r *Reader) Next() (Record, error) {
	if !r.headerSkipped {
		if _, err := r.csv.Read(); err != nil {
			if errors.Is(err, io.EOF) {
				return Record{}, io.EOF
			}
			return Record{}, fmt.Errorf("reading dump header: %w", err)
		}
		r.headerSkipped = true
	}

	fields, err := r.csv.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return Record{}, io.EOF
		}
		return Record{}, fmt.Errorf("reading dump record %d: %w", r.n+1, err)
	}
	r.n++
	if len(fields) < 3 {
		return Record{}, fmt.Errorf("%w: record %d has %d field(s), want at least 3",
			apperr.ErrMalformedRecord, r.n, len(fields))
	}
	return Record{Subnets: fields[0], Domains: fields[1], URLs: fields[2]}, nil
}
