// Package dump reads the semicolon-delimited registry dump: charset
// transcoding, record iteration, and the field extraction helpers that turn
// one record into subnet tokens, domain names, and URL hostnames.
package dump

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/ianaindex"
)

// DefaultEncoding is the charset the registry publishes its dump in.
const DefaultEncoding = "windows-1251"

// LookupEncoding resolves a charset name through the IANA registry. An empty
// name or a UTF-8 alias resolves to nil, meaning the stream needs no
// transcoding.
func LookupEncoding(name string) (encoding.Encoding, error) {
	switch strings.ToLower(name) {
	case "", "utf-8", "utf8":
		return nil, nil
	case DefaultEncoding, "cp1251":
		return charmap.Windows1251, nil
	}
	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil {
		return nil, fmt.Errorf("unknown encoding %q: %w", name, err)
	}
	if enc == nil {
		// Registered IANA names without an x/text implementation resolve to nil.
		return nil, fmt.Errorf("unsupported encoding %q", name)
	}
	return enc, nil
}

// NewDecoder wraps r so its contents are transcoded from the named charset
// to UTF-8.
func NewDecoder(r io.Reader, name string) (io.Reader, error) {
	enc, err := LookupEncoding(name)
	if err != nil {
		return nil, err
	}
	if enc == nil {
		return r, nil
	}
	return enc.NewDecoder().Reader(r), nil
}
