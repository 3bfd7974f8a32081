// Package emit writes merged networks to their resolved destinations.
package emit

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net/netip"
	"os"
)

// Networks writes one canonical CIDR per line to w.
func Networks(w io.Writer, prefixes []netip.Prefix) error {
	bw := bufio.NewWriter(w)
	for _, p := range prefixes {
		if _, err := fmt.Fprintln(bw, p.String()); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// Targets holds the opened destinations for the two address families. V4 and
// V6 may be the same writer, in which case the v6 block lands directly after
// the v4 block.
type Targets struct {
	V4 io.Writer
	V6 io.Writer

	files []*os.File
}

// OpenTargets resolves the output destinations once, before any data is
// written: "-" means stdout, and an empty v6 path reuses the primary
// destination. Files are created or truncated immediately so a bad path
// fails the run before the pipeline starts.
func OpenTargets(primary, v6 string, stdout io.Writer) (*Targets, error) {
	t := &Targets{}

	w, err := t.open(primary, stdout)
	if err != nil {
		return nil, err
	}
	t.V4 = w

	if v6 == "" || v6 == primary {
		t.V6 = w
		return t, nil
	}

	w6, err := t.open(v6, stdout)
	if err != nil {
		_ = t.Close()
		return nil, err
	}
	t.V6 = w6
	return t, nil
}

func (t *Targets) open(path string, stdout io.Writer) (io.Writer, error) {
	if path == "-" {
		return stdout, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating output file: %w", err)
	}
	t.files = append(t.files, f)
	return f, nil
}

// Close closes every file the targets opened. Stdout is never closed.
func (t *Targets) Close() error {
	var errs []error
	for _, f := range t.files {
		if err := f.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	t.files = nil
	return errors.Join(errs...)
}
