package manifest

import (
	"bytes"
	"os"

	"github.com/abdidvp/automigrate/internal/adapters/outbound/fsutil"
)

// Transform parses data, runs fn over it and returns the rendered result.
func Transform(data []byte, fn func(*Document) error) ([]byte, error) {
	doc, err := Parse(data)
	if err != nil {
		return nil, err
	}
	if err := fn(doc); err != nil {
		return nil, err
	}
	return doc.Bytes(), nil
}

// Edit loads the file at path, runs fn over it and writes it back when the
// content changed.
func Edit(path string, fn func(*Document) error) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return false, err
	}
	out, err := Transform(data, fn)
	if err != nil {
		return false, err
	}
	if bytes.Equal(out, data) {
		return false, nil
	}
	return true, fsutil.WriteFileAtomic(path, out, 0o644)
}
