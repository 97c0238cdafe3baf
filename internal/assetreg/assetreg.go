// Package assetreg holds the types referenced by generated asset files and
// decompresses their payloads at serve time.
package assetreg

import (
	"bytes"
	"io"
	"slices"

	"github.com/klauspost/compress/gzip"

	"github.com/keithlinneman/gzassets/internal/xerrors"
)

// Asset is one embedded file. Data is a gzip stream.
type Asset struct {
	Mime string
	Data []byte
}

// Registry maps an asset's original relative path to its entry. It is built
// once by generated code and must not be modified afterwards.
type Registry map[string]Asset

// Lookup returns the entry for rel. rel must already be normalized (no
// leading slash).
func (r Registry) Lookup(rel string) (Asset, bool) {
	a, ok := r[rel]
	return a, ok
}

// Paths returns the registered paths in sorted order.
func (r Registry) Paths() []string {
	out := make([]string, 0, len(r))
	for p := range r {
		out = append(out, p)
	}
	slices.Sort(out)
	return out
}

// CompressedSize is the total gzip payload held by the registry.
func (r Registry) CompressedSize() int {
	n := 0
	for _, a := range r {
		n += len(a.Data)
	}
	return n
}

// Open returns a reader over the decompressed contents.
func (a Asset) Open() (io.ReadCloser, error) {
	zr, err := gzip.NewReader(bytes.NewReader(a.Data))
	if err != nil {
		return nil, xerrors.Wrap(err, "open gzip stream")
	}
	return zr, nil
}

// Decompress returns the full original contents. Nothing is cached; every
// call decompresses again.
func (a Asset) Decompress() ([]byte, error) {
	zr, err := a.Open()
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	out, err := io.ReadAll(zr)
	if err != nil {
		return nil, xerrors.Wrap(err, "decompress asset")
	}
	return out, nil
}
