package collect

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/keithlinneman/gzassets/internal/log"
	"github.com/keithlinneman/gzassets/internal/xerrors"
)

// DefaultIgnoreFile is the exclusion list looked up in the root folder.
const DefaultIgnoreFile = "ignoreasset"

// Exclusions is a set of substrings. A relative path is excluded when any
// entry occurs anywhere in it. Matching is neither anchored nor glob based,
// so "css" also drops "scss/x.scss" and "a/css-reset.txt".
type Exclusions struct {
	entries []string
}

// NewExclusions builds a set from entries, dropping blanks and duplicates.
func NewExclusions(entries ...string) Exclusions {
	seen := make(map[string]struct{}, len(entries))
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		if e == "" {
			continue
		}
		if _, dup := seen[e]; dup {
			continue
		}
		seen[e] = struct{}{}
		out = append(out, e)
	}
	return Exclusions{entries: out}
}

// Match reports whether rel is excluded and the entry that excluded it.
func (x Exclusions) Match(rel string) (string, bool) {
	for _, e := range x.entries {
		if strings.Contains(rel, e) {
			return e, true
		}
	}
	return "", false
}

// With returns a copy of x extended by entries.
func (x Exclusions) With(entries ...string) Exclusions {
	return NewExclusions(append(x.Entries(), entries...)...)
}

func (x Exclusions) Entries() []string {
	return append([]string(nil), x.entries...)
}

func (x Exclusions) Len() int { return len(x.entries) }

// maxExclusionLine bounds a single ignore-file line.
const maxExclusionLine = 1 << 20

// ParseExclusions splits data into trimmed, non-empty lines. A line longer
// than 1 MiB is an error rather than the end of the list.
func ParseExclusions(data []byte) ([]string, error) {
	var out []string
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 4096), maxExclusionLine)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			out = append(out, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, xerrors.Wrapf(err, "parse ignore list after %d entries", len(out))
	}
	return out, nil
}

// LoadExclusions reads name inside root. The file name itself is always part
// of the set. A missing file is not an error; the set then holds only name.
func LoadExclusions(ctx context.Context, root, name string) (Exclusions, error) {
	L := log.FromContext(ctx)
	if name == "" {
		name = DefaultIgnoreFile
	}

	p := filepath.Join(root, name)
	data, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		L.Warn(ctx, "no ignore file found, continuing without it", "ignore_file", p)
		return NewExclusions(name), nil
	}
	if err != nil {
		return Exclusions{}, xerrors.Wrapf(err, "read ignore file %s", p)
	}

	entries, err := ParseExclusions(data)
	if err != nil {
		return Exclusions{}, xerrors.Wrapf(err, "read ignore file %s", p)
	}
	x := NewExclusions(append(entries, name)...)
	L.Info(ctx, "using ignore list", "ignore_file", p, "entries", x.Len())
	return x, nil
}
