// Package collect walks an asset root and returns the files to embed.
package collect

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/keithlinneman/gzassets/internal/log"
	"github.com/keithlinneman/gzassets/internal/xerrors"
)

// AssetFile is one discovered input. RelativePath is slash separated, unique
// within a run, and is the key used by every later stage.
type AssetFile struct {
	FullPath     string
	RelativePath string
}

// Dir collects from the directory root on disk.
func Dir(ctx context.Context, root string, x Exclusions) ([]AssetFile, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, xerrors.Wrap(err, "stat asset root")
	}
	if !info.IsDir() {
		return nil, xerrors.Newf("asset root %s is not a directory", root)
	}
	return Collect(ctx, os.DirFS(root), root, x)
}

// Collect walks fsys depth first in directory enumeration order. Excluded
// directories are not descended into. FullPath is RelativePath joined onto
// root. Callers must not rely on any particular ordering of the result.
func Collect(ctx context.Context, fsys fs.FS, root string, x Exclusions) ([]AssetFile, error) {
	L := log.FromContext(ctx)

	var out []AssetFile
	err := fs.WalkDir(fsys, ".", func(rel string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if cerr := ctx.Err(); cerr != nil {
			return cerr
		}
		if rel == "." {
			return nil
		}
		if entry, excluded := x.Match(rel); excluded {
			L.Debug(ctx, "skipped", "path", rel, "matched", entry)
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		out = append(out, AssetFile{
			FullPath:     filepath.Join(root, filepath.FromSlash(rel)),
			RelativePath: rel,
		})
		L.Debug(ctx, "added", "path", rel)
		return nil
	})
	if err != nil {
		return nil, xerrors.Wrap(err, "walk asset root")
	}

	L.Info(ctx, "collected files", "count", len(out))
	return out, nil
}
