package output

import (
	"io/fs"
	"os"
	"path/filepath"

	"github.com/keithlinneman/gzassets/internal/xerrors"
)

// WriteFileAtomic writes data to a temp file beside path, syncs it and
// renames it over path. Readers see either the old file or the complete new
// one.
func WriteFileAtomic(path string, data []byte, perm fs.FileMode) (err error) {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return xerrors.Wrap(err, "create temp file")
	}
	tmpPath := tmp.Name()
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return xerrors.Wrapf(err, "write %s", tmpPath)
	}
	if err = tmp.Sync(); err != nil {
		return xerrors.Wrapf(err, "sync %s", tmpPath)
	}
	if err = tmp.Chmod(perm); err != nil {
		return xerrors.Wrapf(err, "chmod %s", tmpPath)
	}
	if err = tmp.Close(); err != nil {
		return xerrors.Wrapf(err, "close %s", tmpPath)
	}
	if err = os.Rename(tmpPath, path); err != nil {
		return xerrors.Wrapf(err, "rename to %s", path)
	}
	return nil
}
