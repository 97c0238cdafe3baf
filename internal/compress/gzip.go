package compress

import (
	"bytes"

	"github.com/klauspost/compress/gzip"
)

// Gzip compresses data into a single gzip member with an empty header, so the
// output depends only on data and level.
func Gzip(data []byte, level int) ([]byte, error) {
	var buf bytes.Buffer
	zw, err := gzip.NewWriterLevel(&buf, level)
	if err != nil {
		return nil, err
	}
	if err := writeAll(zw, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeAll(zw *gzip.Writer, data []byte) error {
	if _, err := zw.Write(data); err != nil {
		_ = zw.Close()
		return err
	}
	return zw.Close()
}

// ValidLevel reports whether level is accepted by the gzip writer.
func ValidLevel(level int) bool {
	return level == gzip.DefaultCompression || level == gzip.HuffmanOnly ||
		(level >= gzip.BestSpeed && level <= gzip.BestCompression)
}
