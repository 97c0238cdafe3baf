// Package compress gzips collected assets on a fixed pool of workers.
//
// Files are dispatched in consecutive batches of Workers files. Each batch
// must finish completely before the next one is queued, so at most one
// batch worth of raw file bytes is held in memory at any time. The first
// read or compression error cancels the run and no partial result is
// returned.
package compress

import (
	"bytes"
	"context"
	"io/fs"
	"os"

	"github.com/klauspost/compress/gzip"
	"golang.org/x/sync/errgroup"

	"github.com/keithlinneman/gzassets/internal/collect"
	"github.com/keithlinneman/gzassets/internal/log"
	"github.com/keithlinneman/gzassets/internal/mimetype"
	"github.com/keithlinneman/gzassets/internal/xerrors"
)

const DefaultWorkers = 4

// CompressedAsset is the result for one file. Data is a complete gzip stream
// that decompresses to exactly the original contents.
type CompressedAsset struct {
	RelativePath string
	Mime         string
	Data         []byte
	OriginalSize int
}

type Options struct {
	// Workers is both the number of long-lived workers and the batch size.
	// Default 4.
	Workers int
	// Level is the gzip level. Default gzip.BestCompression.
	Level int
	// FS, if set, is read by RelativePath instead of reading FullPath from disk.
	FS fs.FS
}

type Pool struct {
	workers int
	level   int
	fsys    fs.FS
}

func New(opts Options) (*Pool, error) {
	if opts.Workers == 0 {
		opts.Workers = DefaultWorkers
	}
	if opts.Workers < 1 {
		return nil, xerrors.Newf("workers must be >= 1 (got %d)", opts.Workers)
	}
	if opts.Level == 0 {
		opts.Level = gzip.BestCompression
	}
	if !ValidLevel(opts.Level) {
		return nil, xerrors.Newf("invalid gzip level %d", opts.Level)
	}
	return &Pool{workers: opts.Workers, level: opts.Level, fsys: opts.FS}, nil
}

func (p *Pool) Workers() int { return p.workers }

// Run compresses every file exactly once. The order of the returned slice is
// completion order and carries no meaning.
func (p *Pool) Run(ctx context.Context, files []collect.AssetFile) ([]CompressedAsset, error) {
	L := log.FromContext(ctx)

	g, gctx := errgroup.WithContext(ctx)
	jobs := make(chan collect.AssetFile)
	results := make(chan CompressedAsset)

	n := min(p.workers, max(len(files), 1))
	for i := 0; i < n; i++ {
		g.Go(func() error { return p.work(gctx, jobs, results) })
	}

	out := make([]CompressedAsset, 0, len(files))
	g.Go(func() error {
		defer close(jobs)
		for start := 0; start < len(files); start += p.workers {
			batch := files[start:min(start+p.workers, len(files))]
			L.Debug(gctx, "processing batch", "start", start, "size", len(batch))

			for _, f := range batch {
				select {
				case jobs <- f:
				case <-gctx.Done():
					return gctx.Err()
				}
			}
			// batch barrier: collect every result before queueing more work
			for range batch {
				select {
				case r := <-results:
					out = append(out, r)
				case <-gctx.Done():
					return gctx.Err()
				}
			}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// work runs for the lifetime of one Run, reusing its gzip writer and buffer.
func (p *Pool) work(ctx context.Context, jobs <-chan collect.AssetFile, results chan<- CompressedAsset) error {
	L := log.FromContext(ctx)

	var buf bytes.Buffer
	zw, err := gzip.NewWriterLevel(&buf, p.level)
	if err != nil {
		return xerrors.WithStack(err)
	}

	for f := range jobs {
		raw, err := p.read(f)
		if err != nil {
			return xerrors.Wrapf(err, "read %s", f.RelativePath)
		}

		buf.Reset()
		zw.Reset(&buf)
		if err := writeAll(zw, raw); err != nil {
			return xerrors.Wrapf(err, "compress %s", f.RelativePath)
		}

		r := CompressedAsset{
			RelativePath: f.RelativePath,
			Mime:         mimetype.Detect(f.RelativePath),
			Data:         bytes.Clone(buf.Bytes()),
			OriginalSize: len(raw),
		}
		L.Debug(ctx, "compressed", "path", r.RelativePath, "original_bytes", r.OriginalSize, "compressed_bytes", len(r.Data))

		select {
		case results <- r:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func (p *Pool) read(f collect.AssetFile) ([]byte, error) {
	if p.fsys != nil {
		return fs.ReadFile(p.fsys, f.RelativePath)
	}
	return os.ReadFile(f.FullPath)
}
