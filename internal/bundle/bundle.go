// Package bundle runs one bundling pass: collect, compress, render, write.
package bundle

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/keithlinneman/gzassets/internal/codegen"
	"github.com/keithlinneman/gzassets/internal/collect"
	"github.com/keithlinneman/gzassets/internal/compress"
	"github.com/keithlinneman/gzassets/internal/log"
	"github.com/keithlinneman/gzassets/internal/output"
	"github.com/keithlinneman/gzassets/internal/xerrors"
)

type Options struct {
	// Root is the asset folder. Default ".".
	Root string
	// IgnoreFile is the exclusion list inside Root. Default "ignoreasset".
	IgnoreFile string
	// Output is STDOUT, s3://bucket/key or a file path.
	Output string

	Workers int
	Level   int

	Codegen codegen.Options
}

// Summary describes a completed run.
type Summary struct {
	Files           int
	OriginalBytes   int64
	CompressedBytes int64
	SourceBytes     int
	Target          output.Target
	Duration        time.Duration
}

// Run builds the generated source and delivers it to opts.Output. Nothing is
// written unless every file was collected and compressed successfully.
func Run(ctx context.Context, opts Options, w *output.Writer) (Summary, error) {
	L := log.FromContext(ctx)
	start := time.Now()

	target, err := output.ParseTarget(opts.Output)
	if err != nil {
		return Summary{}, err
	}

	src, sum, err := Build(ctx, opts, target)
	if err != nil {
		return Summary{}, err
	}
	if err := w.Write(ctx, target, src); err != nil {
		return Summary{}, err
	}

	sum.Target = target
	sum.Duration = time.Since(start)
	L.Info(ctx, "bundle complete",
		"files", sum.Files,
		"original_bytes", sum.OriginalBytes,
		"compressed_bytes", sum.CompressedBytes,
		"source_bytes", sum.SourceBytes,
		"target", target.String(),
		"duration", sum.Duration,
	)
	return sum, nil
}

// Build returns the generated source without writing it. A file target that
// lives inside Root is excluded so a rerun does not embed its own output.
func Build(ctx context.Context, opts Options, target output.Target) ([]byte, Summary, error) {
	L := log.FromContext(ctx)
	if opts.Root == "" {
		opts.Root = "."
	}

	x, err := collect.LoadExclusions(ctx, opts.Root, opts.IgnoreFile)
	if err != nil {
		return nil, Summary{}, err
	}
	if rel, ok := insideRoot(opts.Root, target); ok {
		L.Debug(ctx, "excluding output file", "path", rel)
		x = x.With(rel)
	}

	files, err := collect.Dir(ctx, opts.Root, x)
	if err != nil {
		return nil, Summary{}, err
	}

	pool, err := compress.New(compress.Options{Workers: opts.Workers, Level: opts.Level})
	if err != nil {
		return nil, Summary{}, err
	}
	L.Debug(ctx, "compressing", "files", len(files), "workers", pool.Workers())

	assets, err := pool.Run(ctx, files)
	if err != nil {
		return nil, Summary{}, xerrors.Wrap(err, "compress assets")
	}

	src, err := codegen.Render(assets, opts.Codegen)
	if err != nil {
		return nil, Summary{}, xerrors.Wrap(err, "render source")
	}

	sum := Summary{Files: len(assets), SourceBytes: len(src)}
	for _, a := range assets {
		sum.OriginalBytes += int64(a.OriginalSize)
		sum.CompressedBytes += int64(len(a.Data))
		L.Debug(ctx, "embedded", "path", a.RelativePath, "mime", a.Mime,
			"original_bytes", a.OriginalSize, "compressed_bytes", len(a.Data))
	}
	return src, sum, nil
}

func insideRoot(root string, t output.Target) (string, bool) {
	if t.Kind != output.KindFile {
		return "", false
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", false
	}
	absOut, err := filepath.Abs(t.Path)
	if err != nil {
		return "", false
	}
	rel, err := filepath.Rel(absRoot, absOut)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return filepath.ToSlash(rel), true
}
