package output

import (
	"bytes"
	"context"
	"io"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/keithlinneman/gzassets/internal/log"
	"github.com/keithlinneman/gzassets/internal/xerrors"
)

// GoSourceContentType is set on uploaded objects.
const GoSourceContentType = "text/x-go; charset=utf-8"

// ObjectPutter is the subset of *s3.Client used for uploads.
type ObjectPutter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type Options struct {
	// Stdout defaults to os.Stdout.
	Stdout io.Writer
	// S3 is used for s3:// targets. When nil a client is built from the
	// default AWS config on first use.
	S3 ObjectPutter
	// FileMode defaults to 0644.
	FileMode os.FileMode
}

type Writer struct {
	opts Options
}

func NewWriter(opts Options) *Writer {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.FileMode == 0 {
		opts.FileMode = 0o644
	}
	return &Writer{opts: opts}
}

// Write delivers data to t. data must be complete; nothing is streamed.
func (w *Writer) Write(ctx context.Context, t Target, data []byte) error {
	L := log.FromContext(ctx)

	switch t.Kind {
	case KindStdout:
		if _, err := w.opts.Stdout.Write(data); err != nil {
			return xerrors.Wrap(err, "write stdout")
		}
	case KindS3:
		if err := w.putS3(ctx, t, data); err != nil {
			return err
		}
	default:
		if err := WriteFileAtomic(t.Path, data, w.opts.FileMode); err != nil {
			return err
		}
	}

	L.Info(ctx, "output written", "target", t.String(), "kind", t.Kind.String(), "bytes", len(data))
	return nil
}

func (w *Writer) putS3(ctx context.Context, t Target, data []byte) error {
	client := w.opts.S3
	if client == nil {
		awsCfg, err := config.LoadDefaultConfig(ctx)
		if err != nil {
			return xerrors.Wrap(err, "load AWS config")
		}
		client = s3.NewFromConfig(awsCfg)
		w.opts.S3 = client
	}

	_, err := client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(t.Bucket),
		Key:           aws.String(t.Key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(GoSourceContentType),
	})
	if err != nil {
		return xerrors.Wrapf(err, "put S3 object %s", t)
	}
	return nil
}
