// Package output delivers the generated source to stdout, a local file or
// an S3 object.
package output

import (
	"net/url"
	"strings"

	"github.com/keithlinneman/gzassets/internal/xerrors"
)

// Stdout is the --output value that selects standard output.
const Stdout = "STDOUT"

type Kind int

const (
	KindFile Kind = iota
	KindStdout
	KindS3
)

func (k Kind) String() string {
	switch k {
	case KindStdout:
		return "stdout"
	case KindS3:
		return "s3"
	default:
		return "file"
	}
}

// Target is a parsed --output value.
type Target struct {
	Kind Kind
	// Path is set for KindFile.
	Path string
	// Bucket and Key are set for KindS3.
	Bucket string
	Key    string
}

func (t Target) String() string {
	switch t.Kind {
	case KindStdout:
		return Stdout
	case KindS3:
		return "s3://" + t.Bucket + "/" + t.Key
	default:
		return t.Path
	}
}

// ParseTarget accepts STDOUT, s3://bucket/key or a file path.
func ParseTarget(s string) (Target, error) {
	s = strings.TrimSpace(s)
	switch {
	case s == "":
		return Target{}, xerrors.New("output target is empty")
	case s == Stdout:
		return Target{Kind: KindStdout}, nil
	case strings.HasPrefix(s, "s3://"):
		u, err := url.Parse(s)
		if err != nil {
			return Target{}, xerrors.Wrapf(err, "parse output %q", s)
		}
		key := strings.TrimPrefix(u.Path, "/")
		if u.Host == "" || key == "" || strings.HasSuffix(key, "/") {
			return Target{}, xerrors.Newf("output %q must be s3://bucket/key", s)
		}
		return Target{Kind: KindS3, Bucket: u.Host, Key: key}, nil
	default:
		return Target{Kind: KindFile, Path: s}, nil
	}
}
