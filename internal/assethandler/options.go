package assethandler

import (
	"errors"
	"fmt"
	"time"

	"github.com/keithlinneman/gzassets/internal/assetreg"
)

var ErrInvalidOptions = errors.New("invalid asset handler options")

// Metrics is the subset of metrics.ServerMetrics the handler reports to.
type Metrics interface {
	IncAssetRequest(result string)
	ObserveDecompress(n int, d time.Duration)
}

type Options struct {
	// Registry is consulted for every path except the index route.
	Registry assetreg.Registry

	// Index is served for "/" (and any path made only of slashes). It is
	// never looked up in Registry.
	Index            []byte
	IndexContentType string // default: "text/html; charset=utf-8"

	CacheControl         string // default: "public, max-age=86400"
	NotFoundCacheControl string // default: "no-store"

	// ServeGzip returns stored gzip bytes as-is to clients that accept gzip
	// instead of decompressing per request.
	ServeGzip bool

	Metrics Metrics
}

func (o *Options) setDefaults() {
	if o.IndexContentType == "" {
		o.IndexContentType = "text/html; charset=utf-8"
	}
	if o.CacheControl == "" {
		o.CacheControl = "public, max-age=86400"
	}
	if o.NotFoundCacheControl == "" {
		o.NotFoundCacheControl = "no-store"
	}
	if o.Metrics == nil {
		o.Metrics = nopMetrics{}
	}
}

func (o *Options) validate() error {
	if o.Registry == nil {
		return fmt.Errorf("%w: Registry is nil", ErrInvalidOptions)
	}
	if len(o.Index) == 0 {
		return fmt.Errorf("%w: Index is empty", ErrInvalidOptions)
	}
	return nil
}

type nopMetrics struct{}

func (nopMetrics) IncAssetRequest(string)               {}
func (nopMetrics) ObserveDecompress(int, time.Duration) {}
