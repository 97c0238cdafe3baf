// Package assethandler serves assets from an embedded registry. Payloads
// are decompressed on every request; nothing decompressed is cached.
package assethandler

import (
	"net/http"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/keithlinneman/gzassets/internal/assetreg"
	"github.com/keithlinneman/gzassets/internal/log"
	"github.com/keithlinneman/gzassets/internal/metrics"
	"github.com/keithlinneman/gzassets/internal/pathutil"
)

const notFoundBody = "404 Not Found"

type Handler struct {
	opts   Options
	tracer trace.Tracer
}

func New(opts Options) (*Handler, error) {
	opts.setDefaults()
	if err := opts.validate(); err != nil {
		return nil, err
	}
	return &Handler{
		opts:   opts,
		tracer: otel.Tracer("gzassets/assethandler"),
	}, nil
}

// ServeHTTP treats every method as a read. The registry is read-only, so the
// handler keeps no per-request state and is safe for concurrent use.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	key, ok := pathutil.AssetKey(r.URL.Path)
	if !ok {
		h.opts.Metrics.IncAssetRequest(metrics.ResultInvalid)
		h.serveNotFound(w)
		return
	}

	if key == "" {
		h.opts.Metrics.IncAssetRequest(metrics.ResultIndex)
		h.write(w, r, h.opts.IndexContentType, "no-cache", h.opts.Index)
		return
	}

	asset, found := h.opts.Registry.Lookup(key)
	if !found {
		h.opts.Metrics.IncAssetRequest(metrics.ResultMiss)
		h.serveNotFound(w)
		return
	}

	if h.opts.ServeGzip {
		w.Header().Add("Vary", "Accept-Encoding")
		if acceptsGzip(r.Header.Get("Accept-Encoding")) {
			h.opts.Metrics.IncAssetRequest(metrics.ResultPassthrough)
			w.Header().Set("Content-Encoding", "gzip")
			h.write(w, r, asset.Mime, h.opts.CacheControl, asset.Data)
			return
		}
	}

	body, err := h.decompress(r, key, asset)
	if err != nil {
		h.opts.Metrics.IncAssetRequest(metrics.ResultError)
		log.FromContext(r.Context()).Error(r.Context(), err, "decompress asset failed", "asset", key)
		w.Header().Del("Vary")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	h.opts.Metrics.IncAssetRequest(metrics.ResultHit)
	h.write(w, r, asset.Mime, h.opts.CacheControl, body)
}

func (h *Handler) decompress(r *http.Request, key string, a assetreg.Asset) ([]byte, error) {
	_, span := h.tracer.Start(r.Context(), "asset.decompress",
		trace.WithAttributes(
			attribute.String("asset.path", key),
			attribute.Int("asset.compressed_bytes", len(a.Data)),
		),
	)
	defer span.End()

	start := time.Now()
	body, err := a.Decompress()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "decompress failed")
		return nil, err
	}
	h.opts.Metrics.ObserveDecompress(len(body), time.Since(start))
	span.SetAttributes(attribute.Int("asset.original_bytes", len(body)))
	return body, nil
}

func (h *Handler) write(w http.ResponseWriter, r *http.Request, contentType, cacheControl string, body []byte) {
	hdr := w.Header()
	hdr.Set("Content-Type", contentType)
	hdr.Set("Cache-Control", cacheControl)
	hdr.Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}
	_, _ = w.Write(body)
}

func (h *Handler) serveNotFound(w http.ResponseWriter) {
	hdr := w.Header()
	hdr.Set("Content-Type", "text/plain; charset=utf-8")
	hdr.Set("Cache-Control", h.opts.NotFoundCacheControl)
	hdr.Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(http.StatusNotFound)
	_, _ = w.Write([]byte(notFoundBody))
}
