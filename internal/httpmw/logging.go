package httpmw

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/felixge/httpsnoop"
	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/keithlinneman/gzassets/internal/log"
)

const tracerName = "gzassets/httpmw"

// writeObserver records what a handler wrote and times the response write
// in a child span that starts on the first WriteHeader or Write.
type writeObserver struct {
	ctx      context.Context
	reqStart time.Time

	status int
	bytes  int64

	span         trace.Span
	started      bool
	firstWriteAt time.Duration
	blocked      time.Duration
	err          error
}

func (o *writeObserver) begin() {
	if o.started {
		return
	}
	o.started = true
	o.firstWriteAt = time.Since(o.reqStart)

	parent := trace.SpanFromContext(o.ctx)
	if !parent.IsRecording() {
		return
	}
	_, o.span = parent.TracerProvider().Tracer(tracerName).Start(o.ctx, "response.write",
		trace.WithAttributes(attribute.Float64("http.server.ttfb_seconds", o.firstWriteAt.Seconds())),
	)
}

func (o *writeObserver) wrote(n int64, err error, d time.Duration) {
	if o.status == 0 {
		o.status = http.StatusOK
	}
	o.bytes += n
	o.blocked += d
	if err != nil && o.err == nil {
		o.err = err
	}
}

func (o *writeObserver) finish() {
	if o.span == nil {
		return
	}
	o.span.SetAttributes(
		attribute.Int("http.response.status_code", o.statusCode()),
		attribute.Int64("http.response.body.size", o.bytes),
		attribute.Float64("http.server.write.block_seconds", o.blocked.Seconds()),
	)
	if o.err != nil {
		o.span.RecordError(o.err)
		o.span.SetStatus(codes.Error, o.err.Error())
	}
	o.span.End()
}

func (o *writeObserver) statusCode() int {
	if o.status == 0 {
		return http.StatusOK
	}
	return o.status
}

// wrap keeps Flusher, Hijacker and ReaderFrom on w when w has them.
func (o *writeObserver) wrap(w http.ResponseWriter) http.ResponseWriter {
	return httpsnoop.Wrap(w, httpsnoop.Hooks{
		WriteHeader: func(next httpsnoop.WriteHeaderFunc) httpsnoop.WriteHeaderFunc {
			return func(code int) {
				o.begin()
				if o.status == 0 {
					o.status = code
				}
				start := time.Now()
				next(code)
				o.blocked += time.Since(start)
			}
		},
		Write: func(next httpsnoop.WriteFunc) httpsnoop.WriteFunc {
			return func(b []byte) (int, error) {
				o.begin()
				start := time.Now()
				n, err := next(b)
				o.wrote(int64(n), err, time.Since(start))
				return n, err
			}
		},
		ReadFrom: func(next httpsnoop.ReadFromFunc) httpsnoop.ReadFromFunc {
			return func(src io.Reader) (int64, error) {
				o.begin()
				start := time.Now()
				n, err := next(src)
				o.wrote(n, err, time.Since(start))
				return n, err
			}
		},
	})
}

// WithLogger stores a request scoped logger in the context carrying the
// request id, client address, method, path and scheme.
func WithLogger(base log.Logger) func(http.Handler) http.Handler {
	if base == nil {
		base = log.Nop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			reqID := RequestIDFromContext(ctx)

			clientAddr := ClientIPFromContext(ctx)
			if clientAddr == "" {
				clientAddr = remoteHost(r.RemoteAddr)
			}
			scheme := schemeFromRequest(r)

			if span := trace.SpanFromContext(ctx); span.IsRecording() {
				span.SetAttributes(
					attribute.String("request_id", reqID),
					attribute.String("server.address", r.Host),
					attribute.String("client.address", clientAddr),
					attribute.String("url.scheme", scheme),
				)
			}

			L := base.With(
				"request_id", reqID,
				"client.address", clientAddr,
				"server.address", r.Host,
				"http.request.method", r.Method,
				"url.path", r.URL.Path,
				"url.scheme", scheme,
			)
			next.ServeHTTP(w, r.WithContext(log.WithContext(ctx, L)))
		})
	}
}

// AccessLog logs one line per request once the handler returns. Health
// probes are not logged.
func AccessLog() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			obs := &writeObserver{ctx: r.Context(), reqStart: start}

			next.ServeHTTP(obs.wrap(w), r)
			obs.finish()

			if r.URL.Path == "/-/healthy" || r.URL.Path == "/-/ready" {
				return
			}

			ctx := r.Context()
			route := ""
			if rc := chi.RouteContext(ctx); rc != nil {
				route = rc.RoutePattern()
			}
			if route == "" {
				route = r.URL.Path
			}

			log.FromContext(ctx).Info(ctx, "http request",
				"http.response.status_code", obs.statusCode(),
				"http.server.request.duration", time.Since(start).Seconds(),
				"http.response.body.size", obs.bytes,
				"http.route", route,
			)
		})
	}
}

// Scope tags the request logger and span with the handler name.
func Scope(handler string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			ctx = log.WithContext(ctx, log.FromContext(ctx).With("handler", handler))
			if span := trace.SpanFromContext(ctx); span.IsRecording() {
				span.SetAttributes(attribute.String("app.handler", handler))
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func schemeFromRequest(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	if r.URL != nil && r.URL.Scheme != "" {
		return r.URL.Scheme
	}
	return "http"
}
