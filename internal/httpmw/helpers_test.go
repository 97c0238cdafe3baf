package httpmw

import (
	"context"
	"sync"
	"testing"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"

	"github.com/keithlinneman/gzassets/internal/log"
)

type captured struct {
	msg    string
	err    error
	fields []any
}

// captureLogger records With, Info and Error calls. With returns the same
// logger so every call lands in one place.
type captureLogger struct {
	mu     sync.Mutex
	withs  [][]any
	infos  []captured
	errors []captured
}

func (l *captureLogger) With(kv ...any) log.Logger {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.withs = append(l.withs, kv)
	return l
}

func (l *captureLogger) Info(_ context.Context, msg string, kv ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.infos = append(l.infos, captured{msg: msg, fields: kv})
}

func (l *captureLogger) Error(_ context.Context, err error, msg string, kv ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errors = append(l.errors, captured{msg: msg, err: err, fields: kv})
}

func (l *captureLogger) Debug(context.Context, string, ...any) {}
func (l *captureLogger) Warn(context.Context, string, ...any)  {}
func (l *captureLogger) Sync() error                           { return nil }

func (l *captureLogger) snapshot() (withs [][]any, infos, errs []captured) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.withs, l.infos, l.errors
}

// field returns the value following key in a flat kv list.
func field(kv []any, key string) (any, bool) {
	for i := 0; i+1 < len(kv); i += 2 {
		if kv[i] == key {
			return kv[i+1], true
		}
	}
	return nil, false
}

// recordingContext returns a context holding a recording span.
func recordingContext(t *testing.T) (context.Context, trace.Span, *tracetest.SpanRecorder) {
	t.Helper()
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	ctx, span := tp.Tracer("test").Start(context.Background(), "request")
	return ctx, span, sr
}
