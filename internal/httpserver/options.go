package httpserver

import (
	"net/http"

	"github.com/keithlinneman/gzassets/internal/health"
	"github.com/keithlinneman/gzassets/internal/httpmw"
	"github.com/keithlinneman/gzassets/internal/log"
)

type Options struct {
	Logger log.Logger

	// Host is the listen address; empty listens on every interface.
	Host string
	Port int

	// TLS is enabled when both are set.
	CertFile string
	KeyFile  string

	// Assets answers every request no other route claims, including "/".
	Assets http.Handler

	Health    health.Probe
	Readiness health.Probe

	UseRecoverMW bool
	OnPanic      func()
	MetricsMW    func(http.Handler) http.Handler
	RateLimitMW  func(http.Handler) http.Handler
	ClientIPOpts httpmw.ClientIPOptions
}

// TLS reports whether the server will serve https.
func (o *Options) TLS() bool { return o.CertFile != "" && o.KeyFile != "" }
