// Command server serves the assets compiled into webassets over HTTP(S)
// and opens a browser at the index page.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/keithlinneman/gzassets/internal/assethandler"
	"github.com/keithlinneman/gzassets/internal/browser"
	"github.com/keithlinneman/gzassets/internal/cfg"
	"github.com/keithlinneman/gzassets/internal/health"
	"github.com/keithlinneman/gzassets/internal/httpserver"
	"github.com/keithlinneman/gzassets/internal/log"
	"github.com/keithlinneman/gzassets/internal/metrics"
	"github.com/keithlinneman/gzassets/internal/opshttp"
	"github.com/keithlinneman/gzassets/internal/otelx"
	"github.com/keithlinneman/gzassets/internal/prof"
	"github.com/keithlinneman/gzassets/internal/ratelimit"
	v "github.com/keithlinneman/gzassets/internal/version"
	"github.com/keithlinneman/gzassets/internal/webassets"
)

const (
	component  = "server"
	drainDelay = 2 * time.Second
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := pflag.NewFlagSet("gzassets-server", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	var conf cfg.Server
	cfg.RegisterServer(fs, &conf)
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: gzassets-server [flags]\n\nServe embedded assets over HTTP or HTTPS.\n\nFlags:\n%s", fs.FlagUsages())
	}

	args = cfg.StripUnknown(fs, args, func(flag string) {
		fmt.Fprintf(stderr, "warning: ignoring unknown flag %s\n", flag)
	})
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		fmt.Fprintln(stderr, "error:", err)
		return cfg.ExitInvalid
	}
	if conf.Help {
		fs.Usage()
		return 0
	}
	if conf.Version {
		fmt.Fprintln(stdout, v.Get().String())
		return 0
	}

	cfg.FillFromEnv(fs, cfg.EnvPrefix, func(format string, args ...any) {
		fmt.Fprintf(stderr, format+"\n", args...)
	})
	if err := cfg.ValidateServer(conf); err != nil {
		fmt.Fprintln(stderr, "config error:", err)
		return cfg.ExitCode(err)
	}

	lvl, _ := log.ParseLevel(conf.LogLevel)
	if conf.Verbose {
		lvl = slog.LevelDebug
	}
	stackLvl, err := log.ParseLevel(conf.StacktraceLevel)
	if err != nil {
		stackLvl = slog.LevelError
	}
	vi := v.Get()
	L, err := log.New(log.Options{
		App:               v.AppName,
		Component:         component,
		Version:           vi.Version,
		Level:             lvl,
		StacktraceLevel:   stackLvl,
		JSON:              conf.LogJSON,
		IncludeErrorLinks: conf.IncludeErrorLinks,
		MaxErrorLinks:     conf.MaxErrorLinks,
		Writer:            stdout,
	})
	if err != nil {
		fmt.Fprintln(stderr, "logger init error:", err)
		return 1
	}
	defer L.Sync()
	ctx = log.WithContext(ctx, L)

	L.Info(ctx, "starting", "version", vi.Version, "commit", vi.Commit, "build_date", vi.BuildDate)

	if err := serve(ctx, conf, L); err != nil {
		L.Error(ctx, err, "server failed")
		return 1
	}
	return 0
}

func serve(ctx context.Context, conf cfg.Server, L log.Logger) error {
	port, _ := cfg.ParsePort(conf.Port)
	vi := v.Get()

	stopProf, profErr := prof.Start(ctx, prof.Options{
		Enabled:       conf.EnablePyroscope,
		AppName:       v.AppName + "." + component,
		ServerAddress: conf.PyroServer,
		TenantID:      conf.PyroTenantID,
		Tags:          map[string]string{"version": vi.Version},
	})
	if profErr != nil {
		// profiling is optional
		L.Warn(ctx, "pyroscope profiling failed to start", "err", profErr)
	}
	defer stopProf()

	shutdownOTEL, err := otelx.Init(ctx, otelx.Options{
		Enabled:   conf.EnableTracing,
		Endpoint:  conf.OTLPEndpoint,
		Insecure:  conf.OTLPInsecure,
		Sample:    conf.TraceSample,
		Service:   v.AppName,
		Component: component,
		Version:   vi.Version,
	})
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownOTEL(sctx); err != nil {
			L.Warn(ctx, "otel shutdown", "err", err)
		}
	}()

	m := metrics.New()
	m.SetBuildInfoFromVersion(v.AppName, component, vi)
	m.SetProfilingActive(conf.EnablePyroscope && profErr == nil)

	reg := webassets.Registry()
	m.SetRegistry(len(reg), reg.CompressedSize())
	L.Info(ctx, "asset registry loaded", "entries", len(reg), "compressed_bytes", reg.CompressedSize())

	assets, err := assethandler.New(assethandler.Options{
		Registry:  reg,
		Index:     webassets.IndexPage(),
		ServeGzip: conf.ServeGzip,
		Metrics:   m,
	})
	if err != nil {
		return err
	}

	var gate health.ShutdownGate
	healthProbe := health.Fixed(true, "")
	readiness := health.All(gate.Probe())

	var rateMW func(next http.Handler) http.Handler
	if conf.RateLimit > 0 {
		limiter := ratelimit.New(ctx,
			ratelimit.WithRate(conf.RateLimit, conf.RateBurst),
			ratelimit.WithOnDenied(func(string) { m.IncRateLimitDenied() }),
			ratelimit.WithOnFirstDenied(func(ip string) {
				L.Warn(ctx, "rate limit exceeded", "client.address", ip)
			}),
			ratelimit.WithOnCapacity(func() {
				m.IncRateLimitCapacity()
				L.Warn(ctx, "rate limiter at visitor capacity")
			}),
		)
		rateMW = limiter.Middleware
	}

	stopHTTP, err := httpserver.Start(ctx, &httpserver.Options{
		Logger:       L,
		Port:         port,
		CertFile:     conf.Cert,
		KeyFile:      conf.Key,
		Assets:       assets,
		Health:       healthProbe,
		Readiness:    readiness,
		UseRecoverMW: true,
		OnPanic:      m.IncHttpPanic,
		MetricsMW:    m.Middleware,
		RateLimitMW:  rateMW,
	})
	if err != nil {
		return err
	}

	stopOps := func(context.Context) error { return nil }
	if conf.AdminPort > 0 {
		stopOps, err = opshttp.Start(ctx, L, opshttp.Options{
			Port:         conf.AdminPort,
			Metrics:      m.Handler(),
			EnablePprof:  conf.EnablePprof,
			Health:       healthProbe,
			Readiness:    readiness,
			UseRecoverMW: true,
			OnPanic:      m.IncHttpPanic,
		})
		if err != nil {
			_ = stopHTTP(context.Background())
			return err
		}
	}

	url := siteURL(conf.TLS(), conf.Host, port)
	L.Info(ctx, "serving", "url", url, "tls", conf.TLS())
	if program, enabled := conf.BrowserProgram(); enabled {
		go func() {
			if err := browser.Open(ctx, program, url); err != nil {
				L.Warn(ctx, "could not open browser", "err", err, "url", url)
			}
		}()
	}

	<-ctx.Done()
	L.Info(ctx, "shutdown signal received")

	gate.Set("draining")
	select {
	case <-time.After(drainDelay):
	case <-secondSignal():
		L.Warn(context.Background(), "second signal, skipping drain")
	}

	sctx, cancel := context.WithTimeout(context.Background(), httpserver.DefaultShutdownTimeout)
	defer cancel()
	var errs []error
	if err := stopHTTP(sctx); err != nil {
		errs = append(errs, err)
	}
	if err := stopOps(sctx); err != nil {
		errs = append(errs, err)
	}
	L.Info(context.Background(), "shutdown complete")
	return errors.Join(errs...)
}

// secondSignal fires when another interrupt arrives after the first one
// canceled ctx.
func secondSignal() <-chan os.Signal {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
	return ch
}

func siteURL(tls bool, host string, port int) string {
	scheme := "http"
	if tls {
		scheme = "https"
	}
	if host == "" {
		host = "localhost"
	}
	return scheme + "://" + net.JoinHostPort(host, strconv.Itoa(port)) + "/"
}
