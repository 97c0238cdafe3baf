// Package cfg binds command line flags for the bundler and the server,
// fills unset flags from the environment and validates the result.
package cfg

import (
	"os"
	"strings"

	"github.com/spf13/pflag"

	"github.com/keithlinneman/gzassets/internal/codegen"
	"github.com/keithlinneman/gzassets/internal/collect"
	"github.com/keithlinneman/gzassets/internal/compress"
)

// EnvPrefix is prepended to environment variable names: flag "foo-bar"
// maps to GZASSETS_FOO_BAR.
const EnvPrefix = "GZASSETS_"

type Bundler struct {
	Folder         string
	Ignore         string
	Output         string
	Threads        int
	Level          int
	Package        string
	Var            string
	RegistryImport string

	Verbose bool
	LogJSON bool
	Help    bool
	Version bool
}

// RegisterBundler binds all bundler fields to fs with defaults inline.
func RegisterBundler(fs *pflag.FlagSet, c *Bundler) {
	fs.StringVar(&c.Folder, "folder", ".", "root folder to embed")
	fs.StringVar(&c.Ignore, "ignore", collect.DefaultIgnoreFile, "exclusion list inside the root folder, one substring per line")
	fs.StringVarP(&c.Output, "output", "o", "assets_gen.go", "output file, STDOUT, or s3://bucket/key")
	fs.IntVar(&c.Threads, "threads", compress.DefaultWorkers, "number of compression workers (>= 1)")
	fs.IntVar(&c.Level, "level", 9, "gzip level (1..9)")
	fs.StringVar(&c.Package, "package", codegen.DefaultPackage, "package name of the generated file")
	fs.StringVar(&c.Var, "var", codegen.DefaultVar, "name of the generated registry variable")
	fs.StringVar(&c.RegistryImport, "registry-import", codegen.DefaultRegistryImport, "import path of the registry package")
	fs.BoolVarP(&c.Verbose, "verbose", "v", false, "enable debug logging")
	fs.BoolVar(&c.LogJSON, "log-json", false, "JSON logs (true) or logfmt (false)")
	fs.BoolVarP(&c.Help, "help", "h", false, "show this help message")
	fs.BoolVarP(&c.Version, "version", "V", false, "print version and exit")
}

type Server struct {
	Port      string
	Host      string
	Cert      string
	Key       string
	Browser   string
	NoBrowser bool

	Verbose           bool
	LogJSON           bool
	LogLevel          string
	StacktraceLevel   string
	IncludeErrorLinks bool
	MaxErrorLinks     int

	AdminPort       int
	EnablePprof     bool
	EnableTracing   bool
	OTLPEndpoint    string
	OTLPInsecure    bool
	TraceSample     float64
	EnablePyroscope bool
	PyroServer      string
	PyroTenantID    string

	RateLimit float64
	RateBurst int
	ServeGzip bool

	Help    bool
	Version bool
}

// browserAuto is the --browser value meaning "use the OS default opener".
const browserAuto = "auto"

// RegisterServer binds all server fields to fs with defaults inline.
func RegisterServer(fs *pflag.FlagSet, c *Server) {
	fs.StringVarP(&c.Port, "port", "p", "8000", "port to listen on (1..65534)")
	fs.StringVarP(&c.Host, "host", "H", "localhost", "hostname/address to open in the browser")
	fs.StringVarP(&c.Cert, "cert", "c", "", "TLS certificate file; requires --key")
	fs.StringVarP(&c.Key, "key", "k", "", "TLS private key file; requires --cert")
	fs.StringVarP(&c.Browser, "browser", "b", browserAuto, "open the page in a browser: auto, false, or a path to the browser executable")
	fs.Lookup("browser").NoOptDefVal = browserAuto
	fs.BoolVar(&c.NoBrowser, "no-browser", false, "same as --browser=false")

	fs.BoolVarP(&c.Verbose, "verbose", "v", false, "enable debug logging (same as --log-level=debug)")
	fs.BoolVar(&c.LogJSON, "log-json", true, "JSON logs (true) or logfmt (false)")
	fs.StringVar(&c.LogLevel, "log-level", "info", "debug|info|warn|error")
	fs.StringVar(&c.StacktraceLevel, "stacktrace-level", "error", "debug|info|warn|error")
	fs.BoolVar(&c.IncludeErrorLinks, "include-error-links", true, "include error chain call sites in log records")
	fs.IntVar(&c.MaxErrorLinks, "max-error-links", 5, "max error chain depth (1..64)")

	fs.IntVar(&c.AdminPort, "admin-port", 0, "ops listener port for metrics, health and pprof (0 disables)")
	fs.BoolVar(&c.EnablePprof, "enable-pprof", false, "serve pprof on the admin port")
	fs.BoolVar(&c.EnableTracing, "enable-tracing", false, "export OTLP traces to --otlp-endpoint")
	fs.StringVar(&c.OTLPEndpoint, "otlp-endpoint", "", "OTLP gRPC endpoint (host:port)")
	fs.BoolVar(&c.OTLPInsecure, "otlp-insecure", true, "disable TLS to the OTLP endpoint")
	fs.Float64Var(&c.TraceSample, "trace-sample", 0.0, "trace sampling ratio (0..1)")
	fs.BoolVar(&c.EnablePyroscope, "enable-pyroscope", false, "push profiles to --pyro-server")
	fs.StringVar(&c.PyroServer, "pyro-server", "", "pyroscope server url to push to")
	fs.StringVar(&c.PyroTenantID, "pyro-tenant", "", "tenant (x-scope-orgid) to use for pyro-server")

	fs.Float64Var(&c.RateLimit, "rate-limit", 0, "per client requests per second (0 disables)")
	fs.IntVar(&c.RateBurst, "rate-burst", 50, "per client burst size")
	fs.BoolVar(&c.ServeGzip, "serve-gzip", false, "send stored gzip bytes to clients that accept gzip")

	fs.BoolVarP(&c.Help, "help", "h", false, "show this help message")
	fs.BoolVarP(&c.Version, "version", "V", false, "print version and exit")
}

// BrowserProgram reports whether a browser should be launched and, if an
// explicit executable was given, its path. An empty program means the OS
// default opener.
func (c Server) BrowserProgram() (program string, enabled bool) {
	if c.NoBrowser {
		return "", false
	}
	switch strings.ToLower(strings.TrimSpace(c.Browser)) {
	case "", browserAuto, "true", "1", "yes":
		return "", true
	case "false", "0", "no", "none":
		return "", false
	default:
		return c.Browser, true
	}
}

// TLS reports whether both a certificate and a key were given.
func (c Server) TLS() bool { return c.Cert != "" && c.Key != "" }

// FillFromEnv sets any flag not explicitly passed on the CLI from
// environment variables. Flag "foo-bar" maps to PREFIX_FOO_BAR.
// Precedence: cli flag > env var > default.
func FillFromEnv(fs *pflag.FlagSet, prefix string, logf func(string, ...any)) {
	fs.VisitAll(func(f *pflag.Flag) {
		if f.Name == "help" || f.Name == "version" {
			return
		}
		key := prefix + strings.ReplaceAll(strings.ToUpper(f.Name), "-", "_")
		envVal, envSet := os.LookupEnv(key)
		if !envSet {
			return
		}
		if f.Changed {
			if logf != nil {
				logf("flag --%s: cli value %q overrides env %s=%q", f.Name, f.Value.String(), key, envVal)
			}
			return
		}
		prev := f.Value.String()
		if err := fs.Set(f.Name, envVal); err != nil {
			_ = f.Value.Set(prev)
			if logf != nil {
				logf("flag --%s: ignoring invalid env %s=%q: %v", f.Name, key, envVal, err)
			}
		}
	})
}
