package cfg

import (
	"errors"
	"fmt"
	"go/token"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/keithlinneman/gzassets/internal/compress"
	"github.com/keithlinneman/gzassets/internal/log"
	"github.com/keithlinneman/gzassets/internal/output"
)

// Process exit statuses for fatal configuration problems.
const (
	ExitInvalid     = 1
	ExitInvalidPort = 2
	ExitMissingCert = 3
	ExitMissingKey  = 4
)

const maxPort = 65534

// ExitError carries the process exit status for a configuration error.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string { return e.Err.Error() }
func (e *ExitError) Unwrap() error { return e.Err }
func (e *ExitError) ExitCode() int { return e.Code }

func exitErr(code int, format string, args ...any) error {
	return &ExitError{Code: code, Err: fmt.Errorf(format, args...)}
}

// ExitCode returns the status to exit with for err: the code of the first
// ExitError in its tree, 1 for any other error, 0 for nil.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var ee *ExitError
	if errors.As(err, &ee) {
		return ee.Code
	}
	return ExitInvalid
}

// ParsePort parses a --port value. Valid ports are 1..65534.
func ParsePort(s string) (int, error) {
	p, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || p <= 0 || p > maxPort {
		return 0, exitErr(ExitInvalidPort, "invalid port %q (must be 1..%d)", s, maxPort)
	}
	return p, nil
}

// ValidateBundler returns an error describing every invalid field.
func ValidateBundler(c Bundler) error {
	var errs []error

	if strings.TrimSpace(c.Folder) == "" {
		errs = append(errs, errors.New("--folder must not be empty"))
	}
	if strings.TrimSpace(c.Ignore) == "" {
		errs = append(errs, errors.New("--ignore must not be empty"))
	}
	if _, err := output.ParseTarget(c.Output); err != nil {
		errs = append(errs, fmt.Errorf("invalid --output: %w", err))
	}
	if c.Threads < 1 {
		errs = append(errs, fmt.Errorf("--threads must be >= 1 (got %d)", c.Threads))
	}
	if c.Level < 1 || c.Level > 9 || !compress.ValidLevel(c.Level) {
		errs = append(errs, fmt.Errorf("--level must be 1..9 (got %d)", c.Level))
	}
	if !token.IsIdentifier(c.Package) {
		errs = append(errs, fmt.Errorf("--package %q is not a valid Go identifier", c.Package))
	}
	if !token.IsIdentifier(c.Var) {
		errs = append(errs, fmt.Errorf("--var %q is not a valid Go identifier", c.Var))
	}
	if c.RegistryImport == "" {
		errs = append(errs, errors.New("--registry-import must not be empty"))
	}

	return errors.Join(errs...)
}

// ValidateServer returns an error describing every invalid field. The port
// and TLS file checks carry exit statuses (see ExitCode); they are reported
// first so the most specific status wins.
func ValidateServer(c Server) error {
	var errs []error

	if _, err := ParsePort(c.Port); err != nil {
		errs = append(errs, err)
	}

	if c.Cert != "" || c.Key != "" {
		if !isFile(c.Cert) {
			errs = append(errs, exitErr(ExitMissingCert, "could not open certificate %q", c.Cert))
		}
		if !isFile(c.Key) {
			errs = append(errs, exitErr(ExitMissingKey, "could not open key %q", c.Key))
		}
	}

	if c.AdminPort < 0 || c.AdminPort > 65535 {
		errs = append(errs, fmt.Errorf("invalid --admin-port %d (must be 0..65535)", c.AdminPort))
	} else if p, err := strconv.Atoi(strings.TrimSpace(c.Port)); err == nil && c.AdminPort != 0 && c.AdminPort == p {
		errs = append(errs, fmt.Errorf("--admin-port and --port must differ (both %d)", p))
	}

	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("invalid --log-level %q: %w", c.LogLevel, err))
	}
	if c.StacktraceLevel != "" {
		if _, err := log.ParseLevel(c.StacktraceLevel); err != nil {
			errs = append(errs, fmt.Errorf("invalid --stacktrace-level %q: %w", c.StacktraceLevel, err))
		}
	}
	if c.IncludeErrorLinks && (c.MaxErrorLinks < 1 || c.MaxErrorLinks > 64) {
		errs = append(errs, fmt.Errorf("--max-error-links must be 1..64 (got %d)", c.MaxErrorLinks))
	}

	if c.TraceSample < 0 || c.TraceSample > 1 {
		errs = append(errs, fmt.Errorf("invalid --trace-sample %.3f (must be 0..1)", c.TraceSample))
	}
	// grpc exporter wants host:port, no scheme
	if c.EnableTracing {
		if c.OTLPEndpoint == "" {
			errs = append(errs, errors.New("--otlp-endpoint required with --enable-tracing"))
		} else if _, _, err := net.SplitHostPort(c.OTLPEndpoint); err != nil {
			errs = append(errs, fmt.Errorf("--otlp-endpoint must be host:port (got %q): %v", c.OTLPEndpoint, err))
		}
	}

	if c.EnablePyroscope {
		if c.PyroServer == "" {
			errs = append(errs, errors.New("--pyro-server required with --enable-pyroscope"))
		} else if u, err := url.Parse(c.PyroServer); err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, fmt.Errorf("--pyro-server must be a URL (got %q)", c.PyroServer))
		}
		if c.PyroTenantID == "" {
			errs = append(errs, errors.New("--pyro-tenant required with --enable-pyroscope"))
		}
	}

	if c.EnablePprof && c.AdminPort == 0 {
		errs = append(errs, errors.New("--enable-pprof requires --admin-port"))
	}
	if c.RateLimit < 0 {
		errs = append(errs, fmt.Errorf("--rate-limit must be >= 0 (got %g)", c.RateLimit))
	}
	if c.RateLimit > 0 && c.RateBurst < 1 {
		errs = append(errs, fmt.Errorf("--rate-burst must be >= 1 (got %d)", c.RateBurst))
	}

	return errors.Join(errs...)
}

func isFile(p string) bool {
	if p == "" {
		return false
	}
	info, err := os.Stat(p)
	return err == nil && !info.IsDir()
}
