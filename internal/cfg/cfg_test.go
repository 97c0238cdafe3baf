package cfg

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/spf13/pflag"
)

func wantErrContains(t *testing.T, err error, sub string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error containing %q, got <nil>", sub)
	}
	if !strings.Contains(err.Error(), sub) {
		t.Fatalf("error %q does not contain %q", err.Error(), sub)
	}
}

// newTestServer registers server flags on a fresh FlagSet and parses args.
// The returned pointer is the struct the flags are bound to, so later
// FillFromEnv calls on fs are visible through it.
func newTestServer(t *testing.T, args []string) (*Server, *pflag.FlagSet) {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	c := &Server{}
	RegisterServer(fs, c)
	if err := fs.Parse(args); err != nil {
		t.Fatalf("flag parse: %v", err)
	}
	return c, fs
}

func newTestBundler(t *testing.T, args []string) *Bundler {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	c := &Bundler{}
	RegisterBundler(fs, c)
	if err := fs.Parse(args); err != nil {
		t.Fatalf("flag parse: %v", err)
	}
	return c
}

func touch(t *testing.T, name string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestRegisterServer_Defaults(t *testing.T) {
	c, _ := newTestServer(t, nil)

	if c.Port != "8000" {
		t.Errorf("Port: want 8000, got %q", c.Port)
	}
	if c.Host != "localhost" {
		t.Errorf("Host: want localhost, got %q", c.Host)
	}
	if c.Cert != "" || c.Key != "" || c.TLS() {
		t.Error("TLS must be off by default")
	}
	if prog, on := c.BrowserProgram(); !on || prog != "" {
		t.Errorf("BrowserProgram() = %q, %v; want default opener", prog, on)
	}
	if c.Verbose || c.ServeGzip || c.EnablePprof || c.EnableTracing || c.EnablePyroscope {
		t.Error("optional features must default off")
	}
	if c.AdminPort != 0 {
		t.Errorf("AdminPort: want 0, got %d", c.AdminPort)
	}
	if c.LogLevel != "info" {
		t.Errorf("LogLevel: want info, got %q", c.LogLevel)
	}
}

func TestRegisterServer_Shorthands(t *testing.T) {
	c, _ := newTestServer(t, []string{"-p", "9000", "-H", "0.0.0.0", "-c", "a.pem", "-k", "a.key", "-v"})

	if c.Port != "9000" || c.Host != "0.0.0.0" || c.Cert != "a.pem" || c.Key != "a.key" || !c.Verbose {
		t.Fatalf("unexpected config: %+v", c)
	}
	if !c.TLS() {
		t.Error("TLS() should be true with cert and key")
	}
}

func TestBrowserProgram(t *testing.T) {
	tests := []struct {
		args    []string
		prog    string
		enabled bool
	}{
		{nil, "", true},
		{[]string{"--browser"}, "", true},
		{[]string{"-b"}, "", true},
		{[]string{"--browser=false"}, "", false},
		{[]string{"--browser=none"}, "", false},
		{[]string{"--browser=/usr/bin/firefox"}, "/usr/bin/firefox", true},
		{[]string{"--no-browser"}, "", false},
		{[]string{"--browser=/usr/bin/firefox", "--no-browser"}, "", false},
	}
	for _, tt := range tests {
		c, _ := newTestServer(t, tt.args)
		prog, on := c.BrowserProgram()
		if prog != tt.prog || on != tt.enabled {
			t.Errorf("%v: BrowserProgram() = %q, %v; want %q, %v", tt.args, prog, on, tt.prog, tt.enabled)
		}
	}
}

func TestRegisterBundler_Defaults(t *testing.T) {
	c := newTestBundler(t, nil)
	if c.Folder != "." || c.Ignore != "ignoreasset" || c.Output != "assets_gen.go" {
		t.Errorf("unexpected paths: %+v", c)
	}
	if c.Threads != 4 || c.Level != 9 {
		t.Errorf("Threads/Level = %d/%d, want 4/9", c.Threads, c.Level)
	}
	if err := ValidateBundler(*c); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func TestValidateBundler_InvalidCombined(t *testing.T) {
	c := newTestBundler(t, []string{"--threads=0", "--level=12", "--package=web-assets", "--var=1x", "--output=s3://bucket"})
	err := ValidateBundler(*c)
	wantErrContains(t, err, "--threads must be >= 1")
	wantErrContains(t, err, "--level must be 1..9")
	wantErrContains(t, err, `--package "web-assets"`)
	wantErrContains(t, err, `--var "1x"`)
	wantErrContains(t, err, "invalid --output")
	if ExitCode(err) != ExitInvalid {
		t.Errorf("ExitCode = %d, want %d", ExitCode(err), ExitInvalid)
	}
}

func TestFillFromEnv(t *testing.T) {
	pfx := "TESTCFG_"
	t.Setenv(pfx+"PORT", "9100")
	t.Setenv(pfx+"HOST", "example.test")
	t.Setenv(pfx+"SERVE_GZIP", "true")
	t.Setenv(pfx+"NO_BROWSER", "true")
	t.Setenv(pfx+"TRACE_SAMPLE", "0.25")
	t.Setenv(pfx+"LOG_JSON", "false")

	c, fs := newTestServer(t, nil)
	FillFromEnv(fs, pfx, nil)

	if c.Port != "9100" || c.Host != "example.test" {
		t.Errorf("Port/Host = %q/%q", c.Port, c.Host)
	}
	if !c.ServeGzip || !c.NoBrowser || c.LogJSON {
		t.Errorf("bool env not applied: %+v", c)
	}
	if c.TraceSample != 0.25 {
		t.Errorf("TraceSample = %v", c.TraceSample)
	}
}

func TestFillFromEnv_CLITakesPrecedence(t *testing.T) {
	pfx := "TESTCFG2_"
	t.Setenv(pfx+"PORT", "7777")
	t.Setenv(pfx+"LOG_LEVEL", "warn")

	c, fs := newTestServer(t, []string{"--port=9090", "--log-level=debug"})

	var msgs []string
	FillFromEnv(fs, pfx, func(format string, args ...any) {
		msgs = append(msgs, fmt.Sprintf(format, args...))
	})

	if c.Port != "9090" || c.LogLevel != "debug" {
		t.Errorf("cli values lost: port=%q level=%q", c.Port, c.LogLevel)
	}
	if len(msgs) != 2 {
		t.Fatalf("want 2 override messages, got %d: %v", len(msgs), msgs)
	}
}

func TestFillFromEnv_InvalidEnvIgnored(t *testing.T) {
	pfx := "TESTCFG3_"
	t.Setenv(pfx+"ADMIN_PORT", "not-a-number")

	c, fs := newTestServer(t, nil)
	var msgs []string
	FillFromEnv(fs, pfx, func(format string, args ...any) {
		msgs = append(msgs, fmt.Sprintf(format, args...))
	})

	if c.AdminPort != 0 {
		t.Errorf("AdminPort = %d, want default 0", c.AdminPort)
	}
	if len(msgs) != 1 || !strings.Contains(msgs[0], "ignoring invalid env") {
		t.Fatalf("messages = %v", msgs)
	}
}

func TestStripUnknown(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	var c Server
	RegisterServer(fs, &c)

	var warned []string
	args := StripUnknown(fs, []string{
		"--bogus", "-p", "9000", "--frobnicate=1", "-vx", "--browser", "--host", "h", "--", "--also",
	}, func(s string) { warned = append(warned, s) })

	wantArgs := []string{"-p", "9000", "-v", "--browser", "--host", "h", "--", "--also"}
	if !reflect.DeepEqual(args, wantArgs) {
		t.Fatalf("args = %v, want %v", args, wantArgs)
	}
	wantWarn := []string{"--bogus", "--frobnicate=1", "-x"}
	if !reflect.DeepEqual(warned, wantWarn) {
		t.Fatalf("warned = %v, want %v", warned, wantWarn)
	}
	if err := fs.Parse(args); err != nil {
		t.Fatalf("parse after strip: %v", err)
	}
	if c.Port != "9000" || !c.Verbose || c.Host != "h" {
		t.Errorf("unexpected config: %+v", c)
	}
}

func TestStripUnknown_AttachedShorthandValue(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	var c Server
	RegisterServer(fs, &c)

	args := StripUnknown(fs, []string{"-vzp9001"}, nil)
	if !reflect.DeepEqual(args, []string{"-vp9001"}) {
		t.Fatalf("args = %v", args)
	}
}

func TestValidateServer_OK(t *testing.T) {
	c, _ := newTestServer(t, []string{"--cert", touch(t, "c.pem"), "--key", touch(t, "k.pem")})
	if err := ValidateServer(*c); err != nil {
		t.Fatalf("ValidateServer: %v", err)
	}
}

func TestValidateServer_ExitCodes(t *testing.T) {
	cert := touch(t, "c.pem")
	key := touch(t, "k.pem")
	missing := filepath.Join(t.TempDir(), "missing.pem")

	tests := []struct {
		name string
		args []string
		code int
		msg  string
	}{
		{"non-numeric port", []string{"--port=http"}, ExitInvalidPort, `invalid port "http"`},
		{"zero port", []string{"--port=0"}, ExitInvalidPort, "invalid port"},
		{"port too large", []string{"--port=65535"}, ExitInvalidPort, "invalid port"},
		{"missing cert", []string{"--cert", missing, "--key", key}, ExitMissingCert, "could not open certificate"},
		{"cert without key", []string{"--cert", cert}, ExitMissingKey, "could not open key"},
		{"key without cert", []string{"--key", key}, ExitMissingCert, "could not open certificate"},
		{"port wins over tls", []string{"--port=x", "--cert", missing}, ExitInvalidPort, "invalid port"},
		{"other", []string{"--log-level=loud"}, ExitInvalid, "invalid --log-level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestServer(t, tt.args)
			err := ValidateServer(*c)
			wantErrContains(t, err, tt.msg)
			if got := ExitCode(err); got != tt.code {
				t.Fatalf("ExitCode = %d, want %d", got, tt.code)
			}
		})
	}
}

func TestValidateServer_MaxPort(t *testing.T) {
	c, _ := newTestServer(t, []string{"--port=65534"})
	if err := ValidateServer(*c); err != nil {
		t.Fatalf("65534 should be accepted: %v", err)
	}
}

func TestValidateServer_InvalidCombined(t *testing.T) {
	c, _ := newTestServer(t, []string{
		"--admin-port=70000",
		"--stacktrace-level=nope",
		"--trace-sample=2",
		"--enable-tracing",
		"--otlp-endpoint=otel",
		"--enable-pyroscope",
		"--pyro-server=not a url",
		"--max-error-links=0",
		"--rate-limit=-1",
	})
	err := ValidateServer(*c)
	wantErrContains(t, err, "invalid --admin-port")
	wantErrContains(t, err, "invalid --stacktrace-level")
	wantErrContains(t, err, "invalid --trace-sample")
	wantErrContains(t, err, "--otlp-endpoint must be host:port")
	wantErrContains(t, err, "--pyro-server must be a URL")
	wantErrContains(t, err, "--pyro-tenant required")
	wantErrContains(t, err, "--max-error-links")
	wantErrContains(t, err, "--rate-limit")
}

func TestValidateServer_PprofNeedsAdminPort(t *testing.T) {
	c, _ := newTestServer(t, []string{"--enable-pprof"})
	wantErrContains(t, ValidateServer(*c), "--enable-pprof requires --admin-port")

	c, _ = newTestServer(t, []string{"--admin-port=8000"})
	wantErrContains(t, ValidateServer(*c), "must differ")
}

func TestExitCode(t *testing.T) {
	if ExitCode(nil) != 0 {
		t.Error("nil error should exit 0")
	}
	if ExitCode(errors.New("x")) != ExitInvalid {
		t.Error("plain error should exit 1")
	}
	wrapped := fmt.Errorf("ctx: %w", &ExitError{Code: 7, Err: errors.New("x")})
	if ExitCode(wrapped) != 7 {
		t.Error("wrapped ExitError code lost")
	}
}

func TestMain(m *testing.M) {
	os.Exit(m.Run())
}
