// Command bundler embeds a directory tree into a generated Go source file
// holding gzip-compressed byte slices and an assetreg.Registry.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/keithlinneman/gzassets/internal/bundle"
	"github.com/keithlinneman/gzassets/internal/cfg"
	"github.com/keithlinneman/gzassets/internal/codegen"
	"github.com/keithlinneman/gzassets/internal/log"
	"github.com/keithlinneman/gzassets/internal/output"
	v "github.com/keithlinneman/gzassets/internal/version"
)

const component = "bundler"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run returns the process exit status. Generated source goes to stdout
// only when --output is STDOUT; logs always go to stderr.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := pflag.NewFlagSet("gzassets-bundler", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	var conf cfg.Bundler
	cfg.RegisterBundler(fs, &conf)
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: gzassets-bundler [flags]\n\nEmbed a folder as gzip data in generated Go source.\n\nFlags:\n%s", fs.FlagUsages())
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
	for _, extra := range fs.Args() {
		fmt.Fprintf(stderr, "warning: ignoring argument %q\n", extra)
	}

	cfg.FillFromEnv(fs, cfg.EnvPrefix, func(format string, args ...any) {
		fmt.Fprintf(stderr, format+"\n", args...)
	})
	if err := cfg.ValidateBundler(conf); err != nil {
		fmt.Fprintln(stderr, "config error:", err)
		return cfg.ExitCode(err)
	}

	lvl := slog.LevelInfo
	if conf.Verbose {
		lvl = slog.LevelDebug
	}
	vi := v.Get()
	lg, err := log.New(log.Options{
		App:               v.AppName,
		Component:         component,
		Version:           vi.Version,
		Level:             lvl,
		StacktraceLevel:   slog.LevelError,
		JSON:              conf.LogJSON,
		IncludeErrorLinks: conf.Verbose,
		MaxErrorLinks:     8,
		Writer:            stderr,
	})
	if err != nil {
		fmt.Fprintln(stderr, "logger init error:", err)
		return 1
	}
	defer lg.Sync()
	ctx = log.WithContext(ctx, lg)

	lg.Debug(ctx, "bundling",
		"folder", conf.Folder,
		"ignore", conf.Ignore,
		"output", conf.Output,
		"threads", conf.Threads,
		"level", conf.Level,
	)

	_, err = bundle.Run(ctx, bundle.Options{
		Root:       conf.Folder,
		IgnoreFile: conf.Ignore,
		Output:     conf.Output,
		Workers:    conf.Threads,
		Level:      conf.Level,
		Codegen: codegen.Options{
			Package:        conf.Package,
			Var:            conf.Var,
			RegistryImport: conf.RegistryImport,
		},
	}, output.NewWriter(output.Options{Stdout: stdout}))
	if err != nil {
		var collision *codegen.CollisionError
		if errors.As(err, &collision) {
			lg.Error(ctx, err, "rename one of the files so their identifiers differ",
				"identifier", collision.Identifier, "first", collision.First, "second", collision.Second)
		} else {
			lg.Error(ctx, err, "bundle failed")
		}
		return 1
	}
	return 0
}
