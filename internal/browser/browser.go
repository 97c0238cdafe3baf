// Package browser launches a web browser pointed at a URL.
package browser

import (
	"context"
	"io"
	"os/exec"

	pkgbrowser "github.com/pkg/browser"

	"github.com/keithlinneman/gzassets/internal/log"
	"github.com/keithlinneman/gzassets/internal/xerrors"
)

func init() {
	// opener output would interleave with the server's log stream
	pkgbrowser.Stdout = io.Discard
	pkgbrowser.Stderr = io.Discard
}

// Launcher opens URLs. The zero value uses the platform default opener
// from github.com/pkg/browser and os/exec for an explicit program.
type Launcher struct {
	OpenURL func(url string) error
	Start   func(name string, args ...string) error
}

// Open launches program with url as its only argument, or the platform
// default browser when program is empty. It returns once the opener has
// handed off, not when the browser exits.
func (l Launcher) Open(ctx context.Context, program, url string) error {
	L := log.FromContext(ctx)

	if program == "" {
		open := l.OpenURL
		if open == nil {
			open = pkgbrowser.OpenURL
		}
		L.Debug(ctx, "opening default browser", "url", url)
		if err := open(url); err != nil {
			return xerrors.Wrap(err, "launch default browser")
		}
		return nil
	}

	start := l.Start
	if start == nil {
		start = startDetached
	}
	L.Debug(ctx, "opening browser", "program", program, "url", url)
	if err := start(program, url); err != nil {
		return xerrors.Wrapf(err, "launch browser %s", program)
	}
	return nil
}

// Open launches the default browser, or program if non-empty, at url.
func Open(ctx context.Context, program, url string) error {
	return Launcher{}.Open(ctx, program, url)
}

func startDetached(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() { _ = cmd.Wait() }()
	return nil
}
