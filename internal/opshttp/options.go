package opshttp

import (
	"net/http"

	"github.com/keithlinneman/gzassets/internal/health"
)

type Options struct {
	// Host defaults to all interfaces; non-local peers are refused anyway.
	Host string
	Port int

	Metrics     http.Handler
	EnablePprof bool
	Health      health.Probe
	Readiness   health.Probe

	UseRecoverMW bool
	// OnPanic runs after a recovered panic, e.g. to count it.
	OnPanic func()
}
