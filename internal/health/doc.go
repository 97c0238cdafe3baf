// Package health holds readiness and liveness probes and their HTTP
// handlers.
//
// Probes compose with All and Any. ShutdownGate fails readiness as soon as
// shutdown begins so clients stop being routed here while in-flight asset
// requests drain.
package health
