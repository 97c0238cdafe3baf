// Package httpmw provides the HTTP middleware wrapped around the asset
// server.
//
// httpserver.NewHandler composes them outermost first: security headers,
// panic recovery, request ID, client IP, rate limiting, OTel tracing,
// trace headers, metrics, request logger, access log, route annotation and
// finally the chi router.
//
// Query strings and other client supplied headers are never logged.
package httpmw
