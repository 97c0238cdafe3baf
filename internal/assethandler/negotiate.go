package assethandler

import (
	"strconv"
	"strings"
)

// acceptsGzip reports whether an Accept-Encoding header allows gzip. An
// explicit "gzip;q=0" wins over a wildcard.
func acceptsGzip(header string) bool {
	wildcard := false
	for _, part := range strings.Split(header, ",") {
		coding, params, _ := strings.Cut(strings.TrimSpace(part), ";")
		coding = strings.ToLower(strings.TrimSpace(coding))
		if coding != "gzip" && coding != "x-gzip" && coding != "*" {
			continue
		}

		q := 1.0
		for _, p := range strings.Split(params, ";") {
			k, v, ok := strings.Cut(strings.TrimSpace(p), "=")
			if !ok || strings.ToLower(strings.TrimSpace(k)) != "q" {
				continue
			}
			if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
				q = f
			}
		}

		if coding == "*" {
			wildcard = q > 0
			continue
		}
		return q > 0
	}
	return wildcard
}
