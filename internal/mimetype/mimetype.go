// Package mimetype maps asset file names to the Content-Type stored in the
// generated registry.
package mimetype

import (
	"path"
	"strings"
)

// Default is returned for any extension not in the table.
const Default = "application/octet-stream"

var byExt = map[string]string{
	"html":  "text/html; charset=utf-8",
	"css":   "text/css",
	"js":    "application/javascript",
	"json":  "application/json",
	"png":   "image/png",
	"jpg":   "image/jpeg",
	"jpeg":  "image/jpeg",
	"gif":   "image/gif",
	"svg":   "image/svg+xml",
	"ico":   "image/x-icon",
	"woff":  "font/woff",
	"woff2": "font/woff2",
	"ttf":   "font/ttf",
	"otf":   "font/otf",
	"txt":   "text/plain",
	"webp":  "image/webp",
}

// Detect returns the MIME type for name based only on its extension,
// compared case-insensitively.
func Detect(name string) string {
	ext := strings.TrimPrefix(path.Ext(name), ".")
	if mt, ok := byExt[strings.ToLower(ext)]; ok {
		return mt
	}
	return Default
}
