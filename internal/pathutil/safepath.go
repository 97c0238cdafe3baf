// Package pathutil normalizes request paths before they are used as asset
// registry keys.
package pathutil

import "strings"

// HasDotSegments reports whether any path segment is "." or "..".
func HasDotSegments(p string) bool {
	for _, seg := range strings.Split(p, "/") {
		if seg == "." || seg == ".." {
			return true
		}
	}
	return false
}

// AssetKey strips every leading slash from a URL path so "/a.txt", "a.txt"
// and "//a.txt" all map to "a.txt". An empty key means the index route.
// ok is false for paths that can never name an asset: NUL bytes,
// backslashes or "." / ".." segments.
func AssetKey(urlPath string) (key string, ok bool) {
	if strings.ContainsAny(urlPath, "\x00\\") {
		return "", false
	}
	key = strings.TrimLeft(urlPath, "/")
	if key != "" && HasDotSegments(key) {
		return "", false
	}
	return key, true
}
