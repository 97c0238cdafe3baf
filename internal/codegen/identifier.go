package codegen

import (
	"fmt"
	"regexp"
)

var nonIdentRun = regexp.MustCompile(`[^A-Za-z0-9_]+`)

// Identifier derives the Go variable name holding the gzip bytes for rel.
// Every run of characters outside [A-Za-z0-9_] becomes one underscore, a
// leading digit gets an underscore prefix, and "_gz" is appended.
//
//	"css/main.min.css" -> "css_main_min_css_gz"
//	"404.html"         -> "_404_html_gz"
func Identifier(rel string) string {
	id := nonIdentRun.ReplaceAllString(rel, "_")
	if id == "" || (id[0] >= '0' && id[0] <= '9') {
		id = "_" + id
	}
	return id + "_gz"
}

// CollisionError is returned when two distinct paths derive the same
// identifier, e.g. "a-b.js" and "a_b.js".
type CollisionError struct {
	Identifier string
	First      string
	Second     string
}

func (e *CollisionError) Error() string {
	return fmt.Sprintf("identifier %s derived from both %q and %q", e.Identifier, e.First, e.Second)
}
