// Package webassets holds the assets served by cmd/server: a registry
// generated from the web/ tree and the fixed page served at "/".
package webassets

import (
	_ "embed"

	"github.com/keithlinneman/gzassets/internal/assetreg"
)

//go:generate go run ../../cmd/bundler --folder ../../web --output assets_gen.go --package webassets

//go:embed index.html
var indexPage []byte

// IndexPage returns the page served for the root route. It is not part of
// the registry.
func IndexPage() []byte { return indexPage }

// Registry returns the generated registry.
func Registry() assetreg.Registry { return StaticAssets }
