// Package codegen renders compressed assets into a Go source file that
// declares one byte slice per asset and a registry keyed by relative path.
package codegen

import (
	"bytes"
	"fmt"
	"go/format"
	"go/token"
	"path"
	"slices"
	"strconv"
	"strings"

	"github.com/keithlinneman/gzassets/internal/compress"
	"github.com/keithlinneman/gzassets/internal/xerrors"
)

const (
	DefaultPackage        = "webassets"
	DefaultVar            = "StaticAssets"
	DefaultRegistryImport = "github.com/keithlinneman/gzassets/internal/assetreg"

	// bytesPerLine only affects readability of the generated file.
	bytesPerLine = 100

	registryName = "assetreg"
)

type Options struct {
	// Package is the package clause of the generated file.
	Package string
	// Var is the exported registry variable.
	Var string
	// RegistryImport is the import path providing Registry and Asset.
	RegistryImport string
	// Generator names the tool in the "Code generated" header.
	Generator string
}

func (o *Options) defaults() {
	if o.Package == "" {
		o.Package = DefaultPackage
	}
	if o.Var == "" {
		o.Var = DefaultVar
	}
	if o.RegistryImport == "" {
		o.RegistryImport = DefaultRegistryImport
	}
	if o.Generator == "" {
		o.Generator = "gzassets-bundler"
	}
}

func (o Options) validate() error {
	if !isIdent(o.Package) {
		return xerrors.Newf("invalid package name %q", o.Package)
	}
	if !isIdent(o.Var) {
		return xerrors.Newf("invalid registry variable name %q", o.Var)
	}
	if o.Var == registryName || o.Var == o.Package {
		return xerrors.Newf("registry variable %q shadows an identifier in the generated file", o.Var)
	}
	return nil
}

func isIdent(s string) bool {
	return token.IsIdentifier(s) && s != "_"
}

type entry struct {
	ident string
	asset compress.CompressedAsset
}

// Render returns gofmt-formatted source for assets. Output is sorted by
// relative path, so the same set of assets always renders the same bytes
// regardless of the order they were compressed in.
func Render(assets []compress.CompressedAsset, opts Options) ([]byte, error) {
	opts.defaults()
	if err := opts.validate(); err != nil {
		return nil, err
	}

	entries, err := plan(assets, opts.Var)
	if err != nil {
		return nil, err
	}

	var b bytes.Buffer
	fmt.Fprintf(&b, "// Code generated by %s. DO NOT EDIT.\n\n", opts.Generator)
	fmt.Fprintf(&b, "package %s\n\n", opts.Package)
	if path.Base(opts.RegistryImport) == registryName {
		fmt.Fprintf(&b, "import %s\n\n", strconv.Quote(opts.RegistryImport))
	} else {
		fmt.Fprintf(&b, "import %s %s\n\n", registryName, strconv.Quote(opts.RegistryImport))
	}

	for _, e := range entries {
		fmt.Fprintf(&b, "// %s (gzipped)\n", commentSafe(e.asset.RelativePath))
		fmt.Fprintf(&b, "var %s = []byte{", e.ident)
		writeBytes(&b, e.asset.Data)
		b.WriteString("}\n\n")
	}

	fmt.Fprintf(&b, "// %s maps each embedded path to its MIME type and gzip data.\n", opts.Var)
	fmt.Fprintf(&b, "var %s = %s.Registry{", opts.Var, registryName)
	if len(entries) > 0 {
		b.WriteByte('\n')
	}
	for _, e := range entries {
		fmt.Fprintf(&b, "\t%s: {Mime: %s, Data: %s},\n",
			strconv.Quote(e.asset.RelativePath), strconv.Quote(e.asset.Mime), e.ident)
	}
	b.WriteString("}\n")

	src, err := format.Source(b.Bytes())
	if err != nil {
		return nil, xerrors.Wrap(err, "format generated source")
	}
	return src, nil
}

// plan sorts assets and assigns identifiers, rejecting duplicate paths and
// identifier collisions.
func plan(assets []compress.CompressedAsset, varName string) ([]entry, error) {
	sorted := slices.Clone(assets)
	slices.SortFunc(sorted, func(a, b compress.CompressedAsset) int {
		return strings.Compare(a.RelativePath, b.RelativePath)
	})

	owner := make(map[string]string, len(sorted))
	out := make([]entry, 0, len(sorted))
	for i, a := range sorted {
		if i > 0 && sorted[i-1].RelativePath == a.RelativePath {
			return nil, xerrors.Newf("duplicate asset path %q", a.RelativePath)
		}
		id := Identifier(a.RelativePath)
		if prev, ok := owner[id]; ok {
			return nil, xerrors.WithStack(&CollisionError{Identifier: id, First: prev, Second: a.RelativePath})
		}
		if id == varName {
			return nil, xerrors.WithStack(&CollisionError{Identifier: id, First: "registry variable", Second: a.RelativePath})
		}
		owner[id] = a.RelativePath
		out = append(out, entry{ident: id, asset: a})
	}
	return out, nil
}

func writeBytes(b *bytes.Buffer, data []byte) {
	if len(data) == 0 {
		return
	}
	b.WriteByte('\n')
	var num [3]byte
	for i, v := range data {
		if i%bytesPerLine == 0 {
			b.WriteByte('\t')
		} else {
			b.WriteByte(' ')
		}
		b.Write(strconv.AppendUint(num[:0], uint64(v), 10))
		b.WriteByte(',')
		if i%bytesPerLine == bytesPerLine-1 || i == len(data)-1 {
			b.WriteByte('\n')
		}
	}
}

func commentSafe(s string) string {
	return strings.NewReplacer("\n", " ", "\r", " ").Replace(s)
}
