package codegen

import (
	"bytes"
	"errors"
	"go/ast"
	"go/parser"
	"go/token"
	"regexp"
	"strconv"
	"strings"
	"testing"

	"github.com/keithlinneman/gzassets/internal/compress"
)

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*_gz$`)

// Identifier

func TestIdentifier(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"a.txt", "a_txt_gz"},
		{"css/main.min.css", "css_main_min_css_gz"},
		{"404.html", "_404_html_gz"},
		{"img//x--y.png", "img_x_y_png_gz"},
		{"already_ok", "already_ok_gz"},
		{"-leading", "_leading_gz"},
		{"fonts/Inter Var.woff2", "fonts_Inter_Var_woff2_gz"},
		{"日本.txt", "_txt_gz"},
		{"", "__gz"},
	}
	for _, tt := range tests {
		if got := Identifier(tt.in); got != tt.want {
			t.Errorf("Identifier(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestIdentifier_AlwaysWellFormed(t *testing.T) {
	paths := []string{
		"a", "0", "9lives.js", "...", "a b c", "x/y/z.tar.gz", "$#@!", "__init__.py",
		"dir.with.dots/file", "UPPER/lower.PNG", "tab\tname", "semi;colon", "ü/ñ.css",
	}
	for _, p := range paths {
		id := Identifier(p)
		if !identPattern.MatchString(id) {
			t.Errorf("Identifier(%q) = %q is not well formed", p, id)
		}
		if !token.IsIdentifier(id) {
			t.Errorf("Identifier(%q) = %q is not a Go identifier", p, id)
		}
	}
}

// Render

func sampleAssets() []compress.CompressedAsset {
	return []compress.CompressedAsset{
		{RelativePath: "js/app.js", Mime: "application/javascript", Data: []byte{1, 2, 3}},
		{RelativePath: "a.txt", Mime: "text/plain", Data: []byte{31, 139, 8, 0}},
		{RelativePath: "404.html", Mime: "text/html; charset=utf-8", Data: []byte{255}},
	}
}

func TestRender_ParsesAsGo(t *testing.T) {
	src, err := Render(sampleAssets(), Options{})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, "assets_gen.go", src, parser.ParseComments)
	if err != nil {
		t.Fatalf("generated source does not parse: %v\n%s", err, src)
	}
	if f.Name.Name != DefaultPackage {
		t.Fatalf("package = %s", f.Name.Name)
	}
	if !ast.IsGenerated(f) {
		t.Fatal("file should carry a Code generated header")
	}
	if len(f.Imports) != 1 || f.Imports[0].Path.Value != strconv.Quote(DefaultRegistryImport) {
		t.Fatalf("imports = %v", f.Imports)
	}

	var vars []string
	for _, d := range f.Decls {
		gd, ok := d.(*ast.GenDecl)
		if !ok || gd.Tok != token.VAR {
			continue
		}
		for _, s := range gd.Specs {
			vars = append(vars, s.(*ast.ValueSpec).Names[0].Name)
		}
	}
	want := []string{"_404_html_gz", "a_txt_gz", "js_app_js_gz", DefaultVar}
	if strings.Join(vars, ",") != strings.Join(want, ",") {
		t.Fatalf("vars = %v, want %v", vars, want)
	}
}

func TestRender_RegistryKeyedByOriginalPath(t *testing.T) {
	src, err := Render(sampleAssets(), Options{})
	if err != nil {
		t.Fatal(err)
	}
	s := string(src)
	for _, line := range []string{
		`"404.html":  {Mime: "text/html; charset=utf-8", Data: _404_html_gz},`,
		`"a.txt":     {Mime: "text/plain", Data: a_txt_gz},`,
		`"js/app.js": {Mime: "application/javascript", Data: js_app_js_gz},`,
		"// a.txt (gzipped)",
		"var a_txt_gz = []byte{\n\t31, 139, 8, 0,\n}",
	} {
		if !strings.Contains(s, line) {
			t.Errorf("output missing %q\n%s", line, s)
		}
	}
}

func TestRender_WrapsAtHundredValues(t *testing.T) {
	data := bytes.Repeat([]byte{7}, 250)
	src, err := Render([]compress.CompressedAsset{{RelativePath: "big.bin", Mime: "application/octet-stream", Data: data}}, Options{})
	if err != nil {
		t.Fatal(err)
	}

	var counts []int
	for _, line := range strings.Split(string(src), "\n") {
		if strings.HasPrefix(line, "\t7,") {
			counts = append(counts, strings.Count(line, ","))
		}
	}
	if len(counts) != 3 || counts[0] != 100 || counts[1] != 100 || counts[2] != 50 {
		t.Fatalf("values per line = %v, want [100 100 50]", counts)
	}
}

func TestRender_DeterministicAcrossInputOrder(t *testing.T) {
	a := sampleAssets()
	b := []compress.CompressedAsset{a[2], a[0], a[1]}

	srcA, err := Render(a, Options{})
	if err != nil {
		t.Fatal(err)
	}
	srcB, err := Render(b, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(srcA, srcB) {
		t.Fatal("output depends on input order")
	}
}

func TestRender_Empty(t *testing.T) {
	src, err := Render(nil, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(src), "var StaticAssets = assetreg.Registry{}") {
		t.Fatalf("unexpected output:\n%s", src)
	}
}

func TestRender_CustomOptions(t *testing.T) {
	src, err := Render(sampleAssets()[:1], Options{
		Package:        "assets",
		Var:            "Files",
		RegistryImport: "example.com/site/registry",
	})
	if err != nil {
		t.Fatal(err)
	}
	s := string(src)
	for _, want := range []string{
		"package assets",
		`import assetreg "example.com/site/registry"`,
		"var Files = assetreg.Registry{",
	} {
		if !strings.Contains(s, want) {
			t.Errorf("output missing %q\n%s", want, s)
		}
	}
}

func TestRender_InvalidOptions(t *testing.T) {
	for _, opts := range []Options{
		{Package: "my-pkg"},
		{Var: "1abc"},
		{Var: "assetreg"},
		{Package: "files", Var: "files"},
	} {
		if _, err := Render(nil, opts); err == nil {
			t.Errorf("Render(%+v) should fail", opts)
		}
	}
}

func TestRender_Collision(t *testing.T) {
	_, err := Render([]compress.CompressedAsset{
		{RelativePath: "a_b.js", Mime: "application/javascript", Data: []byte{1}},
		{RelativePath: "a-b.js", Mime: "application/javascript", Data: []byte{2}},
	}, Options{})

	var ce *CollisionError
	if !errors.As(err, &ce) {
		t.Fatalf("err = %v, want *CollisionError", err)
	}
	if ce.Identifier != "a_b_js_gz" {
		t.Fatalf("Identifier = %q", ce.Identifier)
	}
	// sorted order: "a-b.js" < "a_b.js"
	if ce.First != "a-b.js" || ce.Second != "a_b.js" {
		t.Fatalf("collision between %q and %q", ce.First, ce.Second)
	}
	if !strings.Contains(err.Error(), "a_b_js_gz") {
		t.Fatalf("message should name the identifier: %v", err)
	}
}

func TestRender_DuplicatePath(t *testing.T) {
	_, err := Render([]compress.CompressedAsset{
		{RelativePath: "x.css", Data: []byte{1}},
		{RelativePath: "x.css", Data: []byte{2}},
	}, Options{})
	if err == nil {
		t.Fatal("expected duplicate path error")
	}
}

func TestRender_PathWithNewlineStaysParseable(t *testing.T) {
	src, err := Render([]compress.CompressedAsset{{RelativePath: "odd\nname.txt", Mime: "text/plain", Data: []byte{1}}}, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := parser.ParseFile(token.NewFileSet(), "", src, 0); err != nil {
		t.Fatalf("parse: %v", err)
	}
}
