package version

import (
	"strings"
	"testing"
)

func TestGet_Defaults(t *testing.T) {
	vi := Get()
	if vi.AppName != AppName {
		t.Fatalf("AppName = %q", vi.AppName)
	}
	if vi.Version == "" {
		t.Fatal("Version should never be empty")
	}
	if vi.Commit == "" {
		t.Fatal("Commit should never be empty")
	}
}

func TestInfo_String(t *testing.T) {
	dirty := true
	s := Info{AppName: "gzassets", Version: "1.2.3", Commit: "abc", VCSDirty: &dirty}.String()
	for _, want := range []string{"gzassets 1.2.3", "commit=abc", "dirty=true"} {
		if !strings.Contains(s, want) {
			t.Fatalf("String() = %q, missing %q", s, want)
		}
	}
}
