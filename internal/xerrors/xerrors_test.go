package xerrors

import (
	"errors"
	"io/fs"
	"runtime"
	"strings"
	"testing"
)

var errSentinel = errors.New("sentinel")

func stackContains(pcs []uintptr, substr string) bool {
	frames := runtime.CallersFrames(pcs)
	for {
		fr, more := frames.Next()
		if strings.Contains(fr.Function, substr) {
			return true
		}
		if !more {
			return false
		}
	}
}

func stackOf(t *testing.T, err error) []uintptr {
	t.Helper()
	var hs interface{ StackPCs() []uintptr }
	if !errors.As(err, &hs) {
		t.Fatalf("%v carries no stack", err)
	}
	return hs.StackPCs()
}

// New / Newf

func TestNew_Message(t *testing.T) {
	if got := New("collect failed").Error(); got != "collect failed" {
		t.Fatalf("Error() = %q", got)
	}
}

func TestNew_StackStartsAtCaller(t *testing.T) {
	pcs := stackOf(t, New("boom"))
	if !stackContains(pcs, "TestNew_StackStartsAtCaller") {
		t.Fatal("stack should contain the calling test")
	}
	fr, _ := runtime.CallersFrames(pcs).Next()
	if !strings.HasSuffix(fr.Function, ".TestNew_StackStartsAtCaller") {
		t.Fatalf("first frame = %s, want the calling test", fr.Function)
	}
}

func TestNewf_Formats(t *testing.T) {
	err := Newf("threads must be >= 1 (got %d)", 0)
	if err.Error() != "threads must be >= 1 (got 0)" {
		t.Fatalf("Error() = %q", err.Error())
	}
}

// Wrap / Wrapf

func TestWrap_Nil(t *testing.T) {
	if Wrap(nil, "x") != nil {
		t.Fatal("Wrap(nil) should be nil")
	}
	if Wrapf(nil, "x %d", 1) != nil {
		t.Fatal("Wrapf(nil) should be nil")
	}
}

func TestWrap_MessageAndUnwrap(t *testing.T) {
	err := Wrap(errSentinel, "read a.txt")
	if err.Error() != "read a.txt: sentinel" {
		t.Fatalf("Error() = %q", err.Error())
	}
	if !errors.Is(err, errSentinel) {
		t.Fatal("errors.Is should see the sentinel")
	}
}

func TestWrapf_PreservesTypedCause(t *testing.T) {
	cause := &fs.PathError{Op: "open", Path: "a.txt", Err: fs.ErrNotExist}
	err := Wrapf(cause, "compress %s", "a.txt")

	var pe *fs.PathError
	if !errors.As(err, &pe) {
		t.Fatal("errors.As should find *fs.PathError")
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatal("errors.Is should see fs.ErrNotExist")
	}
}

func TestWrap_RecordsCallerPC(t *testing.T) {
	err := Wrap(errSentinel, "ctx")
	hp, ok := err.(interface{ PC() uintptr })
	if !ok {
		t.Fatal("Wrap result should expose PC")
	}
	fr, _ := runtime.CallersFrames([]uintptr{hp.PC()}).Next()
	if !strings.Contains(fr.Function, "TestWrap_RecordsCallerPC") {
		t.Fatalf("PC resolves to %s", fr.Function)
	}
}

// WithStack / EnsureTrace

func TestWithStack_Nil(t *testing.T) {
	if WithStack(nil) != nil {
		t.Fatal("WithStack(nil) should be nil")
	}
	if EnsureTrace(nil) != nil {
		t.Fatal("EnsureTrace(nil) should be nil")
	}
}

func TestEnsureTrace_AddsStackOnce(t *testing.T) {
	first := EnsureTrace(errSentinel)
	pcs := stackOf(t, first)
	if len(pcs) == 0 {
		t.Fatal("expected stack")
	}

	second := EnsureTrace(first)
	if second != first {
		t.Fatal("EnsureTrace should not restack an already stacked error")
	}
}

func TestEnsureTrace_StackedThroughWrap(t *testing.T) {
	base := New("root")
	wrapped := Wrap(base, "outer")
	if EnsureTrace(wrapped) != wrapped {
		t.Fatal("EnsureTrace should find the stack below a Wrap")
	}
}
