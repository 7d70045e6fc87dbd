package gen

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/wippyai/witgen/errors"
)

func TestFiles(t *testing.T) {
	f := newFiles()
	f.Push("b/b.wit.go", []byte("package b\n"))
	f.Push("a.wit.go", []byte("package a\n"))
	f.Push("b/b.wit.go", []byte("package b // replaced\n"))

	if f.Len() != 2 {
		t.Fatalf("Len = %d, want 2", f.Len())
	}
	if got := strings.Join(f.Names(), ","); got != "a.wit.go,b/b.wit.go" {
		t.Errorf("Names = %s", got)
	}
	if src, ok := f.Get("b/b.wit.go"); !ok || string(src) != "package b // replaced\n" {
		t.Errorf("Get = %q, %v", src, ok)
	}
	if _, ok := f.Get("missing.go"); ok {
		t.Error("Get(missing.go) succeeded")
	}

	dir := t.TempDir()
	if err := f.WriteTo(dir); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}
	got, err := os.ReadFile(filepath.Join(dir, "b", "b.wit.go"))
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "package b // replaced\n" {
		t.Errorf("written = %q", got)
	}
}

func TestFiles_WriteToError(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocked")
	if err := os.WriteFile(blocker, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	f := newFiles()
	f.Push("x/x.wit.go", []byte("package x\n"))
	wantError(t, f.WriteTo(blocker), errors.PhaseWrite, errors.KindInvalidInput)
}

func TestFormatSource(t *testing.T) {
	src := []byte("package x\n")

	out, err := formatSource(context.Background(), "cat", "x.go", src)
	if err != nil {
		t.Fatalf("cat: %v", err)
	}
	if string(out) != string(src) {
		t.Errorf("cat output = %q", out)
	}

	_, err = formatSource(context.Background(), "false", "x.go", src)
	e := wantError(t, err, errors.PhaseFormat, errors.KindSubprocess)
	if len(e.Path) != 1 || e.Path[0] != "x.go" {
		t.Errorf("path = %v", e.Path)
	}
	if e.Cause == nil {
		t.Error("subprocess error has no cause")
	}

	_, err = formatSource(context.Background(), "witgen-no-such-formatter", "x.go", src)
	wantError(t, err, errors.PhaseFormat, errors.KindSubprocess)
}

func TestFormatSource_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := formatSource(ctx, "cat", "x.go", []byte("package x\n"))
	wantError(t, err, errors.PhaseFormat, errors.KindSubprocess)
}
