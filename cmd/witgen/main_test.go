package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/wippyai/witgen/config"
	"github.com/wippyai/witgen/errors"
	"github.com/wippyai/witgen/gen"
	"github.com/wippyai/witgen/manifest"
)

const appManifest = "../../manifest/testdata/app.yaml"

func wantKind(t *testing.T, err error, kind errors.Kind) {
	t.Helper()
	e, ok := err.(*errors.Error)
	if !ok {
		t.Fatalf("err = %v (%T), want *errors.Error", err, err)
	}
	if e.Kind != kind {
		t.Fatalf("err = %v, want kind %s", err, kind)
	}
}

func TestApplyFlags(t *testing.T) {
	cfg, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}
	f := flags{
		source:   "app.yaml",
		world:    "app",
		out:      "gen",
		pkg:      "example.com/gen",
		skip:     "a, b,,c",
		logLevel: "debug",
		stubs:    true,
		verify:   true,
	}
	if err := applyFlags(cfg, f); err != nil {
		t.Fatal(err)
	}
	if cfg.Source != "app.yaml" || cfg.World != "app" || cfg.Output != "gen" || cfg.PackagePath != "example.com/gen" {
		t.Errorf("cfg = %+v", cfg)
	}
	if strings.Join(cfg.Skip, ",") != "a,b,c" {
		t.Errorf("skip = %v", cfg.Skip)
	}
	if !cfg.Stubs || !cfg.Metadata.Verify || cfg.Format.Enabled {
		t.Errorf("switches = stubs %v verify %v format %v", cfg.Stubs, cfg.Metadata.Verify, cfg.Format.Enabled)
	}

	// The same directives again conflict with what is already set.
	wantKind(t, applyFlags(cfg, flags{source: "other.yaml"}), errors.KindDuplicate)
	wantKind(t, applyFlags(cfg, flags{world: "other"}), errors.KindDuplicate)
}

func TestNewLogger(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error"} {
		l, err := newLogger(level)
		if err != nil {
			t.Errorf("newLogger(%q): %v", level, err)
			continue
		}
		_ = l.Sync()
	}
	_, err := newLogger("chatty")
	wantKind(t, err, errors.KindUnknownMode)
}

func TestResourceLogger(t *testing.T) {
	m, err := manifest.Load(appManifest)
	if err != nil {
		t.Fatal(err)
	}
	r, err := m.Resolve()
	if err != nil {
		t.Fatal(err)
	}
	core, logs := observer.New(zapcore.DebugLevel)

	opts := gen.Options{
		PackagePath: "example.com/bindings",
		Stubs:       true,
		Observer:    resourceLogger(zap.New(core), r),
	}
	if _, err := gen.Generate(r, 0, opts); err != nil {
		t.Fatalf("Generate: %v", err)
	}

	entries := logs.FilterField(zap.String("resource", "blob")).All()
	if len(entries) == 0 {
		t.Fatal("no resource events logged for blob")
	}
	if got := entries[0].Message; got != "resource classified" {
		t.Errorf("first event = %q, want resource classified", got)
	}
}

func TestSelectWorld(t *testing.T) {
	m, err := manifest.Load(appManifest)
	if err != nil {
		t.Fatal(err)
	}
	r, err := m.Resolve()
	if err != nil {
		t.Fatal(err)
	}

	for _, name := range []string{"", "app", "demo:app/app"} {
		wid, err := selectWorld(r, name)
		if err != nil || r.World(wid).Name != "app" {
			t.Errorf("selectWorld(%q) = %d, %v", name, wid, err)
		}
	}
	_, err = selectWorld(r, "missing")
	wantKind(t, err, errors.KindNotFound)
}

func TestRun(t *testing.T) {
	out := t.TempDir()
	err := run(context.Background(), flags{
		source:   appManifest,
		out:      out,
		pkg:      "example.com/bindings",
		logLevel: "error",
		stubs:    true,
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	for _, name := range []string{"app.wit.go", "app.component-type.wasm", "exports/demo/app/store/store.wit.go"} {
		if _, err := os.Stat(filepath.Join(out, filepath.FromSlash(name))); err != nil {
			t.Errorf("missing output %s: %v", name, err)
		}
	}
}

func TestRun_Errors(t *testing.T) {
	tests := []struct {
		name string
		f    flags
		kind errors.Kind
	}{
		{"no source", flags{pkg: "example.com/x", logLevel: "error"}, errors.KindInvalidInput},
		{"missing manifest", flags{source: "testdata/none.yaml", pkg: "example.com/x", logLevel: "error"}, errors.KindNotFound},
		{"missing stubs", flags{source: appManifest, pkg: "example.com/x", logLevel: "error", dryRun: true}, errors.KindMissingExport},
		{"bad log level", flags{source: appManifest, logLevel: "loud"}, errors.KindUnknownMode},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wantKind(t, run(context.Background(), tt.f), tt.kind)
		})
	}
}

func TestHexDump(t *testing.T) {
	got := hexDump([]byte("\x00asm\x01\x00\x00\x00hello, witgen!!!x"))
	lines := strings.Split(strings.TrimSuffix(got, "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("lines = %d:\n%s", len(lines), got)
	}
	if !strings.HasPrefix(lines[0], "00000000  00 61 73 6d 01 00 00 00") || !strings.HasSuffix(lines[0], ".asm....hello, w") {
		t.Errorf("line 0 = %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "00000010  69 74 67") || !strings.HasSuffix(lines[1], "itgen!!!x") {
		t.Errorf("line 1 = %q", lines[1])
	}
	if hexDump(nil) != "" {
		t.Error("hexDump(nil) is not empty")
	}
}

func testFiles(t *testing.T) *gen.Files {
	t.Helper()
	m, err := manifest.Load(appManifest)
	if err != nil {
		t.Fatal(err)
	}
	r, err := m.Resolve()
	if err != nil {
		t.Fatal(err)
	}
	files, err := gen.Generate(r, 0, gen.Options{PackagePath: "example.com/bindings", Stubs: true})
	if err != nil {
		t.Fatal(err)
	}
	return files
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestBrowserModel(t *testing.T) {
	files := testFiles(t)
	m := newBrowserModel("app", files)
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})

	if len(m.visible) != files.Len() {
		t.Fatalf("visible = %d, want %d", len(m.visible), files.Len())
	}
	if !strings.Contains(m.View(), "app.wit.go") {
		t.Error("list view does not show app.wit.go")
	}

	m.Update(key("down"))
	if m.selected != 1 {
		t.Errorf("selected = %d after down", m.selected)
	}

	m.Update(key("/"))
	if m.state != stateFilter {
		t.Fatalf("state = %d after /", m.state)
	}
	for _, r := range "store" {
		m.Update(key(string(r)))
	}
	if len(m.visible) != 1 || m.visible[0] != "exports/demo/app/store/store.wit.go" {
		t.Errorf("filtered = %v", m.visible)
	}
	if m.selected != 0 {
		t.Errorf("selected = %d after filtering", m.selected)
	}
	m.Update(key("enter"))
	if m.state != stateList {
		t.Fatalf("state = %d after closing the filter", m.state)
	}

	m.Update(key("enter"))
	if m.state != stateView || !strings.Contains(m.View(), "package store") {
		t.Errorf("open did not show the file")
	}
	m.Update(key("esc"))
	if m.state != stateList {
		t.Errorf("state = %d after esc", m.state)
	}

	if _, cmd := m.Update(key("q")); cmd == nil {
		t.Error("q did not quit")
	}
}
