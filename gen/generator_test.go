package gen

import (
	"bytes"
	"fmt"
	"go/parser"
	"go/token"
	"regexp"
	"strings"
	"testing"

	"github.com/wippyai/witgen/errors"
	"github.com/wippyai/witgen/graph"
	"github.com/wippyai/witgen/manifest"
	"github.com/wippyai/witgen/resource"
)

const testPkg = "example.com/bindings"

const (
	typesFile   = "demo/app/types/types.wit.go"
	backingFile = "backing/backing.wit.go"
	storeFile   = "exports/demo/app/store/store.wit.go"
	rootFile    = "app.wit.go"
)

func loadApp(t *testing.T) *graph.Resolve {
	t.Helper()
	m, err := manifest.Load("../manifest/testdata/app.yaml")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	r, err := m.Resolve()
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	return r
}

func loadInline(t *testing.T, src string) *graph.Resolve {
	t.Helper()
	m, err := manifest.Parse([]byte(src))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	r, err := m.Resolve()
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	return r
}

func generate(t *testing.T, r *graph.Resolve, opts Options) *Files {
	t.Helper()
	if opts.PackagePath == "" {
		opts.PackagePath = testPkg
	}
	files, err := Generate(r, 0, opts)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	return files
}

func text(t *testing.T, files *Files, name string) string {
	t.Helper()
	src, ok := files.Get(name)
	if !ok {
		t.Fatalf("no file %q in %v", name, files.Names())
	}
	return string(src)
}

func parseAll(t *testing.T, files *Files) {
	t.Helper()
	fset := token.NewFileSet()
	for _, name := range files.Names() {
		if !strings.HasSuffix(name, ".go") {
			continue
		}
		src, _ := files.Get(name)
		if _, err := parser.ParseFile(fset, name, src, parser.ParseComments); err != nil {
			t.Errorf("%s does not parse: %v\n%s", name, err, src)
		}
	}
}

func wantError(t *testing.T, err error, phase errors.Phase, kind errors.Kind) *errors.Error {
	t.Helper()
	e, ok := err.(*errors.Error)
	if !ok {
		t.Fatalf("err = %v (%T), want *errors.Error", err, err)
	}
	if e.Phase != phase || e.Kind != kind {
		t.Fatalf("err = %v, want %s/%s", err, phase, kind)
	}
	return e
}

func contains(t *testing.T, src, name string, want ...string) {
	t.Helper()
	for _, w := range want {
		if !strings.Contains(src, w) {
			t.Errorf("%s: missing %q", name, w)
		}
	}
}

func lacks(t *testing.T, src, name string, unwanted ...string) {
	t.Helper()
	for _, w := range unwanted {
		if strings.Contains(src, w) {
			t.Errorf("%s: unexpected %q", name, w)
		}
	}
}

const recordWorld = `
packages:
  - name: demo:rec
    interfaces:
      - name: api
        types:
          - name: pair
            record:
              - {name: a, type: u32}
              - {name: b, type: string}
        functions:
          - name: foo
            params: [{name: r, type: pair}]
            result: string
    worlds:
      - name: guest
        imports:
          - interface: api
`

func TestGenerate_RecordImport(t *testing.T) {
	files := generate(t, loadInline(t, recordWorld), Options{})
	parseAll(t, files)

	want := []string{"demo/rec/api/api.wit.go", "guest.component-type.wasm", "guest.wit.go"}
	if got := files.Names(); strings.Join(got, " ") != strings.Join(want, " ") {
		t.Fatalf("files = %v, want %v", got, want)
	}

	src := text(t, files, "demo/rec/api/api.wit.go")
	contains(t, src, "api",
		Header,
		"package api",
		"type Pair struct {\nA uint32\nB string\n}",
		"func Foo(r Pair) string {",
		"//go:wasmimport demo:rec/api foo\nfunc wasmimport_Foo(arg0 int32, arg1 int32, arg2 int32, arg3 int32)\n",
		"var pinner runtime.Pinner\n",
		"cabi.BorrowString(&pinner, r.B)",
		"int32(r.A)",
		"cabi.LiftStringChecked(",
		"pinner.Unpin()",
	)
	lacks(t, src, "api", "discriminant", "switch", "cleanupList", "//go:wasmexport")

	// The host writes the results into heap memory, never into a Go
	// stack frame that may move while the import runs.
	body := funcBody(t, src, "Foo")
	contains(t, body, "Foo", "ptr", "cabi.Alloc(cabi.Layout{Size: 8, Align: 4})")
	lacks(t, body, "Foo", "var retArea", "AddrOf", "KeepAlive")
	if n := strings.Count(body, "cabi.Free(ptr"); n != 1 {
		t.Errorf("Foo frees its return area %d times, want 1", n)
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	opts := Options{Stubs: true}
	a := generate(t, loadApp(t), opts)
	b := generate(t, loadApp(t), opts)

	if strings.Join(a.Names(), " ") != strings.Join(b.Names(), " ") {
		t.Fatalf("names differ: %v vs %v", a.Names(), b.Names())
	}
	for _, name := range a.Names() {
		x, _ := a.Get(name)
		y, _ := b.Get(name)
		if !bytes.Equal(x, y) {
			t.Errorf("%s differs between runs", name)
		}
	}
}

func TestGenerate_AppLayout(t *testing.T) {
	files := generate(t, loadApp(t), Options{Stubs: true})

	want := []string{
		"app.component-type.wasm",
		rootFile,
		backingFile,
		typesFile,
		storeFile,
	}
	if got := files.Names(); strings.Join(got, " ") != strings.Join(want, " ") {
		t.Fatalf("files = %v\nwant %v", got, want)
	}
	for _, name := range files.Names() {
		src, _ := files.Get(name)
		if strings.HasSuffix(name, ".go") && !bytes.HasPrefix(src, []byte(Header)) {
			t.Errorf("%s has no generated-code header", name)
		}
	}
}

func TestGenerate_Modes(t *testing.T) {
	for _, own := range []Ownership{Owning, Borrowing, BorrowingDuplicateIfNecessary} {
		for _, val := range []Validation{Checked, Unchecked} {
			t.Run(own.String()+"/"+val.String(), func(t *testing.T) {
				files := generate(t, loadApp(t), Options{
					Ownership:  own,
					Validation: val,
					Stubs:      true,
				})
				parseAll(t, files)
			})
		}
	}
}

func TestGenerate_Directions(t *testing.T) {
	files := generate(t, loadApp(t), Options{Stubs: true})

	types := text(t, files, typesFile)
	contains(t, types, typesFile,
		"//go:wasmimport demo:app/types@0.1.0 area",
		"type Point struct",
		"type Shape struct",
		"func Area(s Shape) float64 {",
	)
	lacks(t, types, typesFile, "//go:wasmexport")

	backing := text(t, files, backingFile)
	contains(t, backing, backingFile,
		"//go:wasmimport backing locate",
		"func Locate(p types.Point) cabi.Option[cabi.Tuple2[uint32, string]] {",
		"type ErrorCode uint8",
	)
	// blob is implemented by the component, so the import side of the
	// shared interface leaves it out.
	lacks(t, backing, backingFile, "//go:wasmexport", "type Blob", "[resource-drop]blob")

	store := text(t, files, storeFile)
	contains(t, store, storeFile,
		"//go:wasmexport demo:app/store@0.1.0#locate",
		"//go:wasmexport demo:app/store@0.1.0#[method]blob.read",
		"//go:wasmexport demo:app/store@0.1.0#[static]blob.merge",
		"//go:wasmexport demo:app/store@0.1.0#[constructor]blob",
		"backing.ErrorCode",
	)
	lacks(t, store, storeFile, "//go:wasmimport demo:app/store", "//go:wasmimport backing", "type ErrorCode")

	root := text(t, files, rootFile)
	contains(t, root, rootFile,
		"package app",
		"//go:wasmimport $root log",
		"//go:wasmexport run",
		"type Mode uint8",
		"types.Point",
		"const ComponentTypeSection = \"component-type:app\"",
		"var ComponentType = [",
		"// nothing reads it. Link app.component-type.wasm into the module with\n// wasm-tools component embed",
	)
	if got := ComponentTypeFile("app"); got != "app.component-type.wasm" {
		t.Errorf("ComponentTypeFile = %q", got)
	}
	if _, ok := files.Get(ComponentTypeFile("app")); !ok {
		t.Error("metadata object not written")
	}
}

func TestGenerate_Resources(t *testing.T) {
	files := generate(t, loadApp(t), Options{Stubs: true})
	store := text(t, files, storeFile)

	contains(t, store, storeFile,
		"type Blob interface {",
		"Read(n uint32) cabi.Result[[]uint8, backing.ErrorCode]",
		"Colors() (types.Color, cabi.Option[types.Color])",
		"type BlobStatics interface {",
		"New(init []uint8) Blob",
		"Merge(lhs Blob, rhs Blob) OwnBlob",
		"var BlobReps cabi.RepTable[Blob]",
		"//go:wasmexport demo:app/store@0.1.0#[dtor]blob",
		"type OwnBlob struct",
		"//go:wasmimport [export]demo:app/store@0.1.0 [resource-new]blob",
		"//go:wasmimport [export]demo:app/store@0.1.0 [resource-rep]blob",
		"//go:wasmimport [export]demo:app/store@0.1.0 [resource-drop]blob",
		"BlobReps.Must(uint32(",
		"NewOwnBlob(blobStatics.New(",
		"type OwnBlob struct {\nh *cabi.Handle\n}",
		"func OwnBlobFromHandle(handle int32) OwnBlob {\nreturn OwnBlob{h: cabi.NewHandle(handle, true)}\n}",
		"func (h OwnBlob) IntoHandle() int32 { return h.h.Take() }",
		"if handle, ok := h.h.Release(); ok {\nwasmimport_BlobDropOwn(handle)\n}",
	)
	if n := strings.Count(store, "type OwnBlob struct"); n != 1 {
		t.Errorf("OwnBlob declared %d times", n)
	}
}

func TestGenerate_Observer(t *testing.T) {
	r := loadApp(t)
	var events []resource.Event
	generate(t, r, Options{
		Stubs:    true,
		Observer: resource.ObserverFunc(func(e resource.Event) { events = append(events, e) }),
	})

	seen := map[resource.EventType]bool{}
	for _, e := range events {
		if r.Type(e.Resource).Name != "blob" {
			continue
		}
		seen[e.Type] = true
		if e.Type == resource.EventOwnRegistered && e.Info.Direction != resource.Export {
			t.Errorf("own registered for a %s resource", e.Info.Direction)
		}
	}
	for _, want := range []resource.EventType{resource.EventClassified, resource.EventOwnRegistered} {
		if !seen[want] {
			t.Errorf("no %s event for blob in %v", want, events)
		}
	}
}

func TestGenerate_ImportResource(t *testing.T) {
	const src = `
packages:
  - name: demo:fs
    interfaces:
      - name: files
        types:
          - name: file
            resource:
              constructor:
                params: [{name: path, type: string}]
              methods:
                - name: size
                  result: u64
              statics:
                - name: open-all
                  params: [{name: paths, type: "list<string>"}]
                  result: "list<file>"
    worlds:
      - name: guest
        imports:
          - interface: files
`
	files := generate(t, loadInline(t, src), Options{})
	parseAll(t, files)
	out := text(t, files, "demo/fs/files/files.wit.go")

	contains(t, out, "files",
		"type File struct {\nh *cabi.Handle\n}",
		"func FileFromHandle(handle int32, owned bool) File {\nreturn File{h: cabi.NewHandle(handle, owned)}\n}",
		"func (self File) IntoHandle() int32 { return self.h.Take() }",
		"func (self File) Drop() {\nif handle, ok := self.h.Release(); ok {\nwasmimport_FileDrop(handle)\n}\n}",
		"func NewFile(path string) File {",
		"func (self File) Size() uint64 {",
		"self.Handle()",
		"func FileOpenAll(paths []string) []File {",
		"FileFromHandle(",
		"//go:wasmimport demo:fs/files [resource-drop]file",
		"//go:wasmimport demo:fs/files [constructor]file",
		"//go:wasmimport demo:fs/files [method]file.size",
		"//go:wasmimport demo:fs/files [static]file.open-all",
	)
	lacks(t, out, "files", "RepTable", "//go:wasmexport")
}

func TestGenerate_Stubs(t *testing.T) {
	files := generate(t, loadApp(t), Options{Stubs: true})

	store := text(t, files, storeFile)
	contains(t, store, storeFile,
		"type Stub struct{}",
		"type BlobStub struct{}",
		"type BlobStaticsStub struct{}",
		"var impl Interface = new(Stub)",
		"var blobStatics BlobStatics = new(BlobStaticsStub)",
		"func (BlobStaticsStub) New(init []uint8) Blob {\nreturn BlobStub{}\n}",
		"func (BlobStub) Read(n uint32) cabi.Result[[]uint8, backing.ErrorCode] {\npanic(\"unreachable\")\n}",
		"panic(\"unreachable\")",
	)
	root := text(t, files, rootFile)
	contains(t, root, rootFile,
		"type App interface {",
		"Run(m Mode, origin types.Point) cabi.Result[struct{}, string]",
		"var impl App = new(Stub)",
	)
}

func TestGenerate_Implementations(t *testing.T) {
	tests := []struct {
		name     string
		iface    string
		resource string
	}{
		{"versioned", "demo:app/store@0.1.0", "demo:app/store@0.1.0/blob"},
		{"unversioned", "demo:app/store", "demo:app/store/blob"},
		{"short", "store", "blob"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			files := generate(t, loadApp(t), Options{
				WorldExports:     map[string]string{"app": "example.com/impl.App"},
				InterfaceExports: map[string]string{tt.iface: "example.com/impl.Store"},
				ResourceExports:  map[string]string{tt.resource: "BlobFactory"},
			})
			parseAll(t, files)

			store := text(t, files, storeFile)
			contains(t, store, storeFile,
				"impl2 \"example.com/impl\"",
				"var impl Interface = new(impl2.Store)",
				"var blobStatics BlobStatics = new(BlobFactory)",
			)
			lacks(t, store, storeFile, "Stub")

			root := text(t, files, rootFile)
			contains(t, root, rootFile, "var impl App = new(impl2.App)")
		})
	}
}

func TestGenerate_ResourceStubs(t *testing.T) {
	const src = `
packages:
  - name: demo:res
    interfaces:
      - name: api
        types:
          - name: counter
            resource:
              methods:
                - name: get
                  result: u32
          - name: cursor
            resource:
              methods:
                - name: next
                  result: u32
              statics:
                - name: origin
                  result: u32
    worlds:
      - name: guest
        exports:
          - interface: api
`
	files := generate(t, loadInline(t, src), Options{Stubs: true})
	parseAll(t, files)
	out := text(t, files, "exports/demo/res/api/api.wit.go")

	// Without a constructor nothing could return a stub resource.
	contains(t, out, "api",
		"type Counter interface {",
		"type CursorStaticsStub struct{}",
		"var cursorStatics CursorStatics = new(CursorStaticsStub)",
	)
	lacks(t, out, "api", "CounterStub", "CursorStub struct", "CounterStatics")
}

func TestGenerate_MissingExport(t *testing.T) {
	_, err := Generate(loadApp(t), 0, Options{PackagePath: testPkg})
	e := wantError(t, err, errors.PhaseConfig, errors.KindMissingExport)
	if len(e.Path) == 0 || e.Path[0] != "demo:app/store@0.1.0" {
		t.Errorf("path = %v", e.Path)
	}

	// The interface is bound, but blob's statics are not.
	_, err = Generate(loadApp(t), 0, Options{
		PackagePath:      testPkg,
		InterfaceExports: map[string]string{"demo:app/store@0.1.0": "Store"},
	})
	e = wantError(t, err, errors.PhaseConfig, errors.KindMissingExport)
	if e.Path[0] != "demo:app/store@0.1.0/blob" {
		t.Errorf("path = %v", e.Path)
	}
}

func TestGenerate_Errors(t *testing.T) {
	r := loadApp(t)
	tests := []struct {
		name  string
		r     *graph.Resolve
		world graph.WorldID
		opts  Options
		phase errors.Phase
		kind  errors.Kind
	}{
		{"nil resolve", nil, 0, Options{PackagePath: testPkg}, errors.PhaseGenerate, errors.KindNotFound},
		{"world out of range", r, 3, Options{PackagePath: testPkg}, errors.PhaseGenerate, errors.KindNotFound},
		{"no package path", r, 0, Options{Stubs: true}, errors.PhaseConfig, errors.KindInvalidInput},
		{"bad ownership", r, 0, Options{PackagePath: testPkg, Ownership: 7}, errors.PhaseConfig, errors.KindUnknownMode},
		{"bad validation", r, 0, Options{PackagePath: testPkg, Validation: 4}, errors.PhaseConfig, errors.KindUnknownMode},
		{
			"malformed impl", r, 0,
			Options{PackagePath: testPkg, WorldExports: map[string]string{"app": "example.com/impl."}},
			errors.PhaseConfig, errors.KindInvalidInput,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			files, err := Generate(tt.r, tt.world, tt.opts)
			if files != nil {
				t.Errorf("files = %v, want nil on error", files.Names())
			}
			wantError(t, err, tt.phase, tt.kind)
		})
	}
}

func TestGenerate_LongTuple(t *testing.T) {
	const wide = `
packages:
  - name: demo:wide
    interfaces:
      - name: api
        functions:
          - name: nine
            result: tuple<%s>
    worlds:
      - name: guest
        imports:
          - interface: api
`
	files := generate(t, loadInline(t, fmt.Sprintf(wide, "u8, u8, u8, u8, u8, u8, u8, u8, u8")), Options{})
	parseAll(t, files)
	contains(t, text(t, files, "demo/wide/api/api.wit.go"), "api",
		"func Nine() cabi.Tuple9[uint8, uint8, uint8, uint8, uint8, uint8, uint8, uint8, uint8] {",
		"cabi.Tuple9[uint8, uint8, uint8, uint8, uint8, uint8, uint8, uint8, uint8]{F0: ",
	)

	r := loadInline(t, fmt.Sprintf(wide, "u8, u8, u8, u8, u8, u8, u8, u8, u8, u8, u8, u8, u8, u8, u8, u8, u8"))
	files, err := Generate(r, 0, Options{PackagePath: testPkg})
	if files != nil {
		t.Errorf("files = %v, want nil on error", files.Names())
	}
	e := wantError(t, err, errors.PhaseGenerate, errors.KindUnsupported)
	if e.GoType != "cabi.Tuple17" || !strings.HasPrefix(e.WitType, "tuple<u8") {
		t.Errorf("types = %q, %q", e.GoType, e.WitType)
	}
}

func TestGenerate_Validation(t *testing.T) {
	checked := generate(t, loadApp(t), Options{Stubs: true})
	contains(t, text(t, checked, rootFile), rootFile, "panic(\"invalid enum discriminant\")")
	contains(t, text(t, checked, backingFile), backingFile,
		"panic(\"invalid option discriminant\")",
		"cabi.LiftStringChecked(",
	)

	unchecked := generate(t, loadApp(t), Options{Stubs: true, Validation: Unchecked})
	lacks(t, text(t, unchecked, rootFile), rootFile, "discriminant")
	backing := text(t, unchecked, backingFile)
	lacks(t, backing, backingFile, "discriminant", "LiftStringChecked")
	contains(t, backing, backingFile, "default:", "cabi.LiftString(")
}

var (
	importArea = regexp.MustCompile(`cabi\.Alloc\(cabi\.Layout\{Size: (\d+), Align: 4\}\)`)
	exportArea = regexp.MustCompile(`(?m)^var retArea \[(\d+)\]uint64$`)
)

func TestGenerate_ReturnArea(t *testing.T) {
	files := generate(t, loadApp(t), Options{Stubs: true})

	// option<tuple<u32, string>> is 16 bytes.
	backing := text(t, files, backingFile)
	m := importArea.FindStringSubmatch(funcBody(t, backing, "Locate"))
	if m == nil || m[1] != "16" {
		t.Errorf("backing Locate return area = %v, want 16 bytes", m)
	}
	lacks(t, backing, backingFile, "var retArea", "AddrOf(")

	for _, name := range []string{storeFile, rootFile} {
		src := text(t, files, name)
		all := exportArea.FindAllStringSubmatch(src, -1)
		if len(all) != 1 {
			t.Errorf("%s: %d package return areas, want 1", name, len(all))
			continue
		}
		if all[0][1] != "2" {
			t.Errorf("%s: return area = %s words, want 2", name, all[0][1])
		}
		if !strings.Contains(src, "cabi.AddrOf(&retArea)") {
			t.Errorf("%s: return area not used", name)
		}
	}

	// Functions that fit in one flat result need no return area.
	types := text(t, files, typesFile)
	if importArea.MatchString(types) || exportArea.MatchString(types) {
		t.Errorf("%s declares a return area", typesFile)
	}
}

func TestGenerate_PostReturn(t *testing.T) {
	files := generate(t, loadApp(t), Options{Stubs: true, ExportPrefix: "x:"})

	root := text(t, files, rootFile)
	contains(t, root, rootFile,
		"//go:wasmexport x:run\n",
		"//go:wasmexport x:cabi_post_run\nfunc wasmexport_post_Run(arg0 int32) {",
	)
	store := text(t, files, storeFile)
	contains(t, store, storeFile,
		"//go:wasmexport x:demo:app/store@0.1.0#locate",
		"//go:wasmexport x:cabi_post_demo:app/store@0.1.0#locate",
		"//go:wasmexport x:demo:app/store@0.1.0#[dtor]blob",
	)
	// merge returns a bare handle and owns no memory afterwards.
	lacks(t, store, storeFile, "cabi_post_demo:app/store@0.1.0#[static]blob.merge")
}

// funcBody returns the source of the top-level function ident.
func funcBody(t *testing.T, src, ident string) string {
	t.Helper()
	start := strings.Index(src, "func "+ident+"(")
	if start < 0 {
		t.Fatalf("no function %s in:\n%s", ident, src)
	}
	rest := src[start+1:]
	end := len(rest)
	for _, next := range []string{"\nfunc ", "\n//go:"} {
		if i := strings.Index(rest, next); i >= 0 && i < end {
			end = i
		}
	}
	return src[start : start+1+end]
}

func TestGenerate_CleanupList(t *testing.T) {
	const src = `
packages:
  - name: demo:nest
    interfaces:
      - name: api
        functions:
          - name: put
            params: [{name: rows, type: "list<list<string>>"}]
          - name: report
            params: [{name: r, type: "result<u32, list<string>>"}]
          - name: maybe
            params: [{name: o, type: "option<list<string>>"}]
          - name: flat
            params: [{name: names, type: "list<string>"}]
    worlds:
      - name: guest
        imports:
          - interface: api
`
	files := generate(t, loadInline(t, src), Options{})
	parseAll(t, files)
	out := text(t, files, "demo/nest/api/api.wit.go")

	// Allocations made inside a block are freed through the runtime list.
	for _, ident := range []string{"Put", "Report", "Maybe"} {
		body := funcBody(t, out, ident)
		if n := strings.Count(body, "var cleanupList []cabi.Cleanup"); n != 1 {
			t.Errorf("%s declares cleanupList %d times", ident, n)
		}
		if n := strings.Count(body, "cabi.FreeAll(cleanupList)"); n != 1 {
			t.Errorf("%s frees cleanupList %d times", ident, n)
		}
		contains(t, body, ident, "cleanupList = append(cleanupList, cabi.Cleanup{Ptr: ")
	}

	// A single level of lists is freed directly on return.
	flat := funcBody(t, out, "Flat")
	lacks(t, flat, "Flat", "cleanupList")
	if n := strings.Count(flat, "cabi.Free("); n != 1 {
		t.Errorf("Flat frees %d allocations, want 1", n)
	}
	contains(t, flat, "Flat", "var pinner runtime.Pinner", "cabi.BorrowString(&pinner, ", "pinner.Unpin()")
}

func TestGenerate_Ownership(t *testing.T) {
	const src = `
packages:
  - name: demo:own
    interfaces:
      - name: api
        types:
          - name: inner
            record: [{name: v, type: u32}]
          - name: outer
            record:
              - {name: inner, type: inner}
              - {name: label, type: string}
        functions:
          - name: echo
            params: [{name: o, type: outer}]
            result: outer
    worlds:
      - name: guest
        imports:
          - interface: api
`
	const name = "demo/own/api/api.wit.go"
	tests := []struct {
		mode   Ownership
		want   []string
		unwant []string
	}{
		{
			Owning,
			[]string{"type Outer struct", "func Echo(o Outer) Outer {"},
			[]string{"OuterParam", "*Outer"},
		},
		{
			Borrowing,
			[]string{"type Outer struct", "func Echo(o *Outer) Outer {"},
			[]string{"OuterParam", "OuterResult"},
		},
		{
			BorrowingDuplicateIfNecessary,
			[]string{
				"type OuterParam struct {\nInner *Inner\nLabel string\n}",
				"type OuterResult struct {\nInner Inner\nLabel string\n}",
				"func Echo(o *OuterParam) OuterResult {",
			},
			[]string{"type Outer struct"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.mode.String(), func(t *testing.T) {
			files := generate(t, loadInline(t, src), Options{Ownership: tt.mode})
			parseAll(t, files)
			out := text(t, files, name)
			contains(t, out, name, tt.want...)
			lacks(t, out, name, tt.unwant...)
		})
	}
}

func TestGenerate_TypeDeclarations(t *testing.T) {
	files := generate(t, loadApp(t), Options{Stubs: true})
	types := text(t, files, typesFile)

	contains(t, types, typesFile,
		"// A point on the grid.\ntype Point struct",
		"type Color uint8",
		"ColorRed Color = iota",
		"var colorNames = [...]string{\"red\", \"green\", \"blue\"}",
		"type Perms uint8",
		"PermsRead Perms = 1 << iota",
		"ShapeCircleTag uint8 = 0",
		"func ShapeEmpty() Shape { return Shape{tag: 2} }",
		"func (v Shape) Circle() float32 { return v.case0 }",
		"type Number struct",
		"func NumberF1(payload float64) Number",
		"type Points = []Point",
	)

	backing := text(t, files, backingFile)
	contains(t, backing, backingFile, "func (v ErrorCode) Error() string { return v.String() }")
}

func TestGenerate_StdFeature(t *testing.T) {
	const src = `
packages:
  - name: demo:errs
    interfaces:
      - name: api
        types:
          - name: failure
            record:
              - {name: code, type: u32}
              - {name: message, type: string}
        functions:
          - name: fetch
            result: "result<u32, failure>"
    worlds:
      - name: guest
        imports:
          - interface: api
`
	const (
		main = "demo/errs/api/api.wit.go"
		std  = "demo/errs/api/api_std.wit.go"
	)

	plain := generate(t, loadInline(t, src), Options{})
	if _, ok := plain.Get(std); ok {
		t.Errorf("%s generated without StdFeature", std)
	}
	contains(t, text(t, plain, main), main, "\"fmt\"", "func (v Failure) Error() string {")

	split := generate(t, loadInline(t, src), Options{StdFeature: true})
	parseAll(t, split)
	lacks(t, text(t, split, main), main, "\"fmt\"", "Error() string")
	contains(t, text(t, split, std), std,
		"//go:build witgen_std\n",
		"package api",
		"\"fmt\"",
		"func (v Failure) Error() string {",
	)
}

func TestGenerate_RawStrings(t *testing.T) {
	files := generate(t, loadInline(t, recordWorld), Options{RawStrings: true})
	src := text(t, files, "demo/rec/api/api.wit.go")
	contains(t, src, "api", "B []byte", "func Foo(r Pair) []byte {", "cabi.BorrowSlice(&pinner, r.B)", "cabi.LiftSlice[byte](")
	lacks(t, src, "api", "LiftString")
}

func TestGenerate_Skip(t *testing.T) {
	files := generate(t, loadApp(t), Options{
		Stubs: true,
		Skip:  map[string]bool{"locate": true, "log": true},
	})
	lacks(t, text(t, files, storeFile), storeFile, "locate", "Locate")
	lacks(t, text(t, files, backingFile), backingFile, "locate")
	lacks(t, text(t, files, rootFile), rootFile, "wasmimport_Log")
}

func TestGenerate_Format(t *testing.T) {
	raw := generate(t, loadInline(t, recordWorld), Options{})
	piped := generate(t, loadInline(t, recordWorld), Options{Format: true, Formatter: "cat"})
	for _, name := range raw.Names() {
		a, _ := raw.Get(name)
		b, _ := piped.Get(name)
		if !bytes.Equal(a, b) {
			t.Errorf("%s changed by an identity formatter", name)
		}
	}

	_, err := Generate(loadInline(t, recordWorld), 0, Options{
		PackagePath: testPkg,
		Format:      true,
		Formatter:   "false",
	})
	e := wantError(t, err, errors.PhaseFormat, errors.KindSubprocess)
	if len(e.Path) != 1 || !strings.HasSuffix(e.Path[0], ".wit.go") {
		t.Errorf("path = %v", e.Path)
	}
}
