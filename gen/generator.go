package gen

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/wippyai/witgen/abi"
	"github.com/wippyai/witgen/errors"
	"github.com/wippyai/witgen/graph"
	"github.com/wippyai/witgen/metadata"
	"github.com/wippyai/witgen/resource"
)

// Generator holds the state of one generation run.
type Generator struct {
	resolve  *graph.Resolve
	worldID  graph.WorldID
	opts     Options
	sizes    *graph.SizeAlign
	registry *resource.Registry
	types    *typeInfos

	root       *interfaceEmitter
	importLocs map[graph.InterfaceID]*interfaceEmitter
	exportLocs map[graph.InterfaceID]*interfaceEmitter
	emitters   []*interfaceEmitter

	// imports and exports are the interface items of the world, with
	// interfaces reached only through types appended to imports.
	imports []graph.WorldItem
	exports []graph.WorldItem
}

// Generate produces Go bindings for world. On error no files are returned.
func Generate(r *graph.Resolve, world graph.WorldID, opts Options) (*Files, error) {
	return GenerateContext(context.Background(), r, world, opts)
}

// GenerateContext is Generate with a context bounding the formatter.
func GenerateContext(ctx context.Context, r *graph.Resolve, world graph.WorldID, opts Options) (files *Files, err error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if r == nil || int(world) < 0 || int(world) >= len(r.Worlds) {
		return nil, errors.NotFound(errors.PhaseGenerate, "world", fmt.Sprint(world))
	}
	if opts.PackagePath == "" {
		return nil, errors.InvalidInput(errors.PhaseConfig, "package path is required")
	}

	g := &Generator{
		resolve:    r,
		worldID:    world,
		opts:       opts,
		sizes:      graph.NewSizeAlign(r),
		registry:   resource.NewRegistry(r),
		types:      newTypeInfos(r),
		importLocs: make(map[graph.InterfaceID]*interfaceEmitter),
		exportLocs: make(map[graph.InterfaceID]*interfaceEmitter),
	}
	if opts.Observer != nil {
		g.registry.Subscribe(opts.Observer)
	}

	defer func() {
		if rec := recover(); rec != nil {
			e, ok := rec.(*errors.Error)
			if !ok {
				panic(rec)
			}
			files, err = nil, e
		}
	}()

	Logger().Debug("generating bindings",
		zap.String("world", r.World(world).Name),
		zap.Stringer("ownership", opts.Ownership),
		zap.Stringer("validation", opts.Validation))

	passes := []func() error{
		g.preprocess,
		g.importInterfaces,
		g.worldImports,
		g.exportInterfaces,
		g.worldExports,
	}
	for _, pass := range passes {
		if err := pass(); err != nil {
			return nil, err
		}
	}
	return g.finish(ctx)
}

func (g *Generator) world() *graph.World {
	return g.resolve.World(g.worldID)
}

// location returns the emitter that declares iface's types. Import
// locations win unless export is set and the interface is exported.
func (g *Generator) location(iface graph.InterfaceID, export bool) *interfaceEmitter {
	if export {
		if e := g.exportLocs[iface]; e != nil {
			return e
		}
	}
	if e := g.importLocs[iface]; e != nil {
		return e
	}
	return g.exportLocs[iface]
}

// preprocess analyses type usage, classifies resources and lays out the
// package tree.
func (g *Generator) preprocess() error {
	w := g.world()
	imported := make(map[graph.InterfaceID]bool)
	for _, item := range w.Imports {
		switch item.Kind {
		case graph.ItemInterface:
			g.imports = append(g.imports, item)
			imported[item.Interface] = true
		case graph.ItemFunction:
			g.types.addFunc(item.Function, true)
		case graph.ItemType:
			g.types.addType(item.Type)
		}
	}
	for _, item := range w.Exports {
		switch item.Kind {
		case graph.ItemInterface:
			g.exports = append(g.exports, item)
		case graph.ItemFunction:
			g.types.addFunc(item.Function, false)
		}
	}

	// Interfaces reached only through types are imported implicitly.
	seen := make(map[graph.InterfaceID]bool)
	for _, item := range append(append([]graph.WorldItem{}, g.imports...), g.exports...) {
		seen[item.Interface] = true
	}
	for _, id := range g.referencedInterfaces() {
		if !seen[id] {
			seen[id] = true
			g.imports = append(g.imports, graph.WorldItem{
				Key:       graph.WorldKey{Interface: id, IsInterface: true},
				Kind:      graph.ItemInterface,
				Interface: id,
			})
			imported[id] = true
			Logger().Debug("implicit import", zap.String("interface", g.resolve.InterfaceID(id)))
		}
	}

	for _, item := range g.imports {
		g.classifyInterface(item.Interface, resource.Import, true)
	}
	for _, item := range w.Imports {
		if item.Kind == graph.ItemType {
			g.classifyType(item.Type, resource.Import)
		}
	}
	for _, item := range g.exports {
		g.classifyInterface(item.Interface, resource.Export, false)
	}

	g.root = g.newEmitter(abi.GuestImport, "", packageName(w.Name))
	g.root.isWorld = true
	g.root.module = "$root"
	g.root.file = packageName(w.Name) + ".wit.go"
	g.emitters = append(g.emitters, g.root)

	for _, item := range g.imports {
		e := g.interfaceEmitter(item, abi.GuestImport, "")
		g.importLocs[item.Interface] = e
	}
	for _, item := range g.exports {
		e := g.interfaceEmitter(item, abi.GuestExport, "exports")
		g.exportLocs[item.Interface] = e
		if imported[item.Interface] {
			Logger().Debug("interface both imported and exported",
				zap.String("interface", g.resolve.InterfaceID(item.Interface)))
		}
	}
	return nil
}

func (g *Generator) classifyInterface(id graph.InterfaceID, d resource.Direction, imported bool) {
	iface := g.resolve.Interface(id)
	for _, t := range iface.Types {
		g.types.addType(t)
		g.classifyType(t, d)
	}
	for _, fn := range iface.Functions {
		g.types.addFunc(fn, imported)
	}
}

func (g *Generator) classifyType(id graph.TypeID, d resource.Direction) {
	if _, ok := g.resolve.Type(id).Kind.(*graph.Resource); ok {
		g.registry.Classify(id, d)
	}
}

// referencedInterfaces returns, in ID order, every interface owning a type
// reachable from the world.
func (g *Generator) referencedInterfaces() []graph.InterfaceID {
	found := make(map[graph.InterfaceID]bool)
	visited := make(map[graph.TypeID]bool)
	var walk func(t graph.Type)
	walk = func(t graph.Type) {
		id, ok := t.(graph.TypeID)
		if !ok || visited[id] {
			return
		}
		visited[id] = true
		def := g.resolve.Type(id)
		if def.Owner.Kind == graph.OwnerInterface {
			found[def.Owner.Interface] = true
		}
		for _, c := range childTypes(def.Kind) {
			walk(c)
		}
	}
	walkFunc := func(fn *graph.Function) {
		for _, p := range fn.Params {
			walk(p.Type)
		}
		for _, r := range fn.Results {
			walk(r.Type)
		}
	}
	w := g.world()
	for _, items := range [][]graph.WorldItem{w.Imports, w.Exports} {
		for _, item := range items {
			switch item.Kind {
			case graph.ItemInterface:
				iface := g.resolve.Interface(item.Interface)
				for _, t := range iface.Types {
					walk(t)
				}
				for _, fn := range iface.Functions {
					walkFunc(fn)
				}
			case graph.ItemFunction:
				walkFunc(item.Function)
			case graph.ItemType:
				walk(item.Type)
			}
		}
	}
	ids := make([]graph.InterfaceID, 0, len(found))
	for id := range found {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func childTypes(k graph.Kind) []graph.Type {
	switch k := k.(type) {
	case *graph.Record:
		out := make([]graph.Type, len(k.Fields))
		for i, f := range k.Fields {
			out[i] = f.Type
		}
		return out
	case *graph.Variant:
		var out []graph.Type
		for _, c := range k.Cases {
			if c.Type != nil {
				out = append(out, c.Type)
			}
		}
		return out
	case *graph.Union:
		out := make([]graph.Type, len(k.Cases))
		for i, c := range k.Cases {
			out[i] = c.Type
		}
		return out
	case *graph.Tuple:
		return k.Types
	case *graph.Option:
		return []graph.Type{k.Type}
	case *graph.Result:
		var out []graph.Type
		if k.OK != nil {
			out = append(out, k.OK)
		}
		if k.Err != nil {
			out = append(out, k.Err)
		}
		return out
	case *graph.List:
		return []graph.Type{k.Type}
	case *graph.Alias:
		return []graph.Type{k.Type}
	case *graph.Handle:
		return []graph.Type{k.Resource}
	}
	return nil
}

// interfaceEmitter creates the emitter for an interface item below prefix.
func (g *Generator) interfaceEmitter(item graph.WorldItem, variant abi.Variant, prefix string) *interfaceEmitter {
	iface := g.resolve.Interface(item.Interface)
	var parts []string
	if prefix != "" {
		parts = append(parts, prefix)
	}
	name := iface.Name
	if !item.Key.IsInterface && item.Key.Name != "" {
		name = item.Key.Name
	}
	if p := g.resolve.Package(iface.Package); p != nil && item.Key.IsInterface {
		parts = append(parts, packageName(p.Name.Namespace), packageName(p.Name.Name))
	}
	pkg := packageName(name)
	parts = append(parts, pkg)

	e := g.newEmitter(variant, strings.Join(parts, "/"), pkg)
	e.iface = item.Interface
	e.key = item.Key
	e.module = g.resolve.NameWorldKey(item.Key)
	e.file = e.dir + "/" + pkg + ".wit.go"
	g.emitters = append(g.emitters, e)
	return e
}

func (g *Generator) importInterfaces() error {
	for _, item := range g.imports {
		e := g.importLocs[item.Interface]
		iface := g.resolve.Interface(item.Interface)
		e.variant = abi.GuestImport
		for _, t := range iface.Types {
			if g.exportLocs[item.Interface] != nil && g.registry.Direction(t) == resource.Export {
				continue
			}
			e.declareType(t)
		}
		for _, fn := range iface.Functions {
			if g.opts.skipped(fn.Name) {
				continue
			}
			if fn.Kind != graph.Freestanding && g.registry.Direction(fn.Resource) == resource.Export {
				continue
			}
			if err := e.importFunction(fn); err != nil {
				return err
			}
		}
	}
	return nil
}

func (g *Generator) worldImports() error {
	e := g.root
	e.variant = abi.GuestImport
	for _, item := range g.world().Imports {
		switch item.Kind {
		case graph.ItemType:
			e.declareType(item.Type)
		case graph.ItemFunction:
			if g.opts.skipped(item.Function.Name) {
				continue
			}
			if err := e.importFunction(item.Function); err != nil {
				return err
			}
		}
	}
	return nil
}

func (g *Generator) exportInterfaces() error {
	for _, item := range g.exports {
		e := g.exportLocs[item.Interface]
		iface := g.resolve.Interface(item.Interface)
		shared := g.importLocs[item.Interface] != nil
		e.variant = abi.GuestExport
		for _, t := range iface.Types {
			_, isResource := g.resolve.Type(t).Kind.(*graph.Resource)
			if shared && (!isResource || g.registry.Direction(t) != resource.Export) {
				continue
			}
			e.declareType(t)
		}
		for _, fn := range iface.Functions {
			if g.opts.skipped(fn.Name) {
				continue
			}
			if err := e.exportFunction(fn); err != nil {
				return err
			}
		}
		e.variant = abi.GuestExport
		if err := e.bindInterface(); err != nil {
			return err
		}
		for _, t := range iface.Types {
			if _, ok := g.resolve.Type(t).Kind.(*graph.Resource); ok && g.registry.Direction(t) == resource.Export {
				if err := e.bindStatics(t); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func (g *Generator) worldExports() error {
	e := g.root
	for _, item := range g.world().Exports {
		if item.Kind != graph.ItemFunction || g.opts.skipped(item.Function.Name) {
			continue
		}
		if err := e.exportFunction(item.Function); err != nil {
			return err
		}
	}
	e.variant = abi.GuestExport
	return e.bindInterface()
}

// finish adds owned-handle glue and metadata, renders every package and
// runs the formatter.
func (g *Generator) finish(ctx context.Context) (*Files, error) {
	exported := g.registry.Exported()
	for _, id := range exported {
		info, err := g.registry.Lookup(id)
		if err != nil {
			return nil, err
		}
		if !info.HasOwn {
			continue
		}
		owner := g.resolve.Type(id).Owner
		loc := g.root
		if owner.Kind == graph.OwnerInterface {
			loc = g.location(owner.Interface, true)
		}
		if loc == nil {
			return nil, errors.Internal("exported resource %s has no output location", g.resolve.Type(id).Name)
		}
		loc.declareOwn(id)
	}

	files := newFiles()
	if err := g.embedMetadata(ctx, files); err != nil {
		return nil, err
	}

	sort.SliceStable(g.emitters, func(i, j int) bool { return g.emitters[i].dir < g.emitters[j].dir })
	for _, e := range g.emitters {
		if err := g.push(ctx, files, e.file, e.render()); err != nil {
			return nil, err
		}
		if std := e.renderStd(); std != nil {
			name := strings.TrimSuffix(e.file, ".wit.go") + "_std.wit.go"
			if err := g.push(ctx, files, name, std); err != nil {
				return nil, err
			}
		}
	}

	Logger().Info("generated bindings",
		zap.String("world", g.world().Name),
		zap.Int("files", files.Len()),
		zap.Int("resources", g.registry.Len()),
		zap.Int("exported_resources", len(exported)))
	return files, nil
}

func (g *Generator) push(ctx context.Context, files *Files, name string, src []byte) error {
	if g.opts.Format {
		out, err := formatSource(ctx, g.opts.Formatter, name, src)
		if err != nil {
			return err
		}
		src = out
	}
	files.Push(name, src)
	return nil
}

// embedMetadata encodes the world descriptor into the root package and
// writes the metadata object next to it.
func (g *Generator) embedMetadata(ctx context.Context, files *Files) error {
	w := g.world()
	blob, err := metadata.Encode(metadata.Describe(g.resolve, g.worldID))
	if err != nil {
		return err
	}
	obj := metadata.Object(w.Name, blob, g.opts.version())
	if g.opts.VerifyMetadata {
		if err := metadata.Verify(ctx, obj, w.Name); err != nil {
			return err
		}
	}
	file := ComponentTypeFile(w.Name)
	files.Push(file, obj)

	e := g.root
	e.line("// ComponentTypeSection names the custom section carrying the world's type metadata.")
	e.line("const ComponentTypeSection = %q\n", metadata.SectionName(w.Name))
	e.line("// ComponentType is the encoded type metadata of world %s, for inspection at run time.", w.Name)
	e.line("// The Go toolchain cannot emit custom sections and drops this variable when")
	e.line("// nothing reads it. Link %s into the module with", file)
	e.line("// wasm-tools component embed to give the component its types.")
	e.line("var ComponentType = [%d]byte{%s}\n", len(blob), byteList(blob))
	return nil
}

// ComponentTypeFile is the name of the metadata object written for world.
// It is the artifact component tooling embeds; the ComponentType variable
// in the root package only mirrors its payload.
func ComponentTypeFile(world string) string {
	return packageName(world) + ".component-type.wasm"
}

func byteList(b []byte) string {
	var s strings.Builder
	for i, c := range b {
		if i > 0 {
			if i%16 == 0 {
				s.WriteString(",\n")
			} else {
				s.WriteString(", ")
			}
		}
		fmt.Fprintf(&s, "0x%02x", c)
	}
	return s.String()
}
