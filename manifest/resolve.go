package manifest

import (
	"strings"

	"go.uber.org/zap"

	"github.com/wippyai/witgen/errors"
	"github.com/wippyai/witgen/graph"
)

type resolver struct {
	m *Manifest
	b *graph.Builder

	// qualified maps "ns:pkg/iface" and "ns:pkg/iface@version".
	qualified map[string]graph.InterfaceID
	local     []map[string]graph.InterfaceID

	ifaceScopes map[graph.InterfaceID]*scope
	worldScopes map[graph.WorldID]*scope
	ifaceIDs    [][]graph.InterfaceID
	worldIDs    [][]graph.WorldID
}

// Resolve builds the graph declared by m.
func (m *Manifest) Resolve() (*graph.Resolve, error) {
	r := &resolver{
		m:           m,
		b:           graph.NewBuilder(),
		qualified:   make(map[string]graph.InterfaceID),
		ifaceScopes: make(map[graph.InterfaceID]*scope),
		worldScopes: make(map[graph.WorldID]*scope),
	}
	for _, pass := range []func() error{
		r.declare,
		r.reserveTypes,
		r.uses,
		r.defineTypes,
		r.functions,
		r.worlds,
	} {
		if err := pass(); err != nil {
			return nil, err
		}
	}
	res := r.b.Resolve()
	Logger().Debug("manifest resolved",
		zap.String("path", m.path),
		zap.Int("packages", len(res.Packages)),
		zap.Int("interfaces", len(res.Interfaces)),
		zap.Int("worlds", len(res.Worlds)),
		zap.Int("types", len(res.Types)))
	return res, nil
}

func (r *resolver) declare() error {
	for _, p := range r.m.Packages {
		name, err := parsePackageName(p.Name)
		if err != nil {
			return err
		}
		pid := r.b.Package(name)
		r.b.Resolve().Package(pid).Docs = p.Docs

		local := make(map[string]graph.InterfaceID, len(p.Interfaces))
		var ifaces []graph.InterfaceID
		for _, iface := range p.Interfaces {
			if _, dup := local[iface.Name]; dup {
				return errors.New(errors.PhaseResolve, errors.KindDuplicate).
					Path(p.Name, iface.Name).
					Detail("interface %q declared twice", iface.Name).
					Build()
			}
			id := r.b.Interface(pid, iface.Name)
			r.b.Resolve().Interface(id).Docs = iface.Docs
			local[iface.Name] = id
			ifaces = append(ifaces, id)

			base := name.Namespace + ":" + name.Name + "/" + iface.Name
			r.qualified[base] = id
			if name.Version != "" {
				r.qualified[base+"@"+name.Version] = id
			}
		}
		r.local = append(r.local, local)
		r.ifaceIDs = append(r.ifaceIDs, ifaces)

		var worlds []graph.WorldID
		for _, w := range p.Worlds {
			wid := r.b.World(pid, w.Name)
			r.b.Resolve().World(wid).Docs = w.Docs
			worlds = append(worlds, wid)
		}
		r.worldIDs = append(r.worldIDs, worlds)
	}
	return nil
}

// reserveTypes allocates a TypeID for every named type so declarations
// may refer to each other in any order.
func (r *resolver) reserveTypes() error {
	for pi, p := range r.m.Packages {
		for ii, iface := range p.Interfaces {
			id := r.ifaceIDs[pi][ii]
			sc := newScope(r.b, r.b.InInterface(id), p.Name, iface.Name)
			r.ifaceScopes[id] = sc
			if err := r.reserve(sc, iface.Types); err != nil {
				return err
			}
		}
		for wi, w := range p.Worlds {
			wid := r.worldIDs[pi][wi]
			sc := newScope(r.b, r.b.InWorld(wid), p.Name, w.Name)
			r.worldScopes[wid] = sc
			if err := r.reserve(sc, w.Types); err != nil {
				return err
			}
			for _, td := range w.Types {
				if res := td.Resource; res != nil && (res.Constructor != nil || len(res.Methods)+len(res.Statics) > 0) {
					return errors.Unsupported(errors.PhaseResolve, "functions of world-level resource "+td.Name)
				}
				r.b.ImportType(wid, sc.names[td.Name])
			}
		}
	}
	return nil
}

func (r *resolver) reserve(sc *scope, decls []TypeDecl) error {
	for _, td := range decls {
		var id graph.TypeID
		if td.Resource != nil {
			id = r.b.Resource(sc.owner, td.Name)
		} else {
			id = r.b.Define(sc.owner, td.Name, nil)
		}
		r.b.Docs(id, td.Docs)
		if err := sc.add(td.Name, id); err != nil {
			return err
		}
	}
	return nil
}

func (r *resolver) uses() error {
	for pi, p := range r.m.Packages {
		for ii, iface := range p.Interfaces {
			sc := r.ifaceScopes[r.ifaceIDs[pi][ii]]
			if err := r.use(pi, sc, iface.Use); err != nil {
				return err
			}
		}
		for wi, w := range p.Worlds {
			if err := r.use(pi, r.worldScopes[r.worldIDs[pi][wi]], w.Use); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *resolver) use(pkg int, sc *scope, uses []Use) error {
	for _, u := range uses {
		from, err := r.interfaceRef(pkg, u.Interface, sc.path)
		if err != nil {
			return err
		}
		src := r.ifaceScopes[from]
		for _, n := range u.Names {
			id, ok := src.names[n]
			if !ok {
				return src.notFound(n)
			}
			if err := sc.add(n, id); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *resolver) defineTypes() error {
	for pi, p := range r.m.Packages {
		for ii, iface := range p.Interfaces {
			if err := r.define(r.ifaceScopes[r.ifaceIDs[pi][ii]], iface.Types); err != nil {
				return err
			}
		}
		for wi, w := range p.Worlds {
			if err := r.define(r.worldScopes[r.worldIDs[pi][wi]], w.Types); err != nil {
				return err
			}
		}
	}
	return r.checkAliases()
}

func (r *resolver) define(sc *scope, decls []TypeDecl) error {
	for _, td := range decls {
		if td.Resource != nil {
			continue
		}
		kind, err := r.kind(sc, &td)
		if err != nil {
			return err
		}
		r.b.Resolve().Type(sc.names[td.Name]).Kind = kind
	}
	return nil
}

func (r *resolver) kind(sc *scope, td *TypeDecl) (graph.Kind, error) {
	switch {
	case len(td.Record) > 0:
		fields := make([]graph.Field, len(td.Record))
		for i, f := range td.Record {
			t, err := sc.typeOf(f.Type)
			if err != nil {
				return nil, err
			}
			fields[i] = graph.Field{Name: f.Name, Type: t, Docs: f.Docs}
		}
		return &graph.Record{Fields: fields}, nil
	case len(td.Variant) > 0:
		cases := make([]graph.Case, len(td.Variant))
		for i, c := range td.Variant {
			cases[i] = graph.Case{Name: c.Name, Docs: c.Docs}
			if c.Type == "" {
				continue
			}
			t, err := sc.typeOf(c.Type)
			if err != nil {
				return nil, err
			}
			cases[i].Type = t
		}
		return &graph.Variant{Cases: cases}, nil
	case len(td.Union) > 0:
		cases := make([]graph.UnionCase, len(td.Union))
		for i, expr := range td.Union {
			t, err := sc.typeOf(expr)
			if err != nil {
				return nil, err
			}
			cases[i] = graph.UnionCase{Type: t}
		}
		return &graph.Union{Cases: cases}, nil
	case len(td.Enum) > 0:
		cases := make([]graph.EnumCase, len(td.Enum))
		for i, c := range td.Enum {
			cases[i] = graph.EnumCase{Name: c}
		}
		return &graph.Enum{Cases: cases}, nil
	case len(td.Flags) > 0:
		flags := make([]graph.Flag, len(td.Flags))
		for i, f := range td.Flags {
			flags[i] = graph.Flag{Name: f}
		}
		return &graph.Flags{Flags: flags}, nil
	}
	t, err := sc.typeOf(td.Type)
	if err != nil {
		return nil, err
	}
	return &graph.Alias{Type: t}, nil
}

// checkAliases rejects alias chains that never reach a non-alias type.
func (r *resolver) checkAliases() error {
	res := r.b.Resolve()
	for id, def := range res.Types {
		var t graph.Type = graph.TypeID(id)
		for steps := 0; ; steps++ {
			tid, ok := t.(graph.TypeID)
			if !ok {
				break
			}
			a, ok := res.Types[tid].Kind.(*graph.Alias)
			if !ok {
				break
			}
			if steps > len(res.Types) {
				return errors.New(errors.PhaseResolve, errors.KindInvalidInput).
					WitType(def.Name).
					Detail("type alias cycle").
					Build()
			}
			t = a.Type
		}
	}
	return nil
}

func (r *resolver) functions() error {
	for pi, p := range r.m.Packages {
		for ii, iface := range p.Interfaces {
			id := r.ifaceIDs[pi][ii]
			sc := r.ifaceScopes[id]
			for _, fn := range iface.Functions {
				f, err := r.function(sc, &fn)
				if err != nil {
					return err
				}
				r.b.Func(id, f)
			}
			for _, td := range iface.Types {
				if td.Resource != nil {
					if err := r.resourceFunctions(id, sc, sc.names[td.Name], td.Resource); err != nil {
						return err
					}
				}
			}
		}
	}
	return nil
}

func (r *resolver) resourceFunctions(iface graph.InterfaceID, sc *scope, res graph.TypeID, decl *ResourceDecl) error {
	if c := decl.Constructor; c != nil {
		params, err := r.params(sc, c.Params)
		if err != nil {
			return err
		}
		r.b.Constructor(iface, res, params...).Docs = c.Docs
	}
	for _, m := range decl.Methods {
		f, err := r.function(sc, &m)
		if err != nil {
			return err
		}
		r.b.Method(iface, res, m.Name, f.Params, f.Results).Docs = m.Docs
	}
	for _, s := range decl.Statics {
		f, err := r.function(sc, &s)
		if err != nil {
			return err
		}
		r.b.Static(iface, res, s.Name, f.Params, f.Results).Docs = s.Docs
	}
	return nil
}

func (r *resolver) function(sc *scope, fn *Func) (*graph.Function, error) {
	params, err := r.params(sc, fn.Params)
	if err != nil {
		return nil, err
	}
	f := &graph.Function{Name: fn.Name, Params: params, Docs: fn.Docs}
	switch {
	case fn.Result != "":
		t, err := sc.typeOf(fn.Result)
		if err != nil {
			return nil, err
		}
		f.Results = []graph.Param{{Type: t}}
	case len(fn.Results) > 0:
		if f.Results, err = r.params(sc, fn.Results); err != nil {
			return nil, err
		}
	}
	return f, nil
}

func (r *resolver) params(sc *scope, decls []FieldDecl) ([]graph.Param, error) {
	out := make([]graph.Param, len(decls))
	for i, d := range decls {
		t, err := sc.typeOf(d.Type)
		if err != nil {
			return nil, err
		}
		out[i] = graph.Param{Name: d.Name, Type: t}
	}
	return out, nil
}

func (r *resolver) worlds() error {
	for pi, p := range r.m.Packages {
		for wi, w := range p.Worlds {
			wid := r.worldIDs[pi][wi]
			sc := r.worldScopes[wid]
			if err := r.worldItems(pi, wid, sc, w.Imports, false); err != nil {
				return err
			}
			if err := r.worldItems(pi, wid, sc, w.Exports, true); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *resolver) worldItems(pkg int, wid graph.WorldID, sc *scope, items []WorldItem, export bool) error {
	for _, item := range items {
		if item.Function != nil {
			f, err := r.function(sc, item.Function)
			if err != nil {
				return err
			}
			if export {
				r.b.ExportFunction(wid, f)
			} else {
				r.b.ImportFunction(wid, f)
			}
			continue
		}
		id, err := r.interfaceRef(pkg, item.Interface, sc.path)
		if err != nil {
			return err
		}
		switch {
		case item.Name != "" && export:
			r.b.ExportNamedInterface(wid, item.Name, id)
		case item.Name != "":
			r.b.ImportNamedInterface(wid, item.Name, id)
		case export:
			r.b.ExportInterface(wid, id)
		default:
			r.b.ImportInterface(wid, id)
		}
	}
	return nil
}

// interfaceRef resolves a sibling interface name or "ns:pkg/iface[@version]".
func (r *resolver) interfaceRef(pkg int, ref string, path []string) (graph.InterfaceID, error) {
	if strings.Contains(ref, ":") {
		if id, ok := r.qualified[ref]; ok {
			return id, nil
		}
	} else if id, ok := r.local[pkg][ref]; ok {
		return id, nil
	}
	return 0, errors.New(errors.PhaseResolve, errors.KindNotFound).
		Path(path...).
		Value(ref).
		Detail("interface %q not found", ref).
		Build()
}

// parsePackageName parses "namespace:name[@version]".
func parsePackageName(s string) (graph.PackageName, error) {
	rest, version, _ := strings.Cut(s, "@")
	ns, name, ok := strings.Cut(rest, ":")
	if !ok || ns == "" || name == "" || strings.ContainsAny(name, ":/") {
		return graph.PackageName{}, errors.New(errors.PhaseParse, errors.KindInvalidInput).
			Value(s).
			Detail("package name %q: expected namespace:name[@version]", s).
			Build()
	}
	return graph.PackageName{Namespace: ns, Name: name, Version: version}, nil
}
