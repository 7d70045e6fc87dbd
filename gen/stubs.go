package gen

import (
	"strings"

	"go.uber.org/zap"

	"github.com/wippyai/witgen/errors"
	"github.com/wippyai/witgen/graph"
)

// binding describes one implementation variable an export package needs.
type binding struct {
	what     string
	keys     []string
	impls    map[string]string
	contract string
	variable string
	stub     string
	methods  []string
	// rep, when set, is the resource a stubbed constructor returns.
	rep *repStub
}

// repStub is the panicking stand-in for an exported resource, returned by
// the constructor of a stubbed statics binding.
type repStub struct {
	name    string
	methods []string
	ctor    int
}

// bind declares the implementation variable, falling back to a generated
// stub when stubs are enabled.
func (e *interfaceEmitter) bind(b binding) error {
	impl := ""
	for _, k := range b.keys {
		if v, ok := b.impls[k]; ok {
			impl = v
			break
		}
	}
	if impl == "" {
		if !e.g.opts.Stubs {
			return errors.MissingExport(b.what, b.keys[0])
		}
		var returns map[int]string
		if b.rep != nil {
			e.writeStub(b.rep.name, b.rep.methods, nil)
			returns = map[int]string{b.rep.ctor: b.rep.name + "{}"}
		}
		e.writeStub(b.stub, b.methods, returns)
		impl = b.stub
		Logger().Debug("using stub implementation", zap.String("export", b.keys[0]), zap.String("stub", b.stub))
	}
	path, name, err := parseImplName(impl)
	if err != nil {
		return errors.New(errors.PhaseConfig, errors.KindInvalidInput).
			Path(b.keys[0]).
			Value(impl).
			Detail("malformed implementation name: %v", err).
			Build()
	}
	typ := name
	if path != "" {
		typ = e.imports.add(path, "") + "." + name
	}
	e.line("var %s %s = new(%s)\n", b.variable, b.contract, typ)
	return nil
}

// writeStub declares a type whose methods satisfy a contract by panicking.
// returns maps a method index to a value returned instead.
func (e *interfaceEmitter) writeStub(name string, methods []string, returns map[int]string) {
	if len(returns) > 0 {
		e.line("// %s is a placeholder implementation.", name)
	} else {
		e.line("// %s is a placeholder implementation. Every method panics.", name)
	}
	e.line("type %s struct{}\n", name)
	for i, m := range methods {
		if v, ok := returns[i]; ok {
			e.line("func (%s) %s {\nreturn %s\n}\n", name, m, v)
			continue
		}
		e.line("func (%s) %s {\npanic(\"unreachable\")\n}\n", name, m)
	}
}

// exportKeys lists the configuration keys an export is looked up under:
// the full key, the key without package versions, then the short name.
func exportKeys(key, short string) []string {
	keys := []string{key}
	if bare := unversioned(key); bare != key {
		keys = append(keys, bare)
	}
	if short != "" && short != key {
		keys = append(keys, short)
	}
	return keys
}

// unversioned strips "@version" from a "ns:pkg@1.0.0/iface[/res]" key.
func unversioned(key string) string {
	at := strings.IndexByte(key, '@')
	if at < 0 {
		return key
	}
	rest := key[at:]
	if slash := strings.IndexByte(rest, '/'); slash >= 0 {
		return key[:at] + rest[slash:]
	}
	return key[:at]
}

// bindInterface writes the Interface contract for the freestanding exports
// of e and binds it to its implementation.
func (e *interfaceEmitter) bindInterface() error {
	if len(e.exports) == 0 {
		return nil
	}
	contract := "Interface"
	what := "interface"
	short := ""
	if e.key.IsInterface {
		short = e.g.resolve.Interface(e.iface).Name
	}
	keys := exportKeys(e.g.resolve.NameWorldKey(e.key), short)
	impls := e.g.opts.InterfaceExports
	if e.isWorld {
		contract = exportedName(e.g.world().Name)
		what = "world"
		keys = []string{e.g.world().Name}
		impls = e.g.opts.WorldExports
	}

	methods := make([]string, len(e.exports))
	e.line("// %s is implemented by the component for its %s exports.", contract, what)
	e.line("type %s interface {", contract)
	for i, fn := range e.exports {
		methods[i] = e.contractMethod(fn)
		docComment(&e.src, fn.Docs)
		e.line("%s", methods[i])
	}
	e.line("}\n")

	return e.bind(binding{
		what:     what,
		keys:     keys,
		impls:    impls,
		contract: contract,
		variable: "impl",
		stub:     "Stub",
		methods:  methods,
	})
}

// bindStatics binds the XStatics contract of an exported resource. A
// stubbed constructor returns XStub, so the stub resource is only written
// alongside it.
func (e *interfaceEmitter) bindStatics(id graph.TypeID) error {
	methods, statics := e.resourceFunctions(id)
	if len(statics) == 0 {
		return nil
	}
	def := e.g.resolve.Type(id)
	name := exportedName(def.Name)

	rendered := make([]string, len(statics))
	var rep *repStub
	for i, fn := range statics {
		rendered[i] = e.contractMethod(fn)
		if fn.Kind == graph.Constructor {
			rep = &repStub{name: name + "Stub", ctor: i}
		}
	}
	if rep != nil {
		for _, fn := range methods {
			rep.methods = append(rep.methods, e.contractMethod(fn))
		}
	}
	return e.bind(binding{
		what:     "resource",
		keys:     exportKeys(e.module+"/"+def.Name, def.Name),
		impls:    e.g.opts.ResourceExports,
		contract: name + "Statics",
		variable: e.staticsVar(id),
		stub:     name + "StaticsStub",
		methods:  rendered,
		rep:      rep,
	})
}
