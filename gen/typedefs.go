package gen

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/wippyai/witgen/errors"
	"github.com/wippyai/witgen/graph"
	"github.com/wippyai/witgen/resource"
)

// declareType writes the Go declaration of the named type id.
func (e *interfaceEmitter) declareType(id graph.TypeID) {
	def := e.g.resolve.Type(id)
	if def.Name == "" {
		return
	}
	switch k := def.Kind.(type) {
	case *graph.Record:
		borrowed, owned := e.g.types.shapes(id, e.g.opts.Ownership)
		if borrowed {
			e.declareRecord(id, def, k, modeParam)
		}
		if owned {
			e.declareRecord(id, def, k, modeOwned)
		}
	case *graph.Variant:
		cases := make([]variantCase, len(k.Cases))
		for i, c := range k.Cases {
			cases[i] = variantCase{name: exportedName(c.Name), accessor: caseAccessor(c.Name), typ: c.Type, docs: c.Docs}
		}
		e.declareVariant(id, def, k.Tag(), cases)
	case *graph.Union:
		cases := make([]variantCase, len(k.Cases))
		for i, c := range k.Cases {
			cases[i] = variantCase{name: unionCase(i), accessor: unionCase(i), typ: c.Type, docs: c.Docs}
		}
		e.declareVariant(id, def, k.Tag(), cases)
	case *graph.Enum:
		e.declareEnum(id, def, k)
	case *graph.Flags:
		e.declareFlags(def, k)
	case *graph.Resource:
		if e.g.registry.Direction(id) == resource.Export {
			e.declareExportResource(id, def)
		} else {
			e.declareImportResource(id, def)
		}
		return
	case *graph.Alias:
		docComment(&e.src, def.Docs)
		e.line("type %s = %s\n", exportedName(def.Name), e.typeName(k.Type, modeOwned))
		return
	case *graph.Handle, *graph.Tuple, *graph.Option, *graph.Result, *graph.List:
		docComment(&e.src, def.Docs)
		e.line("type %s = %s\n", exportedName(def.Name), e.anonymousName(def.Kind, modeOwned))
		return
	default:
		panic(errors.Internal("cannot declare %s of kind %T", def.Name, def.Kind))
	}
	if e.g.types.get(id).isError {
		e.declareError(id, def)
	}
}

func (e *interfaceEmitter) declareRecord(id graph.TypeID, def *graph.TypeDef, rec *graph.Record, mode typeMode) {
	docComment(&e.src, def.Docs)
	e.line("type %s struct {", e.g.declName(id, mode))
	for _, f := range rec.Fields {
		docComment(&e.src, f.Docs)
		typ := e.typeName(f.Type, mode)
		if mode == modeParam && e.g.types.isRecord(f.Type) {
			typ = "*" + typ
		}
		e.line("%s %s", exportedName(f.Name), typ)
	}
	e.line("}\n")
}

type variantCase struct {
	name     string
	accessor string
	typ      graph.Type
	docs     string
}

// declareVariant writes a tagged struct with one payload field per case
// that carries one, a constructor per case and a payload accessor.
func (e *interfaceEmitter) declareVariant(id graph.TypeID, def *graph.TypeDef, tag graph.Int, cases []variantCase) {
	name := exportedName(def.Name)
	tagType := "uint" + strconv.Itoa(int(tag.Size())*8)

	docComment(&e.src, def.Docs)
	e.line("type %s struct {", name)
	e.line("tag %s", tagType)
	for i, c := range cases {
		if c.typ != nil {
			e.line("case%d %s", i, e.typeName(c.typ, modeOwned))
		}
	}
	e.line("}\n")

	e.line("const (")
	for i, c := range cases {
		e.line("%s%sTag %s = %d", name, c.name, tagType, i)
	}
	e.line(")\n")

	e.line("// Tag returns the case index of v.")
	e.line("func (v %s) Tag() %s { return v.tag }\n", name, tagType)

	for i, c := range cases {
		docComment(&e.src, c.docs)
		if c.typ == nil {
			e.line("func %s%s() %s { return %s{tag: %d} }\n", name, c.name, name, name, i)
			continue
		}
		payload := e.typeName(c.typ, modeOwned)
		e.line("func %s%s(payload %s) %s { return %s{tag: %d, case%d: payload} }\n", name, c.name, payload, name, name, i, i)
		e.line("// %s returns the payload of case %d, or its zero value for other cases.", c.accessor, i)
		e.line("func (v %s) %s() %s { return v.case%d }\n", name, c.accessor, payload, i)
	}
}

func (e *interfaceEmitter) declareEnum(id graph.TypeID, def *graph.TypeDef, enum *graph.Enum) {
	name := exportedName(def.Name)
	strconvPkg := e.imports.add("strconv", "strconv")

	docComment(&e.src, def.Docs)
	e.line("type %s uint%d\n", name, enum.Tag().Size()*8)
	if len(enum.Cases) > 0 {
		e.line("const (")
		for i, c := range enum.Cases {
			docComment(&e.src, c.Docs)
			if i == 0 {
				e.line("%s%s %s = iota", name, exportedName(c.Name), name)
			} else {
				e.line("%s%s", name, exportedName(c.Name))
			}
		}
		e.line(")\n")
	}

	names := localName(def.Name) + "Names"
	quoted := make([]string, len(enum.Cases))
	for i, c := range enum.Cases {
		quoted[i] = strconv.Quote(c.Name)
	}
	e.line("var %s = [...]string{%s}\n", names, strings.Join(quoted, ", "))
	e.line("func (v %s) String() string {", name)
	e.line("if int(v) < len(%s) {\nreturn %s[v]\n}", names, names)
	e.line("return %q + %s.Itoa(int(v)) + \")\"", name+"(", strconvPkg)
	e.line("}\n")
}

func (e *interfaceEmitter) declareFlags(def *graph.TypeDef, flags *graph.Flags) {
	name := exportedName(def.Name)
	n := len(flags.Flags)
	docComment(&e.src, def.Docs)

	if n > 64 {
		words := flags.Repr().Words
		e.line("type %s [%d]uint32\n", name, words)
		e.line("const (")
		for i, f := range flags.Flags {
			docComment(&e.src, f.Docs)
			if i == 0 {
				e.line("%s%s uint = iota", name, exportedName(f.Name))
			} else {
				e.line("%s%s", name, exportedName(f.Name))
			}
		}
		e.line(")\n")
		e.line("// Set sets the flag at bit.")
		e.line("func (v *%s) Set(bit uint) { v[bit/32] |= 1 << (bit %% 32) }\n", name)
		e.line("// Has reports whether the flag at bit is set.")
		e.line("func (v %s) Has(bit uint) bool { return v[bit/32]&(1<<(bit%%32)) != 0 }\n", name)
		return
	}

	width := 8
	switch {
	case n > 32:
		width = 64
	case n > 16:
		width = 32
	case n > 8:
		width = 16
	}
	e.line("type %s uint%d\n", name, width)
	if n == 0 {
		return
	}
	e.line("const (")
	for i, f := range flags.Flags {
		docComment(&e.src, f.Docs)
		if i == 0 {
			e.line("%s%s %s = 1 << iota", name, exportedName(f.Name), name)
		} else {
			e.line("%s%s", name, exportedName(f.Name))
		}
	}
	e.line(")\n")
}

// declareError makes a type used as a result error arm satisfy error.
// Enums reuse String; other kinds need fmt, which StdFeature moves
// behind the witgen_std build tag.
func (e *interfaceEmitter) declareError(id graph.TypeID, def *graph.TypeDef) {
	name := e.g.declName(id, modeOwned)
	if _, ok := def.Kind.(*graph.Enum); ok {
		e.line("func (v %s) Error() string { return v.String() }\n", name)
		return
	}
	b, imports := &e.src, e.imports
	if e.g.opts.StdFeature {
		b, imports = &e.std, e.stdImports
	}
	fmtPkg := imports.add("fmt", "fmt")
	fmt.Fprintf(b, "func (v %s) Error() string {\n", name)
	fmt.Fprintf(b, "type plain %s\n", name)
	fmt.Fprintf(b, "return %s.Sprintf(\"%%+v\", plain(v))\n", fmtPkg)
	b.WriteString("}\n\n")
}
