// Package manifest reads YAML world manifests and resolves them into a
// graph.Resolve.
//
// A manifest lists packages; each package declares interfaces and worlds.
// Types are declared by kind (record, variant, union, enum, flags,
// resource, or an alias "type" expression) and referenced by WIT type
// expressions such as "list<point>" or "result<_, error-code>".
//
//	packages:
//	  - name: demo:app@0.1.0
//	    interfaces:
//	      - name: types
//	        types:
//	          - name: point
//	            record:
//	              - {name: x, type: s32}
//	              - {name: y, type: s32}
//	        functions:
//	          - name: norm
//	            params: [{name: p, type: point}]
//	            result: f64
//	    worlds:
//	      - name: app
//	        imports: [{interface: types}]
package manifest

import (
	"bytes"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/wippyai/witgen/errors"
)

// Manifest is the root of a world manifest.
type Manifest struct {
	Packages []Package `yaml:"packages"`

	path string
}

// Package is "namespace:name@version" with its interfaces and worlds.
type Package struct {
	Name       string      `yaml:"name"`
	Docs       string      `yaml:"docs"`
	Interfaces []Interface `yaml:"interfaces"`
	Worlds     []World     `yaml:"worlds"`
}

// Interface declares types and functions.
type Interface struct {
	Name      string     `yaml:"name"`
	Docs      string     `yaml:"docs"`
	Use       []Use      `yaml:"use"`
	Types     []TypeDecl `yaml:"types"`
	Functions []Func     `yaml:"functions"`
}

// Use brings named types of another interface into scope. Interface is
// a sibling name or "ns:pkg/iface".
type Use struct {
	Interface string   `yaml:"interface"`
	Names     []string `yaml:"names"`
}

// TypeDecl declares one named type. Exactly one kind field is set.
type TypeDecl struct {
	Name string `yaml:"name"`
	Docs string `yaml:"docs"`

	Record   []FieldDecl   `yaml:"record"`
	Variant  []CaseDecl    `yaml:"variant"`
	Union    []string      `yaml:"union"`
	Enum     []string      `yaml:"enum"`
	Flags    []string      `yaml:"flags"`
	Resource *ResourceDecl `yaml:"resource"`
	Type     string        `yaml:"type"`
}

// FieldDecl is a record field or a named parameter or result.
type FieldDecl struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
	Docs string `yaml:"docs"`
}

// CaseDecl is a variant case; Type is empty for cases without payload.
type CaseDecl struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
	Docs string `yaml:"docs"`
}

// ResourceDecl lists the functions of a resource.
type ResourceDecl struct {
	Constructor *Func  `yaml:"constructor"`
	Methods     []Func `yaml:"methods"`
	Statics     []Func `yaml:"statics"`
}

// Func is a function signature. Result names a single unnamed result;
// Results lists named ones. At most one of the two is set.
type Func struct {
	Name    string      `yaml:"name"`
	Docs    string      `yaml:"docs"`
	Params  []FieldDecl `yaml:"params"`
	Result  string      `yaml:"result"`
	Results []FieldDecl `yaml:"results"`
}

// World is the unit of generation.
type World struct {
	Name    string      `yaml:"name"`
	Docs    string      `yaml:"docs"`
	Use     []Use       `yaml:"use"`
	Types   []TypeDecl  `yaml:"types"`
	Imports []WorldItem `yaml:"imports"`
	Exports []WorldItem `yaml:"exports"`
}

// WorldItem is an interface reference, optionally under a plain Name,
// or a world-level function.
type WorldItem struct {
	Interface string `yaml:"interface"`
	Name      string `yaml:"name"`
	Function  *Func  `yaml:"function"`
}

// Load reads and validates the manifest at path.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New(errors.PhaseParse, errors.KindNotFound).
			Path(path).
			Cause(err).
			Detail("read manifest").
			Build()
	}
	m, err := Parse(data)
	if err != nil {
		return nil, err
	}
	m.path = path
	return m, nil
}

// Parse decodes and validates manifest text.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&m); err != nil {
		return nil, errors.ParseFailed("manifest", err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Path returns the file the manifest was loaded from, if any.
func (m *Manifest) Path() string {
	return m.path
}

// Validate checks the structure that does not need name resolution.
func (m *Manifest) Validate() error {
	if len(m.Packages) == 0 {
		return invalid([]string{"packages"}, "at least one package is required")
	}
	for i := range m.Packages {
		p := &m.Packages[i]
		if _, err := parsePackageName(p.Name); err != nil {
			return err
		}
		for _, iface := range p.Interfaces {
			path := []string{p.Name, iface.Name}
			if iface.Name == "" {
				return invalid(path, "interface name is required")
			}
			if err := validateTypes(path, iface.Types); err != nil {
				return err
			}
			for _, fn := range iface.Functions {
				if err := fn.validate(path); err != nil {
					return err
				}
			}
		}
		for _, w := range p.Worlds {
			path := []string{p.Name, w.Name}
			if w.Name == "" {
				return invalid(path, "world name is required")
			}
			if err := validateTypes(path, w.Types); err != nil {
				return err
			}
			for _, items := range [][]WorldItem{w.Imports, w.Exports} {
				for _, item := range items {
					if err := item.validate(path); err != nil {
						return err
					}
				}
			}
		}
	}
	return nil
}

func validateTypes(path []string, decls []TypeDecl) error {
	seen := make(map[string]bool, len(decls))
	for _, td := range decls {
		p := append(append([]string(nil), path...), td.Name)
		if td.Name == "" {
			return invalid(p, "type name is required")
		}
		if seen[td.Name] {
			return errors.New(errors.PhaseParse, errors.KindDuplicate).
				Path(p...).
				Detail("type %q declared twice", td.Name).
				Build()
		}
		seen[td.Name] = true
		if n := td.kinds(); n != 1 {
			return invalid(p, "exactly one of record, variant, union, enum, flags, resource or type is required")
		}
		if r := td.Resource; r != nil {
			if r.Constructor != nil {
				if err := r.Constructor.validateParams(p); err != nil {
					return err
				}
			}
			for _, fn := range append(append([]Func(nil), r.Methods...), r.Statics...) {
				if err := fn.validate(p); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func (td *TypeDecl) kinds() int {
	n := 0
	for _, set := range []bool{
		len(td.Record) > 0,
		len(td.Variant) > 0,
		len(td.Union) > 0,
		len(td.Enum) > 0,
		len(td.Flags) > 0,
		td.Resource != nil,
		td.Type != "",
	} {
		if set {
			n++
		}
	}
	return n
}

func (f *Func) validate(path []string) error {
	p := append(append([]string(nil), path...), f.Name)
	if f.Name == "" {
		return invalid(p, "function name is required")
	}
	if f.Result != "" && len(f.Results) > 0 {
		return invalid(p, "result and results are mutually exclusive")
	}
	return f.validateParams(p)
}

func (f *Func) validateParams(path []string) error {
	for _, list := range [][]FieldDecl{f.Params, f.Results} {
		for _, fd := range list {
			if fd.Name == "" || fd.Type == "" {
				return invalid(path, "parameters need a name and a type")
			}
		}
	}
	return nil
}

func (w *WorldItem) validate(path []string) error {
	switch {
	case w.Function != nil && w.Interface != "":
		return invalid(path, "world item is either an interface or a function")
	case w.Function != nil:
		return w.Function.validate(path)
	case w.Interface == "":
		return invalid(path, "world item needs an interface or a function")
	}
	return nil
}

func invalid(path []string, detail string) error {
	return errors.New(errors.PhaseParse, errors.KindInvalidInput).
		Path(path...).
		Detail("%s", detail).
		Build()
}
