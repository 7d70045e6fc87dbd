package manifest

import (
	"strings"

	"go.bytecodealliance.org/wit"
	"go.uber.org/zap"

	"github.com/wippyai/witgen/errors"
	"github.com/wippyai/witgen/graph"
)

// typeExpr is a parsed type expression: a name, or a head with arguments.
type typeExpr struct {
	name    string
	args    []*typeExpr
	generic bool
}

var builtinHeads = map[string]int{
	"list":   1,
	"option": 1,
	"result": -1,
	"tuple":  -1,
	"own":    1,
	"borrow": 1,
}

func parseTypeExpr(s string) (*typeExpr, error) {
	p := exprParser{src: s}
	e, err := p.expr()
	if err != nil {
		return nil, err
	}
	p.space()
	if p.pos != len(p.src) {
		return nil, p.fail("unexpected %q", p.src[p.pos:])
	}
	return e, nil
}

type exprParser struct {
	src string
	pos int
}

func (p *exprParser) space() {
	for p.pos < len(p.src) && (p.src[p.pos] == ' ' || p.src[p.pos] == '\t') {
		p.pos++
	}
}

func (p *exprParser) expr() (*typeExpr, error) {
	p.space()
	start := p.pos
	for p.pos < len(p.src) && isNameByte(p.src[p.pos]) {
		p.pos++
	}
	if start == p.pos {
		return nil, p.fail("expected type name")
	}
	e := &typeExpr{name: p.src[start:p.pos]}
	p.space()
	if p.pos == len(p.src) || p.src[p.pos] != '<' {
		return e, nil
	}
	p.pos++
	e.generic = true
	for {
		arg, err := p.expr()
		if err != nil {
			return nil, err
		}
		e.args = append(e.args, arg)
		p.space()
		if p.pos == len(p.src) {
			return nil, p.fail("unterminated %s<", e.name)
		}
		switch p.src[p.pos] {
		case ',':
			p.pos++
		case '>':
			p.pos++
			return e, nil
		default:
			return nil, p.fail("unexpected %q", p.src[p.pos:p.pos+1])
		}
	}
}

func (p *exprParser) fail(format string, args ...any) error {
	return errors.New(errors.PhaseParse, errors.KindInvalidData).
		Value(p.src).
		Detail("type expression %q: "+format, append([]any{p.src}, args...)...).
		Build()
}

func isNameByte(c byte) bool {
	return c == '-' || c == '_' || c == '%' || c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

// builtinOnly reports whether e mentions no declared names.
func (e *typeExpr) builtinOnly() bool {
	if !e.generic {
		_, ok := graph.PrimitiveByName(e.name)
		return ok
	}
	arity, ok := builtinHeads[e.name]
	if !ok || e.name == "own" || e.name == "borrow" {
		return false
	}
	if arity > 0 && len(e.args) != arity || e.name == "result" && len(e.args) > 2 {
		return false
	}
	for _, a := range e.args {
		if a.name == "_" && !a.generic {
			continue
		}
		if !a.builtinOnly() {
			return false
		}
	}
	return true
}

// scope maps declared names to types for one interface or world.
type scope struct {
	b     *graph.Builder
	owner graph.Owner
	path  []string
	names map[string]graph.TypeID
}

func newScope(b *graph.Builder, owner graph.Owner, path ...string) *scope {
	return &scope{b: b, owner: owner, path: path, names: make(map[string]graph.TypeID)}
}

func (s *scope) add(name string, id graph.TypeID) error {
	if prev, ok := s.names[name]; ok && prev != id {
		return errors.New(errors.PhaseResolve, errors.KindDuplicate).
			Path(append(append([]string(nil), s.path...), name)...).
			Detail("name %q already in scope", name).
			Build()
	}
	s.names[name] = id
	return nil
}

// typeOf resolves a type expression. Expressions over built-in types are
// parsed by wit.ParseType; the rest are resolved against the scope.
func (s *scope) typeOf(expr string) (graph.Type, error) {
	expr = strings.TrimSpace(expr)
	e, err := parseTypeExpr(expr)
	if err != nil {
		return nil, err
	}
	if e.builtinOnly() {
		wt, err := wit.ParseType(expr)
		if err == nil {
			var t graph.Type
			if t, err = s.b.FromWIT(s.owner, wt); err == nil {
				return t, nil
			}
		}
		Logger().Debug("resolving type expression locally",
			zap.String("expr", expr), zap.Error(err))
	}
	return s.build(e)
}

func (s *scope) build(e *typeExpr) (graph.Type, error) {
	if !e.generic {
		switch e.name {
		case "_":
			return nil, s.notFound("_")
		case "result":
			return s.b.Result(nil, nil), nil
		}
		if p, ok := graph.PrimitiveByName(e.name); ok {
			return p, nil
		}
		id, ok := s.lookup(e.name)
		if !ok {
			return nil, s.notFound(e.name)
		}
		if s.isResource(id) {
			return s.b.Own(id), nil
		}
		return id, nil
	}

	arity, ok := builtinHeads[e.name]
	if !ok {
		return nil, s.notFound(e.name + "<>")
	}
	if arity > 0 && len(e.args) != arity {
		return nil, errors.New(errors.PhaseResolve, errors.KindInvalidInput).
			Path(s.path...).
			Detail("%s takes %d argument(s), got %d", e.name, arity, len(e.args)).
			Build()
	}

	switch e.name {
	case "list":
		t, err := s.build(e.args[0])
		if err != nil {
			return nil, err
		}
		return s.b.List(t), nil
	case "option":
		t, err := s.build(e.args[0])
		if err != nil {
			return nil, err
		}
		return s.b.Option(t), nil
	case "result":
		if len(e.args) > 2 {
			return nil, errors.New(errors.PhaseResolve, errors.KindInvalidInput).
				Path(s.path...).
				Detail("result takes at most 2 arguments, got %d", len(e.args)).
				Build()
		}
		arms := make([]graph.Type, 2)
		for i, a := range e.args {
			if a.name == "_" && !a.generic {
				continue
			}
			t, err := s.build(a)
			if err != nil {
				return nil, err
			}
			arms[i] = t
		}
		return s.b.Result(arms[0], arms[1]), nil
	case "tuple":
		types := make([]graph.Type, len(e.args))
		for i, a := range e.args {
			t, err := s.build(a)
			if err != nil {
				return nil, err
			}
			types[i] = t
		}
		return s.b.Tuple(types...), nil
	}

	// own and borrow
	target := e.args[0]
	id, ok := s.lookup(target.name)
	if target.generic || !ok || !s.isResource(id) {
		return nil, errors.New(errors.PhaseResolve, errors.KindInvalidInput).
			Path(s.path...).
			Detail("%s<%s>: not a resource", e.name, target.name).
			Build()
	}
	if e.name == "borrow" {
		return s.b.Borrow(id), nil
	}
	return s.b.Own(id), nil
}

func (s *scope) lookup(name string) (graph.TypeID, bool) {
	id, ok := s.names[strings.TrimPrefix(name, "%")]
	return id, ok
}

func (s *scope) isResource(id graph.TypeID) bool {
	_, ok := s.b.Resolve().Type(id).Kind.(*graph.Resource)
	return ok
}

func (s *scope) notFound(name string) error {
	return errors.New(errors.PhaseResolve, errors.KindNotFound).
		Path(s.path...).
		Value(name).
		Detail("type %q not found", name).
		Build()
}
