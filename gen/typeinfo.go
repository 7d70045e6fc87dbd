package gen

import "github.com/wippyai/witgen/graph"

// typeInfo records how a type is used across the world.
type typeInfo struct {
	// borrowed is set for types reachable from import parameters.
	borrowed bool
	// owned is set for types reachable from results and export parameters.
	owned bool
	// isError is set for named types used as the error arm of a result.
	isError bool
}

type typeInfos struct {
	resolve *graph.Resolve
	infos   map[graph.TypeID]*typeInfo
}

func newTypeInfos(r *graph.Resolve) *typeInfos {
	return &typeInfos{resolve: r, infos: make(map[graph.TypeID]*typeInfo)}
}

func (ti *typeInfos) get(id graph.TypeID) typeInfo {
	if info, ok := ti.infos[id]; ok {
		return *info
	}
	return typeInfo{}
}

func (ti *typeInfos) entry(id graph.TypeID) *typeInfo {
	info, ok := ti.infos[id]
	if !ok {
		info = &typeInfo{}
		ti.infos[id] = info
	}
	return info
}

// addFunc records the parameter and result usage of fn.
func (ti *typeInfos) addFunc(fn *graph.Function, imported bool) {
	for _, p := range fn.Params {
		ti.mark(p.Type, imported)
	}
	for _, r := range fn.Results {
		ti.mark(r.Type, false)
	}
}

// addType records a declared type that no function reaches.
func (ti *typeInfos) addType(id graph.TypeID) {
	if _, ok := ti.infos[id]; !ok {
		ti.mark(id, false)
	}
}

// mark walks t, flagging borrowed or owned usage.
func (ti *typeInfos) mark(t graph.Type, borrowed bool) {
	id, ok := t.(graph.TypeID)
	if !ok {
		return
	}
	info := ti.entry(id)
	if borrowed {
		info.borrowed = true
	} else {
		info.owned = true
	}
	switch k := ti.resolve.Type(id).Kind.(type) {
	case *graph.Alias:
		ti.mark(k.Type, borrowed)
	case *graph.List:
		ti.mark(k.Type, borrowed)
	case *graph.Record:
		for _, f := range k.Fields {
			ti.mark(f.Type, borrowed)
		}
	case *graph.Tuple:
		for _, e := range k.Types {
			ti.mark(e, borrowed)
		}
	case *graph.Variant:
		for _, c := range k.Cases {
			if c.Type != nil {
				ti.mark(c.Type, borrowed)
			}
		}
	case *graph.Union:
		for _, c := range k.Cases {
			ti.mark(c.Type, borrowed)
		}
	case *graph.Option:
		ti.mark(k.Type, borrowed)
	case *graph.Result:
		if k.OK != nil {
			ti.mark(k.OK, borrowed)
		}
		if k.Err != nil {
			ti.mark(k.Err, borrowed)
			ti.markError(k.Err)
		}
	}
}

func (ti *typeInfos) markError(t graph.Type) {
	for {
		id, ok := t.(graph.TypeID)
		if !ok {
			return
		}
		def := ti.resolve.Type(id)
		if def.Name != "" {
			ti.entry(id).isError = true
		}
		a, ok := def.Kind.(*graph.Alias)
		if !ok {
			return
		}
		t = a.Type
	}
}

// hasRecordField reports whether a record has a field of record type.
func (ti *typeInfos) hasRecordField(id graph.TypeID) bool {
	rec, ok := ti.resolve.Type(id).Kind.(*graph.Record)
	if !ok {
		return false
	}
	for _, f := range rec.Fields {
		if ti.isRecord(f.Type) {
			return true
		}
	}
	return false
}

func (ti *typeInfos) isRecord(t graph.Type) bool {
	id, ok := ti.resolve.Dealias(t).(graph.TypeID)
	if !ok {
		return false
	}
	_, ok = ti.resolve.Type(id).Kind.(*graph.Record)
	return ok
}

// shapes reports which declarations a named type gets under mode.
func (ti *typeInfos) shapes(id graph.TypeID, mode Ownership) (borrowedShape, ownedShape bool) {
	info := ti.get(id)
	if mode == Owning || !ti.hasRecordField(id) || !info.borrowed {
		return false, true
	}
	if !info.owned {
		return true, false
	}
	if mode == BorrowingDuplicateIfNecessary {
		return true, true
	}
	return false, true
}

// containsBorrowedShape reports whether t's Go layout contains a record
// declared in borrowed shape, whose fields are pointers.
func (ti *typeInfos) containsBorrowedShape(t graph.Type, mode Ownership) bool {
	id, ok := t.(graph.TypeID)
	if !ok || mode == Owning {
		return false
	}
	switch k := ti.resolve.Type(id).Kind.(type) {
	case *graph.Alias:
		return ti.containsBorrowedShape(k.Type, mode)
	case *graph.Record:
		if b, _ := ti.shapes(id, mode); b {
			return true
		}
		for _, f := range k.Fields {
			if ti.containsBorrowedShape(f.Type, mode) {
				return true
			}
		}
	case *graph.Tuple:
		for _, e := range k.Types {
			if ti.containsBorrowedShape(e, mode) {
				return true
			}
		}
	}
	return false
}
