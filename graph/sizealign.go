package graph

// Layout is the canonical memory size and alignment of a type.
type Layout struct {
	Size  uint32
	Align uint32
}

// FieldOffset pairs a field type with its byte offset.
type FieldOffset struct {
	Offset uint32
	Type   Type
}

// SizeAlign computes canonical ABI layouts, caching per TypeID.
type SizeAlign struct {
	resolve *Resolve
	cache   map[TypeID]Layout
}

// NewSizeAlign creates a layout oracle over r.
func NewSizeAlign(r *Resolve) *SizeAlign {
	return &SizeAlign{
		resolve: r,
		cache:   make(map[TypeID]Layout),
	}
}

// AlignTo rounds offset up to a multiple of align.
func AlignTo(offset, align uint32) uint32 {
	if align <= 1 {
		return offset
	}
	return (offset + align - 1) &^ (align - 1)
}

// Size returns the byte size of t.
func (s *SizeAlign) Size(t Type) uint32 { return s.Layout(t).Size }

// Align returns the byte alignment of t.
func (s *SizeAlign) Align(t Type) uint32 { return s.Layout(t).Align }

// Layout returns the size and alignment of t.
func (s *SizeAlign) Layout(t Type) Layout {
	switch t := t.(type) {
	case nil:
		return Layout{Size: 0, Align: 1}
	case Primitive:
		switch t {
		case Bool, U8, S8:
			return Layout{Size: 1, Align: 1}
		case U16, S16:
			return Layout{Size: 2, Align: 2}
		case U32, S32, F32, Char:
			return Layout{Size: 4, Align: 4}
		case U64, S64, F64:
			return Layout{Size: 8, Align: 8}
		case String:
			return Layout{Size: 8, Align: 4}
		}
	case TypeID:
		return s.typeDef(t)
	}
	return Layout{Size: 0, Align: 1}
}

func (s *SizeAlign) typeDef(id TypeID) Layout {
	if cached, ok := s.cache[id]; ok {
		return cached
	}

	var l Layout
	switch k := s.resolve.Types[id].Kind.(type) {
	case *Alias:
		l = s.Layout(k.Type)
	case *Record:
		types := make([]Type, len(k.Fields))
		for i, f := range k.Fields {
			types[i] = f.Type
		}
		l = s.record(types)
	case *Tuple:
		l = s.record(k.Types)
	case *List:
		l = Layout{Size: 8, Align: 4}
	case *Handle, *Resource:
		l = Layout{Size: 4, Align: 4}
	case *Flags:
		r := k.Repr()
		switch r.Int {
		case IntU8:
			l = Layout{Size: 1, Align: 1}
		case IntU16:
			l = Layout{Size: 2, Align: 2}
		default:
			l = Layout{Size: 4 * uint32(r.Words), Align: 4}
		}
	case *Enum:
		n := k.Tag().Size()
		l = Layout{Size: n, Align: n}
	case *Variant:
		cases := make([]Type, len(k.Cases))
		for i, c := range k.Cases {
			cases[i] = c.Type
		}
		l = s.variant(k.Tag(), cases)
	case *Union:
		cases := make([]Type, len(k.Cases))
		for i, c := range k.Cases {
			cases[i] = c.Type
		}
		l = s.variant(k.Tag(), cases)
	case *Option:
		l = s.variant(IntU8, []Type{nil, k.Type})
	case *Result:
		l = s.variant(IntU8, []Type{k.OK, k.Err})
	default:
		l = Layout{Size: 0, Align: 1}
	}

	s.cache[id] = l
	return l
}

func (s *SizeAlign) record(types []Type) Layout {
	maxAlign := uint32(1)
	offset := uint32(0)
	for _, t := range types {
		fl := s.Layout(t)
		offset = AlignTo(offset, fl.Align)
		offset += fl.Size
		if fl.Align > maxAlign {
			maxAlign = fl.Align
		}
	}
	return Layout{Size: AlignTo(offset, maxAlign), Align: maxAlign}
}

func (s *SizeAlign) variant(tag Int, cases []Type) Layout {
	discSize := tag.Size()
	maxAlign := discSize
	maxSize := uint32(0)
	for _, c := range cases {
		if c == nil {
			continue
		}
		cl := s.Layout(c)
		if cl.Align > maxAlign {
			maxAlign = cl.Align
		}
		if cl.Size > maxSize {
			maxSize = cl.Size
		}
	}
	payload := AlignTo(discSize, s.maxCaseAlign(cases))
	return Layout{Size: AlignTo(payload+maxSize, maxAlign), Align: maxAlign}
}

func (s *SizeAlign) maxCaseAlign(cases []Type) uint32 {
	align := uint32(1)
	for _, c := range cases {
		if c == nil {
			continue
		}
		if a := s.Align(c); a > align {
			align = a
		}
	}
	return align
}

// PayloadOffset returns where case payloads start after the discriminant.
func (s *SizeAlign) PayloadOffset(tag Int, cases []Type) uint32 {
	return AlignTo(tag.Size(), s.maxCaseAlign(cases))
}

// FieldOffsets lays out types as consecutive record fields.
func (s *SizeAlign) FieldOffsets(types []Type) []FieldOffset {
	out := make([]FieldOffset, 0, len(types))
	offset := uint32(0)
	for _, t := range types {
		fl := s.Layout(t)
		offset = AlignTo(offset, fl.Align)
		out = append(out, FieldOffset{Offset: offset, Type: t})
		offset += fl.Size
	}
	return out
}

// Params returns the layout of types stored as a record.
func (s *SizeAlign) Params(types []Type) Layout {
	return s.record(types)
}
