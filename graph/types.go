package graph

// Type is either a Primitive or a TypeID referencing a TypeDef.
type Type interface {
	isType()
}

// Primitive is a built-in scalar or string type.
type Primitive uint8

const (
	Bool Primitive = iota + 1
	U8
	U16
	U32
	U64
	S8
	S16
	S32
	S64
	F32
	F64
	Char
	String
)

func (Primitive) isType() {}

var primitiveNames = [...]string{
	Bool:   "bool",
	U8:     "u8",
	U16:    "u16",
	U32:    "u32",
	U64:    "u64",
	S8:     "s8",
	S16:    "s16",
	S32:    "s32",
	S64:    "s64",
	F32:    "f32",
	F64:    "f64",
	Char:   "char",
	String: "string",
}

func (p Primitive) String() string {
	if int(p) < len(primitiveNames) && primitiveNames[p] != "" {
		return primitiveNames[p]
	}
	return "invalid"
}

// PrimitiveByName maps WIT spelling to a Primitive.
func PrimitiveByName(name string) (Primitive, bool) {
	switch name {
	case "float32":
		return F32, true
	case "float64":
		return F64, true
	}
	for p, n := range primitiveNames {
		if n != "" && n == name {
			return Primitive(p), true
		}
	}
	return 0, false
}

// TypeID indexes Resolve.Types.
type TypeID int

func (TypeID) isType() {}

// OwnerKind tells where a TypeDef is declared.
type OwnerKind uint8

const (
	OwnerNone OwnerKind = iota
	OwnerInterface
	OwnerWorld
)

// Owner identifies the interface or world declaring a type.
type Owner struct {
	Kind      OwnerKind
	Interface InterfaceID
	World     WorldID
}

// TypeDef is a named or anonymous type definition.
type TypeDef struct {
	Name  string
	Kind  Kind
	Owner Owner
	Docs  string
}

// Kind is the shape of a TypeDef.
type Kind interface {
	isKind()
}

type (
	Record struct {
		Fields []Field
	}
	Field struct {
		Name string
		Type Type
		Docs string
	}

	Resource struct{}

	// Handle is own<R> or borrow<R>.
	Handle struct {
		Borrow   bool
		Resource TypeID
	}

	Flags struct {
		Flags []Flag
	}
	Flag struct {
		Name string
		Docs string
	}

	Tuple struct {
		Types []Type
	}

	Variant struct {
		Cases []Case
	}
	// Case has a nil Type when it carries no payload.
	Case struct {
		Name string
		Type Type
		Docs string
	}

	Union struct {
		Cases []UnionCase
	}
	UnionCase struct {
		Type Type
		Docs string
	}

	Enum struct {
		Cases []EnumCase
	}
	EnumCase struct {
		Name string
		Docs string
	}

	Option struct {
		Type Type
	}

	// Result arms are nil when absent.
	Result struct {
		OK  Type
		Err Type
	}

	List struct {
		Type Type
	}

	// Alias is a named reference to another type.
	Alias struct {
		Type Type
	}
)

func (*Record) isKind()   {}
func (*Resource) isKind() {}
func (*Handle) isKind()   {}
func (*Flags) isKind()    {}
func (*Tuple) isKind()    {}
func (*Variant) isKind()  {}
func (*Union) isKind()    {}
func (*Enum) isKind()     {}
func (*Option) isKind()   {}
func (*Result) isKind()   {}
func (*List) isKind()     {}
func (*Alias) isKind()    {}

// Int is the integer representation of a discriminant or flags word.
type Int uint8

const (
	IntU8 Int = iota
	IntU16
	IntU32
	IntU64
)

// Size returns the byte width.
func (i Int) Size() uint32 {
	switch i {
	case IntU8:
		return 1
	case IntU16:
		return 2
	case IntU32:
		return 4
	default:
		return 8
	}
}

// DiscriminantInt picks the smallest integer able to hold n cases.
func DiscriminantInt(n int) Int {
	switch {
	case n <= 1<<8:
		return IntU8
	case n <= 1<<16:
		return IntU16
	default:
		return IntU32
	}
}

// Tag returns the discriminant representation of the variant.
func (v *Variant) Tag() Int { return DiscriminantInt(len(v.Cases)) }

// Tag returns the discriminant representation of the union.
func (u *Union) Tag() Int { return DiscriminantInt(len(u.Cases)) }

// Tag returns the discriminant representation of the enum.
func (e *Enum) Tag() Int { return DiscriminantInt(len(e.Cases)) }

// FlagsRepr is the canonical backing of a flags type.
type FlagsRepr struct {
	Int   Int // IntU8, IntU16 or IntU32
	Words int // number of 32-bit words when Int is IntU32
}

// Repr returns the canonical representation for this flag count.
func (f *Flags) Repr() FlagsRepr {
	n := len(f.Flags)
	switch {
	case n == 0:
		return FlagsRepr{Int: IntU32, Words: 0}
	case n <= 8:
		return FlagsRepr{Int: IntU8, Words: 1}
	case n <= 16:
		return FlagsRepr{Int: IntU16, Words: 1}
	default:
		return FlagsRepr{Int: IntU32, Words: (n + 31) / 32}
	}
}

// Count returns the number of flat i32 values.
func (r FlagsRepr) Count() int {
	return r.Words
}
