package parser

import (
	"strconv"
	"strings"
)

// Kind identifies the representation of a C type.
type Kind int

const (
	Invalid Kind = iota
	Void
	Bool
	CharS
	SChar
	UChar
	Short
	UShort
	Int
	UInt
	Long
	ULong
	LongLong
	ULongLong
	Float
	Double
	LongDouble
	Pointer
	ConstantArray
	IncompleteArray
	Enum
	Record
	FunctionProto
	FunctionNoProto
	Typedef
)

var kindNames = [...]string{
	Invalid:         "Invalid",
	Void:            "Void",
	Bool:            "Bool",
	CharS:           "Char_S",
	SChar:           "SChar",
	UChar:           "UChar",
	Short:           "Short",
	UShort:          "UShort",
	Int:             "Int",
	UInt:            "UInt",
	Long:            "Long",
	ULong:           "ULong",
	LongLong:        "LongLong",
	ULongLong:       "ULongLong",
	Float:           "Float",
	Double:          "Double",
	LongDouble:      "LongDouble",
	Pointer:         "Pointer",
	ConstantArray:   "ConstantArray",
	IncompleteArray: "IncompleteArray",
	Enum:            "Enum",
	Record:          "Record",
	FunctionProto:   "FunctionProto",
	FunctionNoProto: "FunctionNoProto",
	Typedef:         "Typedef",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "Invalid"
	}
	return kindNames[k]
}

// Type is a C type node. Types are shared between declarations and must be
// treated as read-only once Parse returns.
type Type struct {
	Kind  Kind
	Const bool

	// Pointer and array element.
	Pointee *Type
	Len     int64

	// Enum and Record reference the declaration that introduced the tag.
	Enum   *EnumDecl
	Record *RecordDecl

	// Function types.
	Result   *Type
	Params   []*Type
	Variadic bool

	// Typedef types.
	Name       string
	Underlying *Type
}

// Canonical resolves typedefs down to the underlying representation. Const
// qualification from every typedef level is carried over.
func (t *Type) Canonical() *Type {
	isConst := false
	for t.Kind == Typedef && t.Underlying != nil {
		isConst = isConst || t.Const
		t = t.Underlying
	}
	if !isConst || t.Const {
		return t
	}
	c := *t
	c.Const = true
	return &c
}

// Elem returns the pointee of a pointer or the element of an array.
func (t *Type) Elem() *Type {
	return t.Pointee
}

// Spelling returns the type the way C would spell it.
func (t *Type) Spelling() string {
	s := t.spell()
	if t.Const && t.Kind != Pointer {
		return "const " + s
	}
	return s
}

func (t *Type) spell() string {
	switch t.Kind {
	case Void:
		return "void"
	case Bool:
		return "_Bool"
	case CharS:
		return "char"
	case SChar:
		return "signed char"
	case UChar:
		return "unsigned char"
	case Short:
		return "short"
	case UShort:
		return "unsigned short"
	case Int:
		return "int"
	case UInt:
		return "unsigned int"
	case Long:
		return "long"
	case ULong:
		return "unsigned long"
	case LongLong:
		return "long long"
	case ULongLong:
		return "unsigned long long"
	case Float:
		return "float"
	case Double:
		return "double"
	case LongDouble:
		return "long double"
	case Pointer:
		s := t.Pointee.Spelling() + " *"
		if t.Const {
			s += "const"
		}
		return s
	case ConstantArray:
		return t.Pointee.Spelling() + " [" + strconv.FormatInt(t.Len, 10) + "]"
	case IncompleteArray:
		return t.Pointee.Spelling() + " []"
	case Enum:
		if t.Enum == nil || t.Enum.Tag == "" {
			return ""
		}
		return "enum " + t.Enum.Tag
	case Record:
		if t.Record == nil {
			return ""
		}
		keyword := "struct"
		if t.Record.Union {
			keyword = "union"
		}
		if t.Record.Tag == "" {
			if t.Record.TypedefName != "" {
				return t.Record.TypedefName
			}
			return keyword + " (anonymous)"
		}
		return keyword + " " + t.Record.Tag
	case FunctionProto, FunctionNoProto:
		var params []string
		for _, p := range t.Params {
			params = append(params, p.Spelling())
		}
		if t.Variadic {
			params = append(params, "...")
		}
		if t.Kind == FunctionProto && len(params) == 0 {
			params = append(params, "void")
		}
		return t.Result.Spelling() + " (" + strings.Join(params, ", ") + ")"
	case Typedef:
		return t.Name
	default:
		return "<invalid>"
	}
}

// Decl is a top-level declaration of a translation unit.
type Decl interface {
	Spelling() string
	Pos() int
	decl()
}

type FunctionDecl struct {
	Name       string
	Type       *Type
	ParamNames []string
	Definition bool
	Line       int
}

func (d *FunctionDecl) Spelling() string { return d.Name }
func (d *FunctionDecl) Pos() int         { return d.Line }
func (*FunctionDecl) decl()              {}

// Result returns the declared return type.
func (d *FunctionDecl) Result() *Type { return d.Type.Result }

// Params returns the declared parameter types, in order.
func (d *FunctionDecl) Params() []*Type { return d.Type.Params }

// Variadic reports whether the prototype ends with an ellipsis.
func (d *FunctionDecl) Variadic() bool { return d.Type.Variadic }

// EnumItem is one enumerator. Index is its position in the declaration and
// Value is the raw initializer text, if any.
type EnumItem struct {
	Name  string
	Index int
	Value string
}

type EnumDecl struct {
	Tag         string
	Items       []EnumItem
	IntegerType *Type
	Line        int
}

func (d *EnumDecl) Spelling() string { return d.Tag }
func (d *EnumDecl) Pos() int         { return d.Line }
func (*EnumDecl) decl()              {}

type Field struct {
	Name string
	Type *Type
	Bits int
}

type RecordDecl struct {
	Tag      string
	Union    bool
	Fields   []Field
	Complete bool
	Line     int

	// TypedefName is the first typedef naming an anonymous record, as in
	// typedef struct { ... } name.
	TypedefName string
}

func (d *RecordDecl) Spelling() string { return d.Tag }
func (d *RecordDecl) Pos() int         { return d.Line }
func (*RecordDecl) decl()              {}

// Type returns the record type named by the declaration.
func (d *RecordDecl) Type() *Type {
	return &Type{Kind: Record, Record: d}
}

// Size returns the byte size of the record, or a negative value when it is
// incomplete.
func (d *RecordDecl) Size() int64 {
	return d.Type().Size()
}

type TypedefDecl struct {
	Name string
	Type *Type
	Line int
}

func (d *TypedefDecl) Spelling() string { return d.Name }
func (d *TypedefDecl) Pos() int         { return d.Line }
func (*TypedefDecl) decl()              {}

type VarDecl struct {
	Name string
	Type *Type
	Line int
}

func (d *VarDecl) Spelling() string { return d.Name }
func (d *VarDecl) Pos() int         { return d.Line }
func (*VarDecl) decl()              {}

// TranslationUnit holds the top-level declarations of one input file in
// parse order.
type TranslationUnit struct {
	Name  string
	Decls []Decl
}
