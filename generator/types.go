package generator

import (
	"fmt"
	"strings"

	"github.com/ardanlabs/cbindgen/parser"
)

// DescriptorKind tells the shapes of Descriptor apart.
type DescriptorKind int

const (
	// Primitive is a plain foreign type token such as int or c-pointer.
	Primitive DescriptorKind = iota
	// CString is a pointer to const char.
	CString
	// RecordPointer is a pointer to a struct or union, tagged with the
	// record's C spelling.
	RecordPointer
	// TypedPointer is a pointer to another translatable type.
	TypedPointer
	// EnumRef refers to a foreign enum type by name.
	EnumRef
)

// Descriptor is the symbolic foreign type of a C type in an emitted
// declaration.
type Descriptor struct {
	Kind  DescriptorKind
	Token string
	Name  string
	Elem  *Descriptor
}

const (
	tokenPointer = "c-pointer"
	tokenString  = "c-string"
	tokenInt     = "int"
)

func (d Descriptor) String() string {
	switch d.Kind {
	case CString:
		return tokenString
	case RecordPointer:
		return fmt.Sprintf("(%s %q)", tokenPointer, d.Name)
	case TypedPointer:
		return fmt.Sprintf("(%s %s)", tokenPointer, d.Elem)
	case EnumRef:
		return fmt.Sprintf("(enum %q)", d.Name)
	default:
		return d.Token
	}
}

// primitives maps the primitive C kinds to their foreign type token. Arrays
// decay to untyped pointers.
var primitives = map[parser.Kind]string{
	parser.Void:            "void",
	parser.Long:            "long",
	parser.ULong:           "unsigned-long",
	parser.LongLong:        "integer64",
	parser.ULongLong:       "unsigned-integer64",
	parser.Int:             "int",
	parser.UInt:            "unsigned-integer",
	parser.CharS:           "char",
	parser.UChar:           "byte",
	parser.Short:           "short",
	parser.UShort:          "unsigned-short",
	parser.Float:           "float",
	parser.Double:          "double",
	parser.ConstantArray:   tokenPointer,
	parser.IncompleteArray: tokenPointer,
}

// CanTranslate reports whether a descriptor can be produced for t.
func CanTranslate(t *parser.Type) bool {
	t = t.Canonical()

	switch t.Kind {
	case parser.Void,
		parser.Long, parser.ULong,
		parser.LongLong, parser.ULongLong,
		parser.Int, parser.UInt,
		parser.CharS, parser.UChar,
		parser.Short, parser.UShort,
		parser.Float, parser.Double,
		parser.ConstantArray, parser.IncompleteArray:
		return true
	case parser.Pointer, parser.Enum:
		return true
	case parser.Bool, parser.SChar, parser.LongDouble:
		return false
	case parser.Record, parser.FunctionProto, parser.FunctionNoProto:
		return false
	case parser.Typedef, parser.Invalid:
		return false
	default:
		panic(fmt.Sprintf("generator: unhandled type kind %s", t.Kind))
	}
}

// Translate returns the descriptor for t. Callers must check CanTranslate
// first.
func Translate(t *parser.Type) Descriptor {
	t = t.Canonical()

	switch t.Kind {
	case parser.Pointer:
		return translatePointer(t.Pointee.Canonical())
	case parser.Enum:
		if name, ok := strings.CutPrefix(t.Spelling(), "enum "); ok {
			return Descriptor{Kind: EnumRef, Name: name}
		}
		return Descriptor{Kind: Primitive, Token: tokenInt}
	}

	if token, ok := primitives[t.Kind]; ok {
		return Descriptor{Kind: Primitive, Token: token}
	}

	panic(fmt.Sprintf("generator: cannot translate type %q of kind %s", t.Spelling(), t.Kind))
}

func translatePointer(pointee *parser.Type) Descriptor {
	switch {
	case pointee.Const && pointee.Kind == parser.CharS:
		return Descriptor{Kind: CString}
	case pointee.Kind == parser.Record:
		return Descriptor{Kind: RecordPointer, Name: pointee.Spelling()}
	case CanTranslate(pointee):
		elem := Translate(pointee)
		return Descriptor{Kind: TypedPointer, Elem: &elem}
	default:
		return Descriptor{Kind: Primitive, Token: tokenPointer}
	}
}
