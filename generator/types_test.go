package generator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ardanlabs/cbindgen/parser"
)

func prim(k parser.Kind) *parser.Type {
	return &parser.Type{Kind: k}
}

func ptr(t *parser.Type) *parser.Type {
	return &parser.Type{Kind: parser.Pointer, Pointee: t}
}

func constOf(t *parser.Type) *parser.Type {
	c := *t
	c.Const = true
	return &c
}

func TestCanTranslate(t *testing.T) {
	record := &parser.Type{Kind: parser.Record, Record: &parser.RecordDecl{Tag: "s", Complete: true}}
	proto := &parser.Type{Kind: parser.FunctionProto, Result: prim(parser.Void)}

	tests := []struct {
		name string
		typ  *parser.Type
		want bool
	}{
		{"void", prim(parser.Void), true},
		{"int", prim(parser.Int), true},
		{"unsigned int", prim(parser.UInt), true},
		{"long long", prim(parser.LongLong), true},
		{"unsigned long long", prim(parser.ULongLong), true},
		{"char", prim(parser.CharS), true},
		{"unsigned char", prim(parser.UChar), true},
		{"double", prim(parser.Double), true},
		{"array", &parser.Type{Kind: parser.ConstantArray, Len: 4, Pointee: prim(parser.Int)}, true},
		{"unbounded array", &parser.Type{Kind: parser.IncompleteArray, Pointee: prim(parser.Int)}, true},
		{"pointer", ptr(record), true},
		{"enum", &parser.Type{Kind: parser.Enum, Enum: &parser.EnumDecl{Tag: "e"}}, true},
		{"bool", prim(parser.Bool), false},
		{"signed char", prim(parser.SChar), false},
		{"long double", prim(parser.LongDouble), false},
		{"record", record, false},
		{"function", proto, false},
		{"unknown", &parser.Type{Kind: parser.Invalid, Name: "SDL_Window"}, false},
		{"typedef to record", &parser.Type{Kind: parser.Typedef, Name: "s_t", Underlying: record}, false},
		{"typedef to int", &parser.Type{Kind: parser.Typedef, Name: "i_t", Underlying: prim(parser.Int)}, true},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, CanTranslate(tt.typ), tt.name)
	}
}

func TestTranslate(t *testing.T) {
	record := &parser.Type{Kind: parser.Record, Record: &parser.RecordDecl{Tag: "point", Complete: true}}
	proto := &parser.Type{Kind: parser.FunctionProto, Result: prim(parser.Void)}
	tagged := &parser.Type{Kind: parser.Enum, Enum: &parser.EnumDecl{Tag: "color"}}
	anon := &parser.Type{Kind: parser.Enum, Enum: &parser.EnumDecl{}}

	tests := []struct {
		name string
		typ  *parser.Type
		want string
	}{
		{"void", prim(parser.Void), "void"},
		{"long", prim(parser.Long), "long"},
		{"unsigned long", prim(parser.ULong), "unsigned-long"},
		{"long long", prim(parser.LongLong), "integer64"},
		{"unsigned long long", prim(parser.ULongLong), "unsigned-integer64"},
		{"int", prim(parser.Int), "int"},
		{"unsigned int", prim(parser.UInt), "unsigned-integer"},
		{"char", prim(parser.CharS), "char"},
		{"unsigned char", prim(parser.UChar), "byte"},
		{"short", prim(parser.Short), "short"},
		{"unsigned short", prim(parser.UShort), "unsigned-short"},
		{"float", prim(parser.Float), "float"},
		{"double", prim(parser.Double), "double"},
		{"array", &parser.Type{Kind: parser.ConstantArray, Len: 4, Pointee: prim(parser.Int)}, "c-pointer"},
		{"unbounded array", &parser.Type{Kind: parser.IncompleteArray, Pointee: prim(parser.Int)}, "c-pointer"},
		{"const char pointer", ptr(constOf(prim(parser.CharS))), "c-string"},
		{"char pointer", ptr(prim(parser.CharS)), "(c-pointer char)"},
		{"const unsigned char pointer", ptr(constOf(prim(parser.UChar))), "(c-pointer byte)"},
		{"int pointer pointer", ptr(ptr(prim(parser.Int))), "(c-pointer (c-pointer int))"},
		{"struct pointer", ptr(record), `(c-pointer "struct point")`},
		{"const struct pointer", ptr(constOf(record)), `(c-pointer "const struct point")`},
		{"function pointer", ptr(proto), "c-pointer"},
		{"bool pointer", ptr(prim(parser.Bool)), "c-pointer"},
		{"void pointer", ptr(prim(parser.Void)), "(c-pointer void)"},
		{"tagged enum", tagged, `(enum "color")`},
		{"anonymous enum", anon, "int"},
		{"const tagged enum", constOf(tagged), "int"},
		{"enum pointer", ptr(tagged), `(c-pointer (enum "color"))`},
		{"typedef", &parser.Type{Kind: parser.Typedef, Name: "u8", Underlying: prim(parser.UChar)}, "byte"},
		{
			"pointer to const char through typedef",
			ptr(&parser.Type{Kind: parser.Typedef, Name: "cchar", Const: true, Underlying: prim(parser.CharS)}),
			"c-string",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.True(t, CanTranslate(tt.typ))
			assert.Equal(t, tt.want, Translate(tt.typ).String())
		})
	}
}

func TestTranslateDescriptorShape(t *testing.T) {
	d := Translate(ptr(ptr(prim(parser.Int))))
	require.Equal(t, TypedPointer, d.Kind)
	require.NotNil(t, d.Elem)
	assert.Equal(t, TypedPointer, d.Elem.Kind)
	assert.Equal(t, Descriptor{Kind: Primitive, Token: "int"}, *d.Elem.Elem)

	record := &parser.Type{Kind: parser.Record, Record: &parser.RecordDecl{Tag: "node"}}
	assert.Equal(t, Descriptor{Kind: RecordPointer, Name: "struct node"}, Translate(ptr(record)))
	assert.Equal(t, Descriptor{Kind: CString}, Translate(ptr(constOf(prim(parser.CharS)))))
}

func TestTranslateDeterministic(t *testing.T) {
	typ := ptr(ptr(&parser.Type{Kind: parser.Enum, Enum: &parser.EnumDecl{Tag: "mode"}}))
	first := Translate(typ)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Translate(typ))
	}
}

func TestTranslateUntranslatablePanics(t *testing.T) {
	record := &parser.Type{Kind: parser.Record, Record: &parser.RecordDecl{Tag: "s"}}
	assert.Panics(t, func() { Translate(record) })
	assert.Panics(t, func() { Translate(prim(parser.Bool)) })
}
