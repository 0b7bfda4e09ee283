package generator

import (
	"bytes"
	"fmt"

	"github.com/ardanlabs/cbindgen/parser"
)

// DefaultOpaqueThreshold is the struct size, in bytes, below which a struct
// is treated as an opaque handle.
const DefaultOpaqueThreshold = 2

// isComplexField reports whether a field has no accessor representation:
// arrays and nested structs or unions.
func isComplexField(t *parser.Type) bool {
	switch t.Canonical().Kind {
	case parser.ConstantArray, parser.IncompleteArray, parser.Record:
		return true
	default:
		return false
	}
}

// emitRecord writes a define-foreign-record-type with a getter and setter
// per field. Opaque, anonymous and complex structs are skipped without a
// diagnostic; a field of an untranslatable type yields one.
func emitRecord(buf *bytes.Buffer, r *parser.RecordDecl, opaqueThreshold int64) *Diagnostic {
	base := Normalize(r.Tag)
	if r.Size() < opaqueThreshold || base == "" {
		return nil
	}

	for _, f := range r.Fields {
		if isComplexField(f.Type) {
			return nil
		}
	}
	for _, f := range r.Fields {
		if !CanTranslate(f.Type) {
			return &Diagnostic{Entity: EntityRecord, Name: r.Tag, Reason: ReasonType}
		}
	}

	fmt.Fprintf(buf, "(define-foreign-record-type (%s %q)", base, r.Tag)
	for _, f := range r.Fields {
		accessor := base + "-" + Normalize(f.Name)
		fmt.Fprintf(buf, "\n  (%s %s %s-set!)", Translate(f.Type), accessor, accessor)
	}
	fmt.Fprintf(buf, ")\n")

	return nil
}
