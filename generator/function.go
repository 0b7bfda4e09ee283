package generator

import (
	"bytes"
	"fmt"

	"github.com/ardanlabs/cbindgen/parser"
)

// emitFunction writes a foreign-lambda binding for fn. When the function
// cannot be bound nothing is written and the reason is returned instead.
func emitFunction(buf *bytes.Buffer, fn *parser.FunctionDecl) *Diagnostic {
	if fn.Variadic() {
		return &Diagnostic{Entity: EntityFunction, Name: fn.Name, Reason: ReasonVariadic}
	}

	ret := fn.Result().Canonical()
	params := make([]*parser.Type, len(fn.Params()))
	for i, p := range fn.Params() {
		params[i] = p.Canonical()
	}

	// Passing structs by value is the usual way to end up here.
	if !CanTranslate(ret) {
		return &Diagnostic{Entity: EntityFunction, Name: fn.Name, Reason: ReasonType}
	}
	for _, p := range params {
		if !CanTranslate(p) {
			return &Diagnostic{Entity: EntityFunction, Name: fn.Name, Reason: ReasonType}
		}
	}

	fmt.Fprintf(buf, "(define %s\n", Normalize(fn.Name))
	fmt.Fprintf(buf, "  (foreign-lambda %s %s", Translate(ret), fn.Name)
	for _, p := range params {
		fmt.Fprintf(buf, " %s", Translate(p))
	}
	fmt.Fprintf(buf, "))\n")

	return nil
}
