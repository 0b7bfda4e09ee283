package generator

import (
	"bytes"
	"fmt"

	"github.com/ardanlabs/cbindgen/parser"
)

// emitEnum writes a define-foreign-enum-type for e. Enumerators are named by
// what is left after stripping their common prefix. Anonymous enums take
// their name from that prefix and are dropped silently when it is empty.
//
// Each enumerator is bound to its position in the declaration, not to its C
// value, so enums with explicit initializers are mapped by order.
func emitEnum(buf *bytes.Buffer, e *parser.EnumDecl) {
	names := make([]string, len(e.Items))
	for i, item := range e.Items {
		names[i] = item.Name
	}
	prefix := commonPrefix(names)

	base := e.Tag
	if base == "" {
		base = baseName(prefix)
		if base == "" {
			return
		}
	}
	base = Normalize(base)

	fmt.Fprintf(buf, "(define-foreign-enum-type (%s %s)\n", base, tokenInt)
	fmt.Fprintf(buf, "  (%s->%s %s->%s)", base, tokenInt, tokenInt, base)
	for _, item := range e.Items {
		alias := Normalize(item.Name[len(prefix):])
		fmt.Fprintf(buf, "\n  ((%s) %d)", alias, item.Index)
	}
	fmt.Fprintf(buf, ")\n")
}
