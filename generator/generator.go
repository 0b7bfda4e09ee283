package generator

import (
	"bytes"
	"fmt"

	"github.com/ardanlabs/cbindgen/parser"
)

// Entity names the kind of declaration a diagnostic is about.
type Entity string

const (
	EntityFunction Entity = "function"
	EntityRecord   Entity = "record"
)

// Reason says why a declaration was skipped.
type Reason string

const (
	ReasonVariadic Reason = "Variadic function"
	ReasonType     Reason = "Type error"
)

// Diagnostic reports a declaration that was left out of the output.
type Diagnostic struct {
	Entity Entity
	Name   string
	Reason Reason
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("Cannot translate the %s %s: %s", d.Entity, d.Name, d.Reason)
}

// Options control which passes run.
type Options struct {
	// Records enables the struct accessor pass.
	Records bool

	// OpaqueThreshold is the struct size below which no accessors are
	// generated. Zero emits every complete struct; command line and config
	// callers start from DefaultOpaqueThreshold.
	OpaqueThreshold int64

	// Dedupe handles a declaration that appears more than once only at its
	// first appearance. By default every appearance is emitted.
	Dedupe bool
}

// Result is the output of one translation unit.
type Result struct {
	Output      string
	Diagnostics []Diagnostic

	Functions int
	Enums     int
	Records   int
}

type Generator struct {
	opts Options
}

func New(opts Options) *Generator {
	return &Generator{opts: opts}
}

// Generate emits the bindings for tu: functions first, then enums, then
// records when enabled. Each pass keeps declaration order. Repeated
// declarations are emitted each time unless Options.Dedupe is set.
func (g *Generator) Generate(tu *parser.TranslationUnit) Result {
	var (
		funcs   []*parser.FunctionDecl
		enums   []*parser.EnumDecl
		records []*parser.RecordDecl
	)

	seenFuncs := make(map[string]bool)
	seenDecls := make(map[parser.Decl]bool)

	for _, d := range tu.Decls {
		switch d := d.(type) {
		case *parser.FunctionDecl:
			// Old-style declarations say nothing about the parameters.
			if d.Type.Kind != parser.FunctionProto {
				continue
			}
			if g.opts.Dedupe {
				if seenFuncs[d.Name] {
					continue
				}
				seenFuncs[d.Name] = true
			}
			funcs = append(funcs, d)
		case *parser.EnumDecl:
			if g.opts.Dedupe {
				if seenDecls[d] {
					continue
				}
				seenDecls[d] = true
			}
			enums = append(enums, d)
		case *parser.RecordDecl:
			if d.Union {
				continue
			}
			if g.opts.Dedupe {
				if seenDecls[d] {
					continue
				}
				seenDecls[d] = true
			}
			records = append(records, d)
		}
	}

	var buf bytes.Buffer
	var res Result

	for _, fn := range funcs {
		if diag := emitFunction(&buf, fn); diag != nil {
			res.Diagnostics = append(res.Diagnostics, *diag)
			continue
		}
		res.Functions++
	}

	for _, e := range enums {
		n := buf.Len()
		emitEnum(&buf, e)
		if buf.Len() > n {
			res.Enums++
		}
	}

	if g.opts.Records {
		for _, r := range records {
			n := buf.Len()
			if diag := emitRecord(&buf, r, g.opts.OpaqueThreshold); diag != nil {
				res.Diagnostics = append(res.Diagnostics, *diag)
				continue
			}
			if buf.Len() > n {
				res.Records++
			}
		}
	}

	res.Output = buf.String()
	return res
}
