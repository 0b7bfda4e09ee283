package parser

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// ParseFile reads and parses the C file at path.
func ParseFile(path string) (*TranslationUnit, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading source: %w", err)
	}

	return Parse(path, string(data))
}

// Parse parses the declarations of a C translation unit. Only object-like
// macros and constant #if conditions are handled by the preprocessor pass;
// includes are not followed. Common fixed-width and libc typedefs are
// predeclared.
func Parse(name, content string) (*TranslationUnit, error) {
	toks, err := tokenize(name, content)
	if err != nil {
		return nil, err
	}

	p := &parser{
		file:     name,
		toks:     toks,
		typedefs: builtinTypedefs(),
		structs:  make(map[string]*RecordDecl),
		enums:    make(map[string]*EnumDecl),

		enumerators: make(map[string]EnumItem),
	}

	for !p.at(tokEOF) {
		if err := p.parseTopLevel(); err != nil {
			return nil, err
		}
	}

	return &TranslationUnit{Name: name, Decls: p.decls}, nil
}

type parser struct {
	file string
	toks []token
	pos  int

	typedefs map[string]*Type
	structs  map[string]*RecordDecl
	enums    map[string]*EnumDecl

	enumerators map[string]EnumItem

	// nesting is > 0 while inside a struct or union body; tag definitions
	// found there are not top-level declarations.
	nesting int

	decls []Decl
}

func builtinTypedefs() map[string]*Type {
	prim := func(name string, k Kind) *Type {
		return &Type{Kind: Typedef, Name: name, Underlying: &Type{Kind: k}}
	}
	file := &RecordDecl{Tag: "_IO_FILE"}
	vaTag := &RecordDecl{Tag: "__va_list_tag"}

	defs := []*Type{
		prim("size_t", ULong),
		prim("ssize_t", Long),
		prim("ptrdiff_t", Long),
		prim("intptr_t", Long),
		prim("uintptr_t", ULong),
		prim("off_t", Long),
		prim("wchar_t", Int),
		prim("int8_t", SChar),
		prim("uint8_t", UChar),
		prim("int16_t", Short),
		prim("uint16_t", UShort),
		prim("int32_t", Int),
		prim("uint32_t", UInt),
		prim("int64_t", Long),
		prim("uint64_t", ULong),
		prim("intmax_t", Long),
		prim("uintmax_t", ULong),
		prim("bool", Bool),
		{Kind: Typedef, Name: "FILE", Underlying: &Type{Kind: Record, Record: file}},
		{Kind: Typedef, Name: "va_list", Underlying: &Type{
			Kind:    ConstantArray,
			Len:     1,
			Pointee: &Type{Kind: Record, Record: vaTag},
		}},
	}

	m := make(map[string]*Type, len(defs))
	for _, d := range defs {
		m[d.Name] = d
	}
	return m
}

// =============================================================================
// Token helpers
// =============================================================================

func (p *parser) peek() token {
	return p.toks[p.pos]
}

func (p *parser) peekAt(n int) token {
	if p.pos+n >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.pos+n]
}

func (p *parser) advance() token {
	tok := p.toks[p.pos]
	if tok.kind != tokEOF {
		p.pos++
	}
	return tok
}

func (p *parser) at(kind tokenKind) bool {
	return p.peek().kind == kind
}

func (p *parser) is(text string) bool {
	tok := p.peek()
	return (tok.kind == tokPunct || tok.kind == tokIdent) && tok.text == text
}

func (p *parser) accept(text string) bool {
	if p.is(text) {
		p.advance()
		return true
	}
	return false
}

func (p *parser) expect(text string) error {
	if !p.accept(text) {
		return p.errorf("expected %q, found %s", text, p.peek())
	}
	return nil
}

func (p *parser) errorf(format string, args ...interface{}) error {
	return newError(p.file, p.peek(), format, args...)
}

// skipBalanced consumes a bracketed group starting at the current open
// token, including its matching close token.
func (p *parser) skipBalanced() error {
	open := p.advance()
	var closeText string
	switch open.text {
	case "(":
		closeText = ")"
	case "[":
		closeText = "]"
	case "{":
		closeText = "}"
	default:
		return newError(p.file, open, "expected bracket, found %s", open)
	}

	depth := 1
	for depth > 0 {
		tok := p.advance()
		switch {
		case tok.kind == tokEOF:
			return newError(p.file, open, "unbalanced %q", open.text)
		case tok.kind != tokPunct:
		case tok.text == open.text:
			depth++
		case tok.text == closeText:
			depth--
		}
	}
	return nil
}

// skipAttributes consumes GNU attribute and asm annotations.
func (p *parser) skipAttributes() error {
	for {
		switch tok := p.peek(); {
		case isAttributeWord(tok.text):
			p.advance()
			if p.is("(") {
				if err := p.skipBalanced(); err != nil {
					return err
				}
			}
		case tok.text == "__extension__":
			p.advance()
		default:
			return nil
		}
	}
}

func isAttributeWord(text string) bool {
	switch text {
	case "__attribute__", "__attribute", "__asm__", "__asm", "asm", "__declspec", "_Alignas":
		return true
	}
	return false
}

// isPlainIdent reports whether tok is an identifier that names neither a
// type nor an annotation.
func (p *parser) isPlainIdent(tok token) bool {
	return tok.kind == tokIdent && !p.isTypeName(tok) && !isAttributeWord(tok.text)
}

// skipInitializer consumes tokens up to the next top-level ',' or ';'.
func (p *parser) skipInitializer() error {
	for {
		switch {
		case p.at(tokEOF):
			return p.errorf("unexpected end of file in initializer")
		case p.is("(") || p.is("[") || p.is("{"):
			if err := p.skipBalanced(); err != nil {
				return err
			}
		case p.is(",") || p.is(";"):
			return nil
		default:
			p.advance()
		}
	}
}

func (p *parser) isTypeName(tok token) bool {
	if tok.kind != tokIdent {
		return false
	}
	if _, ok := typeKeywords[tok.text]; ok {
		return true
	}
	_, ok := p.typedefs[tok.text]
	return ok
}

var typeKeywords = map[string]struct{}{
	"void": {}, "char": {}, "short": {}, "int": {}, "long": {}, "float": {}, "double": {},
	"signed": {}, "__signed__": {}, "unsigned": {}, "_Bool": {}, "_Complex": {},
	"struct": {}, "union": {}, "enum": {},
	"const": {}, "__const": {}, "volatile": {}, "__volatile__": {}, "restrict": {}, "__restrict": {}, "__restrict__": {}, "_Atomic": {},
}

// =============================================================================
// Declarations
// =============================================================================

func (p *parser) parseTopLevel() error {
	if err := p.skipAttributes(); err != nil {
		return err
	}

	switch {
	case p.accept(";"):
		return nil
	case p.is("}"):
		// Closing brace of an extern "C" block.
		p.advance()
		return nil
	case p.is("extern") && p.peekAt(1).kind == tokString:
		p.advance()
		p.advance()
		p.accept("{")
		return nil
	case p.is("_Static_assert") || p.is("static_assert"):
		p.advance()
		if err := p.skipBalanced(); err != nil {
			return err
		}
		return p.expect(";")
	}

	start := p.peek()
	spec, err := p.parseDeclSpecs()
	if err != nil {
		return err
	}

	if p.accept(";") {
		if spec.tag != nil && !spec.body {
			p.decls = append(p.decls, spec.tag)
		}
		return nil
	}

	for {
		name, typ, paramNames, err := p.parseDeclarator(spec.typ)
		if err != nil {
			return err
		}
		if err := p.skipAttributes(); err != nil {
			return err
		}
		if name == "" {
			return newError(p.file, start, "declaration does not declare anything")
		}

		switch {
		case spec.storage == "typedef":
			td := &Type{Kind: Typedef, Name: name, Underlying: typ}
			p.typedefs[name] = td
			if typ.Kind == Record && typ.Record.Tag == "" && typ.Record.TypedefName == "" {
				typ.Record.TypedefName = name
			}
			p.decls = append(p.decls, &TypedefDecl{Name: name, Type: td, Line: start.line})

		case typ.Kind == FunctionProto || typ.Kind == FunctionNoProto:
			fn := &FunctionDecl{Name: name, Type: typ, ParamNames: paramNames, Line: start.line}
			p.decls = append(p.decls, fn)
			if typ.Kind == FunctionNoProto && p.isTypeName(p.peek()) {
				// Old-style parameter declarations before the body.
				for !p.is("{") && !p.at(tokEOF) {
					p.advance()
				}
			}
			if p.is("{") {
				fn.Definition = true
				return p.skipBalanced()
			}

		default:
			p.decls = append(p.decls, &VarDecl{Name: name, Type: typ, Line: start.line})
			if p.accept("=") {
				if err := p.skipInitializer(); err != nil {
					return err
				}
			}
		}

		if p.accept(",") {
			continue
		}
		return p.expect(";")
	}
}

type declSpec struct {
	typ     *Type
	storage string

	// tag is the struct, union or enum named by the specifiers, body
	// reports whether it was defined here.
	tag  Decl
	body bool
}

func (p *parser) parseDeclSpecs() (declSpec, error) {
	var spec declSpec
	var (
		// guess is set while spec.typ is an unknown name taken for a type.
		// A later type specifier shows it was a macro instead.
		guess                             bool
		isConst                           bool
		nVoid, nChar, nShort, nInt, nLong int
		nFloat, nDouble, nBool            int
		signed, unsigned, complex         bool
	)

	seenType := func() bool {
		return spec.typ != nil || nVoid+nChar+nShort+nInt+nLong+nFloat+nDouble+nBool > 0 || signed || unsigned
	}
	dropGuess := func() {
		if guess {
			spec.typ, guess = nil, false
		}
	}

loop:
	for {
		tok := p.peek()
		if tok.kind != tokIdent {
			break
		}

		switch tok.text {
		case "const", "__const":
			isConst = true
		case "volatile", "__volatile__", "restrict", "__restrict", "__restrict__", "_Atomic":
		case "typedef", "extern", "static", "auto", "register":
			spec.storage = tok.text
		case "inline", "__inline", "__inline__", "_Noreturn", "_Thread_local", "__thread":
		case "__attribute__", "__attribute", "__declspec", "_Alignas", "__extension__":
			if err := p.skipAttributes(); err != nil {
				return spec, err
			}
			continue
		case "void":
			dropGuess()
			nVoid++
		case "char":
			dropGuess()
			nChar++
		case "short":
			dropGuess()
			nShort++
		case "int":
			dropGuess()
			nInt++
		case "long":
			dropGuess()
			nLong++
		case "float":
			dropGuess()
			nFloat++
		case "double":
			dropGuess()
			nDouble++
		case "_Bool":
			dropGuess()
			nBool++
		case "signed", "__signed__":
			dropGuess()
			signed = true
		case "unsigned":
			dropGuess()
			unsigned = true
		case "_Complex":
			complex = true
		case "struct", "union":
			dropGuess()
			if seenType() {
				return spec, p.errorf("two or more data types in declaration specifiers")
			}
			rec, body, err := p.parseStructOrUnion()
			if err != nil {
				return spec, err
			}
			spec.typ = &Type{Kind: Record, Record: rec}
			spec.tag, spec.body = rec, body
			continue
		case "enum":
			dropGuess()
			if seenType() {
				return spec, p.errorf("two or more data types in declaration specifiers")
			}
			enum, body, err := p.parseEnum()
			if err != nil {
				return spec, err
			}
			spec.typ = &Type{Kind: Enum, Enum: enum}
			spec.tag, spec.body = enum, body
			continue
		case "__typeof__", "typeof", "__typeof":
			return spec, p.errorf("typeof is not supported")
		default:
			next := p.peekAt(1)
			td, isTypedef := p.typedefs[tok.text]
			switch {
			case guess && isTypedef:
				spec.typ, guess = td, false
			case guess && (p.isPlainIdent(next) || next.text == "*"):
				// API_EXPORT foo_t f(void): the earlier guess was a macro.
				spec.typ = &Type{Kind: Invalid, Name: tok.text}
			case seenType():
				break loop
			case isTypedef:
				spec.typ = td
			case next.kind == tokIdent || next.text == "*" || next.text == ")" || next.text == ",":
				// An unknown name followed by a declarator is taken to be a
				// type from a header that was not read.
				spec.typ = &Type{Kind: Invalid, Name: tok.text}
				guess = true
			default:
				break loop
			}
		}
		p.advance()
	}

	if spec.typ == nil {
		switch {
		case complex:
			spec.typ = &Type{Kind: Invalid, Name: "_Complex"}
		case nVoid > 0:
			spec.typ = &Type{Kind: Void}
		case nBool > 0:
			spec.typ = &Type{Kind: Bool}
		case nChar > 0:
			switch {
			case unsigned:
				spec.typ = &Type{Kind: UChar}
			case signed:
				spec.typ = &Type{Kind: SChar}
			default:
				spec.typ = &Type{Kind: CharS}
			}
		case nFloat > 0:
			spec.typ = &Type{Kind: Float}
		case nDouble > 0:
			if nLong > 0 {
				spec.typ = &Type{Kind: LongDouble}
			} else {
				spec.typ = &Type{Kind: Double}
			}
		case nShort > 0:
			spec.typ = pickSigned(unsigned, Short, UShort)
		case nLong == 1:
			spec.typ = pickSigned(unsigned, Long, ULong)
		case nLong >= 2:
			spec.typ = pickSigned(unsigned, LongLong, ULongLong)
		default:
			// Plain int, or implicit int.
			spec.typ = pickSigned(unsigned, Int, UInt)
		}
	} else if complex {
		spec.typ = &Type{Kind: Invalid, Name: "_Complex"}
	}

	if isConst {
		c := *spec.typ
		c.Const = true
		spec.typ = &c
	}

	return spec, nil
}

func pickSigned(unsigned bool, s, u Kind) *Type {
	if unsigned {
		return &Type{Kind: u}
	}
	return &Type{Kind: s}
}

// parseDeclarator parses a possibly abstract declarator applied to base and
// returns the declared name, the resulting type and, for function
// declarators, the parameter names.
func (p *parser) parseDeclarator(base *Type) (string, *Type, []string, error) {
	if err := p.skipAttributes(); err != nil {
		return "", nil, nil, err
	}
	p.skipDeclMacros()

	for p.accept("*") {
		ptr := &Type{Kind: Pointer, Pointee: base}
		if err := p.parsePointerQualifiers(ptr); err != nil {
			return "", nil, nil, err
		}
		base = ptr
		p.skipDeclMacros()
	}

	// A parenthesised inner declarator binds looser than the suffixes that
	// follow it, so the suffixes are applied to base first and the inner
	// declarator is parsed afterwards.
	if p.is("(") && p.startsNestedDeclarator() {
		p.advance()
		innerStart := p.pos
		p.pos--
		if err := p.skipBalanced(); err != nil {
			return "", nil, nil, err
		}

		outer, paramNames, err := p.parseSuffixes(base)
		if err != nil {
			return "", nil, nil, err
		}
		end := p.pos

		p.pos = innerStart
		name, typ, innerParams, err := p.parseDeclarator(outer)
		if err != nil {
			return "", nil, nil, err
		}
		if err := p.expect(")"); err != nil {
			return "", nil, nil, err
		}
		p.pos = end

		if innerParams != nil {
			paramNames = innerParams
		}
		return name, typ, paramNames, nil
	}

	var name string
	if p.at(tokIdent) && !p.isTypeName(p.peek()) {
		name = p.advance().text
	}

	typ, paramNames, err := p.parseSuffixes(base)
	if err != nil {
		return "", nil, nil, err
	}
	return name, typ, paramNames, nil
}

// skipDeclMacros drops identifiers in declarator position that cannot be the
// declared name, such as calling convention macros in int SDLCALL f(void) or
// void (APIENTRY *fp)(void).
func (p *parser) skipDeclMacros() {
	for p.isPlainIdent(p.peek()) {
		next, after := p.peekAt(1), p.peekAt(2)
		name := p.isPlainIdent(next) && (after.text == "(" || after.text == "[" || after.kind == tokIdent)
		if !name && next.text != "*" {
			return
		}
		p.advance()
	}
}

func (p *parser) parsePointerQualifiers(ptr *Type) error {
	for {
		switch p.peek().text {
		case "const", "__const":
			ptr.Const = true
		case "volatile", "__volatile__", "restrict", "__restrict", "__restrict__", "_Atomic", "_Nonnull", "_Nullable":
		case "__attribute__", "__attribute":
			if err := p.skipAttributes(); err != nil {
				return err
			}
			continue
		default:
			return nil
		}
		p.advance()
	}
}

// startsNestedDeclarator reports whether the '(' at the current position
// opens a nested declarator rather than a parameter list.
func (p *parser) startsNestedDeclarator() bool {
	next := p.peekAt(1)
	switch {
	case next.text == "*" || next.text == "^" || next.text == "(" || next.text == "[":
		return true
	case next.text == "__attribute__":
		return true
	case next.kind == tokIdent:
		return !p.isTypeName(next)
	default:
		return false
	}
}

type suffix struct {
	array      bool
	length     int64
	incomplete bool

	params     []*Type
	paramNames []string
	variadic   bool
	proto      bool
}

func (p *parser) parseSuffixes(base *Type) (*Type, []string, error) {
	var suffixes []suffix
	for p.is("[") || p.is("(") {
		var s suffix
		var err error
		if p.is("[") {
			s, err = p.parseArraySuffix()
		} else {
			s, err = p.parseParams()
		}
		if err != nil {
			return nil, nil, err
		}
		suffixes = append(suffixes, s)
	}

	// int a[2][3] is an array of 2 arrays of 3 ints: the rightmost suffix
	// is closest to the base type.
	var paramNames []string
	typ := base
	for i := len(suffixes) - 1; i >= 0; i-- {
		s := suffixes[i]
		switch {
		case s.array && s.incomplete:
			typ = &Type{Kind: IncompleteArray, Pointee: typ}
		case s.array:
			typ = &Type{Kind: ConstantArray, Pointee: typ, Len: s.length}
		default:
			kind := FunctionNoProto
			if s.proto {
				kind = FunctionProto
			}
			typ = &Type{Kind: kind, Result: typ, Params: s.params, Variadic: s.variadic}
			if i == 0 {
				paramNames = s.paramNames
			}
		}
	}
	return typ, paramNames, nil
}

func (p *parser) parseArraySuffix() (suffix, error) {
	open := p.advance()
	for p.is("static") || p.is("const") || p.is("restrict") || p.is("volatile") {
		p.advance()
	}
	if p.accept("]") {
		return suffix{array: true, incomplete: true}, nil
	}

	var expr []string
	depth := 0
	for {
		tok := p.advance()
		switch {
		case tok.kind == tokEOF:
			return suffix{}, newError(p.file, open, "unbalanced %q", open.text)
		case tok.text == "[" || tok.text == "(":
			depth++
		case tok.text == ")":
			depth--
		case tok.text == "]":
			if depth == 0 {
				return suffix{array: true, length: p.evalLength(expr)}, nil
			}
			depth--
		}
		expr = append(expr, tok.text)
	}
}

// evalLength evaluates an array length. Only integer literals and
// enumerators with literal or implicit values are understood; anything else
// yields 0.
func (p *parser) evalLength(expr []string) int64 {
	if len(expr) != 1 {
		return 0
	}
	lit := strings.TrimRight(expr[0], "uUlL")
	if n, err := strconv.ParseInt(lit, 0, 64); err == nil {
		return n
	}
	if item, ok := p.enumerators[expr[0]]; ok {
		if item.Value == "" {
			return int64(item.Index)
		}
		if n, err := strconv.ParseInt(strings.TrimRight(item.Value, "uUlL"), 0, 64); err == nil {
			return n
		}
	}
	return 0
}

func (p *parser) parseParams() (suffix, error) {
	p.advance()

	if p.accept(")") {
		return suffix{}, nil
	}
	if p.is("void") && p.peekAt(1).text == ")" {
		p.advance()
		p.advance()
		return suffix{proto: true}, nil
	}

	// Old-style identifier list.
	if p.at(tokIdent) && !p.isTypeName(p.peek()) && !p.is("register") {
		next := p.peekAt(1)
		if next.text == "," || next.text == ")" {
			p.pos--
			if err := p.skipBalanced(); err != nil {
				return suffix{}, err
			}
			return suffix{}, nil
		}
	}

	s := suffix{proto: true}
	for {
		if p.accept("...") {
			s.variadic = true
			return s, p.expect(")")
		}

		spec, err := p.parseDeclSpecs()
		if err != nil {
			return suffix{}, err
		}
		name, typ, _, err := p.parseDeclarator(spec.typ)
		if err != nil {
			return suffix{}, err
		}
		if err := p.skipAttributes(); err != nil {
			return suffix{}, err
		}

		s.params = append(s.params, adjustParam(typ))
		s.paramNames = append(s.paramNames, name)

		if p.accept(")") {
			return s, nil
		}
		if err := p.expect(","); err != nil {
			return suffix{}, err
		}
	}
}

// adjustParam applies the C parameter adjustments: arrays decay to pointers
// to their element and functions to function pointers.
func adjustParam(t *Type) *Type {
	switch t.Kind {
	case ConstantArray, IncompleteArray:
		return &Type{Kind: Pointer, Pointee: t.Pointee}
	case FunctionProto, FunctionNoProto:
		return &Type{Kind: Pointer, Pointee: t}
	default:
		return t
	}
}

// =============================================================================
// Tagged types
// =============================================================================

func (p *parser) parseStructOrUnion() (*RecordDecl, bool, error) {
	keyword := p.advance()
	union := keyword.text == "union"
	if err := p.skipAttributes(); err != nil {
		return nil, false, err
	}

	var tag string
	if p.at(tokIdent) {
		tag = p.advance().text
	}
	if err := p.skipAttributes(); err != nil {
		return nil, false, err
	}

	if !p.is("{") {
		if tag == "" {
			return nil, false, p.errorf("expected struct tag or body, found %s", p.peek())
		}
		return p.lookupRecord(tag, union, keyword.line), false, nil
	}

	var rec *RecordDecl
	if tag == "" {
		rec = &RecordDecl{Union: union, Line: keyword.line}
	} else {
		rec = p.lookupRecord(tag, union, keyword.line)
		if rec.Complete {
			return nil, false, newError(p.file, keyword, "redefinition of %s %s", keyword.text, tag)
		}
		rec.Line = keyword.line
	}

	fields, err := p.parseStructFields()
	if err != nil {
		return nil, false, err
	}
	rec.Fields = fields
	rec.Complete = true

	if err := p.skipAttributes(); err != nil {
		return nil, false, err
	}
	if p.nesting == 0 {
		p.decls = append(p.decls, rec)
	}
	return rec, true, nil
}

func (p *parser) lookupRecord(tag string, union bool, line int) *RecordDecl {
	if rec, ok := p.structs[tag]; ok {
		return rec
	}
	rec := &RecordDecl{Tag: tag, Union: union, Line: line}
	p.structs[tag] = rec
	return rec
}

func (p *parser) parseStructFields() ([]Field, error) {
	if err := p.expect("{"); err != nil {
		return nil, err
	}
	p.nesting++
	defer func() { p.nesting-- }()

	var fields []Field
	for !p.accept("}") {
		if p.at(tokEOF) {
			return nil, p.errorf("unexpected end of file in struct body")
		}
		if p.accept(";") {
			continue
		}
		if p.is("_Static_assert") || p.is("static_assert") {
			p.advance()
			if err := p.skipBalanced(); err != nil {
				return nil, err
			}
			if err := p.expect(";"); err != nil {
				return nil, err
			}
			continue
		}

		spec, err := p.parseDeclSpecs()
		if err != nil {
			return nil, err
		}

		// Anonymous struct or union member.
		if p.accept(";") {
			if spec.typ.Kind == Record && spec.typ.Record.Tag == "" {
				fields = append(fields, Field{Type: spec.typ})
			}
			continue
		}

		for {
			name, typ, _, err := p.parseDeclarator(spec.typ)
			if err != nil {
				return nil, err
			}

			bits := 0
			if p.accept(":") {
				w := p.advance()
				n, err := strconv.Atoi(strings.TrimRight(w.text, "uUlL"))
				if err != nil {
					return nil, newError(p.file, w, "bit-field width must be an integer literal")
				}
				bits = n
			}
			if err := p.skipAttributes(); err != nil {
				return nil, err
			}

			// Unnamed bit-fields only pad.
			if name != "" {
				fields = append(fields, Field{Name: name, Type: typ, Bits: bits})
			}

			if p.accept(",") {
				continue
			}
			if err := p.expect(";"); err != nil {
				return nil, err
			}
			break
		}
	}

	return fields, nil
}

func (p *parser) parseEnum() (*EnumDecl, bool, error) {
	keyword := p.advance()
	if err := p.skipAttributes(); err != nil {
		return nil, false, err
	}

	var tag string
	if p.at(tokIdent) {
		tag = p.advance().text
	}

	// enum tag : type { ... }
	if p.accept(":") {
		if _, err := p.parseDeclSpecs(); err != nil {
			return nil, false, err
		}
	}

	if !p.is("{") {
		if tag == "" {
			return nil, false, p.errorf("expected enum tag or body, found %s", p.peek())
		}
		if e, ok := p.enums[tag]; ok {
			return e, false, nil
		}
		e := &EnumDecl{Tag: tag, IntegerType: &Type{Kind: UInt}, Line: keyword.line}
		p.enums[tag] = e
		return e, false, nil
	}

	enum := &EnumDecl{Tag: tag, Line: keyword.line}
	if tag != "" {
		if prev, ok := p.enums[tag]; ok {
			if len(prev.Items) > 0 {
				return nil, false, newError(p.file, keyword, "redefinition of enum %s", tag)
			}
			enum = prev
			enum.Line = keyword.line
		}
		p.enums[tag] = enum
	}

	items, err := p.parseEnumValues()
	if err != nil {
		return nil, false, err
	}
	enum.Items = items
	enum.IntegerType = enumIntegerType(items)

	if err := p.skipAttributes(); err != nil {
		return nil, false, err
	}
	if p.nesting == 0 {
		p.decls = append(p.decls, enum)
	}
	return enum, true, nil
}

func (p *parser) parseEnumValues() ([]EnumItem, error) {
	if err := p.expect("{"); err != nil {
		return nil, err
	}

	var items []EnumItem
	for !p.accept("}") {
		tok := p.advance()
		if tok.kind != tokIdent {
			return nil, newError(p.file, tok, "expected enumerator name, found %s", tok)
		}
		item := EnumItem{Name: tok.text, Index: len(items)}
		if err := p.skipAttributes(); err != nil {
			return nil, err
		}

		if p.accept("=") {
			var value []string
			depth := 0
			for depth > 0 || !(p.is(",") || p.is("}")) {
				t := p.advance()
				switch {
				case t.kind == tokEOF:
					return nil, p.errorf("unexpected end of file in enum body")
				case t.text == "(":
					depth++
				case t.text == ")":
					depth--
				}
				value = append(value, t.text)
			}
			item.Value = strings.Join(value, " ")
		}
		items = append(items, item)
		p.enumerators[item.Name] = item

		if !p.accept(",") && !p.is("}") {
			return nil, p.errorf("expected ',' or '}' in enum body, found %s", p.peek())
		}
	}

	return items, nil
}

// enumIntegerType picks the underlying type the way C compilers do for
// enums whose values fit in an int: unsigned unless a value is negative.
func enumIntegerType(items []EnumItem) *Type {
	for _, item := range items {
		if strings.HasPrefix(item.Value, "-") {
			return &Type{Kind: Int}
		}
	}
	return &Type{Kind: UInt}
}
