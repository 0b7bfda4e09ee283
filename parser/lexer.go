package parser

import (
	"fmt"
	"regexp"
	"strings"
)

var blockCommentRe = regexp.MustCompile(`/\*[\s\S]*?\*/`)
var lineCommentRe = regexp.MustCompile(`//[^\n]*`)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokNumber
	tokString
	tokPunct
)

func (k tokenKind) String() string {
	switch k {
	case tokEOF:
		return "end of file"
	case tokIdent:
		return "identifier"
	case tokNumber:
		return "number"
	case tokString:
		return "string"
	default:
		return "punctuation"
	}
}

type token struct {
	kind tokenKind
	text string
	line int
}

func (t token) String() string {
	if t.kind == tokEOF {
		return t.kind.String()
	}
	return fmt.Sprintf("%q", t.text)
}

// Longest first so that "..." wins over ".".
var punctuators = []string{
	"...", "<<=", ">>=",
	"->", "++", "--", "<<", ">>", "<=", ">=", "==", "!=", "&&", "||",
	"*=", "/=", "%=", "+=", "-=", "&=", "^=", "|=", "##",
}

// removeComments replaces comments with the newlines they contain, so line
// numbers stay intact.
func removeComments(s string) string {
	s = blockCommentRe.ReplaceAllStringFunc(s, func(c string) string {
		return strings.Repeat("\n", strings.Count(c, "\n")) + " "
	})
	s = lineCommentRe.ReplaceAllString(s, "")

	return s
}

func normalizeNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")

	return s
}

type lexer struct {
	file string
	src  string
	pos  int
	line int
	bol  bool

	// macros holds the bodies of object-like macros. Function-like macros
	// are not expanded.
	macros map[string][]token
	conds  []cond
}

// tokenize splits C source into tokens. Object-like macros are expanded and
// branches of #if 0 / #if 1 conditionals that cannot be taken are dropped.
// Every other directive is ignored, and both branches of conditionals that
// depend on the environment are kept.
func tokenize(file, src string) ([]token, error) {
	src = normalizeNewlines(src)
	src = removeComments(src)

	lx := &lexer{file: file, src: src, line: 1, bol: true, macros: make(map[string][]token)}
	var toks []token
	for {
		tok, err := lx.next()
		if err != nil {
			return nil, err
		}
		if tok.kind == tokEOF {
			return append(toks, tok), nil
		}
		toks = lx.expand(tok, toks, make(map[string]bool))
	}
}

// expand appends tok to out, replacing object-like macros by their bodies.
// A macro is not expanded again inside its own expansion.
func (lx *lexer) expand(tok token, out []token, active map[string]bool) []token {
	body, ok := lx.macros[tok.text]
	if tok.kind != tokIdent || !ok || active[tok.text] {
		return append(out, tok)
	}

	active[tok.text] = true
	for _, b := range body {
		b.line = tok.line
		out = lx.expand(b, out, active)
	}
	delete(active, tok.text)

	return out
}

func (lx *lexer) next() (token, error) {
	for lx.pos < len(lx.src) {
		c := lx.src[lx.pos]
		switch {
		case c == '\n':
			lx.line++
			lx.pos++
			lx.bol = true
		case c == ' ' || c == '\t' || c == '\f' || c == '\v':
			lx.pos++
		case c == '\\' && lx.pos+1 < len(lx.src) && lx.src[lx.pos+1] == '\n':
			lx.pos += 2
			lx.line++
		case c == '#' && lx.bol:
			if err := lx.directive(lx.readDirective()); err != nil {
				return token{}, err
			}
		case lx.skipping():
			lx.skipLine()
		default:
			lx.bol = false
			return lx.scan()
		}
	}
	return token{kind: tokEOF, line: lx.line}, nil
}

// readDirective consumes a directive line, joining continuation lines, and
// returns its text without the leading '#'.
func (lx *lexer) readDirective() string {
	lx.pos++
	var b strings.Builder
	for lx.pos < len(lx.src) {
		c := lx.src[lx.pos]
		if c == '\\' && lx.pos+1 < len(lx.src) && lx.src[lx.pos+1] == '\n' {
			lx.pos += 2
			lx.line++
			b.WriteByte(' ')
			continue
		}
		if c == '\n' {
			break
		}
		b.WriteByte(c)
		lx.pos++
	}
	return b.String()
}

func (lx *lexer) skipLine() {
	for lx.pos < len(lx.src) && lx.src[lx.pos] != '\n' {
		lx.pos++
	}
}

// =============================================================================
// Directives
// =============================================================================

type condState int

const (
	// condUnknown keeps every branch of a conditional the lexer cannot
	// evaluate.
	condUnknown condState = iota
	condTaken
	condNotTaken
	// condDone skips the remaining branches once one has been taken.
	condDone
)

type cond struct {
	state  condState
	parent bool
}

func (c cond) skipping() bool {
	return c.parent || c.state == condNotTaken || c.state == condDone
}

func (lx *lexer) skipping() bool {
	if len(lx.conds) == 0 {
		return false
	}
	return lx.conds[len(lx.conds)-1].skipping()
}

func (lx *lexer) directive(text string) error {
	line := lx.line
	text = strings.TrimSpace(text)
	name, rest, _ := strings.Cut(text, " ")
	if i := strings.IndexAny(name, "\t("); i >= 0 {
		name, rest = name[:i], name[i:]+" "+rest
	}
	rest = strings.TrimSpace(rest)

	switch name {
	case "if":
		state := condUnknown
		switch rest {
		case "0":
			state = condNotTaken
		case "1":
			state = condTaken
		}
		lx.conds = append(lx.conds, cond{state: state, parent: lx.skipping()})
	case "ifdef", "ifndef":
		lx.conds = append(lx.conds, cond{state: condUnknown, parent: lx.skipping()})
	case "elif", "else":
		if len(lx.conds) == 0 {
			return &Error{File: lx.file, Line: line, Msg: "#" + name + " without #if"}
		}
		c := &lx.conds[len(lx.conds)-1]
		switch c.state {
		case condTaken:
			c.state = condDone
		case condNotTaken:
			c.state = condTaken
			if name == "elif" {
				c.state = condUnknown
			}
		}
	case "endif":
		if len(lx.conds) == 0 {
			return &Error{File: lx.file, Line: line, Msg: "#endif without #if"}
		}
		lx.conds = lx.conds[:len(lx.conds)-1]
	case "define":
		if !lx.skipping() {
			lx.define(rest, line)
		}
	case "undef":
		if !lx.skipping() {
			delete(lx.macros, rest)
		}
	}
	return nil
}

// define records an object-like macro. Function-like macros, where '('
// follows the name directly, are left alone.
func (lx *lexer) define(text string, line int) {
	end := 0
	for end < len(text) && isIdentChar(text[end]) {
		end++
	}
	name := text[:end]
	if name == "" || (end < len(text) && text[end] == '(') {
		return
	}

	body := &lexer{file: lx.file, src: text[end:], line: line}
	var toks []token
	for body.pos < len(body.src) {
		c := body.src[body.pos]
		if c == ' ' || c == '\t' {
			body.pos++
			continue
		}
		tok, err := body.scan()
		if err != nil {
			// Unbalanced quotes in a macro body only matter if it is used.
			return
		}
		toks = append(toks, tok)
	}
	lx.macros[name] = toks
}

func (lx *lexer) scan() (token, error) {
	start := lx.pos
	line := lx.line
	c := lx.src[lx.pos]

	switch {
	case isIdentStart(c):
		for lx.pos < len(lx.src) && isIdentChar(lx.src[lx.pos]) {
			lx.pos++
		}
		// L"..." and u8'x' prefixes
		if lx.pos < len(lx.src) && (lx.src[lx.pos] == '"' || lx.src[lx.pos] == '\'') {
			switch lx.src[start:lx.pos] {
			case "L", "u", "U", "u8":
				return lx.scanQuoted(start, line)
			}
		}
		return token{kind: tokIdent, text: lx.src[start:lx.pos], line: line}, nil
	case isDigit(c) || (c == '.' && lx.pos+1 < len(lx.src) && isDigit(lx.src[lx.pos+1])):
		for lx.pos < len(lx.src) {
			d := lx.src[lx.pos]
			if isIdentChar(d) || d == '.' {
				lx.pos++
				continue
			}
			if (d == '+' || d == '-') && strings.ContainsRune("eEpP", rune(lx.src[lx.pos-1])) {
				lx.pos++
				continue
			}
			break
		}
		return token{kind: tokNumber, text: lx.src[start:lx.pos], line: line}, nil
	case c == '"' || c == '\'':
		return lx.scanQuoted(start, line)
	}

	for _, p := range punctuators {
		if strings.HasPrefix(lx.src[lx.pos:], p) {
			lx.pos += len(p)
			return token{kind: tokPunct, text: p, line: line}, nil
		}
	}
	lx.pos++
	return token{kind: tokPunct, text: lx.src[start:lx.pos], line: line}, nil
}

func (lx *lexer) scanQuoted(start, line int) (token, error) {
	for lx.src[lx.pos] != '"' && lx.src[lx.pos] != '\'' {
		lx.pos++
	}
	quote := lx.src[lx.pos]
	lx.pos++
	for lx.pos < len(lx.src) {
		c := lx.src[lx.pos]
		switch c {
		case '\\':
			lx.pos += 2
			continue
		case '\n':
			return token{}, &Error{File: lx.file, Line: line, Msg: "unterminated literal"}
		case quote:
			lx.pos++
			return token{kind: tokString, text: lx.src[start:lx.pos], line: line}, nil
		}
		lx.pos++
	}
	return token{}, &Error{File: lx.file, Line: line, Msg: "unterminated literal"}
}

func isIdentStart(c byte) bool {
	return c == '_' || c == '$' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentChar(c byte) bool {
	return isIdentStart(c) || isDigit(c)
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
