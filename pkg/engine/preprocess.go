package engine

import "strings"

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// preprocessSource rewrites scene script source before it reaches zygomys:
//
//  1. Keywords become marked string literals: :depth -> "__kw_depth".
//     Builtins recognise them by prefix, so keywords never collide with
//     user variables.
//  2. Kebab-case identifiers become snake case: make-hole -> make_hole.
//     zygomys reads a bare hyphen as subtraction. A hyphen only counts as
//     part of a name when it sits between an identifier character and a
//     letter, so (- 10 5) and (- x 1) are untouched.
//  3. Lisp line comments (; and ;;) become zygomys // comments.
//
// String literals, double-quoted or backticked, pass through unchanged.
func preprocessSource(source string) string {
	sc := &scanner{src: source}
	sc.out.Grow(len(source) + len(source)/4)
	for !sc.done() {
		c := sc.peek(0)
		switch {
		case c == '"' || c == '`':
			sc.quoted(c)
		case c == ';':
			sc.comment()
		case c == ':' && sc.peek(1) == '=':
			sc.copy(2)
		case c == ':' && isLetter(sc.peek(1)):
			sc.keyword()
		case c == '-' && sc.pos > 0 && isIdentChar(source[sc.pos-1]) && isLetter(sc.peek(1)):
			sc.out.WriteByte('_')
			sc.pos++
		default:
			sc.copy(1)
		}
	}
	return sc.out.String()
}

type scanner struct {
	src string
	pos int
	out strings.Builder
}

func (sc *scanner) done() bool { return sc.pos >= len(sc.src) }

// peek returns the byte n positions ahead, or 0 past the end.
func (sc *scanner) peek(n int) byte {
	if sc.pos+n < len(sc.src) {
		return sc.src[sc.pos+n]
	}
	return 0
}

func (sc *scanner) copy(n int) {
	end := min(sc.pos+n, len(sc.src))
	sc.out.WriteString(sc.src[sc.pos:end])
	sc.pos = end
}

// quoted copies a string literal including its delimiters. Backslash
// escapes are honoured inside double quotes only.
func (sc *scanner) quoted(delim byte) {
	sc.copy(1)
	for !sc.done() && sc.peek(0) != delim {
		if delim == '"' && sc.peek(0) == '\\' {
			sc.copy(2)
			continue
		}
		sc.copy(1)
	}
	sc.copy(1)
}

func (sc *scanner) comment() {
	sc.out.WriteString("//")
	for sc.peek(0) == ';' {
		sc.pos++
	}
	for !sc.done() && sc.peek(0) != '\n' {
		sc.copy(1)
	}
}

func (sc *scanner) keyword() {
	start := sc.pos + 1
	end := start
	for end < len(sc.src) && isKWChar(sc.src[end]) {
		end++
	}
	sc.out.WriteByte('"')
	sc.out.WriteString(kwPrefix)
	sc.out.WriteString(sc.src[start:end])
	sc.out.WriteByte('"')
	sc.pos = end
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}
