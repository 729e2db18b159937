// Package lexer turns PTX source text into a token.Token stream. It is a
// regex-driven scanner: each lexical class is a longest-match rule, tried in
// priority order at the current position, with identifiers lowest priority
// so they never pre-empt a dot-keyword (spec §4.B).
package lexer

import (
	"regexp"
	"sort"

	"github.com/lookbusy1344/ptx-parser/token"
)

var (
	reWhitespace = regexp.MustCompile(`^[ \t\r\n]+`)
	reF32        = regexp.MustCompile(`^0[fF][0-9A-Fa-f]{8}`)
	reF64        = regexp.MustCompile(`^0[dD][0-9A-Fa-f]{16}`)
	reHex        = regexp.MustCompile(`^0[xX][0-9A-Za-z]+U?`)
	reDecimal    = regexp.MustCompile(`^[0-9]+U?`)
	reString     = regexp.MustCompile(`^"[^"]*"`)
	reIdent      = regexp.MustCompile(`^([A-Za-z][A-Za-z0-9_$]*|[_$%][A-Za-z0-9_$]+)`)
)

// keywordsByLengthDesc is every recognized dot-keyword spelling, longest
// first, so a greedy scan at a '.' picks the longest legal match (e.g.
// ".L1::evict_first" over a hypothetical shorter prefix).
var keywordsByLengthDesc = func() []string {
	var all []string
	for t := token.Type(0); ; t++ {
		if !token.IsDotKeyword(t) {
			if int(t) > 4096 {
				break
			}
			continue
		}
		all = append(all, token.Text(t))
	}
	sort.Slice(all, func(i, j int) bool { return len(all[i]) > len(all[j]) })
	return all
}()

type structuralRule struct {
	text string
	typ  token.Type
}

// structuralRules covers every single/double-character punctuation token.
// Ordered so multi-character runs never match as their single-character
// prefix (not currently needed since no two-char structural token in this
// grammar shares a prefix with a one-char one, but kept ordered regardless).
var structuralRules = []structuralRule{
	{",", token.Comma},
	{":", token.Colon},
	{";", token.Semicolon},
	{"@", token.At},
	{"!", token.Bang},
	{"|", token.Pipe},
	{"(", token.LParen},
	{")", token.RParen},
	{"[", token.LBracket},
	{"]", token.RBracket},
	{"{", token.LBrace},
	{"}", token.RBrace},
	{"<", token.Lt},
	{">", token.Gt},
	{"-", token.Minus},
	{"+", token.Plus},
}

// Lexer scans PTX source text into tokens.
type Lexer struct {
	input string
	pos   int
	line  int
	col   int
}

// New creates a lexer over source.
func New(source string) *Lexer {
	return &Lexer{input: source, pos: 0, line: 1, col: 1}
}

func (l *Lexer) currentPos() token.Position {
	return token.Position{Line: l.line, Column: l.col, Offset: l.pos}
}

// advance moves pos forward by n bytes, tracking line/column.
func (l *Lexer) advance(n int) {
	for i := 0; i < n; i++ {
		if l.input[l.pos+i] == '\n' {
			l.line++
			l.col = 1
		} else {
			l.col++
		}
	}
	l.pos += n
}

// NextToken returns the next token, or a Token with Type token.EOF at end of
// input. It never panics on an unexpected character; instead it returns a
// token.Illegal carrying the offending byte as Literal and keeps scanning
// from the next byte, so a single bad byte doesn't abort lexing of the rest
// of the file. The lexer itself does not recover from the error (spec
// §4.B) — it only keeps itself total. TokenizeAll's caller (module.Parse)
// is the one that turns a token.Illegal into a fatal SyntaxError.
func (l *Lexer) NextToken() token.Token {
	if m := reWhitespace.FindString(l.input[l.pos:]); m != "" {
		l.advance(len(m))
	}

	if l.pos >= len(l.input) {
		return token.Token{Type: token.EOF, Pos: l.currentPos()}
	}

	pos := l.currentPos()
	rest := l.input[l.pos:]

	if rest[0] == '.' {
		for _, kw := range keywordsByLengthDesc {
			if hasPrefixWordSafe(rest, kw) {
				l.advance(len(kw))
				return token.Token{Type: mustLookup(kw), Pos: pos}
			}
		}
		l.advance(1)
		return token.Token{Type: token.Dot, Pos: pos}
	}

	if m := reF32.FindString(rest); m != "" {
		l.advance(len(m))
		return token.Token{Type: token.F32, Literal: m, Pos: pos}
	}
	if m := reF64.FindString(rest); m != "" {
		l.advance(len(m))
		return token.Token{Type: token.F64, Literal: m, Pos: pos}
	}
	if m := reHex.FindString(rest); m != "" {
		l.advance(len(m))
		return token.Token{Type: token.Hex, Literal: m, Pos: pos}
	}
	if m := reDecimal.FindString(rest); m != "" {
		l.advance(len(m))
		return token.Token{Type: token.Decimal, Literal: m, Pos: pos}
	}
	if m := reString.FindString(rest); m != "" {
		l.advance(len(m))
		return token.Token{Type: token.String, Literal: m[1 : len(m)-1], Pos: pos}
	}
	if m := reIdent.FindString(rest); m != "" {
		l.advance(len(m))
		return token.Token{Type: token.Ident, Literal: m, Pos: pos}
	}

	for _, sr := range structuralRules {
		if rest[0] == sr.text[0] {
			l.advance(1)
			return token.Token{Type: sr.typ, Pos: pos}
		}
	}

	// Unrecognized character: emit it as token.Illegal and skip past it so
	// the rest of the file still lexes.
	l.advance(1)
	return token.Token{Type: token.Illegal, Literal: string(rest[0]), Pos: pos}
}

// hasPrefixWordSafe reports whether s starts with kw and, if kw ends in a
// letter/underscore/digit, the next byte of s (if any) is not itself an
// identifier continuation character — this stops ".local" from matching the
// ".loc" keyword's prefix (longest-match already prevents this in practice
// since keywords are tried longest-first, but a keyword set that happened to
// contain both a keyword and its own prefix would otherwise mismatch on the
// shorter one never being reached; this guard makes that independent of
// table order).
func hasPrefixWordSafe(s, kw string) bool {
	if len(s) < len(kw) || s[:len(kw)] != kw {
		return false
	}
	if len(s) == len(kw) {
		return true
	}
	next := s[len(kw)]
	last := kw[len(kw)-1]
	if isIdentByte(last) && isIdentByte(next) {
		return false
	}
	return true
}

func isIdentByte(b byte) bool {
	return b == '_' || b == '$' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

func mustLookup(spelling string) token.Type {
	t, ok := token.Lookup(spelling)
	if !ok {
		panic("lexer: keyword table out of sync: " + spelling)
	}
	return t
}

// TokenizeAll scans the entire input into a token slice terminated by EOF.
func TokenizeAll(source string) []token.Token {
	l := New(source)
	var out []token.Token
	for {
		t := l.NextToken()
		out = append(out, t)
		if t.Type == token.EOF {
			break
		}
	}
	return out
}
