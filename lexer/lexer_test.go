package lexer_test

import (
	"testing"

	"github.com/lookbusy1344/ptx-parser/lexer"
	"github.com/lookbusy1344/ptx-parser/token"
)

func typesOf(toks []token.Token) []token.Type {
	out := make([]token.Type, len(toks))
	for i, t := range toks {
		out[i] = t.Type
	}
	return out
}

func assertTypes(t *testing.T, got []token.Token, want []token.Type) {
	t.Helper()
	gotTypes := typesOf(got)
	if len(gotTypes) != len(want) {
		t.Fatalf("token count mismatch: got %v want %v", gotTypes, want)
	}
	for i := range want {
		if gotTypes[i] != want[i] {
			t.Fatalf("token %d: got %s want %s (full: %v)", i, gotTypes[i], want[i], gotTypes)
		}
	}
}

func TestNextTokenStructural(t *testing.T) {
	toks := lexer.TokenizeAll("st.global.b32 [a], b;")
	assertTypes(t, toks, []token.Type{
		token.Ident, token.DotGlobal, token.DotB32, token.LBracket, token.Ident,
		token.RBracket, token.Comma, token.Ident, token.Semicolon, token.EOF,
	})
}

func TestDotKeywordLongestMatch(t *testing.T) {
	toks := lexer.TokenizeAll(".L1::evict_first")
	assertTypes(t, toks, []token.Type{token.DotL1EvictFirst, token.EOF})
}

func TestDoubleColonQualifierAtomic(t *testing.T) {
	toks := lexer.TokenizeAll(".param::func")
	assertTypes(t, toks, []token.Type{token.DotParamFunc, token.EOF})
	if toks[0].Literal != "" {
		t.Fatalf("keyword token should carry no literal, got %q", toks[0].Literal)
	}
}

func TestBareDotFallsBackWhenNoKeywordMatches(t *testing.T) {
	toks := lexer.TokenizeAll(".zzzznotakeyword")
	if toks[0].Type != token.Dot {
		t.Fatalf("expected bare Dot, got %s", toks[0].Type)
	}
}

func TestNumericLiteralOrdering(t *testing.T) {
	cases := []struct {
		src  string
		want token.Type
	}{
		{"0f3F800000", token.F32},
		{"0d3FF0000000000000", token.F64},
		{"0x1A", token.Hex},
		{"42", token.Decimal},
		{"42U", token.Decimal},
	}
	for _, c := range cases {
		toks := lexer.TokenizeAll(c.src)
		if toks[0].Type != c.want {
			t.Errorf("%q: got %s want %s", c.src, toks[0].Type, c.want)
		}
		if toks[0].Literal != c.src {
			t.Errorf("%q: literal got %q", c.src, toks[0].Literal)
		}
	}
}

func TestIdentifierLowestPriority(t *testing.T) {
	toks := lexer.TokenizeAll("mov.u32 %r1, %r2;")
	assertTypes(t, toks, []token.Type{
		token.Ident, token.DotU32, token.Ident, token.Comma, token.Ident, token.Semicolon, token.EOF,
	})
	if toks[0].Literal != "mov" {
		t.Fatalf("opcode literal got %q", toks[0].Literal)
	}
	if toks[2].Literal != "%r1" {
		t.Fatalf("register literal got %q", toks[2].Literal)
	}
}

func TestStringLiteral(t *testing.T) {
	toks := lexer.TokenizeAll(`.pragma "nounroll";`)
	assertTypes(t, toks, []token.Type{token.DotPragma, token.String, token.Semicolon, token.EOF})
	if toks[1].Literal != "nounroll" {
		t.Fatalf("got %q", toks[1].Literal)
	}
}

func TestWhitespaceAndNewlinesTrackPosition(t *testing.T) {
	toks := lexer.TokenizeAll("mov.u32 %r1, %r2;\nret;")
	// find the `ret` token
	var ret token.Token
	for _, tk := range toks {
		if tk.Type == token.Ident && tk.Literal == "ret" {
			ret = tk
		}
	}
	if ret.Pos.Line != 2 {
		t.Fatalf("expected ret on line 2, got line %d", ret.Pos.Line)
	}
}

func TestUnrecognizedCharacterYieldsIllegalAndResumes(t *testing.T) {
	toks := lexer.TokenizeAll("mov.u32 %r1, ?%r2;")
	assertTypes(t, toks, []token.Type{
		token.Ident, token.DotU32, token.Ident, token.Comma,
		token.Illegal, token.Ident, token.Semicolon, token.EOF,
	})
	if toks[4].Literal != "?" {
		t.Fatalf("illegal token literal got %q, want %q", toks[4].Literal, "?")
	}
}

func TestPredicateAndVectorPunctuation(t *testing.T) {
	toks := lexer.TokenizeAll("@!p mov.v4.u32 {a,b,c,d}, e;")
	assertTypes(t, toks, []token.Type{
		token.At, token.Bang, token.Ident,
		token.Ident, token.DotV4, token.DotU32,
		token.LBrace, token.Ident, token.Comma, token.Ident, token.Comma,
		token.Ident, token.Comma, token.Ident, token.RBrace, token.Comma,
		token.Ident, token.Semicolon, token.EOF,
	})
}
