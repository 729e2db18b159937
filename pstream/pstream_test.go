package pstream_test

import (
	"testing"

	"github.com/lookbusy1344/ptx-parser/diag"
	"github.com/lookbusy1344/ptx-parser/lexer"
	"github.com/lookbusy1344/ptx-parser/pstream"
	"github.com/lookbusy1344/ptx-parser/token"
)

func newStream(src string) *pstream.Stream {
	return pstream.New(lexer.TokenizeAll(src), &diag.List{})
}

func TestLiteralConsumesOnMatchAndRestoresOnMismatch(t *testing.T) {
	s := newStream("mov")
	if _, ok := pstream.Literal(token.Comma)(s); ok {
		t.Fatalf("expected mismatch to fail")
	}
	if s.Checkpoint() != 0 {
		t.Fatalf("failed literal must not consume, cursor at %d", s.Checkpoint())
	}
	if _, ok := pstream.Literal(token.Ident)(s); !ok {
		t.Fatalf("expected Ident to match")
	}
	if s.Checkpoint() != 1 {
		t.Fatalf("successful literal must consume one token, cursor at %d", s.Checkpoint())
	}
}

func TestAltTriesInOrderAndRestoresBetweenFailures(t *testing.T) {
	s := newStream(".global")
	p := pstream.Alt(pstream.Literal(token.DotLocal), pstream.Literal(token.DotGlobal))
	if _, ok := p(s); !ok {
		t.Fatalf("expected second alternative to match")
	}
	if s.Checkpoint() != 1 {
		t.Fatalf("expected one token consumed")
	}
}

func TestOptNeverFails(t *testing.T) {
	s := newStream(";")
	p := pstream.Opt(pstream.Literal(token.DotGlobal))
	v, ok := p(s)
	if !ok {
		t.Fatalf("Opt must always succeed")
	}
	if v != nil {
		t.Fatalf("expected nil on non-match")
	}
	if s.Checkpoint() != 0 {
		t.Fatalf("Opt must not consume on non-match")
	}
}

func TestSeq2RollsBackOnSecondFailure(t *testing.T) {
	s := newStream("mov ;")
	p := pstream.Seq2(pstream.Literal(token.Ident), pstream.Literal(token.DotGlobal))
	if _, ok := p(s); ok {
		t.Fatalf("expected failure")
	}
	if s.Checkpoint() != 0 {
		t.Fatalf("Seq2 must roll back fully on partial match, cursor at %d", s.Checkpoint())
	}
}

func TestDelimited(t *testing.T) {
	s := newStream("[a]")
	p := pstream.Delimited(pstream.Literal(token.LBracket), pstream.Literal(token.Ident), pstream.Literal(token.RBracket))
	if _, ok := p(s); !ok {
		t.Fatalf("expected delimited match")
	}
}

func TestSeparatedRespectsMinMax(t *testing.T) {
	s := newStream("a, b, c")
	p := pstream.Separated(1, 0, pstream.Literal(token.Ident), pstream.Literal(token.Comma))
	out, ok := p(s)
	if !ok || len(out) != 3 {
		t.Fatalf("got %v ok=%v", out, ok)
	}
}

func TestRepeatWithoutNoneFiltersNils(t *testing.T) {
	s := newStream("a a a")
	p := pstream.RepeatWithoutNone(pstream.Opt(pstream.Literal(token.Ident)))
	out, ok := p(s)
	if !ok || len(out) != 3 {
		t.Fatalf("got %v ok=%v", out, ok)
	}
}

func TestTakeErrorPushesDiagnosticAndReturnsFallback(t *testing.T) {
	var d diag.List
	s := pstream.New(lexer.TokenizeAll("42"), &d)
	inner := func(s *pstream.Stream) (pstream.ErrResult[int], bool) {
		_, _ = pstream.Any(s)
		return pstream.ErrResult[int]{Value: 0, Err: &diag.PtxError{Kind: diag.ParseInt, Detail: "overflow"}}, true
	}
	v, ok := pstream.TakeError(inner)(s)
	if !ok || v != 0 {
		t.Fatalf("expected fallback 0, got %d ok=%v", v, ok)
	}
	if len(d.Errors) != 1 || d.Errors[0].Kind != diag.ParseInt {
		t.Fatalf("expected one ParseInt diagnostic, got %v", d.Errors)
	}
}

func TestReverseStreamWalksBackward(t *testing.T) {
	toks := lexer.TokenizeAll("a, b, c")
	r := pstream.NewReverse(toks[:len(toks)-1]) // drop the trailing EOF token
	first, ok := r.Next()
	if !ok || first.Literal != "c" {
		t.Fatalf("expected last token 'c' first, got %+v", first)
	}
}

func TestDispatchPicksRegisteredParser(t *testing.T) {
	s := newStream(".global x")
	table := map[token.Type]pstream.Parser[string]{
		token.DotGlobal: func(s *pstream.Stream) (string, bool) {
			pstream.Any(s)
			return "global", true
		},
	}
	p := pstream.Dispatch(table, nil)
	v, ok := p(s)
	if !ok || v != "global" {
		t.Fatalf("got %q ok=%v", v, ok)
	}
}
