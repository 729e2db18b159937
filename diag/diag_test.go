package diag_test

import (
	"testing"

	"github.com/lookbusy1344/ptx-parser/diag"
	"github.com/lookbusy1344/ptx-parser/token"
)

func TestListAccumulatesWithoutAborting(t *testing.T) {
	var l diag.List
	l.Push(diag.Todo, token.Position{Line: 1, Column: 1}, "eviction priority not lowered")
	l.Push(diag.ParseInt, token.Position{Line: 2, Column: 5}, "99999999999999999999")

	if l.Empty() {
		t.Fatalf("expected non-empty list")
	}
	if len(l.Errors) != 2 {
		t.Fatalf("got %d errors, want 2", len(l.Errors))
	}
	if l.Errors[0].Kind != diag.Todo {
		t.Fatalf("got kind %s", l.Errors[0].Kind)
	}
}

func TestEmptyListOnZeroValue(t *testing.T) {
	var l diag.List
	if !l.Empty() {
		t.Fatalf("zero-value list should be empty")
	}
	var nilList *diag.List
	if !nilList.Empty() {
		t.Fatalf("nil list should be empty")
	}
}

func TestUnrecognizedStatementCarriesSpan(t *testing.T) {
	var l diag.List
	l.PushSpan(diag.UnrecognizedStatement, token.Position{Line: 3, Column: 1, Offset: 40}, diag.Span{Start: 40, End: 55})
	if l.Errors[0].Span.Start != 40 || l.Errors[0].Span.End != 55 {
		t.Fatalf("span not preserved: %+v", l.Errors[0].Span)
	}
}

func TestKindString(t *testing.T) {
	if diag.Todo.String() != "todo" {
		t.Fatalf("got %q", diag.Todo.String())
	}
}
