// Package diag collects non-fatal parse diagnostics. It generalizes the
// teacher's accumulate-without-abort error list (parser.ErrorList) to the
// PtxError kinds this grammar can raise, so a single malformed modifier
// combination doesn't abort parsing of the rest of the file.
package diag

import (
	"fmt"
	"strings"

	"github.com/lookbusy1344/ptx-parser/token"
)

// Kind tags the category of a diagnostic, mirroring the original parser's
// PtxError enum.
type Kind int

const (
	ParseInt Kind = iota
	ParseFloat
	Todo
	SyntaxError
	NonF32Ftz
	WrongArrayType
	WrongVectorElement
	MultiArrayVariable
	ZeroDimensionArray
	ArrayInitializer
	NonExternPointer
	UnrecognizedStatement
	UnrecognizedDirective
)

var kindNames = map[Kind]string{
	ParseInt:              "parse-int",
	ParseFloat:             "parse-float",
	Todo:                   "todo",
	SyntaxError:            "syntax-error",
	NonF32Ftz:              "non-f32-ftz",
	WrongArrayType:         "wrong-array-type",
	WrongVectorElement:     "wrong-vector-element",
	MultiArrayVariable:     "multi-array-variable",
	ZeroDimensionArray:     "zero-dimension-array",
	ArrayInitializer:       "array-initializer",
	NonExternPointer:       "non-extern-pointer",
	UnrecognizedStatement:  "unrecognized-statement",
	UnrecognizedDirective:  "unrecognized-directive",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Span marks a byte range in source text, used by Unrecognized{Statement,
// Directive} to report exactly what was skipped.
type Span struct {
	Start int
	End   int
}

// PtxError is one accumulated diagnostic: a kind, its source position, and
// an optional human-readable detail (e.g. the text that failed int/float
// parsing, or the span of an unrecognized statement).
type PtxError struct {
	Kind   Kind
	Pos    token.Position
	Detail string
	Span   Span
}

func (e PtxError) String() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Pos, e.Kind, e.Detail)
	}
	return fmt.Sprintf("%s: %s", e.Pos, e.Kind)
}

// List accumulates diagnostics encountered while parsing. It never aborts
// a parse by itself; callers decide whether an accumulated list renders the
// resulting AST unusable.
type List struct {
	Errors []PtxError
}

// Push appends a diagnostic.
func (l *List) Push(kind Kind, pos token.Position, detail string) {
	l.Errors = append(l.Errors, PtxError{Kind: kind, Pos: pos, Detail: detail})
}

// PushSpan appends a diagnostic carrying a byte-range span, used for
// UnrecognizedStatement/UnrecognizedDirective.
func (l *List) PushSpan(kind Kind, pos token.Position, span Span) {
	l.Errors = append(l.Errors, PtxError{Kind: kind, Pos: pos, Span: span})
}

// Empty reports whether no diagnostics were recorded.
func (l *List) Empty() bool {
	return l == nil || len(l.Errors) == 0
}

func (l *List) String() string {
	if l.Empty() {
		return ""
	}
	var b strings.Builder
	for i, e := range l.Errors {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(e.String())
	}
	return b.String()
}
