// Package pstream is the generic token-stream combinator runtime (spec
// §4.D): a forward Stream carrying a cursor and a mutable diagnostic
// buffer, the primitive combinators built over it, and a ReverseStream view
// reserved for trailing-from-the-end matching. Every combinator restores
// the cursor to its entry position on a non-consuming failure, so `Alt` and
// `Opt` can retry sibling alternatives safely.
package pstream

import (
	"github.com/lookbusy1344/ptx-parser/diag"
	"github.com/lookbusy1344/ptx-parser/token"
)

// Stream holds the token slice, the current cursor, and the diagnostic
// buffer threaded through an entire parse.
type Stream struct {
	tokens []token.Token
	pos    int
	Diag   *diag.List
}

// New creates a Stream over tokens, accumulating diagnostics into d.
func New(tokens []token.Token, d *diag.List) *Stream {
	return &Stream{tokens: tokens, pos: 0, Diag: d}
}

// Peek returns the token at the cursor without consuming it. Past the end
// of input it returns an EOF token.
func (s *Stream) Peek() token.Token {
	if s.pos < len(s.tokens) {
		return s.tokens[s.pos]
	}
	if len(s.tokens) > 0 {
		return token.Token{Type: token.EOF, Pos: s.tokens[len(s.tokens)-1].Pos}
	}
	return token.Token{Type: token.EOF}
}

// AtEnd reports whether the cursor has reached the trailing EOF token (or
// the end of a token slice with no explicit EOF entry).
func (s *Stream) AtEnd() bool {
	return s.Peek().Type == token.EOF
}

// Checkpoint captures the current cursor for a later Reset.
func (s *Stream) Checkpoint() int { return s.pos }

// Reset restores the cursor to a previously captured checkpoint.
func (s *Stream) Reset(cp int) { s.pos = cp }

// Parser is a function from a Stream to a value; the bool reports success.
// A Parser that returns false must leave the stream's cursor exactly where
// it found it (every combinator below upholds this for the parsers it
// composes).
type Parser[T any] func(s *Stream) (T, bool)

// Any pops and returns one token, failing only at end of input.
func Any(s *Stream) (token.Token, bool) {
	if s.pos >= len(s.tokens) {
		return token.Token{}, false
	}
	t := s.tokens[s.pos]
	s.pos++
	return t, true
}

// Literal matches exactly one token of the given type.
func Literal(want token.Type) Parser[token.Token] {
	return func(s *Stream) (token.Token, bool) {
		cp := s.Checkpoint()
		t, ok := Any(s)
		if !ok || t.Type != want {
			s.Reset(cp)
			return token.Token{}, false
		}
		return t, true
	}
}

// VerifyMap pops one token and succeeds with f's mapped value when f
// reports true.
func VerifyMap[T any](f func(token.Token) (T, bool)) Parser[T] {
	return func(s *Stream) (T, bool) {
		cp := s.Checkpoint()
		t, ok := Any(s)
		if !ok {
			var zero T
			return zero, false
		}
		v, ok2 := f(t)
		if !ok2 {
			s.Reset(cp)
			return v, false
		}
		return v, true
	}
}

// Opt runs p; on failure it returns (nil, true) without consuming input, on
// success it returns a pointer to the value.
func Opt[T any](p Parser[T]) Parser[*T] {
	return func(s *Stream) (*T, bool) {
		cp := s.Checkpoint()
		v, ok := p(s)
		if !ok {
			s.Reset(cp)
			return nil, true
		}
		return &v, true
	}
}

// Alt tries each parser in order, returning the first success. It fails
// only if every alternative fails, and never leaves partial consumption
// behind from a failed alternative.
func Alt[T any](ps ...Parser[T]) Parser[T] {
	return func(s *Stream) (T, bool) {
		for _, p := range ps {
			cp := s.Checkpoint()
			v, ok := p(s)
			if ok {
				return v, true
			}
			s.Reset(cp)
		}
		var zero T
		return zero, false
	}
}

// Dispatch peeks the next token's type and runs the parser registered for
// it, giving O(1) alternative selection instead of Alt's linear scan. If no
// entry matches, fallback runs (or Dispatch fails if fallback is nil).
func Dispatch[T any](table map[token.Type]Parser[T], fallback Parser[T]) Parser[T] {
	return func(s *Stream) (T, bool) {
		next := s.Peek()
		if p, ok := table[next.Type]; ok {
			return p(s)
		}
		if fallback != nil {
			return fallback(s)
		}
		var zero T
		return zero, false
	}
}

// Pair is the result of Seq2.
type Pair[A, B any] struct {
	First  A
	Second B
}

// Seq2 runs pa then pb, conjunctively; failure of either restores the
// cursor to before pa ran.
func Seq2[A, B any](pa Parser[A], pb Parser[B]) Parser[Pair[A, B]] {
	return func(s *Stream) (Pair[A, B], bool) {
		cp := s.Checkpoint()
		a, ok := pa(s)
		if !ok {
			return Pair[A, B]{}, false
		}
		b, ok := pb(s)
		if !ok {
			s.Reset(cp)
			return Pair[A, B]{}, false
		}
		return Pair[A, B]{First: a, Second: b}, true
	}
}

// Triple is the result of Seq3.
type Triple[A, B, C any] struct {
	First  A
	Second B
	Third  C
}

// Seq3 runs pa, pb, pc conjunctively.
func Seq3[A, B, C any](pa Parser[A], pb Parser[B], pc Parser[C]) Parser[Triple[A, B, C]] {
	return func(s *Stream) (Triple[A, B, C], bool) {
		cp := s.Checkpoint()
		a, ok := pa(s)
		if !ok {
			return Triple[A, B, C]{}, false
		}
		b, ok := pb(s)
		if !ok {
			s.Reset(cp)
			return Triple[A, B, C]{}, false
		}
		c, ok := pc(s)
		if !ok {
			s.Reset(cp)
			return Triple[A, B, C]{}, false
		}
		return Triple[A, B, C]{First: a, Second: b, Third: c}, true
	}
}

// Delimited matches open, then p, then closeP, returning only p's value.
func Delimited[O, P, C any](open Parser[O], p Parser[P], closeP Parser[C]) Parser[P] {
	return func(s *Stream) (P, bool) {
		cp := s.Checkpoint()
		if _, ok := open(s); !ok {
			var zero P
			return zero, false
		}
		v, ok := p(s)
		if !ok {
			s.Reset(cp)
			var zero P
			return zero, false
		}
		if _, ok := closeP(s); !ok {
			s.Reset(cp)
			var zero P
			return zero, false
		}
		return v, true
	}
}

// Preceded matches a, then p, returning only p's value.
func Preceded[A, P any](a Parser[A], p Parser[P]) Parser[P] {
	return func(s *Stream) (P, bool) {
		cp := s.Checkpoint()
		if _, ok := a(s); !ok {
			var zero P
			return zero, false
		}
		v, ok := p(s)
		if !ok {
			s.Reset(cp)
			var zero P
			return zero, false
		}
		return v, true
	}
}

// Terminated matches p, then b, returning only p's value.
func Terminated[P, B any](p Parser[P], b Parser[B]) Parser[P] {
	return func(s *Stream) (P, bool) {
		cp := s.Checkpoint()
		v, ok := p(s)
		if !ok {
			return v, false
		}
		if _, ok := b(s); !ok {
			s.Reset(cp)
			var zero P
			return zero, false
		}
		return v, true
	}
}

// Separated parses between min and max (inclusive; max<=0 means unbounded)
// occurrences of p separated by sep.
func Separated[T, S any](min, max int, p Parser[T], sep Parser[S]) Parser[[]T] {
	return func(s *Stream) ([]T, bool) {
		cp := s.Checkpoint()
		var out []T
		v, ok := p(s)
		if !ok {
			if min == 0 {
				return out, true
			}
			s.Reset(cp)
			return nil, false
		}
		out = append(out, v)
		for max <= 0 || len(out) < max {
			cpi := s.Checkpoint()
			if _, ok := sep(s); !ok {
				s.Reset(cpi)
				break
			}
			v, ok := p(s)
			if !ok {
				s.Reset(cpi)
				break
			}
			out = append(out, v)
		}
		if len(out) < min {
			s.Reset(cp)
			return nil, false
		}
		return out, true
	}
}

// Repeat parses between min and max (max<=0 means unbounded) consecutive
// occurrences of p.
func Repeat[T any](min, max int, p Parser[T]) Parser[[]T] {
	return func(s *Stream) ([]T, bool) {
		cp := s.Checkpoint()
		var out []T
		for max <= 0 || len(out) < max {
			cpi := s.Checkpoint()
			v, ok := p(s)
			if !ok {
				s.Reset(cpi)
				break
			}
			out = append(out, v)
		}
		if len(out) < min {
			s.Reset(cp)
			return nil, false
		}
		return out, true
	}
}

// RepeatWithoutNone repeats p (which yields *T, e.g. via Opt) until it
// fails or succeeds without consuming input, filtering out nil results.
// Used for statement/directive lists
// whose items may be no-ops (debug directives, pragmas) that parse
// successfully but contribute nothing to the AST.
func RepeatWithoutNone[T any](p Parser[*T]) Parser[[]T] {
	return func(s *Stream) ([]T, bool) {
		var out []T
		for {
			cpi := s.Checkpoint()
			v, ok := p(s)
			if !ok {
				s.Reset(cpi)
				break
			}
			if v != nil {
				out = append(out, *v)
			}
			if s.Checkpoint() == cpi {
				break
			}
		}
		return out, true
	}
}

// ErrResult is the sum type `Ok(v) | Err(v, diag)` that an inner parser
// passed to TakeError must return: Err is nil on the Ok path, set to the
// diagnostic to record on the Err path, with Value always holding the
// well-typed fallback to surface either way.
type ErrResult[T any] struct {
	Value T
	Err   *diag.PtxError
}

// TakeError runs p (which is total: it can't itself fail) and, when p
// reports a diagnostic, pushes it onto the stream's diagnostic buffer and
// returns the fallback value. The surrounding parse stays total: TakeError
// only fails if p's own Parser[ErrResult[T]] signature reports false, which
// by convention an inner parser built with TakeError never does.
func TakeError[T any](p Parser[ErrResult[T]]) Parser[T] {
	return func(s *Stream) (T, bool) {
		r, ok := p(s)
		if !ok {
			var zero T
			return zero, false
		}
		if r.Err != nil && s.Diag != nil {
			s.Diag.Errors = append(s.Diag.Errors, *r.Err)
		}
		return r.Value, true
	}
}

// ReverseStream iterates a token slice from the end toward the beginning,
// with its own offset arithmetic (spec §4.D/§9: reserved for instruction
// rule dispatch that is easier to match trailing-in). No opcode in the
// current rule tables needs it (instr parses trailing operands forwards, in
// stOperands/ldOperands); it is kept
// available rather than silently dropped because §4.D requires the
// primitive to exist independent of whether a current rule calls it.
type ReverseStream struct {
	tokens []token.Token
	pos    int // tokens[:pos] remain; Next yields tokens[pos-1]
}

// NewReverse creates a ReverseStream positioned after the last token.
func NewReverse(tokens []token.Token) *ReverseStream {
	return &ReverseStream{tokens: tokens, pos: len(tokens)}
}

// Next yields the token immediately before the cursor, walking backward.
func (r *ReverseStream) Next() (token.Token, bool) {
	if r.pos <= 0 {
		return token.Token{}, false
	}
	r.pos--
	return r.tokens[r.pos], true
}

// Checkpoint/Reset mirror Stream's, for backtracking reverse matches.
func (r *ReverseStream) Checkpoint() int { return r.pos }
func (r *ReverseStream) Reset(cp int)    { r.pos = cp }

// Remaining returns the forward-ordered slice of tokens not yet consumed
// from the end, i.e. tokens[:pos].
func (r *ReverseStream) Remaining() []token.Token {
	return r.tokens[:r.pos]
}
