package instr

import (
	"strconv"
	"strings"

	"github.com/lookbusy1344/ptx-parser/ast"
	"github.com/lookbusy1344/ptx-parser/diag"
	"github.com/lookbusy1344/ptx-parser/pstream"
	"github.com/lookbusy1344/ptx-parser/token"
)

// vecIndex maps a vector lane letter to its canonical 0..3 index (spec §3:
// x|r→0, y|g→1, z|b→2, w|a→3).
func vecIndex(letter string) (int, bool) {
	switch letter {
	case "x", "r":
		return 0, true
	case "y", "g":
		return 1, true
	case "z", "b":
		return 2, true
	case "w", "a":
		return 3, true
	}
	return 0, false
}

// parseOperand parses one ParsedOperand: a packed vector literal, an
// immediate, a bare register, or a register's vector lane.
func parseOperand(s *pstream.Stream, d *diag.List) (ast.ParsedOperand, bool) {
	if s.Peek().Type == token.LBrace {
		return parseVecPack(s, d)
	}
	if op, ok := tryParseImmediate(s, d); ok {
		return op, true
	}
	if s.Peek().Type == token.Ident {
		regTok, _ := pstream.Any(s)
		if s.Peek().Type == token.Dot {
			cp := s.Checkpoint()
			pstream.Any(s)
			if letterTok := s.Peek(); letterTok.Type == token.Ident && len(letterTok.Literal) == 1 {
				pstream.Any(s)
				idx, ok := vecIndex(strings.ToLower(letterTok.Literal))
				if !ok {
					d.Push(diag.WrongVectorElement, letterTok.Pos, letterTok.Literal)
					idx = 0
				}
				return ast.ParsedOperand{Kind: ast.OperandVecMember, Reg: regTok.Literal, VecIndex: idx}, true
			}
			s.Reset(cp)
		}
		return ast.ParsedOperand{Kind: ast.OperandReg, Reg: regTok.Literal}, true
	}
	return ast.ParsedOperand{}, false
}

// parseMemRef parses a bracketed memory reference: `[a]` or `[a+N]`/`[a-N]`.
func parseMemRef(s *pstream.Stream, d *diag.List) (ast.ParsedOperand, bool) {
	cp := s.Checkpoint()
	if _, ok := pstream.Literal(token.LBracket)(s); !ok {
		return ast.ParsedOperand{}, false
	}
	base, ok := pstream.Literal(token.Ident)(s)
	if !ok {
		s.Reset(cp)
		return ast.ParsedOperand{}, false
	}
	op := ast.ParsedOperand{Kind: ast.OperandReg, Reg: base.Literal}
	if next := s.Peek(); next.Type == token.Plus || next.Type == token.Minus {
		neg := next.Type == token.Minus
		pstream.Any(s)
		numTok, ok := pstream.Literal(token.Decimal)(s)
		if !ok {
			s.Reset(cp)
			return ast.ParsedOperand{}, false
		}
		n, err := strconv.ParseInt(strings.TrimSuffix(numTok.Literal, "U"), 10, 64)
		if err != nil {
			d.Push(diag.ParseInt, numTok.Pos, numTok.Literal)
			n = 0
		}
		if neg {
			n = -n
		}
		op = ast.ParsedOperand{Kind: ast.OperandRegOffset, Reg: base.Literal, Offset: n}
	}
	if _, ok := pstream.Literal(token.RBracket)(s); !ok {
		s.Reset(cp)
		return ast.ParsedOperand{}, false
	}
	return op, true
}

// parseVecPack parses `{a,b,c,d}` or `{a,b}` — a packed vector literal.
func parseVecPack(s *pstream.Stream, d *diag.List) (ast.ParsedOperand, bool) {
	cp := s.Checkpoint()
	if _, ok := pstream.Literal(token.LBrace)(s); !ok {
		return ast.ParsedOperand{}, false
	}
	var regs []string
	first, ok := pstream.Literal(token.Ident)(s)
	if !ok {
		s.Reset(cp)
		return ast.ParsedOperand{}, false
	}
	regs = append(regs, first.Literal)
	for s.Peek().Type == token.Comma {
		pstream.Any(s)
		t, ok := pstream.Literal(token.Ident)(s)
		if !ok {
			s.Reset(cp)
			return ast.ParsedOperand{}, false
		}
		regs = append(regs, t.Literal)
	}
	if _, ok := pstream.Literal(token.RBrace)(s); !ok {
		s.Reset(cp)
		return ast.ParsedOperand{}, false
	}
	if len(regs) != 2 && len(regs) != 4 {
		return ast.ParsedOperand{}, false
	}
	return ast.ParsedOperand{Kind: ast.OperandVecPack, VecRegs: regs}, true
}

// tryParseImmediate parses an optionally-negated numeric literal operand.
func tryParseImmediate(s *pstream.Stream, d *diag.List) (ast.ParsedOperand, bool) {
	cp := s.Checkpoint()
	neg := false
	if s.Peek().Type == token.Minus {
		pstream.Any(s)
		neg = true
	}
	next := s.Peek()
	switch next.Type {
	case token.F32:
		pstream.Any(s)
		bits, err := strconv.ParseUint(next.Literal[2:], 16, 32)
		if err != nil {
			d.Push(diag.ParseFloat, next.Pos, next.Literal)
		}
		return ast.ParsedOperand{Kind: ast.OperandImm, Imm: ast.ImmediateValue{Kind: ast.ImmF32, F32Bits: uint32(bits)}}, true
	case token.F64:
		pstream.Any(s)
		bits, err := strconv.ParseUint(next.Literal[2:], 16, 64)
		if err != nil {
			d.Push(diag.ParseFloat, next.Pos, next.Literal)
		}
		return ast.ParsedOperand{Kind: ast.OperandImm, Imm: ast.ImmediateValue{Kind: ast.ImmF64, F64Bits: bits}}, true
	case token.Hex, token.Decimal:
		pstream.Any(s)
		return ast.ParsedOperand{Kind: ast.OperandImm, Imm: parseIntLiteral(next.Literal, neg, next.Pos, d)}, true
	}
	if neg {
		s.Reset(cp)
	}
	return ast.ParsedOperand{}, false
}

// parseIntLiteral implements the integer signedness policy (spec §3/§8.6):
// a leading '-' forces S64; a trailing 'U' forces U64; otherwise S64 is
// tried first, falling back to U64 on overflow. A literal that overflows
// both pushes ParseInt and returns the zero value of the chosen kind.
func parseIntLiteral(lit string, neg bool, pos token.Position, d *diag.List) ast.ImmediateValue {
	text := strings.TrimSuffix(lit, "U")
	unsigned := text != lit
	base := 10
	if strings.HasPrefix(text, "0x") || strings.HasPrefix(text, "0X") {
		base = 16
		text = text[2:]
	}

	if neg {
		n, err := strconv.ParseInt(text, base, 64)
		if err != nil {
			d.Push(diag.ParseInt, pos, lit)
			return ast.ImmediateValue{Kind: ast.ImmS64}
		}
		return ast.ImmediateValue{Kind: ast.ImmS64, S64: -n}
	}
	if unsigned {
		n, err := strconv.ParseUint(text, base, 64)
		if err != nil {
			d.Push(diag.ParseInt, pos, lit)
			return ast.ImmediateValue{Kind: ast.ImmU64}
		}
		return ast.ImmediateValue{Kind: ast.ImmU64, U64: n}
	}
	if n, err := strconv.ParseInt(text, base, 64); err == nil {
		return ast.ImmediateValue{Kind: ast.ImmS64, S64: n}
	}
	n, err := strconv.ParseUint(text, base, 64)
	if err != nil {
		d.Push(diag.ParseInt, pos, lit)
		return ast.ImmediateValue{Kind: ast.ImmU64}
	}
	return ast.ImmediateValue{Kind: ast.ImmU64, U64: n}
}
