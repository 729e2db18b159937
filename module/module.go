// Package module is the directives-and-statements glue (spec §4.F): it
// assembles the token stream, diagnostic buffer, and instruction rule
// compiler into the one public parse entry point, Parse.
package module

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/lookbusy1344/ptx-parser/ast"
	"github.com/lookbusy1344/ptx-parser/diag"
	"github.com/lookbusy1344/ptx-parser/instr"
	"github.com/lookbusy1344/ptx-parser/lexer"
	"github.com/lookbusy1344/ptx-parser/pstream"
	"github.com/lookbusy1344/ptx-parser/token"
)

// ParseError is a fatal, structural parse failure (spec §7, tier 1): an
// unexpected token where no alternative matches, premature EOF, or
// trailing input after the module. Only the first such error is reported;
// no AST is returned alongside it.
type ParseError struct {
	Pos     token.Position
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %s", e.Pos, e.Message)
}

// Parse is the single public entry point: a pure function from PTX source
// text to an AST plus non-fatal diagnostics, or a fatal *ParseError.
func Parse(source string) (*ast.Module, *diag.List, error) {
	toks := lexer.TokenizeAll(source)
	d := &diag.List{}
	for _, t := range toks {
		if t.Type == token.Illegal {
			d.Push(diag.SyntaxError, t.Pos, t.Literal)
			return nil, d, &ParseError{Pos: t.Pos, Message: fmt.Sprintf("unexpected character %q", t.Literal)}
		}
	}
	s := pstream.New(toks, d)
	p := &parser{s: s, d: d, dispatcher: instr.NewDispatcher()}

	mod, ok := p.parseModule()
	if !ok {
		return nil, d, &ParseError{Pos: s.Peek().Pos, Message: "failed to parse module"}
	}
	if !s.AtEnd() {
		return nil, d, &ParseError{Pos: s.Peek().Pos, Message: "trailing input after module"}
	}
	return mod, d, nil
}

type parser struct {
	s          *pstream.Stream
	d          *diag.List
	dispatcher *instr.Dispatcher
}

// parseModule = version, target, opt(address_size), repeat(function).
func (p *parser) parseModule() (*ast.Module, bool) {
	version, ok := p.parseVersion()
	if !ok {
		return nil, false
	}
	target, ok := p.parseTarget()
	if !ok {
		return nil, false
	}
	addrSize := ast.AddressSizeNone
	if as, ok := p.parseAddressSize(); ok {
		addrSize = as
	}

	var funcs []*ast.Function
	for !p.s.AtEnd() {
		fn, ok := p.parseFunction()
		if !ok {
			p.skipUnrecognized(diag.UnrecognizedDirective)
			continue
		}
		funcs = append(funcs, fn)
	}

	return &ast.Module{Version: version, Target: target, AddressSize: addrSize, Functions: funcs}, true
}

// skipUnrecognized advances past one top-level directive or statement that
// matched no grammar production, recording its byte span so the rest of the
// module can still be parsed (spec §7, tier 2: UnrecognizedStatement and
// UnrecognizedDirective are the two diagnostic kinds that carry a span
// rather than aborting the parse).
func (p *parser) skipUnrecognized(kind diag.Kind) {
	start := p.s.Peek().Pos
	first := true
	for {
		next := p.s.Peek()
		if next.Type == token.EOF {
			p.d.PushSpan(kind, start, diag.Span{Start: start.Offset, End: next.Pos.Offset})
			return
		}
		if !first && next.Type == token.RBrace {
			p.d.PushSpan(kind, start, diag.Span{Start: start.Offset, End: next.Pos.Offset})
			return
		}
		first = false
		pstream.Any(p.s)
		if next.Type == token.Semicolon {
			p.d.PushSpan(kind, start, diag.Span{Start: start.Offset, End: next.Pos.Offset})
			return
		}
	}
}

// parseVersion = '.version' u8 '.' u8.
func (p *parser) parseVersion() (ast.Version, bool) {
	if _, ok := pstream.Literal(token.DotVersion)(p.s); !ok {
		return ast.Version{}, false
	}
	majorTok, ok := pstream.Literal(token.Decimal)(p.s)
	if !ok {
		return ast.Version{}, false
	}
	if _, ok := pstream.Literal(token.Dot)(p.s); !ok {
		return ast.Version{}, false
	}
	minorTok, ok := pstream.Literal(token.Decimal)(p.s)
	if !ok {
		return ast.Version{}, false
	}
	major, _ := strconv.Atoi(majorTok.Literal)
	minor, _ := strconv.Atoi(minorTok.Literal)
	return ast.Version{Major: major, Minor: minor}, true
}

// parseTarget = '.target' ident, where the identifier must parse as
// "sm_" dec_uint opt(single ascii letter) with nothing left over; a
// trailing multi-character suffix is a hard failure (spec §4.F, §9 Open
// Question 2: "preserve" the sm_90ab-fails behavior).
func (p *parser) parseTarget() (ast.ShaderModel, bool) {
	if _, ok := pstream.Literal(token.DotTarget)(p.s); !ok {
		return ast.ShaderModel{}, false
	}
	identTok, ok := pstream.Literal(token.Ident)(p.s)
	if !ok {
		return ast.ShaderModel{}, false
	}
	sm, ok := parseShaderModel(identTok.Literal)
	if !ok {
		return ast.ShaderModel{}, false
	}
	return sm, true
}

func parseShaderModel(text string) (ast.ShaderModel, bool) {
	const prefix = "sm_"
	if !strings.HasPrefix(text, prefix) {
		return ast.ShaderModel{}, false
	}
	rest := text[len(prefix):]
	i := 0
	for i < len(rest) && rest[i] >= '0' && rest[i] <= '9' {
		i++
	}
	if i == 0 {
		return ast.ShaderModel{}, false
	}
	number, err := strconv.Atoi(rest[:i])
	if err != nil {
		return ast.ShaderModel{}, false
	}
	suffix := rest[i:]
	switch {
	case suffix == "":
		return ast.ShaderModel{Number: number}, true
	case len(suffix) == 1 && suffix[0] >= 'a' && suffix[0] <= 'z':
		return ast.ShaderModel{Number: number, Suffix: rune(suffix[0])}, true
	default:
		return ast.ShaderModel{}, false
	}
}

// parseAddressSize = '.address_size' '64' (only 64 is accepted).
func (p *parser) parseAddressSize() (ast.AddressSize, bool) {
	cp := p.s.Checkpoint()
	if _, ok := pstream.Literal(token.DotAddressSize)(p.s); !ok {
		return ast.AddressSizeNone, false
	}
	numTok, ok := pstream.Literal(token.Decimal)(p.s)
	if !ok || numTok.Literal != "64" {
		p.s.Reset(cp)
		return ast.AddressSizeNone, false
	}
	return ast.AddressSize64, true
}

// parseFunction = linking-directive, method-declaration, tuning*, body.
func (p *parser) parseFunction() (*ast.Function, bool) {
	cp := p.s.Checkpoint()
	linking := p.parseLinkingDirective()

	decl, ok := p.parseMethodDeclaration()
	if !ok {
		p.s.Reset(cp)
		return nil, false
	}

	var tuning []ast.Tuning
	for {
		t, ok := p.parseTuning()
		if !ok {
			break
		}
		tuning = append(tuning, t)
	}

	body, ok := p.parseBody()
	if !ok {
		p.s.Reset(cp)
		return nil, false
	}

	return &ast.Function{Linking: linking, Declaration: decl, Tuning: tuning, Body: body}, true
}

func (p *parser) parseLinkingDirective() ast.LinkingDirective {
	switch {
	case consume(p.s, token.DotExtern):
		return ast.LinkExtern
	case consume(p.s, token.DotVisible):
		return ast.LinkVisible
	case consume(p.s, token.DotWeak):
		return ast.LinkWeak
	default:
		return ast.LinkDefault
	}
}

// parseMethodDeclaration = ('.entry' ident '(' params ')') |
// ('.func' opt('(' returns ')') ident '(' params ')').
func (p *parser) parseMethodDeclaration() (ast.MethodDeclaration, bool) {
	if consume(p.s, token.DotEntry) {
		name, ok := pstream.Literal(token.Ident)(p.s)
		if !ok {
			return ast.MethodDeclaration{}, false
		}
		params, ok := p.parseParamList()
		if !ok {
			return ast.MethodDeclaration{}, false
		}
		return ast.MethodDeclaration{Kind: ast.MethodEntry, Name: name.Literal, Params: params}, true
	}
	if consume(p.s, token.DotFunc) {
		var returns []*ast.Variable
		if p.s.Peek().Type == token.LParen {
			rs, ok := p.parseParamList()
			if !ok {
				return ast.MethodDeclaration{}, false
			}
			returns = rs
		}
		name, ok := pstream.Literal(token.Ident)(p.s)
		if !ok {
			return ast.MethodDeclaration{}, false
		}
		params, ok := p.parseParamList()
		if !ok {
			return ast.MethodDeclaration{}, false
		}
		return ast.MethodDeclaration{Kind: ast.MethodFunc, Name: name.Literal, Params: params, Returns: returns}, true
	}
	return ast.MethodDeclaration{}, false
}

func (p *parser) parseParamList() ([]*ast.Variable, bool) {
	if _, ok := pstream.Literal(token.LParen)(p.s); !ok {
		return nil, false
	}
	var params []*ast.Variable
	if p.s.Peek().Type != token.RParen {
		for {
			v, ok := p.parseVariable()
			if !ok {
				return nil, false
			}
			params = append(params, v)
			if p.s.Peek().Type != token.Comma {
				break
			}
			pstream.Any(p.s)
		}
	}
	if _, ok := pstream.Literal(token.RParen)(p.s); !ok {
		return nil, false
	}
	return params, true
}

// parseTuning = one of .maxnreg u32 | .maxntid x,y,z | .reqntid x,y,z |
// .minnctapersm u32. Unspecified xyz components default to 1.
func (p *parser) parseTuning() (ast.Tuning, bool) {
	switch {
	case consume(p.s, token.DotMaxnreg):
		n, ok := p.parseUint32()
		if !ok {
			return ast.Tuning{}, false
		}
		return ast.Tuning{Kind: ast.TuningMaxNReg, Scalar: n}, true
	case consume(p.s, token.DotMinnctapersm):
		n, ok := p.parseUint32()
		if !ok {
			return ast.Tuning{}, false
		}
		return ast.Tuning{Kind: ast.TuningMinNCtaPerSm, Scalar: n}, true
	case consume(p.s, token.DotMaxntid):
		xyz, ok := p.parseTuningXYZ()
		if !ok {
			return ast.Tuning{}, false
		}
		return ast.Tuning{Kind: ast.TuningMaxNtid, XYZ: xyz}, true
	case consume(p.s, token.DotReqntid):
		xyz, ok := p.parseTuningXYZ()
		if !ok {
			return ast.Tuning{}, false
		}
		return ast.Tuning{Kind: ast.TuningReqNtid, XYZ: xyz}, true
	}
	return ast.Tuning{}, false
}

func (p *parser) parseTuningXYZ() ([3]uint32, bool) {
	xyz := [3]uint32{1, 1, 1}
	n, ok := p.parseUint32()
	if !ok {
		return xyz, false
	}
	xyz[0] = n
	for i := 1; i < 3 && p.s.Peek().Type == token.Comma; i++ {
		pstream.Any(p.s)
		n, ok := p.parseUint32()
		if !ok {
			return xyz, false
		}
		xyz[i] = n
	}
	return xyz, true
}

func (p *parser) parseUint32() (uint32, bool) {
	t, ok := pstream.Literal(token.Decimal)(p.s)
	if !ok {
		return 0, false
	}
	n, err := strconv.ParseUint(strings.TrimSuffix(t.Literal, "U"), 10, 32)
	if err != nil {
		p.d.Push(diag.ParseInt, t.Pos, t.Literal)
		return 0, true
	}
	return uint32(n), true
}

// parseBody = '{' statement* '}' | ';'.
func (p *parser) parseBody() ([]*ast.Statement, bool) {
	if consume(p.s, token.Semicolon) {
		return nil, true
	}
	if _, ok := pstream.Literal(token.LBrace)(p.s); !ok {
		return nil, false
	}
	var stmts []*ast.Statement
	for p.s.Peek().Type != token.RBrace && !p.s.AtEnd() {
		st, ok := p.parseStatement()
		if !ok {
			p.skipUnrecognized(diag.UnrecognizedStatement)
			continue
		}
		if st != nil {
			stmts = append(stmts, st)
		}
	}
	if _, ok := pstream.Literal(token.RBrace)(p.s); !ok {
		return nil, false
	}
	return stmts, true
}

// parseStatement = label | debug-directive(discarded) | variable ';' |
// predicated-instruction | pragma(discarded) | block.
func (p *parser) parseStatement() (*ast.Statement, bool) {
	if st, ok := p.tryLabel(); ok {
		return st, true
	}
	if ok := p.tryDebugDirective(); ok {
		return nil, true
	}
	if ok := p.tryPragma(); ok {
		return nil, true
	}
	if st, ok := p.tryVariable(); ok {
		return st, true
	}
	if st, ok := p.tryPredicatedInstruction(); ok {
		return st, true
	}
	if st, ok := p.tryBlock(); ok {
		return st, true
	}
	return nil, false
}

// tryLabel = ident ':'.
func (p *parser) tryLabel() (*ast.Statement, bool) {
	cp := p.s.Checkpoint()
	nameTok, ok := pstream.Literal(token.Ident)(p.s)
	if !ok {
		return nil, false
	}
	if _, ok := pstream.Literal(token.Colon)(p.s); !ok {
		p.s.Reset(cp)
		return nil, false
	}
	return &ast.Statement{Kind: ast.StmtLabel, Label: nameTok.Literal}, true
}

// tryDebugDirective = '.loc' u32 u32 u32 opt(',' string ident ...);
// consumed and discarded entirely (spec §4.F).
func (p *parser) tryDebugDirective() bool {
	cp := p.s.Checkpoint()
	if !consume(p.s, token.DotLoc) {
		return false
	}
	for i := 0; i < 3; i++ {
		if _, ok := pstream.Literal(token.Decimal)(p.s); !ok {
			p.s.Reset(cp)
			return false
		}
	}
	for p.s.Peek().Type == token.Comma {
		pstream.Any(p.s)
		pstream.Any(p.s)
	}
	return true
}

// tryPragma = '.pragma' string ';'; consumed and discarded.
func (p *parser) tryPragma() bool {
	cp := p.s.Checkpoint()
	if !consume(p.s, token.DotPragma) {
		return false
	}
	if _, ok := pstream.Literal(token.String)(p.s); !ok {
		p.s.Reset(cp)
		return false
	}
	if _, ok := pstream.Literal(token.Semicolon)(p.s); !ok {
		p.s.Reset(cp)
		return false
	}
	return true
}

// tryVariable = variable opt('<' u32 '>') ';'.
func (p *parser) tryVariable() (*ast.Statement, bool) {
	cp := p.s.Checkpoint()
	v, ok := p.parseVariable()
	if !ok {
		return nil, false
	}
	if consume(p.s, token.Lt) {
		n, ok := p.parseUint32()
		if !ok || !consume(p.s, token.Gt) {
			p.s.Reset(cp)
			return nil, false
		}
		v.Count = &n
	}
	if _, ok := pstream.Literal(token.Semicolon)(p.s); !ok {
		p.s.Reset(cp)
		return nil, false
	}
	return &ast.Statement{Kind: ast.StmtVariable, Variable: v}, true
}

// tryPredicatedInstruction = opt('@' opt('!') ident) instruction ';'.
func (p *parser) tryPredicatedInstruction() (*ast.Statement, bool) {
	cp := p.s.Checkpoint()
	var pred *ast.Predicate
	if consume(p.s, token.At) {
		negated := consume(p.s, token.Bang)
		regTok, ok := pstream.Literal(token.Ident)(p.s)
		if !ok {
			p.s.Reset(cp)
			return nil, false
		}
		pred = &ast.Predicate{Negated: negated, Register: regTok.Literal}
	}

	opTok := p.s.Peek()
	opcode, ok := token.OpcodeText(opTok)
	if !ok {
		p.s.Reset(cp)
		return nil, false
	}
	pstream.Any(p.s)

	inst, ok := p.dispatcher.Parse(opcode, p.s, opTok.Pos, p.d)
	if !ok {
		p.s.Reset(cp)
		return nil, false
	}
	if _, ok := pstream.Literal(token.Semicolon)(p.s); !ok {
		p.s.Reset(cp)
		return nil, false
	}
	return &ast.Statement{Kind: ast.StmtInstruction, Predicate: pred, Instruction: inst}, true
}

// tryBlock = '{' statement* '}'.
func (p *parser) tryBlock() (*ast.Statement, bool) {
	cp := p.s.Checkpoint()
	if _, ok := pstream.Literal(token.LBrace)(p.s); !ok {
		return nil, false
	}
	var stmts []*ast.Statement
	for p.s.Peek().Type != token.RBrace && !p.s.AtEnd() {
		st, ok := p.parseStatement()
		if !ok {
			p.skipUnrecognized(diag.UnrecognizedStatement)
			continue
		}
		if st != nil {
			stmts = append(stmts, st)
		}
	}
	if _, ok := pstream.Literal(token.RBrace)(p.s); !ok {
		p.s.Reset(cp)
		return nil, false
	}
	return &ast.Statement{Kind: ast.StmtBlock, Block: stmts}, true
}

var scalarTypeTokens = map[token.Type]ast.ScalarType{
	token.DotPred:   ast.TypePred,
	token.DotB8:     ast.TypeB8,
	token.DotB16:    ast.TypeB16,
	token.DotB32:    ast.TypeB32,
	token.DotB64:    ast.TypeB64,
	token.DotB128:   ast.TypeB128,
	token.DotU8:     ast.TypeU8,
	token.DotU16:    ast.TypeU16,
	token.DotU16x2:  ast.TypeU16x2,
	token.DotU32:    ast.TypeU32,
	token.DotU64:    ast.TypeU64,
	token.DotS8:     ast.TypeS8,
	token.DotS16:    ast.TypeS16,
	token.DotS16x2:  ast.TypeS16x2,
	token.DotS32:    ast.TypeS32,
	token.DotS64:    ast.TypeS64,
	token.DotF16:    ast.TypeF16,
	token.DotF16x2:  ast.TypeF16x2,
	token.DotF32:    ast.TypeF32,
	token.DotF64:    ast.TypeF64,
	token.DotBF16:   ast.TypeBF16,
	token.DotBF16x2: ast.TypeBF16x2,
}

var stateSpaceTokens = map[token.Type]ast.StateSpace{
	token.DotReg:     ast.StateReg,
	token.DotLocal:   ast.StateLocal,
	token.DotParam:   ast.StateParam,
	token.DotShared:  ast.StateShared,
	token.DotGlobal:  ast.StateGlobal,
	token.DotConst:   ast.StateConst,
	token.DotGeneric: ast.StateGeneric,
}

// parseVariable = opt('.align' u32) '.' state-space '.' type ident
// opt array-dims.
func (p *parser) parseVariable() (*ast.Variable, bool) {
	cp := p.s.Checkpoint()
	var align *uint32
	if consume(p.s, token.DotAlign) {
		n, ok := p.parseUint32()
		if !ok {
			p.s.Reset(cp)
			return nil, false
		}
		align = &n
	}

	spaceTok := p.s.Peek()
	space, ok := stateSpaceTokens[spaceTok.Type]
	if !ok {
		p.s.Reset(cp)
		return nil, false
	}
	pstream.Any(p.s)

	vec := ast.VectorNone
	if spaceTok2 := p.s.Peek(); spaceTok2.Type == token.DotV2 || spaceTok2.Type == token.DotV4 {
		pstream.Any(p.s)
		if spaceTok2.Type == token.DotV2 {
			vec = ast.VectorV2
		} else {
			vec = ast.VectorV4
		}
	}

	typeTok := p.s.Peek()
	scalar, ok := scalarTypeTokens[typeTok.Type]
	if !ok {
		p.s.Reset(cp)
		return nil, false
	}
	pstream.Any(p.s)

	nameTok, ok := pstream.Literal(token.Ident)(p.s)
	if !ok {
		p.s.Reset(cp)
		return nil, false
	}

	var arr *ast.ArrayInit
	if p.s.Peek().Type == token.LBracket {
		a, ok := p.parseArrayDims()
		if !ok {
			p.s.Reset(cp)
			return nil, false
		}
		arr = a
	}

	return &ast.Variable{
		Align: align,
		Type:  ast.VarType{Vector: vec, Scalar: scalar},
		Space: space,
		Name:  nameTok.Literal,
		Array: arr,
	}, true
}

// parseArrayDims = ('[' opt(u32) ']')+.
func (p *parser) parseArrayDims() (*ast.ArrayInit, bool) {
	var dims []uint32
	for p.s.Peek().Type == token.LBracket {
		pstream.Any(p.s)
		dim := uint32(0)
		if p.s.Peek().Type == token.Decimal {
			n, _ := p.parseUint32()
			dim = n
		}
		if _, ok := pstream.Literal(token.RBracket)(p.s); !ok {
			return nil, false
		}
		if dim == 0 {
			p.d.Push(diag.ZeroDimensionArray, p.s.Peek().Pos, "")
		}
		dims = append(dims, dim)
	}
	if len(dims) > 1 {
		p.d.Push(diag.MultiArrayVariable, p.s.Peek().Pos, "")
	}
	return &ast.ArrayInit{Dims: dims}, true
}

// consume matches and discards a single token of type t, reporting whether
// it matched.
func consume(s *pstream.Stream, t token.Type) bool {
	_, ok := pstream.Literal(t)(s)
	return ok
}
