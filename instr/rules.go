package instr

import (
	"github.com/samber/lo"

	"github.com/lookbusy1344/ptx-parser/ast"
	"github.com/lookbusy1344/ptx-parser/diag"
	"github.com/lookbusy1344/ptx-parser/pstream"
	"github.com/lookbusy1344/ptx-parser/token"
)

// scalarTypeByToken is the full scalar-type token set, shared by every
// opcode's type slot (individual variants narrow it with their own subset,
// per spec §9's "a single ScalarType = {...} redeclaration narrows which
// types apply to the rules above it in the same block").
var scalarTypeByToken = map[token.Type]ast.ScalarType{
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

func scalarType(b Bound) ast.ScalarType { return scalarTypeByToken[b.Token] }

func allScalarTypeTokens() []token.Type {
	return lo.Keys(scalarTypeByToken)
}

var stateSpaceByToken = map[token.Type]ast.StateSpace{
	token.DotGlobal:  ast.StateGlobal,
	token.DotLocal:   ast.StateLocal,
	token.DotParam:   ast.StateParam,
	token.DotShared:  ast.StateShared,
	token.DotConst:   ast.StateConst,
	token.DotGeneric: ast.StateGeneric,
}

func ssTokens() []token.Type { return lo.Keys(stateSpaceByToken) }

// stateSpace resolves the bound .ss slot, defaulting to Generic when the
// modifier is absent (spec §3 invariant: "without .ss -> Generic").
func stateSpace(b Bound) ast.StateSpace {
	if !b.Present {
		return ast.StateGeneric
	}
	return stateSpaceByToken[b.Token]
}

var roundingTokens = []token.Type{token.DotRn, token.DotRz, token.DotRm, token.DotRp}

func roundingMode(b Bound) ast.RoundingMode {
	if !b.Present {
		return ast.RoundNone
	}
	switch b.Token {
	case token.DotRn:
		return ast.RawRn.Semantic()
	case token.DotRz:
		return ast.RawRz.Semantic()
	case token.DotRm:
		return ast.RawRm.Semantic()
	case token.DotRp:
		return ast.RawRp.Semantic()
	}
	return ast.RoundNone
}

var vecTokens = []token.Type{token.DotV2, token.DotV4}

func vectorWidth(b Bound) ast.VectorWidth {
	if !b.Present {
		return ast.VectorNone
	}
	switch b.Token {
	case token.DotV2:
		return ast.VectorV2
	case token.DotV4:
		return ast.VectorV4
	}
	return ast.VectorNone
}

var scopeTokens = []token.Type{token.DotCta, token.DotCluster, token.DotGpu, token.DotSys}

func scope(b Bound) ast.Scope {
	if !b.Present {
		return ast.ScopeNone
	}
	switch b.Token {
	case token.DotCta:
		return ast.ScopeCta
	case token.DotCluster:
		return ast.ScopeCluster
	case token.DotGpu:
		return ast.ScopeGpu
	case token.DotSys:
		return ast.ScopeSys
	}
	return ast.ScopeNone
}

var levelEvictionTokens = []token.Type{
	token.DotL1EvictNormal, token.DotL1EvictUnchanged, token.DotL1EvictFirst,
	token.DotL1EvictLast, token.DotL1NoAllocate,
}

var prefetchSizeTokens = []token.Type{token.DotL2_64B, token.DotL2_128B, token.DotL2_256B}

var storeCopByToken = map[token.Type]ast.RawStCacheOperator{
	token.DotWb: ast.RawStWb,
	token.DotCg: ast.RawStCg,
	token.DotCs: ast.RawStCs,
	token.DotWt: ast.RawStWt,
}

func storeCaching(b Bound) ast.StoreCacheOperator {
	if !b.Present {
		return ast.StoreWriteback
	}
	return storeCopByToken[b.Token].Semantic()
}

var loadCopByToken = map[token.Type]ast.RawLdCacheOperator{
	token.DotCa: ast.RawLdCa,
	token.DotCg: ast.RawLdCg,
	token.DotCs: ast.RawLdCs,
	token.DotLu: ast.RawLdLu,
	token.DotCv: ast.RawLdCv,
}

func loadCaching(b Bound) ast.LoadCacheOperator {
	if !b.Present {
		return ast.LoadCached
	}
	return loadCopByToken[b.Token].Semantic()
}

// ruleTable is the declarative rule table (spec §4.E): one Variant per
// opcode alternative, for the five opcodes in scope. Each opcode's
// variants are listed most-specific (most mandatory modifier tokens)
// first, implementing the longest-modifier-prefix tie-break (spec §4.E/§9:
// "sort candidates by required token count descending, break ties by
// source order") without needing to re-sort at dispatch time.
func ruleTable() []*Variant {
	var rules []*Variant
	rules = append(rules, movRules()...)
	rules = append(rules, stRules()...)
	rules = append(rules, ldRules()...)
	rules = append(rules, addRules()...)
	rules = append(rules, retRules()...)
	return rules
}

// movTypeTokens is mov's own narrowed ScalarType set (spec §9's block-scoped
// redeclaration), distinct from the full scalarTypeByToken table.
var movTypeTokens = []token.Type{
	token.DotPred, token.DotB16, token.DotB32, token.DotB64,
	token.DotU16, token.DotU32, token.DotU64,
	token.DotS16, token.DotS32, token.DotS64,
	token.DotF32, token.DotF64,
}

func movRules() []*Variant {
	return []*Variant{
		{
			Opcode: "mov",
			Slots: []ModifierSlot{
				{Kind: ModOptionalAlt, Name: "vec", Tokens: vecTokens},
				{Kind: ModMandatoryAlt, Name: "type", Tokens: movTypeTokens},
			},
			Body: func(s *pstream.Stream, bound map[string]Bound, pos token.Position, d *diag.List) (ast.Instruction, bool) {
				dst, ok := parseOperand(s, d)
				if !ok {
					return nil, false
				}
				if _, ok := pstream.Literal(token.Comma)(s); !ok {
					return nil, false
				}
				src, ok := parseOperand(s, d)
				if !ok {
					return nil, false
				}
				return ast.Mov{
					Data: ast.MovData{Vector: vectorWidth(bound["vec"]), Type: scalarType(bound["type"])},
					Dst:  dst,
					Src:  src,
				}, true
			},
		},
	}
}

// stOperands parses "[a], v" plus an optional trailing ", cache_policy"
// operand (spec §8's st.relaxed.sys.global.L2::cache_hint.b32 example);
// cachePolicy reports whether that trailing operand was present so the
// caller can raise the matching Todo.
func stOperands(s *pstream.Stream, d *diag.List) (addr, src ast.ParsedOperand, cachePolicy bool, ok bool) {
	addr, ok = parseMemRef(s, d)
	if !ok {
		return
	}
	if _, ok2 := pstream.Literal(token.Comma)(s); !ok2 {
		ok = false
		return
	}
	src, ok = parseOperand(s, d)
	if !ok {
		return
	}
	if _, ok2 := pstream.Literal(token.Comma)(s); ok2 {
		if _, ok = parseOperand(s, d); !ok {
			return
		}
		cachePolicy = true
	}
	return
}

func stRules() []*Variant {
	mkBody := func(qualifier ast.LdStQualifier, alwaysTodo bool) Body {
		return func(s *pstream.Stream, bound map[string]Bound, pos token.Position, d *diag.List) (ast.Instruction, bool) {
			addr, src, cachePolicy, ok := stOperands(s, d)
			if !ok {
				return nil, false
			}
			if alwaysTodo {
				d.Push(diag.Todo, pos, "st.mmio.relaxed.sys is not lowered")
			}
			if bound["levelEvict"].Present {
				d.Push(diag.Todo, pos, "st cache-eviction-priority modifier is not lowered")
			}
			if bound["levelCacheHint"].Present {
				d.Push(diag.Todo, pos, "st.L2::cache_hint is not lowered")
			}
			if cachePolicy {
				d.Push(diag.Todo, pos, "st cache_policy operand is not lowered")
			}
			return ast.St{
				Data: ast.StData{
					Qualifier:  qualifier,
					Scope:      scope(bound["scope"]),
					StateSpace: stateSpace(bound["ss"]),
					Caching:    storeCaching(bound["cop"]),
					Vector:     vectorWidth(bound["vec"]),
					Type:       scalarType(bound["type"]),
				},
				Addr: addr,
				Src:  src,
			}, true
		}
	}

	return []*Variant{
		{
			Opcode: "st",
			Slots: []ModifierSlot{
				{Kind: ModMandatoryAlt, Name: "mmio", Tokens: []token.Type{token.DotMmio}},
				{Kind: ModMandatoryAlt, Name: "relaxed", Tokens: []token.Type{token.DotRelaxed}},
				{Kind: ModMandatoryAlt, Name: "sys", Tokens: []token.Type{token.DotSys}},
				{Kind: ModOptionalAlt, Name: "ss", Tokens: []token.Type{token.DotGlobal}},
				{Kind: ModMandatoryAlt, Name: "type", Tokens: allScalarTypeTokens()},
			},
			Body: mkBody(ast.QualMmioRelaxedSys, true),
		},
		{
			Opcode: "st",
			Slots: []ModifierSlot{
				{Kind: ModMandatoryAlt, Name: "relaxed", Tokens: []token.Type{token.DotRelaxed}},
				{Kind: ModMandatoryAlt, Name: "scope", Tokens: scopeTokens},
				{Kind: ModOptionalAlt, Name: "ss", Tokens: ssTokens()},
				{Kind: ModOptionalAlt, Name: "levelEvict", Tokens: levelEvictionTokens},
				{Kind: ModOptionalFlag, Name: "levelCacheHint", Tokens: []token.Type{token.DotL2CacheHint}},
				{Kind: ModOptionalAlt, Name: "vec", Tokens: vecTokens},
				{Kind: ModMandatoryAlt, Name: "type", Tokens: allScalarTypeTokens()},
			},
			Body: mkBody(ast.QualRelaxed, false),
		},
		{
			Opcode: "st",
			Slots: []ModifierSlot{
				{Kind: ModMandatoryAlt, Name: "release", Tokens: []token.Type{token.DotRelease}},
				{Kind: ModMandatoryAlt, Name: "scope", Tokens: scopeTokens},
				{Kind: ModOptionalAlt, Name: "ss", Tokens: ssTokens()},
				{Kind: ModOptionalAlt, Name: "levelEvict", Tokens: levelEvictionTokens},
				{Kind: ModOptionalFlag, Name: "levelCacheHint", Tokens: []token.Type{token.DotL2CacheHint}},
				{Kind: ModOptionalAlt, Name: "vec", Tokens: vecTokens},
				{Kind: ModMandatoryAlt, Name: "type", Tokens: allScalarTypeTokens()},
			},
			Body: mkBody(ast.QualRelease, false),
		},
		{
			Opcode: "st",
			Slots: []ModifierSlot{
				{Kind: ModMandatoryAlt, Name: "volatile", Tokens: []token.Type{token.DotVolatile}},
				{Kind: ModOptionalAlt, Name: "ss", Tokens: ssTokens()},
				{Kind: ModOptionalAlt, Name: "levelEvict", Tokens: levelEvictionTokens},
				{Kind: ModOptionalFlag, Name: "levelCacheHint", Tokens: []token.Type{token.DotL2CacheHint}},
				{Kind: ModOptionalAlt, Name: "vec", Tokens: vecTokens},
				{Kind: ModMandatoryAlt, Name: "type", Tokens: allScalarTypeTokens()},
			},
			Body: mkBody(ast.QualVolatile, false),
		},
		{
			Opcode: "st",
			Slots: []ModifierSlot{
				{Kind: ModOptionalFlag, Name: "weak", Tokens: []token.Type{token.DotWeak}},
				{Kind: ModOptionalAlt, Name: "ss", Tokens: ssTokens()},
				{Kind: ModOptionalAlt, Name: "cop", Tokens: []token.Type{token.DotWb, token.DotCg, token.DotCs, token.DotWt}},
				{Kind: ModOptionalAlt, Name: "levelEvict", Tokens: levelEvictionTokens},
				{Kind: ModOptionalFlag, Name: "levelCacheHint", Tokens: []token.Type{token.DotL2CacheHint}},
				{Kind: ModOptionalAlt, Name: "vec", Tokens: vecTokens},
				{Kind: ModMandatoryAlt, Name: "type", Tokens: allScalarTypeTokens()},
			},
			Body: mkBody(ast.QualWeak, false),
		},
	}
}

// ldOperands parses "d, [a]", then an optional ".unified" token right after
// the memory operand, then an optional trailing ", cache_policy" operand
// (".unified" only ever appears after the address operand, never as a
// pre-operand modifier). cachePolicy/unified report whether each was
// present so the caller can raise the matching Todo.
func ldOperands(s *pstream.Stream, d *diag.List) (dst, addr ast.ParsedOperand, cachePolicy, unified bool, ok bool) {
	dst, ok = parseOperand(s, d)
	if !ok {
		return
	}
	if _, ok2 := pstream.Literal(token.Comma)(s); !ok2 {
		ok = false
		return
	}
	addr, ok = parseMemRef(s, d)
	if !ok {
		return
	}
	if _, ok2 := pstream.Literal(token.DotUnified)(s); ok2 {
		unified = true
	}
	if _, ok2 := pstream.Literal(token.Comma)(s); ok2 {
		if _, ok = parseOperand(s, d); !ok {
			return
		}
		cachePolicy = true
	}
	return
}

func ldRules() []*Variant {
	mkBody := func(qualifier ast.LdStQualifier, alwaysTodo bool) Body {
		return func(s *pstream.Stream, bound map[string]Bound, pos token.Position, d *diag.List) (ast.Instruction, bool) {
			dst, addr, cachePolicy, unified, ok := ldOperands(s, d)
			if !ok {
				return nil, false
			}
			if alwaysTodo {
				d.Push(diag.Todo, pos, "ld.mmio.relaxed.sys is not lowered")
			}
			if bound["levelEvict"].Present {
				d.Push(diag.Todo, pos, "ld cache-eviction-priority modifier is not lowered")
			}
			if bound["levelCacheHint"].Present {
				d.Push(diag.Todo, pos, "ld.L2::cache_hint is not lowered")
			}
			if bound["prefetch"].Present {
				d.Push(diag.Todo, pos, "ld.level::prefetch_size is not lowered")
			}
			if unified {
				d.Push(diag.Todo, pos, "ld{.unified} is not lowered")
			}
			if cachePolicy {
				d.Push(diag.Todo, pos, "ld cache_policy operand is not lowered")
			}
			return ast.Ld{
				Data: ast.LdData{
					Qualifier:  qualifier,
					Scope:      scope(bound["scope"]),
					StateSpace: stateSpace(bound["ss"]),
					Caching:    loadCaching(bound["cop"]),
					Vector:     vectorWidth(bound["vec"]),
					Type:       scalarType(bound["type"]),
				},
				Dst:  dst,
				Addr: addr,
			}, true
		}
	}

	return []*Variant{
		{
			Opcode: "ld",
			Slots: []ModifierSlot{
				{Kind: ModMandatoryAlt, Name: "mmio", Tokens: []token.Type{token.DotMmio}},
				{Kind: ModMandatoryAlt, Name: "relaxed", Tokens: []token.Type{token.DotRelaxed}},
				{Kind: ModMandatoryAlt, Name: "sys", Tokens: []token.Type{token.DotSys}},
				{Kind: ModOptionalAlt, Name: "ss", Tokens: []token.Type{token.DotGlobal}},
				{Kind: ModMandatoryAlt, Name: "type", Tokens: allScalarTypeTokens()},
			},
			Body: mkBody(ast.QualMmioRelaxedSys, true),
		},
		{
			Opcode: "ld",
			Slots: []ModifierSlot{
				{Kind: ModMandatoryAlt, Name: "relaxed", Tokens: []token.Type{token.DotRelaxed}},
				{Kind: ModMandatoryAlt, Name: "scope", Tokens: scopeTokens},
				{Kind: ModOptionalAlt, Name: "ss", Tokens: ssTokens()},
				{Kind: ModOptionalAlt, Name: "levelEvict", Tokens: levelEvictionTokens},
				{Kind: ModOptionalFlag, Name: "levelCacheHint", Tokens: []token.Type{token.DotL2CacheHint}},
				{Kind: ModOptionalAlt, Name: "vec", Tokens: vecTokens},
				{Kind: ModMandatoryAlt, Name: "type", Tokens: allScalarTypeTokens()},
			},
			Body: mkBody(ast.QualRelaxed, false),
		},
		{
			Opcode: "ld",
			Slots: []ModifierSlot{
				{Kind: ModMandatoryAlt, Name: "acquire", Tokens: []token.Type{token.DotAcquire}},
				{Kind: ModMandatoryAlt, Name: "scope", Tokens: scopeTokens},
				{Kind: ModOptionalAlt, Name: "ss", Tokens: ssTokens()},
				{Kind: ModOptionalAlt, Name: "levelEvict", Tokens: levelEvictionTokens},
				{Kind: ModOptionalFlag, Name: "levelCacheHint", Tokens: []token.Type{token.DotL2CacheHint}},
				{Kind: ModOptionalAlt, Name: "vec", Tokens: vecTokens},
				{Kind: ModMandatoryAlt, Name: "type", Tokens: allScalarTypeTokens()},
			},
			Body: mkBody(ast.QualAcquire, false),
		},
		{
			Opcode: "ld",
			Slots: []ModifierSlot{
				{Kind: ModMandatoryAlt, Name: "volatile", Tokens: []token.Type{token.DotVolatile}},
				{Kind: ModOptionalAlt, Name: "ss", Tokens: ssTokens()},
				{Kind: ModOptionalAlt, Name: "levelEvict", Tokens: levelEvictionTokens},
				{Kind: ModOptionalFlag, Name: "levelCacheHint", Tokens: []token.Type{token.DotL2CacheHint}},
				{Kind: ModOptionalAlt, Name: "vec", Tokens: vecTokens},
				{Kind: ModMandatoryAlt, Name: "type", Tokens: allScalarTypeTokens()},
			},
			Body: mkBody(ast.QualVolatile, false),
		},
		{
			Opcode: "ld",
			Slots: []ModifierSlot{
				{Kind: ModOptionalFlag, Name: "weak", Tokens: []token.Type{token.DotWeak}},
				{Kind: ModOptionalAlt, Name: "ss", Tokens: ssTokens()},
				{Kind: ModOptionalAlt, Name: "cop", Tokens: []token.Type{token.DotCa, token.DotCg, token.DotCs, token.DotLu, token.DotCv}},
				{Kind: ModOptionalAlt, Name: "levelEvict", Tokens: levelEvictionTokens},
				{Kind: ModOptionalFlag, Name: "levelCacheHint", Tokens: []token.Type{token.DotL2CacheHint}},
				{Kind: ModOptionalAlt, Name: "prefetch", Tokens: prefetchSizeTokens},
				{Kind: ModOptionalAlt, Name: "vec", Tokens: vecTokens},
				{Kind: ModMandatoryAlt, Name: "type", Tokens: allScalarTypeTokens()},
			},
			Body: mkBody(ast.QualWeak, false),
		},
	}
}

func addOperands(s *pstream.Stream, d *diag.List) (dst, a, b ast.ParsedOperand, ok bool) {
	dst, ok = parseOperand(s, d)
	if !ok {
		return
	}
	if _, ok2 := pstream.Literal(token.Comma)(s); !ok2 {
		ok = false
		return
	}
	a, ok = parseOperand(s, d)
	if !ok {
		return
	}
	if _, ok2 := pstream.Literal(token.Comma)(s); !ok2 {
		ok = false
		return
	}
	b, ok = parseOperand(s, d)
	return
}

func addRules() []*Variant {
	body := func(s *pstream.Stream, bound map[string]Bound, pos token.Position, d *diag.List) (ast.Instruction, bool) {
		dst, a, b, ok := addOperands(s, d)
		if !ok {
			return nil, false
		}
		typ := scalarType(bound["type"])
		if bound["ftz"].Present && typ != ast.TypeF32 {
			d.Push(diag.NonF32Ftz, pos, "")
		}
		return ast.Add{
			Data: ast.AddData{
				Type:     typ,
				Saturate: bound["sat"].Present,
				Ftz:      bound["ftz"].Present,
				Rounding: roundingMode(bound["round"]),
			},
			Dst: dst,
			A:   a,
			B:   b,
		}, true
	}

	generalIntTypes := []token.Type{
		token.DotU16, token.DotU32, token.DotU64,
		token.DotS16, token.DotS64,
		token.DotU16x2, token.DotS16x2,
	}

	return []*Variant{
		{
			Opcode: "add",
			Slots: []ModifierSlot{
				{Kind: ModOptionalFlag, Name: "sat", Tokens: []token.Type{token.DotSat}},
				{Kind: ModMandatoryAlt, Name: "type", Tokens: []token.Type{token.DotS32}},
			},
			Body: body,
		},
		{
			Opcode: "add",
			Slots: []ModifierSlot{
				{Kind: ModOptionalAlt, Name: "round", Tokens: roundingTokens},
				{Kind: ModOptionalFlag, Name: "ftz", Tokens: []token.Type{token.DotFtz}},
				{Kind: ModOptionalFlag, Name: "sat", Tokens: []token.Type{token.DotSat}},
				{Kind: ModMandatoryAlt, Name: "type", Tokens: []token.Type{token.DotF32}},
			},
			Body: body,
		},
		{
			Opcode: "add",
			Slots: []ModifierSlot{
				{Kind: ModOptionalAlt, Name: "round", Tokens: roundingTokens},
				{Kind: ModMandatoryAlt, Name: "type", Tokens: []token.Type{token.DotF64}},
			},
			Body: body,
		},
		{
			Opcode: "add",
			Slots: []ModifierSlot{
				{Kind: ModOptionalAlt, Name: "round", Tokens: roundingTokens},
				{Kind: ModOptionalFlag, Name: "ftz", Tokens: []token.Type{token.DotFtz}},
				{Kind: ModOptionalFlag, Name: "sat", Tokens: []token.Type{token.DotSat}},
				{Kind: ModMandatoryAlt, Name: "type", Tokens: []token.Type{token.DotF16, token.DotF16x2}},
			},
			Body: body,
		},
		{
			Opcode: "add",
			Slots: []ModifierSlot{
				{Kind: ModOptionalAlt, Name: "round", Tokens: roundingTokens},
				{Kind: ModMandatoryAlt, Name: "type", Tokens: []token.Type{token.DotBF16, token.DotBF16x2}},
			},
			Body: body,
		},
		{
			Opcode: "add",
			Slots: []ModifierSlot{
				{Kind: ModMandatoryAlt, Name: "type", Tokens: generalIntTypes},
			},
			Body: body,
		},
	}
}

func retRules() []*Variant {
	return []*Variant{
		{
			Opcode: "ret",
			Slots: []ModifierSlot{
				{Kind: ModOptionalFlag, Name: "uni", Tokens: []token.Type{token.DotUni}},
			},
			Body: func(s *pstream.Stream, bound map[string]Bound, pos token.Position, d *diag.List) (ast.Instruction, bool) {
				return ast.Ret{Data: ast.RetData{Uniform: bound["uni"].Present}}, true
			},
		},
	}
}
