// Package token enumerates the lexical classes of PTX source: structural
// punctuation, literals, and the dot-prefixed modifier keywords that every
// instruction rule in package instr can bind against.
package token

import "fmt"

// Type is the tag of a lexical token.
type Type int

const (
	// Special
	EOF Type = iota

	// Illegal marks a byte the lexer's rules don't recognize. The lexer
	// never recovers from it itself (spec §4.B); module.Parse detects it
	// in the token stream and turns it into a fatal SyntaxError.
	Illegal

	// Literals carrying a borrowed slice of the source text.
	Ident
	String
	Hex
	Decimal
	F32
	F64

	// Structural punctuation
	Comma
	Dot
	Colon
	Semicolon
	At
	Bang
	Pipe
	LParen
	RParen
	LBracket
	RBracket
	LBrace
	RBrace
	Lt
	Gt
	Minus
	Plus

	firstDotKeyword
)

// Dot-keyword tokens. Each is lexed only when the exact spelling (including
// any "::" qualifier) matches; a letter following a bare "." that doesn't
// match one of these lexes as the generic Dot token instead.
const (
	DotVersion Type = firstDotKeyword + iota
	DotTarget
	DotAddressSize
	DotLoc
	DotPragma
	DotAlign

	DotReg
	DotLocal
	DotParam
	DotShared
	DotGlobal
	DotConst
	DotGeneric

	DotParamFunc
	DotParamEntry
	DotSharedCta
	DotSharedCluster

	DotEntry
	DotFunc
	DotExtern
	DotVisible

	DotMaxnreg
	DotMaxntid
	DotReqntid
	DotMinnctapersm

	DotV2
	DotV4

	DotS8
	DotS16
	DotS16x2
	DotS32
	DotS64
	DotU8
	DotU16
	DotU16x2
	DotU32
	DotU64
	DotB8
	DotB16
	DotB32
	DotB64
	DotB128
	DotPred
	DotF16
	DotF16x2
	DotF32
	DotF64
	DotBF16
	DotBF16x2

	// DotWeak serves double duty: a function's linking directive and an
	// ld/st memory-ordering qualifier are both spelled ".weak"; which one
	// applies is decided by the surrounding grammar production, not by a
	// second token type.
	DotWeak
	DotVolatile
	DotRelaxed
	DotRelease
	DotAcquire
	DotMmio

	DotSys
	DotCta
	DotCluster
	DotGpu

	DotSat
	DotFtz

	DotWb
	DotCg
	DotCs
	DotWt
	DotCa
	DotLu
	DotCv

	DotRn
	DotRz
	DotRm
	DotRp

	DotUni

	DotL1EvictNormal
	DotL1EvictUnchanged
	DotL1EvictFirst
	DotL1EvictLast
	DotL1NoAllocate
	DotL2CacheHint
	DotL2_64B
	DotL2_128B
	DotL2_256B
	DotUnified

	lastDotKeyword
)

// keywordText maps a dot-keyword token to its exact source spelling,
// including the leading dot and any "::" qualifier. It is the single
// source of truth for keyword spellings: the lexer's longest-first keyword
// list and its spelling lookup are both built from it.
var keywordText = map[Type]string{
	DotVersion:      ".version",
	DotTarget:       ".target",
	DotAddressSize:  ".address_size",
	DotLoc:          ".loc",
	DotPragma:       ".pragma",
	DotAlign:        ".align",
	DotReg:          ".reg",
	DotLocal:        ".local",
	DotParam:        ".param",
	DotShared:       ".shared",
	DotGlobal:       ".global",
	DotConst:        ".const",
	DotGeneric:      ".generic",
	DotParamFunc:    ".param::func",
	DotParamEntry:   ".param::entry",
	DotSharedCta:    ".shared::cta",
	DotSharedCluster: ".shared::cluster",
	DotEntry:        ".entry",
	DotFunc:         ".func",
	DotExtern:       ".extern",
	DotVisible:      ".visible",
	DotMaxnreg:      ".maxnreg",
	DotMaxntid:      ".maxntid",
	DotReqntid:      ".reqntid",
	DotMinnctapersm: ".minnctapersm",
	DotV2:           ".v2",
	DotV4:           ".v4",
	DotS8:           ".s8",
	DotS16:          ".s16",
	DotS16x2:        ".s16x2",
	DotS32:          ".s32",
	DotS64:          ".s64",
	DotU8:           ".u8",
	DotU16:          ".u16",
	DotU16x2:        ".u16x2",
	DotU32:          ".u32",
	DotU64:          ".u64",
	DotB8:           ".b8",
	DotB16:          ".b16",
	DotB32:          ".b32",
	DotB64:          ".b64",
	DotB128:         ".b128",
	DotPred:         ".pred",
	DotF16:          ".f16",
	DotF16x2:        ".f16x2",
	DotF32:          ".f32",
	DotF64:          ".f64",
	DotBF16:         ".bf16",
	DotBF16x2:       ".bf16x2",
	DotWeak:         ".weak",
	DotVolatile:     ".volatile",
	DotRelaxed:      ".relaxed",
	DotRelease:      ".release",
	DotAcquire:      ".acquire",
	DotMmio:         ".mmio",
	DotSys:          ".sys",
	DotCta:          ".cta",
	DotCluster:      ".cluster",
	DotGpu:          ".gpu",
	DotSat:          ".sat",
	DotFtz:          ".ftz",
	DotWb:           ".wb",
	DotCg:           ".cg",
	DotCs:           ".cs",
	DotWt:           ".wt",
	DotCa:           ".ca",
	DotLu:           ".lu",
	DotCv:           ".cv",
	DotRn:           ".rn",
	DotRz:           ".rz",
	DotRm:           ".rm",
	DotRp:           ".rp",
	DotUni:          ".uni",
	DotL1EvictNormal:    ".L1::evict_normal",
	DotL1EvictUnchanged: ".L1::evict_unchanged",
	DotL1EvictFirst:     ".L1::evict_first",
	DotL1EvictLast:      ".L1::evict_last",
	DotL1NoAllocate:     ".L1::no_allocate",
	DotL2CacheHint:      ".L2::cache_hint",
	DotL2_64B:           ".L2::64B",
	DotL2_128B:          ".L2::128B",
	DotL2_256B:          ".L2::256B",
	DotUnified:          ".unified",
}

// textKeyword is the reverse of keywordText, used by the lexer's longest-match
// scan over dot-keyword spellings.
var textKeyword = func() map[string]Type {
	m := make(map[string]Type, len(keywordText))
	for t, s := range keywordText {
		m[s] = t
	}
	return m
}()

// OpcodeText projects a token onto the opcode name instruction rules
// dispatch on. Opcodes are identifier-shaped and are never tokenized as dot-keywords (an opcode never
// starts with a dot), but the parser's identifier primitive must also accept
// a dot-keyword token whose *textual* spelling happens to collide with an
// opcode name spelled without a keyword's leading dot — this never actually
// occurs for the opcodes in this subset (mov/ld/st/add/ret), so the
// projection below is the identity for them. It exists because spec §4.E's
// "opcode_text()" projection is part of the contract the dispatcher relies
// on, independent of whether any current keyword collides with an opcode.
func OpcodeText(t Token) (string, bool) {
	if t.Type == Ident {
		return t.Literal, true
	}
	if s, ok := keywordText[t.Type]; ok {
		return s[1:], true
	}
	return "", false
}

// Lookup returns the dot-keyword Type for an exact spelling, if any.
func Lookup(spelling string) (Type, bool) {
	t, ok := textKeyword[spelling]
	return t, ok
}

// IsDotKeyword reports whether t is one of the fixed modifier keywords.
func IsDotKeyword(t Type) bool {
	return t >= firstDotKeyword && t < lastDotKeyword
}

// Text returns the canonical source spelling of a dot-keyword token.
func Text(t Type) string {
	return keywordText[t]
}

// Token is a single lexical unit together with its source position. Payload
// variants (Ident, String, Hex, Decimal, F32, F64) carry the matched slice of
// source text in Literal, and Illegal carries the offending byte; all other
// variants leave Literal empty.
type Token struct {
	Type    Type
	Literal string
	Pos     Position
}

func (t Token) String() string {
	if t.Literal != "" {
		return fmt.Sprintf("%s(%q)@%s", t.Type, t.Literal, t.Pos)
	}
	return fmt.Sprintf("%s@%s", t.Type, t.Pos)
}

// Position is a source location: 1-based line/column plus the 0-based byte
// offset into the source.
type Position struct {
	Line   int
	Column int
	Offset int // byte offset into the source, used by Unrecognized{Statement,Directive}
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

var typeNames = map[Type]string{
	EOF:       "EOF",
	Illegal:   "ILLEGAL",
	Ident:     "IDENT",
	String:    "STRING",
	Hex:       "HEX",
	Decimal:   "DECIMAL",
	F32:       "F32",
	F64:       "F64",
	Comma:     ",",
	Dot:       ".",
	Colon:     ":",
	Semicolon: ";",
	At:        "@",
	Bang:      "!",
	Pipe:      "|",
	LParen:    "(",
	RParen:    ")",
	LBracket:  "[",
	RBracket:  "]",
	LBrace:    "{",
	RBrace:    "}",
	Lt:        "<",
	Gt:        ">",
	Minus:     "-",
	Plus:      "+",
}

func (t Type) String() string {
	if s, ok := typeNames[t]; ok {
		return s
	}
	if s, ok := keywordText[t]; ok {
		return s
	}
	return fmt.Sprintf("Type(%d)", int(t))
}
