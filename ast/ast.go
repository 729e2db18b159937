// Package ast defines the typed tree a successful (or partially successful)
// parse produces: Module → Functions → Statements → Instructions, plus the
// Variable/ParsedOperand/ImmediateValue leaves. Values are immutable once
// built by package module; identifiers and literal text are Go substrings of
// the source, sharing its memory without the lifetime tie the Rust original
// uses.
package ast

// Version is a module's `.version major.minor` directive.
type Version struct {
	Major int
	Minor int
}

// ShaderModel is the parsed `.target sm_NN[x]` tag: a generation number plus
// an optional single trailing architecture-variant letter.
type ShaderModel struct {
	Number int
	Suffix rune // 0 when absent
}

// AddressSize mirrors the `.address_size` directive; only 64 is accepted by
// this grammar (spec §4.F), so the zero value means "omitted," not "32."
type AddressSize int

const (
	AddressSizeNone AddressSize = iota
	AddressSize64
)

// Module is the root of a parse: version, target, optional address size,
// and the ordered top-level directives (in this subset, only functions).
type Module struct {
	Version     Version
	Target      ShaderModel
	AddressSize AddressSize
	Functions   []*Function
}

// LinkingDirective is a method's visibility marker.
type LinkingDirective int

const (
	LinkDefault LinkingDirective = iota
	LinkExtern
	LinkVisible
	LinkWeak
)

// TuningKind tags which performance-tuning directive a Tuning value carries.
type TuningKind int

const (
	TuningMaxNReg TuningKind = iota
	TuningMaxNtid
	TuningReqNtid
	TuningMinNCtaPerSm
)

// Tuning is one `.maxnreg`/`.maxntid`/`.reqntid`/`.minnctapersm` directive.
// XYZ components default to 1 when the source supplies fewer than three.
type Tuning struct {
	Kind   TuningKind
	Scalar uint32  // MaxNReg / MinNCtaPerSm
	XYZ    [3]uint32 // MaxNtid / ReqNtid
}

// MethodKind distinguishes a kernel entry point from a device function.
type MethodKind int

const (
	MethodEntry MethodKind = iota
	MethodFunc
)

// MethodDeclaration is a function's signature: its kind, name, parameters,
// and (for .func only) return variables.
type MethodDeclaration struct {
	Kind    MethodKind
	Name    string
	Params  []*Variable
	Returns []*Variable
}

// Function is one `.func`/`.entry` definition or forward declaration.
type Function struct {
	Linking     LinkingDirective
	Declaration MethodDeclaration
	Tuning      []Tuning
	Body        []*Statement // nil means a forward declaration (terminated by ';')
}

// StateSpace is the memory region a variable or load/store address refers
// to.
type StateSpace int

const (
	StateReg StateSpace = iota
	StateLocal
	StateParam
	StateShared
	StateGeneric
	StateGlobal
	StateConst
)

// ScalarType enumerates every scalar type token this grammar recognizes.
type ScalarType int

const (
	TypePred ScalarType = iota
	TypeB8
	TypeB16
	TypeB32
	TypeB64
	TypeB128
	TypeU8
	TypeU16
	TypeU16x2
	TypeU32
	TypeU64
	TypeS8
	TypeS16
	TypeS16x2
	TypeS32
	TypeS64
	TypeF16
	TypeF16x2
	TypeF32
	TypeF64
	TypeBF16
	TypeBF16x2
)

// VectorWidth is the optional `.v2`/`.v4` prefix widening a scalar type or
// register to a packed vector.
type VectorWidth int

const (
	VectorNone VectorWidth = iota
	VectorV2
	VectorV4
)

// VarType pairs an optional vector width with its scalar element type.
type VarType struct {
	Vector VectorWidth
	Scalar ScalarType
}

// ArrayInit records a variable's `[dim1][dim2]...` array dimensions. A zero
// entry anywhere in Dims corresponds to the ZeroDimensionArray diagnostic
// kind (the AST still carries the zero so a consumer can see what was
// written). Initializer values are not carried. HadInitializer is never set
// by package module, which does not parse variable initializers; a
// declaration with one does not parse as a variable.
type ArrayInit struct {
	Dims            []uint32
	HadInitializer  bool
}

// Variable is a `.reg`/`.local`/`.param`/... declaration: optional
// alignment, type, state space, name, an optional `<N>` parallel-register
// count, and an optional array shape.
type Variable struct {
	Align *uint32
	Type  VarType
	Space StateSpace
	Name  string
	Count *uint32
	Array *ArrayInit
}

// Predicate is the optional `@[!]p` prefix gating an instruction.
type Predicate struct {
	Negated  bool
	Register string
}

// StatementKind tags which alternative a Statement value holds.
type StatementKind int

const (
	StmtLabel StatementKind = iota
	StmtVariable
	StmtInstruction
	StmtBlock
)

// Statement is one entry in a function body: a label, a variable
// declaration, a (possibly predicated) instruction, or a nested block.
type Statement struct {
	Kind        StatementKind
	Label       string
	Variable    *Variable
	Predicate   *Predicate
	Instruction Instruction
	Block       []*Statement
}

// Instruction is implemented by exactly the five opcode families this
// grammar covers: Mov, Ld, St, Add, Ret.
type Instruction interface {
	isInstruction()
}

// MovData is mov's modifier-derived semantic data.
type MovData struct {
	Vector VectorWidth
	Type   ScalarType
}

// Mov is `mov{.vec}.type d, a`.
type Mov struct {
	Data MovData
	Dst  ParsedOperand
	Src  ParsedOperand
}

func (Mov) isInstruction() {}

// LdStQualifier is the memory-ordering qualifier shared by ld and st. Raw
// and semantic forms coincide for Weak/Volatile (spec §4.C's conversion
// table lists them as an identity mapping), so a single type serves both.
type LdStQualifier int

const (
	QualWeak LdStQualifier = iota
	QualVolatile
	QualRelaxed
	QualRelease // st only
	QualAcquire // ld only
	QualMmioRelaxedSys
)

// Scope is the memory scope attached to .relaxed/.release/.acquire.
type Scope int

const (
	ScopeNone Scope = iota
	ScopeCta
	ScopeCluster
	ScopeGpu
	ScopeSys
)

// RawStCacheOperator is what the rule table binds directly from the store
// cache-operator modifier tokens (.wb/.cg/.cs/.wt), before the §4.C
// raw→semantic conversion.
type RawStCacheOperator int

const (
	RawStWb RawStCacheOperator = iota
	RawStCg
	RawStCs
	RawStWt
)

// StoreCacheOperator is the semantic store cache operator (§4.C conversion
// table, row 1).
type StoreCacheOperator int

const (
	StoreWriteback StoreCacheOperator = iota
	StoreL2Only
	StoreStreaming
	StoreWritethrough
)

// Semantic converts a raw store cache-operator token binding into its
// semantic value.
func (r RawStCacheOperator) Semantic() StoreCacheOperator {
	switch r {
	case RawStWb:
		return StoreWriteback
	case RawStCg:
		return StoreL2Only
	case RawStCs:
		return StoreStreaming
	case RawStWt:
		return StoreWritethrough
	default:
		return StoreWriteback
	}
}

// RawLdCacheOperator is what the rule table binds from the load
// cache-operator modifier tokens (.ca/.cg/.cs/.lu/.cv).
type RawLdCacheOperator int

const (
	RawLdCa RawLdCacheOperator = iota
	RawLdCg
	RawLdCs
	RawLdLu
	RawLdCv
)

// LoadCacheOperator is the semantic load cache operator (§4.C conversion
// table, row 2).
type LoadCacheOperator int

const (
	LoadCached    LoadCacheOperator = iota
	LoadL2Only
	LoadStreaming
	LoadLastUse
	LoadUncached
)

// Semantic converts a raw load cache-operator token binding into its
// semantic value.
func (r RawLdCacheOperator) Semantic() LoadCacheOperator {
	switch r {
	case RawLdCa:
		return LoadCached
	case RawLdCg:
		return LoadL2Only
	case RawLdCs:
		return LoadStreaming
	case RawLdLu:
		return LoadLastUse
	case RawLdCv:
		return LoadUncached
	default:
		return LoadCached
	}
}

// RawRounding is what the rule table binds from the rounding-mode modifier
// tokens (.rn/.rz/.rm/.rp), before conversion.
type RawRounding int

const (
	RawRn RawRounding = iota
	RawRz
	RawRm
	RawRp
)

// RoundingMode is the semantic rounding mode (§4.C conversion table, row 4).
// RoundNone is the Go zero value and is used when a rule has no rounding
// modifier at all (distinct from an explicit .rn, which is RoundNearestEven).
type RoundingMode int

const (
	RoundNone RoundingMode = iota
	RoundNearestEven
	RoundZero
	RoundNegativeInf
	RoundPositiveInf
)

// Semantic converts a raw rounding-mode token binding into its semantic
// value.
func (r RawRounding) Semantic() RoundingMode {
	switch r {
	case RawRn:
		return RoundNearestEven
	case RawRz:
		return RoundZero
	case RawRm:
		return RoundNegativeInf
	case RawRp:
		return RoundPositiveInf
	default:
		return RoundNearestEven
	}
}

// StData is st's modifier-derived semantic data, after raw→semantic
// conversion and default materialization (absent .weak/.volatile → Weak;
// absent .cop → Writeback; absent .ss → Generic, per spec §3 invariants).
type StData struct {
	Qualifier  LdStQualifier
	Scope      Scope
	StateSpace StateSpace
	Caching    StoreCacheOperator
	Vector     VectorWidth
	Type       ScalarType
}

// St is `st{.weak}{.ss}{.cop}{.vec}.type [a], b`, and its .volatile/
// .relaxed/.release/.mmio.relaxed.sys siblings.
type St struct {
	Data StData
	Addr ParsedOperand
	Src  ParsedOperand
}

func (St) isInstruction() {}

// LdData is ld's modifier-derived semantic data.
type LdData struct {
	Qualifier  LdStQualifier
	Scope      Scope
	StateSpace StateSpace
	Caching    LoadCacheOperator
	Vector     VectorWidth
	Type       ScalarType
}

// Ld is `ld{.weak}{.ss}{.cop}{.vec}.type d, [a]`, and its .volatile/
// .relaxed/.acquire/.mmio.relaxed.sys siblings.
type Ld struct {
	Data LdData
	Dst  ParsedOperand
	Addr ParsedOperand
}

func (Ld) isInstruction() {}

// AddData is add's modifier-derived semantic data. Rounding is RoundNone
// for the integer variants, which carry no rounding modifier at all.
type AddData struct {
	Type     ScalarType
	Saturate bool
	Ftz      bool
	Rounding RoundingMode
}

// Add is `add{.sat}.type d, a, b` across its eight variants (general
// integer, saturating s32, f32/f64/f16/f16x2/bf16/bf16x2).
type Add struct {
	Data AddData
	Dst  ParsedOperand
	A    ParsedOperand
	B    ParsedOperand
}

func (Add) isInstruction() {}

// RetData is ret's modifier-derived semantic data.
type RetData struct {
	Uniform bool
}

// Ret is `ret{.uni}`.
type Ret struct {
	Data RetData
}

func (Ret) isInstruction() {}

// OperandKind tags which alternative a ParsedOperand value holds.
type OperandKind int

const (
	OperandReg OperandKind = iota
	OperandRegOffset
	OperandImm
	OperandVecMember
	OperandVecPack
)

// ParsedOperand is one instruction operand: a bare register, a register
// plus signed byte offset (`[a+8]`), an immediate, one lane of a vector
// register (`v.x`), or a packed vector literal (`{a,b,c,d}`).
type ParsedOperand struct {
	Kind OperandKind

	Reg    string // OperandReg, OperandRegOffset, OperandVecMember (base register)
	Offset int64  // OperandRegOffset

	Imm ImmediateValue // OperandImm

	VecIndex int // OperandVecMember: 0..3, per the x/y/z/w → 0/1/2/3 law

	VecRegs []string // OperandVecPack: len 2 or 4
}

// ImmKind tags which numeric representation an ImmediateValue holds.
type ImmKind int

const (
	ImmS64 ImmKind = iota
	ImmU64
	ImmF32
	ImmF64
)

// ImmediateValue is a literal operand. F32/F64 store the raw IEEE-754 bit
// pattern exactly as the hex-float token spelled it (spec §3/§6: `0f`/`0d`
// hex bit patterns, not parsed decimal floats).
type ImmediateValue struct {
	Kind ImmKind
	S64  int64
	U64  uint64
	F32Bits uint32
	F64Bits uint64
}
