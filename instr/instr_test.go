package instr_test

import (
	"testing"

	"github.com/lookbusy1344/ptx-parser/ast"
	"github.com/lookbusy1344/ptx-parser/diag"
	"github.com/lookbusy1344/ptx-parser/instr"
	"github.com/lookbusy1344/ptx-parser/lexer"
	"github.com/lookbusy1344/ptx-parser/pstream"
	"github.com/lookbusy1344/ptx-parser/token"
)

// parseInstruction tokenizes src (an opcode plus its modifiers and
// operands, no trailing ';'), consumes the leading opcode identifier, and
// dispatches the remainder through the instruction rule compiler.
func parseInstruction(t *testing.T, src string) (ast.Instruction, *diag.List) {
	t.Helper()
	toks := lexer.TokenizeAll(src)
	var d diag.List
	s := pstream.New(toks, &d)
	opTok, ok := pstream.Any(s)
	if !ok || opTok.Type != token.Ident {
		t.Fatalf("expected leading opcode identifier in %q", src)
	}
	disp := instr.NewDispatcher()
	inst, ok := disp.Parse(opTok.Literal, s, opTok.Pos, &d)
	if !ok {
		t.Fatalf("failed to parse instruction %q", src)
	}
	return inst, &d
}

func TestAddS32WithoutSat(t *testing.T) {
	inst, d := parseInstruction(t, "add.s32 d, a, b")
	add, ok := inst.(ast.Add)
	if !ok {
		t.Fatalf("expected Add, got %T", inst)
	}
	if add.Data.Saturate || add.Data.Type != ast.TypeS32 {
		t.Fatalf("got %+v", add.Data)
	}
	if !d.Empty() {
		t.Fatalf("expected no diagnostics, got %v", d.Errors)
	}
}

func TestAddSatS32(t *testing.T) {
	inst, _ := parseInstruction(t, "add.sat.s32 d, a, b")
	add := inst.(ast.Add)
	if !add.Data.Saturate {
		t.Fatalf("expected saturate true")
	}
	if add.Data.Type != ast.TypeS32 {
		t.Fatalf("expected S32, got %v", add.Data.Type)
	}
}

func TestAddGeneralIntegerU64(t *testing.T) {
	inst, _ := parseInstruction(t, "add.u64 b, b, 1")
	add := inst.(ast.Add)
	if add.Data.Type != ast.TypeU64 || add.Data.Saturate {
		t.Fatalf("got %+v", add.Data)
	}
	if add.B.Kind != ast.OperandImm || add.B.Imm.Kind != ast.ImmS64 || add.B.Imm.S64 != 1 {
		t.Fatalf("got operand %+v", add.B)
	}
}

func TestStGlobalWtV4B32(t *testing.T) {
	inst, d := parseInstruction(t, "st.global.wt.v4.b32 [p], v")
	st := inst.(ast.St)
	if st.Data.Qualifier != ast.QualWeak {
		t.Fatalf("expected Weak qualifier, got %v", st.Data.Qualifier)
	}
	if st.Data.StateSpace != ast.StateGlobal {
		t.Fatalf("expected Global, got %v", st.Data.StateSpace)
	}
	if st.Data.Caching != ast.StoreWritethrough {
		t.Fatalf("expected Writethrough, got %v", st.Data.Caching)
	}
	if st.Data.Vector != ast.VectorV4 || st.Data.Type != ast.TypeB32 {
		t.Fatalf("got vector=%v type=%v", st.Data.Vector, st.Data.Type)
	}
	if !d.Empty() {
		t.Fatalf("expected no diagnostics, got %v", d.Errors)
	}
}

func TestStRelaxedSysGlobalCacheHintRaisesTodo(t *testing.T) {
	inst, d := parseInstruction(t, "st.relaxed.sys.global.L2::cache_hint.b32 [p], v, q")
	st := inst.(ast.St)
	if st.Data.Qualifier != ast.QualRelaxed {
		t.Fatalf("expected Relaxed, got %v", st.Data.Qualifier)
	}
	if st.Data.Scope != ast.ScopeSys {
		t.Fatalf("expected Sys scope, got %v", st.Data.Scope)
	}
	if st.Data.StateSpace != ast.StateGlobal {
		t.Fatalf("expected Global, got %v", st.Data.StateSpace)
	}
	if len(d.Errors) != 2 {
		t.Fatalf("expected a Todo for L2::cache_hint and a Todo for the cache_policy operand, got %v", d.Errors)
	}
	for _, e := range d.Errors {
		if e.Kind != diag.Todo {
			t.Fatalf("expected Todo, got %v", e.Kind)
		}
	}
}

func TestLdWeakCacheHintAndCachePolicyRaiseTodo(t *testing.T) {
	inst, d := parseInstruction(t, "ld.L2::cache_hint.b32 a, [p], q")
	ld := inst.(ast.Ld)
	if ld.Data.Qualifier != ast.QualWeak {
		t.Fatalf("expected default Weak, got %v", ld.Data.Qualifier)
	}
	if len(d.Errors) != 2 {
		t.Fatalf("expected a Todo for L2::cache_hint and a Todo for the cache_policy operand, got %v", d.Errors)
	}
	for _, e := range d.Errors {
		if e.Kind != diag.Todo {
			t.Fatalf("expected Todo, got %v", e.Kind)
		}
	}
}

func TestLdWeakUnifiedRaisesTodo(t *testing.T) {
	inst, d := parseInstruction(t, "ld.global.u32 a, [p] .unified")
	ld := inst.(ast.Ld)
	if ld.Data.StateSpace != ast.StateGlobal {
		t.Fatalf("expected Global, got %v", ld.Data.StateSpace)
	}
	if d.Empty() {
		t.Fatalf("expected a Todo diagnostic for .unified")
	}
	if d.Errors[0].Kind != diag.Todo {
		t.Fatalf("expected Todo, got %v", d.Errors[0].Kind)
	}
}

func TestStDefaultsWithNoModifiers(t *testing.T) {
	inst, _ := parseInstruction(t, "st.u64 [a], b")
	st := inst.(ast.St)
	if st.Data.Qualifier != ast.QualWeak {
		t.Fatalf("expected default Weak, got %v", st.Data.Qualifier)
	}
	if st.Data.StateSpace != ast.StateGeneric {
		t.Fatalf("expected default Generic, got %v", st.Data.StateSpace)
	}
	if st.Data.Caching != ast.StoreWriteback {
		t.Fatalf("expected default Writeback, got %v", st.Data.Caching)
	}
}

func TestLdParamU64(t *testing.T) {
	inst, d := parseInstruction(t, "ld.param.u64 a, [input]")
	ld := inst.(ast.Ld)
	if ld.Data.StateSpace != ast.StateParam || ld.Data.Type != ast.TypeU64 {
		t.Fatalf("got %+v", ld.Data)
	}
	if ld.Data.Caching != ast.LoadCached {
		t.Fatalf("expected default Cached caching, got %v", ld.Data.Caching)
	}
	if !d.Empty() {
		t.Fatalf("expected no diagnostics, got %v", d.Errors)
	}
}

func TestMovVectorAndScalar(t *testing.T) {
	inst, _ := parseInstruction(t, "mov.u32 %r1, %r2")
	mov := inst.(ast.Mov)
	if mov.Data.Vector != ast.VectorNone || mov.Data.Type != ast.TypeU32 {
		t.Fatalf("got %+v", mov.Data)
	}

	inst2, _ := parseInstruction(t, "mov.v4.f32 %rv, %rs")
	mov2 := inst2.(ast.Mov)
	if mov2.Data.Vector != ast.VectorV4 || mov2.Data.Type != ast.TypeF32 {
		t.Fatalf("got %+v", mov2.Data)
	}
}

func TestRetUniform(t *testing.T) {
	inst, _ := parseInstruction(t, "ret")
	ret := inst.(ast.Ret)
	if ret.Data.Uniform {
		t.Fatalf("expected uniform=false by default")
	}

	inst2, _ := parseInstruction(t, "ret.uni")
	ret2 := inst2.(ast.Ret)
	if !ret2.Data.Uniform {
		t.Fatalf("expected uniform=true")
	}
}

func TestVecPackOperand(t *testing.T) {
	inst, _ := parseInstruction(t, "mov.v4.u32 {a,b,c,d}, e")
	mov := inst.(ast.Mov)
	if mov.Dst.Kind != ast.OperandVecPack || len(mov.Dst.VecRegs) != 4 {
		t.Fatalf("got %+v", mov.Dst)
	}
}

func TestVecMemberOperandIndex(t *testing.T) {
	inst, _ := parseInstruction(t, "mov.u32 v.z, e")
	mov := inst.(ast.Mov)
	if mov.Dst.Kind != ast.OperandVecMember || mov.Dst.VecIndex != 2 {
		t.Fatalf("got %+v", mov.Dst)
	}
}

func TestRegOffsetOperand(t *testing.T) {
	inst, _ := parseInstruction(t, "ld.u64 b, [a+8]")
	ld := inst.(ast.Ld)
	if ld.Addr.Kind != ast.OperandRegOffset || ld.Addr.Offset != 8 {
		t.Fatalf("got %+v", ld.Addr)
	}
}

func TestSignedNegativeImmediate(t *testing.T) {
	inst, _ := parseInstruction(t, "add.u32 d, a, -5")
	add := inst.(ast.Add)
	if add.B.Imm.Kind != ast.ImmS64 || add.B.Imm.S64 != -5 {
		t.Fatalf("got %+v", add.B.Imm)
	}
}

func TestUnsignedSuffixImmediate(t *testing.T) {
	inst, _ := parseInstruction(t, "add.u32 d, a, 5U")
	add := inst.(ast.Add)
	if add.B.Imm.Kind != ast.ImmU64 || add.B.Imm.U64 != 5 {
		t.Fatalf("got %+v", add.B.Imm)
	}
}

func TestDispatcherOpcodesListsFiveFamilies(t *testing.T) {
	disp := instr.NewDispatcher()
	ops := disp.Opcodes()
	if len(ops) != 5 {
		t.Fatalf("expected 5 opcodes, got %v", ops)
	}
}
