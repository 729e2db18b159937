// Package printer renders a parsed ast.Module back to PTX-shaped text, the
// way the teacher's debugger renders disassembly and register state as
// human-readable lines (debugger/tui.go's Update*View methods) rather than
// dumping Go struct values. Used by both the replcmd REPL and the inspect
// TUI so the two front ends agree on how an instruction reads.
package printer

import (
	"fmt"
	"strings"

	"github.com/lookbusy1344/ptx-parser/ast"
)

var scalarNames = map[ast.ScalarType]string{
	ast.TypePred:   "pred",
	ast.TypeB8:     "b8",
	ast.TypeB16:    "b16",
	ast.TypeB32:    "b32",
	ast.TypeB64:    "b64",
	ast.TypeB128:   "b128",
	ast.TypeU8:     "u8",
	ast.TypeU16:    "u16",
	ast.TypeU16x2:  "u16x2",
	ast.TypeU32:    "u32",
	ast.TypeU64:    "u64",
	ast.TypeS8:     "s8",
	ast.TypeS16:    "s16",
	ast.TypeS16x2:  "s16x2",
	ast.TypeS32:    "s32",
	ast.TypeS64:    "s64",
	ast.TypeF16:    "f16",
	ast.TypeF16x2:  "f16x2",
	ast.TypeF32:    "f32",
	ast.TypeF64:    "f64",
	ast.TypeBF16:   "bf16",
	ast.TypeBF16x2: "bf16x2",
}

var stateSpaceNames = map[ast.StateSpace]string{
	ast.StateReg:     "reg",
	ast.StateLocal:   "local",
	ast.StateParam:   "param",
	ast.StateShared:  "shared",
	ast.StateGeneric: "generic",
	ast.StateGlobal:  "global",
	ast.StateConst:   "const",
}

var qualifierNames = map[ast.LdStQualifier]string{
	ast.QualWeak:               "weak",
	ast.QualVolatile:           "volatile",
	ast.QualRelaxed:            "relaxed",
	ast.QualRelease:            "release",
	ast.QualAcquire:            "acquire",
	ast.QualMmioRelaxedSys:     "mmio.relaxed.sys",
}

var scopeNames = map[ast.Scope]string{
	ast.ScopeNone:    "",
	ast.ScopeCta:     "cta",
	ast.ScopeCluster: "cluster",
	ast.ScopeGpu:     "gpu",
	ast.ScopeSys:     "sys",
}

// ScalarType renders a scalar type as its PTX dot-suffix spelling (without
// the leading dot), e.g. "u32".
func ScalarType(t ast.ScalarType) string {
	if s, ok := scalarNames[t]; ok {
		return s
	}
	return fmt.Sprintf("<type %d>", int(t))
}

// VarType renders an optional vector width plus scalar type, e.g. "v4.f32".
func VarType(t ast.VarType) string {
	switch t.Vector {
	case ast.VectorV2:
		return "v2." + ScalarType(t.Scalar)
	case ast.VectorV4:
		return "v4." + ScalarType(t.Scalar)
	default:
		return ScalarType(t.Scalar)
	}
}

// StateSpace renders a state space name, e.g. "global".
func StateSpace(s ast.StateSpace) string {
	if n, ok := stateSpaceNames[s]; ok {
		return n
	}
	return fmt.Sprintf("<space %d>", int(s))
}

// Operand renders a single parsed operand back to PTX operand syntax.
func Operand(op ast.ParsedOperand) string {
	switch op.Kind {
	case ast.OperandReg:
		return op.Reg
	case ast.OperandRegOffset:
		if op.Offset == 0 {
			return fmt.Sprintf("[%s]", op.Reg)
		}
		if op.Offset > 0 {
			return fmt.Sprintf("[%s+%d]", op.Reg, op.Offset)
		}
		return fmt.Sprintf("[%s%d]", op.Reg, op.Offset)
	case ast.OperandImm:
		return Immediate(op.Imm)
	case ast.OperandVecMember:
		return fmt.Sprintf("%s.%s", op.Reg, "xyzw"[op.VecIndex:op.VecIndex+1])
	case ast.OperandVecPack:
		return "{" + strings.Join(op.VecRegs, ", ") + "}"
	default:
		return "<?>"
	}
}

// Immediate renders a literal operand.
func Immediate(v ast.ImmediateValue) string {
	switch v.Kind {
	case ast.ImmS64:
		return fmt.Sprintf("%d", v.S64)
	case ast.ImmU64:
		return fmt.Sprintf("%dU", v.U64)
	case ast.ImmF32:
		return fmt.Sprintf("0f%08X", v.F32Bits)
	case ast.ImmF64:
		return fmt.Sprintf("0d%016X", v.F64Bits)
	default:
		return "<?>"
	}
}

func ordering(qual ast.LdStQualifier, scope ast.Scope) string {
	q := qualifierNames[qual]
	if scope == ast.ScopeNone {
		return q
	}
	return q + "." + scopeNames[scope]
}

// Instruction renders one decoded instruction back to its PTX mnemonic
// line, e.g. "ld.weak.global.u32 %r1, [%rd1];" minus the trailing semicolon
// (callers append statement punctuation).
func Instruction(inst ast.Instruction) string {
	switch v := inst.(type) {
	case ast.Mov:
		return fmt.Sprintf("mov.%s %s, %s", VarType(ast.VarType{Vector: v.Data.Vector, Scalar: v.Data.Type}), Operand(v.Dst), Operand(v.Src))

	case ast.Ld:
		var mods []string
		mods = append(mods, ordering(v.Data.Qualifier, v.Data.Scope))
		if v.Data.StateSpace != ast.StateGeneric {
			mods = append(mods, StateSpace(v.Data.StateSpace))
		}
		mods = append(mods, VarType(ast.VarType{Vector: v.Data.Vector, Scalar: v.Data.Type}))
		addr := Operand(v.Addr)
		if v.Addr.Kind == ast.OperandReg {
			addr = "[" + addr + "]"
		}
		return fmt.Sprintf("ld.%s %s, %s", strings.Join(nonEmpty(mods), "."), Operand(v.Dst), addr)

	case ast.St:
		var mods []string
		mods = append(mods, ordering(v.Data.Qualifier, v.Data.Scope))
		if v.Data.StateSpace != ast.StateGeneric {
			mods = append(mods, StateSpace(v.Data.StateSpace))
		}
		mods = append(mods, VarType(ast.VarType{Vector: v.Data.Vector, Scalar: v.Data.Type}))
		addr := Operand(v.Addr)
		if v.Addr.Kind == ast.OperandReg {
			addr = "[" + addr + "]"
		}
		return fmt.Sprintf("st.%s %s, %s", strings.Join(nonEmpty(mods), "."), addr, Operand(v.Src))

	case ast.Add:
		mod := ScalarType(v.Data.Type)
		if v.Data.Saturate {
			mod = "sat." + mod
		}
		if v.Data.Ftz {
			mod = "ftz." + mod
		}
		return fmt.Sprintf("add.%s %s, %s, %s", mod, Operand(v.Dst), Operand(v.A), Operand(v.B))

	case ast.Ret:
		if v.Data.Uniform {
			return "ret.uni"
		}
		return "ret"

	default:
		return fmt.Sprintf("<unknown instruction %T>", inst)
	}
}

func nonEmpty(ss []string) []string {
	out := make([]string, 0, len(ss))
	for _, s := range ss {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Variable renders a declaration, e.g. ".reg .u32 %r1".
func Variable(v *ast.Variable) string {
	var b strings.Builder
	if v.Align != nil {
		fmt.Fprintf(&b, ".align %d ", *v.Align)
	}
	fmt.Fprintf(&b, ".%s .%s %s", StateSpace(v.Space), VarType(v.Type), v.Name)
	if v.Count != nil {
		fmt.Fprintf(&b, "<%d>", *v.Count)
	}
	if v.Array != nil {
		for _, d := range v.Array.Dims {
			fmt.Fprintf(&b, "[%d]", d)
		}
	}
	return b.String()
}

// Statement renders one function-body statement on a single line (nested
// blocks are rendered as "{ ... N stmts ... }" rather than recursed fully,
// which is enough detail for the inspect TUI's list view).
func Statement(st *ast.Statement) string {
	switch st.Kind {
	case ast.StmtLabel:
		return st.Label + ":"
	case ast.StmtVariable:
		return Variable(st.Variable) + ";"
	case ast.StmtInstruction:
		line := Instruction(st.Instruction)
		if st.Predicate != nil {
			p := "@"
			if st.Predicate.Negated {
				p += "!"
			}
			line = p + st.Predicate.Register + " " + line
		}
		return line + ";"
	case ast.StmtBlock:
		return fmt.Sprintf("{ ... %d stmts ... }", len(st.Block))
	default:
		return "<?>"
	}
}

// FunctionSignature renders a function's linking/kind/name/params on one
// line, e.g. ".visible .entry add(.param .u64 input, .param .u64 output)".
func FunctionSignature(fn *ast.Function) string {
	var b strings.Builder
	switch fn.Linking {
	case ast.LinkExtern:
		b.WriteString(".extern ")
	case ast.LinkVisible:
		b.WriteString(".visible ")
	case ast.LinkWeak:
		b.WriteString(".weak ")
	}
	switch fn.Declaration.Kind {
	case ast.MethodEntry:
		b.WriteString(".entry ")
	case ast.MethodFunc:
		b.WriteString(".func ")
	}
	b.WriteString(fn.Declaration.Name)
	b.WriteByte('(')
	for i, p := range fn.Declaration.Params {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(Variable(p))
	}
	b.WriteByte(')')
	return b.String()
}

// ModuleSummary renders a one-paragraph overview of a parsed module.
func ModuleSummary(mod *ast.Module) string {
	var b strings.Builder
	fmt.Fprintf(&b, "version %d.%d\n", mod.Version.Major, mod.Version.Minor)
	if mod.Target.Number != 0 {
		if mod.Target.Suffix != 0 {
			fmt.Fprintf(&b, "target sm_%d%c\n", mod.Target.Number, mod.Target.Suffix)
		} else {
			fmt.Fprintf(&b, "target sm_%d\n", mod.Target.Number)
		}
	}
	if mod.AddressSize == ast.AddressSize64 {
		b.WriteString("address_size 64\n")
	}
	fmt.Fprintf(&b, "%d function(s)\n", len(mod.Functions))
	return b.String()
}
