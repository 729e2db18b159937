package module_test

import (
	"testing"

	"github.com/lookbusy1344/ptx-parser/ast"
	"github.com/lookbusy1344/ptx-parser/diag"
	"github.com/lookbusy1344/ptx-parser/module"
)

func TestTargetSm11(t *testing.T) {
	src := ".version 6.5\n.target sm_11\n"
	mod, d, err := module.Parse(src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mod.Target.Number != 11 || mod.Target.Suffix != 0 {
		t.Fatalf("got %+v", mod.Target)
	}
	if !d.Empty() {
		t.Fatalf("expected no diagnostics, got %v", d.Errors)
	}
}

func TestTargetSm90a(t *testing.T) {
	src := ".version 6.5\n.target sm_90a\n"
	mod, _, err := module.Parse(src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mod.Target.Number != 90 || mod.Target.Suffix != 'a' {
		t.Fatalf("got %+v", mod.Target)
	}
}

func TestTargetSm90abFails(t *testing.T) {
	src := ".version 6.5\n.target sm_90ab\n"
	_, _, err := module.Parse(src)
	if err == nil {
		t.Fatalf("expected a fatal error for a multi-letter shader-model suffix")
	}
}

func TestMinimalProgramWorkedExample(t *testing.T) {
	src := `
.version 6.5
.target sm_30
.address_size 64

.visible .entry add(
	.param .u64 input,
	.param .u64 output
)
{
	.reg .u64 a;
	.reg .u64 b;

	ld.param.u64 a, [input];
	ld.param.u64 b, [output];
	add.u32 b, b, a;
	st.param.u64 [output], b;
	ret;
}
`
	mod, d, err := module.Parse(src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mod.Version.Major != 6 || mod.Version.Minor != 5 {
		t.Fatalf("got version %+v", mod.Version)
	}
	if mod.Target.Number != 30 {
		t.Fatalf("got target %+v", mod.Target)
	}
	if mod.AddressSize != ast.AddressSize64 {
		t.Fatalf("expected address_size 64, got %v", mod.AddressSize)
	}
	if len(mod.Functions) != 1 {
		t.Fatalf("expected 1 function, got %d", len(mod.Functions))
	}
	fn := mod.Functions[0]
	if fn.Linking != ast.LinkVisible {
		t.Fatalf("expected Visible linking, got %v", fn.Linking)
	}
	if fn.Declaration.Kind != ast.MethodEntry || fn.Declaration.Name != "add" {
		t.Fatalf("got declaration %+v", fn.Declaration)
	}
	if len(fn.Declaration.Params) != 2 {
		t.Fatalf("expected 2 params, got %d", len(fn.Declaration.Params))
	}
	if fn.Body == nil {
		t.Fatalf("expected a function body, got a forward declaration")
	}

	var instCount int
	for _, st := range fn.Body {
		if st.Kind == ast.StmtInstruction {
			instCount++
		}
	}
	if instCount != 5 {
		t.Fatalf("expected 5 instruction statements, got %d", instCount)
	}
	if !d.Empty() {
		t.Fatalf("expected no diagnostics, got %v", d.Errors)
	}
}

func TestForwardDeclarationHasNilBody(t *testing.T) {
	src := ".version 6.5\n.target sm_30\n.extern .func foo();\n"
	mod, _, err := module.Parse(src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	fn := mod.Functions[0]
	if fn.Body != nil {
		t.Fatalf("expected nil body for a forward declaration, got %+v", fn.Body)
	}
	if fn.Linking != ast.LinkExtern {
		t.Fatalf("expected Extern linking, got %v", fn.Linking)
	}
}

func TestTuningDirectivesDefaultUnspecifiedComponents(t *testing.T) {
	src := `
.version 6.5
.target sm_30
.visible .entry k()
.maxntid 256
{
	ret;
}
`
	mod, _, err := module.Parse(src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	fn := mod.Functions[0]
	if len(fn.Tuning) != 1 {
		t.Fatalf("expected 1 tuning directive, got %d", len(fn.Tuning))
	}
	tn := fn.Tuning[0]
	if tn.Kind != ast.TuningMaxNtid || tn.XYZ != [3]uint32{256, 1, 1} {
		t.Fatalf("got %+v", tn)
	}
}

func TestLabelAndPredicatedInstruction(t *testing.T) {
	src := `
.version 6.5
.target sm_30
.visible .entry k()
{
loop:
	@p add.u32 b, b, a;
	ret;
}
`
	mod, _, err := module.Parse(src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	stmts := mod.Functions[0].Body
	if len(stmts) != 3 {
		t.Fatalf("expected label + predicated add + ret, got %d statements", len(stmts))
	}
	if stmts[0].Kind != ast.StmtLabel || stmts[0].Label != "loop" {
		t.Fatalf("got %+v", stmts[0])
	}
	if stmts[1].Predicate == nil || stmts[1].Predicate.Register != "p" || stmts[1].Predicate.Negated {
		t.Fatalf("got predicate %+v", stmts[1].Predicate)
	}
}

func TestUnrecognizedStatementIsSkippedWithDiagnostic(t *testing.T) {
	src := `
.version 6.5
.target sm_30
.visible .entry k()
{
	nosuchop a, b;
	ret;
}
`
	mod, d, err := module.Parse(src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Empty() {
		t.Fatalf("expected an UnrecognizedStatement diagnostic")
	}
	found := false
	for _, e := range d.Errors {
		if e.Kind == diag.UnrecognizedStatement {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected UnrecognizedStatement among %v", d.Errors)
	}
	stmts := mod.Functions[0].Body
	if len(stmts) != 1 {
		t.Fatalf("expected the garbage statement skipped and only ret kept, got %d statements", len(stmts))
	}
}

func TestMultiVariableCount(t *testing.T) {
	src := `
.version 6.5
.target sm_30
.visible .entry k()
{
	.reg .u32 %r<4>;
	ret;
}
`
	mod, _, err := module.Parse(src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	stmt := mod.Functions[0].Body[0]
	if stmt.Kind != ast.StmtVariable || stmt.Variable.Count == nil || *stmt.Variable.Count != 4 {
		t.Fatalf("got %+v", stmt.Variable)
	}
}
