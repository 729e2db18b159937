package inspect_test

import (
	"strings"
	"testing"

	"github.com/lookbusy1344/ptx-parser/inspect"
	"github.com/lookbusy1344/ptx-parser/module"
)

const sample = `
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

func TestNewPopulatesFunctionList(t *testing.T) {
	mod, diags, err := module.Parse(sample)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}

	tui := inspect.New(mod, diags)

	if tui.FunctionList.GetItemCount() != 1 {
		t.Fatalf("expected 1 function in the list, got %d", tui.FunctionList.GetItemCount())
	}

	text := tui.BodyView.GetText(true)
	if !strings.Contains(text, "add.u32") {
		t.Fatalf("expected the add instruction rendered in the body view, got %q", text)
	}
}

func TestNewWithDiagnostics(t *testing.T) {
	src := `
.version 6.5
.target sm_30
.visible .entry k()
{
	@p nonsense;
	ret;
}
`
	mod, diags, err := module.Parse(src)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}

	tui := inspect.New(mod, diags)
	diagText := tui.DiagView.GetText(true)
	if !strings.Contains(diagText, "unrecognized-statement") {
		t.Fatalf("expected unrecognized-statement diagnostic rendered, got %q", diagText)
	}
}
