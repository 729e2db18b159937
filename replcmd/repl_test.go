package replcmd

import (
	"strings"
	"testing"
)

func TestRenderLineWrapsBareStatement(t *testing.T) {
	out := renderLine("add.u32 %r1, %r1, %r2;", true)

	if !strings.Contains(out, "add.u32") {
		t.Fatalf("expected rendered add instruction, got %q", out)
	}
	if !strings.Contains(out, "ret") {
		t.Fatalf("expected the synthetic ret; appended, got %q", out)
	}
}

func TestRenderLineFullModule(t *testing.T) {
	src := ".version 6.5\n.target sm_30\n.visible .entry k()\n{\n\tret;\n}\n"
	out := renderLine(src, true)

	if strings.TrimSpace(out) != "ret;" {
		t.Fatalf("expected just the ret statement rendered, got %q", out)
	}
}

func TestRenderLineEchoesDiagnostics(t *testing.T) {
	out := renderLine(".reg .u32 a[0]; ret;", true)

	if !strings.Contains(out, "zero-dimension-array") {
		t.Fatalf("expected the zero-dimension-array diagnostic echoed, got %q", out)
	}
}

func TestRenderLineReportsFatalError(t *testing.T) {
	out := renderLine(".version 6.5\n.target sm_90ab\n", true)

	if !strings.Contains(out, "error:") {
		t.Fatalf("expected a fatal error message, got %q", out)
	}
}
