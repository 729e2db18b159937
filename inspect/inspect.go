// Package inspect implements a read-only terminal UI for browsing a parsed
// ast.Module alongside its diag.List, assembled the same way the teacher's
// debugger.TUI assembles bordered tview.TextViews inside a tview.Flex
// (debugger/tui.go) — repurposed from "step an ARM CPU" to "browse a
// parsed PTX module and its diagnostics."
package inspect

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/lookbusy1344/ptx-parser/ast"
	"github.com/lookbusy1344/ptx-parser/diag"
	"github.com/lookbusy1344/ptx-parser/printer"
)

// TUI is the inspect application: a list of functions on the left, the
// selected function's body and the module's diagnostics on the right.
type TUI struct {
	Module      *ast.Module
	Diagnostics *diag.List

	App   *tview.Application
	Pages *tview.Pages

	MainLayout   *tview.Flex
	FunctionList *tview.List
	BodyView     *tview.TextView
	SummaryView  *tview.TextView
	DiagView     *tview.TextView
}

// New builds an inspector over a parsed module and its diagnostics.
func New(mod *ast.Module, diags *diag.List) *TUI {
	t := &TUI{
		Module:      mod,
		Diagnostics: diags,
		App:         tview.NewApplication(),
	}

	t.initializeViews()
	t.buildLayout()
	t.setupKeyBindings()
	t.populateFunctionList()

	return t
}

func (t *TUI) initializeViews() {
	t.FunctionList = tview.NewList().ShowSecondaryText(false)
	t.FunctionList.SetBorder(true).SetTitle(" Functions ")

	t.BodyView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWrap(false)
	t.BodyView.SetBorder(true).SetTitle(" Body ")

	t.SummaryView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(false)
	t.SummaryView.SetBorder(true).SetTitle(" Module ")

	t.DiagView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWrap(true)
	t.DiagView.SetBorder(true).SetTitle(" Diagnostics ")

	t.SummaryView.SetText(printer.ModuleSummary(t.Module))
	t.DiagView.SetText(renderDiagnostics(t.Diagnostics))
}

func (t *TUI) buildLayout() {
	left := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(t.SummaryView, 5, 0, false).
		AddItem(t.FunctionList, 0, 1, true)

	right := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(t.BodyView, 0, 3, false).
		AddItem(t.DiagView, 0, 1, false)

	t.MainLayout = tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(left, 0, 1, true).
		AddItem(right, 0, 2, false)

	t.Pages = tview.NewPages().AddPage("main", t.MainLayout, true, true)
}

func (t *TUI) setupKeyBindings() {
	t.App.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyCtrlC:
			t.App.Stop()
			return nil
		case tcell.KeyEscape:
			t.App.Stop()
			return nil
		}
		return event
	})
}

func (t *TUI) populateFunctionList() {
	for i, fn := range t.Module.Functions {
		idx := i
		label := printer.FunctionSignature(fn)
		t.FunctionList.AddItem(label, "", 0, func() {
			t.showFunction(idx)
		})
	}
	t.FunctionList.SetChangedFunc(func(idx int, _ string, _ string, _ rune) {
		t.showFunction(idx)
	})

	if len(t.Module.Functions) > 0 {
		t.showFunction(0)
	}
}

func (t *TUI) showFunction(idx int) {
	if idx < 0 || idx >= len(t.Module.Functions) {
		return
	}
	fn := t.Module.Functions[idx]

	var b strings.Builder
	fmt.Fprintln(&b, printer.FunctionSignature(fn))
	for _, tn := range fn.Tuning {
		fmt.Fprintf(&b, "  tuning %+v\n", tn)
	}
	b.WriteByte('\n')

	if fn.Body == nil {
		b.WriteString("[yellow](forward declaration, no body)[white]")
	} else {
		for _, st := range fn.Body {
			fmt.Fprintln(&b, "  "+printer.Statement(st))
		}
	}

	t.BodyView.SetText(b.String())
}

func renderDiagnostics(d *diag.List) string {
	if d.Empty() {
		return "[green]no diagnostics[white]"
	}
	var b strings.Builder
	for _, e := range d.Errors {
		fmt.Fprintf(&b, "[yellow]%s[white]: %s\n", e.Kind, e.Pos)
	}
	return b.String()
}

// Run starts the TUI event loop.
func (t *TUI) Run() error {
	return t.App.SetRoot(t.Pages, true).SetFocus(t.FunctionList).Run()
}

// Stop stops the TUI application.
func (t *TUI) Stop() {
	t.App.Stop()
}
