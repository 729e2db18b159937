// Package replcmd implements the interactive line-editor front end: each
// line the user enters is parsed as a standalone PTX snippet and the
// resulting statements/diagnostics are printed immediately. Grounded on
// the listed-but-previously-unused github.com/chzyer/readline dependency
// for history and line editing, the way the teacher wires history/line
// editing around its own command loop (debugger.ExecuteCommand).
package replcmd

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"

	"github.com/lookbusy1344/ptx-parser/config"
	"github.com/lookbusy1344/ptx-parser/module"
	"github.com/lookbusy1344/ptx-parser/printer"
)

// REPL is an interactive session: a readline instance plus the wrapper
// module-level scaffolding (version, target and a synthetic entry function)
// every bare snippet is assembled with before being handed to module.Parse.
type REPL struct {
	cfg *config.Config
	rl  *readline.Instance
	out io.Writer
}

// New constructs a REPL reading from stdin/stdout with history configured
// from cfg.
func New(cfg *config.Config) (*REPL, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "ptx> ",
		HistoryFile:     cfg.REPL.HistoryFile,
		HistoryLimit:    cfg.REPL.HistorySize,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start line editor: %w", err)
	}

	return &REPL{cfg: cfg, rl: rl, out: rl.Stdout()}, nil
}

// Close releases the underlying terminal/history resources.
func (r *REPL) Close() error {
	return r.rl.Close()
}

// Run reads snippets until EOF or an explicit "exit"/"quit" command,
// parsing and printing each one.
func (r *REPL) Run() error {
	fmt.Fprintln(r.out, "ptx-parser REPL — enter one statement, or a full module. Ctrl-D to exit.")

	for {
		line, err := r.rl.Readline()
		switch {
		case errors.Is(err, readline.ErrInterrupt):
			continue
		case errors.Is(err, io.EOF):
			return nil
		case err != nil:
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			return nil
		}

		r.evalLine(line)
	}
}

// evalLine wraps a bare statement or body fragment in the minimal module
// preamble when the user didn't type one, so a REPL session can evaluate
// single instructions without retyping version/target/entry boilerplate
// every time.
func (r *REPL) evalLine(line string) {
	fmt.Fprint(r.out, renderLine(line, r.cfg.REPL.EchoDiagnostics))
}

// renderLine parses one REPL line (wrapping it in module boilerplate if it
// isn't already a full module) and renders its statements/diagnostics as
// text. Split out from evalLine so it can be exercised without a live
// terminal.
func renderLine(line string, echoDiagnostics bool) string {
	src := line
	if !strings.Contains(src, ".version") {
		src = wrapSnippet(line)
	}

	var b strings.Builder

	mod, diags, err := module.Parse(src)
	if err != nil {
		fmt.Fprintf(&b, "error: %v\n", err)
		return b.String()
	}

	for _, fn := range mod.Functions {
		for _, st := range fn.Body {
			fmt.Fprintln(&b, printer.Statement(st))
		}
	}

	if echoDiagnostics && !diags.Empty() {
		for _, e := range diags.Errors {
			fmt.Fprintf(&b, "  %s\n", e.String())
		}
	}

	return b.String()
}

func wrapSnippet(stmt string) string {
	var b strings.Builder
	b.WriteString(".version 8.0\n.target sm_90\n.visible .entry _repl()\n{\n")
	b.WriteString(stmt)
	if !strings.HasSuffix(strings.TrimSpace(stmt), ";") {
		b.WriteString(";")
	}
	b.WriteString("\nret;\n}\n")
	return b.String()
}
