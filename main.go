package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lookbusy1344/ptx-parser/config"
	"github.com/lookbusy1344/ptx-parser/inspect"
	"github.com/lookbusy1344/ptx-parser/module"
	"github.com/lookbusy1344/ptx-parser/printer"
	"github.com/lookbusy1344/ptx-parser/replcmd"
)

// Version information, overridable at build time with:
// go build -ldflags "-X main.Version=v1.2.3"
var (
	Version = "dev"
	Commit  = "unknown"
)

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     "ptx-parser",
		Short:   "Parse, replay, and inspect NVIDIA PTX assembly modules",
		Version: fmt.Sprintf("%s (%s)", Version, Commit),
	}

	root.AddCommand(newParseCmd())
	root.AddCommand(newReplCmd())
	root.AddCommand(newInspectCmd())

	return root
}

func newParseCmd() *cobra.Command {
	var quiet bool

	cmd := &cobra.Command{
		Use:   "parse <file.ptx>",
		Short: "Parse a PTX module and print its functions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := os.ReadFile(args[0]) // #nosec G304 -- user-supplied input file
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", args[0], err)
			}

			mod, diags, err := module.Parse(string(source))
			if err != nil {
				return err
			}

			fmt.Print(printer.ModuleSummary(mod))
			for _, fn := range mod.Functions {
				fmt.Println(printer.FunctionSignature(fn))
				for _, st := range fn.Body {
					fmt.Println("  " + printer.Statement(st))
				}
			}

			if !quiet && !diags.Empty() {
				fmt.Fprintln(os.Stderr, "\ndiagnostics:")
				for _, e := range diags.Errors {
					fmt.Fprintf(os.Stderr, "  %s\n", e.String())
				}
			}

			return nil
		},
	}

	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "suppress non-fatal diagnostics")

	return cmd
}

func newReplCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Start an interactive line-editor session",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			r, err := replcmd.New(cfg)
			if err != nil {
				return err
			}
			defer r.Close()

			return r.Run()
		},
	}
}

func newInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <file.ptx>",
		Short: "Browse a parsed module and its diagnostics in a terminal UI",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := os.ReadFile(args[0]) // #nosec G304 -- user-supplied input file
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", args[0], err)
			}

			mod, diags, err := module.Parse(string(source))
			if err != nil {
				return err
			}

			return inspect.New(mod, diags).Run()
		},
	}
}
