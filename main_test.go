package main

import "testing"

func TestRootCmdHasSubcommands(t *testing.T) {
	root := newRootCmd()

	want := map[string]bool{"parse": false, "repl": false, "inspect": false}
	for _, c := range root.Commands() {
		name := c.Name()
		if _, ok := want[name]; ok {
			want[name] = true
		}
	}

	for name, found := range want {
		if !found {
			t.Errorf("expected a %q subcommand", name)
		}
	}
}

func TestParseCmdRequiresExactlyOneArg(t *testing.T) {
	cmd := newParseCmd()
	if err := cmd.Args(cmd, nil); err == nil {
		t.Error("expected an error with zero arguments")
	}
	if err := cmd.Args(cmd, []string{"a.ptx"}); err != nil {
		t.Errorf("expected one argument to be valid, got %v", err)
	}
	if err := cmd.Args(cmd, []string{"a.ptx", "b.ptx"}); err == nil {
		t.Error("expected an error with two arguments")
	}
}
