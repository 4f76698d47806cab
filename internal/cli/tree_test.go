package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
)

// testTree builds a small tree recording handler invocations.
func testTree(invoked *[]string, captured **Args) *Command {
	record := func(name string) Handler {
		return func(ctx context.Context, args *Args) error {
			*invoked = append(*invoked, name)
			if captured != nil {
				*captured = args
			}
			return nil
		}
	}

	return Group("vantage", "Vantage control-plane CLI",
		Group("cluster", "Manage clusters",
			Leaf("list", "List clusters", nil, record("cluster list")),
			Leaf("deploy", "Deploy a cluster", []Arg{
				{Name: "name", Help: "cluster name", Required: true},
				{Name: "size", Help: "node count", Default: "1"},
				{Name: "tier", Help: "service tier", Choices: []string{"basic", "premium"}},
				{Name: "yes", Shorthand: "y", Help: "skip confirmation", Bool: true},
			}, record("cluster deploy")),
		),
		Leaf("login", "Authenticate", nil, record("login")),
	)
}

func execute(t *testing.T, argv ...string) (invoked []string, captured *Args, stdout string, err error) {
	t.Helper()
	root := Build(testTree(&invoked, &captured), "1.2.3")
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(argv)
	err = root.Execute()
	return invoked, captured, out.String(), err
}

func TestLeafResolution(t *testing.T) {
	invoked, _, _, err := execute(t, "cluster", "list")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(invoked) != 1 || invoked[0] != "cluster list" {
		t.Errorf("invoked = %v, want [cluster list]", invoked)
	}
}

func TestLeafArgumentsAndSharedDefaults(t *testing.T) {
	invoked, captured, _, err := execute(t,
		"cluster", "deploy", "--name", "prod", "--size", "4",
		"--region", "eu-west-1", "--format", "json", "--sudo", "-y")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(invoked) != 1 {
		t.Fatalf("handler not invoked exactly once: %v", invoked)
	}

	if captured.String("name") != "prod" || captured.String("size") != "4" {
		t.Errorf("declared args not parsed: name=%q size=%q", captured.String("name"), captured.String("size"))
	}
	if !captured.Bool("yes") {
		t.Error("shorthand boolean flag not parsed")
	}
	if captured.Region() != "eu-west-1" || captured.Format() != "json" || !captured.Sudo() {
		t.Errorf("shared defaults not injected: region=%q format=%q sudo=%v",
			captured.Region(), captured.Format(), captured.Sudo())
	}
}

func TestDefaultValue(t *testing.T) {
	_, captured, _, err := execute(t, "cluster", "deploy", "--name", "prod")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if captured.String("size") != "1" {
		t.Errorf("default not applied: %q", captured.String("size"))
	}
	if captured.Changed("size") {
		t.Error("defaulted flag must not report as changed")
	}
}

func TestGroupWithoutSubcommandPrintsHelp(t *testing.T) {
	invoked, _, stdout, err := execute(t, "cluster")
	if err != nil {
		t.Fatalf("bare group must not error: %v", err)
	}
	if len(invoked) != 0 {
		t.Errorf("no handler should run, got %v", invoked)
	}
	if !strings.Contains(stdout, "list") || !strings.Contains(stdout, "deploy") {
		t.Errorf("help must list subcommands:\n%s", stdout)
	}
}

func TestUnknownSubcommandPrintsHelp(t *testing.T) {
	invoked, _, stdout, err := execute(t, "cluster", "explode")
	if err != nil {
		t.Fatalf("unknown subcommand is informational, got error: %v", err)
	}
	if len(invoked) != 0 {
		t.Errorf("no handler should run, got %v", invoked)
	}
	if !strings.Contains(stdout, "deploy") {
		t.Errorf("help must list available subcommands:\n%s", stdout)
	}
}

func TestUsageErrors(t *testing.T) {
	tests := []struct {
		name     string
		argv     []string
		wantPath string
	}{
		{name: "unknown flag", argv: []string{"cluster", "deploy", "--name", "x", "--bogus"}, wantPath: "vantage cluster deploy"},
		{name: "bad choice", argv: []string{"cluster", "deploy", "--name", "x", "--tier", "gold"}, wantPath: "vantage cluster deploy"},
		{name: "bad format choice", argv: []string{"cluster", "list", "--format", "csv"}, wantPath: "vantage cluster list"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			invoked, _, _, err := execute(t, tt.argv...)
			if len(invoked) != 0 {
				t.Errorf("handler must not run on usage errors, got %v", invoked)
			}

			var usage *UsageError
			if !errors.As(err, &usage) {
				t.Fatalf("expected UsageError, got %v", err)
			}
			if usage.Path != tt.wantPath {
				t.Errorf("path = %q, want %q", usage.Path, tt.wantPath)
			}
			if ExitCode(err) != ExitUsage {
				t.Errorf("exit code = %d, want %d", ExitCode(err), ExitUsage)
			}
		})
	}
}

func TestMissingRequiredFlag(t *testing.T) {
	invoked, _, _, err := execute(t, "cluster", "deploy")
	if err == nil {
		t.Fatal("expected an error for a missing required flag")
	}
	if len(invoked) != 0 {
		t.Errorf("handler must not run, got %v", invoked)
	}

	var usage *UsageError
	if !errors.As(err, &usage) {
		t.Fatalf("expected UsageError, got %v", err)
	}
	if usage.Path != "vantage cluster deploy" {
		t.Errorf("path = %q, want %q", usage.Path, "vantage cluster deploy")
	}
	if !strings.Contains(usage.Err.Error(), "--name") {
		t.Errorf("missing flag not named: %v", usage.Err)
	}
	if usage.Usage == "" {
		t.Error("usage text must accompany the error")
	}
	if ExitCode(err) != ExitUsage {
		t.Errorf("exit code = %d, want %d", ExitCode(err), ExitUsage)
	}
}

func TestVersionShortCircuits(t *testing.T) {
	invoked, _, stdout, err := execute(t, "--version")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(invoked) != 0 {
		t.Errorf("no handler should run, got %v", invoked)
	}
	if !strings.Contains(stdout, "1.2.3") {
		t.Errorf("version string missing:\n%s", stdout)
	}
}

func TestHandlerErrorIsExitError(t *testing.T) {
	boom := Leaf("boom", "always fails", nil, func(ctx context.Context, args *Args) error {
		return fmt.Errorf("backend unavailable")
	})
	root := Build(Group("vantage", "", boom), "dev")
	root.SetArgs([]string{"boom"})
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})

	err := root.Execute()
	if err == nil {
		t.Fatal("expected handler error")
	}
	if ExitCode(err) != ExitError {
		t.Errorf("exit code = %d, want %d", ExitCode(err), ExitError)
	}
}

func TestConstructorInvariants(t *testing.T) {
	assertPanics := func(name string, fn func()) {
		defer func() {
			if recover() == nil {
				t.Errorf("%s: expected panic", name)
			}
		}()
		fn()
	}
	assertPanics("empty group", func() { Group("g", "help") })
	assertPanics("leaf without handler", func() { Leaf("l", "help", nil, nil) })
}
