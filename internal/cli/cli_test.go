package cli

import (
	"flag"
	"io"
	"testing"

	"github.com/agentwt/agentwt/internal/launch"
)

func TestParseEnvPair(t *testing.T) {
	cases := []struct {
		pair    string
		key     string
		value   string
		wantErr bool
	}{
		{pair: "KEY=value", key: "KEY", value: "value"},
		{pair: "KEY=", key: "KEY", value: ""},
		{pair: "KEY=a=b", key: "KEY", value: "a=b"},
		{pair: "KEY", wantErr: true},
		{pair: "=value", wantErr: true},
		{pair: "", wantErr: true},
	}
	for _, tc := range cases {
		key, value, err := parseEnvPair(tc.pair)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("parseEnvPair(%q) expected error", tc.pair)
			}
			continue
		}
		if err != nil {
			t.Fatalf("parseEnvPair(%q): %v", tc.pair, err)
		}
		if key != tc.key || value != tc.value {
			t.Fatalf("parseEnvPair(%q) = (%q, %q), want (%q, %q)", tc.pair, key, value, tc.key, tc.value)
		}
	}
}

func TestSandboxFlagsToOverrides(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	sf := registerSandboxFlags(fs)
	err := fs.Parse([]string{
		"--sandbox",
		"--sandbox-write", "/tmp/a",
		"--sandbox-write", "/tmp/b",
		"--sandbox-no-network",
	})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	o := sf.overrides()
	if !o.Enable || o.Disable {
		t.Fatalf("expected enable without disable, got %+v", o)
	}
	if !o.WriteSet || len(o.Write) != 2 || o.Write[0] != "/tmp/a" || o.Write[1] != "/tmp/b" {
		t.Fatalf("unexpected write paths: %+v", o)
	}
	if !o.DenyNetwork || o.AllowNetwork {
		t.Fatalf("expected deny network, got %+v", o)
	}
	if !sf.touched() {
		t.Fatalf("flag group should report touched")
	}
}

func TestSandboxFlagsUntouched(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	sf := registerSandboxFlags(fs)
	if err := fs.Parse(nil); err != nil {
		t.Fatalf("parse: %v", err)
	}
	if sf.touched() {
		t.Fatalf("flag group should not report touched")
	}
	o := sf.overrides()
	if o.Enable || o.Disable || o.WriteSet || o.DenyNetwork || o.AllowNetwork || o.Profile != "" {
		t.Fatalf("expected zero overrides, got %+v", o)
	}
}

func TestValidateWorktreeName(t *testing.T) {
	valid := []string{"feature", "fix-123", "a"}
	for _, name := range valid {
		if err := validateWorktreeName(name); err != nil {
			t.Fatalf("validateWorktreeName(%q): %v", name, err)
		}
	}
	invalid := []string{"", " ", "a/b", `a\b`, ".", "..", " padded "}
	for _, name := range invalid {
		if err := validateWorktreeName(name); err == nil {
			t.Fatalf("validateWorktreeName(%q) expected error", name)
		}
	}
}

func TestResolveTarget(t *testing.T) {
	target, err := resolveTarget("", "")
	if err != nil {
		t.Fatalf("resolveTarget: %v", err)
	}
	if target.Kind != launch.TargetSpawn {
		t.Fatalf("expected spawn default, got %v", target)
	}

	target, err = resolveTarget("", "iterm")
	if err != nil {
		t.Fatalf("resolveTarget: %v", err)
	}
	if target.Kind != launch.TargetApp || target.App != launch.AppITerm {
		t.Fatalf("expected iterm from defaults, got %v", target)
	}

	target, err = resolveTarget("terminal", "iterm")
	if err != nil {
		t.Fatalf("resolveTarget: %v", err)
	}
	if target.App != launch.AppTerminal {
		t.Fatalf("flag should win over defaults, got %v", target)
	}

	if _, err := resolveTarget("tmux", ""); err == nil {
		t.Fatalf("expected error for unsupported target")
	}
}
