package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/mooselabs/unitymcp/internal/history"
)

func TestRootCommand_Help(t *testing.T) {
	var stdout bytes.Buffer

	cmd := rootCmd
	cmd.SetOut(&stdout)
	cmd.SetErr(&stdout)
	cmd.SetArgs([]string{"--help"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("root command --help returned error: %v", err)
	}

	output := stdout.String()
	expectedStrings := []string{
		"unitymcp",
		"Unity Editor",
		"Usage:",
		"Available Commands:",
	}
	for _, expected := range expectedStrings {
		if !strings.Contains(output, expected) {
			t.Errorf("help output missing expected string %q\nGot: %s", expected, output)
		}
	}
}

func TestRootCommand_Version(t *testing.T) {
	var stdout bytes.Buffer

	cmd := rootCmd
	cmd.SetOut(&stdout)
	cmd.SetErr(&stdout)
	cmd.SetArgs([]string{"--version"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("root command --version returned error: %v", err)
	}

	if !strings.Contains(stdout.String(), "unitymcp") {
		t.Errorf("version output missing 'unitymcp'\nGot: %s", stdout.String())
	}
}

func TestDescribeRunScope(t *testing.T) {
	tests := []struct {
		name string
		run  history.Run
		want string
	}{
		{
			name: "method scope",
			run:  history.Run{Class: "FooTests", Method: "Bar"},
			want: "FooTests.Bar",
		},
		{
			name: "class scope",
			run:  history.Run{Class: "FooTests"},
			want: "FooTests",
		},
		{
			name: "assembly scope",
			run:  history.Run{Assembly: "Game.Tests"},
			want: "Game.Tests",
		},
		{
			name: "empty scope",
			run:  history.Run{},
			want: "(unknown scope)",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := describeRunScope(tc.run); got != tc.want {
				t.Errorf("describeRunScope() = %q, want %q", got, tc.want)
			}
		})
	}
}
