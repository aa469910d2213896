package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stackplot/pkg/observability"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Cleanup(observability.Reset)
	var out bytes.Buffer
	cmd := New(os.Stderr, LogInfo).RootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCompletionScripts(t *testing.T) {
	for _, shell := range []string{"bash", "zsh", "fish", "powershell"} {
		t.Run(shell, func(t *testing.T) {
			out, err := execute(t, "completion", shell)
			if err != nil {
				t.Fatalf("completion %s error: %v", shell, err)
			}
			if !strings.Contains(out, appName) {
				t.Errorf("completion %s script does not mention %s", shell, appName)
			}
		})
	}

	if _, err := execute(t, "completion", "tcsh"); err == nil {
		t.Error("completion tcsh should fail")
	}
}

func TestCompleteManifest(t *testing.T) {
	filter := fmt.Sprintf(":%d", cobra.ShellCompDirectiveFilterFileExt)
	tests := []struct {
		name string
		args []string
	}{
		{"render", []string{"__complete", "render", ""}},
		{"layout", []string{"__complete", "layout", ""}},
		{"serve config", []string{"__complete", "serve", "--config", ""}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, tt.args...)
			if err != nil {
				t.Fatal(err)
			}
			if !strings.Contains(out, "toml\n") || !strings.Contains(out, filter) {
				t.Errorf("completion output = %q, want toml filter", out)
			}
		})
	}

	got, directive := completeManifest(nil, []string{"chart.toml"}, "")
	if got != nil || directive != cobra.ShellCompDirectiveNoFileComp {
		t.Errorf("second argument completion = %v, %v", got, directive)
	}
}
