package main

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/minios-linux/hugo-translate/config"
	"github.com/minios-linux/hugo-translate/sitesync"
	"github.com/minios-linux/hugo-translate/translate"
)

func TestSummaryLines(t *testing.T) {
	tests := []struct {
		name   string
		report sitesync.Report
		want   []string
	}{
		{
			name: "nothing to do",
			want: []string{"Nothing to translate"},
		},
		{
			name:   "one written",
			report: sitesync.Report{Written: []string{"a"}},
			want:   []string{"1 translation written"},
		},
		{
			name:   "written and failed",
			report: sitesync.Report{Written: []string{"a", "b"}, Failed: 3},
			want:   []string{"2 translations written", "3 translations failed"},
		},
		{
			name:   "aborted before any page",
			report: sitesync.Report{Aborted: true},
			want:   nil,
		},
	}

	for _, tc := range tests {
		if got := summaryLines(&tc.report); !reflect.DeepEqual(got, tc.want) {
			t.Fatalf("%s: summaryLines() = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestRootCmdFlags(t *testing.T) {
	cmd := newRootCmd()
	for name, want := range map[string]string{
		"dry-run":       "false",
		"auto":          "false",
		"drafts":        "false",
		"env":           ".env",
		"hugo":          "hugo",
		"max-wait":      translate.DefaultMaxWait.String(),
		"poll-interval": translate.DefaultPollInterval.String(),
	} {
		f := cmd.Flags().Lookup(name)
		if f == nil {
			t.Fatalf("missing flag --%s", name)
		}
		if f.DefValue != want {
			t.Errorf("--%s default = %q, want %q", name, f.DefValue, want)
		}
	}
}

func TestRootCmdRequiresRoot(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetArgs(nil)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	err := cmd.Execute()
	if err == nil || !strings.Contains(err.Error(), "root") {
		t.Fatalf("Execute() error = %v, want missing --root", err)
	}
}

func TestVersionCmd(t *testing.T) {
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"version"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if !strings.HasPrefix(out.String(), "hugo-translate version dev\n") {
		t.Errorf("output = %q", out.String())
	}
}

func TestRunTranslate_HugoUnavailable(t *testing.T) {
	dir := t.TempDir()
	err := runTranslate(context.Background(), rootArgs{
		root:    dir,
		dryRun:  true,
		envFile: filepath.Join(dir, "missing.env"),
		hugo:    filepath.Join(dir, "no-such-hugo"),
	})

	var unavailable *config.HostToolUnavailableError
	if !errors.As(err, &unavailable) {
		t.Fatalf("runTranslate() error = %v, want HostToolUnavailableError", err)
	}
}
