package config

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"
)

const twoLangConfig = `defaultcontentlanguage: en
contentdir: content
languages:
  fr:
    languagename: Français
    weight: 2
  en:
    languagename: English
    weight: 1
module:
  mounts:
  - source: content/en
    target: content
    lang: en
  - source: content/fr
    target: content
    lang: fr
  - source: static
    target: static
`

// fakeRunner records invocations and returns canned output.
type fakeRunner struct {
	out   []byte
	err   error
	calls [][]string
}

func (f *fakeRunner) Run(_ context.Context, root string, args ...string) ([]byte, error) {
	f.calls = append(f.calls, append([]string{root}, args...))
	return f.out, f.err
}

// ---------------------------------------------------------------------------
// Parse
// ---------------------------------------------------------------------------

func TestParse_TwoLanguages(t *testing.T) {
	site, err := Parse([]byte(twoLangConfig), "/site")
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if site.DefaultLanguage != "en" {
		t.Errorf("DefaultLanguage = %q, want en", site.DefaultLanguage)
	}
	if got, want := site.Languages.IDs(), []string{"en", "fr"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("IDs() = %v, want %v", got, want)
	}
	fr, ok := site.Languages.Get("fr")
	if !ok {
		t.Fatal("Get(fr) not found")
	}
	if fr.Name != "Français" {
		t.Errorf("fr.Name = %q", fr.Name)
	}
	if fr.ContentDir != filepath.Join("/site", "content/fr") {
		t.Errorf("fr.ContentDir = %q", fr.ContentDir)
	}
}

func TestParse_OrderFollowsMounts(t *testing.T) {
	data := `languages:
  en: {languagename: English}
  de: {languagename: Deutsch}
  fr: {languagename: Français}
module:
  mounts:
  - {source: content/fr, lang: fr}
  - {source: content/en, lang: en}
  - {source: content/de, lang: de}
  - {source: extra/fr, lang: fr}
`
	site, err := Parse([]byte(data), "/site")
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if got, want := site.Languages.IDs(), []string{"fr", "en", "de"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("IDs() = %v, want %v", got, want)
	}
	fr, _ := site.Languages.Get("fr")
	if fr.ContentDir != "/site/content/fr" {
		t.Errorf("first mount should win, got %q", fr.ContentDir)
	}
}

func TestParse_NameFallsBackToID(t *testing.T) {
	data := `languages:
  en: {}
  fr: {}
module:
  mounts:
  - {source: content/en, lang: en}
  - {source: content/fr, lang: fr}
`
	site, err := Parse([]byte(data), "/site")
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	en, _ := site.Languages.Get("en")
	if en.Name != "en" {
		t.Errorf("Name = %q, want en", en.Name)
	}
}

func TestParse_Malformed(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"invalid yaml", "languages: [unterminated"},
		{"languages wrong type", "languages: [en, fr]\nmodule: {mounts: []}\n"},
		{"missing languages", "module: {mounts: []}\n"},
		{"missing module", "languages: {en: {languagename: English}}\n"},
		{"language without mount", `languages:
  en: {languagename: English}
  fr: {languagename: Français}
module:
  mounts:
  - {source: content/en, lang: en}
`},
		{"mount for unknown language", `languages:
  en: {languagename: English}
module:
  mounts:
  - {source: content/en, lang: en}
  - {source: content/de, lang: de}
`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.data), "/site")
			var malformed *MalformedConfigError
			if !errors.As(err, &malformed) {
				t.Fatalf("Parse() error = %v, want MalformedConfigError", err)
			}
		})
	}
}

func TestLoad_InvokesConfigMode(t *testing.T) {
	r := &fakeRunner{out: []byte(twoLangConfig)}
	site, err := Load(context.Background(), r, "/site")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if site.Languages.Len() != 2 {
		t.Errorf("Len() = %d, want 2", site.Languages.Len())
	}
	want := [][]string{{"/site", "config", "--format", "yaml"}}
	if !reflect.DeepEqual(r.calls, want) {
		t.Errorf("calls = %v, want %v", r.calls, want)
	}
}

func TestLoad_PropagatesRunnerError(t *testing.T) {
	r := &fakeRunner{err: &HostToolFailedError{Args: []string{"hugo"}, Stderr: "boom"}}
	_, err := Load(context.Background(), r, "/site")
	var failed *HostToolFailedError
	if !errors.As(err, &failed) {
		t.Fatalf("Load() error = %v, want HostToolFailedError", err)
	}
}

// ---------------------------------------------------------------------------
// Drafts
// ---------------------------------------------------------------------------

func TestParseDrafts(t *testing.T) {
	data := "path,slug,title,date,expiryDate,publishDate,draft,permalink\n" +
		"content/en/a.md,,A,2024-01-01T00:00:00Z,,,true,https://example.org/a/\n" +
		"content/fr/posts/b.md,,B,,,,true,https://example.org/fr/b/\n"

	drafts, err := ParseDrafts([]byte(data), "/site")
	if err != nil {
		t.Fatalf("ParseDrafts() error: %v", err)
	}
	if len(drafts) != 2 {
		t.Fatalf("len = %d, want 2", len(drafts))
	}
	if !drafts.Contains("/site/content/en/a.md") {
		t.Error("missing /site/content/en/a.md")
	}
	if !drafts.Contains("/site/content/fr/posts/../posts/b.md") {
		t.Error("Contains should clean its argument")
	}
	if drafts.Contains("/site/path") {
		t.Error("header row must be skipped")
	}
}

func TestParseDrafts_HeaderOnly(t *testing.T) {
	drafts, err := ParseDrafts([]byte("path,slug,title\n"), "/site")
	if err != nil {
		t.Fatalf("ParseDrafts() error: %v", err)
	}
	if len(drafts) != 0 {
		t.Errorf("len = %d, want 0", len(drafts))
	}
}

func TestListDrafts_InvokesListMode(t *testing.T) {
	r := &fakeRunner{out: []byte("path\ncontent/en/a.md\n")}
	drafts, err := ListDrafts(context.Background(), r, "/site")
	if err != nil {
		t.Fatalf("ListDrafts() error: %v", err)
	}
	if !drafts.Contains("/site/content/en/a.md") {
		t.Errorf("drafts = %v", drafts)
	}
	if want := []string{"/site", "list", "drafts"}; !reflect.DeepEqual(r.calls[0], want) {
		t.Errorf("call = %v, want %v", r.calls[0], want)
	}
}

// ---------------------------------------------------------------------------
// ExecRunner
// ---------------------------------------------------------------------------

func TestExecRunner_Unavailable(t *testing.T) {
	r := ExecRunner{Binary: filepath.Join(t.TempDir(), "no-such-hugo")}
	_, err := r.Run(context.Background(), "/site", "config")
	var unavailable *HostToolUnavailableError
	if !errors.As(err, &unavailable) {
		t.Fatalf("Run() error = %v, want HostToolUnavailableError", err)
	}
}

func TestExecRunner_NonZeroExit(t *testing.T) {
	r := ExecRunner{Binary: "false"}
	_, err := r.Run(context.Background(), "/site", "config")
	var failed *HostToolFailedError
	if !errors.As(err, &failed) {
		t.Fatalf("Run() error = %v, want HostToolFailedError", err)
	}
}
