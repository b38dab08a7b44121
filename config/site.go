// Package config reads the multilingual layout of a Hugo site by asking the
// hugo executable itself, so that module mounts, language weights and front
// matter cascades are resolved exactly as the generator resolves them.
package config

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// ---------------------------------------------------------------------------
// Languages
// ---------------------------------------------------------------------------

// Language is one configured site language.
type Language struct {
	// ID is the language identifier used by Hugo (e.g. "en", "fr").
	ID string
	// Name is the human-readable language name.
	Name string
	// ContentDir is the absolute content directory of the language.
	ContentDir string
}

// Languages is an ordered set of languages. The order is the one reported
// by Hugo (language weight order) and is never re-sorted.
type Languages struct {
	list  []Language
	index map[string]int
}

// NewLanguages builds an ordered language set. A repeated ID keeps its first
// position and value.
func NewLanguages(langs ...Language) *Languages {
	l := &Languages{index: make(map[string]int, len(langs))}
	for _, lang := range langs {
		l.add(lang)
	}
	return l
}

func (l *Languages) add(lang Language) bool {
	if _, ok := l.index[lang.ID]; ok {
		return false
	}
	l.index[lang.ID] = len(l.list)
	l.list = append(l.list, lang)
	return true
}

// Len returns the number of languages.
func (l *Languages) Len() int { return len(l.list) }

// Get returns the language with the given ID.
func (l *Languages) Get(id string) (Language, bool) {
	i, ok := l.index[id]
	if !ok {
		return Language{}, false
	}
	return l.list[i], true
}

// IDs returns language identifiers in configured order.
func (l *Languages) IDs() []string {
	ids := make([]string, len(l.list))
	for i, lang := range l.list {
		ids[i] = lang.ID
	}
	return ids
}

// All returns a copy of the languages in configured order.
func (l *Languages) All() []Language {
	return append([]Language(nil), l.list...)
}

// ---------------------------------------------------------------------------
// Site
// ---------------------------------------------------------------------------

// Site is the projection of the Hugo configuration this tool cares about.
type Site struct {
	// Root is the site root directory.
	Root string
	// DefaultLanguage is Hugo's defaultContentLanguage.
	DefaultLanguage string
	// Languages holds every reachable language in weight order.
	Languages *Languages
}

// hugoConfig mirrors the subset of `hugo config --format yaml` we decode.
type hugoConfig struct {
	DefaultContentLanguage string                  `yaml:"defaultcontentlanguage"`
	Languages              map[string]hugoLanguage `yaml:"languages"`
	Module                 *hugoModule             `yaml:"module"`
}

type hugoLanguage struct {
	LanguageName string `yaml:"languagename"`
}

type hugoModule struct {
	Mounts []hugoMount `yaml:"mounts"`
}

type hugoMount struct {
	Lang   string `yaml:"lang"`
	Source string `yaml:"source"`
}

// Load asks Hugo for the site configuration of root and projects it.
func Load(ctx context.Context, r Runner, root string) (*Site, error) {
	out, err := r.Run(ctx, root, "config", "--format", "yaml")
	if err != nil {
		return nil, err
	}
	return Parse(out, root)
}

// Parse projects the YAML configuration dump of a site rooted at root.
//
// Only mounts carrying a lang field contribute a content directory; the
// language order follows the first mount of each language. Languages that
// have no mount are unreachable and make the configuration invalid.
func Parse(data []byte, root string) (*Site, error) {
	var raw hugoConfig
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, &MalformedConfigError{Err: err}
	}
	if raw.Languages == nil {
		return nil, &MalformedConfigError{Err: errors.New("missing languages")}
	}
	if raw.Module == nil {
		return nil, &MalformedConfigError{Err: errors.New("missing module")}
	}

	langs := NewLanguages()
	for _, m := range raw.Module.Mounts {
		if m.Lang == "" {
			continue
		}
		if m.Source == "" {
			return nil, &MalformedConfigError{Err: fmt.Errorf("mount for language %q has no source", m.Lang)}
		}
		lc, ok := raw.Languages[m.Lang]
		if !ok {
			return nil, &MalformedConfigError{Err: fmt.Errorf("mount references unknown language %q", m.Lang)}
		}
		name := lc.LanguageName
		if name == "" {
			name = m.Lang
		}
		langs.add(Language{
			ID:         m.Lang,
			Name:       name,
			ContentDir: filepath.Join(root, m.Source),
		})
	}

	var unreachable []string
	for id := range raw.Languages {
		if _, ok := langs.Get(id); !ok {
			unreachable = append(unreachable, id)
		}
	}
	if len(unreachable) > 0 {
		sort.Strings(unreachable)
		return nil, &MalformedConfigError{Err: fmt.Errorf("language %q has no content directory mount", unreachable[0])}
	}

	return &Site{
		Root:            root,
		DefaultLanguage: raw.DefaultContentLanguage,
		Languages:       langs,
	}, nil
}
