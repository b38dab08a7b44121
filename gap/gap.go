// Package gap finds the pages missing from each language of a Hugo site.
//
// Every page with a translationKey is filed in an Index under its
// (key, language) cell. A page that is not a draft is a translation source
// for every configured language whose cell for the same key is empty.
package gap

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/minios-linux/hugo-translate/config"
	"github.com/minios-linux/hugo-translate/mdfile"
)

// ---------------------------------------------------------------------------
// Index
// ---------------------------------------------------------------------------

// DuplicateError reports a second page for an already occupied cell.
type DuplicateError struct {
	Key     string
	Lang    string
	Kept    string
	Dropped string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("translationKey %q already used in %q by %s; ignoring %s",
		e.Key, e.Lang, e.Kept, e.Dropped)
}

// Index maps translation key → language → page.
type Index struct {
	cells map[string]map[string]*mdfile.Document
	paths map[string]struct{}
}

// NewIndex returns an empty index.
func NewIndex() *Index {
	return &Index{
		cells: make(map[string]map[string]*mdfile.Document),
		paths: make(map[string]struct{}),
	}
}

// Add files doc in its cell. A cell holds at most one page: the first one
// wins and later ones are rejected with a DuplicateError.
func (x *Index) Add(doc *mdfile.Document) error {
	langs, ok := x.cells[doc.TranslationKey]
	if !ok {
		langs = make(map[string]*mdfile.Document)
		x.cells[doc.TranslationKey] = langs
	}
	if kept, ok := langs[doc.Lang]; ok {
		return &DuplicateError{Key: doc.TranslationKey, Lang: doc.Lang, Kept: kept.Path, Dropped: doc.Path}
	}
	langs[doc.Lang] = doc
	x.paths[filepath.Clean(doc.Path)] = struct{}{}
	return nil
}

// Get returns the page of a cell.
func (x *Index) Get(key, lang string) (*mdfile.Document, bool) {
	doc, ok := x.cells[key][lang]
	return doc, ok
}

// Languages returns the set of languages that have a page for key.
func (x *Index) Languages(key string) map[string]bool {
	present := make(map[string]bool, len(x.cells[key]))
	for lang := range x.cells[key] {
		present[lang] = true
	}
	return present
}

// Occupied reports whether path is the page of some cell.
func (x *Index) Occupied(path string) bool {
	_, ok := x.paths[filepath.Clean(path)]
	return ok
}

// Len returns the number of translation keys.
func (x *Index) Len() int { return len(x.cells) }

// ---------------------------------------------------------------------------
// Scan
// ---------------------------------------------------------------------------

// Scan is the result of walking every language of a site.
type Scan struct {
	// Index holds every translatable page, drafts included.
	Index *Index
	// Sources are the pages, in walk order, that are not drafts.
	Sources []*mdfile.Document
	// Rejected counts Markdown files without usable front matter.
	Rejected int
	// Drafts counts pages skipped because they are drafts.
	Drafts int
}

// ScanSite walks the content directory of each language in configured order
// and builds the index. Drafts still occupy their cell but are never sources.
func ScanSite(site *config.Site, drafts config.Drafts, log zerolog.Logger) (*Scan, error) {
	s := &Scan{Index: NewIndex()}

	for _, lang := range site.Languages.All() {
		files, err := mdfile.FindFiles(lang.ContentDir)
		if err != nil {
			return nil, fmt.Errorf("listing %s content in %s: %w", lang.ID, lang.ContentDir, err)
		}
		log.Debug().Str("lang", lang.ID).Int("files", len(files)).Msgf("Scanning %s", lang.ContentDir)

		for _, path := range files {
			doc, err := mdfile.Extract(path, lang.ID)
			if err != nil {
				s.Rejected++
				log.Debug().Str("reason", rejectReason(err)).Err(err).Msgf("Ignoring <%s>", path)
				continue
			}

			if err := s.Index.Add(doc); err != nil {
				var dup *DuplicateError
				if errors.As(err, &dup) {
					log.Warn().Str("key", dup.Key).Str("lang", dup.Lang).Msgf("Duplicate translationKey, ignoring <%s>", dup.Dropped)
					continue
				}
				return nil, err
			}

			if drafts.Contains(doc.Path) {
				s.Drafts++
				log.Info().Msgf("Skipping draft page <%s>…", doc.Path)
				continue
			}
			s.Sources = append(s.Sources, doc)
		}
	}
	return s, nil
}

func rejectReason(err error) string {
	var (
		readErr *mdfile.ReadError
		noFM    *mdfile.NoFrontMatterError
		badFM   *mdfile.BadFrontMatterError
	)
	switch {
	case errors.As(err, &readErr):
		return "read-failed"
	case errors.As(err, &noFM):
		return "no-front-matter"
	case errors.As(err, &badFM):
		return "bad-front-matter"
	default:
		return "unknown"
	}
}

// ---------------------------------------------------------------------------
// Plan
// ---------------------------------------------------------------------------

// Task is one missing (page, language) pair.
type Task struct {
	// Source is the page to translate.
	Source *mdfile.Document
	// From is the source language.
	From config.Language
	// To is the target language.
	To config.Language
	// RelPath is the source path relative to its language content directory.
	RelPath string
}

// Plan returns the tasks filling every gap of the scanned site. Target
// languages of a page are visited in configured order.
func Plan(site *config.Site, scan *Scan) ([]Task, error) {
	var tasks []Task
	for _, doc := range scan.Sources {
		from, ok := site.Languages.Get(doc.Lang)
		if !ok {
			return nil, fmt.Errorf("page %s belongs to unknown language %q", doc.Path, doc.Lang)
		}
		rel, err := relativePath(from.ContentDir, doc.Path)
		if err != nil {
			return nil, err
		}

		present := scan.Index.Languages(doc.TranslationKey)
		for _, to := range site.Languages.All() {
			if present[to.ID] {
				continue
			}
			tasks = append(tasks, Task{Source: doc, From: from, To: to, RelPath: rel})
		}
	}
	return tasks, nil
}

func relativePath(contentDir, path string) (string, error) {
	rel, err := filepath.Rel(contentDir, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("page %s is outside content directory %s", path, contentDir)
	}
	return rel, nil
}
