// Package mdfile reads the translation metadata of Hugo Markdown pages.
//
// A page takes part in translation when its YAML front matter, the block
// between the first two lines consisting only of "---", declares a
// translationKey. Pages sharing a key are versions of the same logical
// document in different languages.
package mdfile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ---------------------------------------------------------------------------
// Document model
// ---------------------------------------------------------------------------

// Document describes one Markdown page of one language.
type Document struct {
	// Path is the page location on disk.
	Path string
	// Lang is the identifier of the language owning the page.
	Lang string
	// BaseName is the file name without extension.
	BaseName string
	// TranslationKey groups the language versions of the page.
	TranslationKey string
}

// frontMatter is the subset of page front matter we decode.
type frontMatter struct {
	TranslationKey string `yaml:"translationKey"`
}

// ---------------------------------------------------------------------------
// Errors
// ---------------------------------------------------------------------------

// ReadError reports a page that could not be read.
type ReadError struct {
	Path string
	Err  error
}

func (e *ReadError) Error() string { return fmt.Sprintf("reading %s: %v", e.Path, e.Err) }
func (e *ReadError) Unwrap() error { return e.Err }

// NoFrontMatterError reports a page without two "---" fence lines.
type NoFrontMatterError struct {
	Path string
}

func (e *NoFrontMatterError) Error() string { return fmt.Sprintf("%s: no front matter", e.Path) }

// BadFrontMatterError reports front matter that is not valid YAML or lacks
// a translationKey.
type BadFrontMatterError struct {
	Path string
	Err  error
}

func (e *BadFrontMatterError) Error() string {
	return fmt.Sprintf("%s: bad front matter: %v", e.Path, e.Err)
}
func (e *BadFrontMatterError) Unwrap() error { return e.Err }

// errNoTranslationKey is wrapped in BadFrontMatterError when the key is absent.
var errNoTranslationKey = errors.New("translationKey is missing")

// ---------------------------------------------------------------------------
// Extraction
// ---------------------------------------------------------------------------

// Extract reads path and returns its metadata. Any error means the page is
// not translatable; the concrete type tells why. Extract never logs.
func Extract(path, lang string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ReadError{Path: path, Err: err}
	}

	key, err := TranslationKey(string(data))
	if err != nil {
		var noFM *NoFrontMatterError
		if errors.As(err, &noFM) {
			return nil, &NoFrontMatterError{Path: path}
		}
		return nil, &BadFrontMatterError{Path: path, Err: errors.Unwrap(err)}
	}

	base := filepath.Base(path)
	return &Document{
		Path:           path,
		Lang:           lang,
		BaseName:       strings.TrimSuffix(base, filepath.Ext(base)),
		TranslationKey: key,
	}, nil
}

// FrontMatter returns the YAML text between the first two fence lines.
func FrontMatter(text string) (string, bool) {
	lines := strings.Split(text, "\n")
	open, end := -1, -1
	for i, line := range lines {
		if strings.TrimSpace(line) != "---" {
			continue
		}
		if open < 0 {
			open = i
			continue
		}
		end = i
		break
	}
	if end < 0 {
		return "", false
	}
	return strings.Join(lines[open+1:end], "\n"), true
}

// TranslationKey decodes the translationKey of a page's front matter.
func TranslationKey(text string) (string, error) {
	fm, ok := FrontMatter(text)
	if !ok {
		return "", &NoFrontMatterError{}
	}

	var meta frontMatter
	if err := yaml.Unmarshal([]byte(fm), &meta); err != nil {
		return "", &BadFrontMatterError{Err: err}
	}
	if meta.TranslationKey == "" {
		return "", &BadFrontMatterError{Err: errNoTranslationKey}
	}
	return meta.TranslationKey, nil
}
