package sitesync

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/minios-linux/hugo-translate/gap"
)

// WriteError reports a translated page that could not be written.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string { return fmt.Sprintf("writing %s: %v", e.Path, e.Err) }
func (e *WriteError) Unwrap() error { return e.Err }

// writer places translated pages under their language content directory and
// never overwrites a page that existed when the site was scanned, nor one it
// wrote itself earlier in the run.
type writer struct {
	index   *gap.Index
	written map[string]struct{}
}

func newWriter(index *gap.Index) *writer {
	return &writer{index: index, written: make(map[string]struct{})}
}

// destination resolves a translated relative path under contentDir.
func (w *writer) destination(contentDir, translated string) (string, error) {
	rel := cleanPath(translated)
	if rel == "" {
		return "", errors.New("translator returned an empty path")
	}
	if rel == os.DevNull {
		return rel, nil
	}
	if filepath.IsAbs(rel) {
		return "", fmt.Errorf("translated path %q is absolute", rel)
	}

	dest := filepath.Join(contentDir, rel)
	inside, err := filepath.Rel(contentDir, dest)
	if err != nil || inside == "." || inside == ".." || strings.HasPrefix(inside, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("translated path %q leaves %s", rel, contentDir)
	}
	if w.index.Occupied(dest) {
		return "", fmt.Errorf("translated path %s is already a page of the site", dest)
	}
	if _, ok := w.written[dest]; ok {
		return "", fmt.Errorf("translated path %s was already written by this run", dest)
	}
	return dest, nil
}

func (w *writer) write(dest, body string) error {
	if dest != os.DevNull {
		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return &WriteError{Path: dest, Err: err}
		}
	}
	if err := os.WriteFile(dest, []byte(body), 0o644); err != nil {
		return &WriteError{Path: dest, Err: err}
	}
	if dest != os.DevNull {
		w.written[dest] = struct{}{}
	}
	return nil
}

// cleanPath strips the decorations a chat model tends to put around a bare
// path answer.
func cleanPath(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, "`\"'")
	return strings.TrimSpace(s)
}
