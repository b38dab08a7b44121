// Package translate implements the translation backends used to fill the
// missing language versions of Hugo pages:
//
//   - DryRun returns placeholders and performs no I/O.
//   - Manual exchanges prompts and answers with an operator through the
//     system clipboard.
//   - Auto drives an OpenAI-compatible Assistants API.
//
// All backends share the same deterministic prompts.
package translate

import (
	"context"
	"errors"
	"fmt"
)

// Translator translates page paths and page bodies between languages.
type Translator interface {
	// Generator names the model or tool producing translations
	// (e.g. "gpt-3.5-turbo-1106"). It is recorded in generated front matter.
	Generator() string
	// TranslatePath translates a path relative to a content directory.
	TranslatePath(ctx context.Context, path, from, to string) (string, error)
	// TranslateContent translates a whole Markdown page.
	TranslateContent(ctx context.Context, text, from, to, sourceHash string) (string, error)
}

// ---------------------------------------------------------------------------
// Errors
// ---------------------------------------------------------------------------

// ErrAborted is returned when the operator ends the session (EOF on stdin).
var ErrAborted = errors.New("translation aborted by the operator")

// ErrRunTimeout is returned when an assistant run does not complete in time.
var ErrRunTimeout = errors.New("assistant run timed out")

// BackendError wraps a failed translator call.
type BackendError struct {
	Op  string
	Err error
}

func (e *BackendError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }
func (e *BackendError) Unwrap() error { return e.Err }

func backendErr(op string, err error) error {
	if err == nil || errors.Is(err, ErrAborted) {
		return err
	}
	var be *BackendError
	if errors.As(err, &be) {
		return err
	}
	return &BackendError{Op: op, Err: err}
}

// ---------------------------------------------------------------------------
// Prompts
// ---------------------------------------------------------------------------

// PathPrompt asks for the translation of a content-relative file path.
func PathPrompt(path, from, to string) string {
	return fmt.Sprintf(`Translate the file path "%s" from %s to %s`, path, from, to)
}

// ContentPrompt asks for the translation of a Markdown page. The answer must
// start its front matter with a "# GENERATED BY" comment followed by the
// translator and sourceHash keys.
func ContentPrompt(generator, text, from, to, sourceHash string) string {
	return fmt.Sprintf(
		"Translate the following Hugo SSG markdown content file from %s to %s. "+
			"Do not translate YAML items in `read_allowed` and `translationKey`. "+
			"Add YAML front matter keys `translator: \"%s\"` and `sourceHash: \"%s\"` before all other keys "+
			"and `# GENERATED BY %s` at the very start of the front matter. "+
			"Remove italics from words in %s and add italics to words in %s. "+
			"Do not translate \"TODO\" and \"FIXME\".\n\n```md\n%s\n```",
		from, to,
		generator, sourceHash,
		generator,
		to, from,
		text,
	)
}
