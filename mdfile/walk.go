package mdfile

import (
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
)

// markdownPattern matches every file whose final extension is exactly "md".
const markdownPattern = "**/*.md"

// FindFiles returns the Markdown files below dir, recursively. Unreadable
// entries are skipped silently and a missing dir yields no files.
func FindFiles(dir string) ([]string, error) {
	matches, err := doublestar.Glob(os.DirFS(dir), markdownPattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, err
	}
	files := make([]string, 0, len(matches))
	for _, m := range matches {
		files = append(files, filepath.Join(dir, filepath.FromSlash(m)))
	}
	return files, nil
}
