package config

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
)

// Drafts is the set of draft page paths reported by Hugo.
type Drafts map[string]struct{}

// Contains reports whether path is a draft.
func (d Drafts) Contains(path string) bool {
	_, ok := d[filepath.Clean(path)]
	return ok
}

// ListDrafts runs `hugo list drafts`, which honours front matter cascades,
// and returns the draft paths resolved against root.
func ListDrafts(ctx context.Context, r Runner, root string) (Drafts, error) {
	out, err := r.Run(ctx, root, "list", "drafts")
	if err != nil {
		return nil, err
	}
	return ParseDrafts(out, root)
}

// ParseDrafts reads the CSV listing of `hugo list drafts`. The first row is
// a header (path,slug,title,...) and only the path column is used.
func ParseDrafts(data []byte, root string) (Drafts, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1

	drafts := make(Drafts)
	header := true
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parsing draft list: %w", err)
		}
		if header {
			header = false
			continue
		}
		if len(rec) == 0 || rec[0] == "" {
			continue
		}
		drafts[filepath.Join(root, rec[0])] = struct{}{}
	}
	return drafts, nil
}
