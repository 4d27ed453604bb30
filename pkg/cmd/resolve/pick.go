package resolve

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/ktr0731/go-fuzzyfinder"

	"github.com/Paintersrp/an-presets/utils"
)

var findNote = func(notes []string, label func(int) string, opts ...fuzzyfinder.Option) (int, error) {
	return fuzzyfinder.Find(notes, label, opts...)
}

// pickNote lets the user choose a markdown note of the vault and returns its
// vault relative path.
func pickNote(vault, query string) (string, error) {
	notes, err := listNotes(vault)
	if err != nil {
		return "", err
	}
	if len(notes) == 0 {
		return "", fmt.Errorf("no notes found in %s", vault)
	}

	options := []fuzzyfinder.Option{
		fuzzyfinder.WithHeader("Resolve note"),
		fuzzyfinder.WithPreviewWindow(func(i, w, h int) string {
			if i == -1 {
				return ""
			}
			content, err := os.ReadFile(filepath.Join(vault, notes[i]))
			if err != nil {
				return "Error reading file"
			}
			out, err := utils.RenderMarkdown(string(content), w, true)
			if err != nil {
				return "Error rendering markdown"
			}
			return out
		}),
	}
	if query != "" {
		options = append(options, fuzzyfinder.WithQuery(query))
	}

	idx, err := findNote(notes, func(i int) string { return notes[i] }, options...)
	if errors.Is(err, fuzzyfinder.ErrAbort) {
		return "", fmt.Errorf("no note selected")
	}
	if err != nil {
		return "", fmt.Errorf("error selecting note: %w", err)
	}
	return notes[idx], nil
}

// listNotes walks the vault for markdown files, skipping hidden directories.
func listNotes(vault string) ([]string, error) {
	var notes []string
	err := filepath.WalkDir(vault, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != vault && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.EqualFold(filepath.Ext(path), ".md") {
			rel, err := filepath.Rel(vault, path)
			if err != nil {
				return err
			}
			notes = append(notes, filepath.ToSlash(rel))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error listing notes: %w", err)
	}
	return notes, nil
}
