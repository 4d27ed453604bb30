// Package notectx derives the path and tags preset resolution needs from a
// markdown note.
package notectx

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
	"gopkg.in/yaml.v3"

	"github.com/Paintersrp/an-presets/internal/assign"
	"github.com/Paintersrp/an-presets/internal/pathutil"
)

// FileContext is what resolution needs to know about one note.
type FileContext struct {
	Path string   `json:"path"`
	Tags []string `json:"tags"`
}

// Provider reads notes below Vault.
type Provider struct {
	Vault         string
	CaseSensitive bool
}

func NewProvider(vault string, caseSensitive bool) *Provider {
	return &Provider{Vault: vault, CaseSensitive: caseSensitive}
}

// Context reads the note at path, which may be absolute or relative to the
// vault.
func (p *Provider) Context(path string) (FileContext, error) {
	full := path
	if !filepath.IsAbs(full) && p.Vault != "" {
		full = filepath.Join(p.Vault, full)
	}

	source, err := os.ReadFile(full)
	if err != nil {
		return FileContext{}, fmt.Errorf("error reading note: %w", err)
	}
	return p.FromSource(full, source)
}

// FromSource builds the context of a note whose contents are already loaded.
func (p *Provider) FromSource(path string, source []byte) (FileContext, error) {
	rel, err := p.relative(path)
	if err != nil {
		return FileContext{}, err
	}

	tags, err := ParseTags(source)
	if err != nil {
		return FileContext{}, fmt.Errorf("%s: %w", rel, err)
	}
	return FileContext{Path: rel, Tags: p.dedupe(tags)}, nil
}

func (p *Provider) relative(path string) (string, error) {
	if p.Vault == "" || !filepath.IsAbs(path) {
		return filepath.ToSlash(pathutil.NormalizePath(path)), nil
	}

	rel, err := pathutil.VaultRelative(p.Vault, path)
	if err != nil {
		return "", err
	}
	if rel == ".." || strings.HasPrefix(rel, "../") {
		return "", fmt.Errorf("%s is outside the vault %s", path, p.Vault)
	}
	return rel, nil
}

func (p *Provider) dedupe(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		key := assign.NormalizeTag(tag, p.CaseSensitive)
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, strings.TrimLeft(strings.TrimSpace(tag), "#"))
	}
	return out
}

var frontMatterRe = regexp.MustCompile(`(?s)\A---\s*\n(.*?)\n---\s*(?:\n|\z)`)

func splitFrontMatter(data []byte) ([]byte, []byte) {
	loc := frontMatterRe.FindSubmatchIndex(data)
	if len(loc) < 4 {
		return nil, data
	}
	return data[loc[2]:loc[3]], data[loc[1]:]
}

// ParseTags returns the front matter tags followed by the inline tags of the
// body in document order.
func ParseTags(source []byte) ([]string, error) {
	fm, body := splitFrontMatter(source)

	tags, err := frontMatterTags(fm)
	if err != nil {
		return nil, fmt.Errorf("invalid front matter: %w", err)
	}
	return append(tags, inlineTags(body)...), nil
}

func frontMatterTags(fm []byte) ([]string, error) {
	if len(fm) == 0 {
		return nil, nil
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(fm, &doc); err != nil {
		return nil, err
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, nil
	}

	mapping := doc.Content[0]
	if mapping.Kind != yaml.MappingNode {
		return nil, nil
	}

	for i := 0; i+1 < len(mapping.Content); i += 2 {
		key := strings.ToLower(mapping.Content[i].Value)
		if key != "tags" && key != "tag" {
			continue
		}

		value := mapping.Content[i+1]
		switch value.Kind {
		case yaml.SequenceNode:
			tags := make([]string, 0, len(value.Content))
			for _, child := range value.Content {
				if child.Kind == yaml.ScalarNode && child.Value != "" {
					tags = append(tags, child.Value)
				}
			}
			return tags, nil
		case yaml.ScalarNode:
			return strings.FieldsFunc(value.Value, func(r rune) bool {
				return r == ',' || unicode.IsSpace(r)
			}), nil
		}
	}
	return nil, nil
}

var inlineTagRe = regexp.MustCompile(`(?:^|[\s(\[,;])#([\p{L}\p{N}_/-]+)`)

// inlineTags walks the markdown AST, skipping code, and collects #tags from
// text nodes.
func inlineTags(body []byte) []string {
	document := goldmark.DefaultParser().Parse(text.NewReader(body))

	var tags []string
	ast.Walk(
		document,
		func(n ast.Node, entering bool) (ast.WalkStatus, error) {
			if !entering {
				return ast.WalkContinue, nil
			}
			switch n := n.(type) {
			case *ast.CodeSpan, *ast.CodeBlock, *ast.FencedCodeBlock, *ast.HTMLBlock, *ast.RawHTML:
				return ast.WalkSkipChildren, nil
			case *ast.Text:
				for _, m := range inlineTagRe.FindAllSubmatch(n.Segment.Value(body), -1) {
					if tag := string(m[1]); hasLetter(tag) {
						tags = append(tags, tag)
					}
				}
			}
			return ast.WalkContinue, nil
		},
	)
	return tags
}

func hasLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}
