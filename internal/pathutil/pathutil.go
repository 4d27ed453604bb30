package pathutil

import (
	"path"
	"path/filepath"
	"strings"
)

// NormalizePath converts Windows-style separators to the current platform's separator
// and cleans the resulting path.
func NormalizePath(p string) string {
	if p == "" {
		return ""
	}

	// Replace Windows separators and collapse redundant separators/segments.
	replaced := strings.ReplaceAll(p, "\\", "/")
	return filepath.Clean(filepath.FromSlash(replaced))
}

// VaultRelative returns the path to target relative to the provided vault directory.
// The returned path always uses forward slashes to simplify downstream processing
// and ensure platform agnosticism.
func VaultRelative(vaultDir, target string) (string, error) {
	base := NormalizePath(vaultDir)
	cleanedTarget := NormalizePath(target)

	rel, err := filepath.Rel(base, cleanedTarget)
	if err != nil {
		return "", err
	}

	return filepath.ToSlash(rel), nil
}

// RootFolder is the normalized key for the vault root.
const RootFolder = "/"

// NormalizeFolder turns a folder path into its canonical key: forward slashes,
// cleaned, no leading or trailing slash. The vault root is RootFolder.
func NormalizeFolder(folder string) string {
	replaced := strings.TrimSpace(strings.ReplaceAll(folder, "\\", "/"))
	if replaced == "" {
		return RootFolder
	}

	cleaned := path.Clean("/" + replaced)
	if cleaned == "/" {
		return RootFolder
	}

	return strings.TrimPrefix(cleaned, "/")
}

// FolderOf returns the normalized folder containing the file at p.
func FolderOf(p string) string {
	replaced := strings.ReplaceAll(p, "\\", "/")
	if strings.HasSuffix(replaced, "/") {
		return NormalizeFolder(replaced)
	}

	return NormalizeFolder(path.Dir(replaced))
}

// Ancestors returns folder followed by each of its parents, ending at RootFolder.
func Ancestors(folder string) []string {
	current := NormalizeFolder(folder)
	chain := []string{current}

	for current != RootFolder {
		idx := strings.LastIndex(current, "/")
		if idx < 0 {
			current = RootFolder
		} else {
			current = current[:idx]
		}
		chain = append(chain, current)
	}

	return chain
}
