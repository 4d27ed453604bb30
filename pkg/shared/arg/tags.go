package arg

import (
	"strings"

	"github.com/Paintersrp/an-presets/utils"
)

// HandleTags splits tag arguments on commas and whitespace, dropping a leading
// '#', empty entries and repeats. Order is kept because it decides tag
// precedence.
func HandleTags(values []string) []string {
	var tags []string
	for _, value := range values {
		for _, field := range strings.FieldsFunc(value, func(r rune) bool {
			return r == ',' || r == ' ' || r == '\t' || r == '\n'
		}) {
			tag := strings.TrimPrefix(strings.TrimSpace(field), "#")
			if tag != "" {
				tags = utils.AppendIfNotExists(tags, tag)
			}
		}
	}
	return tags
}

// HandleID trims a preset id argument and rejects blank ones.
func HandleID(args []string, index int) (string, bool) {
	if index >= len(args) {
		return "", false
	}
	id := strings.TrimSpace(args[index])
	return id, id != ""
}
