package generation

import "regexp"

var placeholderRe = regexp.MustCompile(`\{\{([a-zA-Z0-9_.-]+)\}\}`)

// RenderTemplate substitutes every {{key}} occurrence with data[key].
// Placeholders without a matching key are left verbatim so the operator can
// see exactly which inputs were missing in the rendered prompt.
func RenderTemplate(template string, data map[string]string) string {
	return placeholderRe.ReplaceAllStringFunc(template, func(match string) string {
		key := match[2 : len(match)-2]
		if value, ok := data[key]; ok {
			return value
		}
		return match
	})
}
