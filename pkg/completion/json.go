package completion

import "strings"

// ExtractJSON strips the wrapping a model tends to put around a JSON object:
// markdown code fences and surrounding prose outside the outermost braces.
// It does not attempt to repair broken JSON; a document that still fails to
// parse is handled as ErrMalformedOutput by the caller.
func ExtractJSON(text string) string {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "```") {
		lines := strings.Split(text, "\n")
		if strings.HasPrefix(lines[0], "```") {
			lines = lines[1:]
		}

		if len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "```" {
			lines = lines[:len(lines)-1]
		}

		text = strings.TrimSpace(strings.Join(lines, "\n"))
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")

	if start != -1 && end > start {
		text = text[start : end+1]
	}

	return text
}
