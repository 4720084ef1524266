package midlang

import "strings"

// Format returns the canonical layout of source: one command per line with
// single spaces between tokens, no trailing blank lines and a final newline.
// Comments are trimmed but otherwise left alone. Collapsing whitespace never
// changes behaviour because lines are rejoined with single spaces when run.
func Format(source string) string {
	normalized := strings.ReplaceAll(source, "\r\n", "\n")
	normalized = strings.ReplaceAll(normalized, "\r", "\n")

	lines := strings.Split(normalized, "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, commentMarker) {
			lines[i] = trimmed
			continue
		}
		lines[i] = strings.Join(strings.Fields(trimmed), " ")
	}

	joined := strings.Join(lines, "\n")
	joined = strings.TrimRight(joined, "\n")
	if joined == "" {
		return ""
	}
	return joined + "\n"
}
