package midlang

import (
	"fmt"
	"strconv"
	"strings"
)

// formatCodeFrame renders lineText with a caret under pos.Column.
func formatCodeFrame(lineText string, pos Position) string {
	if lineText == "" || pos.Line <= 0 {
		return ""
	}

	lineRunes := []rune(lineText)
	column := pos.Column
	if column <= 0 {
		column = 1
	}
	if column > len(lineRunes)+1 {
		column = len(lineRunes) + 1
	}

	lineLabel := strconv.Itoa(pos.Line)
	gutterPad := strings.Repeat(" ", len(lineLabel))
	caretPad := strings.Repeat(" ", column-1)

	return fmt.Sprintf(
		"  --> line %d, column %d\n %s | %s\n %s | %s^",
		pos.Line,
		column,
		lineLabel,
		lineText,
		gutterPad,
		caretPad,
	)
}
