package midlang

import (
	"slices"
	"strings"
)

const commentMarker = "//"

// Recognised command keywords.
const (
	CmdLet   = "let"
	CmdPrint = "print"
	CmdIf    = "if"
	CmdFunc  = "func"
	CmdCall  = "call"
	CmdLoop  = "loop"
)

// Commands lists every command keyword in sorted order.
var Commands = []string{CmdCall, CmdFunc, CmdIf, CmdLet, CmdLoop, CmdPrint}

// Command is one tokenized line.
type Command struct {
	Keyword string
	Args    []string
}

// Rest joins the arguments from index i onward with single spaces.
func (c Command) Rest(i int) string {
	if i >= len(c.Args) {
		return ""
	}
	return strings.Join(c.Args[i:], " ")
}

func (c Command) String() string {
	if len(c.Args) == 0 {
		return c.Keyword
	}
	return c.Keyword + " " + strings.Join(c.Args, " ")
}

// ParseLine trims and tokenizes a line. It reports false for blank lines and
// comments.
func ParseLine(line string) (Command, bool) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, commentMarker) {
		return Command{}, false
	}
	tokens := strings.Fields(line)
	return Command{Keyword: tokens[0], Args: tokens[1:]}, true
}

func IsCommand(word string) bool {
	_, found := slices.BinarySearch(Commands, word)
	return found
}

// SplitConditional separates the arguments of an `if` line into the condition
// and the action. The action starts at the first command keyword after at
// least one condition token; without one, the last token is the action.
func SplitConditional(args []string) (condition, action []string, ok bool) {
	for i := 1; i < len(args); i++ {
		if IsCommand(args[i]) {
			return args[:i], args[i:], true
		}
	}
	if len(args) >= 2 {
		return args[:len(args)-1], args[len(args)-1:], true
	}
	return nil, nil, false
}
