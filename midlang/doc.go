// Package midlang implements the MidLang line interpreter. A script is read
// one line at a time; each line is trimmed, split on whitespace and
// dispatched by its first word:
//   - `let <name> <expr>` binds a variable.
//   - `print <expr>` writes the value of an expression.
//   - `if <condition> <action>` runs a single action line when the condition
//     is truthy. There is no else.
//   - `func <name> <body>` stores a one-line body; `call <name>` runs it.
//   - `loop <count> <body>` runs a one-line body count times.
//
// Expressions support numbers, quoted strings, true/false, variables,
// + - * / and the comparisons < > <= >= == !=. Juxtaposed operands are
// concatenated, so `print "total:" x` interpolates x.
//
// Lines starting with `//` are comments. Every variable and function is
// global. Unknown commands, undefined functions and failed expressions are
// reported as diagnostics and the run continues; the step quota and
// recursion limit abort it.
package midlang
