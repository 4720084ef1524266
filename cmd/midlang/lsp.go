package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf16"

	"github.com/midlang/midlang/midlang"
)

var commandDocs = map[string]string{
	midlang.CmdLet:   "let <name> <expression...>\n\nBinds the value of the expression to a global variable.",
	midlang.CmdPrint: "print <expression...>\n\nWrites the value of the expression on its own line.",
	midlang.CmdIf:    "if <condition...> <command...>\n\nRuns the command when the condition is truthy.",
	midlang.CmdFunc:  "func <name> <command...>\n\nStores the command as the body of a function.",
	midlang.CmdCall:  "call <name>\n\nRuns the body of a function defined with func.",
	midlang.CmdLoop:  "loop <count> <command...>\n\nRuns the command count times.",
}

type lspInboundMessage struct {
	JSONRPC string           `json:"jsonrpc"`
	ID      *json.RawMessage `json:"id,omitempty"`
	Method  string           `json:"method,omitempty"`
	Params  json.RawMessage  `json:"params,omitempty"`
}

type lspResponseError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type lspOutboundMessage struct {
	JSONRPC string            `json:"jsonrpc"`
	ID      *json.RawMessage  `json:"id,omitempty"`
	Method  string            `json:"method,omitempty"`
	Params  any               `json:"params,omitempty"`
	Result  any               `json:"result,omitempty"`
	Error   *lspResponseError `json:"error,omitempty"`
}

type lspDidOpenParams struct {
	TextDocument struct {
		URI  string `json:"uri"`
		Text string `json:"text"`
	} `json:"textDocument"`
}

type lspDidChangeParams struct {
	TextDocument struct {
		URI string `json:"uri"`
	} `json:"textDocument"`
	ContentChanges []struct {
		Text string `json:"text"`
	} `json:"contentChanges"`
}

type lspTextDocumentPositionParams struct {
	TextDocument struct {
		URI string `json:"uri"`
	} `json:"textDocument"`
	Position struct {
		Line      int `json:"line"`
		Character int `json:"character"`
	} `json:"position"`
}

// rpcConn frames JSON-RPC messages with Content-Length headers.
type rpcConn struct {
	r *bufio.Reader
	w *bufio.Writer
}

func newRPCConn(r io.Reader, w io.Writer) *rpcConn {
	return &rpcConn{r: bufio.NewReader(r), w: bufio.NewWriter(w)}
}

func (c *rpcConn) read() (lspInboundMessage, error) {
	var msg lspInboundMessage
	length := -1
	for {
		header, err := c.r.ReadString('\n')
		if err != nil {
			return msg, err
		}
		header = strings.TrimRight(header, "\r\n")
		if header == "" {
			break
		}
		name, value, ok := strings.Cut(header, ":")
		if !ok || !strings.EqualFold(strings.TrimSpace(name), "Content-Length") {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return msg, fmt.Errorf("invalid Content-Length: %w", err)
		}
		length = n
	}
	if length < 0 {
		return msg, errors.New("missing Content-Length header")
	}
	body := make([]byte, length)
	if _, err := io.ReadFull(c.r, body); err != nil {
		return msg, err
	}
	if err := json.Unmarshal(body, &msg); err != nil {
		return msg, errMalformedMessage
	}
	return msg, nil
}

func (c *rpcConn) write(msg lspOutboundMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(c.w, "Content-Length: %d\r\n\r\n", len(data)); err != nil {
		return err
	}
	if _, err := c.w.Write(data); err != nil {
		return err
	}
	return c.w.Flush()
}

var errMalformedMessage = errors.New("malformed message")

type lspHandler func(s *lspServer, msg lspInboundMessage) []lspOutboundMessage

var lspHandlers = map[string]lspHandler{
	"initialize":              (*lspServer).initialize,
	"initialized":             nil,
	"exit":                    nil,
	"shutdown":                (*lspServer).shutdown,
	"textDocument/didOpen":    (*lspServer).didOpen,
	"textDocument/didChange":  (*lspServer).didChange,
	"textDocument/didClose":   (*lspServer).didClose,
	"textDocument/completion": (*lspServer).completion,
	"textDocument/hover":      (*lspServer).hover,
}

type lspServer struct {
	conn *rpcConn
	docs map[string]string
}

func runLSP() error {
	return newLSPServer(os.Stdin, os.Stdout).serve()
}

func newLSPServer(r io.Reader, w io.Writer) *lspServer {
	return &lspServer{conn: newRPCConn(r, w), docs: make(map[string]string)}
}

func (s *lspServer) serve() error {
	for {
		incoming, err := s.conn.read()
		if errors.Is(err, errMalformedMessage) {
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		for _, msg := range s.handleMessage(incoming) {
			if err := s.conn.write(msg); err != nil {
				return err
			}
		}
		if incoming.Method == "exit" {
			return nil
		}
	}
}

func (s *lspServer) handleMessage(incoming lspInboundMessage) []lspOutboundMessage {
	handler, known := lspHandlers[incoming.Method]
	if !known {
		if incoming.ID == nil {
			return nil
		}
		return []lspOutboundMessage{replyError(incoming, -32601, "method not found")}
	}
	if handler == nil {
		return nil
	}
	return handler(s, incoming)
}

func reply(incoming lspInboundMessage, result any) lspOutboundMessage {
	return lspOutboundMessage{JSONRPC: "2.0", ID: incoming.ID, Result: result}
}

func replyError(incoming lspInboundMessage, code int, message string) lspOutboundMessage {
	return lspOutboundMessage{JSONRPC: "2.0", ID: incoming.ID, Error: &lspResponseError{Code: code, Message: message}}
}

func (s *lspServer) initialize(incoming lspInboundMessage) []lspOutboundMessage {
	return []lspOutboundMessage{reply(incoming, map[string]any{
		"capabilities": map[string]any{
			"textDocumentSync":   1,
			"hoverProvider":      true,
			"completionProvider": map[string]any{"resolveProvider": false},
		},
		"serverInfo": map[string]any{"name": "midlang-lsp"},
	})}
}

func (s *lspServer) shutdown(incoming lspInboundMessage) []lspOutboundMessage {
	if incoming.ID == nil {
		return nil
	}
	return []lspOutboundMessage{reply(incoming, nil)}
}

func (s *lspServer) didOpen(incoming lspInboundMessage) []lspOutboundMessage {
	var params lspDidOpenParams
	if err := json.Unmarshal(incoming.Params, &params); err != nil {
		return nil
	}
	s.docs[params.TextDocument.URI] = params.TextDocument.Text
	return []lspOutboundMessage{s.publishDiagnostics(params.TextDocument.URI, params.TextDocument.Text)}
}

func (s *lspServer) didChange(incoming lspInboundMessage) []lspOutboundMessage {
	var params lspDidChangeParams
	if err := json.Unmarshal(incoming.Params, &params); err != nil || len(params.ContentChanges) == 0 {
		return nil
	}
	latest := params.ContentChanges[len(params.ContentChanges)-1].Text
	s.docs[params.TextDocument.URI] = latest
	return []lspOutboundMessage{s.publishDiagnostics(params.TextDocument.URI, latest)}
}

func (s *lspServer) didClose(incoming lspInboundMessage) []lspOutboundMessage {
	var params lspDidOpenParams
	if err := json.Unmarshal(incoming.Params, &params); err == nil {
		delete(s.docs, params.TextDocument.URI)
	}
	return nil
}

func (s *lspServer) completion(incoming lspInboundMessage) []lspOutboundMessage {
	if incoming.ID == nil {
		return nil
	}
	var params lspTextDocumentPositionParams
	_ = json.Unmarshal(incoming.Params, &params)
	return []lspOutboundMessage{reply(incoming, map[string]any{
		"isIncomplete": false,
		"items":        completionItems(s.docs[params.TextDocument.URI]),
	})}
}

func (s *lspServer) hover(incoming lspInboundMessage) []lspOutboundMessage {
	if incoming.ID == nil {
		return nil
	}
	var params lspTextDocumentPositionParams
	if err := json.Unmarshal(incoming.Params, &params); err != nil {
		return []lspOutboundMessage{replyError(incoming, -32602, "invalid hover params")}
	}
	source := s.docs[params.TextDocument.URI]
	word := wordAtPosition(source, params.Position.Line, params.Position.Character)
	if word == "" {
		return []lspOutboundMessage{reply(incoming, nil)}
	}
	return []lspOutboundMessage{reply(incoming, map[string]any{
		"contents": map[string]any{"kind": "markdown", "value": hoverText(source, word)},
	})}
}

func (s *lspServer) publishDiagnostics(uri, source string) lspOutboundMessage {
	return lspOutboundMessage{
		JSONRPC: "2.0",
		Method:  "textDocument/publishDiagnostics",
		Params: map[string]any{
			"uri":         uri,
			"diagnostics": diagnosticsForSource(source),
		},
	}
}

func diagnosticsForSource(source string) []map[string]any {
	diags := midlang.Check(source)
	out := make([]map[string]any, 0, len(diags))
	lines := strings.Split(strings.ReplaceAll(source, "\r\n", "\n"), "\n")
	for _, diag := range diags {
		lineIdx := max(0, diag.Pos.Line-1)
		text := ""
		if lineIdx < len(lines) {
			text = lines[lineIdx]
		}
		start := min(max(0, diag.Pos.Column-1), len(text))
		end := start
		for end < len(text) && !unicode.IsSpace(rune(text[end])) {
			end++
		}
		if end == start {
			end = min(start+1, len(text))
		}
		message := diag.Message
		if diag.Cause != nil {
			message = fmt.Sprintf("%s (%v)", message, diag.Cause)
		}
		out = append(out, newDiagnostic(lineIdx, utf16Offset(text, start), utf16Offset(text, end), message))
	}
	return out
}

func newDiagnostic(line, start, end int, message string) map[string]any {
	return map[string]any{
		"range": map[string]any{
			"start": map[string]any{
				"line":      line,
				"character": start,
			},
			"end": map[string]any{
				"line":      line,
				"character": end,
			},
		},
		"severity": 1,
		"source":   "midlang-lsp",
		"message":  message,
	}
}

// completionItems offers the command keywords plus the functions and
// variables the document defines.
func completionItems(source string) []map[string]any {
	const (
		kindFunction = 3
		kindVariable = 6
		kindKeyword  = 14
	)
	details := make(map[string]int)
	for _, cmd := range midlang.Commands {
		details[cmd] = kindKeyword
	}
	details["true"] = kindKeyword
	details["false"] = kindKeyword
	functions, variables := documentSymbols(source)
	for name := range variables {
		if _, ok := details[name]; !ok {
			details[name] = kindVariable
		}
	}
	for name := range functions {
		if _, ok := details[name]; !ok {
			details[name] = kindFunction
		}
	}

	labels := make([]string, 0, len(details))
	for label := range details {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	items := make([]map[string]any, 0, len(labels))
	for _, label := range labels {
		kind := details[label]
		detail := "keyword"
		switch kind {
		case kindFunction:
			detail = "function"
		case kindVariable:
			detail = "variable"
		}
		items = append(items, map[string]any{
			"label":  label,
			"kind":   kind,
			"detail": detail,
		})
	}
	return items
}

// documentSymbols maps function names to their last body and lists the
// variable names bound by top-level let lines.
func documentSymbols(source string) (map[string]string, map[string]struct{}) {
	functions := make(map[string]string)
	variables := make(map[string]struct{})
	for _, line := range strings.Split(source, "\n") {
		cmd, ok := midlang.ParseLine(line)
		if !ok || len(cmd.Args) == 0 {
			continue
		}
		switch cmd.Keyword {
		case midlang.CmdFunc:
			functions[cmd.Args[0]] = cmd.Rest(1)
		case midlang.CmdLet:
			variables[cmd.Args[0]] = struct{}{}
		}
	}
	return functions, variables
}

func hoverText(source, word string) string {
	if doc, ok := commandDocs[word]; ok {
		return fmt.Sprintf("`%s`\n\nMidLang command: %s", word, doc)
	}
	functions, variables := documentSymbols(source)
	if body, ok := functions[word]; ok {
		return fmt.Sprintf("`%s`\n\nMidLang function\n\n```\n%s\n```", word, body)
	}
	if _, ok := variables[word]; ok {
		return fmt.Sprintf("`%s`\n\nMidLang variable", word)
	}
	return fmt.Sprintf("`%s`\n\nMidLang symbol", word)
}

// wordAtPosition returns the identifier under an LSP position. character is
// measured in UTF-16 code units.
func wordAtPosition(source string, line, character int) string {
	lines := strings.Split(source, "\n")
	if line < 0 || line >= len(lines) {
		return ""
	}

	runes := []rune(lines[line])
	if len(runes) == 0 {
		return ""
	}
	cursor := runeIndexForUTF16(runes, max(character, 0))
	if cursor == len(runes) {
		cursor--
	}
	if !isWordRune(runes[cursor]) {
		if cursor > 0 && isWordRune(runes[cursor-1]) {
			cursor--
		} else {
			return ""
		}
	}

	start := cursor
	for start > 0 && isWordRune(runes[start-1]) {
		start--
	}
	end := cursor
	for end < len(runes) && isWordRune(runes[end]) {
		end++
	}
	return string(runes[start:end])
}

func runeIndexForUTF16(runes []rune, units int) int {
	count := 0
	for i, r := range runes {
		if count >= units {
			return i
		}
		count += utf16.RuneLen(r)
	}
	return len(runes)
}

// utf16Offset converts a byte offset within text to UTF-16 code units.
func utf16Offset(text string, byteOffset int) int {
	units := 0
	for i, r := range text {
		if i >= byteOffset {
			break
		}
		units += utf16.RuneLen(r)
	}
	return units
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}
