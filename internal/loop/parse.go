package loop

import "strings"

// ToolCall is a tool invocation embedded in a model response.
type ToolCall struct {
	Tool string
	Args map[string]string
}

// toolCallMarker introduces an embedded tool call in model output.
const toolCallMarker = "TOOL_CALL:"

// ParseToolCall scans a model response for an embedded tool call of the
// form:
//
//	TOOL_CALL: tool: file_write args: path: a.txt content: hello
//
// The args section is a sequence of "key: value" pairs; a value runs
// until the next "key:" token. Returns false when the response carries
// no tool call.
func ParseToolCall(response string) (ToolCall, bool) {
	idx := strings.Index(response, toolCallMarker)
	if idx < 0 {
		return ToolCall{}, false
	}
	rest := response[idx+len(toolCallMarker):]
	// The call is confined to the marker's line plus continuation lines
	// until a blank line.
	if cut := strings.Index(rest, "\n\n"); cut >= 0 {
		rest = rest[:cut]
	}
	rest = strings.ReplaceAll(rest, "\n", " ")

	toolIdx := strings.Index(rest, "tool:")
	if toolIdx < 0 {
		return ToolCall{}, false
	}
	afterTool := strings.TrimSpace(rest[toolIdx+len("tool:"):])

	call := ToolCall{Args: map[string]string{}}
	argsIdx := strings.Index(afterTool, "args:")
	if argsIdx < 0 {
		fields := strings.Fields(afterTool)
		if len(fields) == 0 {
			return ToolCall{}, false
		}
		call.Tool = fields[0]
		return call, true
	}

	nameFields := strings.Fields(afterTool[:argsIdx])
	if len(nameFields) == 0 {
		return ToolCall{}, false
	}
	call.Tool = nameFields[0]

	parseArgPairs(afterTool[argsIdx+len("args:"):], call.Args)
	return call, true
}

// parseArgPairs splits "path: a.txt content: hello world" into the args
// map. A token ending in ':' starts a new key; everything until the
// next such token joins the value. That rule is absolute: a value word
// that itself ends in ':' reads as a new key, so values cannot carry
// trailing-colon words. The line format accepts this in exchange for
// needing no quoting.
func parseArgPairs(s string, args map[string]string) {
	tokens := strings.Fields(s)
	var key string
	var value []string
	flush := func() {
		if key != "" {
			args[key] = strings.Join(value, " ")
		}
	}
	for _, tok := range tokens {
		if strings.HasSuffix(tok, ":") && len(tok) > 1 {
			flush()
			key = strings.TrimSuffix(tok, ":")
			value = value[:0]
			continue
		}
		value = append(value, tok)
	}
	flush()
}
