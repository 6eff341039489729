package discovery

import (
	"fmt"
	"strings"

	"github.com/oryxcli/oryx/internal/tools"
)

// FormatPrompt renders a discovery result as the tool section of the
// system prompt: one block per tool with explicit when-to-use and
// when-NOT-to-use guidance, gated tools carrying a visible warning.
func FormatPrompt(r Result) string {
	var b strings.Builder
	b.WriteString("## Available tools\n\n")
	for _, m := range r.Core {
		writeTool(&b, m)
	}
	if len(r.Specialized) > 0 {
		b.WriteString("## Additional tools for this task\n\n")
		for _, m := range r.Specialized {
			writeTool(&b, m)
		}
	}
	return b.String()
}

func writeTool(b *strings.Builder, m tools.Metadata) {
	fmt.Fprintf(b, "### %s\n%s\n", m.Name, m.Description)
	if m.Gated {
		b.WriteString("WARNING: this tool requires human approval before it runs.\n")
	}
	if len(m.Examples) > 0 {
		b.WriteString("When to use:\n")
		for _, ex := range m.Examples {
			fmt.Fprintf(b, "- %s\n", ex)
		}
	}
	if len(m.NotExamples) > 0 {
		b.WriteString("When NOT to use:\n")
		for _, ex := range m.NotExamples {
			fmt.Fprintf(b, "- %s\n", ex)
		}
	}
	b.WriteString("\n")
}
