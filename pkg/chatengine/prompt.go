package chatengine

import (
	"fmt"
	"strings"

	"jyotchat-be/pkg/llm"
	"jyotchat-be/pkg/store"
)

// buildMessages lays out system instructions, retrieved context, the prior
// conversation and the query, in that order.
func buildMessages(systemPrompt, query string, history []llm.Message, evidence []store.Evidence) []llm.Message {
	var sys strings.Builder
	sys.WriteString(systemPrompt)

	if len(evidence) > 0 {
		sys.WriteString("\n\n<context>\n")
		for i, ev := range evidence {
			fmt.Fprintf(&sys, "[%d]", i+1)
			if ev.ResourcePath != "" {
				fmt.Fprintf(&sys, " %s", ev.ResourcePath)
			}
			if ev.Page != "" {
				fmt.Fprintf(&sys, " (page %s)", ev.Page)
			}
			sys.WriteString("\n")
			sys.WriteString(ev.Text)
			sys.WriteString("\n\n")
		}
		sys.WriteString("</context>\n")
		sys.WriteString("Answer using the context above. If it does not contain the answer, say so.")
	}

	messages := make([]llm.Message, 0, len(history)+2)
	messages = append(messages, llm.Message{Role: "system", Content: sys.String()})
	for _, m := range history {
		if m.Role == "system" {
			continue
		}
		messages = append(messages, m)
	}
	messages = append(messages, llm.Message{Role: "user", Content: query})
	return messages
}
