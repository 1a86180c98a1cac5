package agent

import (
	"fmt"
	"strings"
)

const systemPromptTemplate = `You are a helpful shopping assistant for an online marketplace. You help users find products, compare prices, check orders and track shipments.

You have access to the following tools:
%s
Use this exact format when you need a tool:

Thought: what you are trying to find out
Action: the tool name, one of [%s]
Action Input: the input to the tool
Observation: the tool result will be inserted here

You may repeat Thought/Action/Action Input/Observation. When you know the answer, reply with:

Thought: I now know the answer
Final Answer: the answer for the user

Rules:
- Only recommend products that appear in tool observations. Never invent listings, prices or item ids.
- If a tool observation contains an error or is empty, tell the user honestly and suggest what to try instead.
- Answer in the user's language and keep the tone friendly and concise.`

const correctiveReply = `Your previous reply did not follow the required format. Reply again using either an Action/Action Input pair or a Final Answer, nothing else.`

// buildSystemPrompt renders the planning prompt for one registry.
func buildSystemPrompt(catalog string, names []string) string {
	return fmt.Sprintf(systemPromptTemplate, catalog, strings.Join(names, ", "))
}

// renderScratchpad serializes prior steps of the current loop so the
// model sees its own actions and their observations.
func renderScratchpad(entries []scratchpadEntry) string {
	if len(entries) == 0 {
		return ""
	}
	var b strings.Builder
	for _, e := range entries {
		fmt.Fprintf(&b, "Action: %s\nAction Input: %s\nObservation: %s\n", e.tool, e.input, e.observation)
	}
	return b.String()
}

type scratchpadEntry struct {
	tool        string
	input       string
	observation string
}
