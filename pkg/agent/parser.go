package agent

import (
	"strings"
)

// StepKind tags the outcome of parsing one model completion.
type StepKind int

const (
	// StepAction means the model asked for a tool invocation.
	StepAction StepKind = iota
	// StepFinal means the model produced its final answer.
	StepFinal
	// StepMalformed means the completion fits neither shape; the raw
	// text is kept so the loop can re-prompt with it.
	StepMalformed
)

// Step is the structured result of parsing one completion. Exactly one
// of the payload fields is meaningful, selected by Kind.
type Step struct {
	Kind      StepKind
	Tool      string
	ToolInput string
	Final     string
	Raw       string
}

const (
	finalAnswerMarker = "Final Answer:"
	actionMarker      = "Action:"
	actionInputMarker = "Action Input:"
)

// ParseStep classifies a model completion into a tagged Step. A
// completion containing both an action block and a final answer is
// ambiguous and reported as malformed rather than guessed at.
func ParseStep(completion string) Step {
	text := strings.TrimSpace(completion)

	hasFinal := strings.Contains(text, finalAnswerMarker)
	hasAction := strings.Contains(text, actionMarker)

	if hasFinal && !hasAction {
		_, after, _ := strings.Cut(text, finalAnswerMarker)
		return Step{Kind: StepFinal, Final: strings.TrimSpace(after)}
	}

	if hasAction && !hasFinal {
		_, afterAction, _ := strings.Cut(text, actionMarker)
		tool, afterTool, found := strings.Cut(afterAction, actionInputMarker)
		if !found {
			return Step{Kind: StepMalformed, Raw: text}
		}
		toolName := strings.Trim(strings.TrimSpace(tool), "`\"' ")
		input := strings.TrimSpace(afterTool)
		// The model sometimes keeps reasoning after the input line;
		// only the first line belongs to the tool.
		if idx := strings.IndexByte(input, '\n'); idx >= 0 {
			input = strings.TrimSpace(input[:idx])
		}
		input = strings.Trim(input, "`\"'")
		if toolName == "" {
			return Step{Kind: StepMalformed, Raw: text}
		}
		return Step{Kind: StepAction, Tool: toolName, ToolInput: input}
	}

	return Step{Kind: StepMalformed, Raw: text}
}
