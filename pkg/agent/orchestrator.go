package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"ai-shopassist-be/pkg/agent/tools"
	"ai-shopassist-be/pkg/llm"
)

const (
	// maxIterations bounds the reason/act loop per user message.
	maxIterations = 3
	// maxProductsPerReply caps how many listings one reply carries.
	maxProductsPerReply = 5
	// maxHistoryMessages bounds the per-session conversation memory.
	maxHistoryMessages = 20

	MessageTypeText     = "text"
	MessageTypeImage    = "image"
	MessageTypeProducts = "products"
)

const apologyMessage = "I'm sorry, something went wrong while handling your request. Please try again in a moment."

// Response is the assistant's reply to one user message.
type Response struct {
	Message     string                 `json:"message"`
	MessageType string                 `json:"message_type"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
}

// traceStep records one executed tool call of the current loop.
type traceStep struct {
	tool    string
	input   string
	records []tools.Record
}

// Orchestrator runs the reason/act loop for a single chat session. It
// is not safe for concurrent use; callers serialize per session.
type Orchestrator struct {
	provider llm.LLMProvider
	registry *tools.Registry
	logger   *zap.Logger

	systemPrompt string
	history      []llm.Message
}

func NewOrchestrator(provider llm.LLMProvider, registry *tools.Registry, logger *zap.Logger) *Orchestrator {
	return &Orchestrator{
		provider:     provider,
		registry:     registry,
		logger:       logger,
		systemPrompt: buildSystemPrompt(registry.Catalog(), registry.Names()),
	}
}

// ProcessMessage handles one user message and always yields a usable
// reply; internal failures degrade to an apology carrying the error in
// the metadata instead of propagating.
func (o *Orchestrator) ProcessMessage(ctx context.Context, message, messageType string) *Response {
	if messageType == MessageTypeImage {
		return o.processImage(ctx, message)
	}

	resp, err := o.runLoop(ctx, message)
	if err != nil {
		o.logger.Error("agent loop failed", zap.Error(err))
		return &Response{
			Message:     apologyMessage,
			MessageType: MessageTypeText,
			Metadata:    map[string]interface{}{"error": err.Error()},
		}
	}

	o.remember(message, resp.Message)
	return resp
}

// processImage bypasses the planning loop: an image message maps to
// exactly one image_search invocation.
func (o *Orchestrator) processImage(ctx context.Context, imageData string) *Response {
	tool, ok := o.registry.Lookup("image_search")
	if !ok {
		return &Response{Message: apologyMessage, MessageType: MessageTypeText,
			Metadata: map[string]interface{}{"error": "image search is not available"}}
	}

	records := tool.Execute(ctx, imageData)
	if len(records) == 1 && tools.IsErrorRecord(records[0]) {
		msg, _ := records[0]["error"].(string)
		return &Response{
			Message:     "I couldn't read that image. Please upload it again or describe what you are looking for.",
			MessageType: MessageTypeText,
			Metadata:    map[string]interface{}{"error": msg},
		}
	}

	products := collectProducts([]traceStep{{tool: "image_search", records: records}}, "image_search")
	if len(products) == 0 {
		reply := "I couldn't find any products matching that image. Try a clearer photo or describe the item in words."
		o.remember("[image]", reply)
		return &Response{Message: reply, MessageType: MessageTypeText}
	}

	resp := productResponse(products)
	o.remember("[image]", resp.Message)
	return resp
}

func (o *Orchestrator) runLoop(ctx context.Context, message string) (*Response, error) {
	var (
		scratchpad []scratchpadEntry
		trace      []traceStep
		finalText  string
	)

	for i := 0; i < maxIterations; i++ {
		completion, err := o.provider.Chat(ctx, o.buildMessages(message, scratchpad))
		if err != nil {
			return nil, fmt.Errorf("llm completion: %w", err)
		}

		step := ParseStep(completion)
		switch step.Kind {
		case StepFinal:
			finalText = step.Final

		case StepAction:
			tool, ok := o.registry.Lookup(step.Tool)
			if !ok {
				scratchpad = append(scratchpad, scratchpadEntry{
					tool:        step.Tool,
					input:       step.ToolInput,
					observation: fmt.Sprintf("unknown tool %q, available tools: %s", step.Tool, strings.Join(o.registry.Names(), ", ")),
				})
				continue
			}
			records := tool.Execute(ctx, step.ToolInput)
			trace = append(trace, traceStep{tool: tool.Name(), input: step.ToolInput, records: records})
			scratchpad = append(scratchpad, scratchpadEntry{
				tool:        tool.Name(),
				input:       step.ToolInput,
				observation: renderObservation(records),
			})

		case StepMalformed:
			// Corrective re-prompt: feed the bad completion back with
			// the format reminder. It still spends an iteration.
			o.logger.Warn("malformed agent completion", zap.String("raw", step.Raw))
			scratchpad = append(scratchpad, scratchpadEntry{
				tool:        "format_reminder",
				input:       step.Raw,
				observation: correctiveReply,
			})
		}

		if finalText != "" {
			break
		}
	}

	products := collectProducts(trace, "product_search", "product_detail")
	if len(products) > 0 {
		return productResponse(products), nil
	}

	if finalText == "" {
		finalText = "I wasn't able to work that out. Could you rephrase your request or add more detail?"
	}
	return &Response{Message: finalText, MessageType: MessageTypeText}, nil
}

func (o *Orchestrator) buildMessages(userMessage string, scratchpad []scratchpadEntry) []llm.Message {
	messages := make([]llm.Message, 0, len(o.history)+3)
	messages = append(messages, llm.Message{Role: "system", Content: o.systemPrompt})
	messages = append(messages, o.history...)
	messages = append(messages, llm.Message{Role: "user", Content: userMessage})
	if pad := renderScratchpad(scratchpad); pad != "" {
		messages = append(messages, llm.Message{Role: "assistant", Content: pad})
	}
	return messages
}

func (o *Orchestrator) remember(userMessage, reply string) {
	o.history = append(o.history,
		llm.Message{Role: "user", Content: userMessage},
		llm.Message{Role: "assistant", Content: reply},
	)
	if len(o.history) > maxHistoryMessages {
		o.history = o.history[len(o.history)-maxHistoryMessages:]
	}
}

// collectProducts pulls product records out of the trace in execution
// order. Only observations from the named tools count, and only
// records carrying an item id qualify as products.
func collectProducts(trace []traceStep, sources ...string) []tools.Record {
	allowed := make(map[string]bool, len(sources))
	for _, s := range sources {
		allowed[s] = true
	}

	var products []tools.Record
	for _, step := range trace {
		if !allowed[step.tool] {
			continue
		}
		for _, rec := range step.records {
			if tools.IsErrorRecord(rec) {
				continue
			}
			if _, ok := rec["item_id"]; !ok {
				continue
			}
			products = append(products, rec)
			if len(products) == maxProductsPerReply {
				return products
			}
		}
	}
	return products
}

func productResponse(products []tools.Record) *Response {
	var b strings.Builder
	fmt.Fprintf(&b, "Here are %d products I found for you:\n", len(products))
	for i, p := range products {
		title, _ := p["title"].(string)
		price, _ := p["price"].(string)
		if price != "" {
			fmt.Fprintf(&b, "%d. %s - %s\n", i+1, title, price)
		} else {
			fmt.Fprintf(&b, "%d. %s\n", i+1, title)
		}
	}
	return &Response{
		Message:     strings.TrimRight(b.String(), "\n"),
		MessageType: MessageTypeProducts,
		Metadata:    map[string]interface{}{"products": products},
	}
}

// renderObservation serializes tool records for the scratchpad. JSON
// keeps the shape unambiguous for the model.
func renderObservation(records []tools.Record) string {
	if len(records) == 0 {
		return "no results"
	}
	data, err := json.Marshal(records)
	if err != nil {
		return "no results"
	}
	return string(data)
}
