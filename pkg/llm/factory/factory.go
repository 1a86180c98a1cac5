package factory

import (
	"fmt"

	"ai-shopassist-be/pkg/llm"
	"ai-shopassist-be/pkg/llm/ollama"
	"ai-shopassist-be/pkg/llm/openai"
)

// NewLLMProvider builds the configured model backend. "deepseek" is the
// OpenAI-compatible protocol pointed at the DeepSeek router.
func NewLLMProvider(providerType, modelName, baseURL, apiKey string) (llm.LLMProvider, error) {
	switch providerType {
	case "ollama":
		if baseURL == "" {
			baseURL = "http://localhost:11434" // Default
		}
		return ollama.NewOllamaProvider(baseURL, modelName), nil
	case "openai":
		return openai.NewOpenAIProvider(apiKey, baseURL, modelName), nil
	case "deepseek":
		if baseURL == "" {
			baseURL = "https://api.deepseek.com/v1"
		}
		return openai.NewOpenAIProvider(apiKey, baseURL, modelName), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", providerType)
	}
}
