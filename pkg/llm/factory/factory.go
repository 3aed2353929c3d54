package factory

import (
	"fmt"

	"bizops-assistant-be/pkg/llm"
	"bizops-assistant-be/pkg/llm/ollama"
)

func NewReplyProvider(providerType, modelName, baseURL string) (llm.ReplyProvider, error) {
	switch providerType {
	case "ollama":
		if baseURL == "" {
			baseURL = "http://localhost:11434" // Default
		}
		return ollama.NewOllamaProvider(baseURL, modelName), nil
	default:
		return nil, fmt.Errorf("unsupported reply provider: %s", providerType)
	}
}
