package agent

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"

	"datapilot/config"
)

// NewChatModel builds the eino chat model for the configured provider.
// "OpenAI-Compatible" covers any endpoint speaking the OpenAI wire format;
// point BaseURL at the proxy.
func NewChatModel(ctx context.Context, cfg config.Config) (model.ChatModel, error) {
	switch cfg.LLMProvider {
	case "", "OpenAI", "OpenAI-Compatible":
		var maxTokens *int
		if cfg.MaxTokens > 0 {
			mt := cfg.MaxTokens
			maxTokens = &mt
		}
		chatModel, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
			APIKey:    cfg.APIKey,
			BaseURL:   cfg.BaseURL,
			Model:     cfg.ModelName,
			MaxTokens: maxTokens,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create chat model: %w", err)
		}
		return chatModel, nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider %q", cfg.LLMProvider)
	}
}
