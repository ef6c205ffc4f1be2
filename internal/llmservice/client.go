package llmservice

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"

	"pdf-rag/internal/config"
	"pdf-rag/internal/models"
)

// Client implements models.ChatModel over a langchaingo chat model.
type Client struct {
	llm llms.Model
}

// NewClient builds the chat client configured by cfg.Provider.
func NewClient(cfg *config.LLMConfig) (*Client, error) {
	switch cfg.Provider {
	case "openai":
		opts := []openai.Option{
			openai.WithToken(strings.TrimPrefix(cfg.Key, "Bearer ")),
			openai.WithModel(cfg.Model),
		}
		if cfg.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
		}
		llm, err := openai.New(opts...)
		if err != nil {
			return nil, err
		}
		log.Debug().Str("model", cfg.Model).Str("base_url", cfg.BaseURL).Msg("Initialized openai chat model")
		return &Client{llm: llm}, nil
	case "ollama":
		opts := []ollama.Option{ollama.WithModel(cfg.Model)}
		if cfg.BaseURL != "" {
			opts = append(opts, ollama.WithServerURL(cfg.BaseURL))
		}
		llm, err := ollama.New(opts...)
		if err != nil {
			return nil, err
		}
		log.Debug().Str("model", cfg.Model).Str("base_url", cfg.BaseURL).Msg("Initialized ollama chat model")
		return &Client{llm: llm}, nil
	default:
		return nil, models.NewConfigError("infer_llm.provider", fmt.Sprintf("unknown provider %q", cfg.Provider))
	}
}

// Complete sends a system prompt, the prior turns and the current user
// message, returning the generated text.
func (c *Client) Complete(ctx context.Context, system string, history []models.ChatTurn, user string) (string, error) {
	messages := make([]llms.MessageContent, 0, len(history)+2)
	messages = append(messages, llms.MessageContent{
		Role:  llms.ChatMessageTypeSystem,
		Parts: []llms.ContentPart{llms.TextContent{Text: system}},
	})
	for _, turn := range history {
		role := llms.ChatMessageTypeHuman
		if turn.Role == models.RoleAssistant {
			role = llms.ChatMessageTypeAI
		}
		messages = append(messages, llms.MessageContent{
			Role:  role,
			Parts: []llms.ContentPart{llms.TextContent{Text: turn.Content}},
		})
	}
	messages = append(messages, llms.MessageContent{
		Role:  llms.ChatMessageTypeHuman,
		Parts: []llms.ContentPart{llms.TextContent{Text: user}},
	})

	res, err := c.llm.GenerateContent(ctx, messages)
	if err != nil {
		return "", err
	}
	if len(res.Choices) == 0 {
		return "", errors.New("model returned no choices")
	}
	return strings.TrimSpace(res.Choices[0].Content), nil
}
