// Package llm generates fortune records through an OpenAI-compatible chat
// endpoint, constrained by a strict JSON schema.
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/litesuggar/omikuji/internal/config"
	"github.com/litesuggar/omikuji/internal/errors"
	"github.com/litesuggar/omikuji/internal/fortune"
)

// defaultPersona grounds the sign voice when no persona is configured.
const defaultPersona = "你是一位驻守古老神社的签文师。"

const generatePromptSuffix = "\n你现在需要结合你的角色设定生成御神签。"

// Client generates fortunes via chat completion. It implements ops.Generator.
type Client struct {
	client  *openai.Client
	model   string
	persona string
	timeout time.Duration
}

// NewClient builds a generator from the LLM section of the config. The API
// key comes from the environment only; a missing key is a configuration
// error, not a generation failure.
func NewClient(cfg *config.Config) (*Client, error) {
	key := cfg.APIKey()
	if key == "" {
		return nil, errors.NewInvalidRequest(config.APIKeyEnv + " is not set")
	}

	clientConfig := openai.DefaultConfig(key)
	if cfg.LLMBaseURL != "" {
		clientConfig.BaseURL = cfg.LLMBaseURL
	}

	persona := cfg.Persona
	if persona == "" {
		persona = defaultPersona
	}

	return &Client{
		client:  openai.NewClientWithConfig(clientConfig),
		model:   cfg.LLMModel,
		persona: persona,
		timeout: cfg.LLMTimeout(),
	}, nil
}

// Generate asks the model for a sign record with the given grade and theme.
// The returned record carries the requested level and theme regardless of
// what the model produced, and has passed structural validation.
func (c *Client) Generate(ctx context.Context, level, theme string) (*fortune.Fortune, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: c.persona + generatePromptSuffix,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: fmt.Sprintf("御神签的运势是：'%s'\n现在生成一张主题为：'%s'的御神签", level, theme),
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   "omikuji",
				Strict: true,
				Schema: fortuneJSONSchema,
			},
		},
	}

	start := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, req)
	latency := time.Since(start)

	if err != nil {
		slog.Error("fortune generation request failed",
			"level", level, "theme", theme,
			"latency_ms", latency.Milliseconds(), "error", err.Error())
		return nil, errors.NewGenerationFailed(err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.NewGenerationFailed(fmt.Errorf("empty response from model"))
	}

	record, err := parseRecord(resp.Choices[0].Message.Content)
	if err != nil {
		slog.Warn("failed to parse generated sign",
			"level", level, "theme", theme, "error", err.Error())
		return nil, errors.NewGenerationFailed(err)
	}

	record.Level = level
	record.Theme = theme

	if result := fortune.Validate(record); !result.Valid {
		return nil, errors.NewGenerationFailed(
			fmt.Errorf("generated sign is invalid: %s", strings.Join(result.Problems, "; ")))
	}

	slog.Debug("fortune generated",
		"level", level, "theme", theme,
		"latency_ms", latency.Milliseconds(), "tokens", resp.Usage.TotalTokens)

	return record, nil
}

var codeBlockRe = regexp.MustCompile("```(?:json)?\\s*([\\s\\S]*?)\\s*```")

// parseRecord decodes the model output, tolerating a markdown code fence
// around the JSON.
func parseRecord(content string) (*fortune.Fortune, error) {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```") {
		if matches := codeBlockRe.FindStringSubmatch(content); len(matches) > 1 {
			content = matches[1]
		}
	}

	record := &fortune.Fortune{}
	if err := json.Unmarshal([]byte(content), record); err != nil {
		return nil, fmt.Errorf("JSON unmarshal failed: %w", err)
	}
	return record, nil
}
