// Package openai wraps the OpenAI API for embeddings and chat completions.
package openai

import (
	"context"

	"github.com/rotisserie/eris"
	sdk "github.com/sashabaranov/go-openai"
)

// Client defines the OpenAI operations used by the pipeline.
type Client interface {
	// EmbedBatch generates one embedding vector per input text.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	// Complete performs a chat completion and returns the text content.
	Complete(ctx context.Context, req CompletionRequest) (string, error)
	// CompleteJSON performs a chat completion in JSON mode and returns the
	// raw JSON text. The caller is responsible for unmarshalling.
	CompleteJSON(ctx context.Context, req CompletionRequest) (string, error)
}

// CompletionRequest is a chat completion request.
type CompletionRequest struct {
	Model       string
	System      string
	Prompt      string
	Temperature float32
	MaxTokens   int
}

// Config holds client settings.
type Config struct {
	APIKey          string
	BaseURL         string
	EmbeddingModel  string
	EmbeddingDims   int
	CompletionModel string
}

type sdkClient struct {
	client *sdk.Client
	cfg    Config
}

// NewClient creates an OpenAI client. Available returns false on clients
// constructed without an API key; their calls fail fast.
func NewClient(cfg Config) Client {
	clientCfg := sdk.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	if cfg.EmbeddingModel == "" {
		cfg.EmbeddingModel = string(sdk.SmallEmbedding3)
	}
	if cfg.CompletionModel == "" {
		cfg.CompletionModel = sdk.GPT4o
	}
	return &sdkClient{
		client: sdk.NewClientWithConfig(clientCfg),
		cfg:    cfg,
	}
}

func (c *sdkClient) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if c.cfg.APIKey == "" {
		return nil, eris.New("openai: api key not configured")
	}

	req := sdk.EmbeddingRequest{
		Input:          texts,
		Model:          sdk.EmbeddingModel(c.cfg.EmbeddingModel),
		EncodingFormat: sdk.EmbeddingEncodingFormatFloat,
	}
	if c.cfg.EmbeddingDims > 0 {
		req.Dimensions = c.cfg.EmbeddingDims
	}

	resp, err := c.client.CreateEmbeddings(ctx, req)
	if err != nil {
		return nil, eris.Wrap(err, "openai: create embeddings")
	}
	if len(resp.Data) != len(texts) {
		return nil, eris.Errorf("openai: got %d embeddings for %d inputs", len(resp.Data), len(texts))
	}

	vectors := make([][]float32, len(resp.Data))
	for i, d := range resp.Data {
		vectors[i] = d.Embedding
	}
	return vectors, nil
}

func (c *sdkClient) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	return c.complete(ctx, req, nil)
}

func (c *sdkClient) CompleteJSON(ctx context.Context, req CompletionRequest) (string, error) {
	format := &sdk.ChatCompletionResponseFormat{
		Type: sdk.ChatCompletionResponseFormatTypeJSONObject,
	}
	return c.complete(ctx, req, format)
}

func (c *sdkClient) complete(ctx context.Context, req CompletionRequest, format *sdk.ChatCompletionResponseFormat) (string, error) {
	if c.cfg.APIKey == "" {
		return "", eris.New("openai: api key not configured")
	}

	model := req.Model
	if model == "" {
		model = c.cfg.CompletionModel
	}

	var messages []sdk.ChatCompletionMessage
	if req.System != "" {
		messages = append(messages, sdk.ChatCompletionMessage{
			Role:    sdk.ChatMessageRoleSystem,
			Content: req.System,
		})
	}
	messages = append(messages, sdk.ChatCompletionMessage{
		Role:    sdk.ChatMessageRoleUser,
		Content: req.Prompt,
	})

	resp, err := c.client.CreateChatCompletion(ctx, sdk.ChatCompletionRequest{
		Model:          model,
		Messages:       messages,
		Temperature:    req.Temperature,
		MaxTokens:      req.MaxTokens,
		ResponseFormat: format,
	})
	if err != nil {
		return "", eris.Wrap(err, "openai: chat completion")
	}
	if len(resp.Choices) == 0 {
		return "", eris.New("openai: empty completion response")
	}

	return resp.Choices[0].Message.Content, nil
}
