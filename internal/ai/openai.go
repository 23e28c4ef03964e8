package ai

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// openAI talks to the OpenAI API (or any compatible endpoint via a
// custom base URL) using the official client.
type openAI struct {
	client openai.Client
	model  string
}

func newOpenAI(cfg Config) *openAI {
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return &openAI{
		client: openai.NewClient(opts...),
		model:  cfg.Model,
	}
}

func (o *openAI) Name() string { return "openai" }

func (o *openAI) Generate(ctx context.Context, systemPrompt, userPrompt string, params Params) (string, error) {
	model := o.model
	if params.Model != "" {
		model = params.Model
	}

	var messages []openai.ChatCompletionMessageParamUnion
	if systemPrompt != "" {
		messages = append(messages, openai.SystemMessage(systemPrompt))
	}
	messages = append(messages, openai.UserMessage(userPrompt))

	req := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(model),
		Messages: messages,
	}
	if params.Temperature != nil {
		req.Temperature = openai.Float(*params.Temperature)
	}

	resp, err := o.client.Chat.Completions.New(ctx, req)
	if err != nil {
		return "", fmt.Errorf("ai: chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("ai: empty completion response")
	}
	return resp.Choices[0].Message.Content, nil
}

func (o *openAI) GenerateImage(ctx context.Context, prompt string, params Params) (string, error) {
	model := o.model
	if params.Model != "" {
		model = params.Model
	}

	resp, err := o.client.Images.Generate(ctx, openai.ImageGenerateParams{
		Model:  openai.ImageModel(model),
		Prompt: prompt,
		N:      openai.Int(1),
	})
	if err != nil {
		return "", fmt.Errorf("ai: image generation: %w", err)
	}
	if len(resp.Data) == 0 {
		return "", fmt.Errorf("ai: empty image response")
	}
	return resp.Data[0].URL, nil
}
