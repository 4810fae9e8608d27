// Package llm implements the language model and embedding gateways over the
// OpenAI-compatible client. Every call carries a bounded timeout so a slow
// provider degrades a reply instead of hanging the pipeline.
package llm

import (
	"context"
	"fmt"

	openaisdk "github.com/openai/openai-go"

	contractx "github.com/renzovallejo/lima-property-agent/agent/contract"
)

type Gateway struct {
	client     *openaisdk.Client
	classifier string
	cfg        Config
}

func NewGateway(client *openaisdk.Client, cfg Config, classifierPrompt string) *Gateway {
	return &Gateway{client: client, classifier: classifierPrompt, cfg: cfg.withDefaults()}
}

// Classify asks the classifier model to label one message. The raw model
// output is returned; the router owns the tolerant parsing.
func (g *Gateway) Classify(ctx context.Context, text string) (string, error) {
	cctx, cancel := context.WithTimeout(ctx, g.cfg.Timeout)
	defer cancel()

	resp, err := g.client.Chat.Completions.New(cctx, openaisdk.ChatCompletionNewParams{
		Model: openaisdk.ChatModel(g.cfg.ClassifierModel),
		Messages: []openaisdk.ChatCompletionMessageParamUnion{
			openaisdk.SystemMessage(g.classifier),
			openaisdk.UserMessage(text),
		},
		Temperature: openaisdk.Float(0),
	})
	if err != nil {
		return "", fmt.Errorf("%w: classify: %v", contractx.ErrUpstream, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: classify returned no choices", contractx.ErrUpstream)
	}
	return resp.Choices[0].Message.Content, nil
}

// Complete generates the conversational reply text for one turn.
func (g *Gateway) Complete(ctx context.Context, systemPrompt string, history []contractx.Turn, userMessage string) (string, error) {
	cctx, cancel := context.WithTimeout(ctx, g.cfg.Timeout)
	defer cancel()

	messages := make([]openaisdk.ChatCompletionMessageParamUnion, 0, len(history)+2)
	messages = append(messages, openaisdk.SystemMessage(systemPrompt))
	for _, turn := range history {
		if turn.Role == contractx.RoleAssistant {
			messages = append(messages, openaisdk.AssistantMessage(turn.Text))
		} else {
			messages = append(messages, openaisdk.UserMessage(turn.Text))
		}
	}
	messages = append(messages, openaisdk.UserMessage(userMessage))

	resp, err := g.client.Chat.Completions.New(cctx, openaisdk.ChatCompletionNewParams{
		Model:       openaisdk.ChatModel(g.cfg.ResponderModel),
		Messages:    messages,
		Temperature: openaisdk.Float(g.cfg.Temperature),
	})
	if err != nil {
		return "", fmt.Errorf("%w: complete: %v", contractx.ErrUpstream, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: complete returned no choices", contractx.ErrUpstream)
	}
	return resp.Choices[0].Message.Content, nil
}

// Embed vectorizes a normalized search query.
func (g *Gateway) Embed(ctx context.Context, text string) ([]float32, error) {
	cctx, cancel := context.WithTimeout(ctx, g.cfg.Timeout)
	defer cancel()

	resp, err := g.client.Embeddings.New(cctx, openaisdk.EmbeddingNewParams{
		Model:      openaisdk.EmbeddingModel(g.cfg.EmbeddingModel),
		Input:      openaisdk.EmbeddingNewParamsInputUnion{OfString: openaisdk.String(text)},
		Dimensions: openaisdk.Int(int64(g.cfg.EmbeddingDimensions)),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: embed: %v", contractx.ErrUpstream, err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("%w: embed returned no data", contractx.ErrUpstream)
	}

	raw := resp.Data[0].Embedding
	vector := make([]float32, len(raw))
	for i, v := range raw {
		vector[i] = float32(v)
	}
	return vector, nil
}

func (g *Gateway) Dimensions() int {
	return g.cfg.EmbeddingDimensions
}
