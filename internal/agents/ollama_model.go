package agents

import (
	"context"
	"errors"
	"fmt"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/ollama/ollama/api"
)

// OllamaChatModel adapts the Ollama chat API to eino's BaseChatModel.
type OllamaChatModel struct {
	client *api.Client
	model  string
}

func NewOllamaChatModel(client *api.Client, modelName string) (*OllamaChatModel, error) {
	if client == nil {
		return nil, errors.New("ollama client is nil")
	}
	if modelName == "" {
		return nil, errors.New("ollama model name is required")
	}
	return &OllamaChatModel{client: client, model: modelName}, nil
}

func (m *OllamaChatModel) Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	req := m.request(input, false, opts)

	var out *schema.Message
	err := m.client.Chat(ctx, req, func(resp api.ChatResponse) error {
		out = toSchemaMessage(resp)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("ollama chat: %w", err)
	}
	if out == nil {
		return nil, errors.New("ollama chat: empty response")
	}
	return out, nil
}

func (m *OllamaChatModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	req := m.request(input, true, opts)
	sr, sw := schema.Pipe[*schema.Message](16)

	go func() {
		defer sw.Close()
		err := m.client.Chat(ctx, req, func(resp api.ChatResponse) error {
			if closed := sw.Send(toSchemaMessage(resp), nil); closed {
				return context.Canceled
			}
			return nil
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			sw.Send(nil, fmt.Errorf("ollama chat: %w", err))
		}
	}()
	return sr, nil
}

func (m *OllamaChatModel) request(input []*schema.Message, stream bool, opts []model.Option) *api.ChatRequest {
	common := model.GetCommonOptions(&model.Options{Model: &m.model}, opts...)

	msgs := make([]api.Message, 0, len(input))
	for _, in := range input {
		if in == nil {
			continue
		}
		msgs = append(msgs, api.Message{Role: string(in.Role), Content: in.Content})
	}

	options := map[string]any{}
	if common.Temperature != nil {
		options["temperature"] = *common.Temperature
	}
	if common.MaxTokens != nil {
		options["num_predict"] = *common.MaxTokens
	}

	return &api.ChatRequest{
		Model:    *common.Model,
		Messages: msgs,
		Stream:   &stream,
		Options:  options,
	}
}

func toSchemaMessage(resp api.ChatResponse) *schema.Message {
	msg := &schema.Message{
		Role:    schema.Assistant,
		Content: resp.Message.Content,
	}
	if resp.Done {
		msg.ResponseMeta = &schema.ResponseMeta{
			FinishReason: resp.DoneReason,
			Usage: &schema.TokenUsage{
				PromptTokens:     resp.PromptEvalCount,
				CompletionTokens: resp.EvalCount,
				TotalTokens:      resp.PromptEvalCount + resp.EvalCount,
			},
		}
	}
	return msg
}
