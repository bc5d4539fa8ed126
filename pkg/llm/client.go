// Package llm provides a client for interacting with Large Language Models.
package llm

import (
	"context"
	"errors"
	"fmt"
	"io"

	"smart-chat-go/internal/config"

	"github.com/gorilla/websocket"
	"github.com/sashabaranov/go-openai"
)

// MessageWriter defines an interface for writing streamed chunks.
// 标准的 websocket.Conn 与缓冲拦截器都实现了该接口。
type MessageWriter interface {
	WriteMessage(messageType int, data []byte) error
}

// Client defines the interface for an LLM client.
type Client interface {
	// StreamChatMessages 以 role-based 消息调用聊天接口（可带工具定义），
	// 将内容分块写入 writer，并返回聚合后的完整 assistant 消息。
	// 当模型发起工具调用时，返回消息携带 ToolCalls 且通常不产生内容分块。
	StreamChatMessages(ctx context.Context, messages []openai.ChatCompletionMessage, tools []openai.Tool, writer MessageWriter) (openai.ChatCompletionMessage, error)
}

type openAIClient struct {
	cfg    config.LLMConfig
	client *openai.Client
}

// NewClient 基于 OpenAI 兼容端点（Groq、DeepSeek 等）创建 LLM 客户端。
func NewClient(cfg config.LLMConfig) Client {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	return &openAIClient{
		cfg:    cfg,
		client: openai.NewClientWithConfig(clientConfig),
	}
}

func (c *openAIClient) StreamChatMessages(ctx context.Context, messages []openai.ChatCompletionMessage, tools []openai.Tool, writer MessageWriter) (openai.ChatCompletionMessage, error) {
	req := openai.ChatCompletionRequest{
		Model:    c.cfg.Model,
		Messages: messages,
		Tools:    tools,
		Stream:   true,
	}
	if c.cfg.Generation.Temperature != 0 {
		req.Temperature = float32(c.cfg.Generation.Temperature)
	}
	if c.cfg.Generation.TopP != 0 {
		req.TopP = float32(c.cfg.Generation.TopP)
	}
	if c.cfg.Generation.MaxTokens != 0 {
		req.MaxTokens = c.cfg.Generation.MaxTokens
	}

	stream, err := c.client.CreateChatCompletionStream(ctx, req)
	if err != nil {
		return openai.ChatCompletionMessage{}, fmt.Errorf("failed to call chat api: %w", err)
	}
	defer stream.Close()

	final := openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant}
	var chunks [][]byte
	for {
		resp, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return openai.ChatCompletionMessage{}, fmt.Errorf("failed to read from stream: %w", err)
		}
		if len(resp.Choices) == 0 {
			continue
		}
		delta := resp.Choices[0].Delta

		if delta.Content != "" {
			final.Content += delta.Content
			if writer != nil {
				chunks = append(chunks, []byte(delta.Content))
			}
		}

		// 工具调用以增量分片到达，按 Index 聚合
		for _, tc := range delta.ToolCalls {
			idx := 0
			if tc.Index != nil {
				idx = *tc.Index
			}
			for len(final.ToolCalls) <= idx {
				final.ToolCalls = append(final.ToolCalls, openai.ToolCall{Type: openai.ToolTypeFunction})
			}
			agg := &final.ToolCalls[idx]
			if tc.ID != "" {
				agg.ID = tc.ID
			}
			if tc.Type != "" {
				agg.Type = tc.Type
			}
			agg.Function.Name += tc.Function.Name
			agg.Function.Arguments += tc.Function.Arguments
		}
	}

	// 工具调用轮的文本不属于最终回答，只有纯内容轮才下发给客户端
	if writer != nil && len(final.ToolCalls) == 0 {
		for _, chunk := range chunks {
			if err := writer.WriteMessage(websocket.TextMessage, chunk); err != nil {
				return openai.ChatCompletionMessage{}, fmt.Errorf("failed to write chunk: %w", err)
			}
		}
	}

	return final, nil
}
