// Package embedding provides a client for interacting with embedding models.
package embedding

import (
	"context"
	"fmt"

	"smart-chat-go/internal/config"
	"smart-chat-go/pkg/log"

	"github.com/sashabaranov/go-openai"
)

// Client defines the interface for an embedding client.
type Client interface {
	CreateEmbedding(ctx context.Context, text string) ([]float32, error)
}

type openAICompatibleClient struct {
	cfg    config.EmbeddingConfig
	client *openai.Client
}

// NewClient 基于 OpenAI 兼容端点创建 embedding 客户端。
func NewClient(cfg config.EmbeddingConfig) Client {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	return &openAICompatibleClient{
		cfg:    cfg,
		client: openai.NewClientWithConfig(clientConfig),
	}
}

// CreateEmbedding 调用 Embedding API 获取文本向量。
func (c *openAICompatibleClient) CreateEmbedding(ctx context.Context, text string) ([]float32, error) {
	req := openai.EmbeddingRequest{
		Model: openai.EmbeddingModel(c.cfg.Model),
		Input: []string{text},
	}
	if c.cfg.Dimensions > 0 {
		req.Dimensions = c.cfg.Dimensions
	}

	resp, err := c.client.CreateEmbeddings(ctx, req)
	if err != nil {
		log.Errorf("[EmbeddingClient] 调用 Embedding API 失败, error: %v", err)
		return nil, fmt.Errorf("failed to call embedding api: %w", err)
	}
	if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
		log.Warnf("[EmbeddingClient] Embedding API 返回了空的向量数据")
		return nil, fmt.Errorf("received empty embedding from api")
	}
	return resp.Data[0].Embedding, nil
}
