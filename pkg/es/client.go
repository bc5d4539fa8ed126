// Package es 提供了与 Elasticsearch 向量索引交互的客户端功能。
package es

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"smart-chat-go/internal/config"
	"smart-chat-go/internal/model"
	"smart-chat-go/pkg/log"

	"github.com/elastic/go-elasticsearch/v8"
)

// Store 定义了向量索引的操作接口，便于在测试中用假实现替换。
type Store interface {
	// BulkUpsert 批量写入（或覆盖）文档分块。
	BulkUpsert(ctx context.Context, docs []model.ChunkDocument) error
	// Search 在指定会话范围内做 kNN 检索，按相关度降序返回至多 k 条。
	Search(ctx context.Context, vector []float32, threadID string, k int) ([]model.SearchHit, error)
	// DeleteByThread 删除会话的全部分块，返回删除数量。找不到任何分块不算错误。
	DeleteByThread(ctx context.Context, threadID string) (int, error)
}

// Client 是基于 go-elasticsearch 的 Store 实现。
type Client struct {
	es        *elasticsearch.Client
	indexName string
}

// NewClient 初始化 Elasticsearch 客户端，并确保索引存在。
// dims 为向量维度，必须与 embedding 模型输出一致。
func NewClient(cfg config.ElasticsearchConfig, dims int) (*Client, error) {
	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{cfg.Addresses},
		Username:  cfg.Username,
		Password:  cfg.Password,
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		},
	})
	if err != nil {
		return nil, err
	}
	c := &Client{es: es, indexName: cfg.IndexName}
	if err := c.createIndexIfNotExists(dims); err != nil {
		return nil, err
	}
	return c, nil
}

// createIndexIfNotExists 检查索引是否存在，如果不存在则创建它。
func (c *Client) createIndexIfNotExists(dims int) error {
	res, err := c.es.Indices.Exists([]string{c.indexName})
	if err != nil {
		return err
	}
	if !res.IsError() && res.StatusCode == http.StatusOK {
		log.Infof("索引 '%s' 已存在", c.indexName)
		return nil
	}
	if res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("检查索引是否存在时收到意外的状态码: %d", res.StatusCode)
	}

	mapping := fmt.Sprintf(`{
		"mappings": {
			"properties": {
				"thread_id":    { "type": "keyword" },
				"source":       { "type": "keyword" },
				"chunk_index":  { "type": "integer" },
				"page":         { "type": "integer" },
				"text_content": { "type": "text" },
				"vector": {
					"type": "dense_vector",
					"dims": %d,
					"index": true,
					"similarity": "cosine"
				}
			}
		}
	}`, dims)

	res, err = c.es.Indices.Create(
		c.indexName,
		c.es.Indices.Create.WithBody(strings.NewReader(mapping)),
	)
	if err != nil {
		return err
	}
	if res.IsError() {
		return fmt.Errorf("创建索引时 Elasticsearch 返回错误: %s", res.String())
	}
	log.Infof("索引 '%s' 创建成功", c.indexName)
	return nil
}

// BulkUpsert 通过 _bulk API 批量写入分块，文档 ID 为 threadID_fileName_chunkIndex。
func (c *Client) BulkUpsert(ctx context.Context, docs []model.ChunkDocument) error {
	if len(docs) == 0 {
		return nil
	}

	var buf bytes.Buffer
	for _, doc := range docs {
		action := map[string]interface{}{
			"index": map[string]interface{}{"_id": doc.ChunkID()},
		}
		if err := json.NewEncoder(&buf).Encode(action); err != nil {
			return err
		}
		if err := json.NewEncoder(&buf).Encode(doc); err != nil {
			return err
		}
	}

	res, err := c.es.Bulk(
		bytes.NewReader(buf.Bytes()),
		c.es.Bulk.WithContext(ctx),
		c.es.Bulk.WithIndex(c.indexName),
		c.es.Bulk.WithRefresh("true"),
	)
	if err != nil {
		return fmt.Errorf("bulk index failed: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("bulk index returned an error: %s", res.String())
	}

	var bulkResp struct {
		Errors bool `json:"errors"`
	}
	if err := json.NewDecoder(res.Body).Decode(&bulkResp); err != nil {
		return fmt.Errorf("failed to decode bulk response: %w", err)
	}
	if bulkResp.Errors {
		return errors.New("bulk index reported item-level errors")
	}
	return nil
}

// Search 执行带 thread_id 过滤的 kNN 检索。
func (c *Client) Search(ctx context.Context, vector []float32, threadID string, k int) ([]model.SearchHit, error) {
	esQuery := map[string]interface{}{
		"knn": map[string]interface{}{
			"field":          "vector",
			"query_vector":   vector,
			"k":              k,
			"num_candidates": k * 10,
			"filter": map[string]interface{}{
				"term": map[string]interface{}{"thread_id": threadID},
			},
		},
		"size": k,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(esQuery); err != nil {
		return nil, fmt.Errorf("failed to encode es query: %w", err)
	}

	res, err := c.es.Search(
		c.es.Search.WithContext(ctx),
		c.es.Search.WithIndex(c.indexName),
		c.es.Search.WithBody(&buf),
	)
	if err != nil {
		return nil, fmt.Errorf("elasticsearch search failed: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("elasticsearch returned an error: %s", res.String())
	}

	var esResponse struct {
		Hits struct {
			Hits []struct {
				Source model.ChunkDocument `json:"_source"`
				Score  float64             `json:"_score"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&esResponse); err != nil {
		return nil, fmt.Errorf("failed to decode es response: %w", err)
	}

	hits := make([]model.SearchHit, 0, len(esResponse.Hits.Hits))
	for _, hit := range esResponse.Hits.Hits {
		if hit.Source.TextContent == "" {
			continue
		}
		hits = append(hits, model.SearchHit{
			TextContent: hit.Source.TextContent,
			Source:      hit.Source.Source,
			Page:        hit.Source.Page,
			Score:       hit.Score,
		})
	}
	return hits, nil
}

// DeleteByThread 先枚举会话的全部分块 ID，再批量删除。
func (c *Client) DeleteByThread(ctx context.Context, threadID string) (int, error) {
	esQuery := map[string]interface{}{
		"query": map[string]interface{}{
			"term": map[string]interface{}{"thread_id": threadID},
		},
		"size":    10000,
		"_source": false,
	}
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(esQuery); err != nil {
		return 0, fmt.Errorf("failed to encode es query: %w", err)
	}

	res, err := c.es.Search(
		c.es.Search.WithContext(ctx),
		c.es.Search.WithIndex(c.indexName),
		c.es.Search.WithBody(&buf),
	)
	if err != nil {
		return 0, fmt.Errorf("elasticsearch search failed: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return 0, fmt.Errorf("elasticsearch returned an error: %s", res.String())
	}

	var esResponse struct {
		Hits struct {
			Hits []struct {
				ID string `json:"_id"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&esResponse); err != nil {
		return 0, fmt.Errorf("failed to decode es response: %w", err)
	}
	if len(esResponse.Hits.Hits) == 0 {
		return 0, nil
	}

	var delBuf bytes.Buffer
	for _, hit := range esResponse.Hits.Hits {
		action := map[string]interface{}{
			"delete": map[string]interface{}{"_id": hit.ID},
		}
		if err := json.NewEncoder(&delBuf).Encode(action); err != nil {
			return 0, err
		}
	}

	delRes, err := c.es.Bulk(
		bytes.NewReader(delBuf.Bytes()),
		c.es.Bulk.WithContext(ctx),
		c.es.Bulk.WithIndex(c.indexName),
		c.es.Bulk.WithRefresh("true"),
	)
	if err != nil {
		return 0, fmt.Errorf("bulk delete failed: %w", err)
	}
	defer delRes.Body.Close()
	if delRes.IsError() {
		return 0, fmt.Errorf("bulk delete returned an error: %s", delRes.String())
	}

	log.Infof("[ES] 已删除会话 %s 的 %d 个分块", threadID, len(esResponse.Hits.Hits))
	return len(esResponse.Hits.Hits), nil
}
