package tool

import (
	"context"
	"fmt"
	"strings"

	"smart-chat-go/pkg/log"
)

// 检索条数与零命中时的固定回复。
const (
	docSearchTopK = 3

	noDocumentsFoundText = "No relevant information found in your uploaded documents."
)

// documentSearch 在当前会话的文档索引中做向量检索，
// 并将命中格式化为带来源、页码与相关度的文本块。
func (r *Registry) documentSearch(ctx context.Context, query, threadID string) string {
	if threadID == "" {
		return "Error: No thread ID found. Cannot search documents."
	}

	queryVector, err := r.embeddingClient.CreateEmbedding(ctx, query)
	if err != nil {
		log.Errorf("[ToolRegistry] document_search 向量化查询失败: %v", err)
		return fmt.Sprintf("Error searching documents: %v", err)
	}

	hits, err := r.indexStore.Search(ctx, queryVector, threadID, docSearchTopK)
	if err != nil {
		log.Errorf("[ToolRegistry] document_search 检索失败: %v", err)
		return fmt.Sprintf("Error searching documents: %v", err)
	}
	if len(hits) == 0 {
		return noDocumentsFoundText
	}

	blocks := make([]string, 0, len(hits))
	for _, hit := range hits {
		source := hit.Source
		if source == "" {
			source = "Unknown"
		}
		blocks = append(blocks, fmt.Sprintf("[Source: %s, Page: %d, Relevance: %.2f]\n%s",
			source, hit.Page, hit.Score, hit.TextContent))
	}
	return strings.Join(blocks, "\n\n---\n\n")
}
