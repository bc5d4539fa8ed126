// Package service 包含了应用的业务逻辑层。
package service

import (
	"bytes"
	"context"
	"fmt"

	"smart-chat-go/internal/model"
	"smart-chat-go/pkg/embedding"
	"smart-chat-go/pkg/es"
	"smart-chat-go/pkg/log"
	"smart-chat-go/pkg/storage"
	"smart-chat-go/pkg/tika"
)

const (
	chunkSize       = 1000
	chunkOverlap    = 200
	upsertBatchSize = 100
)

// DocumentService 定义了会话文档的写入、删除与查询操作。
// Ingest 与 DeleteThreadDocuments 不向调用方抛原始异常，
// 统一降级为 (ok, message)。
type DocumentService interface {
	Ingest(ctx context.Context, data []byte, filename, threadID string) (bool, string)
	DeleteThreadDocuments(ctx context.Context, threadID string) (bool, string)
	ListDocuments(ctx context.Context, threadID string) ([]string, error)
}

type documentService struct {
	extractor       tika.Extractor
	embeddingClient embedding.Client
	indexStore      es.Store
	objectStore     storage.ObjectStore
}

// NewDocumentService 创建一个新的 DocumentService 实例。
func NewDocumentService(extractor tika.Extractor, embeddingClient embedding.Client, indexStore es.Store, objectStore storage.ObjectStore) DocumentService {
	return &documentService{
		extractor:       extractor,
		embeddingClient: embeddingClient,
		indexStore:      indexStore,
		objectStore:     objectStore,
	}
}

// Ingest 处理一个上传文件：提取文本、分块、向量化并批量写入索引，
// 同时把原件留存到对象存储以供列表查询。
func (s *documentService) Ingest(ctx context.Context, data []byte, filename, threadID string) (bool, string) {
	log.Infof("[DocumentService] 开始处理文件 '%s', thread: %s, size: %d 字节", filename, threadID, len(data))

	// 1. 提取按页切分的文本
	pages, err := s.extractor.ExtractPages(ctx, bytes.NewReader(data), filename)
	if err != nil {
		log.Errorf("[DocumentService] 提取文本失败, file: %s, error: %v", filename, err)
		return false, fmt.Sprintf("failed to extract text from %s: %v", filename, err)
	}
	if len(pages) == 0 {
		log.Warnf("[DocumentService] 文件 '%s' 未提取到任何文本", filename)
		return false, fmt.Sprintf("no text content extracted from %s", filename)
	}

	// 2. 逐页分块。分块不跨页，page 记录来源页码（从 1 开始）。
	var docs []model.ChunkDocument
	chunkIndex := 0
	for pageNo, pageText := range pages {
		for _, chunk := range splitText(pageText, chunkSize, chunkOverlap) {
			docs = append(docs, model.ChunkDocument{
				ThreadID:    threadID,
				Source:      filename,
				ChunkIndex:  chunkIndex,
				Page:        pageNo + 1,
				TextContent: chunk,
			})
			chunkIndex++
		}
	}
	if len(docs) == 0 {
		return false, fmt.Sprintf("no text content extracted from %s", filename)
	}
	log.Infof("[DocumentService] 文本分块完成, 共 %d 个分块", len(docs))

	// 3. 逐块向量化
	for i := range docs {
		vector, err := s.embeddingClient.CreateEmbedding(ctx, docs[i].TextContent)
		if err != nil {
			log.Errorf("[DocumentService] 分块 %d 向量化失败: %v", docs[i].ChunkIndex, err)
			return false, fmt.Sprintf("failed to embed chunk %d of %s: %v", docs[i].ChunkIndex, filename, err)
		}
		docs[i].Vector = vector
	}

	// 4. 按批写入索引
	for i := 0; i < len(docs); i += upsertBatchSize {
		end := i + upsertBatchSize
		if end > len(docs) {
			end = len(docs)
		}
		if err := s.indexStore.BulkUpsert(ctx, docs[i:end]); err != nil {
			log.Errorf("[DocumentService] 批量写入索引失败 [%d:%d]: %v", i, end, err)
			return false, fmt.Sprintf("failed to index %s: %v", filename, err)
		}
	}

	// 5. 留存原件。索引已成功，这里失败只降级为告警。
	if err := s.objectStore.Put(ctx, objectName(threadID, filename), data, "application/pdf"); err != nil {
		log.Warnf("[DocumentService] 留存原件失败, file: %s, error: %v", filename, err)
	}

	log.Infof("[DocumentService] 文件 '%s' 处理完成, 写入 %d 个分块", filename, len(docs))
	return true, fmt.Sprintf("Successfully indexed %d chunks from %s", len(docs), filename)
}

// DeleteThreadDocuments 删除会话的全部索引分块与留存原件。
// 没有任何分块可删不算失败。
func (s *documentService) DeleteThreadDocuments(ctx context.Context, threadID string) (bool, string) {
	count, err := s.indexStore.DeleteByThread(ctx, threadID)
	if err != nil {
		log.Errorf("[DocumentService] 删除会话分块失败, thread: %s, error: %v", threadID, err)
		return false, fmt.Sprintf("failed to delete documents: %v", err)
	}

	if removed, err := s.objectStore.RemoveAll(ctx, threadID+"/"); err != nil {
		log.Warnf("[DocumentService] 删除留存原件失败, thread: %s, error: %v", threadID, err)
	} else if removed > 0 {
		log.Infof("[DocumentService] 已删除 %d 个留存原件, thread: %s", removed, threadID)
	}

	if count == 0 {
		return true, "No documents found for this thread"
	}
	return true, fmt.Sprintf("Deleted %d document chunks", count)
}

// ListDocuments 返回会话已留存的原件文件名。
func (s *documentService) ListDocuments(ctx context.Context, threadID string) ([]string, error) {
	return s.objectStore.List(ctx, threadID+"/")
}

func objectName(threadID, filename string) string {
	return threadID + "/" + filename
}
