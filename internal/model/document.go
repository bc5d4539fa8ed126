package model

import "fmt"

// ChunkDocument 代表存储在 Elasticsearch 中的文档分块。
// 文档 _id 为 threadID_fileName_chunkIndex。
type ChunkDocument struct {
	ThreadID    string    `json:"thread_id"`
	Source      string    `json:"source"` // 原始文件名
	ChunkIndex  int       `json:"chunk_index"`
	Page        int       `json:"page"`
	TextContent string    `json:"text_content"`
	Vector      []float32 `json:"vector"`
}

// ChunkID 按 threadID_fileName_chunkIndex 规则生成文档唯一标识。
func (d ChunkDocument) ChunkID() string {
	return fmt.Sprintf("%s_%s_%d", d.ThreadID, d.Source, d.ChunkIndex)
}

// SearchHit 是向量检索返回的单条命中。
type SearchHit struct {
	TextContent string  `json:"text_content"`
	Source      string  `json:"source"`
	Page        int     `json:"page"`
	Score       float64 `json:"score"`
}

// UploadResult 是单个上传文件的处理结果。
type UploadResult struct {
	Filename string `json:"filename"`
	Success  bool   `json:"success"`
	Message  string `json:"message"`
}
