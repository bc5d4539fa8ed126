// Package handler 包含了处理 HTTP 请求的控制器逻辑。
package handler

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"smart-chat-go/internal/model"
	"smart-chat-go/internal/repository"
	"smart-chat-go/internal/service"
	"smart-chat-go/pkg/log"

	"github.com/gin-gonic/gin"
)

// DocumentHandler 负责处理会话文档的上传、删除与列表请求。
type DocumentHandler struct {
	docService    service.DocumentService
	threadService service.ThreadService
}

// NewDocumentHandler 创建一个新的 DocumentHandler 实例。
func NewDocumentHandler(docService service.DocumentService, threadService service.ThreadService) *DocumentHandler {
	return &DocumentHandler{
		docService:    docService,
		threadService: threadService,
	}
}

// Upload 处理 multipart 文档上传请求。
// 每个文件独立处理：单个文件失败不影响其余文件，
// 响应里逐文件给出结果。全部失败时返回 400。
func (h *DocumentHandler) Upload(c *gin.Context) {
	threadID := c.PostForm("thread_id")
	if threadID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "thread_id is required"})
		return
	}

	if _, err := h.threadService.ListMessages(threadID); err != nil {
		if errors.Is(err, repository.ErrThreadNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "thread not found"})
			return
		}
		log.Error("Upload: failed to verify thread", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid multipart form"})
		return
	}
	files := form.File["files"]
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no files provided"})
		return
	}

	results := make([]model.UploadResult, 0, len(files))
	succeeded := 0
	for _, fh := range files {
		result := h.processFile(c, fh, threadID)
		if result.Success {
			succeeded++
		}
		results = append(results, result)
	}
	failed := len(files) - succeeded

	// 成功入库后留一条助手确认消息，让会话历史可见这次上传
	if succeeded > 0 {
		names := make([]string, 0, succeeded)
		for _, r := range results {
			if r.Success {
				names = append(names, r.Filename)
			}
		}
		confirmation := fmt.Sprintf("I have processed your document(s): %s. You can now ask me questions about them.", strings.Join(names, ", "))
		if err := h.threadService.SaveMessage(threadID, model.RoleAssistant, confirmation); err != nil {
			log.Warnf("[DocumentHandler] 写入上传确认消息失败, thread: %s, error: %v", threadID, err)
		}
	}

	status := http.StatusOK
	if succeeded == 0 {
		status = http.StatusBadRequest
	}
	c.JSON(status, gin.H{
		"success":         succeeded > 0,
		"message":         fmt.Sprintf("Processed %d files successfully, %d failed", succeeded, failed),
		"results":         results,
		"thread_id":       threadID,
		"total_processed": succeeded,
	})
}

// processFile 处理单个上传文件，返回逐文件结果。
func (h *DocumentHandler) processFile(c *gin.Context, fh *multipart.FileHeader, threadID string) model.UploadResult {
	filename := fh.Filename
	if !strings.HasSuffix(strings.ToLower(filename), ".pdf") {
		return model.UploadResult{Filename: filename, Success: false, Message: "Only PDF files are supported"}
	}

	file, err := fh.Open()
	if err != nil {
		log.Errorf("[DocumentHandler] 打开上传文件失败, file: %s, error: %v", filename, err)
		return model.UploadResult{Filename: filename, Success: false, Message: "failed to read uploaded file"}
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		log.Errorf("[DocumentHandler] 读取上传文件失败, file: %s, error: %v", filename, err)
		return model.UploadResult{Filename: filename, Success: false, Message: "failed to read uploaded file"}
	}

	ok, msg := h.docService.Ingest(c.Request.Context(), data, filename, threadID)
	return model.UploadResult{Filename: filename, Success: ok, Message: msg}
}

// DeleteByThread 处理删除某会话全部文档的请求。
func (h *DocumentHandler) DeleteByThread(c *gin.Context) {
	threadID := c.Param("id")

	ok, msg := h.docService.DeleteThreadDocuments(c.Request.Context(), threadID)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"message":   msg,
		"thread_id": threadID,
	})
}

// List 处理查询某会话已上传文档列表的请求。
func (h *DocumentHandler) List(c *gin.Context) {
	threadID := c.Query("thread_id")
	if threadID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "thread_id is required"})
		return
	}

	names, err := h.docService.ListDocuments(c.Request.Context(), threadID)
	if err != nil {
		log.Error("List: failed to list documents", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list documents"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"thread_id": threadID,
		"documents": names,
	})
}
