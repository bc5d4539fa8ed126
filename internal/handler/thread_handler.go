// Package handler 包含了处理 HTTP 请求的控制器逻辑。
package handler

import (
	"errors"
	"net/http"

	"smart-chat-go/internal/repository"
	"smart-chat-go/internal/service"
	"smart-chat-go/pkg/log"

	"github.com/gin-gonic/gin"
)

// ThreadHandler 处理与会话生命周期相关的 API 请求。
type ThreadHandler struct {
	threadService service.ThreadService
}

// NewThreadHandler 创建一个新的 ThreadHandler。
func NewThreadHandler(threadService service.ThreadService) *ThreadHandler {
	return &ThreadHandler{threadService: threadService}
}

// CreateThreadRequest 定义了创建会话 API 的请求体结构。
type CreateThreadRequest struct {
	Name string `json:"name"`
}

// Create 处理创建新会话的请求。name 缺省时使用默认名。
func (h *ThreadHandler) Create(c *gin.Context) {
	var req CreateThreadRequest
	// body 可为空，忽略绑定错误
	_ = c.ShouldBindJSON(&req)

	thread, err := h.threadService.CreateThread(req.Name)
	if err != nil {
		log.Error("Create: failed to create thread", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create thread"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"thread_id": thread.ID,
		"name":      thread.Name,
	})
}

// List 处理获取全部会话列表的请求，按创建时间倒序。
func (h *ThreadHandler) List(c *gin.Context) {
	threads, err := h.threadService.ListThreads()
	if err != nil {
		log.Error("List: failed to list threads", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list threads"})
		return
	}
	c.JSON(http.StatusOK, threads)
}

// Messages 处理获取单个会话全部消息的请求，按时间正序。
func (h *ThreadHandler) Messages(c *gin.Context) {
	threadID := c.Param("id")

	history, err := h.threadService.ListMessages(threadID)
	if err != nil {
		if errors.Is(err, repository.ErrThreadNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "thread not found"})
			return
		}
		log.Error("Messages: failed to list messages", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to retrieve messages"})
		return
	}

	c.JSON(http.StatusOK, history)
}

// Delete 处理删除会话的请求：级联删除消息与该会话的索引文档。
func (h *ThreadHandler) Delete(c *gin.Context) {
	threadID := c.Param("id")

	if err := h.threadService.DeleteThread(c.Request.Context(), threadID); err != nil {
		if errors.Is(err, repository.ErrThreadNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "thread not found"})
			return
		}
		log.Error("Delete: failed to delete thread", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete thread"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   "thread deleted",
		"thread_id": threadID,
	})
}
