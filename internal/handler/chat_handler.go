// Package handler 包含了处理 HTTP 请求的控制器逻辑。
package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"smart-chat-go/internal/repository"
	"smart-chat-go/internal/service"
	"smart-chat-go/pkg/log"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // 允许所有来源
	},
}

// ChatHandler 负责处理对话请求：同步 HTTP 模式与 WebSocket 流式模式。
type ChatHandler struct {
	chatService service.ChatService
}

// NewChatHandler 创建一个新的 ChatHandler。
func NewChatHandler(chatService service.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

// SendRequest 定义了同步对话 API 的请求体结构。
type SendRequest struct {
	Message  string `json:"message" binding:"required"`
	ThreadID string `json:"thread_id" binding:"required"`
}

// Send 处理一轮同步对话：阻塞到回答完整生成后一次性返回。
func (h *ChatHandler) Send(c *gin.Context) {
	var req SendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message and thread_id are required"})
		return
	}

	reply, err := h.chatService.SendMessage(c.Request.Context(), req.ThreadID, req.Message, nil)
	if err != nil {
		writeChatError(c, req.ThreadID, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"reply":     reply,
		"thread_id": req.ThreadID,
	})
}

func writeChatError(c *gin.Context, threadID string, err error) {
	switch {
	case errors.Is(err, repository.ErrThreadNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "thread not found"})
	case errors.Is(err, repository.ErrTurnInProgress):
		c.JSON(http.StatusConflict, gin.H{"error": "another message is being processed for this thread"})
	case errors.Is(err, service.ErrEmptyMessage):
		c.JSON(http.StatusBadRequest, gin.H{"error": "message must not be empty"})
	default:
		log.Errorf("[ChatHandler] 会话 %s 处理失败: %v", threadID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "chat service temporarily unavailable"})
	}
}

// wsChunkWriter 把模型的增量片段包装成 {"chunk": ...} 帧发给客户端。
type wsChunkWriter struct {
	conn *websocket.Conn
}

func (w *wsChunkWriter) WriteMessage(messageType int, data []byte) error {
	frame, err := json.Marshal(gin.H{"chunk": string(data)})
	if err != nil {
		return err
	}
	return w.conn.WriteMessage(websocket.TextMessage, frame)
}

// HandleWS 处理一个 WebSocket 流式对话连接。
// 客户端每发一条纯文本消息即开启一轮对话，回答以 {"chunk": ...}
// 增量下发，结束后追加一条 completion 通知帧。
func (h *ChatHandler) HandleWS(c *gin.Context) {
	threadID := c.Query("thread_id")
	if threadID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "thread_id is required"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error("WebSocket 升级失败", err)
		return
	}
	defer conn.Close()

	log.Infof("[ChatHandler] WebSocket 连接已建立, thread: %s", threadID)
	writer := &wsChunkWriter{conn: conn}

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			log.Warnf("[ChatHandler] 从 WebSocket 读取消息失败: %v", err)
			break
		}

		if _, err := h.chatService.SendMessage(c.Request.Context(), threadID, string(message), writer); err != nil {
			log.Errorf("[ChatHandler] 会话 %s 流式处理失败: %v", threadID, err)
			b, _ := json.Marshal(gin.H{"error": chatErrorText(err)})
			_ = conn.WriteMessage(websocket.TextMessage, b)
		}

		// 无论成败都发送 completion 通知，客户端以此结束本轮渲染
		done, _ := json.Marshal(gin.H{
			"type":      "completion",
			"status":    "finished",
			"timestamp": time.Now().UnixMilli(),
		})
		if err := conn.WriteMessage(websocket.TextMessage, done); err != nil {
			break
		}
	}
}

func chatErrorText(err error) string {
	switch {
	case errors.Is(err, repository.ErrThreadNotFound):
		return "thread not found"
	case errors.Is(err, repository.ErrTurnInProgress):
		return "another message is being processed for this thread"
	case errors.Is(err, service.ErrEmptyMessage):
		return "message must not be empty"
	default:
		return "chat service temporarily unavailable"
	}
}
