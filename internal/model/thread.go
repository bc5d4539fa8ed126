// Package model 包含了应用的数据模型定义。
package model

import "time"

// Thread 对应于数据库中的 threads 表，代表一个会话。
// 创建后除删除外不再变更。
type Thread struct {
	ID        string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(255);not null" json:"name"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Thread) TableName() string {
	return "threads"
}

// 消息角色。数据库中只落盘 user / assistant 两种。
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message 对应于数据库中的 messages 表，属于唯一一个 Thread。
// 自增 ID 兼作同一时间戳内的次序。
type Message struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	ThreadID  string    `gorm:"type:varchar(36);not null;index" json:"thread_id"`
	Role      string    `gorm:"type:varchar(16);not null" json:"role"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Message) TableName() string {
	return "messages"
}

// ThreadMessagesDTO 定义了 GET /thread/:id/messages 的响应结构。
type ThreadMessagesDTO struct {
	ThreadID string       `json:"thread_id"`
	Messages []MessageDTO `json:"messages"`
}

// MessageDTO 是返回给前端的单条消息。
type MessageDTO struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}
