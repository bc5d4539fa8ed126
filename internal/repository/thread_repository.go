// Package repository 提供了数据访问层的实现。
package repository

import (
	"errors"
	"time"

	"smart-chat-go/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrThreadNotFound 表示引用的会话不存在。
var ErrThreadNotFound = errors.New("thread not found")

// ThreadRepository 定义了会话与消息的数据操作接口。
type ThreadRepository interface {
	CreateThread(name string) (*model.Thread, error)
	GetThread(threadID string) (*model.Thread, error)
	ListThreads() ([]model.Thread, error)
	DeleteThread(threadID string) error
	SaveMessage(threadID, role, content string) error
	ListMessages(threadID string) ([]model.Message, error)
}

type threadRepository struct {
	db *gorm.DB
}

// NewThreadRepository 创建一个新的 ThreadRepository 实例，并自动建表。
func NewThreadRepository(db *gorm.DB) (ThreadRepository, error) {
	if err := db.AutoMigrate(&model.Thread{}, &model.Message{}); err != nil {
		return nil, err
	}
	return &threadRepository{db: db}, nil
}

// CreateThread 生成新的唯一标识并落盘一条会话记录。
func (r *threadRepository) CreateThread(name string) (*model.Thread, error) {
	thread := &model.Thread{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: time.Now(),
	}
	if err := r.db.Create(thread).Error; err != nil {
		return nil, err
	}
	return thread, nil
}

// GetThread 按 ID 查询会话，不存在时返回 ErrThreadNotFound。
func (r *threadRepository) GetThread(threadID string) (*model.Thread, error) {
	var thread model.Thread
	err := r.db.Where("id = ?", threadID).First(&thread).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrThreadNotFound
	}
	if err != nil {
		return nil, err
	}
	return &thread, nil
}

// ListThreads 返回全部会话，按创建时间倒序。
func (r *threadRepository) ListThreads() ([]model.Thread, error) {
	var threads []model.Thread
	err := r.db.Order("created_at DESC").Find(&threads).Error
	return threads, err
}

// DeleteThread 在一个事务中删除会话及其全部消息。
func (r *threadRepository) DeleteThread(threadID string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ?", threadID).Delete(&model.Thread{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrThreadNotFound
		}
		return tx.Where("thread_id = ?", threadID).Delete(&model.Message{}).Error
	})
}

// SaveMessage 追加一条消息。先校验会话存在，保证引用完整性。
func (r *threadRepository) SaveMessage(threadID, role, content string) error {
	var count int64
	if err := r.db.Model(&model.Thread{}).Where("id = ?", threadID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrThreadNotFound
	}
	msg := &model.Message{
		ThreadID:  threadID,
		Role:      role,
		Content:   content,
		CreatedAt: time.Now(),
	}
	return r.db.Create(msg).Error
}

// ListMessages 按创建时间升序返回会话的全部消息，时间相同时按自增 ID。
func (r *threadRepository) ListMessages(threadID string) ([]model.Message, error) {
	var messages []model.Message
	err := r.db.Where("thread_id = ?", threadID).
		Order("created_at ASC, id ASC").
		Find(&messages).Error
	return messages, err
}
