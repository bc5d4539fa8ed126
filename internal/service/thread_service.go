package service

import (
	"context"

	"smart-chat-go/internal/model"
	"smart-chat-go/internal/repository"
	"smart-chat-go/pkg/log"
)

// defaultThreadName 是未命名会话的默认显示名。
const defaultThreadName = "New Chat"

// ThreadService 定义了会话生命周期的操作接口。
type ThreadService interface {
	CreateThread(name string) (*model.Thread, error)
	ListThreads() ([]model.Thread, error)
	ListMessages(threadID string) (*model.ThreadMessagesDTO, error)
	SaveMessage(threadID, role, content string) error
	// DeleteThread 删除会话及其消息，并级联清理该会话的索引文档。
	DeleteThread(ctx context.Context, threadID string) error
}

type threadService struct {
	threadRepo repository.ThreadRepository
	docService DocumentService
}

// NewThreadService 创建一个新的 ThreadService 实例。
func NewThreadService(threadRepo repository.ThreadRepository, docService DocumentService) ThreadService {
	return &threadService{
		threadRepo: threadRepo,
		docService: docService,
	}
}

func (s *threadService) CreateThread(name string) (*model.Thread, error) {
	if name == "" {
		name = defaultThreadName
	}
	return s.threadRepo.CreateThread(name)
}

func (s *threadService) ListThreads() ([]model.Thread, error) {
	return s.threadRepo.ListThreads()
}

func (s *threadService) ListMessages(threadID string) (*model.ThreadMessagesDTO, error) {
	if _, err := s.threadRepo.GetThread(threadID); err != nil {
		return nil, err
	}
	rows, err := s.threadRepo.ListMessages(threadID)
	if err != nil {
		return nil, err
	}

	messages := make([]model.MessageDTO, 0, len(rows))
	for _, row := range rows {
		messages = append(messages, model.MessageDTO{
			Role:      row.Role,
			Content:   row.Content,
			CreatedAt: row.CreatedAt,
		})
	}
	return &model.ThreadMessagesDTO{ThreadID: threadID, Messages: messages}, nil
}

func (s *threadService) SaveMessage(threadID, role, content string) error {
	return s.threadRepo.SaveMessage(threadID, role, content)
}

// DeleteThread 先清理会话的索引文档，再删除数据库记录。
// 索引清理失败只记录告警，不阻塞会话本身的删除。
func (s *threadService) DeleteThread(ctx context.Context, threadID string) error {
	if _, err := s.threadRepo.GetThread(threadID); err != nil {
		return err
	}

	if ok, msg := s.docService.DeleteThreadDocuments(ctx, threadID); !ok {
		log.Warnf("[ThreadService] 清理会话 %s 的索引文档失败: %s", threadID, msg)
	}

	return s.threadRepo.DeleteThread(threadID)
}
