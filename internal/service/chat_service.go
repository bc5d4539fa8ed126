package service

import (
	"context"
	"errors"
	"fmt"

	"smart-chat-go/internal/model"
	"smart-chat-go/internal/repository"
	"smart-chat-go/internal/tool"
	"smart-chat-go/pkg/llm"
	"smart-chat-go/pkg/log"

	"github.com/sashabaranov/go-openai"
)

const (
	// 每轮对话最多允许的 agent/tool 往返次数。
	// 超过后最后一次调用不再携带工具定义，强制模型直接作答。
	maxToolRounds = 5

	// 模型上下文里保留的最近消息条数，加上 system 指令共 31 条。
	historyWindow = 30
)

// ErrEmptyMessage 表示用户消息为空。
var ErrEmptyMessage = errors.New("message must not be empty")

// ChatService 定义了对话轮次的编排接口。
type ChatService interface {
	// SendMessage 处理一轮对话：加载历史、运行 agent 循环（可能多次调用工具）、
	// 通过 writer 增量下发最终回答，并在完整生成后持久化本轮的用户与助手消息。
	// writer 可为 nil（缓冲模式），完整回答始终由返回值给出。
	// 生成中途失败时不持久化任何消息。
	SendMessage(ctx context.Context, threadID, userMessage string, writer llm.MessageWriter) (string, error)
}

// ToolExecutor 是 chat 编排器需要的工具集能力。*tool.Registry 实现了它。
type ToolExecutor interface {
	Definitions() []openai.Tool
	Execute(ctx context.Context, tctx tool.Context, name string, rawArgs []byte) string
}

type chatService struct {
	threadRepo repository.ThreadRepository
	turnLocker repository.TurnLocker
	llmClient  llm.Client
	registry   ToolExecutor
}

// NewChatService 创建一个新的 ChatService 实例。
func NewChatService(threadRepo repository.ThreadRepository, turnLocker repository.TurnLocker, llmClient llm.Client, registry ToolExecutor) ChatService {
	return &chatService{
		threadRepo: threadRepo,
		turnLocker: turnLocker,
		llmClient:  llmClient,
		registry:   registry,
	}
}

// SendMessage 实现一轮对话的两态状态机：Agent（决定下一步）与 Tool（执行能力）。
func (s *chatService) SendMessage(ctx context.Context, threadID, userMessage string, writer llm.MessageWriter) (string, error) {
	if userMessage == "" {
		return "", ErrEmptyMessage
	}
	if _, err := s.threadRepo.GetThread(threadID); err != nil {
		return "", err
	}

	// 同一会话同时只允许一轮在处理，避免消息日志交错
	if err := s.turnLocker.Acquire(ctx, threadID); err != nil {
		return "", err
	}
	defer s.turnLocker.Release(context.Background(), threadID)

	history, err := s.threadRepo.ListMessages(threadID)
	if err != nil {
		return "", fmt.Errorf("failed to load thread history: %w", err)
	}

	msgs := composeContext(history, userMessage)
	toolDefs := s.registry.Definitions()

	var answer string
	for round := 0; ; round++ {
		defs := toolDefs
		if round >= maxToolRounds {
			log.Warnf("[ChatService] 会话 %s 达到工具调用上限 (%d), 强制直接作答", threadID, maxToolRounds)
			defs = nil
		}

		resp, err := s.llmClient.StreamChatMessages(ctx, msgs, defs, writer)
		if err != nil {
			return "", fmt.Errorf("chat completion failed: %w", err)
		}

		if len(resp.ToolCalls) == 0 {
			answer = resp.Content
			break
		}

		// Tool 状态：执行模型请求的每个工具，把文本结果折回上下文
		msgs = append(msgs, resp)
		for _, tc := range resp.ToolCalls {
			result := s.registry.Execute(ctx, tool.Context{ThreadID: threadID}, tc.Function.Name, []byte(tc.Function.Arguments))
			log.Infof("[ChatService] 工具 '%s' 返回 %d 字符", tc.Function.Name, len(result))
			msgs = append(msgs, openai.ChatCompletionMessage{
				Role:       openai.ChatMessageRoleTool,
				ToolCallID: tc.ID,
				Content:    result,
			})
		}
	}

	// 生成已完整结束，此后才允许落盘本轮消息
	if err := s.threadRepo.SaveMessage(threadID, model.RoleUser, userMessage); err != nil {
		return "", fmt.Errorf("failed to save user message: %w", err)
	}
	if err := s.threadRepo.SaveMessage(threadID, model.RoleAssistant, answer); err != nil {
		return "", fmt.Errorf("failed to save assistant message: %w", err)
	}

	return answer, nil
}

// composeContext 把会话历史加新用户消息组装为模型输入。
// 作为纯变换在每轮生成独立快照：前置 system 指令；
// 总条数超过上限时保留 system 指令加最近 historyWindow 条。
func composeContext(history []model.Message, userMessage string) []openai.ChatCompletionMessage {
	// 数据库只落盘 user/assistant，system 指令总是在这里补上
	tail := make([]openai.ChatCompletionMessage, 0, len(history)+1)
	for _, row := range history {
		role := openai.ChatMessageRoleAssistant
		if row.Role == model.RoleUser {
			role = openai.ChatMessageRoleUser
		}
		tail = append(tail, openai.ChatCompletionMessage{Role: role, Content: row.Content})
	}
	tail = append(tail, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: userMessage,
	})

	if len(tail) > historyWindow {
		tail = tail[len(tail)-historyWindow:]
	}

	msgs := make([]openai.ChatCompletionMessage, 0, len(tail)+1)
	msgs = append(msgs, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: systemDirective,
	})
	return append(msgs, tail...)
}
