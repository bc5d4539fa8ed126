package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// ErrTurnInProgress 表示同一会话已有一轮对话在处理中。
var ErrTurnInProgress = errors.New("another turn is already in progress for this thread")

// TurnLocker 用于串行化同一会话上的并发对话轮次。
type TurnLocker interface {
	Acquire(ctx context.Context, threadID string) error
	Release(ctx context.Context, threadID string)
}

type redisTurnLocker struct {
	redisClient *redis.Client
	ttl         time.Duration
}

// NewTurnLocker 创建一个基于 Redis SETNX 租约的 TurnLocker。
// TTL 兜底：进程崩溃后租约自动过期，不会永久锁死会话。
func NewTurnLocker(redisClient *redis.Client) TurnLocker {
	return &redisTurnLocker{redisClient: redisClient, ttl: 2 * time.Minute}
}

func turnKey(threadID string) string {
	return fmt.Sprintf("chat:turn:%s", threadID)
}

// Acquire 尝试获取会话的轮次租约，已被占用时返回 ErrTurnInProgress。
func (l *redisTurnLocker) Acquire(ctx context.Context, threadID string) error {
	ok, err := l.redisClient.SetNX(ctx, turnKey(threadID), 1, l.ttl).Result()
	if err != nil {
		return fmt.Errorf("failed to acquire turn lock: %w", err)
	}
	if !ok {
		return ErrTurnInProgress
	}
	return nil
}

// Release 释放会话的轮次租约。
func (l *redisTurnLocker) Release(ctx context.Context, threadID string) {
	_ = l.redisClient.Del(ctx, turnKey(threadID)).Err()
}
