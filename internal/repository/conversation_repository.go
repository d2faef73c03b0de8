// Package repository 提供了数据访问层的实现。
package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"ragbot-go/internal/model"
)

// 每个对话保留的最近消息条数上限。
const maxHistoryMessages = 50

// ConversationRepository 定义了对话历史记录的操作接口。
// 对话历史是易失性缓存，不属于核心持久化表。
type ConversationRepository interface {
	AppendExchange(ctx context.Context, chatbotID, userID uint, question string, answer string, sources []string) error
	GetHistory(ctx context.Context, chatbotID, userID uint) ([]model.ChatMessage, error)
	DeleteByChatbotID(ctx context.Context, chatbotID uint) error
}

type redisConversationRepository struct {
	redisClient *redis.Client
}

// NewConversationRepository 创建一个新的 ConversationRepository 实例。
func NewConversationRepository(redisClient *redis.Client) ConversationRepository {
	return &redisConversationRepository{redisClient: redisClient}
}

func conversationKey(chatbotID, userID uint) string {
	return fmt.Sprintf("chatbot:%d:conversation:%d", chatbotID, userID)
}

// AppendExchange 向对话历史追加一轮问答。
func (r *redisConversationRepository) AppendExchange(ctx context.Context, chatbotID, userID uint, question string, answer string, sources []string) error {
	messages, err := r.GetHistory(ctx, chatbotID, userID)
	if err != nil {
		return err
	}

	now := time.Now()
	messages = append(messages,
		model.ChatMessage{Role: "user", Content: question, Timestamp: now},
		model.ChatMessage{Role: "bot", Content: answer, Sources: sources, Timestamp: now},
	)

	// 保留最近 N 条
	if len(messages) > maxHistoryMessages {
		messages = messages[len(messages)-maxHistoryMessages:]
	}

	jsonData, err := json.Marshal(messages)
	if err != nil {
		return fmt.Errorf("failed to marshal conversation history: %w", err)
	}
	key := conversationKey(chatbotID, userID)
	if err := r.redisClient.Set(ctx, key, jsonData, 7*24*time.Hour).Err(); err != nil {
		return fmt.Errorf("failed to set conversation history: %w", err)
	}
	return nil
}

// GetHistory 从 Redis 获取对话历史记录。
func (r *redisConversationRepository) GetHistory(ctx context.Context, chatbotID, userID uint) ([]model.ChatMessage, error) {
	key := conversationKey(chatbotID, userID)
	jsonData, err := r.redisClient.Get(ctx, key).Result()
	if err == redis.Nil {
		return []model.ChatMessage{}, nil // 还没有历史
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get conversation history: %w", err)
	}
	var messages []model.ChatMessage
	if err := json.Unmarshal([]byte(jsonData), &messages); err != nil {
		return nil, fmt.Errorf("failed to unmarshal conversation history: %w", err)
	}
	return messages, nil
}

// DeleteByChatbotID 删除该聊天机器人的所有对话历史（级联删除的一部分）。
func (r *redisConversationRepository) DeleteByChatbotID(ctx context.Context, chatbotID uint) error {
	pattern := fmt.Sprintf("chatbot:%d:conversation:*", chatbotID)
	keys, err := r.redisClient.Keys(ctx, pattern).Result()
	if err != nil {
		return fmt.Errorf("failed to scan conversation keys: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	return r.redisClient.Del(ctx, keys...).Err()
}
