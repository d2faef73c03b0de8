// Package events 定义了发布到 Kafka 的生命周期事件载荷。
package events

import "time"

// 事件类型常量。
const (
	ChatbotCreated = "chatbot.created"
	DocumentsAdded = "chatbot.documents_added"
	ChatbotDeleted = "chatbot.deleted"
)

// ChatbotEvent 代表一次聊天机器人生命周期变更的审计事件。
type ChatbotEvent struct {
	Type          string    `json:"type"`
	ChatbotID     uint      `json:"chatbot_id"`
	UserID        uint      `json:"user_id"`
	DocumentCount int       `json:"document_count"`
	Status        string    `json:"status,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}
