// Package kafka 提供了与 Kafka 消息队列交互的功能。
package kafka

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"

	"ragbot-go/internal/config"
	"ragbot-go/pkg/events"
	"ragbot-go/pkg/log"
)

// Publisher 定义了生命周期事件发布者的接口。
// 发布是尽力而为的：失败由调用方记录日志后忽略，本仓库内没有消费者，
// 事件流仅供外部审计系统订阅。
type Publisher interface {
	PublishChatbotEvent(ctx context.Context, event events.ChatbotEvent) error
}

type kafkaPublisher struct {
	writer *kafka.Writer
}

// NewPublisher 初始化一个 Kafka 事件发布者。
func NewPublisher(cfg config.KafkaConfig) Publisher {
	writer := &kafka.Writer{
		Addr:     kafka.TCP(cfg.Brokers),
		Topic:    cfg.Topic,
		Balancer: &kafka.LeastBytes{},
	}
	log.Info("Kafka 生产者初始化成功")
	return &kafkaPublisher{writer: writer}
}

// PublishChatbotEvent 发送一个生命周期事件到 Kafka。
func (p *kafkaPublisher) PublishChatbotEvent(ctx context.Context, event events.ChatbotEvent) error {
	eventBytes, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return p.writer.WriteMessages(ctx,
		kafka.Message{
			Key:   []byte(event.Type),
			Value: eventBytes,
		},
	)
}
