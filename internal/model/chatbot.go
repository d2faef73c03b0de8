// Package model 定义了与数据库表对应的 Go 结构体。
package model

import "time"

// Chatbot 的状态取值。状态在每次创建流程中恰好写入一次：
// 索引提交成功后进入 ready，持久化之后的任一步骤失败则进入 failed。
const (
	StatusProcessing = "processing"
	StatusReady      = "ready"
	StatusFailed     = "failed"
)

// BotConfig 是聊天机器人的生成配置。
// 显式字段而非开放 map，各字段带默认值。
type BotConfig struct {
	Temperature float64 `gorm:"default:0.7" json:"temperature"`
	Style       string  `gorm:"type:varchar(100)" json:"style"`
	Disclaimer  string  `gorm:"type:varchar(500)" json:"disclaimer"`
}

// Chatbot 定义了 chatbots 表的 ORM 模型。
// 一个 Chatbot 始终恰好属于一个用户；只能通过显式的级联删除移除。
type Chatbot struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID      uint      `gorm:"index;not null" json:"userId"`
	Name        string    `gorm:"type:varchar(255);not null" json:"name"`
	Domain      string    `gorm:"type:varchar(255)" json:"domain"`
	Description string    `gorm:"type:text" json:"description"`
	Config      BotConfig `gorm:"embedded;embeddedPrefix:config_" json:"config"`
	Status      string    `gorm:"type:varchar(20);not null;default:processing" json:"status"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

// TableName 指定了此模型在数据库中对应的表名。
func (Chatbot) TableName() string {
	return "chatbots"
}
