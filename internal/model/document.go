// Package model 定义了与数据库表对应的 Go 结构体。
package model

import "time"

// Document 定义了 documents 表的 ORM 模型。
// 它只持有文件在对象存储中的定位符，从不持有文件字节本身。
// 创建时必须引用一个已存在的 Chatbot（由编排层负责校验，非数据库外键）。
type Document struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	ChatbotID  uint      `gorm:"index;not null" json:"chatbotId"`
	ObjectURL  string    `gorm:"type:varchar(512);not null" json:"objectUrl"`
	ChunkCount int       `gorm:"not null;default:0" json:"chunkCount"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

// TableName 指定了此模型在数据库中对应的表名。
func (Document) TableName() string {
	return "documents"
}
