// Package repository 定义了与数据库进行数据交换的接口和实现。
package repository

import (
	"gorm.io/gorm"

	"ragbot-go/internal/model"
)

// DocumentRepository 接口定义了文档元数据的持久化操作。
// 这里只做简单的持久化，不做业务校验：chatbot 的归属检查由编排层
// 在调用前完成（chatbot_id 不是数据库层面的硬外键）。
type DocumentRepository interface {
	Create(doc *model.Document) error
	FindByChatbotID(chatbotID uint) ([]model.Document, error)
	DeleteByChatbotID(chatbotID uint) (int64, error)
}

// documentRepository 是 DocumentRepository 接口的 GORM 实现。
type documentRepository struct {
	db *gorm.DB
}

// NewDocumentRepository 创建一个新的 DocumentRepository 实例。
func NewDocumentRepository(db *gorm.DB) DocumentRepository {
	return &documentRepository{db: db}
}

// Create 在数据库中创建一个新的文档记录。
func (r *documentRepository) Create(doc *model.Document) error {
	return r.db.Create(doc).Error
}

// FindByChatbotID 获取指定聊天机器人的所有文档，按创建时间升序。
func (r *documentRepository) FindByChatbotID(chatbotID uint) ([]model.Document, error) {
	var docs []model.Document
	err := r.db.Where("chatbot_id = ?", chatbotID).Order("created_at asc").Find(&docs).Error
	return docs, err
}

// DeleteByChatbotID 删除指定聊天机器人的所有文档记录，返回删除数量。
func (r *documentRepository) DeleteByChatbotID(chatbotID uint) (int64, error) {
	result := r.db.Where("chatbot_id = ?", chatbotID).Delete(&model.Document{})
	return result.RowsAffected, result.Error
}
