// Package repository 定义了与数据库进行数据交换的接口和实现。
package repository

import (
	"gorm.io/gorm"

	"ragbot-go/internal/model"
)

// ChatbotRepository 接口定义了聊天机器人数据的持久化操作。
// 归属校验统一通过 FindByIDAndUserID 完成：资源不存在与不属于
// 调用者对上层不可区分，避免泄露其他用户资源的存在性。
type ChatbotRepository interface {
	Create(chatbot *model.Chatbot) error
	FindByIDAndUserID(chatbotID, userID uint) (*model.Chatbot, error)
	FindByUserID(userID uint) ([]model.Chatbot, error)
	UpdateStatus(chatbotID uint, status string) error
	Delete(chatbotID uint) error
}

// chatbotRepository 是 ChatbotRepository 接口的 GORM 实现。
type chatbotRepository struct {
	db *gorm.DB
}

// NewChatbotRepository 创建一个新的 ChatbotRepository 实例。
func NewChatbotRepository(db *gorm.DB) ChatbotRepository {
	return &chatbotRepository{db: db}
}

// Create 在数据库中创建一个新的聊天机器人记录。
func (r *chatbotRepository) Create(chatbot *model.Chatbot) error {
	return r.db.Create(chatbot).Error
}

// FindByIDAndUserID 按 ID 和所有者查找聊天机器人。
func (r *chatbotRepository) FindByIDAndUserID(chatbotID, userID uint) (*model.Chatbot, error) {
	var chatbot model.Chatbot
	err := r.db.Where("id = ? AND user_id = ?", chatbotID, userID).First(&chatbot).Error
	if err != nil {
		return nil, err
	}
	return &chatbot, nil
}

// FindByUserID 查找指定用户拥有的所有聊天机器人，按创建时间倒序。
func (r *chatbotRepository) FindByUserID(userID uint) ([]model.Chatbot, error) {
	var chatbots []model.Chatbot
	err := r.db.Where("user_id = ?", userID).Order("created_at desc").Find(&chatbots).Error
	return chatbots, err
}

// UpdateStatus 更新指定聊天机器人的状态。
func (r *chatbotRepository) UpdateStatus(chatbotID uint, status string) error {
	return r.db.Model(&model.Chatbot{}).Where("id = ?", chatbotID).Update("status", status).Error
}

// Delete 删除一个聊天机器人记录。
func (r *chatbotRepository) Delete(chatbotID uint) error {
	return r.db.Delete(&model.Chatbot{}, chatbotID).Error
}
