// Package service 包含了应用的业务逻辑层。
package service

import (
	"context"
	"errors"
	"io"
	"time"

	"gorm.io/gorm"

	"ragbot-go/internal/model"
	"ragbot-go/internal/repository"
	"ragbot-go/pkg/events"
	"ragbot-go/pkg/index"
	"ragbot-go/pkg/kafka"
	"ragbot-go/pkg/log"
	"ragbot-go/pkg/storage"
)

var (
	// ErrNoFilesUploaded 表示请求没有附带任何文件。
	ErrNoFilesUploaded = errors.New("no PDFs uploaded")
	// ErrChatbotNotFound 表示聊天机器人不存在或不属于调用者。
	// 两种情况对调用方刻意不可区分，避免泄露其他用户资源的存在性。
	ErrChatbotNotFound = errors.New("chatbot not found")
	// ErrQueryFailed 表示远端问答调用失败。
	ErrQueryFailed = errors.New("failed to query chatbot")
)

// FileInput 是一个待上传文件的输入，由 handler 层从 multipart 表单构造。
type FileInput struct {
	Name        string
	ContentType string
	Size        int64
	Reader      io.Reader
}

// CreateChatbotInput 是创建聊天机器人的输入。
type CreateChatbotInput struct {
	Name        string
	Domain      string
	Description string
	Config      model.BotConfig
}

// QueryResult 是一次问答的结果。
type QueryResult struct {
	Answer  string   `json:"answer"`
	Sources []string `json:"sources"`
}

// ChatbotService 是聊天机器人生命周期的编排器。
// 它拥有状态机 processing → ready / failed，按 工作流顺序串行调用
// 块存储、文档注册表和外部索引服务，并定义各步骤的部分失败策略。
type ChatbotService interface {
	Create(ctx context.Context, userID uint, input CreateChatbotInput, files []FileInput) (*model.Chatbot, error)
	AddDocuments(ctx context.Context, userID, chatbotID uint, files []FileInput) error
	ListByOwner(userID uint) ([]model.Chatbot, error)
	ListDocuments(userID, chatbotID uint) ([]model.Document, error)
	Delete(ctx context.Context, userID, chatbotID uint) error
	Query(ctx context.Context, userID, chatbotID uint, question string) (*QueryResult, error)
	ConversationHistory(ctx context.Context, userID, chatbotID uint) ([]model.ChatMessage, error)
}

type chatbotService struct {
	chatbotRepo repository.ChatbotRepository
	docRepo     repository.DocumentRepository
	convRepo    repository.ConversationRepository
	store       storage.Store
	indexClient index.Client
	publisher   kafka.Publisher
}

// NewChatbotService 创建一个新的 ChatbotService 实例。
func NewChatbotService(
	chatbotRepo repository.ChatbotRepository,
	docRepo repository.DocumentRepository,
	convRepo repository.ConversationRepository,
	store storage.Store,
	indexClient index.Client,
	publisher kafka.Publisher,
) ChatbotService {
	return &chatbotService{
		chatbotRepo: chatbotRepo,
		docRepo:     docRepo,
		convRepo:    convRepo,
		store:       store,
		indexClient: indexClient,
		publisher:   publisher,
	}
}

// Create 创建一个新的聊天机器人并驱动完整的索引流程。
// Chatbot 记录的持久化必须先于其他任何步骤；持久化之后的失败
// 不再作为错误返回，而是吸收进 failed 状态——status 字段是此后
// 对调用方唯一的成败信号，细节只写日志，保留已尝试操作的记录。
func (s *chatbotService) Create(ctx context.Context, userID uint, input CreateChatbotInput, files []FileInput) (*model.Chatbot, error) {
	// 1. 没有任何文件时直接拒绝，不产生副作用
	if len(files) == 0 {
		return nil, ErrNoFilesUploaded
	}

	// 2. 以 processing 状态持久化 Chatbot；这一步失败则整个操作失败
	chatbot := &model.Chatbot{
		UserID:      userID,
		Name:        input.Name,
		Domain:      input.Domain,
		Description: input.Description,
		Config:      input.Config,
		Status:      model.StatusProcessing,
	}
	if err := s.chatbotRepo.Create(chatbot); err != nil {
		return nil, err
	}

	// 3. 逐个上传并登记文档；单个文件失败跳过，不影响批次
	fileURLs := s.uploadAndRegister(ctx, userID, chatbot.ID, files)

	// 4. 提交索引：成功置 ready，任何失败（包括没有可用文件）置 failed
	finalStatus := model.StatusFailed
	if len(fileURLs) > 0 {
		if err := s.indexClient.SubmitForIndexing(ctx, chatbot.ID, fileURLs); err != nil {
			log.Errorf("[ChatbotService] 索引提交失败, chatbotID: %d, error: %v", chatbot.ID, err)
		} else {
			finalStatus = model.StatusReady
		}
	} else {
		log.Warnf("[ChatbotService] 没有任何文件上传成功, chatbotID: %d", chatbot.ID)
	}

	if err := s.chatbotRepo.UpdateStatus(chatbot.ID, finalStatus); err != nil {
		// 状态写入失败同样只记日志：记录已存在，调用方仍能看到它
		log.Errorf("[ChatbotService] 更新状态失败, chatbotID: %d, status: %s, error: %v", chatbot.ID, finalStatus, err)
	}
	chatbot.Status = finalStatus

	s.publishEvent(ctx, events.ChatbotEvent{
		Type:          events.ChatbotCreated,
		ChatbotID:     chatbot.ID,
		UserID:        userID,
		DocumentCount: len(fileURLs),
		Status:        finalStatus,
		OccurredAt:    time.Now(),
	})

	log.Infof("[ChatbotService] 创建完成, chatbotID: %d, status: %s, documents: %d", chatbot.ID, finalStatus, len(fileURLs))
	return chatbot, nil
}

// AddDocuments 向已有的聊天机器人追加文档。
// 这是对已就绪机器人的增量增强：状态不会被重置为 processing，
// 索引失败也只记日志、不回写 failed（已知缺口，见设计文档）。
func (s *chatbotService) AddDocuments(ctx context.Context, userID, chatbotID uint, files []FileInput) error {
	chatbot, err := s.findOwned(chatbotID, userID)
	if err != nil {
		return err
	}

	if len(files) == 0 {
		return ErrNoFilesUploaded
	}

	fileURLs := s.uploadAndRegister(ctx, userID, chatbot.ID, files)
	if len(fileURLs) == 0 {
		log.Warnf("[ChatbotService] 追加文档：没有任何文件上传成功, chatbotID: %d", chatbot.ID)
		return nil
	}

	if err := s.indexClient.SubmitForIndexing(ctx, chatbot.ID, fileURLs); err != nil {
		log.Errorf("[ChatbotService] 追加文档的索引提交失败, chatbotID: %d, error: %v", chatbot.ID, err)
	}

	s.publishEvent(ctx, events.ChatbotEvent{
		Type:          events.DocumentsAdded,
		ChatbotID:     chatbot.ID,
		UserID:        userID,
		DocumentCount: len(fileURLs),
		OccurredAt:    time.Now(),
	})
	return nil
}

// ListByOwner 返回调用者拥有的所有聊天机器人，按创建时间倒序。
func (s *chatbotService) ListByOwner(userID uint) ([]model.Chatbot, error) {
	return s.chatbotRepo.FindByUserID(userID)
}

// ListDocuments 返回指定聊天机器人的文档列表。
func (s *chatbotService) ListDocuments(userID, chatbotID uint) ([]model.Document, error) {
	if _, err := s.findOwned(chatbotID, userID); err != nil {
		return nil, err
	}
	return s.docRepo.FindByChatbotID(chatbotID)
}

// Delete 级联删除一个聊天机器人的全部状态。
// 三个下游系统相互独立，级联是尽力而为而非原子的：每一步的失败
// 都不阻止后续步骤，只记日志。对调用方的契约是"它从你的视图中
// 消失了"，而非"所有远端状态都已清除"；只有最初的归属校验失败
// 才作为错误返回。
func (s *chatbotService) Delete(ctx context.Context, userID, chatbotID uint) error {
	chatbot, err := s.findOwned(chatbotID, userID)
	if err != nil {
		return err
	}

	// 1. 删除远端向量
	if err := s.indexClient.DeleteEmbeddings(ctx, chatbot.ID); err != nil {
		log.Errorf("[ChatbotService] 删除向量失败, chatbotID: %d, error: %v", chatbot.ID, err)
	}

	// 2. 逐个删除对象存储中的文件
	docs, err := s.docRepo.FindByChatbotID(chatbot.ID)
	if err != nil {
		log.Errorf("[ChatbotService] 枚举文档失败, chatbotID: %d, error: %v", chatbot.ID, err)
	}
	for _, doc := range docs {
		if err := s.store.Delete(ctx, doc.ObjectURL); err != nil {
			log.Errorf("[ChatbotService] 删除对象失败, chatbotID: %d, locator: %s, error: %v", chatbot.ID, doc.ObjectURL, err)
		}
	}

	// 3. 删除文档元数据
	deleted, err := s.docRepo.DeleteByChatbotID(chatbot.ID)
	if err != nil {
		log.Errorf("[ChatbotService] 删除文档记录失败, chatbotID: %d, error: %v", chatbot.ID, err)
	} else {
		log.Infof("[ChatbotService] 已删除 %d 条文档记录, chatbotID: %d", deleted, chatbot.ID)
	}

	// 4. 删除 Chatbot 记录本身
	if err := s.chatbotRepo.Delete(chatbot.ID); err != nil {
		log.Errorf("[ChatbotService] 删除聊天机器人记录失败, chatbotID: %d, error: %v", chatbot.ID, err)
	}

	// 清理对话历史缓存
	if err := s.convRepo.DeleteByChatbotID(ctx, chatbot.ID); err != nil {
		log.Errorf("[ChatbotService] 清理对话历史失败, chatbotID: %d, error: %v", chatbot.ID, err)
	}

	s.publishEvent(ctx, events.ChatbotEvent{
		Type:       events.ChatbotDeleted,
		ChatbotID:  chatbot.ID,
		UserID:     userID,
		OccurredAt: time.Now(),
	})
	return nil
}

// Query 将问题转发给索引服务并返回答案与来源。远端失败不重试，
// 统一以 ErrQueryFailed 暴露给调用方。
func (s *chatbotService) Query(ctx context.Context, userID, chatbotID uint, question string) (*QueryResult, error) {
	chatbot, err := s.findOwned(chatbotID, userID)
	if err != nil {
		return nil, err
	}

	resp, err := s.indexClient.Query(ctx, chatbot.ID, question)
	if err != nil {
		log.Errorf("[ChatbotService] 问答失败, chatbotID: %d, error: %v", chatbot.ID, err)
		return nil, ErrQueryFailed
	}

	// 对话历史是尽力而为的增强，写入失败不影响答案返回
	if err := s.convRepo.AppendExchange(ctx, chatbot.ID, userID, question, resp.Answer, resp.Sources); err != nil {
		log.Warnf("[ChatbotService] 记录对话历史失败, chatbotID: %d, error: %v", chatbot.ID, err)
	}

	return &QueryResult{Answer: resp.Answer, Sources: resp.Sources}, nil
}

// ConversationHistory 返回调用者与指定聊天机器人的最近对话。
func (s *chatbotService) ConversationHistory(ctx context.Context, userID, chatbotID uint) ([]model.ChatMessage, error) {
	if _, err := s.findOwned(chatbotID, userID); err != nil {
		return nil, err
	}
	return s.convRepo.GetHistory(ctx, chatbotID, userID)
}

// findOwned 做存在性加归属校验。不存在与不属于调用者返回同一个错误。
func (s *chatbotService) findOwned(chatbotID, userID uint) (*model.Chatbot, error) {
	chatbot, err := s.chatbotRepo.FindByIDAndUserID(chatbotID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrChatbotNotFound
		}
		return nil, err
	}
	return chatbot, nil
}

// uploadAndRegister 逐个上传文件并登记文档记录，返回成功的定位符列表。
// 校验不通过或上传失败的文件被跳过并记日志；文档记录创建失败时，
// 已上传的对象会留下孤儿（接受的权衡，见设计文档）。
func (s *chatbotService) uploadAndRegister(ctx context.Context, userID, chatbotID uint, files []FileInput) []string {
	var fileURLs []string
	for _, f := range files {
		locator, err := s.store.Put(ctx, userID, f.Name, f.ContentType, f.Size, f.Reader)
		if err != nil {
			log.Warnf("[ChatbotService] 文件上传被跳过, chatbotID: %d, file: %s, error: %v", chatbotID, f.Name, err)
			continue
		}

		doc := &model.Document{
			ChatbotID: chatbotID,
			ObjectURL: locator,
		}
		if err := s.docRepo.Create(doc); err != nil {
			log.Errorf("[ChatbotService] 登记文档记录失败, chatbotID: %d, locator: %s, error: %v", chatbotID, locator, err)
			continue
		}
		fileURLs = append(fileURLs, locator)
	}
	return fileURLs
}

// publishEvent 尽力而为地发布生命周期事件，失败只记日志。
func (s *chatbotService) publishEvent(ctx context.Context, event events.ChatbotEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishChatbotEvent(ctx, event); err != nil {
		log.Warnf("[ChatbotService] 发布生命周期事件失败, type: %s, chatbotID: %d, error: %v", event.Type, event.ChatbotID, err)
	}
}
