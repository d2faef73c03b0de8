// Package handler 包含了处理 HTTP 请求的控制器逻辑。
package handler

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"ragbot-go/internal/middleware"
	"ragbot-go/internal/model"
	"ragbot-go/internal/service"
	"ragbot-go/pkg/log"
)

// ChatbotHandler 负责处理聊天机器人生命周期相关的 API 请求。
type ChatbotHandler struct {
	chatbotService service.ChatbotService
}

// NewChatbotHandler 创建一个新的 ChatbotHandler 实例。
func NewChatbotHandler(chatbotService service.ChatbotService) *ChatbotHandler {
	return &ChatbotHandler{chatbotService: chatbotService}
}

// currentUserID 读取 AuthMiddleware 注入的已验证用户身份。
func currentUserID(c *gin.Context) uint {
	return c.GetUint(middleware.ContextUserIDKey)
}

// chatbotIDParam 解析路径参数中的聊天机器人 ID。
func chatbotIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    http.StatusBadRequest,
			"message": "无效的聊天机器人 ID",
		})
		return 0, false
	}
	return uint(id), true
}

// fileInputs 将 multipart 文件头转换为 service 层的输入。
// 返回的 closer 必须在请求结束前调用，释放所有已打开的文件。
func fileInputs(headers []*multipart.FileHeader) ([]service.FileInput, func(), error) {
	var inputs []service.FileInput
	var opened []multipart.File

	closer := func() {
		for _, f := range opened {
			_ = f.Close()
		}
	}

	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			closer()
			return nil, func() {}, err
		}
		opened = append(opened, f)
		inputs = append(inputs, service.FileInput{
			Name:        fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Size:        fh.Size,
			Reader:      f,
		})
	}
	return inputs, closer, nil
}

// respondChatbotError 将编排层错误映射为 HTTP 响应。
func respondChatbotError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrChatbotNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"code":    http.StatusNotFound,
			"message": "Chatbot not found",
		})
	case errors.Is(err, service.ErrNoFilesUploaded):
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    http.StatusBadRequest,
			"message": "No PDFs uploaded",
		})
	case errors.Is(err, service.ErrQueryFailed):
		c.JSON(http.StatusBadGateway, gin.H{
			"code":    http.StatusBadGateway,
			"message": "Failed to query chatbot",
		})
	default:
		log.Error("ChatbotHandler: unexpected error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    http.StatusInternalServerError,
			"message": "服务器内部错误",
		})
	}
}

// Create 处理创建聊天机器人的 multipart 请求。
// 一旦 Chatbot 记录创建成功，响应总是 201：status 字段是调用方
// 判断本次创建成败的唯一信号。
func (h *ChatbotHandler) Create(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    http.StatusBadRequest,
			"message": "无效的 multipart 表单",
		})
		return
	}

	name := c.PostForm("name")
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    http.StatusBadRequest,
			"message": "名称不能为空",
		})
		return
	}

	// 生成配置：显式字段，缺省值在此处补齐
	cfg := model.BotConfig{
		Temperature: 0.7,
		Style:       c.PostForm("style"),
		Disclaimer:  c.PostForm("disclaimer"),
	}
	if raw := c.PostForm("temperature"); raw != "" {
		if t, err := strconv.ParseFloat(raw, 64); err == nil {
			cfg.Temperature = t
		}
	}

	inputs, closeFiles, err := fileInputs(form.File["files"])
	if err != nil {
		log.Error("Create: failed to open uploaded files", err)
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    http.StatusBadRequest,
			"message": "无法读取上传的文件",
		})
		return
	}
	defer closeFiles()

	input := service.CreateChatbotInput{
		Name:        name,
		Domain:      c.PostForm("domain"),
		Description: c.PostForm("description"),
		Config:      cfg,
	}

	chatbot, err := h.chatbotService.Create(c.Request.Context(), currentUserID(c), input, inputs)
	if err != nil {
		respondChatbotError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"code":    http.StatusCreated,
		"message": "success",
		"data":    chatbot,
	})
}

// List 返回当前用户拥有的所有聊天机器人。
func (h *ChatbotHandler) List(c *gin.Context) {
	chatbots, err := h.chatbotService.ListByOwner(currentUserID(c))
	if err != nil {
		respondChatbotError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "success",
		"data":    chatbots,
	})
}

// AddDocuments 向已有的聊天机器人追加文档。
func (h *ChatbotHandler) AddDocuments(c *gin.Context) {
	chatbotID, ok := chatbotIDParam(c)
	if !ok {
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    http.StatusBadRequest,
			"message": "无效的 multipart 表单",
		})
		return
	}

	inputs, closeFiles, err := fileInputs(form.File["files"])
	if err != nil {
		log.Error("AddDocuments: failed to open uploaded files", err)
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    http.StatusBadRequest,
			"message": "无法读取上传的文件",
		})
		return
	}
	defer closeFiles()

	if err := h.chatbotService.AddDocuments(c.Request.Context(), currentUserID(c), chatbotID, inputs); err != nil {
		respondChatbotError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "Documents added successfully",
	})
}

// ListDocuments 返回指定聊天机器人的文档列表。
func (h *ChatbotHandler) ListDocuments(c *gin.Context) {
	chatbotID, ok := chatbotIDParam(c)
	if !ok {
		return
	}

	docs, err := h.chatbotService.ListDocuments(currentUserID(c), chatbotID)
	if err != nil {
		respondChatbotError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "success",
		"data":    docs,
	})
}

// Delete 级联删除一个聊天机器人。
func (h *ChatbotHandler) Delete(c *gin.Context) {
	chatbotID, ok := chatbotIDParam(c)
	if !ok {
		return
	}

	if err := h.chatbotService.Delete(c.Request.Context(), currentUserID(c), chatbotID); err != nil {
		respondChatbotError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "Chatbot deleted successfully",
	})
}

// QueryRequest 定义了问答 API 的请求体结构。
type QueryRequest struct {
	ChatbotID uint   `json:"chatbot_id" binding:"required"`
	Question  string `json:"question" binding:"required"`
}

// Query 处理对聊天机器人的问答请求。
func (h *ChatbotHandler) Query(c *gin.Context) {
	var req QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    http.StatusBadRequest,
			"message": "无效的请求负载：chatbot_id 和 question 不能为空",
		})
		return
	}

	result, err := h.chatbotService.Query(c.Request.Context(), currentUserID(c), req.ChatbotID, req.Question)
	if err != nil {
		respondChatbotError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "success",
		"data":    result,
	})
}

// Conversations 返回当前用户与指定聊天机器人的最近对话历史。
func (h *ChatbotHandler) Conversations(c *gin.Context) {
	chatbotID, ok := chatbotIDParam(c)
	if !ok {
		return
	}

	history, err := h.chatbotService.ConversationHistory(c.Request.Context(), currentUserID(c), chatbotID)
	if err != nil {
		respondChatbotError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "success",
		"data":    history,
	})
}
