// Package index 提供了与外部 RAG 索引服务交互的客户端。
// 该服务负责文档的切分、向量化、存储与问答，本客户端只触发操作，
// 不感知其内部状态。客户端本身无本地状态，每次调用相互独立。
package index

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"ragbot-go/internal/config"
	"ragbot-go/pkg/log"
)

var (
	// ErrUnavailable 表示网络错误或远端服务故障。
	ErrUnavailable = errors.New("index service unavailable")
	// ErrIndexNotFound 表示远端没有该聊天机器人的索引。
	ErrIndexNotFound = errors.New("index not found for chatbot")
)

// Client 定义了索引服务客户端的接口。
type Client interface {
	// SubmitForIndexing 提交一批文件定位符等待向量化。
	// 调用同步阻塞直到远端接受/拒绝请求，但向量化本身在调用返回后继续进行。
	SubmitForIndexing(ctx context.Context, chatbotID uint, fileURLs []string) error
	// DeleteEmbeddings 请求删除该聊天机器人关联的所有向量。对调用方幂等。
	DeleteEmbeddings(ctx context.Context, chatbotID uint) error
	// Query 对该聊天机器人的文档做同步问答。
	Query(ctx context.Context, chatbotID uint, question string) (*QueryResult, error)
}

// QueryResult 是一次问答调用的结果。
type QueryResult struct {
	Answer  string   `json:"answer"`
	Sources []string `json:"sources"`
}

type httpClient struct {
	baseURL string
	client  *http.Client
}

// NewClient 创建一个新的索引服务客户端实例。
func NewClient(cfg config.IndexConfig) Client {
	return &httpClient{
		baseURL: cfg.BaseURL,
		client:  &http.Client{},
	}
}

type processRequest struct {
	ChatbotID string   `json:"chatbot_id"`
	FileURLs  []string `json:"file_urls"`
}

type deleteRequest struct {
	ChatbotID string `json:"chatbot_id"`
}

type queryRequest struct {
	ChatbotID string `json:"chatbot_id"`
	Question  string `json:"question"`
}

// SubmitForIndexing 调用远端的 /process-pdf 接口。
func (c *httpClient) SubmitForIndexing(ctx context.Context, chatbotID uint, fileURLs []string) error {
	reqBody := processRequest{
		ChatbotID: fmt.Sprintf("%d", chatbotID),
		FileURLs:  fileURLs,
	}

	resp, err := c.post(ctx, "/process-pdf", reqBody)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Errorf("[IndexClient] 索引提交被拒绝, chatbotID: %d, status: %s", chatbotID, resp.Status)
		return fmt.Errorf("%w: submit returned status %s", ErrUnavailable, resp.Status)
	}
	return nil
}

// DeleteEmbeddings 调用远端的 /delete-embeddings 接口。
// 远端返回 404（索引不存在）视为成功，保证重复调用安全。
func (c *httpClient) DeleteEmbeddings(ctx context.Context, chatbotID uint) error {
	reqBody := deleteRequest{ChatbotID: fmt.Sprintf("%d", chatbotID)}

	resp, err := c.post(ctx, "/delete-embeddings", reqBody)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusNotFound {
		return nil
	}
	return fmt.Errorf("%w: delete returned status %s", ErrUnavailable, resp.Status)
}

// Query 调用远端的 /query 接口并返回答案与来源。
func (c *httpClient) Query(ctx context.Context, chatbotID uint, question string) (*QueryResult, error) {
	reqBody := queryRequest{
		ChatbotID: fmt.Sprintf("%d", chatbotID),
		Question:  question,
	}

	resp, err := c.post(ctx, "/query", reqBody)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrIndexNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: query returned status %s", ErrUnavailable, resp.Status)
	}

	var result QueryResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("%w: decode query response: %v", ErrUnavailable, err)
	}
	return &result, nil
}

// post 向索引服务发送一个 JSON POST 请求。网络层失败统一映射为 ErrUnavailable。
func (c *httpClient) post(ctx context.Context, path string, body interface{}) (*http.Response, error) {
	reqBytes, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+path, bytes.NewReader(reqBytes))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		log.Errorf("[IndexClient] 调用索引服务失败, path: %s, error: %v", path, err)
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return resp, nil
}
