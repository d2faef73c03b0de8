package index

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ragbot-go/internal/config"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(config.IndexConfig{BaseURL: srv.URL})
}

// TestSubmitForIndexing 测试索引提交请求的编码与结果映射
func TestSubmitForIndexing(t *testing.T) {
	t.Run("远端接受", func(t *testing.T) {
		var got processRequest
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/process-pdf", r.URL.Path)
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			w.WriteHeader(http.StatusOK)
		})

		err := client.SubmitForIndexing(context.Background(), 12, []string{"http://blob/a.pdf", "http://blob/b.pdf"})
		require.NoError(t, err)
		assert.Equal(t, "12", got.ChatbotID)
		assert.Len(t, got.FileURLs, 2)
	})

	t.Run("远端拒绝", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		})

		err := client.SubmitForIndexing(context.Background(), 12, []string{"http://blob/a.pdf"})
		assert.ErrorIs(t, err, ErrUnavailable)
	})
}

// TestDeleteEmbeddings 测试向量删除的幂等语义
func TestDeleteEmbeddings(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		wantErr    error
	}{
		{
			name:       "删除成功",
			statusCode: http.StatusOK,
			wantErr:    nil,
		},
		{
			name:       "索引不存在视为成功",
			statusCode: http.StatusNotFound,
			wantErr:    nil,
		},
		{
			name:       "远端故障",
			statusCode: http.StatusBadGateway,
			wantErr:    ErrUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/delete-embeddings", r.URL.Path)
				w.WriteHeader(tt.statusCode)
			})

			err := client.DeleteEmbeddings(context.Background(), 3)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

// TestQuery 测试问答调用的结果解析与错误映射
func TestQuery(t *testing.T) {
	t.Run("问答成功", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/query", r.URL.Path)
			var req queryRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "5", req.ChatbotID)
			assert.Equal(t, "什么是退款政策？", req.Question)

			_ = json.NewEncoder(w).Encode(QueryResult{
				Answer:  "30 天内可全额退款",
				Sources: []string{"第一章：退款条款", "附录 A"},
			})
		})

		result, err := client.Query(context.Background(), 5, "什么是退款政策？")
		require.NoError(t, err)
		assert.Equal(t, "30 天内可全额退款", result.Answer)
		assert.Len(t, result.Sources, 2)
	})

	t.Run("索引不存在", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		})

		_, err := client.Query(context.Background(), 5, "问题")
		assert.ErrorIs(t, err, ErrIndexNotFound)
	})

	t.Run("远端故障", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		})

		_, err := client.Query(context.Background(), 5, "问题")
		assert.ErrorIs(t, err, ErrUnavailable)
	})

	t.Run("网络不可达", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		client := NewClient(config.IndexConfig{BaseURL: srv.URL})
		srv.Close() // 连接被拒绝

		_, err := client.Query(context.Background(), 5, "问题")
		assert.ErrorIs(t, err, ErrUnavailable)
	})
}
