package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestCheckUploadable 测试上传内容校验规则：仅允许 PDF 且不超过 5MB
func TestCheckUploadable(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		size        int64
		wantErr     error
	}{
		{
			name:        "合法的 PDF",
			contentType: "application/pdf",
			size:        1024,
			wantErr:     nil,
		},
		{
			name:        "恰好达到大小上限",
			contentType: "application/pdf",
			size:        MaxFileSize,
			wantErr:     nil,
		},
		{
			name:        "大小写不敏感的 Content-Type",
			contentType: "Application/PDF",
			size:        1024,
			wantErr:     nil,
		},
		{
			name:        "超过大小上限",
			contentType: "application/pdf",
			size:        MaxFileSize + 1,
			wantErr:     ErrFileTooLarge,
		},
		{
			name:        "非 PDF 类型",
			contentType: "image/png",
			size:        1024,
			wantErr:     ErrUnsupportedFileType,
		},
		{
			name:        "空 Content-Type",
			contentType: "",
			size:        1024,
			wantErr:     ErrUnsupportedFileType,
		},
		{
			name:        "既非 PDF 又超限时优先报类型错误",
			contentType: "text/plain",
			size:        MaxFileSize + 1,
			wantErr:     ErrUnsupportedFileType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckUploadable(tt.contentType, tt.size)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}
