// Package storage 提供了与对象存储服务（如 MinIO）交互的功能。
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"ragbot-go/internal/config"
	"ragbot-go/pkg/log"
)

// MaxFileSize 定义了单个上传文件的大小上限 (5MB)。
const MaxFileSize = 5 * 1024 * 1024

var (
	// ErrUnsupportedFileType 表示上传内容不是 PDF。
	ErrUnsupportedFileType = errors.New("only PDF files are allowed")
	// ErrFileTooLarge 表示上传内容超过大小上限。
	ErrFileTooLarge = errors.New("file exceeds the 5MB size limit")
	// ErrForeignLocator 表示定位符不属于本存储桶，拒绝操作。
	ErrForeignLocator = errors.New("locator does not belong to this bucket")
)

// Store 接口定义了块存储客户端的操作。
// Put 返回一个稳定可解析的定位符 (URL)；Delete 按定位符做幂等删除。
type Store interface {
	Put(ctx context.Context, ownerID uint, fileName, contentType string, size int64, r io.Reader) (string, error)
	Delete(ctx context.Context, locator string) error
}

type minioStore struct {
	client    *minio.Client
	bucket    string
	urlPrefix string // locator 前缀：scheme://endpoint/bucket/
}

// NewMinIOStore 初始化 MinIO 客户端并确保指定的存储桶存在。
func NewMinIOStore(cfg config.MinIOConfig) (Store, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("初始化 MinIO 客户端失败: %w", err)
	}

	// 检查存储桶 (Bucket) 是否存在，如果不存在则创建
	ctx := context.Background()
	exists, err := client.BucketExists(ctx, cfg.BucketName)
	if err != nil {
		return nil, fmt.Errorf("检查 MinIO 存储桶失败: %w", err)
	}
	if !exists {
		log.Infof("存储桶 '%s' 不存在，正在创建...", cfg.BucketName)
		if err := client.MakeBucket(ctx, cfg.BucketName, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("创建 MinIO 存储桶失败: %w", err)
		}
	}

	scheme := "http"
	if cfg.UseSSL {
		scheme = "https"
	}

	log.Info("MinIO 客户端初始化成功")
	return &minioStore{
		client:    client,
		bucket:    cfg.BucketName,
		urlPrefix: fmt.Sprintf("%s://%s/%s/", scheme, cfg.Endpoint, cfg.BucketName),
	}, nil
}

// CheckUploadable 校验上传内容是否可接受：仅允许 PDF，且不超过大小上限。
func CheckUploadable(contentType string, size int64) error {
	if !strings.EqualFold(strings.TrimSpace(contentType), "application/pdf") {
		return ErrUnsupportedFileType
	}
	if size > MaxFileSize {
		return ErrFileTooLarge
	}
	return nil
}

// Put 将文件内容持久化到对象存储并返回其定位符。
// 对象键由命名空间、唯一后缀和原始文件名组成，避免键冲突。
// 校验失败时不产生任何远程调用；上传失败不在内部重试，由调用方决定策略。
func (s *minioStore) Put(ctx context.Context, ownerID uint, fileName, contentType string, size int64, r io.Reader) (string, error) {
	if err := CheckUploadable(contentType, size); err != nil {
		return "", err
	}

	objectName := fmt.Sprintf("pdfs/%d/%d-%s", ownerID, time.Now().UnixNano(), filepath.Base(fileName))
	_, err := s.client.PutObject(ctx, s.bucket, objectName, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("上传对象失败: %w", err)
	}

	log.Infof("[Storage] 对象上传成功: %s", objectName)
	return s.urlPrefix + objectName, nil
}

// Delete 按定位符删除对象。对象不存在不视为错误（幂等）。
func (s *minioStore) Delete(ctx context.Context, locator string) error {
	if !strings.HasPrefix(locator, s.urlPrefix) {
		return ErrForeignLocator
	}
	objectName := strings.TrimPrefix(locator, s.urlPrefix)

	// MinIO 的 RemoveObject 对不存在的对象同样返回成功
	if err := s.client.RemoveObject(ctx, s.bucket, objectName, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("删除对象失败: %w", err)
	}
	return nil
}
