package service

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
	"time"

	"github.com/beyyuanzhang/tfoc/internal/ims/entity"
	"github.com/minio/minio-go/v7"
)

// UploadService 媒体文件上传（MinIO 对象存储）
type UploadService struct {
	client *minio.Client
	bucket string
}

func NewUploadService(client *minio.Client, bucket string) *UploadService {
	return &UploadService{client: client, bucket: bucket}
}

// Enabled 未配置对象存储时上传接口不可用
func (s *UploadService) Enabled() bool {
	return s.client != nil
}

// Upload 上传文件并返回媒体引用
func (s *UploadService) Upload(ctx context.Context, filename, contentType string, size int64, reader io.Reader) (*entity.MediaRef, error) {
	if s.client == nil {
		return nil, fmt.Errorf("对象存储未配置")
	}

	fileID := generateID()
	objectName := fmt.Sprintf("media/%s/%s%s", time.Now().Format("2006/01"), fileID, path.Ext(filename))

	_, err := s.client.PutObject(ctx, s.bucket, objectName, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return nil, fmt.Errorf("上传文件失败: %w", err)
	}

	return &entity.MediaRef{
		FileID:   fileID,
		URL:      objectName,
		Filename: filename,
	}, nil
}

// PresignedURL 生成限时下载链接
func (s *UploadService) PresignedURL(ctx context.Context, objectName string, expiry time.Duration) (string, error) {
	if s.client == nil {
		return "", fmt.Errorf("对象存储未配置")
	}
	u, err := s.client.PresignedGetObject(ctx, s.bucket, objectName, expiry, url.Values{})
	if err != nil {
		return "", fmt.Errorf("生成下载链接失败: %w", err)
	}
	return u.String(), nil
}

// Remove 删除对象
func (s *UploadService) Remove(ctx context.Context, objectName string) error {
	if s.client == nil {
		return fmt.Errorf("对象存储未配置")
	}
	return s.client.RemoveObject(ctx, s.bucket, objectName, minio.RemoveObjectOptions{})
}
