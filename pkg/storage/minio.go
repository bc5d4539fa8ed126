// Package storage 提供了与对象存储服务（如 MinIO）交互的功能。
package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"smart-chat-go/internal/config"
	"smart-chat-go/pkg/log"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ObjectStore 定义了文档原件存取接口。
type ObjectStore interface {
	Put(ctx context.Context, objectName string, data []byte, contentType string) error
	List(ctx context.Context, prefix string) ([]string, error)
	RemoveAll(ctx context.Context, prefix string) (int, error)
}

// MinIOStore 是基于 MinIO 的 ObjectStore 实现。
type MinIOStore struct {
	client     *minio.Client
	bucketName string
}

// NewMinIOStore 初始化 MinIO 客户端并确保存储桶存在。
func NewMinIOStore(cfg config.MinIOConfig) (*MinIOStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("初始化 MinIO 客户端失败: %w", err)
	}

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

	return &MinIOStore{client: client, bucketName: cfg.BucketName}, nil
}

// Put 上传一个对象。
func (s *MinIOStore) Put(ctx context.Context, objectName string, data []byte, contentType string) error {
	_, err := s.client.PutObject(ctx, s.bucketName, objectName,
		bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return fmt.Errorf("上传对象 '%s' 失败: %w", objectName, err)
	}
	return nil
}

// List 列出指定前缀下的对象名（去掉前缀部分）。
func (s *MinIOStore) List(ctx context.Context, prefix string) ([]string, error) {
	var names []string
	for obj := range s.client.ListObjects(ctx, s.bucketName, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("列出对象失败: %w", obj.Err)
		}
		names = append(names, strings.TrimPrefix(obj.Key, prefix))
	}
	return names, nil
}

// RemoveAll 删除指定前缀下的全部对象，返回删除数量。
func (s *MinIOStore) RemoveAll(ctx context.Context, prefix string) (int, error) {
	removed := 0
	for obj := range s.client.ListObjects(ctx, s.bucketName, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	}) {
		if obj.Err != nil {
			return removed, fmt.Errorf("列出对象失败: %w", obj.Err)
		}
		if err := s.client.RemoveObject(ctx, s.bucketName, obj.Key, minio.RemoveObjectOptions{}); err != nil {
			return removed, fmt.Errorf("删除对象 '%s' 失败: %w", obj.Key, err)
		}
		removed++
	}
	return removed, nil
}
