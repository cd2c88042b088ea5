// Package redis Redis 目录缓存实现
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"harmonic-server/internal/shared/cache"
	"harmonic-server/internal/shared/model"
)

// catalogTTL 目录缓存有效期。目录数据允许短暂滞后，
// 写路径（课程创建/审核/购买）另有主动失效兜底。
const catalogTTL = 60 * time.Second

// Store Redis 目录缓存
type Store struct {
	client *redis.Client
}

// NewStoreFromURL 从 URL 创建 Redis 缓存实例
func NewStoreFromURL(redisURL string) (*Store, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	log.Printf("[Redis/Cache] Connected to %s", opts.Addr)
	return &Store{client: client}, nil
}

// NewStoreFromClient 从现有 Redis 客户端创建缓存实例
func NewStoreFromClient(client *redis.Client) *Store {
	return &Store{client: client}
}

// Close 关闭 Redis 连接
func (s *Store) Close() error {
	return s.client.Close()
}

// GetClasses 读取缓存的课程列表
//
// 未命中返回 (nil, nil)；Redis 故障同样返回 (nil, nil) 并记录日志，
// 调用方回源存储层，缓存永远不是请求失败的原因。
func (s *Store) GetClasses(ctx context.Context, key string) ([]*model.Class, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Printf("[Redis/Cache] GET %s failed: %v", key, err)
		}
		return nil, nil
	}

	var classes []*model.Class
	if err := json.Unmarshal(data, &classes); err != nil {
		log.Printf("[Redis/Cache] decode %s failed: %v", key, err)
		return nil, nil
	}
	return classes, nil
}

// SetClasses 写入课程列表（TTL 60s）
func (s *Store) SetClasses(ctx context.Context, key string, classes []*model.Class) error {
	data, err := json.Marshal(classes)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := s.client.Set(ctx, key, data, catalogTTL).Err(); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

// InvalidateCatalog 删除所有目录缓存键
func (s *Store) InvalidateCatalog(ctx context.Context) error {
	return s.client.Del(ctx, cache.KeyPopularClasses, cache.KeyApprovedClasses).Err()
}

// 确保 Store 实现了 CatalogCache 接口
var _ cache.CatalogCache = (*Store)(nil)
