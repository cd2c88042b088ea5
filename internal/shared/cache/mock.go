package cache

import (
	"context"

	"harmonic-server/internal/shared/model"
)

// NoOpCache 空操作缓存实现（测试和无 Redis 部署时使用）
//
// 所有读取都表现为未命中，写入和失效直接丢弃。
type NoOpCache struct{}

// NewNoOpCache 创建 NoOpCache 实例
func NewNoOpCache() *NoOpCache {
	return &NoOpCache{}
}

func (c *NoOpCache) GetClasses(context.Context, string) ([]*model.Class, error) {
	return nil, nil
}

func (c *NoOpCache) SetClasses(context.Context, string, []*model.Class) error {
	return nil
}

func (c *NoOpCache) InvalidateCatalog(context.Context) error {
	return nil
}

func (c *NoOpCache) Close() error {
	return nil
}

// 确保 NoOpCache 实现了 CatalogCache 接口
var _ CatalogCache = (*NoOpCache)(nil)
