// Package cache 缓存层抽象接口
//
// 为公开课程目录（热门课程、已通过审核的课程）提供短 TTL 缓存，
// 当前由 Redis 实现。缓存不可用时业务直接回源存储层，
// 因此所有实现的 Get 未命中和出错都表现为 (nil, nil)。
package cache

import (
	"context"

	"harmonic-server/internal/shared/model"
)

// 目录缓存键
const (
	KeyPopularClasses  = "catalog:popular"
	KeyApprovedClasses = "catalog:approved"
)

// CatalogCache 课程目录缓存接口
type CatalogCache interface {
	// GetClasses 读取缓存的课程列表，未命中返回 (nil, nil)
	GetClasses(ctx context.Context, key string) ([]*model.Class, error)
	// SetClasses 写入课程列表，由实现决定 TTL
	SetClasses(ctx context.Context, key string, classes []*model.Class) error
	// InvalidateCatalog 课程数据变更后使目录缓存全部失效
	InvalidateCatalog(ctx context.Context) error
	Close() error
}
