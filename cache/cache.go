// Package cache 提供带 TTL 和 LRU 淘汰的进程内响应缓存。
//
// 缓存语义：
//   - 每个条目携带独立 TTL，Get 永远不会返回已过期的值
//   - 容量满时淘汰最久未使用（LRU）的未过期条目
//   - 过期条目在访问时顺带清除，在写入触顶时集中清除
//   - 命中率 = hits / (hits + misses)，无访问时为 0
//
// 多个互相独立的缓存实例（如 "embeddings"、"responses"）通过 Registry
// 按名称管理，各自拥有独立容量：
//
//	registry := cache.NewRegistry(cache.WithLogger(logger))
//	responses, _ := registry.Get("responses", 1000)
//
//	responses.Set(ctx, fingerprint, reply, time.Minute)
//	if v, ok := responses.Get(ctx, fingerprint); ok {
//	    return v
//	}
//
// 未命中回填可以通过 GetOrLoad 合并并发请求（singleflight），
// 同一 key 的并发 miss 只会触发一次 loader 调用。
package cache

import (
	"context"
	"time"

	"github.com/ceyewan/aegis/clog"
)

// Cache 定义了响应缓存的核心能力
type Cache interface {
	// Get 查找 key 对应的值，命中时将条目标记为最近使用
	// 过期条目视为不存在，并在此时被物理清除
	Get(ctx context.Context, key string) (any, bool)

	// Set 写入或覆盖条目；ttl <= 0 时使用实例的 DefaultTTL
	// 容量已满时先清除过期条目，仍满则淘汰 LRU 条目
	Set(ctx context.Context, key string, value any, ttl time.Duration)

	// GetOrLoad 命中时直接返回；未命中时调用 loader 回填
	// 同一 key 的并发未命中会合并为一次 loader 调用
	GetOrLoad(ctx context.Context, key string, ttl time.Duration, loader LoaderFunc) (any, error)

	// Delete 删除条目，返回条目是否存在
	Delete(ctx context.Context, key string) bool

	// Len 返回当前条目数（含未被物理清除的过期条目）
	Len() int

	// Stats 返回累计命中统计
	Stats() Stats
}

// LoaderFunc 未命中回填函数
type LoaderFunc func(ctx context.Context) (any, error)

// Stats 缓存命中统计
type Stats struct {
	Hits        uint64  `json:"hits"`
	Misses      uint64  `json:"misses"`
	Evictions   uint64  `json:"evictions"`   // 容量驱动的 LRU 淘汰次数
	Expirations uint64  `json:"expirations"` // TTL 过期清除次数
	HitRate     float64 `json:"hit_rate"`
}

// New 创建独立的缓存实例
//
// 参数:
//   - cfg: 缓存配置（容量、默认 TTL）
//   - opts: 可选参数 (Logger, Meter)
//
// 使用示例:
//
//	c, _ := cache.New(&cache.Config{Capacity: 1000}, cache.WithLogger(logger))
func New(cfg *Config, opts ...Option) (Cache, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	opt := options{}
	for _, o := range opts {
		o(&opt)
	}

	logger := opt.logger
	if logger == nil {
		logger = clog.Discard()
	}

	return newLRUCache(cfg, logger, opt.meter), nil
}
