package cache

import (
	"container/list"
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/ceyewan/aegis/clog"
	"github.com/ceyewan/aegis/metrics"
)

// entry 单个缓存条目
//
// 不变量：expiresAt 总是晚于 createdAt；一旦当前时间到达 expiresAt，
// 条目在逻辑上不存在，即使还未被物理清除。
type entry struct {
	key          string
	value        any
	createdAt    time.Time
	expiresAt    time.Time
	lastAccessed time.Time
}

// lruCache 基于双向链表 + 哈希表的 TTL/LRU 缓存实现（非导出）
//
// 链表头部为最近使用端，尾部为淘汰端。LRU 重排与过期判断属于
// check-then-act 序列，全部在同一把短锁内完成。
type lruCache struct {
	cfg    *Config
	logger clog.Logger
	meter  metrics.Group

	mu    sync.Mutex
	ll    *list.List               // 元素值为 *entry，Front 为 MRU
	items map[string]*list.Element

	hits        uint64
	misses      uint64
	evictions   uint64
	expirations uint64

	group singleflight.Group
}

func newLRUCache(cfg *Config, logger clog.Logger, meter metrics.Group) *lruCache {
	logger.Debug("cache created",
		clog.Int("capacity", cfg.Capacity),
		clog.Duration("default_ttl", cfg.DefaultTTL))

	return &lruCache{
		cfg:    cfg,
		logger: logger,
		meter:  meter,
		ll:     list.New(),
		items:  make(map[string]*list.Element, cfg.Capacity),
	}
}

func (c *lruCache) Get(ctx context.Context, key string) (any, bool) {
	now := time.Now()

	c.mu.Lock()
	el, ok := c.items[key]
	if !ok {
		c.misses++
		c.mu.Unlock()
		c.count("misses")
		return nil, false
	}

	ent := el.Value.(*entry)
	if !now.Before(ent.expiresAt) {
		// 过期条目视为不存在，顺带物理清除
		c.removeLocked(el)
		c.expirations++
		c.misses++
		c.mu.Unlock()
		c.count("expirations")
		c.count("misses")
		return nil, false
	}

	c.ll.MoveToFront(el)
	ent.lastAccessed = now
	c.hits++
	value := ent.value
	c.mu.Unlock()

	c.count("hits")
	return value, true
}

func (c *lruCache) Set(ctx context.Context, key string, value any, ttl time.Duration) {
	if ttl <= 0 {
		ttl = c.cfg.DefaultTTL
	}
	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		ent := el.Value.(*entry)
		ent.value = value
		ent.createdAt = now
		ent.expiresAt = now.Add(ttl)
		ent.lastAccessed = now
		c.ll.MoveToFront(el)
		return
	}

	if c.ll.Len() >= c.cfg.Capacity {
		c.purgeExpiredLocked(now)
	}
	if c.ll.Len() >= c.cfg.Capacity {
		c.evictOldestLocked()
	}

	el := c.ll.PushFront(&entry{
		key:          key,
		value:        value,
		createdAt:    now,
		expiresAt:    now.Add(ttl),
		lastAccessed: now,
	})
	c.items[key] = el
}

func (c *lruCache) GetOrLoad(ctx context.Context, key string, ttl time.Duration, loader LoaderFunc) (any, error) {
	if loader == nil {
		return nil, ErrNilLoader
	}

	if v, ok := c.Get(ctx, key); ok {
		return v, nil
	}

	// 并发未命中合并为一次 loader 调用
	v, err, _ := c.group.Do(key, func() (any, error) {
		// 合并窗口内可能已有同伴回填
		if v, ok := c.Get(ctx, key); ok {
			return v, nil
		}
		v, err := loader(ctx)
		if err != nil {
			return nil, err
		}
		c.Set(ctx, key, v, ttl)
		return v, nil
	})
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (c *lruCache) Delete(ctx context.Context, key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if !ok {
		return false
	}
	c.removeLocked(el)
	return true
}

func (c *lruCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ll.Len()
}

func (c *lruCache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Stats{
		Hits:        c.hits,
		Misses:      c.misses,
		Evictions:   c.evictions,
		Expirations: c.expirations,
	}
	if total := c.hits + c.misses; total > 0 {
		s.HitRate = float64(c.hits) / float64(total)
	}
	return s
}

// purgeExpiredLocked 从尾部向前清除所有过期条目，须持锁调用。
func (c *lruCache) purgeExpiredLocked(now time.Time) {
	for el := c.ll.Back(); el != nil; {
		prev := el.Prev()
		if ent := el.Value.(*entry); !now.Before(ent.expiresAt) {
			c.removeLocked(el)
			c.expirations++
		}
		el = prev
	}
}

// evictOldestLocked 淘汰链表尾部的 LRU 条目，须持锁调用。
func (c *lruCache) evictOldestLocked() {
	el := c.ll.Back()
	if el == nil {
		return
	}
	ent := el.Value.(*entry)
	c.removeLocked(el)
	c.evictions++
	c.count("evictions")

	c.logger.Debug("entry evicted", clog.String("key", ent.key))
}

// removeLocked 物理移除一个元素，须持锁调用。
func (c *lruCache) removeLocked(el *list.Element) {
	ent := el.Value.(*entry)
	c.ll.Remove(el)
	delete(c.items, ent.key)
}

// count 记录组件指标，meter 未注入时为空操作。
func (c *lruCache) count(name string) {
	if c.meter != nil {
		c.meter.Inc(name)
	}
}
