package cache

import (
	"sync"

	"github.com/ceyewan/aegis/clog"
	"github.com/ceyewan/aegis/metrics"
)

// Registry 按名称管理多个相互独立的缓存实例
//
// 同名请求返回同一实例；容量仅在首次创建时生效，后续请求的
// capacity 参数被忽略。Registry 本身是并发安全的。
type Registry struct {
	mu     sync.Mutex
	caches map[string]Cache

	logger    clog.Logger
	collector metrics.Collector
}

// RegistryOption Registry 选项函数
type RegistryOption func(*Registry)

// WithRegistryLogger 注入日志记录器，传递给所有新建的缓存实例
func WithRegistryLogger(l clog.Logger) RegistryOption {
	return func(r *Registry) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithRegistryCollector 注入指标收集器
// 每个缓存实例记录到 "cache.<name>" 分组
func WithRegistryCollector(c metrics.Collector) RegistryOption {
	return func(r *Registry) {
		r.collector = c
	}
}

// NewRegistry 创建缓存注册表
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		caches: make(map[string]Cache),
		logger: clog.Discard(),
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Get 返回指定名称的缓存实例，不存在时以给定容量创建
func (r *Registry) Get(name string, capacity int) (Cache, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if c, ok := r.caches[name]; ok {
		return c, nil
	}

	opts := []Option{WithLogger(r.logger.With(clog.String("cache", name)))}
	if r.collector != nil {
		opts = append(opts, WithMeter(r.collector.Group("cache."+name)))
	}

	c, err := New(&Config{Capacity: capacity}, opts...)
	if err != nil {
		return nil, err
	}

	r.logger.Info("cache registered",
		clog.String("name", name),
		clog.Int("capacity", capacity))

	r.caches[name] = c
	return c, nil
}
