package breaker

import (
	"sync"

	"github.com/ceyewan/aegis/clog"
	"github.com/ceyewan/aegis/metrics"
)

// Registry 按依赖名管理熔断器实例
//
// 每个依赖名对应一个实例，首次使用时创建，进程生命周期内存活。
// 同名请求返回同一实例，配置仅在首次创建时生效。
type Registry struct {
	mu       sync.Mutex
	breakers map[string]Breaker

	logger    clog.Logger
	collector metrics.Collector
}

// RegistryOption Registry 选项函数
type RegistryOption func(*Registry)

// WithRegistryLogger 注入日志记录器，传递给所有新建的熔断器
func WithRegistryLogger(l clog.Logger) RegistryOption {
	return func(r *Registry) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithRegistryCollector 注入指标收集器
// 每个熔断器记录到 "breaker.<name>" 分组
func WithRegistryCollector(c metrics.Collector) RegistryOption {
	return func(r *Registry) {
		r.collector = c
	}
}

// NewRegistry 创建熔断器注册表
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		breakers: make(map[string]Breaker),
		logger:   clog.Discard(),
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Get 返回指定依赖的熔断器，不存在时以给定配置创建
//
// opts 仅在首次创建时生效（如 WithFallback）。
func (r *Registry) Get(name string, cfg *Config, opts ...Option) (Breaker, error) {
	if name == "" {
		return nil, ErrNameEmpty
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if b, ok := r.breakers[name]; ok {
		return b, nil
	}

	allOpts := []Option{WithLogger(r.logger)}
	if r.collector != nil {
		allOpts = append(allOpts, WithMeter(r.collector.Group("breaker."+name)))
	}
	allOpts = append(allOpts, opts...)

	b, err := New(name, cfg, allOpts...)
	if err != nil {
		return nil, err
	}

	r.breakers[name] = b
	return b, nil
}
