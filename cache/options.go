package cache

import (
	"github.com/ceyewan/aegis/clog"
	"github.com/ceyewan/aegis/metrics"
)

// Option 缓存组件选项函数
type Option func(*options)

// options 选项结构（内部使用）
type options struct {
	logger clog.Logger
	meter  metrics.Group
}

// WithLogger 注入日志记录器
// 内部会自动追加 namespace: "cache"
func WithLogger(l clog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l.WithNamespace("cache")
		}
	}
}

// WithMeter 注入指标分组，缓存会记录 hits/misses/evictions/expirations 计数
func WithMeter(m metrics.Group) Option {
	return func(o *options) {
		o.meter = m
	}
}
