package breaker

import (
	"context"

	"github.com/ceyewan/aegis/clog"
	"github.com/ceyewan/aegis/metrics"
)

// Option 组件初始化选项函数
type Option func(*options)

// FallbackFunc 降级函数类型
//
// 熔断器打开时调用，返回降级结果。返回的 error 为 nil 表示降级成功，
// 调用方拿到降级值而不是 ErrOpenState。
//
// 参数:
//   - ctx: 上下文
//   - name: 依赖名
//   - err: 原始错误（ErrOpenState）
type FallbackFunc func(ctx context.Context, name string, err error) (any, error)

// options 组件初始化选项配置（内部使用）
type options struct {
	logger   clog.Logger
	meter    metrics.Group
	fallback FallbackFunc
}

// WithLogger 设置 Logger，传入 nil 时使用 clog.Discard()
// 内部会自动追加 namespace: "breaker"
func WithLogger(logger clog.Logger) Option {
	return func(o *options) {
		if logger == nil {
			o.logger = clog.Discard()
		} else {
			o.logger = logger.WithNamespace("breaker")
		}
	}
}

// WithMeter 注入指标分组，记录 calls/failures/rejections 与状态变更
func WithMeter(m metrics.Group) Option {
	return func(o *options) {
		o.meter = m
	}
}

// WithFallback 设置降级函数
//
// 使用示例:
//
//	brk, _ := breaker.New("openai", cfg,
//		breaker.WithFallback(func(ctx context.Context, name string, err error) (any, error) {
//			return cachedReply, nil
//		}),
//	)
func WithFallback(fallback FallbackFunc) Option {
	return func(o *options) {
		o.fallback = fallback
	}
}
