// Package breaker 提供熔断器组件，按外部依赖名做故障隔离与自动恢复。
//
// 每个外部依赖（如 "openai"、"vector-db"）对应一个独立的熔断器实例，
// 依赖 A 的故障不会影响依赖 B 的熔断判断。状态机：
//
//   - CLOSED（初始）：调用透传；连续失败次数达到 FailureThreshold 时
//     转为 OPEN，并记录转换时间
//   - OPEN：在 RecoveryTimeout 内所有调用快速失败（不触碰被包装操作），
//     返回 ErrOpenState
//   - HALF_OPEN：冷却期满后的第一次调用作为探测放行，且只放行这一次；
//     成功回到 CLOSED，失败回到 OPEN 并重置冷却计时
//
// 失败计数在每次进入 CLOSED 或 OPEN 时清零。
//
// ## 基本使用
//
//	registry := breaker.NewRegistry(breaker.WithRegistryLogger(logger))
//	brk, _ := registry.Get("openai", &breaker.Config{
//		FailureThreshold: 3,
//		RecoveryTimeout:  5 * time.Second,
//	})
//
//	result, err := brk.Execute(ctx, func() (any, error) {
//		return client.Complete(prompt)
//	})
//	if xerrors.Is(err, breaker.ErrOpenState) {
//		// 熔断中，走降级逻辑
//	}
//
// ## 降级策略
//
//	brk, _ := registry.Get("openai", cfg,
//		breaker.WithFallback(func(ctx context.Context, name string, err error) (any, error) {
//			return cachedReply, nil
//		}),
//	)
package breaker

import (
	"context"
	"time"

	"github.com/ceyewan/aegis/clog"
	"github.com/ceyewan/aegis/xerrors"
)

// Breaker 单个外部依赖的熔断器句柄
type Breaker interface {
	// Execute 执行受熔断保护的函数
	// 熔断打开时不调用 fn，直接返回 ErrOpenState（或降级结果）
	Execute(ctx context.Context, fn func() (any, error)) (any, error)

	// State 返回当前熔断器状态
	State() State

	// Counts 返回当前窗口的调用统计
	Counts() Counts

	// Name 返回熔断器对应的依赖名
	Name() string
}

// State 熔断器状态
type State int

const (
	// StateClosed 闭合状态（正常）
	StateClosed State = iota
	// StateHalfOpen 半开状态（探测恢复）
	StateHalfOpen
	// StateOpen 打开状态（熔断中）
	StateOpen
)

// String 返回状态的字符串表示
func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateHalfOpen:
		return "half_open"
	case StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

// Counts 调用统计
//
// ConsecutiveFailures 在每次进入 CLOSED 或 OPEN 时清零。
type Counts struct {
	Requests             uint32
	TotalSuccesses       uint32
	TotalFailures        uint32
	ConsecutiveSuccesses uint32
	ConsecutiveFailures  uint32
}

// Config 熔断器配置
type Config struct {
	// FailureThreshold 触发熔断的连续失败次数（默认 5）
	FailureThreshold uint32 `json:"failure_threshold" yaml:"failure_threshold"`

	// RecoveryTimeout 打开状态持续时间（默认 30s）
	// 从进入 OPEN 的时刻起计，期满后下一次调用进入半开探测
	RecoveryTimeout time.Duration `json:"recovery_timeout" yaml:"recovery_timeout"`
}

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		FailureThreshold: 5,
		RecoveryTimeout:  30 * time.Second,
	}
}

// validate 校验并填充默认值（内部使用）
func (c *Config) validate() error {
	if c.FailureThreshold == 0 {
		c.FailureThreshold = 5
	}
	if c.RecoveryTimeout == 0 {
		c.RecoveryTimeout = 30 * time.Second
	}
	if c.RecoveryTimeout < 0 {
		return xerrors.Config("breaker: recovery_timeout must be positive, got %v", c.RecoveryTimeout)
	}
	return nil
}

// New 创建单个熔断器实例
//
// name 为依赖名，不能为空。通常通过 Registry 统一管理，直接使用
// New 适合只保护单个依赖的场景。
func New(name string, cfg *Config, opts ...Option) (Breaker, error) {
	if name == "" {
		return nil, ErrNameEmpty
	}
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

	return newBreaker(name, cfg, logger, opt.meter, opt.fallback), nil
}
