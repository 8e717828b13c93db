package breaker

import (
	"context"

	"github.com/sony/gobreaker/v2"

	"github.com/ceyewan/aegis/clog"
	"github.com/ceyewan/aegis/metrics"
	"github.com/ceyewan/aegis/xerrors"
)

// circuitBreaker 熔断器实现（非导出）
type circuitBreaker struct {
	name     string
	cfg      *Config
	logger   clog.Logger
	meter    metrics.Group
	fallback FallbackFunc

	cb *gobreaker.CircuitBreaker[any]
}

// newBreaker 创建熔断器实例（内部函数）
// 注意：cfg 已在 New() 中通过 validate() 填充默认值
func newBreaker(
	name string,
	cfg *Config,
	logger clog.Logger,
	meter metrics.Group,
	fallback FallbackFunc,
) Breaker {
	b := &circuitBreaker{
		name:     name,
		cfg:      cfg,
		logger:   logger,
		meter:    meter,
		fallback: fallback,
	}

	settings := gobreaker.Settings{
		Name: name,
		// 半开状态只放行一次探测调用
		MaxRequests: 1,
		Timeout:     cfg.RecoveryTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			b.onStateChange(name, from, to)
		},
	}
	b.cb = gobreaker.NewCircuitBreaker[any](settings)

	logger.Info("circuit breaker created",
		clog.String("dependency", name),
		clog.Int("failure_threshold", int(cfg.FailureThreshold)),
		clog.Duration("recovery_timeout", cfg.RecoveryTimeout))

	return b
}

// Execute 执行受熔断保护的函数
func (b *circuitBreaker) Execute(ctx context.Context, fn func() (any, error)) (any, error) {
	if fn == nil {
		return nil, ErrNilOperation
	}

	var stop func()
	if b.meter != nil {
		b.meter.Inc("calls")
		stop = b.meter.Timer("call")
	}

	result, err := b.cb.Execute(fn)

	if stop != nil {
		stop()
	}

	// gobreaker 的两种拒绝都属于"熔断中"：OPEN 快速失败，
	// 以及半开探测名额已被占用
	if err != nil && (xerrors.Is(err, gobreaker.ErrOpenState) || xerrors.Is(err, gobreaker.ErrTooManyRequests)) {
		if b.meter != nil {
			b.meter.Inc("rejections")
		}
		b.logger.Warn("call rejected, circuit open",
			clog.String("dependency", b.name))

		if b.fallback != nil {
			return b.fallback(ctx, b.name, ErrOpenState)
		}
		return nil, ErrOpenState
	}

	if err != nil && b.meter != nil {
		b.meter.Inc("failures")
	}

	return result, err
}

// State 返回当前熔断器状态
func (b *circuitBreaker) State() State {
	switch b.cb.State() {
	case gobreaker.StateClosed:
		return StateClosed
	case gobreaker.StateHalfOpen:
		return StateHalfOpen
	case gobreaker.StateOpen:
		return StateOpen
	default:
		return StateClosed
	}
}

// Counts 返回当前窗口的调用统计
func (b *circuitBreaker) Counts() Counts {
	c := b.cb.Counts()
	return Counts{
		Requests:             c.Requests,
		TotalSuccesses:       c.TotalSuccesses,
		TotalFailures:        c.TotalFailures,
		ConsecutiveSuccesses: c.ConsecutiveSuccesses,
		ConsecutiveFailures:  c.ConsecutiveFailures,
	}
}

// Name 返回熔断器对应的依赖名
func (b *circuitBreaker) Name() string {
	return b.name
}

// onStateChange 状态变更回调
func (b *circuitBreaker) onStateChange(name string, from gobreaker.State, to gobreaker.State) {
	b.logger.Info("circuit breaker state changed",
		clog.String("dependency", name),
		clog.String("from", stateToString(from)),
		clog.String("to", stateToString(to)))

	if b.meter != nil {
		b.meter.Inc("state_changes")
		b.meter.SetGauge("state", float64(stateToGauge(to)))
	}
}

// stateToString 将 gobreaker.State 转换为字符串
func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half_open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

// stateToGauge 将状态映射为仪表值：0=closed, 1=half_open, 2=open
func stateToGauge(state gobreaker.State) int {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}
