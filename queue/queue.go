// Package queue 提供进程内优先级任务队列，由固定数量的常驻 worker 消费。
//
// 任务按优先级出队，同级之间严格 FIFO。优先级不抢占：高优任务只影响
// 下一次出队的选择，已在运行的任务不会被打断。
//
// Submit 从不阻塞提交方。配置了 Capacity 时，队列满会立即返回
// ErrQueueFull（快速失败），由提交方决定降级策略。
//
// 任务 panic 会被逐任务捕获：任务记为 FAILED，worker 继续消费后续任务。
//
// ## 基本使用
//
//	q, _ := queue.New(&queue.Config{Workers: 4}, queue.WithLogger(logger))
//	q.Start()
//	defer q.Stop(true) // drain: 跑完积压任务再退出
//
//	id, _ := q.Submit(func(ctx context.Context) (any, error) {
//		return summarize(ctx, conversation)
//	}, queue.PriorityHigh)
//
//	// 稍后查询结果
//	if r, ok := q.Result(id); ok && r.Status == queue.StatusDone {
//		use(r.Value)
//	}
package queue

import (
	"context"
	"time"

	"github.com/ceyewan/aegis/clog"
)

// Task 队列任务负载
// ctx 在队列停止（非 drain）时被取消，任务应尽量尊重取消信号
type Task func(ctx context.Context) (any, error)

// Priority 任务优先级，数值越大越先出队
type Priority int

const (
	PriorityLow Priority = iota
	PriorityNormal
	PriorityHigh
	PriorityCritical
)

// String 返回优先级的可读名称
func (p Priority) String() string {
	switch p {
	case PriorityLow:
		return "low"
	case PriorityNormal:
		return "normal"
	case PriorityHigh:
		return "high"
	case PriorityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// Status 任务状态
// 状态单调推进：pending → running → done/failed，不存在其他边
type Status int

const (
	StatusPending Status = iota
	StatusRunning
	StatusDone
	StatusFailed
)

// String 返回状态的可读名称
func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusRunning:
		return "running"
	case StatusDone:
		return "done"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// TaskResult 任务记录快照
type TaskResult struct {
	ID         string    `json:"id"`
	Priority   Priority  `json:"priority"`
	Status     Status    `json:"status"`
	Value      any       `json:"value,omitempty"`
	Err        error     `json:"-"`
	EnqueuedAt time.Time `json:"enqueued_at"`
}

// Queue 优先级任务队列核心接口
type Queue interface {
	// Start 启动 Workers 个常驻 worker，重复调用是空操作
	Start()

	// Submit 提交任务并立即返回任务 id，从不阻塞
	// 队列已配置容量且已满时返回 ErrQueueFull；队列已停止时返回 ErrStopped
	Submit(task Task, priority Priority) (string, error)

	// Result 查询任务记录
	// 任务完成后记录保留 ResultTTL，过期后返回 false
	Result(id string) (TaskResult, bool)

	// Len 返回当前待执行任务数
	Len() int

	// Stop 停止队列并等待 worker 退出
	// drain 为 true 时先跑完所有积压任务；为 false 时丢弃积压任务，
	// worker 跑完手头任务后退出。重复调用是空操作。
	Stop(drain bool)
}

// New 创建队列实例（不自动启动，需显式调用 Start）
//
// 参数:
//   - cfg: 队列配置（Workers、Capacity、ResultTTL），nil 使用默认值
//   - opts: 可选参数 (Logger, Meter)
func New(cfg *Config, opts ...Option) (Queue, error) {
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

	return newQueue(cfg, logger, opt.meter), nil
}
