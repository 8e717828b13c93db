// Package metrics 为 aegis 提供进程内指标收集能力。
//
// 与面向后端的指标 SDK 不同，本组件的聚合结果在进程内随时可查：
// 每个命名分组（Group）维护 Counter（单调累加）、Gauge（末次写入生效）
// 和 Timer（耗时样本聚合为 count/min/max/avg），Snapshot 随时返回当前
// 聚合值，读取不会被写入方长期阻塞。
//
// 可选地，快照可以桥接为 Prometheus 指标并通过 HTTP 暴露
// （Config.Port / Config.Path），桥接实现见 exporter.go。
//
// 快速开始：
//
//	collector, _ := metrics.New(&metrics.Config{Namespace: "aegis"})
//	g := collector.Group("cache")
//
//	g.Inc("hits")
//	g.SetGauge("entries", 42)
//
//	defer g.Timer("lookup")()   // 作用域计时，任何退出路径都会记录
//
//	snap := collector.Snapshot()
package metrics

import (
	"time"

	"github.com/ceyewan/aegis/clog"
)

// Collector 指标收集器核心接口
//
// 一个 Collector 管理多个命名分组，分组按需创建并在进程生命周期内复用。
type Collector interface {
	// Group 返回指定名称的指标分组，不存在时创建
	Group(name string) Group

	// Snapshot 返回所有分组的聚合快照
	// 快照是各分组状态的拷贝，跨分组不保证同一瞬间的原子性
	Snapshot() Snapshot

	// Close 停止指标暴露服务（如已启动）
	Close() error
}

// Group 单个命名分组的指标句柄
type Group interface {
	// Inc 将计数器加 1
	Inc(name string)

	// Add 将计数器增加给定值（负数会被忽略，计数器单调递增）
	Add(name string, delta float64)

	// SetGauge 设置仪表值，末次写入生效
	SetGauge(name string, value float64)

	// Observe 记录一个耗时样本
	Observe(name string, d time.Duration)

	// Timer 返回作用域计时函数，与 defer 配合使用：
	//
	//	defer g.Timer("external_call")()
	//
	// 无论正常返回还是 panic，耗时都会记入 name 对应的 Timer。
	Timer(name string) func()

	// Timed 对 fn 计时执行，fn 的错误原样返回，耗时总会被记录
	Timed(name string, fn func() error) error

	// Snapshot 返回本分组的聚合快照
	Snapshot() GroupSnapshot
}

// TimerStats Timer 样本的聚合统计
type TimerStats struct {
	Count int64         `json:"count"`
	Min   time.Duration `json:"min"`
	Max   time.Duration `json:"max"`
	Avg   time.Duration `json:"avg"`
	Total time.Duration `json:"total"`
}

// GroupSnapshot 单个分组的聚合快照
type GroupSnapshot struct {
	Counters map[string]float64    `json:"counters"`
	Gauges   map[string]float64    `json:"gauges"`
	Timers   map[string]TimerStats `json:"timers"`
}

// Snapshot 全量快照，按分组名索引
type Snapshot map[string]GroupSnapshot

// New 创建 Collector 实例
//
// cfg 为 nil 时使用默认配置（无 HTTP 暴露）。
// 当 cfg.Port > 0 且 cfg.Path 非空时，会启动 Prometheus 暴露服务。
func New(cfg *Config, opts ...Option) (Collector, error) {
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

	return newCollector(cfg, logger)
}
