package metrics

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ceyewan/aegis/clog"
	"github.com/ceyewan/aegis/xerrors"
)

// collectorImpl 实现 Collector 接口（非导出）
type collectorImpl struct {
	cfg    *Config
	logger clog.Logger

	mu     sync.RWMutex
	groups map[string]*groupImpl

	server *http.Server
}

// newCollector 创建收集器实例（内部函数）
func newCollector(cfg *Config, logger clog.Logger) (Collector, error) {
	c := &collectorImpl{
		cfg:    cfg,
		logger: logger,
		groups: make(map[string]*groupImpl),
	}

	if cfg.Port > 0 {
		if err := c.startExposer(); err != nil {
			return nil, err
		}
	}

	return c, nil
}

func (c *collectorImpl) Group(name string) Group {
	c.mu.RLock()
	g, ok := c.groups[name]
	c.mu.RUnlock()
	if ok {
		return g
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if g, ok := c.groups[name]; ok {
		return g
	}
	g = newGroup(name)
	c.groups[name] = g
	return g
}

func (c *collectorImpl) Snapshot() Snapshot {
	c.mu.RLock()
	groups := make([]*groupImpl, 0, len(c.groups))
	for _, g := range c.groups {
		groups = append(groups, g)
	}
	c.mu.RUnlock()

	// 各分组逐个加锁拷贝，跨分组不保证原子性
	snap := make(Snapshot, len(groups))
	for _, g := range groups {
		snap[g.name] = g.Snapshot()
	}
	return snap
}

// startExposer 注册 Prometheus 桥接并启动暴露服务
func (c *collectorImpl) startExposer() error {
	reg := prometheus.NewRegistry()
	if err := reg.Register(newExporter(c.cfg.Namespace, c)); err != nil {
		return xerrors.Wrap(err, "metrics: failed to register exporter")
	}

	mux := http.NewServeMux()
	mux.Handle(c.cfg.Path, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	c.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", c.cfg.Port),
		Handler: mux,
	}

	go func() {
		c.logger.Info("metrics exposer started",
			clog.String("addr", c.server.Addr),
			clog.String("path", c.cfg.Path))
		if err := c.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			c.logger.Error("metrics exposer failed", clog.Error(err))
		}
	}()

	return nil
}

func (c *collectorImpl) Close() error {
	if c.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	return c.server.Shutdown(ctx)
}

// groupImpl 实现 Group 接口（非导出）
//
// 每个分组持有一把短锁保护三张聚合表。锁只在读写表项期间持有，
// 不会跨越调用方的业务逻辑。
type groupImpl struct {
	name string

	mu       sync.RWMutex
	counters map[string]float64
	gauges   map[string]float64
	timers   map[string]*timerAgg
}

// timerAgg Timer 样本的在线聚合（内部使用）
type timerAgg struct {
	count int64
	min   time.Duration
	max   time.Duration
	total time.Duration
}

func newGroup(name string) *groupImpl {
	return &groupImpl{
		name:     name,
		counters: make(map[string]float64),
		gauges:   make(map[string]float64),
		timers:   make(map[string]*timerAgg),
	}
}

func (g *groupImpl) Inc(name string) {
	g.Add(name, 1)
}

func (g *groupImpl) Add(name string, delta float64) {
	if delta < 0 {
		// 计数器单调递增
		return
	}
	g.mu.Lock()
	g.counters[name] += delta
	g.mu.Unlock()
}

func (g *groupImpl) SetGauge(name string, value float64) {
	g.mu.Lock()
	g.gauges[name] = value
	g.mu.Unlock()
}

func (g *groupImpl) Observe(name string, d time.Duration) {
	g.mu.Lock()
	defer g.mu.Unlock()

	agg, ok := g.timers[name]
	if !ok {
		agg = &timerAgg{min: d, max: d}
		g.timers[name] = agg
	}
	if d < agg.min || agg.count == 0 {
		agg.min = d
	}
	if d > agg.max {
		agg.max = d
	}
	agg.count++
	agg.total += d
}

func (g *groupImpl) Timer(name string) func() {
	start := time.Now()
	return func() {
		g.Observe(name, time.Since(start))
	}
}

func (g *groupImpl) Timed(name string, fn func() error) error {
	defer g.Timer(name)()
	return fn()
}

func (g *groupImpl) Snapshot() GroupSnapshot {
	g.mu.RLock()
	defer g.mu.RUnlock()

	snap := GroupSnapshot{
		Counters: make(map[string]float64, len(g.counters)),
		Gauges:   make(map[string]float64, len(g.gauges)),
		Timers:   make(map[string]TimerStats, len(g.timers)),
	}
	for k, v := range g.counters {
		snap.Counters[k] = v
	}
	for k, v := range g.gauges {
		snap.Gauges[k] = v
	}
	for k, agg := range g.timers {
		stats := TimerStats{
			Count: agg.count,
			Min:   agg.min,
			Max:   agg.max,
			Total: agg.total,
		}
		if agg.count > 0 {
			stats.Avg = agg.total / time.Duration(agg.count)
		}
		snap.Timers[k] = stats
	}
	return snap
}
