package pool

import (
	"context"
	"sync/atomic"

	"github.com/jackc/puddle/v2"

	"github.com/ceyewan/aegis/clog"
	"github.com/ceyewan/aegis/metrics"
	"github.com/ceyewan/aegis/xerrors"
)

// Resource 借出的资源句柄
//
// 句柄只能归还一次，归还后不得再访问 Value。
type Resource struct {
	res      *puddle.Resource[any]
	invalid  atomic.Bool
	returned atomic.Bool
}

// Value 返回工厂创建的底层资源
func (r *Resource) Value() any {
	return r.res.Value()
}

// resourcePool 实现 Pool 接口（非导出）
type resourcePool struct {
	name   string
	cfg    *Config
	logger clog.Logger
	meter  metrics.Group

	inner *puddle.Pool[any]

	acquireCount atomic.Uint64
	timeoutCount atomic.Uint64
	invalidCount atomic.Uint64
}

// newPool 创建池实例并完成预热（内部函数）
func newPool(
	name string,
	factory Factory,
	cfg *Config,
	logger clog.Logger,
	meter metrics.Group,
) (Pool, error) {
	logger = logger.With(clog.String("pool", name))

	inner, err := puddle.NewPool(&puddle.Config[any]{
		Constructor: func(ctx context.Context) (any, error) {
			resource, err := factory.Create(ctx)
			if err != nil {
				logger.Error("resource creation failed", clog.Error(err))
				return nil, err
			}
			logger.Debug("resource created")
			return resource, nil
		},
		Destructor: func(resource any) {
			factory.Cleanup(resource)
			logger.Debug("resource cleaned up")
		},
		MaxSize: cfg.MaxSize,
	})
	if err != nil {
		return nil, xerrors.Wrap(err, "pool: failed to build")
	}

	p := &resourcePool{
		name:   name,
		cfg:    cfg,
		logger: logger,
		meter:  meter,
		inner:  inner,
	}

	// 预热：同步创建 MinSize 个空闲资源
	for i := int32(0); i < cfg.MinSize; i++ {
		if err := inner.CreateResource(context.Background()); err != nil {
			inner.Close()
			return nil, xerrors.Wrapf(err, "pool: warm-up failed at resource %d", i)
		}
	}

	logger.Info("pool created",
		clog.Int("min_size", int(cfg.MinSize)),
		clog.Int("max_size", int(cfg.MaxSize)),
		clog.Duration("acquire_timeout", cfg.AcquireTimeout))

	return p, nil
}

func (p *resourcePool) Acquire(ctx context.Context) (*Resource, error) {
	// 仅当调用方没有更早的截止时间时应用池级超时
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.cfg.AcquireTimeout)
		defer cancel()
	}

	res, err := p.inner.Acquire(ctx)
	if err != nil {
		switch {
		case xerrors.Is(err, puddle.ErrClosedPool):
			return nil, ErrClosed
		case xerrors.Is(err, context.DeadlineExceeded):
			p.timeoutCount.Add(1)
			p.count("timeouts")
			p.logger.Warn("acquire timed out",
				clog.Duration("timeout", p.cfg.AcquireTimeout))
			return nil, ErrExhausted
		default:
			return nil, err
		}
	}

	p.acquireCount.Add(1)
	p.count("acquires")
	p.gaugeUsage()

	return &Resource{res: res}, nil
}

func (p *resourcePool) Release(res *Resource) {
	if res == nil || !res.returned.CompareAndSwap(false, true) {
		return
	}

	if res.invalid.Load() {
		p.invalidCount.Add(1)
		p.count("invalidations")
		res.res.Destroy()
	} else {
		res.res.Release()
	}
	p.gaugeUsage()
}

func (p *resourcePool) MarkInvalid(res *Resource) {
	if res == nil {
		return
	}
	res.invalid.Store(true)
	p.logger.Debug("resource marked invalid")
}

func (p *resourcePool) Stats() Stats {
	stat := p.inner.Stat()
	return Stats{
		Total:        stat.TotalResources(),
		Idle:         stat.IdleResources(),
		Acquired:     stat.AcquiredResources(),
		AcquireCount: p.acquireCount.Load(),
		TimeoutCount: p.timeoutCount.Load(),
		InvalidCount: p.invalidCount.Load(),
	}
}

func (p *resourcePool) Name() string {
	return p.name
}

func (p *resourcePool) Close() {
	p.logger.Info("pool closing")
	p.inner.Close()
}

// count 记录组件指标，meter 未注入时为空操作。
func (p *resourcePool) count(name string) {
	if p.meter != nil {
		p.meter.Inc(name)
	}
}

// gaugeUsage 上报当前占用水位。
func (p *resourcePool) gaugeUsage() {
	if p.meter != nil {
		p.meter.SetGauge("acquired", float64(p.inner.Stat().AcquiredResources()))
	}
}
