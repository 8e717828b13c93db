// Package pool 提供有界可复用资源池，适用于外部客户端句柄等昂贵资源。
//
// 资源由调用方提供的 Factory 创建和清理：
//   - 构造时立即创建 MinSize 个资源（压缩冷启动延迟）
//   - Acquire 优先复用空闲资源；没有空闲且未达 MaxSize 时新建；
//     达到上限时阻塞等待，超过 AcquireTimeout 返回 ErrExhausted
//   - Release 将资源放回空闲集；被 MarkInvalid 标记的资源改为执行
//     Cleanup 并丢弃
//   - Close 时对池内所有资源执行 Cleanup
//
// 不变量：任一时刻资源要么在空闲集、要么在活跃集，二者必居其一；
// 活跃数 + 空闲数 ≤ MaxSize；已借出的资源在归还前不会再次借出。
//
// 阻塞等待基于 jackc/puddle 的条件变量实现，没有轮询空转。
//
// ## 基本使用
//
//	factory := pool.NewFactory(
//		func(ctx context.Context) (any, error) { return dialLLMClient(ctx) },
//		func(resource any) { resource.(*llmClient).Close() },
//	)
//
//	p, _ := pool.New("llm-clients", factory, &pool.Config{
//		MinSize:        2,
//		MaxSize:        10,
//		AcquireTimeout: 3 * time.Second,
//	}, pool.WithLogger(logger))
//	defer p.Close()
//
//	res, err := p.Acquire(ctx)
//	if err != nil {
//		// xerrors.Is(err, pool.ErrExhausted) 时走降级
//	}
//	defer p.Release(res)
//
//	client := res.Value().(*llmClient)
package pool

import (
	"context"

	"github.com/ceyewan/aegis/clog"
)

// Pool 资源池核心接口
type Pool interface {
	// Acquire 借出一个资源
	// 无空闲资源且已达 MaxSize 时阻塞，直到有资源归还或超时；
	// ctx 自带的截止时间早于 AcquireTimeout 时以 ctx 为准
	Acquire(ctx context.Context) (*Resource, error)

	// Release 归还资源；被 MarkInvalid 标记过的资源会被清理并丢弃
	// Release 永不阻塞，重复归还是空操作
	Release(res *Resource)

	// MarkInvalid 将资源标记为失效（如底层连接已断开）
	// 资源在下次 Release 时执行 Cleanup 并离开池
	MarkInvalid(res *Resource)

	// Stats 返回池的当前状态
	Stats() Stats

	// Name 返回池名
	Name() string

	// Close 关闭池，清理所有资源
	// 会等待所有已借出的资源归还
	Close()
}

// Factory 资源的创建与清理回调
//
// Create 在预热和按需扩容时调用；Cleanup 在池关闭和资源失效时调用，
// 对进过池的每个资源恰好执行一次。
type Factory interface {
	Create(ctx context.Context) (any, error)
	Cleanup(resource any)
}

// funcFactory 用一对闭包实现 Factory（内部使用）
type funcFactory struct {
	create  func(ctx context.Context) (any, error)
	cleanup func(resource any)
}

func (f *funcFactory) Create(ctx context.Context) (any, error) {
	return f.create(ctx)
}

func (f *funcFactory) Cleanup(resource any) {
	if f.cleanup != nil {
		f.cleanup(resource)
	}
}

// NewFactory 用一对闭包构造 Factory，cleanup 可以为 nil
func NewFactory(create func(ctx context.Context) (any, error), cleanup func(resource any)) Factory {
	return &funcFactory{create: create, cleanup: cleanup}
}

// Stats 池的瞬时状态与累计计数
type Stats struct {
	Total    int32 `json:"total"`    // 池内资源总数（空闲 + 活跃 + 构造中）
	Idle     int32 `json:"idle"`     // 空闲资源数
	Acquired int32 `json:"acquired"` // 已借出资源数

	AcquireCount uint64 `json:"acquire_count"` // 成功借出累计
	TimeoutCount uint64 `json:"timeout_count"` // 超时失败累计
	InvalidCount uint64 `json:"invalid_count"` // 失效丢弃累计
}

// New 创建资源池
//
// 参数:
//   - name: 池名，用于日志和指标
//   - factory: 资源创建/清理回调
//   - cfg: 池配置（MinSize、MaxSize、AcquireTimeout）
//   - opts: 可选参数 (Logger, Meter)
//
// MinSize 个资源会在返回前同步创建完成，任何一个创建失败都会
// 清理已创建的资源并返回错误。
func New(name string, factory Factory, cfg *Config, opts ...Option) (Pool, error) {
	if name == "" {
		return nil, ErrNameEmpty
	}
	if factory == nil {
		return nil, ErrNilFactory
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

	return newPool(name, factory, cfg, logger, opt.meter)
}
