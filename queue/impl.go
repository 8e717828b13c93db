package queue

import (
	"container/heap"
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ceyewan/aegis/clog"
	"github.com/ceyewan/aegis/metrics"
	"github.com/ceyewan/aegis/xerrors"
)

// taskRecord 任务记录（内部可变状态，对外只暴露快照）
type taskRecord struct {
	result TaskResult
	doneAt time.Time
}

// decisionQueue 实现 Queue 接口（非导出）
type decisionQueue struct {
	cfg    *Config
	logger clog.Logger
	meter  metrics.Group

	mu      sync.Mutex
	pending taskHeap
	seq     uint64
	records map[string]*taskRecord
	stopped bool

	// signal 唤醒空闲 worker；容量为 Workers，缓冲满说明
	// 已有足够的未消费唤醒信号，丢弃是安全的
	signal chan struct{}
	stopCh chan struct{}

	// taskCtx 在非 drain 停止时取消，透传给任务负载
	taskCtx    context.Context
	taskCancel context.CancelFunc

	startOnce sync.Once
	stopOnce  sync.Once
	wg        sync.WaitGroup
}

func newQueue(cfg *Config, logger clog.Logger, meter metrics.Group) *decisionQueue {
	taskCtx, taskCancel := context.WithCancel(context.Background())
	return &decisionQueue{
		cfg:        cfg,
		logger:     logger,
		meter:      meter,
		records:    make(map[string]*taskRecord),
		signal:     make(chan struct{}, cfg.Workers),
		stopCh:     make(chan struct{}),
		taskCtx:    taskCtx,
		taskCancel: taskCancel,
	}
}

func (q *decisionQueue) Start() {
	q.startOnce.Do(func() {
		for i := 0; i < q.cfg.Workers; i++ {
			q.wg.Add(1)
			go q.worker(i)
		}
		q.logger.Info("queue started",
			clog.Int("workers", q.cfg.Workers),
			clog.Int("capacity", q.cfg.Capacity))
	})
}

func (q *decisionQueue) Submit(task Task, priority Priority) (string, error) {
	if task == nil {
		return "", ErrNilTask
	}

	q.mu.Lock()
	if q.stopped {
		q.mu.Unlock()
		return "", ErrStopped
	}
	if q.cfg.Capacity > 0 && q.pending.Len() >= q.cfg.Capacity {
		q.mu.Unlock()
		q.count("rejected")
		q.logger.Warn("submission rejected, queue full",
			clog.Int("capacity", q.cfg.Capacity))
		return "", ErrQueueFull
	}

	id := uuid.NewString()
	q.seq++
	item := &taskItem{
		id:         id,
		task:       task,
		priority:   priority,
		sequence:   q.seq,
		enqueuedAt: time.Now(),
	}
	heap.Push(&q.pending, item)
	q.records[id] = &taskRecord{result: TaskResult{
		ID:         id,
		Priority:   priority,
		Status:     StatusPending,
		EnqueuedAt: item.enqueuedAt,
	}}
	q.sweepLocked()
	q.mu.Unlock()

	q.count("submitted")
	q.wakeup()

	q.logger.Debug("task submitted",
		clog.String("task_id", id),
		clog.String("priority", priority.String()))
	return id, nil
}

func (q *decisionQueue) Result(id string) (TaskResult, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.sweepLocked()

	rec, ok := q.records[id]
	if !ok {
		return TaskResult{}, false
	}
	return rec.result, true
}

func (q *decisionQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.pending.Len()
}

func (q *decisionQueue) Stop(drain bool) {
	q.stopOnce.Do(func() {
		q.mu.Lock()
		q.stopped = true
		if !drain {
			// 丢弃积压任务，记录保持 pending 状态
			discarded := q.pending.Len()
			q.pending = nil
			if discarded > 0 {
				q.logger.Warn("pending tasks discarded",
					clog.Int("count", discarded))
			}
			q.taskCancel()
		}
		q.mu.Unlock()

		close(q.stopCh)
		q.wg.Wait()
		q.taskCancel()
		q.logger.Info("queue stopped", clog.Bool("drain", drain))
	})
}

// worker 常驻消费循环：取最高优先级任务执行，取不到则等待唤醒
func (q *decisionQueue) worker(id int) {
	defer q.wg.Done()

	for {
		item, ok := q.pop()
		if ok {
			q.run(item)
			continue
		}

		select {
		case <-q.signal:
		case <-q.stopCh:
			// drain 模式下清空积压再退出
			for {
				item, ok := q.pop()
				if !ok {
					q.logger.Debug("worker exiting", clog.Int("worker_id", id))
					return
				}
				q.run(item)
			}
		}
	}
}

func (q *decisionQueue) pop() (*taskItem, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.pending.Len() == 0 {
		return nil, false
	}
	item := heap.Pop(&q.pending).(*taskItem)
	if rec, ok := q.records[item.id]; ok {
		rec.result.Status = StatusRunning
	}
	return item, true
}

// run 执行单个任务，panic 被捕获并记为 FAILED，不影响 worker 存活
func (q *decisionQueue) run(item *taskItem) {
	start := time.Now()

	var (
		value any
		err   error
	)
	func() {
		defer func() {
			if r := recover(); r != nil {
				err = xerrors.Newf("queue: task panicked: %v", r)
				q.logger.Error("task panicked",
					clog.String("task_id", item.id),
					clog.Any("panic", r))
			}
		}()
		value, err = item.task(q.taskCtx)
	}()

	elapsed := time.Since(start)
	if q.meter != nil {
		q.meter.Observe("task_duration", elapsed)
	}

	q.mu.Lock()
	if rec, ok := q.records[item.id]; ok {
		if err != nil {
			rec.result.Status = StatusFailed
			rec.result.Err = err
		} else {
			rec.result.Status = StatusDone
			rec.result.Value = value
		}
		rec.doneAt = time.Now()
	}
	q.mu.Unlock()

	if err != nil {
		q.count("failed")
		q.logger.Warn("task failed",
			clog.String("task_id", item.id),
			clog.Duration("elapsed", elapsed),
			clog.Error(err))
		return
	}
	q.count("completed")
	q.logger.Debug("task completed",
		clog.String("task_id", item.id),
		clog.Duration("elapsed", elapsed))
}

// sweepLocked 惰性清理过期的完成记录，调用方须持锁
func (q *decisionQueue) sweepLocked() {
	cutoff := time.Now().Add(-q.cfg.ResultTTL)
	for id, rec := range q.records {
		if !rec.doneAt.IsZero() && rec.doneAt.Before(cutoff) {
			delete(q.records, id)
		}
	}
}

// wakeup 非阻塞唤醒一个空闲 worker
func (q *decisionQueue) wakeup() {
	select {
	case q.signal <- struct{}{}:
	default:
	}
}

// count 记录组件指标，meter 未注入时为空操作
func (q *decisionQueue) count(name string) {
	if q.meter != nil {
		q.meter.Inc(name)
	}
}
