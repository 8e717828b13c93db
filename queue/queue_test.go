package queue

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ceyewan/aegis/xerrors"
)

// waitStatus 轮询等待任务到达目标状态
func waitStatus(t *testing.T, q Queue, id string, want Status) TaskResult {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if r, ok := q.Result(id); ok && r.Status == want {
			return r
		}
		time.Sleep(5 * time.Millisecond)
	}
	r, _ := q.Result(id)
	t.Fatalf("task %s did not reach %s, last status: %s", id, want, r.Status)
	return TaskResult{}
}

func TestNewValidation(t *testing.T) {
	_, err := New(&Config{Workers: -1})
	require.Error(t, err)
	assert.True(t, xerrors.IsConfig(err))

	_, err = New(&Config{Capacity: -1})
	require.Error(t, err)
	assert.True(t, xerrors.IsConfig(err))
}

func TestSubmitNilTask(t *testing.T) {
	q, err := New(nil)
	require.NoError(t, err)
	defer q.Stop(false)

	_, err = q.Submit(nil, PriorityNormal)
	assert.ErrorIs(t, err, ErrNilTask)
}

func TestSubmitAndResult(t *testing.T) {
	q, err := New(&Config{Workers: 2})
	require.NoError(t, err)
	q.Start()
	defer q.Stop(true)

	id, err := q.Submit(func(ctx context.Context) (any, error) {
		return 42, nil
	}, PriorityNormal)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	r := waitStatus(t, q, id, StatusDone)
	assert.Equal(t, 42, r.Value)
	assert.NoError(t, r.Err)
	assert.Equal(t, PriorityNormal, r.Priority)
}

func TestPriorityOrdering(t *testing.T) {
	q, err := New(&Config{Workers: 1})
	require.NoError(t, err)

	var (
		mu    sync.Mutex
		order []string
	)
	record := func(name string) Task {
		return func(ctx context.Context) (any, error) {
			mu.Lock()
			order = append(order, name)
			mu.Unlock()
			return nil, nil
		}
	}

	// 先提交再启动，确保三个任务同时在队列中竞争出队顺序
	_, err = q.Submit(record("A"), PriorityNormal)
	require.NoError(t, err)
	_, err = q.Submit(record("B"), PriorityCritical)
	require.NoError(t, err)
	idC, err := q.Submit(record("C"), PriorityNormal)
	require.NoError(t, err)

	q.Start()
	waitStatus(t, q, idC, StatusDone)
	q.Stop(true)

	// 高优先级先执行，同优先级严格 FIFO
	assert.Equal(t, []string{"B", "A", "C"}, order)
}

func TestSamePriorityFIFO(t *testing.T) {
	q, err := New(&Config{Workers: 1})
	require.NoError(t, err)

	var (
		mu    sync.Mutex
		order []int
	)
	var lastID string
	for i := 0; i < 10; i++ {
		n := i
		lastID, err = q.Submit(func(ctx context.Context) (any, error) {
			mu.Lock()
			order = append(order, n)
			mu.Unlock()
			return nil, nil
		}, PriorityNormal)
		require.NoError(t, err)
	}

	q.Start()
	waitStatus(t, q, lastID, StatusDone)
	q.Stop(true)

	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, order)
}

func TestTaskFailure(t *testing.T) {
	q, err := New(&Config{Workers: 1})
	require.NoError(t, err)
	q.Start()
	defer q.Stop(true)

	id, err := q.Submit(func(ctx context.Context) (any, error) {
		return nil, xerrors.New("upstream unavailable")
	}, PriorityNormal)
	require.NoError(t, err)

	r := waitStatus(t, q, id, StatusFailed)
	assert.ErrorContains(t, r.Err, "upstream unavailable")
	assert.Nil(t, r.Value)
}

func TestPanicDoesNotKillWorker(t *testing.T) {
	q, err := New(&Config{Workers: 1})
	require.NoError(t, err)
	q.Start()
	defer q.Stop(true)

	panicID, err := q.Submit(func(ctx context.Context) (any, error) {
		panic("boom")
	}, PriorityNormal)
	require.NoError(t, err)

	okID, err := q.Submit(func(ctx context.Context) (any, error) {
		return "still alive", nil
	}, PriorityNormal)
	require.NoError(t, err)

	r := waitStatus(t, q, panicID, StatusFailed)
	assert.ErrorContains(t, r.Err, "panicked")
	assert.ErrorContains(t, r.Err, "boom")

	// 同一个 worker 继续消费后续任务
	r = waitStatus(t, q, okID, StatusDone)
	assert.Equal(t, "still alive", r.Value)
}

func TestBoundedQueueRejects(t *testing.T) {
	q, err := New(&Config{Workers: 1, Capacity: 2})
	require.NoError(t, err)
	// 不启动，任务堆积触发容量上限

	_, err = q.Submit(func(ctx context.Context) (any, error) { return nil, nil }, PriorityNormal)
	require.NoError(t, err)
	_, err = q.Submit(func(ctx context.Context) (any, error) { return nil, nil }, PriorityNormal)
	require.NoError(t, err)

	_, err = q.Submit(func(ctx context.Context) (any, error) { return nil, nil }, PriorityNormal)
	assert.ErrorIs(t, err, ErrQueueFull)
	assert.Equal(t, 2, q.Len())

	q.Stop(false)
}

func TestStopDrain(t *testing.T) {
	q, err := New(&Config{Workers: 1})
	require.NoError(t, err)

	var executed atomic.Int32
	for i := 0; i < 5; i++ {
		_, err = q.Submit(func(ctx context.Context) (any, error) {
			executed.Add(1)
			return nil, nil
		}, PriorityNormal)
		require.NoError(t, err)
	}

	q.Start()
	q.Stop(true)

	// drain 模式：积压任务全部执行完
	assert.Equal(t, int32(5), executed.Load())
	assert.Equal(t, 0, q.Len())
}

func TestStopDiscard(t *testing.T) {
	q, err := New(&Config{Workers: 1})
	require.NoError(t, err)

	block := make(chan struct{})
	var executed atomic.Int32

	_, err = q.Submit(func(ctx context.Context) (any, error) {
		executed.Add(1)
		<-block
		return nil, nil
	}, PriorityNormal)
	require.NoError(t, err)

	q.Start()
	// 等首个任务占住唯一的 worker
	require.Eventually(t, func() bool { return executed.Load() == 1 },
		time.Second, 5*time.Millisecond)

	for i := 0; i < 3; i++ {
		_, err = q.Submit(func(ctx context.Context) (any, error) {
			executed.Add(1)
			return nil, nil
		}, PriorityNormal)
		require.NoError(t, err)
	}

	done := make(chan struct{})
	go func() {
		q.Stop(false)
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	close(block) // 放行手头任务

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop(false) did not return")
	}

	// 积压任务被丢弃，只有手头任务执行完
	assert.Equal(t, int32(1), executed.Load())
}

func TestSubmitAfterStop(t *testing.T) {
	q, err := New(nil)
	require.NoError(t, err)
	q.Start()
	q.Stop(true)

	_, err = q.Submit(func(ctx context.Context) (any, error) { return nil, nil }, PriorityNormal)
	assert.ErrorIs(t, err, ErrStopped)
}

func TestStatusTransitions(t *testing.T) {
	q, err := New(&Config{Workers: 1})
	require.NoError(t, err)

	release := make(chan struct{})
	id, err := q.Submit(func(ctx context.Context) (any, error) {
		<-release
		return "ok", nil
	}, PriorityNormal)
	require.NoError(t, err)

	// 未启动时保持 pending
	r, ok := q.Result(id)
	require.True(t, ok)
	assert.Equal(t, StatusPending, r.Status)

	q.Start()
	waitStatus(t, q, id, StatusRunning)

	close(release)
	r = waitStatus(t, q, id, StatusDone)
	assert.Equal(t, "ok", r.Value)

	q.Stop(true)
}

func TestResultExpiry(t *testing.T) {
	q, err := New(&Config{Workers: 1, ResultTTL: 30 * time.Millisecond})
	require.NoError(t, err)
	q.Start()
	defer q.Stop(true)

	id, err := q.Submit(func(ctx context.Context) (any, error) {
		return nil, nil
	}, PriorityNormal)
	require.NoError(t, err)
	waitStatus(t, q, id, StatusDone)

	time.Sleep(60 * time.Millisecond)

	// 惰性清理在下一次访问时触发
	_, ok := q.Result(id)
	assert.False(t, ok)
}

func TestConcurrentSubmitters(t *testing.T) {
	q, err := New(&Config{Workers: 4})
	require.NoError(t, err)
	q.Start()

	const total = 100
	var done atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < total; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, err := q.Submit(func(ctx context.Context) (any, error) {
				done.Add(1)
				return nil, nil
			}, Priority(n%4))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	q.Stop(true)
	assert.Equal(t, int32(total), done.Load())
}
