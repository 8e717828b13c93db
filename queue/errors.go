package queue

import "github.com/ceyewan/aegis/xerrors"

// 错误定义
var (
	// ErrNilTask 任务为 nil
	ErrNilTask = xerrors.New("queue: task is nil")

	// ErrQueueFull 队列已达容量上限
	ErrQueueFull = xerrors.New("queue: full, submission rejected")

	// ErrStopped 队列已停止
	ErrStopped = xerrors.New("queue: stopped")
)
