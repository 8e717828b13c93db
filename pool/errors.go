package pool

import "github.com/ceyewan/aegis/xerrors"

// 错误定义
var (
	// ErrNameEmpty 池名为空
	ErrNameEmpty = xerrors.New("pool: name is empty")

	// ErrNilFactory 工厂为 nil
	ErrNilFactory = xerrors.New("pool: factory is nil")

	// ErrExhausted 等待超时仍无资源可用
	ErrExhausted = xerrors.New("pool: exhausted, acquire timed out")

	// ErrClosed 池已关闭
	ErrClosed = xerrors.New("pool: closed")
)
