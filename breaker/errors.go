package breaker

import "github.com/ceyewan/aegis/xerrors"

// 错误定义
var (
	// ErrNameEmpty 依赖名为空
	ErrNameEmpty = xerrors.New("breaker: name is empty")

	// ErrNilOperation 被保护的函数为 nil
	ErrNilOperation = xerrors.New("breaker: operation is nil")

	// ErrOpenState 熔断器处于打开状态，调用被快速失败
	// 与被包装操作自身的错误可区分，调用方据此走降级逻辑
	ErrOpenState = xerrors.New("breaker: circuit breaker is open")
)
