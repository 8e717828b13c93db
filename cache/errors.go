package cache

import "github.com/ceyewan/aegis/xerrors"

// 错误定义
var (
	// ErrNilLoader GetOrLoad 传入了 nil loader
	ErrNilLoader = xerrors.New("cache: loader is nil")
)
