package config

import "github.com/ceyewan/aegis/xerrors"

// 错误定义
var (
	// ErrEmptyConfig 所有来源加载后配置仍为空
	ErrEmptyConfig = xerrors.New("config: no settings loaded from any source")
)
