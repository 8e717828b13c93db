// Package clog 为 aegis 提供基于 slog 的结构化日志组件。
//
// 特性：
//   - 抽象接口，不暴露底层实现（slog）
//   - 支持层级命名空间，便于区分各韧性组件的日志来源
//   - 零外部依赖（仅依赖 Go 标准库）
//   - 采用函数式选项模式，与其余组件保持一致
//
// 基本使用：
//
//	logger, _ := clog.New(&clog.Config{
//	    Level:  "info",
//	    Format: "console",
//	    Output: "stdout",
//	})
//	logger.Info("cache ready", clog.String("name", "responses"))
//
// 各组件通过 WithLogger 选项接收 Logger，并自动派生自己的命名空间：
//
//	cacheClient, _ := cache.New(cfg, cache.WithLogger(logger))
//	// 日志中会包含 namespace=cache
package clog

import "fmt"

// Logger 日志接口，提供结构化日志记录功能
//
// 支持五个日志级别：Debug、Info、Warn、Error、Fatal。
//
// 创建子 Logger：
//
//	child := logger.With(clog.String("pool", "llm-clients"))
//	namespaced := logger.WithNamespace("pool")
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	Fatal(msg string, fields ...Field)

	// With 返回携带固定字段的子 Logger
	With(fields ...Field) Logger

	// WithNamespace 返回追加命名空间的子 Logger
	// 命名空间以 "." 连接，作为日志中的 namespace 字段
	WithNamespace(parts ...string) Logger

	// SetLevel 动态调整日志级别
	SetLevel(level Level) error
}

// New 创建一个新的 Logger 实例
//
// config - 日志配置，如果为 nil 会使用默认配置
// opts   - 函数式选项列表，用于命名空间、输出目标等配置
func New(config *Config, opts ...Option) (Logger, error) {
	if config == nil {
		config = DefaultConfig()
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	options := applyOptions(opts...)

	return newLogger(config, options)
}
