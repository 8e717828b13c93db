// Package config 提供统一的配置加载与热更新能力，基于 Viper 实现。
//
// 特性：
//   - 多源配置加载：YAML/JSON 文件、环境变量、.env 文件
//   - 配置优先级：环境变量 > .env > 环境特定配置 > 基础配置
//   - 热更新支持：监听配置文件变化，按 key 通知订阅方
//
// 基本使用：
//
//	loader := config.MustLoad(
//		config.WithConfigName("aegis"),
//		config.WithConfigPaths("./config"),
//		config.WithEnvPrefix("AEGIS"),
//	)
//
//	var cfg config.AppConfig
//	if err := loader.Unmarshal(&cfg); err != nil {
//		panic(err)
//	}
//
//	// 监听配置变化
//	ch, _ := loader.Watch(context.Background(), "log.level")
//	for event := range ch {
//		if lv, err := clog.ParseLevel(event.Value.(string)); err == nil {
//			logger.SetLevel(lv)
//		}
//	}
package config

import (
	"context"
	"time"
)

// Loader 定义配置加载器的核心行为
type Loader interface {
	// Load 加载配置并初始化内部状态
	Load(ctx context.Context) error

	// Get 获取原始配置值
	Get(key string) any

	// Unmarshal 将整个配置反序列化到结构体
	// 结构体字段按 yaml tag 匹配配置 key
	Unmarshal(v any) error

	// UnmarshalKey 将指定 Key 的配置反序列化到结构体
	UnmarshalKey(key string, v any) error

	// Watch 监听配置变化，通过 context 取消监听
	Watch(ctx context.Context, key string) (<-chan Event, error)
}

// Event 配置变更事件
type Event struct {
	Key       string // 配置 key
	Value     any    // 新值
	OldValue  any    // 旧值
	Source    string // 目前只有 "file"
	Timestamp time.Time
}

// New 创建配置加载器（不触发加载，需显式调用 Load）
func New(opts ...Option) (Loader, error) {
	return newLoader(opts...)
}

// MustLoad 创建加载器并立即加载，失败时 panic
// 适用于进程启动阶段，配置加载失败没有继续运行的意义
func MustLoad(opts ...Option) Loader {
	l, err := New(opts...)
	if err != nil {
		panic(err)
	}
	if err := l.Load(context.Background()); err != nil {
		panic(err)
	}
	return l
}
