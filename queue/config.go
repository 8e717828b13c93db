package queue

import (
	"time"

	"github.com/ceyewan/aegis/xerrors"
)

// Config 队列配置
type Config struct {
	// Workers 常驻 worker 数（默认 4）
	Workers int `json:"workers" yaml:"workers"`

	// Capacity 待执行任务数上限，0 表示不设上限（默认 0）
	// 配置上限后，队列满时 Submit 立即返回 ErrQueueFull
	Capacity int `json:"capacity" yaml:"capacity"`

	// ResultTTL 任务完成后结果的保留时长（默认 5m）
	ResultTTL time.Duration `json:"result_ttl" yaml:"result_ttl"`
}

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		Workers:   4,
		ResultTTL: 5 * time.Minute,
	}
}

// validate 校验并填充默认值（内部使用）
func (c *Config) validate() error {
	if c.Workers == 0 {
		c.Workers = 4
	}
	if c.Workers < 0 {
		return xerrors.Config("queue: workers must be positive, got %d", c.Workers)
	}
	if c.Capacity < 0 {
		return xerrors.Config("queue: capacity must be non-negative, got %d", c.Capacity)
	}
	if c.ResultTTL == 0 {
		c.ResultTTL = 5 * time.Minute
	}
	if c.ResultTTL < 0 {
		return xerrors.Config("queue: result_ttl must be positive, got %v", c.ResultTTL)
	}
	return nil
}
