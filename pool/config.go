package pool

import (
	"time"

	"github.com/ceyewan/aegis/xerrors"
)

// Config 资源池配置
type Config struct {
	// MinSize 构造时预热的资源数（默认 0）
	MinSize int32 `json:"min_size" yaml:"min_size"`

	// MaxSize 资源总数上限（默认 10）
	MaxSize int32 `json:"max_size" yaml:"max_size"`

	// AcquireTimeout 无资源可用时的最长等待时间（默认 5s）
	AcquireTimeout time.Duration `json:"acquire_timeout" yaml:"acquire_timeout"`
}

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		MaxSize:        10,
		AcquireTimeout: 5 * time.Second,
	}
}

// validate 校验并填充默认值（内部使用）
func (c *Config) validate() error {
	if c.MaxSize == 0 {
		c.MaxSize = 10
	}
	if c.MaxSize < 0 {
		return xerrors.Config("pool: max_size must be positive, got %d", c.MaxSize)
	}
	if c.MinSize < 0 {
		return xerrors.Config("pool: min_size must be non-negative, got %d", c.MinSize)
	}
	if c.MinSize > c.MaxSize {
		return xerrors.Config("pool: min_size %d exceeds max_size %d", c.MinSize, c.MaxSize)
	}
	if c.AcquireTimeout == 0 {
		c.AcquireTimeout = 5 * time.Second
	}
	if c.AcquireTimeout < 0 {
		return xerrors.Config("pool: acquire_timeout must be positive, got %v", c.AcquireTimeout)
	}
	return nil
}
