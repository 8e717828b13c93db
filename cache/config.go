package cache

import (
	"time"

	"github.com/ceyewan/aegis/xerrors"
)

const (
	// defaultCapacity 未指定容量时的默认条目数
	defaultCapacity = 1024

	// defaultTTL 未指定 TTL 时的默认过期时间
	defaultTTL = 5 * time.Minute
)

// Config 缓存实例配置
type Config struct {
	// Capacity 最大条目数（默认 1024）
	Capacity int `json:"capacity" yaml:"capacity"`

	// DefaultTTL Set 未指定 ttl 时使用的过期时间（默认 5m）
	DefaultTTL time.Duration `json:"default_ttl" yaml:"default_ttl"`
}

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		Capacity:   defaultCapacity,
		DefaultTTL: defaultTTL,
	}
}

// validate 校验并填充默认值（内部使用）
func (c *Config) validate() error {
	if c.Capacity == 0 {
		c.Capacity = defaultCapacity
	}
	if c.Capacity < 0 {
		return xerrors.Config("cache: capacity must be positive, got %d", c.Capacity)
	}
	if c.DefaultTTL == 0 {
		c.DefaultTTL = defaultTTL
	}
	if c.DefaultTTL < 0 {
		return xerrors.Config("cache: default_ttl must be positive, got %v", c.DefaultTTL)
	}
	return nil
}
