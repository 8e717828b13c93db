package metrics

import (
	"strings"

	"github.com/ceyewan/aegis/xerrors"
)

// Config 指标组件配置
type Config struct {
	// Namespace Prometheus 指标名前缀（默认 "aegis"）
	Namespace string `json:"namespace" yaml:"namespace"`

	// Port Prometheus 暴露端口，0 表示不启动 HTTP 服务
	Port int `json:"port" yaml:"port"`

	// Path 指标路径（默认 "/metrics"，仅在 Port > 0 时生效）
	Path string `json:"path" yaml:"path"`
}

// DefaultConfig 返回默认配置（仅进程内聚合，不暴露 HTTP）
func DefaultConfig() *Config {
	return &Config{
		Namespace: "aegis",
		Path:      "/metrics",
	}
}

// validate 校验并填充默认值（内部使用）
func (c *Config) validate() error {
	if c.Namespace == "" {
		c.Namespace = "aegis"
	}
	if c.Path == "" {
		c.Path = "/metrics"
	}
	if c.Port < 0 || c.Port > 65535 {
		return xerrors.Config("metrics: invalid port %d", c.Port)
	}
	if !strings.HasPrefix(c.Path, "/") {
		return xerrors.Config("metrics: path must start with '/', got %q", c.Path)
	}
	return nil
}
