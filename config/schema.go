package config

import (
	"github.com/ceyewan/aegis/breaker"
	"github.com/ceyewan/aegis/cache"
	"github.com/ceyewan/aegis/clog"
	"github.com/ceyewan/aegis/metrics"
	"github.com/ceyewan/aegis/pool"
	"github.com/ceyewan/aegis/queue"
)

// AppConfig 各组件配置的聚合结构，供应用一次性反序列化
//
// 对应的 YAML 形如：
//
//	log:
//	  level: info
//	  format: json
//	metrics:
//	  namespace: aegis
//	  port: 9090
//	caches:
//	  responses:
//	    capacity: 1024
//	    default_ttl: 5m
//	breakers:
//	  llm-primary:
//	    failure_threshold: 5
//	    recovery_timeout: 30s
//	pools:
//	  llm-clients:
//	    min_size: 2
//	    max_size: 10
//	    acquire_timeout: 3s
//	queue:
//	  workers: 4
type AppConfig struct {
	Log      clog.Config               `json:"log" yaml:"log"`
	Metrics  metrics.Config            `json:"metrics" yaml:"metrics"`
	Caches   map[string]cache.Config   `json:"caches" yaml:"caches"`
	Breakers map[string]breaker.Config `json:"breakers" yaml:"breakers"`
	Pools    map[string]pool.Config    `json:"pools" yaml:"pools"`
	Queue    queue.Config              `json:"queue" yaml:"queue"`
}
