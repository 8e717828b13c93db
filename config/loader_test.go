package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeConfigFile 在临时目录写入配置文件
func writeConfigFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const baseYAML = `
log:
  level: debug
  format: json
metrics:
  namespace: aegis
  port: 9090
caches:
  responses:
    capacity: 512
    default_ttl: 2m
breakers:
  llm-primary:
    failure_threshold: 3
    recovery_timeout: 10s
pools:
  llm-clients:
    min_size: 2
    max_size: 8
    acquire_timeout: 3s
queue:
  workers: 6
  capacity: 100
  result_ttl: 1m
`

func TestLoadAndUnmarshal(t *testing.T) {
	dir := t.TempDir()
	writeConfigFile(t, dir, "aegis.yaml", baseYAML)

	l, err := New(
		WithConfigName("aegis"),
		WithConfigPaths(dir),
		WithEnvPrefix("AEGIS_TEST"),
	)
	require.NoError(t, err)
	require.NoError(t, l.Load(context.Background()))

	var cfg AppConfig
	require.NoError(t, l.Unmarshal(&cfg))

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "aegis", cfg.Metrics.Namespace)
	assert.Equal(t, 9090, cfg.Metrics.Port)

	require.Contains(t, cfg.Caches, "responses")
	assert.Equal(t, 512, cfg.Caches["responses"].Capacity)
	assert.Equal(t, 2*time.Minute, cfg.Caches["responses"].DefaultTTL)

	require.Contains(t, cfg.Breakers, "llm-primary")
	assert.Equal(t, uint32(3), cfg.Breakers["llm-primary"].FailureThreshold)
	assert.Equal(t, 10*time.Second, cfg.Breakers["llm-primary"].RecoveryTimeout)

	require.Contains(t, cfg.Pools, "llm-clients")
	assert.Equal(t, int32(2), cfg.Pools["llm-clients"].MinSize)
	assert.Equal(t, int32(8), cfg.Pools["llm-clients"].MaxSize)

	assert.Equal(t, 6, cfg.Queue.Workers)
	assert.Equal(t, 100, cfg.Queue.Capacity)
	assert.Equal(t, time.Minute, cfg.Queue.ResultTTL)
}

func TestUnmarshalKey(t *testing.T) {
	dir := t.TempDir()
	writeConfigFile(t, dir, "aegis.yaml", baseYAML)

	l, err := New(WithConfigName("aegis"), WithConfigPaths(dir))
	require.NoError(t, err)
	require.NoError(t, l.Load(context.Background()))

	var q struct {
		Workers  int `yaml:"workers"`
		Capacity int `yaml:"capacity"`
	}
	require.NoError(t, l.UnmarshalKey("queue", &q))
	assert.Equal(t, 6, q.Workers)
	assert.Equal(t, 100, q.Capacity)
}

func TestEnvOverride(t *testing.T) {
	dir := t.TempDir()
	writeConfigFile(t, dir, "aegis.yaml", baseYAML)

	t.Setenv("AEGIS_TEST_LOG_LEVEL", "error")

	l, err := New(
		WithConfigName("aegis"),
		WithConfigPaths(dir),
		WithEnvPrefix("aegis_test"), // 前缀大小写不敏感
	)
	require.NoError(t, err)
	require.NoError(t, l.Load(context.Background()))

	assert.Equal(t, "error", l.Get("log.level"))
}

func TestEnvironmentSpecificConfig(t *testing.T) {
	dir := t.TempDir()
	writeConfigFile(t, dir, "aegis.yaml", baseYAML)
	writeConfigFile(t, dir, "aegis.production.yaml", "log:\n  level: warn\n")

	t.Setenv("AEGIS_TEST_ENV", "production")

	l, err := New(
		WithConfigName("aegis"),
		WithConfigPaths(dir),
		WithEnvPrefix("AEGIS_TEST"),
	)
	require.NoError(t, err)
	require.NoError(t, l.Load(context.Background()))

	// 环境特定配置覆盖基础配置，其余 key 保留
	assert.Equal(t, "warn", l.Get("log.level"))
	assert.Equal(t, "json", l.Get("log.format"))
}

func TestLoadMissingConfig(t *testing.T) {
	l, err := New(
		WithConfigName("does-not-exist"),
		WithConfigPaths(t.TempDir()),
	)
	require.NoError(t, err)

	err = l.Load(context.Background())
	assert.ErrorIs(t, err, ErrEmptyConfig)
}

func TestWatch(t *testing.T) {
	dir := t.TempDir()
	path := writeConfigFile(t, dir, "aegis.yaml", "log:\n  level: info\n")

	l, err := New(WithConfigName("aegis"), WithConfigPaths(dir))
	require.NoError(t, err)
	require.NoError(t, l.Load(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := l.Watch(ctx, "log.level")
	require.NoError(t, err)

	// 给 fsnotify 一点时间挂上监听
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: debug\n"), 0o644))

	select {
	case ev := <-ch:
		assert.Equal(t, "log.level", ev.Key)
		assert.Equal(t, "debug", ev.Value)
		assert.Equal(t, "info", ev.OldValue)
		assert.Equal(t, "file", ev.Source)
	case <-time.After(3 * time.Second):
		t.Fatal("no change event received")
	}
}

func TestWatchCancelClosesChannel(t *testing.T) {
	dir := t.TempDir()
	writeConfigFile(t, dir, "aegis.yaml", "log:\n  level: info\n")

	l, err := New(WithConfigName("aegis"), WithConfigPaths(dir))
	require.NoError(t, err)
	require.NoError(t, l.Load(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	ch, err := l.Watch(ctx, "log.level")
	require.NoError(t, err)

	cancel()

	select {
	case _, ok := <-ch:
		assert.False(t, ok, "channel should be closed after cancel")
	case <-time.After(time.Second):
		t.Fatal("channel not closed after context cancel")
	}
}
