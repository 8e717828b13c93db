package metrics

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

// exporter 将收集器快照桥接为 Prometheus 指标。
//
// 采用 unchecked collector 模式：指标集合随运行动态变化，
// Describe 不预告任何描述符，Collect 时按当前快照即时构造。
type exporter struct {
	namespace string
	collector Collector
}

func newExporter(namespace string, c Collector) *exporter {
	return &exporter{namespace: namespace, collector: c}
}

func (e *exporter) Describe(ch chan<- *prometheus.Desc) {
	// unchecked collector：不发送描述符
}

func (e *exporter) Collect(ch chan<- prometheus.Metric) {
	snap := e.collector.Snapshot()

	for group, gs := range snap {
		for name, v := range gs.Counters {
			ch <- prometheus.MustNewConstMetric(
				e.desc(group, name, "total", "Cumulative counter."),
				prometheus.CounterValue, v)
		}
		for name, v := range gs.Gauges {
			ch <- prometheus.MustNewConstMetric(
				e.desc(group, name, "", "Last observed value."),
				prometheus.GaugeValue, v)
		}
		for name, ts := range gs.Timers {
			ch <- prometheus.MustNewConstMetric(
				e.desc(group, name, "count", "Number of timer samples."),
				prometheus.CounterValue, float64(ts.Count))
			ch <- prometheus.MustNewConstMetric(
				e.desc(group, name, "min_seconds", "Minimum observed duration."),
				prometheus.GaugeValue, ts.Min.Seconds())
			ch <- prometheus.MustNewConstMetric(
				e.desc(group, name, "max_seconds", "Maximum observed duration."),
				prometheus.GaugeValue, ts.Max.Seconds())
			ch <- prometheus.MustNewConstMetric(
				e.desc(group, name, "avg_seconds", "Average observed duration."),
				prometheus.GaugeValue, ts.Avg.Seconds())
		}
	}
}

func (e *exporter) desc(group, name, suffix, help string) *prometheus.Desc {
	parts := []string{e.namespace, sanitize(group), sanitize(name)}
	if suffix != "" {
		parts = append(parts, suffix)
	}
	return prometheus.NewDesc(strings.Join(parts, "_"), help, nil, nil)
}

// sanitize 将任意名称转换为合法的 Prometheus 指标名片段。
func sanitize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '_':
			b.WriteRune(r)
		case r >= '0' && r <= '9':
			if i == 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
