// Package metrics 提供分诊服务的 Prometheus 指标
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "ontario_triage"

var (
	// TriageTotal 按分诊级别统计的流水线运行次数
	TriageTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "triage_total",
			Help:      "Total number of workflow runs by final triage level",
		},
		[]string{"level"},
	)

	// RedFlagMatches 红旗规则命中次数
	RedFlagMatches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "red_flag_matches_total",
			Help:      "Total number of matched red-flag rules by action",
		},
		[]string{"action"},
	)

	// StageDuration 流水线各阶段耗时
	StageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Duration of workflow stages in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"stage"},
	)

	// RetrievalArmDuration 检索各分支耗时
	RetrievalArmDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "retrieval_arm_duration_seconds",
			Help:      "Duration of hybrid retrieval arms in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"arm"},
	)

	// DegradedTotal 降级次数
	DegradedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "degraded_total",
			Help:      "Total number of degraded results by component and reason",
		},
		[]string{"component", "reason"},
	)

	// LexicalSnapshotSize 当前词法快照中的片段数
	LexicalSnapshotSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "lexical_snapshot_chunks",
			Help:      "Number of chunks in the published lexical snapshot",
		},
	)

	// IngestedChunks 入库片段累计数
	IngestedChunks = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ingested_chunks_total",
			Help:      "Total number of ingested chunks",
		},
	)

	// HTTPRequestDuration HTTP 请求耗时
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"route", "method", "status"},
	)
)

// RecordTriage 记录一次流水线结果
func RecordTriage(level string) {
	TriageTotal.WithLabelValues(level).Inc()
}

// RecordRedFlag 记录一次规则命中
func RecordRedFlag(action string) {
	RedFlagMatches.WithLabelValues(action).Inc()
}

// ObserveStage 记录阶段耗时
func ObserveStage(stage string, start time.Time) {
	StageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}

// ObserveRetrievalArm 记录检索分支耗时
func ObserveRetrievalArm(arm string, start time.Time) {
	RetrievalArmDuration.WithLabelValues(arm).Observe(time.Since(start).Seconds())
}

// RecordDegraded 记录一次降级
func RecordDegraded(component, reason string) {
	DegradedTotal.WithLabelValues(component, reason).Inc()
}

// SetLexicalSnapshotSize 更新快照大小
func SetLexicalSnapshotSize(n int) {
	LexicalSnapshotSize.Set(float64(n))
}

// RecordIngest 记录入库片段数
func RecordIngest(chunks int) {
	IngestedChunks.Add(float64(chunks))
}

// ObserveHTTPRequest 记录 HTTP 请求
func ObserveHTTPRequest(route, method, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(route, method, status).Observe(duration.Seconds())
}
