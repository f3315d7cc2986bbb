package metrics

import (
	"sync"
	"time"
)

// Recorder accumulates extraction metrics in memory. All methods are safe for
// concurrent use. Counters reset when the process restarts.
type Recorder struct {
	mu sync.Mutex

	startedAt time.Time

	extractions int64
	failures    int64
	cacheHits   int64
	cacheMisses int64

	promptTokens     int64
	completionTokens int64
	totalTokens      int64
	totalExecution   time.Duration

	byModel        map[string]int64
	failuresByType map[string]int64

	recent []Metric
}

// recentLimit bounds the in-memory history of individual metrics.
const recentLimit = 100

// NewRecorder creates a new metrics recorder.
func NewRecorder() *Recorder {
	return &Recorder{
		startedAt:      time.Now(),
		byModel:        make(map[string]int64),
		failuresByType: make(map[string]int64),
	}
}

// Record stores a single metric.
func (r *Recorder) Record(m Metric) {
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if m.Success {
		r.extractions++
		if m.Model != "" {
			r.byModel[m.Model]++
		}
	} else {
		r.failures++
		errType := m.ErrorType
		if errType == "" {
			errType = "unknown"
		}
		r.failuresByType[errType]++
	}

	r.promptTokens += int64(m.PromptTokens)
	r.completionTokens += int64(m.CompletionTokens)
	r.totalTokens += int64(m.TotalTokens)
	r.totalExecution += time.Duration(m.ExecutionSeconds * float64(time.Second))

	r.recent = append(r.recent, m)
	if len(r.recent) > recentLimit {
		r.recent = r.recent[len(r.recent)-recentLimit:]
	}
}

// RecordCacheHit counts a run served entirely from cache.
func (r *Recorder) RecordCacheHit() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cacheHits++
}

// RecordCacheMiss counts a run that had to call the model.
func (r *Recorder) RecordCacheMiss() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cacheMisses++
}

// Summary is an aggregate snapshot of recorded metrics.
type Summary struct {
	UptimeSeconds float64 `json:"uptime_seconds"`

	Extractions int64 `json:"extractions"`
	Failures    int64 `json:"failures"`
	CacheHits   int64 `json:"cache_hits"`
	CacheMisses int64 `json:"cache_misses"`

	PromptTokens     int64 `json:"prompt_tokens"`
	CompletionTokens int64 `json:"completion_tokens"`
	TotalTokens      int64 `json:"total_tokens"`

	AvgExecutionSeconds float64 `json:"avg_execution_seconds"`

	ByModel        map[string]int64 `json:"by_model"`
	FailuresByType map[string]int64 `json:"failures_by_type"`
}

// Summary returns an aggregate snapshot.
func (r *Recorder) Summary() Summary {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := Summary{
		UptimeSeconds:    time.Since(r.startedAt).Seconds(),
		Extractions:      r.extractions,
		Failures:         r.failures,
		CacheHits:        r.cacheHits,
		CacheMisses:      r.cacheMisses,
		PromptTokens:     r.promptTokens,
		CompletionTokens: r.completionTokens,
		TotalTokens:      r.totalTokens,
		ByModel:          make(map[string]int64, len(r.byModel)),
		FailuresByType:   make(map[string]int64, len(r.failuresByType)),
	}
	if calls := r.extractions + r.failures; calls > 0 {
		s.AvgExecutionSeconds = r.totalExecution.Seconds() / float64(calls)
	}
	for k, v := range r.byModel {
		s.ByModel[k] = v
	}
	for k, v := range r.failuresByType {
		s.FailuresByType[k] = v
	}
	return s
}

// Recent returns up to limit most recent metrics, newest last.
func (r *Recorder) Recent(limit int) []Metric {
	r.mu.Lock()
	defer r.mu.Unlock()

	if limit <= 0 || limit > len(r.recent) {
		limit = len(r.recent)
	}
	out := make([]Metric, limit)
	copy(out, r.recent[len(r.recent)-limit:])
	return out
}
