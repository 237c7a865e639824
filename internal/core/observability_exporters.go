package core

import (
	"context"
	"encoding/json"
	"expvar"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"
)

var expvarSeq atomic.Uint64

// OperationMetrics aggregates the outcomes of one service operation.
type OperationMetrics struct {
	Success int64   `json:"success"`
	Errors  int64   `json:"errors"`
	TotalMS float64 `json:"total_ms"`
}

// ExpvarMetricsRecorder publishes per-operation aggregates through expvar,
// for deployments that scrape debug vars instead of running a metrics
// endpoint.
type ExpvarMetricsRecorder struct {
	name string
	mu   sync.Mutex
	ops  map[string]OperationMetrics
}

// NewExpvarMetricsRecorder publishes a recorder under name. An empty name
// gets a unique generated one, since expvar rejects duplicate keys.
func NewExpvarMetricsRecorder(name string) *ExpvarMetricsRecorder {
	if name == "" {
		name = fmt.Sprintf("curricore_service_metrics_%d", expvarSeq.Add(1))
	}
	rec := &ExpvarMetricsRecorder{name: name, ops: make(map[string]OperationMetrics)}
	expvar.Publish(name, expvar.Func(func() any {
		return rec.Snapshot()
	}))
	return rec
}

// Name returns the expvar key the recorder publishes under.
func (r *ExpvarMetricsRecorder) Name() string { return r.name }

// Snapshot copies the per-operation aggregates recorded so far.
func (r *ExpvarMetricsRecorder) Snapshot() map[string]OperationMetrics {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]OperationMetrics, len(r.ops))
	for op, m := range r.ops {
		out[op] = m
	}
	return out
}

// Observe implements MetricsRecorder.
func (r *ExpvarMetricsRecorder) Observe(_ context.Context, operation string, success bool, duration time.Duration) {
	if operation == "" {
		return
	}
	r.mu.Lock()
	m := r.ops[operation]
	if success {
		m.Success++
	} else {
		m.Errors++
	}
	m.TotalMS += float64(duration) / float64(time.Millisecond)
	r.ops[operation] = m
	r.mu.Unlock()
}

// MetricsFromEnv selects a recorder from CURRICORE_METRICS: "prometheus"
// registers on the default registerer, "expvar" publishes a debug var,
// unset means no recorder.
func MetricsFromEnv() (MetricsRecorder, error) {
	switch driver := os.Getenv("CURRICORE_METRICS"); driver {
	case "":
		return nil, nil
	case "prometheus":
		return NewPrometheusMetricsRecorder(nil)
	case "expvar":
		return NewExpvarMetricsRecorder(""), nil
	default:
		return nil, fmt.Errorf("unknown metrics driver %s", driver)
	}
}

// TraceEntry is one completed span as emitted by JSONTraceTracer.
type TraceEntry struct {
	Operation  string    `json:"operation"`
	Status     string    `json:"status"`
	DurationMS float64   `json:"duration_ms"`
	Error      string    `json:"error,omitempty"`
	StartedAt  time.Time `json:"started_at"`
	EndedAt    time.Time `json:"ended_at"`
}

// JSONTraceTracer writes finished spans as JSON lines and keeps them in
// memory for inspection.
type JSONTraceTracer struct {
	mu    sync.Mutex
	spans []TraceEntry
	enc   *json.Encoder
}

// NewJSONTracer builds a tracer writing to w; a nil writer keeps spans
// in memory only.
func NewJSONTracer(w io.Writer) *JSONTraceTracer {
	t := &JSONTraceTracer{}
	if w != nil {
		t.enc = json.NewEncoder(w)
	}
	return t
}

// Entries copies all spans recorded so far.
func (t *JSONTraceTracer) Entries() []TraceEntry {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]TraceEntry(nil), t.spans...)
}

// Start implements Tracer.
func (t *JSONTraceTracer) Start(ctx context.Context, operation string) (context.Context, TraceSpan) {
	return ctx, &jsonSpan{tracer: t, operation: operation, started: time.Now().UTC()}
}

func (t *JSONTraceTracer) finish(entry TraceEntry) {
	t.mu.Lock()
	t.spans = append(t.spans, entry)
	if t.enc != nil {
		_ = t.enc.Encode(entry)
	}
	t.mu.Unlock()
}

type jsonSpan struct {
	tracer    *JSONTraceTracer
	operation string
	started   time.Time
}

func (s *jsonSpan) End(err error) {
	ended := time.Now().UTC()
	entry := TraceEntry{
		Operation:  s.operation,
		Status:     "success",
		DurationMS: float64(ended.Sub(s.started)) / float64(time.Millisecond),
		StartedAt:  s.started,
		EndedAt:    ended,
	}
	if err != nil {
		entry.Status = "error"
		entry.Error = err.Error()
	}
	s.tracer.finish(entry)
}
