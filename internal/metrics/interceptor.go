// Package metrics instruments the power services. Each service process owns one
// Interceptor whose call counter survives restarts by seeding from the metrics backend.
package metrics

import (
	"context"
	"log/slog"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"google.golang.org/grpc"
)

// State is the lifecycle of an Interceptor.
type State int32

const (
	// StateUninitialized means the counter seed has not resolved yet.
	StateUninitialized State = iota
	// StateActive means the counter is seeded and calls are being recorded.
	StateActive
)

func (s State) String() string {
	if s == StateActive {
		return "active"
	}
	return "uninitialized"
}

// Options configures an Interceptor.
type Options struct {
	// Job names the metric series in the backend; one per service type.
	Job string
	// Querier recovers the previous call total. Nil seeds at zero.
	Querier Querier
	// Pusher receives a snapshot after every call. Nil disables pushing.
	Pusher      Pusher
	SeedTimeout time.Duration
	PushTimeout time.Duration
	Logger      *slog.Logger
}

// Interceptor records a call counter, last-call gauges and a latency histogram around
// every handler invocation and pushes the snapshot after each call.
type Interceptor struct {
	job         string
	pusher      Pusher
	pushTimeout time.Duration
	logger      *slog.Logger

	registry        *prometheus.Registry
	calls           prometheus.Counter
	lastCallTime    prometheus.Gauge
	lastCallSuccess prometheus.Gauge
	latency         prometheus.Histogram

	state atomic.Int32

	// mu serializes counter updates with pushes so snapshots reach the gateway in order.
	mu    sync.Mutex
	count float64
}

// NewInterceptor builds the per-job registry and seeds the counter. It blocks for at
// most SeedTimeout; any query failure seeds zero.
func NewInterceptor(ctx context.Context, opts Options) *Interceptor {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Pusher == nil {
		opts.Pusher = nopPusher{}
	}
	if opts.SeedTimeout <= 0 {
		opts.SeedTimeout = time.Second
	}
	if opts.PushTimeout <= 0 {
		opts.PushTimeout = 500 * time.Millisecond
	}

	m := &Interceptor{
		job:         opts.Job,
		pusher:      opts.Pusher,
		pushTimeout: opts.PushTimeout,
		logger:      opts.Logger.With(slog.String("job", opts.Job)),
		registry:    prometheus.NewRegistry(),
		calls: prometheus.NewCounter(prometheus.CounterOpts{
			Name: CounterMetric,
			Help: "Number of times this API has been called.",
		}),
		lastCallTime: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "last_call_time",
			Help: "Last time this API was called, in unix seconds.",
		}),
		lastCallSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "last_call_success",
			Help: "1 if the last call succeeded, 0 otherwise.",
		}),
		latency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "request_latency",
			Help:    "Time taken to process a request, in seconds.",
			Buckets: prometheus.DefBuckets,
		}),
	}
	m.registry.MustRegister(m.calls, m.lastCallTime, m.lastCallSuccess, m.latency)

	m.seed(ctx, opts.Querier, opts.SeedTimeout)
	m.state.Store(int32(StateActive))
	return m
}

func (m *Interceptor) seed(ctx context.Context, q Querier, timeout time.Duration) {
	if q == nil {
		m.logger.Info("call counter starts at zero, no metrics backend configured")
		return
	}

	seedCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	value, found, err := q.LastCount(seedCtx, m.job)
	switch {
	case err != nil:
		seedFailuresTotal.WithLabelValues(m.job).Inc()
		m.logger.Warn("call counter seed failed, starting at zero", slog.Any("error", err))
		return
	case !found:
		m.logger.Info("no previous call count recorded, starting at zero")
		return
	case value < 0 || math.IsNaN(value) || math.IsInf(value, 0):
		m.logger.Warn("ignoring invalid recorded call count", slog.Float64("value", value))
		return
	}

	m.calls.Add(value)
	m.count = value
	seededCalls.WithLabelValues(m.job).Set(value)
	m.logger.Info("call counter seeded", slog.Float64("count", value))
}

// State reports the lifecycle state.
func (m *Interceptor) State() State { return State(m.state.Load()) }

// Count returns the current call total, seed included.
func (m *Interceptor) Count() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.count
}

// Registry exposes the per-job registry.
func (m *Interceptor) Registry() *prometheus.Registry { return m.registry }

// Wrap returns a handler that invokes next exactly once and records the call. The
// handler's response and error are returned unchanged.
func (m *Interceptor) Wrap(method string, next grpc.UnaryHandler) grpc.UnaryHandler {
	return func(ctx context.Context, req any) (any, error) {
		callID := uuid.NewString()
		start := time.Now()

		resp, err := next(ctx, req)

		m.record(ctx, method, callID, time.Since(start), err)
		return resp, err
	}
}

// Unary adapts the interceptor to a grpc server option.
func (m *Interceptor) Unary() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		return m.Wrap(info.FullMethod, handler)(ctx, req)
	}
}

func (m *Interceptor) record(ctx context.Context, method, callID string, elapsed time.Duration, callErr error) {
	m.mu.Lock()
	m.calls.Inc()
	m.count++
	count := m.count
	m.lastCallTime.SetToCurrentTime()
	if callErr == nil {
		m.lastCallSuccess.Set(1)
	} else {
		m.lastCallSuccess.Set(0)
	}
	m.latency.Observe(elapsed.Seconds())

	// A stalled gateway holds mu for at most pushTimeout.
	pushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.pushTimeout)
	pushErr := m.pusher.Push(pushCtx, m.registry)
	cancel()
	m.mu.Unlock()

	attrs := []any{
		slog.String("call_id", callID),
		slog.String("method", method),
		slog.Duration("elapsed", elapsed),
		slog.Float64("count", count),
	}
	if callErr != nil {
		attrs = append(attrs, slog.Any("error", callErr))
	}
	m.logger.Debug("call recorded", attrs...)

	if pushErr != nil {
		pushFailuresTotal.WithLabelValues(m.job).Inc()
		m.logger.Warn("metrics push failed", slog.String("call_id", callID), slog.Any("error", pushErr))
	}
}
