// Package client dials the power services and chains Fetch, Prepare and Estimate.
package client

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/protobuf/proto"

	"github.com/shipsense/power-estimation/internal/api"
	"github.com/shipsense/power-estimation/internal/config"
	"github.com/shipsense/power-estimation/internal/metrics"
)

// PushJob is the job the pipeline reports outbound message sizes under.
const PushJob = "powerPipeline"

// CallCounter counts outbound calls on a connection and logs each one. It also records
// request and response sizes and, given a gateway, pushes them grouped by service
// method after every call.
type CallCounter struct {
	logger   *slog.Logger
	calls    atomic.Int64
	failures atomic.Int64

	gateway     *metrics.GatewayPusher
	pushTimeout time.Duration

	mu           sync.Mutex
	registry     *prometheus.Registry
	requestSize  prometheus.Histogram
	responseSize prometheus.Histogram
}

// NewCallCounter builds a counter. A nil gateway keeps sizes local.
func NewCallCounter(logger *slog.Logger, gateway *metrics.GatewayPusher, pushTimeout time.Duration) *CallCounter {
	if logger == nil {
		logger = slog.Default()
	}
	if pushTimeout <= 0 {
		pushTimeout = 500 * time.Millisecond
	}
	c := &CallCounter{
		logger:      logger,
		gateway:     gateway,
		pushTimeout: pushTimeout,
		registry:    prometheus.NewRegistry(),
		requestSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "request_size",
			Help:    "Size of outbound requests, in bytes.",
			Buckets: prometheus.ExponentialBuckets(64, 4, 8),
		}),
		responseSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "response_size",
			Help:    "Size of server responses, in bytes.",
			Buckets: prometheus.ExponentialBuckets(64, 4, 8),
		}),
	}
	c.registry.MustRegister(c.requestSize, c.responseSize)
	return c
}

// Calls returns the number of calls made.
func (c *CallCounter) Calls() int64 { return c.calls.Load() }

// Failures returns the number of calls that returned an error.
func (c *CallCounter) Failures() int64 { return c.failures.Load() }

// Registry exposes the message size histograms.
func (c *CallCounter) Registry() *prometheus.Registry { return c.registry }

// Unary returns the client interceptor.
func (c *CallCounter) Unary() grpc.UnaryClientInterceptor {
	return func(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, invoker grpc.UnaryInvoker, opts ...grpc.CallOption) error {
		start := time.Now()
		err := invoker(ctx, method, req, reply, cc, opts...)
		n := c.calls.Add(1)
		c.recordSizes(ctx, method, req, reply, err)
		if err != nil {
			c.failures.Add(1)
			c.logger.Warn("outbound call failed", slog.String("method", method),
				slog.Duration("elapsed", time.Since(start)), slog.Any("error", err))
			return err
		}
		c.logger.Debug("outbound call", slog.String("method", method),
			slog.Duration("elapsed", time.Since(start)), slog.Int64("calls", n))
		return nil
	}
}

func (c *CallCounter) recordSizes(ctx context.Context, method string, req, reply any, callErr error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.requestSize.Observe(float64(messageSize(req)))
	if callErr == nil {
		c.responseSize.Observe(float64(messageSize(reply)))
	}
	if c.gateway == nil {
		return
	}

	pushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.pushTimeout)
	defer cancel()
	if err := c.gateway.WithGrouping("Service", methodName(method)).Push(pushCtx, c.registry); err != nil {
		c.logger.Warn("message size push failed", slog.String("method", method), slog.Any("error", err))
	}
}

func messageSize(v any) int {
	if m, ok := v.(proto.Message); ok {
		return proto.Size(m)
	}
	return 0
}

// methodName returns the method part of a full gRPC method name.
func methodName(fullMethod string) string {
	if i := strings.LastIndex(fullMethod, "/"); i >= 0 {
		return fullMethod[i+1:]
	}
	return fullMethod
}

// Dial opens a connection to target with the given transport credentials.
func Dial(target string, creds credentials.TransportCredentials, counter *CallCounter, extra ...grpc.DialOption) (*grpc.ClientConn, error) {
	opts := []grpc.DialOption{grpc.WithTransportCredentials(creds)}
	if counter != nil {
		opts = append(opts, grpc.WithChainUnaryInterceptor(counter.Unary()))
	}
	opts = append(opts, extra...)
	conn, err := grpc.NewClient(target, opts...)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", target, err)
	}
	return conn, nil
}

// Connections holds one connection per stage.
type Connections struct {
	Fetch    *grpc.ClientConn
	Prepare  *grpc.ClientConn
	Estimate *grpc.ClientConn

	Counters map[string]*CallCounter
}

// Connect dials every stage at the address its config resolves to.
func Connect(cfg *config.Config, logger *slog.Logger) (*Connections, error) {
	if logger == nil {
		logger = slog.Default()
	}
	creds, err := api.ClientCredentials(cfg.TLS)
	if err != nil {
		return nil, err
	}

	var gateway *metrics.GatewayPusher
	if cfg.Prometheus.PushURL != "" {
		gateway = metrics.NewGatewayPusher(cfg.Prometheus.PushURL, PushJob,
			&http.Client{Timeout: cfg.Prometheus.PushTimeout})
	}

	conns := &Connections{Counters: make(map[string]*CallCounter, 3)}
	dial := func(name string, svc config.ServiceConfig) (*grpc.ClientConn, error) {
		counter := NewCallCounter(logger.With(slog.String("stage", name)), gateway, cfg.Prometheus.PushTimeout)
		conns.Counters[name] = counter
		return Dial(svc.Address(), creds, counter)
	}

	if conns.Fetch, err = dial("fetch", cfg.Services.Fetch); err != nil {
		return nil, err
	}
	if conns.Prepare, err = dial("prepare", cfg.Services.Prepare); err != nil {
		conns.Close()
		return nil, err
	}
	if conns.Estimate, err = dial("estimate", cfg.Services.Estimate); err != nil {
		conns.Close()
		return nil, err
	}
	return conns, nil
}

// Stages returns the connections as pipeline stages.
func (c *Connections) Stages() Stages {
	return Stages{Fetch: c.Fetch, Prepare: c.Prepare, Estimate: c.Estimate}
}

// Close closes every open connection.
func (c *Connections) Close() error {
	var errs []error
	for _, conn := range []*grpc.ClientConn{c.Fetch, c.Prepare, c.Estimate} {
		if conn != nil {
			errs = append(errs, conn.Close())
		}
	}
	return errors.Join(errs...)
}
