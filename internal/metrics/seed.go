package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/api"
	promv1 "github.com/prometheus/client_golang/api/prometheus/v1"
	"github.com/prometheus/common/model"
)

// CounterMetric is the exported name of the per-job call counter.
const CounterMetric = "calls_total"

// Querier looks up the last call total the metrics backend holds for a job. found is
// false when the backend has no sample for the job.
type Querier interface {
	LastCount(ctx context.Context, job string) (value float64, found bool, err error)
}

// PromQuerier queries a Prometheus server through its HTTP API.
type PromQuerier struct {
	api promv1.API
}

// NewPromQuerier builds a querier for the Prometheus server at address.
func NewPromQuerier(address string) (*PromQuerier, error) {
	client, err := api.NewClient(api.Config{Address: address})
	if err != nil {
		return nil, fmt.Errorf("prometheus client: %w", err)
	}
	return &PromQuerier{api: promv1.NewAPI(client)}, nil
}

// CounterQuery is the instant query used to recover a job's call total.
func CounterQuery(job string) string {
	return fmt.Sprintf("%s{job=%q}", CounterMetric, job)
}

// LastCount implements Querier.
func (q *PromQuerier) LastCount(ctx context.Context, job string) (float64, bool, error) {
	val, _, err := q.api.Query(ctx, CounterQuery(job), time.Now())
	if err != nil {
		return 0, false, err
	}
	vec, ok := val.(model.Vector)
	if !ok {
		return 0, false, fmt.Errorf("unexpected result type %s", val.Type())
	}
	if len(vec) == 0 {
		return 0, false, nil
	}
	return float64(vec[0].Value), true, nil
}
