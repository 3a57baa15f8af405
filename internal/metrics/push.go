package metrics

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Pusher publishes a full registry snapshot for one job.
type Pusher interface {
	Push(ctx context.Context, g prometheus.Gatherer) error
}

// GatewayPusher pushes to a Prometheus push gateway. Each push replaces every metric
// previously stored under the job.
type GatewayPusher struct {
	url      string
	job      string
	client   *http.Client
	grouping map[string]string
}

// NewGatewayPusher builds a pusher. A nil client uses http.DefaultClient.
func NewGatewayPusher(url, job string, client *http.Client) *GatewayPusher {
	if client == nil {
		client = http.DefaultClient
	}
	return &GatewayPusher{url: url, job: job, client: client}
}

// WithGrouping returns a copy of p that pushes into the group where name is value.
func (p *GatewayPusher) WithGrouping(name, value string) *GatewayPusher {
	grouping := make(map[string]string, len(p.grouping)+1)
	for k, v := range p.grouping {
		grouping[k] = v
	}
	grouping[name] = value
	return &GatewayPusher{url: p.url, job: p.job, client: p.client, grouping: grouping}
}

// Push implements Pusher.
func (p *GatewayPusher) Push(ctx context.Context, g prometheus.Gatherer) error {
	pusher := push.New(p.url, p.job).
		Gatherer(g).
		Client(p.client)
	for name, value := range p.grouping {
		pusher = pusher.Grouping(name, value)
	}
	return pusher.PushContext(ctx)
}

type nopPusher struct{}

func (nopPusher) Push(context.Context, prometheus.Gatherer) error { return nil }
