package shell

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/shipsense/power-estimation/internal/config"
	"github.com/shipsense/power-estimation/internal/utils"
)

func TestInterceptorOptions(t *testing.T) {
	cfg := &config.Config{Prometheus: config.PrometheusConfig{
		QueryURL:    "http://localhost:9090",
		PushURL:     "http://localhost:9091",
		SeedTimeout: time.Second,
		PushTimeout: 2 * time.Second,
	}}
	opts := interceptorOptions(cfg, "estimateService", utils.DiscardLogger())
	assert.Equal(t, "estimateService", opts.Job)
	assert.NotNil(t, opts.Querier)
	assert.NotNil(t, opts.Pusher)
	assert.Equal(t, time.Second, opts.SeedTimeout)
	assert.Equal(t, 2*time.Second, opts.PushTimeout)
}

func TestInterceptorOptionsWithoutBackend(t *testing.T) {
	opts := interceptorOptions(&config.Config{}, "fetchDataService", utils.DiscardLogger())
	assert.Nil(t, opts.Querier)
	assert.Nil(t, opts.Pusher)
}
