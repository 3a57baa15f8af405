package metrics

import (
	"bufio"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protodelim"

	"github.com/shipsense/power-estimation/internal/utils"
)

func queryServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/query" {
			http.NotFound(w, r)
			return
		}
		if got := r.FormValue("query"); got != `calls_total{job="fetchDataService"}` {
			t.Errorf("unexpected query %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestPromQuerierReadsVector(t *testing.T) {
	srv := queryServer(t, `{"status":"success","data":{"resultType":"vector","result":[
		{"metric":{"__name__":"calls_total","job":"fetchDataService"},"value":[1700000000,"42"]}]}}`)

	q, err := NewPromQuerier(srv.URL)
	require.NoError(t, err)
	value, found, err := q.LastCount(context.Background(), "fetchDataService")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 42.0, value)
}

func TestPromQuerierEmptyResult(t *testing.T) {
	srv := queryServer(t, `{"status":"success","data":{"resultType":"vector","result":[]}}`)

	q, err := NewPromQuerier(srv.URL)
	require.NoError(t, err)
	_, found, err := q.LastCount(context.Background(), "fetchDataService")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestPromQuerierBackendError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	q, err := NewPromQuerier(srv.URL)
	require.NoError(t, err)
	_, _, err = q.LastCount(context.Background(), "fetchDataService")
	assert.Error(t, err)
}

type capturedPush struct {
	method   string
	path     string
	families map[string]*dto.MetricFamily
}

func gatewayServer(t *testing.T) (*httptest.Server, func() []capturedPush) {
	t.Helper()
	var (
		mu     sync.Mutex
		pushes []capturedPush
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		push := capturedPush{method: r.Method, path: r.URL.Path, families: map[string]*dto.MetricFamily{}}
		reader := bufio.NewReader(r.Body)
		for {
			mf := &dto.MetricFamily{}
			if err := protodelim.UnmarshalFrom(reader, mf); err != nil {
				if !errors.Is(err, io.EOF) {
					t.Errorf("decode push: %v", err)
				}
				break
			}
			push.families[mf.GetName()] = mf
		}
		mu.Lock()
		pushes = append(pushes, push)
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)
	return srv, func() []capturedPush {
		mu.Lock()
		defer mu.Unlock()
		return append([]capturedPush(nil), pushes...)
	}
}

func TestGatewayPusherReplacesJobSnapshot(t *testing.T) {
	srv, pushes := gatewayServer(t)
	m := NewInterceptor(context.Background(), Options{
		Job:     "estimateService",
		Querier: stubQuerier{value: 9, found: true},
		Pusher:  NewGatewayPusher(srv.URL, "estimateService", srv.Client()),
		Logger:  utils.DiscardLogger(),
	})

	_, err := m.Wrap("/power.v1.EstimatePower/EstimatePowerService", okHandler)(context.Background(), nil)
	require.NoError(t, err)

	got := pushes()
	require.Len(t, got, 1)
	assert.Equal(t, http.MethodPut, got[0].method)
	assert.Equal(t, "/metrics/job/estimateService", got[0].path)

	fams := got[0].families
	require.Contains(t, fams, "calls_total")
	assert.Equal(t, 10.0, fams["calls_total"].GetMetric()[0].GetCounter().GetValue())
	require.Contains(t, fams, "last_call_time")
	assert.InDelta(t, float64(time.Now().Unix()), fams["last_call_time"].GetMetric()[0].GetGauge().GetValue(), 60)
	require.Contains(t, fams, "request_latency")
	assert.Equal(t, uint64(1), fams["request_latency"].GetMetric()[0].GetHistogram().GetSampleCount())
	assert.Equal(t, 1.0, fams["last_call_success"].GetMetric()[0].GetGauge().GetValue())
}

func TestGatewayPusherReportsFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	m := newTestInterceptor(t, nil, nil)
	err := NewGatewayPusher(srv.URL, "fetchDataService", nil).Push(context.Background(), m.Registry())
	assert.Error(t, err)
}

func TestGatewayPusherGrouping(t *testing.T) {
	srv, pushes := gatewayServer(t)
	base := NewGatewayPusher(srv.URL, "powerPipeline", srv.Client())
	m := newTestInterceptor(t, nil, nil)

	require.NoError(t, base.WithGrouping("Service", "FetchDataService").Push(context.Background(), m.Registry()))
	require.NoError(t, base.Push(context.Background(), m.Registry()))

	got := pushes()
	require.Len(t, got, 2)
	assert.Equal(t, "/metrics/job/powerPipeline/Service/FetchDataService", got[0].path)
	assert.Equal(t, "/metrics/job/powerPipeline", got[1].path)
}
