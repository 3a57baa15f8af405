package main

import (
	"testing"

	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"
)

func counterFamily(name string, value float64) *dto.MetricFamily {
	return &dto.MetricFamily{
		Name:   proto.String(name),
		Type:   dto.MetricType_COUNTER.Enum(),
		Metric: []*dto.Metric{{Counter: &dto.Counter{Value: proto.Float64(value)}}},
	}
}

func TestQueryReturnsPushedCounter(t *testing.T) {
	st := newStore()
	st.push("estimateService", map[string]*dto.MetricFamily{"calls_total": counterFamily("calls_total", 12)}, true)

	res := queryResult(st, `calls_total{job="estimateService"}`)
	vector := res["data"].(map[string]any)["result"].([]map[string]any)
	require.Len(t, vector, 1)
	assert.Equal(t, "12", vector[0]["value"].([]any)[1])

	empty := queryResult(st, `calls_total{job="fetchService"}`)
	assert.Empty(t, empty["data"].(map[string]any)["result"])
}

func TestPushReplaceAndMerge(t *testing.T) {
	st := newStore()
	st.push("job", map[string]*dto.MetricFamily{
		"calls_total":    counterFamily("calls_total", 1),
		"last_call_time": counterFamily("last_call_time", 5),
	}, true)
	st.push("job", map[string]*dto.MetricFamily{"calls_total": counterFamily("calls_total", 2)}, false)

	value, ok := st.counter("job")
	require.True(t, ok)
	assert.Equal(t, 2.0, value)
	assert.Len(t, st.families(), 2)

	st.push("job", map[string]*dto.MetricFamily{"calls_total": counterFamily("calls_total", 3)}, true)
	assert.Len(t, st.families(), 1)

	st.delete("job")
	_, ok = st.counter("job")
	assert.False(t, ok)
}

func TestFamiliesCarryJobLabel(t *testing.T) {
	st := newStore()
	st.push("a", map[string]*dto.MetricFamily{"calls_total": counterFamily("calls_total", 1)}, true)
	st.push("b", map[string]*dto.MetricFamily{"calls_total": counterFamily("calls_total", 2)}, true)

	families := st.families()
	require.Len(t, families, 1)
	require.Len(t, families[0].GetMetric(), 2)
	jobs := map[string]bool{}
	for _, m := range families[0].GetMetric() {
		for _, lp := range m.GetLabel() {
			if lp.GetName() == "job" {
				jobs[lp.GetValue()] = true
			}
		}
	}
	assert.Equal(t, map[string]bool{"a": true, "b": true}, jobs)
}
