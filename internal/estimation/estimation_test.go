package estimation

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shipsense/power-estimation/internal/cache"
	"github.com/shipsense/power-estimation/internal/models"
	"github.com/shipsense/power-estimation/internal/utils"
)

// sumArtifact predicts 2*x0 + x1 + 1.
const sumArtifact = `{
  "name": "sum",
  "inputs": 10,
  "metric": "mae",
  "layers": [
    {"weights": [[2, 1, 0, 0, 0, 0, 0, 0, 0, 0]], "bias": [1], "activation": "linear"}
  ]
}`

func writeArtifact(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func row(values ...float64) []float64 {
	out := make([]float64, models.FeatureCount)
	copy(out, values)
	return out
}

func TestSelectorResolve(t *testing.T) {
	s := Selector{OpenWaterPath: "open.json", IcePath: "ice.json"}

	assert.Equal(t, s.Resolve(0), s.Resolve(1))
	assert.Equal(t, "open.json", s.Resolve(ModelOpenWater))
	assert.Equal(t, "ice.json", s.Resolve(ModelIce))
	assert.NotEqual(t, s.Resolve(0), s.Resolve(2))
	for _, code := range []int32{-1, 3, 99} {
		assert.Equal(t, s.Resolve(0), s.Resolve(code), "code %d", code)
	}
}

func TestNetworkPredictAndEvaluate(t *testing.T) {
	net, err := ParseArtifact([]byte(sumArtifact))
	require.NoError(t, err)

	rows := [][]float64{row(1, 1), row(0, 3), row(2, 0)}
	pred, err := net.Predict(rows)
	require.NoError(t, err)
	assert.Equal(t, []float64{4, 4, 5}, pred)

	score, err := net.Evaluate(rows, []float64{4, 2, 5})
	require.NoError(t, err)
	assert.Equal(t, "mae", score.MetricName)
	assert.InDelta(t, 2.0/3.0, score.Metric, 1e-12)
	assert.InDelta(t, 4.0/3.0, score.Loss, 1e-12)

	_, err = net.Predict([][]float64{{1, 2}})
	assert.Error(t, err)
}

func TestNetworkHiddenLayer(t *testing.T) {
	art := Artifact{
		Name:   "relu",
		Inputs: 2,
		Layers: []Layer{
			{Weights: [][]float64{{1, 0}, {0, -1}}, Bias: []float64{0, 0}, Activation: "relu"},
			{Weights: [][]float64{{1, 1}}, Bias: []float64{0.5}},
		},
	}
	net, err := NewNetwork(art)
	require.NoError(t, err)

	pred, err := net.Predict([][]float64{{3, 2}, {-1, -4}})
	require.NoError(t, err)
	assert.Equal(t, []float64{3.5, 4.5}, pred)
}

func TestParseArtifactRejectsBadShapes(t *testing.T) {
	cases := map[string]string{
		"not json":       `{`,
		"no layers":      `{"inputs": 10, "layers": []}`,
		"width mismatch": `{"inputs": 10, "layers": [{"weights": [[1, 2]], "bias": [0]}]}`,
		"bias mismatch":  `{"inputs": 1, "layers": [{"weights": [[1]], "bias": []}]}`,
		"two outputs":    `{"inputs": 1, "layers": [{"weights": [[1], [2]], "bias": [0, 0]}]}`,
		"activation":     `{"inputs": 1, "layers": [{"weights": [[1]], "bias": [0], "activation": "swish"}]}`,
		"metric":         `{"inputs": 1, "metric": "r2", "layers": [{"weights": [[1]], "bias": [0]}]}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseArtifact([]byte(body))
			assert.ErrorIs(t, err, ErrArtifactLoad)
		})
	}
}

func TestArtifactStoreCachesByCode(t *testing.T) {
	dir := t.TempDir()
	open := writeArtifact(t, dir, "open.json", sumArtifact)
	store := NewArtifactStore(Selector{OpenWaterPath: open, IcePath: filepath.Join(dir, "missing.json")}, nil, 0, utils.DiscardLogger())

	ctx := context.Background()
	first, err := store.Load(ctx, ModelOpenWater)
	require.NoError(t, err)
	second, err := store.Load(ctx, ModelOpenWater)
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, 1, store.Loads())

	store.Invalidate(ctx, ModelOpenWater)
	third, err := store.Load(ctx, ModelOpenWater)
	require.NoError(t, err)
	assert.NotSame(t, first, third)
	assert.Equal(t, 2, store.Loads())

	store.Purge()
	_, err = store.Load(ctx, ModelOpenWater)
	require.NoError(t, err)
	assert.Equal(t, 3, store.Loads())
}

func TestArtifactStoreMissingFile(t *testing.T) {
	store := NewArtifactStore(Selector{IcePath: filepath.Join(t.TempDir(), "ice.json")}, nil, 0, utils.DiscardLogger())
	_, err := store.Load(context.Background(), ModelIce)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrArtifactLoad))
}

// bumpArtifact rewrites path with body and moves its mtime forward so the change is
// visible even on filesystems with coarse timestamps.
func bumpArtifact(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	later := time.Now().Add(time.Minute)
	require.NoError(t, os.Chtimes(path, later, later))
}

func byteKey(t *testing.T, path string) string {
	t.Helper()
	info, err := os.Stat(path)
	require.NoError(t, err)
	return artifactKey(artifactVersion(path, info))
}

func TestArtifactStoreSharesBytes(t *testing.T) {
	path := writeArtifact(t, t.TempDir(), "open.json", sumArtifact)
	shared := cache.NewMemoryProvider()

	ctx := context.Background()
	_, err := NewArtifactStore(Selector{OpenWaterPath: path}, shared, 0, utils.DiscardLogger()).Load(ctx, ModelOpenWater)
	require.NoError(t, err)

	data, err := shared.Get(ctx, byteKey(t, path))
	require.NoError(t, err)
	assert.Equal(t, sumArtifact, string(data))

	replica := NewArtifactStore(Selector{OpenWaterPath: path}, shared, 0, utils.DiscardLogger())
	_, err = replica.Load(ctx, ModelOpenWater)
	require.NoError(t, err)
	assert.Equal(t, 1, replica.Loads())
}

func TestArtifactStoreReloadsReplacedFile(t *testing.T) {
	path := writeArtifact(t, t.TempDir(), "open.json", sumArtifact)
	store := NewArtifactStore(Selector{OpenWaterPath: path}, cache.NewMemoryProvider(), 0, utils.DiscardLogger())
	ctx := context.Background()

	model, err := store.Load(ctx, ModelOpenWater)
	require.NoError(t, err)
	pred, err := model.Predict([][]float64{row(1, 1)})
	require.NoError(t, err)
	assert.Equal(t, []float64{4}, pred)

	bumpArtifact(t, path, strings.Replace(sumArtifact, `"bias": [1]`, `"bias": [100]`, 1))

	model, err = store.Load(ctx, ModelOpenWater)
	require.NoError(t, err)
	pred, err = model.Predict([][]float64{row(1, 1)})
	require.NoError(t, err)
	assert.Equal(t, []float64{103}, pred)
	assert.Equal(t, 2, store.Loads())
}

func TestArtifactStoreDoesNotCacheBrokenArtifact(t *testing.T) {
	path := writeArtifact(t, t.TempDir(), "open.json", sumArtifact[:40])
	shared := cache.NewMemoryProvider()
	store := NewArtifactStore(Selector{OpenWaterPath: path}, shared, time.Hour, utils.DiscardLogger())
	ctx := context.Background()

	_, err := store.Load(ctx, ModelOpenWater)
	require.ErrorIs(t, err, ErrArtifactLoad)
	_, err = shared.Get(ctx, byteKey(t, path))
	assert.ErrorIs(t, err, cache.ErrCacheMiss)

	bumpArtifact(t, path, sumArtifact)
	_, err = store.Load(ctx, ModelOpenWater)
	require.NoError(t, err)
	_, err = NewArtifactStore(Selector{OpenWaterPath: path}, shared, time.Hour, utils.DiscardLogger()).Load(ctx, ModelOpenWater)
	require.NoError(t, err)
}

func TestArtifactStoreReplacesCorruptCachedBytes(t *testing.T) {
	path := writeArtifact(t, t.TempDir(), "open.json", sumArtifact)
	shared := cache.NewMemoryProvider()
	ctx := context.Background()
	key := byteKey(t, path)
	require.NoError(t, shared.Set(ctx, key, []byte(`{"name":`), 0))

	_, err := NewArtifactStore(Selector{OpenWaterPath: path}, shared, 0, utils.DiscardLogger()).Load(ctx, ModelOpenWater)
	require.NoError(t, err)

	data, err := shared.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, sumArtifact, string(data))
}

func TestArtifactStoreSharesModelAcrossCodes(t *testing.T) {
	path := writeArtifact(t, t.TempDir(), "open.json", sumArtifact)
	store := NewArtifactStore(Selector{OpenWaterPath: path}, nil, 0, utils.DiscardLogger())
	ctx := context.Background()

	a, err := store.Load(ctx, ModelUnspecified)
	require.NoError(t, err)
	b, err := store.Load(ctx, ModelOpenWater)
	require.NoError(t, err)
	assert.Same(t, a, b)
	assert.Equal(t, 1, store.Loads())
}

func TestArtifactStoreConcurrentLoads(t *testing.T) {
	path := writeArtifact(t, t.TempDir(), "open.json", sumArtifact)
	store := NewArtifactStore(Selector{OpenWaterPath: path}, nil, 0, utils.DiscardLogger())

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.Load(context.Background(), ModelOpenWater)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, store.Loads())
}

type firstColumnModel struct{}

func (firstColumnModel) Predict(rows [][]float64) ([]float64, error) {
	out := make([]float64, len(rows))
	for i, r := range rows {
		out[i] = r[0]
	}
	return out, nil
}

func (firstColumnModel) Evaluate([][]float64, []float64) (Score, error) {
	return Score{}, errors.New("scoring unavailable")
}

type loaderFunc func(ctx context.Context, code int32) (Model, error)

func (f loaderFunc) Load(ctx context.Context, code int32) (Model, error) { return f(ctx, code) }

func estimateInput(n int) models.EstimateInput {
	var cols [models.FeatureCount][]float64
	for j := range cols {
		col := make([]float64, n)
		for i := range col {
			col[i] = float64(i + j)
		}
		cols[j] = col
	}
	port := make([]float64, n)
	stbd := make([]float64, n)
	sog := make([]float64, n)
	for i := 0; i < n; i++ {
		port[i] = float64(100 * i)
		stbd[i] = float64(300 * i)
		sog[i] = float64(i) / 2
	}
	return models.EstimateInput{
		Features:       models.FeatureSetFromColumns(cols),
		MotorPowerPort: port,
		MotorPowerStbd: stbd,
		OriginalSOG:    sog,
	}
}

func TestEngineEstimate(t *testing.T) {
	var requested int32 = -1
	engine := NewEngine(loaderFunc(func(_ context.Context, code int32) (Model, error) {
		requested = code
		return firstColumnModel{}, nil
	}))

	in := estimateInput(3)
	in.ModelType = ModelIce
	res, err := engine.Estimate(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, ModelIce, requested)
	assert.Equal(t, []float64{0, 1, 2}, res.Record.PowerEstimate)
	assert.Equal(t, []float64{0, 200, 400}, res.Record.PowerActual)
	assert.Equal(t, []float64{0, 0.5, 1}, res.Record.SpeedOverGround)
	assert.Error(t, res.EvalErr, "evaluation failure is reported but not fatal")
}

func TestEngineShapeMismatch(t *testing.T) {
	engine := NewEngine(loaderFunc(func(context.Context, int32) (Model, error) {
		t.Fatalf("model must not load for malformed input")
		return nil, nil
	}))

	in := estimateInput(3)
	in.MotorPowerStbd = in.MotorPowerStbd[:1]
	_, err := engine.Estimate(context.Background(), in)
	assert.ErrorIs(t, err, models.ErrShapeMismatch)
}

func TestEngineArtifactFailure(t *testing.T) {
	engine := NewEngine(loaderFunc(func(context.Context, int32) (Model, error) {
		return nil, ErrArtifactLoad
	}))
	_, err := engine.Estimate(context.Background(), estimateInput(2))
	assert.ErrorIs(t, err, ErrArtifactLoad)
}
