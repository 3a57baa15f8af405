package estimation

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrArtifactLoad reports an artifact that cannot be read or does not describe a usable model.
var ErrArtifactLoad = errors.New("model artifact load failed")

// Model is a pretrained regressor.
type Model interface {
	// Predict runs a forward pass over rows of features and returns one estimate per row.
	Predict(rows [][]float64) ([]float64, error)
	// Evaluate scores predictions for rows against truth. It has no side effects.
	Evaluate(rows [][]float64, truth []float64) (Score, error)
}

// Score is the result of Evaluate: loss is mean squared error, Metric is the artifact's
// reporting metric.
type Score struct {
	Loss       float64
	MetricName string
	Metric     float64
}

// Artifact is the serialized form of a dense feed-forward regressor.
type Artifact struct {
	Name   string  `json:"name"`
	Inputs int     `json:"inputs"`
	Metric string  `json:"metric"`
	Layers []Layer `json:"layers"`
}

// Layer is a fully connected layer; Weights[j][i] maps input i onto unit j.
type Layer struct {
	Weights    [][]float64 `json:"weights"`
	Bias       []float64   `json:"bias"`
	Activation string      `json:"activation"`
}

// Network is a validated, ready to run Artifact.
type Network struct {
	name   string
	inputs int
	metric string
	layers []denseLayer
}

type denseLayer struct {
	weights [][]float64
	bias    []float64
	act     func(float64) float64
}

// ParseArtifact decodes and validates an artifact document.
func ParseArtifact(data []byte) (*Network, error) {
	var art Artifact
	if err := json.Unmarshal(data, &art); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrArtifactLoad, err)
	}
	return NewNetwork(art)
}

// NewNetwork validates layer dimensions and builds a Network.
func NewNetwork(art Artifact) (*Network, error) {
	if art.Inputs <= 0 {
		return nil, fmt.Errorf("%w: inputs must be positive", ErrArtifactLoad)
	}
	if len(art.Layers) == 0 {
		return nil, fmt.Errorf("%w: no layers", ErrArtifactLoad)
	}

	metric := strings.ToLower(strings.TrimSpace(art.Metric))
	if metric == "" {
		metric = "mae"
	}
	if _, ok := metrics[metric]; !ok {
		return nil, fmt.Errorf("%w: unknown metric %q", ErrArtifactLoad, art.Metric)
	}

	net := &Network{name: art.Name, inputs: art.Inputs, metric: metric}
	width := art.Inputs
	for l, layer := range art.Layers {
		if len(layer.Weights) == 0 {
			return nil, fmt.Errorf("%w: layer %d has no units", ErrArtifactLoad, l)
		}
		if len(layer.Bias) != len(layer.Weights) {
			return nil, fmt.Errorf("%w: layer %d has %d units but %d biases", ErrArtifactLoad, l, len(layer.Weights), len(layer.Bias))
		}
		for j, row := range layer.Weights {
			if len(row) != width {
				return nil, fmt.Errorf("%w: layer %d unit %d expects %d inputs, has %d weights", ErrArtifactLoad, l, j, width, len(row))
			}
		}
		act, ok := activations[strings.ToLower(layer.Activation)]
		if !ok {
			return nil, fmt.Errorf("%w: layer %d unknown activation %q", ErrArtifactLoad, l, layer.Activation)
		}
		net.layers = append(net.layers, denseLayer{weights: layer.Weights, bias: layer.Bias, act: act})
		width = len(layer.Weights)
	}
	if width != 1 {
		return nil, fmt.Errorf("%w: output layer has %d units, want 1", ErrArtifactLoad, width)
	}
	return net, nil
}

// Name returns the artifact name.
func (n *Network) Name() string { return n.name }

// Predict implements Model.
func (n *Network) Predict(rows [][]float64) ([]float64, error) {
	out := make([]float64, len(rows))
	for i, row := range rows {
		if len(row) != n.inputs {
			return nil, fmt.Errorf("row %d has %d features, model %q expects %d", i, len(row), n.name, n.inputs)
		}
		out[i] = n.forward(row)
	}
	return out, nil
}

// Evaluate implements Model.
func (n *Network) Evaluate(rows [][]float64, truth []float64) (Score, error) {
	if len(rows) != len(truth) {
		return Score{}, fmt.Errorf("%d rows but %d labels", len(rows), len(truth))
	}
	pred, err := n.Predict(rows)
	if err != nil {
		return Score{}, err
	}
	return Score{
		Loss:       meanSquaredError(pred, truth),
		MetricName: n.metric,
		Metric:     metrics[n.metric](pred, truth),
	}, nil
}

func (n *Network) forward(x []float64) float64 {
	for _, layer := range n.layers {
		next := make([]float64, len(layer.weights))
		for j, w := range layer.weights {
			sum := layer.bias[j]
			for i, v := range x {
				sum += w[i] * v
			}
			next[j] = layer.act(sum)
		}
		x = next
	}
	return x[0]
}

var activations = map[string]func(float64) float64{
	"":        func(v float64) float64 { return v },
	"linear":  func(v float64) float64 { return v },
	"relu":    func(v float64) float64 { return math.Max(0, v) },
	"sigmoid": func(v float64) float64 { return 1 / (1 + math.Exp(-v)) },
	"tanh":    math.Tanh,
}

var metrics = map[string]func(pred, truth []float64) float64{
	"mae":  meanAbsoluteError,
	"mse":  meanSquaredError,
	"rmse": func(p, t []float64) float64 { return math.Sqrt(meanSquaredError(p, t)) },
}

func meanSquaredError(pred, truth []float64) float64 {
	if len(pred) == 0 {
		return 0
	}
	var sum float64
	for i := range pred {
		d := pred[i] - truth[i]
		sum += d * d
	}
	return sum / float64(len(pred))
}

func meanAbsoluteError(pred, truth []float64) float64 {
	if len(pred) == 0 {
		return 0
	}
	var sum float64
	for i := range pred {
		sum += math.Abs(pred[i] - truth[i])
	}
	return sum / float64(len(pred))
}
