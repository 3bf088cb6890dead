package ml

import (
	"fmt"
	"log"
	"math/rand/v2"
	"os"
)

type NeuralNetwork struct {
	Layers       []int
	Weights      []*Matrix // Weights[i] is [Layers[i+1], Layers[i]]
	Biases       []*Matrix // Biases[i] is [Layers[i+1], 1]
	LearningRate float64
	Activation   ActivationType

	// Activations of the latest forward pass, index 0 is the input column.
	cache []*Matrix

	rng    *rand.Rand
	logger *log.Logger
}

type Option func(*NeuralNetwork)

// WithRand draws initial weights and biases from rng, making construction reproducible.
func WithRand(rng *rand.Rand) Option {
	return func(nw *NeuralNetwork) {
		nw.rng = rng
	}
}

// WithLogger redirects training progress and persistence notices.
func WithLogger(logger *log.Logger) Option {
	return func(nw *NeuralNetwork) {
		nw.logger = logger
	}
}

// Neural Network Builder
func NewNetwork(layers []int, learningRate float64, act ActivationType, opts ...Option) (*NeuralNetwork, error) {
	if len(layers) < 2 {
		return nil, fmt.Errorf("%w: need an input and an output layer, got %d layers", ErrInvalidTopology, len(layers))
	}
	for i, size := range layers {
		if size < 1 {
			return nil, fmt.Errorf("%w: layer %d has width %d", ErrInvalidTopology, i, size)
		}
	}
	if !act.valid() {
		return nil, fmt.Errorf("%w: %v", ErrUnknownActivation, act)
	}

	nw := &NeuralNetwork{
		Layers:       append([]int(nil), layers...),
		LearningRate: learningRate,
		Activation:   act,
	}
	for _, opt := range opts {
		opt(nw)
	}
	if nw.rng == nil {
		nw.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if nw.logger == nil {
		nw.logger = log.New(os.Stdout, "", log.LstdFlags)
	}

	for i := 0; i < len(layers)-1; i++ {
		nw.Weights = append(nw.Weights, NewRandomMatrix(layers[i+1], layers[i], nw.rng))
		nw.Biases = append(nw.Biases, NewRandomMatrix(layers[i+1], 1, nw.rng))
	}
	return nw, nil
}

// -------- NEURAL NETWORK METHODS -------- //
func (nw *NeuralNetwork) inputSize() int  { return nw.Layers[0] }
func (nw *NeuralNetwork) outputSize() int { return nw.Layers[len(nw.Layers)-1] }

// FeedForward propagates input through every layer transition and returns the
// output layer's activations. The per-layer activations are cached for the
// next BackPropagate call.
func (nw *NeuralNetwork) FeedForward(input []float64) ([]float64, error) {
	nw.cache = nil
	if len(input) != nw.inputSize() {
		return nil, fmt.Errorf("%w: feed forward: expected %d inputs, got %d", ErrShapeMismatch, nw.inputSize(), len(input))
	}

	current := NewColumn(input)
	cache := make([]*Matrix, 0, len(nw.Layers))
	cache = append(cache, current)

	for i := range nw.Weights {
		z, err := nw.Weights[i].Multiply(current)
		if err != nil {
			return nil, fmt.Errorf("feed forward: layer %d: %w", i, err)
		}
		z, err = z.Add(nw.Biases[i])
		if err != nil {
			return nil, fmt.Errorf("feed forward: layer %d: %w", i, err)
		}
		current = z.Map(nw.Activation.Func)
		cache = append(cache, current)
	}

	nw.cache = cache
	return current.Values(), nil
}

// Predict is FeedForward under the name the demo and callers reading results use.
func (nw *NeuralNetwork) Predict(input []float64) ([]float64, error) {
	return nw.FeedForward(input)
}

// BackPropagate corrects weights and biases against the cache of the forward
// pass that produced outputs. The error signal flows backwards through the
// weights as they were before this call; all updates are committed together.
func (nw *NeuralNetwork) BackPropagate(outputs, targets []float64) error {
	if len(targets) != nw.outputSize() {
		return fmt.Errorf("%w: back propagate: expected %d targets, got %d", ErrShapeMismatch, nw.outputSize(), len(targets))
	}
	if len(outputs) != nw.outputSize() {
		return fmt.Errorf("%w: back propagate: expected %d outputs, got %d", ErrShapeMismatch, nw.outputSize(), len(outputs))
	}
	if len(nw.cache) != len(nw.Layers) {
		return ErrNoForwardPass
	}

	errs, err := NewColumn(targets).Subtract(NewColumn(outputs))
	if err != nil {
		return fmt.Errorf("back propagate: %w", err)
	}
	derivative := nw.Activation.Derivative
	gradient := nw.cache[len(nw.cache)-1].Map(derivative)

	weights := make([]*Matrix, len(nw.Weights))
	biases := make([]*Matrix, len(nw.Biases))

	for i := len(nw.Weights) - 1; i >= 0; i-- {
		gradient, err = gradient.HadamardProduct(errs)
		if err != nil {
			return fmt.Errorf("back propagate: layer %d: %w", i, err)
		}
		gradient = gradient.Scale(nw.LearningRate)

		delta, err := gradient.Multiply(nw.cache[i].Transpose())
		if err != nil {
			return fmt.Errorf("back propagate: layer %d: %w", i, err)
		}
		if weights[i], err = nw.Weights[i].Add(delta); err != nil {
			return fmt.Errorf("back propagate: layer %d: %w", i, err)
		}
		if biases[i], err = nw.Biases[i].Add(gradient); err != nil {
			return fmt.Errorf("back propagate: layer %d: %w", i, err)
		}

		errs, err = nw.Weights[i].Transpose().Multiply(errs)
		if err != nil {
			return fmt.Errorf("back propagate: layer %d: %w", i, err)
		}
		gradient = nw.cache[i].Map(derivative)
	}

	copy(nw.Weights, weights)
	copy(nw.Biases, biases)
	return nil
}
