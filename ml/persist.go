package ml

import (
	"encoding/json"
	"fmt"
	"os"
	"slices"
)

// savedNetwork is the on-disk form. Weights and Biases are required; Layers
// and Activation are absent from files written by older versions.
type savedNetwork struct {
	Layers     []int     `json:"layers,omitempty"`
	Activation string    `json:"activation,omitempty"`
	Weights    []*Matrix `json:"weights"`
	Biases     []*Matrix `json:"biases"`
}

// Save writes weights and biases, plus the topology and activation they were
// trained with, to filename as JSON, replacing any existing content.
func (nw *NeuralNetwork) Save(filename string) error {
	buf, err := json.Marshal(savedNetwork{
		Layers:     nw.Layers,
		Activation: nw.Activation.String(),
		Weights:    nw.Weights,
		Biases:     nw.Biases,
	})
	if err != nil {
		return fmt.Errorf("%w: encode %s: %w", ErrIO, filename, err)
	}
	if err := os.WriteFile(filename, buf, 0o644); err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	nw.logger.Println("Saving model to", filename)
	return nil
}

// Load replaces weights and biases with those stored in filename. The stored
// matrices must match the network's topology and activation.
func (nw *NeuralNetwork) Load(filename string) error {
	saved, err := readSaved(filename)
	if err != nil {
		return err
	}

	// --- VALIDATION STEP ---
	if saved.Layers != nil && !slices.Equal(saved.Layers, nw.Layers) {
		return fmt.Errorf("%w: load %s: network has layers %v, file has %v", ErrShapeMismatch, filename, nw.Layers, saved.Layers)
	}
	if saved.Activation != "" {
		act, err := ParseActivation(saved.Activation)
		if err != nil {
			return fmt.Errorf("%w: %s: %w", ErrParse, filename, err)
		}
		if act != nw.Activation {
			return fmt.Errorf("%w: load %s: network uses %v, file has %v", ErrActivationMismatch, filename, nw.Activation, act)
		}
	}
	if err := checkShapes(nw.Layers, saved); err != nil {
		return fmt.Errorf("load %s: %w", filename, err)
	}

	// --- APPLICATION STEP ---
	nw.Weights = saved.Weights
	nw.Biases = saved.Biases
	nw.cache = nil
	nw.logger.Println("Weights loaded from", filename)
	return nil
}

// LoadNetwork builds a network from a file that records its topology and
// activation. The learning rate is not persisted and must be supplied.
func LoadNetwork(filename string, learningRate float64, opts ...Option) (*NeuralNetwork, error) {
	saved, err := readSaved(filename)
	if err != nil {
		return nil, err
	}
	if saved.Layers == nil || saved.Activation == "" {
		return nil, fmt.Errorf("%w: %s: missing layers or activation field", ErrParse, filename)
	}
	act, err := ParseActivation(saved.Activation)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrParse, filename, err)
	}

	nw, err := NewNetwork(saved.Layers, learningRate, act, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrParse, filename, err)
	}
	if err := checkShapes(nw.Layers, saved); err != nil {
		return nil, fmt.Errorf("load %s: %w", filename, err)
	}
	nw.Weights = saved.Weights
	nw.Biases = saved.Biases
	return nw, nil
}

func readSaved(filename string) (*savedNetwork, error) {
	buf, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIO, err)
	}

	var saved savedNetwork
	if err := json.Unmarshal(buf, &saved); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrParse, filename, err)
	}
	if saved.Weights == nil || saved.Biases == nil {
		return nil, fmt.Errorf("%w: %s: missing weights or biases field", ErrParse, filename)
	}
	for i := range saved.Weights {
		if saved.Weights[i] == nil {
			return nil, fmt.Errorf("%w: %s: weights[%d] is null", ErrParse, filename, i)
		}
	}
	for i := range saved.Biases {
		if saved.Biases[i] == nil {
			return nil, fmt.Errorf("%w: %s: biases[%d] is null", ErrParse, filename, i)
		}
	}
	return &saved, nil
}

// checkShapes verifies one weight and one bias matrix per layer transition,
// each shaped for that transition.
func checkShapes(layers []int, saved *savedNetwork) error {
	transitions := len(layers) - 1
	if len(saved.Weights) != transitions || len(saved.Biases) != transitions {
		return fmt.Errorf("%w: expected %d layer transitions, got %d weights and %d biases",
			ErrShapeMismatch, transitions, len(saved.Weights), len(saved.Biases))
	}

	checkDims := func(name string, idx int, m *Matrix, rows, cols int) error {
		if m.rows != rows || m.cols != cols {
			return fmt.Errorf("%w: %s[%d]: expected [%d, %d], got [%d, %d]",
				ErrShapeMismatch, name, idx, rows, cols, m.rows, m.cols)
		}
		return nil
	}

	for i := 0; i < transitions; i++ {
		if err := checkDims("weights", i, saved.Weights[i], layers[i+1], layers[i]); err != nil {
			return err
		}
		if err := checkDims("biases", i, saved.Biases[i], layers[i+1], 1); err != nil {
			return err
		}
	}
	return nil
}
