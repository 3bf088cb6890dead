package ml

import (
	"fmt"
	"time"
)

type TrainingConfig struct {
	Epochs       int
	VerboseEvery int    // How often to log progress (in epochs), 0 picks epochs/100
	ModelPath    string // Parameters are saved here after the last epoch when set
}

// Train runs epochs passes over the dataset, one forward and one backward
// pass per sample, in dataset order.
func (nw *NeuralNetwork) Train(inputs, targets [][]float64, epochs int) error {
	return nw.Fit(inputs, targets, TrainingConfig{Epochs: epochs})
}

func (nw *NeuralNetwork) Fit(inputs, targets [][]float64, cfg TrainingConfig) error {
	if err := nw.validateDataset(inputs, targets); err != nil {
		return err
	}
	verboseEvery := progressInterval(cfg)

	start := time.Now()
	nw.logger.Printf("Training %v network on %d samples for %d epochs", nw.Layers, len(inputs), cfg.Epochs)

	for epoch := 1; epoch <= cfg.Epochs; epoch++ {
		if epoch%verboseEvery == 0 {
			nw.logger.Printf("Epoch %d of %d | Time: %v", epoch, cfg.Epochs, time.Since(start))
		}

		for j := range inputs {
			outputs, err := nw.FeedForward(inputs[j])
			if err != nil {
				return fmt.Errorf("train: epoch %d, sample %d: %w", epoch, j, err)
			}
			if err := nw.BackPropagate(outputs, targets[j]); err != nil {
				return fmt.Errorf("train: epoch %d, sample %d: %w", epoch, j, err)
			}
		}
	}

	if cfg.ModelPath != "" {
		if err := nw.Save(cfg.ModelPath); err != nil {
			return err
		}
	}
	nw.logger.Printf("Training Complete. Total Time: %v", time.Since(start))
	return nil
}

func (nw *NeuralNetwork) validateDataset(inputs, targets [][]float64) error {
	if len(inputs) != len(targets) {
		return fmt.Errorf("%w: train: %d inputs but %d targets", ErrShapeMismatch, len(inputs), len(targets))
	}
	for j := range inputs {
		if len(inputs[j]) != nw.inputSize() {
			return fmt.Errorf("%w: train: sample %d: expected %d inputs, got %d", ErrShapeMismatch, j, nw.inputSize(), len(inputs[j]))
		}
		if len(targets[j]) != nw.outputSize() {
			return fmt.Errorf("%w: train: sample %d: expected %d targets, got %d", ErrShapeMismatch, j, nw.outputSize(), len(targets[j]))
		}
	}
	return nil
}

// progressInterval reports every epochs/100-th epoch, or every epoch below 100.
func progressInterval(cfg TrainingConfig) int {
	if cfg.VerboseEvery > 0 {
		return cfg.VerboseEvery
	}
	if cfg.Epochs < 100 {
		return 1
	}
	return cfg.Epochs / 100
}
