package ml

import (
	"bytes"
	"log"
	"math"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	xorInputs  = [][]float64{{0, 0}, {0, 1}, {1, 0}, {1, 1}}
	xorTargets = [][]float64{{0}, {1}, {1}, {0}}
)

// TestTrainXOR tests the classic XOR benchmark on a 2-3-1 sigmoid network.
// A few seeds are tried since a 3-unit hidden layer can settle in a local minimum.
func TestTrainXOR(t *testing.T) {
	if testing.Short() {
		t.Skip("XOR training is slow")
	}

	for seed := uint64(1); seed <= 20; seed++ {
		nw, err := NewNetwork([]int{2, 3, 1}, 0.5, ActSigmoid, seeded(seed), quiet)
		require.NoError(t, err)
		require.NoError(t, nw.Train(xorInputs, xorTargets, 20000))

		converged := true
		for i, in := range xorInputs {
			out, err := nw.FeedForward(in)
			require.NoError(t, err)
			require.Len(t, out, 1)
			if math.Abs(out[0]-xorTargets[i][0]) > 0.1 {
				converged = false
			}
		}
		if converged {
			return
		}
		t.Logf("seed %d did not converge", seed)
	}
	t.Fatal("XOR predictions never came within 0.1 of their targets")
}

// Train is exactly one FeedForward and one BackPropagate per sample, in order.
func TestTrainMatchesManualLoop(t *testing.T) {
	a, err := NewNetwork([]int{2, 3, 1}, 0.3, ActTanh, seeded(5), quiet)
	require.NoError(t, err)
	b, err := NewNetwork([]int{2, 3, 1}, 0.3, ActTanh, seeded(5), quiet)
	require.NoError(t, err)

	require.NoError(t, a.Train(xorInputs, xorTargets, 3))

	for epoch := 0; epoch < 3; epoch++ {
		for j := range xorInputs {
			out, err := b.FeedForward(xorInputs[j])
			require.NoError(t, err)
			require.NoError(t, b.BackPropagate(out, xorTargets[j]))
		}
	}
	assertParamsEqual(t, b.Weights, b.Biases, a)
}

func TestTrainZeroEpochs(t *testing.T) {
	nw := newTestNetwork(t, []int{2, 3, 1}, 0.5, ActSigmoid)
	weights, biases := snapshot(nw)
	require.NoError(t, nw.Train(xorInputs, xorTargets, 0))
	assertParamsEqual(t, weights, biases, nw)
}

func TestTrainShapeMismatch(t *testing.T) {
	nw := newTestNetwork(t, []int{2, 3, 1}, 0.5, ActSigmoid)
	weights, biases := snapshot(nw)

	err := nw.Train(xorInputs, xorTargets[:3], 10)
	require.ErrorIs(t, err, ErrShapeMismatch)

	badInput := [][]float64{{0, 0}, {0, 1, 1}}
	err = nw.Train(badInput, xorTargets[:2], 10)
	require.ErrorIs(t, err, ErrShapeMismatch)
	assert.Contains(t, err.Error(), "sample 1")

	badTarget := [][]float64{{0}, {1, 0}}
	err = nw.Train(xorInputs[:2], badTarget, 10)
	require.ErrorIs(t, err, ErrShapeMismatch)
	assert.Contains(t, err.Error(), "expected 1 targets, got 2")

	// Validation happens before the first sample is trained on.
	assertParamsEqual(t, weights, biases, nw)
}

func TestProgressInterval(t *testing.T) {
	tests := []struct {
		cfg  TrainingConfig
		want int
	}{
		{TrainingConfig{Epochs: 1}, 1},
		{TrainingConfig{Epochs: 99}, 1},
		{TrainingConfig{Epochs: 100}, 1},
		{TrainingConfig{Epochs: 250}, 2},
		{TrainingConfig{Epochs: 10000}, 100},
		{TrainingConfig{Epochs: 10000, VerboseEvery: 7}, 7},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, progressInterval(tt.cfg), "%+v", tt.cfg)
	}
}

func TestTrainReportsProgress(t *testing.T) {
	var buf bytes.Buffer
	nw, err := NewNetwork([]int{2, 2, 1}, 0.1, ActSigmoid, seeded(3), WithLogger(log.New(&buf, "", 0)))
	require.NoError(t, err)

	require.NoError(t, nw.Train(xorInputs, xorTargets, 300))
	assert.Equal(t, 100, strings.Count(buf.String(), "Epoch "))
	assert.Contains(t, buf.String(), "Epoch 3 of 300")
	assert.Contains(t, buf.String(), "Epoch 300 of 300")

	buf.Reset()
	require.NoError(t, nw.Train(xorInputs, xorTargets, 5))
	assert.Equal(t, 5, strings.Count(buf.String(), "Epoch "))
}

func TestFitSavesModel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.json")
	nw := newTestNetwork(t, []int{2, 3, 1}, 0.5, ActSigmoid)

	require.NoError(t, nw.Fit(xorInputs, xorTargets, TrainingConfig{Epochs: 10, ModelPath: path}))

	loaded, err := LoadNetwork(path, 0.5, quiet)
	require.NoError(t, err)
	assertParamsEqual(t, nw.Weights, nw.Biases, loaded)
}
