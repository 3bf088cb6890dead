package main

import (
	"fmt"
	"log"
	"os"

	"github.com/b0tShaman/neuro-mlp/ml"
)

// -------- MAIN -------- //
func main() {
	modelFile := "model.json"

	// 1. Data: the XOR truth table
	inputs := [][]float64{
		{0, 0},
		{0, 1},
		{1, 0},
		{1, 1},
	}
	targets := [][]float64{
		{0},
		{1},
		{1},
		{0},
	}

	// 2. Initialize Network
	nw, err := ml.NewNetwork([]int{2, 3, 1}, 0.5, ml.ActSigmoid)
	if err != nil {
		log.Fatal(err)
	}

	// Auto-Load weights if they exist
	if _, err := os.Stat(modelFile); err == nil {
		fmt.Println("Found existing model. Loading weights...")
		if err := nw.Load(modelFile); err != nil {
			fmt.Printf("Model mismatch (%v). Starting training from scratch.\n", err)
		}
	}

	// 3. Configure & Train
	config := ml.TrainingConfig{
		Epochs:    10000,
		ModelPath: modelFile,
	}
	if err := nw.Fit(inputs, targets, config); err != nil {
		log.Fatal(err)
	}

	// 4. Inference
	for _, in := range inputs {
		out, err := nw.Predict(in)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Printf("%v and %v: %.4f\n", in[0], in[1], out[0])
	}
}
