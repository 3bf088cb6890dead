package ml

import (
	"fmt"
	"math"
	"strings"
)

const (
	ActIdentity ActivationType = iota
	ActSigmoid
	ActTanh
	ActRelu
)

var activationMap = map[string]ActivationType{
	"identity": ActIdentity,
	"linear":   ActIdentity,
	"sigmoid":  ActSigmoid,
	"tanh":     ActTanh,
	"relu":     ActRelu,
}

// ActivationType selects the scalar function applied after every layer
// transition. Derivatives take the activation's output, not its input.
type ActivationType int

func ParseActivation(name string) (ActivationType, error) {
	act, exists := activationMap[strings.ToLower(strings.TrimSpace(name))]
	if !exists {
		return 0, fmt.Errorf("%w: %q", ErrUnknownActivation, name)
	}
	return act, nil
}

func (a ActivationType) String() string {
	switch a {
	case ActIdentity:
		return "identity"
	case ActSigmoid:
		return "sigmoid"
	case ActTanh:
		return "tanh"
	case ActRelu:
		return "relu"
	}
	return fmt.Sprintf("ActivationType(%d)", int(a))
}

func (a ActivationType) valid() bool {
	return a >= ActIdentity && a <= ActRelu
}

// Func evaluates the activation at the pre-activation sum x.
func (a ActivationType) Func(x float64) float64 {
	switch a {
	case ActSigmoid:
		return Sigmoid(x)
	case ActTanh:
		return Tanh(x)
	case ActRelu:
		return Relu(x)
	}
	return Identity(x)
}

// Derivative evaluates the slope given y, the cached activation output.
func (a ActivationType) Derivative(y float64) float64 {
	switch a {
	case ActSigmoid:
		return SigmoidDerivative(y)
	case ActTanh:
		return TanhDerivative(y)
	case ActRelu:
		return ReluDerivative(y)
	}
	return IdentityDerivative(y)
}

func Identity(x float64) float64 { return x }

func IdentityDerivative(float64) float64 { return 1 }

func Sigmoid(x float64) float64 {
	return 1.0 / (1.0 + math.Exp(-x))
}

// SigmoidDerivative expects y = Sigmoid(x).
func SigmoidDerivative(y float64) float64 {
	return y * (1.0 - y)
}

func Tanh(x float64) float64 { return math.Tanh(x) }

// TanhDerivative expects y = Tanh(x).
func TanhDerivative(y float64) float64 {
	return 1.0 - y*y
}

func Relu(x float64) float64 {
	if x > 0 {
		return x
	}
	return 0
}

func ReluDerivative(y float64) float64 {
	if y > 0 {
		return 1
	}
	return 0
}
