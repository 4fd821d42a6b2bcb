package learning

import "fmt"

// The k-bit bridge between the two sub-models is kept as pure functions so
// the slicing and padding behavior can be checked in isolation: slicing more
// bits than exist is an error, padding to a wider vector zero-fills.

// SliceBits returns the first k entries of the encoder output y. It is an
// error to request more bits than y holds.
func SliceBits(y []float64, k int) ([]float64, error) {
	if k < 0 {
		return nil, fmt.Errorf("learning: negative bit count %d", k)
	}
	if k > len(y) {
		return nil, fmt.Errorf("learning: requested %d encoder bits, output width is %d", k, len(y))
	}
	out := make([]float64, k)
	copy(out, y[:k])
	return out, nil
}

// EncoderGradient builds the gradient vector routed back into the encoder: a
// zero vector of the encoder's output width whose first k entries come from
// the predictor's input gradient. The predictor gradient covers the encoder
// bits followed by the revision features, so its leading k entries are the
// ones aligned with the encoder output. It is an error for k to exceed
// either the gradient length or the output width.
func EncoderGradient(inputGrad []float64, k, width int) ([]float64, error) {
	if k > len(inputGrad) {
		return nil, fmt.Errorf("learning: gradient has %d entries, need %d encoder bits", len(inputGrad), k)
	}
	if k > width {
		return nil, fmt.Errorf("learning: requested %d encoder bits, output width is %d", k, width)
	}
	out := make([]float64, width)
	copy(out[:k], inputGrad[:k])
	return out, nil
}
