// Package learning trains and evaluates the two-stage revision model: a
// recurrent sequence encoder summarizes an author's prior revision history
// into a fixed-width vector, the first k entries of that vector are
// concatenated with the hand-engineered features of the author's current
// revision, and a feed-forward network maps the concatenation to a scalar
// prediction of revision quality or existence.
//
// The two sub-models are trained together but backpropagated independently:
// the predictor's backward pass returns the gradient with respect to its
// input, and the slice of that gradient covering the encoder bits is padded
// back to the encoder's output width and routed into the encoder's own
// backward pass. There is no autodiff; the bridge is explicit.
//
// The main routines in the package are TrainWithEncoder, TrainPredictorOnly,
// Evaluate and RandomBaseline.
package learning

import "fmt"

// Hidden width of the sequence encoder.
const M = 12

// Per-revision feature counts for the two prediction targets.
const (
	QualityFeatures   = 14
	ExistenceFeatures = 15
)

// Indices of the size-of-change fields (characters added and removed) in a
// current-revision feature vector. They drive weighted learning and the
// evaluation weights.
const (
	sizeAddedIdx   = 3
	sizeRemovedIdx = 4
)

// Item is one author's labeled example: the ordered feature rows of the
// author's past revisions, the feature vector of the current revision with
// the label excluded, and the target label for the current revision. A
// Target of 0 means the label is absent and the item is skipped by training
// and evaluation.
type Item struct {
	Author   string
	History  [][]float64
	Features []float64
	Target   float64
}

// SequenceEncoder summarizes an ordered sequence of per-revision feature
// rows into a fixed-width vector and learns from a gradient aligned to that
// vector. Backward scales each parameter update by scale.
type SequenceEncoder interface {
	Forward(history [][]float64) []float64
	Backward(grad []float64, scale float64)
	OutputWidth() int
}

// ScalarPredictor maps a fixed-width input vector to one scalar and learns
// from the scalar loss gradient. Backward returns the gradient of the loss
// with respect to the input vector.
type ScalarPredictor interface {
	Forward(x []float64) float64
	Backward(dy float64) []float64
	InputWidth() int
}

// Model is the trained (encoder, predictor) pair, the only durable artifact
// of a training run.
type Model struct {
	Encoder   SequenceEncoder
	Predictor ScalarPredictor
}

// EncoderMode selects how the sequence encoder participates in a run.
type EncoderMode int

const (
	// EncoderFull feeds the encoder's whole output vector to the predictor.
	EncoderFull EncoderMode = iota
	// EncoderSlice feeds the first K entries of the encoder output.
	EncoderSlice
	// EncoderDisabled bypasses the encoder entirely.
	EncoderDisabled
	// EncoderFixed substitutes a constant vector for the encoder bits,
	// probing the predictor independent of the encoder.
	EncoderFixed
)

// EncoderUsage is the tagged mode describing the channel between encoder and
// predictor. Construct values with UseFull, UseSlice, Disabled or UseFixed.
type EncoderUsage struct {
	Mode  EncoderMode
	K     int
	Fixed []float64
}

// UseFull uses the encoder's whole output vector.
func UseFull() EncoderUsage { return EncoderUsage{Mode: EncoderFull} }

// UseSlice uses the first k entries of the encoder output. k of 0 is the
// same as Disabled.
func UseSlice(k int) EncoderUsage {
	if k == 0 {
		return Disabled()
	}
	return EncoderUsage{Mode: EncoderSlice, K: k}
}

// Disabled bypasses the encoder.
func Disabled() EncoderUsage { return EncoderUsage{Mode: EncoderDisabled} }

// UseFixed feeds the constant vector vals in place of the encoder bits.
func UseFixed(vals ...float64) EncoderUsage {
	return EncoderUsage{Mode: EncoderFixed, Fixed: vals}
}

// runsEncoder reports whether the mode requires encoder forward and backward
// passes.
func (u EncoderUsage) runsEncoder() bool {
	return u.Mode == EncoderFull || u.Mode == EncoderSlice
}

// bits returns the number of encoder-derived (or substituted) entries
// prepended to the predictor input when the encoder output width is w.
func (u EncoderUsage) bits(w int) (int, error) {
	switch u.Mode {
	case EncoderFull:
		return w, nil
	case EncoderSlice:
		if u.K > w {
			return 0, fmt.Errorf("learning: requested %d encoder bits, output width is %d", u.K, w)
		}
		return u.K, nil
	case EncoderFixed:
		return len(u.Fixed), nil
	default:
		return 0, nil
	}
}

// updateSize is the average of the two size-of-change fields of a
// current-revision feature vector.
func updateSize(fy []float64) float64 {
	return (fy[sizeAddedIdx] + fy[sizeRemovedIdx]) / 2
}

// learningFactor converts an update size into a per-example learning-rate
// scale. Squaring keeps the factor non-negative and super-linear in the
// size of the edit.
func learningFactor(size float64) float64 { return size * size }

// NormalizeTarget maps a label in {-1, 0, 1} onto {0, 0.5, 1}.
func NormalizeTarget(yt float64) float64 { return (yt + 1) / 2 }
