package learning

import (
	"math/rand"

	"github.com/davbzh/lstm-wikipedia/metrics"
)

// Evaluation holds the parallel outputs of a forward-only pass over held-out
// data: per-example squared errors, predictions, true labels, and weights
// derived from each revision's size of change. The weights are collected for
// downstream weighted scoring but are not applied by Score.
type Evaluation struct {
	Errors      []float64
	Predictions []float64
	TrueLabels  []float64
	Weights     []float64
}

// Evaluate runs the trained pair over items, mirroring the training forward
// pass: items without a target label are skipped, the encoder participates
// according to usage, and quality-mode targets are normalized when the
// encoder is in use. No backward passes run, so the model is unchanged.
func Evaluate(items []Item, m *Model, usage EncoderUsage, quality bool) (Evaluation, error) {
	ev := Evaluation{
		Errors:      []float64{},
		Predictions: []float64{},
		TrueLabels:  []float64{},
		Weights:     []float64{},
	}
	for _, it := range items {
		if it.Target == 0 {
			continue
		}

		var bits []float64
		if usage.runsEncoder() {
			y := m.Encoder.Forward(it.History)
			k, err := usage.bits(len(y))
			if err != nil {
				return Evaluation{}, err
			}
			bits, err = SliceBits(y, k)
			if err != nil {
				return Evaluation{}, err
			}
		} else if usage.Mode == EncoderFixed {
			bits = usage.Fixed
		}

		x := append(append([]float64(nil), bits...), it.Features...)
		y := m.Predictor.Forward(x)

		yt := it.Target
		if usage.runsEncoder() && quality {
			yt = NormalizeTarget(yt)
		}

		ev.Errors = append(ev.Errors, (y-yt)*(y-yt))
		ev.Predictions = append(ev.Predictions, y)
		ev.TrueLabels = append(ev.TrueLabels, yt)
		ev.Weights = append(ev.Weights, updateSize(it.Features))
	}
	return ev, nil
}

// Score binarizes the predictions and true labels and computes per-class
// precision, recall, F1 and support. The binarization maps values below 0.5
// to class 1 and the rest to class 0, matching the label polarity the
// pipeline has always used. Weights are not applied; use WeightedScore for
// that.
func (ev Evaluation) Score() (metrics.Result, error) {
	return metrics.PrecisionRecallF1(binarize(ev.TrueLabels), binarize(ev.Predictions), nil)
}

// WeightedScore is Score with each example weighted by its size-of-change
// weight.
func (ev Evaluation) WeightedScore() (metrics.Result, error) {
	return metrics.PrecisionRecallF1(binarize(ev.TrueLabels), binarize(ev.Predictions), ev.Weights)
}

// binarize buckets continuous values into {0, 1} classes. Values below 0.5
// map to class 1.
func binarize(vals []float64) []int {
	out := make([]int, len(vals))
	for i, v := range vals {
		if v < 0.5 {
			out[i] = 1
		}
	}
	return out
}

// RandomBaseline scores a uniformly random binary labeling of the items
// against their true labels. It is the sanity floor a trained model has to
// beat. Ground truth maps negative targets to class 0 and everything else to
// class 1.
func RandomBaseline(items []Item, rng *rand.Rand) (metrics.Result, error) {
	yTrue := make([]int, len(items))
	yPred := make([]int, len(items))
	for i, it := range items {
		if it.Target >= 0 {
			yTrue[i] = 1
		}
		yPred[i] = rng.Intn(2)
	}
	return metrics.PrecisionRecallF1(yTrue, yPred, nil)
}
