// Package metrics computes binary classification metrics over {0,1} label
// slices: per-class precision, recall, F1 and support. Per-example weights
// are optional so callers that collect weights (for example from edit sizes)
// can plug them in without changing the unweighted path.
package metrics

import "errors"

var (
	errLen   = errors.New("metrics: length mismatch")
	errLabel = errors.New("metrics: labels must be 0 or 1")
)

// Result holds per-class metrics indexed by class label (0 and 1).
type Result struct {
	Precision [2]float64
	Recall    [2]float64
	F1        [2]float64
	Support   [2]float64
}

// PrecisionRecallF1 computes per-class precision, recall, F1 and support for
// binary labels. If weights is non-nil it must be parallel to the labels and
// every count becomes a weighted sum; otherwise each example counts 1. A
// class with no predicted (or no true) examples gets 0 for the undefined
// metric rather than NaN.
func PrecisionRecallF1(yTrue, yPred []int, weights []float64) (Result, error) {
	var res Result
	if len(yTrue) != len(yPred) {
		return res, errLen
	}
	if weights != nil && len(weights) != len(yTrue) {
		return res, errLen
	}
	var tp, fp, fn [2]float64
	for i := range yTrue {
		t, p := yTrue[i], yPred[i]
		if t < 0 || t > 1 || p < 0 || p > 1 {
			return res, errLabel
		}
		w := 1.0
		if weights != nil {
			w = weights[i]
		}
		res.Support[t] += w
		if p == t {
			tp[t] += w
		} else {
			fp[p] += w
			fn[t] += w
		}
	}
	for c := 0; c < 2; c++ {
		res.Precision[c] = safeDiv(tp[c], tp[c]+fp[c])
		res.Recall[c] = safeDiv(tp[c], tp[c]+fn[c])
		res.F1[c] = safeDiv(2*res.Precision[c]*res.Recall[c], res.Precision[c]+res.Recall[c])
	}
	return res, nil
}

func safeDiv(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}
