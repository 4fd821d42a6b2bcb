package metrics

import (
	"math"
	"testing"
)

func TestPrecisionRecallF1(t *testing.T) {
	for _, test := range []struct {
		name          string
		yTrue, yPred  []int
		weights       []float64
		wantPrecision [2]float64
		wantRecall    [2]float64
		wantSupport   [2]float64
	}{
		{
			name:          "Perfect",
			yTrue:         []int{0, 1, 0, 1},
			yPred:         []int{0, 1, 0, 1},
			wantPrecision: [2]float64{1, 1},
			wantRecall:    [2]float64{1, 1},
			wantSupport:   [2]float64{2, 2},
		},
		{
			name:          "Inverted",
			yTrue:         []int{0, 1},
			yPred:         []int{1, 0},
			wantPrecision: [2]float64{0, 0},
			wantRecall:    [2]float64{0, 0},
			wantSupport:   [2]float64{1, 1},
		},
		{
			name:          "Mixed",
			yTrue:         []int{1, 1, 0, 0, 1},
			yPred:         []int{1, 0, 0, 1, 1},
			wantPrecision: [2]float64{1.0 / 2, 2.0 / 3},
			wantRecall:    [2]float64{1.0 / 2, 2.0 / 3},
			wantSupport:   [2]float64{2, 3},
		},
		{
			name:          "Weighted",
			yTrue:         []int{1, 1, 0},
			yPred:         []int{1, 0, 0},
			weights:       []float64{2, 1, 3},
			wantPrecision: [2]float64{3.0 / 4, 1},
			wantRecall:    [2]float64{1, 2.0 / 3},
			wantSupport:   [2]float64{3, 3},
		},
		{
			name:          "SingleClass",
			yTrue:         []int{0, 0},
			yPred:         []int{0, 0},
			wantPrecision: [2]float64{1, 0},
			wantRecall:    [2]float64{1, 0},
			wantSupport:   [2]float64{2, 0},
		},
	} {
		res, err := PrecisionRecallF1(test.yTrue, test.yPred, test.weights)
		if err != nil {
			t.Errorf("Case %s: unexpected error: %v", test.name, err)
			continue
		}
		for c := 0; c < 2; c++ {
			if !close(res.Precision[c], test.wantPrecision[c]) {
				t.Errorf("Case %s: class %d precision = %v, want %v", test.name, c, res.Precision[c], test.wantPrecision[c])
			}
			if !close(res.Recall[c], test.wantRecall[c]) {
				t.Errorf("Case %s: class %d recall = %v, want %v", test.name, c, res.Recall[c], test.wantRecall[c])
			}
			if res.Support[c] != test.wantSupport[c] {
				t.Errorf("Case %s: class %d support = %v, want %v", test.name, c, res.Support[c], test.wantSupport[c])
			}
			wantF1 := 0.0
			if test.wantPrecision[c]+test.wantRecall[c] > 0 {
				wantF1 = 2 * test.wantPrecision[c] * test.wantRecall[c] / (test.wantPrecision[c] + test.wantRecall[c])
			}
			if !close(res.F1[c], wantF1) {
				t.Errorf("Case %s: class %d f1 = %v, want %v", test.name, c, res.F1[c], wantF1)
			}
		}
	}
}

func TestPrecisionRecallF1Errors(t *testing.T) {
	if _, err := PrecisionRecallF1([]int{0, 1}, []int{0}, nil); err == nil {
		t.Error("no error for mismatched label lengths")
	}
	if _, err := PrecisionRecallF1([]int{0, 1}, []int{0, 1}, []float64{1}); err == nil {
		t.Error("no error for mismatched weight length")
	}
	if _, err := PrecisionRecallF1([]int{0, 2}, []int{0, 1}, nil); err == nil {
		t.Error("no error for label outside {0, 1}")
	}
}

func TestPrecisionRecallF1Empty(t *testing.T) {
	res, err := PrecisionRecallF1(nil, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Support[0] != 0 || res.Support[1] != 0 {
		t.Errorf("non-zero support for empty input: %v", res.Support)
	}
}

func close(a, b float64) bool { return math.Abs(a-b) < 1e-12 }
