package learning

import (
	"math/rand"
	"testing"
)

func TestEvaluateEmpty(t *testing.T) {
	ev, err := Evaluate(nil, &Model{}, UseFull(), true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ev.Errors) != 0 || len(ev.Predictions) != 0 || len(ev.TrueLabels) != 0 || len(ev.Weights) != 0 {
		t.Errorf("non-empty evaluation for empty input: %+v", ev)
	}
}

func TestEvaluateSkipsMissingTargets(t *testing.T) {
	rng := rand.New(rand.NewSource(10))
	items := qualityItems()
	items = append(items, Item{Author: "c", Features: items[0].Features})

	model, _, err := TrainWithEncoder(items, UseSlice(2), false, &Settings{Iterations: 1, Quality: true, Rand: rng})
	if err != nil {
		t.Fatalf("training failed: %v", err)
	}
	ev, err := Evaluate(items, model, UseSlice(2), true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ev.Errors) != 2 {
		t.Fatalf("got %d evaluated items, want 2 (item without target must be skipped)", len(ev.Errors))
	}
	if len(ev.Predictions) != 2 || len(ev.TrueLabels) != 2 || len(ev.Weights) != 2 {
		t.Errorf("evaluation lists not parallel: %+v", ev)
	}

	// Targets are normalized in quality mode with the encoder in use, and
	// the weight is the average of the two size-of-change fields.
	for i, yt := range ev.TrueLabels {
		if yt != 0 && yt != 1 {
			t.Errorf("true label %d = %v, want normalized 0 or 1", i, yt)
		}
	}
	fy := items[0].Features
	want := (fy[sizeAddedIdx] + fy[sizeRemovedIdx]) / 2
	for i, w := range ev.Weights {
		if w != want {
			t.Errorf("weight %d = %v, want %v", i, w, want)
		}
	}
}

func TestScoreBinarization(t *testing.T) {
	ev := Evaluation{
		Predictions: []float64{0.1, 0.9, 0.4, 0.6},
		TrueLabels:  []float64{0, 1, 1, 0},
	}
	// Binarization maps values below 0.5 to class 1, so predictions become
	// [1 0 1 0] and true labels [1 0 0 1].
	res, err := ev.Score()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Support[0] != 2 || res.Support[1] != 2 {
		t.Errorf("support = %v, want [2 2]", res.Support)
	}
	if res.Precision[1] != 0.5 {
		t.Errorf("class 1 precision = %v, want 0.5", res.Precision[1])
	}
	if res.Recall[1] != 0.5 {
		t.Errorf("class 1 recall = %v, want 0.5", res.Recall[1])
	}
}

func TestRandomBaseline(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	items := make([]Item, 100)
	for i := range items {
		if i < 50 {
			items[i].Target = -1
		} else {
			items[i].Target = 1
		}
	}
	res, err := RandomBaseline(items, rng)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for c := 0; c < 2; c++ {
		if res.Precision[c] < 0.3 || res.Precision[c] > 0.7 {
			t.Errorf("class %d random precision %v outside [0.3, 0.7]", c, res.Precision[c])
		}
		if res.Recall[c] < 0.3 || res.Recall[c] > 0.7 {
			t.Errorf("class %d random recall %v outside [0.3, 0.7]", c, res.Recall[c])
		}
	}
	if res.Support[0] != 50 || res.Support[1] != 50 {
		t.Errorf("support = %v, want [50 50]", res.Support)
	}
}
