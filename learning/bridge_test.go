package learning

import "testing"

func TestSliceBits(t *testing.T) {
	y := []float64{1, 2, 3}
	for _, test := range []struct {
		name    string
		k       int
		want    []float64
		wantErr bool
	}{
		{name: "Zero", k: 0, want: []float64{}},
		{name: "Partial", k: 2, want: []float64{1, 2}},
		{name: "Full", k: 3, want: []float64{1, 2, 3}},
		{name: "TooWide", k: 4, wantErr: true},
		{name: "Negative", k: -1, wantErr: true},
	} {
		got, err := SliceBits(y, test.k)
		if (err != nil) != test.wantErr {
			t.Errorf("Case %s: err = %v, wantErr %v", test.name, err, test.wantErr)
			continue
		}
		if err != nil {
			continue
		}
		if len(got) != len(test.want) {
			t.Errorf("Case %s: got %v, want %v", test.name, got, test.want)
			continue
		}
		for i := range got {
			if got[i] != test.want[i] {
				t.Errorf("Case %s: got %v, want %v", test.name, got, test.want)
				break
			}
		}
	}
}

func TestEncoderGradient(t *testing.T) {
	grad := []float64{0.5, -0.5, 0.25}

	out, err := EncoderGradient(grad, 2, 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []float64{0.5, -0.5, 0, 0}
	if len(out) != len(want) {
		t.Fatalf("got width %d, want %d", len(out), len(want))
	}
	for i := range out {
		if out[i] != want[i] {
			t.Errorf("gradient[%d] = %v, want %v", i, out[i], want[i])
		}
	}

	if _, err := EncoderGradient(grad, 5, 8); err == nil {
		t.Error("no error when k exceeds the predictor gradient length")
	}
	if _, err := EncoderGradient(grad, 3, 2); err == nil {
		t.Error("no error when k exceeds the encoder output width")
	}
}
