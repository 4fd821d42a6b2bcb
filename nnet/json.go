package nnet

import (
	"bytes"
	"encoding/gob"
	"encoding/json"

	"gonum.org/v1/gonum/mat"
)

// layerJSON is the on-disk form of a Layer. Matrices are stored row-major.
type layerJSON struct {
	Rows   int       `json:"rows"`
	Cols   int       `json:"cols"`
	W      []float64 `json:"w"`
	GradSq []float64 `json:"grad_sq"`
	StepSq []float64 `json:"step_sq"`
}

func denseData(m *mat.Dense) []float64 {
	raw := m.RawMatrix()
	out := make([]float64, len(raw.Data))
	copy(out, raw.Data)
	return out
}

func (l Layer) jsonForm() layerJSON {
	r, c := l.W.Dims()
	return layerJSON{
		Rows:   r,
		Cols:   c,
		W:      denseData(l.W),
		GradSq: denseData(l.GradSq),
		StepSq: denseData(l.StepSq),
	}
}

func (l *Layer) fromForm(v layerJSON) {
	l.W = mat.NewDense(v.Rows, v.Cols, v.W)
	l.GradSq = mat.NewDense(v.Rows, v.Cols, v.GradSq)
	l.StepSq = mat.NewDense(v.Rows, v.Cols, v.StepSq)
}

// MarshalJSON implements json.Marshaler.
func (l Layer) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.jsonForm())
}

// UnmarshalJSON implements json.Unmarshaler.
func (l *Layer) UnmarshalJSON(data []byte) error {
	var v layerJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	l.fromForm(v)
	return nil
}

// GobEncode implements gob.GobEncoder.
func (l Layer) GobEncode() ([]byte, error) {
	var buf bytes.Buffer
	err := gob.NewEncoder(&buf).Encode(l.jsonForm())
	return buf.Bytes(), err
}

// GobDecode implements gob.GobDecoder.
func (l *Layer) GobDecode(data []byte) error {
	var v layerJSON
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&v); err != nil {
		return err
	}
	l.fromForm(v)
	return nil
}

type networkJSON struct {
	Sizes  []int   `json:"sizes"`
	Layers []Layer `json:"layers"`
}

// MarshalJSON implements json.Marshaler. Cached activations are not
// persisted.
func (n *Network) MarshalJSON() ([]byte, error) {
	return json.Marshal(networkJSON{Sizes: n.Sizes, Layers: n.Layers})
}

// UnmarshalJSON implements json.Unmarshaler.
func (n *Network) UnmarshalJSON(data []byte) error {
	var v networkJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	n.Sizes = v.Sizes
	n.Layers = v.Layers
	n.acts = nil
	return nil
}
