package lstm

import (
	"bytes"
	"encoding/gob"
	"encoding/json"

	"gonum.org/v1/gonum/mat"
)

// gateJSON is the on-disk form of a Gate. Matrices are stored row-major.
type gateJSON struct {
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

// MarshalJSON implements json.Marshaler.
func (g Gate) MarshalJSON() ([]byte, error) {
	r, c := g.W.Dims()
	return json.Marshal(gateJSON{
		Rows:   r,
		Cols:   c,
		W:      denseData(g.W),
		GradSq: denseData(g.GradSq),
		StepSq: denseData(g.StepSq),
	})
}

// UnmarshalJSON implements json.Unmarshaler.
func (g *Gate) UnmarshalJSON(data []byte) error {
	var v gateJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	g.W = mat.NewDense(v.Rows, v.Cols, v.W)
	g.GradSq = mat.NewDense(v.Rows, v.Cols, v.GradSq)
	g.StepSq = mat.NewDense(v.Rows, v.Cols, v.StepSq)
	return nil
}

// GobEncode implements gob.GobEncoder. mat.Dense carries no exported fields,
// so the matrices are flattened the same way as in the JSON form.
func (g Gate) GobEncode() ([]byte, error) {
	r, c := g.W.Dims()
	var buf bytes.Buffer
	err := gob.NewEncoder(&buf).Encode(gateJSON{
		Rows:   r,
		Cols:   c,
		W:      denseData(g.W),
		GradSq: denseData(g.GradSq),
		StepSq: denseData(g.StepSq),
	})
	return buf.Bytes(), err
}

// GobDecode implements gob.GobDecoder.
func (g *Gate) GobDecode(data []byte) error {
	var v gateJSON
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&v); err != nil {
		return err
	}
	g.W = mat.NewDense(v.Rows, v.Cols, v.W)
	g.GradSq = mat.NewDense(v.Rows, v.Cols, v.GradSq)
	g.StepSq = mat.NewDense(v.Rows, v.Cols, v.StepSq)
	return nil
}

type networkJSON struct {
	FeatureWidth int  `json:"feature_width"`
	Hidden       int  `json:"hidden"`
	Input        Gate `json:"input"`
	Forget       Gate `json:"forget"`
	Output       Gate `json:"output"`
	Cell         Gate `json:"cell"`
}

// MarshalJSON implements json.Marshaler. The cached forward pass is not
// persisted.
func (n *Network) MarshalJSON() ([]byte, error) {
	return json.Marshal(networkJSON{
		FeatureWidth: n.FeatureWidth,
		Hidden:       n.Hidden,
		Input:        n.Input,
		Forget:       n.Forget,
		Output:       n.Output,
		Cell:         n.Cell,
	})
}

// UnmarshalJSON implements json.Unmarshaler.
func (n *Network) UnmarshalJSON(data []byte) error {
	var v networkJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	n.FeatureWidth = v.FeatureWidth
	n.Hidden = v.Hidden
	n.Input = v.Input
	n.Forget = v.Forget
	n.Output = v.Output
	n.Cell = v.Cell
	n.steps = nil
	return nil
}
