// Package lstm implements the recurrent sequence encoder used to summarize
// an author's revision history. A single-layer LSTM consumes one feature row
// per past revision and exposes its final hidden state as a fixed-width
// summary vector. Parameter updates use AdaDelta, so no global learning rate
// is needed; the backward pass accepts a multiplicative scale instead.
package lstm

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// AdaDelta constants shared by every gate.
const (
	rho = 0.95
	eps = 1e-6
)

// Gate holds the weights of one LSTM gate along with its AdaDelta
// accumulators. Each weight matrix is hidden x (features + hidden + 1); the
// columns cover the step input, the recurrent input, and a bias term.
type Gate struct {
	W      *mat.Dense
	GradSq *mat.Dense // running average of squared gradients
	StepSq *mat.Dense // running average of squared updates
}

func newGate(rows, cols int, rng *rand.Rand) Gate {
	w := mat.NewDense(rows, cols, nil)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			w.Set(i, j, 0.2*rng.Float64()-0.1)
		}
	}
	return Gate{
		W:      w,
		GradSq: mat.NewDense(rows, cols, nil),
		StepSq: mat.NewDense(rows, cols, nil),
	}
}

// adadelta applies one accumulated-gradient update to the gate, scaled by
// scale.
func (g *Gate) adadelta(grad *mat.Dense, scale float64) {
	r, c := g.W.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			gv := grad.At(i, j)
			eg := rho*g.GradSq.At(i, j) + (1-rho)*gv*gv
			g.GradSq.Set(i, j, eg)
			step := -math.Sqrt(g.StepSq.At(i, j)+eps) / math.Sqrt(eg+eps) * gv
			g.StepSq.Set(i, j, rho*g.StepSq.At(i, j)+(1-rho)*step*step)
			g.W.Set(i, j, g.W.At(i, j)+scale*step)
		}
	}
}

// step caches the intermediate values of one forward step that the backward
// pass needs.
type step struct {
	z          []float64 // concatenated [x, hPrev, 1]
	in, fg, ou []float64 // input, forget, output gate activations
	cand       []float64 // candidate cell values (tanh)
	cPrev      []float64
	c          []float64
	tanhC      []float64
}

// Network is a single-layer LSTM summarizing an ordered sequence of feature
// rows into its final hidden state.
type Network struct {
	FeatureWidth int
	Hidden       int

	Input  Gate
	Forget Gate
	Output Gate
	Cell   Gate

	steps []step // cached forward pass, consumed by Backward
}

// New creates a Network for the given per-step feature width and hidden
// width. Weights are initialized from rng.
func New(featureWidth, hidden int, rng *rand.Rand) *Network {
	if featureWidth <= 0 || hidden <= 0 {
		panic("lstm: non-positive dimension")
	}
	cols := featureWidth + hidden + 1
	return &Network{
		FeatureWidth: featureWidth,
		Hidden:       hidden,
		Input:        newGate(hidden, cols, rng),
		Forget:       newGate(hidden, cols, rng),
		Output:       newGate(hidden, cols, rng),
		Cell:         newGate(hidden, cols, rng),
	}
}

// OutputWidth returns the width of the summary vector produced by Forward.
func (n *Network) OutputWidth() int { return n.Hidden }

// Forward runs the network over the history rows in order and returns the
// final hidden state. An empty history yields the zero vector. The forward
// pass is cached for a subsequent Backward call.
func (n *Network) Forward(history [][]float64) []float64 {
	h := make([]float64, n.Hidden)
	c := make([]float64, n.Hidden)
	n.steps = n.steps[:0]
	for _, row := range history {
		if len(row) != n.FeatureWidth {
			panic("lstm: feature width mismatch")
		}
		st := step{
			z:     concat(row, h),
			cPrev: c,
		}
		st.in = gateVec(n.Input.W, st.z, sigmoid)
		st.fg = gateVec(n.Forget.W, st.z, sigmoid)
		st.ou = gateVec(n.Output.W, st.z, sigmoid)
		st.cand = gateVec(n.Cell.W, st.z, math.Tanh)

		c = make([]float64, n.Hidden)
		h = make([]float64, n.Hidden)
		st.c = c
		st.tanhC = make([]float64, n.Hidden)
		for i := 0; i < n.Hidden; i++ {
			c[i] = st.fg[i]*st.cPrev[i] + st.in[i]*st.cand[i]
			st.tanhC[i] = math.Tanh(c[i])
			h[i] = st.ou[i] * st.tanhC[i]
		}
		n.steps = append(n.steps, st)
	}
	out := make([]float64, n.Hidden)
	copy(out, h)
	return out
}

// Backward propagates grad, a gradient with respect to the summary vector,
// back through the cached forward pass and updates all gates with AdaDelta.
// The update of every parameter is multiplied by scale. Backward must follow
// a Forward call on the same network.
func (n *Network) Backward(grad []float64, scale float64) {
	if len(grad) != n.Hidden {
		panic("lstm: gradient width mismatch")
	}
	if len(n.steps) == 0 {
		return
	}
	cols := n.FeatureWidth + n.Hidden + 1
	dWi := mat.NewDense(n.Hidden, cols, nil)
	dWf := mat.NewDense(n.Hidden, cols, nil)
	dWo := mat.NewDense(n.Hidden, cols, nil)
	dWc := mat.NewDense(n.Hidden, cols, nil)

	dh := make([]float64, n.Hidden)
	copy(dh, grad)
	dc := make([]float64, n.Hidden)

	for t := len(n.steps) - 1; t >= 0; t-- {
		st := n.steps[t]
		dhNext := make([]float64, n.Hidden)
		dcNext := make([]float64, n.Hidden)
		for i := 0; i < n.Hidden; i++ {
			dci := dc[i] + dh[i]*st.ou[i]*(1-st.tanhC[i]*st.tanhC[i])

			// Pre-activation gradients for each gate.
			dou := dh[i] * st.tanhC[i] * st.ou[i] * (1 - st.ou[i])
			din := dci * st.cand[i] * st.in[i] * (1 - st.in[i])
			dfg := dci * st.cPrev[i] * st.fg[i] * (1 - st.fg[i])
			dcd := dci * st.in[i] * (1 - st.cand[i]*st.cand[i])

			dcNext[i] = dci * st.fg[i]

			for j, zj := range st.z {
				dWi.Set(i, j, dWi.At(i, j)+din*zj)
				dWf.Set(i, j, dWf.At(i, j)+dfg*zj)
				dWo.Set(i, j, dWo.At(i, j)+dou*zj)
				dWc.Set(i, j, dWc.At(i, j)+dcd*zj)
			}
			// Recurrent part of dz accumulates into the previous step's dh.
			for j := 0; j < n.Hidden; j++ {
				col := n.FeatureWidth + j
				dhNext[j] += din*n.Input.W.At(i, col) +
					dfg*n.Forget.W.At(i, col) +
					dou*n.Output.W.At(i, col) +
					dcd*n.Cell.W.At(i, col)
			}
		}
		dh = dhNext
		dc = dcNext
	}

	n.Input.adadelta(dWi, scale)
	n.Forget.adadelta(dWf, scale)
	n.Output.adadelta(dWo, scale)
	n.Cell.adadelta(dWc, scale)
}

// gateVec computes act(W * z) for one gate.
func gateVec(w *mat.Dense, z []float64, act func(float64) float64) []float64 {
	rows, _ := w.Dims()
	out := make([]float64, rows)
	v := mat.NewVecDense(len(z), z)
	res := mat.NewVecDense(rows, out)
	res.MulVec(w, v)
	for i := range out {
		out[i] = act(out[i])
	}
	return out
}

func concat(x, h []float64) []float64 {
	z := make([]float64, 0, len(x)+len(h)+1)
	z = append(z, x...)
	z = append(z, h...)
	return append(z, 1)
}

func sigmoid(v float64) float64 { return 1 / (1 + math.Exp(-v)) }
