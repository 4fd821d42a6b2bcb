// Package nnet implements the feed-forward scalar predictor. The network
// maps a fixed-width input vector through sigmoid layers to one output in
// (0, 1). Its backward pass consumes the scalar loss gradient, updates every
// layer with AdaDelta, and returns the gradient of the loss with respect to
// the input vector, which is what lets a caller route part of that gradient
// into an upstream encoder.
package nnet

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

const (
	rho = 0.95
	eps = 1e-6
)

// Layer is one fully connected layer. W is out x (in + 1); the final column
// holds the bias.
type Layer struct {
	W      *mat.Dense
	GradSq *mat.Dense
	StepSq *mat.Dense
}

func newLayer(out, in int, rng *rand.Rand) Layer {
	w := mat.NewDense(out, in+1, nil)
	for i := 0; i < out; i++ {
		for j := 0; j <= in; j++ {
			w.Set(i, j, 0.2*rng.Float64()-0.1)
		}
	}
	return Layer{
		W:      w,
		GradSq: mat.NewDense(out, in+1, nil),
		StepSq: mat.NewDense(out, in+1, nil),
	}
}

func (l *Layer) adadelta(grad *mat.Dense) {
	r, c := l.W.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			gv := grad.At(i, j)
			eg := rho*l.GradSq.At(i, j) + (1-rho)*gv*gv
			l.GradSq.Set(i, j, eg)
			step := -math.Sqrt(l.StepSq.At(i, j)+eps) / math.Sqrt(eg+eps) * gv
			l.StepSq.Set(i, j, rho*l.StepSq.At(i, j)+(1-rho)*step*step)
			l.W.Set(i, j, l.W.At(i, j)+step)
		}
	}
}

// Network is a sigmoid multilayer perceptron with a single scalar output.
type Network struct {
	Sizes  []int
	Layers []Layer

	acts [][]float64 // cached activations, acts[0] is the input
}

// New creates a Network with the given layer widths. The final width must
// be 1.
func New(sizes []int, rng *rand.Rand) *Network {
	if len(sizes) < 2 {
		panic("nnet: need at least input and output layers")
	}
	if sizes[len(sizes)-1] != 1 {
		panic("nnet: output layer width must be 1")
	}
	n := &Network{Sizes: append([]int(nil), sizes...)}
	for i := 0; i < len(sizes)-1; i++ {
		n.Layers = append(n.Layers, newLayer(sizes[i+1], sizes[i], rng))
	}
	return n
}

// InputWidth returns the width of the input vector Forward expects.
func (n *Network) InputWidth() int { return n.Sizes[0] }

// Forward computes the network output for x and caches the activations for
// a subsequent Backward call.
func (n *Network) Forward(x []float64) float64 {
	if len(x) != n.Sizes[0] {
		panic("nnet: input width mismatch")
	}
	a := append([]float64(nil), x...)
	n.acts = n.acts[:0]
	n.acts = append(n.acts, a)
	for _, l := range n.Layers {
		rows, _ := l.W.Dims()
		next := make([]float64, rows)
		z := append(append([]float64(nil), a...), 1)
		res := mat.NewVecDense(rows, next)
		res.MulVec(l.W, mat.NewVecDense(len(z), z))
		for i := range next {
			next[i] = sigmoid(next[i])
		}
		n.acts = append(n.acts, next)
		a = next
	}
	return a[0]
}

// Backward propagates the scalar loss gradient dy through the cached forward
// pass, updates every layer with AdaDelta, and returns the gradient of the
// loss with respect to the input vector. Backward must follow a Forward call.
func (n *Network) Backward(dy float64) []float64 {
	if len(n.acts) != len(n.Layers)+1 {
		panic("nnet: Backward without Forward")
	}
	out := n.acts[len(n.acts)-1]
	delta := []float64{dy * out[0] * (1 - out[0])}

	grads := make([]*mat.Dense, len(n.Layers))
	for li := len(n.Layers) - 1; li >= 0; li-- {
		l := n.Layers[li]
		in := n.acts[li]
		rows, cols := l.W.Dims()
		g := mat.NewDense(rows, cols, nil)
		for i := 0; i < rows; i++ {
			for j := 0; j < cols-1; j++ {
				g.Set(i, j, delta[i]*in[j])
			}
			g.Set(i, cols-1, delta[i]) // bias
		}
		grads[li] = g

		// Gradient with respect to this layer's input.
		prev := make([]float64, cols-1)
		for j := 0; j < cols-1; j++ {
			var s float64
			for i := 0; i < rows; i++ {
				s += delta[i] * l.W.At(i, j)
			}
			prev[j] = s
		}
		if li > 0 {
			// Through the sigmoid of the layer below.
			for j := range prev {
				prev[j] *= in[j] * (1 - in[j])
			}
		}
		delta = prev
	}

	for li := range n.Layers {
		n.Layers[li].adadelta(grads[li])
	}
	return delta
}

func sigmoid(v float64) float64 { return 1 / (1 + math.Exp(-v)) }
