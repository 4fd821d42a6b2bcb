package learning

import (
	"errors"
	"fmt"
	"log"
	"math/rand"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/davbzh/lstm-wikipedia/lstm"
	"github.com/davbzh/lstm-wikipedia/nnet"
)

var errNoTargets = errors.New("learning: no item has a target label")

// Settings controls a training run.
type Settings struct {
	// Iterations is the number of passes over the shuffled item list.
	// If 0, defaults to 1000.
	Iterations int
	// Quality selects the quality feature convention (14 features per
	// revision) and target normalization; otherwise the existence
	// convention (15 features) is used.
	Quality bool
	// WeightedLearning scales each encoder update by the squared average
	// of the revision's size-of-change fields, so large edits drive larger
	// updates than trivial ones.
	WeightedLearning bool
	// Rand is the source for shuffling and weight initialization. If nil,
	// a time-seeded source is used and the run is not reproducible.
	Rand *rand.Rand
	// Verbose logs the average error near iteration-count milestones.
	Verbose bool
}

const defaultIterations = 1000

func (s *Settings) norm() *Settings {
	var out Settings
	if s != nil {
		out = *s
	}
	if out.Iterations == 0 {
		out.Iterations = defaultIterations
	}
	if out.Rand == nil {
		out.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &out
}

// TrainWithEncoder rebalances the items when balanced is set and trains a
// fresh encoder/predictor pair under the given encoder usage. It returns the
// trained pair and the final iteration's per-example squared errors.
func TrainWithEncoder(items []Item, usage EncoderUsage, balanced bool, s *Settings) (*Model, []float64, error) {
	s = s.norm()
	if balanced {
		items = Rebalance(items, s.Rand)
	}
	return Train(items, usage, s)
}

// TrainPredictorOnly expands every historical edit into its own example,
// rebalances, and trains with the encoder disabled. It benchmarks the
// predictor alone at per-edit granularity.
func TrainPredictorOnly(items []Item, s *Settings) (*Model, []float64, error) {
	s = s.norm()
	items = Rebalance(Expand(items), s.Rand)
	return Train(items, Disabled(), s)
}

// Train creates an encoder and predictor dimensioned for the run and trains
// them over the items. The encoder input width follows the feature
// convention selected by s.Quality; the predictor input width is the number
// of encoder bits plus the current-revision feature width, with one hidden
// layer of that width plus M/2.
func Train(items []Item, usage EncoderUsage, s *Settings) (*Model, []float64, error) {
	s = s.norm()

	featureWidth := QualityFeatures
	if !s.Quality {
		featureWidth = ExistenceFeatures
	}
	fyWidth := -1
	for _, it := range items {
		if it.Target != 0 {
			fyWidth = len(it.Features)
			break
		}
	}
	if fyWidth < 0 {
		return nil, nil, errNoTargets
	}

	enc := lstm.New(featureWidth, M, s.Rand)
	k, err := usage.bits(enc.OutputWidth())
	if err != nil {
		return nil, nil, err
	}
	in := k + fyWidth
	pred := nnet.New([]int{in, in + M/2, 1}, s.Rand)

	model := &Model{Encoder: enc, Predictor: pred}
	errs, err := TrainModules(items, enc, pred, usage, s)
	if err != nil {
		return nil, nil, err
	}
	return model, errs, nil
}

// TrainModules runs the training loop over an existing encoder and
// predictor, mutating both in place. Per iteration the item list is
// shuffled; per item with a target label the encoder (when in use)
// summarizes the history, the first k bits of the summary are concatenated
// with the revision features, the predictor produces the scalar estimate,
// and the squared-error gradient is pushed back through the predictor and
// then, padded to the encoder's output width, through the encoder.
// Returned is the final iteration's error slice.
func TrainModules(items []Item, enc SequenceEncoder, pred ScalarPredictor, usage EncoderUsage, s *Settings) ([]float64, error) {
	s = s.norm()
	n := s.Iterations

	reportEvery := n / 100
	if reportEvery < 1 {
		reportEvery = 1
	}

	factor := 1.0
	var errs []float64
	for iter := 0; iter < n; iter++ {
		s.Rand.Shuffle(len(items), func(i, j int) { items[i], items[j] = items[j], items[i] })

		errs = errs[:0]
		for _, it := range items {
			if it.Target == 0 {
				// No target label for this item.
				continue
			}

			var bits []float64
			var k int
			if usage.runsEncoder() {
				y := enc.Forward(it.History)
				var err error
				k, err = usage.bits(len(y))
				if err != nil {
					return nil, err
				}
				bits, err = SliceBits(y, k)
				if err != nil {
					return nil, err
				}
			} else if usage.Mode == EncoderFixed {
				bits = usage.Fixed
			}

			x := append(append([]float64(nil), bits...), it.Features...)
			y := pred.Forward(x)

			yt := it.Target
			if usage.runsEncoder() && s.Quality {
				yt = NormalizeTarget(yt)
			}

			e := (y - yt) * (y - yt)
			dy := 2 * (y - yt)
			errs = append(errs, e)

			grad := pred.Backward(dy)

			if usage.runsEncoder() {
				back, err := EncoderGradient(grad, k, enc.OutputWidth())
				if err != nil {
					return nil, err
				}
				if s.WeightedLearning {
					factor = learningFactor(updateSize(it.Features))
				}
				enc.Backward(back, factor)
			}
		}

		if len(errs) == 0 {
			return nil, errNoTargets
		}
		if s.Verbose && ((iter+1)%reportEvery == 0 || iter == n-1) {
			log.Printf("avg err at iteration %d, for all users: %v", iter, stat.Mean(errs, nil))
		}
	}
	return errs, nil
}

// String describes the usage mode, for run logs.
func (u EncoderUsage) String() string {
	switch u.Mode {
	case EncoderFull:
		return "full encoder output"
	case EncoderSlice:
		return fmt.Sprintf("first %d encoder bits", u.K)
	case EncoderFixed:
		return fmt.Sprintf("fixed bits %v", u.Fixed)
	default:
		return "encoder disabled"
	}
}
