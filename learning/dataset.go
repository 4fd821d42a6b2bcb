package learning

import "math/rand"

// Rebalance downsamples the larger label class, without replacement, to the
// size of the smaller one so that both classes appear with probability 0.5.
// Items with Target below 0.5 form the negative class and items above 0.5
// the positive class. The combined result is shuffled five times to defeat
// any residual ordering from the partition. If either class is empty the
// result is empty.
func Rebalance(items []Item, rng *rand.Rand) []Item {
	var neg, pos []Item
	for _, it := range items {
		switch {
		case it.Target < 0.5:
			neg = append(neg, it)
		case it.Target > 0.5:
			pos = append(pos, it)
		}
	}
	if len(neg) <= len(pos) {
		pos = sample(pos, len(neg), rng)
	} else {
		neg = sample(neg, len(pos), rng)
	}
	out := make([]Item, 0, len(neg)+len(pos))
	out = append(out, neg...)
	out = append(out, pos...)
	for i := 0; i < 5; i++ {
		rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	}
	return out
}

// sample picks n items from items uniformly without replacement.
func sample(items []Item, n int, rng *rand.Rand) []Item {
	perm := rng.Perm(len(items))
	out := make([]Item, n)
	for i := 0; i < n; i++ {
		out[i] = items[perm[i]]
	}
	return out
}

// Expand decomposes every item into one example per history row plus the
// original current-revision example. A history row contributes its leading
// fields as the feature vector and its final field as the target; the
// expanded examples carry no history, so the encoder is bypassed. The
// current-revision example keeps its features and gets a normalized target.
// Expand feeds predictor-only training, where every individual edit is a
// training example.
func Expand(items []Item) []Item {
	var out []Item
	for _, it := range items {
		for _, row := range it.History {
			f := make([]float64, len(row)-2)
			copy(f, row)
			out = append(out, Item{
				Author:   it.Author,
				Features: f,
				Target:   row[len(row)-1],
			})
		}
		out = append(out, Item{
			Author:   it.Author,
			Features: it.Features,
			Target:   NormalizeTarget(it.Target),
		})
	}
	return out
}
