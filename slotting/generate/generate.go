// Package generate builds synthetic co-order probability matrices for benchmarking.
//
// Block produces three groups of SKUs. The first group is only ordered within
// itself. The second and third are mostly ordered within themselves and
// occasionally across. Noise, pruning of weak pairs and L1 normalisation follow.
package generate

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// ErrDimension is returned when n is not a multiple of 3 or equals 3.
var ErrDimension = errors.New("SKU count must be a multiple of 3 other than 3")

// noiseMean is the success probability of the geometric multiplier applied to each pair.
const noiseMean = 1.0 / 20

// Block returns a symmetric n x n probability matrix with zero diagonal and unit
// total mass. All randomness comes from rng.
func Block(n int, rng *rand.Rand) ([][]float64, error) {
	if n%3 != 0 || n == 3 || n <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrDimension, n)
	}
	alpha := float64(10 + rng.Intn(40))
	epsilon := alpha / float64(2+rng.Intn(8))
	b := n / 3

	blockAlpha := offDiagonal(b, alpha)
	addNoise(blockAlpha, rng)
	blockEps := offDiagonal(b, epsilon)
	addNoise(blockEps, rng)
	blockMix := mat.NewDense(b, b, nil)
	blockMix.Sub(blockAlpha, blockEps)
	blockMix.Apply(func(_, _ int, v float64) float64 { return math.Abs(v) }, blockMix)

	m := mat.NewDense(n, n, nil)
	m.Slice(0, b, 0, b).(*mat.Dense).Copy(blockAlpha)
	m.Slice(b, 2*b, b, 2*b).(*mat.Dense).Copy(blockMix)
	m.Slice(b, 2*b, 2*b, n).(*mat.Dense).Copy(blockEps)
	m.Slice(2*b, n, b, 2*b).(*mat.Dense).Copy(blockEps)
	m.Slice(2*b, n, 2*b, n).(*mat.Dense).Copy(blockMix)

	m.Scale(1/l1Norm(m), m)
	prune(m, rng)
	if s := l1Norm(m); s > 0 {
		m.Scale(1/s, m)
	}
	return rows(m), nil
}

// offDiagonal returns a b x b matrix with v everywhere except the diagonal.
func offDiagonal(b int, v float64) *mat.Dense {
	d := mat.NewDense(b, b, nil)
	for i := 0; i < b; i++ {
		for j := 0; j < b; j++ {
			if i != j {
				d.Set(i, j, v)
			}
		}
	}
	return d
}

// addNoise multiplies each symmetric pair by a geometric draw and shifts the
// off-diagonal entries so the smallest entry is zero or above.
func addNoise(d *mat.Dense, rng *rand.Rand) {
	n, _ := d.Dims()
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			v := d.At(i, j) * float64(geometric(rng, noiseMean))
			d.Set(i, j, v)
			d.Set(j, i, v)
		}
	}
	low := mat.Min(d)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i != j {
				d.Set(i, j, d.At(i, j)-low)
			}
		}
	}
}

// prune zeroes most pairs below the min/max midpoint and occasionally boosts a pair
// by 100.
func prune(m *mat.Dense, rng *rand.Rand) {
	n, _ := m.Dims()
	threshold := (mat.Min(m) + mat.Max(m)) / 2
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if rng.Intn(n*n/2) == 0 {
				m.Set(i, j, m.At(i, j)*100)
				m.Set(j, i, m.At(j, i)*100)
			}
			if m.At(i, j) < threshold && rng.Intn(n) != 0 {
				m.Set(i, j, 0)
				m.Set(j, i, 0)
			}
		}
	}
}

// geometric draws the number of Bernoulli(p) trials up to and including the first success.
func geometric(rng *rand.Rand, p float64) int {
	u := 1 - rng.Float64() // (0, 1]
	k := int(math.Ceil(math.Log(u) / math.Log(1-p)))
	return max(k, 1)
}

// l1Norm is the entrywise 1-norm (sum of absolute values), not the induced norm.
func l1Norm(m *mat.Dense) float64 {
	var s float64
	r, _ := m.Dims()
	for i := 0; i < r; i++ {
		s += floats.Norm(m.RawRowView(i), 1)
	}
	return s
}

func rows(m *mat.Dense) [][]float64 {
	r, _ := m.Dims()
	out := make([][]float64, r)
	for i := range out {
		out[i] = append([]float64(nil), m.RawRowView(i)...)
	}
	return out
}
