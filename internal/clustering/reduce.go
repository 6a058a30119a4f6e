package clustering

import (
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/custodia-labs/billtopics/internal/core/domain"
)

// reduce projects the rows of data onto at most k dimensions.
func reduce(data *mat.Dense, k int, method domain.ReductionMethod, seed int64) (*mat.Dense, error) {
	switch method {
	case domain.ReductionPCA:
		return reducePCA(data, k)
	case domain.ReductionRandom:
		return reduceRandom(data, k, seed), nil
	default:
		return nil, fmt.Errorf("%w: reduction method %q", domain.ErrUnsupportedType, method)
	}
}

// reducePCA projects centred data onto its leading principal components.
// Each component is sign-normalised so its largest-magnitude loading is
// positive, which keeps projections stable across SVD implementations.
func reducePCA(data *mat.Dense, k int) (*mat.Dense, error) {
	var pc stat.PC
	if ok := pc.PrincipalComponents(data, nil); !ok {
		return nil, fmt.Errorf("pca: decomposition did not converge")
	}

	var vecs mat.Dense
	pc.VectorsTo(&vecs)
	d, available := vecs.Dims()
	if k > available {
		k = available
	}

	basis := mat.DenseCopyOf(vecs.Slice(0, d, 0, k))
	normaliseSigns(basis)

	var proj mat.Dense
	proj.Mul(centre(data), basis)
	return &proj, nil
}

// reduceRandom applies a seeded Gaussian random projection.
func reduceRandom(data *mat.Dense, k int, seed int64) *mat.Dense {
	_, d := data.Dims()
	rng := rand.New(rand.NewPCG(uint64(seed), 0x9e3779b97f4a7c15))

	scale := 1 / math.Sqrt(float64(k))
	weights := make([]float64, d*k)
	for i := range weights {
		weights[i] = rng.NormFloat64() * scale
	}

	var proj mat.Dense
	proj.Mul(data, mat.NewDense(d, k, weights))
	return &proj
}

// centre returns data with each column's mean subtracted.
func centre(data *mat.Dense) *mat.Dense {
	r, c := data.Dims()
	out := mat.NewDense(r, c, nil)
	for j := 0; j < c; j++ {
		col := mat.Col(nil, j, data)
		mean := stat.Mean(col, nil)
		for i := 0; i < r; i++ {
			out.Set(i, j, col[i]-mean)
		}
	}
	return out
}

func normaliseSigns(basis *mat.Dense) {
	r, c := basis.Dims()
	for j := 0; j < c; j++ {
		best := 0.0
		for i := 0; i < r; i++ {
			if v := basis.At(i, j); math.Abs(v) > math.Abs(best) {
				best = v
			}
		}
		if best < 0 {
			for i := 0; i < r; i++ {
				basis.Set(i, j, -basis.At(i, j))
			}
		}
	}
}
