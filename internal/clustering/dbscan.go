package clustering

import (
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

const noise = -1

// minEpsilon is used when every point coincides.
const minEpsilon = 1e-9

// distance is the Euclidean distance between two points.
func distance(a, b []float64) float64 {
	return floats.Distance(a, b, 2)
}

// neighbours appends to dst the indices of all points within eps of point i,
// including i itself. Distances are computed per query, so memory stays
// linear in the number of points.
func neighbours(dst []int, points [][]float64, i int, eps float64) []int {
	for j := range points {
		if j == i || distance(points[i], points[j]) <= eps {
			dst = append(dst, j)
		}
	}
	return dst
}

// estimateEpsilon returns scale times the median k-distance over distinct points,
// where the k-distance is the distance to the k-th nearest other distinct point.
// Duplicates are collapsed so that repeated documents do not drive the radius to zero.
func estimateEpsilon(points [][]float64, k int, scale float64) float64 {
	distinct := distinctIndices(points)
	if len(distinct) < 2 {
		return minEpsilon
	}
	if k > len(distinct)-1 {
		k = len(distinct) - 1
	}
	if k < 1 {
		k = 1
	}

	kdist := make([]float64, 0, len(distinct))
	row := make([]float64, 0, len(distinct)-1)
	for _, i := range distinct {
		row = row[:0]
		for _, j := range distinct {
			if i != j {
				row = append(row, distance(points[i], points[j]))
			}
		}
		sort.Float64s(row)
		kdist = append(kdist, row[k-1])
	}
	sort.Float64s(kdist)

	// The empirical quantile is the lower middle value; averaging with the
	// upper middle gives the usual median for even counts.
	median := (stat.Quantile(0.5, stat.Empirical, kdist, nil) + kdist[len(kdist)/2]) / 2
	if median <= 0 {
		return minEpsilon
	}
	return scale * median
}

// distinctIndices returns the first index of every group of coincident points.
func distinctIndices(points [][]float64) []int {
	var out []int
	for i := range points {
		dup := false
		for _, j := range out {
			if floats.Equal(points[i], points[j]) {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, i)
		}
	}
	return out
}

// dbscan labels each point with a cluster index or noise.
// Neighbourhoods include the point itself. Clusters are numbered in the
// order their first core point appears, so labels depend only on input order.
// Each neighbourhood is queried at most once and each point is queued at
// most once.
func dbscan(points [][]float64, eps float64, minSamples int) []int {
	n := len(points)
	labels := make([]int, n)
	visited := make([]bool, n)
	queued := make([]bool, n)
	for i := range labels {
		labels[i] = noise
	}

	var buf []int
	cluster := 0
	for i := 0; i < n; i++ {
		if visited[i] {
			continue
		}
		visited[i] = true
		buf = neighbours(buf[:0], points, i, eps)
		if len(buf) < minSamples {
			continue
		}

		// Breadth-first expansion from core point i.
		labels[i] = cluster
		queued[i] = true
		var queue []int
		for _, j := range buf {
			if !queued[j] {
				queued[j] = true
				queue = append(queue, j)
			}
		}
		for len(queue) > 0 {
			j := queue[0]
			queue = queue[1:]
			if labels[j] == noise {
				labels[j] = cluster
			}
			if visited[j] {
				continue
			}
			visited[j] = true
			buf = neighbours(buf[:0], points, j, eps)
			if len(buf) < minSamples {
				continue
			}
			for _, m := range buf {
				if !queued[m] {
					queued[m] = true
					queue = append(queue, m)
				}
			}
		}
		cluster++
	}
	return labels
}
