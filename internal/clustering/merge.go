package clustering

import (
	"sort"

	"gonum.org/v1/gonum/floats"
)

// group is a cluster under construction. Members are point indices in ascending order.
type group struct {
	id       int
	members  []int
	centroid []float64
}

// newGroups collects labelled points into groups, dropping noise and
// groups smaller than minSize. Returned groups are ordered by descending
// size, ties by lowest first member, and numbered 0..n-1 in that order.
func newGroups(labels []int, points [][]float64, minSize int) (groups []*group, dropped int) {
	byLabel := make(map[int]*group)
	var order []int
	for i, l := range labels {
		if l == noise {
			continue
		}
		g, ok := byLabel[l]
		if !ok {
			g = &group{}
			byLabel[l] = g
			order = append(order, l)
		}
		g.members = append(g.members, i)
	}

	for _, l := range order {
		g := byLabel[l]
		if len(g.members) < minSize {
			dropped += len(g.members)
			continue
		}
		g.centroid = centroid(g.members, points)
		groups = append(groups, g)
	}

	renumber(groups)
	return groups, dropped
}

// renumber sorts groups by descending size, ties by lowest first member, and assigns dense ids.
func renumber(groups []*group) {
	sort.SliceStable(groups, func(i, j int) bool {
		if len(groups[i].members) != len(groups[j].members) {
			return len(groups[i].members) > len(groups[j].members)
		}
		return groups[i].members[0] < groups[j].members[0]
	})
	for i, g := range groups {
		g.id = i
	}
}

func centroid(members []int, points [][]float64) []float64 {
	c := make([]float64, len(points[members[0]]))
	for _, m := range members {
		floats.Add(c, points[m])
	}
	floats.Scale(1/float64(len(members)), c)
	return c
}

// mergeToTarget repeatedly merges the two groups with the closest centroids
// until at most target groups remain. Ties are broken by the lower sum of
// the two ids, then by the lower first id. The merged group keeps the lower
// id; ids stay fixed while merging and are renumbered at the end.
func mergeToTarget(groups []*group, points [][]float64, target int) ([]*group, int) {
	merges := 0
	for len(groups) > target {
		ai, bi := closestPair(groups)
		a, b := groups[ai], groups[bi]

		a.members = mergeSorted(a.members, b.members)
		a.centroid = centroid(a.members, points)
		groups = append(groups[:bi], groups[bi+1:]...)
		merges++
	}
	renumber(groups)
	return groups, merges
}

// closestPair returns the slice positions of the pair to merge, with the lower id first.
func closestPair(groups []*group) (int, int) {
	bestA, bestB := -1, -1
	bestDist := 0.0
	for i := 0; i < len(groups); i++ {
		for j := i + 1; j < len(groups); j++ {
			a, b := i, j
			if groups[a].id > groups[b].id {
				a, b = b, a
			}
			d := distance(groups[a].centroid, groups[b].centroid)
			if bestA < 0 || better(d, groups[a].id, groups[b].id, bestDist, groups[bestA].id, groups[bestB].id) {
				bestA, bestB, bestDist = a, b, d
			}
		}
	}
	return bestA, bestB
}

// better reports whether pair (a, b) at distance d beats the current best.
func better(d float64, a, b int, bestDist float64, bestA, bestB int) bool {
	if d != bestDist {
		return d < bestDist
	}
	if a+b != bestA+bestB {
		return a+b < bestA+bestB
	}
	return a < bestA
}

func mergeSorted(a, b []int) []int {
	out := make([]int, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		if a[i] < b[j] {
			out = append(out, a[i])
			i++
		} else {
			out = append(out, b[j])
			j++
		}
	}
	out = append(out, a[i:]...)
	return append(out, b[j:]...)
}
