package fragment

import (
	"math"
	"sort"

	"github.com/ChrisMcGann/PeakMatch/pkg/core"
)

// Window yields the accepted m/z range around a theoretical m/z.
type Window interface {
	Bounds(center float64) (float64, float64)
}

// Match links an observed peak to a theoretical fragment.
type Match struct {
	PeakIndex int
	Peak      core.Peak
	Fragment  Fragment
	order     int // position of the fragment in the table
}

// Error is the observed minus the theoretical m/z, in Da.
func (m Match) Error() float64 {
	return m.Peak.MZ - m.Fragment.MZ
}

// Annotate assigns to every fragment of table the most intense peak inside the window
// around its theoretical m/z. A peak can explain several fragments. The result is sorted
// by peak index, then by fragment table order.
func Annotate(peaks []core.Peak, table *Table, window Window) []Match {
	if table == nil || len(peaks) == 0 {
		return nil
	}

	// Peak indices ordered by m/z; NaN m/z cannot be placed and never matches
	order := make([]int, 0, len(peaks))
	for i, p := range peaks {
		if !math.IsNaN(p.MZ) {
			order = append(order, i)
		}
	}
	sort.SliceStable(order, func(a, b int) bool {
		return peaks[order[a]].MZ < peaks[order[b]].MZ
	})

	var matches []Match
	for f, frag := range table.Fragments {
		lo, hi := window.Bounds(frag.MZ)
		start := sort.Search(len(order), func(k int) bool { return peaks[order[k]].MZ >= lo })

		best := -1
		for k := start; k < len(order) && peaks[order[k]].MZ <= hi; k++ {
			i := order[k]
			if best < 0 || moreIntense(peaks[i].Intensity, peaks[best].Intensity) {
				best = i
			}
		}
		if best >= 0 {
			matches = append(matches, Match{PeakIndex: best, Peak: peaks[best], Fragment: frag, order: f})
		}
	}

	sort.SliceStable(matches, func(a, b int) bool {
		if matches[a].PeakIndex != matches[b].PeakIndex {
			return matches[a].PeakIndex < matches[b].PeakIndex
		}
		return matches[a].order < matches[b].order
	})
	return matches
}

func moreIntense(a, b float64) bool {
	if math.IsNaN(b) {
		return !math.IsNaN(a)
	}
	return a > b
}
