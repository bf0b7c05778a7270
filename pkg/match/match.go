// Package match pairs the peaks of a query spectrum with the peaks of a reference
// spectrum that lie within an m/z tolerance of each other.
//
// Candidates are selected in both directions (query to reference and reference to
// query), each direction keeping the most intense partner inside the window. The union
// of both candidate sets is then pruned so that, as far as the chosen strategy allows,
// every peak takes part in at most one pair.
package match

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/ChrisMcGann/PeakMatch/pkg/core"
)

// ErrNonComparableIntensity is returned in strict mode when a NaN intensity had to be ranked.
var ErrNonComparableIntensity = errors.New("non-comparable (NaN) intensity")

// Tolerance decides whether two m/z values belong to the same peak. The first argument
// is the query m/z, the second the reference m/z.
type Tolerance interface {
	Contains(queryMZ, referenceMZ float64) bool
}

// Index is a matched pair of peak indices.
type Index struct {
	Query     int `json:"query_index"`
	Reference int `json:"reference_index"`
}

// Result holds the matched pairs and counters describing how they were obtained.
type Result struct {
	Matches       []Index `json:"matches"`        // sorted by query, then reference index
	Forward       int     `json:"forward"`        // candidates from the query side
	Backward      int     `json:"backward"`       // candidates from the reference side
	Candidates    int     `json:"candidates"`     // size of the union before pruning
	NonComparable int     `json:"non_comparable"` // NaN intensities met while ranking
}

// Match pairs query peaks with reference peaks under tol.
func Match(query, reference []core.Peak, tol Tolerance, opts ...Option) (*Result, error) {
	if tol == nil {
		return nil, errors.New("tolerance is required")
	}
	cfg := newConfig(opts)
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	m := &matcher{
		cfg:       cfg,
		tol:       tol,
		query:     query,
		reference: reference,
		qInt:      intensities(query),
		rInt:      intensities(reference),
	}
	return m.run()
}

// MatchArrays is Match over parallel m/z and intensity arrays.
func MatchArrays(queryMZs, queryIntensities, referenceMZs, referenceIntensities []float64, tol Tolerance, opts ...Option) (*Result, error) {
	query, err := core.PeaksFromArrays(queryMZs, queryIntensities)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	reference, err := core.PeaksFromArrays(referenceMZs, referenceIntensities)
	if err != nil {
		return nil, fmt.Errorf("reference: %w", err)
	}
	return Match(query, reference, tol, opts...)
}

type matcher struct {
	cfg       Config
	tol       Tolerance
	query     []core.Peak
	reference []core.Peak
	qInt      []float64
	rInt      []float64
}

func (m *matcher) run() (*Result, error) {
	// best[i] is the chosen partner of peak i, or -1
	forward := make([]int, len(m.query))
	backward := make([]int, len(m.reference))
	forwardNaN := make([]int, len(m.query))
	backwardNaN := make([]int, len(m.reference))

	m.parallel(len(m.query), func(i int) {
		q := m.query[i].MZ
		forward[i], forwardNaN[i] = pickMostIntense(len(m.reference), m.rInt, func(j int) bool {
			return m.tol.Contains(q, m.reference[j].MZ)
		})
	})
	m.parallel(len(m.reference), func(j int) {
		r := m.reference[j].MZ
		backward[j], backwardNaN[j] = pickMostIntense(len(m.query), m.qInt, func(i int) bool {
			return m.tol.Contains(m.query[i].MZ, r)
		})
	})

	res := &Result{}
	seen := make(map[Index]struct{})
	var candidates []Index
	add := func(c Index) {
		if _, dup := seen[c]; dup {
			return
		}
		seen[c] = struct{}{}
		candidates = append(candidates, c)
	}

	for i, j := range forward {
		res.NonComparable += forwardNaN[i]
		if j >= 0 {
			res.Forward++
			add(Index{Query: i, Reference: j})
		}
	}
	for j, i := range backward {
		res.NonComparable += backwardNaN[j]
		if i >= 0 {
			res.Backward++
			add(Index{Query: i, Reference: j})
		}
	}
	res.Candidates = len(candidates)

	if m.cfg.Strict && res.NonComparable > 0 {
		return nil, fmt.Errorf("%d intensities could not be ranked: %w", res.NonComparable, ErrNonComparableIntensity)
	}

	sortIndices(candidates)
	switch m.cfg.Strategy {
	case StrategyGreedy:
		res.Matches = resolveGreedy(candidates, m.weight)
	default:
		res.Matches = resolveSinglePass(candidates, m.weight)
	}
	return res, nil
}

// weight is the summed intensity of a candidate pair.
func (m *matcher) weight(c Index) float64 {
	return m.qInt[c.Query] + m.rInt[c.Reference]
}

// parallel calls fn for every index in [0, n), split across the configured workers.
// Each index is written by exactly one goroutine.
func (m *matcher) parallel(n int, fn func(int)) {
	workers := m.cfg.Workers
	if workers <= 1 || n < 2*workers {
		for i := 0; i < n; i++ {
			fn(i)
		}
		return
	}

	chunk := (n + workers - 1) / workers
	var wg sync.WaitGroup
	for start := 0; start < n; start += chunk {
		end := min(start+chunk, n)
		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			for i := start; i < end; i++ {
				fn(i)
			}
		}(start, end)
	}
	wg.Wait()
}

// pickMostIntense scans indices [0, n) accepted by inWindow and returns the one with the
// highest rank[index], or -1 if none is accepted. Ties go to the last index encountered.
// The second return value counts NaN ranks among the accepted indices.
func pickMostIntense(n int, rank []float64, inWindow func(int) bool) (int, int) {
	best, nan := -1, 0
	for k := 0; k < n; k++ {
		if !inWindow(k) {
			continue
		}
		if math.IsNaN(rank[k]) {
			nan++
		}
		if best < 0 || !intensityLess(rank[k], rank[best]) {
			best = k
		}
	}
	return best, nan
}

// intensityLess is a total order on intensities: NaN sorts below every number and
// equal to NaN.
func intensityLess(a, b float64) bool {
	if math.IsNaN(a) {
		return !math.IsNaN(b)
	}
	if math.IsNaN(b) {
		return false
	}
	return a < b
}

func intensities(peaks []core.Peak) []float64 {
	out := make([]float64, len(peaks))
	for i, p := range peaks {
		out[i] = p.Intensity
	}
	return out
}

func sortIndices(s []Index) {
	sort.Slice(s, func(a, b int) bool {
		if s[a].Query != s[b].Query {
			return s[a].Query < s[b].Query
		}
		return s[a].Reference < s[b].Reference
	})
}
