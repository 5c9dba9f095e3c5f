package dnbcore

import "math"

// runningStats is an online mean/variance estimator using Welford's
// algorithm. It never allocates after construction and is safe to reuse
// across an unbounded stream: count only ever grows.
type runningStats struct {
	count int64
	mean  float64
	m2    float64
}

// update folds x into the running estimate. NaN and Inf inputs are
// rejected outright so a single bad sample can't poison mean/variance for
// the rest of the stream; the detector treats that sample as having an
// undefined z-score.
func (s *runningStats) update(x float64) {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return
	}
	s.count++
	delta := x - s.mean
	s.mean += delta / float64(s.count)
	s.m2 += delta * (x - s.mean)
}

// variance returns the population variance, valid once count >= 1.
func (s *runningStats) variance() float64 {
	if s.count < 1 {
		return 0
	}
	return s.m2 / float64(s.count)
}

// std returns the population standard deviation.
func (s *runningStats) std() float64 {
	return math.Sqrt(s.variance())
}

// ready reports whether zScore is defined: at least two samples seen and
// a nonzero spread.
func (s *runningStats) ready() bool {
	return s.count >= 2 && s.std() > 0
}

// zScore returns (x-mean)/std. Callers must check ready() first; zScore
// returns 0 when the statistics aren't ready rather than NaN, so it can be
// written straight into the results map without a guard at each call site.
func (s *runningStats) zScore(x float64) float64 {
	if !s.ready() {
		return 0
	}
	return (x - s.mean) / s.std()
}
