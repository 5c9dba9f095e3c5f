package dnbcore

import "math"

// ThresholdDetector flags a filtered stream as "detected" when a
// sufficient fraction of a trailing window of z-scores exceeds a
// threshold in absolute value. It's the simpler of the two detector
// families: no morphology, just running statistics plus a ring buffer.
type ThresholdDetector struct {
	id       string
	filterID string

	threshold   float64
	sensitivity float64
	ring        *zScoreRing

	stats runningStats

	filteredKey string
	zScoreKey   string
	detectedKey string
}

func newThresholdDetector(id, filterID string, threshold float64, bufferSize int, sensitivity float64) (*ThresholdDetector, error) {
	if bufferSize <= 0 {
		return nil, configErr("detectors.threshold.buffer_size",
			"threshold detector %q requires a positive buffer_size, got %d", id, bufferSize)
	}
	if sensitivity < 0 || sensitivity > 1 {
		return nil, configErr("detectors.threshold.sensitivity",
			"threshold detector %q requires sensitivity in [0,1], got %g", id, sensitivity)
	}

	return &ThresholdDetector{
		id:          id,
		filterID:    filterID,
		threshold:   threshold,
		sensitivity: sensitivity,
		ring:        newZScoreRing(bufferSize),
		filteredKey: filterKey(filterID, "filtered_sample"),
		zScoreKey:   detectorKey(id, "z_score"),
		detectedKey: detectorKey(id, "detected"),
	}, nil
}

func (d *ThresholdDetector) ID() string       { return d.id }
func (d *ThresholdDetector) FilterID() string { return d.filterID }

// processSample updates running statistics from the filter's current
// output, computes and records a z-score, pushes it into the ring
// buffer, and flags detection when at least floor(sensitivity*bufferSize)
// of the buffer's current contents have |z| >= threshold.
func (d *ThresholdDetector) processSample(results *resultsMap, _ int64) {
	x, _ := results.get(d.filteredKey)

	d.stats.update(x)
	z := d.stats.zScore(x)
	results.set(d.zScoreKey, z)

	d.ring.push(z)

	minCount := int(math.Floor(d.sensitivity * float64(d.ring.capacity())))
	count := d.ring.countWhere(func(v float64) bool { return absf(v) >= d.threshold })

	if d.stats.ready() && count >= minCount {
		results.set(d.detectedKey, flagTrue)
	} else {
		results.set(d.detectedKey, flagFalse)
	}
}
