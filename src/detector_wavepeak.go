package dnbcore

import "math"

// WavePolarity selects which half-wave shape a WavePeakDetector looks
// for: a downward deflection (slow wave) or an upward one.
type WavePolarity int

const (
	Downwave WavePolarity = iota
	Upwave
)

func parseWavePolarity(s string) (WavePolarity, error) {
	switch s {
	case "downwave":
		return Downwave, nil
	case "upwave":
		return Upwave, nil
	default:
		return 0, configErr("detectors.wave_peak.wave_polarity", "unknown wave_polarity %q, want upwave or downwave", s)
	}
}

// WavePeakDetector identifies morphologically sinusoid-like half-waves of
// a chosen polarity on a filtered stream, and on completion of a valid
// candidate emits a detection carrying the global index of its peak.
//
// It's a small state machine (idle / in_wave) driven by zero-crossings of
// the filtered signal, plus a running-statistics instance used both for
// the peak's z-score and for every sample's per-tick z-score output.
type WavePeakDetector struct {
	id       string
	filterID string

	polarity           WavePolarity
	zScoreThreshold    float64
	sinusoidness       float64
	checkSinusoidness  bool
	minWaveLengthSamp  float64 // -1 if unset
	maxWaveLengthSamp  float64 // -1 if unset

	stats      runningStats
	hasPrev    bool
	prevSample float64

	inWave        bool
	waveSamples   []float64
	waveStartIdx  int64
	wavePeakIdx   int64
	wavePeakValue float64

	filteredKey   string
	zScoreKey     string
	detectedKey   string
	peakIndexKey  string
	peakValueKey  string
	waveLengthKey string
}

func newWavePeakDetector(
	id, filterID string,
	polarity WavePolarity,
	zScoreThreshold, sinusoidnessThreshold float64,
	checkSinusoidness bool,
	minWaveLengthMs, maxWaveLengthMs *float64,
	fs float64,
) *WavePeakDetector {
	d := &WavePeakDetector{
		id:                id,
		filterID:          filterID,
		polarity:          polarity,
		zScoreThreshold:   zScoreThreshold,
		sinusoidness:      sinusoidnessThreshold,
		checkSinusoidness: checkSinusoidness,
		minWaveLengthSamp: -1,
		maxWaveLengthSamp: -1,
		filteredKey:       filterKey(filterID, "filtered_sample"),
		zScoreKey:         detectorKey(id, "z_score"),
		detectedKey:       detectorKey(id, "detected"),
		peakIndexKey:      detectorKey(id, "peak_index"),
		peakValueKey:      detectorKey(id, "peak_value"),
		waveLengthKey:     detectorKey(id, "wave_length"),
	}
	if minWaveLengthMs != nil {
		d.minWaveLengthSamp = *minWaveLengthMs * fs / 1000
	}
	if maxWaveLengthMs != nil {
		d.maxWaveLengthSamp = *maxWaveLengthMs * fs / 1000
	}
	return d
}

func (d *WavePeakDetector) ID() string       { return d.id }
func (d *WavePeakDetector) FilterID() string { return d.filterID }

func (d *WavePeakDetector) entersWave(prev, cur float64) bool {
	if d.polarity == Downwave {
		return prev >= 0 && cur < 0
	}
	return prev <= 0 && cur > 0
}

func (d *WavePeakDetector) exitsWave(prev, cur float64) bool {
	if d.polarity == Downwave {
		return prev < 0 && cur >= 0
	}
	return prev > 0 && cur <= 0
}

func (d *WavePeakDetector) isMoreExtreme(candidate, current float64) bool {
	if d.polarity == Downwave {
		return candidate < current
	}
	return candidate > current
}

func (d *WavePeakDetector) processSample(results *resultsMap, globalIndex int64) {
	x, _ := results.get(d.filteredKey)

	d.stats.update(x)
	results.set(d.zScoreKey, d.stats.zScore(x))

	// Default to "no detection this sample"; overwritten below if a wave
	// completes validly right here.
	results.set(d.detectedKey, flagFalse)

	prev := d.prevSample
	hasPrev := d.hasPrev
	d.prevSample = x
	d.hasPrev = true

	if !hasPrev {
		return
	}

	if !d.inWave {
		if d.entersWave(prev, x) {
			d.inWave = true
			d.waveSamples = d.waveSamples[:0]
			d.waveSamples = append(d.waveSamples, x)
			d.waveStartIdx = globalIndex
			d.wavePeakIdx = globalIndex
			d.wavePeakValue = x
		}
		return
	}

	// in_wave
	if d.exitsWave(prev, x) {
		d.completeWave(results, globalIndex)
		d.inWave = false
		return
	}

	d.waveSamples = append(d.waveSamples, x)
	if d.isMoreExtreme(x, d.wavePeakValue) {
		d.wavePeakValue = x
		d.wavePeakIdx = globalIndex
	}
}

// completeWave validates the just-finished half-wave and, if it passes
// every check, writes a detection. It never changes inWave itself; the
// caller does that unconditionally after this returns.
func (d *WavePeakDetector) completeWave(results *resultsMap, globalIndex int64) {
	waveLength := float64(globalIndex - d.waveStartIdx)

	if d.minWaveLengthSamp >= 0 && waveLength < d.minWaveLengthSamp {
		return
	}
	if d.maxWaveLengthSamp >= 0 && waveLength > d.maxWaveLengthSamp {
		return
	}

	if !d.stats.ready() {
		return
	}
	peakZ := absf(d.wavePeakValue-d.stats.mean) / d.stats.std()
	if peakZ < d.zScoreThreshold {
		return
	}

	if d.checkSinusoidness {
		corr := sinusoidCorrelation(d.waveSamples, d.wavePeakValue, waveLength)
		if corr < d.sinusoidness {
			return
		}
	}

	results.set(d.detectedKey, flagTrue)
	results.set(d.peakIndexKey, float64(d.wavePeakIdx))
	results.set(d.peakValueKey, d.wavePeakValue)
	results.set(d.waveLengthKey, waveLength)
}

// sinusoidCorrelation builds an ideal cosine template of the same length
// as samples, amplitude peakValue (whose sign carries the polarity),
// centered at the midpoint of the window with period 2*waveLength
// samples, and returns its Pearson correlation with samples. Matching
// polarity yields a positive correlation.
func sinusoidCorrelation(samples []float64, peakValue, waveLength float64) float64 {
	n := len(samples)
	if n < 2 || waveLength <= 0 {
		return 0
	}
	period := 2 * waveLength
	center := float64(n-1) / 2

	template := make([]float64, n)
	for i := range template {
		t := float64(i) - center
		template[i] = peakValue * math.Cos(2*math.Pi*t/period)
	}

	return pearsonCorrelation(samples, template)
}

func pearsonCorrelation(a, b []float64) float64 {
	n := len(a)
	if n == 0 || n != len(b) {
		return 0
	}

	var sumA, sumB float64
	for i := 0; i < n; i++ {
		sumA += a[i]
		sumB += b[i]
	}
	meanA := sumA / float64(n)
	meanB := sumB / float64(n)

	var cov, varA, varB float64
	for i := 0; i < n; i++ {
		da := a[i] - meanA
		db := b[i] - meanB
		cov += da * db
		varA += da * da
		varB += db * db
	}

	if varA == 0 || varB == 0 {
		return 0
	}
	return cov / math.Sqrt(varA*varB)
}
