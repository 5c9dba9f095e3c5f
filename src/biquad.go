package dnbcore

import "math"

// BandpassFilter is a 2nd-order IIR biquad section implementing a
// Butterworth-style bandpass between fLow and fHigh, designed once at
// construction via the bilinear transform and run with the standard
// direct-form-I recurrence thereafter:
//
//	y[n] = b0*x[n] + b1*x[n-1] + b2*x[n-2] - a1*y[n-1] - a2*y[n-2]
//
// State (the two previous inputs and outputs) persists across the whole
// stream; nothing about filter memory is reset by the processor's
// reset_index.
type BandpassFilter struct {
	id string

	b0, b1, b2 float64
	a1, a2     float64

	x1, x2 float64
	y1, y2 float64

	resultKey string
}

// newBandpassFilter designs and constructs a bandpass biquad for the
// given passband and sampling rate. It fails if the cutoffs don't satisfy
// 0 < fLow < fHigh < fs/2 (the Nyquist bound).
func newBandpassFilter(id string, fLow, fHigh, fs float64) (*BandpassFilter, error) {
	if !(fLow > 0 && fLow < fHigh && fHigh < fs/2) {
		return nil, configErr("filters.bandpass.cutoff",
			"bandpass filter %q requires 0 < f_low < f_high < fs/2, got f_low=%g f_high=%g fs=%g",
			id, fLow, fHigh, fs)
	}

	b0, b1, b2, a1, a2 := designButterworthBandpass(fLow, fHigh, fs)

	return &BandpassFilter{
		id:        id,
		b0:        b0,
		b1:        b1,
		b2:        b2,
		a1:        a1,
		a2:        a2,
		resultKey: filterKey(id, "filtered_sample"),
	}, nil
}

// designButterworthBandpass prewarps the cutoffs, builds the analog
// prototype centered at the geometric mean of the passband edges, and
// applies the bilinear transform. The result is normalized so a0 == 1
// and has unit gain in the passband (0 dB at the center frequency).
func designButterworthBandpass(fLow, fHigh, fs float64) (b0, b1, b2, a1, a2 float64) {
	f0 := math.Sqrt(fLow * fHigh)
	bwOctaves := math.Log2(fHigh / fLow)

	w0 := 2 * math.Pi * f0 / fs
	sinW0 := math.Sin(w0)
	cosW0 := math.Cos(w0)
	alpha := sinW0 * math.Sinh(math.Ln2/2*bwOctaves*w0/sinW0)

	a0 := 1 + alpha
	b0 = alpha / a0
	b1 = 0
	b2 = -alpha / a0
	a1 = (-2 * cosW0) / a0
	a2 = (1 - alpha) / a0
	return
}

func (f *BandpassFilter) ID() string { return f.id }

// processSample reads global:raw_sample, applies the direct-form-I
// recurrence, writes filters:<id>:filtered_sample, and advances state.
// NaN/Inf input propagates through the recurrence; no clamping is
// performed, matching the documented RuntimeIgnorable failure mode.
func (f *BandpassFilter) processSample(results *resultsMap) {
	x0, _ := results.get(keyRawSample)

	y0 := f.b0*x0 + f.b1*f.x1 + f.b2*f.x2 - f.a1*f.y1 - f.a2*f.y2

	f.x2 = f.x1
	f.x1 = x0
	f.y2 = f.y1
	f.y1 = y0

	results.set(f.resultKey, y0)
}
