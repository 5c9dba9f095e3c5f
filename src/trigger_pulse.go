package dnbcore

import "time"

// PulseTrigger arbitrates one activation detector and an optional
// inhibition detector into a stimulation decision, gated by independent
// cooldowns on each.
type PulseTrigger struct {
	id string

	activationDetectedKey string
	activationPeakKey     string
	inhibitionDetectedKey string // empty if no inhibition detector configured

	pulseCooldown      time.Duration
	inhibitionCooldown time.Duration
	fs                 float64

	lastActivation time.Time
	hasActivation  bool
	lastInhibition time.Time
	hasInhibition  bool

	triggeredKey string
	timestampKey string
}

func newPulseTrigger(
	id, activationDetectorID, inhibitionDetectorID string,
	pulseCooldownMs, inhibitionCooldownMs float64,
	fs float64,
) *PulseTrigger {
	t := &PulseTrigger{
		id:                    id,
		activationDetectedKey: detectorKey(activationDetectorID, "detected"),
		activationPeakKey:     detectorKey(activationDetectorID, "peak_index"),
		pulseCooldown:         time.Duration(pulseCooldownMs * float64(time.Millisecond)),
		inhibitionCooldown:    time.Duration(inhibitionCooldownMs * float64(time.Millisecond)),
		fs:                    fs,
		triggeredKey:          triggerKey(id, "triggered"),
		timestampKey:          triggerKey(id, "trigger_timestamp"),
	}
	if inhibitionDetectorID != "" {
		t.inhibitionDetectedKey = detectorKey(inhibitionDetectorID, "detected")
	}
	return t
}

func (t *PulseTrigger) ID() string { return t.id }

// evaluate consults this sample's activation/inhibition flags, updates
// cooldown bookkeeping, and fires when both cooldowns have elapsed. It
// always writes triggers:<id>:triggered; trigger_timestamp is only
// written when fired is true.
func (t *PulseTrigger) evaluate(results *resultsMap, globalIndex int64, now clockFunc) (bool, float64) {
	wallNow := now()

	if t.inhibitionDetectedKey != "" && results.flag(t.inhibitionDetectedKey) {
		t.lastInhibition = wallNow
		t.hasInhibition = true
	}

	inhibitionClear := !t.hasInhibition || wallNow.Sub(t.lastInhibition) >= t.inhibitionCooldown
	activationClear := !t.hasActivation || wallNow.Sub(t.lastActivation) >= t.pulseCooldown

	if results.flag(t.activationDetectedKey) && inhibitionClear && activationClear {
		ts := t.projectTimestamp(results, globalIndex, wallNow)

		results.set(t.triggeredKey, flagTrue)
		results.set(t.timestampKey, ts)
		t.lastActivation = wallNow
		t.hasActivation = true
		return true, ts
	}

	results.set(t.triggeredKey, flagFalse)
	return false, 0
}

// projectTimestamp computes the wall-clock timestamp to stimulate at. If
// the activation detector reported a peak_index for this detection and
// it lies ahead of the current sample, the timestamp is projected
// forward by that many samples' worth of time; otherwise (the common
// case, since a wave's peak is already behind the sample that completes
// it) the projection is simply the current wall time.
func (t *PulseTrigger) projectTimestamp(results *resultsMap, globalIndex int64, wallNow time.Time) float64 {
	peakIndex, ok := results.get(t.activationPeakKey)
	if !ok {
		return unixSeconds(wallNow)
	}

	offsetSamples := peakIndex - float64(globalIndex)
	if offsetSamples <= 0 {
		return unixSeconds(wallNow)
	}
	return unixSeconds(wallNow) + offsetSamples/t.fs
}
