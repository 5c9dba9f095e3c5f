package dnbcore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func fixedClock(t time.Time) clockFunc {
	return func() time.Time { return t }
}

func TestPulseTriggerFiresOnActivation(t *testing.T) {
	trig := newPulseTrigger("p", "act", "", 1000, 0, 512)
	results := newResultsMap()
	results.set(detectorKey("act", "detected"), flagTrue)

	base := time.Unix(1000, 0)
	fired, ts := trig.evaluate(results, 0, fixedClock(base))
	assert.True(t, fired)
	assert.InDelta(t, unixSeconds(base), ts, 1e-9)
	assert.True(t, results.flag(trig.triggeredKey))
}

func TestPulseTriggerRespectsPulseCooldown(t *testing.T) {
	trig := newPulseTrigger("p", "act", "", 2000, 0, 512)
	results := newResultsMap()
	results.set(detectorKey("act", "detected"), flagTrue)

	base := time.Unix(1000, 0)
	fired, _ := trig.evaluate(results, 0, fixedClock(base))
	assert.True(t, fired)

	// Still within the 2000ms cooldown.
	fired, _ = trig.evaluate(results, 1, fixedClock(base.Add(500*time.Millisecond)))
	assert.False(t, fired)

	// Past the cooldown.
	fired, _ = trig.evaluate(results, 2, fixedClock(base.Add(2500*time.Millisecond)))
	assert.True(t, fired)
}

func TestPulseTriggerRespectsInhibitionCooldown(t *testing.T) {
	trig := newPulseTrigger("p", "act", "inh", 0, 1000, 512)
	results := newResultsMap()

	base := time.Unix(2000, 0)

	// Inhibition fires first.
	results.set(detectorKey("inh", "detected"), flagTrue)
	results.set(detectorKey("act", "detected"), flagFalse)
	fired, _ := trig.evaluate(results, 0, fixedClock(base))
	assert.False(t, fired)

	// Activation fires shortly after, still within inhibition cooldown.
	results.set(detectorKey("inh", "detected"), flagFalse)
	results.set(detectorKey("act", "detected"), flagTrue)
	fired, _ = trig.evaluate(results, 1, fixedClock(base.Add(200*time.Millisecond)))
	assert.False(t, fired, "activation should be suppressed while inhibition cooldown is active")

	// After the inhibition cooldown elapses, activation can fire.
	fired, _ = trig.evaluate(results, 2, fixedClock(base.Add(1200*time.Millisecond)))
	assert.True(t, fired)
}

func TestPulseTriggerNeverFiresTwiceWithinCooldown(t *testing.T) {
	trig := newPulseTrigger("p", "act", "", 1500, 0, 512)
	results := newResultsMap()
	results.set(detectorKey("act", "detected"), flagTrue)

	base := time.Unix(5000, 0)
	var lastFire time.Time
	fired := false
	for i := 0; i < 2000; i++ {
		now := base.Add(time.Duration(i) * 10 * time.Millisecond)
		f, _ := trig.evaluate(results, int64(i), fixedClock(now))
		if f {
			if fired {
				assert.GreaterOrEqual(t, now.Sub(lastFire), 1500*time.Millisecond)
			}
			fired = true
			lastFire = now
		}
	}
}

func TestPulseTriggerProjectsTimestampFromFuturePeak(t *testing.T) {
	trig := newPulseTrigger("p", "act", "", 0, 0, 512)
	results := newResultsMap()
	results.set(detectorKey("act", "detected"), flagTrue)
	results.set(detectorKey("act", "peak_index"), float64(110))

	base := time.Unix(1000, 0)
	_, ts := trig.evaluate(results, 100, fixedClock(base))
	expected := unixSeconds(base) + float64(10)/512
	assert.InDelta(t, expected, ts, 1e-9)
}

func TestPulseTriggerProjectsCurrentTimeWhenPeakIsPast(t *testing.T) {
	trig := newPulseTrigger("p", "act", "", 0, 0, 512)
	results := newResultsMap()
	results.set(detectorKey("act", "detected"), flagTrue)
	results.set(detectorKey("act", "peak_index"), float64(50))

	base := time.Unix(1000, 0)
	_, ts := trig.evaluate(results, 100, fixedClock(base))
	assert.InDelta(t, unixSeconds(base), ts, 1e-9)
}
