package dnbcore

import "time"

// clockFunc returns the current wall-clock time. Triggers read it at most
// once per sample; the value is never cached across components within the
// same sample. Tests substitute a deterministic clock via
// SignalProcessor.SetClock.
type clockFunc func() time.Time

func realClock() time.Time {
	return time.Now()
}

// unixSeconds renders t as fractional seconds since the Unix epoch, the
// wire format the pulse trigger writes into the results map and the format
// expected by downstream audio scheduling.
func unixSeconds(t time.Time) float64 {
	return float64(t.UnixNano()) / 1e9
}
