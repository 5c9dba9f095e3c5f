package dnbcore

// resultsMap is the per-sample key -> float64 scratch space shared by
// every filter, detector, and trigger in a processor. It is reused across
// samples: a producer overwrites its own keys every sample, but keys it
// doesn't touch on a given sample keep whatever they held from the
// previous one. Readers that need "did this fire on *this* sample" must
// only trust a key after its producer has run earlier in the same pass.
//
// Keys are plain strings rather than interned symbols; every key used on
// the hot path is built once at construction time and stored on the
// owning component, so run_chunk never formats a string.
type resultsMap struct {
	values map[string]float64
}

func newResultsMap() *resultsMap {
	return &resultsMap{values: make(map[string]float64)}
}

func (m *resultsMap) set(key string, v float64) {
	m.values[key] = v
}

// get returns the value at key and whether it has ever been written.
func (m *resultsMap) get(key string) (float64, bool) {
	v, ok := m.values[key]
	return v, ok
}

// flag returns whether key holds the "true" flag convention (1.0);
// a missing key or any value other than 1.0 reads as false.
func (m *resultsMap) flag(key string) bool {
	v, ok := m.values[key]
	return ok && v == 1.0
}

const (
	keyRawSample = "global:raw_sample"

	flagTrue  = 1.0
	flagFalse = 0.0
)

func filterKey(id, field string) string {
	return "filters:" + id + ":" + field
}

func detectorKey(id, field string) string {
	return "detectors:" + id + ":" + field
}

func triggerKey(id, field string) string {
	return "triggers:" + id + ":" + field
}
