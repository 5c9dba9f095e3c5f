// Package main builds the C-ABI surface described in the configuration
// contract: a shared library exposing an opaque processor handle to
// hosts written in C, Python (via ctypes/cffi), or anything else that
// can load a .so/.dylib/.dll. Build with:
//
//	go build -buildmode=c-shared -o libdnbcore.so ./cmd/libdnbcore
//
// Every exported call except create/delete is infallible by contract:
// construction is where ConfigInvalid/IoError get surfaced, as a null
// handle plus a one-line diagnostic written to the log sink.
package main

/*
#include <stdlib.h>
*/
import "C"

import (
	"sync"
	"unsafe"

	dnbcore "github.com/bushlab-ucl/dnbcore/src"
)

var (
	handlesMu sync.Mutex
	handles   = map[C.uintptr_t]*dnbcore.SignalProcessor{}
	nextID    C.uintptr_t = 1
)

func registerHandle(sp *dnbcore.SignalProcessor) C.uintptr_t {
	handlesMu.Lock()
	defer handlesMu.Unlock()
	id := nextID
	nextID++
	handles[id] = sp
	return id
}

func lookupHandle(h C.uintptr_t) *dnbcore.SignalProcessor {
	handlesMu.Lock()
	defer handlesMu.Unlock()
	return handles[h]
}

//export create_signal_processor_from_config
func create_signal_processor_from_config(path *C.char) C.uintptr_t {
	sp, err := dnbcore.NewSignalProcessorFromFile(C.GoString(path))
	if err != nil {
		// The processor doesn't exist yet, so there's no log sink to
		// write the diagnostic to; a standalone bootstrap logger
		// reports the first violated rule instead.
		dnbcore.LogBootstrapFailure(err)
		return 0
	}
	return registerHandle(sp)
}

//export delete_signal_processor
func delete_signal_processor(handle C.uintptr_t) {
	handlesMu.Lock()
	defer handlesMu.Unlock()
	delete(handles, handle)
}

//export reset_index
func reset_index(handle C.uintptr_t) {
	sp := lookupHandle(handle)
	if sp == nil {
		return
	}
	sp.ResetIndex()
}

//export log_message
func log_message(handle C.uintptr_t, text *C.char) {
	sp := lookupHandle(handle)
	if sp == nil {
		return
	}
	sp.LogMessage(C.GoString(text))
}

//export run_chunk
func run_chunk(handle C.uintptr_t, dataPtr *C.double, length C.size_t) *C.double {
	sp := lookupHandle(handle)
	if sp == nil {
		return nil
	}

	n := int(length)
	samples := make([]float64, n)
	if n > 0 {
		src := unsafe.Slice((*C.double)(unsafe.Pointer(dataPtr)), n)
		for i := 0; i < n; i++ {
			samples[i] = float64(src[i])
		}
	}

	ts, ok := sp.RunChunk(samples)
	if !ok {
		return nil
	}

	out := (*C.double)(C.malloc(C.size_t(unsafe.Sizeof(C.double(0)))))
	*out = C.double(ts)
	return out
}

// free_trigger_result releases a timestamp pointer returned by run_chunk.
// Hosts must use this instead of their own allocator's free: the
// pointer was allocated by this library's C.malloc, and only this
// library's C.free is guaranteed to match it.
//
//export free_trigger_result
func free_trigger_result(ptr *C.double) {
	if ptr == nil {
		return
	}
	C.free(unsafe.Pointer(ptr))
}

func main() {}
