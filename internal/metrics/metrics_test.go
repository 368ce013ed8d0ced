package metrics

import (
	"sync"
	"testing"
)

func TestRegisterConcurrently(t *testing.T) {
	// Concurrent engine constructors may all ask for registration; only
	// the first call may actually register or MustRegister panics.
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			RegisterEngineMetrics()
			RegisterEmbeddingMetrics()
		}()
	}
	wg.Wait()

	// Repeated sequential calls stay idempotent too.
	RegisterEngineMetrics()
	RegisterEmbeddingMetrics()
}
