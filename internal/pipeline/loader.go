package pipeline

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/palmvoyage/tripfund/internal/model"
	"github.com/palmvoyage/tripfund/internal/source"
	"github.com/palmvoyage/tripfund/internal/store"
)

// ProgressFunc is called during imports to report progress.
// current is the number of files processed so far, total is the total count.
type ProgressFunc func(current, total int)

// Load reads every saved trip and ranks them.
func Load(st *store.Store, today time.Time) ([]model.TripSummary, error) {
	trips, err := st.ListTrips()
	if err != nil {
		return nil, fmt.Errorf("listing trips: %w", err)
	}
	return Ranked(trips, today), nil
}

// ParseFiles parses trip files with a bounded worker pool. Results keep
// the order of files. offset is added to the progress count.
func ParseFiles(files []source.DiscoveredFile, offset, total int, progressFn ProgressFunc) []source.ParseResult {
	results := make([]source.ParseResult, len(files))
	if len(files) == 0 {
		return results
	}

	numWorkers := runtime.GOMAXPROCS(0)
	if numWorkers < 1 {
		numWorkers = 4
	}
	if numWorkers > len(files) {
		numWorkers = len(files)
	}

	work := make(chan int, len(files))
	var wg sync.WaitGroup
	var processed atomic.Int64

	for i := range files {
		work <- i
	}
	close(work)

	wg.Add(numWorkers)
	for w := 0; w < numWorkers; w++ {
		go func() {
			defer wg.Done()
			for idx := range work {
				results[idx] = source.ParseFile(files[idx])
				n := processed.Add(1)
				if progressFn != nil {
					progressFn(int(n)+offset, total)
				}
			}
		}()
	}

	wg.Wait()
	return results
}
