package services

import (
	"context"
	"sync"

	"dslf/internal/domain/models"
)

type probeTask struct {
	entry models.RouteEntry
	index int
}

type probeResult struct {
	outcome models.ValidationOutcome
	index   int
}

// createProbeChannel feeds entries to the workers until ctx is done.
func createProbeChannel(ctx context.Context, entries []models.RouteEntry) <-chan probeTask {
	inputCh := make(chan probeTask)
	go func() {
		defer close(inputCh)
		for i, e := range entries {
			select {
			case <-ctx.Done():
				return
			case inputCh <- probeTask{entry: e, index: i}:
			}
		}
	}()
	return inputCh
}

// collectProbeResults fans the worker channels into one channel closed after the last worker.
func collectProbeResults(channels ...chan probeResult) <-chan probeResult {
	finalCh := make(chan probeResult)
	var wg sync.WaitGroup

	for _, ch := range channels {
		wg.Add(1)
		go func(ch chan probeResult) {
			defer wg.Done()
			for v := range ch {
				finalCh <- v
			}
		}(ch)
	}

	go func() {
		wg.Wait()
		close(finalCh)
	}()

	return finalCh
}
