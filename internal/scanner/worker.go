package scanner

import (
	"context"
	"sync"
)

// WorkerConfig holds options for the worker pool.
type WorkerConfig struct {
	// Threads bounds the number of probes in flight. Zero or negative means
	// one goroutine per item.
	Threads int
	Gate    *Gate // nil = no pause support

	// OnResult is called from the collecting goroutine once per completed
	// probe, in completion order.
	OnResult func(ScanResult)
}

// RunWorkerPool fans out work items across workers and returns a channel
// of results in completion order. Exactly one result is produced per item,
// and the channel is closed once all of them have been delivered.
//
// Cancelling ctx does not drop items: pending and in-flight probes fail fast
// and are reported as transport failures.
func RunWorkerPool(
	ctx context.Context,
	req *Requester,
	items []WorkItem,
	cfg WorkerConfig,
) <-chan ScanResult {
	threads := cfg.Threads
	if threads <= 0 || threads > len(items) {
		threads = len(items)
	}
	itemsCh := make(chan WorkItem, threads)
	resultsCh := make(chan ScanResult, threads)

	var wg sync.WaitGroup

	// Producer: feed every item.
	go func() {
		defer close(itemsCh)
		for _, item := range items {
			itemsCh <- item
		}
	}()

	for i := 0; i < threads; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for item := range itemsCh {
				if cfg.Gate != nil {
					// A cancelled wait falls through; Do then fails fast.
					_ = cfg.Gate.Wait(ctx)
				}
				resultsCh <- req.Do(ctx, item)
			}
		}()
	}

	// Closer: when all workers finish, close the results channel.
	go func() {
		wg.Wait()
		close(resultsCh)
	}()

	return resultsCh
}

// Dispatch probes every word of the batch and returns the full result set in
// completion order. len(result) always equals len(batch.Words).
func Dispatch(ctx context.Context, req *Requester, batch Batch, cfg WorkerConfig) []ScanResult {
	items := batch.Items()
	results := make([]ScanResult, 0, len(items))
	if len(items) == 0 {
		return results
	}

	for result := range RunWorkerPool(ctx, req, items, cfg) {
		if cfg.OnResult != nil {
			cfg.OnResult(result)
		}
		results = append(results, result)
	}
	return results
}
