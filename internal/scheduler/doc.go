// Package scheduler dispatches clip jobs in score order through a bounded
// worker pool. Each job walks the download, track, render lifecycle with its
// state persisted to the queue; retryable stage failures back off and try
// again, terminal failures are recorded and the batch moves on.
package scheduler
