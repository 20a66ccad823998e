package knowledge

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/ziadkadry99/agentrag/internal/embeddings"
)

// ProgressFunc is called after each job finishes, successfully or not.
type ProgressFunc func(processed int, total int, current string)

// Job is one document to index. Load is called from a worker goroutine.
type Job struct {
	Key    DocumentKey
	Source string // shown in progress and errors; defaults to Key.String()
	Load   func(ctx context.Context) (string, error)
}

func (j Job) source() string {
	if j.Source != "" {
		return j.Source
	}
	return j.Key.String()
}

// JobResult describes a finished job.
type JobResult struct {
	Key     DocumentKey
	Chunks  int
	Skipped bool
}

// IndexFunc indexes one loaded document.
type IndexFunc func(ctx context.Context, key DocumentKey, text string) (JobResult, error)

// Batcher indexes documents concurrently with bounded parallelism.
type Batcher struct {
	concurrency int
	index       IndexFunc
	onProgress  ProgressFunc
}

// NewBatcher creates a new Batcher with the given concurrency limit.
func NewBatcher(concurrency int, index IndexFunc, onProgress ProgressFunc) *Batcher {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Batcher{
		concurrency: concurrency,
		index:       index,
		onProgress:  onProgress,
	}
}

// BatchResult holds collected results and errors from batch processing.
type BatchResult struct {
	Results []JobResult
	Errors  []error
	Chunks  int
}

// Run processes jobs concurrently. Once the embedding provider reports itself
// unavailable, the remaining jobs are skipped with an error instead of being
// attempted.
func (b *Batcher) Run(ctx context.Context, jobs []Job) *BatchResult {
	total := len(jobs)
	if total == 0 {
		return &BatchResult{}
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	var providerDown atomic.Bool

	sem := make(chan struct{}, b.concurrency)
	var mu sync.Mutex
	var processed atomic.Int64
	result := &BatchResult{}

	done := func(source string, err error) {
		if err != nil {
			mu.Lock()
			result.Errors = append(result.Errors, err)
			mu.Unlock()
		}
		count := processed.Add(1)
		if b.onProgress != nil {
			b.onProgress(int(count), total, source)
		}
	}

	var wg sync.WaitGroup
	for _, job := range jobs {
		if providerDown.Load() {
			done(job.source(), fmt.Errorf("index %s: skipped (embedding provider unavailable)", job.source()))
			continue
		}

		select {
		case <-ctx.Done():
			done(job.source(), fmt.Errorf("index %s: %w", job.source(), ctx.Err()))
			continue
		case sem <- struct{}{}:
		}
		if providerDown.Load() {
			<-sem
			done(job.source(), fmt.Errorf("index %s: skipped (embedding provider unavailable)", job.source()))
			continue
		}

		wg.Add(1)
		go func(j Job) {
			defer wg.Done()
			defer func() { <-sem }()

			text, err := j.Load(ctx)
			if err != nil {
				done(j.source(), fmt.Errorf("load %s: %w", j.source(), err))
				return
			}

			jr, err := b.index(ctx, j.Key, text)
			if err != nil {
				if errors.Is(err, embeddings.ErrEmbeddingUnavailable) {
					providerDown.Store(true)
					cancel()
				}
				done(j.source(), err)
				return
			}

			mu.Lock()
			result.Results = append(result.Results, jr)
			result.Chunks += jr.Chunks
			mu.Unlock()
			done(j.source(), nil)
		}(job)
	}

	wg.Wait()
	return result
}
