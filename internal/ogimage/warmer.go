package ogimage

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
)

// Task is a unit of work run by a WorkerPool.
type Task func(ctx context.Context) error

// WorkerPool runs submitted tasks on a fixed number of goroutines.
type WorkerPool struct {
	workerCount int
	taskQueue   chan Task
	wg          sync.WaitGroup
	ctx         context.Context
	cancel      context.CancelFunc
	closed      bool
	closeMux    sync.Mutex
	logger      *slog.Logger
}

// NewWorkerPool creates a pool bound to ctx; cancelling ctx stops the workers.
func NewWorkerPool(ctx context.Context, workerCount int, logger *slog.Logger) *WorkerPool {
	if workerCount < 1 {
		workerCount = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	poolCtx, cancel := context.WithCancel(ctx)
	return &WorkerPool{
		workerCount: workerCount,
		taskQueue:   make(chan Task, workerCount*2),
		ctx:         poolCtx,
		cancel:      cancel,
		logger:      logger,
	}
}

func (wp *WorkerPool) Start() {
	for i := 0; i < wp.workerCount; i++ {
		wp.wg.Add(1)
		go wp.worker(i)
	}
}

// Submit blocks until the task is queued. It reports false once the pool is cancelled.
func (wp *WorkerPool) Submit(task Task) bool {
	if wp.ctx.Err() != nil {
		return false
	}
	select {
	case wp.taskQueue <- task:
		return true
	case <-wp.ctx.Done():
		return false
	}
}

// Wait closes the queue and blocks until every queued task has run.
func (wp *WorkerPool) Wait() {
	wp.closeMux.Lock()
	if !wp.closed {
		close(wp.taskQueue)
		wp.closed = true
	}
	wp.closeMux.Unlock()

	wp.wg.Wait()
	wp.cancel()
}

// Shutdown cancels the workers and waits for them.
func (wp *WorkerPool) Shutdown() {
	wp.cancel()
	wp.Wait()
}

func (wp *WorkerPool) worker(id int) {
	defer wp.wg.Done()

	for task := range wp.taskQueue {
		select {
		case <-wp.ctx.Done():
			return
		default:
		}

		if err := task(wp.ctx); err != nil {
			wp.logger.Warn("[og_image] task failed", "worker", id, "error", err)
		}
	}
}

// WarmResult counts the outcome of a Warm run.
type WarmResult struct {
	Pages  int
	Images int
}

// Warm fetches the og:image of every page so later lookups hit the cache.
// Fetch failures are logged by the fetcher and counted as pages without an image.
func (f *Fetcher) Warm(ctx context.Context, pages []string, workers int) WarmResult {
	var found atomic.Int64

	pool := NewWorkerPool(ctx, workers, f.logger)
	pool.Start()

	submitted := 0
	for _, page := range pages {
		page := page
		ok := pool.Submit(func(ctx context.Context) error {
			if f.Fetch(ctx, page) != nil {
				found.Add(1)
			}
			return nil
		})
		if !ok {
			break
		}
		submitted++
	}
	pool.Wait()

	result := WarmResult{Pages: submitted, Images: int(found.Load())}
	f.logger.Info("[og_image] cache warmed", "pages", result.Pages, "images", result.Images)
	return result
}
