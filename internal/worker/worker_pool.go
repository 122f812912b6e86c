package worker

import (
	"context"
	"errors"
	"hash/fnv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

var ErrPoolStopped = errors.New("worker pool is stopped")

type Task func()

// WorkerPool runs tasks on a fixed set of workers. Every worker owns its own
// queue, so tasks submitted with the same key run one after another in
// submission order.
type WorkerPool struct {
	queues        []chan Task
	wg            sync.WaitGroup
	pendingMu     sync.Mutex
	pendingCond   *sync.Cond
	pending       int
	activeWorkers atomic.Int32
	maxWorkers    int
	submitTimeout time.Duration
	next          atomic.Uint32
	logger        zerolog.Logger
	mu            sync.RWMutex
	started       bool
	stopped       bool
}

func NewWorkerPool(maxWorkers, queueSize int, logger zerolog.Logger) *WorkerPool {
	if maxWorkers <= 0 {
		maxWorkers = 1
	}
	if queueSize <= 0 {
		queueSize = 10
	}

	queues := make([]chan Task, maxWorkers)
	for i := range queues {
		queues[i] = make(chan Task, queueSize)
	}

	wp := &WorkerPool{
		queues:        queues,
		maxWorkers:    maxWorkers,
		submitTimeout: 1 * time.Second,
		logger:        logger.With().Str("component", "worker_pool").Logger(),
	}
	wp.pendingCond = sync.NewCond(&wp.pendingMu)
	return wp
}

func (wp *WorkerPool) Start(ctx context.Context) error {
	wp.mu.Lock()
	defer wp.mu.Unlock()

	if wp.stopped {
		return ErrPoolStopped
	}
	if wp.started {
		return nil
	}
	wp.started = true

	wp.logger.Info().Int("max_workers", wp.maxWorkers).Msg("Starting worker pool")

	for i := 0; i < wp.maxWorkers; i++ {
		wp.wg.Add(1)
		go wp.worker(i, wp.queues[i])
	}

	wp.logger.Info().Int("workers_started", wp.maxWorkers).Msg("Worker pool started")
	return nil
}

// Stop drains the queues and waits for the workers to exit.
func (wp *WorkerPool) Stop() error {
	wp.mu.Lock()
	if wp.stopped {
		wp.mu.Unlock()
		return nil
	}
	wp.stopped = true
	for _, q := range wp.queues {
		close(q)
	}
	wp.mu.Unlock()

	wp.logger.Info().Msg("Stopping worker pool")
	wp.wg.Wait()
	wp.logger.Info().Msg("Worker pool stopped")
	return nil
}

// Submit queues a task on the next worker in turn.
func (wp *WorkerPool) Submit(task Task) bool {
	i := int(wp.next.Add(1) % uint32(wp.maxWorkers))
	return wp.enqueue(i, task)
}

// SubmitKeyed queues a task behind every earlier task with the same key.
func (wp *WorkerPool) SubmitKeyed(key string, task Task) bool {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return wp.enqueue(int(h.Sum32()%uint32(wp.maxWorkers)), task)
}

func (wp *WorkerPool) enqueue(i int, task Task) bool {
	wp.mu.RLock()
	defer wp.mu.RUnlock()

	if wp.stopped {
		wp.logger.Error().Msg("Task submitted to stopped worker pool")
		return false
	}

	wp.addPending(1)
	select {
	case wp.queues[i] <- task:
		return true
	default:
		wp.logger.Warn().Int("worker_id", i).Msg("Worker pool task queue is full")
		select {
		case wp.queues[i] <- task:
			return true
		case <-time.After(wp.submitTimeout):
			wp.addPending(-1)
			wp.logger.Error().Int("worker_id", i).Msg("Failed to submit task to worker pool (timeout)")
			return false
		}
	}
}

// Wait blocks until every accepted task has finished.
func (wp *WorkerPool) Wait() {
	wp.pendingMu.Lock()
	defer wp.pendingMu.Unlock()
	for wp.pending > 0 {
		wp.pendingCond.Wait()
	}
}

func (wp *WorkerPool) addPending(delta int) {
	wp.pendingMu.Lock()
	wp.pending += delta
	if wp.pending <= 0 {
		wp.pending = 0
		wp.pendingCond.Broadcast()
	}
	wp.pendingMu.Unlock()
}

func (wp *WorkerPool) worker(id int, tasks <-chan Task) {
	defer wp.wg.Done()

	wp.logger.Debug().Int("worker_id", id).Msg("Worker started")

	for task := range tasks {
		wp.run(id, task)
	}

	wp.logger.Debug().Int("worker_id", id).Msg("Worker stopped")
}

func (wp *WorkerPool) run(id int, task Task) {
	wp.activeWorkers.Add(1)

	defer func() {
		if r := recover(); r != nil {
			wp.logger.Error().
				Int("worker_id", id).
				Interface("panic", r).
				Msg("Worker recovered from panic")
		}

		wp.activeWorkers.Add(-1)
		wp.addPending(-1)
	}()

	task()
}

func (wp *WorkerPool) GetActiveWorkers() int {
	return int(wp.activeWorkers.Load())
}

func (wp *WorkerPool) GetQueueLength() int {
	n := 0
	for _, q := range wp.queues {
		n += len(q)
	}
	return n
}

func (wp *WorkerPool) GetStats() map[string]interface{} {
	capacity := 0
	for _, q := range wp.queues {
		capacity += cap(q)
	}

	return map[string]interface{}{
		"active_workers": wp.GetActiveWorkers(),
		"max_workers":    wp.maxWorkers,
		"queue_length":   wp.GetQueueLength(),
		"queue_capacity": capacity,
	}
}
