package timer

import (
	"container/heap"
	"context"
	"errors"
	"sync"
	"time"
)

// ErrSchedulerStopped is returned when scheduling on a stopped Scheduler
var ErrSchedulerStopped = errors.New("scheduler is stopped")

// Job is the work run when a task expires. ctx is cancelled on Stop.
type Job func(ctx context.Context)

// Task is a job scheduled for a point in time
type Task struct {
	ID    string
	RunAt time.Time
	Job   Job
	index int
}

// taskHeap is a min-heap of tasks ordered by RunAt
type taskHeap []*Task

func (h taskHeap) Len() int { return len(h) }

func (h taskHeap) Less(i, j int) bool {
	return h[i].RunAt.Before(h[j].RunAt)
}

func (h taskHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *taskHeap) Push(x interface{}) {
	task := x.(*Task)
	task.index = len(*h)
	*h = append(*h, task)
}

func (h *taskHeap) Pop() interface{} {
	old := *h
	n := len(old)
	task := old[n-1]
	old[n-1] = nil
	task.index = -1
	*h = old[:n-1]
	return task
}

// Scheduler runs tasks at their due time on a fixed pool of workers. Due
// tasks are handed to workers in RunAt order; at most `workers` jobs run at
// once.
type Scheduler struct {
	mu      sync.Mutex
	heap    taskHeap
	tasks   map[string]*Task
	stopped bool

	workers int
	ready   chan *Task
	wakeup  chan struct{}
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	running   int
	completed int
}

// NewScheduler creates a scheduler backed by workers goroutines
func NewScheduler(workers int) *Scheduler {
	if workers <= 0 {
		workers = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		heap:    make(taskHeap, 0),
		tasks:   make(map[string]*Task),
		workers: workers,
		ready:   make(chan *Task),
		wakeup:  make(chan struct{}, 1),
		ctx:     ctx,
		cancel:  cancel,
	}
	heap.Init(&s.heap)
	return s
}

// Start launches the dispatch loop and the workers
func (s *Scheduler) Start() {
	for i := 0; i < s.workers; i++ {
		s.wg.Add(1)
		go s.worker()
	}
	s.wg.Add(1)
	go s.run()
}

// Stop cancels running jobs, drops pending tasks and waits for the workers
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	s.mu.Unlock()

	s.cancel()
	s.wg.Wait()
}

// Schedule adds a task, replacing any pending task with the same id
func (s *Scheduler) Schedule(id string, runAt time.Time, job Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return ErrSchedulerStopped
	}

	if existing, ok := s.tasks[id]; ok {
		heap.Remove(&s.heap, existing.index)
		delete(s.tasks, id)
	}

	task := &Task{ID: id, RunAt: runAt, Job: job}
	heap.Push(&s.heap, task)
	s.tasks[id] = task

	if s.heap[0] == task {
		select {
		case s.wakeup <- struct{}{}:
		default:
		}
	}
	return nil
}

// Every runs job repeatedly. next computes the following run time from the
// current time and is called once up front and again after every run.
func (s *Scheduler) Every(id string, next func(now time.Time) time.Time, job Job) error {
	var wrapped Job
	wrapped = func(ctx context.Context) {
		job(ctx)
		if ctx.Err() != nil {
			return
		}
		// only fails once the scheduler is stopped
		_ = s.Schedule(id, next(time.Now()), wrapped)
	}
	return s.Schedule(id, next(time.Now()), wrapped)
}

// Cancel removes a pending task. It reports whether the task was pending.
func (s *Scheduler) Cancel(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, ok := s.tasks[id]
	if !ok {
		return false
	}
	heap.Remove(&s.heap, task.index)
	delete(s.tasks, id)
	return true
}

// NextRun returns when the pending task id is due
func (s *Scheduler) NextRun(id string) (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, ok := s.tasks[id]
	if !ok {
		return time.Time{}, false
	}
	return task.RunAt, true
}

func (s *Scheduler) run() {
	defer s.wg.Done()

	for {
		s.mu.Lock()
		wait := 24 * time.Hour
		var due *Task
		if s.heap.Len() > 0 {
			wait = time.Until(s.heap[0].RunAt)
			if wait <= 0 {
				due = heap.Pop(&s.heap).(*Task)
				delete(s.tasks, due.ID)
			}
		}
		s.mu.Unlock()

		if due != nil {
			// blocks while every worker is busy
			select {
			case s.ready <- due:
			case <-s.ctx.Done():
				return
			}
			continue
		}

		timer := time.NewTimer(wait)
		select {
		case <-timer.C:
		case <-s.wakeup:
			timer.Stop()
		case <-s.ctx.Done():
			timer.Stop()
			return
		}
	}
}

func (s *Scheduler) worker() {
	defer s.wg.Done()

	for {
		select {
		case task := <-s.ready:
			s.execute(task)
		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Scheduler) execute(task *Task) {
	s.mu.Lock()
	s.running++
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running--
		s.completed++
		s.mu.Unlock()
	}()

	task.Job(s.ctx)
}

// Stats returns a snapshot of the scheduler's counters
func (s *Scheduler) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Stats{
		Pending:   len(s.tasks),
		Running:   s.running,
		Completed: s.completed,
		Workers:   s.workers,
	}
}

// Stats describes the scheduler's load
type Stats struct {
	Pending   int
	Running   int
	Completed int
	Workers   int
}
