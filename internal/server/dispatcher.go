package server

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/smukkama/aquasure-server/internal/database"
	"github.com/smukkama/aquasure-server/internal/logger"
	"github.com/smukkama/aquasure-server/internal/protocol"
)

// BatchPublisher sends a batch of messages to the sample topic
type BatchPublisher interface {
	PublishBatch(ctx context.Context, messages []kafka.Message) error
}

// publishJob is one committed batch of samples waiting to be announced
type publishJob struct {
	samples  []*database.Sample
	projects map[uuid.UUID]*database.Project
}

// Dispatcher publishes SampleRecorded events from a fixed pool of workers
// so that requests never wait on the broker. Samples are already committed
// when a job is queued, so a failed publish is logged and dropped.
type Dispatcher struct {
	publisher   BatchPublisher
	log         *logger.Logger
	timeout     time.Duration
	jobQueue    chan *publishJob
	workerCount int

	mu      sync.RWMutex
	stopped bool
	wg      sync.WaitGroup
}

// NewDispatcher creates a dispatcher with workerCount workers and room for
// queueSize pending jobs
func NewDispatcher(publisher BatchPublisher, log *logger.Logger, workerCount, queueSize int) *Dispatcher {
	if workerCount <= 0 {
		workerCount = 4
	}
	if queueSize <= 0 {
		queueSize = 1000
	}
	return &Dispatcher{
		publisher:   publisher,
		log:         log,
		timeout:     10 * time.Second,
		jobQueue:    make(chan *publishJob, queueSize),
		workerCount: workerCount,
	}
}

// Start launches the workers
func (d *Dispatcher) Start() {
	for i := 0; i < d.workerCount; i++ {
		d.wg.Add(1)
		go d.worker(i)
	}
	d.log.Info("event dispatcher started", "workers", d.workerCount)
}

// Stop drains queued jobs and waits for the workers to exit
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	d.stopped = true
	close(d.jobQueue)
	d.mu.Unlock()

	d.wg.Wait()
	d.log.Info("event dispatcher stopped")
}

// Submit queues the samples of one committed batch. It never blocks; when
// the queue is full the events are dropped and logged.
func (d *Dispatcher) Submit(samples []*database.Sample, projects map[uuid.UUID]*database.Project) {
	if len(samples) == 0 {
		return
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.stopped {
		d.log.Warn("dispatcher stopped, dropping sample events", "samples", len(samples))
		return
	}

	select {
	case d.jobQueue <- &publishJob{samples: samples, projects: projects}:
	default:
		d.log.Error("event queue full, dropping sample events", "samples", len(samples))
	}
}

func (d *Dispatcher) worker(id int) {
	defer d.wg.Done()

	for job := range d.jobQueue {
		d.publish(id, job)
	}
}

func (d *Dispatcher) publish(worker int, job *publishJob) {
	messages := make([]kafka.Message, 0, len(job.samples))
	for _, s := range job.samples {
		data, err := protocol.EncodeSampleRecorded(protocol.NewSampleRecorded(s, job.projects[s.ProjectID]))
		if err != nil {
			d.log.Error("failed to encode sample event", "sample_id", s.ID, "error", err)
			continue
		}
		messages = append(messages, kafka.Message{
			Key:   []byte(s.ProjectID.String()),
			Value: data,
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	if err := d.publisher.PublishBatch(ctx, messages); err != nil {
		d.log.Error("failed to publish sample events",
			"worker", worker, "samples", len(messages), "error", err)
		return
	}
	d.log.Debug("published sample events", "worker", worker, "samples", len(messages))
}
