// Package queue decouples the notification dispatcher from the delivery
// worker. Jobs carry only the notification id and resolved channel; the
// worker re-reads everything else from the store.
package queue

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Job is one pending delivery. Re-enqueueing the same notification
// re-sends it; idempotence is not guaranteed.
type Job struct {
	ID             string `json:"id"`
	NotificationID uint   `json:"notification_id"`
	Channel        string `json:"channel"`
	EnqueuedAt     int64  `json:"enqueued_at"`
}

func NewJob(notificationID uint, channel string) Job {
	return Job{
		ID:             uuid.NewString(),
		NotificationID: notificationID,
		Channel:        channel,
		EnqueuedAt:     time.Now().Unix(),
	}
}

// ErrClosed is returned by Dequeue once the queue has shut down.
var ErrClosed = errors.New("queue closed")

type Queue interface {
	Enqueue(ctx context.Context, job Job) error
	// Dequeue blocks until a job is available, the context is done, or
	// the queue is closed.
	Dequeue(ctx context.Context) (Job, error)
	Close() error
}

// Memory is an in-process queue used when no Redis address is configured
// (development, tests). Delivery then runs in the same binary. Shutdown
// is signalled through a done channel rather than by closing the job
// channel, so a late Enqueue gets ErrClosed instead of a panic.
type Memory struct {
	jobs      chan Job
	done      chan struct{}
	closeOnce sync.Once
}

func NewMemory(buffer int) *Memory {
	return &Memory{
		jobs: make(chan Job, buffer),
		done: make(chan struct{}),
	}
}

func (m *Memory) Enqueue(ctx context.Context, job Job) error {
	select {
	case <-m.done:
		return ErrClosed
	default:
	}
	select {
	case m.jobs <- job:
		return nil
	case <-m.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *Memory) Dequeue(ctx context.Context) (Job, error) {
	select {
	case job := <-m.jobs:
		return job, nil
	case <-m.done:
		// Drain jobs accepted before Close.
		select {
		case job := <-m.jobs:
			return job, nil
		default:
			return Job{}, ErrClosed
		}
	case <-ctx.Done():
		return Job{}, ctx.Err()
	}
}

func (m *Memory) Close() error {
	m.closeOnce.Do(func() { close(m.done) })
	return nil
}

// Len reports the number of buffered jobs; used by tests.
func (m *Memory) Len() int {
	return len(m.jobs)
}
