package queue

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryEnqueueAfterCloseErrors(t *testing.T) {
	m := NewMemory(4)
	require.NoError(t, m.Close())
	require.NoError(t, m.Close())

	err := m.Enqueue(context.Background(), NewJob(1, "email"))
	assert.ErrorIs(t, err, ErrClosed)
}

func TestMemoryCloseDrainsBufferedJobs(t *testing.T) {
	m := NewMemory(4)
	require.NoError(t, m.Enqueue(context.Background(), NewJob(1, "email")))
	require.NoError(t, m.Enqueue(context.Background(), NewJob(2, "sms")))
	require.NoError(t, m.Close())

	job, err := m.Dequeue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint(1), job.NotificationID)
	job, err = m.Dequeue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint(2), job.NotificationID)

	_, err = m.Dequeue(context.Background())
	assert.ErrorIs(t, err, ErrClosed)
}

func TestMemoryDequeueHonorsContext(t *testing.T) {
	m := NewMemory(1)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := m.Dequeue(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
