package queue

import (
	"context"
	"sync"
	"testing"
	"time"

	"hirelens/internal/errors"

	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingAcker remembers how each delivery was settled
type recordingAcker struct {
	mu     sync.Mutex
	acked  []uint64
	nacked []uint64
}

func (a *recordingAcker) Ack(tag uint64, _ bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.acked = append(a.acked, tag)
	return nil
}

func (a *recordingAcker) Nack(tag uint64, _, _ bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.nacked = append(a.nacked, tag)
	return nil
}

func (a *recordingAcker) Reject(tag uint64, _ bool) error {
	return a.Nack(tag, false, false)
}

func TestSupervise(t *testing.T) {
	t.Run("cancelled context is a clean stop", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		assert.NoError(t, supervise(ctx, make(chan *amqp.Error), make(chan struct{})))
	})

	t.Run("broker closes the channel", func(t *testing.T) {
		closed := make(chan *amqp.Error, 1)
		closed <- &amqp.Error{Code: amqp.ConnectionForced, Reason: "CONNECTION_FORCED - broker shutdown"}

		err := supervise(context.Background(), closed, make(chan struct{}))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "broker shutdown")
	})

	t.Run("notify channel closed without error", func(t *testing.T) {
		closed := make(chan *amqp.Error)
		close(closed)
		assert.Error(t, supervise(context.Background(), closed, make(chan struct{})))
	})

	t.Run("workers stopped", func(t *testing.T) {
		done := make(chan struct{})
		close(done)
		err := supervise(context.Background(), make(chan *amqp.Error), done)
		assert.EqualError(t, err, "rabbitmq deliveries stopped")
	})
}

func TestStartWorkers_DoneWhenDeliveriesClose(t *testing.T) {
	pub := &fakePublisher{}
	c := &Consumer{
		worker: NewWorker(&echoAnalyzer{}, nil, pub, errors.NewDiscardLogger()),
		logger: errors.NewDiscardLogger(),
	}
	acker := &recordingAcker{}

	deliveries := make(chan amqp.Delivery, 2)
	deliveries <- amqp.Delivery{Acknowledger: acker, DeliveryTag: 1, Body: []byte("{")}
	deliveries <- amqp.Delivery{Acknowledger: acker, DeliveryTag: 2, Body: jobBody(t, AnalysisJob{
		ID:    "job-7",
		Files: []JobFile{{Filename: "a.txt", Data: "aGk="}},
	})}
	close(deliveries)

	done := c.startWorkers(context.Background(), 2, deliveries)
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("workers did not stop after the deliveries channel closed")
	}

	assert.Equal(t, []uint64{1}, acker.nacked, "undecodable jobs are rejected")
	assert.Equal(t, []uint64{2}, acker.acked)
	assert.Equal(t, []string{StatusProcessing, StatusCompleted}, pub.statuses())
	assert.EqualError(t, supervise(context.Background(), make(chan *amqp.Error), done), "rabbitmq deliveries stopped")
}
