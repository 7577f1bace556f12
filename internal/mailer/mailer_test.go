package mailer

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"order-lifecycle-service/internal/model"
)

type fakeSender struct {
	mu       sync.Mutex
	sent     []Job
	failures int // cuántos envíos fallan antes de empezar a funcionar
	calls    int
}

func (f *fakeSender) Send(ctx context.Context, job Job) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.calls <= f.failures {
		return errors.New("smtp caído")
	}
	f.sent = append(f.sent, job)
	return nil
}

func (f *fakeSender) sentJobs() []Job {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Job(nil), f.sent...)
}

func (f *fakeSender) totalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func TestScheduleOrderEmails(t *testing.T) {
	sender := &fakeSender{}
	d := NewDispatcher(sender, 0, 0, 3)
	d.Start()

	d.ScheduleOrderEmails(model.Order{
		OrderNumber:   "ORD-00001",
		CustomerEmail: "ana@mail.com",
		CustomerName:  "Ana",
		TotalAmount:   350,
		Items:         []model.OrderItem{{ProductID: "P1", Quantity: 1}},
	})
	d.Stop()

	sent := sender.sentJobs()
	assert.Len(t, sent, 2)
	assert.Equal(t, "ana@mail.com", sent[0].To)
	assert.Equal(t, "ops@tienda.local", sent[1].To)
}

func TestRetriesWithBackoff(t *testing.T) {
	sender := &fakeSender{failures: 2}
	d := NewDispatcher(sender, 0, time.Millisecond, 3)
	d.Start()

	d.Enqueue(Job{To: "x@y.z", OrderNumber: "ORD-00002"})
	d.Stop()

	assert.Equal(t, 3, sender.totalCalls())
	assert.Len(t, sender.sentJobs(), 1)
}

func TestAbandonsAfterMaxAttempts(t *testing.T) {
	sender := &fakeSender{failures: 100}
	d := NewDispatcher(sender, 0, time.Millisecond, 3)
	d.Start()

	d.Enqueue(Job{To: "x@y.z", OrderNumber: "ORD-00003"})
	d.Stop()

	// tres intentos y se abandona; al caller nunca le llega el error
	assert.Equal(t, 3, sender.totalCalls())
	assert.Empty(t, sender.sentJobs())
}
