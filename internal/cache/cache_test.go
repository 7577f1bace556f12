package cache

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"order-lifecycle-service/internal/model"
)

func summaries(n string) []model.OrderSummary {
	return []model.OrderSummary{{OrderNumber: n, Status: model.StatusProcessing}}
}

func TestSetGet(t *testing.T) {
	c := New(time.Minute, 10)
	c.Set("u1", summaries("ORD-00001"))

	got, ok := c.Get("u1")
	assert.True(t, ok)
	assert.Equal(t, "ORD-00001", got[0].OrderNumber)

	_, ok = c.Get("u2")
	assert.False(t, ok)
}

func TestExpiry(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	c := NewWithClock(time.Minute, 10, clock)

	c.Set("u1", summaries("ORD-00001"))
	_, ok := c.Get("u1")
	assert.True(t, ok)

	now = now.Add(2 * time.Minute)
	_, ok = c.Get("u1")
	assert.False(t, ok)
}

func TestBoundedSize(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	c := NewWithClock(time.Minute, 3, clock)

	for i := 0; i < 5; i++ {
		c.Set(fmt.Sprintf("u%d", i), summaries(fmt.Sprintf("ORD-%05d", i)))
		now = now.Add(time.Second)
	}

	count := 0
	for i := 0; i < 5; i++ {
		if _, ok := c.Get(fmt.Sprintf("u%d", i)); ok {
			count++
		}
	}
	assert.Equal(t, 3, count)
	// los más viejos fueron desalojados
	_, ok := c.Get("u0")
	assert.False(t, ok)
	_, ok = c.Get("u4")
	assert.True(t, ok)
}

func TestInvalidate(t *testing.T) {
	c := New(time.Minute, 10)
	c.Set("u1", summaries("ORD-00001"))
	c.Invalidate("u1")
	_, ok := c.Get("u1")
	assert.False(t, ok)
}
