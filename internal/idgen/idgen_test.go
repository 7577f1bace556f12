package idgen

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestOrderNumber(t *testing.T) {
	assert.Equal(t, "ORD-00001", OrderNumber(0))
	assert.Equal(t, "ORD-00043", OrderNumber(42))
	assert.Equal(t, "ORD-100001", OrderNumber(100000))
}

func TestTrackingNumberShape(t *testing.T) {
	re := regexp.MustCompile(`^[A-Z]{2}\d{9}[A-Z]{2}$`)
	for i := 0; i < 50; i++ {
		tn := TrackingNumber()
		assert.Regexp(t, re, tn)
	}
}

func TestReceiptIDShape(t *testing.T) {
	re := regexp.MustCompile(`^RCP-\d{6}$`)
	for i := 0; i < 50; i++ {
		assert.Regexp(t, re, ReceiptID())
	}
}

func TestEstimatedDeliveryWindow(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 50; i++ {
		eta := EstimatedDelivery(now)
		diff := eta.Sub(now)
		assert.GreaterOrEqual(t, diff, 5*24*time.Hour)
		assert.LessOrEqual(t, diff, 7*24*time.Hour)
	}
}
