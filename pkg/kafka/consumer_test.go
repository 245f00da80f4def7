package kafka

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type flakyHandler struct {
	failures int
	calls    int
}

func (h *flakyHandler) Topic() string { return "t" }

func (h *flakyHandler) Handle(context.Context, []byte) error {
	h.calls++
	if h.calls <= h.failures {
		return errors.New("boom")
	}
	return nil
}

type panicHandler struct{}

func (panicHandler) Topic() string { return "t" }
func (panicHandler) Handle(context.Context, []byte) error { panic("bad payload") }

func newTestConsumer(t *testing.T, retries int) *Consumer {
	t.Helper()
	c, err := NewConsumer(
		WithConsumerBrokers([]string{"localhost:9092"}),
		WithConsumerRetry(retries, time.Millisecond, 2*time.Millisecond),
	)
	if err != nil {
		t.Fatalf("new consumer: %v", err)
	}
	return c
}

func TestHandleRetriesUntilSuccess(t *testing.T) {
	c := newTestConsumer(t, 3)
	h := &flakyHandler{failures: 2}

	assert.NoError(t, c.handle(h, []byte("{}")))
	assert.Equal(t, 3, h.calls)
}

func TestHandleGivesUpAfterRetryMax(t *testing.T) {
	c := newTestConsumer(t, 1)
	h := &flakyHandler{failures: 10}

	assert.Error(t, c.handle(h, []byte("{}")))
	assert.Equal(t, 2, h.calls)
}

func TestHandleRecoversPanics(t *testing.T) {
	c := newTestConsumer(t, 0)
	err := c.handle(panicHandler{}, nil)
	assert.ErrorContains(t, err, "panic in handler")
}

func TestBackoffWithJitterBounds(t *testing.T) {
	for attempt := 1; attempt < 10; attempt++ {
		d := backoffWithJitter(10*time.Millisecond, 80*time.Millisecond, attempt)
		assert.LessOrEqual(t, d, 80*time.Millisecond)
		assert.Greater(t, d, time.Duration(0))
	}
}

func TestNewConsumerRequiresBrokers(t *testing.T) {
	_, err := NewConsumer()
	assert.Error(t, err)
}
