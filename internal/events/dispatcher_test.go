package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishFillsIDAndTimestamp(t *testing.T) {
	d := NewInMemoryDispatcher(nil)

	out := d.Publish(context.Background(), Event{Type: EventDefectCreated, DefectID: "d-1"})
	assert.NotEmpty(t, out.ID)
	assert.False(t, out.Timestamp.IsZero())
}

func TestSubscribersRunInSubscriptionOrder(t *testing.T) {
	d := NewInMemoryDispatcher(nil)

	var order []string
	d.Subscribe(EventDefectCreated, func(context.Context, Event) error {
		order = append(order, "first")
		return nil
	})
	d.Subscribe(EventDefectCreated, func(context.Context, Event) error {
		order = append(order, "second")
		return nil
	})
	d.Subscribe(EventDefectCancelled, func(context.Context, Event) error {
		order = append(order, "unrelated")
		return nil
	})

	d.Publish(context.Background(), Event{Type: EventDefectCreated})
	assert.Equal(t, []string{"first", "second"}, order)
}

func TestFailingSubscriberDoesNotAbortFanOut(t *testing.T) {
	d := NewInMemoryDispatcher(nil)

	var reached bool
	d.Subscribe(EventDefectStatusChanged, func(context.Context, Event) error {
		return errors.New("boom")
	})
	d.Subscribe(EventDefectStatusChanged, func(context.Context, Event) error {
		reached = true
		return nil
	})

	d.Publish(context.Background(), Event{Type: EventDefectStatusChanged})
	assert.True(t, reached)
}

func TestPanickingSubscriberIsIsolated(t *testing.T) {
	d := NewInMemoryDispatcher(nil)

	var reached bool
	d.Subscribe(EventDefectCreated, func(context.Context, Event) error {
		panic("handler bug")
	})
	d.Subscribe(EventDefectCreated, func(context.Context, Event) error {
		reached = true
		return nil
	})

	assert.NotPanics(t, func() {
		d.Publish(context.Background(), Event{Type: EventDefectCreated})
	})
	assert.True(t, reached)
}

func TestQueueDrainAndClear(t *testing.T) {
	d := NewInMemoryDispatcher(nil)
	ctx := context.Background()

	d.Publish(ctx, Event{Type: EventDefectCreated, DefectID: "d-1"})
	d.Publish(ctx, Event{Type: EventDefectCancelled, DefectID: "d-2"})

	drained := d.Drain()
	require.Len(t, drained, 2)
	assert.Equal(t, "d-1", drained[0].DefectID)
	assert.Equal(t, "d-2", drained[1].DefectID)

	assert.Empty(t, d.Drain(), "drain removes events")

	d.Publish(ctx, Event{Type: EventDefectCreated, DefectID: "d-3"})
	d.ClearQueue()
	assert.Empty(t, d.Drain())
}

func TestEventQueuedEvenWithoutSubscribers(t *testing.T) {
	d := NewInMemoryDispatcher(nil)

	d.Publish(context.Background(), Event{Type: EventDefectStatusChanged, DefectID: "d-9"})
	drained := d.Drain()
	require.Len(t, drained, 1)
	assert.Equal(t, EventDefectStatusChanged, drained[0].Type)
}
