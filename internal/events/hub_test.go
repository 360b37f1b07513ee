package events_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/admin-console-api/internal/events"
)

func TestHub_PublishFansOut(t *testing.T) {
	hub := events.NewHub[string](4)

	a, cancelA := hub.Subscribe()
	b, cancelB := hub.Subscribe()
	defer cancelA()
	defer cancelB()

	assert.Equal(t, 2, hub.Subscribers())
	assert.Equal(t, 2, hub.Publish("users"))
	assert.Equal(t, "users", <-a)
	assert.Equal(t, "users", <-b)
}

func TestHub_CancelClosesChannel(t *testing.T) {
	hub := events.NewHub[int](1)
	ch, cancel := hub.Subscribe()

	cancel()
	cancel()

	_, ok := <-ch
	assert.False(t, ok)
	assert.Equal(t, 0, hub.Subscribers())
	assert.Equal(t, 0, hub.Publish(1))
}

func TestHub_FullSubscriberDrops(t *testing.T) {
	hub := events.NewHub[int](1)
	ch, cancel := hub.Subscribe()
	defer cancel()

	assert.Equal(t, 1, hub.Publish(1))
	assert.Equal(t, 0, hub.Publish(2))
	assert.Equal(t, 1, <-ch)
}

func TestHub_Close(t *testing.T) {
	hub := events.NewHub[int](0)
	ch, cancel := hub.Subscribe()

	hub.Close()
	_, ok := <-ch
	assert.False(t, ok)

	// Cancel after close must not panic
	require.NotPanics(t, cancel)

	late, _ := hub.Subscribe()
	_, ok = <-late
	assert.False(t, ok)
}
