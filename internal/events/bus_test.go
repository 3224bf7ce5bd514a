package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubscribeFiltersByType(t *testing.T) {
	bus := NewBus(nil)

	var clips, all []Event
	bus.Subscribe([]EventType{EventClipAdded, EventClipDeleted}, func(e Event) {
		clips = append(clips, e)
	})
	bus.SubscribeAll(func(e Event) {
		all = append(all, e)
	})

	bus.Publish(NewEvent(EventClipAdded, nil))
	bus.Publish(NewEvent(EventPlayheadUpdated, nil))
	bus.Publish(NewEvent(EventClipDeleted, nil))

	require.Len(t, clips, 2)
	assert.Equal(t, EventClipAdded, clips[0].Type)
	assert.Equal(t, EventClipDeleted, clips[1].Type)
	assert.Len(t, all, 3)
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	bus := NewBus(nil)

	count := 0
	id := bus.SubscribeAll(func(Event) { count++ })

	bus.Publish(NewEvent(EventInfo, nil))
	bus.Unsubscribe(id)
	bus.Publish(NewEvent(EventInfo, nil))

	assert.Equal(t, 1, count)
}

func TestNewEventPopulatesIdentity(t *testing.T) {
	e := NewEvent(EventExportProgress, map[string]interface{}{"percent": 50.0})
	assert.NotEmpty(t, e.ID)
	assert.False(t, e.Timestamp.IsZero())
	assert.Equal(t, 50.0, e.Data["percent"])

	other := NewEvent(EventExportProgress, nil)
	assert.NotEqual(t, e.ID, other.ID)
}

func TestNewSystemEvent(t *testing.T) {
	e := NewSystemEvent(EventSystemStarted, "Started", "backend is up")
	assert.Equal(t, "Started", e.Title)
	assert.Equal(t, "backend is up", e.Message)
}
