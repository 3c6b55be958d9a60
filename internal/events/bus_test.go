package events

import (
	"encoding/json"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEvent(t *testing.T) {
	e := NewEvent(DeviceStateChanged, map[string]string{"address": "10.0.0.5"})

	assert.Equal(t, DeviceStateChanged, e.Type)
	assert.False(t, e.Timestamp.IsZero())

	var data map[string]string
	require.NoError(t, json.Unmarshal(e.Data, &data))
	assert.Equal(t, "10.0.0.5", data["address"])
}

func TestNewEvent_MarshalFailure(t *testing.T) {
	e := NewEvent(SceneCreated, make(chan int))
	assert.Equal(t, json.RawMessage("null"), e.Data)
}

func TestBusPublishSubscribe(t *testing.T) {
	bus := NewBus()
	var mu sync.Mutex
	var received []EventType

	unsub := bus.Subscribe(func(e Event) {
		mu.Lock()
		received = append(received, e.Type)
		mu.Unlock()
	})

	bus.Emit(DeviceAdded, nil)
	bus.Emit(SyncModeChanged, map[string]bool{"enabled": true})
	bus.Emit(DeviceRemoved, nil)

	unsub()
	bus.Emit(SceneDeleted, nil)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []EventType{DeviceAdded, SyncModeChanged, DeviceRemoved}, received)
}

func TestBusDoubleUnsubscribe(t *testing.T) {
	bus := NewBus()
	var count atomic.Int32
	unsub := bus.Subscribe(func(Event) { count.Add(1) })

	bus.Emit(FavoritesChanged, nil)
	unsub()
	unsub()
	bus.Emit(FavoritesChanged, nil)

	assert.Equal(t, int32(1), count.Load())
}

func TestNilBusIsNoop(t *testing.T) {
	var bus *Bus
	assert.NotPanics(t, func() {
		bus.Publish(NewEvent(DeviceAdded, nil))
		bus.Emit(DeviceAdded, nil)
	})
}

func TestBusConcurrentPublish(t *testing.T) {
	bus := NewBus()
	var received atomic.Int64

	const subscribers = 10
	for range subscribers {
		bus.Subscribe(func(Event) { received.Add(1) })
	}

	const publishers = 20
	const perPublisher = 50
	var wg sync.WaitGroup
	for range publishers {
		wg.Go(func() {
			for j := range perPublisher {
				bus.Emit(DeviceStateChanged, map[string]int{"n": j})
			}
		})
	}
	wg.Wait()

	assert.Equal(t, int64(subscribers*publishers*perPublisher), received.Load())
}

func TestBusConcurrentSubscribeUnsubscribe(t *testing.T) {
	bus := NewBus()
	var count atomic.Int64

	var wg sync.WaitGroup
	for range 50 {
		wg.Go(func() {
			unsub := bus.Subscribe(func(Event) { count.Add(1) })
			bus.Emit(RefreshCompleted, nil)
			unsub()
		})
	}
	wg.Wait()

	assert.GreaterOrEqual(t, count.Load(), int64(50))
}

func TestBusTypeFilterAndOrder(t *testing.T) {
	bus := NewBus()
	var got []string

	bus.Subscribe(func(e Event) { got = append(got, "all:"+string(e.Type)) })
	bus.Subscribe(func(e Event) { got = append(got, "scenes:"+string(e.Type)) }, SceneCreated, SceneApplied)

	bus.Emit(DeviceAdded, nil)
	bus.Emit(SceneApplied, nil)

	assert.Equal(t, []string{
		"all:device.added",
		"all:scene.applied",
		"scenes:scene.applied",
	}, got)
}
