package realtime

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestEmitReachesConnectedAccount(t *testing.T) {
	hub := NewHub(nil, zap.NewNop())
	stream, disconnect := hub.Connect("acc-1")
	defer disconnect()

	require.True(t, hub.Online("acc-1"))
	require.NoError(t, hub.Emit(context.Background(), "acc-1", map[string]string{"message": "hello"}))

	select {
	case raw := <-stream:
		var payload map[string]string
		require.NoError(t, json.Unmarshal(raw, &payload))
		assert.Equal(t, "hello", payload["message"])
	default:
		t.Fatal("expected a buffered payload")
	}
}

func TestEmitToOfflineAccountIsNoOp(t *testing.T) {
	hub := NewHub(nil, zap.NewNop())
	require.NoError(t, hub.Emit(context.Background(), "nobody", "ping"))
	assert.False(t, hub.Online("nobody"))
}

func TestDisconnectRemovesRegistration(t *testing.T) {
	hub := NewHub(nil, zap.NewNop())
	_, disconnect := hub.Connect("acc-1")
	disconnect()
	assert.False(t, hub.Online("acc-1"))

	// double disconnect must not panic
	disconnect()
}

func TestReconnectReplacesStream(t *testing.T) {
	hub := NewHub(nil, zap.NewNop())
	first, _ := hub.Connect("acc-1")
	second, disconnect := hub.Connect("acc-1")
	defer disconnect()

	_, stillOpen := <-first
	assert.False(t, stillOpen, "first stream should be closed on reconnect")

	require.NoError(t, hub.Emit(context.Background(), "acc-1", "ping"))
	select {
	case <-second:
	default:
		t.Fatal("expected payload on the replacement stream")
	}
}

func TestEmitSurvivesConcurrentDisconnect(t *testing.T) {
	hub := NewHub(nil, zap.NewNop())

	var wg sync.WaitGroup
	for i := 0; i < 5000; i++ {
		_, disconnect := hub.Connect("acc-1")
		wg.Add(2)
		go func() {
			defer wg.Done()
			assert.NoError(t, hub.Emit(context.Background(), "acc-1", "ping"))
		}()
		go func(d func()) {
			defer wg.Done()
			d()
		}(disconnect)
		wg.Wait()
	}
}

func TestEmitSurvivesConcurrentReconnect(t *testing.T) {
	hub := NewHub(nil, zap.NewNop())

	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-done:
				return
			default:
				// each reconnect closes the previous stream
				hub.Connect("acc-1")
			}
		}
	}()

	for i := 0; i < 5000; i++ {
		require.NoError(t, hub.Emit(context.Background(), "acc-1", i))
	}
	close(done)
	wg.Wait()
}

func TestSlowConsumerDoesNotBlock(t *testing.T) {
	hub := NewHub(nil, zap.NewNop())
	_, disconnect := hub.Connect("acc-1")
	defer disconnect()

	// fill the buffer past capacity; Emit must keep returning
	for i := 0; i < 40; i++ {
		require.NoError(t, hub.Emit(context.Background(), "acc-1", i))
	}
}
