package progress

import (
	"testing"
	"time"

	"langpack-manager/pkg/models"

	"github.com/stretchr/testify/require"
)

func TestBus_PublishSubscribe(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	ch, unsubscribe := bus.Subscribe()
	defer unsubscribe()

	event := models.DownloadProgress{
		PackID:          "en-es",
		Status:          models.StatusDownloading,
		Progress:        0.5,
		DownloadedBytes: 500,
		TotalBytes:      1000,
	}
	bus.Publish(event)

	select {
	case got := <-ch:
		require.Equal(t, event, got)
	case <-time.After(time.Second):
		t.Fatal("event was not delivered")
	}
}

func TestBus_MultipleSubscribers(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	ch1, unsub1 := bus.Subscribe()
	ch2, unsub2 := bus.Subscribe()
	defer unsub1()
	defer unsub2()

	bus.Publish(models.DownloadProgress{PackID: "en-es", Status: models.StatusDownloading})

	for _, ch := range []<-chan models.DownloadProgress{ch1, ch2} {
		select {
		case got := <-ch:
			require.Equal(t, "en-es", got.PackID)
		case <-time.After(time.Second):
			t.Fatal("event was not delivered to all subscribers")
		}
	}
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	ch, unsubscribe := bus.Subscribe()
	unsubscribe()

	// Channel is closed after unsubscribe
	_, open := <-ch
	require.False(t, open)

	// Unsubscribing twice is safe
	unsubscribe()

	// Publishing after unsubscribe does not panic
	bus.Publish(models.DownloadProgress{PackID: "en-es"})
}

func TestBus_SlowSubscriberDrops(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	_, unsubscribe := bus.Subscribe()
	defer unsubscribe()

	// Overfill the subscriber buffer without draining it
	for i := 0; i < SubscriberBuffer+10; i++ {
		bus.Publish(models.DownloadProgress{PackID: "en-es"})
	}

	require.Equal(t, int64(10), bus.Dropped())
}

func TestBus_Close(t *testing.T) {
	bus := NewBus()

	ch, _ := bus.Subscribe()
	bus.Close()

	_, open := <-ch
	require.False(t, open)

	// Publish and double close after shutdown are no-ops
	bus.Publish(models.DownloadProgress{PackID: "en-es"})
	bus.Close()

	// Subscribing after close yields a closed channel
	ch2, unsub := bus.Subscribe()
	_, open = <-ch2
	require.False(t, open)
	unsub()
}
