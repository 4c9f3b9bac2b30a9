// Subscription registry tests in Eventide.

package live

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegistryBookkeeping(t *testing.T) {
	registry := NewRegistry()
	one, two, three := NewChannel("ev1"), NewChannel("ev1"), NewChannel("ev1")

	registry.Subscribe(one)
	registry.Subscribe(two)
	registry.Subscribe(three)
	assert.Equal(t, 3, registry.Len("ev1"))
	assert.Equal(t, 1, registry.Events())

	registry.Unsubscribe(two)
	assert.Equal(t, 2, registry.Len("ev1"))

	// Unsubscribing an already-absent channel is a no-op
	registry.Unsubscribe(two)
	assert.Equal(t, 2, registry.Len("ev1"))

	// So is unsubscribing a channel of an event nobody ever watched
	registry.Unsubscribe(NewChannel("ev404"))
	assert.Equal(t, 2, registry.Len("ev1"))

	channels := registry.ChannelsFor("ev1")
	assert.Len(t, channels, 2)
	assert.Contains(t, channels, one)
	assert.Contains(t, channels, three)
}

func TestRegistryDropsEmptyEntries(t *testing.T) {
	registry := NewRegistry()
	ch := NewChannel("ev1")

	registry.Subscribe(ch)
	assert.Equal(t, 1, registry.Events())

	registry.Unsubscribe(ch)
	// No empty channel set may linger once the last viewer is gone
	assert.Equal(t, 0, registry.Events())
	assert.Empty(t, registry.ChannelsFor("ev1"))
}

func TestRegistryChannelsForUnknownEvent(t *testing.T) {
	registry := NewRegistry()
	assert.Empty(t, registry.ChannelsFor("nobody-watching"))
}

func TestRegistryConcurrentSubscribeUnsubscribe(t *testing.T) {
	registry := NewRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ch := NewChannel("ev1")
			registry.Subscribe(ch)
			registry.Unsubscribe(ch)
		}()
	}
	wg.Wait()

	// Every goroutine removed what it added, nothing may be left behind
	assert.Equal(t, 0, registry.Events())
}
