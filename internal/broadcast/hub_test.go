package broadcast

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHubDeliversInPublishOrder(t *testing.T) {
	h := NewHub(16)
	defer h.Close()
	sub := h.Subscribe()
	require.NotNil(t, sub)

	h.Publish(ChannelMarket, "a")
	h.Publish(ChannelTrade, "b")
	h.Publish(ChannelPortfolio, "c")

	var got []Event
	for i := 0; i < 3; i++ {
		got = append(got, <-sub.Events)
	}
	assert.Equal(t, ChannelMarket, got[0].Channel)
	assert.Equal(t, ChannelTrade, got[1].Channel)
	assert.Equal(t, ChannelPortfolio, got[2].Channel)
	for i := 1; i < 3; i++ {
		assert.Greater(t, got[i].Seq, got[i-1].Seq)
	}
}

func TestHubSlowSubscriberDropsOldest(t *testing.T) {
	h := NewHub(4)
	defer h.Close()
	sub := h.Subscribe()
	require.NotNil(t, sub)

	for i := 0; i < 10; i++ {
		h.Publish(ChannelMarket, i)
	}

	// Nothing consumed while publishing: the buffer retains the newest 4.
	var payloads []int
	for i := 0; i < 4; i++ {
		evt := <-sub.Events
		payloads = append(payloads, evt.Payload.(int))
	}
	assert.Equal(t, []int{6, 7, 8, 9}, payloads)
	assert.Equal(t, uint64(6), h.Dropped())
}

func TestHubIsolatesSubscribers(t *testing.T) {
	h := NewHub(2)
	defer h.Close()
	slow := h.Subscribe()
	fast := h.Subscribe()
	require.NotNil(t, slow)
	require.NotNil(t, fast)

	done := make(chan []int)
	go func() {
		var seen []int
		for evt := range fast.Events {
			seen = append(seen, evt.Payload.(int))
			if len(seen) == 8 {
				break
			}
		}
		done <- seen
	}()

	for i := 0; i < 8; i++ {
		h.Publish(ChannelMarket, i)
		time.Sleep(time.Millisecond)
	}

	seen := <-done
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7}, seen, "a keeping-up subscriber sees every event despite a stalled peer")
}

func TestHubConcurrentPublishOrdering(t *testing.T) {
	h := NewHub(1024)
	defer h.Close()
	sub := h.Subscribe()
	require.NotNil(t, sub)

	const publishers = 8
	const perPublisher = 50
	var wg sync.WaitGroup
	for p := 0; p < publishers; p++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perPublisher; i++ {
				h.Publish(ChannelMarket, nil)
			}
		}()
	}
	wg.Wait()

	var last uint64
	for i := 0; i < publishers*perPublisher; i++ {
		evt := <-sub.Events
		assert.Greater(t, evt.Seq, last, "sequence must be strictly increasing for one subscriber")
		last = evt.Seq
	}
}

func TestHubUnsubscribeClosesChannel(t *testing.T) {
	h := NewHub(4)
	defer h.Close()
	sub := h.Subscribe()
	require.NotNil(t, sub)

	h.Unsubscribe(sub)
	_, open := <-sub.Events
	assert.False(t, open)

	// Idempotent, and publish after unsubscribe is harmless.
	h.Unsubscribe(sub)
	h.Publish(ChannelMarket, "x")
}

func TestHubClose(t *testing.T) {
	h := NewHub(4)
	sub := h.Subscribe()
	require.NotNil(t, sub)

	h.Close()
	_, open := <-sub.Events
	assert.False(t, open)

	assert.Nil(t, h.Subscribe(), "subscribe after close returns nil")
	h.Publish(ChannelMarket, "ignored")
	h.Close()
}
