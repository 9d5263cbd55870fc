package httpapi

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/tidwall/gjson"

	"paperdesk/internal/broadcast"
	"paperdesk/internal/logger"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin:     func(*http.Request) bool { return true },
}

const wsWriteTimeout = 5 * time.Second

// channelFilter narrows a stream to a fixed channel set. Nil set = no filter.
type channelFilter struct {
	mu     sync.RWMutex
	wanted map[broadcast.Channel]bool
}

func (f *channelFilter) set(wanted map[broadcast.Channel]bool) {
	f.mu.Lock()
	f.wanted = wanted
	f.mu.Unlock()
}

func (f *channelFilter) allows(ch broadcast.Channel) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.wanted == nil || f.wanted[ch]
}

// streamEvents upgrades the connection and forwards hub events. The client
// may send one frame like {"channels":["market","trade"]} to narrow the
// stream; without it every channel is delivered. The filter takes effect when
// the frame is processed.
func (r *Router) streamEvents(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Warnf("stream upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	sub := r.hub.Subscribe()
	if sub == nil {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "hub closed"),
			time.Now().Add(wsWriteTimeout))
		return
	}
	defer r.hub.Unsubscribe(sub)

	filter := &channelFilter{}

	// Reader: the first frame may carry the channel filter; afterwards it
	// only watches for disconnect.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		first := true
		for {
			_, raw, err := conn.ReadMessage()
			if err != nil {
				return
			}
			if first {
				first = false
				if wanted := parseChannelFilter(raw); wanted != nil {
					filter.set(wanted)
				}
			}
		}
	}()

	for {
		select {
		case evt, ok := <-sub.Events:
			if !ok {
				return
			}
			if !filter.allows(evt.Channel) {
				continue
			}
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteJSON(evt); err != nil {
				logger.Debugf("stream %s write failed: %v", sub.ID, err)
				return
			}
		case <-closed:
			return
		}
	}
}

func parseChannelFilter(raw []byte) map[broadcast.Channel]bool {
	channels := gjson.GetBytes(raw, "channels")
	if !channels.IsArray() {
		return nil
	}
	wanted := make(map[broadcast.Channel]bool)
	for _, name := range channels.Array() {
		switch ch := broadcast.Channel(name.String()); ch {
		case broadcast.ChannelMarket, broadcast.ChannelTrade, broadcast.ChannelPortfolio:
			wanted[ch] = true
		}
	}
	if len(wanted) == 0 {
		return nil
	}
	return wanted
}
