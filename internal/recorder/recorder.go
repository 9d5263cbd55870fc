// Package recorder persists executed trades for later analysis. It is an
// observability sink: the journal consumes the broadcast stream like any
// other subscriber and never sits on the tick path. The authoritative ledger
// stays in memory.
package recorder

import (
	"encoding/json"

	"paperdesk/internal/broadcast"
	"paperdesk/internal/logger"
	"paperdesk/internal/portfolio"
)

// Recorder persists trade events.
type Recorder interface {
	RecordTrade(seq uint64, trade portfolio.Trade, raw json.RawMessage) error
	Close() error
}

// NoopRecorder is used when the journal is disabled.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordTrade(uint64, portfolio.Trade, json.RawMessage) error { return nil }
func (n *NoopRecorder) Close() error                                               { return nil }

// Journal pumps trade events from a hub subscription into a Recorder.
type Journal struct {
	rec  Recorder
	hub  *broadcast.Hub
	sub  *broadcast.Subscription
	done chan struct{}
}

func NewJournal(hub *broadcast.Hub, rec Recorder) *Journal {
	return &Journal{rec: rec, hub: hub, done: make(chan struct{})}
}

// Start subscribes to the hub and consumes until the subscription closes.
func (j *Journal) Start() {
	j.sub = j.hub.Subscribe()
	if j.sub == nil {
		close(j.done)
		return
	}
	go j.consume()
}

func (j *Journal) consume() {
	defer close(j.done)
	for evt := range j.sub.Events {
		if evt.Channel != broadcast.ChannelTrade {
			continue
		}
		trade, ok := evt.Payload.(portfolio.Trade)
		if !ok {
			continue
		}
		raw, err := json.Marshal(evt)
		if err != nil {
			logger.Warnf("journal: marshal event %d failed: %v", evt.Seq, err)
			continue
		}
		if err := j.rec.RecordTrade(evt.Seq, trade, raw); err != nil {
			logger.Warnf("journal: record trade %s failed: %v", trade.ID, err)
		}
	}
}

// Stop unsubscribes, waits for the pump to drain and closes the recorder.
func (j *Journal) Stop() {
	if j.sub != nil {
		j.hub.Unsubscribe(j.sub)
	}
	<-j.done
	if err := j.rec.Close(); err != nil {
		logger.Warnf("journal: close failed: %v", err)
	}
}
