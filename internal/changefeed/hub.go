// Package changefeed fans row-level change notifications out to subscribers.
package changefeed

import (
	"sync"
	"time"
)

type EventType string

const (
	EventInsert EventType = "INSERT"
	EventUpdate EventType = "UPDATE"
	EventDelete EventType = "DELETE"
)

const (
	TableArchives = "chat_archives"
	TableMessages = "message_archives"
)

// Event describes one change to one row.
type Event struct {
	Table    string    `json:"table"`
	Type     EventType `json:"type"`
	RecordID string    `json:"record_id"`
	At       time.Time `json:"at"`
	// Origin is the instance that produced the event; set by the relay.
	Origin string `json:"origin,omitempty"`
}

// Publisher is what the repositories depend on.
type Publisher interface {
	Publish(ev Event)
}

// Relay forwards locally produced events to other instances.
type Relay interface {
	Forward(ev Event) error
}

const subscriberBuffer = 16

// Subscription receives events for a single table until Close is called.
type Subscription struct {
	C     <-chan Event
	ch    chan Event
	table string
	hub   *Hub
	once  sync.Once
}

// Close deregisters the subscription. Safe to call more than once.
func (s *Subscription) Close() {
	s.once.Do(func() { s.hub.remove(s) })
}

type Hub struct {
	mu     sync.RWMutex
	tables map[string]map[*Subscription]struct{}
	relay  Relay
	logger Logger
}

type Logger interface {
	Warn(msg string, keysAndValues ...interface{})
}

func NewHub(logger Logger) *Hub {
	return &Hub{tables: make(map[string]map[*Subscription]struct{}), logger: logger}
}

// SetRelay attaches a cross-instance relay. Must be called before the hub is shared.
func (h *Hub) SetRelay(r Relay) {
	h.relay = r
}

// Subscribe registers interest in every event type on table.
func (h *Hub) Subscribe(table string) *Subscription {
	ch := make(chan Event, subscriberBuffer)
	sub := &Subscription{C: ch, ch: ch, table: table, hub: h}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.tables[table] == nil {
		h.tables[table] = make(map[*Subscription]struct{})
	}
	h.tables[table][sub] = struct{}{}
	return sub
}

func (h *Hub) remove(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if subs := h.tables[sub.table]; subs != nil {
		if _, ok := subs[sub]; ok {
			delete(subs, sub)
			close(sub.ch)
		}
		if len(subs) == 0 {
			delete(h.tables, sub.table)
		}
	}
}

// Publish delivers ev locally and hands it to the relay, if any.
func (h *Hub) Publish(ev Event) {
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}
	h.Deliver(ev)
	if h.relay != nil {
		if err := h.relay.Forward(ev); err != nil && h.logger != nil {
			h.logger.Warn("change feed relay failed", "table", ev.Table, "error", err)
		}
	}
}

// Deliver hands ev to local subscribers only. A subscriber whose buffer is full
// misses the event; the next one triggers the same refresh.
func (h *Hub) Deliver(ev Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for sub := range h.tables[ev.Table] {
		select {
		case sub.ch <- ev:
		default:
		}
	}
}

// SubscriberCount reports how many live subscriptions exist for table.
func (h *Hub) SubscriberCount(table string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.tables[table])
}
