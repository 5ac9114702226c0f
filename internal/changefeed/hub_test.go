package changefeed

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingRelay struct{ forwarded []Event }

func (r *recordingRelay) Forward(ev Event) error {
	r.forwarded = append(r.forwarded, ev)
	return nil
}

type silentLogger struct{}

func (silentLogger) Info(string, ...interface{}) {}
func (silentLogger) Warn(string, ...interface{}) {}

func receive(t *testing.T, sub *Subscription) Event {
	t.Helper()
	select {
	case ev := <-sub.C:
		return ev
	case <-time.After(time.Second):
		t.Fatal("no event received")
		return Event{}
	}
}

func TestHubDeliversToTableSubscribers(t *testing.T) {
	hub := NewHub(silentLogger{})
	archives := hub.Subscribe(TableArchives)
	defer archives.Close()
	messages := hub.Subscribe(TableMessages)
	defer messages.Close()

	hub.Publish(Event{Table: TableArchives, Type: EventInsert, RecordID: "a1"})

	ev := receive(t, archives)
	assert.Equal(t, EventInsert, ev.Type)
	assert.Equal(t, "a1", ev.RecordID)
	assert.False(t, ev.At.IsZero())

	select {
	case ev := <-messages.C:
		t.Fatalf("unexpected event on other table: %+v", ev)
	default:
	}
}

func TestSubscriptionCloseReleasesAndClosesChannel(t *testing.T) {
	hub := NewHub(silentLogger{})
	sub := hub.Subscribe(TableArchives)
	require.Equal(t, 1, hub.SubscriberCount(TableArchives))

	sub.Close()
	sub.Close()

	assert.Equal(t, 0, hub.SubscriberCount(TableArchives))
	_, open := <-sub.C
	assert.False(t, open)

	hub.Publish(Event{Table: TableArchives, Type: EventDelete, RecordID: "a1"})
}

func TestSlowSubscriberDoesNotBlockPublisher(t *testing.T) {
	hub := NewHub(silentLogger{})
	sub := hub.Subscribe(TableArchives)
	defer sub.Close()

	done := make(chan struct{})
	go func() {
		for i := 0; i < subscriberBuffer*3; i++ {
			hub.Publish(Event{Table: TableArchives, Type: EventUpdate})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publisher blocked on a full subscriber")
	}
	assert.Len(t, sub.C, subscriberBuffer)
}

func TestPublishForwardsToRelay(t *testing.T) {
	hub := NewHub(silentLogger{})
	relay := &recordingRelay{}
	hub.SetRelay(relay)

	hub.Publish(Event{Table: TableArchives, Type: EventInsert, RecordID: "a1"})

	require.Len(t, relay.forwarded, 1)
	assert.Equal(t, "a1", relay.forwarded[0].RecordID)
}

func TestRedisRelayIgnoresOwnEvents(t *testing.T) {
	hub := NewHub(silentLogger{})
	relay := NewRedisRelay(nil, "archive-changes", hub, silentLogger{})
	sub := hub.Subscribe(TableArchives)
	defer sub.Close()

	own, _ := json.Marshal(Event{Table: TableArchives, Type: EventInsert, RecordID: "mine", Origin: relay.origin})
	foreign, _ := json.Marshal(Event{Table: TableArchives, Type: EventDelete, RecordID: "theirs", Origin: "other"})

	relay.handle(string(own))
	relay.handle("not json")
	relay.handle(string(foreign))

	ev := receive(t, sub)
	assert.Equal(t, "theirs", ev.RecordID)
	assert.Len(t, sub.C, 0)
}
