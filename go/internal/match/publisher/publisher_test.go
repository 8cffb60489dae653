package publisher

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/mcdev12/codeduel/go/internal/match/events"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleEvent() events.DomainEvent {
	return events.DomainEvent{
		EventID:   "evt-1",
		EventType: events.EventMatchEnded,
		SessionID: "s-1",
		Timestamp: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Payload:   json.RawMessage(`{"session_id":"s-1","draw":true}`),
	}
}

func TestBuildMsg(t *testing.T) {
	msg, err := buildMsg("match.events", sampleEvent())
	require.NoError(t, err)

	assert.Equal(t, "match.events.MatchEnded", msg.Subject)
	assert.Equal(t, "evt-1", msg.Header.Get("Event-ID"))
	assert.Equal(t, "s-1", msg.Header.Get("Session-ID"))

	var decoded events.DomainEvent
	require.NoError(t, json.Unmarshal(msg.Data, &decoded))
	assert.Equal(t, "MatchEnded", decoded.EventType)
	assert.JSONEq(t, `{"session_id":"s-1","draw":true}`, string(decoded.Payload))
}

func TestStreamConfigCoversPrefix(t *testing.T) {
	p := &JetStreamPublisher{config: DefaultJetStreamConfig()}
	sc := p.streamConfig()

	assert.Equal(t, []string{"match.events.>"}, sc.Subjects)
	assert.True(t, isStreamConfigEqual(sc, p.streamConfig()))
	assert.Equal(t, "match.events.MatchStarted", p.Subject(events.EventMatchStarted))
}

func TestLogPublisher(t *testing.T) {
	var buf bytes.Buffer
	p := NewLogPublisher(zerolog.New(&buf))

	require.NoError(t, p.Publish(context.Background(), sampleEvent()))
	assert.Contains(t, buf.String(), `"event_type":"MatchEnded"`)
	assert.Contains(t, buf.String(), `"session_id":"s-1"`)
}
