package gateway

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/mcdev12/codeduel/go/internal/match"
	"github.com/mcdev12/codeduel/go/internal/match/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingHandler struct {
	mu          sync.Mutex
	joins       []match.Participant
	progress    []match.ProgressUpdate
	disconnects []string
}

func (h *recordingHandler) Join(ctx context.Context, p match.Participant) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.joins = append(h.joins, p)
	return nil
}

func (h *recordingHandler) Progress(ctx context.Context, update match.ProgressUpdate) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.progress = append(h.progress, update)
}

func (h *recordingHandler) Disconnect(connectionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.disconnects = append(h.disconnects, connectionID)
}

func (h *recordingHandler) snapshot() ([]match.Participant, []match.ProgressUpdate, []string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]match.Participant(nil), h.joins...),
		append([]match.ProgressUpdate(nil), h.progress...),
		append([]string(nil), h.disconnects...)
}

func startGateway(t *testing.T) (*Service, *recordingHandler, string) {
	t.Helper()

	svc := NewService(DefaultConfig())
	handler := &recordingHandler{}
	svc.SetHandler(handler)

	ctx, cancel := context.WithCancel(context.Background())
	go svc.Start(ctx)

	router := mux.NewRouter()
	svc.RegisterRoutes(router)
	server := httptest.NewServer(router)

	t.Cleanup(func() {
		server.Close()
		cancel()
	})
	return svc, handler, server.URL
}

func dial(t *testing.T, baseURL string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(baseURL, "http") + "/ws/match"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readOutbound(t *testing.T, conn *websocket.Conn) OutboundMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg OutboundMessage
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestGateway_JoinAndNotify(t *testing.T) {
	svc, handler, url := startGateway(t)
	conn := dial(t, url)

	require.NoError(t, conn.WriteJSON(map[string]interface{}{
		"type":    "join_queue",
		"payload": map[string]string{"player_id": "p1", "player_name": "Ada"},
	}))

	var joined match.Participant
	require.Eventually(t, func() bool {
		joins, _, _ := handler.snapshot()
		if len(joins) != 1 {
			return false
		}
		joined = joins[0]
		return true
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, "p1", joined.PlayerID)
	assert.Equal(t, "Ada", joined.DisplayName)
	require.NotEmpty(t, joined.ConnectionID)

	svc.Send(joined.ConnectionID, events.Notification{
		Type:    events.TypeQueued,
		Payload: events.QueuedPayload{PlayerID: "p1", Position: 1},
	})

	msg := readOutbound(t, conn)
	assert.Equal(t, events.TypeQueued, msg.Type)
	assert.NotEmpty(t, msg.ID)
	var payload events.QueuedPayload
	require.NoError(t, json.Unmarshal(msg.Data, &payload))
	assert.Equal(t, 1, payload.Position)
}

func TestGateway_SubmitResultForwarded(t *testing.T) {
	_, handler, url := startGateway(t)
	conn := dial(t, url)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(
		`{"type":"submit_result","payload":{"match_id":"m1","player_id":"p1","tests_passed":3,"total_tests":5}}`,
	)))

	require.Eventually(t, func() bool {
		_, progress, _ := handler.snapshot()
		return len(progress) == 1
	}, 2*time.Second, 10*time.Millisecond)

	_, progress, _ := handler.snapshot()
	assert.Equal(t, match.ProgressUpdate{SessionID: "m1", PlayerID: "p1", TestsPassed: 3}, progress[0])
}

func TestGateway_MalformedMessageGetsError(t *testing.T) {
	_, handler, url := startGateway(t)
	conn := dial(t, url)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"join_queue","payload":{}}`)))

	msg := readOutbound(t, conn)
	assert.Equal(t, events.TypeError, msg.Type)
	var payload events.ErrorPayload
	require.NoError(t, json.Unmarshal(msg.Data, &payload))
	assert.Contains(t, payload.Message, "player_id is required")

	joins, _, _ := handler.snapshot()
	assert.Empty(t, joins)
}

func TestGateway_CloseReportsDisconnect(t *testing.T) {
	svc, handler, url := startGateway(t)
	conn := dial(t, url)

	require.Eventually(t, func() bool {
		return svc.GetStats()["total_connections"] == 1
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye")))
	conn.Close()

	require.Eventually(t, func() bool {
		_, _, disconnects := handler.snapshot()
		return len(disconnects) == 1
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, 0, svc.GetStats()["total_connections"])
}

func TestParseInbound(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    interface{}
		wantErr string
	}{
		{
			name:  "join defaults name to id",
			input: `{"type":"join_queue","payload":{"player_id":"p1"}}`,
			want:  JoinQueuePayload{PlayerID: "p1", PlayerName: "p1"},
		},
		{name: "invalid json", input: `{`, wantErr: "invalid json"},
		{name: "missing type", input: `{"payload":{}}`, wantErr: "type is required"},
		{name: "unknown type", input: `{"type":"rematch","payload":{}}`, wantErr: "unknown type"},
		{name: "missing payload", input: `{"type":"join_queue"}`, wantErr: "payload is required"},
		{
			name:    "submit without match",
			input:   `{"type":"submit_result","payload":{"player_id":"p1","tests_passed":1}}`,
			wantErr: "match_id is required",
		},
		{
			name:    "submit without tests",
			input:   `{"type":"submit_result","payload":{"match_id":"m","player_id":"p1"}}`,
			wantErr: "tests_passed is required",
		},
		{
			name:    "negative tests",
			input:   `{"type":"submit_result","payload":{"match_id":"m","player_id":"p1","tests_passed":-1}}`,
			wantErr: "must not be negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseInbound([]byte(tt.input))
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrMalformedMessage)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
