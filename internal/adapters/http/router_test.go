package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caresync/signaling/internal/adapters/signal"
	"github.com/caresync/signaling/internal/app"
	"github.com/caresync/signaling/internal/config"
	"github.com/caresync/signaling/internal/domain"
	"github.com/caresync/signaling/internal/storage"
)

func newTestRouter(t *testing.T) (*httptest.Server, storage.MessageStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		Mode:         "release",
		ReadLimit:    1 << 20,
		PingPeriod:   30 * time.Second,
		SendBuffer:   8,
		Secret:       "test-secret",
		HistoryLimit: 50,
	}

	presence := app.NewPresence()
	rooms := app.NewRooms()
	relay := app.NewRelay(presence, rooms, app.NewCallRateLimiter(0, 0))
	orch := app.NewOrchestrator(presence, rooms, relay, app.NewChatRelay(rooms))
	history := storage.NewMemoryHistory()
	ctrl := signal.NewController(cfg, orch, history)

	srv := httptest.NewServer(SetupRouter(context.Background(), cfg, ctrl))
	t.Cleanup(srv.Close)
	return srv, history
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestRouter(t)
	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestChatHistoryEndpoint(t *testing.T) {
	srv, history := newTestRouter(t)

	require.NoError(t, history.Append(context.Background(), domain.ChatMessage{
		ID:          "m1",
		DoctorID:    "doc1",
		PatientID:   "pat1",
		SenderID:    "pat1",
		SenderModel: domain.SenderPatient,
		Text:        "hello",
		Type:        domain.MessageTypeText,
		Timestamp:   time.Now().UTC(),
	}))

	resp, err := http.Get(srv.URL + "/api/chats/doc1/pat1/messages")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		ChatID   string               `json:"chatId"`
		Messages []domain.ChatMessage `json:"messages"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "doc1_pat1", body.ChatID)
	require.Len(t, body.Messages, 1)
	assert.Equal(t, "m1", body.Messages[0].ID)
}

func TestChatHistoryRejectsOversizedID(t *testing.T) {
	srv, _ := newTestRouter(t)

	tooLong := strings.Repeat("x", domain.MaxUserIDLen+1)
	resp, err := http.Get(srv.URL + "/api/chats/" + tooLong + "/pat1/messages")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestOnlineEndpointEmptyByDefault(t *testing.T) {
	srv, _ := newTestRouter(t)

	resp, err := http.Get(srv.URL + "/api/presence/online")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Online []domain.UserID `json:"online"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Empty(t, body.Online)
}
