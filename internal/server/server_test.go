package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/omriShneor/alfred_line/internal/calstore"
	"github.com/omriShneor/alfred_line/internal/database"
	"github.com/omriShneor/alfred_line/internal/ics"
	"github.com/omriShneor/alfred_line/internal/line"
	"github.com/omriShneor/alfred_line/internal/metrics"
	"github.com/omriShneor/alfred_line/internal/mocks"
	"github.com/omriShneor/alfred_line/internal/source"
)

const testSecret = "test-channel-secret"

type testServer struct {
	srv       *Server
	db        *database.DB
	calendars *calstore.SQLStore
	msgChan   chan source.Message
}

// createTestServer creates a server backed by an in-memory database
func createTestServer(t *testing.T) *testServer {
	t.Helper()
	db := database.NewTestDB(t)
	calendars := calstore.NewSQLStore(db, time.Hour)
	msgChan := make(chan source.Message, 10)

	srv := New(ServerConfig{
		DB:            db,
		Calendars:     calendars,
		Metrics:       metrics.New(),
		MessageChan:   msgChan,
		ChannelSecret: testSecret,
		PublicBaseURL: "https://bot.example.com",
	})
	return &testServer{srv: srv, db: db, calendars: calendars, msgChan: msgChan}
}

func (ts *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	ts.srv.Handler().ServeHTTP(rec, req)
	return rec
}

const textEventBody = `{
  "destination": "Ubot",
  "events": [
    {
      "type": "message",
      "mode": "active",
      "timestamp": 1765846800000,
      "webhookEventId": "e1",
      "deliveryContext": {"isRedelivery": false},
      "replyToken": "reply-1",
      "source": {"type": "user", "userId": "U1"},
      "message": {"type": "text", "id": "m1", "quoteToken": "q1", "text": "こんにちは"}
    }
  ]
}`

func TestHealthCheck(t *testing.T) {
	ts := createTestServer(t)

	rec := ts.do(httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "healthy", body["status"])
}

func TestHealthCheck_DatabaseDown(t *testing.T) {
	ts := createTestServer(t)
	require.NoError(t, ts.db.Close())

	rec := ts.do(httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestCallback_QueuesMessages(t *testing.T) {
	ts := createTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/callback", bytes.NewBufferString(textEventBody))
	req.Header.Set("X-Line-Signature", line.Sign(testSecret, []byte(textEventBody)))

	rec := ts.do(req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, ts.msgChan, 1)
	msg := <-ts.msgChan
	assert.Equal(t, "U1", msg.ConversationID)
	assert.Equal(t, "こんにちは", msg.Text)
	assert.Equal(t, "reply-1", msg.ReplyToken)
}

func TestCallback_InvalidSignature(t *testing.T) {
	ts := createTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/callback", bytes.NewBufferString(textEventBody))
	req.Header.Set("X-Line-Signature", line.Sign("other-secret", []byte(textEventBody)))

	rec := ts.do(req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, ts.msgChan)
}

func TestCallback_WrongMethod(t *testing.T) {
	ts := createTestServer(t)

	rec := ts.do(httptest.NewRequest(http.MethodGet, "/callback", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestCalendarDownload(t *testing.T) {
	ts := createTestServer(t)
	payload := []byte("BEGIN:VCALENDAR\r\nEND:VCALENDAR\r\n")
	id, err := ts.calendars.Save(context.Background(), payload, 1)
	require.NoError(t, err)

	rec := ts.do(httptest.NewRequest(http.MethodGet, "/calendar/"+id, nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, ics.ContentType, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "schedule.ics")
	assert.Equal(t, payload, rec.Body.Bytes())
}

func TestCalendarDownload_NotFound(t *testing.T) {
	ts := createTestServer(t)

	for _, id := range []string{"not-a-uuid", "1b4e28ba-2fa1-11d2-883f-0016d3cca427"} {
		rec := ts.do(httptest.NewRequest(http.MethodGet, "/calendar/"+id, nil))
		assert.Equal(t, http.StatusNotFound, rec.Code, id)
	}
}

func TestCalendarDownload_StoreError(t *testing.T) {
	store := &mocks.MockCalendarStore{}
	store.On("Load", mock.Anything, "1b4e28ba-2fa1-11d2-883f-0016d3cca427").Return(nil, errors.New("connection refused"))
	srv := New(ServerConfig{Calendars: store})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/calendar/1b4e28ba-2fa1-11d2-883f-0016d3cca427", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestCalendarQR(t *testing.T) {
	ts := createTestServer(t)
	id, err := ts.calendars.Save(context.Background(), []byte("BEGIN:VCALENDAR\r\nEND:VCALENDAR\r\n"), 1)
	require.NoError(t, err)

	rec := ts.do(httptest.NewRequest(http.MethodGet, "/calendar/"+id+"/qr", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	img, err := png.Decode(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, qrSize, img.Bounds().Dx())
}

func TestCalendarQR_NotFound(t *testing.T) {
	ts := createTestServer(t)

	rec := ts.do(httptest.NewRequest(http.MethodGet, "/calendar/1b4e28ba-2fa1-11d2-883f-0016d3cca427/qr", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	ts := createTestServer(t)
	ts.srv.metrics.MessageRouted("chat")

	rec := ts.do(httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `alfred_messages_total{route="chat"} 1`))
}
