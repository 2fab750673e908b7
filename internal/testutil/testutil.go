package testutil

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/omriShneor/alfred_line/internal/auth"
	"github.com/omriShneor/alfred_line/internal/calstore"
	"github.com/omriShneor/alfred_line/internal/database"
	"github.com/omriShneor/alfred_line/internal/dispatch"
	"github.com/omriShneor/alfred_line/internal/history"
	"github.com/omriShneor/alfred_line/internal/line"
	"github.com/omriShneor/alfred_line/internal/metrics"
	"github.com/omriShneor/alfred_line/internal/mocks"
	"github.com/omriShneor/alfred_line/internal/processor"
	"github.com/omriShneor/alfred_line/internal/server"
	"github.com/omriShneor/alfred_line/internal/source"
)

// ChannelSecret is the webhook secret every TestServer verifies against
const ChannelSecret = "e2e-channel-secret"

// TestServer wraps the full bot for E2E testing: webhook server, processor
// workers and a fake LINE API, with a scripted LLM.
type TestServer struct {
	Server     *server.Server
	Processor  *processor.Processor
	DB         *database.DB
	Calendars  *calstore.SQLStore
	History    *history.Store
	HTTPServer *httptest.Server
	LLM        *mocks.MockCompleter
	LineAPI    *FakeLineAPI
	t          *testing.T

	allowedIDs []string
	maxChars   int
}

// TestServerOption configures a test server
type TestServerOption func(*TestServer)

// WithAllowList restricts who the bot answers
func WithAllowList(ids ...string) TestServerOption {
	return func(ts *TestServer) {
		ts.allowedIDs = ids
	}
}

// WithMaxMessageChars lowers the chunk size so tests can exercise push delivery
func WithMaxMessageChars(n int) TestServerOption {
	return func(ts *TestServer) {
		ts.maxChars = n
	}
}

// NewTestServer creates a fully configured test server for E2E testing
func NewTestServer(t *testing.T, opts ...TestServerOption) *TestServer {
	t.Helper()

	db, err := database.New(":memory:", nil)
	require.NoError(t, err, "failed to create test database")

	ts := &TestServer{
		DB:      db,
		LLM:     &mocks.MockCompleter{},
		LineAPI: NewFakeLineAPI(),
		t:       t,
	}
	for _, opt := range opts {
		opt(ts)
	}

	// The public URL is only known once the listener exists, so the handler
	// is bound after the server has started.
	var handler http.Handler
	ts.HTTPServer = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handler.ServeHTTP(w, r)
	}))

	lineClient, err := line.NewClient("e2e-token", ts.LineAPI.URL())
	require.NoError(t, err, "failed to create LINE client")

	m := metrics.New()
	msgChan := make(chan source.Message, 16)
	ts.Calendars = calstore.NewSQLStore(db, time.Hour)
	ts.History = history.NewStore(db, nil)

	ts.Server = server.New(server.ServerConfig{
		DB:            db,
		Calendars:     ts.Calendars,
		Metrics:       m,
		MessageChan:   msgChan,
		ChannelSecret: ChannelSecret,
		PublicBaseURL: ts.HTTPServer.URL,
	})
	handler = ts.Server.Handler()

	ts.Processor = processor.New(processor.Deps{
		Completer:  ts.LLM,
		History:    ts.History,
		Calendars:  ts.Calendars,
		Dispatcher: dispatch.NewDispatcher(lineClient, ts.maxChars, nil),
		AllowList:  auth.NewAllowList(ts.allowedIDs),
		Metrics:    m,
	}, msgChan, processor.Config{PublicBaseURL: ts.HTTPServer.URL, WorkerCount: 1})
	require.NoError(t, ts.Processor.Start())

	t.Cleanup(func() {
		ts.Processor.Stop()
		ts.HTTPServer.Close()
		ts.LineAPI.Close()
		db.Close()
	})

	return ts
}

// BaseURL returns the base URL for the test server
func (ts *TestServer) BaseURL() string {
	return ts.HTTPServer.URL
}

// Client returns an HTTP client for the test server
func (ts *TestServer) Client() *http.Client {
	return ts.HTTPServer.Client()
}

// PostWebhook delivers body to /callback with a valid signature
func (ts *TestServer) PostWebhook(body []byte) *http.Response {
	ts.t.Helper()
	return ts.postWebhook(body, line.Sign(ChannelSecret, body))
}

// PostWebhookWithSignature delivers body with an arbitrary signature header
func (ts *TestServer) PostWebhookWithSignature(body []byte, signature string) *http.Response {
	ts.t.Helper()
	return ts.postWebhook(body, signature)
}

// WaitForSent blocks until the fake LINE API has received n messages
func (ts *TestServer) WaitForSent(n int) []SentMessage {
	ts.t.Helper()
	require.Eventually(ts.t, func() bool {
		return ts.LineAPI.Count() >= n
	}, 3*time.Second, 10*time.Millisecond, "expected %d sent messages", n)
	return ts.LineAPI.Sent()
}

func (ts *TestServer) postWebhook(body []byte, signature string) *http.Response {
	req, err := http.NewRequest(http.MethodPost, ts.BaseURL()+"/callback", bytes.NewReader(body))
	require.NoError(ts.t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Line-Signature", signature)

	resp, err := ts.Client().Do(req)
	require.NoError(ts.t, err)
	ts.t.Cleanup(func() { resp.Body.Close() })
	return resp
}
