package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
)

// SentMessage is one text message received by the fake LINE API
type SentMessage struct {
	Method     string // "reply" or "push"
	ReplyToken string
	To         string
	Text       string
}

// FakeLineAPI simulates the Messaging API reply and push endpoints
type FakeLineAPI struct {
	mu       sync.Mutex
	sent     []SentMessage
	failPush bool
	server   *httptest.Server
}

// NewFakeLineAPI starts a fake Messaging API server
func NewFakeLineAPI() *FakeLineAPI {
	f := &FakeLineAPI{}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v2/bot/message/reply", f.handle("reply"))
	mux.HandleFunc("POST /v2/bot/message/push", f.handle("push"))
	f.server = httptest.NewServer(mux)
	return f
}

// URL is the endpoint to pass to line.NewClient
func (f *FakeLineAPI) URL() string {
	return f.server.URL
}

// Close shuts the fake server down
func (f *FakeLineAPI) Close() {
	f.server.Close()
}

// SetFailPush makes push requests fail with 429
func (f *FakeLineAPI) SetFailPush(fail bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failPush = fail
}

// Sent returns every message received so far
func (f *FakeLineAPI) Sent() []SentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]SentMessage{}, f.sent...)
}

// Count returns the number of messages received so far
func (f *FakeLineAPI) Count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

func (f *FakeLineAPI) handle(method string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			ReplyToken string `json:"replyToken"`
			To         string `json:"to"`
			Messages   []struct {
				Type string `json:"type"`
				Text string `json:"text"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, `{"message":"bad request"}`, http.StatusBadRequest)
			return
		}

		f.mu.Lock()
		if method == "push" && f.failPush {
			f.mu.Unlock()
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"message":"You have reached your monthly limit."}`))
			return
		}
		for _, m := range body.Messages {
			f.sent = append(f.sent, SentMessage{
				Method:     method,
				ReplyToken: body.ReplyToken,
				To:         body.To,
				Text:       m.Text,
			})
		}
		f.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"sentMessages":[{"id":"1","quoteToken":"q"}]}`))
	}
}
