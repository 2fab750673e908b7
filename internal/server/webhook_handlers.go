package server

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/omriShneor/alfred_line/internal/line"
)

// handleCallback accepts LINE webhook deliveries. Messages are queued for the
// processor and the request is acknowledged right away; replies are sent
// asynchronously.
func (s *Server) handleCallback(w http.ResponseWriter, r *http.Request) {
	messages, err := line.ParseRequest(s.channelSecret, r)
	if err != nil {
		if errors.Is(err, line.ErrInvalidSignature) {
			s.logger.Warn("rejected webhook with invalid signature", zap.String("remote_addr", r.RemoteAddr))
			respondError(w, http.StatusBadRequest, "invalid signature")
			return
		}
		s.logger.Warn("failed to parse webhook", zap.Error(err))
		respondError(w, http.StatusBadRequest, "invalid request")
		return
	}

	for _, msg := range messages {
		select {
		case s.msgChan <- msg:
		case <-r.Context().Done():
			s.logger.Warn("webhook request ended before message was queued",
				zap.String("conversation_id", msg.ConversationID),
			)
			return
		}
	}

	respondJSON(w, http.StatusOK, map[string]int{"queued": len(messages)})
}
