package line

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/line/line-bot-sdk-go/v8/linebot/webhook"

	"github.com/omriShneor/alfred_line/internal/source"
)

// ErrInvalidSignature is returned when X-Line-Signature does not match the body.
var ErrInvalidSignature = errors.New("invalid webhook signature")

// ParseRequest verifies the signature of a webhook request and returns its
// text messages. Other event and message types are ignored.
func ParseRequest(channelSecret string, r *http.Request) ([]source.Message, error) {
	cb, err := webhook.ParseRequest(channelSecret, r)
	if err != nil {
		if errors.Is(err, webhook.ErrInvalidSignature) {
			return nil, ErrInvalidSignature
		}
		return nil, err
	}

	var messages []source.Message
	for _, event := range cb.Events {
		e, ok := event.(webhook.MessageEvent)
		if !ok {
			continue
		}
		text, ok := e.Message.(webhook.TextMessageContent)
		if !ok || strings.TrimSpace(text.Text) == "" {
			continue
		}

		msg, ok := fromSource(e.Source)
		if !ok {
			continue
		}
		msg.Text = text.Text
		msg.ReplyToken = e.ReplyToken
		msg.Timestamp = time.UnixMilli(e.Timestamp)
		messages = append(messages, msg)
	}
	return messages, nil
}

func fromSource(src webhook.SourceInterface) (source.Message, bool) {
	switch s := src.(type) {
	case webhook.UserSource:
		return source.Message{Kind: source.KindUser, ConversationID: s.UserId, SenderID: s.UserId}, true
	case webhook.GroupSource:
		return source.Message{Kind: source.KindGroup, ConversationID: s.GroupId, SenderID: s.UserId}, true
	case webhook.RoomSource:
		return source.Message{Kind: source.KindRoom, ConversationID: s.RoomId, SenderID: s.UserId}, true
	default:
		return source.Message{}, false
	}
}

// Sign computes the X-Line-Signature value LINE sends for body.
func Sign(channelSecret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(channelSecret))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}
