// Package line adapts the LINE Messaging API to the bot's inbound message
// type and outbound reply/push primitives.
package line

import (
	"context"
	"fmt"

	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
)

// Client sends text messages through the Messaging API.
type Client struct {
	api *messaging_api.MessagingApiAPI
}

// NewClient creates a client for channelToken. endpoint overrides the API
// base URL and is empty in production.
func NewClient(channelToken, endpoint string) (*Client, error) {
	var opts []messaging_api.MessagingApiAPIOption
	if endpoint != "" {
		opts = append(opts, messaging_api.WithEndpoint(endpoint))
	}
	api, err := messaging_api.NewMessagingApiAPI(channelToken, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create messaging api client: %w", err)
	}
	return &Client{api: api}, nil
}

// Reply answers the event that produced replyToken.
func (c *Client) Reply(ctx context.Context, replyToken, text string) error {
	_, err := c.api.WithContext(ctx).ReplyMessage(&messaging_api.ReplyMessageRequest{
		ReplyToken: replyToken,
		Messages:   textMessages(text),
	})
	if err != nil {
		return fmt.Errorf("line reply: %w", err)
	}
	return nil
}

// Push sends text to a user, group or room id.
func (c *Client) Push(ctx context.Context, to, text string) error {
	_, err := c.api.WithContext(ctx).PushMessage(&messaging_api.PushMessageRequest{
		To:       to,
		Messages: textMessages(text),
	}, "")
	if err != nil {
		return fmt.Errorf("line push to %s: %w", to, err)
	}
	return nil
}

func textMessages(text string) []messaging_api.MessageInterface {
	return []messaging_api.MessageInterface{
		messaging_api.TextMessage{Text: text},
	}
}
