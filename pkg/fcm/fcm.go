package fcm

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/errorutils"
	"firebase.google.com/go/v4/messaging"
)

// Error-code strings reported per token, mirroring the FCM error names so that
// logs stay greppable against provider documentation.
const (
	ErrCodeUnregistered = "registration-token-not-registered"
	ErrCodeInvalidToken = "invalid-registration-token"
	ErrCodeUnknown      = "unknown"
)

// Message is one multicast push: a visible notification plus a data mirror so
// client apps can handle it in foreground or background.
type Message struct {
	Tokens   []string
	Title    string
	Body     string
	ImageURL string
	Data     map[string]string
}

// SendResult is the per-token outcome of a multicast send, index-aligned with
// Message.Tokens.
type SendResult struct {
	Success   bool
	ErrorCode string
	Err       error
}

// Client wraps Firebase Cloud Messaging multicast delivery.
type Client struct {
	messagingClient *messaging.Client
}

// NewClient obtains the messaging client from an initialized Firebase app.
func NewClient(ctx context.Context, app *firebase.App) (*Client, error) {
	messagingClient, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get messaging client: %w", err)
	}
	return &Client{messagingClient: messagingClient}, nil
}

// SendMulticast delivers msg to every token in a single provider call and
// returns one outcome per token. The token count must not exceed the provider
// ceiling (500); callers chunk above that.
func (c *Client) SendMulticast(ctx context.Context, msg Message) ([]SendResult, error) {
	multicast := &messaging.MulticastMessage{
		Tokens: msg.Tokens,
		Notification: &messaging.Notification{
			Title:    msg.Title,
			Body:     msg.Body,
			ImageURL: msg.ImageURL,
		},
		Data: msg.Data,
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				Sound: "default",
			},
		},
		APNS: &messaging.APNSConfig{
			Headers: map[string]string{
				"apns-priority":  "10",
				"apns-push-type": "alert",
			},
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{
					Alert: &messaging.ApsAlert{
						Title: msg.Title,
						Body:  msg.Body,
					},
					Sound: "default",
				},
			},
		},
	}

	response, err := c.messagingClient.SendEachForMulticast(ctx, multicast)
	if err != nil {
		return nil, fmt.Errorf("failed to send FCM multicast message: %w", err)
	}

	results := make([]SendResult, len(response.Responses))
	for i, resp := range response.Responses {
		if resp.Success {
			results[i] = SendResult{Success: true}
			continue
		}
		results[i] = SendResult{
			ErrorCode: classify(resp.Error),
			Err:       resp.Error,
		}
	}
	return results, nil
}

// classify maps an SDK error to the provider error-code string. Unregistered
// and invalid-token responses are the two codes treated as permanent upstream.
func classify(err error) string {
	switch {
	case err == nil:
		return ErrCodeUnknown
	case messaging.IsUnregistered(err):
		return ErrCodeUnregistered
	case errorutils.IsInvalidArgument(err):
		return ErrCodeInvalidToken
	default:
		return ErrCodeUnknown
	}
}
