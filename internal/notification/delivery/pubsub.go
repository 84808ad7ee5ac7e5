package delivery

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cloud.google.com/go/pubsub"
	"github.com/rs/zerolog"
	"google.golang.org/api/option"

	"kokoshiba-backend/internal/notification/usecase"
)

// DocumentEvent is the message published when a document is created in the
// record store: the document path plus its fields.
type DocumentEvent struct {
	Path string         `json:"path"`
	Data map[string]any `json:"data"`
}

// Consumer receives document-created events from Pub/Sub and routes them to
// the notification usecase. Delivery is at-most-once per event: messages are
// acked regardless of handler outcome.
type Consumer struct {
	pubsubClient *pubsub.Client
	notifier     usecase.NotificationUsecase
	topicName    string
	subName      string
	log          zerolog.Logger
}

// NewConsumer creates a Consumer bound to the given project and topic.
func NewConsumer(ctx context.Context, projectID, topicName string, notifier usecase.NotificationUsecase, credentialsFile string, log zerolog.Logger) (*Consumer, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	client, err := pubsub.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create pubsub client: %w", err)
	}

	return &Consumer{
		pubsubClient: client,
		notifier:     notifier,
		topicName:    topicName,
		subName:      topicName + "-sub", // Convention: topic-sub
		log:          log,
	}, nil
}

// Start ensures the subscription exists and blocks receiving messages until
// ctx is cancelled.
func (c *Consumer) Start(ctx context.Context) {
	c.log.Info().Str("topic", c.topicName).Str("subscription", c.subName).Msg("starting store-event consumer")

	sub := c.pubsubClient.Subscription(c.subName)
	exists, err := sub.Exists(ctx)
	if err != nil {
		c.log.Error().Err(err).Msg("failed to check subscription existence")
		return
	}

	if !exists {
		topic := c.pubsubClient.Topic(c.topicName)
		topicExists, err := topic.Exists(ctx)
		if err != nil {
			c.log.Error().Err(err).Msg("failed to check topic existence")
			return
		}
		if !topicExists {
			c.log.Error().Str("topic", c.topicName).Msg("topic does not exist, cannot create subscription")
			return
		}

		sub, err = c.pubsubClient.CreateSubscription(ctx, c.subName, pubsub.SubscriptionConfig{
			Topic:       topic,
			AckDeadline: 10 * time.Second,
		})
		if err != nil {
			c.log.Error().Err(err).Msg("failed to create subscription")
			return
		}
		c.log.Info().Str("subscription", c.subName).Msg("created subscription")
	}

	err = sub.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		c.handleMessage(ctx, msg.Data)
		msg.Ack()
	})
	if err != nil {
		c.log.Error().Err(err).Msg("error receiving messages")
	}
}

func (c *Consumer) handleMessage(ctx context.Context, raw []byte) {
	var event DocumentEvent
	if err := json.Unmarshal(raw, &event); err != nil {
		c.log.Error().Err(err).Msg("failed to unmarshal document event")
		return
	}
	c.route(ctx, event)
}

// route dispatches one document-created event to its handler by path shape.
// Each event is handled independently; unmatched paths are ignored.
func (c *Consumer) route(ctx context.Context, event DocumentEvent) {
	if params, ok := matchPath("notifications/{notificationId}", event.Path); ok {
		c.notifier.HandleAnnouncement(ctx, params["notificationId"], event.Data)
		return
	}
	if params, ok := matchPath("users/{userId}/personalNotifications/{notificationId}", event.Path); ok {
		c.notifier.HandlePersonalNotification(ctx, params["userId"], params["notificationId"], event.Data)
		return
	}
	if params, ok := matchPath("owner_notifications/{notificationId}", event.Path); ok {
		c.notifier.HandleOwnerNotification(ctx, params["notificationId"], event.Data)
		return
	}
	if params, ok := matchPath("feedbacks/{feedbackId}", event.Path); ok {
		c.notifier.HandleFeedback(ctx, params["feedbackId"], event.Data)
		return
	}
	if params, ok := matchPath("home_pages/{contentId}/reservations/{reservationId}", event.Path); ok {
		c.notifier.HandleReservation(ctx, params["contentId"], params["reservationId"], event.Data)
		return
	}
	c.log.Debug().Str("path", event.Path).Msg("no handler for document path")
}
