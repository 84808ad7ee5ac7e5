package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"kokoshiba-backend/internal/notification/domain"
	"kokoshiba-backend/internal/notification/repository"
	"kokoshiba-backend/pkg/fcm"
)

// notifier implements NotificationUsecase
type notifier struct {
	users         repository.UserTokenRepository
	notifications repository.NotificationRepository
	dispatcher    *Dispatcher
	sender        PushSender
	log           zerolog.Logger
}

// NewNotifier creates a new instance of notifier
func NewNotifier(
	users repository.UserTokenRepository,
	notifications repository.NotificationRepository,
	dispatcher *Dispatcher,
	sender PushSender,
	log zerolog.Logger,
) NotificationUsecase {
	return &notifier{
		users:         users,
		notifications: notifications,
		dispatcher:    dispatcher,
		sender:        sender,
		log:           log,
	}
}

func (n *notifier) HandleAnnouncement(ctx context.Context, notificationID string, data map[string]any) {
	payload, ok := domain.PayloadFromDocument(data)
	if !ok {
		n.log.Info().Str("notificationId", notificationID).Msg("announcement body is empty, skip push")
		return
	}

	set, err := n.users.CollectAll(ctx)
	if err != nil {
		n.log.Error().Err(err).Str("notificationId", notificationID).Msg("failed to collect user tokens")
		return
	}
	if set.Empty() {
		n.log.Info().Str("notificationId", notificationID).Msg("no registered FCM tokens found for announcement")
		return
	}

	n.dispatcher.Dispatch(ctx, set, payload, notificationID)
}

func (n *notifier) HandlePersonalNotification(ctx context.Context, userID, notificationID string, data map[string]any) {
	payload, ok := domain.PayloadFromDocument(data)
	if !ok {
		return
	}

	tokens, err := n.users.TokensFor(ctx, userID)
	if err != nil {
		n.log.Error().Err(err).
			Str("uid", userID).
			Str("notificationId", notificationID).
			Msg("failed to read user tokens")
		return
	}
	if len(tokens) == 0 {
		return
	}

	// Single multicast, no batching and no pruning: dead tokens on this path
	// self-heal through the broadcast path.
	_, err = n.sender.SendMulticast(ctx, fcm.Message{
		Tokens:   tokens,
		Title:    payload.Title,
		Body:     payload.Body,
		ImageURL: payload.ImageURL,
		Data:     payload.DataFields(notificationID),
	})
	if err != nil {
		n.log.Error().Err(err).
			Str("uid", userID).
			Str("notificationId", notificationID).
			Msg("failed to send personal notification")
	}
}

func (n *notifier) HandleOwnerNotification(ctx context.Context, notificationID string, data map[string]any) {
	payload, ok := domain.PayloadFromDocument(data)
	if !ok {
		return
	}

	set, err := n.users.CollectOwners(ctx)
	if err != nil {
		n.log.Error().Err(err).Str("notificationId", notificationID).Msg("failed to collect owner tokens")
		return
	}
	if set.Empty() {
		return
	}

	n.dispatcher.Dispatch(ctx, set, payload, notificationID)
}

func (n *notifier) HandleFeedback(ctx context.Context, feedbackID string, data map[string]any) {
	fb := domain.FeedbackFromDocument(data)

	var body strings.Builder
	if fb.Category != "" {
		fmt.Fprintf(&body, "[%s] ", fb.Category)
	}
	body.WriteString(fb.Title)
	if fb.Detail != "" {
		body.WriteString("\n")
		body.WriteString(fb.Detail)
	}
	if fb.UserName != "" {
		fmt.Fprintf(&body, "\n送信者: %s", fb.UserName)
	}
	if fb.ContactEmail != "" {
		fmt.Fprintf(&body, "\n連絡先: %s", fb.ContactEmail)
	}

	id, err := n.notifications.CreateOwnerNotification(ctx, domain.OwnerNotification{
		Title:    "新しいフィードバックが届きました",
		Body:     body.String(),
		Category: "feedback",
	})
	if err != nil {
		n.log.Error().Err(err).Str("feedbackId", feedbackID).Msg("failed to create owner notification for feedback")
		return
	}
	n.log.Info().Str("feedbackId", feedbackID).Str("notificationId", id).Msg("owner notification created for feedback")
}

func (n *notifier) HandleReservation(ctx context.Context, contentID, reservationID string, data map[string]any) {
	r := domain.ReservationFromDocument(data)

	body := fmt.Sprintf("%s ×%d\n受け取り日: %s", r.ContentTitle, r.Quantity, domain.FormatPickupDate(r.PickupDate))
	if r.UserName != "" {
		body += fmt.Sprintf("\n予約者: %s", r.UserName)
	}

	id, err := n.notifications.CreateOwnerNotification(ctx, domain.OwnerNotification{
		Title:    "新しい予約が入りました",
		Body:     body,
		Category: "reservation",
	})
	if err != nil {
		n.log.Error().Err(err).
			Str("contentId", contentID).
			Str("reservationId", reservationID).
			Msg("failed to create owner notification for reservation")
		return
	}
	n.log.Info().
		Str("contentId", contentID).
		Str("reservationId", reservationID).
		Str("notificationId", id).
		Msg("owner notification created for reservation")
}

func (n *notifier) RegisterToken(ctx context.Context, userID, token string) error {
	return n.users.AddToken(ctx, userID, token)
}

func (n *notifier) UnregisterToken(ctx context.Context, userID, token string) error {
	return n.users.RemoveToken(ctx, userID, token)
}
