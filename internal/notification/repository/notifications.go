package repository

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"

	"kokoshiba-backend/internal/notification/domain"
)

const ownerNotificationsCollection = "owner_notifications"

// NotificationRepository writes the fan-in records synthesized from feedback
// and reservation events.
type NotificationRepository interface {
	// CreateOwnerNotification stores a new owner_notifications document and
	// returns its id. Its creation event triggers the owner fan-out.
	CreateOwnerNotification(ctx context.Context, n domain.OwnerNotification) (string, error)
}

// notificationRepository implements NotificationRepository on Firestore
type notificationRepository struct {
	client *firestore.Client
}

// NewNotificationRepository creates a new instance of notificationRepository
func NewNotificationRepository(client *firestore.Client) NotificationRepository {
	return &notificationRepository{client: client}
}

func (r *notificationRepository) CreateOwnerNotification(ctx context.Context, n domain.OwnerNotification) (string, error) {
	id := uuid.New().String()
	_, err := r.client.Collection(ownerNotificationsCollection).Doc(id).Set(ctx, map[string]any{
		"title":     n.Title,
		"body":      n.Body,
		"category":  n.Category,
		"createdAt": firestore.ServerTimestamp,
	})
	if err != nil {
		return "", fmt.Errorf("failed to create owner notification: %w", err)
	}
	return id, nil
}
