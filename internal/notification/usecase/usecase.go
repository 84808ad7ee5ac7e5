package usecase

import "context"

// NotificationUsecase reacts to document-created events and owns the device
// token registration surface. Event handlers have no synchronous caller, so
// they absorb failures instead of returning them.
type NotificationUsecase interface {
	// HandleAnnouncement broadcasts a notifications/{id} document to all users.
	HandleAnnouncement(ctx context.Context, notificationID string, data map[string]any)
	// HandlePersonalNotification delivers to a single user's devices.
	HandlePersonalNotification(ctx context.Context, userID, notificationID string, data map[string]any)
	// HandleOwnerNotification delivers to owner and sub-owner devices.
	HandleOwnerNotification(ctx context.Context, notificationID string, data map[string]any)
	// HandleFeedback converts a feedbacks document into an owner notification.
	HandleFeedback(ctx context.Context, feedbackID string, data map[string]any)
	// HandleReservation converts a reservations document into an owner
	// notification.
	HandleReservation(ctx context.Context, contentID, reservationID string, data map[string]any)

	// RegisterToken appends a device token to the user's record.
	RegisterToken(ctx context.Context, userID, token string) error
	// UnregisterToken removes a device token from the user's record.
	UnregisterToken(ctx context.Context, userID, token string) error
}
