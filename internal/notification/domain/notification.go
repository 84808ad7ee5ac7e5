package domain

import (
	"strings"
	"time"
)

// DefaultTitle is used when a created document carries no title.
const DefaultTitle = "ココシバからのお知らせ"

// DefaultCategory is used when a created document carries no category.
const DefaultCategory = "general"

// Payload is the content of one push notification. It is delivered twice per
// message: as the visible notification and mirrored into the data fields.
type Payload struct {
	Title    string
	Body     string
	ImageURL string
	Category string
}

// PayloadFromDocument extracts a Payload from a created document's fields.
// The title falls back to DefaultTitle; a missing or empty body returns
// ok=false, which callers treat as a silent skip.
func PayloadFromDocument(data map[string]any) (Payload, bool) {
	body := strings.TrimSpace(StringField(data, "body"))
	if body == "" {
		return Payload{}, false
	}

	title := strings.TrimSpace(StringField(data, "title"))
	if title == "" {
		title = DefaultTitle
	}

	category := StringField(data, "category")
	if category == "" {
		category = DefaultCategory
	}

	return Payload{
		Title:    title,
		Body:     body,
		ImageURL: StringField(data, "imageUrl"),
		Category: category,
	}, true
}

// DataFields builds the data mirror sent alongside the visible notification so
// client apps can process the push in the background.
func (p Payload) DataFields(notificationID string) map[string]string {
	fields := map[string]string{
		"notificationId": notificationID,
		"category":       p.Category,
		"title":          p.Title,
		"body":           p.Body,
	}
	if p.ImageURL != "" {
		fields["imageUrl"] = p.ImageURL
	}
	return fields
}

// OwnerNotification is a fan-in record written to owner_notifications; its
// creation event then fans out to owner and sub-owner devices.
type OwnerNotification struct {
	Title    string
	Body     string
	Category string
}

// Feedback is the payload of a created feedbacks document.
type Feedback struct {
	Category          string
	Title             string
	Detail            string
	ContactEmail      string
	IncludeDeviceInfo bool
	UserID            string
	UserName          string
	UserEmail         string
}

// FeedbackFromDocument extracts a Feedback from a created document's fields.
func FeedbackFromDocument(data map[string]any) Feedback {
	return Feedback{
		Category:          StringField(data, "category"),
		Title:             StringField(data, "title"),
		Detail:            StringField(data, "detail"),
		ContactEmail:      StringField(data, "contactEmail"),
		IncludeDeviceInfo: BoolField(data, "includeDeviceInfo"),
		UserID:            StringField(data, "userId"),
		UserName:          StringField(data, "userName"),
		UserEmail:         StringField(data, "userEmail"),
	}
}

// Reservation is the payload of a created reservations document.
type Reservation struct {
	UserID       string
	UserName     string
	UserEmail    string
	ContentTitle string
	Quantity     int64
	PickupDate   time.Time
	CreatedAt    time.Time
}

// ReservationFromDocument extracts a Reservation from a created document's
// fields.
func ReservationFromDocument(data map[string]any) Reservation {
	return Reservation{
		UserID:       StringField(data, "userId"),
		UserName:     StringField(data, "userName"),
		UserEmail:    StringField(data, "userEmail"),
		ContentTitle: StringField(data, "contentTitle"),
		Quantity:     IntField(data, "quantity"),
		PickupDate:   TimeField(data, "pickupDate"),
		CreatedAt:    TimeField(data, "createdAt"),
	}
}

// jst is the calendar-local zone for user-facing reservation dates.
var jst = time.FixedZone("JST", 9*60*60)

// FormatPickupDate renders a pickup date as YYYY/MM/DD in Japan local time.
// The zero time renders as 未定.
func FormatPickupDate(t time.Time) string {
	if t.IsZero() {
		return "未定"
	}
	return t.In(jst).Format("2006/01/02")
}
