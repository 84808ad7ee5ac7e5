package domain

import (
	"testing"
	"time"
)

func TestPayloadFromDocument(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		data   map[string]any
		want   Payload
		wantOK bool
	}{
		{
			name: "full document",
			data: map[string]any{
				"title":    "お知らせ",
				"body":     "本日の営業時間について",
				"category": "news",
				"imageUrl": "https://example.com/a.png",
			},
			want: Payload{
				Title:    "お知らせ",
				Body:     "本日の営業時間について",
				Category: "news",
				ImageURL: "https://example.com/a.png",
			},
			wantOK: true,
		},
		{
			name: "missing title falls back to default",
			data: map[string]any{"body": "本文"},
			want: Payload{Title: DefaultTitle, Body: "本文", Category: DefaultCategory},

			wantOK: true,
		},
		{
			name: "whitespace title falls back to default",
			data: map[string]any{"title": "   ", "body": "本文"},
			want: Payload{Title: DefaultTitle, Body: "本文", Category: DefaultCategory},

			wantOK: true,
		},
		{
			name:   "missing body aborts",
			data:   map[string]any{"title": "お知らせ"},
			wantOK: false,
		},
		{
			name:   "whitespace body aborts",
			data:   map[string]any{"title": "お知らせ", "body": " \n "},
			wantOK: false,
		},
		{
			name:   "non-string body treated as absent",
			data:   map[string]any{"body": 42},
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, ok := PayloadFromDocument(tt.data)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("payload = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestPayloadDataFields(t *testing.T) {
	t.Parallel()

	p := Payload{Title: "t", Body: "b", Category: "general"}
	fields := p.DataFields("notif-1")

	want := map[string]string{
		"notificationId": "notif-1",
		"category":       "general",
		"title":          "t",
		"body":           "b",
	}
	if len(fields) != len(want) {
		t.Fatalf("fields = %v, want %v", fields, want)
	}
	for k, v := range want {
		if fields[k] != v {
			t.Errorf("fields[%q] = %q, want %q", k, fields[k], v)
		}
	}

	p.ImageURL = "https://example.com/a.png"
	if got := p.DataFields("notif-1")["imageUrl"]; got != p.ImageURL {
		t.Errorf("imageUrl = %q, want %q", got, p.ImageURL)
	}
}

func TestReservationFromDocument(t *testing.T) {
	t.Parallel()

	pickup := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	r := ReservationFromDocument(map[string]any{
		"userId":       "user-1",
		"userName":     "山田",
		"contentTitle": "新刊フェア",
		"quantity":     float64(2), // JSON numbers decode to float64
		"pickupDate":   pickup.Format(time.RFC3339),
	})

	if r.UserID != "user-1" || r.UserName != "山田" || r.ContentTitle != "新刊フェア" {
		t.Errorf("unexpected reservation fields: %+v", r)
	}
	if r.Quantity != 2 {
		t.Errorf("quantity = %d, want 2", r.Quantity)
	}
	if !r.PickupDate.Equal(pickup) {
		t.Errorf("pickupDate = %v, want %v", r.PickupDate, pickup)
	}
}

func TestFormatPickupDate(t *testing.T) {
	t.Parallel()

	// 20:00 UTC on March 31 is already April 1 in Japan.
	got := FormatPickupDate(time.Date(2025, 3, 31, 20, 0, 0, 0, time.UTC))
	if got != "2025/04/01" {
		t.Errorf("FormatPickupDate = %q, want 2025/04/01", got)
	}

	if got := FormatPickupDate(time.Time{}); got != "未定" {
		t.Errorf("zero pickup date = %q, want 未定", got)
	}
}
