package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/rs/zerolog"

	"kokoshiba-backend/internal/notification/domain"
	"kokoshiba-backend/pkg/fcm"
)

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

func buildTokenSet(t *testing.T, count int, owner string) *domain.TokenSet {
	t.Helper()
	set := domain.NewTokenSet()
	for i := 0; i < count; i++ {
		set.Add(fmt.Sprintf("token-%04d", i), owner)
	}
	return set
}

func TestDispatchSplitsIntoProviderSizedBatches(t *testing.T) {
	t.Parallel()

	const tokenCount = 1201
	sender := &fakeSender{}
	users := newFakeUserTokens()
	dispatcher := NewDispatcher(sender, NewPruner(users, testLogger()), testLogger())

	set := buildTokenSet(t, tokenCount, "user-1")
	dispatcher.Dispatch(context.Background(), set, domain.Payload{Title: "t", Body: "b", Category: "general"}, "notif-1")

	calls := sender.sentCalls()
	if got, want := len(calls), 3; got != want {
		t.Fatalf("send calls = %d, want %d", got, want)
	}

	seen := make(map[string]int)
	for _, call := range calls {
		if len(call.Tokens) > BatchSize {
			t.Errorf("batch size = %d, exceeds ceiling %d", len(call.Tokens), BatchSize)
		}
		for _, token := range call.Tokens {
			seen[token]++
		}
	}
	if len(seen) != tokenCount {
		t.Fatalf("covered %d distinct tokens, want %d", len(seen), tokenCount)
	}
	for token, n := range seen {
		if n != 1 {
			t.Errorf("token %s sent %d times, want exactly once", token, n)
		}
	}
}

func TestDispatchMirrorsContentIntoDataFields(t *testing.T) {
	t.Parallel()

	sender := &fakeSender{}
	users := newFakeUserTokens()
	dispatcher := NewDispatcher(sender, NewPruner(users, testLogger()), testLogger())

	set := domain.NewTokenSet()
	set.Add("tok", "user-1")
	payload := domain.Payload{Title: "題", Body: "文", Category: "news", ImageURL: "https://example.com/i.png"}
	dispatcher.Dispatch(context.Background(), set, payload, "notif-9")

	calls := sender.sentCalls()
	if len(calls) != 1 {
		t.Fatalf("send calls = %d, want 1", len(calls))
	}
	msg := calls[0]
	if msg.Title != payload.Title || msg.Body != payload.Body || msg.ImageURL != payload.ImageURL {
		t.Errorf("notification fields not carried: %+v", msg)
	}
	for key, want := range map[string]string{
		"notificationId": "notif-9",
		"category":       "news",
		"title":          "題",
		"body":           "文",
		"imageUrl":       "https://example.com/i.png",
	} {
		if msg.Data[key] != want {
			t.Errorf("data[%q] = %q, want %q", key, msg.Data[key], want)
		}
	}
}

func TestDispatchPrunesOnlyPermanentFailures(t *testing.T) {
	t.Parallel()

	users := newFakeUserTokens()
	users.tokens["user-1"] = []string{"tok-dead", "tok-live"}
	users.tokens["user-2"] = []string{"tok-bad", "tok-flaky"}

	sender := &fakeSender{outcomes: map[string]fcm.SendResult{
		"tok-dead":  {ErrorCode: fcm.ErrCodeUnregistered, Err: errors.New("unregistered")},
		"tok-bad":   {ErrorCode: fcm.ErrCodeInvalidToken, Err: errors.New("invalid")},
		"tok-flaky": {ErrorCode: fcm.ErrCodeUnknown, Err: errors.New("unavailable")},
	}}
	dispatcher := NewDispatcher(sender, NewPruner(users, testLogger()), testLogger())

	set, err := users.CollectAll(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	dispatcher.Dispatch(context.Background(), set, domain.Payload{Title: "t", Body: "b", Category: "general"}, "notif-1")

	removed := make(map[[2]string]bool)
	for _, pair := range users.removedPairs() {
		removed[pair] = true
	}
	if !removed[[2]string{"user-1", "tok-dead"}] {
		t.Error("tok-dead was not pruned from user-1")
	}
	if !removed[[2]string{"user-2", "tok-bad"}] {
		t.Error("tok-bad was not pruned from user-2")
	}
	if len(removed) != 2 {
		t.Errorf("removals = %v, want only the two permanent failures", users.removedPairs())
	}
}

func TestDispatchBatchFailureDoesNotAbortOtherBatches(t *testing.T) {
	t.Parallel()

	sender := &fakeSender{
		batchErr: func(tokens []string) error {
			for _, token := range tokens {
				if token == "token-0000" {
					return errors.New("provider unavailable")
				}
			}
			return nil
		},
	}
	users := newFakeUserTokens()
	dispatcher := NewDispatcher(sender, NewPruner(users, testLogger()), testLogger())

	set := buildTokenSet(t, BatchSize+1, "user-1")
	dispatcher.Dispatch(context.Background(), set, domain.Payload{Title: "t", Body: "b", Category: "general"}, "notif-1")

	if got, want := len(sender.sentCalls()), 2; got != want {
		t.Fatalf("send calls = %d, want %d (failed batch must not abort the other)", got, want)
	}
	if got := len(users.removedPairs()); got != 0 {
		t.Errorf("removals after whole-batch failure = %d, want 0", got)
	}
}

func TestDispatchEmptySetIsNoop(t *testing.T) {
	t.Parallel()

	sender := &fakeSender{}
	dispatcher := NewDispatcher(sender, NewPruner(newFakeUserTokens(), testLogger()), testLogger())

	dispatcher.Dispatch(context.Background(), nil, domain.Payload{Title: "t", Body: "b"}, "notif-1")
	dispatcher.Dispatch(context.Background(), domain.NewTokenSet(), domain.Payload{Title: "t", Body: "b"}, "notif-2")

	if got := len(sender.sentCalls()); got != 0 {
		t.Errorf("send calls = %d, want 0", got)
	}
}
