package usecase

import (
	"context"
	"sync"

	"kokoshiba-backend/internal/notification/domain"
	"kokoshiba-backend/pkg/fcm"
)

// fakeSender records multicast calls and returns programmable per-token
// outcomes. Tokens without a programmed outcome succeed.
type fakeSender struct {
	mu       sync.Mutex
	calls    []fcm.Message
	outcomes map[string]fcm.SendResult
	batchErr func(tokens []string) error
}

func (f *fakeSender) SendMulticast(_ context.Context, msg fcm.Message) ([]fcm.SendResult, error) {
	f.mu.Lock()
	f.calls = append(f.calls, msg)
	f.mu.Unlock()

	if f.batchErr != nil {
		if err := f.batchErr(msg.Tokens); err != nil {
			return nil, err
		}
	}

	results := make([]fcm.SendResult, len(msg.Tokens))
	for i, token := range msg.Tokens {
		if outcome, ok := f.outcomes[token]; ok {
			results[i] = outcome
			continue
		}
		results[i] = fcm.SendResult{Success: true}
	}
	return results, nil
}

func (f *fakeSender) sentCalls() []fcm.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]fcm.Message(nil), f.calls...)
}

// fakeUserTokens is an in-memory user directory whose token arrays behave
// like Firestore array fields: removal is by value and idempotent.
type fakeUserTokens struct {
	mu        sync.Mutex
	tokens    map[string][]string // user id -> token array
	ownerIDs  map[string]struct{}
	removed   [][2]string // (user id, token) removal calls, including no-ops
	removeErr error
}

func newFakeUserTokens() *fakeUserTokens {
	return &fakeUserTokens{
		tokens:   make(map[string][]string),
		ownerIDs: make(map[string]struct{}),
	}
}

func (f *fakeUserTokens) collect(filter func(userID string) bool) *domain.TokenSet {
	f.mu.Lock()
	defer f.mu.Unlock()

	set := domain.NewTokenSet()
	for userID, tokens := range f.tokens {
		if filter != nil && !filter(userID) {
			continue
		}
		for _, token := range tokens {
			set.Add(token, userID)
		}
	}
	if set.Empty() {
		return nil
	}
	return set
}

func (f *fakeUserTokens) CollectAll(context.Context) (*domain.TokenSet, error) {
	return f.collect(nil), nil
}

func (f *fakeUserTokens) CollectOwners(context.Context) (*domain.TokenSet, error) {
	return f.collect(func(userID string) bool {
		_, ok := f.ownerIDs[userID]
		return ok
	}), nil
}

func (f *fakeUserTokens) TokensFor(_ context.Context, userID string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.tokens[userID]...), nil
}

func (f *fakeUserTokens) AddToken(_ context.Context, userID, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.tokens[userID] {
		if existing == token {
			return nil
		}
	}
	f.tokens[userID] = append(f.tokens[userID], token)
	return nil
}

func (f *fakeUserTokens) RemoveToken(_ context.Context, userID, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.removed = append(f.removed, [2]string{userID, token})
	if f.removeErr != nil {
		return f.removeErr
	}

	kept := f.tokens[userID][:0]
	for _, existing := range f.tokens[userID] {
		if existing != token {
			kept = append(kept, existing)
		}
	}
	f.tokens[userID] = kept
	return nil
}

func (f *fakeUserTokens) removedPairs() [][2]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][2]string(nil), f.removed...)
}

func (f *fakeUserTokens) tokensOf(userID string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.tokens[userID]...)
}

// fakeNotifications records fan-in writes.
type fakeNotifications struct {
	mu      sync.Mutex
	created []domain.OwnerNotification
	err     error
}

func (f *fakeNotifications) CreateOwnerNotification(_ context.Context, n domain.OwnerNotification) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	f.created = append(f.created, n)
	return "generated-id", nil
}
