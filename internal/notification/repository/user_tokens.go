package repository

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"kokoshiba-backend/internal/notification/domain"
)

const (
	usersCollection = "users"
	tokensField     = "fcmTokens"
	tokenStampField = "fcmTokenUpdatedAt"
)

// UserTokenRepository is the directory of device push tokens stored on user
// records, plus the token-lifecycle writes this service owns.
type UserTokenRepository interface {
	// CollectAll gathers every valid token in the user directory. A nil set
	// means no matching records or no valid tokens; callers skip silently.
	CollectAll(ctx context.Context) (*domain.TokenSet, error)
	// CollectOwners gathers tokens of users flagged isOwner or isSubOwner.
	CollectOwners(ctx context.Context) (*domain.TokenSet, error)
	// TokensFor returns one user's valid tokens; a missing user yields none.
	TokensFor(ctx context.Context, userID string) ([]string, error)
	// AddToken appends a token to the user's token array (set semantics).
	AddToken(ctx context.Context, userID, token string) error
	// RemoveToken removes the exact token value from the user's token array.
	// Removal is by value, so it is idempotent and safe to race with
	// unrelated writers.
	RemoveToken(ctx context.Context, userID, token string) error
}

// userTokenRepository implements UserTokenRepository on Firestore
type userTokenRepository struct {
	client *firestore.Client
}

// NewUserTokenRepository creates a new instance of userTokenRepository
func NewUserTokenRepository(client *firestore.Client) UserTokenRepository {
	return &userTokenRepository{client: client}
}

func (r *userTokenRepository) CollectAll(ctx context.Context) (*domain.TokenSet, error) {
	set := domain.NewTokenSet()

	iter := r.client.Collection(usersCollection).Documents(ctx)
	defer iter.Stop()
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to scan users: %w", err)
		}
		addDocumentTokens(set, doc.Ref.ID, doc.Data())
	}

	if set.Empty() {
		return nil, nil
	}
	return set, nil
}

func (r *userTokenRepository) CollectOwners(ctx context.Context) (*domain.TokenSet, error) {
	set := domain.NewTokenSet()

	// Two independent queries unioned by record id; the token-level dedup in
	// TokenSet keeps a user matching both flags from being counted twice.
	queries := []firestore.Query{
		r.client.Collection(usersCollection).Where("isOwner", "==", true),
		r.client.Collection(usersCollection).Where("isSubOwner", "==", true),
	}
	for _, query := range queries {
		iter := query.Documents(ctx)
		for {
			doc, err := iter.Next()
			if err == iterator.Done {
				break
			}
			if err != nil {
				iter.Stop()
				return nil, fmt.Errorf("failed to query owners: %w", err)
			}
			addDocumentTokens(set, doc.Ref.ID, doc.Data())
		}
		iter.Stop()
	}

	if set.Empty() {
		return nil, nil
	}
	return set, nil
}

func (r *userTokenRepository) TokensFor(ctx context.Context, userID string) ([]string, error) {
	doc, err := r.client.Collection(usersCollection).Doc(userID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read user %s: %w", userID, err)
	}

	set := domain.NewTokenSet()
	addDocumentTokens(set, userID, doc.Data())
	return set.Tokens, nil
}

func (r *userTokenRepository) AddToken(ctx context.Context, userID, token string) error {
	_, err := r.client.Collection(usersCollection).Doc(userID).Set(ctx, map[string]any{
		tokensField:     firestore.ArrayUnion(token),
		tokenStampField: firestore.ServerTimestamp,
	}, firestore.MergeAll)
	if err != nil {
		return fmt.Errorf("failed to register token for user %s: %w", userID, err)
	}
	return nil
}

func (r *userTokenRepository) RemoveToken(ctx context.Context, userID, token string) error {
	_, err := r.client.Collection(usersCollection).Doc(userID).Update(ctx, []firestore.Update{
		{Path: tokensField, Value: firestore.ArrayRemove(token)},
		{Path: tokenStampField, Value: firestore.ServerTimestamp},
	})
	if err != nil {
		return fmt.Errorf("failed to remove token for user %s: %w", userID, err)
	}
	return nil
}

// addDocumentTokens reads the token array field off one user document. A
// missing or non-array field means zero tokens; non-string and empty entries
// are discarded.
func addDocumentTokens(set *domain.TokenSet, userID string, data map[string]any) {
	raw, ok := data[tokensField].([]any)
	if !ok {
		return
	}
	for _, entry := range raw {
		if token, ok := entry.(string); ok {
			set.Add(token, userID)
		}
	}
}
