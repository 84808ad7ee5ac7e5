package repository

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"kokoshiba-backend/internal/verification/domain"
)

const (
	verificationsCollection = "emailVerifications"
	usersCollection         = "users"
)

// Repository persists verification records, one per user id.
type Repository interface {
	// Find returns the user's record, or nil when none exists.
	Find(ctx context.Context, userID string) (*domain.VerificationRecord, error)
	// SavePending merges a freshly issued code into the record, resetting
	// attempts and preserving unrelated fields.
	SavePending(ctx context.Context, userID string, pending domain.PendingCode) error
	// Submit runs decide over the current record inside a transaction and
	// applies the decision's writes atomically: a reject increments attempts,
	// an accept flips the record to verified and marks the user profile
	// email-verified in the same transaction. decide receives nil when no
	// record exists; returning an error aborts with no writes.
	Submit(ctx context.Context, userID string, decide func(rec *domain.VerificationRecord) (domain.SubmitDecision, error)) (domain.SubmitDecision, error)
}

// verificationRepository implements Repository on Firestore
type verificationRepository struct {
	client *firestore.Client
}

// NewRepository creates a new instance of verificationRepository
func NewRepository(client *firestore.Client) Repository {
	return &verificationRepository{client: client}
}

func (r *verificationRepository) Find(ctx context.Context, userID string) (*domain.VerificationRecord, error) {
	doc, err := r.client.Collection(verificationsCollection).Doc(userID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read verification record: %w", err)
	}

	var rec domain.VerificationRecord
	if err := doc.DataTo(&rec); err != nil {
		return nil, fmt.Errorf("failed to decode verification record: %w", err)
	}
	return &rec, nil
}

func (r *verificationRepository) SavePending(ctx context.Context, userID string, pending domain.PendingCode) error {
	_, err := r.client.Collection(verificationsCollection).Doc(userID).Set(ctx, map[string]any{
		"email":     pending.Email,
		"codeHash":  pending.CodeHash,
		"status":    domain.StatusPending,
		"attempts":  0,
		"expiresAt": pending.ExpiresAt,
		"createdAt": firestore.ServerTimestamp,
		"updatedAt": firestore.ServerTimestamp,
	}, firestore.MergeAll)
	if err != nil {
		return fmt.Errorf("failed to save pending verification: %w", err)
	}
	return nil
}

func (r *verificationRepository) Submit(ctx context.Context, userID string, decide func(rec *domain.VerificationRecord) (domain.SubmitDecision, error)) (domain.SubmitDecision, error) {
	recRef := r.client.Collection(verificationsCollection).Doc(userID)
	userRef := r.client.Collection(usersCollection).Doc(userID)

	var decision domain.SubmitDecision
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		var rec *domain.VerificationRecord

		doc, err := tx.Get(recRef)
		switch {
		case status.Code(err) == codes.NotFound:
			// decide sees nil
		case err != nil:
			return fmt.Errorf("failed to read verification record: %w", err)
		default:
			rec = &domain.VerificationRecord{}
			if err := doc.DataTo(rec); err != nil {
				return fmt.Errorf("failed to decode verification record: %w", err)
			}
		}

		decision, err = decide(rec)
		if err != nil {
			return err
		}

		switch decision {
		case domain.SubmitReject:
			return tx.Update(recRef, []firestore.Update{
				{Path: "attempts", Value: rec.Attempts + 1},
				{Path: "updatedAt", Value: firestore.ServerTimestamp},
			})
		case domain.SubmitAccept:
			if err := tx.Update(recRef, []firestore.Update{
				{Path: "status", Value: domain.StatusVerified},
				{Path: "attempts", Value: rec.Attempts + 1},
				{Path: "verifiedAt", Value: firestore.ServerTimestamp},
				{Path: "updatedAt", Value: firestore.ServerTimestamp},
			}); err != nil {
				return err
			}
			return tx.Set(userRef, map[string]any{
				"emailVerified":   true,
				"emailVerifiedAt": firestore.ServerTimestamp,
				"updatedAt":       firestore.ServerTimestamp,
			}, firestore.MergeAll)
		default:
			return nil
		}
	})
	if err != nil {
		return domain.SubmitNone, err
	}
	return decision, nil
}
