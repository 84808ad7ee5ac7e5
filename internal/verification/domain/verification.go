package domain

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"math/big"
	"time"
)

// Verification record status values. Verified is terminal.
const (
	StatusPending  = "pending"
	StatusVerified = "verified"
)

// CodeExpiry is how long an issued code stays valid.
const CodeExpiry = 10 * time.Minute

// MaxAttempts caps wrong-code submissions per issued record.
const MaxAttempts = 5

// VerificationRecord is the per-user email-verification state, keyed by user
// id. Only the code's hash is ever stored, never the plaintext.
type VerificationRecord struct {
	Email      string    `firestore:"email"`
	CodeHash   string    `firestore:"codeHash"`
	Status     string    `firestore:"status"`
	Attempts   int64     `firestore:"attempts"`
	ExpiresAt  time.Time `firestore:"expiresAt"`
	CreatedAt  time.Time `firestore:"createdAt"`
	UpdatedAt  time.Time `firestore:"updatedAt"`
	VerifiedAt time.Time `firestore:"verifiedAt"`
}

// Verified reports whether the record reached its terminal state.
func (r *VerificationRecord) Verified() bool {
	return r.Status == StatusVerified
}

// Expired reports whether the code's validity window has passed.
func (r *VerificationRecord) Expired(now time.Time) bool {
	return now.After(r.ExpiresAt)
}

// Exhausted reports whether the attempt cap has been reached.
func (r *VerificationRecord) Exhausted() bool {
	return r.Attempts >= MaxAttempts
}

// Reusable reports whether an unexpired pending code can answer a repeat
// request without issuing a new one.
func (r *VerificationRecord) Reusable(now time.Time) bool {
	return r.Status == StatusPending && r.CodeHash != "" && now.Before(r.ExpiresAt)
}

// Matches compares the stored hash against a submitted code's hash in
// constant time.
func (r *VerificationRecord) Matches(codeHash string) bool {
	return subtle.ConstantTimeCompare([]byte(r.CodeHash), []byte(codeHash)) == 1
}

// PendingCode is the state written when a fresh code is issued. The write
// merges into any existing record and resets attempts to zero.
type PendingCode struct {
	Email     string
	CodeHash  string
	ExpiresAt time.Time
}

// SubmitDecision is the outcome a code submission resolves to inside the
// record transaction.
type SubmitDecision int

const (
	// SubmitNone writes nothing; the record is already verified.
	SubmitNone SubmitDecision = iota
	// SubmitReject increments the attempt counter.
	SubmitReject
	// SubmitAccept flips the record to verified and marks the user profile.
	SubmitAccept
)

// GenerateCode draws a uniformly random 6-digit code from a cryptographically
// sound source.
func GenerateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("failed to generate verification code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

// HashCode returns the hex sha256 digest of a code.
func HashCode(code string) string {
	sum := sha256.Sum256([]byte(code))
	return hex.EncodeToString(sum[:])
}

// ValidCodeFormat reports whether code is exactly six ASCII digits.
func ValidCodeFormat(code string) bool {
	if len(code) != 6 {
		return false
	}
	for _, c := range code {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
