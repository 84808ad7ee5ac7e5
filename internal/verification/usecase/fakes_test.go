package usecase

import (
	"context"
	"regexp"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"kokoshiba-backend/internal/verification/domain"
)

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

// fakeRepo is an in-memory verification record store applying the same write
// semantics as the Firestore repository: merge on SavePending, transactional
// decision application on Submit.
type fakeRepo struct {
	mu           sync.Mutex
	rec          *domain.VerificationRecord
	userVerified bool
	findErr      error
	saveErr      error
	submitErr    error
	saves        int
}

func (f *fakeRepo) Find(context.Context, string) (*domain.VerificationRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findErr != nil {
		return nil, f.findErr
	}
	if f.rec == nil {
		return nil, nil
	}
	recCopy := *f.rec
	return &recCopy, nil
}

func (f *fakeRepo) SavePending(_ context.Context, _ string, pending domain.PendingCode) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saves++

	if f.rec == nil {
		f.rec = &domain.VerificationRecord{CreatedAt: time.Now()}
	}
	f.rec.Email = pending.Email
	f.rec.CodeHash = pending.CodeHash
	f.rec.Status = domain.StatusPending
	f.rec.Attempts = 0
	f.rec.ExpiresAt = pending.ExpiresAt
	f.rec.UpdatedAt = time.Now()
	return nil
}

func (f *fakeRepo) Submit(_ context.Context, _ string, decide func(rec *domain.VerificationRecord) (domain.SubmitDecision, error)) (domain.SubmitDecision, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.submitErr != nil {
		return domain.SubmitNone, f.submitErr
	}

	var snapshot *domain.VerificationRecord
	if f.rec != nil {
		recCopy := *f.rec
		snapshot = &recCopy
	}

	decision, err := decide(snapshot)
	if err != nil {
		return domain.SubmitNone, err
	}

	switch decision {
	case domain.SubmitReject:
		f.rec.Attempts++
		f.rec.UpdatedAt = time.Now()
	case domain.SubmitAccept:
		f.rec.Status = domain.StatusVerified
		f.rec.Attempts++
		f.rec.VerifiedAt = time.Now()
		f.rec.UpdatedAt = time.Now()
		f.userVerified = true
	}
	return decision, nil
}

// fakeMailer records sent mail and can fail on demand.
type fakeMailer struct {
	mu    sync.Mutex
	sent  []sentMail
	err   error
}

type sentMail struct {
	to      string
	subject string
	body    string
}

func (f *fakeMailer) Send(to, subject, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentMail{to: to, subject: subject, body: body})
	return nil
}

var codePattern = regexp.MustCompile(`[0-9]{6}`)

// lastCode extracts the 6-digit code from the most recently sent mail body.
func (f *fakeMailer) lastCode() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.sent) == 0 {
		return ""
	}
	return codePattern.FindString(f.sent[len(f.sent)-1].body)
}
