package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/grpc/codes"

	"kokoshiba-backend/internal/verification/domain"
	"kokoshiba-backend/internal/verification/repository"
	"kokoshiba-backend/pkg/apperror"
)

// Caller is the authenticated identity behind a callable operation.
type Caller struct {
	UID   string
	Email string
}

// RequestResult is the outcome of a code request. Verified means the user's
// email is already verified and no code was issued.
type RequestResult struct {
	ExpiresAtMillis int64
	Reused          bool
	Verified        bool
}

// VerificationUsecase is the email-ownership verification state machine:
// absent → pending → verified, with verified terminal.
type VerificationUsecase interface {
	// RequestCode issues a 6-digit code to email and mails it. An unexpired
	// pending code is reused unless forceResend is set.
	RequestCode(ctx context.Context, caller Caller, email string, forceResend bool) (*RequestResult, error)
	// VerifyCode checks a submitted code against the stored hash, expiry and
	// attempt cap.
	VerifyCode(ctx context.Context, caller Caller, code string) error
}

// Mailer is the outbound mail capability.
type Mailer interface {
	Send(to, subject, body string) error
}

// verificationUsecase implements VerificationUsecase
type verificationUsecase struct {
	repo   repository.Repository
	mailer Mailer
	log    zerolog.Logger
	now    func() time.Time
}

// NewVerificationUsecase creates a new instance of verificationUsecase. A nil
// mailer means mail is not configured; code requests then fail.
func NewVerificationUsecase(repo repository.Repository, mailer Mailer, log zerolog.Logger) VerificationUsecase {
	return &verificationUsecase{
		repo:   repo,
		mailer: mailer,
		log:    log,
		now:    time.Now,
	}
}

func (u *verificationUsecase) RequestCode(ctx context.Context, caller Caller, email string, forceResend bool) (*RequestResult, error) {
	if caller.UID == "" {
		return nil, apperror.New(codes.Unauthenticated, "You must be signed in to request verification.")
	}
	if u.mailer == nil {
		u.log.Error().Msg("mail transport is not configured")
		return nil, apperror.New(codes.FailedPrecondition, "メール送信設定が行われていません")
	}

	email = strings.TrimSpace(email)
	if email == "" {
		return nil, apperror.New(codes.InvalidArgument, "メールアドレスが指定されていません")
	}
	if caller.Email != "" && !strings.EqualFold(caller.Email, email) {
		return nil, apperror.New(codes.InvalidArgument, "ログイン中のメールアドレスと一致しません")
	}

	rec, err := u.repo.Find(ctx, caller.UID)
	if err != nil {
		return nil, err
	}
	if rec != nil && rec.Verified() {
		return &RequestResult{Verified: true}, nil
	}

	now := u.now()
	if rec != nil && !forceResend && rec.Reusable(now) {
		return &RequestResult{ExpiresAtMillis: rec.ExpiresAt.UnixMilli(), Reused: true}, nil
	}

	code, err := domain.GenerateCode()
	if err != nil {
		return nil, err
	}
	expiresAt := now.Add(domain.CodeExpiry)

	if err := u.repo.SavePending(ctx, caller.UID, domain.PendingCode{
		Email:     email,
		CodeHash:  domain.HashCode(code),
		ExpiresAt: expiresAt,
	}); err != nil {
		return nil, err
	}

	if err := u.sendVerificationMail(email, code); err != nil {
		return nil, fmt.Errorf("failed to send verification email: %w", err)
	}
	u.log.Info().Str("uid", caller.UID).Str("email", email).Msg("verification email sent")

	return &RequestResult{ExpiresAtMillis: expiresAt.UnixMilli()}, nil
}

func (u *verificationUsecase) VerifyCode(ctx context.Context, caller Caller, code string) error {
	if caller.UID == "" {
		return apperror.New(codes.Unauthenticated, "You must be signed in to verify the code.")
	}

	code = strings.TrimSpace(code)
	if !domain.ValidCodeFormat(code) {
		return apperror.New(codes.InvalidArgument, "6桁の認証コードを入力してください")
	}

	submittedHash := domain.HashCode(code)
	now := u.now()

	decision, err := u.repo.Submit(ctx, caller.UID, func(rec *domain.VerificationRecord) (domain.SubmitDecision, error) {
		if rec == nil {
			return domain.SubmitNone, apperror.New(codes.FailedPrecondition, "認証コードが発行されていません")
		}
		if rec.Verified() {
			// Terminal state: repeat submissions succeed without re-checking.
			return domain.SubmitNone, nil
		}
		if rec.Expired(now) {
			return domain.SubmitNone, apperror.New(codes.DeadlineExceeded, "認証コードの有効期限が切れています")
		}
		// The cap is checked before the hash comparison so an exhausted
		// record neither increments further nor leaks timing.
		if rec.Exhausted() {
			return domain.SubmitNone, apperror.New(codes.ResourceExhausted, "認証コードの入力回数が上限に達しました")
		}
		if !rec.Matches(submittedHash) {
			return domain.SubmitReject, nil
		}
		return domain.SubmitAccept, nil
	})
	if err != nil {
		var appErr *apperror.Error
		if errors.As(err, &appErr) {
			return err
		}
		return fmt.Errorf("failed to verify code: %w", err)
	}

	if decision == domain.SubmitReject {
		return apperror.New(codes.PermissionDenied, "認証コードが間違っています")
	}
	if decision == domain.SubmitAccept {
		u.log.Info().Str("uid", caller.UID).Msg("email verified")
	}
	return nil
}

func (u *verificationUsecase) sendVerificationMail(email, code string) error {
	subject := "ココシバ アカウントのメール認証コード"
	body := fmt.Sprintf(
		"以下の6桁のコードをアプリに入力してください。\n\n%s\n\n有効期限：%d分\n\nこのメールに心当たりがない場合は破棄してください。",
		code,
		int(domain.CodeExpiry.Minutes()),
	)
	return u.mailer.Send(email, subject, body)
}
