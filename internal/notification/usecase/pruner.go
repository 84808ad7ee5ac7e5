package usecase

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"kokoshiba-backend/internal/notification/domain"
	"kokoshiba-backend/internal/notification/repository"
)

// Pruner removes permanently-invalid tokens from their owning user records.
// Pruning is best-effort cleanup: failures are logged and never surfaced.
type Pruner struct {
	users repository.UserTokenRepository
	log   zerolog.Logger
}

// NewPruner creates a new Pruner.
func NewPruner(users repository.UserTokenRepository, log zerolog.Logger) *Pruner {
	return &Pruner{users: users, log: log}
}

// Prune issues one removal per (owner, token) pair, all concurrently. Removals
// are by array value, so repeats and races with unrelated writers are safe.
// Tokens missing from the owner index are skipped.
func (p *Pruner) Prune(ctx context.Context, invalid map[string]struct{}, owners domain.OwnerIndex) {
	var wg sync.WaitGroup
	for token := range invalid {
		for userID := range owners.Owners(token) {
			wg.Add(1)
			go func(userID, token string) {
				defer wg.Done()
				if err := p.users.RemoveToken(ctx, userID, token); err != nil {
					p.log.Error().Err(err).
						Str("uid", userID).
						Str("token", token).
						Msg("failed to prune invalid FCM token")
				}
			}(userID, token)
		}
	}
	wg.Wait()
}
