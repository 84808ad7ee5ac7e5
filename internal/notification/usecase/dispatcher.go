package usecase

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"kokoshiba-backend/internal/notification/domain"
	"kokoshiba-backend/pkg/fcm"
)

// BatchSize is the push provider's hard multicast ceiling.
const BatchSize = 500

// PushSender is the multicast send capability: deliver to up to BatchSize
// tokens and report one outcome per token.
type PushSender interface {
	SendMulticast(ctx context.Context, msg fcm.Message) ([]fcm.SendResult, error)
}

// Dispatcher fans one notification out across provider-sized batches. Batches
// are independent units of failure: a whole-batch send error never aborts the
// others, and per-token permanent failures are collected for pruning.
type Dispatcher struct {
	sender PushSender
	pruner *Pruner
	log    zerolog.Logger
}

// NewDispatcher creates a new Dispatcher.
func NewDispatcher(sender PushSender, pruner *Pruner, log zerolog.Logger) *Dispatcher {
	return &Dispatcher{sender: sender, pruner: pruner, log: log}
}

// Dispatch sends payload to every token in set, then prunes tokens the
// provider reported as permanently invalid. It never returns an error;
// delivery is best-effort and failures are logged with notificationID.
func (d *Dispatcher) Dispatch(ctx context.Context, set *domain.TokenSet, payload domain.Payload, notificationID string) {
	if set.Empty() {
		return
	}

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		invalid = make(map[string]struct{})
	)
	data := payload.DataFields(notificationID)

	for start := 0; start < len(set.Tokens); start += BatchSize {
		end := start + BatchSize
		if end > len(set.Tokens) {
			end = len(set.Tokens)
		}
		chunk := set.Tokens[start:end]

		wg.Add(1)
		go func(chunk []string) {
			defer wg.Done()

			results, err := d.sender.SendMulticast(ctx, fcm.Message{
				Tokens:   chunk,
				Title:    payload.Title,
				Body:     payload.Body,
				ImageURL: payload.ImageURL,
				Data:     data,
			})
			if err != nil {
				d.log.Error().Err(err).
					Str("notificationId", notificationID).
					Msg("failed to send announcement batch")
				return
			}

			for i, res := range results {
				if res.Success {
					continue
				}
				if permanentFailure(res.ErrorCode) {
					mu.Lock()
					invalid[chunk[i]] = struct{}{}
					mu.Unlock()
					continue
				}
				d.log.Error().Err(res.Err).
					Str("code", res.ErrorCode).
					Str("token", chunk[i]).
					Str("notificationId", notificationID).
					Msg("announcement push failed")
			}
		}(chunk)
	}
	wg.Wait()

	if len(invalid) > 0 {
		d.pruner.Prune(ctx, invalid, set.Owners)
	}
}

// permanentFailure reports whether the provider error code means the token
// will never accept delivery again. Anything else is left for a future send.
func permanentFailure(code string) bool {
	return code == fcm.ErrCodeUnregistered || code == fcm.ErrCodeInvalidToken
}
