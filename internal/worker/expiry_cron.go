package worker

// expiry_cron.go
// Background goroutine that periodically flips SENT quotations whose
// valid_until has passed to EXPIRED. Responses already treat an overdue
// quotation as expired regardless of the stored status; the sweeper
// reconciles the stored rows so listings and dashboards agree.

import (
	"context"
	"time"

	"mercury/internal/repository"

	"github.com/rs/zerolog/log"
)

const expiryTickInterval = 5 * time.Minute

// StartExpiryCron launches the quotation expiry sweeper. It stops when ctx
// is cancelled.
func StartExpiryCron(ctx context.Context, quotationRepo repository.QuotationRepository) {
	go func() {
		ticker := time.NewTicker(expiryTickInterval)
		defer ticker.Stop()

		log.Info().Dur("interval", expiryTickInterval).Msg("expiry_cron: started")
		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("expiry_cron: shutting down")
				return
			case <-ticker.C:
				n, err := quotationRepo.ExpireOverdue(ctx, time.Now())
				if err != nil {
					log.Error().Err(err).Msg("expiry_cron: sweep failed")
					continue
				}
				if n > 0 {
					log.Info().Int64("expired", n).Msg("expiry_cron: quotations expired")
				}
			}
		}
	}()
}
