package scheduler

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
)

const TokenPurgeJobName = "revoked_token_purge"

// TokenPurger removes revoked tokens whose expiry has passed.
type TokenPurger interface {
	PurgeRevokedTokens(ctx context.Context) (int64, error)
}

// RegisterTokenPurge schedules the revoked token cleanup on cronExpr.
func RegisterTokenPurge(s *Service, cronExpr string, purger TokenPurger) error {
	if purger == nil {
		return fmt.Errorf("token purge job requires a purger")
	}
	_, err := s.AddJob(TokenPurgeJobName, cronExpr, tokenPurgeTask(purger))
	return err
}

func tokenPurgeTask(purger TokenPurger) Task {
	return func(ctx context.Context) error {
		purged, err := purger.PurgeRevokedTokens(ctx)
		if err != nil {
			return fmt.Errorf("purge revoked tokens: %w", err)
		}
		if purged > 0 {
			log.Ctx(ctx).Info().Int64("purged", purged).Msg("Purged expired revoked tokens")
		}
		return nil
	}
}
