package seed

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	appServices "github.com/diakonovmakar/yatube-final/internal/app/services"
	"github.com/diakonovmakar/yatube-final/internal/config"
)

// EnsureGroups creates the configured groups that do not exist yet. Every
// group is attempted; the failures are joined.
func EnsureGroups(ctx context.Context, groups *appServices.GroupService, seedGroups []config.SeedGroup, lgr zerolog.Logger) error {
	if len(seedGroups) == 0 {
		return nil
	}
	lgr.Info().Int("groups", len(seedGroups)).Msg("Checking/Creating seed groups...")

	var finalErr error
	for _, g := range seedGroups {
		created, err := groups.Ensure(ctx, g.Title, g.Slug, g.Description)
		if err != nil {
			lgr.Error().Err(err).Str("title", g.Title).Msg("Error creating seed group")
			finalErr = errors.Join(finalErr, err)
			continue
		}
		if created {
			lgr.Info().Str("title", g.Title).Msg("Seed group created")
		}
	}
	return finalErr
}
