package services

import (
	"context"
	"time"

	"github.com/ahmetkoprulu/rtqb/common/data"
	"github.com/ahmetkoprulu/rtqb/common/utils"
	"github.com/ahmetkoprulu/rtqb/internal/effects"
	"github.com/ahmetkoprulu/rtqb/models"
	"go.uber.org/zap"
)

// EffectService keeps the in-memory effect ledgers and the player_effects
// table in step. Activations write a row before they touch the ledger,
// expiries prune it, and SeedLedgers replays surviving rows after a
// restart so boosted multipliers never outlive their effects.
type EffectService struct {
	db            *data.PgDbContext
	effects       *effects.Manager
	playerService *PlayerService
}

func NewEffectService(db *data.PgDbContext, effectManager *effects.Manager, playerService *PlayerService) *EffectService {
	return &EffectService{db: db, effects: effectManager, playerService: playerService}
}

// ActivateEffect persists an effect and applies it to the player's
// ledger. The row is written first; an effect that cannot be persisted
// is never applied.
func (s *EffectService) ActivateEffect(ctx context.Context, playerID string, effect *models.Effect) (*models.Effect, error) {
	ledger := s.effects.Ledger(playerID)
	s.watch(playerID, ledger)

	effect = ledger.Activate(effect)
	if err := s.saveEffect(ctx, effect); err != nil {
		ledger.Remove(effect.ID)
		return nil, err
	}

	return effect, nil
}

// DeleteEffect prunes a persisted effect after its ledger entry is gone.
func (s *EffectService) DeleteEffect(ctx context.Context, effectID string) error {
	_, err := s.db.Exec(ctx, `DELETE FROM player_effects WHERE id = $1`, effectID)
	return err
}

// SeedLedgers rebuilds every ledger from the persisted effects. Effects
// whose window passed while the process was down are pruned without
// being applied, and each affected player's multipliers are rewritten
// from what actually survived.
func (s *EffectService) SeedLedgers(ctx context.Context) error {
	query := `
		SELECT id, player_id, type, value, start_time, duration_seconds, item_id, item_name
		FROM player_effects
	`

	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return err
	}
	defer rows.Close()

	byPlayer := make(map[string][]*models.Effect)
	for rows.Next() {
		var e models.Effect
		var seconds int64
		err := rows.Scan(&e.ID, &e.PlayerID, &e.Type, &e.Value, &e.StartTime, &seconds, &e.SourceItem.ItemID, &e.SourceItem.Name)
		if err != nil {
			return err
		}

		e.Duration = time.Duration(seconds) * time.Second
		byPlayer[e.PlayerID] = append(byPlayer[e.PlayerID], &e)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	now := time.Now()
	var stale []string
	for playerID, list := range byPlayer {
		ledger := s.effects.Ledger(playerID)
		s.watch(playerID, ledger)

		stale = append(stale, RebuildLedger(ledger, list, now)...)

		if err := s.playerService.UpdateMultipliers(ctx, playerID, ledger.Multipliers()); err != nil {
			utils.Logger.Warn("failed to reset multipliers on seed",
				zap.String("player_id", playerID),
				zap.Error(err),
			)
		}
	}

	for _, id := range stale {
		if err := s.DeleteEffect(ctx, id); err != nil {
			utils.Logger.Warn("failed to prune expired effect", zap.String("effect_id", id), zap.Error(err))
		}
	}

	return nil
}

// RebuildLedger replays persisted effects into a player's ledger.
// Effects already past their window are skipped and their ids returned
// for pruning; the rest keep their original start time, so they expire
// on schedule.
func RebuildLedger(ledger *effects.Ledger, list []*models.Effect, now time.Time) []string {
	var expired []string
	for _, e := range list {
		if e.Expired(now) {
			expired = append(expired, e.ID)
			continue
		}

		ledger.Activate(e)
	}

	return expired
}

// watch keeps the player row's multiplier columns synced with the
// ledger across activations and expiries.
func (s *EffectService) watch(playerID string, ledger *effects.Ledger) {
	ledger.OnChange(func(m models.RewardMultipliers) {
		// Expiry fires long after the request context is gone.
		if err := s.playerService.UpdateMultipliers(context.Background(), playerID, m); err != nil {
			utils.Logger.Warn("failed to persist multipliers",
				zap.String("player_id", playerID),
				zap.Error(err),
			)
		}
	})
}

func (s *EffectService) saveEffect(ctx context.Context, effect *models.Effect) error {
	query := `
		INSERT INTO player_effects (id, player_id, type, value, start_time, duration_seconds, item_id, item_name)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := s.db.Exec(ctx, query,
		effect.ID, effect.PlayerID, effect.Type, effect.Value,
		effect.StartTime, int64(effect.Duration/time.Second),
		effect.SourceItem.ItemID, effect.SourceItem.Name,
	)
	return err
}
