package config

import (
	"context"
	"encoding/json"

	"github.com/ahmetkoprulu/rtqb/common/data"
	"github.com/ahmetkoprulu/rtqb/models"
	"github.com/jackc/pgx/v5"
)

var gameConfig *models.GameConfig

// GetGameConfig returns the loaded remote config, falling back to the
// compiled-in defaults when none was loaded.
func GetGameConfig() *models.GameConfig {
	if gameConfig == nil {
		return models.DefaultGameConfig()
	}

	return gameConfig
}

func LoadGameConfig(db *data.PgDbContext) error {
	query := `
		SELECT value
		FROM remote_configs
		WHERE name = 'game' AND version = 0
	`

	var value []byte
	err := db.QueryRow(context.Background(), query).Scan(&value)
	if err == pgx.ErrNoRows {
		gameConfig = models.DefaultGameConfig()
		return nil
	} else if err != nil {
		return err
	}

	cfg := models.DefaultGameConfig()
	if err := json.Unmarshal(value, cfg); err != nil {
		return err
	}

	gameConfig = cfg
	return nil
}

// SetGameConfig overrides the loaded config. Used by tests.
func SetGameConfig(cfg *models.GameConfig) {
	gameConfig = cfg
}
