package models

type Config struct {
	DatabaseURL  string
	DatabaseName string
	MqURL        string
	CacheURL     string
	ElasticUrl   string
	JWTSecret    string
	ServiceName  string
	ServerPort   string
}

// GameConfig is the remote-configurable tuning surface for battles and
// the reward economy. A row in remote_configs overrides the defaults.
type GameConfig struct {
	Battle  BattleConfig  `json:"battle"`
	Levels  LevelConfig   `json:"levels"`
	Rewards RewardsConfig `json:"rewards"`
}

type BattleConfig struct {
	QuestionsPerBattle int `json:"questions_per_battle"`
	TimePerQuestion    int `json:"time_per_question"` // seconds
	ReadyDelayMs       int `json:"ready_delay_ms"`
	FetchTimeoutSec    int `json:"fetch_timeout_sec"`
	OpponentScoreMin   int `json:"opponent_score_min"`
	OpponentScoreMax   int `json:"opponent_score_max"`
}

type LevelConfig struct {
	BaseXP       int     `json:"base_xp"`
	GrowthFactor float64 `json:"growth_factor"`
	MaxLevel     int     `json:"max_level"`
}

type RewardsConfig struct {
	VictoryXP            int     `json:"victory_xp"`
	VictoryCoins         int     `json:"victory_coins"`
	StreakBonusMultiplier float64 `json:"streak_bonus_multiplier"`
	TimeBonusMultiplier   float64 `json:"time_bonus_multiplier"`
	TimeBonusThreshold    float64 `json:"time_bonus_threshold"` // average seconds per answer
	LevelUpXPMultiplier   int     `json:"level_up_xp_multiplier"`
	LevelUpCoinMultiplier int     `json:"level_up_coin_multiplier"`
}

func DefaultGameConfig() *GameConfig {
	return &GameConfig{
		Battle: BattleConfig{
			QuestionsPerBattle: 10,
			TimePerQuestion:    30,
			ReadyDelayMs:       3000,
			FetchTimeoutSec:    20,
			OpponentScoreMin:   800,
			OpponentScoreMax:   1600,
		},
		Levels: LevelConfig{
			BaseXP:       100,
			GrowthFactor: 1.2,
			MaxLevel:     50,
		},
		Rewards: RewardsConfig{
			VictoryXP:             150,
			VictoryCoins:          75,
			StreakBonusMultiplier: 0.15,
			TimeBonusMultiplier:   0.25,
			TimeBonusThreshold:    15,
			LevelUpXPMultiplier:   50,
			LevelUpCoinMultiplier: 100,
		},
	}
}
