package models

import "time"

type BattleStatus string

const (
	BattleStatusSearching BattleStatus = "searching"
	BattleStatusReady     BattleStatus = "ready"
	BattleStatusActive    BattleStatus = "active"
	BattleStatusCompleted BattleStatus = "completed"
	BattleStatusError     BattleStatus = "error"
)

type Question struct {
	ID                 string   `json:"id"`
	Text               string   `json:"text"`
	Answers            []string `json:"answers"`
	CorrectAnswerIndex int      `json:"correct_answer_index"`
	Category           string   `json:"category,omitempty"`
	Difficulty         string   `json:"difficulty,omitempty"`
}

// Valid reports whether a question from the pool is playable. Malformed
// rows are discarded at fetch time, never surfaced to a session.
func (q *Question) Valid() bool {
	return len(q.Answers) >= 4 && q.CorrectAnswerIndex >= 0 && q.CorrectAnswerIndex < len(q.Answers)
}

type BattleScore struct {
	Player   int `json:"player"`
	Opponent int `json:"opponent"`
}

// BattleSession is one in-progress or completed match.
type BattleSession struct {
	ID                   string         `json:"id"`
	PlayerID             string         `json:"player_id"`
	Status               BattleStatus   `json:"status"`
	Questions            []Question     `json:"questions"`
	CurrentQuestionIndex int            `json:"current_question_index"`
	TimeLeft             int            `json:"time_left"`
	TimePerQuestion      int            `json:"time_per_question"`
	Score                BattleScore    `json:"score"`
	PlayerAnswers        []bool         `json:"player_answers"`
	TimeSpent            []float64      `json:"time_spent"`
	Rewards              *BattleRewards `json:"rewards,omitempty"`
	LastError            string         `json:"last_error,omitempty"`
	StartedAt            time.Time      `json:"started_at"`
	SavedAt              time.Time      `json:"saved_at,omitempty"`
}

func (s *BattleSession) CurrentQuestion() *Question {
	if s.CurrentQuestionIndex < 0 || s.CurrentQuestionIndex >= len(s.Questions) {
		return nil
	}

	return &s.Questions[s.CurrentQuestionIndex]
}

func (s *BattleSession) IsVictory() bool {
	return s.Score.Player > s.Score.Opponent
}

// BattleRewards is the terminal bundle attached to a completed session.
type BattleRewards struct {
	XP             int      `json:"xp"`
	Coins          int      `json:"coins"`
	StreakBonus    int      `json:"streak_bonus"`
	TimeBonus      int      `json:"time_bonus"`
	AchievementIDs []string `json:"achievement_ids,omitempty"`
}

type BattleResults struct {
	SessionID      string    `json:"session_id"`
	PlayerID       string    `json:"player_id"`
	IsVictory      bool      `json:"is_victory"`
	Score          int       `json:"score"`
	OpponentScore  int       `json:"opponent_score"`
	CorrectAnswers int       `json:"correct_answers"`
	TotalQuestions int       `json:"total_questions"`
	AverageTime    float64   `json:"average_time"`
	CompletedAt    time.Time `json:"completed_at"`
}

// BattleStats is the persisted per-player aggregate. AverageScore is a
// running weighted average across TotalBattles.
type BattleStats struct {
	PlayerID         string  `json:"player_id"`
	TotalBattles     int     `json:"total_battles"`
	Wins             int     `json:"wins"`
	Losses           int     `json:"losses"`
	WinStreak        int     `json:"win_streak"`
	HighestStreak    int     `json:"highest_streak"`
	TotalXPEarned    int     `json:"total_xp_earned"`
	TotalCoinsEarned int     `json:"total_coins_earned"`
	AverageScore     float64 `json:"average_score"`
}

const BattleHistoryCap = 50

type BattleHistoryEntry struct {
	ID            string    `json:"id"`
	PlayerID      string    `json:"player_id"`
	IsVictory     bool      `json:"is_victory"`
	Score         int       `json:"score"`
	OpponentScore int       `json:"opponent_score"`
	XPEarned      int       `json:"xp_earned"`
	CoinsEarned   int       `json:"coins_earned"`
	PlayedAt      time.Time `json:"played_at"`
}
