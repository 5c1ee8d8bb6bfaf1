package services

import (
	"context"

	"github.com/ahmetkoprulu/rtqb/common/data"
	"github.com/ahmetkoprulu/rtqb/internal/battle"
	"github.com/ahmetkoprulu/rtqb/models"
)

// QuestionService serves validated question pools for battles.
// Implements battle.QuestionSource.
type QuestionService struct {
	db *data.PgDbContext
}

func NewQuestionService(db *data.PgDbContext) *QuestionService {
	return &QuestionService{db: db}
}

// FetchQuestions returns count playable questions. Malformed rows
// (fewer than 4 answers or an out-of-range correct index) are excluded
// in the query itself, so they never crowd out valid ones from the
// random draw. Fails when the pool cannot cover the request.
func (s *QuestionService) FetchQuestions(ctx context.Context, count int, category, difficulty string) ([]models.Question, error) {
	query := `
		SELECT id, text, answers, correct_answer_index, category, difficulty
		FROM questions
		WHERE ($1 = '' OR category = $1)
		AND ($2 = '' OR difficulty = $2)
		AND jsonb_array_length(answers) >= 4
		AND correct_answer_index >= 0
		AND correct_answer_index < jsonb_array_length(answers)
		ORDER BY random()
		LIMIT $3
	`

	rows, err := s.db.Query(ctx, query, category, difficulty, count)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	questions := make([]models.Question, 0, count)
	for rows.Next() {
		var q models.Question
		err := rows.Scan(&q.ID, &q.Text, &q.Answers, &q.CorrectAnswerIndex, &q.Category, &q.Difficulty)
		if err != nil {
			return nil, err
		}

		if !q.Valid() {
			continue
		}

		questions = append(questions, q)
		if len(questions) == count {
			break
		}
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(questions) < count {
		return nil, battle.ErrInsufficientQuestions
	}

	return questions, nil
}
