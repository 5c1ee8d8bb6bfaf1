package battle

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/ahmetkoprulu/rtqb/common/utils"
	"github.com/ahmetkoprulu/rtqb/internal/effects"
	"github.com/ahmetkoprulu/rtqb/internal/rewards"
	"github.com/ahmetkoprulu/rtqb/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrBattleNotActive      = errors.New("battle_not_active")
	ErrAlreadyAnswered      = errors.New("question_already_answered")
	ErrQuestionOutOfRange   = errors.New("question_index_out_of_range")
	ErrBattleInProgress     = errors.New("battle_already_in_progress")
	ErrInsufficientQuestions = errors.New("insufficient_questions")
)

type MessageType string

const (
	MessageBattleReady     MessageType = "battle_ready"
	MessageBattleStart     MessageType = "battle_start"
	MessageTick            MessageType = "tick"
	MessageQuestionAdvance MessageType = "question_advance"
	MessageBattleCompleted MessageType = "battle_completed"
	MessageBattleError     MessageType = "battle_error"
)

type Message struct {
	Type      MessageType `json:"type"`
	Data      interface{} `json:"data"`
	Timestamp int64       `json:"timestamp"`
}

// QuestionSource supplies validated question pools.
type QuestionSource interface {
	FetchQuestions(ctx context.Context, count int, category, difficulty string) ([]models.Question, error)
}

// SessionStore persists in-flight session snapshots for crash/reload
// recovery.
type SessionStore interface {
	SaveSession(ctx context.Context, session *models.BattleSession) error
	ClearSession(ctx context.Context, playerID string) error
}

// ResultSink settles a completed battle: grants rewards, records stats
// and returns the terminal bundle attached to the session.
type ResultSink interface {
	CompleteBattle(ctx context.Context, session *models.BattleSession, results *models.BattleResults) (*models.BattleRewards, error)
}

// Engine owns the lifecycle of one battle session. All session
// mutations go through methods holding mu, so timer ticks and answer
// submissions apply in the order they are observed.
type Engine struct {
	mu      sync.Mutex
	session *models.BattleSession
	cfg     models.BattleConfig

	questions QuestionSource
	store     SessionStore
	sink      ResultSink
	ledger    *effects.Ledger

	initializing bool
	closed       bool
	cancelTicker context.CancelFunc

	messageChannel chan Message
}

func NewEngine(playerID string, cfg models.BattleConfig, questions QuestionSource, store SessionStore, sink ResultSink, ledger *effects.Ledger) *Engine {
	return &Engine{
		session: &models.BattleSession{
			ID:       uuid.New().String(),
			PlayerID: playerID,
			Status:   models.BattleStatusSearching,
		},
		cfg:            cfg,
		questions:      questions,
		store:          store,
		sink:           sink,
		ledger:         ledger,
		messageChannel: make(chan Message, 100),
	}
}

func (e *Engine) Messages() <-chan Message {
	return e.messageChannel
}

// Session returns a copy of the current session state.
func (e *Engine) Session() models.BattleSession {
	e.mu.Lock()
	defer e.mu.Unlock()

	snapshot := *e.session
	return snapshot
}

// Initialize fetches the question pool and seeds the session. It is a
// no-op when a battle is already initializing or past the searching
// state, guarding against double invocation.
func (e *Engine) Initialize(ctx context.Context, category, difficulty string) error {
	e.mu.Lock()
	if e.initializing || e.session.Status != models.BattleStatusSearching {
		e.mu.Unlock()
		return nil
	}
	e.initializing = true
	e.mu.Unlock()

	fetchCtx, cancel := context.WithTimeout(ctx, time.Duration(e.cfg.FetchTimeoutSec)*time.Second)
	defer cancel()

	questions, err := e.questions.FetchQuestions(fetchCtx, e.cfg.QuestionsPerBattle, category, difficulty)
	if err != nil {
		e.toError("failed to fetch questions: " + err.Error())
		return err
	}

	if len(questions) < e.cfg.QuestionsPerBattle {
		e.toError("not enough valid questions for a battle")
		return ErrInsufficientQuestions
	}

	e.mu.Lock()
	e.session.Questions = questions[:e.cfg.QuestionsPerBattle]
	e.session.CurrentQuestionIndex = 0
	e.session.TimePerQuestion = e.cfg.TimePerQuestion
	e.session.TimeLeft = e.questionTime()
	e.session.Score = models.BattleScore{Player: 0, Opponent: e.opponentScore()}
	e.session.PlayerAnswers = make([]bool, 0, e.cfg.QuestionsPerBattle)
	e.session.TimeSpent = make([]float64, 0, e.cfg.QuestionsPerBattle)
	e.session.StartedAt = time.Now()
	e.session.Status = models.BattleStatusReady
	e.initializing = false
	e.mu.Unlock()

	e.send(MessageBattleReady, e.Session())

	// Fixed, non-cancellable pause so the client can render the
	// get-ready transition.
	if e.cfg.ReadyDelayMs > 0 {
		time.Sleep(time.Duration(e.cfg.ReadyDelayMs) * time.Millisecond)
	}

	e.mu.Lock()
	if e.session.Status != models.BattleStatusReady {
		e.mu.Unlock()
		return nil
	}
	e.session.Status = models.BattleStatusActive
	e.mu.Unlock()

	e.send(MessageBattleStart, e.Session())
	return nil
}

// Run drives the per-second countdown until the session leaves the
// active state or ctx is cancelled.
func (e *Engine) Run(ctx context.Context) {
	tickCtx, cancel := context.WithCancel(ctx)

	e.mu.Lock()
	e.cancelTicker = cancel
	e.mu.Unlock()

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-tickCtx.Done():
			return
		case <-ticker.C:
			if !e.Tick() {
				return
			}
		}
	}
}

// Tick applies one countdown second. Returns false once the session is
// no longer active.
func (e *Engine) Tick() bool {
	e.mu.Lock()

	if e.session.Status != models.BattleStatusActive {
		e.mu.Unlock()
		return false
	}

	e.session.TimeLeft--
	if e.session.TimeLeft > 0 {
		timeLeft := e.session.TimeLeft
		e.mu.Unlock()
		e.send(MessageTick, map[string]int{"time_left": timeLeft})
		return true
	}

	// Countdown hit zero: the unanswered question counts as incorrect.
	e.session.PlayerAnswers = append(e.session.PlayerAnswers, false)
	e.session.TimeSpent = append(e.session.TimeSpent, float64(e.session.TimePerQuestion))
	return e.advanceLocked()
}

// SubmitAnswer evaluates the player's answer for the question at
// questionIndex. Submissions that race a timer auto-advance carry a
// stale index and are rejected once the session has moved on, so a
// question can never be credited twice.
func (e *Engine) SubmitAnswer(questionIndex, answerIndex int, timeSpent float64) (bool, error) {
	e.mu.Lock()

	if e.session.Status != models.BattleStatusActive {
		e.mu.Unlock()
		return false, ErrBattleNotActive
	}

	if questionIndex != e.session.CurrentQuestionIndex || len(e.session.PlayerAnswers) > questionIndex {
		e.mu.Unlock()
		return false, ErrAlreadyAnswered
	}

	question := e.session.CurrentQuestion()
	if question == nil {
		e.mu.Unlock()
		e.toError("current question index out of range")
		return false, ErrQuestionOutOfRange
	}

	if timeSpent < 0 {
		timeSpent = 0
	}

	correct := answerIndex == question.CorrectAnswerIndex
	e.session.PlayerAnswers = append(e.session.PlayerAnswers, correct)
	e.session.TimeSpent = append(e.session.TimeSpent, timeSpent)

	if correct {
		score := float64(rewards.QuestionScore(timeSpent))
		if e.ledger != nil {
			score *= e.ledger.ScoreBoost()
		}
		e.session.Score.Player += int(math.Round(score))
	}

	e.advanceLocked()
	return correct, nil
}

// advanceLocked moves to the next question or completes the battle.
// Callers hold mu; the lock is released before any IO.
func (e *Engine) advanceLocked() bool {
	e.session.CurrentQuestionIndex++

	if e.session.CurrentQuestionIndex >= len(e.session.Questions) {
		e.session.Status = models.BattleStatusCompleted
		results := e.resultsLocked()
		e.mu.Unlock()

		e.settle(results)
		return false
	}

	e.session.TimeLeft = e.questionTime()
	snapshot := *e.session
	e.mu.Unlock()

	e.send(MessageQuestionAdvance, snapshot)
	return true
}

func (e *Engine) resultsLocked() *models.BattleResults {
	correct := 0
	totalTime := 0.0
	for i, ok := range e.session.PlayerAnswers {
		if ok {
			correct++
		}
		totalTime += e.session.TimeSpent[i]
	}

	avg := 0.0
	if len(e.session.TimeSpent) > 0 {
		avg = totalTime / float64(len(e.session.TimeSpent))
	}

	return &models.BattleResults{
		SessionID:      e.session.ID,
		PlayerID:       e.session.PlayerID,
		IsVictory:      e.session.IsVictory(),
		Score:          e.session.Score.Player,
		OpponentScore:  e.session.Score.Opponent,
		CorrectAnswers: correct,
		TotalQuestions: len(e.session.Questions),
		AverageTime:    avg,
		CompletedAt:    time.Now(),
	}
}

// settle hands the terminal results to the sink and attaches the
// reward bundle. Settlement failures surface as logged errors, never
// as a state rollback.
func (e *Engine) settle(results *models.BattleResults) {
	e.stopTicker()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	bundle, err := e.sink.CompleteBattle(ctx, e.sessionRef(), results)
	if err != nil {
		utils.Logger.Error("failed to settle battle",
			zap.String("session_id", results.SessionID),
			zap.Error(err),
		)
	}

	e.mu.Lock()
	e.session.Rewards = bundle
	snapshot := *e.session
	e.mu.Unlock()

	if e.store != nil {
		if err := e.store.ClearSession(ctx, results.PlayerID); err != nil {
			utils.Logger.Warn("failed to clear battle session", zap.Error(err))
		}
	}

	e.send(MessageBattleCompleted, snapshot)
}

// toError drives the session into the terminal error state with a
// best-effort progress save.
func (e *Engine) toError(message string) {
	e.mu.Lock()
	e.session.Status = models.BattleStatusError
	e.session.LastError = message
	e.initializing = false
	snapshot := *e.session
	e.mu.Unlock()

	e.stopTicker()

	if e.store != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		snapshot.SavedAt = time.Now()
		if err := e.store.SaveSession(ctx, &snapshot); err != nil {
			utils.Logger.Warn("failed to save battle progress",
				zap.String("player_id", snapshot.PlayerID),
				zap.Error(err),
			)
		}
	}

	e.send(MessageBattleError, map[string]string{"message": message})
}

// Close stops the countdown and closes the message channel so
// consumers draining it terminate. Messages produced after Close are
// discarded instead of written to a torn-down session.
func (e *Engine) Close() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true
	close(e.messageChannel)
	e.mu.Unlock()

	e.stopTicker()
}

func (e *Engine) stopTicker() {
	e.mu.Lock()
	cancel := e.cancelTicker
	e.cancelTicker = nil
	e.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

func (e *Engine) questionTime() int {
	t := float64(e.cfg.TimePerQuestion)
	if e.ledger != nil {
		t *= e.ledger.TimeBoost()
	}

	return int(math.Round(t))
}

// opponentScore picks the simulated opponent's fixed score for this
// session. The opponent is never scored per question.
func (e *Engine) opponentScore() int {
	if e.cfg.OpponentScoreMax <= e.cfg.OpponentScoreMin {
		return e.cfg.OpponentScoreMin
	}

	return e.cfg.OpponentScoreMin + rand.Intn(e.cfg.OpponentScoreMax-e.cfg.OpponentScoreMin)
}

func (e *Engine) sessionRef() *models.BattleSession {
	e.mu.Lock()
	defer e.mu.Unlock()

	snapshot := *e.session
	return &snapshot
}

func (e *Engine) send(messageType MessageType, data interface{}) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return
	}

	select {
	case e.messageChannel <- Message{Type: messageType, Data: data, Timestamp: time.Now().Unix()}:
	default:
		// Slow consumer; drop instead of blocking the game loop.
	}
}
