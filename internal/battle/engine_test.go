package battle

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/ahmetkoprulu/rtqb/common/utils"
	"github.com/ahmetkoprulu/rtqb/internal/effects"
	"github.com/ahmetkoprulu/rtqb/models"
)

func init() {
	utils.InitLogger()
}

type fakeQuestionSource struct {
	questions []models.Question
	err       error
}

func (f *fakeQuestionSource) FetchQuestions(ctx context.Context, count int, category, difficulty string) ([]models.Question, error) {
	if f.err != nil {
		return nil, f.err
	}

	return f.questions, nil
}

type fakeStore struct {
	mu      sync.Mutex
	saved   *models.BattleSession
	cleared bool
	saveErr error
}

func (f *fakeStore) SaveSession(ctx context.Context, session *models.BattleSession) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saved = session
	return f.saveErr
}

func (f *fakeStore) ClearSession(ctx context.Context, playerID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cleared = true
	return nil
}

type fakeSink struct {
	mu      sync.Mutex
	results *models.BattleResults
	calls   int
}

func (f *fakeSink) CompleteBattle(ctx context.Context, session *models.BattleSession, results *models.BattleResults) (*models.BattleRewards, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.results = results
	f.calls++
	return &models.BattleRewards{XP: results.Score / 10, Coins: results.Score / 20}, nil
}

func testQuestions(n int) []models.Question {
	questions := make([]models.Question, n)
	for i := range questions {
		questions[i] = models.Question{
			ID:                 fmt.Sprintf("q%d", i),
			Text:               fmt.Sprintf("question %d", i),
			Answers:            []string{"a", "b", "c", "d"},
			CorrectAnswerIndex: i % 4,
		}
	}

	return questions
}

func testBattleConfig() models.BattleConfig {
	return models.BattleConfig{
		QuestionsPerBattle: 10,
		TimePerQuestion:    30,
		ReadyDelayMs:       0,
		FetchTimeoutSec:    1,
		OpponentScoreMin:   1500,
		OpponentScoreMax:   1500,
	}
}

func newTestEngine(t *testing.T, cfg models.BattleConfig) (*Engine, *fakeStore, *fakeSink) {
	t.Helper()

	store := &fakeStore{}
	sink := &fakeSink{}
	source := &fakeQuestionSource{questions: testQuestions(cfg.QuestionsPerBattle)}
	engine := NewEngine("p1", cfg, source, store, sink, nil)

	if err := engine.Initialize(context.Background(), "", ""); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	return engine, store, sink
}

func TestPerfectBattleScoresTwoThousand(t *testing.T) {
	engine, store, sink := newTestEngine(t, testBattleConfig())

	for i := 0; i < 10; i++ {
		correct, err := engine.SubmitAnswer(i, i%4, 0)
		if err != nil {
			t.Fatalf("SubmitAnswer(%d): %v", i, err)
		}
		if !correct {
			t.Fatalf("answer %d should be correct", i)
		}
	}

	session := engine.Session()
	if session.Status != models.BattleStatusCompleted {
		t.Fatalf("status = %s, want completed", session.Status)
	}
	if session.Score.Player != 2000 {
		t.Errorf("player score = %d, want 2000", session.Score.Player)
	}
	if !session.IsVictory() {
		t.Errorf("2000 vs %d should be a victory", session.Score.Opponent)
	}
	if session.Rewards == nil {
		t.Fatal("completed session should carry rewards")
	}

	if sink.calls != 1 {
		t.Errorf("sink called %d times, want 1", sink.calls)
	}
	if sink.results.CorrectAnswers != 10 || sink.results.AverageTime != 0 {
		t.Errorf("results = %+v", sink.results)
	}
	if !store.cleared {
		t.Error("completed battle should clear the saved session")
	}
}

func TestSubmitAnswerScoring(t *testing.T) {
	engine, _, _ := newTestEngine(t, testBattleConfig())

	// Correct at half window: 150. Wrong answer: no credit.
	if _, err := engine.SubmitAnswer(0, 0, 15); err != nil {
		t.Fatalf("SubmitAnswer: %v", err)
	}
	if correct, _ := engine.SubmitAnswer(1, 3, 0); correct {
		t.Error("wrong answer reported correct")
	}

	session := engine.Session()
	if session.Score.Player != 150 {
		t.Errorf("score = %d, want 150", session.Score.Player)
	}
	if len(session.PlayerAnswers) != 2 || session.PlayerAnswers[0] != true || session.PlayerAnswers[1] != false {
		t.Errorf("answers = %v", session.PlayerAnswers)
	}
	if session.CurrentQuestionIndex != 2 {
		t.Errorf("index = %d, want 2", session.CurrentQuestionIndex)
	}
	if session.TimeLeft != session.TimePerQuestion {
		t.Errorf("time left = %d, want reset to %d", session.TimeLeft, session.TimePerQuestion)
	}
}

func TestStaleSubmitRejected(t *testing.T) {
	engine, _, _ := newTestEngine(t, testBattleConfig())

	if _, err := engine.SubmitAnswer(0, 0, 5); err != nil {
		t.Fatalf("SubmitAnswer: %v", err)
	}

	// Late click for the question the session already moved past.
	if _, err := engine.SubmitAnswer(0, 0, 5); !errors.Is(err, ErrAlreadyAnswered) {
		t.Errorf("err = %v, want ErrAlreadyAnswered", err)
	}

	session := engine.Session()
	if session.Score.Player != 200 {
		t.Errorf("score = %d, want 200 (single credit)", session.Score.Player)
	}
}

func TestTimerAutoAdvance(t *testing.T) {
	cfg := testBattleConfig()
	cfg.TimePerQuestion = 2
	engine, _, _ := newTestEngine(t, cfg)

	// Run the first question's countdown to zero.
	engine.Tick()
	engine.Tick()

	session := engine.Session()
	if session.CurrentQuestionIndex != 1 {
		t.Fatalf("index = %d, want 1 after timeout", session.CurrentQuestionIndex)
	}
	if len(session.PlayerAnswers) != 1 || session.PlayerAnswers[0] {
		t.Errorf("timed-out question should count as incorrect: %v", session.PlayerAnswers)
	}
	if session.Score.Player != 0 {
		t.Errorf("score = %d, want 0", session.Score.Player)
	}
}

func TestTimeoutOnLastQuestionCompletes(t *testing.T) {
	cfg := testBattleConfig()
	cfg.QuestionsPerBattle = 2
	cfg.TimePerQuestion = 1
	store := &fakeStore{}
	sink := &fakeSink{}
	source := &fakeQuestionSource{questions: testQuestions(2)}
	engine := NewEngine("p1", cfg, source, store, sink, nil)
	if err := engine.Initialize(context.Background(), "", ""); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	if cont := engine.Tick(); !cont {
		t.Fatal("first timeout should keep the battle running")
	}
	if cont := engine.Tick(); cont {
		t.Fatal("timeout on the last question should complete the battle")
	}

	session := engine.Session()
	if session.Status != models.BattleStatusCompleted {
		t.Fatalf("status = %s, want completed", session.Status)
	}
	if session.IsVictory() {
		t.Error("zero score should lose to the opponent")
	}
}

func TestInsufficientQuestions(t *testing.T) {
	cfg := testBattleConfig()
	store := &fakeStore{}
	sink := &fakeSink{}
	source := &fakeQuestionSource{questions: testQuestions(4)}
	engine := NewEngine("p1", cfg, source, store, sink, nil)

	err := engine.Initialize(context.Background(), "", "")
	if !errors.Is(err, ErrInsufficientQuestions) {
		t.Fatalf("err = %v, want ErrInsufficientQuestions", err)
	}

	session := engine.Session()
	if session.Status != models.BattleStatusError {
		t.Errorf("status = %s, want error", session.Status)
	}
	if session.LastError == "" {
		t.Error("expected a descriptive error message")
	}
	if store.saved == nil {
		t.Error("error entry should best-effort save the session")
	}
}

func TestFetchFailureTransitionsToError(t *testing.T) {
	cfg := testBattleConfig()
	source := &fakeQuestionSource{err: errors.New("connection refused")}
	engine := NewEngine("p1", cfg, source, &fakeStore{}, &fakeSink{}, nil)

	if err := engine.Initialize(context.Background(), "", ""); err == nil {
		t.Fatal("expected fetch error")
	}

	if status := engine.Session().Status; status != models.BattleStatusError {
		t.Errorf("status = %s, want error", status)
	}
}

func TestSubmitBeforeActiveRejected(t *testing.T) {
	cfg := testBattleConfig()
	source := &fakeQuestionSource{questions: testQuestions(10)}
	engine := NewEngine("p1", cfg, source, &fakeStore{}, &fakeSink{}, nil)

	if _, err := engine.SubmitAnswer(0, 0, 0); !errors.Is(err, ErrBattleNotActive) {
		t.Errorf("err = %v, want ErrBattleNotActive", err)
	}
}

func TestInitializeIsIdempotent(t *testing.T) {
	engine, _, _ := newTestEngine(t, testBattleConfig())

	// Session is active; a second initialize must be a no-op.
	if err := engine.Initialize(context.Background(), "", ""); err != nil {
		t.Fatalf("re-initialize: %v", err)
	}

	session := engine.Session()
	if session.Status != models.BattleStatusActive {
		t.Errorf("status = %s, want active", session.Status)
	}
	if session.CurrentQuestionIndex != 0 {
		t.Errorf("index = %d, want 0", session.CurrentQuestionIndex)
	}
}

func TestScoreBoostScalesQuestionScore(t *testing.T) {
	cfg := testBattleConfig()
	ledger := effects.NewLedger("p1")
	ledger.Activate(&models.Effect{Type: models.EffectScoreBoost, Value: 1.5, Duration: time.Hour})

	source := &fakeQuestionSource{questions: testQuestions(10)}
	engine := NewEngine("p1", cfg, source, &fakeStore{}, &fakeSink{}, ledger)
	if err := engine.Initialize(context.Background(), "", ""); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	if _, err := engine.SubmitAnswer(0, 0, 0); err != nil {
		t.Fatalf("SubmitAnswer: %v", err)
	}

	if score := engine.Session().Score.Player; score != 300 {
		t.Errorf("boosted score = %d, want 300", score)
	}
}

func TestTimeBoostExtendsCountdown(t *testing.T) {
	cfg := testBattleConfig()
	ledger := effects.NewLedger("p1")
	ledger.Activate(&models.Effect{Type: models.EffectTimeBoost, Value: 1.2, Duration: time.Hour})

	source := &fakeQuestionSource{questions: testQuestions(10)}
	engine := NewEngine("p1", cfg, source, &fakeStore{}, &fakeSink{}, ledger)
	if err := engine.Initialize(context.Background(), "", ""); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	if timeLeft := engine.Session().TimeLeft; timeLeft != 36 {
		t.Errorf("time left = %d, want 36", timeLeft)
	}
}

func TestManagerRejectsConcurrentBattles(t *testing.T) {
	cfg := testBattleConfig()
	cfg.ReadyDelayMs = 50
	source := &fakeQuestionSource{questions: testQuestions(10)}
	manager := NewManager(cfg, source, &fakeStore{}, &fakeSink{}, nil)

	if _, err := manager.StartBattle(context.Background(), "p1", "", ""); err != nil {
		t.Fatalf("StartBattle: %v", err)
	}

	if _, err := manager.StartBattle(context.Background(), "p1", "", ""); !errors.Is(err, ErrBattleInProgress) {
		t.Errorf("err = %v, want ErrBattleInProgress", err)
	}

	manager.Dismiss(context.Background(), "p1")
	if _, ok := manager.Engine("p1"); ok {
		t.Error("dismiss should remove the engine")
	}
}
