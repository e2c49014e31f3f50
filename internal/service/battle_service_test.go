package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/harshitsingh2007/GNDEC-LEARN-NOVA-sub001/internal/config"
	"github.com/harshitsingh2007/GNDEC-LEARN-NOVA-sub001/internal/model"
	"github.com/harshitsingh2007/GNDEC-LEARN-NOVA-sub001/internal/service"
	"github.com/harshitsingh2007/GNDEC-LEARN-NOVA-sub001/internal/util"
)

var testBattleConfig = config.BattleConfig{
	QuestionCount:     4,
	PointsPerQuestion: 10,
	XPPerCorrect:      5,
	DurationMinutes:   10,
}

// fixture wires a battle service, evaluator and collaborators over a bank of
// four known questions: two fixed-choice, two free-text, all tagged "general".
type fixture struct {
	battles   *service.BattleService
	evaluator *service.BattleEvaluator
	gen       *fakeGenerator
	ledger    *fakeLedger
}

func newFixture() *fixture {
	m1 := model.Question{
		Text:          "What is the capital of France?",
		Type:          model.QuestionMCQ,
		Options:       []string{"Paris", "London", "Berlin", "Madrid"},
		CorrectAnswer: "Paris",
		Category:      "geography",
		Difficulty:    "easy",
		Tags:          []string{"general", "geography"},
	}
	m1.ID = "m1"
	m2 := model.Question{
		Text:          "Which keyword declares a variable in Go?",
		Type:          model.QuestionMCQ,
		Options:       []string{"var", "let", "def", "dim"},
		CorrectAnswer: "var",
		Category:      "programming",
		Difficulty:    "easy",
		Tags:          []string{"general"},
	}
	m2.ID = "m2"
	t1 := model.Question{
		Text:              "Explain what a channel is used for.",
		Type:              model.QuestionFreeText,
		GradingGuidelines: "Award credit for communication between goroutines.",
		Category:          "programming",
		Difficulty:        "medium",
		Tags:              []string{"general"},
	}
	t1.ID = "t1"
	t2 := model.Question{
		Text:              "Explain what defer does.",
		Type:              model.QuestionFreeText,
		GradingGuidelines: "Award credit for delayed execution at function return.",
		Category:          "programming",
		Difficulty:        "medium",
		Tags:              []string{"general"},
	}
	t2.ID = "t2"

	bank := &fakeBank{questions: []model.Question{m1, m2, t1, t2}}
	gen := &fakeGenerator{
		gradeFunc: func(items []service.GradingItem) ([]service.GradingVerdict, error) {
			verdicts := make([]service.GradingVerdict, 0, len(items))
			for _, item := range items {
				v := service.GradingVerdict{QuestionID: item.QuestionID, Feedback: "insufficient detail"}
				if item.Answer == "good answer" {
					v.IsCorrect = true
					v.Points = 7
					v.Feedback = "covers the key points"
				}
				verdicts = append(verdicts, v)
			}
			return verdicts, nil
		},
	}
	ledger := newFakeLedger()

	assembler := service.NewBattleAssembler(bank, gen)
	battles := service.NewBattleService(newFakeStore(), assembler, testBattleConfig, nil)
	evaluator := service.NewBattleEvaluator(battles, gen, ledger, testBattleConfig)

	return &fixture{battles: battles, evaluator: evaluator, gen: gen, ledger: ledger}
}

func (f *fixture) create(t *testing.T) *model.Battle {
	t.Helper()
	battle, err := f.battles.CreateBattle(context.Background(), 1, "Alice", service.CreateBattleRequest{
		Name: "Friday quiz",
		Tags: []string{"general"},
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	return battle
}

func TestCreateBattleStartsWaiting(t *testing.T) {
	f := newFixture()
	battle := f.create(t)

	if battle.Status != model.BattleWaiting {
		t.Fatalf("expected waiting status, got %s", battle.Status)
	}
	if len(battle.Players) != 1 || battle.Players[0].UserID != 1 {
		t.Fatalf("expected the creator as sole player, got %+v", battle.Players)
	}
	if len(battle.JoinCode) != 6 {
		t.Fatalf("expected a 6 character join code, got %q", battle.JoinCode)
	}
	if len(battle.Questions) != 4 {
		t.Fatalf("expected 4 questions, got %d", len(battle.Questions))
	}
}

// collidingStore reports every candidate join code as taken.
type collidingStore struct {
	*fakeStore
}

func (s *collidingStore) JoinCodeExists(code string) (bool, error) {
	return true, nil
}

func TestCreateBattleFailsWhenJoinCodesCollide(t *testing.T) {
	bank := &fakeBank{questions: []model.Question{{
		Text:          "What is the capital of France?",
		Type:          model.QuestionMCQ,
		Options:       []string{"Paris", "London", "Berlin", "Madrid"},
		CorrectAnswer: "Paris",
		Tags:          []string{"general"},
	}}}
	assembler := service.NewBattleAssembler(bank, &fakeGenerator{})
	battles := service.NewBattleService(&collidingStore{newFakeStore()}, assembler, testBattleConfig, nil)

	_, err := battles.CreateBattle(context.Background(), 1, "Alice", service.CreateBattleRequest{
		Name: "Friday quiz",
		Tags: []string{"general"},
	})
	if !errors.Is(err, util.ErrJoinCodeExhausted) {
		t.Fatalf("expected ErrJoinCodeExhausted, got %v", err)
	}
}

func TestJoinSecondPlayerStartsBattle(t *testing.T) {
	f := newFixture()
	battle := f.create(t)

	view, err := f.battles.JoinBattle(2, "Bob", battle.JoinCode)
	if err != nil {
		t.Fatalf("join failed: %v", err)
	}
	if view.Status != model.BattleInProgress {
		t.Fatalf("expected in_progress after second join, got %s", view.Status)
	}
	if len(view.Players) != 2 {
		t.Fatalf("expected 2 players, got %d", len(view.Players))
	}
	for _, q := range view.Questions {
		if q.CorrectAnswer != "" || q.GradingGuidelines != "" {
			t.Fatalf("answer key leaked to client view: %+v", q)
		}
	}
}

func TestRejoinIsIdempotent(t *testing.T) {
	f := newFixture()
	battle := f.create(t)

	if _, err := f.battles.JoinBattle(2, "Bob", battle.JoinCode); err != nil {
		t.Fatalf("first join failed: %v", err)
	}
	view, err := f.battles.JoinBattle(2, "Bob", battle.JoinCode)
	if err != nil {
		t.Fatalf("rejoin must succeed, got %v", err)
	}
	if len(view.Players) != 2 {
		t.Fatalf("rejoin must not add a player, got %d players", len(view.Players))
	}
	if view.Status != model.BattleInProgress {
		t.Fatalf("rejoin must not change status, got %s", view.Status)
	}
}

func TestThirdPlayerIsRejected(t *testing.T) {
	f := newFixture()
	battle := f.create(t)

	if _, err := f.battles.JoinBattle(2, "Bob", battle.JoinCode); err != nil {
		t.Fatalf("join failed: %v", err)
	}
	_, err := f.battles.JoinBattle(3, "Carol", battle.JoinCode)
	if !errors.Is(err, util.ErrBattleFull) {
		t.Fatalf("expected ErrBattleFull, got %v", err)
	}
}

func TestJoinUnknownCode(t *testing.T) {
	f := newFixture()
	f.create(t)

	_, err := f.battles.JoinBattle(2, "Bob", "ZZZZZZ")
	if !errors.Is(err, util.ErrBattleNotFound) {
		t.Fatalf("expected ErrBattleNotFound, got %v", err)
	}
}

func TestListBattles(t *testing.T) {
	f := newFixture()
	battle := f.create(t)

	summaries, err := f.battles.ListBattles()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(summaries) != 1 {
		t.Fatalf("expected 1 battle, got %d", len(summaries))
	}
	if summaries[0].ID != battle.ID || summaries[0].PlayerCount != 1 {
		t.Fatalf("unexpected summary: %+v", summaries[0])
	}
}

func TestJoinPreservesQuestionOrder(t *testing.T) {
	f := newFixture()
	battle := f.create(t)

	view, err := f.battles.JoinBattle(2, "Bob", battle.JoinCode)
	if err != nil {
		t.Fatalf("join failed: %v", err)
	}
	if len(view.Questions) != len(battle.Questions) {
		t.Fatalf("question count changed on join: %d vs %d", len(view.Questions), len(battle.Questions))
	}
	for i := range battle.Questions {
		if view.Questions[i].ID != battle.Questions[i].ID {
			t.Fatalf("question order diverged at %d: %s vs %s", i, view.Questions[i].ID, battle.Questions[i].ID)
		}
	}
}

func TestBattleViewStripsAnswers(t *testing.T) {
	f := newFixture()
	battle := f.create(t)

	view, err := f.battles.GetBattleView(battle.ID)
	if err != nil {
		t.Fatalf("get view failed: %v", err)
	}
	for _, q := range view.Questions {
		if q.CorrectAnswer != "" || q.GradingGuidelines != "" {
			t.Fatalf("answer key leaked: %+v", q)
		}
	}

	// The underlying record must keep the key for grading.
	stored, err := f.battles.GetBattle(battle.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	keyed := false
	for _, q := range stored.Questions {
		if q.CorrectAnswer != "" {
			keyed = true
		}
	}
	if !keyed {
		t.Fatal("stored battle lost its answer key")
	}
}
