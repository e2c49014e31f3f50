package service

import (
	"context"

	"github.com/harshitsingh2007/GNDEC-LEARN-NOVA-sub001/internal/model"
)

// QuestionBank is the battle engine's view of question persistence.
// Implemented by repository.QuestionRepository.
type QuestionBank interface {
	FindByTags(tags []string, qType model.QuestionType) ([]model.Question, error)
	InsertMany(questions []model.Question) error
}

// GenerationSpec describes one combined synthesis request: how many questions
// of each type to produce and which tags they must carry.
type GenerationSpec struct {
	MCQCount      int
	FreeTextCount int
	Tags          []string
}

// GradingItem is one free-text answer to grade against its guidelines.
type GradingItem struct {
	QuestionID string
	Question   string
	Guidelines string
	Answer     string
}

// GradingVerdict is the grader's structured judgement for one answer.
type GradingVerdict struct {
	QuestionID string `json:"questionId"`
	IsCorrect  bool   `json:"isCorrect"`
	Points     int    `json:"points"`
	Feedback   string `json:"feedback"`
}

// ContentGenerator is the external reasoning service used to synthesize
// missing questions and to grade free-text answers. Calls block for seconds
// and may fail; callers degrade gracefully. Implemented by AIService.
type ContentGenerator interface {
	GenerateQuestions(ctx context.Context, spec GenerationSpec) ([]model.Question, error)
	GradeFreeText(ctx context.Context, items []GradingItem) ([]GradingVerdict, error)
}

// BattleStore persists battles. Update must be guarded by the battle's
// optimistic version and report util.ErrConcurrentModification on a stale
// write. Implemented by repository.BattleRepository.
type BattleStore interface {
	Create(battle *model.Battle) error
	FindByID(id string) (*model.Battle, error)
	FindByJoinCode(code string) (*model.Battle, error)
	Update(battle *model.Battle) error
	List(limit int) ([]model.Battle, error)
	JoinCodeExists(code string) (bool, error)
}

// AccountLedger is the external account collaborator: XP awards and durable
// per-user battle history. Implemented by UserService.
type AccountLedger interface {
	AwardExperience(userID uint, amount int) error
	AppendHistory(entry *model.BattleHistory) error
}
