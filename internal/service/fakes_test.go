package service_test

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/harshitsingh2007/GNDEC-LEARN-NOVA-sub001/internal/model"
	"github.com/harshitsingh2007/GNDEC-LEARN-NOVA-sub001/internal/service"
	"github.com/harshitsingh2007/GNDEC-LEARN-NOVA-sub001/internal/util"
)

// fakeBank is an in-memory QuestionBank.
type fakeBank struct {
	questions []model.Question
	inserted  []model.Question
}

func (b *fakeBank) FindByTags(tags []string, qType model.QuestionType) ([]model.Question, error) {
	var out []model.Question
	for _, q := range b.questions {
		if q.Type != qType {
			continue
		}
		for _, want := range tags {
			if containsTag(q.Tags, want) {
				out = append(out, q)
				break
			}
		}
	}
	return out, nil
}

func (b *fakeBank) InsertMany(questions []model.Question) error {
	b.inserted = append(b.inserted, questions...)
	b.questions = append(b.questions, questions...)
	return nil
}

func containsTag(tags []string, want string) bool {
	for _, t := range tags {
		if t == want {
			return true
		}
	}
	return false
}

// fakeGenerator scripts ContentGenerator behavior per test.
type fakeGenerator struct {
	genFunc   func(spec service.GenerationSpec) ([]model.Question, error)
	gradeFunc func(items []service.GradingItem) ([]service.GradingVerdict, error)
	genSpecs  []service.GenerationSpec
}

func (g *fakeGenerator) GenerateQuestions(ctx context.Context, spec service.GenerationSpec) ([]model.Question, error) {
	g.genSpecs = append(g.genSpecs, spec)
	if g.genFunc == nil {
		return nil, nil
	}
	return g.genFunc(spec)
}

func (g *fakeGenerator) GradeFreeText(ctx context.Context, items []service.GradingItem) ([]service.GradingVerdict, error) {
	if g.gradeFunc == nil {
		return nil, util.ErrGradingParseFailure
	}
	return g.gradeFunc(items)
}

// fakeStore is an in-memory BattleStore with the same optimistic version
// contract as the database-backed repository.
type fakeStore struct {
	mu      sync.Mutex
	battles map[string]*model.Battle
}

func newFakeStore() *fakeStore {
	return &fakeStore{battles: make(map[string]*model.Battle)}
}

func (s *fakeStore) Create(battle *model.Battle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if battle.ID == "" {
		battle.ID = model.GenerateUUID()
	}
	s.battles[battle.ID] = cloneBattle(battle)
	return nil
}

func (s *fakeStore) FindByID(id string) (*model.Battle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.battles[id]
	if !ok {
		return nil, util.ErrBattleNotFound
	}
	return cloneBattle(b), nil
}

func (s *fakeStore) FindByJoinCode(code string) (*model.Battle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range s.battles {
		if b.JoinCode == code {
			return cloneBattle(b), nil
		}
	}
	return nil, util.ErrBattleNotFound
}

func (s *fakeStore) Update(battle *model.Battle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.battles[battle.ID]
	if !ok {
		return util.ErrBattleNotFound
	}
	if stored.Version != battle.Version {
		return util.ErrConcurrentModification
	}
	battle.Version++
	s.battles[battle.ID] = cloneBattle(battle)
	return nil
}

func (s *fakeStore) List(limit int) ([]model.Battle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Battle
	for _, b := range s.battles {
		out = append(out, *cloneBattle(b))
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (s *fakeStore) JoinCodeExists(code string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range s.battles {
		if b.JoinCode == code {
			return true, nil
		}
	}
	return false, nil
}

func cloneBattle(b *model.Battle) *model.Battle {
	raw, _ := json.Marshal(b)
	var clone model.Battle
	json.Unmarshal(raw, &clone)
	clone.Version = b.Version
	return &clone
}

// fakeLedger records XP awards and history rows.
type fakeLedger struct {
	mu        sync.Mutex
	xp        map[uint]int
	histories []model.BattleHistory
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{xp: make(map[uint]int)}
}

func (l *fakeLedger) AwardExperience(userID uint, amount int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.xp[userID] += amount
	return nil
}

func (l *fakeLedger) AppendHistory(entry *model.BattleHistory) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.histories = append(l.histories, *entry)
	return nil
}
