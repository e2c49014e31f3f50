package service

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/harshitsingh2007/GNDEC-LEARN-NOVA-sub001/internal/config"
	"github.com/harshitsingh2007/GNDEC-LEARN-NOVA-sub001/internal/model"
	"github.com/harshitsingh2007/GNDEC-LEARN-NOVA-sub001/internal/util"
	"github.com/harshitsingh2007/GNDEC-LEARN-NOVA-sub001/pkg/logger"
	"github.com/harshitsingh2007/GNDEC-LEARN-NOVA-sub001/pkg/monitoring"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// Join codes avoid 0/O and 1/I so they survive being read out loud.
const joinCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
const joinCodeLength = 6

const analysisCacheTTL = time.Hour

// battleLocks hands out one mutex per battle id so join and evaluate on the
// same battle serialize while different battles stay independent.
type battleLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newBattleLocks() *battleLocks {
	return &battleLocks{locks: make(map[string]*sync.Mutex)}
}

func (l *battleLocks) acquire(id string) func() {
	l.mu.Lock()
	m, ok := l.locks[id]
	if !ok {
		m = &sync.Mutex{}
		l.locks[id] = m
	}
	l.mu.Unlock()
	m.Lock()
	return m.Unlock
}

// BattleService owns the match state machine: waiting -> in_progress ->
// completed, forward only.
type BattleService struct {
	store     BattleStore
	assembler *BattleAssembler
	cfg       config.BattleConfig
	locks     *battleLocks
	rdb       *redis.Client // optional analysis cache
}

func NewBattleService(store BattleStore, assembler *BattleAssembler, cfg config.BattleConfig, rdb *redis.Client) *BattleService {
	return &BattleService{
		store:     store,
		assembler: assembler,
		cfg:       cfg,
		locks:     newBattleLocks(),
		rdb:       rdb,
	}
}

type CreateBattleRequest struct {
	Name string   `json:"name" binding:"required"`
	Tags []string `json:"tags" binding:"required"`
}

// BattleView is the client-facing shape of a battle: every question has its
// grading-only fields stripped.
type BattleView struct {
	ID              string                 `json:"id"`
	JoinCode        string                 `json:"joinCode"`
	Name            string                 `json:"name"`
	Tags            []string               `json:"tags"`
	Status          model.BattleStatus     `json:"status"`
	DurationMinutes int                    `json:"durationMinutes"`
	Players         []model.BattlePlayer   `json:"players"`
	Questions       []model.BattleQuestion `json:"questions"`
}

type BattleSummary struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	JoinCode    string             `json:"joinCode"`
	Tags        []string           `json:"tags"`
	Status      model.BattleStatus `json:"status"`
	PlayerCount int                `json:"playerCount"`
	CreatedAt   time.Time          `json:"createdAt"`
}

// CreateBattle assembles the question set and persists a new battle in
// waiting state with the creator as its first player. The configured question
// count is split evenly between the two types; a remaining odd question goes
// to the fixed-choice side.
func (s *BattleService) CreateBattle(ctx context.Context, creatorID uint, creatorName string, req CreateBattleRequest) (*model.Battle, error) {
	total := s.cfg.QuestionCount
	mcqQuota := (total + 1) / 2
	textQuota := total / 2

	questions, err := s.assembler.Assemble(ctx, req.Tags, mcqQuota, textQuota)
	if err != nil {
		return nil, err
	}

	battle := &model.Battle{
		Name:            req.Name,
		Tags:            NormalizeTags(req.Tags),
		CreatorID:       creatorID,
		DurationMinutes: s.cfg.DurationMinutes,
		Questions:       questions,
		Players: []model.BattlePlayer{
			newPlayer(creatorID, creatorName),
		},
		Status:  model.BattleWaiting,
		Version: 1,
	}

	// Join codes are random; retry a handful of times on the rare collision.
	for attempt := 0; attempt < 5; attempt++ {
		code := newJoinCode()
		exists, err := s.store.JoinCodeExists(code)
		if err != nil {
			return nil, err
		}
		if !exists {
			battle.JoinCode = code
			break
		}
	}
	if battle.JoinCode == "" {
		logger.Log.Error("join code allocation exhausted", zap.Uint("creatorId", creatorID))
		return nil, util.ErrJoinCodeExhausted
	}

	if err := s.store.Create(battle); err != nil {
		return nil, err
	}
	monitoring.BattlesCreated.Inc()
	logger.Log.Info("battle created",
		zap.String("battleId", battle.ID),
		zap.Uint("creatorId", creatorID),
		zap.Int("questions", len(questions)))
	return battle, nil
}

// JoinBattle handles both first joins and rejoins. A rejoin returns current
// state without mutation; a second distinct player moves the battle to
// in_progress; a third player gets ErrBattleFull.
func (s *BattleService) JoinBattle(userID uint, displayName, joinCode string) (*BattleView, error) {
	found, err := s.store.FindByJoinCode(joinCode)
	if err != nil {
		return nil, err
	}

	var joined *model.Battle
	err = s.withBattle(found.ID, func(b *model.Battle) (bool, error) {
		joined = b
		if b.PlayerIndex(userID) >= 0 {
			return false, nil // idempotent rejoin
		}
		if b.Status == model.BattleCompleted {
			return false, util.ErrBattleClosed
		}
		if len(b.Players) >= 2 {
			return false, util.ErrBattleFull
		}
		b.Players = append(b.Players, newPlayer(userID, displayName))
		if len(b.Players) == 2 {
			b.Status = model.BattleInProgress
		}
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return s.view(joined), nil
}

func (s *BattleService) GetBattle(id string) (*model.Battle, error) {
	return s.store.FindByID(id)
}

// GetBattleView returns the stripped, client-safe shape.
func (s *BattleService) GetBattleView(id string) (*BattleView, error) {
	battle, err := s.store.FindByID(id)
	if err != nil {
		return nil, err
	}
	return s.view(battle), nil
}

func (s *BattleService) ListBattles() ([]BattleSummary, error) {
	battles, err := s.store.List(50)
	if err != nil {
		return nil, err
	}
	summaries := make([]BattleSummary, len(battles))
	for i, b := range battles {
		summaries[i] = BattleSummary{
			ID:          b.ID,
			Name:        b.Name,
			JoinCode:    b.JoinCode,
			Tags:        b.Tags,
			Status:      b.Status,
			PlayerCount: len(b.Players),
			CreatedAt:   b.CreatedAt,
		}
	}
	return summaries, nil
}

// BattleAnalysis is the leaderboard plus match-level summary for one battle.
type BattleAnalysis struct {
	BattleID    string               `json:"battleId"`
	Name        string               `json:"name"`
	Status      model.BattleStatus   `json:"status"`
	Leaderboard []model.BattlePlayer `json:"leaderboard"`
	Summary     MatchSummary         `json:"summary"`
}

// GetAnalysis computes the leaderboard and summary for a battle. Completed
// battles are immutable, so their analysis is cached in redis.
func (s *BattleService) GetAnalysis(ctx context.Context, battleID string) (*BattleAnalysis, error) {
	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, analysisCacheKey(battleID)).Result(); err == nil {
			var analysis BattleAnalysis
			if json.Unmarshal([]byte(cached), &analysis) == nil {
				return &analysis, nil
			}
		}
	}

	battle, err := s.store.FindByID(battleID)
	if err != nil {
		return nil, err
	}

	leaderboard := make([]model.BattlePlayer, len(battle.Players))
	copy(leaderboard, battle.Players)
	RankPlayers(leaderboard)

	analysis := &BattleAnalysis{
		BattleID:    battle.ID,
		Name:        battle.Name,
		Status:      battle.Status,
		Leaderboard: leaderboard,
		Summary:     SummarizeMatch(leaderboard),
	}

	if s.rdb != nil && battle.Status == model.BattleCompleted {
		if payload, err := json.Marshal(analysis); err == nil {
			s.rdb.Set(ctx, analysisCacheKey(battleID), payload, analysisCacheTTL)
		}
	}
	return analysis, nil
}

// withBattle serializes work on one battle: per-battle mutex, fresh read,
// mutation, guarded write. A concurrent-modification conflict is retried once
// with fresh state before surfacing.
func (s *BattleService) withBattle(id string, fn func(*model.Battle) (bool, error)) error {
	unlock := s.locks.acquire(id)
	defer unlock()

	for attempt := 0; ; attempt++ {
		battle, err := s.store.FindByID(id)
		if err != nil {
			return err
		}
		changed, err := fn(battle)
		if err != nil {
			return err
		}
		if !changed {
			return nil
		}
		err = s.store.Update(battle)
		if err == nil {
			return nil
		}
		if !errors.Is(err, util.ErrConcurrentModification) || attempt >= 1 {
			return err
		}
		logger.Log.Warn("battle update conflicted, retrying with fresh state",
			zap.String("battleId", id))
	}
}

func (s *BattleService) view(b *model.Battle) *BattleView {
	return &BattleView{
		ID:              b.ID,
		JoinCode:        b.JoinCode,
		Name:            b.Name,
		Tags:            b.Tags,
		Status:          b.Status,
		DurationMinutes: b.DurationMinutes,
		Players:         b.Players,
		Questions:       StripAnswerFields(b.Questions),
	}
}

// StripAnswerFields removes grading-only fields so clients never see the
// correct answer or the grading guidelines.
func StripAnswerFields(questions []model.BattleQuestion) []model.BattleQuestion {
	stripped := make([]model.BattleQuestion, len(questions))
	for i, q := range questions {
		q.CorrectAnswer = ""
		q.GradingGuidelines = ""
		stripped[i] = q
	}
	return stripped
}

func newPlayer(userID uint, displayName string) model.BattlePlayer {
	return model.BattlePlayer{
		UserID:      userID,
		DisplayName: displayName,
		JoinedAt:    time.Now(),
		Analytics: model.PlayerAnalytics{
			Answers: []model.SubmittedAnswer{},
		},
	}
}

func newJoinCode() string {
	code := make([]byte, joinCodeLength)
	for i := range code {
		code[i] = joinCodeAlphabet[rand.Intn(len(joinCodeAlphabet))]
	}
	return string(code)
}

func analysisCacheKey(battleID string) string {
	return "battle:analysis:" + battleID
}
