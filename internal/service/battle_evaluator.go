package service

import (
	"context"
	"strings"
	"time"

	"github.com/harshitsingh2007/GNDEC-LEARN-NOVA-sub001/internal/config"
	"github.com/harshitsingh2007/GNDEC-LEARN-NOVA-sub001/internal/model"
	"github.com/harshitsingh2007/GNDEC-LEARN-NOVA-sub001/internal/util"
	"github.com/harshitsingh2007/GNDEC-LEARN-NOVA-sub001/pkg/logger"
	"github.com/harshitsingh2007/GNDEC-LEARN-NOVA-sub001/pkg/monitoring"

	"go.uber.org/zap"
)

const gradingFallbackFeedback = "Automated feedback is unavailable for this answer."

// BattleEvaluator grades a participant's submission and drives battle
// completion once every player has been evaluated.
type BattleEvaluator struct {
	battles *BattleService
	grader  ContentGenerator // nil disables free-text grading, MCQ still works
	ledger  AccountLedger
	cfg     config.BattleConfig
}

func NewBattleEvaluator(battles *BattleService, grader ContentGenerator, ledger AccountLedger, cfg config.BattleConfig) *BattleEvaluator {
	return &BattleEvaluator{battles: battles, grader: grader, ledger: ledger, cfg: cfg}
}

// EvaluationResult is returned to the submitting player. Feedback on the
// timeline is safe to show because the battle is over for that player.
type EvaluationResult struct {
	BattleID  string                  `json:"battleId"`
	Status    model.BattleStatus      `json:"status"`
	Analytics model.PlayerAnalytics   `json:"analytics"`
	Timeline  []model.QuestionOutcome `json:"timeline"`
	Completed bool                    `json:"completed"`
}

// playerGrade is the full grading outcome for one player, computed outside
// the battle lock and applied under it.
type playerGrade struct {
	analytics model.PlayerAnalytics
	timeline  []model.QuestionOutcome
	tags      map[string]model.TagAccuracy
	correct   int
}

// Evaluate grades one player's answers exactly once. Fixed-choice answers are
// matched locally; free-text answers are batch-graded by the generator before
// the battle lock is taken, since grading blocks for seconds. If both players
// end up evaluated the battle completes: ranks assigned, XP awarded, history
// appended.
func (e *BattleEvaluator) Evaluate(ctx context.Context, battleID string, userID uint, answers []model.SubmittedAnswer) (*EvaluationResult, error) {
	battle, err := e.battles.GetBattle(battleID)
	if err != nil {
		return nil, err
	}
	idx := battle.PlayerIndex(userID)
	if idx < 0 {
		return nil, util.ErrParticipantNotFound
	}
	if battle.Players[idx].Evaluated {
		return nil, util.ErrAlreadyEvaluated
	}

	grade := e.grade(ctx, battle.Questions, answers)

	var result *EvaluationResult
	var completedPlayers []model.BattlePlayer
	err = e.battles.withBattle(battleID, func(b *model.Battle) (bool, error) {
		i := b.PlayerIndex(userID)
		if i < 0 {
			return false, util.ErrParticipantNotFound
		}
		if b.Players[i].Evaluated {
			return false, util.ErrAlreadyEvaluated
		}

		b.Players[i].Evaluated = true
		b.Players[i].Analytics = grade.analytics
		b.Players[i].TagPerformance = grade.tags
		b.Players[i].Timeline = grade.timeline

		// Completion needs a full roster: a lone creator submitting in the
		// waiting state must not close the battle.
		if len(b.Players) == 2 && allEvaluated(b.Players) {
			RankPlayers(b.Players)
			b.Status = model.BattleCompleted
			completedPlayers = append([]model.BattlePlayer{}, b.Players...)
		}

		result = &EvaluationResult{
			BattleID:  b.ID,
			Status:    b.Status,
			Analytics: grade.analytics,
			Timeline:  grade.timeline,
			Completed: b.Status == model.BattleCompleted,
		}
		return true, nil
	})
	if err != nil {
		return nil, err
	}

	if completedPlayers != nil {
		e.settle(battle.ID, battle.Name, completedPlayers)
	}
	return result, nil
}

// grade scores every answer against the battle's question snapshot. Unknown
// question ids are skipped; free-text answers fall back to zero points with
// placeholder feedback when the grader fails or omits a verdict.
func (e *BattleEvaluator) grade(ctx context.Context, questions []model.BattleQuestion, answers []model.SubmittedAnswer) playerGrade {
	byID := make(map[string]model.BattleQuestion, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}

	verdicts := e.gradeFreeText(ctx, byID, answers)

	g := playerGrade{tags: make(map[string]model.TagAccuracy)}
	totalTime := 0
	kept := make([]model.SubmittedAnswer, 0, len(answers))
	for _, ans := range answers {
		q, ok := byID[ans.QuestionID]
		if !ok {
			continue
		}
		kept = append(kept, ans)
		totalTime += ans.TimeTaken

		outcome := model.QuestionOutcome{QuestionID: q.ID}
		switch q.Type {
		case model.QuestionMCQ:
			if answersMatch(ans.Answer, q.CorrectAnswer) {
				outcome.Correct = true
				outcome.Points = e.cfg.PointsPerQuestion
			}
		case model.QuestionFreeText:
			if v, ok := verdicts[q.ID]; ok {
				outcome.Correct = v.IsCorrect
				outcome.Points = clampPoints(v.Points, e.cfg.PointsPerQuestion)
				outcome.Feedback = v.Feedback
			} else {
				outcome.Feedback = gradingFallbackFeedback
			}
		}

		if outcome.Correct {
			g.correct++
		}
		g.analytics.Score += outcome.Points
		g.timeline = append(g.timeline, outcome)

		for _, tag := range q.Tags {
			acc := g.tags[tag]
			acc.Total++
			if outcome.Correct {
				acc.Correct++
			}
			acc.Accuracy = float64(acc.Correct) / float64(acc.Total) * 100
			g.tags[tag] = acc
		}
	}

	g.analytics.CompletedQuestions = len(kept)
	g.analytics.Answers = kept
	g.analytics.TotalTimeTaken = totalTime
	if len(kept) > 0 {
		g.analytics.Accuracy = float64(g.correct) / float64(len(kept)) * 100
		g.analytics.AvgTimePerQuestion = float64(totalTime) / float64(len(kept))
	}
	return g
}

// gradeFreeText sends all free-text answers in one batched request and
// returns verdicts keyed by question id. Any failure yields an empty map so
// every free-text answer takes the zero-point fallback.
func (e *BattleEvaluator) gradeFreeText(ctx context.Context, byID map[string]model.BattleQuestion, answers []model.SubmittedAnswer) map[string]GradingVerdict {
	items := make([]GradingItem, 0, len(answers))
	for _, ans := range answers {
		q, ok := byID[ans.QuestionID]
		if !ok || q.Type != model.QuestionFreeText {
			continue
		}
		items = append(items, GradingItem{
			QuestionID: q.ID,
			Question:   q.Text,
			Guidelines: q.GradingGuidelines,
			Answer:     ans.Answer,
		})
	}

	verdicts := make(map[string]GradingVerdict, len(items))
	if len(items) == 0 || e.grader == nil {
		return verdicts
	}

	got, err := e.grader.GradeFreeText(ctx, items)
	if err != nil {
		logger.Log.Warn("free-text grading failed, applying zero-point fallback",
			zap.Int("answers", len(items)),
			zap.Error(err))
		return verdicts
	}
	for _, v := range got {
		verdicts[v.QuestionID] = v
	}
	return verdicts
}

// settle runs the post-completion side effects: XP for correct answers and a
// durable history row per player. Failures are logged, not surfaced; the
// battle record itself is already completed.
func (e *BattleEvaluator) settle(battleID, battleName string, players []model.BattlePlayer) {
	monitoring.BattlesCompleted.Inc()
	now := time.Now()
	for _, p := range players {
		correct := 0
		for _, o := range p.Timeline {
			if o.Correct {
				correct++
			}
		}
		if xp := correct * e.cfg.XPPerCorrect; xp > 0 {
			if err := e.ledger.AwardExperience(p.UserID, xp); err != nil {
				logger.Log.Error("failed to award XP",
					zap.Uint("userId", p.UserID),
					zap.Int("xp", xp),
					zap.Error(err))
			}
		}

		entry := &model.BattleHistory{
			UserID:         p.UserID,
			BattleID:       battleID,
			BattleName:     battleName,
			Rank:           p.Rank,
			TotalPlayers:   len(players),
			TagPerformance: p.TagPerformance,
			Performance: model.PerformanceSnapshot{
				Score:          p.Analytics.Score,
				CorrectCount:   correct,
				IncorrectCount: p.Analytics.CompletedQuestions - correct,
				Accuracy:       p.Analytics.Accuracy,
				Timeline:       p.Timeline,
			},
			PlayedAt: now,
		}
		if err := e.ledger.AppendHistory(entry); err != nil {
			logger.Log.Error("failed to append battle history",
				zap.Uint("userId", p.UserID),
				zap.String("battleId", battleID),
				zap.Error(err))
		}
	}
}

func allEvaluated(players []model.BattlePlayer) bool {
	for _, p := range players {
		if !p.Evaluated {
			return false
		}
	}
	return true
}

// answersMatch compares a fixed-choice answer against the key ignoring case
// and surrounding whitespace.
func answersMatch(given, correct string) bool {
	return strings.EqualFold(strings.TrimSpace(given), strings.TrimSpace(correct))
}

func clampPoints(points, max int) int {
	if points < 0 {
		return 0
	}
	if points > max {
		return max
	}
	return points
}
