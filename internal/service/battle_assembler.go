package service

import (
	"context"
	"math/rand"
	"strings"

	"github.com/harshitsingh2007/GNDEC-LEARN-NOVA-sub001/internal/model"
	"github.com/harshitsingh2007/GNDEC-LEARN-NOVA-sub001/internal/util"
	"github.com/harshitsingh2007/GNDEC-LEARN-NOVA-sub001/pkg/logger"
	"github.com/harshitsingh2007/GNDEC-LEARN-NOVA-sub001/pkg/monitoring"

	"go.uber.org/zap"
)

// placeholderOptions pads MCQ items whose generated option set is unusable,
// so quota is still met instead of rejecting the item.
var placeholderOptions = []string{"None of the above", "All of the above", "Cannot be determined", "Not applicable"}

const defaultGuidelines = "Award points for a factually correct, on-topic answer that addresses the question; deduct for missing key reasoning."

// BattleAssembler builds a fixed-size, tag-filtered, type-balanced question
// set from the bank, topped up by the content generator when the bank runs
// short.
type BattleAssembler struct {
	bank      QuestionBank
	generator ContentGenerator // nil when no generator is configured
}

func NewBattleAssembler(bank QuestionBank, generator ContentGenerator) *BattleAssembler {
	return &BattleAssembler{bank: bank, generator: generator}
}

// Assemble returns mcqQuota+textQuota questions when bank and generator can
// supply them. A generator failure degrades to bank-only content; only a
// fully empty result is an error (util.ErrInsufficientContent).
func (a *BattleAssembler) Assemble(ctx context.Context, tags []string, mcqQuota, textQuota int) ([]model.BattleQuestion, error) {
	tags = NormalizeTags(tags)

	mcq, err := a.pickFromBank(tags, model.QuestionMCQ, mcqQuota)
	if err != nil {
		return nil, err
	}
	freeText, err := a.pickFromBank(tags, model.QuestionFreeText, textQuota)
	if err != nil {
		return nil, err
	}

	mcqShort := mcqQuota - len(mcq)
	textShort := textQuota - len(freeText)
	if (mcqShort > 0 || textShort > 0) && a.generator != nil {
		generated, err := a.generator.GenerateQuestions(ctx, GenerationSpec{
			MCQCount:      mcqShort,
			FreeTextCount: textShort,
			Tags:          tags,
		})
		if err != nil {
			// Never surface a generator failure to the creator; the battle
			// proceeds with whatever the bank had.
			monitoring.GeneratorFallbacks.Inc()
			logger.Log.Warn("question generation failed, assembling from bank only",
				zap.Strings("tags", tags),
				zap.Int("mcqShortfall", mcqShort),
				zap.Int("textShortfall", textShort),
				zap.Error(err))
		} else {
			genMCQ, genText := a.repairAndSplit(generated)
			if len(genMCQ) > mcqShort {
				genMCQ = genMCQ[:mcqShort]
			}
			if len(genText) > textShort {
				genText = genText[:textShort]
			}

			// Persist before returning so future assemblies can reuse them.
			toPersist := append(append([]model.Question{}, genMCQ...), genText...)
			if err := a.bank.InsertMany(toPersist); err != nil {
				logger.Log.Error("failed to persist generated questions", zap.Error(err))
			}

			mcq = append(mcq, genMCQ...)
			freeText = append(freeText, genText...)
		}
	}

	merged := append(mcq, freeText...)
	if len(merged) == 0 {
		return nil, util.ErrInsufficientContent
	}

	// One final shuffle so type does not correlate with position.
	rand.Shuffle(len(merged), func(i, j int) { merged[i], merged[j] = merged[j], merged[i] })

	snapshot := make([]model.BattleQuestion, len(merged))
	for i, q := range merged {
		snapshot[i] = model.BattleQuestion{
			ID:                q.ID,
			Text:              q.Text,
			Type:              q.Type,
			Options:           q.Options,
			CorrectAnswer:     q.CorrectAnswer,
			GradingGuidelines: q.GradingGuidelines,
			Category:          q.Category,
			Difficulty:        q.Difficulty,
			Tags:              q.Tags,
		}
	}
	return snapshot, nil
}

// pickFromBank draws up to quota questions of one type, uniformly at random.
func (a *BattleAssembler) pickFromBank(tags []string, qType model.QuestionType, quota int) ([]model.Question, error) {
	if quota <= 0 {
		return nil, nil
	}
	candidates, err := a.bank.FindByTags(tags, qType)
	if err != nil {
		return nil, err
	}
	rand.Shuffle(len(candidates), func(i, j int) { candidates[i], candidates[j] = candidates[j], candidates[i] })
	if len(candidates) > quota {
		candidates = candidates[:quota]
	}
	return candidates, nil
}

// repairAndSplit validates generated items against the question invariants,
// repairing what it can: MCQ items are forced to exactly 4 options with the
// correct answer among them, free-text items get fallback guidelines. Items
// with no usable text are the only ones dropped.
func (a *BattleAssembler) repairAndSplit(generated []model.Question) (mcq, freeText []model.Question) {
	for _, q := range generated {
		if q.Text == "" {
			continue
		}
		if q.ID == "" {
			q.ID = model.GenerateUUID()
		}
		switch q.Type {
		case model.QuestionMCQ:
			q.Options, q.CorrectAnswer = repairOptions(q.Options, q.CorrectAnswer)
			q.GradingGuidelines = ""
			mcq = append(mcq, q)
		case model.QuestionFreeText:
			q.Options = nil
			q.CorrectAnswer = ""
			if q.GradingGuidelines == "" {
				q.GradingGuidelines = defaultGuidelines
			}
			freeText = append(freeText, q)
		}
	}
	return mcq, freeText
}

// repairOptions guarantees exactly 4 options containing the correct answer.
func repairOptions(options []string, correct string) ([]string, string) {
	cleaned := make([]string, 0, 4)
	for _, o := range options {
		o = strings.TrimSpace(o)
		if o != "" {
			cleaned = append(cleaned, o)
		}
	}
	correct = strings.TrimSpace(correct)

	if correct == "" {
		if len(cleaned) > 0 {
			correct = cleaned[0]
		} else {
			correct = "True"
			cleaned = []string{"True"}
		}
	}
	if !containsFold(cleaned, correct) {
		cleaned = append([]string{correct}, cleaned...)
	}
	for _, filler := range placeholderOptions {
		if len(cleaned) >= 4 {
			break
		}
		if !containsFold(cleaned, filler) {
			cleaned = append(cleaned, filler)
		}
	}
	if len(cleaned) > 4 {
		kept := make([]string, 0, 4)
		kept = append(kept, correct)
		for _, o := range cleaned {
			if len(kept) == 4 {
				break
			}
			if !strings.EqualFold(o, correct) {
				kept = append(kept, o)
			}
		}
		cleaned = kept
	}
	rand.Shuffle(len(cleaned), func(i, j int) { cleaned[i], cleaned[j] = cleaned[j], cleaned[i] })
	return cleaned, correct
}

func containsFold(list []string, target string) bool {
	for _, v := range list {
		if strings.EqualFold(v, target) {
			return true
		}
	}
	return false
}

// NormalizeTags trims, lower-cases and de-duplicates tags, dropping empties.
func NormalizeTags(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}
