package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/harshitsingh2007/GNDEC-LEARN-NOVA-sub001/internal/model"
	"github.com/harshitsingh2007/GNDEC-LEARN-NOVA-sub001/internal/service"
	"github.com/harshitsingh2007/GNDEC-LEARN-NOVA-sub001/internal/util"
)

func bankQuestion(id, text string, qType model.QuestionType, tags ...string) model.Question {
	q := model.Question{
		Text:       text,
		Type:       qType,
		Category:   "testing",
		Difficulty: "easy",
		Tags:       tags,
	}
	q.ID = id
	if qType == model.QuestionMCQ {
		q.Options = []string{"A", "B", "C", "D"}
		q.CorrectAnswer = "A"
	} else {
		q.GradingGuidelines = "Award credit for a correct explanation."
	}
	return q
}

func TestAssembleFromBankOnly(t *testing.T) {
	bank := &fakeBank{questions: []model.Question{
		bankQuestion("m1", "mcq one", model.QuestionMCQ, "go"),
		bankQuestion("m2", "mcq two", model.QuestionMCQ, "go"),
		bankQuestion("m3", "mcq three", model.QuestionMCQ, "go"),
		bankQuestion("t1", "text one", model.QuestionFreeText, "go"),
		bankQuestion("t2", "text two", model.QuestionFreeText, "go"),
		bankQuestion("t3", "text three", model.QuestionFreeText, "go"),
	}}
	gen := &fakeGenerator{}
	assembler := service.NewBattleAssembler(bank, gen)

	questions, err := assembler.Assemble(context.Background(), []string{"Go"}, 3, 3)
	if err != nil {
		t.Fatalf("assemble failed: %v", err)
	}
	if len(questions) != 6 {
		t.Fatalf("expected 6 questions, got %d", len(questions))
	}
	if len(gen.genSpecs) != 0 {
		t.Fatalf("generator should not be called when the bank satisfies quotas, got %d calls", len(gen.genSpecs))
	}

	mcq, text := countTypes(questions)
	if mcq != 3 || text != 3 {
		t.Fatalf("expected 3 mcq and 3 text, got %d and %d", mcq, text)
	}
}

func TestAssembleTopsUpShortfallFromGenerator(t *testing.T) {
	bank := &fakeBank{questions: []model.Question{
		bankQuestion("m1", "mcq one", model.QuestionMCQ, "algebra"),
		bankQuestion("m2", "mcq two", model.QuestionMCQ, "algebra"),
		bankQuestion("t1", "text one", model.QuestionFreeText, "algebra"),
		bankQuestion("t2", "text two", model.QuestionFreeText, "algebra"),
	}}
	gen := &fakeGenerator{
		genFunc: func(spec service.GenerationSpec) ([]model.Question, error) {
			out := make([]model.Question, 0, spec.MCQCount+spec.FreeTextCount)
			for i := 0; i < spec.MCQCount; i++ {
				out = append(out, bankQuestion("", "generated mcq", model.QuestionMCQ, spec.Tags...))
			}
			for i := 0; i < spec.FreeTextCount; i++ {
				out = append(out, bankQuestion("", "generated text", model.QuestionFreeText, spec.Tags...))
			}
			return out, nil
		},
	}
	assembler := service.NewBattleAssembler(bank, gen)

	questions, err := assembler.Assemble(context.Background(), []string{"algebra"}, 3, 3)
	if err != nil {
		t.Fatalf("assemble failed: %v", err)
	}
	if len(questions) != 6 {
		t.Fatalf("expected 6 questions, got %d", len(questions))
	}

	if len(gen.genSpecs) != 1 {
		t.Fatalf("expected a single generation call, got %d", len(gen.genSpecs))
	}
	spec := gen.genSpecs[0]
	if spec.MCQCount != 1 || spec.FreeTextCount != 1 {
		t.Fatalf("expected generator asked for exactly the shortfall (1 mcq, 1 text), got %d and %d", spec.MCQCount, spec.FreeTextCount)
	}

	if len(bank.inserted) != 2 {
		t.Fatalf("expected generated questions persisted to the bank, got %d", len(bank.inserted))
	}
}

func TestAssembleMixedShortfall(t *testing.T) {
	bank := &fakeBank{questions: []model.Question{
		bankQuestion("m1", "mcq one", model.QuestionMCQ, "algebra"),
	}}
	gen := &fakeGenerator{
		genFunc: func(spec service.GenerationSpec) ([]model.Question, error) {
			out := make([]model.Question, 0, spec.MCQCount+spec.FreeTextCount)
			for i := 0; i < spec.MCQCount; i++ {
				out = append(out, bankQuestion("", "generated mcq", model.QuestionMCQ, spec.Tags...))
			}
			for i := 0; i < spec.FreeTextCount; i++ {
				out = append(out, bankQuestion("", "generated text", model.QuestionFreeText, spec.Tags...))
			}
			return out, nil
		},
	}
	assembler := service.NewBattleAssembler(bank, gen)

	questions, err := assembler.Assemble(context.Background(), []string{"algebra"}, 2, 1)
	if err != nil {
		t.Fatalf("assemble failed: %v", err)
	}
	if len(questions) != 3 {
		t.Fatalf("expected 3 questions, got %d", len(questions))
	}
	mcq, text := countTypes(questions)
	if mcq != 2 || text != 1 {
		t.Fatalf("expected 2 mcq and 1 text, got %d and %d", mcq, text)
	}
	spec := gen.genSpecs[0]
	if spec.MCQCount != 1 || spec.FreeTextCount != 1 {
		t.Fatalf("expected generation request for 1 mcq and 1 text, got %d and %d", spec.MCQCount, spec.FreeTextCount)
	}
}

func TestAssembleGeneratorFailureFallsBackToBank(t *testing.T) {
	bank := &fakeBank{questions: []model.Question{
		bankQuestion("m1", "mcq one", model.QuestionMCQ, "go"),
		bankQuestion("t1", "text one", model.QuestionFreeText, "go"),
	}}
	gen := &fakeGenerator{
		genFunc: func(spec service.GenerationSpec) ([]model.Question, error) {
			return nil, errors.New("upstream down")
		},
	}
	assembler := service.NewBattleAssembler(bank, gen)

	questions, err := assembler.Assemble(context.Background(), []string{"go"}, 3, 3)
	if err != nil {
		t.Fatalf("generator failure must not fail assembly, got %v", err)
	}
	if len(questions) != 2 {
		t.Fatalf("expected the 2 bank questions, got %d", len(questions))
	}
}

func TestAssembleEmptyResultIsError(t *testing.T) {
	assembler := service.NewBattleAssembler(&fakeBank{}, nil)

	_, err := assembler.Assemble(context.Background(), []string{"nothing"}, 3, 3)
	if !errors.Is(err, util.ErrInsufficientContent) {
		t.Fatalf("expected ErrInsufficientContent, got %v", err)
	}
}

func TestAssembleRepairsGeneratedOptions(t *testing.T) {
	gen := &fakeGenerator{
		genFunc: func(spec service.GenerationSpec) ([]model.Question, error) {
			return []model.Question{{
				Text:          "Which planet is closest to the sun?",
				Type:          model.QuestionMCQ,
				Options:       []string{"Venus", ""},
				CorrectAnswer: "Mercury",
				Tags:          spec.Tags,
			}}, nil
		},
	}
	assembler := service.NewBattleAssembler(&fakeBank{}, gen)

	questions, err := assembler.Assemble(context.Background(), []string{"space"}, 1, 0)
	if err != nil {
		t.Fatalf("assemble failed: %v", err)
	}
	if len(questions) != 1 {
		t.Fatalf("expected 1 question, got %d", len(questions))
	}

	q := questions[0]
	if len(q.Options) != 4 {
		t.Fatalf("expected repaired question to have 4 options, got %v", q.Options)
	}
	found := false
	for _, o := range q.Options {
		if o == "Mercury" {
			found = true
		}
	}
	if !found {
		t.Fatalf("correct answer missing from options: %v", q.Options)
	}
}

func TestAssembleGeneratedFreeTextGetsGuidelines(t *testing.T) {
	gen := &fakeGenerator{
		genFunc: func(spec service.GenerationSpec) ([]model.Question, error) {
			return []model.Question{{
				Text: "Explain gravity.",
				Type: model.QuestionFreeText,
				Tags: spec.Tags,
			}}, nil
		},
	}
	assembler := service.NewBattleAssembler(&fakeBank{}, gen)

	questions, err := assembler.Assemble(context.Background(), []string{"physics"}, 0, 1)
	if err != nil {
		t.Fatalf("assemble failed: %v", err)
	}
	if len(questions) != 1 || questions[0].GradingGuidelines == "" {
		t.Fatalf("expected fallback grading guidelines on generated free-text question, got %+v", questions)
	}
}

func countTypes(questions []model.BattleQuestion) (mcq, text int) {
	for _, q := range questions {
		switch q.Type {
		case model.QuestionMCQ:
			mcq++
		case model.QuestionFreeText:
			text++
		}
	}
	return mcq, text
}
