package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/harshitsingh2007/GNDEC-LEARN-NOVA-sub001/internal/config"
	"github.com/harshitsingh2007/GNDEC-LEARN-NOVA-sub001/internal/model"
	"github.com/harshitsingh2007/GNDEC-LEARN-NOVA-sub001/internal/service"
	"github.com/harshitsingh2007/GNDEC-LEARN-NOVA-sub001/internal/util"
)

func chatReply(t *testing.T, w http.ResponseWriter, content string) {
	t.Helper()
	resp := map[string]interface{}{
		"choices": []map[string]interface{}{
			{"message": map[string]string{"role": "assistant", "content": content}},
		},
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		t.Fatalf("encode reply: %v", err)
	}
}

func testAIConfig(baseURL string) config.AIConfig {
	return config.AIConfig{
		BaseURL:        baseURL,
		APIKey:         "test-key",
		Model:          "test-model",
		RequestTimeout: 5 * time.Second,
		MaxAttempts:    3,
	}
}

func TestGenerateQuestionsParsesFencedReply(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		chatReply(t, w, "```json\n[{\"text\":\"What is 2+2?\",\"type\":\"mcq\",\"options\":[\"4\",\"3\",\"5\",\"22\"],\"correctAnswer\":\"4\",\"category\":\"math\",\"difficulty\":\"easy\"}]\n```")
	}))
	defer server.Close()

	ai := service.NewAIService(testAIConfig(server.URL))
	questions, err := ai.GenerateQuestions(context.Background(), service.GenerationSpec{
		MCQCount: 1,
		Tags:     []string{"math"},
	})
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if len(questions) != 1 {
		t.Fatalf("expected 1 question, got %d", len(questions))
	}
	q := questions[0]
	if q.Type != model.QuestionMCQ || q.CorrectAnswer != "4" || q.Source != model.SourceGenerated {
		t.Fatalf("unexpected question: %+v", q)
	}
}

func TestServerErrorsAreRetried(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		chatReply(t, w, `[{"questionId":"q1","isCorrect":true,"points":8,"feedback":"solid"}]`)
	}))
	defer server.Close()

	ai := service.NewAIService(testAIConfig(server.URL))
	verdicts, err := ai.GradeFreeText(context.Background(), []service.GradingItem{
		{QuestionID: "q1", Question: "Explain maps.", Guidelines: "key/value", Answer: "a map stores key/value pairs"},
	})
	if err != nil {
		t.Fatalf("expected retry to recover, got %v", err)
	}
	if atomic.LoadInt32(&calls) != 2 {
		t.Fatalf("expected 2 attempts, got %d", calls)
	}
	if len(verdicts) != 1 || verdicts[0].Points != 8 {
		t.Fatalf("unexpected verdicts: %+v", verdicts)
	}
}

func TestClientErrorsAreNotRetried(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, "bad request", http.StatusBadRequest)
	}))
	defer server.Close()

	ai := service.NewAIService(testAIConfig(server.URL))
	_, err := ai.GenerateQuestions(context.Background(), service.GenerationSpec{MCQCount: 1})
	if err == nil {
		t.Fatal("expected an error")
	}
	if atomic.LoadInt32(&calls) != 1 {
		t.Fatalf("4xx must not be retried, got %d attempts", calls)
	}
}

func TestUnparsableGradeReply(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		chatReply(t, w, "I cannot grade these answers.")
	}))
	defer server.Close()

	ai := service.NewAIService(testAIConfig(server.URL))
	_, err := ai.GradeFreeText(context.Background(), []service.GradingItem{
		{QuestionID: "q1", Question: "Explain maps.", Answer: "..."},
	})
	if !errors.Is(err, util.ErrGradingParseFailure) {
		t.Fatalf("expected ErrGradingParseFailure, got %v", err)
	}
}

func TestMissingBaseURLIsUnavailable(t *testing.T) {
	ai := service.NewAIService(config.AIConfig{MaxAttempts: 1, RequestTimeout: time.Second})
	_, err := ai.GenerateQuestions(context.Background(), service.GenerationSpec{MCQCount: 1})
	if !errors.Is(err, util.ErrGenerationUnavailable) {
		t.Fatalf("expected ErrGenerationUnavailable, got %v", err)
	}
}
