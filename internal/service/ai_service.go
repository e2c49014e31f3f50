package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/harshitsingh2007/GNDEC-LEARN-NOVA-sub001/internal/config"
	"github.com/harshitsingh2007/GNDEC-LEARN-NOVA-sub001/internal/model"
	"github.com/harshitsingh2007/GNDEC-LEARN-NOVA-sub001/internal/util"
	"github.com/harshitsingh2007/GNDEC-LEARN-NOVA-sub001/pkg/logger"

	"go.uber.org/zap"
)

// AIService talks to an OpenAI-compatible chat completion endpoint. It is the
// concrete ContentGenerator: question synthesis and free-text grading both go
// through one structured prompt and expect a raw JSON reply.
type AIService struct {
	mu     sync.RWMutex
	cfg    config.AIConfig
	client *http.Client
}

func NewAIService(cfg config.AIConfig) *AIService {
	return &AIService{
		cfg:    cfg,
		client: &http.Client{},
	}
}

// UpdateConfig swaps credentials/model at runtime (config hot reload).
func (s *AIService) UpdateConfig(cfg config.AIConfig) {
	s.mu.Lock()
	s.cfg = cfg
	s.mu.Unlock()
}

func (s *AIService) config() config.AIConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

type AIChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatCompletionRequest struct {
	Model    string          `json:"model"`
	Messages []AIChatMessage `json:"messages"`
}

type ChatCompletionResponse struct {
	Choices []struct {
		Message AIChatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// complete performs one chat completion with bounded retries. Transport
// errors, 429 and 5xx are retried with jittered exponential backoff; any other
// failure is returned immediately. Parse failures never reach here, they are
// the caller's concern.
func (s *AIService) complete(ctx context.Context, system, user string) (string, error) {
	cfg := s.config()
	if cfg.BaseURL == "" {
		return "", util.ErrGenerationUnavailable
	}

	reqBody := ChatCompletionRequest{
		Model: cfg.Model,
		Messages: []AIChatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
	}
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	var lastErr error
	backoff := 500 * time.Millisecond
	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		if attempt > 1 {
			// full jitter on the exponential delay
			delay := backoff/2 + time.Duration(rand.Int63n(int64(backoff)))
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return "", ctx.Err()
			}
			backoff *= 2
		}

		content, retryable, err := s.attempt(ctx, cfg, jsonData)
		if err == nil {
			return content, nil
		}
		lastErr = err
		if !retryable {
			return "", err
		}
		logger.Log.Warn("AI request failed, retrying",
			zap.Int("attempt", attempt),
			zap.Error(err))
	}

	return "", fmt.Errorf("%w: %v", util.ErrGenerationUnavailable, lastErr)
}

func (s *AIService) attempt(ctx context.Context, cfg config.AIConfig, body []byte) (string, bool, error) {
	callCtx, cancel := context.WithTimeout(ctx, cfg.RequestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(callCtx, http.MethodPost, cfg.BaseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", false, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+cfg.APIKey)

	resp, err := s.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", false, ctx.Err()
		}
		return "", true, err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		retryable := resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500
		return "", retryable, fmt.Errorf("AI API error (status %d): %s", resp.StatusCode, string(respBody))
	}

	var result ChatCompletionResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", false, err
	}
	if result.Error != nil {
		return "", false, fmt.Errorf("AI API error: %s", result.Error.Message)
	}
	if len(result.Choices) == 0 {
		return "", false, fmt.Errorf("AI returned no choices")
	}
	return result.Choices[0].Message.Content, false, nil
}

// generatedQuestion is the raw JSON shape the synthesis prompt demands.
type generatedQuestion struct {
	Text              string   `json:"text"`
	Type              string   `json:"type"`
	Options           []string `json:"options"`
	CorrectAnswer     string   `json:"correctAnswer"`
	GradingGuidelines string   `json:"gradingGuidelines"`
	Category          string   `json:"category"`
	Difficulty        string   `json:"difficulty"`
}

// GenerateQuestions asks for both shortfalls in one combined request. The
// returned questions are raw: option counts and guidelines are validated and
// repaired by the assembler.
func (s *AIService) GenerateQuestions(ctx context.Context, spec GenerationSpec) ([]model.Question, error) {
	if spec.MCQCount <= 0 && spec.FreeTextCount <= 0 {
		return nil, nil
	}

	system := "You are a quiz author for a learning platform. Reply with raw JSON only, no markdown fences, no commentary."
	user := fmt.Sprintf(`Create quiz questions on the topics: %s.
Produce exactly %d multiple-choice questions (type "mcq") and %d open-ended questions (type "text").
Reply with a JSON array where each element has this shape:
{"text": "...", "type": "mcq"|"text", "options": ["A","B","C","D"], "correctAnswer": "...", "gradingGuidelines": "...", "category": "...", "difficulty": "easy"|"medium"|"hard"}
Rules: mcq questions need exactly 4 options with correctAnswer copied verbatim from the options and an empty gradingGuidelines; text questions need empty options, empty correctAnswer and concise gradingGuidelines for a human grader.`,
		strings.Join(spec.Tags, ", "), spec.MCQCount, spec.FreeTextCount)

	content, err := s.complete(ctx, system, user)
	if err != nil {
		return nil, err
	}

	var raw []generatedQuestion
	if err := json.Unmarshal(extractJSON(content), &raw); err != nil {
		return nil, fmt.Errorf("generator reply is not valid question JSON: %w", err)
	}

	questions := make([]model.Question, 0, len(raw))
	for _, g := range raw {
		qType := model.QuestionMCQ
		if strings.EqualFold(strings.TrimSpace(g.Type), string(model.QuestionFreeText)) {
			qType = model.QuestionFreeText
		}
		questions = append(questions, model.Question{
			Text:              strings.TrimSpace(g.Text),
			Type:              qType,
			Options:           g.Options,
			CorrectAnswer:     strings.TrimSpace(g.CorrectAnswer),
			GradingGuidelines: strings.TrimSpace(g.GradingGuidelines),
			Category:          g.Category,
			Difficulty:        g.Difficulty,
			Tags:              spec.Tags,
			Source:            model.SourceGenerated,
		})
	}
	return questions, nil
}

// GradeFreeText grades one submission's free-text answers in a single batched
// request. A reply that does not parse as the expected structure is reported
// as util.ErrGradingParseFailure; the evaluator then applies its zero-point
// fallback.
func (s *AIService) GradeFreeText(ctx context.Context, items []GradingItem) ([]GradingVerdict, error) {
	if len(items) == 0 {
		return nil, nil
	}

	var sb strings.Builder
	for i, item := range items {
		fmt.Fprintf(&sb, "Answer %d:\nquestionId: %s\nQuestion: %s\nGrading guidelines: %s\nStudent answer: %s\n\n",
			i+1, item.QuestionID, item.Question, item.Guidelines, item.Answer)
	}

	system := "You are a strict but fair exam grader. Reply with raw JSON only, no markdown fences, no commentary."
	user := fmt.Sprintf(`Grade each student answer against its guidelines, awarding 0-10 points.
Reply with a JSON array where each element has this shape:
{"questionId": "...", "isCorrect": true|false, "points": 0-10, "feedback": "one or two sentences"}
Include one element per answer, keeping the given questionId values.

%s`, sb.String())

	content, err := s.complete(ctx, system, user)
	if err != nil {
		return nil, err
	}

	var verdicts []GradingVerdict
	if err := json.Unmarshal(extractJSON(content), &verdicts); err != nil {
		return nil, fmt.Errorf("%w: %v", util.ErrGradingParseFailure, err)
	}
	if len(verdicts) == 0 {
		return nil, util.ErrGradingParseFailure
	}
	return verdicts, nil
}

// extractJSON tolerates models that wrap their reply in markdown fences or
// leading prose despite instructions, and slices out the outermost JSON array
// or object.
func extractJSON(content string) []byte {
	content = strings.TrimSpace(content)
	if fenced := strings.TrimPrefix(content, "```json"); fenced != content {
		content = fenced
	} else {
		content = strings.TrimPrefix(content, "```")
	}
	content = strings.TrimSuffix(strings.TrimSpace(content), "```")
	content = strings.TrimSpace(content)

	start := strings.IndexAny(content, "[{")
	if start < 0 {
		return []byte(content)
	}
	var end int
	if content[start] == '[' {
		end = strings.LastIndex(content, "]")
	} else {
		end = strings.LastIndex(content, "}")
	}
	if end <= start {
		return []byte(content)
	}
	return []byte(content[start : end+1])
}
