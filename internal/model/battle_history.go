package model

import "time"

// QuestionOutcome is one entry of the per-question correctness timeline,
// ordered by submission order.
type QuestionOutcome struct {
	QuestionID string `json:"questionId"`
	Correct    bool   `json:"correct"`
	Points     int    `json:"points"`
	Feedback   string `json:"feedback,omitempty"`
}

// TagAccuracy accumulates correct/total counts for one tag. Accuracy is a
// percentage, 0-100.
type TagAccuracy struct {
	Correct  int     `json:"correct"`
	Total    int     `json:"total"`
	Accuracy float64 `json:"accuracy"`
}

// PerformanceSnapshot is the full evaluation result frozen into history.
type PerformanceSnapshot struct {
	Score          int               `json:"score"`
	CorrectCount   int               `json:"correctCount"`
	IncorrectCount int               `json:"incorrectCount"`
	Accuracy       float64           `json:"accuracy"`
	Timeline       []QuestionOutcome `json:"timeline"`
}

// BattleHistory is one user's durable record of one completed battle.
// Rows are append-only.
// swagger:model BattleHistory
type BattleHistory struct {
	BaseModel
	UserID         uint                   `gorm:"index;not null" json:"userId"`
	BattleID       string                 `gorm:"size:36;index" json:"battleId"`
	BattleName     string                 `gorm:"size:255" json:"battleName"`
	Rank           int                    `json:"rank"`
	TotalPlayers   int                    `json:"totalPlayers"`
	TagPerformance map[string]TagAccuracy `gorm:"serializer:json" json:"tagWisePerformance"`
	Performance    PerformanceSnapshot    `gorm:"serializer:json" json:"performance"`
	PlayedAt       time.Time              `json:"date"`
}

func (BattleHistory) TableName() string {
	return "battle_histories"
}
