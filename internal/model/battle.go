package model

import "time"

type BattleStatus string

const (
	BattleWaiting    BattleStatus = "waiting"
	BattleInProgress BattleStatus = "in_progress"
	BattleCompleted  BattleStatus = "completed"
)

// BattleQuestion is the immutable snapshot of one question as assembled for a
// battle. The snapshot is taken at creation so later bank writes can never
// change a running match.
type BattleQuestion struct {
	ID                string       `json:"id"`
	Text              string       `json:"text"`
	Type              QuestionType `json:"type"`
	Options           []string     `json:"options,omitempty"`
	CorrectAnswer     string       `json:"correctAnswer,omitempty"`
	GradingGuidelines string       `json:"gradingGuidelines,omitempty"`
	Category          string       `json:"category"`
	Difficulty        string       `json:"difficulty"`
	Tags              []string     `json:"tags"`
}

// SubmittedAnswer is one answer inside a player's submission, kept in
// submission order.
type SubmittedAnswer struct {
	QuestionID string `json:"questionId"`
	Answer     string `json:"answer"`
	TimeTaken  int    `json:"timeTaken"` // seconds
}

// PlayerAnalytics is the running result block for one participant. It is
// overwritten in full by evaluation, never appended to. Accuracy is a
// percentage, 0-100.
type PlayerAnalytics struct {
	Score              int               `json:"score"`
	CompletedQuestions int               `json:"completedQuestions"`
	Accuracy           float64           `json:"accuracy"`
	AvgTimePerQuestion float64           `json:"avgTimePerQuestion"`
	TotalTimeTaken     int               `json:"totalTimeTaken"`
	Answers            []SubmittedAnswer `json:"answers"`
}

// BattlePlayer is one participant's membership in a battle. At most one entry
// per userId; a rejoin returns the existing entry untouched.
type BattlePlayer struct {
	UserID         uint                   `json:"userId"`
	DisplayName    string                 `json:"displayName"`
	JoinedAt       time.Time              `json:"joinedAt"`
	Evaluated      bool                   `json:"evaluated"`
	Rank           int                    `json:"rank,omitempty"`
	Analytics      PlayerAnalytics        `json:"analytics"`
	TagPerformance map[string]TagAccuracy `json:"tagPerformance,omitempty"`
	Timeline       []QuestionOutcome      `json:"timeline,omitempty"`
}

// Battle is one two-player match. Questions and players are stored as JSON
// documents on the row; the whole record is written back under a per-battle
// lock with an optimistic version check.
// swagger:model Battle
type Battle struct {
	UUIDBase
	JoinCode        string           `gorm:"size:12;uniqueIndex;not null" json:"joinCode"`
	Name            string           `gorm:"size:255;not null" json:"name"`
	Tags            []string         `gorm:"serializer:json" json:"tags"`
	CreatorID       uint             `gorm:"index" json:"creatorId"`
	DurationMinutes int              `json:"durationMinutes"`
	Questions       []BattleQuestion `gorm:"serializer:json" json:"questions"`
	Players         []BattlePlayer   `gorm:"serializer:json" json:"players"`
	Status          BattleStatus     `gorm:"size:20;index;default:'waiting'" json:"status"`
	Version         int64            `gorm:"default:1" json:"-"`
}

func (Battle) TableName() string {
	return "battles"
}

// PlayerIndex returns the position of userID in Players, or -1.
func (b *Battle) PlayerIndex(userID uint) int {
	for i := range b.Players {
		if b.Players[i].UserID == userID {
			return i
		}
	}
	return -1
}
