package model

type QuestionType string

const (
	QuestionMCQ      QuestionType = "mcq"
	QuestionFreeText QuestionType = "text"
)

type QuestionSource string

const (
	SourceAuthored  QuestionSource = "authored"
	SourceGenerated QuestionSource = "generated"
)

// Question is one bank item. MCQ questions carry exactly four options and a
// correct answer drawn from them; free-text questions carry grading guidelines
// instead. Questions are never mutated after creation.
// swagger:model Question
type Question struct {
	UUIDBase
	Text              string         `gorm:"type:text;not null" json:"text"`
	Type              QuestionType   `gorm:"size:20;index;not null" json:"type"`
	Options           []string       `gorm:"serializer:json" json:"options,omitempty"`
	CorrectAnswer     string         `gorm:"type:text" json:"correctAnswer,omitempty"`
	GradingGuidelines string         `gorm:"type:text" json:"gradingGuidelines,omitempty"`
	Category          string         `gorm:"size:100" json:"category"`
	Difficulty        string         `gorm:"size:20" json:"difficulty"`
	Tags              []string       `gorm:"serializer:json" json:"tags"`
	Source            QuestionSource `gorm:"size:20;default:'authored'" json:"source"`
}

func (Question) TableName() string {
	return "questions"
}

// QuestionTag mirrors Question.Tags into a join table so tag-intersection
// lookups stay in SQL.
type QuestionTag struct {
	BaseModel
	QuestionID string `gorm:"size:36;index:idx_question_tag,unique" json:"questionId"`
	Tag        string `gorm:"size:100;index:idx_question_tag,unique;index" json:"tag"`
}

func (QuestionTag) TableName() string {
	return "question_tags"
}
