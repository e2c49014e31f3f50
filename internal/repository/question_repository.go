package repository

import (
	"github.com/harshitsingh2007/GNDEC-LEARN-NOVA-sub001/internal/model"

	"gorm.io/gorm"
)

type QuestionRepository struct {
	DB *gorm.DB
}

func NewQuestionRepository(db *gorm.DB) *QuestionRepository {
	return &QuestionRepository{DB: db}
}

// FindByTags returns all questions of the given type whose tag set intersects
// tags. Tags are matched through the question_tags join table.
func (r *QuestionRepository) FindByTags(tags []string, qType model.QuestionType) ([]model.Question, error) {
	if len(tags) == 0 {
		return nil, nil
	}
	var questions []model.Question
	err := r.DB.
		Joins("JOIN question_tags ON question_tags.question_id = questions.id").
		Where("question_tags.tag IN ?", tags).
		Where("questions.type = ?", qType).
		Group("questions.id").
		Find(&questions).Error
	return questions, err
}

// InsertMany persists questions together with their tag rows. Concurrent
// assemblies may race to store near-duplicate generated questions; that is
// tolerated, questions are immutable and harmless when duplicated.
func (r *QuestionRepository) InsertMany(questions []model.Question) error {
	if len(questions) == 0 {
		return nil
	}
	return r.DB.Transaction(func(tx *gorm.DB) error {
		for i := range questions {
			if err := tx.Create(&questions[i]).Error; err != nil {
				return err
			}
			for _, tag := range questions[i].Tags {
				link := model.QuestionTag{QuestionID: questions[i].ID, Tag: tag}
				if err := tx.Create(&link).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
}

func (r *QuestionRepository) FindByID(id string) (*model.Question, error) {
	var q model.Question
	if err := r.DB.First(&q, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &q, nil
}

func (r *QuestionRepository) Count() (int64, error) {
	var count int64
	err := r.DB.Model(&model.Question{}).Count(&count).Error
	return count, err
}
