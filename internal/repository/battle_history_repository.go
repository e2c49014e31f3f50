package repository

import (
	"github.com/harshitsingh2007/GNDEC-LEARN-NOVA-sub001/internal/model"

	"gorm.io/gorm"
)

type BattleHistoryRepository struct {
	DB *gorm.DB
}

func NewBattleHistoryRepository(db *gorm.DB) *BattleHistoryRepository {
	return &BattleHistoryRepository{DB: db}
}

func (r *BattleHistoryRepository) Append(entry *model.BattleHistory) error {
	return r.DB.Create(entry).Error
}

// ListByUser returns the user's history, newest first.
func (r *BattleHistoryRepository) ListByUser(userID uint, limit int) ([]model.BattleHistory, error) {
	if limit <= 0 {
		limit = 100
	}
	var entries []model.BattleHistory
	err := r.DB.Where("user_id = ?", userID).
		Order("played_at desc").Limit(limit).Find(&entries).Error
	return entries, err
}
