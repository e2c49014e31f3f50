package repository

import (
	"errors"

	"github.com/harshitsingh2007/GNDEC-LEARN-NOVA-sub001/internal/model"
	"github.com/harshitsingh2007/GNDEC-LEARN-NOVA-sub001/internal/util"

	"gorm.io/gorm"
)

type BattleRepository struct {
	DB *gorm.DB
}

func NewBattleRepository(db *gorm.DB) *BattleRepository {
	return &BattleRepository{DB: db}
}

func (r *BattleRepository) Create(battle *model.Battle) error {
	return r.DB.Create(battle).Error
}

func (r *BattleRepository) FindByID(id string) (*model.Battle, error) {
	var battle model.Battle
	if err := r.DB.First(&battle, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrBattleNotFound
		}
		return nil, err
	}
	return &battle, nil
}

func (r *BattleRepository) FindByJoinCode(code string) (*model.Battle, error) {
	var battle model.Battle
	if err := r.DB.First(&battle, "join_code = ?", code).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrBattleNotFound
		}
		return nil, err
	}
	return &battle, nil
}

// Update writes players/status back guarded by the optimistic version column.
// A stale write touches zero rows and reports ErrConcurrentModification.
func (r *BattleRepository) Update(battle *model.Battle) error {
	prev := battle.Version
	battle.Version = prev + 1
	res := r.DB.Model(&model.Battle{}).
		Where("id = ? AND version = ?", battle.ID, prev).
		Select("players", "status", "version").
		Updates(battle)
	if res.Error != nil {
		battle.Version = prev
		return res.Error
	}
	if res.RowsAffected == 0 {
		battle.Version = prev
		return util.ErrConcurrentModification
	}
	return nil
}

func (r *BattleRepository) List(limit int) ([]model.Battle, error) {
	if limit <= 0 {
		limit = 50
	}
	var battles []model.Battle
	err := r.DB.Order("created_at desc").Limit(limit).Find(&battles).Error
	return battles, err
}

func (r *BattleRepository) JoinCodeExists(code string) (bool, error) {
	var count int64
	err := r.DB.Model(&model.Battle{}).Where("join_code = ?", code).Count(&count).Error
	return count > 0, err
}
