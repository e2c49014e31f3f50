package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/harshitsingh2007/GNDEC-LEARN-NOVA-sub001/internal/model"
	"github.com/harshitsingh2007/GNDEC-LEARN-NOVA-sub001/internal/repository"
	"github.com/harshitsingh2007/GNDEC-LEARN-NOVA-sub001/internal/util"

	"gorm.io/gorm"
)

// UserService is the account side of the platform: profiles, experience and
// battle history. It implements AccountLedger for the battle engine.
type UserService struct {
	UserRepo    *repository.UserRepository
	HistoryRepo *repository.BattleHistoryRepository
	Storage     *StorageService
}

func NewUserService(userRepo *repository.UserRepository, historyRepo *repository.BattleHistoryRepository, storage *StorageService) *UserService {
	return &UserService{
		UserRepo:    userRepo,
		HistoryRepo: historyRepo,
		Storage:     storage,
	}
}

func (s *UserService) GetProfile(userID uint) (*model.User, error) {
	user, err := s.UserRepo.FindByID(userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrUserNotFound
	}
	return user, err
}

type UpdateProfileRequest struct {
	Name string `json:"name" binding:"required"`
}

func (s *UserService) UpdateProfile(userID uint, req UpdateProfileRequest) (*model.User, error) {
	user, err := s.GetProfile(userID)
	if err != nil {
		return nil, err
	}
	user.Name = req.Name
	if err := s.UserRepo.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}

// UploadAvatar stores the image and updates the user's avatar URL.
func (s *UserService) UploadAvatar(ctx context.Context, userID uint, filename string, reader io.Reader, size int64, contentType string) (string, error) {
	user, err := s.GetProfile(userID)
	if err != nil {
		return "", err
	}

	object := fmt.Sprintf("avatars/%d/%d%s", userID, time.Now().UnixNano(), filepath.Ext(filename))
	url, err := s.Storage.Upload(ctx, object, reader, size, contentType)
	if err != nil {
		return "", err
	}

	user.Avatar = url
	if err := s.UserRepo.Update(user); err != nil {
		return "", err
	}
	return url, nil
}

func (s *UserService) TouchLastSeen(userID uint) error {
	return s.UserRepo.UpdateLastSeen(userID)
}

// AwardExperience implements AccountLedger.
func (s *UserService) AwardExperience(userID uint, amount int) error {
	return s.UserRepo.AddXP(userID, amount)
}

// AppendHistory implements AccountLedger.
func (s *UserService) AppendHistory(entry *model.BattleHistory) error {
	return s.HistoryRepo.Append(entry)
}

// BattleHistory returns the user's battle records, newest first.
func (s *UserService) BattleHistory(userID uint, limit int) ([]model.BattleHistory, error) {
	return s.HistoryRepo.ListByUser(userID, limit)
}
