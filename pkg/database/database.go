package database

import (
	"fmt"
	"log"

	"github.com/harshitsingh2007/GNDEC-LEARN-NOVA-sub001/internal/config"
	"github.com/harshitsingh2007/GNDEC-LEARN-NOVA-sub001/internal/model"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func InitDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DBName,
		cfg.Charset,
		cfg.ParseTime,
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	})

	if err != nil {
		return nil, err
	}

	log.Println("Database connection established")

	err = db.AutoMigrate(
		&model.User{},
		&model.Question{},
		&model.QuestionTag{},
		&model.Battle{},
		&model.BattleHistory{},
	)

	if err != nil {
		return nil, err
	}

	log.Println("Database migration completed")

	// Seed a small starter bank so a fresh install can assemble battles even
	// before the content generator is configured.
	var count int64
	db.Model(&model.Question{}).Count(&count)
	if count == 0 {
		seed := []model.Question{
			{
				Text:          "What is the time complexity of binary search on a sorted array of n elements?",
				Type:          model.QuestionMCQ,
				Options:       []string{"O(log n)", "O(n)", "O(n log n)", "O(1)"},
				CorrectAnswer: "O(log n)",
				Category:      "algorithms",
				Difficulty:    "easy",
				Tags:          []string{"algorithms", "search"},
			},
			{
				Text:          "Which data structure gives O(1) average lookup by key?",
				Type:          model.QuestionMCQ,
				Options:       []string{"Hash table", "Linked list", "Binary tree", "Stack"},
				CorrectAnswer: "Hash table",
				Category:      "data-structures",
				Difficulty:    "easy",
				Tags:          []string{"data-structures"},
			},
			{
				Text:              "Explain the difference between a process and a thread.",
				Type:              model.QuestionFreeText,
				GradingGuidelines: "Award full credit when the answer covers separate address spaces for processes, shared memory for threads within a process, and relative creation/switching cost.",
				Category:          "operating-systems",
				Difficulty:        "medium",
				Tags:              []string{"operating-systems"},
			},
		}
		for i := range seed {
			if err := db.Create(&seed[i]).Error; err != nil {
				continue
			}
			for _, tag := range seed[i].Tags {
				db.Create(&model.QuestionTag{QuestionID: seed[i].ID, Tag: tag})
			}
		}
	}

	return db, nil
}
