// Bulk question bank import.
//
// Loads authored questions from a JSON file into the bank, including their
// tag rows. Intended for first deployment or topping up the bank from a
// curated export.
//
// Usage: go run scripts/import_questions.go questions.json

package main

import (
	"encoding/json"
	"log"
	"os"

	"github.com/harshitsingh2007/GNDEC-LEARN-NOVA-sub001/internal/config"
	"github.com/harshitsingh2007/GNDEC-LEARN-NOVA-sub001/internal/model"
	"github.com/harshitsingh2007/GNDEC-LEARN-NOVA-sub001/internal/repository"
	"github.com/harshitsingh2007/GNDEC-LEARN-NOVA-sub001/internal/service"
	"github.com/harshitsingh2007/GNDEC-LEARN-NOVA-sub001/pkg/database"
	"github.com/harshitsingh2007/GNDEC-LEARN-NOVA-sub001/pkg/logger"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: go run scripts/import_questions.go <questions.json>")
	}

	cfg, err := config.LoadConfig("configs")
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logger.InitLogger(cfg)

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}

	data, err := os.ReadFile(os.Args[1])
	if err != nil {
		log.Fatalf("failed to read %s: %v", os.Args[1], err)
	}

	var questions []model.Question
	if err := json.Unmarshal(data, &questions); err != nil {
		log.Fatalf("failed to parse questions: %v", err)
	}

	for i := range questions {
		questions[i].Tags = service.NormalizeTags(questions[i].Tags)
		if questions[i].Source == "" {
			questions[i].Source = model.SourceAuthored
		}
	}

	repo := repository.NewQuestionRepository(db)
	if err := repo.InsertMany(questions); err != nil {
		log.Fatalf("import failed: %v", err)
	}

	log.Printf("imported %d questions", len(questions))
}
