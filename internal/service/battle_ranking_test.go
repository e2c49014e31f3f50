package service_test

import (
	"testing"

	"github.com/harshitsingh2007/GNDEC-LEARN-NOVA-sub001/internal/model"
	"github.com/harshitsingh2007/GNDEC-LEARN-NOVA-sub001/internal/service"
)

func player(userID uint, score int) model.BattlePlayer {
	return model.BattlePlayer{
		UserID:    userID,
		Analytics: model.PlayerAnalytics{Score: score},
	}
}

func TestRankPlayersOrdersByScore(t *testing.T) {
	players := []model.BattlePlayer{player(1, 60), player(2, 80)}
	service.RankPlayers(players)

	if players[0].UserID != 2 || players[0].Rank != 1 {
		t.Fatalf("expected user 2 ranked first, got %+v", players[0])
	}
	if players[1].UserID != 1 || players[1].Rank != 2 {
		t.Fatalf("expected user 1 ranked second, got %+v", players[1])
	}
}

func TestRankPlayersTiesGetSequentialRanks(t *testing.T) {
	players := []model.BattlePlayer{player(1, 10), player(2, 10), player(3, 5)}
	service.RankPlayers(players)

	// Equal scores keep their relative order and still get distinct ranks.
	if players[0].UserID != 1 || players[0].Rank != 1 {
		t.Fatalf("unexpected first: %+v", players[0])
	}
	if players[1].UserID != 2 || players[1].Rank != 2 {
		t.Fatalf("unexpected second: %+v", players[1])
	}
	if players[2].Rank != 3 {
		t.Fatalf("unexpected third: %+v", players[2])
	}
}

func TestSummarizeMatch(t *testing.T) {
	summary := service.SummarizeMatch([]model.BattlePlayer{player(1, 80), player(2, 60)})

	if summary.TotalPlayers != 2 {
		t.Fatalf("expected 2 players, got %d", summary.TotalPlayers)
	}
	if summary.HighestScore != 80 || summary.LowestScore != 60 || summary.AverageScore != 70 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
}

func TestSummarizeMatchEmpty(t *testing.T) {
	summary := service.SummarizeMatch(nil)
	if summary.TotalPlayers != 0 || summary.AverageScore != 0 {
		t.Fatalf("unexpected empty summary: %+v", summary)
	}
}
