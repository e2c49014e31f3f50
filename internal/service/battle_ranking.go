package service

import (
	"sort"

	"github.com/harshitsingh2007/GNDEC-LEARN-NOVA-sub001/internal/model"
)

// MatchSummary is the match-level aggregate over all participants.
type MatchSummary struct {
	TotalPlayers int     `json:"totalPlayers"`
	HighestScore int     `json:"highestScore"`
	LowestScore  int     `json:"lowestScore"`
	AverageScore float64 `json:"averageScore"`
}

// RankPlayers orders players by score descending and assigns ranks starting
// at 1. Ties deliberately receive strictly increasing ranks in sort-stable
// order rather than a shared rank.
func RankPlayers(players []model.BattlePlayer) {
	sort.SliceStable(players, func(i, j int) bool {
		return players[i].Analytics.Score > players[j].Analytics.Score
	})
	for i := range players {
		players[i].Rank = i + 1
	}
}

// SummarizeMatch computes totals over already-evaluated players.
func SummarizeMatch(players []model.BattlePlayer) MatchSummary {
	summary := MatchSummary{TotalPlayers: len(players)}
	if len(players) == 0 {
		return summary
	}
	total := 0
	summary.HighestScore = players[0].Analytics.Score
	summary.LowestScore = players[0].Analytics.Score
	for _, p := range players {
		score := p.Analytics.Score
		total += score
		if score > summary.HighestScore {
			summary.HighestScore = score
		}
		if score < summary.LowestScore {
			summary.LowestScore = score
		}
	}
	summary.AverageScore = float64(total) / float64(len(players))
	return summary
}
