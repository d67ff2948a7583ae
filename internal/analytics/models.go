package analytics

import "reflexa/internal/db"

type EligibilityRequest struct {
	Wallet            string
	CurrentReactionMs *int
}

type PlayerProfile struct {
	Stats       db.PlayerStatsRecord `json:"stats"`
	RecentGames []db.ScoreRecord     `json:"recentGames"`
}

const (
	LeaderboardSize = 10
	RecentGamesSize = 5
)
