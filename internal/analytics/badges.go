package analytics

type BadgeID string

const (
	BadgeFiveGames    BadgeID = "FIVE_GAMES"
	BadgeHundredGames BadgeID = "HUNDRED_GAMES"
	BadgePerfectScore BadgeID = "PERFECT_SCORE"
	BadgeTopOnePct    BadgeID = "TOP_1_PERCENT"
)

const (
	fiveGamesThreshold    = 5
	hundredGamesThreshold = 100
	// PerfectReactionMs is the reaction time at or under which a round counts as perfect.
	PerfectReactionMs = 100
	// MinPlayersForTopPercent is the population below which TOP_1_PERCENT is never awarded.
	MinPlayersForTopPercent = 10
)

type Badge struct {
	ID          BadgeID `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
}

var AllBadges = map[BadgeID]Badge{
	BadgeFiveGames:    {ID: BadgeFiveGames, Name: "Rookie", Description: "Completed your first 5 verified games"},
	BadgeHundredGames: {ID: BadgeHundredGames, Name: "Centurion", Description: "Completed 100 verified games"},
	BadgePerfectScore: {ID: BadgePerfectScore, Name: "Godspeed", Description: "Achieved a reaction time of 100ms or less"},
	BadgeTopOnePct:    {ID: BadgeTopOnePct, Name: "Elite Reflex", Description: "Reached the top 1% of all players"},
}

// BadgeOrder is the order badges are listed and evaluated in.
var BadgeOrder = []BadgeID{BadgeFiveGames, BadgeHundredGames, BadgePerfectScore, BadgeTopOnePct}

func ParseBadgeID(s string) (BadgeID, bool) {
	id := BadgeID(s)
	_, ok := AllBadges[id]
	return id, ok
}

// BadgeInputs is everything the badge rules look at for one wallet.
type BadgeInputs struct {
	TotalGames int
	BestScore  int
	// CurrentReactionMs is the reaction of the round just submitted, if any.
	CurrentReactionMs  *int
	HasPerfectReaction bool
	TotalPlayers       int
	// TopThreshold is the lowest best score inside the top 1% slice.
	// Ignored unless TotalPlayers reaches MinPlayersForTopPercent.
	TopThreshold int
}

// EvaluateBadges applies the badge rules to pre-gathered inputs.
func EvaluateBadges(in BadgeInputs) []BadgeID {
	earned := []BadgeID{}

	if in.TotalGames >= fiveGamesThreshold {
		earned = append(earned, BadgeFiveGames)
	}

	if in.TotalGames >= hundredGamesThreshold {
		earned = append(earned, BadgeHundredGames)
	}

	// Perfect: this round, or any verified round in history
	if (in.CurrentReactionMs != nil && *in.CurrentReactionMs <= PerfectReactionMs) || in.HasPerfectReaction {
		earned = append(earned, BadgePerfectScore)
	}

	if in.TotalPlayers >= MinPlayersForTopPercent && in.BestScore >= in.TopThreshold {
		earned = append(earned, BadgeTopOnePct)
	}

	return earned
}

// TopSliceSize is ceil(1% of players).
func TopSliceSize(players int) int {
	return (players + 99) / 100
}
