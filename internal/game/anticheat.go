package game

const (
	// MinHumanReactionMs is the fastest visual-motor response accepted from a person.
	MinHumanReactionMs = 120
	// MaxReactionMs marks an attempt as abandoned.
	MaxReactionMs = 2000
)

// IsPlausible reports whether a reported reaction time could have come from a
// human player who was actually paying attention.
func IsPlausible(reactionMs int) bool {
	if reactionMs < MinHumanReactionMs {
		return false // bot-fast
	}
	if reactionMs > MaxReactionMs {
		return false // stalled
	}
	return true
}
