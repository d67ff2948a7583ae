package game

const (
	MaxScore = 1000
	MinScore = 100
)

type Tier string

const (
	TierLegendary = Tier("legendary")
	TierExcellent = Tier("excellent")
	TierGood      = Tier("good")
	TierAverage   = Tier("average")
	TierSlow      = Tier("slow")
)

// Score maps a reaction time to points. The curve is non-increasing in t and
// never drops below MinScore.
func Score(t int) int {
	switch {
	case t < 150:
		return MaxScore
	case t < 200:
		return 950 - (t - 150)
	case t < 250:
		return 900 - (t-200)*2
	case t < 350:
		return 800 - (t-250)*2
	case t < 500:
		return 600 - (t - 350)
	}
	// 450 - 0.5*(t-500), halves rounded up
	s := 450 - (t-500)/2
	if s < MinScore {
		return MinScore
	}
	return s
}

func TierFor(t int) Tier {
	switch {
	case t < 180:
		return TierLegendary
	case t < 250:
		return TierExcellent
	case t < 350:
		return TierGood
	case t < 500:
		return TierAverage
	default:
		return TierSlow
	}
}
