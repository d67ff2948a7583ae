package analytics

import "testing"

func intPtr(v int) *int { return &v }

func TestEvaluateBadges_NewPlayer(t *testing.T) {
	badges := EvaluateBadges(BadgeInputs{TotalGames: 1, BestScore: 500, TotalPlayers: 1})
	if len(badges) != 0 {
		t.Errorf("expected no badges, got %v", badges)
	}
	if badges == nil {
		t.Error("badges should be an empty slice, not nil")
	}
}

func TestEvaluateBadges_FiveGames(t *testing.T) {
	if !hasBadge(EvaluateBadges(BadgeInputs{TotalGames: 5}), BadgeFiveGames) {
		t.Error("should earn FIVE_GAMES with 5 games")
	}
	if hasBadge(EvaluateBadges(BadgeInputs{TotalGames: 4}), BadgeFiveGames) {
		t.Error("should not earn FIVE_GAMES with 4 games")
	}
}

func TestEvaluateBadges_HundredGames(t *testing.T) {
	badges := EvaluateBadges(BadgeInputs{TotalGames: 100})
	if !hasBadge(badges, BadgeHundredGames) || !hasBadge(badges, BadgeFiveGames) {
		t.Errorf("100 games should earn both game-count badges, got %v", badges)
	}
	if hasBadge(EvaluateBadges(BadgeInputs{TotalGames: 99}), BadgeHundredGames) {
		t.Error("should not earn HUNDRED_GAMES with 99 games")
	}
}

func TestEvaluateBadges_PerfectScore(t *testing.T) {
	tests := []struct {
		name string
		in   BadgeInputs
		want bool
	}{
		{"current at threshold", BadgeInputs{CurrentReactionMs: intPtr(100)}, true},
		{"current above threshold", BadgeInputs{CurrentReactionMs: intPtr(101)}, false},
		{"history only", BadgeInputs{HasPerfectReaction: true}, true},
		{"slow current but perfect history", BadgeInputs{CurrentReactionMs: intPtr(300), HasPerfectReaction: true}, true},
		{"neither", BadgeInputs{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := hasBadge(EvaluateBadges(tt.in), BadgePerfectScore); got != tt.want {
				t.Errorf("PERFECT_SCORE = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEvaluateBadges_TopOnePercent(t *testing.T) {
	tests := []struct {
		name string
		in   BadgeInputs
		want bool
	}{
		{"too few players", BadgeInputs{TotalPlayers: 9, BestScore: 1000, TopThreshold: 0}, false},
		{"at threshold", BadgeInputs{TotalPlayers: 10, BestScore: 900, TopThreshold: 900}, true},
		{"below threshold", BadgeInputs{TotalPlayers: 10, BestScore: 899, TopThreshold: 900}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := hasBadge(EvaluateBadges(tt.in), BadgeTopOnePct); got != tt.want {
				t.Errorf("TOP_1_PERCENT = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEvaluateBadges_Order(t *testing.T) {
	badges := EvaluateBadges(BadgeInputs{
		TotalGames:         150,
		BestScore:          1000,
		HasPerfectReaction: true,
		TotalPlayers:       50,
		TopThreshold:       1000,
	})
	if len(badges) != len(BadgeOrder) {
		t.Fatalf("expected all badges, got %v", badges)
	}
	for i, id := range BadgeOrder {
		if badges[i] != id {
			t.Errorf("badges[%d] = %s, want %s", i, badges[i], id)
		}
	}
}

func TestTopSliceSize(t *testing.T) {
	tests := []struct{ players, want int }{
		{10, 1}, {99, 1}, {100, 1}, {101, 2}, {250, 3},
	}
	for _, tt := range tests {
		if got := TopSliceSize(tt.players); got != tt.want {
			t.Errorf("TopSliceSize(%d) = %d, want %d", tt.players, got, tt.want)
		}
	}
}

func TestParseBadgeID(t *testing.T) {
	if _, ok := ParseBadgeID("FIVE_GAMES"); !ok {
		t.Error("FIVE_GAMES should parse")
	}
	if _, ok := ParseBadgeID("five_games"); ok {
		t.Error("badge ids are case-sensitive")
	}
}

func TestAllBadges_Complete(t *testing.T) {
	for _, id := range BadgeOrder {
		b, ok := AllBadges[id]
		if !ok {
			t.Errorf("missing metadata for %s", id)
			continue
		}
		if b.ID != id || b.Name == "" || b.Description == "" {
			t.Errorf("incomplete metadata for %s: %+v", id, b)
		}
	}
}

func hasBadge(badges []BadgeID, id BadgeID) bool {
	for _, b := range badges {
		if b == id {
			return true
		}
	}
	return false
}
