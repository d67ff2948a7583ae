package game

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestIsPlausible_Edges(t *testing.T) {
	tests := []struct {
		reaction int
		want     bool
	}{
		{-1, false},
		{0, false},
		{50, false},
		{119, false},
		{120, true},
		{180, true},
		{2000, true},
		{2001, false},
	}
	for _, tt := range tests {
		if got := IsPlausible(tt.reaction); got != tt.want {
			t.Errorf("IsPlausible(%d) = %v, want %v", tt.reaction, got, tt.want)
		}
	}
}

func TestIsPlausible_Properties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("rejects bot-fast reactions", prop.ForAll(
		func(r int) bool { return !IsPlausible(r) },
		gen.IntRange(-10000, MinHumanReactionMs-1),
	))

	properties.Property("rejects stalled reactions", prop.ForAll(
		func(r int) bool { return !IsPlausible(r) },
		gen.IntRange(MaxReactionMs+1, 100000),
	))

	properties.Property("accepts the human window", prop.ForAll(
		func(r int) bool { return IsPlausible(r) },
		gen.IntRange(MinHumanReactionMs, MaxReactionMs),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
