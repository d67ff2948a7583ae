package game

// Config bounds the randomized "go" delay issued with each round.
type Config struct {
	MinDelayMs int
	MaxDelayMs int // exclusive
}

func DefaultConfig() Config {
	return Config{
		MinDelayMs: 2000,
		MaxDelayMs: 5000,
	}
}
