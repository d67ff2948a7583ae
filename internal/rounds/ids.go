package rounds

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/google/uuid"
)

func NewRoundID() string {
	return uuid.NewString()
}

// DrawDelay picks a delay uniformly from the integers in [minMs, maxMs).
func DrawDelay(minMs, maxMs int) (int, error) {
	if maxMs <= minMs {
		return 0, fmt.Errorf("invalid delay range [%d, %d)", minMs, maxMs)
	}
	n, err := rand.Int(rand.Reader, big.NewInt(int64(maxMs-minMs)))
	if err != nil {
		return 0, err
	}
	return minMs + int(n.Int64()), nil
}
