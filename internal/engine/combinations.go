package engine

import (
	"fmt"
	"iter"
)

const (
	MinPoolSize = 4
	MaxPoolSize = 7
)

// ErrInvalidPoolSize marks a pool outside the supported 4-7 range.
// It indicates a caller bug and is never retried.
var ErrInvalidPoolSize = fmt.Errorf("pool size must be between %d and %d players", MinPoolSize, MaxPoolSize)

// PoolPlayer is the engine's view of a candidate: identity plus the
// rating already resolved to the relevant scope by the caller.
type PoolPlayer struct {
	ID     string
	Rating int
}

// TeamPair is one candidate split: four players drawn from the pool,
// two per side. Within a side the pair is unordered; role assignment
// happens downstream.
type TeamPair struct {
	Team1 [2]PoolPlayer
	Team2 [2]PoolPlayer
}

// Combinations enumerates every way to pick four players from the pool
// and split them into two pairs. Team order is not collapsed:
// {A,B} vs {C,D} and {C,D} vs {A,B} are distinct candidates, because
// position-aware scoring downstream is not symmetric under a team
// swap. For N players the sequence has C(N,2)*C(N-2,2) elements.
func Combinations(pool []PoolPlayer) (iter.Seq[TeamPair], error) {
	if len(pool) < MinPoolSize || len(pool) > MaxPoolSize {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidPoolSize, len(pool))
	}

	return func(yield func(TeamPair) bool) {
		for i := 0; i < len(pool); i++ {
			for j := i + 1; j < len(pool); j++ {
				rest := make([]PoolPlayer, 0, len(pool)-2)
				for k, p := range pool {
					if k != i && k != j {
						rest = append(rest, p)
					}
				}
				for m := 0; m < len(rest); m++ {
					for n := m + 1; n < len(rest); n++ {
						pair := TeamPair{
							Team1: [2]PoolPlayer{pool[i], pool[j]},
							Team2: [2]PoolPlayer{rest[m], rest[n]},
						}
						if !yield(pair) {
							return
						}
					}
				}
			}
		}
	}, nil
}
