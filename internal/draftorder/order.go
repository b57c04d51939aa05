// Package draftorder computes snake ("serpentine") draft turn sequencing.
// It is pure math over team counts and round counts; the store caches the
// computed order and selectors resolve the team on the clock from it.
package draftorder

// Compute returns the full pick sequence for a snake draft as a flat list of
// team ranks, length teamCount*maxRounds. Odd rounds (0-indexed even) run
// 1..N ascending, even rounds run N..1 descending. Returns nil when either
// input is non-positive.
func Compute(teamCount, maxRounds int) []int {
	if teamCount <= 0 || maxRounds <= 0 {
		return nil
	}

	order := make([]int, 0, teamCount*maxRounds)
	for round := 0; round < maxRounds; round++ {
		if round%2 == 0 {
			for rank := 1; rank <= teamCount; rank++ {
				order = append(order, rank)
			}
		} else {
			for rank := teamCount; rank >= 1; rank-- {
				order = append(order, rank)
			}
		}
	}
	return order
}

// TurnToRound converts a 1-indexed overall turn number to its 1-indexed
// round. Returns 0 for non-positive inputs.
func TurnToRound(turn, teamCount int) int {
	if turn <= 0 || teamCount <= 0 {
		return 0
	}
	return (turn-1)/teamCount + 1
}

// TurnToPickInRound converts a 1-indexed overall turn number to the
// 1-indexed pick position within its round. Returns 0 for non-positive
// inputs.
func TurnToPickInRound(turn, teamCount int) int {
	if turn <= 0 || teamCount <= 0 {
		return 0
	}
	return (turn-1)%teamCount + 1
}

// RankForTurn resolves the team rank on the clock for a 1-indexed turn
// against a precomputed order. ok is false when the turn is out of range:
// either the draft has not started or it has exceeded the configured rounds.
func RankForTurn(order []int, turn int) (rank int, ok bool) {
	if turn <= 0 || turn > len(order) {
		return 0, false
	}
	return order[turn-1], true
}
