package game

import "math"

// roundPoints computes a player's point delta for the round being resolved,
// excluding the fastest-responder bonus which is awarded once per round by
// resolveRound. The returned delta may be negative; the cumulative score is
// clamped at zero by the caller.
func roundPoints(ps *playerState, pointsCorrect, pointsPenalty int, mode GameMode) int {
	if !ps.hasAnswered {
		return 0
	}

	if ps.correct {
		points := pointsCorrect
		if mode == MODE_WRITE {
			points = int(math.Round(float64(pointsCorrect) * ps.strokeScore / 100))
		}
		if ps.hasEffect(effectDoublePoints) {
			points *= 2
		}
		return points
	}

	if ps.hasEffect(effectShield) {
		return 0
	}
	return -pointsPenalty
}

// applyRoundOutcome folds the resolved delta into the player's cumulative
// stats. Streaks reset on a wrong answer and on a missed round; the
// incorrect counter only moves when the player actively answered wrong.
func applyRoundOutcome(ps *playerState, points int) {
	ps.score += points
	if ps.score < 0 {
		ps.score = 0
	}

	switch {
	case ps.hasAnswered && ps.correct:
		ps.correctCount++
		ps.streak++
	case ps.hasAnswered:
		ps.incorrectCount++
		ps.streak = 0
	default:
		ps.streak = 0
	}
}

// fastestCorrect returns the player who answered correctly with the lowest
// latency, or nil if nobody got it right. Ties go to roster order.
func fastestCorrect(players []*playerState) *playerState {
	var fastest *playerState
	for _, ps := range players {
		if !ps.hasAnswered || !ps.correct {
			continue
		}
		if fastest == nil || ps.latencyMs < fastest.latencyMs {
			fastest = ps
		}
	}
	return fastest
}
