package game

import (
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
)

// Simulated opponents. Bots answer through the same submit paths as real
// players after a randomized delay, so the lifecycle cannot tell them apart.

var botNames = []string{"tanuki", "kitsune", "kappa", "tengu", "okami", "inoshishi", "tsuru", "kame"}

var botWrongAnswers = []string{"mountain", "river", "fire", "moon", "tree", "gold", "rain", "bird"}

const (
	botMinDelayMs    = 2000
	botMaxDelayMs    = 6000
	botSlowedDelayMs = 2000
	botMinAccuracy   = 0.65
	botMaxAccuracy   = 0.90
)

func newBotState(index int, hintsRemaining int) *playerState {
	name := fmt.Sprintf("%s_bot", botNames[index%len(botNames)])
	if index >= len(botNames) {
		name = fmt.Sprintf("%s_bot_%d", botNames[index%len(botNames)], index/len(botNames))
	}
	return &playerState{
		id:             uuid.NewString(),
		username:       name,
		bot:            true,
		hintsRemaining: hintsRemaining,
	}
}

// scheduleBots draws each bot's response delay and target accuracy for the
// round. Runs before effect decay so a slowed bot still pays the penalty on
// the round the debuff was cast for.
func (r *room) scheduleBots(now time.Time) {
	for _, ps := range r.players {
		if !ps.bot {
			continue
		}
		delayMs := botMinDelayMs + r.rng.Intn(botMaxDelayMs-botMinDelayMs+1)
		if ps.hasEffect(effectSlowed) {
			delayMs += botSlowedDelayMs
		}
		ps.botDueAt = now.Add(time.Duration(delayMs) * time.Millisecond)
		ps.botAccuracy = botMinAccuracy + r.rng.Float64()*(botMaxAccuracy-botMinAccuracy)
	}
}

// runDueBots fires every bot whose delay has elapsed. A bot answer can
// complete the round, so the phase is re-checked between bots.
func (r *room) runDueBots(now time.Time) {
	for _, ps := range r.players {
		if r.phase != PHASE_PLAYING {
			return
		}
		if !ps.bot || ps.hasAnswered || ps.botDueAt.IsZero() || now.Before(ps.botDueAt) {
			continue
		}
		r.submitBotAnswer(ps, now)
	}
}

func (r *room) submitBotAnswer(ps *playerState, now time.Time) {
	q := r.currentQuestion
	if q == nil {
		return
	}
	correct := r.rng.Float64() < ps.botAccuracy

	if r.configs.Mode == MODE_WRITE {
		var score float64
		if correct {
			score = 50 + r.rng.Float64()*40
		} else {
			score = 10 + r.rng.Float64()*25
		}
		r.submitDrawingScore(ps.id, score, nil, now.Sub(r.roundStart).Milliseconds(), now)
		return
	}

	answer := q.Meaning
	if !correct {
		answer = r.wrongBotAnswer(q)
	}
	r.submitAnswer(ps.id, answer, now)
}

func (r *room) wrongBotAnswer(q *Question) string {
	for range botWrongAnswers {
		candidate := botWrongAnswers[r.rng.Intn(len(botWrongAnswers))]
		if !slices.Contains(q.AcceptedAnswers, NormalizeAnswer(candidate)) {
			return candidate
		}
	}
	return "no idea"
}
