package game

import (
	"slices"
	"sort"
	"time"

	"kanjibattle/domain/packet"
)

// Round state machine:
//
//	waiting -> starting -> playing <-> (result | skill) -> finished
//
// playing is the only phase accepting answers. Resolution goes through the
// skill phase every skillInterval rounds (when enabled and rounds remain),
// otherwise straight to the result summary. Messages that fail a phase or
// precondition check are dropped silently.

func (r *room) handleStartGameEnvelope(from string, now time.Time) {
	if from != r.hostId || r.phase != PHASE_WAITING {
		return
	}

	if len(r.players) < r.configs.MinPlayers {
		r.rejectAction(from, packet.TypeStartGame, "not enough players")
		return
	}

	// The deck must cover every round and clear the minimum pool size even
	// for short games.
	need := r.configs.RoundsCount
	if need < MIN_QUESTIONS {
		need = MIN_QUESTIONS
	}
	questions, err := r.provider.Questions(r.configs.Tiers, r.configs.Mode, need)
	if err != nil {
		r.rejectAction(from, packet.TypeStartGame, "failed to load questions")
		return
	}
	if r.configs.Mode == MODE_WRITE {
		usable := questions[:0]
		for _, q := range questions {
			if len(q.ReferenceStrokes) > 0 {
				usable = append(usable, q)
			}
		}
		questions = usable
	}
	if len(questions) < MIN_QUESTIONS || len(questions) < r.configs.RoundsCount {
		r.rejectAction(from, packet.TypeStartGame, "not enough questions for the selected tiers")
		return
	}

	r.questions = questions
	r.round = 0
	r.results = nil
	r.phase = PHASE_STARTING
	r.nextTick = now.Add(STARTING_DURATION)
	r.broadcast(packet.MakePacketGameStarted(STARTING_DURATION.Milliseconds()))
	r.updateDescription()
}

func (r *room) startRound(now time.Time) {
	if r.phase != PHASE_STARTING && r.phase != PHASE_RESULT && r.phase != PHASE_SKILL {
		return
	}

	r.round++
	if r.round > r.configs.RoundsCount {
		r.finishGame(now)
		return
	}

	q := &r.questions[r.round-1]
	r.currentQuestion = q

	for _, ps := range r.players {
		ps.resetRoundState()
	}
	// Bots draw their delays before effects decay, so a 1-round slow debuff
	// covers the round it was cast for.
	r.scheduleBots(now)
	for _, ps := range r.players {
		ps.decayEffects()
	}

	r.roundStart = now
	r.nextTick = now.Add(time.Duration(r.configs.TimePerQuestion) * time.Second)
	r.phase = PHASE_PLAYING

	view := packet.QuestionView{
		Id:          q.Id,
		Prompt:      q.Prompt,
		StrokeCount: q.StrokeCount,
		PointValue:  r.pointsFor(q),
	}
	r.broadcast(packet.MakePacketRoundStarted(r.round, r.configs.RoundsCount, view, r.nextTick.UnixMilli()))
}

// --- submissions ---

func (r *room) handleAnswerEnvelope(p *packet.SubmitAnswer, from string, now time.Time) {
	if r.configs.Mode != MODE_READ {
		return
	}
	r.submitAnswer(from, p.Answer, now)
}

func (r *room) submitAnswer(id, answer string, now time.Time) {
	if r.phase != PHASE_PLAYING || r.currentQuestion == nil {
		return
	}
	ps := r.findPlayer(id)
	if ps == nil || ps.hasAnswered {
		return
	}

	ps.answer = answer
	ps.correct = slices.Contains(r.currentQuestion.AcceptedAnswers, NormalizeAnswer(answer))
	ps.latencyMs = now.Sub(r.roundStart).Milliseconds()
	ps.hasAnswered = true

	r.broadcast(packet.MakePacketPlayerAnswered(id))

	if r.allAnswered() {
		r.resolveRound(now)
	}
}

func (r *room) handleDrawingEnvelope(p *packet.SubmitDrawing, from string, now time.Time) {
	if r.configs.Mode != MODE_WRITE || r.phase != PHASE_PLAYING || r.currentQuestion == nil {
		return
	}
	if len(p.Strokes) == 0 {
		return
	}
	q := r.currentQuestion
	results := MatchStrokes(p.Strokes, q.ReferenceStrokes, DefaultTolerance)
	timeLimitMs := int64(r.configs.TimePerQuestion) * 1000
	score := CalculateDrawingScore(results, q.StrokeCount, p.DrawingTimeMs, timeLimitMs)
	r.submitDrawingScore(from, score, results, p.DrawingTimeMs, now)
}

// submitDrawingScore is the write-mode chokepoint shared by graded human
// submissions and simulated bot drawings.
func (r *room) submitDrawingScore(id string, score float64, results []packet.StrokeResult, drawingTimeMs int64, now time.Time) {
	if r.phase != PHASE_PLAYING || r.currentQuestion == nil {
		return
	}
	ps := r.findPlayer(id)
	if ps == nil || ps.hasAnswered {
		return
	}

	ps.strokeScore = score
	ps.strokeResults = results
	ps.correct = score >= WRITE_CORRECT_THRESHOLD
	ps.latencyMs = now.Sub(r.roundStart).Milliseconds()
	ps.hasAnswered = true
	ps.strokeScoreSum += score
	ps.strokeScoreUses++

	r.broadcast(packet.MakePacketPlayerAnswered(id))

	if r.allAnswered() {
		r.resolveRound(now)
	}
}

// --- hints ---

func (r *room) handleHintEnvelope(from string) {
	if r.phase != PHASE_PLAYING || r.currentQuestion == nil {
		return
	}
	ps := r.findPlayer(from)
	if ps == nil || ps.hasAnswered || ps.hintsRemaining <= 0 {
		return
	}
	if ps.hintsRevealed >= len(r.currentQuestion.Hints) {
		return
	}

	hint := r.currentQuestion.Hints[ps.hintsRevealed]
	ps.hintsRevealed++
	ps.hintsRemaining--
	r.sendTo(ps, packet.MakePacketHintRevealed(hint, ps.hintsRemaining))
}

// --- resolution ---

func (r *room) resolveRound(now time.Time) {
	if r.phase != PHASE_PLAYING {
		// Already resolved: the timer and the last answer raced, whoever
		// came second lands here.
		return
	}
	q := r.currentQuestion
	if q == nil {
		return
	}

	fastest := fastestCorrect(r.players)

	record := roundRecord{
		round:      r.round,
		questionId: q.Id,
		answer:     q.Meaning,
	}
	if fastest != nil {
		record.fastestId = fastest.id
	}

	pointsCorrect := r.pointsFor(q)
	for _, ps := range r.players {
		points := roundPoints(ps, pointsCorrect, r.configs.PointsPenalty, r.configs.Mode)
		if ps == fastest {
			points += SPEED_BONUS
		}
		applyRoundOutcome(ps, points)

		record.outcomes = append(record.outcomes, packet.PlayerOutcome{
			Id:          ps.id,
			Username:    ps.username,
			Answered:    ps.hasAnswered,
			Answer:      ps.answer,
			Correct:     ps.correct,
			StrokeScore: ps.strokeScore,
			Strokes:     ps.strokeResults,
			LatencyMs:   ps.latencyMs,
			Points:      points,
			Score:       ps.score,
			Streak:      ps.streak,
		})
	}

	r.results = append(r.results, record)

	if r.round >= r.configs.RoundsCount {
		r.broadcast(packet.MakePacketRoundSummary(r.summaryOf(&record, now)))
		r.finishGame(now)
		return
	}

	if r.configs.SkillsEnabled && r.configs.SkillInterval > 0 && r.round%r.configs.SkillInterval == 0 {
		r.phase = PHASE_SKILL
		r.nextTick = now.Add(SKILL_PHASE_DURATION)
		r.broadcast(packet.MakePacketSkillPhaseStarted(r.round, skillNames(), r.nextTick.UnixMilli()))
		return
	}

	r.enterResult(now)
}

// enterResult shows the latest round summary. Reached directly from
// resolution, or from the skill phase once a skill was picked or its timer
// ran out.
func (r *room) enterResult(now time.Time) {
	if r.phase != PHASE_PLAYING && r.phase != PHASE_SKILL {
		return
	}
	r.phase = PHASE_RESULT
	r.nextTick = now.Add(RESULT_DURATION)
	if len(r.results) > 0 {
		r.broadcast(packet.MakePacketRoundSummary(r.summaryOf(&r.results[len(r.results)-1], now)))
	}
}

func (r *room) summaryOf(record *roundRecord, now time.Time) *packet.RoundSummary {
	return &packet.RoundSummary{
		Round:      record.round,
		QuestionId: record.questionId,
		Answer:     record.answer,
		FastestId:  record.fastestId,
		Outcomes:   record.outcomes,
		NextTick:   r.nextTick.UnixMilli(),
	}
}

// --- skills ---

func (r *room) handleSkillEnvelope(p *packet.SelectSkill, from string, now time.Time) {
	if r.phase != PHASE_SKILL {
		return
	}
	caster := r.findPlayer(from)
	if caster == nil {
		return
	}

	skill := SkillType(p.Skill)
	var target *playerState
	if p.TargetId != "" {
		target = r.findPlayer(p.TargetId)
	}
	if SkillRequiresTarget(skill) && target == nil {
		return
	}

	if !applySkill(skill, caster, target, r.players) {
		return
	}

	r.broadcast(packet.MakePacketSkillApplied(caster.id, string(skill), p.TargetId))
	r.enterResult(now)
}

// --- host control & game end ---

func (r *room) handleAdvanceEnvelope(from string, now time.Time) {
	if from != r.hostId {
		return
	}
	switch r.phase {
	case PHASE_RESULT:
		r.startRound(now)
	case PHASE_SKILL:
		r.enterResult(now)
	case PHASE_FINISHED:
		r.endGame()
	}
}

func (r *room) finishGame(now time.Time) {
	r.phase = PHASE_FINISHED
	r.currentQuestion = nil
	r.nextTick = now.Add(PENDING_DURATION)
	r.broadcast(packet.MakePacketGameFinished(r.gameResults()))
	r.updateDescription()
}

func (r *room) gameResults() *packet.GameFinished {
	rankings := make([]packet.PlayerRanking, 0, len(r.players))
	for _, ps := range r.players {
		accuracy := 0.0
		if total := ps.correctCount + ps.incorrectCount; total > 0 {
			accuracy = float64(ps.correctCount) / float64(total)
		}
		avgStroke := 0.0
		if ps.strokeScoreUses > 0 {
			avgStroke = ps.strokeScoreSum / float64(ps.strokeScoreUses)
		}
		rankings = append(rankings, packet.PlayerRanking{
			Id:             ps.id,
			Username:       ps.username,
			Score:          ps.score,
			Correct:        ps.correctCount,
			Incorrect:      ps.incorrectCount,
			Accuracy:       accuracy,
			AvgStrokeScore: avgStroke,
		})
	}
	sort.SliceStable(rankings, func(i, j int) bool {
		return rankings[i].Score > rankings[j].Score
	})

	results := &packet.GameFinished{
		Rankings:     rankings,
		Rounds:       len(r.results),
		PlayersCount: len(rankings),
	}
	if len(rankings) > 0 {
		results.WinnerId = rankings[0].Id
	}
	return results
}

// --- timers ---

// handleTick drives every timer-based transition. Whichever of "timer
// fired" or "last player answered" runs first wins; the loser hits the
// phase guard and becomes a no-op.
func (r *room) handleTick(now time.Time) {
	switch r.phase {
	case PHASE_WAITING:
		if !r.nextTick.After(now) {
			r.endGame()
		}
	case PHASE_STARTING:
		if !r.nextTick.After(now) {
			r.startRound(now)
		}
	case PHASE_PLAYING:
		r.runDueBots(now)
		if r.phase == PHASE_PLAYING && !r.nextTick.After(now) {
			r.resolveRound(now)
		}
	case PHASE_RESULT:
		if !r.nextTick.After(now) {
			r.startRound(now)
		}
	case PHASE_SKILL:
		if !r.nextTick.After(now) {
			r.enterResult(now)
		}
	case PHASE_FINISHED:
		if !r.nextTick.After(now) {
			r.endGame()
		}
	}
}

func (r *room) pointsFor(q *Question) int {
	if q.PointValue > 0 {
		return q.PointValue
	}
	return r.configs.PointsCorrect
}

func (r *room) rejectAction(to string, action, reason string) {
	ps := r.findPlayer(to)
	if ps == nil {
		return
	}
	r.sendTo(ps, packet.MakePacketActionRejected(action, reason))
}
