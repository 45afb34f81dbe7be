package game

import (
	"encoding/json"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"kanjibattle/domain/packet"
)

func botRoomConfigs() RoomConfigs {
	return RoomConfigs{
		Mode:            MODE_READ,
		RoundsCount:     2,
		TimePerQuestion: 30,
		MaxPlayers:      3,
		MinPlayers:      1,
		BotsCount:       2,
		PointsCorrect:   100,
		PointsPenalty:   30,
		StartingHints:   3,
	}
}

func TestBots_FillSeatsOnCreation(t *testing.T) {
	t.Parallel()
	host := newScenarioPlayer("host")
	r := NewRoom(host, false, botRoomConfigs(), &MockQuestionProvider{}, rand.New(rand.NewSource(7)))

	require.Len(t, r.players, 3)
	assert.False(t, r.players[0].bot)

	seen := map[string]bool{}
	for _, ps := range r.players[1:] {
		assert.True(t, ps.bot)
		assert.Nil(t, ps.conn)
		assert.Contains(t, ps.username, "_bot")
		assert.False(t, seen[ps.id])
		seen[ps.id] = true
	}
}

func TestBots_NeverOverfillTheRoom(t *testing.T) {
	t.Parallel()
	host := newScenarioPlayer("host")
	configs := botRoomConfigs()
	configs.MaxPlayers = 2
	configs.BotsCount = 5

	r := NewRoom(host, false, configs, &MockQuestionProvider{}, rand.New(rand.NewSource(7)))

	assert.Len(t, r.players, 2)
}

func TestBots_ScheduleWithinDelayBounds(t *testing.T) {
	t.Parallel()
	host := newScenarioPlayer("host")
	r := NewRoom(host, false, botRoomConfigs(), &MockQuestionProvider{}, rand.New(rand.NewSource(7)))

	now := time.Date(2026, 3, 9, 18, 0, 0, 0, time.UTC)
	r.scheduleBots(now)

	for _, ps := range r.players[1:] {
		delay := ps.botDueAt.Sub(now)
		assert.GreaterOrEqual(t, delay, 2*time.Second)
		assert.LessOrEqual(t, delay, 6*time.Second)
		assert.GreaterOrEqual(t, ps.botAccuracy, 0.65)
		assert.LessOrEqual(t, ps.botAccuracy, 0.90)
	}
	// the host is not scheduled
	assert.True(t, r.players[0].botDueAt.IsZero())
}

func TestBots_SlowedDebuffDelaysThem(t *testing.T) {
	t.Parallel()
	host := newScenarioPlayer("host")
	r := NewRoom(host, false, botRoomConfigs(), &MockQuestionProvider{}, rand.New(rand.NewSource(7)))

	slowedBot := r.players[1]
	slowedBot.addEffect(effectSlowed, 1)

	now := time.Date(2026, 3, 9, 18, 0, 0, 0, time.UTC)
	r.scheduleBots(now)

	assert.GreaterOrEqual(t, slowedBot.botDueAt.Sub(now), 4*time.Second)
	assert.LessOrEqual(t, slowedBot.botDueAt.Sub(now), 8*time.Second)

	normalBot := r.players[2]
	assert.LessOrEqual(t, normalBot.botDueAt.Sub(now), 6*time.Second)
}

func TestBots_AnswerThroughTheNormalSubmitPath(t *testing.T) {
	t.Parallel()
	host := newScenarioPlayer("host")
	l := &MockLobby{}
	l.On("RequestUpdateDescription", mock.Anything).Return()
	provider := &MockQuestionProvider{}
	provider.On("Questions", []string(nil), MODE_READ, 5).Return(testDeck(), nil).Once()

	r := NewRoom(host, false, botRoomConfigs(), provider, rand.New(rand.NewSource(7)))
	r.SetId("rid")
	r.SetParentLobby(l)

	t0 := time.Date(2026, 3, 9, 18, 0, 0, 0, time.UTC)
	r.handleStartGameEnvelope("host", t0)
	require.Equal(t, PHASE_STARTING, r.phase)

	roundStart := t0.Add(3 * time.Second)
	r.handleTick(roundStart)
	require.Equal(t, PHASE_PLAYING, r.phase)
	r.dataSendTasks = nil

	// past the maximum bot delay, both bots must have answered
	r.handleTick(roundStart.Add(7 * time.Second))

	question := testDeck()[0]
	for _, ps := range r.players[1:] {
		require.True(t, ps.hasAnswered)
		assert.Positive(t, ps.latencyMs)
		if ps.correct {
			assert.Equal(t, question.Meaning, ps.answer)
		} else {
			assert.NotContains(t, question.AcceptedAnswers, NormalizeAnswer(ps.answer))
		}
	}

	// the host hasn't answered, so the round is still open
	assert.Equal(t, PHASE_PLAYING, r.phase)

	// bot answers were broadcast like any player's
	answered := 0
	for _, task := range r.dataSendTasks {
		var sp packet.ServerPacket
		require.NoError(t, json.Unmarshal(task.data, &sp))
		if sp.Type == packet.TypePlayerAnswered {
			answered++
		}
	}
	assert.Equal(t, 2, answered)

	// the host answering last resolves the round
	r.handleAnswerEnvelope(&packet.SubmitAnswer{Answer: "mountain"}, "host", roundStart.Add(8*time.Second))
	assert.Equal(t, PHASE_RESULT, r.phase)
}

func TestBots_WriteModeSubmitsAScore(t *testing.T) {
	t.Parallel()
	host := newScenarioPlayer("host")
	l := &MockLobby{}
	l.On("RequestUpdateDescription", mock.Anything).Return()
	provider := &MockQuestionProvider{}

	configs := botRoomConfigs()
	configs.Mode = MODE_WRITE
	deck := testDeck()
	for i := range deck {
		deck[i].ReferenceStrokes = []packet.Stroke{{Points: horizontalStroke(0.5)}}
		deck[i].StrokeCount = 1
	}
	provider.On("Questions", []string(nil), MODE_WRITE, 5).Return(deck, nil).Once()

	r := NewRoom(host, false, configs, provider, rand.New(rand.NewSource(7)))
	r.SetId("rid")
	r.SetParentLobby(l)

	t0 := time.Date(2026, 3, 9, 18, 0, 0, 0, time.UTC)
	r.handleStartGameEnvelope("host", t0)
	roundStart := t0.Add(3 * time.Second)
	r.handleTick(roundStart)
	require.Equal(t, PHASE_PLAYING, r.phase)

	r.handleTick(roundStart.Add(7 * time.Second))

	for _, ps := range r.players[1:] {
		require.True(t, ps.hasAnswered)
		assert.Positive(t, ps.strokeScore)
		assert.Equal(t, ps.strokeScore >= WRITE_CORRECT_THRESHOLD, ps.correct)
	}
}

func TestBots_DeterministicWithSameSeed(t *testing.T) {
	t.Parallel()
	host1 := newScenarioPlayer("host")
	host2 := newScenarioPlayer("host")
	r1 := NewRoom(host1, false, botRoomConfigs(), &MockQuestionProvider{}, rand.New(rand.NewSource(42)))
	r2 := NewRoom(host2, false, botRoomConfigs(), &MockQuestionProvider{}, rand.New(rand.NewSource(42)))

	now := time.Date(2026, 3, 9, 18, 0, 0, 0, time.UTC)
	r1.scheduleBots(now)
	r2.scheduleBots(now)

	for i := 1; i < len(r1.players); i++ {
		assert.Equal(t, r1.players[i].botDueAt, r2.players[i].botDueAt)
		assert.Equal(t, r1.players[i].botAccuracy, r2.players[i].botAccuracy)
	}
}
