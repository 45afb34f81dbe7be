package game

import (
	"strings"
	"time"

	"kanjibattle/domain/packet"
)

type GamePhase int32

const (
	PHASE_WAITING GamePhase = iota // Waiting for players to join before starting.
	PHASE_STARTING                 // Fixed countdown before the first round.
	PHASE_PLAYING                  // A round is live, answers are accepted.
	PHASE_RESULT                   // Showing the round summary.
	PHASE_SKILL                    // Players pick a buff/debuff before the summary.
	PHASE_FINISHED                 // Game over, leaderboard shown.
)

type GameMode string

const (
	MODE_READ  GameMode = "read"
	MODE_WRITE GameMode = "write"
)

const (
	PENDING_DURATION     = time.Hour
	STARTING_DURATION    = time.Second * 3
	RESULT_DURATION      = time.Second * 6
	SKILL_PHASE_DURATION = time.Second * 15

	SPEED_BONUS             = 20
	WRITE_CORRECT_THRESHOLD = 40.0
	MIN_QUESTIONS           = 5

	DEFAULT_POINTS_CORRECT = 100
	DEFAULT_POINTS_PENALTY = 30
	DEFAULT_STARTING_HINTS = 3
	DEFAULT_SKILL_INTERVAL = 3
)

type RoomConfigs struct {
	Mode            GameMode `json:"mode" form:"mode"`
	RoundsCount     int      `json:"roundsCount" form:"roundsCount"`
	TimePerQuestion int      `json:"timePerQuestion" form:"timePerQuestion"` // seconds
	MaxPlayers      int      `json:"maxPlayers" form:"maxPlayers"`
	MinPlayers      int      `json:"minPlayers" form:"minPlayers"`
	SkillsEnabled   bool     `json:"skillsEnabled" form:"skillsEnabled"`
	SkillInterval   int      `json:"skillInterval" form:"skillInterval"`
	Tiers           []string `json:"tiers" form:"tiers"`
	BotsCount       int      `json:"botsCount" form:"botsCount"`
	PointsCorrect   int      `json:"pointsCorrect" form:"pointsCorrect"`
	PointsPenalty   int      `json:"pointsPenalty" form:"pointsPenalty"`
	StartingHints   int      `json:"startingHints" form:"startingHints"`
}

// Question is immutable once dealt into a game.
type Question struct {
	Id               string
	Prompt           string   // the target character
	Meaning          string   // canonical meaning, shown in the summary
	AcceptedAnswers  []string // pre-normalized (see NormalizeAnswer)
	ReferenceStrokes []packet.Stroke
	StrokeCount      int
	PointValue       int
	Hints            []string // ordered, progressively revealing
	Tier             string
}

// NormalizeAnswer makes textual answers case and whitespace insensitive.
func NormalizeAnswer(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

type effectKind string

const (
	effectDoublePoints effectKind = "double_points"
	effectShield       effectKind = "shield"
	effectSlowed       effectKind = "slowed"
)

// activeEffect is a tagged time-boxed effect. The flag/counter pair of the
// data model collapses into one value: an effect is active iff it is present
// with turnsRemaining > 0.
type activeEffect struct {
	kind           effectKind
	turnsRemaining int
}

type playerState struct {
	id       string
	username string
	conn     Player // nil for bots
	bot      bool

	score           int
	correctCount    int
	incorrectCount  int
	streak          int
	hintsRemaining  int
	effects         []activeEffect
	strokeScoreSum  float64
	strokeScoreUses int

	// per-round answer state, reset on every round start
	hasAnswered   bool
	answer        string
	strokeScore   float64
	strokeResults []packet.StrokeResult
	correct       bool
	latencyMs     int64
	hintsRevealed int

	// bot scheduling, armed on round start
	botDueAt    time.Time
	botAccuracy float64
}

func (ps *playerState) hasEffect(kind effectKind) bool {
	for _, e := range ps.effects {
		if e.kind == kind && e.turnsRemaining > 0 {
			return true
		}
	}
	return false
}

func (ps *playerState) addEffect(kind effectKind, turns int) {
	for i := range ps.effects {
		if ps.effects[i].kind == kind {
			if turns > ps.effects[i].turnsRemaining {
				ps.effects[i].turnsRemaining = turns
			}
			return
		}
	}
	ps.effects = append(ps.effects, activeEffect{kind: kind, turnsRemaining: turns})
}

// decayEffects runs exactly once per round start.
func (ps *playerState) decayEffects() {
	kept := ps.effects[:0]
	for _, e := range ps.effects {
		e.turnsRemaining--
		if e.turnsRemaining > 0 {
			kept = append(kept, e)
		}
	}
	ps.effects = kept
}

func (ps *playerState) resetRoundState() {
	ps.hasAnswered = false
	ps.answer = ""
	ps.strokeScore = 0
	ps.strokeResults = nil
	ps.correct = false
	ps.latencyMs = 0
	ps.hintsRevealed = 0
	ps.botDueAt = time.Time{}
	ps.botAccuracy = 0
}

// roundRecord is the immutable per-round result, created exactly once on
// resolution.
type roundRecord struct {
	round      int
	questionId string
	answer     string
	fastestId  string
	outcomes   []packet.PlayerOutcome
}

type roomDescription struct {
	id           string
	private      bool
	playersCount int
	maxPlayers   int
	started      bool
	mode         GameMode
}

type roomJoinRequest struct {
	roomId  string
	player  Player
	errChan chan error
}

func NewRoomJoinRequest(roomId string, player Player) roomJoinRequest {
	return roomJoinRequest{roomId: roomId, player: player, errChan: make(chan error, 1)}
}

type ClientPacketEnvelope struct {
	clientPacket *packet.ClientPacket
	from         string // player id
}

func NewClientPacketEnvelope(p *packet.ClientPacket, from string) ClientPacketEnvelope {
	return ClientPacketEnvelope{clientPacket: p, from: from}
}

type dataSendTask struct {
	to   Player
	data []byte
}

type pingSendTask struct {
	to Player
}
