// Package packet defines the wire format exchanged with game clients over
// the websocket. Every message is a single JSON envelope with a type tag
// and exactly one non-nil payload field.
package packet

// Point is a normalized (0-1 range) coordinate on the drawing surface.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Stroke is one continuous pen-down-to-pen-up path.
type Stroke struct {
	Points     []Point `json:"points"`
	CapturedAt int64   `json:"capturedAt"`
}

// StrokeResult is the grading output for one submitted stroke.
type StrokeResult struct {
	Index          int     `json:"index"`
	Correct        bool    `json:"correct"`
	Accuracy       float64 `json:"accuracy"`
	DirectionMatch bool    `json:"directionMatch"`
	OrderCorrect   bool    `json:"orderCorrect"`
}

// --- Client -> Server ---

type ClientPacket struct {
	Type string `json:"type"`

	StartGame     *StartGame     `json:"startGame,omitempty"`
	SubmitAnswer  *SubmitAnswer  `json:"submitAnswer,omitempty"`
	SubmitDrawing *SubmitDrawing `json:"submitDrawing,omitempty"`
	UseHint       *UseHint       `json:"useHint,omitempty"`
	SelectSkill   *SelectSkill   `json:"selectSkill,omitempty"`
	Advance       *Advance       `json:"advance,omitempty"`
	KickPlayer    *KickPlayer    `json:"kickPlayer,omitempty"`
}

const (
	TypeStartGame     = "start_game"
	TypeSubmitAnswer  = "submit_answer"
	TypeSubmitDrawing = "submit_drawing"
	TypeUseHint       = "use_hint"
	TypeSelectSkill   = "select_skill"
	TypeAdvance       = "advance"
	TypeKickPlayer    = "kick_player"
)

type StartGame struct{}

type SubmitAnswer struct {
	Answer string `json:"answer"`
}

type SubmitDrawing struct {
	Strokes       []Stroke `json:"strokes"`
	DrawingTimeMs int64    `json:"drawingTimeMs"`
}

type UseHint struct{}

type SelectSkill struct {
	Skill    string `json:"skill"`
	TargetId string `json:"targetId,omitempty"`
}

type Advance struct{}

type KickPlayer struct {
	PlayerId string `json:"playerId"`
}

// --- Server -> Client ---

type ServerPacket struct {
	Type            string `json:"type"`
	ServerTimestamp int64  `json:"serverTimestamp"`

	InitialRoomSnapshot *InitialRoomSnapshot `json:"initialRoomSnapshot,omitempty"`
	PlayerJoined        *PlayerJoined        `json:"playerJoined,omitempty"`
	PlayerLeft          *PlayerLeft          `json:"playerLeft,omitempty"`
	GameStarted         *GameStarted         `json:"gameStarted,omitempty"`
	RoundStarted        *RoundStarted        `json:"roundStarted,omitempty"`
	PlayerAnswered      *PlayerAnswered      `json:"playerAnswered,omitempty"`
	HintRevealed        *HintRevealed        `json:"hintRevealed,omitempty"`
	RoundSummary        *RoundSummary        `json:"roundSummary,omitempty"`
	SkillPhaseStarted   *SkillPhaseStarted   `json:"skillPhaseStarted,omitempty"`
	SkillApplied        *SkillApplied        `json:"skillApplied,omitempty"`
	GameFinished        *GameFinished        `json:"gameFinished,omitempty"`
	ActionRejected      *ActionRejected      `json:"actionRejected,omitempty"`
}

const (
	TypeInitialRoomSnapshot = "initial_room_snapshot"
	TypePlayerJoined        = "player_joined"
	TypePlayerLeft          = "player_left"
	TypeGameStarted         = "game_started"
	TypeRoundStarted        = "round_started"
	TypePlayerAnswered      = "player_answered"
	TypeHintRevealed        = "hint_revealed"
	TypeRoundSummary        = "round_summary"
	TypeSkillPhaseStarted   = "skill_phase_started"
	TypeSkillApplied        = "skill_applied"
	TypeGameFinished        = "game_finished"
	TypeActionRejected      = "action_rejected"
)

type EffectState struct {
	Kind           string `json:"kind"`
	TurnsRemaining int    `json:"turnsRemaining"`
}

type PlayerState struct {
	Id             string        `json:"id"`
	Username       string        `json:"username"`
	Score          int           `json:"score"`
	IsBot          bool          `json:"isBot"`
	HintsRemaining int           `json:"hintsRemaining"`
	Effects        []EffectState `json:"effects,omitempty"`
}

type InitialRoomSnapshot struct {
	RoomId   string        `json:"roomId"`
	JoinCode string        `json:"joinCode"`
	HostId   string        `json:"hostId"`
	Phase    int32         `json:"phase"`
	Round    int           `json:"round"`
	Mode     string        `json:"mode"`
	Players  []PlayerState `json:"players"`
	NextTick int64         `json:"nextTick"`
}

type PlayerJoined struct {
	Id       string `json:"id"`
	Username string `json:"username"`
	IsBot    bool   `json:"isBot"`
}

type PlayerLeft struct {
	Id       string `json:"id"`
	Username string `json:"username"`
	Kicked   bool   `json:"kicked,omitempty"`
}

type GameStarted struct {
	StartsInMs int64 `json:"startsInMs"`
}

// QuestionView is the per-round prompt as clients are allowed to see it:
// accepted answers and reference strokes are withheld until the summary.
type QuestionView struct {
	Id          string `json:"id"`
	Prompt      string `json:"prompt"`
	StrokeCount int    `json:"strokeCount"`
	PointValue  int    `json:"pointValue"`
}

type RoundStarted struct {
	Round    int          `json:"round"`
	Rounds   int          `json:"rounds"`
	Question QuestionView `json:"question"`
	Deadline int64        `json:"deadline"`
}

type PlayerAnswered struct {
	Id string `json:"id"`
}

type HintRevealed struct {
	Text           string `json:"text"`
	HintsRemaining int    `json:"hintsRemaining"`
}

type PlayerOutcome struct {
	Id          string         `json:"id"`
	Username    string         `json:"username"`
	Answered    bool           `json:"answered"`
	Answer      string         `json:"answer,omitempty"`
	Correct     bool           `json:"correct"`
	StrokeScore float64        `json:"strokeScore,omitempty"`
	Strokes     []StrokeResult `json:"strokes,omitempty"`
	LatencyMs   int64          `json:"latencyMs"`
	Points      int            `json:"points"`
	Score       int            `json:"score"`
	Streak      int            `json:"streak"`
}

type RoundSummary struct {
	Round      int             `json:"round"`
	QuestionId string          `json:"questionId"`
	Answer     string          `json:"answer"`
	FastestId  string          `json:"fastestId,omitempty"`
	Outcomes   []PlayerOutcome `json:"outcomes"`
	NextTick   int64           `json:"nextTick"`
}

type SkillPhaseStarted struct {
	Round    int      `json:"round"`
	Skills   []string `json:"skills"`
	Deadline int64    `json:"deadline"`
}

type SkillApplied struct {
	CasterId string `json:"casterId"`
	Skill    string `json:"skill"`
	TargetId string `json:"targetId,omitempty"`
}

type PlayerRanking struct {
	Id             string  `json:"id"`
	Username       string  `json:"username"`
	Score          int     `json:"score"`
	Correct        int     `json:"correct"`
	Incorrect      int     `json:"incorrect"`
	Accuracy       float64 `json:"accuracy"`
	AvgStrokeScore float64 `json:"avgStrokeScore,omitempty"`
}

type GameFinished struct {
	WinnerId     string          `json:"winnerId,omitempty"`
	Rankings     []PlayerRanking `json:"rankings"`
	Rounds       int             `json:"rounds"`
	PlayersCount int             `json:"playersCount"`
}

type ActionRejected struct {
	Action string `json:"action"`
	Reason string `json:"reason"`
}
