package game

import (
	"errors"
	"log/slog"
	"math/rand"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var errInvalidConfigs = errors.New("invalid room configs")

type GameHandler struct {
	lobby      Lobby
	userGetter UserGetter
	provider   QuestionProvider
}

func NewGameHandler(lobby Lobby, userGetter UserGetter, provider QuestionProvider) *GameHandler {
	return &GameHandler{lobby: lobby, userGetter: userGetter, provider: provider}
}

// normalizeConfigs fills defaults and rejects configs no game could run
// with. Bounds are generous; the client UI enforces the sane ranges.
func normalizeConfigs(c *RoomConfigs) error {
	if c.Mode == "" {
		c.Mode = MODE_READ
	}
	if c.Mode != MODE_READ && c.Mode != MODE_WRITE {
		return errInvalidConfigs
	}
	if c.RoundsCount == 0 {
		c.RoundsCount = 10
	}
	if c.RoundsCount < 1 || c.RoundsCount > 50 {
		return errInvalidConfigs
	}
	if c.TimePerQuestion == 0 {
		c.TimePerQuestion = 30
	}
	if c.TimePerQuestion < 5 || c.TimePerQuestion > 300 {
		return errInvalidConfigs
	}
	if c.MaxPlayers == 0 {
		c.MaxPlayers = 8
	}
	if c.MaxPlayers < 1 || c.MaxPlayers > 16 {
		return errInvalidConfigs
	}
	if c.MinPlayers == 0 {
		c.MinPlayers = 1
	}
	if c.MinPlayers < 1 || c.MinPlayers > c.MaxPlayers {
		return errInvalidConfigs
	}
	if c.SkillInterval == 0 {
		c.SkillInterval = DEFAULT_SKILL_INTERVAL
	}
	if c.SkillInterval < 1 {
		return errInvalidConfigs
	}
	if c.BotsCount < 0 || c.BotsCount >= c.MaxPlayers {
		return errInvalidConfigs
	}
	if c.PointsCorrect == 0 {
		c.PointsCorrect = DEFAULT_POINTS_CORRECT
	}
	if c.PointsCorrect < 1 {
		return errInvalidConfigs
	}
	if c.PointsPenalty == 0 {
		c.PointsPenalty = DEFAULT_POINTS_PENALTY
	}
	if c.PointsPenalty < 0 {
		return errInvalidConfigs
	}
	if c.StartingHints == 0 {
		c.StartingHints = DEFAULT_STARTING_HINTS
	}
	if c.StartingHints < 0 {
		return errInvalidConfigs
	}
	return nil
}

func (h *GameHandler) CreateGameHandler(ctx *gin.Context) {
	id := ctx.GetString("id")

	if id == "" {
		slog.Error("Unexpected error, id not found. What is the middleware doing?",
			"ip", ctx.ClientIP(),
			"user_agent", ctx.Request.UserAgent(),
		)

		ctx.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "unknown-error"})
		return
	}

	configs := RoomConfigs{}
	if err := ctx.ShouldBindQuery(&configs); err != nil {
		ctx.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid-configs"})
		return
	}
	if err := normalizeConfigs(&configs); err != nil {
		ctx.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid-configs"})
		return
	}

	user, err := h.userGetter.GetUserById(ctx.Request.Context(), id)
	if err != nil {
		ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unknown-user"})
		return
	}

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
	}
	conn, err := upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		slog.Error("WS upgrade failed", "error", err)
		return
	}

	socketConn := NewWebsocketConnection(conn)
	private := ctx.Query("private") == "true"

	player := NewPlayer(id, user.Username, socketConn)
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	room := NewRoom(player, private, configs, h.provider, rng)

	h.lobby.RequestAddAndRunRoom(ctx.Request.Context(), room)
	go player.ReadPump()
	go player.WritePump()
}

func (h *GameHandler) JoinGameHandler(ctx *gin.Context) {
	id := ctx.GetString("id")

	if id == "" {
		slog.Error("Unexpected error, id not found. What is the middleware doing?",
			"ip", ctx.ClientIP(),
			"user_agent", ctx.Request.UserAgent(),
		)

		ctx.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "unknown-error"})
		return
	}

	roomId := ctx.Param("roomid")
	if roomId == "" {
		ctx.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "missing-room-id"})
		return
	}

	user, err := h.userGetter.GetUserById(ctx.Request.Context(), id)
	if err != nil {
		ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unknown-user"})
		return
	}

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
	}
	conn, err := upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		slog.Error("WS upgrade failed", "error", err)
		return
	}

	socketConn := NewWebsocketConnection(conn)
	player := NewPlayer(id, user.Username, socketConn)

	jreq := NewRoomJoinRequest(roomId, player)
	h.lobby.ForwardPlayerJoinRequestToRoom(ctx.Request.Context(), jreq)

	select {
	case err := <-jreq.errChan:
		if err != nil {
			socketConn.Close(err.Error())
			return
		}
	case <-time.After(time.Second * 10):
		socketConn.Close("timeout")
		return
	}

	go player.ReadPump()
	go player.WritePump()
}

type publicGameResponse struct {
	Id           string `json:"id"`
	PlayersCount int    `json:"playersCount"`
	MaxPlayers   int    `json:"maxPlayers"`
	Started      bool   `json:"started"`
	Mode         string `json:"mode"`
}

func (h *GameHandler) GetPublicGamesHandler(ctx *gin.Context) {
	descriptions := h.lobby.GetPublicGames(ctx.Request.Context())

	games := make([]publicGameResponse, 0, len(descriptions))
	for _, d := range descriptions {
		games = append(games, publicGameResponse{
			Id:           d.id,
			PlayersCount: d.playersCount,
			MaxPlayers:   d.maxPlayers,
			Started:      d.started,
			Mode:         string(d.mode),
		})
	}

	ctx.JSON(http.StatusOK, gin.H{"games": games})
}
