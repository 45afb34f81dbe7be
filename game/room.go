package game

import (
	"context"
	"encoding/json"
	"log/slog"
	"math/rand"
	"time"

	"kanjibattle/domain/packet"
)

// room is one active match. A single goroutine (GameLoop) owns all mutable
// state; everything else talks to it through the channels below, so every
// state transition observes a fully consistent snapshot.
type room struct {
	id      string
	private bool
	hostId  string
	configs RoomConfigs

	phase           GamePhase
	players         []*playerState
	questions       []Question
	round           int
	currentQuestion *Question
	roundStart      time.Time
	nextTick        time.Time
	results         []roundRecord
	bannedIds       map[string]bool

	provider    QuestionProvider
	rng         *rand.Rand
	parentLobby Lobby

	dataSendTasks []dataSendTask
	pingSendTasks []pingSendTask

	inbox       chan ClientPacketEnvelope
	joinReqs    chan roomJoinRequest
	removeMe    chan Player
	ticks       chan time.Time
	pingPlayers chan struct{}
}

func NewRoom(host Player, private bool, configs RoomConfigs, provider QuestionProvider, rng *rand.Rand) *room {
	r := &room{
		private:     private,
		hostId:      host.Id(),
		configs:     configs,
		phase:       PHASE_WAITING,
		players:     make([]*playerState, 0, configs.MaxPlayers),
		bannedIds:   make(map[string]bool),
		provider:    provider,
		rng:         rng,
		nextTick:    time.Now().Add(PENDING_DURATION),
		inbox:       make(chan ClientPacketEnvelope, 1024),
		joinReqs:    make(chan roomJoinRequest, 32),
		removeMe:    make(chan Player, 64),
		ticks:       make(chan time.Time, 24),
		pingPlayers: make(chan struct{}, 4),
	}
	r.players = append(r.players, &playerState{
		id:             host.Id(),
		username:       host.Username(),
		conn:           host,
		hintsRemaining: configs.StartingHints,
	})
	host.SetRoom(r)
	for i := 0; i < configs.BotsCount && len(r.players) < configs.MaxPlayers; i++ {
		r.players = append(r.players, newBotState(i, configs.StartingHints))
	}
	return r
}

func (r *room) SetId(id string) { r.id = id }

func (r *room) SetParentLobby(l Lobby) { r.parentLobby = l }

func (r *room) Description() roomDescription {
	return roomDescription{
		id:           r.id,
		private:      r.private,
		playersCount: len(r.players),
		maxPlayers:   r.configs.MaxPlayers,
		started:      r.phase != PHASE_WAITING,
		mode:         r.configs.Mode,
	}
}

func (r *room) Tick(now time.Time) {
	select {
	case r.ticks <- now:
	default:
	}
}

func (r *room) PingPlayers() {
	select {
	case r.pingPlayers <- struct{}{}:
	default:
	}
}

func (r *room) Send(ctx context.Context, e ClientPacketEnvelope) {
	select {
	case r.inbox <- e:
	case <-ctx.Done():
	}
}

func (r *room) RemoveMe(ctx context.Context, p Player) {
	select {
	case r.removeMe <- p:
	case <-ctx.Done():
	}
}

func (r *room) RequestJoin(jreq roomJoinRequest) {
	r.joinReqs <- jreq
}

// CloseAndRelease stops the GameLoop. Closing ticks is the shutdown signal;
// the loop releases every player connection on its way out. Pending bot and
// round deadlines die with the loop since they only fire on ticks.
func (r *room) CloseAndRelease() {
	close(r.ticks)
	close(r.pingPlayers)
}

func (r *room) GameLoop() {
	for {
		select {
		case now, ok := <-r.ticks:
			if !ok {
				r.releasePlayers()
				return
			}
			r.handleTick(now)
		case <-r.pingPlayers:
			r.queuePings()
		case e := <-r.inbox:
			r.handleEnvelope(e, time.Now())
		case jreq := <-r.joinReqs:
			r.handleJoinRequest(jreq)
		case p := <-r.removeMe:
			r.handleRemovePlayer(p, false, time.Now())
		}
		r.flushSendTasks()
	}
}

func (r *room) handleEnvelope(e ClientPacketEnvelope, now time.Time) {
	p := e.clientPacket
	if p == nil {
		return
	}
	switch {
	case p.StartGame != nil:
		r.handleStartGameEnvelope(e.from, now)
	case p.SubmitAnswer != nil:
		r.handleAnswerEnvelope(p.SubmitAnswer, e.from, now)
	case p.SubmitDrawing != nil:
		r.handleDrawingEnvelope(p.SubmitDrawing, e.from, now)
	case p.UseHint != nil:
		r.handleHintEnvelope(e.from)
	case p.SelectSkill != nil:
		r.handleSkillEnvelope(p.SelectSkill, e.from, now)
	case p.Advance != nil:
		r.handleAdvanceEnvelope(e.from, now)
	case p.KickPlayer != nil:
		r.handleKickEnvelope(p.KickPlayer, e.from, now)
	}
}

// --- membership ---

func (r *room) handleJoinRequest(jreq roomJoinRequest) {
	id := jreq.player.Id()

	if r.bannedIds[id] {
		jreq.errChan <- ErrBannedFromRoom
		return
	}

	// Same account joining again replaces the old connection (zombie or
	// reconnect); this is allowed in any phase.
	if existing := r.findPlayer(id); existing != nil {
		if existing.conn != nil {
			existing.conn.CancelAndRelease()
		}
		existing.conn = jreq.player
		jreq.player.SetRoom(r)
		jreq.errChan <- nil
		r.sendTo(existing, packet.MakePacketInitialRoomSnapshot(r.snapshot()))
		return
	}

	if r.phase != PHASE_WAITING {
		jreq.errChan <- ErrGameInProgress
		return
	}
	if len(r.players) >= r.configs.MaxPlayers {
		jreq.errChan <- ErrRoomFull
		return
	}

	r.broadcast(packet.MakePacketPlayerJoined(id, jreq.player.Username(), false))

	ps := &playerState{
		id:             id,
		username:       jreq.player.Username(),
		conn:           jreq.player,
		hintsRemaining: r.configs.StartingHints,
	}
	r.players = append(r.players, ps)
	jreq.player.SetRoom(r)
	jreq.errChan <- nil

	r.sendTo(ps, packet.MakePacketInitialRoomSnapshot(r.snapshot()))
	r.updateDescription()
}

func (r *room) handleRemovePlayer(p Player, kicked bool, now time.Time) {
	idx := -1
	for i, ps := range r.players {
		if ps.id == p.Id() {
			idx = i
			break
		}
	}
	if idx == -1 {
		p.CancelAndRelease()
		return
	}

	removed := r.players[idx]
	r.players = append(r.players[:idx], r.players[idx+1:]...)
	if kicked {
		r.bannedIds[removed.id] = true
	}
	if removed.conn != nil {
		removed.conn.CancelAndRelease()
	}

	r.broadcast(packet.MakePacketPlayerLeft(removed.id, removed.username, kicked))

	if r.humansCount() == 0 {
		r.endGame()
		return
	}

	if removed.id == r.hostId {
		for _, ps := range r.players {
			if !ps.bot {
				r.hostId = ps.id
				break
			}
		}
	}

	r.updateDescription()

	// The departed player may have been the last one holding up the round.
	if r.phase == PHASE_PLAYING && r.allAnswered() {
		r.resolveRound(now)
	}
}

func (r *room) handleKickEnvelope(p *packet.KickPlayer, from string, now time.Time) {
	if from != r.hostId || r.phase != PHASE_WAITING || p.PlayerId == r.hostId {
		return
	}
	target := r.findPlayer(p.PlayerId)
	if target == nil || target.bot {
		return
	}
	conn := target.conn
	if conn == nil {
		return
	}
	r.handleRemovePlayer(conn, true, now)
}

// --- helpers ---

func (r *room) findPlayer(id string) *playerState {
	for _, ps := range r.players {
		if ps.id == id {
			return ps
		}
	}
	return nil
}

func (r *room) humansCount() int {
	n := 0
	for _, ps := range r.players {
		if !ps.bot {
			n++
		}
	}
	return n
}

func (r *room) allAnswered() bool {
	for _, ps := range r.players {
		if !ps.hasAnswered {
			return false
		}
	}
	return len(r.players) > 0
}

func (r *room) snapshot() *packet.InitialRoomSnapshot {
	players := make([]packet.PlayerState, 0, len(r.players))
	for _, ps := range r.players {
		effects := make([]packet.EffectState, 0, len(ps.effects))
		for _, e := range ps.effects {
			effects = append(effects, packet.EffectState{Kind: string(e.kind), TurnsRemaining: e.turnsRemaining})
		}
		players = append(players, packet.PlayerState{
			Id:             ps.id,
			Username:       ps.username,
			Score:          ps.score,
			IsBot:          ps.bot,
			HintsRemaining: ps.hintsRemaining,
			Effects:        effects,
		})
	}
	return &packet.InitialRoomSnapshot{
		RoomId:   r.id,
		JoinCode: r.id,
		HostId:   r.hostId,
		Phase:    int32(r.phase),
		Round:    r.round,
		Mode:     string(r.configs.Mode),
		Players:  players,
		NextTick: r.nextTick.UnixMilli(),
	}
}

func (r *room) updateDescription() {
	if r.parentLobby != nil {
		r.parentLobby.RequestUpdateDescription(r.Description())
	}
}

func (r *room) endGame() {
	if r.parentLobby != nil {
		r.parentLobby.RemoveRoom(r.id)
	}
}

func (r *room) releasePlayers() {
	for _, ps := range r.players {
		if ps.conn != nil {
			ps.conn.CancelAndRelease()
		}
	}
	r.players = nil
}

// --- outbound ---

func (r *room) broadcast(pkt *packet.ServerPacket) {
	r.broadcastExcept("", pkt)
}

func (r *room) broadcastExcept(exceptId string, pkt *packet.ServerPacket) {
	data, err := json.Marshal(pkt)
	if err != nil {
		slog.Error("failed to marshal server packet", "room", r.id, "type", pkt.Type, "error", err)
		return
	}
	for _, ps := range r.players {
		if ps.conn == nil || ps.id == exceptId {
			continue
		}
		r.dataSendTasks = append(r.dataSendTasks, dataSendTask{to: ps.conn, data: data})
	}
}

func (r *room) sendTo(ps *playerState, pkt *packet.ServerPacket) {
	if ps.conn == nil {
		return
	}
	data, err := json.Marshal(pkt)
	if err != nil {
		slog.Error("failed to marshal server packet", "room", r.id, "type", pkt.Type, "error", err)
		return
	}
	r.dataSendTasks = append(r.dataSendTasks, dataSendTask{to: ps.conn, data: data})
}

func (r *room) queuePings() {
	for _, ps := range r.players {
		if ps.conn != nil {
			r.pingSendTasks = append(r.pingSendTasks, pingSendTask{to: ps.conn})
		}
	}
}

func (r *room) flushSendTasks() {
	for _, task := range r.dataSendTasks {
		if err := task.to.Send(task.data); err != nil {
			slog.Debug("dropping send to player", "room", r.id, "error", err)
		}
	}
	for _, task := range r.pingSendTasks {
		if err := task.to.Ping(); err != nil {
			slog.Debug("dropping ping to player", "room", r.id, "error", err)
		}
	}
	r.dataSendTasks = r.dataSendTasks[:0]
	r.pingSendTasks = r.pingSendTasks[:0]
}
