package game

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"kanjibattle/domain/packet"
)

var errOutboxFull = errors.New("player outbox full")

// realPlayer is one connected human. ReadPump and WritePump each run in
// their own goroutine; the room actor only ever touches the non-blocking
// Send/Ping side.
type realPlayer struct {
	id       string
	username string
	socket   WebsocketConnection
	room     Room

	rateLimiter *rate.Limiter
	outbox      chan []byte
	pingChan    chan struct{}

	ctx         context.Context
	cancel      context.CancelFunc
	releaseOnce sync.Once
}

func NewPlayer(id, username string, socket WebsocketConnection) *realPlayer {
	ctx, cancel := context.WithCancel(context.Background())
	return &realPlayer{
		id:          id,
		username:    username,
		socket:      socket,
		rateLimiter: rate.NewLimiter(8, 24),
		outbox:      make(chan []byte, 256),
		pingChan:    make(chan struct{}, 1),
		ctx:         ctx,
		cancel:      cancel,
	}
}

func (p *realPlayer) Id() string       { return p.id }
func (p *realPlayer) Username() string { return p.username }
func (p *realPlayer) SetRoom(r Room)   { p.room = r }

func (p *realPlayer) Send(data []byte) error {
	select {
	case <-p.ctx.Done():
		return p.ctx.Err()
	case p.outbox <- data:
		return nil
	default:
		return errOutboxFull
	}
}

func (p *realPlayer) Ping() error {
	select {
	case <-p.ctx.Done():
		return p.ctx.Err()
	case p.pingChan <- struct{}{}:
	default:
	}
	return nil
}

// CancelAndRelease stops both pumps and closes the socket. Safe to call
// from any goroutine, any number of times.
func (p *realPlayer) CancelAndRelease() {
	p.releaseOnce.Do(func() {
		p.cancel()
		p.socket.Close("")
	})
}

// ReadPump decodes client packets off the socket and forwards them into the
// room inbox. On read error it asks the room to drop the player and exits.
func (p *realPlayer) ReadPump() {
	defer func() {
		if room := p.room; room != nil {
			ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
			room.RemoveMe(ctx, p)
			cancel()
		}
		p.CancelAndRelease()
	}()

	for {
		data, err := p.socket.Read()
		if err != nil {
			return
		}
		if !p.rateLimiter.Allow() {
			continue
		}

		var cp packet.ClientPacket
		if err := json.Unmarshal(data, &cp); err != nil {
			continue
		}

		room := p.room
		if room == nil {
			continue
		}
		room.Send(p.ctx, NewClientPacketEnvelope(&cp, p.id))
	}
}

func (p *realPlayer) WritePump() {
	for {
		select {
		case <-p.ctx.Done():
			return
		case data := <-p.outbox:
			if err := p.socket.Write(data); err != nil {
				p.CancelAndRelease()
				return
			}
		case <-p.pingChan:
			if err := p.socket.Ping(); err != nil {
				p.CancelAndRelease()
				return
			}
		}
	}
}
