package game

import (
	"math/rand"
	"strings"
	"sync"
	"time"
)

const (
	joinCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	joinCodeLength   = 6
)

// JoinCodeGenerator hands out short room codes that stay unique for the
// lifetime of the room. Codes use an alphabet without 0/O/1/I since players
// type them by hand.
type JoinCodeGenerator struct {
	used map[string]struct{}
	rng  *rand.Rand
	mu   sync.Mutex
}

func NewIdGen() JoinCodeGenerator {
	return JoinCodeGenerator{
		used: map[string]struct{}{},
		rng:  rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (g *JoinCodeGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	var sb strings.Builder
	for {
		sb.Reset()
		for i := 0; i < joinCodeLength; i++ {
			sb.WriteByte(joinCodeAlphabet[g.rng.Intn(len(joinCodeAlphabet))])
		}
		code := sb.String()
		if _, taken := g.used[code]; !taken {
			g.used[code] = struct{}{}
			return code
		}
	}
}

func (g *JoinCodeGenerator) Dispose(id string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.used, id)
}
