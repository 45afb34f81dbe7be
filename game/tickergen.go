package game

import "time"

// WallClockTickerCreator backs the lobby's periodic ticks with real
// time.Ticker channels. Tests substitute their own channels to drive ticks
// by hand.
type WallClockTickerCreator struct{}

func NewTickerGen() WallClockTickerCreator {
	return WallClockTickerCreator{}
}

func (WallClockTickerCreator) Create(duration time.Duration) <-chan time.Time {
	return time.NewTicker(duration).C
}
