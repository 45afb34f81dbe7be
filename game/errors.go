package game

import "errors"

var (
	ErrRoomNotFound   = errors.New("room-not-found")
	ErrRoomFull       = errors.New("room-full")
	ErrGameInProgress = errors.New("game-in-progress")
	ErrBannedFromRoom = errors.New("banned-from-room")
)
