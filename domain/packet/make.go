package packet

import (
	"time"
)

// Helper to get current time (boilerplate reduction)
func now() int64 {
	return time.Now().UnixMilli()
}

// --- Room membership ---

func MakePacketInitialRoomSnapshot(snapshot *InitialRoomSnapshot) *ServerPacket {
	return &ServerPacket{
		Type:                TypeInitialRoomSnapshot,
		InitialRoomSnapshot: snapshot,
		ServerTimestamp:     now(),
	}
}

func MakePacketPlayerJoined(id, username string, isBot bool) *ServerPacket {
	return &ServerPacket{
		Type:            TypePlayerJoined,
		PlayerJoined:    &PlayerJoined{Id: id, Username: username, IsBot: isBot},
		ServerTimestamp: now(),
	}
}

func MakePacketPlayerLeft(id, username string, kicked bool) *ServerPacket {
	return &ServerPacket{
		Type:            TypePlayerLeft,
		PlayerLeft:      &PlayerLeft{Id: id, Username: username, Kicked: kicked},
		ServerTimestamp: now(),
	}
}

// --- Game flow ---

func MakePacketGameStarted(startsInMs int64) *ServerPacket {
	return &ServerPacket{
		Type:            TypeGameStarted,
		GameStarted:     &GameStarted{StartsInMs: startsInMs},
		ServerTimestamp: now(),
	}
}

func MakePacketRoundStarted(round, rounds int, question QuestionView, deadline int64) *ServerPacket {
	return &ServerPacket{
		Type:            TypeRoundStarted,
		RoundStarted:    &RoundStarted{Round: round, Rounds: rounds, Question: question, Deadline: deadline},
		ServerTimestamp: now(),
	}
}

func MakePacketPlayerAnswered(id string) *ServerPacket {
	return &ServerPacket{
		Type:            TypePlayerAnswered,
		PlayerAnswered:  &PlayerAnswered{Id: id},
		ServerTimestamp: now(),
	}
}

func MakePacketHintRevealed(text string, remaining int) *ServerPacket {
	return &ServerPacket{
		Type:            TypeHintRevealed,
		HintRevealed:    &HintRevealed{Text: text, HintsRemaining: remaining},
		ServerTimestamp: now(),
	}
}

func MakePacketRoundSummary(summary *RoundSummary) *ServerPacket {
	return &ServerPacket{
		Type:            TypeRoundSummary,
		RoundSummary:    summary,
		ServerTimestamp: now(),
	}
}

func MakePacketSkillPhaseStarted(round int, skills []string, deadline int64) *ServerPacket {
	return &ServerPacket{
		Type:              TypeSkillPhaseStarted,
		SkillPhaseStarted: &SkillPhaseStarted{Round: round, Skills: skills, Deadline: deadline},
		ServerTimestamp:   now(),
	}
}

func MakePacketSkillApplied(casterId, skill, targetId string) *ServerPacket {
	return &ServerPacket{
		Type:            TypeSkillApplied,
		SkillApplied:    &SkillApplied{CasterId: casterId, Skill: skill, TargetId: targetId},
		ServerTimestamp: now(),
	}
}

func MakePacketGameFinished(results *GameFinished) *ServerPacket {
	return &ServerPacket{
		Type:            TypeGameFinished,
		GameFinished:    results,
		ServerTimestamp: now(),
	}
}

func MakePacketActionRejected(action, reason string) *ServerPacket {
	return &ServerPacket{
		Type:            TypeActionRejected,
		ActionRejected:  &ActionRejected{Action: action, Reason: reason},
		ServerTimestamp: now(),
	}
}
