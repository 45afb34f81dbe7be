package game

type SkillType string

// The catalog is fixed: exactly these six skills exist.
const (
	SKILL_DOUBLE_POINTS SkillType = "double_points"
	SKILL_STEAL_POINTS  SkillType = "steal_points"
	SKILL_SHIELD        SkillType = "shield"
	SKILL_EXTRA_HINT    SkillType = "extra_hint"
	SKILL_SLOW_OTHERS   SkillType = "slow_others"
	SKILL_REVEAL_FIRST  SkillType = "reveal_first"
)

const (
	doublePointsTurns = 2
	shieldTurns       = 2
	slowedTurns       = 1
	stealCap          = 50
	extraHints        = 2
)

func AllSkills() []SkillType {
	return []SkillType{
		SKILL_DOUBLE_POINTS,
		SKILL_STEAL_POINTS,
		SKILL_SHIELD,
		SKILL_EXTRA_HINT,
		SKILL_SLOW_OTHERS,
		SKILL_REVEAL_FIRST,
	}
}

func skillNames() []string {
	skills := AllSkills()
	names := make([]string, len(skills))
	for i, s := range skills {
		names[i] = string(s)
	}
	return names
}

// SkillRequiresTarget reports whether a skill needs an explicit target id.
// slow_others targets everyone but the caster implicitly.
func SkillRequiresTarget(s SkillType) bool {
	return s == SKILL_STEAL_POINTS
}

// applySkill mutates caster/target state for one skill selection. It returns
// false when the selection is invalid (unknown skill, missing target) and
// must be ignored. reveal_first is deliberately inert.
func applySkill(skill SkillType, caster *playerState, target *playerState, others []*playerState) bool {
	switch skill {
	case SKILL_DOUBLE_POINTS:
		caster.addEffect(effectDoublePoints, doublePointsTurns)
	case SKILL_SHIELD:
		caster.addEffect(effectShield, shieldTurns)
	case SKILL_STEAL_POINTS:
		if target == nil || target == caster {
			return false
		}
		amount := stealCap
		if target.score < amount {
			amount = target.score
		}
		target.score -= amount
		caster.score += amount
	case SKILL_EXTRA_HINT:
		caster.hintsRemaining += extraHints
	case SKILL_SLOW_OTHERS:
		for _, ps := range others {
			if ps != caster {
				ps.addEffect(effectSlowed, slowedTurns)
			}
		}
	case SKILL_REVEAL_FIRST:
		// Intentionally a no-op: the selection is still consumed.
	default:
		return false
	}
	return true
}
