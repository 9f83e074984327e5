package model

// Intention represents the current action of an NPC body, as last ordered by its brain.
type Intention int32

const (
	// IntentionIdle - NPC is standing idle, no active behavior
	IntentionIdle Intention = iota
	// IntentionActive - NPC is scanning its surroundings
	IntentionActive
	// IntentionAttack - NPC is attacking a target
	IntentionAttack
	// IntentionCast - NPC is casting a spell
	IntentionCast
	// IntentionMoveTo - NPC is moving to a specific location
	IntentionMoveTo
	// IntentionFollow - NPC is following another creature (pets)
	IntentionFollow
	// IntentionFlee - NPC is running away (fear)
	IntentionFlee
)

// String returns human-readable intention name
func (i Intention) String() string {
	switch i {
	case IntentionIdle:
		return "IDLE"
	case IntentionActive:
		return "ACTIVE"
	case IntentionAttack:
		return "ATTACK"
	case IntentionCast:
		return "CAST"
	case IntentionMoveTo:
		return "MOVE_TO"
	case IntentionFollow:
		return "FOLLOW"
	case IntentionFlee:
		return "FLEE"
	default:
		return "UNKNOWN"
	}
}
