package model

// NpcTemplate represents NPC stats and AI parameters shared by every NPC spawned from it.
type NpcTemplate struct {
	templateID int32
	name       string
	title      string
	level      int32
	maxHP      int32
	aggroRange int32
	moveSpeed  int32
	faction    string
}

// NewNpcTemplate creates a new NPC template
func NewNpcTemplate(
	templateID int32,
	name, title string,
	level, maxHP int32,
	aggroRange, moveSpeed int32,
	faction string,
) *NpcTemplate {
	return &NpcTemplate{
		templateID: templateID,
		name:       name,
		title:      title,
		level:      level,
		maxHP:      maxHP,
		aggroRange: aggroRange,
		moveSpeed:  moveSpeed,
		faction:    faction,
	}
}

// TemplateID returns template ID
func (t *NpcTemplate) TemplateID() int32 {
	return t.templateID
}

// Name returns NPC name
func (t *NpcTemplate) Name() string {
	return t.name
}

// Title returns NPC title
func (t *NpcTemplate) Title() string {
	return t.title
}

// Level returns NPC level
func (t *NpcTemplate) Level() int32 {
	return t.level
}

// MaxHP returns max HP
func (t *NpcTemplate) MaxHP() int32 {
	return t.maxHP
}

// AggroRange returns aggro range (0 means "use brain default")
func (t *NpcTemplate) AggroRange() int32 {
	return t.aggroRange
}

// MoveSpeed returns movement speed in game units per second
func (t *NpcTemplate) MoveSpeed() int32 {
	return t.moveSpeed
}

// Faction returns default faction of spawned NPCs
func (t *NpcTemplate) Faction() string {
	return t.faction
}
