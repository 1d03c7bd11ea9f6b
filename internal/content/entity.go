package content

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/vovakirdan/brawl-core/internal/action"
	"github.com/vovakirdan/brawl-core/internal/core"
)

// BoxRole selects how a collision box interacts with other boxes.
type BoxRole string

const (
	RoleHurt       BoxRole = "hurt"
	RoleHit        BoxRole = "hit"
	RoleGrab       BoxRole = "grab"
	RoleInvincible BoxRole = "invincible"
	RoleReflect    BoxRole = "reflect"
	RoleAbsorb     BoxRole = "absorb"
)

// Valid reports whether r is a known role.
func (r BoxRole) Valid() bool {
	switch r {
	case RoleHurt, RoleHit, RoleGrab, RoleInvincible, RoleReflect, RoleAbsorb:
		return true
	}
	return false
}

// HitStun is either a fixed number of frames or a multiple of the knockback.
type HitStun struct {
	FixedFrames        int     `yaml:"fixed_frames,omitempty"`
	FramesPerKnockback float64 `yaml:"frames_per_knockback,omitempty"`
}

// UnmarshalYAML resets both fields so that setting one form clears the default of the other.
func (h *HitStun) UnmarshalYAML(value *yaml.Node) error {
	*h = HitStun{}
	type plain HitStun
	return value.Decode((*plain)(h))
}

// Duration returns the hitstun in frames for a launch of strength kb.
func (h HitStun) Duration(kb float64) float64 {
	if h.FramesPerKnockback == 0 {
		return float64(h.FixedFrames)
	}
	return h.FramesPerKnockback * kb
}

// HitBox describes the damage dealt by a hit collision box.
type HitBox struct {
	ShieldDamage     float64 `yaml:"shield_damage"`
	Damage           float64 `yaml:"damage"`
	BKB              float64 `yaml:"bkb"`
	KBG              float64 `yaml:"kbg"`
	Angle            float64 `yaml:"angle"` // degrees, 361 selects the sakurai angle
	HitStun          HitStun `yaml:"hitstun"`
	EnableClang      bool    `yaml:"clang"`
	EnableRebound    bool    `yaml:"rebound"`
	EnableReverseHit bool    `yaml:"reverse_hit"`
}

// DefaultHitBox returns the hitbox used when a hit box omits its data.
func DefaultHitBox() HitBox {
	return HitBox{
		Damage:           6,
		BKB:              40,
		KBG:              1,
		Angle:            45,
		HitStun:          HitStun{FramesPerKnockback: 0.5},
		EnableClang:      true,
		EnableRebound:    true,
		EnableReverseHit: true,
	}
}

// UnmarshalYAML fills unspecified fields with DefaultHitBox values.
func (h *HitBox) UnmarshalYAML(value *yaml.Node) error {
	*h = DefaultHitBox()
	type plain HitBox
	return value.Decode((*plain)(h))
}

// HurtBox modifies the knockback received through a hurt collision box.
type HurtBox struct {
	BKBAdd     float64 `yaml:"bkb_add"`
	KBGAdd     float64 `yaml:"kbg_add"`
	DamageMult float64 `yaml:"damage_mult"`
}

// DefaultHurtBox returns a hurtbox that does not modify the hit.
func DefaultHurtBox() HurtBox {
	return HurtBox{DamageMult: 1}
}

// UnmarshalYAML fills unspecified fields with DefaultHurtBox values.
func (h *HurtBox) UnmarshalYAML(value *yaml.Node) error {
	*h = DefaultHurtBox()
	type plain HurtBox
	return value.Decode((*plain)(h))
}

// CollisionBox is a circle relative to the entity's base position.
type CollisionBox struct {
	Point  core.Point `yaml:"point"`
	Radius float64    `yaml:"radius"`
	Role   BoxRole    `yaml:"role"`
	Hit    *HitBox    `yaml:"hit,omitempty"`
	Hurt   *HurtBox   `yaml:"hurt,omitempty"`
}

// UnmarshalYAML applies the default radius and role and makes sure hit boxes carry hit data.
func (c *CollisionBox) UnmarshalYAML(value *yaml.Node) error {
	*c = CollisionBox{Radius: 3, Role: RoleHurt}
	type plain CollisionBox
	if err := value.Decode((*plain)(c)); err != nil {
		return err
	}
	if c.Role == RoleHit && c.Hit == nil {
		hb := DefaultHitBox()
		c.Hit = &hb
	}
	return nil
}

// HurtData returns the hurtbox modifiers of the box.
func (c *CollisionBox) HurtData() HurtBox {
	if c.Hurt == nil {
		return DefaultHurtBox()
	}
	return *c.Hurt
}

// ECB is the environment collision box, relative to the base position.
type ECB struct {
	Top    float64 `yaml:"top"`
	Left   float64 `yaml:"left"`
	Right  float64 `yaml:"right"`
	Bottom float64 `yaml:"bottom"`
}

// DefaultECB returns the ECB of an entity that does not author one.
func DefaultECB() ECB {
	return ECB{Top: 16, Left: -4, Right: 4, Bottom: 0}
}

// ItemHold positions a held item relative to the holder.
type ItemHold struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// ActionFrame is the content of a single frame of an action.
type ActionFrame struct {
	ECB               ECB            `yaml:"ecb"`
	Boxes             []CollisionBox `yaml:"boxes"`
	ItemHold          *ItemHold      `yaml:"item_hold,omitempty"`
	Grabbing          core.Point     `yaml:"grabbing"`
	Grabbed           core.Point     `yaml:"grabbed"`
	PassThrough       bool           `yaml:"pass_through"`
	LedgeCancel       bool           `yaml:"ledge_cancel"`
	UsePlatformAngle  bool           `yaml:"use_platform_angle"`
	ForceHitlistReset bool           `yaml:"force_hitlist_reset"`
	LedgeGrabBox      *core.Box      `yaml:"ledge_grab_box,omitempty"`
	ItemGrabBox       *core.Box      `yaml:"item_grab_box,omitempty"`
}

// DefaultActionFrame returns a frame with no boxes and the default flags.
func DefaultActionFrame() ActionFrame {
	return ActionFrame{
		ECB:         DefaultECB(),
		Grabbing:    core.Point{X: 8, Y: 11},
		Grabbed:     core.Point{X: 4, Y: 11},
		PassThrough: true,
		LedgeCancel: true,
	}
}

// UnmarshalYAML fills unspecified fields with DefaultActionFrame values.
func (f *ActionFrame) UnmarshalYAML(value *yaml.Node) error {
	*f = DefaultActionFrame()
	type plain ActionFrame
	return value.Decode((*plain)(f))
}

// HitBoxes returns the boxes with the hit role.
func (f *ActionFrame) HitBoxes() []CollisionBox {
	var out []CollisionBox
	for _, b := range f.Boxes {
		if b.Role == RoleHit {
			out = append(out, b)
		}
	}
	return out
}

func (f ActionFrame) clone() ActionFrame {
	out := f
	out.Boxes = make([]CollisionBox, len(f.Boxes))
	for i, b := range f.Boxes {
		if b.Hit != nil {
			hit := *b.Hit
			b.Hit = &hit
		}
		if b.Hurt != nil {
			hurt := *b.Hurt
			b.Hurt = &hurt
		}
		out.Boxes[i] = b
	}
	if f.ItemHold != nil {
		hold := *f.ItemHold
		out.ItemHold = &hold
	}
	if f.LedgeGrabBox != nil {
		box := *f.LedgeGrabBox
		out.LedgeGrabBox = &box
	}
	if f.ItemGrabBox != nil {
		box := *f.ItemGrabBox
		out.ItemGrabBox = &box
	}
	return out
}

// FrameSpan overrides the base frame for the frames From..To inclusive.
type FrameSpan struct {
	From int  `yaml:"from"`
	To   *int `yaml:"to,omitempty"`

	Boxes        []CollisionBox `yaml:"boxes"`
	ReplaceBoxes bool           `yaml:"replace_boxes"`
	Invincible   bool           `yaml:"invincible"` // hurt boxes become invincible

	ECB               *ECB        `yaml:"ecb,omitempty"`
	ItemHold          *ItemHold   `yaml:"item_hold,omitempty"`
	Grabbing          *core.Point `yaml:"grabbing,omitempty"`
	Grabbed           *core.Point `yaml:"grabbed,omitempty"`
	PassThrough       *bool       `yaml:"pass_through,omitempty"`
	LedgeCancel       *bool       `yaml:"ledge_cancel,omitempty"`
	UsePlatformAngle  *bool       `yaml:"use_platform_angle,omitempty"`
	ForceHitlistReset bool        `yaml:"force_hitlist_reset"`
	LedgeGrabBox      *core.Box   `yaml:"ledge_grab_box,omitempty"`
	ItemGrabBox       *core.Box   `yaml:"item_grab_box,omitempty"`
}

func (s *FrameSpan) last() int {
	if s.To == nil {
		return s.From
	}
	return *s.To
}

func (s *FrameSpan) covers(frame int) bool {
	return frame >= s.From && frame <= s.last()
}

func (s *FrameSpan) apply(f *ActionFrame) {
	if s.ReplaceBoxes {
		f.Boxes = f.Boxes[:0]
	}
	for _, b := range s.Boxes {
		f.Boxes = append(f.Boxes, b)
	}
	if s.Invincible {
		for i := range f.Boxes {
			if f.Boxes[i].Role == RoleHurt {
				f.Boxes[i].Role = RoleInvincible
			}
		}
	}
	if s.ECB != nil {
		f.ECB = *s.ECB
	}
	if s.ItemHold != nil {
		hold := *s.ItemHold
		f.ItemHold = &hold
	}
	if s.Grabbing != nil {
		f.Grabbing = *s.Grabbing
	}
	if s.Grabbed != nil {
		f.Grabbed = *s.Grabbed
	}
	if s.PassThrough != nil {
		f.PassThrough = *s.PassThrough
	}
	if s.LedgeCancel != nil {
		f.LedgeCancel = *s.LedgeCancel
	}
	if s.UsePlatformAngle != nil {
		f.UsePlatformAngle = *s.UsePlatformAngle
	}
	if s.ForceHitlistReset {
		f.ForceHitlistReset = true
	}
	if s.LedgeGrabBox != nil {
		box := *s.LedgeGrabBox
		f.LedgeGrabBox = &box
	}
	if s.ItemGrabBox != nil {
		box := *s.ItemGrabBox
		f.ItemGrabBox = &box
	}
}

// ActionDef is the authored form of an action: a length, an IASA frame and
// overrides applied on top of the entity's base frame.
type ActionDef struct {
	Length int         `yaml:"length"`
	IASA   int         `yaml:"iasa"`
	Frames []FrameSpan `yaml:"frames"`
}

// Action is an expanded action: one ActionFrame per frame.
type Action struct {
	IASA   int
	Frames []ActionFrame
}

// LastFrame returns the index of the final frame.
func (a *Action) LastFrame() int {
	return len(a.Frames) - 1
}

// Shield configures a fighter's shield.
type Shield struct {
	StickLock bool    `yaml:"stick_lock"`
	StickMult float64 `yaml:"stick_mult"`
	OffsetX   float64 `yaml:"offset_x"`
	OffsetY   float64 `yaml:"offset_y"`
	BreakVel  float64 `yaml:"break_vel"`
	Scaling   float64 `yaml:"scaling"`
	HPScaling float64 `yaml:"hp_scaling"`
	HPMax     float64 `yaml:"hp_max"`
	HPRegen   float64 `yaml:"hp_regen"`
	HPCost    float64 `yaml:"hp_cost"`
}

// UnmarshalYAML fills unspecified fields with the default shield.
func (s *Shield) UnmarshalYAML(value *yaml.Node) error {
	*s = Shield{
		StickMult: 3,
		OffsetY:   10,
		BreakVel:  3,
		Scaling:   10,
		HPScaling: 1,
		HPMax:     60,
		HPRegen:   0.1,
		HPCost:    0.3,
	}
	type plain Shield
	return value.Decode((*plain)(s))
}

// PowerShieldEffect is a window (in frames since the power shield started)
// and how long the effect lasts.
type PowerShieldEffect struct {
	Window   int `yaml:"window"`
	Duration int `yaml:"duration"`
}

// PowerShield configures the frame-perfect shield.
type PowerShield struct {
	ReflectWindow int                `yaml:"reflect_window"`
	Parry         *PowerShieldEffect `yaml:"parry,omitempty"`
	EnemyStun     *PowerShieldEffect `yaml:"enemy_stun,omitempty"`
}

// Tech configures the tech input windows.
type Tech struct {
	ActiveWindow int `yaml:"active_window"`
	LockedWindow int `yaml:"locked_window"`
}

// UnmarshalYAML fills unspecified fields with the default windows.
func (t *Tech) UnmarshalYAML(value *yaml.Node) error {
	*t = Tech{ActiveWindow: 20, LockedWindow: 20}
	type plain Tech
	return value.Decode((*plain)(t))
}

// LCancel configures aerial landing lag cancelling.
type LCancel struct {
	ActiveWindow int `yaml:"active_window"`
	FrameSkip    int `yaml:"frame_skip"`
}

// UnmarshalYAML fills unspecified fields with the default window.
func (l *LCancel) UnmarshalYAML(value *yaml.Node) error {
	*l = LCancel{ActiveWindow: 7, FrameSkip: 1}
	type plain LCancel
	return value.Decode((*plain)(l))
}

// Throw is the launch a grabbed fighter receives from a throw action.
type Throw struct {
	Frame  int     `yaml:"frame"`
	Angle  float64 `yaml:"angle"`
	Damage float64 `yaml:"damage"`
	BKB    float64 `yaml:"bkb"`
	KBG    float64 `yaml:"kbg"`
}

// Special spawns an entity on a frame of a special move.
type Special struct {
	Frame  int        `yaml:"frame"`
	Spawn  string     `yaml:"spawn"`  // entity def key
	Offset core.Point `yaml:"offset"` // x is mirrored when facing left
	Speed  float64    `yaml:"speed"`  // projectiles only
}

// Fighter holds the settings only fighters use.
type Fighter struct {
	AirJumps  int                `yaml:"air_jumps"`
	TauntItem string             `yaml:"taunt_item"` // spawned by TauntDown while B is held
	Throws    map[string]Throw   `yaml:"throws"`     // keyed by throw action name
	Specials  map[string]Special `yaml:"specials"`   // keyed by neutral, side, up, down
}

// UnmarshalYAML fills unspecified fields with the default fighter.
func (f *Fighter) UnmarshalYAML(value *yaml.Node) error {
	*f = Fighter{AirJumps: 1}
	type plain Fighter
	return value.Decode((*plain)(f))
}

// EntityDef is the read-only definition of an entity: physics constants and
// per-action frame data.
type EntityDef struct {
	Name string      `yaml:"name"`
	Kind action.Kind `yaml:"kind"`

	Weight              float64 `yaml:"weight"`
	Gravity             float64 `yaml:"gravity"`
	TerminalVel         float64 `yaml:"terminal_vel"`
	FastfallTerminalVel float64 `yaml:"fastfall_terminal_vel"`
	JumpYInitVel        float64 `yaml:"jump_y_init_vel"`
	JumpYInitVelShort   float64 `yaml:"jump_y_init_vel_short"`
	JumpXInitVel        float64 `yaml:"jump_x_init_vel"`
	JumpXTermVel        float64 `yaml:"jump_x_term_vel"`
	JumpXVelGroundMult  float64 `yaml:"jump_x_vel_ground_mult"`
	AirMobilityA        float64 `yaml:"air_mobility_a"`
	AirMobilityB        float64 `yaml:"air_mobility_b"`
	AirXTermVel         float64 `yaml:"air_x_term_vel"`
	AirFriction         float64 `yaml:"air_friction"`
	AirJumpXVel         float64 `yaml:"air_jump_x_vel"`
	AirJumpYVel         float64 `yaml:"air_jump_y_vel"`
	WalkInitVel         float64 `yaml:"walk_init_vel"`
	WalkAcc             float64 `yaml:"walk_acc"`
	WalkMaxVel          float64 `yaml:"walk_max_vel"`
	DashInitVel         float64 `yaml:"dash_init_vel"`
	DashRunAccA         float64 `yaml:"dash_run_acc_a"`
	DashRunAccB         float64 `yaml:"dash_run_acc_b"`
	DashRunTermVel      float64 `yaml:"dash_run_term_vel"`
	Friction            float64 `yaml:"friction"`
	AerialDodgeMult     float64 `yaml:"aerialdodge_mult"`
	AerialDodgeDrift    int     `yaml:"aerialdodge_drift_frame"`
	LedgeGrabX          float64 `yaml:"ledge_grab_x"`
	LedgeGrabY          float64 `yaml:"ledge_grab_y"`
	RunTurnFlipDir      int     `yaml:"run_turn_flip_dir_frame"`
	TiltTurnFlipDir     int     `yaml:"tilt_turn_flip_dir_frame"`
	TiltTurnIntoDash    int     `yaml:"tilt_turn_into_dash_iasa"`
	// Negative disables the forced getup.
	MissedTechForcedGetup int `yaml:"missed_tech_forced_getup"`

	Shield      *Shield      `yaml:"shield,omitempty"`
	PowerShield *PowerShield `yaml:"power_shield,omitempty"`
	Tech        *Tech        `yaml:"tech,omitempty"`
	LCancel     *LCancel     `yaml:"lcancel,omitempty"`
	Fighter     *Fighter     `yaml:"fighter,omitempty"`

	BaseFrame ActionFrame          `yaml:"base_frame"`
	Actions   map[string]ActionDef `yaml:"actions"`

	actions []Action
}

// DefaultEntityDef returns an entity of the given kind with default constants
// and no authored actions.
func DefaultEntityDef(kind action.Kind) EntityDef {
	return EntityDef{
		Kind:                  kind,
		Weight:                1,
		Gravity:               -0.1,
		TerminalVel:           -2,
		FastfallTerminalVel:   -3,
		JumpYInitVel:          3,
		JumpYInitVelShort:     2,
		JumpXInitVel:          1,
		JumpXTermVel:          1.5,
		JumpXVelGroundMult:    1,
		AirMobilityA:          0.04,
		AirMobilityB:          0.02,
		AirXTermVel:           1,
		AirFriction:           0.05,
		AirJumpXVel:           1,
		AirJumpYVel:           3,
		WalkInitVel:           0.2,
		WalkAcc:               0.1,
		WalkMaxVel:            1,
		DashInitVel:           2,
		DashRunAccA:           0.01,
		DashRunAccB:           0.2,
		DashRunTermVel:        2,
		Friction:              0.1,
		AerialDodgeMult:       3,
		AerialDodgeDrift:      20,
		LedgeGrabX:            -2,
		LedgeGrabY:            -24,
		RunTurnFlipDir:        30,
		TiltTurnFlipDir:       5,
		TiltTurnIntoDash:      5,
		MissedTechForcedGetup: 200,
		BaseFrame:             DefaultActionFrame(),
	}
}

// UnmarshalYAML fills unspecified fields with DefaultEntityDef values.
func (d *EntityDef) UnmarshalYAML(value *yaml.Node) error {
	*d = DefaultEntityDef(action.KindFighter)
	type plain EntityDef
	return value.Decode((*plain)(d))
}

// AirJumps returns the number of air jumps restored on landing.
func (d *EntityDef) AirJumps() int {
	if d.Fighter == nil {
		return 1
	}
	return d.Fighter.AirJumps
}

// Action returns the expanded action with the given id, or nil.
func (d *EntityDef) Action(id int) *Action {
	if id < 0 || id >= len(d.actions) {
		return nil
	}
	return &d.actions[id]
}

// Frame returns the frame data for an action frame, or nil when out of range.
func (d *EntityDef) Frame(id, frame int) *ActionFrame {
	a := d.Action(id)
	if a == nil || frame < 0 || frame >= len(a.Frames) {
		return nil
	}
	return &a.Frames[frame]
}

// ActionCount returns the number of actions of the entity's kind.
func (d *EntityDef) ActionCount() int {
	return len(d.actions)
}

// Build expands the authored actions into per-frame data. Actions the entity
// does not author get a single default frame.
func (d *EntityDef) Build() error {
	names := action.Names(d.Kind)
	if names == nil {
		return fmt.Errorf("unknown kind %q", d.Kind)
	}
	for name := range d.Actions {
		if _, ok := action.Parse(d.Kind, name); !ok {
			return fmt.Errorf("unknown %s action %q", d.Kind, name)
		}
	}

	d.actions = make([]Action, len(names))
	for id, name := range names {
		def, ok := d.Actions[name]
		if !ok {
			d.actions[id] = Action{Frames: []ActionFrame{d.BaseFrame.clone()}}
			continue
		}
		if def.Length < 1 {
			return fmt.Errorf("action %s has no frames", name)
		}
		if def.IASA < 0 || def.IASA > def.Length {
			return fmt.Errorf("action %s: iasa %d outside 0..%d", name, def.IASA, def.Length)
		}
		for _, span := range def.Frames {
			if span.From < 0 || span.last() < span.From || span.last() >= def.Length {
				return fmt.Errorf("action %s: frames %d..%d outside 0..%d", name, span.From, span.last(), def.Length-1)
			}
			for _, b := range span.Boxes {
				if !b.Role.Valid() {
					return fmt.Errorf("action %s: unknown box role %q", name, b.Role)
				}
			}
		}

		frames := make([]ActionFrame, def.Length)
		for i := range frames {
			frames[i] = d.BaseFrame.clone()
			for j := range def.Frames {
				if def.Frames[j].covers(i) {
					def.Frames[j].apply(&frames[i])
				}
			}
		}
		d.actions[id] = Action{IASA: def.IASA, Frames: frames}
	}
	return nil
}
