// Package action enumerates the closed set of actions each entity kind can be in.
// Action ids are stored as plain integers in snapshots and replays, so the order
// of the constants below is part of the replay format: append, never reorder.
package action

// Player is an action a fighter can be in.
type Player int

const (
	// Idle
	Spawn Player = iota
	ReSpawn
	ReSpawnIdle
	Idle
	Crouch
	LedgeIdle
	Teeter
	TeeterIdle
	MissedTechIdle

	// Movement
	Fall
	AerialFall
	Land
	JumpSquat
	JumpF
	JumpB
	JumpAerialF
	JumpAerialB
	TiltTurn
	RunTurn
	SmashTurn
	Dash
	Run
	RunEnd
	Walk
	PassPlatform
	Damage
	DamageFly
	DamageFall
	LedgeGrab
	LedgeJump
	LedgeJumpSlow
	LedgeGetup
	LedgeGetupSlow
	LedgeIdleChain

	// Defense
	PowerShield
	ShieldOn
	Shield
	ShieldOff
	RollF
	RollB
	SpotDodge
	AerialDodge
	SpecialFall
	SpecialLand
	TechF
	TechN
	TechB
	MissedTechGetupF
	MissedTechGetupN
	MissedTechGetupB
	Rebound
	LedgeRoll
	LedgeRollSlow

	// Vulnerable
	ShieldBreakFall
	ShieldBreakGetup
	Stun
	MissedTechStart

	// Attacks
	Jab
	Jab2
	Jab3
	Utilt
	Dtilt
	Ftilt
	DashAttack
	Usmash
	Dsmash
	Fsmash

	// Grabs
	Grab
	DashGrab
	GrabbingIdle
	GrabbingEnd
	GrabbedIdleAir
	GrabbedIdle
	GrabbedEnd

	// Throws
	Uthrow
	Dthrow
	Fthrow
	Bthrow

	// Items
	ItemGrab
	ItemEat
	ItemThrowU
	ItemThrowD
	ItemThrowF
	ItemThrowB
	ItemThrowAirU
	ItemThrowAirD
	ItemThrowAirF
	ItemThrowAirB

	// Getup attacks
	LedgeAttack
	LedgeAttackSlow
	MissedTechAttack

	// Aerials
	Uair
	Dair
	Fair
	Bair
	Nair
	UairLand
	DairLand
	FairLand
	BairLand
	NairLand

	// Specials
	UspecialGroundStart
	UspecialAirStart
	DspecialGroundStart
	DspecialAirStart
	SspecialGroundStart
	SspecialAirStart
	NspecialGroundStart
	NspecialAirStart

	// Taunts
	TauntUp
	TauntDown
	TauntLeft
	TauntRight

	// Crouch
	CrouchStart
	CrouchEnd

	Eliminated
	DummyFramePreStart

	playerCount
)

var playerNames = [...]string{
	"Spawn", "ReSpawn", "ReSpawnIdle", "Idle", "Crouch", "LedgeIdle", "Teeter", "TeeterIdle", "MissedTechIdle",
	"Fall", "AerialFall", "Land", "JumpSquat", "JumpF", "JumpB", "JumpAerialF", "JumpAerialB", "TiltTurn",
	"RunTurn", "SmashTurn", "Dash", "Run", "RunEnd", "Walk", "PassPlatform", "Damage", "DamageFly", "DamageFall",
	"LedgeGrab", "LedgeJump", "LedgeJumpSlow", "LedgeGetup", "LedgeGetupSlow", "LedgeIdleChain",
	"PowerShield", "ShieldOn", "Shield", "ShieldOff", "RollF", "RollB", "SpotDodge", "AerialDodge", "SpecialFall",
	"SpecialLand", "TechF", "TechN", "TechB", "MissedTechGetupF", "MissedTechGetupN", "MissedTechGetupB",
	"Rebound", "LedgeRoll", "LedgeRollSlow",
	"ShieldBreakFall", "ShieldBreakGetup", "Stun", "MissedTechStart",
	"Jab", "Jab2", "Jab3", "Utilt", "Dtilt", "Ftilt", "DashAttack", "Usmash", "Dsmash", "Fsmash",
	"Grab", "DashGrab", "GrabbingIdle", "GrabbingEnd", "GrabbedIdleAir", "GrabbedIdle", "GrabbedEnd",
	"Uthrow", "Dthrow", "Fthrow", "Bthrow",
	"ItemGrab", "ItemEat", "ItemThrowU", "ItemThrowD", "ItemThrowF", "ItemThrowB",
	"ItemThrowAirU", "ItemThrowAirD", "ItemThrowAirF", "ItemThrowAirB",
	"LedgeAttack", "LedgeAttackSlow", "MissedTechAttack",
	"Uair", "Dair", "Fair", "Bair", "Nair", "UairLand", "DairLand", "FairLand", "BairLand", "NairLand",
	"UspecialGroundStart", "UspecialAirStart", "DspecialGroundStart", "DspecialAirStart",
	"SspecialGroundStart", "SspecialAirStart", "NspecialGroundStart", "NspecialAirStart",
	"TauntUp", "TauntDown", "TauntLeft", "TauntRight",
	"CrouchStart", "CrouchEnd",
	"Eliminated", "DummyFramePreStart",
}

// compile-time check that every player action has a name
var _ = [1]struct{}{}[len(playerNames)-int(playerCount)]

// String returns the action name as used in content packages.
func (a Player) String() string {
	if a.Valid() {
		return playerNames[a]
	}
	return "Unknown"
}

// Valid reports whether a is a known player action.
func (a Player) Valid() bool {
	return a >= 0 && a < playerCount
}

// IsAirAttack reports whether a is one of the five aerial attacks.
func (a Player) IsAirAttack() bool {
	switch a {
	case Fair, Bair, Uair, Dair, Nair:
		return true
	}
	return false
}

// IsAttackLand reports whether a is the landing lag of an aerial attack.
func (a Player) IsAttackLand() bool {
	switch a {
	case FairLand, BairLand, UairLand, DairLand, NairLand:
		return true
	}
	return false
}

// IsLand reports whether a is any landing action.
func (a Player) IsLand() bool {
	return a.IsAttackLand() || a == SpecialLand || a == Land
}

// PlayerActions returns every player action in id order.
func PlayerActions() []Player {
	all := make([]Player, playerCount)
	for i := range all {
		all[i] = Player(i)
	}
	return all
}

// Item is an action a throwable item can be in.
type Item int

const (
	ItemSpawn Item = iota
	ItemIdle
	ItemFall
	ItemHeld
	ItemThrown
	ItemDropped

	itemCount
)

var itemNames = [...]string{"Spawn", "Idle", "Fall", "Held", "Thrown", "Dropped"}

var _ = [1]struct{}{}[len(itemNames)-int(itemCount)]

func (a Item) String() string {
	if a >= 0 && a < itemCount {
		return itemNames[a]
	}
	return "Unknown"
}

// Projectile is an action a projectile can be in.
type Projectile int

const (
	ProjectileSpawn Projectile = iota
	ProjectileTravel
	ProjectileHit

	projectileCount
)

var projectileNames = [...]string{"Spawn", "Travel", "Hit"}

var _ = [1]struct{}{}[len(projectileNames)-int(projectileCount)]

func (a Projectile) String() string {
	if a >= 0 && a < projectileCount {
		return projectileNames[a]
	}
	return "Unknown"
}

// Kind identifies which action set an entity definition uses.
type Kind string

const (
	KindFighter    Kind = "fighter"
	KindItem       Kind = "item"
	KindProjectile Kind = "projectile"
)

// Names returns the action names for a kind, indexed by action id.
// Returns nil for an unknown kind.
func Names(k Kind) []string {
	switch k {
	case KindFighter:
		return playerNames[:]
	case KindItem:
		return itemNames[:]
	case KindProjectile:
		return projectileNames[:]
	}
	return nil
}

// Parse returns the action id for name within kind k.
func Parse(k Kind, name string) (int, bool) {
	for i, n := range Names(k) {
		if n == name {
			return i, true
		}
	}
	return 0, false
}
