package content

import (
	"fmt"
	"math"

	"github.com/vovakirdan/brawl-core/internal/core"
)

// connectEpsilon is how close two surface endpoints must be to count as joined.
const connectEpsilon = 1e-4

// Floor marks a surface as something entities can stand on.
type Floor struct {
	PassThrough bool    `yaml:"pass_through"`
	Traction    float64 `yaml:"traction"`
}

// Surface is a line segment of stage geometry. Floors can be stood on,
// walls block horizontal motion and ceilings block upward motion.
type Surface struct {
	X1        float64 `yaml:"x1"`
	Y1        float64 `yaml:"y1"`
	X2        float64 `yaml:"x2"`
	Y2        float64 `yaml:"y2"`
	Floor     *Floor  `yaml:"floor,omitempty"`
	Wall      bool    `yaml:"wall"`
	Ceiling   bool    `yaml:"ceiling"`
	GrabLeft  bool    `yaml:"grab_left"`
	GrabRight bool    `yaml:"grab_right"`
}

// P1 returns the left endpoint.
func (s *Surface) P1() core.Point {
	if s.X1 <= s.X2 {
		return core.Point{X: s.X1, Y: s.Y1}
	}
	return core.Point{X: s.X2, Y: s.Y2}
}

// P2 returns the right endpoint.
func (s *Surface) P2() core.Point {
	if s.X1 <= s.X2 {
		return core.Point{X: s.X2, Y: s.Y2}
	}
	return core.Point{X: s.X1, Y: s.Y1}
}

// LeftLedge is the point a fighter hangs from when grabbing the left edge.
func (s *Surface) LeftLedge() core.Point { return s.P1() }

// RightLedge is the point a fighter hangs from when grabbing the right edge.
func (s *Surface) RightLedge() core.Point { return s.P2() }

// IsFloor reports whether entities can stand on the surface.
func (s *Surface) IsFloor() bool { return s.Floor != nil }

// IsPassThrough reports whether the surface is a floor that can be dropped through.
func (s *Surface) IsPassThrough() bool { return s.Floor != nil && s.Floor.PassThrough }

// FloorAngle returns the slope of the surface in radians, measured left to right.
func (s *Surface) FloorAngle() float64 {
	p1, p2 := s.P1(), s.P2()
	return math.Atan2(p2.Y-p1.Y, p2.X-p1.X)
}

func (s *Surface) midX() float64 {
	return (s.X1 + s.X2) / 2
}

func (s *Surface) halfWidth() float64 {
	return math.Abs(s.X2-s.X1) / 2
}

// WorldXToPlatX converts a world x to an offset from the middle of the surface.
func (s *Surface) WorldXToPlatX(x float64) float64 {
	return x - s.midX()
}

// PlatXToWorldX is the inverse of WorldXToPlatX.
func (s *Surface) PlatXToWorldX(x float64) float64 {
	return x + s.midX()
}

// WorldXToWorldY returns the height of the surface at world x.
func (s *Surface) WorldXToWorldY(x float64) float64 {
	p1, p2 := s.P1(), s.P2()
	if p2.X == p1.X {
		return math.Max(p1.Y, p2.Y)
	}
	t := (x - p1.X) / (p2.X - p1.X)
	return p1.Y + t*(p2.Y-p1.Y)
}

// PlatXToWorldP returns the world point on the surface at platform offset x.
func (s *Surface) PlatXToWorldP(x float64) core.Point {
	wx := s.PlatXToWorldX(x)
	return core.Point{X: wx, Y: s.WorldXToWorldY(wx)}
}

// PlatXInBounds reports whether the platform offset lies on the surface.
func (s *Surface) PlatXInBounds(x float64) bool {
	return math.Abs(x) <= s.halfWidth()
}

// WorldXInBounds reports whether world x lies within the surface's horizontal extent.
func (s *Surface) WorldXInBounds(x float64) bool {
	return x >= s.P1().X && x <= s.P2().X
}

// PlatXClamp clamps a platform offset to the surface.
func (s *Surface) PlatXClamp(x float64) float64 {
	w := s.halfWidth()
	return core.ClampF(x, -w, w)
}

// WorldXToPlatXClamp converts a world x to a platform offset that lies on the surface.
func (s *Surface) WorldXToPlatXClamp(x float64) float64 {
	return s.PlatXClamp(s.WorldXToPlatX(x))
}

// SpawnPoint is where a player appears at match start or after losing a stock.
type SpawnPoint struct {
	X         float64 `yaml:"x"`
	Y         float64 `yaml:"y"`
	FaceRight bool    `yaml:"face_right"`
}

// Stage is the static geometry of a match.
type Stage struct {
	Name          string       `yaml:"name"`
	Surfaces      []Surface    `yaml:"surfaces"`
	SpawnPoints   []SpawnPoint `yaml:"spawn_points"`
	RespawnPoints []SpawnPoint `yaml:"respawn_points"`
	Blast         core.Box     `yaml:"blast"`
	Camera        core.Box     `yaml:"camera"`
}

// Spawn returns the spawn point for the i-th player, wrapping when there are
// more players than points.
func (s *Stage) Spawn(i int) SpawnPoint {
	if len(s.SpawnPoints) == 0 {
		return SpawnPoint{Y: 10, FaceRight: i%2 == 0}
	}
	return s.SpawnPoints[i%len(s.SpawnPoints)]
}

// Respawn returns the respawn point for the i-th player.
func (s *Stage) Respawn(i int) SpawnPoint {
	if len(s.RespawnPoints) == 0 {
		return s.Spawn(i)
	}
	return s.RespawnPoints[i%len(s.RespawnPoints)]
}

// Clone returns a deep copy of the stage.
func (s *Stage) Clone() *Stage {
	out := *s
	out.Surfaces = make([]Surface, len(s.Surfaces))
	for i, surface := range s.Surfaces {
		if surface.Floor != nil {
			floor := *surface.Floor
			surface.Floor = &floor
		}
		out.Surfaces[i] = surface
	}
	out.SpawnPoints = append([]SpawnPoint(nil), s.SpawnPoints...)
	out.RespawnPoints = append([]SpawnPoint(nil), s.RespawnPoints...)
	return &out
}

// Surface returns the surface at index i, or nil.
func (s *Stage) Surface(i int) *Surface {
	if i < 0 || i >= len(s.Surfaces) {
		return nil
	}
	return &s.Surfaces[i]
}

// ConnectedFloors returns the floors joined to the left and right ends of floor i.
// Missing neighbours are -1.
func (s *Stage) ConnectedFloors(i int) (left, right int) {
	left, right = -1, -1
	cur := s.Surface(i)
	if cur == nil || !cur.IsFloor() {
		return left, right
	}
	p1, p2 := cur.P1(), cur.P2()
	for j := range s.Surfaces {
		other := &s.Surfaces[j]
		if j == i || !other.IsFloor() {
			continue
		}
		if left == -1 && other.P2().Dist(p1) < connectEpsilon {
			left = j
		}
		if right == -1 && other.P1().Dist(p2) < connectEpsilon {
			right = j
		}
	}
	return left, right
}

// FloorBelow returns the highest floor at or below p.
func (s *Stage) FloorBelow(p core.Point) (index int, ok bool) {
	best := math.Inf(-1)
	index = -1
	for i := range s.Surfaces {
		surface := &s.Surfaces[i]
		if !surface.IsFloor() || !surface.WorldXInBounds(p.X) {
			continue
		}
		y := surface.WorldXToWorldY(p.X)
		if y <= p.Y && y > best {
			best = y
			index = i
		}
	}
	return index, index >= 0
}

// Validate checks the stage for authoring errors.
func (s *Stage) Validate() error {
	if s.Blast.Width() <= 0 || s.Blast.Height() <= 0 {
		return fmt.Errorf("stage %s: blast zone is empty", s.Name)
	}
	if len(s.Surfaces) == 0 {
		return fmt.Errorf("stage %s: no surfaces", s.Name)
	}
	for i, surface := range s.Surfaces {
		if surface.X1 == surface.X2 && surface.Y1 == surface.Y2 {
			return fmt.Errorf("stage %s: surface %d has zero length", s.Name, i)
		}
	}
	for i, p := range s.SpawnPoints {
		if !s.Blast.ContainsStrict(core.Point{X: p.X, Y: p.Y}) {
			return fmt.Errorf("stage %s: spawn point %d outside the blast zone", s.Name, i)
		}
	}
	return nil
}
