package content

import (
	"math"
	"testing"

	"github.com/vovakirdan/brawl-core/internal/core"
)

func flatStage() *Stage {
	return &Stage{
		Name: "test",
		Surfaces: []Surface{
			{X1: -50, Y1: 0, X2: 50, Y2: 0, Floor: &Floor{Traction: 1}, GrabLeft: true, GrabRight: true},
			{X1: 50, Y1: 0, X2: 80, Y2: 30, Floor: &Floor{}},
			{X1: -20, Y1: 30, X2: 20, Y2: 30, Floor: &Floor{PassThrough: true}},
			{X1: -50, Y1: 0, X2: -50, Y2: -20, Wall: true},
		},
		SpawnPoints: []SpawnPoint{{X: -10, Y: 5, FaceRight: true}, {X: 10, Y: 5}},
		Blast:       core.Box{X1: -200, Y1: -100, X2: 200, Y2: 200},
		Camera:      core.Box{X1: -150, Y1: -80, X2: 150, Y2: 150},
	}
}

func TestSurfaceCoordinates(t *testing.T) {
	s := flatStage().Surfaces[0]

	if got := s.WorldXToPlatX(10); got != 10 {
		t.Errorf("WorldXToPlatX(10) = %v, expected 10", got)
	}
	if got := s.PlatXToWorldX(s.WorldXToPlatX(-33)); got != -33 {
		t.Errorf("round trip = %v, expected -33", got)
	}
	if got := s.WorldXToPlatXClamp(90); got != 50 {
		t.Errorf("WorldXToPlatXClamp(90) = %v, expected 50", got)
	}
	if !s.PlatXInBounds(-50) || s.PlatXInBounds(50.1) {
		t.Error("PlatXInBounds() should include the ends and nothing past them")
	}
	if s.LeftLedge() != (core.Point{X: -50, Y: 0}) || s.RightLedge() != (core.Point{X: 50, Y: 0}) {
		t.Errorf("ledges = %v, %v", s.LeftLedge(), s.RightLedge())
	}

	slope := flatStage().Surfaces[1]
	if got := slope.WorldXToWorldY(65); got != 15 {
		t.Errorf("WorldXToWorldY(65) = %v, expected 15", got)
	}
	if got := slope.FloorAngle(); math.Abs(got-math.Pi/4) > 1e-9 {
		t.Errorf("FloorAngle() = %v, expected pi/4", got)
	}
}

func TestSurfaceReversedEndpoints(t *testing.T) {
	s := Surface{X1: 10, Y1: 2, X2: -10, Y2: 2}
	if s.P1().X != -10 || s.P2().X != 10 {
		t.Errorf("P1, P2 = %v, %v, expected left then right", s.P1(), s.P2())
	}
}

func TestConnectedFloors(t *testing.T) {
	stage := flatStage()
	left, right := stage.ConnectedFloors(0)
	if left != -1 || right != 1 {
		t.Errorf("ConnectedFloors(0) = %d, %d, expected -1, 1", left, right)
	}
	left, right = stage.ConnectedFloors(1)
	if left != 0 || right != -1 {
		t.Errorf("ConnectedFloors(1) = %d, %d, expected 0, -1", left, right)
	}
	left, right = stage.ConnectedFloors(3)
	if left != -1 || right != -1 {
		t.Errorf("ConnectedFloors(wall) = %d, %d, expected -1, -1", left, right)
	}
}

func TestFloorBelow(t *testing.T) {
	stage := flatStage()
	tests := []struct {
		name  string
		p     core.Point
		index int
		ok    bool
	}{
		{"above platform", core.Point{X: 0, Y: 40}, 2, true},
		{"under platform", core.Point{X: 0, Y: 20}, 0, true},
		{"on slope", core.Point{X: 70, Y: 25}, 1, true},
		{"off stage", core.Point{X: 120, Y: 10}, -1, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			index, ok := stage.FloorBelow(tc.p)
			if index != tc.index || ok != tc.ok {
				t.Errorf("FloorBelow(%v) = %d, %v, expected %d, %v", tc.p, index, ok, tc.index, tc.ok)
			}
		})
	}
}

func TestSpawnWraps(t *testing.T) {
	stage := flatStage()
	if got := stage.Spawn(2); got != stage.SpawnPoints[0] {
		t.Errorf("Spawn(2) = %+v, expected first point", got)
	}
	if got := stage.Respawn(1); got != stage.SpawnPoints[1] {
		t.Errorf("Respawn(1) = %+v, expected spawn point fallback", got)
	}
}

func TestStageCloneIsDeep(t *testing.T) {
	stage := flatStage()
	clone := stage.Clone()
	clone.Surfaces[0].Floor.Traction = 9
	clone.SpawnPoints[0].X = 99
	if stage.Surfaces[0].Floor.Traction != 1 || stage.SpawnPoints[0].X != -10 {
		t.Error("Clone() shares data with the original")
	}
}

func TestStageValidate(t *testing.T) {
	if err := flatStage().Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	noBlast := flatStage()
	noBlast.Blast = core.Box{}
	if noBlast.Validate() == nil {
		t.Error("Validate() should reject an empty blast zone")
	}

	outside := flatStage()
	outside.SpawnPoints = append(outside.SpawnPoints, SpawnPoint{X: 500})
	if outside.Validate() == nil {
		t.Error("Validate() should reject a spawn point outside the blast zone")
	}

	point := flatStage()
	point.Surfaces[0] = Surface{X1: 1, Y1: 1, X2: 1, Y2: 1}
	if point.Validate() == nil {
		t.Error("Validate() should reject a zero length surface")
	}
}

func TestRules(t *testing.T) {
	r := DefaultRules()
	if frames, ok := r.TimeLimitFrames(); !ok || frames != 480*60 {
		t.Errorf("TimeLimitFrames() = %d, %v", frames, ok)
	}
	r.StockCount = 0
	if r.Stocks() != -1 {
		t.Errorf("Stocks() = %d, expected -1 for unlimited", r.Stocks())
	}
	r.TimeLimitSeconds = 0
	if _, ok := r.TimeLimitFrames(); ok {
		t.Error("TimeLimitFrames() should report no limit")
	}
	r.Pause = "sometimes"
	if r.Validate() == nil {
		t.Error("Validate() should reject an unknown pause mode")
	}
}
