package sim

import (
	"math"
	"testing"

	"pgregory.net/rapid"

	"github.com/vovakirdan/brawl-core/internal/action"
	"github.com/vovakirdan/brawl-core/internal/content"
)

func TestKnockbackMonotonic(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		hit := content.HitBox{
			Damage: rapid.Float64Range(0, 40).Draw(t, "damage"),
			BKB:    rapid.Float64Range(0, 100).Draw(t, "bkb"),
			KBG:    rapid.Float64Range(0, 2).Draw(t, "kbg"),
		}
		hurt := content.DefaultHurtBox()
		weight := rapid.Float64Range(0.5, 2).Draw(t, "weight")
		low := rapid.Float64Range(0, 500).Draw(t, "low")
		high := low + rapid.Float64Range(0, 500).Draw(t, "delta")

		kbLow := Knockback(hit, hurt, low, weight)
		kbHigh := Knockback(hit, hurt, high, weight)
		if kbHigh < kbLow {
			t.Fatalf("Knockback(%v) = %v < Knockback(%v) = %v", high, kbHigh, low, kbLow)
		}
		if kbHigh > 2500 {
			t.Fatalf("Knockback() = %v, expected at most 2500", kbHigh)
		}
		if kbLow < hit.BKB {
			t.Fatalf("Knockback() = %v, expected at least bkb %v", kbLow, hit.BKB)
		}
	})
}

func TestKnockbackValue(t *testing.T) {
	hit := content.HitBox{Damage: 10, BKB: 30, KBG: 1}
	// launch = 0.05*(10*(10+20)) + 30*0.1 = 18; weight factor 1
	expected := 30 + (18*1.4 + 18)
	if got := Knockback(hit, content.DefaultHurtBox(), 20, 1); math.Abs(got-expected) > 1e-9 {
		t.Errorf("Knockback() = %v, expected %v", got, expected)
	}

	hurt := content.HurtBox{BKBAdd: 10, KBGAdd: 0, DamageMult: 1}
	if got := Knockback(hit, hurt, 20, 1); math.Abs(got-(expected+10)) > 1e-9 {
		t.Errorf("Knockback() with bkb_add = %v, expected %v", got, expected+10)
	}
}

func TestKnockbackDecidesDamageOrFly(t *testing.T) {
	s := testSimulation(t, "final")
	hit := content.HitBox{Damage: 10, BKB: 0, KBG: 1, Angle: 45}
	tests := []struct {
		name     string
		before   float64
		kb       float64
		expected action.Player
	}{
		// launch = 0.05*(10*(10+10)) + 20*0.1 = 12
		{"fresh", 0, 12*1.4 + 18, action.Damage},
		// launch = 0.05*(10*(10+160)) + 170*0.1 = 102
		{"high percent", 150, 102*1.4 + 18, action.DamageFly},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Knockback(hit, content.DefaultHurtBox(), tc.before+hit.Damage, 1); math.Abs(got-tc.kb) > 1e-9 {
				t.Errorf("Knockback() = %v, expected %v", got, tc.kb)
			}

			es := &Entities{}
			key := es.Insert(standingPlayer(0, 0, true, int(action.Idle), 0))
			e := es.Get(key)
			e.Player.Body.Damage = tc.before
			ctx := testContext(s, es, key)
			if ctx.Def.Weight != 1 {
				t.Fatalf("Weight = %v, expected 1", ctx.Def.Weight)
			}

			r := e.Player.launch(ctx, &e.State, hit, content.DefaultHurtBox(), NoKey)
			if r == nil || action.Player(r.action) != tc.expected {
				t.Errorf("launch() = %+v, expected %s", r, tc.expected)
			}
		})
	}
}

func TestLaunchAngle(t *testing.T) {
	deg := math.Pi / 180
	tests := []struct {
		name     string
		angle    float64
		kb       float64
		expected float64
	}{
		{"sakurai weak", 361, 20, 0},
		{"sakurai strong", 361, 60, 44 * deg},
		{"mirrored sakurai weak", 180 - 361, 20, math.Pi},
		{"mirrored sakurai strong", 180 - 361, 60, 136 * deg},
		{"plain", 45, 100, 45 * deg},
		{"negative wraps", -90, 100, 270 * deg},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := launchAngle(tc.angle, tc.kb); math.Abs(got-tc.expected) > 1e-9 {
				t.Errorf("launchAngle(%v, %v) = %v, expected %v", tc.angle, tc.kb, got, tc.expected)
			}
		})
	}
}

func TestDirectionalInfluence(t *testing.T) {
	angle := math.Pi / 4
	if got := directionalInfluence(0, 0, angle); got != angle {
		t.Errorf("neutral stick changed the angle to %v", got)
	}
	// Holding perpendicular to the launch bends it the full range.
	perp := angle + math.Pi/2
	got := directionalInfluence(math.Cos(perp), math.Sin(perp), angle)
	if math.Abs(math.Abs(got-angle)-18*math.Pi/180) > 1e-9 {
		t.Errorf("directionalInfluence() moved %v rad, expected 18 degrees", got-angle)
	}
}

func TestLaunchThreshold(t *testing.T) {
	s := testSimulation(t, "final")
	tests := []struct {
		name     string
		hit      content.HitBox
		expected action.Player
	}{
		{"weak hit", content.HitBox{Damage: 1, BKB: 10, Angle: 0}, action.Damage},
		{"strong hit", content.HitBox{Damage: 10, BKB: 200, Angle: 45}, action.DamageFly},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			es := &Entities{}
			key := es.Insert(standingPlayer(0, 0, true, int(action.Idle), 0))
			ctx := testContext(s, es, key)
			e := es.Get(key)

			r := e.Player.launch(ctx, &e.State, tc.hit, content.DefaultHurtBox(), NoKey)
			if r == nil || action.Player(r.action) != tc.expected {
				t.Fatalf("launch() = %+v, expected %s", r, tc.expected)
			}
			if !e.Player.Body.IsAirborne() {
				t.Error("a launched player should leave the ground")
			}
			if e.Player.Body.Damage != tc.hit.Damage {
				t.Errorf("Damage = %v, expected %v", e.Player.Body.Damage, tc.hit.Damage)
			}
		})
	}
}

func TestCrouchCancelReducesKnockback(t *testing.T) {
	s := testSimulation(t, "final")
	hit := content.HitBox{Damage: 10, BKB: 100, Angle: 0}

	es := &Entities{}
	standKey := es.Insert(standingPlayer(0, -20, true, int(action.Idle), 0))
	crouchKey := es.Insert(standingPlayer(1, 20, true, int(action.Crouch), 0))

	stand := es.Get(standKey)
	stand.Player.launch(testContext(s, es, standKey), &stand.State, hit, content.DefaultHurtBox(), NoKey)
	crouch := es.Get(crouchKey)
	crouch.Player.launch(testContext(s, es, crouchKey), &crouch.State, hit, content.DefaultHurtBox(), NoKey)

	if math.Abs(crouch.Player.Body.KBXVel) >= math.Abs(stand.Player.Body.KBXVel) {
		t.Errorf("crouching KBXVel %v should be below standing %v", crouch.Player.Body.KBXVel, stand.Player.Body.KBXVel)
	}
}
