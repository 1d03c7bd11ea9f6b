package content

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/vovakirdan/brawl-core/internal/action"
)

func TestDefaultPackage(t *testing.T) {
	pkg, err := Default()
	if err != nil {
		t.Fatalf("Default() error = %v", err)
	}

	if got := pkg.EntityKeys(action.KindFighter); len(got) == 0 {
		t.Fatal("default package has no fighters")
	}
	for _, key := range []string{"brawler", "crate", "fireball"} {
		if _, err := pkg.Entity(key); err != nil {
			t.Errorf("Entity(%q) error = %v", key, err)
		}
	}
	if len(pkg.StageKeys()) < 2 {
		t.Errorf("StageKeys() = %v, expected at least two stages", pkg.StageKeys())
	}
	if pkg.Rules.StockCount != 4 {
		t.Errorf("Rules.StockCount = %d, expected 4", pkg.Rules.StockCount)
	}
}

func TestBuildExpandsEveryAction(t *testing.T) {
	pkg, err := Default()
	if err != nil {
		t.Fatalf("Default() error = %v", err)
	}
	for _, key := range pkg.EntityKeys("") {
		def := pkg.Entities[key]
		names := action.Names(def.Kind)
		if def.ActionCount() != len(names) {
			t.Errorf("%s: ActionCount() = %d, expected %d", key, def.ActionCount(), len(names))
		}
		for id := range names {
			if a := def.Action(id); a == nil || len(a.Frames) == 0 {
				t.Errorf("%s: action %s has no frames", key, names[id])
			}
		}
	}
}

func TestFrameSpanOverrides(t *testing.T) {
	pkg, err := Default()
	if err != nil {
		t.Fatalf("Default() error = %v", err)
	}
	def := pkg.Entities["brawler"]

	jab := def.Action(int(action.Jab))
	if jab.IASA != 12 || len(jab.Frames) != 18 {
		t.Fatalf("Jab = iasa %d, %d frames, expected 12 and 18", jab.IASA, len(jab.Frames))
	}
	if jab.Frames[0].ItemGrabBox == nil {
		t.Error("Jab frame 0 should carry an item grab box")
	}
	if jab.Frames[5].ItemGrabBox != nil {
		t.Error("Jab frame 5 should not carry an item grab box")
	}
	if got := len(jab.Frames[3].HitBoxes()); got != 1 {
		t.Errorf("Jab frame 3 HitBoxes() = %d, expected 1", got)
	}
	if got := len(jab.Frames[0].HitBoxes()); got != 0 {
		t.Errorf("Jab frame 0 HitBoxes() = %d, expected 0", got)
	}

	roll := def.Action(int(action.RollF))
	for _, b := range roll.Frames[10].Boxes {
		if b.Role == RoleHurt {
			t.Errorf("RollF frame 10 has a hurt box, expected invincible")
		}
	}
	if roll.Frames[0].Boxes[0].Role != RoleHurt {
		t.Errorf("RollF frame 0 box role = %s, expected hurt", roll.Frames[0].Boxes[0].Role)
	}

	// Spans must not leak into the base frame.
	if len(def.BaseFrame.Boxes) != 2 {
		t.Errorf("base frame boxes = %d, expected 2", len(def.BaseFrame.Boxes))
	}
}

func TestYAMLDefaults(t *testing.T) {
	src := []byte(`
entities:
  dummy:
    kind: fighter
    base_frame:
      boxes:
        - {point: {x: 0, y: 0}, role: hit}
    actions:
      Jab:
        length: 3
        iasa: 1
stages:
  flat:
    surfaces:
      - {x1: -10, y1: 0, x2: 10, y2: 0, floor: {}}
    blast: {x1: -50, y1: -50, x2: 50, y2: 50}
`)
	pkg, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	def := pkg.Entities["dummy"]
	if def.Name != "dummy" {
		t.Errorf("Name = %q, expected dummy", def.Name)
	}
	if def.Gravity != -0.1 || def.Weight != 1 {
		t.Errorf("Gravity, Weight = %v, %v, expected defaults", def.Gravity, def.Weight)
	}
	box := def.BaseFrame.Boxes[0]
	if box.Radius != 3 {
		t.Errorf("Radius = %v, expected 3", box.Radius)
	}
	if box.Hit == nil || *box.Hit != DefaultHitBox() {
		t.Errorf("Hit = %+v, expected default hit box", box.Hit)
	}
	if !def.BaseFrame.PassThrough || !def.BaseFrame.LedgeCancel {
		t.Error("base frame flags should default to true")
	}
	if def.BaseFrame.ECB != DefaultECB() {
		t.Errorf("ECB = %+v, expected %+v", def.BaseFrame.ECB, DefaultECB())
	}
	if pkg.Rules != DefaultRules() {
		t.Errorf("Rules = %+v, expected defaults", pkg.Rules)
	}
}

func TestHitStunForms(t *testing.T) {
	tests := []struct {
		name     string
		stun     HitStun
		kb       float64
		expected float64
	}{
		{"fixed", HitStun{FixedFrames: 12}, 100, 12},
		{"per knockback", HitStun{FramesPerKnockback: 0.5}, 100, 50},
		{"zero", HitStun{}, 100, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.stun.Duration(tc.kb); got != tc.expected {
				t.Errorf("Duration(%v) = %v, expected %v", tc.kb, got, tc.expected)
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	stage := `
stages:
  flat:
    surfaces:
      - {x1: -10, y1: 0, x2: 10, y2: 0, floor: {}}
    blast: {x1: -50, y1: -50, x2: 50, y2: 50}
`
	tests := []struct {
		name string
		src  string
	}{
		{"no entities", stage},
		{"unknown action", "entities:\n  a:\n    actions:\n      Moonwalk: {length: 1}\n" + stage},
		{"empty action", "entities:\n  a:\n    actions:\n      Jab: {length: 0}\n" + stage},
		{"iasa past end", "entities:\n  a:\n    actions:\n      Jab: {length: 2, iasa: 3}\n" + stage},
		{"span past end", "entities:\n  a:\n    actions:\n      Jab: {length: 2, frames: [{from: 1, to: 4}]}\n" + stage},
		{"bad role", "entities:\n  a:\n    actions:\n      Jab: {length: 2, frames: [{from: 0, boxes: [{role: poke}]}]}\n" + stage},
		{"throw on jab", "entities:\n  a:\n    fighter:\n      throws:\n        Jab: {frame: 1}\n" + stage},
		{"unknown special", "entities:\n  a:\n    fighter:\n      specials:\n        diagonal: {frame: 1}\n" + stage},
		{"missing spawn", "entities:\n  a:\n    fighter:\n      specials:\n        up: {frame: 1, spawn: ghost}\n" + stage},
		{"no stages", "entities:\n  a:\n    kind: fighter\n"},
		{"bad goal", "rules:\n  goal: coins\nentities:\n  a:\n    kind: fighter\n" + stage},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Parse([]byte(tc.src)); err == nil {
				t.Error("Parse() expected an error")
			}
		})
	}
}

func TestLoadCustomPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "package.yaml")
	if err := os.WriteFile(path, DefaultYAML(), 0o644); err != nil {
		t.Fatal(err)
	}
	pkg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	def, _ := Default()
	if pkg.Hash() != def.Hash() {
		t.Error("package loaded from disk should hash like the embedded one")
	}

	if _, err := Load(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("Load() of a missing file should fail")
	}
}

func TestLookupErrors(t *testing.T) {
	pkg, err := Default()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := pkg.Entity("ghost"); !errors.Is(err, ErrUnknownEntity) {
		t.Errorf("Entity() error = %v, expected ErrUnknownEntity", err)
	}
	if _, err := pkg.Stage("moon"); !errors.Is(err, ErrUnknownStage) {
		t.Errorf("Stage() error = %v, expected ErrUnknownStage", err)
	}
}

func TestHashChangesWithContent(t *testing.T) {
	a, _ := Default()
	b, _ := Default()
	if a.Hash() != b.Hash() {
		t.Fatal("Hash() should be stable")
	}
	b.Entities["brawler"].Weight = 2
	if a.Hash() == b.Hash() {
		t.Error("Hash() should change when content changes")
	}
}
