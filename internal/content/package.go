// Package content holds the read-only data a match is simulated against:
// entity definitions with their per-frame action data, stages and rules.
// A Package is loaded from YAML once and never mutated during simulation.
package content

import (
	"crypto/sha256"
	_ "embed"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/vovakirdan/brawl-core/internal/action"
)

//go:embed defaults/package.yaml
var defaultPackageYAML []byte

// ErrUnknownEntity is returned when a lookup names an entity the package does not define.
var ErrUnknownEntity = errors.New("content: unknown entity")

// ErrUnknownStage is returned when a lookup names a stage the package does not define.
var ErrUnknownStage = errors.New("content: unknown stage")

// Package is a complete set of content for a match.
type Package struct {
	Name     string                `yaml:"name"`
	Entities map[string]*EntityDef `yaml:"entities"`
	Stages   map[string]*Stage     `yaml:"stages"`
	Rules    Rules                 `yaml:"rules"`
}

// Load loads a content package.
// Search order: customPath -> ~/.brawl/configs/package.yaml -> ./configs/package.yaml -> embedded default
func Load(customPath string) (*Package, error) {
	// Try custom path first
	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read package %s: %w", customPath, err)
		}
		pkg, err := Parse(data)
		if err != nil {
			return nil, fmt.Errorf("failed to parse package %s: %w", customPath, err)
		}
		return pkg, nil
	}

	// Try user config directory
	if userPath := userConfigPath("package.yaml"); userPath != "" {
		if data, err := os.ReadFile(userPath); err == nil {
			if pkg, err := Parse(data); err == nil {
				return pkg, nil
			}
		}
	}

	// Try local configs directory
	if data, err := os.ReadFile("configs/package.yaml"); err == nil {
		if pkg, err := Parse(data); err == nil {
			return pkg, nil
		}
	}

	return Default()
}

// Default returns the embedded default package.
func Default() (*Package, error) {
	pkg, err := Parse(defaultPackageYAML)
	if err != nil {
		return nil, fmt.Errorf("embedded package: %w", err)
	}
	return pkg, nil
}

// DefaultYAML returns the embedded default package source.
func DefaultYAML() []byte {
	return defaultPackageYAML
}

// Parse decodes, expands and validates a package.
func Parse(data []byte) (*Package, error) {
	pkg := &Package{Rules: DefaultRules()}
	if err := yaml.Unmarshal(data, pkg); err != nil {
		return nil, err
	}
	if err := pkg.Validate(); err != nil {
		return nil, err
	}
	return pkg, nil
}

// Validate expands every entity's actions and checks the package for authoring errors.
func (p *Package) Validate() error {
	if len(p.Entities) == 0 {
		return errors.New("package defines no entities")
	}
	if len(p.Stages) == 0 {
		return errors.New("package defines no stages")
	}
	for _, key := range p.EntityKeys("") {
		def := p.Entities[key]
		if def == nil {
			return fmt.Errorf("entity %s: empty definition", key)
		}
		if def.Name == "" {
			def.Name = key
		}
		if err := def.Build(); err != nil {
			return fmt.Errorf("entity %s: %w", key, err)
		}
		if def.Fighter != nil {
			if err := p.validateFighter(key, def.Fighter); err != nil {
				return err
			}
		}
	}
	for _, key := range p.StageKeys() {
		stage := p.Stages[key]
		if stage == nil {
			return fmt.Errorf("stage %s: empty definition", key)
		}
		if stage.Name == "" {
			stage.Name = key
		}
		if err := stage.Validate(); err != nil {
			return err
		}
	}
	return p.Rules.Validate()
}

func (p *Package) validateFighter(key string, f *Fighter) error {
	if f.TauntItem != "" {
		if _, err := p.Entity(f.TauntItem); err != nil {
			return fmt.Errorf("entity %s: taunt item: %w", key, err)
		}
	}
	for name := range f.Throws {
		id, ok := action.Parse(action.KindFighter, name)
		switch action.Player(id) {
		case action.Uthrow, action.Dthrow, action.Fthrow, action.Bthrow:
		default:
			ok = false
		}
		if !ok {
			return fmt.Errorf("entity %s: %q is not a throw", key, name)
		}
	}
	for dir, special := range f.Specials {
		switch dir {
		case "neutral", "side", "up", "down":
		default:
			return fmt.Errorf("entity %s: unknown special direction %q", key, dir)
		}
		if special.Spawn == "" {
			continue
		}
		def, err := p.Entity(special.Spawn)
		if err != nil {
			return fmt.Errorf("entity %s: special %s: %w", key, dir, err)
		}
		if def.Kind == action.KindFighter {
			return fmt.Errorf("entity %s: special %s spawns a fighter", key, dir)
		}
	}
	return nil
}

// Entity returns the definition with the given key.
func (p *Package) Entity(key string) (*EntityDef, error) {
	def, ok := p.Entities[key]
	if !ok || def == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEntity, key)
	}
	return def, nil
}

// Stage returns the stage with the given key.
func (p *Package) Stage(key string) (*Stage, error) {
	stage, ok := p.Stages[key]
	if !ok || stage == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStage, key)
	}
	return stage, nil
}

// EntityKeys returns the sorted keys of entities of the given kind.
// An empty kind returns every key.
func (p *Package) EntityKeys(kind action.Kind) []string {
	keys := make([]string, 0, len(p.Entities))
	for key, def := range p.Entities {
		if kind != "" && (def == nil || def.Kind != kind) {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// StageKeys returns the sorted stage keys.
func (p *Package) StageKeys() []string {
	keys := make([]string, 0, len(p.Stages))
	for key := range p.Stages {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Hash returns a hex digest of the package. Netplay peers compare hashes
// before a match so both sides simulate against identical content.
func (p *Package) Hash() string {
	data, err := json.Marshal(p)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// userConfigPath returns the path to a user config file, or empty if home is unavailable.
func userConfigPath(filename string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".brawl", "configs", filename)
}
