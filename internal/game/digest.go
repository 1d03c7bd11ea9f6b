package game

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/vovakirdan/brawl-core/internal/sim"
)

// Digest returns a hex sha256 of the JSON encoding of es. Two runs of the
// same match produce the same digest at every frame.
func Digest(es *sim.Entities) string {
	data, err := json.Marshal(es)
	if err != nil {
		// Entities hold only plain data.
		panic("game: digest: " + err.Error())
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Digest returns the digest of the current frame.
func (g *Game) Digest() string {
	return Digest(g.entities)
}
