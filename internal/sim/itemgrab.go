package sim

// itemGrabRounds bounds the claim resolution when distances tie.
const itemGrabRounds = 10

type grabClaim struct {
	item     EntityKey
	distance float64
}

// itemGrabCheck pairs players with the items they pick up this frame.
// A player without an item claims the closest free item whose grab box
// overlaps its own; a closer player takes the claim away. The result maps
// both the player to the item and the item to the player.
func itemGrabCheck(env Env) map[EntityKey]EntityKey {
	keys := env.Entities.Keys()
	claims := make(map[EntityKey]grabClaim)

	for round := 0; round < itemGrabRounds; round++ {
		changed := false
		for _, playerKey := range keys {
			player := env.Entities.Get(playerKey)
			if player.Player == nil || player.IsEliminated() {
				continue
			}
			if _, ok := heldItem(env.Entities, playerKey); ok {
				continue
			}
			playerBox, ok := player.itemGrabBox(env)
			if !ok {
				continue
			}
			playerPos := player.BPS(env)

			for _, itemKey := range keys {
				item := env.Entities.Get(itemKey)
				if item.Item == nil || item.Item.Body.IsItemHeld() {
					continue
				}
				itemBox, ok := item.itemGrabBox(env)
				if !ok || !playerBox.Collides(itemBox) {
					continue
				}
				distance := playerPos.Dist(item.BPS(env))

				if current, ok := claims[playerKey]; ok && current.distance <= distance {
					continue
				}
				if owner, ok := claimOwner(claims, itemKey); ok && owner != playerKey {
					if claims[owner].distance <= distance {
						continue
					}
					delete(claims, owner)
				}
				claims[playerKey] = grabClaim{item: itemKey, distance: distance}
				changed = true
			}
		}
		if !changed {
			break
		}
	}

	result := make(map[EntityKey]EntityKey, len(claims)*2)
	for playerKey, claim := range claims {
		result[playerKey] = claim.item
		result[claim.item] = playerKey
	}
	return result
}

func claimOwner(claims map[EntityKey]grabClaim, item EntityKey) (EntityKey, bool) {
	for player, claim := range claims {
		if claim.item == item {
			return player, true
		}
	}
	return NoKey, false
}
