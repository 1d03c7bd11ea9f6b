package sim

import (
	"testing"

	"github.com/vovakirdan/brawl-core/internal/action"
	"github.com/vovakirdan/brawl-core/internal/core"
)

func crateAt(x float64) *Entity {
	return NewItem("crate", nil, NewBody(OnSurface(0, x), true), action.ItemIdle)
}

func TestItemGrabClosestPlayerWins(t *testing.T) {
	s := testSimulation(t, "final")
	es := &Entities{}
	far := es.Insert(standingPlayer(0, -6, true, int(action.Jab), 0))
	near := es.Insert(standingPlayer(1, 10, false, int(action.Jab), 0))
	item := es.Insert(crateAt(4))

	grabs := itemGrabCheck(Env{Entities: es, Package: s.Package, Stage: s.Stage})
	if got, ok := grabs[near]; !ok || got != item {
		t.Errorf("grabs[near] = %v, %v, expected the item", got, ok)
	}
	if got := grabs[item]; got != near {
		t.Errorf("grabs[item] = %v, expected %v", got, near)
	}
	if _, ok := grabs[far]; ok {
		t.Error("farther player should not get the item")
	}
}

func TestItemGrabEachPlayerGetsOne(t *testing.T) {
	s := testSimulation(t, "final")
	es := &Entities{}
	a := es.Insert(standingPlayer(0, -6, true, int(action.Jab), 0))
	b := es.Insert(standingPlayer(1, 10, false, int(action.Jab), 0))
	first := es.Insert(crateAt(4))
	second := es.Insert(crateAt(-1))

	grabs := itemGrabCheck(Env{Entities: es, Package: s.Package, Stage: s.Stage})
	if grabs[a] != second || grabs[b] != first {
		t.Errorf("grabs = %v, expected each player to take the closer crate", grabs)
	}
}

func TestItemGrabSkipsHoldingPlayer(t *testing.T) {
	s := testSimulation(t, "final")
	es := &Entities{}
	holder := es.Insert(standingPlayer(0, 0, true, int(action.Jab), 0))
	held := crateAt(0)
	held.Item.Body.Location = HeldBy(holder)
	held.State.Action = int(action.ItemHeld)
	es.Insert(held)
	es.Insert(crateAt(4))

	grabs := itemGrabCheck(Env{Entities: es, Package: s.Package, Stage: s.Stage})
	if len(grabs) != 0 {
		t.Errorf("grabs = %v, expected none for a player already holding an item", grabs)
	}
}

func TestJabPicksUpItem(t *testing.T) {
	s := testSimulation(t, "final")
	es := &Entities{}
	player := es.Insert(standingPlayer(0, 0, true, int(action.Idle), 0))
	item := es.Insert(crateAt(6))

	history := core.InputHistory{{plugged(core.ControllerInput{A: true})}}
	es = s.Step(es, 0, inputsAt(history, 1, 0))

	if a := action.Player(es.Get(player).State.Action); a != action.ItemGrab {
		t.Errorf("player action = %s, expected ItemGrab", a)
	}
	it := es.Get(item).Item
	if !it.Body.IsItemHeld() || it.Body.Location.Holder != player {
		t.Fatalf("item location = %+v, expected held by %v", it.Body.Location, player)
	}
	if it.OwnerID == nil || *it.OwnerID != 0 {
		t.Errorf("OwnerID = %v, expected 0", it.OwnerID)
	}
}
