package state

import (
	"slices"

	"github.com/jwebster45206/cell-commander/pkg/story"
)

// BattlePhase is the sub-state of the lung battle.
type BattlePhase string

const (
	BattleNone        BattlePhase = "NONE"
	BattleCallAlly    BattlePhase = "CALL_ALLY"
	BattleEquipWeapon BattlePhase = "EQUIP_WEAPON"
)

// Flags track narrative progress that is not tied to a single scene.
type Flags struct {
	BattlePhase      BattlePhase `json:"battle_phase"`
	DeathCount       int         `json:"death_count"`        // failed quiz answers, never reset
	QuizCorrectCount int         `json:"quiz_correct_count"` // correct quiz answers
	HasNewContact    bool        `json:"has_new_contact"`    // phone badge
	MetMacrophage    bool        `json:"met_macrophage"`
	MetBCell         bool        `json:"met_b_cell"`
}

// GameState is the narrative record of one play session.
type GameState struct {
	CurrentScene     story.Scene         `json:"current_scene"`
	DialogueIndex    int                 `json:"dialogue_index"` // cursor into the current scene's script
	HP               int                 `json:"hp"`             // may go below zero before the death check fires
	MaxHP            int                 `json:"max_hp"`
	Points           int                 `json:"points"`
	UnlockedMapNodes []story.Scene       `json:"unlocked_map_nodes"`
	Contacts         []story.CharacterID `json:"contacts"` // insertion order kept for display
	Inventory        []story.Item        `json:"inventory"`
	Flags            Flags               `json:"flags"`
}

// New returns the state a session starts in.
func New(cat *story.Catalog) *GameState {
	gs := &GameState{
		CurrentScene:     story.SceneBedroom,
		HP:               cat.InitialHP,
		MaxHP:            cat.MaxHP,
		UnlockedMapNodes: []story.Scene{story.SceneArtery},
		Contacts:         slices.Clone(cat.StartContacts),
		Inventory:        make([]story.Item, 0, len(cat.StartInventory)),
		Flags:            Flags{BattlePhase: BattleNone},
	}
	for _, id := range cat.StartInventory {
		if it, ok := cat.Item(id); ok {
			gs.Inventory = append(gs.Inventory, it)
		}
	}
	return gs
}

// IsUnlocked reports whether a map node has been unlocked.
func (gs GameState) IsUnlocked(s story.Scene) bool {
	return slices.Contains(gs.UnlockedMapNodes, s)
}

// Unlock adds a map node. The set only grows.
func (gs *GameState) Unlock(s story.Scene) {
	if !gs.IsUnlocked(s) {
		gs.UnlockedMapNodes = append(gs.UnlockedMapNodes, s)
	}
}

func (gs GameState) HasContact(id story.CharacterID) bool {
	return slices.Contains(gs.Contacts, id)
}

// AddContact adds a contact and reports whether it was new.
func (gs *GameState) AddContact(id story.CharacterID) bool {
	if gs.HasContact(id) {
		return false
	}
	gs.Contacts = append(gs.Contacts, id)
	return true
}

// Owns reports whether an item with the catalog id is in the inventory.
func (gs GameState) Owns(itemID string) bool {
	return slices.ContainsFunc(gs.Inventory, func(it story.Item) bool {
		return it.ID == itemID
	})
}

// AddItem appends an item. Duplicates are prevented by the purchase path.
func (gs *GameState) AddItem(it story.Item) {
	gs.Inventory = append(gs.Inventory, it)
}

// Clone returns a deep copy safe to hand to readers.
func (gs *GameState) Clone() GameState {
	out := *gs
	out.UnlockedMapNodes = slices.Clone(gs.UnlockedMapNodes)
	out.Contacts = slices.Clone(gs.Contacts)
	out.Inventory = slices.Clone(gs.Inventory)
	return out
}
