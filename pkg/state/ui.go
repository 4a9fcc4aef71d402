package state

import (
	"fmt"

	"github.com/jwebster45206/cell-commander/pkg/story"
)

// Modal names an overlay the presentation layer can show.
type Modal string

const (
	ModalMap       Modal = "map"
	ModalPhone     Modal = "phone"
	ModalInventory Modal = "inventory"
	ModalTasks     Modal = "tasks"
	ModalDiary     Modal = "diary"
	ModalWeapon    Modal = "weapon"
	ModalShop      Modal = "shop"
	ModalThymus    Modal = "thymus"
	ModalQuiz      Modal = "quiz"
)

// AllModals lists every modal kind.
var AllModals = []Modal{
	ModalMap, ModalPhone, ModalInventory, ModalTasks, ModalDiary,
	ModalWeapon, ModalShop, ModalThymus, ModalQuiz,
}

// ParseModal converts a modal name.
func ParseModal(v string) (Modal, error) {
	for _, m := range AllModals {
		if string(m) == v {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown modal %q", v)
}

// PlayerOpenable reports whether the player may open the modal directly.
// The rest only open when a script line asks for them.
func (m Modal) PlayerOpenable() bool {
	switch m {
	case ModalMap, ModalPhone, ModalInventory, ModalTasks, ModalDiary:
		return true
	}
	return false
}

// InventoryTab selects the page of the inventory overlay.
type InventoryTab string

const (
	TabItems InventoryTab = "items"
	TabDex   InventoryTab = "dex"
)

// UIState is the presentation-facing record: which overlays are open and
// which transient effects are running.
type UIState struct {
	ShowMap          bool `json:"show_map"`
	ShowPhone        bool `json:"show_phone"`
	ShowInventory    bool `json:"show_inventory"`
	ShowWeaponSelect bool `json:"show_weapon_select"`
	ShowShop         bool `json:"show_shop"`
	ShowThymusGame   bool `json:"show_thymus_game"`
	ShowTasks        bool `json:"show_tasks"`
	ShowQuizModal    bool `json:"show_quiz_modal"`
	ShowDiary        bool `json:"show_diary"`
	DiaryPage        int  `json:"diary_page"`

	Shake                 bool `json:"shake"`
	ModalShake            bool `json:"modal_shake"`
	IsDying               bool `json:"is_dying"`
	IsMacrophageAttacking bool `json:"is_macrophage_attacking"`

	SelectedBioID  story.CharacterID `json:"selected_bio_id,omitempty"`
	ThymusInput    string            `json:"thymus_input"`
	InventoryTab   InventoryTab      `json:"inventory_tab"`
	SelectedItemID string            `json:"selected_item_id,omitempty"`
	VideoPhase     int               `json:"video_phase"` // 0 idle, 1-4 playing, 5 finished
}

// NewUI returns the UI record with every overlay closed.
func NewUI() *UIState {
	return &UIState{InventoryTab: TabItems}
}

func (ui *UIState) field(m Modal) *bool {
	switch m {
	case ModalMap:
		return &ui.ShowMap
	case ModalPhone:
		return &ui.ShowPhone
	case ModalInventory:
		return &ui.ShowInventory
	case ModalTasks:
		return &ui.ShowTasks
	case ModalDiary:
		return &ui.ShowDiary
	case ModalWeapon:
		return &ui.ShowWeaponSelect
	case ModalShop:
		return &ui.ShowShop
	case ModalThymus:
		return &ui.ShowThymusGame
	case ModalQuiz:
		return &ui.ShowQuizModal
	}
	return nil
}

// IsOpen reports whether the modal is showing.
func (ui UIState) IsOpen(m Modal) bool {
	f := ui.field(m)
	return f != nil && *f
}

// SetModal opens or closes a modal and reports whether anything changed.
func (ui *UIState) SetModal(m Modal, open bool) bool {
	f := ui.field(m)
	if f == nil || *f == open {
		return false
	}
	*f = open
	return true
}

// AnyOpen reports whether any modal is showing.
func (ui UIState) AnyOpen() bool {
	for _, m := range AllModals {
		if ui.IsOpen(m) {
			return true
		}
	}
	return false
}
