package engine

import (
	"fmt"

	"github.com/jwebster45206/cell-commander/pkg/state"
	"github.com/jwebster45206/cell-commander/pkg/story"
)

// Weapon is a choice in the weapon-select modal.
type Weapon string

const (
	WeaponAntibody Weapon = "ANTIBODY"
	WeaponNet      Weapon = "NET"
	WeaponDrill    Weapon = "DRILL"
)

// ParseWeapon converts a weapon name.
func ParseWeapon(v string) (Weapon, error) {
	switch w := Weapon(v); w {
	case WeaponAntibody, WeaponNet, WeaponDrill:
		return w, nil
	}
	return "", fmt.Errorf("weapon %q: %w", v, ErrInvalidOption)
}

// TravelTo moves to a map node. Locked nodes are refused unless they are
// always reachable.
func (e *Engine) TravelTo(dest story.Scene) error {
	return e.do(func() error {
		if !dest.Valid() {
			return fmt.Errorf("travel to %q: %w", dest, ErrUnknownScene)
		}
		if !dest.IsMapNode() {
			return fmt.Errorf("travel to %s: %w", dest, ErrNotMapNode)
		}
		if !dest.AlwaysReachable() && !e.gs.IsUnlocked(dest) {
			return fmt.Errorf("travel to %s: %w", dest, ErrNodeLocked)
		}
		e.setModal(state.ModalMap, false)
		e.changeScene(dest)
		e.gs.Unlock(dest)
		return nil
	})
}

// OpenMap shows the travel map.
func (e *Engine) OpenMap() error {
	return e.OpenModal(state.ModalMap)
}

// CallContact phones an ally during the lung battle. Only the macrophage is
// the right call; anyone else costs 1 hp.
func (e *Engine) CallContact(id story.CharacterID) error {
	return e.do(func() error {
		if e.gs.CurrentScene != story.SceneLungBattle {
			return fmt.Errorf("call %s in %s: %w", id, e.gs.CurrentScene, ErrWrongScene)
		}
		if !id.IsCast() {
			return fmt.Errorf("call %q: %w", id, ErrUnknownCharacter)
		}
		e.setModal(state.ModalPhone, false)
		switch id {
		case story.CharacterMacrophage:
			e.jumpTo(story.LineCallSuccess)
			e.gs.Flags.BattlePhase = state.BattleEquipWeapon
		case story.CharacterPlatelet:
			e.damage(1)
			e.jumpTo(story.LineCallFailPlatelet)
		case story.CharacterBCell:
			e.damage(1)
			e.jumpTo(story.LineCallFailBCell)
		default:
			e.damage(1)
		}
		return nil
	})
}

// SelectWeapon arms the macrophage. NET is correct; the others cost 1 hp
// and loop back to the prompt.
func (e *Engine) SelectWeapon(w Weapon) error {
	return e.do(func() error {
		if e.gs.CurrentScene != story.SceneLungBattle {
			return fmt.Errorf("select weapon in %s: %w", e.gs.CurrentScene, ErrWrongScene)
		}
		switch w {
		case WeaponNet, WeaponAntibody, WeaponDrill:
		default:
			return fmt.Errorf("weapon %q: %w", w, ErrInvalidOption)
		}
		e.setModal(state.ModalWeapon, false)
		switch w {
		case WeaponNet:
			e.jumpTo(story.LineWeaponSuccess)
			e.ui.IsMacrophageAttacking = true
		case WeaponAntibody:
			e.damage(1)
			e.jumpTo(story.LineWeaponFailAntibody)
		case WeaponDrill:
			e.damage(1)
			e.jumpTo(story.LineWeaponFailDrill)
		}
		return nil
	})
}

// BuyItem spends points on a catalog item. Owned items cannot be bought
// again. Buying the video starts the antigen presentation; buying the key
// unlocks the thymus.
func (e *Engine) BuyItem(itemID string, cost int) error {
	return e.do(func() error {
		item, ok := e.catalog.Item(itemID)
		if !ok {
			return fmt.Errorf("buy %q: %w", itemID, ErrUnknownItem)
		}
		if cost < 0 {
			return fmt.Errorf("buy %s for %d: %w", itemID, cost, ErrInvalidAmount)
		}
		if e.gs.Owns(itemID) {
			return fmt.Errorf("buy %s: %w", itemID, ErrAlreadyOwned)
		}
		if e.gs.Points < cost {
			e.shake()
			return fmt.Errorf("buy %s for %d with %d points: %w", itemID, cost, e.gs.Points, ErrInsufficientPoints)
		}

		e.gs.Points -= cost
		e.gs.AddItem(item)
		e.logger.Info("item purchased", "item_id", itemID, "cost", cost, "points", e.gs.Points)

		switch itemID {
		case story.ItemVideo:
			e.setModal(state.ModalShop, false)
			e.changeScene(story.SceneAntigenPresentation)
		case story.ItemKey:
			e.gs.Unlock(story.SceneThymusPrison)
		}
		return nil
	})
}

// AnswerQuiz grades a death-quiz answer. A correct answer heals by reward
// and, if that brings hp above zero, returns to the battle after a delay.
// A wrong answer counts a death; the second one sends the player to the
// thymus with half their points.
func (e *Engine) AnswerQuiz(correct bool, reward int) error {
	return e.do(func() error {
		return e.answerQuiz(correct, reward)
	})
}

// AnswerQuizOption grades option i of the current question.
func (e *Engine) AnswerQuizOption(i int) error {
	return e.do(func() error {
		q, ok := e.catalog.Quiz(e.quizIndex())
		if !ok {
			return fmt.Errorf("quiz question %d: %w", e.quizIndex(), ErrInvalidOption)
		}
		if i < 0 || i >= len(q.Options) {
			return fmt.Errorf("quiz option %d of %d: %w", i, len(q.Options), ErrInvalidOption)
		}
		return e.answerQuiz(i == q.CorrectIndex, q.RewardHP)
	})
}

func (e *Engine) answerQuiz(correct bool, reward int) error {
	if e.gs.CurrentScene != story.SceneDeathQuiz {
		return fmt.Errorf("answer quiz in %s: %w", e.gs.CurrentScene, ErrWrongScene)
	}
	if correct {
		e.gs.HP = min(e.gs.MaxHP, e.gs.HP+reward)
		e.gs.Flags.QuizCorrectCount++
		e.setModal(state.ModalQuiz, false)
		if e.gs.HP > 0 && !e.pending(timerResurrect) {
			e.schedule(timerResurrect, e.timings.Resurrect, func() {
				if e.gs.CurrentScene == story.SceneDeathQuiz {
					e.resurrect()
				}
			})
		}
		return nil
	}

	e.modalShake()
	e.gs.Flags.DeathCount++
	if e.gs.Flags.DeathCount >= 2 && !e.pending(timerPenalty) {
		e.schedule(timerPenalty, e.timings.Penalty, func() {
			if e.gs.CurrentScene != story.SceneDeathQuiz {
				return
			}
			e.setModal(state.ModalQuiz, false)
			e.gs.Points /= 2
			e.changeScene(story.SceneThymusPrison)
		})
	}
	return nil
}

// SubmitBlank grades the thymus fill-in-the-blank. A wrong answer shakes the
// screen and changes nothing else.
func (e *Engine) SubmitBlank(text string) error {
	return e.do(func() error {
		if e.gs.CurrentScene != story.SceneThymusPrison {
			return fmt.Errorf("submit blank in %s: %w", e.gs.CurrentScene, ErrWrongScene)
		}
		e.ui.ThymusInput = text
		if !e.matcher.Matches(text) {
			e.shake()
			return nil
		}
		e.setModal(state.ModalThymus, false)
		if e.gs.HP <= 0 {
			e.resurrect()
		} else {
			e.changeScene(story.SceneArtery)
		}
		return nil
	})
}

// MeetCharacter adds a contact if new and jumps to jumpIndex either way.
func (e *Engine) MeetCharacter(id story.CharacterID, jumpIndex int) error {
	return e.do(func() error {
		if !id.IsCast() {
			return fmt.Errorf("meet %q: %w", id, ErrUnknownCharacter)
		}
		if jumpIndex < 0 {
			return fmt.Errorf("meet %s at line %d: %w", id, jumpIndex, ErrInvalidOption)
		}
		if e.gs.AddContact(id) {
			e.gs.Flags.HasNewContact = true
			switch id {
			case story.CharacterMacrophage:
				e.gs.Flags.MetMacrophage = true
			case story.CharacterBCell:
				e.gs.Flags.MetBCell = true
			}
		}
		e.gs.DialogueIndex = jumpIndex
		return nil
	})
}

// Damage lowers hp by amount and shakes the screen.
func (e *Engine) Damage(amount int) error {
	return e.do(func() error {
		if amount < 0 {
			return fmt.Errorf("damage %d: %w", amount, ErrInvalidAmount)
		}
		e.damage(amount)
		return nil
	})
}

// ViewBio selects a character whose bio card is shown. Not available during
// the battle.
func (e *Engine) ViewBio(id story.CharacterID) error {
	return e.do(func() error {
		if e.gs.CurrentScene == story.SceneLungBattle {
			return fmt.Errorf("view bio in %s: %w", e.gs.CurrentScene, ErrWrongScene)
		}
		if !id.IsCast() {
			return fmt.Errorf("view bio %q: %w", id, ErrUnknownCharacter)
		}
		e.ui.SelectedBioID = id
		return nil
	})
}

func (e *Engine) CloseBio() error {
	return e.do(func() error {
		e.ui.SelectedBioID = ""
		return nil
	})
}

// OpenModal opens a player-openable modal. Modals owned by script lines
// return ErrModalLocked.
func (e *Engine) OpenModal(m state.Modal) error {
	return e.do(func() error {
		if _, err := state.ParseModal(string(m)); err != nil {
			return fmt.Errorf("open %q: %w", m, ErrUnknownModal)
		}
		if !m.PlayerOpenable() {
			return fmt.Errorf("open %s: %w", m, ErrModalLocked)
		}

		switch m {
		case state.ModalMap:
			e.setModal(m, true)
			if e.gs.CurrentScene == story.SceneArtery {
				e.gs.Unlock(story.SceneBoneMarrow)
			}
		case state.ModalPhone:
			e.setModal(m, true)
			// The ringing phone answers the alarm call.
			if e.gs.CurrentScene == story.SceneAlarm && e.gs.DialogueIndex == 0 {
				return e.advance()
			}
		case state.ModalInventory:
			e.setModal(m, true)
			e.ui.InventoryTab = state.TabItems
			e.ui.SelectedItemID = ""
		case state.ModalDiary:
			if !e.gs.Owns(story.ItemDiary) {
				return fmt.Errorf("open diary: %w", ErrNotOwned)
			}
			e.setModal(state.ModalInventory, false)
			e.setModal(m, true)
			e.ui.DiaryPage = 0
		default:
			e.setModal(m, true)
		}
		return nil
	})
}

// CloseModal closes a modal. Closing the diary goes back to the inventory.
func (e *Engine) CloseModal(m state.Modal) error {
	return e.do(func() error {
		if _, err := state.ParseModal(string(m)); err != nil {
			return fmt.Errorf("close %q: %w", m, ErrUnknownModal)
		}
		if !e.ui.IsOpen(m) {
			return nil
		}
		e.setModal(m, false)
		if m == state.ModalDiary {
			e.setModal(state.ModalInventory, true)
		}
		return nil
	})
}

// TurnDiaryPage moves through the diary by delta pages, stopping at the
// first and last page.
func (e *Engine) TurnDiaryPage(delta int) error {
	return e.do(func() error {
		if !e.ui.ShowDiary {
			return fmt.Errorf("turn diary page: %w", ErrModalClosed)
		}
		last := len(e.catalog.Diary()) - 1
		e.ui.DiaryPage = max(0, min(last, e.ui.DiaryPage+delta))
		return nil
	})
}

// SelectInventoryTab switches the inventory page. The dex needs the
// encyclopedia.
func (e *Engine) SelectInventoryTab(tab state.InventoryTab) error {
	return e.do(func() error {
		switch tab {
		case state.TabItems:
		case state.TabDex:
			if !e.encyclopediaUnlocked() {
				return fmt.Errorf("select tab %s: %w", tab, ErrDexLocked)
			}
		default:
			return fmt.Errorf("select tab %q: %w", tab, ErrInvalidOption)
		}
		e.ui.InventoryTab = tab
		return nil
	})
}

// SelectItem shows an owned item's details. An empty id clears the selection.
func (e *Engine) SelectItem(itemID string) error {
	return e.do(func() error {
		if itemID != "" && !e.gs.Owns(itemID) {
			return fmt.Errorf("select item %q: %w", itemID, ErrNotOwned)
		}
		e.ui.SelectedItemID = itemID
		return nil
	})
}

// CloseVideo leaves the antigen presentation for the shop.
func (e *Engine) CloseVideo() error {
	return e.do(func() error {
		if e.gs.CurrentScene != story.SceneAntigenPresentation {
			return fmt.Errorf("close video in %s: %w", e.gs.CurrentScene, ErrWrongScene)
		}
		e.changeScene(story.SceneShop)
		return nil
	})
}
