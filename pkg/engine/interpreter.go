package engine

import (
	"fmt"

	"github.com/jwebster45206/cell-commander/pkg/state"
	"github.com/jwebster45206/cell-commander/pkg/story"
)

// Advance moves the dialogue forward from the current line. Gated lines
// return ErrGated and change nothing; modal lines open their modal and keep
// the cursor in place.
func (e *Engine) Advance() error {
	return e.do(e.advance)
}

func (e *Engine) advance() error {
	scene := e.gs.CurrentScene
	script := e.catalog.Script(scene)
	line, ok := script.Line(e.gs.DialogueIndex)
	if !ok {
		return e.endOfScript()
	}

	switch line.Trigger {
	case story.TriggerMapOpen, story.TriggerPhoneCall:
		return fmt.Errorf("line %s waits for %s: %w", line.ID, line.Trigger, ErrGated)
	case story.TriggerWeaponSelect:
		e.setModal(state.ModalWeapon, true)
		return nil
	case story.TriggerShopOpen:
		e.setModal(state.ModalShop, true)
		return nil
	case story.TriggerThymusGame:
		e.ui.ThymusInput = ""
		e.setModal(state.ModalThymus, true)
		return nil
	case story.TriggerChoice:
		if scene == story.SceneLungBattle && e.gs.Flags.BattlePhase == state.BattleNone {
			e.gs.Flags.BattlePhase = state.BattleCallAlly
		}
		return nil
	case story.TriggerQuizStart:
		e.setModal(state.ModalQuiz, true)
		return nil
	case story.TriggerClick, story.TriggerAuto:
	default:
		return fmt.Errorf("line %s has unhandled trigger %s", line.ID, line.Trigger)
	}

	if line.NextIndex != nil {
		e.gs.DialogueIndex = *line.NextIndex
		return nil
	}
	if e.gs.DialogueIndex < script.Len()-1 {
		e.gs.DialogueIndex++
		return nil
	}
	return e.endOfScript()
}

// endOfScript applies the scene-end policy once the last line is passed.
func (e *Engine) endOfScript() error {
	switch e.gs.CurrentScene {
	case story.SceneBedroom:
		e.changeScene(story.SceneArtery)
	case story.SceneLungBattle:
		e.gs.Points += victoryPoints
		e.ui.IsMacrophageAttacking = false
		e.changeScene(story.SceneVictory)
	case story.SceneAntigenPresentation:
		e.changeScene(story.SceneShop)
	default:
		return fmt.Errorf("end of %s: %w", e.gs.CurrentScene, ErrEndOfScript)
	}
	return nil
}

// ShouldShowArrow reports whether the continue prompt shows for the line.
func ShouldShowArrow(line story.Line) bool {
	return line.Trigger.ShowsArrow()
}
