package engine

import (
	"github.com/jwebster45206/cell-commander/pkg/state"
	"github.com/jwebster45206/cell-commander/pkg/story"
)

const victoryPoints = 500

// changeScene moves to the first line of another scene.
func (e *Engine) changeScene(to story.Scene) {
	from := e.gs.CurrentScene
	e.gs.CurrentScene = to
	e.gs.DialogueIndex = 0
	e.logger.Info("scene changed", "from", from, "to", to)
	e.emit(SignalSceneChanged, map[string]any{"from": from, "to": to})
}

// lineIndex resolves a line id in a scene's script. A miss is recoverable:
// it is logged, signalled, and resolves to the first line.
func (e *Engine) lineIndex(scene story.Scene, id string) int {
	i, ok := e.catalog.Script(scene).IndexOf(id)
	if !ok {
		e.logger.Warn("jump target not found, using first line", "scene", scene, "line_id", id)
		e.emit(SignalLookupMiss, map[string]any{"line_id": id})
		return 0
	}
	return i
}

// jumpTo moves the cursor to a named line of the current scene.
func (e *Engine) jumpTo(id string) {
	e.gs.DialogueIndex = e.lineIndex(e.gs.CurrentScene, id)
}

// resurrect returns the player to the lung battle at the resurrection lines
// with full hp, skipping the ally call.
func (e *Engine) resurrect() {
	e.changeScene(story.SceneLungBattle)
	e.gs.DialogueIndex = e.lineIndex(story.SceneLungBattle, story.LineResurrect)
	e.gs.HP = e.gs.MaxHP
	e.gs.Flags.BattlePhase = state.BattleEquipWeapon
	e.ui.IsMacrophageAttacking = false
}

// damage lowers hp, possibly below zero, and shakes the screen.
func (e *Engine) damage(amount int) {
	e.gs.HP -= amount
	e.shake()
}

func (e *Engine) shake() {
	e.ui.Shake = true
	e.emit(SignalShake, nil)
	e.schedule(timerShake, e.timings.Shake, func() {
		e.ui.Shake = false
	})
}

func (e *Engine) modalShake() {
	e.ui.ModalShake = true
	e.emit(SignalModalShake, nil)
	e.schedule(timerModalShake, e.timings.ModalShake, func() {
		e.ui.ModalShake = false
	})
}

func (e *Engine) setModal(m state.Modal, open bool) {
	if !e.ui.SetModal(m, open) {
		return
	}
	if open {
		e.emit(SignalModalOpened, map[string]any{"modal": m})
	} else {
		e.emit(SignalModalClosed, map[string]any{"modal": m})
	}
}
