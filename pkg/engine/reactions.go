package engine

import (
	"github.com/jwebster45206/cell-commander/pkg/state"
	"github.com/jwebster45206/cell-commander/pkg/story"
)

const lastVideoPhase = 5

// react evaluates the state-observing rules after every mutation. Each rule
// arms its timer while its condition holds and cancels it as soon as the
// condition stops holding, so a delayed transition never lands in a scene it
// was not armed for.
func (e *Engine) react() {
	e.reactAlarm()
	e.reactDeath()
	e.reactDeathQuiz()
	e.reactVideo()
	e.reactPhone()
}

// alarmReady: both allies met while idling on the bone marrow hub line.
func (e *Engine) alarmReady() bool {
	return e.gs.CurrentScene == story.SceneBoneMarrow &&
		e.gs.DialogueIndex == 1 &&
		e.gs.HasContact(story.CharacterMacrophage) &&
		e.gs.HasContact(story.CharacterBCell)
}

func (e *Engine) reactAlarm() {
	if !e.alarmReady() {
		e.cancel(timerAlarm)
		return
	}
	if e.pending(timerAlarm) {
		return
	}
	e.schedule(timerAlarm, e.timings.Alarm, func() {
		if e.alarmReady() {
			e.changeScene(story.SceneAlarm)
		}
	})
}

func (e *Engine) dead() bool {
	return e.gs.CurrentScene == story.SceneLungBattle && e.gs.HP <= 0
}

func (e *Engine) reactDeath() {
	if !e.dead() {
		if e.pending(timerDying) {
			e.cancel(timerDying)
			e.ui.IsDying = false
		}
		return
	}
	if e.pending(timerDying) {
		return
	}
	e.ui.IsDying = true
	e.emit(SignalDying, nil)
	e.schedule(timerDying, e.timings.Dying, func() {
		e.ui.IsDying = false
		if !e.dead() {
			return
		}
		e.logger.Info("player died", "hp", e.gs.HP, "death_count", e.gs.Flags.DeathCount)
		e.changeScene(story.SceneDeathQuiz)
		e.gs.Flags.BattlePhase = state.BattleNone
	})
}

// reactDeathQuiz drops the quiz outcomes once the quiz scene is gone.
func (e *Engine) reactDeathQuiz() {
	if e.gs.CurrentScene == story.SceneDeathQuiz {
		return
	}
	e.cancel(timerResurrect)
	e.cancel(timerPenalty)
}

// reactVideo runs the antigen presentation as a chain of phases, each armed
// by the previous one.
func (e *Engine) reactVideo() {
	if e.gs.CurrentScene != story.SceneAntigenPresentation {
		e.cancel(timerVideo)
		if e.ui.VideoPhase != 0 {
			e.ui.VideoPhase = 0
		}
		return
	}
	if e.ui.VideoPhase == 0 {
		e.setVideoPhase(1)
		e.scheduleVideoPhase()
	}
}

func (e *Engine) scheduleVideoPhase() {
	e.schedule(timerVideo, e.timings.VideoPhase, func() {
		if e.gs.CurrentScene != story.SceneAntigenPresentation || e.ui.VideoPhase >= lastVideoPhase {
			return
		}
		e.setVideoPhase(e.ui.VideoPhase + 1)
		if e.ui.VideoPhase < lastVideoPhase {
			e.scheduleVideoPhase()
		}
	})
}

func (e *Engine) setVideoPhase(phase int) {
	e.ui.VideoPhase = phase
	e.emit(SignalVideoPhase, map[string]any{"phase": phase})
}

// reactPhone clears the new-contact badge while the phone is open.
func (e *Engine) reactPhone() {
	if e.ui.ShowPhone && e.gs.Flags.HasNewContact {
		e.gs.Flags.HasNewContact = false
	}
}
