package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/cell-commander/pkg/state"
	"github.com/jwebster45206/cell-commander/pkg/story"
)

func TestAdvance_BedroomToArtery(t *testing.T) {
	e, _, rec := newTestEngine(t)

	advanceN(t, e, 2)
	v := e.View()
	assert.Equal(t, story.SceneBedroom, v.State.CurrentScene)
	assert.Equal(t, 2, v.State.DialogueIndex)

	require.NoError(t, e.Advance())
	v = e.View()
	assert.Equal(t, story.SceneArtery, v.State.CurrentScene)
	assert.Equal(t, 0, v.State.DialogueIndex)
	assert.Equal(t, 1, rec.sceneChangesTo(story.SceneArtery))
}

func TestAdvance_GatesAreIdempotent(t *testing.T) {
	e, _, _ := newTestEngine(t)
	advanceN(t, e, 3+2) // bedroom, then onto the artery MAP_OPEN line

	before := e.View()
	require.Equal(t, "1_3", before.Line.ID)

	for i := 0; i < 3; i++ {
		assert.ErrorIs(t, e.Advance(), ErrGated)
	}
	after := e.View()
	assert.Equal(t, before.State, after.State)
	assert.Equal(t, before.UI, after.UI)
}

func TestAdvance_PhoneCallGate(t *testing.T) {
	e, _, _ := newTestEngine(t)
	require.NoError(t, e.TravelTo(story.SceneLungBattle))
	require.NoError(t, e.Advance())

	v := e.View()
	require.Equal(t, story.TriggerPhoneCall, v.Line.Trigger)
	assert.ErrorIs(t, e.Advance(), ErrGated)
	assert.Equal(t, 1, e.View().State.DialogueIndex)
}

func TestAdvance_ModalTriggers(t *testing.T) {
	tests := []struct {
		name  string
		scene story.Scene
		index int
		modal state.Modal
	}{
		{"weapon select", story.SceneLungBattle, 6, state.ModalWeapon},
		{"shop", story.SceneShop, 0, state.ModalShop},
		{"thymus game", story.SceneThymusPrison, 1, state.ModalThymus},
		{"quiz", story.SceneDeathQuiz, 0, state.ModalQuiz},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, _, rec := newTestEngine(t)
			e.gs.CurrentScene = tt.scene
			e.gs.DialogueIndex = tt.index
			e.ui.ThymusInput = "leftover"

			require.NoError(t, e.Advance())
			v := e.View()
			assert.True(t, v.UI.IsOpen(tt.modal))
			assert.Equal(t, tt.index, v.State.DialogueIndex, "cursor must not move")
			assert.Equal(t, 1, rec.count(SignalModalOpened))
			if tt.modal == state.ModalThymus {
				assert.Empty(t, v.UI.ThymusInput)
			}
		})
	}
}

func TestAdvance_NextIndexJump(t *testing.T) {
	e, _, _ := newTestEngine(t)
	e.gs.CurrentScene = story.SceneLungBattle
	e.gs.DialogueIndex = 7 // 4_FAIL_ANTIBODY loops to the weapon prompt

	require.NoError(t, e.Advance())
	assert.Equal(t, 6, e.View().State.DialogueIndex)
}

func TestAdvance_OutOfRangeReadIsClamped(t *testing.T) {
	for _, scene := range story.AllScenes {
		t.Run(string(scene), func(t *testing.T) {
			e, _, _ := newTestEngine(t)
			e.gs.CurrentScene = scene
			e.gs.DialogueIndex = 99

			v := e.View()
			assert.Equal(t, 99, v.State.DialogueIndex, "the stored index is not repaired")
			if e.catalog.Script(scene).Len() == 0 {
				assert.Nil(t, v.Line)
				assert.Equal(t, -1, v.LineIndex)
				return
			}
			require.NotNil(t, v.Line)
			assert.Equal(t, 0, v.LineIndex)
			first, _ := e.catalog.Script(scene).Line(0)
			assert.Equal(t, first.ID, v.Line.ID)
		})
	}
}

func TestAdvance_LungBattleEndIsVictory(t *testing.T) {
	e, _, _ := newTestEngine(t)
	e.gs.CurrentScene = story.SceneLungBattle
	e.gs.DialogueIndex = 13
	e.gs.Points = 20
	e.ui.IsMacrophageAttacking = true

	require.NoError(t, e.Advance())
	v := e.View()
	assert.Equal(t, story.SceneVictory, v.State.CurrentScene)
	assert.Equal(t, 0, v.State.DialogueIndex)
	assert.Equal(t, 520, v.State.Points)
	assert.False(t, v.UI.IsMacrophageAttacking)
}

func TestAdvance_EmptyScriptIsExhausted(t *testing.T) {
	e, _, _ := newTestEngine(t)
	e.gs.CurrentScene = story.SceneAntigenPresentation

	require.NoError(t, e.Advance())
	assert.Equal(t, story.SceneShop, e.View().State.CurrentScene)
}

func TestAdvance_NoContinuation(t *testing.T) {
	cat := loadCatalog(t, `initial_hp: 3
scripts:
  ALARM:
    - id: "only"
      speaker: SYSTEM
      text: "end"
`)
	e, _, _ := newTestEngineWith(t, cat)
	e.gs.CurrentScene = story.SceneAlarm

	assert.ErrorIs(t, e.Advance(), ErrEndOfScript)
	assert.Equal(t, story.SceneAlarm, e.View().State.CurrentScene)
	assert.Equal(t, 0, e.View().State.DialogueIndex)
}

func TestAdvance_ChoiceEntersCallAlly(t *testing.T) {
	cat := loadCatalog(t, `initial_hp: 3
scripts:
  LUNG_BATTLE:
    - id: "pick"
      speaker: SYSTEM
      text: "choose"
      trigger: CHOICE
  SHOP:
    - id: "pick"
      speaker: SYSTEM
      text: "choose"
      trigger: CHOICE
`)

	e, _, _ := newTestEngineWith(t, cat)
	e.gs.CurrentScene = story.SceneLungBattle
	require.NoError(t, e.Advance())
	assert.Equal(t, state.BattleCallAlly, e.View().State.Flags.BattlePhase)
	assert.Equal(t, 0, e.View().State.DialogueIndex)

	// Only from NONE.
	e.gs.Flags.BattlePhase = state.BattleEquipWeapon
	require.NoError(t, e.Advance())
	assert.Equal(t, state.BattleEquipWeapon, e.View().State.Flags.BattlePhase)

	e2, _, _ := newTestEngineWith(t, cat)
	e2.gs.CurrentScene = story.SceneShop
	require.NoError(t, e2.Advance())
	assert.Equal(t, state.BattleNone, e2.View().State.Flags.BattlePhase)
}

func TestShouldShowArrow(t *testing.T) {
	tests := []struct {
		trigger story.Trigger
		want    bool
	}{
		{story.TriggerClick, true},
		{story.TriggerAuto, true},
		{story.TriggerQuizStart, true},
		{story.TriggerMapOpen, false},
		{story.TriggerPhoneCall, false},
		{story.TriggerWeaponSelect, false},
		{story.TriggerShopOpen, false},
		{story.TriggerThymusGame, false},
		{story.TriggerChoice, false},
	}
	for _, tt := range tests {
		t.Run(tt.trigger.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, ShouldShowArrow(story.Line{Trigger: tt.trigger}))
		})
	}
}
