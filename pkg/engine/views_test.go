package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/cell-commander/pkg/state"
	"github.com/jwebster45206/cell-commander/pkg/story"
)

func TestTasks(t *testing.T) {
	all := []story.CharacterID{story.CharacterRBC, story.CharacterMacrophage, story.CharacterBCell}

	tests := []struct {
		name     string
		scene    story.Scene
		contacts []story.CharacterID
		points   int
		want     []Task
	}{
		{
			name:     "fresh start",
			scene:    story.SceneBedroom,
			contacts: []story.CharacterID{story.CharacterRBC},
			want: []Task{
				{ID: 1, Text: "前往骨髓 (打开地图)"},
				{ID: 2, Text: "结识新细胞伙伴 (0/2)"},
			},
		},
		{
			name:     "bone marrow half way",
			scene:    story.SceneBoneMarrow,
			contacts: []story.CharacterID{story.CharacterRBC, story.CharacterBCell},
			want: []Task{
				{ID: 1, Text: "前往骨髓 (打开地图)", Done: true},
				{ID: 2, Text: "结识新细胞伙伴 (1/2)"},
			},
		},
		{
			name:     "bone marrow complete",
			scene:    story.SceneBoneMarrow,
			contacts: all,
			want: []Task{
				{ID: 1, Text: "前往骨髓 (打开地图)", Done: true},
				{ID: 2, Text: "结识新细胞伙伴 (2/2)", Done: true},
			},
		},
		{
			name:     "battle has no tasks",
			scene:    story.SceneLungBattle,
			contacts: all,
			want:     []Task{},
		},
		{
			name:     "victory",
			scene:    story.SceneVictory,
			contacts: all,
			points:   500,
			want: []Task{
				{ID: 3, Text: "前往淋巴结商店 (智慧之树)"},
			},
		},
		{
			name:     "arrived at the shop",
			scene:    story.SceneShop,
			contacts: all,
			points:   500,
			want: []Task{
				{ID: 3, Text: "前往淋巴结商店 (智慧之树)", Done: true},
			},
		},
		{
			name:     "missing contacts keep the second task anywhere",
			scene:    story.SceneShop,
			contacts: []story.CharacterID{story.CharacterRBC},
			want: []Task{
				{ID: 2, Text: "结识新细胞伙伴 (0/2)"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gs := state.GameState{CurrentScene: tt.scene, Contacts: tt.contacts, Points: tt.points}
			assert.Equal(t, tt.want, Tasks(gs))
		})
	}
}

func TestPhoneContacts(t *testing.T) {
	gs := state.GameState{
		CurrentScene: story.SceneArtery,
		Contacts:     []story.CharacterID{story.CharacterRBC, story.CharacterKillerT},
	}
	got := PhoneContacts(gs)
	assert.Equal(t, gs.Contacts, got)
	got[0] = story.CharacterVirus
	assert.Equal(t, story.CharacterRBC, gs.Contacts[0])

	gs.CurrentScene = story.SceneLungBattle
	assert.Equal(t, []story.CharacterID{
		story.CharacterMacrophage,
		story.CharacterBCell,
		story.CharacterPlatelet,
	}, PhoneContacts(gs))
}

func TestView_QuizIndexStopsAtSecondQuestion(t *testing.T) {
	e, _, _ := newTestEngine(t)
	for deaths, want := range []int{0, 1, 1, 1} {
		e.gs.Flags.DeathCount = deaths
		v := e.View()
		assert.Equal(t, want, v.QuizIndex, "deaths=%d", deaths)
		require.NotNil(t, v.Quiz)
	}
	assert.Equal(t, "巨噬细胞的主要攻击方式是什么？", e.View().Quiz.Question)
}

func TestView_Encyclopedia(t *testing.T) {
	e, _, _ := newTestEngine(t)
	assert.False(t, e.View().EncyclopediaUnlocked)

	require.NoError(t, e.MeetCharacter(story.CharacterBCell, 0))
	assert.True(t, e.View().EncyclopediaUnlocked)
}

func TestView_Idle(t *testing.T) {
	tests := []struct {
		scene story.Scene
		index int
		want  bool
	}{
		{story.SceneBoneMarrow, 0, true},
		{story.SceneBoneMarrow, 1, true},
		{story.SceneBoneMarrow, 2, false},
		{story.SceneArtery, 0, false},
	}
	for _, tt := range tests {
		e, _, _ := newTestEngine(t)
		e.gs.CurrentScene = tt.scene
		e.gs.DialogueIndex = tt.index
		assert.Equal(t, tt.want, e.View().Idle, "%s/%d", tt.scene, tt.index)
	}
}

func TestView_PhoneRinging(t *testing.T) {
	tests := []struct {
		name  string
		setup func(e *Engine)
		want  bool
	}{
		{"quiet bedroom", func(e *Engine) {}, false},
		{"alarm", func(e *Engine) { e.gs.CurrentScene = story.SceneAlarm }, true},
		{"new contact", func(e *Engine) { e.gs.Flags.HasNewContact = true }, true},
		{"battle phone prompt", func(e *Engine) {
			e.gs.CurrentScene = story.SceneLungBattle
			e.gs.DialogueIndex = 1
		}, true},
		{"battle intro", func(e *Engine) { e.gs.CurrentScene = story.SceneLungBattle }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, _, _ := newTestEngine(t)
			tt.setup(e)
			assert.Equal(t, tt.want, e.View().PhoneRinging)
		})
	}
}

func TestView_Speaker(t *testing.T) {
	e, _, _ := newTestEngine(t)

	v := e.View()
	assert.Equal(t, story.SpeakerUnknown, v.Line.Speaker)
	assert.Equal(t, "???", v.SpeakerName)
	assert.True(t, v.ShowArrow)
	assert.Equal(t, "卧室", v.SceneName)

	e.gs.CurrentScene = story.SceneArtery
	v = e.View()
	assert.Equal(t, "红细胞 AE3803", v.SpeakerName)

	e.gs.DialogueIndex = 2
	assert.False(t, e.View().ShowArrow)

	e.gs.CurrentScene = story.SceneBoneMarrow
	e.gs.DialogueIndex = 1
	assert.Empty(t, e.View().SpeakerName)
}

func TestView_IsASnapshot(t *testing.T) {
	e, _, _ := newTestEngine(t)
	v := e.View()
	v.State.Contacts[0] = story.CharacterVirus
	v.State.HP = 99
	v.UI.ShowMap = true

	again := e.View()
	assert.Equal(t, story.CharacterRBC, again.State.Contacts[0])
	assert.Equal(t, 3, again.State.HP)
	assert.False(t, again.UI.ShowMap)
}
