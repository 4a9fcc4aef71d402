package engine

import (
	"fmt"
	"slices"

	"github.com/jwebster45206/cell-commander/pkg/state"
	"github.com/jwebster45206/cell-commander/pkg/story"
)

// Task is one entry of the objective list.
type Task struct {
	ID   int    `json:"id"`
	Text string `json:"text"`
	Done bool   `json:"done"`
}

// View is a read-only snapshot for the presentation layer. It is built fresh
// on every call and shares no memory with the engine.
type View struct {
	State     state.GameState `json:"state"`
	UI        state.UIState   `json:"ui"`
	SceneName string          `json:"scene_name"`

	Line        *story.Line `json:"line,omitempty"` // nil for an empty script
	LineIndex   int         `json:"line_index"`     // clamped index of Line, -1 when there is none
	SpeakerName string      `json:"speaker_name,omitempty"`
	ShowArrow   bool        `json:"show_arrow"`

	Tasks                []Task              `json:"tasks"`
	PhoneContacts        []story.CharacterID `json:"phone_contacts"`
	PhoneRinging         bool                `json:"phone_ringing"`
	QuizIndex            int                 `json:"quiz_index"`
	Quiz                 *story.QuizQuestion `json:"quiz,omitempty"`
	EncyclopediaUnlocked bool                `json:"encyclopedia_unlocked"`
	Idle                 bool                `json:"idle"` // bone marrow characters accept clicks

	DiaryPage    *story.DiaryPage `json:"diary_page,omitempty"`
	SelectedBio  *story.Character `json:"selected_bio,omitempty"`
	SelectedItem *story.Item      `json:"selected_item,omitempty"`
}

// battleCallees are the contacts the phone offers during the lung battle.
var battleCallees = []story.CharacterID{
	story.CharacterMacrophage,
	story.CharacterBCell,
	story.CharacterPlatelet,
}

// View returns a snapshot of the session.
func (e *Engine) View() View {
	e.mu.Lock()
	defer e.mu.Unlock()

	gs := e.gs.Clone()
	v := View{
		State:                gs,
		UI:                   *e.ui,
		SceneName:            gs.CurrentScene.DisplayName(),
		LineIndex:            -1,
		Tasks:                Tasks(gs),
		PhoneContacts:        PhoneContacts(gs),
		QuizIndex:            e.quizIndex(),
		EncyclopediaUnlocked: e.encyclopediaUnlocked(),
		Idle:                 gs.CurrentScene == story.SceneBoneMarrow && gs.DialogueIndex <= 1,
	}

	script := e.catalog.Script(gs.CurrentScene)
	if line, ok := script.Line(gs.DialogueIndex); ok {
		v.Line = &line
		v.LineIndex = script.SafeIndex(gs.DialogueIndex)
		v.ShowArrow = ShouldShowArrow(line)
		v.SpeakerName = e.speakerName(line.Speaker)
	}

	v.PhoneRinging = gs.CurrentScene == story.SceneAlarm ||
		gs.Flags.HasNewContact ||
		(v.Line != nil && v.Line.Trigger == story.TriggerPhoneCall)

	if q, ok := e.catalog.Quiz(v.QuizIndex); ok {
		v.Quiz = &q
	}
	if e.ui.ShowDiary {
		if pages := e.catalog.Diary(); e.ui.DiaryPage < len(pages) {
			v.DiaryPage = &pages[e.ui.DiaryPage]
		}
	}
	if e.ui.SelectedBioID != "" {
		if ch, ok := e.catalog.Character(e.ui.SelectedBioID); ok {
			v.SelectedBio = &ch
		}
	}
	if e.ui.SelectedItemID != "" {
		if it, ok := e.catalog.Item(e.ui.SelectedItemID); ok {
			v.SelectedItem = &it
		}
	}
	return v
}

func (e *Engine) speakerName(id story.CharacterID) string {
	if ch, ok := e.catalog.Character(id); ok {
		return ch.Name
	}
	if id == story.SpeakerUnknown {
		return string(id)
	}
	return ""
}

// quizIndex cycles between the first two questions only.
func (e *Engine) quizIndex() int {
	return min(e.gs.Flags.DeathCount, 1)
}

func (e *Engine) encyclopediaUnlocked() bool {
	return len(e.gs.Contacts) > 1
}

// Tasks computes the objective list from the game state.
func Tasks(gs state.GameState) []Task {
	tasks := make([]Task, 0, 3)
	scene := gs.CurrentScene

	if scene == story.SceneArtery || scene == story.SceneBedroom || scene == story.SceneBoneMarrow {
		tasks = append(tasks, Task{
			ID:   1,
			Text: "前往骨髓 (打开地图)",
			Done: scene == story.SceneBoneMarrow,
		})
	}

	if scene == story.SceneBoneMarrow || len(gs.Contacts) < 3 {
		needed := []story.CharacterID{story.CharacterMacrophage, story.CharacterBCell}
		found := 0
		for _, id := range needed {
			if gs.HasContact(id) {
				found++
			}
		}
		tasks = append(tasks, Task{
			ID:   2,
			Text: fmt.Sprintf("结识新细胞伙伴 (%d/%d)", found, len(needed)),
			Done: found == len(needed),
		})
	}

	if scene == story.SceneVictory || gs.Points > 0 {
		tasks = append(tasks, Task{
			ID:   3,
			Text: "前往淋巴结商店 (智慧之树)",
			Done: scene == story.SceneShop,
		})
	}
	return tasks
}

// PhoneContacts lists who the phone shows: the fixed battle triad during the
// lung battle, the player's contacts otherwise.
func PhoneContacts(gs state.GameState) []story.CharacterID {
	if gs.CurrentScene == story.SceneLungBattle {
		return slices.Clone(battleCallees)
	}
	return slices.Clone(gs.Contacts)
}
