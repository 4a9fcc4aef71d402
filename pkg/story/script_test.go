package story

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScript_SafeIndex(t *testing.T) {
	script := NewScript([]Line{{ID: "a"}, {ID: "b"}, {ID: "c"}})

	tests := []struct {
		name string
		in   int
		want int
	}{
		{"first", 0, 0},
		{"last", 2, 2},
		{"past end", 3, 0},
		{"negative", -1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, script.SafeIndex(tt.in))
		})
	}

	assert.Equal(t, -1, NewScript(nil).SafeIndex(0))
}

func TestScript_LineClamps(t *testing.T) {
	script := NewScript([]Line{{ID: "a", Text: "first"}, {ID: "b", Text: "second"}})

	l, ok := script.Line(7)
	assert.True(t, ok)
	assert.Equal(t, "first", l.Text)

	_, ok = NewScript(nil).Line(0)
	assert.False(t, ok)
}

func TestScript_IndexOfFirstDuplicateWins(t *testing.T) {
	script := NewScript([]Line{{ID: "a"}, {ID: "b"}, {ID: "a"}})

	i, ok := script.IndexOf("a")
	assert.True(t, ok)
	assert.Equal(t, 0, i)

	_, ok = script.IndexOf("zzz")
	assert.False(t, ok)
}

func TestScript_LinesIsACopy(t *testing.T) {
	script := NewScript([]Line{{ID: "a", Text: "x"}})
	lines := script.Lines()
	lines[0].Text = "changed"

	l, _ := script.Line(0)
	assert.Equal(t, "x", l.Text)
}

func TestParseTrigger(t *testing.T) {
	tests := []struct {
		in      string
		want    Trigger
		wantErr bool
	}{
		{"", TriggerClick, false},
		{"CLICK", TriggerClick, false},
		{"PHONE_CALL", TriggerPhoneCall, false},
		{"QUIZ_START", TriggerQuizStart, false},
		{"click", TriggerClick, true},
		{"NOPE", TriggerClick, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTrigger(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
			if tt.in != "" {
				assert.Equal(t, tt.in, got.String())
			}
		})
	}
}

func TestTrigger_Predicates(t *testing.T) {
	assert.True(t, TriggerMapOpen.IsGate())
	assert.True(t, TriggerPhoneCall.IsGate())
	assert.False(t, TriggerWeaponSelect.IsGate())

	for _, tr := range []Trigger{TriggerClick, TriggerAuto, TriggerQuizStart} {
		assert.True(t, tr.ShowsArrow(), tr.String())
	}
	for _, tr := range []Trigger{TriggerMapOpen, TriggerChoice, TriggerWeaponSelect, TriggerShopOpen, TriggerThymusGame, TriggerPhoneCall} {
		assert.False(t, tr.ShowsArrow(), tr.String())
	}
}

func TestParseScene(t *testing.T) {
	s, err := ParseScene("LUNG_BATTLE")
	assert.NoError(t, err)
	assert.Equal(t, SceneLungBattle, s)
	assert.Equal(t, "肺部战场", s.DisplayName())

	_, err = ParseScene("KITCHEN")
	assert.Error(t, err)

	assert.True(t, SceneThymusPrison.IsMapNode())
	assert.False(t, SceneVictory.IsMapNode())
	assert.True(t, SceneShop.AlwaysReachable())
	assert.False(t, SceneBoneMarrow.AlwaysReachable())
}
