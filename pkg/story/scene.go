package story

import "fmt"

// Scene identifies one location or mode of the narrative.
type Scene string

const (
	SceneBedroom             Scene = "BEDROOM"
	SceneArtery              Scene = "ARTERY"
	SceneBoneMarrow          Scene = "BONE_MARROW"
	SceneAlarm               Scene = "ALARM"
	SceneLungBattle          Scene = "LUNG_BATTLE"
	SceneVictory             Scene = "VICTORY"
	SceneShop                Scene = "SHOP"
	SceneDeathQuiz           Scene = "DEATH_QUIZ"
	SceneThymusPrison        Scene = "THYMUS_PRISON"
	SceneAntigenPresentation Scene = "ANTIGEN_PRESENTATION"
)

// AllScenes lists every scene in story order.
var AllScenes = []Scene{
	SceneBedroom,
	SceneArtery,
	SceneBoneMarrow,
	SceneAlarm,
	SceneLungBattle,
	SceneVictory,
	SceneShop,
	SceneDeathQuiz,
	SceneThymusPrison,
	SceneAntigenPresentation,
}

var sceneNames = map[Scene]string{
	SceneBedroom:             "卧室",
	SceneArtery:              "大动脉",
	SceneBoneMarrow:          "骨髓",
	SceneAlarm:               "警报中心",
	SceneLungBattle:          "肺部战场",
	SceneVictory:             "胜利",
	SceneShop:                "淋巴结商店",
	SceneDeathQuiz:           "意识深处",
	SceneThymusPrison:        "胸腺训练营",
	SceneAntigenPresentation: "抗原呈递",
}

// MapNodes are the scenes that appear on the travel map.
var MapNodes = []Scene{
	SceneArtery,
	SceneBoneMarrow,
	SceneLungBattle,
	SceneShop,
	SceneThymusPrison,
}

// Valid reports whether s is one of the enumerated scenes.
func (s Scene) Valid() bool {
	_, ok := sceneNames[s]
	return ok
}

// DisplayName returns the player-facing name of the scene.
func (s Scene) DisplayName() string {
	if name, ok := sceneNames[s]; ok {
		return name
	}
	return string(s)
}

// IsMapNode reports whether the scene can be selected on the travel map.
func (s Scene) IsMapNode() bool {
	for _, n := range MapNodes {
		if n == s {
			return true
		}
	}
	return false
}

// AlwaysReachable reports whether the map lets the player travel to s
// without unlocking it first.
func (s Scene) AlwaysReachable() bool {
	switch s {
	case SceneArtery, SceneLungBattle, SceneShop:
		return true
	}
	return false
}

// ParseScene converts a scene identifier into a Scene.
func ParseScene(v string) (Scene, error) {
	s := Scene(v)
	if !s.Valid() {
		return "", fmt.Errorf("unknown scene %q", v)
	}
	return s, nil
}
