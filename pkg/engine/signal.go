package engine

import "github.com/jwebster45206/cell-commander/pkg/story"

// SignalType names a transient UI event.
type SignalType string

const (
	SignalStateUpdated SignalType = "state_updated"
	SignalSceneChanged SignalType = "scene_changed"
	SignalShake        SignalType = "shake"
	SignalModalShake   SignalType = "modal_shake"
	SignalModalOpened  SignalType = "modal_opened"
	SignalModalClosed  SignalType = "modal_closed"
	SignalDying        SignalType = "dying"
	SignalVideoPhase   SignalType = "video_phase"
	SignalLookupMiss   SignalType = "lookup_miss"
)

// Signal is an event for the presentation layer. Scene is the scene current
// when the signal was raised.
type Signal struct {
	Type  SignalType     `json:"type"`
	Scene story.Scene    `json:"scene"`
	Data  map[string]any `json:"data,omitempty"`
}
