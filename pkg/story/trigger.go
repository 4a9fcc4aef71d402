package story

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Trigger governs what advancing past a line means.
type Trigger uint8

const (
	TriggerClick Trigger = iota
	TriggerAuto
	TriggerMapOpen
	TriggerChoice
	TriggerWeaponSelect
	TriggerShopOpen
	TriggerThymusGame
	TriggerQuizStart
	TriggerPhoneCall
)

var triggerNames = [...]string{
	TriggerClick:        "CLICK",
	TriggerAuto:         "AUTO",
	TriggerMapOpen:      "MAP_OPEN",
	TriggerChoice:       "CHOICE",
	TriggerWeaponSelect: "WEAPON_SELECT",
	TriggerShopOpen:     "SHOP_OPEN",
	TriggerThymusGame:   "THYMUS_GAME",
	TriggerQuizStart:    "QUIZ_START",
	TriggerPhoneCall:    "PHONE_CALL",
}

func (t Trigger) String() string {
	if int(t) < len(triggerNames) {
		return triggerNames[t]
	}
	return fmt.Sprintf("Trigger(%d)", uint8(t))
}

// ParseTrigger converts a content trigger name. An empty name is CLICK.
func ParseTrigger(v string) (Trigger, error) {
	if v == "" {
		return TriggerClick, nil
	}
	for i, name := range triggerNames {
		if name == v {
			return Trigger(i), nil
		}
	}
	return TriggerClick, fmt.Errorf("unknown trigger %q", v)
}

// IsGate reports whether the line blocks advancing until an external
// interaction moves the cursor.
func (t Trigger) IsGate() bool {
	return t == TriggerMapOpen || t == TriggerPhoneCall
}

// ShowsArrow reports whether the continue prompt is shown for the line.
func (t Trigger) ShowsArrow() bool {
	return t == TriggerClick || t == TriggerAuto || t == TriggerQuizStart
}

func (t Trigger) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *Trigger) UnmarshalText(b []byte) error {
	parsed, err := ParseTrigger(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

func (t *Trigger) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: trigger must be a scalar", value.Line)
	}
	parsed, err := ParseTrigger(value.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	*t = parsed
	return nil
}
