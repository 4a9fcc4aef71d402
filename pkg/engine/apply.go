package engine

import (
	"fmt"

	"github.com/jwebster45206/cell-commander/pkg/state"
	"github.com/jwebster45206/cell-commander/pkg/story"
)

// IntentType names a player command.
type IntentType string

const (
	IntentAdvance      IntentType = "advance"
	IntentTravel       IntentType = "travel"
	IntentOpenMap      IntentType = "open_map"
	IntentCall         IntentType = "call"
	IntentSelectWeapon IntentType = "select_weapon"
	IntentBuy          IntentType = "buy"
	IntentAnswerQuiz   IntentType = "answer_quiz"
	IntentAnswerOption IntentType = "answer_option"
	IntentSubmitBlank  IntentType = "submit_blank"
	IntentMeet         IntentType = "meet"
	IntentDamage       IntentType = "damage"
	IntentViewBio      IntentType = "view_bio"
	IntentCloseBio     IntentType = "close_bio"
	IntentOpenModal    IntentType = "open_modal"
	IntentCloseModal   IntentType = "close_modal"
	IntentTurnPage     IntentType = "turn_page"
	IntentSelectTab    IntentType = "select_tab"
	IntentSelectItem   IntentType = "select_item"
	IntentCloseVideo   IntentType = "close_video"
)

// Intent is a player command in data form, as sent over the wire. Type
// selects the operation; the other fields are its arguments.
type Intent struct {
	Type      IntentType `json:"type"`
	Scene     string     `json:"scene,omitempty"`
	Character string     `json:"character,omitempty"`
	Weapon    string     `json:"weapon,omitempty"`
	Item      string     `json:"item,omitempty"`
	Cost      *int       `json:"cost,omitempty"` // defaults to the catalog price
	Correct   *bool      `json:"correct,omitempty"`
	RewardHP  *int       `json:"reward_hp,omitempty"`
	Option    *int       `json:"option,omitempty"`
	Text      string     `json:"text,omitempty"`
	JumpIndex *int       `json:"jump_index,omitempty"`
	Amount    *int       `json:"amount,omitempty"`
	Modal     string     `json:"modal,omitempty"`
	Delta     int        `json:"delta,omitempty"`
	Tab       string     `json:"tab,omitempty"`
}

func missingArg(field string, t IntentType) error {
	return fmt.Errorf("%s requires %q: %w", t, field, ErrBadIntent)
}

// Apply runs the intent. Malformed intents return ErrBadIntent without
// touching the engine.
func (e *Engine) Apply(in Intent) error {
	switch in.Type {
	case IntentAdvance:
		return e.Advance()
	case IntentTravel:
		return e.TravelTo(story.Scene(in.Scene))
	case IntentOpenMap:
		return e.OpenMap()
	case IntentCall:
		return e.CallContact(story.CharacterID(in.Character))
	case IntentSelectWeapon:
		return e.SelectWeapon(Weapon(in.Weapon))
	case IntentBuy:
		cost := 0
		if in.Cost != nil {
			cost = *in.Cost
		} else if it, ok := e.catalog.Item(in.Item); ok {
			cost = it.Price
		}
		return e.BuyItem(in.Item, cost)
	case IntentAnswerQuiz:
		if in.Correct == nil {
			return missingArg("correct", in.Type)
		}
		reward := 0
		if in.RewardHP != nil {
			reward = *in.RewardHP
		}
		return e.AnswerQuiz(*in.Correct, reward)
	case IntentAnswerOption:
		if in.Option == nil {
			return missingArg("option", in.Type)
		}
		return e.AnswerQuizOption(*in.Option)
	case IntentSubmitBlank:
		return e.SubmitBlank(in.Text)
	case IntentMeet:
		if in.JumpIndex == nil {
			return missingArg("jump_index", in.Type)
		}
		return e.MeetCharacter(story.CharacterID(in.Character), *in.JumpIndex)
	case IntentDamage:
		if in.Amount == nil {
			return missingArg("amount", in.Type)
		}
		return e.Damage(*in.Amount)
	case IntentViewBio:
		return e.ViewBio(story.CharacterID(in.Character))
	case IntentCloseBio:
		return e.CloseBio()
	case IntentOpenModal:
		return e.OpenModal(state.Modal(in.Modal))
	case IntentCloseModal:
		return e.CloseModal(state.Modal(in.Modal))
	case IntentTurnPage:
		return e.TurnDiaryPage(in.Delta)
	case IntentSelectTab:
		return e.SelectInventoryTab(state.InventoryTab(in.Tab))
	case IntentSelectItem:
		return e.SelectItem(in.Item)
	case IntentCloseVideo:
		return e.CloseVideo()
	case "":
		return fmt.Errorf("missing intent type: %w", ErrBadIntent)
	default:
		return fmt.Errorf("unknown intent type %q: %w", in.Type, ErrBadIntent)
	}
}
