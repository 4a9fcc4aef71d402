package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jwebster45206/cell-commander/pkg/engine"
	"github.com/jwebster45206/cell-commander/pkg/state"
	"github.com/jwebster45206/cell-commander/pkg/story"
)

var errUsage = errors.New("usage")

const helpText = `
Play:
• Enter        - Next line
• map          - Open the map
• go <scene>   - Travel (artery, bone_marrow, lung_battle, shop, thymus_prison)
• phone        - Open the phone
• call <cell>  - Call a contact (macrophage, b_cell, platelet, killer_t)
• weapon <w>   - Pick a weapon (net, antibody, drill)
• buy <item>   - Buy from the shop (diary, key, video)
• answer <n>   - Answer the quiz with option n
• blank <text> - Fill in the thymus blank
• meet <cell>  - Talk to a cell in the bone marrow
• bag / diary / tasks
• tab <items|dex>, item <id>, page <+1|-1>
• bio <cell>, unbio
• close <modal>, skip

Console:
• /copy - Copy the current view as JSON
• /help - Show this help
• Ctrl+C - Quit
`

// parseCommand turns a typed line into an intent. v supplies context for
// commands whose arguments depend on the script, like meet.
func parseCommand(input string, v engine.View, cat *story.Catalog) (engine.Intent, error) {
	fields := strings.Fields(strings.TrimSpace(input))
	if len(fields) == 0 {
		return engine.Intent{Type: engine.IntentAdvance}, nil
	}
	verb := strings.ToLower(fields[0])
	arg := strings.Join(fields[1:], " ")
	need := func(what string) error {
		if arg == "" {
			return fmt.Errorf("%s needs %s: %w", verb, what, errUsage)
		}
		return nil
	}

	switch verb {
	case "next", "n":
		return engine.Intent{Type: engine.IntentAdvance}, nil
	case "map":
		return engine.Intent{Type: engine.IntentOpenMap}, nil
	case "go", "travel":
		if err := need("a scene"); err != nil {
			return engine.Intent{}, err
		}
		return engine.Intent{Type: engine.IntentTravel, Scene: upper(arg)}, nil
	case "phone":
		return openModal(state.ModalPhone), nil
	case "bag", "inventory":
		return openModal(state.ModalInventory), nil
	case "diary":
		return openModal(state.ModalDiary), nil
	case "tasks":
		return openModal(state.ModalTasks), nil
	case "open":
		if err := need("a modal"); err != nil {
			return engine.Intent{}, err
		}
		return openModal(state.Modal(strings.ToLower(arg))), nil
	case "close":
		if err := need("a modal"); err != nil {
			return engine.Intent{}, err
		}
		return engine.Intent{Type: engine.IntentCloseModal, Modal: strings.ToLower(arg)}, nil
	case "call":
		if err := need("a contact"); err != nil {
			return engine.Intent{}, err
		}
		return engine.Intent{Type: engine.IntentCall, Character: upper(arg)}, nil
	case "weapon":
		if err := need("a weapon"); err != nil {
			return engine.Intent{}, err
		}
		return engine.Intent{Type: engine.IntentSelectWeapon, Weapon: upper(arg)}, nil
	case "buy":
		if err := need("an item"); err != nil {
			return engine.Intent{}, err
		}
		return engine.Intent{Type: engine.IntentBuy, Item: strings.ToLower(arg)}, nil
	case "answer":
		n, err := strconv.Atoi(arg)
		if err != nil || n < 1 {
			return engine.Intent{}, fmt.Errorf("answer needs an option number: %w", errUsage)
		}
		opt := n - 1
		return engine.Intent{Type: engine.IntentAnswerOption, Option: &opt}, nil
	case "blank":
		return engine.Intent{Type: engine.IntentSubmitBlank, Text: arg}, nil
	case "meet":
		if err := need("a cell"); err != nil {
			return engine.Intent{}, err
		}
		id := story.CharacterID(upper(arg))
		idx, ok := firstLineOf(cat.Script(v.State.CurrentScene), id)
		if !ok {
			return engine.Intent{}, fmt.Errorf("%s is not here: %w", arg, errUsage)
		}
		return engine.Intent{Type: engine.IntentMeet, Character: string(id), JumpIndex: &idx}, nil
	case "bio":
		if err := need("a cell"); err != nil {
			return engine.Intent{}, err
		}
		return engine.Intent{Type: engine.IntentViewBio, Character: upper(arg)}, nil
	case "unbio":
		return engine.Intent{Type: engine.IntentCloseBio}, nil
	case "tab":
		return engine.Intent{Type: engine.IntentSelectTab, Tab: strings.ToLower(arg)}, nil
	case "item":
		return engine.Intent{Type: engine.IntentSelectItem, Item: strings.ToLower(arg)}, nil
	case "page":
		delta, err := strconv.Atoi(arg)
		if err != nil {
			return engine.Intent{}, fmt.Errorf("page needs +1 or -1: %w", errUsage)
		}
		return engine.Intent{Type: engine.IntentTurnPage, Delta: delta}, nil
	case "skip":
		return engine.Intent{Type: engine.IntentCloseVideo}, nil
	}
	return engine.Intent{}, fmt.Errorf("unknown command %q, try /help: %w", verb, errUsage)
}

func openModal(m state.Modal) engine.Intent {
	return engine.Intent{Type: engine.IntentOpenModal, Modal: string(m)}
}

func upper(s string) string {
	return strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), " ", "_"))
}

// firstLineOf finds where a character's branch starts in the script.
func firstLineOf(s story.Script, id story.CharacterID) (int, bool) {
	for i, line := range s.Lines() {
		if line.Speaker == id {
			return i, true
		}
	}
	return 0, false
}
