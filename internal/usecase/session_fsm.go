package usecase

import (
	"strconv"
	"strings"

	"gifts-buyer/internal/domain/model"
)

// Effect is a side effect requested by Transition. The driver executes effects in order
// after the next session has been stored.
type Effect interface{ isEffect() }

// Reply sends a localized message back to the operator's chat.
type Reply struct {
	Key  string
	Args []any
}

type ShowSettings struct{}

type ListPurpose string

const (
	ListForDelete ListPurpose = "delete"
	ListForEdit   ListPurpose = "edit"
)

// ShowRangeList renders the numbered range list for a delete or edit selection.
type ShowRangeList struct{ Purpose ListPurpose }

type AddRange struct{ Text string }

type EditRange struct {
	Index int
	Text  string
}

type DeleteRange struct{ Index int }

type ListCatalog struct{}

type Purchase struct {
	Recipient model.Recipient
	GiftID    int64
	Quantity  int
}

func (Reply) isEffect()         {}
func (ShowSettings) isEffect()  {}
func (ShowRangeList) isEffect() {}
func (AddRange) isEffect()      {}
func (EditRange) isEffect()     {}
func (DeleteRange) isEffect()   {}
func (ListCatalog) isEffect()   {}
func (Purchase) isEffect()      {}

// Env is the read-only view of the world a transition may consult.
type Env struct {
	RangeCount int
	KnownGift  func(id int64) bool
}

type commandKind int

const (
	cmdNone commandKind = iota
	cmdSettings
	cmdDeleteMenu
	cmdDelete
	cmdEditMenu
	cmdEdit
	cmdAdd
	cmdList
	cmdGift
)

type command struct {
	kind   commandKind
	number int
}

// parseCommand recognizes the top level commands. A "@botname" suffix is ignored.
func parseCommand(text string) command {
	if !strings.HasPrefix(text, "/") {
		return command{}
	}
	word := text
	if i := strings.IndexAny(word, " \t\n"); i >= 0 {
		return command{}
	}
	if i := strings.Index(word, "@"); i > 0 {
		word = word[:i]
	}
	switch word {
	case "/settings":
		return command{kind: cmdSettings}
	case "/d":
		return command{kind: cmdDeleteMenu}
	case "/r":
		return command{kind: cmdEditMenu}
	case "/a":
		return command{kind: cmdAdd}
	case "/l":
		return command{kind: cmdList}
	case "/g":
		return command{kind: cmdGift}
	}
	if len(word) > 2 && isDigits(word[2:]) {
		n, err := strconv.Atoi(word[2:])
		if err != nil {
			return command{}
		}
		switch word[:2] {
		case "/d":
			return command{kind: cmdDelete, number: n}
		case "/r":
			return command{kind: cmdEdit, number: n}
		}
	}
	return command{}
}

// Transition computes the operator's next session and the effects of handling text.
// cur is nil when the operator is idle; a nil result clears the session.
func Transition(operatorID int64, cur *model.Session, text string, env Env) (*model.Session, []Effect) {
	text = strings.TrimSpace(text)

	switch cmd := parseCommand(text); cmd.kind {
	case cmdSettings:
		return model.NewSession(operatorID, model.StateSettingsMenu), []Effect{ShowSettings{}}
	case cmdDeleteMenu:
		return model.NewSession(operatorID, model.StateDeleteRange), []Effect{ShowRangeList{Purpose: ListForDelete}}
	case cmdDelete:
		return nil, []Effect{DeleteRange{Index: cmd.number - 1}}
	case cmdEditMenu:
		return model.NewSession(operatorID, model.StateEditRangeSelect), []Effect{ShowRangeList{Purpose: ListForEdit}}
	case cmdEdit:
		index := cmd.number - 1
		if index < 0 || index >= env.RangeCount {
			return nil, []Effect{Reply{Key: "invalid_range_number"}}
		}
		next := model.NewSession(operatorID, model.StateEditRangeInput)
		next.Index = index
		return next, []Effect{Reply{Key: "enter_new_range_format"}}
	case cmdAdd:
		return model.NewSession(operatorID, model.StateAddRange), []Effect{Reply{Key: "enter_new_range_format"}}
	case cmdList:
		return cur, []Effect{ListCatalog{}}
	case cmdGift:
		return model.NewSession(operatorID, model.StateAwaitingGiftID), []Effect{Reply{Key: "gift_id_prompt"}}
	}

	if cur == nil {
		return nil, nil
	}

	switch cur.State {
	case model.StateEditRangeInput:
		return nil, []Effect{EditRange{Index: cur.Index, Text: text}}
	case model.StateAddRange:
		return nil, []Effect{AddRange{Text: text}}
	case model.StateAwaitingGiftID:
		id, err := strconv.ParseInt(text, 10, 64)
		if err != nil || id <= 0 || env.KnownGift == nil || !env.KnownGift(id) {
			return cur, []Effect{Reply{Key: "gift_id_invalid"}}
		}
		next := cur.With(model.StateAwaitingQuantity)
		next.GiftID = id
		return next, []Effect{Reply{Key: "quantity_prompt"}}
	case model.StateAwaitingQuantity:
		qty, err := strconv.Atoi(text)
		if err != nil || !isDigits(text) || qty <= 0 {
			return cur, []Effect{Reply{Key: "quantity_invalid"}}
		}
		next := cur.With(model.StateAwaitingRecipient)
		next.Quantity = qty
		return next, []Effect{Reply{Key: "recipient_prompt"}}
	case model.StateAwaitingRecipient:
		if text == "" {
			return cur, []Effect{Reply{Key: "recipient_empty"}}
		}
		recipient, err := ParseRecipient(text)
		if err != nil {
			return cur, []Effect{Reply{Key: "recipient_empty"}}
		}
		return nil, []Effect{Purchase{Recipient: recipient, GiftID: cur.GiftID, Quantity: cur.Quantity}}
	}

	// settings_menu, delete_range, edit_range_select and anything else
	return nil, []Effect{Reply{Key: "unknown_command"}}
}
