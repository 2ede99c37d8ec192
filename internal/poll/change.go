package poll

import (
	"github.com/nhle/trello-bridge/internal/model"
	"github.com/nhle/trello-bridge/internal/trello"
)

// Category groups change variants for notification gating. Rename and
// move are always delivered; the rest are gated by configuration.
type Category int

const (
	CategoryUnknown Category = iota
	CategoryLabel
	CategoryChecklist
	CategoryMember
	CategoryDueDate
	CategoryRename
	CategoryComment
	CategoryMove
)

// Change is one recognized board edit, decoded from the loosely-typed
// action payload into a closed set of variants. Unrecognized action
// types decode to Unrecognized rather than being probed field by
// field.
type Change interface {
	Category() Category
}

// LabelChange is a label added to or removed from a card.
type LabelChange struct {
	Added bool
	Label string
}

func (LabelChange) Category() Category { return CategoryLabel }

// ChecklistAdded is a new checklist on a card.
type ChecklistAdded struct {
	Name string
}

func (ChecklistAdded) Category() Category { return CategoryChecklist }

// CheckItemToggled is a checklist item marked complete or incomplete.
type CheckItemToggled struct {
	Item     string
	Complete bool
}

func (CheckItemToggled) Category() Category { return CategoryChecklist }

// MemberChange is a member added to or removed from a card.
type MemberChange struct {
	Added  bool
	Member string
}

func (MemberChange) Category() Category { return CategoryMember }

// DueDateChange is a due date set, removed, or moved.
type DueDateChange struct {
	Due    string
	OldDue string
}

func (DueDateChange) Category() Category { return CategoryDueDate }

// CardRenamed is a card name change.
type CardRenamed struct {
	OldName string
	NewName string
}

func (CardRenamed) Category() Category { return CategoryRename }

// CommentAdded is a comment posted on a card.
type CommentAdded struct {
	Author string
	Text   string
}

func (CommentAdded) Category() Category { return CategoryComment }

// CardMoved is a card moved between lists or boards.
type CardMoved struct {
	FromList string
	ToList   string
	ToBoard  string
}

func (CardMoved) Category() Category { return CategoryMove }

// Unrecognized is the fallback for action types this engine does not
// notify about.
type Unrecognized struct {
	Type string
}

func (Unrecognized) Category() Category { return CategoryUnknown }

// Classify decodes an action into its change variant.
func Classify(a trello.Action) Change {
	d := a.Data
	switch a.Type {
	case "addLabelToCard", "removeLabelFromCard":
		var label string
		if d.Label != nil {
			label = d.Label.Name
			if label == "" {
				label = d.Label.Color
			}
		}
		return LabelChange{Added: a.Type == "addLabelToCard", Label: label}

	case "addChecklistToCard":
		var name string
		if d.Checklist != nil {
			name = d.Checklist.Name
		}
		return ChecklistAdded{Name: name}

	case "updateCheckItemStateOnCard":
		var item, state string
		if d.CheckItem != nil {
			item = d.CheckItem.Name
			state = d.CheckItem.State
		}
		return CheckItemToggled{Item: item, Complete: state == "complete"}

	case "addMemberToCard", "removeMemberFromCard":
		var member string
		if d.Member != nil {
			member = memberName(*d.Member)
		}
		return MemberChange{Added: a.Type == "addMemberToCard", Member: member}

	case "updateCard":
		return classifyUpdate(d)

	case "commentCard":
		var author string
		if a.MemberCreator != nil {
			author = memberName(*a.MemberCreator)
		}
		return CommentAdded{Author: author, Text: d.Text}

	case "moveCardToBoard":
		var board string
		if d.Board != nil {
			board = d.Board.Name
		}
		return CardMoved{ToBoard: board}

	default:
		return Unrecognized{Type: a.Type}
	}
}

// classifyUpdate splits the overloaded updateCard action into its
// rename, due-date, and list-move variants. An updateCard touching
// none of those is unrecognized.
func classifyUpdate(d trello.ActionData) Change {
	if d.ListBefore != nil && d.ListAfter != nil {
		return CardMoved{FromList: d.ListBefore.Name, ToList: d.ListAfter.Name}
	}
	if d.Old != nil && d.Old.Name != nil && d.Card != nil {
		return CardRenamed{OldName: *d.Old.Name, NewName: d.Card.Name}
	}
	if d.Old != nil && d.Old.Due != nil {
		change := DueDateChange{OldDue: *d.Old.Due}
		if d.Card != nil && d.Card.Due != nil {
			change.Due = *d.Card.Due
		}
		return change
	}
	if d.Card != nil && d.Card.Due != nil && *d.Card.Due != "" {
		// Due set where no previous value was recorded.
		return DueDateChange{Due: *d.Card.Due}
	}
	return Unrecognized{Type: "updateCard"}
}

// CardRef extracts the card an action applies to.
func CardRef(a trello.Action) (id, name string, ok bool) {
	if a.Data.Card == nil || a.Data.Card.ID == "" {
		return "", "", false
	}
	return a.Data.Card.ID, a.Data.Card.Name, true
}

// Allowed reports whether a change's category is configured for
// notification. Renames and moves are unconditional.
func Allowed(ch Change, cfg model.NotifyConfig) bool {
	switch ch.Category() {
	case CategoryLabel:
		return cfg.LabelChanges
	case CategoryChecklist:
		return cfg.ChecklistChanges
	case CategoryMember:
		return cfg.MemberChanges
	case CategoryDueDate:
		return cfg.DueDateChanges
	case CategoryComment:
		return cfg.CommentChanges
	case CategoryRename, CategoryMove:
		return true
	default:
		return false
	}
}

// memberName prefers a member's full name over the username.
func memberName(m trello.ActionMember) string {
	if m.FullName != "" {
		return m.FullName
	}
	return m.Username
}
