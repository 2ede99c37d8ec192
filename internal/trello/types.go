package trello

import "time"

// Card is a card resource from the Trello REST API.
type Card struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Desc   string `json:"desc"`
	IDList string `json:"idList"`
}

// Attachment is one attachment on a card.
type Attachment struct {
	ID   string `json:"id"`
	URL  string `json:"url"`
	Name string `json:"name"`
}

// Action is one change action recorded on a board. Actions are
// immutable and totally ordered by (Date, ID).
type Action struct {
	ID   string     `json:"id"`
	Type string     `json:"type"`
	Date time.Time  `json:"date"`
	Data ActionData `json:"data"`

	MemberCreator *ActionMember `json:"memberCreator,omitempty"`
}

// ActionData is the typed payload of an action. Which fields are
// populated depends on the action type; unknown types simply leave
// everything nil.
type ActionData struct {
	Card       *ActionCard      `json:"card,omitempty"`
	Board      *ActionBoard     `json:"board,omitempty"`
	List       *ActionList      `json:"list,omitempty"`
	ListBefore *ActionList      `json:"listBefore,omitempty"`
	ListAfter  *ActionList      `json:"listAfter,omitempty"`
	Label      *ActionLabel     `json:"label,omitempty"`
	Member     *ActionMember    `json:"member,omitempty"`
	Checklist  *ActionChecklist `json:"checklist,omitempty"`
	CheckItem  *ActionCheckItem `json:"checkItem,omitempty"`
	Old        *ActionOld       `json:"old,omitempty"`
	Text       string           `json:"text,omitempty"`
}

// ActionCard references the card an action applies to.
type ActionCard struct {
	ID   string  `json:"id"`
	Name string  `json:"name"`
	Due  *string `json:"due,omitempty"`
}

// ActionBoard references a board in an action payload.
type ActionBoard struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ActionList references a list in an action payload.
type ActionList struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ActionLabel references a label in an action payload.
type ActionLabel struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// ActionMember references a member in an action payload.
type ActionMember struct {
	ID       string `json:"id"`
	FullName string `json:"fullName"`
	Username string `json:"username"`
}

// ActionChecklist references a checklist in an action payload.
type ActionChecklist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ActionCheckItem references a checklist item in an action payload.
type ActionCheckItem struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	State string `json:"state"`
}

// ActionOld holds the previous values of fields changed by an
// updateCard action. Pointers distinguish "was empty" from "absent".
type ActionOld struct {
	Name *string `json:"name,omitempty"`
	Due  *string `json:"due,omitempty"`
	Desc *string `json:"desc,omitempty"`
}

// ErrorResponse is the error body Trello returns on rejected requests.
type ErrorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}
