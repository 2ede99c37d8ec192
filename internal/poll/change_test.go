package poll

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/trello-bridge/internal/model"
	"github.com/nhle/trello-bridge/internal/trello"
)

func strPtr(s string) *string { return &s }

func TestClassifyRecognizedTypes(t *testing.T) {
	tests := []struct {
		name   string
		action trello.Action
		want   Change
	}{
		{
			name: "label added",
			action: trello.Action{
				Type: "addLabelToCard",
				Data: trello.ActionData{Label: &trello.ActionLabel{Name: "bugs"}},
			},
			want: LabelChange{Added: true, Label: "bugs"},
		},
		{
			name: "label removed falls back to color",
			action: trello.Action{
				Type: "removeLabelFromCard",
				Data: trello.ActionData{Label: &trello.ActionLabel{Color: "green"}},
			},
			want: LabelChange{Added: false, Label: "green"},
		},
		{
			name: "checklist added",
			action: trello.Action{
				Type: "addChecklistToCard",
				Data: trello.ActionData{Checklist: &trello.ActionChecklist{Name: "Steps"}},
			},
			want: ChecklistAdded{Name: "Steps"},
		},
		{
			name: "check item completed",
			action: trello.Action{
				Type: "updateCheckItemStateOnCard",
				Data: trello.ActionData{CheckItem: &trello.ActionCheckItem{Name: "ship it", State: "complete"}},
			},
			want: CheckItemToggled{Item: "ship it", Complete: true},
		},
		{
			name: "member added",
			action: trello.Action{
				Type: "addMemberToCard",
				Data: trello.ActionData{Member: &trello.ActionMember{FullName: "Ana"}},
			},
			want: MemberChange{Added: true, Member: "Ana"},
		},
		{
			name: "rename",
			action: trello.Action{
				Type: "updateCard",
				Data: trello.ActionData{
					Card: &trello.ActionCard{Name: "Bug 42 (fixed)"},
					Old:  &trello.ActionOld{Name: strPtr("Bug 42")},
				},
			},
			want: CardRenamed{OldName: "Bug 42", NewName: "Bug 42 (fixed)"},
		},
		{
			name: "due date set",
			action: trello.Action{
				Type: "updateCard",
				Data: trello.ActionData{
					Card: &trello.ActionCard{Due: strPtr("2026-02-01")},
					Old:  &trello.ActionOld{Due: strPtr("")},
				},
			},
			want: DueDateChange{Due: "2026-02-01", OldDue: ""},
		},
		{
			name: "list move",
			action: trello.Action{
				Type: "updateCard",
				Data: trello.ActionData{
					ListBefore: &trello.ActionList{Name: "Doing"},
					ListAfter:  &trello.ActionList{Name: "Done"},
				},
			},
			want: CardMoved{FromList: "Doing", ToList: "Done"},
		},
		{
			name: "comment",
			action: trello.Action{
				Type:          "commentCard",
				Data:          trello.ActionData{Text: "looks good"},
				MemberCreator: &trello.ActionMember{Username: "ana"},
			},
			want: CommentAdded{Author: "ana", Text: "looks good"},
		},
		{
			name:   "unknown type",
			action: trello.Action{Type: "addAttachmentToCard"},
			want:   Unrecognized{Type: "addAttachmentToCard"},
		},
		{
			name: "updateCard touching nothing recognized",
			action: trello.Action{
				Type: "updateCard",
				Data: trello.ActionData{Card: &trello.ActionCard{Name: "x"}},
			},
			want: Unrecognized{Type: "updateCard"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.action))
		})
	}
}

func TestAllowedGating(t *testing.T) {
	cfg := model.NotifyConfig{LabelChanges: false, CommentChanges: true}

	assert.False(t, Allowed(LabelChange{}, cfg))
	assert.True(t, Allowed(CommentAdded{}, cfg))
	assert.False(t, Allowed(Unrecognized{}, cfg))

	// Renames and moves are unconditional.
	assert.True(t, Allowed(CardRenamed{}, model.NotifyConfig{}))
	assert.True(t, Allowed(CardMoved{}, model.NotifyConfig{}))
}

func TestRenderCarriesFooterMarker(t *testing.T) {
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	n, ok := Render(LabelChange{Added: true, Label: "bugs"}, "Bug 42", at)
	require.True(t, ok)
	assert.Equal(t, "Label added", n.Title)
	assert.Contains(t, n.Description, "bugs")
	assert.Equal(t, model.FooterMarker, n.Footer)
	assert.Equal(t, at, n.Timestamp)

	_, ok = Render(Unrecognized{Type: "x"}, "Bug 42", at)
	assert.False(t, ok)
}
