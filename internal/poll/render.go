package poll

import (
	"fmt"
	"time"

	"github.com/nhle/trello-bridge/internal/model"
)

// Embed colors, matching Trello's label palette.
const (
	colorGreen  = 0x61BD4F
	colorRed    = 0xEB5A46
	colorBlue   = 0x0079BF
	colorYellow = 0xF2D600
	colorPurple = 0xC377E0
)

// Render turns a change variant into the notification posted to the
// thread. Returns false for unrecognized changes.
func Render(ch Change, cardName string, at time.Time) (model.Notification, bool) {
	n := model.Notification{
		Footer:    model.FooterMarker,
		Timestamp: at,
	}

	switch c := ch.(type) {
	case LabelChange:
		if c.Added {
			n.Title = "Label added"
			n.Description = fmt.Sprintf("Label **%s** was added to **%s**.", c.Label, cardName)
			n.Color = colorGreen
		} else {
			n.Title = "Label removed"
			n.Description = fmt.Sprintf("Label **%s** was removed from **%s**.", c.Label, cardName)
			n.Color = colorRed
		}

	case ChecklistAdded:
		n.Title = "Checklist added"
		n.Description = fmt.Sprintf("Checklist **%s** was added to **%s**.", c.Name, cardName)
		n.Color = colorGreen

	case CheckItemToggled:
		if c.Complete {
			n.Title = "Checklist item completed"
			n.Description = fmt.Sprintf("**%s** was checked off on **%s**.", c.Item, cardName)
			n.Color = colorGreen
		} else {
			n.Title = "Checklist item reopened"
			n.Description = fmt.Sprintf("**%s** was unchecked on **%s**.", c.Item, cardName)
			n.Color = colorYellow
		}

	case MemberChange:
		if c.Added {
			n.Title = "Member added"
			n.Description = fmt.Sprintf("**%s** was added to **%s**.", c.Member, cardName)
			n.Color = colorGreen
		} else {
			n.Title = "Member removed"
			n.Description = fmt.Sprintf("**%s** was removed from **%s**.", c.Member, cardName)
			n.Color = colorRed
		}

	case DueDateChange:
		switch {
		case c.Due == "":
			n.Title = "Due date removed"
			n.Description = fmt.Sprintf("The due date of **%s** was removed (was %s).", cardName, c.OldDue)
			n.Color = colorRed
		case c.OldDue == "":
			n.Title = "Due date set"
			n.Description = fmt.Sprintf("**%s** is now due %s.", cardName, c.Due)
			n.Color = colorYellow
		default:
			n.Title = "Due date changed"
			n.Description = fmt.Sprintf("**%s** was moved from %s to %s.", cardName, c.OldDue, c.Due)
			n.Color = colorYellow
		}

	case CardRenamed:
		n.Title = "Card renamed"
		n.Description = fmt.Sprintf("**%s** was renamed to **%s**.", c.OldName, c.NewName)
		n.Color = colorBlue

	case CommentAdded:
		n.Title = "New comment"
		n.Description = fmt.Sprintf("**%s** commented on **%s**:\n%s", c.Author, cardName, c.Text)
		n.Color = colorPurple

	case CardMoved:
		n.Title = "Card moved"
		switch {
		case c.ToBoard != "":
			n.Description = fmt.Sprintf("**%s** was moved to board **%s**.", cardName, c.ToBoard)
		default:
			n.Description = fmt.Sprintf("**%s** was moved from **%s** to **%s**.", cardName, c.FromList, c.ToList)
		}
		n.Color = colorBlue

	default:
		return model.Notification{}, false
	}

	return n, true
}
