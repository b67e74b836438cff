package core

import (
	"errors"
	"fmt"

	"github.com/wansing/pawprint/auth"
)

var ErrNoHistory = errors.New("review has no status history")

// A StatusOption says, for one status, whether the acting user may move a
// review there right now. The review detail page renders one button per
// option.
type StatusOption struct {
	Status  Status
	Enabled bool
}

// StatusOptions computes the selectable statuses for a privilege level.
// The result depends on whether the review has ever been approved, not
// merely on its latest status, so callers must derive previouslyApproved
// from the full history.
func StatusOptions(p auth.Privilege, previouslyApproved bool) []StatusOption {
	var enabled = enabledStatuses(p, previouslyApproved)
	var options = make([]StatusOption, 0, len(statusItems))
	for _, item := range statusItems {
		options = append(options, StatusOption{
			Status:  item.Value,
			Enabled: enabled[item.Value],
		})
	}
	return options
}

func enabledStatuses(p auth.Privilege, previouslyApproved bool) map[Status]bool {
	switch p {
	case auth.Admin:
		var all = make(map[Status]bool)
		for _, item := range statusItems {
			all[item.Value] = true
		}
		return all
	case auth.Approver:
		var enabled = map[Status]bool{
			StatusCorrections: true,
			StatusClosed:      true,
		}
		if previouslyApproved {
			enabled[StatusComplete] = true
		} else {
			enabled[StatusApproved] = true
		}
		return enabled
	case auth.Developer:
		if previouslyApproved {
			return map[Status]bool{StatusConfirm: true}
		}
		return map[Status]bool{StatusReview: true}
	}
	return nil
}

// PreviouslyApproved reports whether any event in the history has status
// approved.
func PreviouslyApproved(history []DBStatusEvent) bool {
	for _, event := range history {
		if event.Status() == StatusApproved {
			return true
		}
	}
	return false
}

// CurrentStatus returns the status of the most recent event. The history
// must be ordered as returned by ReviewDB.GetHistory.
func CurrentStatus(history []DBStatusEvent) (Status, error) {
	if len(history) == 0 {
		return 0, ErrNoHistory
	}
	return history[len(history)-1].Status(), nil
}

// AdvanceStatus validates a requested status change against the workflow
// rules and, if permitted, appends a new event to the review's history.
// Prior events are never touched.
func (c *App) AdvanceStatus(review DBReview, requested Status, actor auth.DBUser, notes string) error {

	switch actor.Privilege() {
	case auth.Developer, auth.Approver, auth.Admin:
	default:
		return fmt.Errorf("%w: %s may not change review statuses", ErrPrivilege, actor.Privilege())
	}

	if !requested.Valid() {
		return fmt.Errorf("%w: unknown status value %d", ErrInvalidInput, int(requested))
	}

	// developers may only ever request review or confirm
	if actor.Privilege() == auth.Developer && (requested == StatusApproved || requested == StatusComplete) {
		return fmt.Errorf("%w: developers may not set %s", ErrPrivilege, requested)
	}

	// admins bypass the enabled-transition check
	if actor.Privilege() != auth.Admin {
		history, err := c.GetHistory(review)
		if err != nil {
			return err
		}
		if !enabledStatuses(actor.Privilege(), PreviouslyApproved(history))[requested] {
			return fmt.Errorf("%w: %s is not available here", ErrTransition, requested)
		}
	}

	return c.AppendStatus(review, requested, actor.Id(), notes)
}

// CreateReview checks privileges and required fields, then stores the
// review along with its initial StatusReview event.
func (c *App) CreateReview(project DBProject, branch, headCommit, baseCommit, ersNumber string, author auth.DBUser, notes string) (DBReview, error) {

	if !auth.Can(author.Privilege(), auth.CreateReview) {
		return nil, fmt.Errorf("%w: %s may not create reviews", ErrPrivilege, author.Privilege())
	}

	if branch == "" {
		return nil, fmt.Errorf("%w: branch is required", ErrInvalidInput)
	}
	if headCommit == "" {
		return nil, fmt.Errorf("%w: head commit is required", ErrInvalidInput)
	}

	return c.InsertReview(project.Id(), branch, headCommit, baseCommit, ersNumber, author.Id(), notes)
}
