package core

import "fmt"

// A Status is one step of the fixed review workflow.
type Status int

const (
	StatusReview      Status = 1 // initial, awaiting approver action
	StatusCorrections Status = 2 // approver has feedback for changes
	StatusClosed      Status = 3 // abandoned, terminal
	StatusApproved    Status = 4 // changes may be merged
	StatusConfirm     Status = 5 // developer confirms the merge is done
	StatusComplete    Status = 6 // approver confirms nothing is missing, terminal
)

func (s Status) String() string {
	switch s {
	case StatusReview:
		return "review"
	case StatusCorrections:
		return "corrections"
	case StatusClosed:
		return "closed"
	case StatusApproved:
		return "approved"
	case StatusConfirm:
		return "confirm"
	case StatusComplete:
		return "complete"
	}
	return "unknown"
}

func (s Status) Valid() bool {
	return s >= StatusReview && s <= StatusComplete
}

// Terminal reports whether no further work is expected after this status.
func (s Status) Terminal() bool {
	return s == StatusClosed || s == StatusComplete
}

type StatusItem struct {
	Name  string
	Value Status
}

var statusItems = []StatusItem{
	{"review", StatusReview},
	{"corrections", StatusCorrections},
	{"closed", StatusClosed},
	{"approved", StatusApproved},
	{"confirm", StatusConfirm},
	{"complete", StatusComplete},
}

// StatusItems returns all workflow statuses in ascending order.
func StatusItems() []StatusItem {
	return statusItems
}

// ParseStatus converts a submitted numeric value into a Status.
func ParseStatus(value int) (Status, error) {
	var s = Status(value)
	if !s.Valid() {
		return 0, fmt.Errorf("%w: unknown status value %d", ErrInvalidInput, value)
	}
	return s, nil
}
