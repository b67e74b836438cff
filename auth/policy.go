package auth

// An Action is something a signed-in user can try to do.
type Action int

const (
	ManageProjects Action = iota // create, rename, delete projects
	ManageUsers                  // create users, change privileges
	ViewReviews                  // review list and detail pages
	CreateReview
	AdvanceReview // subject to the workflow rules on top of this check
)

// Can reports whether a privilege level may perform an action.
// Admin may perform everything.
func Can(p Privilege, a Action) bool {
	if p == Admin {
		return true
	}
	switch a {
	case ManageProjects, ManageUsers:
		return false
	case ViewReviews:
		return p == ReadOnly || p == Developer || p == Approver
	case CreateReview, AdvanceReview:
		return p == Developer || p == Approver
	}
	return false
}
