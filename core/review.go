package core

// A DBReview is a tracked code-change ticket. Its fields are immutable
// after creation, all progress is recorded in its status history.
type DBReview interface {
	Id() int
	ProjectId() int
	Branch() string
	HeadCommit() string
	BaseCommit() string
	ErsNumber() string // external tracking reference
	AuthorId() int
	Created() int64 // unix timestamp
}

// A DBStatusEvent is one immutable entry of a review's append-only status
// history.
type DBStatusEvent interface {
	Id() int
	ReviewId() int
	Status() Status
	ActorId() int
	Ts() int64 // unix timestamp
	Notes() string
}

type ReviewDB interface {
	AppendStatus(r DBReview, s Status, actorId int, notes string) error
	GetAllReviews(limit, offset int) ([]DBReview, error)
	GetHistory(r DBReview) ([]DBStatusEvent, error) // ascending by timestamp, ties by insertion order
	GetReview(id int) (DBReview, error)
	// InsertReview stores the review and seeds its history with a single
	// StatusReview event by the author, in one transaction.
	InsertReview(projectId int, branch, headCommit, baseCommit, ersNumber string, authorId int, notes string) (DBReview, error)
	Writeable() bool
}
