package sqldb

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/wansing/pawprint/core"
)

type review struct {
	id         int
	projectId  int
	branch     string
	headCommit string
	baseCommit string
	ersNumber  string
	authorId   int
	created    int64
}

func (r *review) Id() int            { return r.id }
func (r *review) ProjectId() int     { return r.projectId }
func (r *review) Branch() string     { return r.branch }
func (r *review) HeadCommit() string { return r.headCommit }
func (r *review) BaseCommit() string { return r.baseCommit }
func (r *review) ErsNumber() string  { return r.ersNumber }
func (r *review) AuthorId() int      { return r.authorId }
func (r *review) Created() int64     { return r.created }

type statusEvent struct {
	id       int
	reviewId int
	status   core.Status
	actorId  int
	ts       int64
	notes    string
}

func (e *statusEvent) Id() int             { return e.id }
func (e *statusEvent) ReviewId() int       { return e.reviewId }
func (e *statusEvent) Status() core.Status { return e.status }
func (e *statusEvent) ActorId() int        { return e.actorId }
func (e *statusEvent) Ts() int64           { return e.ts }
func (e *statusEvent) Notes() string       { return e.notes }

type ReviewDB struct {
	*sql.DB
	appendEvent *sql.Stmt
	get         *sql.Stmt
	getAll      *sql.Stmt
	history     *sql.Stmt
}

func NewReviewDB(db *sql.DB) *ReviewDB {

	db.Exec(
		`CREATE TABLE IF NOT EXISTS review (
			id INTEGER PRIMARY KEY,
			project int(11) NOT NULL,
			branch varchar(64) NOT NULL,
			headCommit varchar(64) NOT NULL,
			baseCommit varchar(64) NOT NULL,
			ersNumber varchar(32) NOT NULL,
			author int(11) NOT NULL,
			created int(11) NOT NULL
		);`)

	db.Exec(
		`CREATE TABLE IF NOT EXISTS status (
			id INTEGER PRIMARY KEY,
			review int(11) NOT NULL,
			status int(11) NOT NULL,
			actor int(11) NOT NULL,
			ts int(11) NOT NULL,
			notes text NOT NULL
		);`)

	var reviewDB = &ReviewDB{}
	reviewDB.DB = db
	reviewDB.appendEvent = mustPrepare(db, "INSERT INTO status (review, status, actor, ts, notes) VALUES (?, ?, ?, ?, ?)")
	reviewDB.get = mustPrepare(db, "SELECT project, branch, headCommit, baseCommit, ersNumber, author, created FROM review WHERE id = ? LIMIT 1")
	reviewDB.getAll = mustPrepare(db, "SELECT id, project, branch, headCommit, baseCommit, ersNumber, author, created FROM review ORDER BY id DESC LIMIT ? OFFSET ?")
	reviewDB.history = mustPrepare(db, "SELECT id, status, actor, ts, notes FROM status WHERE review = ? ORDER BY ts, id")
	return reviewDB
}

func (db *ReviewDB) Writeable() bool {
	return true
}

// AppendStatus adds one event to the history. Existing events are never
// modified.
func (db *ReviewDB) AppendStatus(r core.DBReview, s core.Status, actorId int, notes string) error {
	_, err := db.appendEvent.Exec(r.Id(), int(s), actorId, time.Now().Unix(), notes)
	return err
}

func (db *ReviewDB) GetReview(id int) (core.DBReview, error) {
	var r = &review{
		id: id,
	}
	err := db.get.QueryRow(id).Scan(&r.projectId, &r.branch, &r.headCommit, &r.baseCommit, &r.ersNumber, &r.authorId, &r.created)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: review %d", core.ErrNotFound, id)
	}
	return r, err
}

func (db *ReviewDB) GetAllReviews(limit, offset int) ([]core.DBReview, error) {

	rows, err := db.getAll.Query(limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var all = []core.DBReview{}

	for rows.Next() {
		var r = &review{}
		err = rows.Scan(&r.id, &r.projectId, &r.branch, &r.headCommit, &r.baseCommit, &r.ersNumber, &r.authorId, &r.created)
		if err != nil {
			return nil, err
		}
		all = append(all, r)
	}

	return all, nil
}

// GetHistory returns the review's status events, oldest first. Ties on the
// timestamp are broken by insertion order.
func (db *ReviewDB) GetHistory(r core.DBReview) ([]core.DBStatusEvent, error) {

	rows, err := db.history.Query(r.Id())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var history = []core.DBStatusEvent{}

	for rows.Next() {
		var e = &statusEvent{
			reviewId: r.Id(),
		}
		err = rows.Scan(&e.id, &e.status, &e.actorId, &e.ts, &e.notes)
		if err != nil {
			return nil, err
		}
		history = append(history, e)
	}

	return history, nil
}

// InsertReview stores the review and its initial StatusReview event in one
// transaction, so a review never exists without a history.
func (db *ReviewDB) InsertReview(projectId int, branch, headCommit, baseCommit, ersNumber string, authorId int, notes string) (core.DBReview, error) {

	tx, err := db.Begin()
	if err != nil {
		return nil, err
	}

	var now = time.Now().Unix()

	res, err := tx.Exec("INSERT INTO review (project, branch, headCommit, baseCommit, ersNumber, author, created) VALUES (?, ?, ?, ?, ?, ?, ?)",
		projectId, branch, headCommit, baseCommit, ersNumber, authorId, now)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	id, err := res.LastInsertId()
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	_, err = tx.Stmt(db.appendEvent).Exec(id, int(core.StatusReview), authorId, now, notes)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return &review{
		id:         int(id),
		projectId:  projectId,
		branch:     branch,
		headCommit: headCommit,
		baseCommit: baseCommit,
		ersNumber:  ersNumber,
		authorId:   authorId,
		created:    now,
	}, nil
}
