package core_test

import (
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wansing/pawprint/auth"
	"github.com/wansing/pawprint/core"
	"github.com/wansing/pawprint/sqldb"
)

func openTestApp(t *testing.T) *core.App {
	t.Helper()

	db, err := sql.Open("sqlite3", filepath.Join(t.TempDir(), "test.sqlite3"))
	require.NoError(t, err)
	t.Cleanup(func() {
		db.Close()
	})

	return &core.App{
		Auth:      &auth.AuthDB{UserDB: sqldb.NewUserDB(db)},
		ProjectDB: sqldb.NewProjectDB(db),
		ReviewDB:  sqldb.NewReviewDB(db),
		SqlDB:     db,
	}
}

func insertUser(t *testing.T, app *core.App, first, mail string, p auth.Privilege) auth.DBUser {
	t.Helper()
	u, err := app.Auth.InsertUser(first, "Tester", mail, p)
	require.NoError(t, err)
	return u
}

// The full walk of a review through the workflow.
func TestWorkflowScenario(t *testing.T) {

	app := openTestApp(t)

	project, err := app.InsertProject("core")
	require.NoError(t, err)

	dev := insertUser(t, app, "Dana", "dev@example.com", auth.Developer)
	approver := insertUser(t, app, "Alex", "approver@example.com", auth.Approver)
	admin := insertUser(t, app, "Root", "admin@example.com", auth.Admin)
	reader := insertUser(t, app, "Rita", "reader@example.com", auth.ReadOnly)

	// the developer creates a review, which seeds the history
	review, err := app.CreateReview(project, "feature/login", "abc123", "def456", "ERS-7", dev, "please review")
	require.NoError(t, err)

	history, err := app.GetHistory(review)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, core.StatusReview, history[0].Status())
	assert.False(t, core.PreviouslyApproved(history))

	// read-only users may not touch the workflow at all
	err = app.AdvanceStatus(review, core.StatusCorrections, reader, "")
	assert.True(t, errors.Is(err, core.ErrPrivilege))

	// developers may never set approved
	err = app.AdvanceStatus(review, core.StatusApproved, dev, "")
	assert.True(t, errors.Is(err, core.ErrPrivilege))

	// before approval, the developer may not confirm
	err = app.AdvanceStatus(review, core.StatusConfirm, dev, "")
	assert.True(t, errors.Is(err, core.ErrTransition))

	// the approver approves
	require.NoError(t, app.AdvanceStatus(review, core.StatusApproved, approver, "lgtm"))

	history, err = app.GetHistory(review)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.True(t, core.PreviouslyApproved(history))

	// now the developer may only confirm
	err = app.AdvanceStatus(review, core.StatusReview, dev, "")
	assert.True(t, errors.Is(err, core.ErrTransition))
	err = app.AdvanceStatus(review, core.StatusComplete, dev, "")
	assert.True(t, errors.Is(err, core.ErrPrivilege))
	require.NoError(t, app.AdvanceStatus(review, core.StatusConfirm, dev, "merged"))

	// the approver is offered complete instead of a second approval
	err = app.AdvanceStatus(review, core.StatusApproved, approver, "")
	assert.True(t, errors.Is(err, core.ErrTransition))
	require.NoError(t, app.AdvanceStatus(review, core.StatusComplete, approver, "all good"))

	// failed advances left no trace
	history, err = app.GetHistory(review)
	require.NoError(t, err)
	require.Len(t, history, 4)

	current, err := core.CurrentStatus(history)
	require.NoError(t, err)
	assert.Equal(t, core.StatusComplete, current)

	// the admin bypasses the workflow rules entirely
	require.NoError(t, app.AdvanceStatus(review, core.StatusReview, admin, "reopening"))
	current, err = core.CurrentStatus(mustHistory(t, app, review))
	require.NoError(t, err)
	assert.Equal(t, core.StatusReview, current)
}

func mustHistory(t *testing.T, app *core.App, review core.DBReview) []core.DBStatusEvent {
	t.Helper()
	history, err := app.GetHistory(review)
	require.NoError(t, err)
	return history
}

func TestCreateReviewValidation(t *testing.T) {

	app := openTestApp(t)

	project, err := app.InsertProject("core")
	require.NoError(t, err)

	dev := insertUser(t, app, "Dana", "dev@example.com", auth.Developer)
	reader := insertUser(t, app, "Rita", "reader@example.com", auth.ReadOnly)

	_, err = app.CreateReview(project, "feature/x", "abc", "", "", reader, "")
	assert.True(t, errors.Is(err, core.ErrPrivilege))

	_, err = app.CreateReview(project, "", "abc", "", "", dev, "")
	assert.True(t, errors.Is(err, core.ErrInvalidInput))

	_, err = app.CreateReview(project, "feature/x", "", "", "", dev, "")
	assert.True(t, errors.Is(err, core.ErrInvalidInput))

	created, err := app.CreateReview(project, "feature/x", "abc", "def", "ERS-1", dev, "")
	require.NoError(t, err)
	assert.Equal(t, dev.Id(), created.AuthorId())
}

func TestBootstrap(t *testing.T) {

	app := openTestApp(t)

	require.NoError(t, app.Bootstrap())

	admin, err := app.Auth.LoginUser(core.BootstrapMail, core.BootstrapPassword)
	require.NoError(t, err)
	assert.Equal(t, auth.Admin, admin.Privilege())

	// a second bootstrap must not create another account
	require.NoError(t, app.Bootstrap())
	count, err := app.Auth.CountUsers()
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
