package sqldb_test

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

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", filepath.Join(t.TempDir(), "test.sqlite3"))
	require.NoError(t, err)
	t.Cleanup(func() {
		db.Close()
	})
	return db
}

func TestUserDB(t *testing.T) {

	db := openTestDB(t)
	userDB := sqldb.NewUserDB(db)

	count, err := userDB.CountUsers()
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	u, err := userDB.InsertUser("Dana", "Developer", "Dana@Example.com ", auth.Developer)
	require.NoError(t, err)
	assert.Equal(t, "dana@example.com", u.Mail()) // cleaned
	assert.Equal(t, auth.Developer, u.Privilege())

	require.NoError(t, userDB.SetPassword(u, "hunter2"))

	// no password is never a valid password
	_, err = userDB.LoginUser("dana@example.com", "")
	assert.True(t, errors.Is(err, core.ErrCredentials))

	// wrong passwords fail and, even repeated, don't lock the account
	for i := 0; i < 3; i++ {
		_, err = userDB.LoginUser("dana@example.com", "wrong")
		assert.True(t, errors.Is(err, core.ErrCredentials))
	}

	loggedIn, err := userDB.LoginUser("dana@example.com", "hunter2")
	require.NoError(t, err)
	assert.Equal(t, u.Id(), loggedIn.Id())

	// unknown user is indistinguishable from wrong password
	_, err = userDB.LoginUser("nobody@example.com", "hunter2")
	assert.True(t, errors.Is(err, core.ErrCredentials))

	// duplicate mail fails with conflict and writes nothing
	_, err = userDB.InsertUser("Other", "Person", "dana@example.com", auth.None)
	assert.True(t, errors.Is(err, core.ErrConflict))
	count, err = userDB.CountUsers()
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	// change password verifies the old one
	err = userDB.ChangePassword(loggedIn, "wrong", "newpass")
	assert.True(t, errors.Is(err, core.ErrCredentials))
	require.NoError(t, userDB.ChangePassword(loggedIn, "hunter2", "newpass"))
	_, err = userDB.LoginUser("dana@example.com", "newpass")
	assert.NoError(t, err)

	// privilege change
	require.NoError(t, userDB.SetPrivilege(u, auth.Approver))
	got, err := userDB.GetUser(u.Id())
	require.NoError(t, err)
	assert.Equal(t, auth.Approver, got.Privilege())
	assert.True(t, errors.Is(userDB.SetPrivilege(u, auth.Privilege(42)), core.ErrInvalidInput))

	// mail change checks uniqueness against other users only
	_, err = userDB.InsertUser("Second", "User", "second@example.com", auth.None)
	require.NoError(t, err)
	assert.True(t, errors.Is(userDB.SetMail(u, "second@example.com"), core.ErrConflict))
	require.NoError(t, userDB.SetMail(u, "dana@example.com")) // unchanged mail is fine

	_, err = userDB.GetUser(12345)
	assert.True(t, errors.Is(err, core.ErrNotFound))
}

func TestProjectDB(t *testing.T) {

	db := openTestDB(t)
	projectDB := sqldb.NewProjectDB(db)
	reviewDB := sqldb.NewReviewDB(db) // DeleteProject counts reviews

	p, err := projectDB.InsertProject(" core ")
	require.NoError(t, err)
	assert.Equal(t, "core", p.Name()) // trimmed

	// duplicate name fails with conflict and writes nothing
	_, err = projectDB.InsertProject("core")
	assert.True(t, errors.Is(err, core.ErrConflict))
	all, err := projectDB.GetAllProjects(100, 0)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	other, err := projectDB.InsertProject("other")
	require.NoError(t, err)

	// rename
	assert.True(t, errors.Is(projectDB.RenameProject(other, "core"), core.ErrConflict))
	require.NoError(t, projectDB.RenameProject(other, "renamed"))
	got, err := projectDB.GetProject(other.Id())
	require.NoError(t, err)
	assert.Equal(t, "renamed", got.Name())

	// deleting a project with reviews is rejected
	_, err = reviewDB.InsertReview(p.Id(), "feature/login", "abc123", "def456", "ERS-1", 1, "")
	require.NoError(t, err)
	assert.True(t, errors.Is(projectDB.DeleteProject(p), core.ErrConflict))
	_, err = projectDB.GetProject(p.Id())
	assert.NoError(t, err)

	// a project without reviews can go
	require.NoError(t, projectDB.DeleteProject(other))
	_, err = projectDB.GetProject(other.Id())
	assert.True(t, errors.Is(err, core.ErrNotFound))
}

func TestReviewDB(t *testing.T) {

	db := openTestDB(t)
	reviewDB := sqldb.NewReviewDB(db)

	r, err := reviewDB.InsertReview(1, "feature/login", "abc123", "def456", "ERS-7", 2, "first draft")
	require.NoError(t, err)
	assert.Equal(t, "feature/login", r.Branch())
	assert.Equal(t, "ERS-7", r.ErsNumber())

	// creation seeds exactly one event with status review
	history, err := reviewDB.GetHistory(r)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, core.StatusReview, history[0].Status())
	assert.Equal(t, 2, history[0].ActorId())
	assert.Equal(t, "first draft", history[0].Notes())

	// appending preserves order, current status is the latest event
	require.NoError(t, reviewDB.AppendStatus(r, core.StatusApproved, 3, "lgtm"))
	require.NoError(t, reviewDB.AppendStatus(r, core.StatusConfirm, 2, ""))

	history, err = reviewDB.GetHistory(r)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, core.StatusReview, history[0].Status())
	assert.Equal(t, core.StatusApproved, history[1].Status())
	assert.Equal(t, core.StatusConfirm, history[2].Status())

	current, err := core.CurrentStatus(history)
	require.NoError(t, err)
	assert.Equal(t, core.StatusConfirm, current)

	_, err = reviewDB.GetReview(12345)
	assert.True(t, errors.Is(err, core.ErrNotFound))
}
