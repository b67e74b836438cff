package web_test

import (
	"database/sql"
	"io/ioutil"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wansing/pawprint/auth"
	"github.com/wansing/pawprint/core"
	"github.com/wansing/pawprint/sqldb"
	"github.com/wansing/pawprint/sqldb/sqlite3"
	"github.com/wansing/pawprint/web"
)

func newTestServer(t *testing.T) (*httptest.Server, *core.App) {
	t.Helper()

	db, err := sql.Open("sqlite3", filepath.Join(t.TempDir(), "test.sqlite3"))
	require.NoError(t, err)
	t.Cleanup(func() {
		db.Close()
	})

	app := &core.App{
		Auth:      &auth.AuthDB{UserDB: sqldb.NewUserDB(db)},
		ProjectDB: sqldb.NewProjectDB(db),
		ReviewDB:  sqldb.NewReviewDB(db),
		SqlDB:     db,
	}
	app.Init(sqlite3.NewSessionStore(db), "")
	require.NoError(t, app.Bootstrap())

	srv := httptest.NewServer(app.SessionManager.LoadAndSave(web.NewRouter(app, "")))
	t.Cleanup(srv.Close)
	return srv, app
}

func newTestClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse // assert on redirects instead of following them
		},
	}
}

func body(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	b, err := ioutil.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

func signin(t *testing.T, client *http.Client, srv *httptest.Server, email, password string) *http.Response {
	t.Helper()
	resp, err := client.PostForm(srv.URL+"/signin", url.Values{
		"email":    {email},
		"password": {password},
	})
	require.NoError(t, err)
	return resp
}

func TestSignInRequired(t *testing.T) {

	srv, _ := newTestServer(t)
	client := newTestClient(t)

	for _, path := range []string{"/reviews", "/projects", "/users", "/account"} {
		resp, err := client.Get(srv.URL + path)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusSeeOther, resp.StatusCode, path)
		assert.Equal(t, "/signin", resp.Header.Get("Location"), path)
	}

	// the landing page is public
	resp, err := client.Get(srv.URL + "/")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body(t, resp), "Sign in")
}

func TestSignInAndOut(t *testing.T) {

	srv, _ := newTestServer(t)
	client := newTestClient(t)

	// wrong password renders the form again
	resp := signin(t, client, srv, core.BootstrapMail, "wrong")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body(t, resp), "Sign in")

	// the bootstrap admin can sign in
	resp = signin(t, client, srv, core.BootstrapMail, core.BootstrapPassword)
	resp.Body.Close()
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))

	// and sees the admin pages
	resp, err := client.Get(srv.URL + "/users")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body(t, resp), core.BootstrapMail)

	// sign out kills the session
	resp, err = client.Get(srv.URL + "/signout")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)

	resp, err = client.Get(srv.URL + "/users")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/signin", resp.Header.Get("Location"))
}

func TestPrivilegeGates(t *testing.T) {

	srv, app := newTestServer(t)

	reader, err := app.Auth.InsertUser("Rita", "Reader", "reader@example.com", auth.ReadOnly)
	require.NoError(t, err)
	require.NoError(t, app.Auth.SetPassword(reader, "secret"))

	client := newTestClient(t)
	resp := signin(t, client, srv, "reader@example.com", "secret")
	resp.Body.Close()
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	// read-only users may list reviews
	resp, err = client.Get(srv.URL + "/reviews")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotContains(t, body(t, resp), "Create Review")

	// but they may not create projects
	resp, err = client.PostForm(srv.URL+"/projects", url.Values{"name": {"sneaky"}})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode) // error page
	assert.Contains(t, body(t, resp), "insufficient privileges")

	all, err := app.GetAllProjects(100, 0)
	require.NoError(t, err)
	assert.Empty(t, all) // nothing was written
}

func TestReviewPages(t *testing.T) {

	srv, app := newTestServer(t)

	project, err := app.InsertProject("core")
	require.NoError(t, err)

	dev, err := app.Auth.InsertUser("Dana", "Developer", "dev@example.com", auth.Developer)
	require.NoError(t, err)
	require.NoError(t, app.Auth.SetPassword(dev, "secret"))

	client := newTestClient(t)
	resp := signin(t, client, srv, "dev@example.com", "secret")
	resp.Body.Close()
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	// create a review through the form
	resp, err = client.PostForm(srv.URL+"/reviews", url.Values{
		"project": {strconv.Itoa(project.Id())},
		"branch":  {"feature/login"},
		"head":    {"abc123"},
		"base":    {"def456"},
		"ers":     {"ERS-7"},
		"notes":   {"please *review*"},
	})
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	location := resp.Header.Get("Location")
	require.True(t, strings.HasPrefix(location, "/reviews/"))

	// the detail page shows the history and the developer's single enabled button
	resp, err = client.Get(srv.URL + location)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	detail := body(t, resp)
	assert.Contains(t, detail, "feature/login")
	assert.Contains(t, detail, "ERS-7")
	assert.Contains(t, detail, "<em>review</em>") // markdown notes are rendered

	// an invalid transition is rejected without touching the history
	resp, err = client.PostForm(srv.URL+location+"/update", url.Values{
		"status": {"4"}, // approved
		"notes":  {""},
	})
	require.NoError(t, err)
	assert.Contains(t, body(t, resp), "insufficient privileges")

	reviewId, err := strconv.Atoi(strings.TrimPrefix(location, "/reviews/"))
	require.NoError(t, err)
	review, err := app.GetReview(reviewId)
	require.NoError(t, err)
	history, err := app.GetHistory(review)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}
