// Package web contains the HTTP handlers and their inline templates. Each
// handler receives a Route with the signed-in user already resolved; a nil
// user means the request is unauthenticated.
package web

import (
	"errors"
	"html/template"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/wansing/pawprint/auth"
	"github.com/wansing/pawprint/core"
)

// A Route carries everything one handler invocation needs.
type Route struct {
	*core.Request
	Prefix string // with trailing slash
	db     *core.App
}

func (r *Route) Privileges() []auth.PrivilegeItem {
	return auth.PrivilegeItems()
}

func middleware(db *core.App, prefix string, requireSignedIn bool, f func(http.ResponseWriter, *http.Request, *Route, httprouter.Params) error) httprouter.Handle {
	return func(w http.ResponseWriter, req *http.Request, params httprouter.Params) {

		var request = db.NewRequest(w, req)

		var r = &Route{
			Prefix:  prefix + "/",
			Request: request,
			db:      db,
		}
		defer r.Cleanup()

		if requireSignedIn && !r.LoggedIn() {
			r.SeeOther("/signin")
			return
		}

		if err := f(w, req, r, params); err != nil {
			if errors.Is(err, core.ErrNotAuthenticated) {
				r.SeeOther("/signin")
				return
			}
			// probably no template has been executed yet, so execute the error template
			errorTmpl.Execute(w, struct {
				*Route
				Err error
			}{
				Route: r,
				Err:   err,
			})
		}
	}
}

var errorTmpl = tmpl(`
	<div class="alert alert-danger" role="alert">
		{{ .Err }}
	</div>`)

func NewRouter(db *core.App, prefix string) http.Handler {

	var router = httprouter.New()

	var GETAndPOST = func(path string, handle httprouter.Handle) {
		router.GET(path, handle)
		router.POST(path, handle)
	}

	// public
	router.GET("/", middleware(db, prefix, false, home))
	GETAndPOST("/signin", middleware(db, prefix, false, signin))

	// signed-in users
	GETAndPOST("/account", middleware(db, prefix, true, account))
	router.POST("/account/update-email", middleware(db, prefix, true, updateMail))
	router.POST("/account/update-name", middleware(db, prefix, true, updateName))
	router.POST("/account/update-password", middleware(db, prefix, true, updatePassword))
	GETAndPOST("/projects", middleware(db, prefix, true, projects))
	router.POST("/projects/:id/delete", middleware(db, prefix, true, deleteProject))
	router.POST("/projects/:id/rename", middleware(db, prefix, true, renameProject))
	GETAndPOST("/reviews", middleware(db, prefix, true, reviews))
	router.GET("/reviews/:id", middleware(db, prefix, true, review))
	router.POST("/reviews/:id/update", middleware(db, prefix, true, updateReview))
	router.GET("/signout", middleware(db, prefix, true, signout))
	GETAndPOST("/users", middleware(db, prefix, true, users))
	router.POST("/users/:id/priv", middleware(db, prefix, true, userPriv))

	router.ServeFiles("/static/*filepath", http.Dir("static"))

	return router
}

func tmpl(text string) *template.Template {
	t := template.Must(baseTmpl.Clone())
	t = template.Must(t.Parse(`{{ define "content" }}` + text + `{{ end }}`))
	return t
}

var baseTmpl = template.Must(template.New("base").Funcs(
	template.FuncMap{
		"FormatTs": FormatTs,
	},
).Parse(`
<!DOCTYPE html>
<html>
	<head>
		<base href="{{ .Prefix }}">
		<link rel="stylesheet" type="text/css" href="static/bootstrap-4.4.1.min.css">
		<meta charset="utf-8">
		<meta name="viewport" content="width=device-width, initial-scale=1, shrink-to-fit=no">
		<title>Pawprint</title>

		<style>

			body {
				padding-bottom: 1rem;
			}

			h1 {
				font-size: 1.5rem !important;
				margin: 1rem 0 0.7rem !important;
			}

			h2 {
				font-size: 1.3rem !important;
				margin: 0.2rem 0 0.5rem !important;
			}

			table {
				margin-top: 0.5rem;
				border-bottom: 1px solid #dee2e6;
			}

		</style>
	</head>
	<body>

		<nav class="navbar navbar-expand-md bg-light">
			<a class="navbar-brand" href=".">Pawprint</a>
			<ul class="navbar-nav">

				{{ if .LoggedIn }}

					{{ if .CanViewReviews }}
						<li class="nav-item">
							<a class="nav-link" href="reviews">Reviews</a>
						</li>
					{{ end }}

					<li class="nav-item">
						<a class="nav-link" href="projects">Projects</a>
					</li>

					{{ if .CanManageUsers }}
						<li class="nav-item">
							<a class="nav-link" href="users">Users</a>
						</li>
					{{ end }}

					<li class="nav-item">
						<a class="nav-link" href="account">{{ .UserName }}</a>
					</li>

					<li class="nav-item">
						<a class="nav-link" href="signout">Sign out</a>
					</li>

				{{ else }}

					<li class="nav-item">
						<a class="nav-link" href="signin">Sign in</a>
					</li>

				{{ end }}
			</ul>
		</nav>

		<div class="container pt-3">
			{{ .RenderNotifications }}
			{{ template "content" . }}
		</div>
	</body>
</html>`))

// UserName returns the signed-in user's display name for the navbar.
func (r *Route) UserName() string {
	if !r.LoggedIn() {
		return ""
	}
	return auth.Name(r.User)
}

func FormatTs(ts int64) string {
	// ignores the user timezone
	return time.Unix(ts, 0).Format("_2.1.2006 15:04:05")
}
