package web

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
)

var homeTmpl = tmpl(`<h1>Pawprint</h1>

	<p>Pawprint tracks code reviews on their way through approval.</p>

	{{ if .LoggedIn }}
		<ul>
			{{ if .CanViewReviews }}
				<li><a href="reviews">Reviews</a></li>
			{{ end }}
			<li><a href="projects">Projects</a></li>
			{{ if .CanManageUsers }}
				<li><a href="users">Users</a></li>
			{{ end }}
			<li><a href="account">Your account</a></li>
		</ul>
	{{ else }}
		<p><a href="signin">Sign in</a> to get started.</p>
	{{ end }}`)

func home(w http.ResponseWriter, req *http.Request, r *Route, params httprouter.Params) error {
	return homeTmpl.Execute(w, r)
}
