package web

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
)

func signout(w http.ResponseWriter, req *http.Request, r *Route, params httprouter.Params) error {
	r.Logout()
	r.Success("Goodbye")
	r.SeeOther("/signin")
	return nil
}
