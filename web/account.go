package web

import (
	"errors"
	"net/http"

	"github.com/julienschmidt/httprouter"
)

var accountTmpl = tmpl(`<h1>Your account</h1>

	<p>Signed in as {{ .UserName }} ({{ .User.Mail }}), privilege: {{ .User.Privilege }}.</p>

	<h2>Change Name</h2>

	<form method="post" action="account/update-name">
		<div class="form-group row">
			<label class="col-sm-3 col-form-label">First name</label>
			<div class="col-sm-9">
				<input class="form-control" name="firstname" value="{{ .User.FirstName }}">
			</div>
		</div>
		<div class="form-group row">
			<label class="col-sm-3 col-form-label">Last name</label>
			<div class="col-sm-9">
				<input class="form-control" name="lastname" value="{{ .User.LastName }}">
			</div>
		</div>
		<button type="submit" class="btn btn-primary">Change name</button>
	</form>

	<h2>Change E-Mail</h2>

	<form method="post" action="account/update-email">
		<div class="form-group row">
			<label class="col-sm-3 col-form-label">E-Mail</label>
			<div class="col-sm-9">
				<input type="email" class="form-control" name="email" value="{{ .User.Mail }}">
			</div>
		</div>
		<button type="submit" class="btn btn-primary">Change email</button>
	</form>

	<h2>Change Password</h2>

	<form method="post" action="account/update-password">
		<div class="form-group row">
			<label class="col-sm-3 col-form-label">Current password</label>
			<div class="col-sm-9">
				<input type="password" class="form-control" name="old">
			</div>
		</div>
		<div class="form-group row">
			<label class="col-sm-3 col-form-label">New password</label>
			<div class="col-sm-9">
				<input type="password" class="form-control" name="new1">
			</div>
		</div>
		<div class="form-group row">
			<label class="col-sm-3 col-form-label">Repeat new password</label>
			<div class="col-sm-9">
				<input type="password" class="form-control" name="new2">
			</div>
		</div>
		<button type="submit" class="btn btn-primary">Change password</button>
	</form>`)

func account(w http.ResponseWriter, req *http.Request, r *Route, params httprouter.Params) error {
	return accountTmpl.Execute(w, r)
}

func updateName(w http.ResponseWriter, req *http.Request, r *Route, params httprouter.Params) error {

	if err := r.db.Auth.SetName(r.User, req.PostFormValue("firstname"), req.PostFormValue("lastname")); err != nil {
		return err
	}

	r.Success("your name has been changed")
	r.SeeOther("/account")
	return nil
}

func updateMail(w http.ResponseWriter, req *http.Request, r *Route, params httprouter.Params) error {

	if err := r.db.Auth.SetMail(r.User, req.PostFormValue("email")); err != nil {
		return err
	}

	r.Success("your email address has been changed")
	r.SeeOther("/account")
	return nil
}

func updatePassword(w http.ResponseWriter, req *http.Request, r *Route, params httprouter.Params) error {

	var new1 = req.PostFormValue("new1")
	var new2 = req.PostFormValue("new2")

	if new1 != new2 {
		return errors.New("new passwords don't match")
	}

	// the current password is verified by ChangePassword
	if err := r.db.Auth.ChangePassword(r.User, req.PostFormValue("old"), new1); err != nil {
		return err
	}

	r.Success("your password has been changed")
	r.SeeOther("/account")
	return nil
}
