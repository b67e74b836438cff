package web

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"
	"github.com/wansing/pawprint/auth"
	"github.com/wansing/pawprint/core"
)

var usersTmpl = tmpl(`<h1>Users</h1>

	<table class="table table-sm">
		<thead>
			<tr>
				<th>Name</th>
				<th>E-Mail</th>
				<th>Created</th>
				<th>Privilege</th>
			</tr>
		</thead>
		<tbody>
			{{ range .Users }}
				<tr>
					<td>{{ .FirstName }} {{ .LastName }}</td>
					<td>{{ .Mail }}</td>
					<td>{{ FormatTs .Created }}</td>
					<td>
						<form method="post" action="users/{{ .Id }}/priv" class="form-inline">
							<select class="form-control form-control-sm" name="privilege">
								{{ $selected := .Privilege }}
								{{ range $.Privileges }}
									<option value="{{ printf "%d" .Value }}"{{ if eq .Value $selected }} selected{{ end }}>{{ .Name }}</option>
								{{ end }}
							</select>
							<button type="submit" class="btn btn-sm btn-secondary mx-sm-1">Set</button>
						</form>
					</td>
				</tr>
			{{ end }}
		</tbody>
	</table>

	<h2>Create User</h2>

	<form method="post">
		<div class="form-group row">
			<label class="col-sm-2 col-form-label">First name</label>
			<div class="col-sm-10">
				<input class="form-control" name="firstname">
			</div>
		</div>
		<div class="form-group row">
			<label class="col-sm-2 col-form-label">Last name</label>
			<div class="col-sm-10">
				<input class="form-control" name="lastname">
			</div>
		</div>
		<div class="form-group row">
			<label class="col-sm-2 col-form-label">E-Mail</label>
			<div class="col-sm-10">
				<input type="email" class="form-control" name="email">
			</div>
		</div>
		<div class="form-group row">
			<label class="col-sm-2 col-form-label">Initial password</label>
			<div class="col-sm-10">
				<input type="password" class="form-control" name="password">
				<small class="form-text text-muted">If empty, the user can't sign in until a password is set.</small>
			</div>
		</div>
		<button type="submit" class="btn btn-primary" name="submit_add">Create user</button>
	</form>`)

type usersData struct {
	*Route
}

func (data *usersData) Users() ([]auth.User, error) {
	return data.db.Auth.GetAllUsers(100000, 0) // assuming there are not more than 100k users
}

func users(w http.ResponseWriter, req *http.Request, r *Route, params httprouter.Params) error {

	if !r.Can(auth.ManageUsers) {
		return core.ErrPrivilege
	}

	if req.Method == http.MethodPost {

		// new accounts start with privilege none, the admin raises it afterwards
		newUser, err := r.db.Auth.InsertUser(
			req.PostFormValue("firstname"),
			req.PostFormValue("lastname"),
			req.PostFormValue("email"),
			auth.None,
		)
		if err != nil {
			return err
		}

		if password := req.PostFormValue("password"); password != "" {
			if err := r.db.Auth.SetPassword(newUser, password); err != nil {
				return err
			}
		}

		r.Success("user %s has been created", newUser.Mail())
		r.SeeOther("/users")
		return nil
	}

	return usersTmpl.Execute(w, &usersData{
		Route: r,
	})
}

func userPriv(w http.ResponseWriter, req *http.Request, r *Route, params httprouter.Params) error {

	if !r.Can(auth.ManageUsers) {
		return core.ErrPrivilege
	}

	id, err := strconv.Atoi(params.ByName("id"))
	if err != nil {
		return fmt.Errorf("%w: user id", core.ErrInvalidInput)
	}

	selected, err := r.db.Auth.GetUser(id)
	if err != nil {
		return err
	}

	value, err := strconv.Atoi(req.PostFormValue("privilege"))
	if err != nil {
		return fmt.Errorf("%w: privilege value", core.ErrInvalidInput)
	}

	privilege, err := auth.ParsePrivilege(value)
	if err != nil {
		return fmt.Errorf("%w: %v", core.ErrInvalidInput, err)
	}

	if err := r.db.Auth.SetPrivilege(selected, privilege); err != nil {
		return err
	}

	r.Success("%s is now %s", auth.Name(selected), privilege)
	r.SeeOther("/users")
	return nil
}
