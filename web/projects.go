package web

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"
	"github.com/wansing/pawprint/auth"
	"github.com/wansing/pawprint/core"
)

var projectsTmpl = tmpl(`<h1>Projects</h1>

	<table class="table table-sm">
		<thead>
			<tr>
				<th>Name</th>
				{{ if .CanManageProjects }}
					<th></th>
				{{ end }}
			</tr>
		</thead>
		<tbody>
			{{ range .Projects }}
				<tr>
					<td>{{ .Name }}</td>
					{{ if $.CanManageProjects }}
						<td>
							<form method="post" action="projects/{{ .Id }}/rename" class="form-inline" style="display: inline-block;">
								<input class="form-control form-control-sm" name="name" value="{{ .Name }}">
								<button type="submit" class="btn btn-sm btn-secondary mx-sm-1">Rename</button>
							</form>
							<form method="post" action="projects/{{ .Id }}/delete" style="display: inline-block;">
								<button type="submit" class="btn btn-sm btn-danger">Delete</button>
							</form>
						</td>
					{{ end }}
				</tr>
			{{ end }}
		</tbody>
	</table>

	{{ if .CanManageProjects }}

		<h2>Create Project</h2>

		<form method="post" class="form-inline">
			<div class="form-group">
				<input class="form-control" name="name" placeholder="Project name">
				<button type="submit" class="btn btn-primary mx-sm-3" name="submit_add">Create project</button>
			</div>
		</form>

	{{ end }}`)

type projectsData struct {
	*Route
}

func (data *projectsData) Projects() ([]core.DBProject, error) {
	return data.db.GetAllProjects(10000, 0) // assuming there are not more than 10k projects
}

func projects(w http.ResponseWriter, req *http.Request, r *Route, params httprouter.Params) error {

	if req.Method == http.MethodPost {

		if !r.Can(auth.ManageProjects) {
			return core.ErrPrivilege
		}

		project, err := r.db.InsertProject(req.PostFormValue("name"))
		if err != nil {
			return err
		}

		r.Success("project %s has been created", project.Name())
		r.SeeOther("/projects")
		return nil
	}

	return projectsTmpl.Execute(w, &projectsData{
		Route: r,
	})
}

func selectedProject(r *Route, params httprouter.Params) (core.DBProject, error) {
	id, err := strconv.Atoi(params.ByName("id"))
	if err != nil {
		return nil, fmt.Errorf("%w: project id", core.ErrInvalidInput)
	}
	return r.db.GetProject(id)
}

func deleteProject(w http.ResponseWriter, req *http.Request, r *Route, params httprouter.Params) error {

	if !r.Can(auth.ManageProjects) {
		return core.ErrPrivilege
	}

	project, err := selectedProject(r, params)
	if err != nil {
		return err
	}

	if err := r.db.DeleteProject(project); err != nil {
		return err
	}

	r.Success("project %s has been deleted", project.Name())
	r.SeeOther("/projects")
	return nil
}

func renameProject(w http.ResponseWriter, req *http.Request, r *Route, params httprouter.Params) error {

	if !r.Can(auth.ManageProjects) {
		return core.ErrPrivilege
	}

	project, err := selectedProject(r, params)
	if err != nil {
		return err
	}

	var newName = req.PostFormValue("name")
	if err := r.db.RenameProject(project, newName); err != nil {
		return err
	}

	r.Success("project has been renamed to %s", newName)
	r.SeeOther("/projects")
	return nil
}
