package web

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"
	"github.com/wansing/pawprint/auth"
	"github.com/wansing/pawprint/core"
	"github.com/wansing/pawprint/util"
	"gitlab.com/golang-commonmark/markdown"
)

// Notes are written by users, so embedded HTML stays disabled.
var notesParser = markdown.New(markdown.Linkify(true), markdown.Typographer(true), markdown.MaxNesting(10))

var reviewsTmpl = tmpl(`<h1>Reviews</h1>

	<table class="table table-sm">
		<thead>
			<tr>
				<th>#</th>
				<th>Project</th>
				<th>Branch</th>
				<th>ERS</th>
				<th>Author</th>
				<th>Created</th>
				<th>Status</th>
				<th>Latest notes</th>
			</tr>
		</thead>
		<tbody>
			{{ range .Rows }}
				<tr>
					<td><a href="reviews/{{ .Id }}">{{ .Id }}</a></td>
					<td>{{ .Project }}</td>
					<td>{{ .Branch }}</td>
					<td>{{ .ErsNumber }}</td>
					<td>{{ .Author }}</td>
					<td>{{ FormatTs .Created }}</td>
					<td>{{ .Status }}</td>
					<td>{{ .Excerpt }}</td>
				</tr>
			{{ end }}
		</tbody>
	</table>

	{{ if .CanCreateReview }}

		<h2>Create Review</h2>

		<form method="post">
			<div class="form-group row">
				<label class="col-sm-2 col-form-label">Project</label>
				<div class="col-sm-10">
					<select class="form-control" name="project">
						{{ range .Projects }}
							<option value="{{ .Id }}">{{ .Name }}</option>
						{{ end }}
					</select>
				</div>
			</div>
			<div class="form-group row">
				<label class="col-sm-2 col-form-label">Branch</label>
				<div class="col-sm-10">
					<input class="form-control" name="branch">
				</div>
			</div>
			<div class="form-group row">
				<label class="col-sm-2 col-form-label">Head commit</label>
				<div class="col-sm-10">
					<input class="form-control" name="head">
				</div>
			</div>
			<div class="form-group row">
				<label class="col-sm-2 col-form-label">Base commit</label>
				<div class="col-sm-10">
					<input class="form-control" name="base">
				</div>
			</div>
			<div class="form-group row">
				<label class="col-sm-2 col-form-label">ERS number</label>
				<div class="col-sm-10">
					<input class="form-control" name="ers">
				</div>
			</div>
			<div class="form-group row">
				<label class="col-sm-2 col-form-label">Notes</label>
				<div class="col-sm-10">
					<textarea class="form-control" name="notes" rows="3"></textarea>
				</div>
			</div>
			<button type="submit" class="btn btn-primary" name="submit_add">Create review</button>
		</form>

	{{ end }}`)

type reviewRow struct {
	Id        int
	Project   string
	Branch    string
	ErsNumber string
	Author    string
	Created   int64
	Status    core.Status
	Excerpt   string
}

type reviewsData struct {
	*Route
	Rows []reviewRow
}

func (data *reviewsData) Projects() ([]core.DBProject, error) {
	return data.db.GetAllProjects(10000, 0)
}

// userNames looks up display names, caching them per request.
type userNames struct {
	db    *core.App
	cache map[int]string
}

func (n *userNames) get(id int) string {
	if name, ok := n.cache[id]; ok {
		return name
	}
	var name = "unknown"
	if u, err := n.db.Auth.GetUser(id); err == nil {
		name = auth.Name(u)
	}
	n.cache[id] = name
	return name
}

func excerpt(notes string) string {
	if notes == "" {
		return ""
	}
	return util.Trunc(util.TextContent(notesParser.RenderToString([]byte(notes))), 80)
}

func reviews(w http.ResponseWriter, req *http.Request, r *Route, params httprouter.Params) error {

	if !r.Can(auth.ViewReviews) {
		return core.ErrPrivilege
	}

	if req.Method == http.MethodPost {

		if !r.Can(auth.CreateReview) {
			return core.ErrPrivilege
		}

		projectId, err := strconv.Atoi(req.PostFormValue("project"))
		if err != nil {
			return fmt.Errorf("%w: project id", core.ErrInvalidInput)
		}

		project, err := r.db.GetProject(projectId)
		if err != nil {
			return err
		}

		created, err := r.db.CreateReview(
			project,
			req.PostFormValue("branch"),
			req.PostFormValue("head"),
			req.PostFormValue("base"),
			req.PostFormValue("ers"),
			r.User,
			req.PostFormValue("notes"),
		)
		if err != nil {
			return err
		}

		r.Success("review #%d has been created", created.Id())
		r.SeeOther("/reviews/%d", created.Id())
		return nil
	}

	all, err := r.db.GetAllReviews(10000, 0)
	if err != nil {
		return err
	}

	var names = &userNames{db: r.db, cache: make(map[int]string)}
	var projectNames = make(map[int]string)
	var rows = make([]reviewRow, 0, len(all))

	for _, rev := range all {

		if _, ok := projectNames[rev.ProjectId()]; !ok {
			if p, err := r.db.GetProject(rev.ProjectId()); err == nil {
				projectNames[rev.ProjectId()] = p.Name()
			} else {
				projectNames[rev.ProjectId()] = "unknown"
			}
		}

		history, err := r.db.GetHistory(rev)
		if err != nil {
			return err
		}
		current, err := core.CurrentStatus(history)
		if err != nil {
			return err
		}

		rows = append(rows, reviewRow{
			Id:        rev.Id(),
			Project:   projectNames[rev.ProjectId()],
			Branch:    rev.Branch(),
			ErsNumber: rev.ErsNumber(),
			Author:    names.get(rev.AuthorId()),
			Created:   rev.Created(),
			Status:    current,
			Excerpt:   excerpt(history[len(history)-1].Notes()),
		})
	}

	return reviewsTmpl.Execute(w, &reviewsData{
		Route: r,
		Rows:  rows,
	})
}
