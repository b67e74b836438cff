package web

import (
	"fmt"
	"html/template"
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"
	"github.com/wansing/pawprint/auth"
	"github.com/wansing/pawprint/core"
)

var reviewTmpl = tmpl(`<h1>Review #{{ .Review.Id }}</h1>

	<table class="table table-sm">
		<tbody>
			<tr>
				<th>Project</th>
				<td>{{ .Project.Name }}</td>
			</tr>
			<tr>
				<th>Branch</th>
				<td>{{ .Review.Branch }}</td>
			</tr>
			<tr>
				<th>Head commit</th>
				<td><code>{{ .Review.HeadCommit }}</code></td>
			</tr>
			<tr>
				<th>Base commit</th>
				<td><code>{{ .Review.BaseCommit }}</code></td>
			</tr>
			<tr>
				<th>ERS number</th>
				<td>{{ .Review.ErsNumber }}</td>
			</tr>
			<tr>
				<th>Author</th>
				<td>{{ .Author }}</td>
			</tr>
			<tr>
				<th>Created</th>
				<td>{{ .FormatDateTime .Review.Created }}</td>
			</tr>
			<tr>
				<th>Current status</th>
				<td>{{ .Current }}</td>
			</tr>
		</tbody>
	</table>

	<h2>History</h2>

	<table class="table table-sm">
		<thead>
			<tr>
				<th>Status</th>
				<th>By</th>
				<th>When</th>
				<th>Notes</th>
			</tr>
		</thead>
		<tbody>
			{{ range .History }}
				<tr>
					<td>{{ .Status }}</td>
					<td>{{ .Actor }}</td>
					<td>{{ $.FormatDateTime .Ts }}</td>
					<td>{{ .Notes }}</td>
				</tr>
			{{ end }}
		</tbody>
	</table>

	{{ if .Options }}

		<h2>Set Status</h2>

		<form method="post" action="reviews/{{ .Review.Id }}/update">
			<div class="form-group">
				<textarea class="form-control" name="notes" rows="3" placeholder="Notes"></textarea>
			</div>
			<div class="form-group">
				{{ range .Options }}
					<button type="submit" class="btn {{ if .Enabled }}btn-primary{{ else }}btn-outline-secondary{{ end }} mr-sm-1" name="status" value="{{ printf "%d" .Status }}"{{ if not .Enabled }} disabled{{ end }}>{{ .Status }}</button>
				{{ end }}
			</div>
		</form>

	{{ end }}`)

type historyRow struct {
	Status core.Status
	Actor  string
	Ts     int64
	Notes  template.HTML // markdown, already rendered
}

type reviewData struct {
	*Route
	Review  core.DBReview
	Project core.DBProject
	Author  string
	Current core.Status
	History []historyRow
	Options []core.StatusOption // empty if the user may not advance
}

func selectedReview(r *Route, params httprouter.Params) (core.DBReview, error) {
	id, err := strconv.Atoi(params.ByName("id"))
	if err != nil {
		return nil, fmt.Errorf("%w: review id", core.ErrInvalidInput)
	}
	return r.db.GetReview(id)
}

func review(w http.ResponseWriter, req *http.Request, r *Route, params httprouter.Params) error {

	if !r.Can(auth.ViewReviews) {
		return core.ErrPrivilege
	}

	rev, err := selectedReview(r, params)
	if err != nil {
		return err
	}

	project, err := r.db.GetProject(rev.ProjectId())
	if err != nil {
		return err
	}

	history, err := r.db.GetHistory(rev)
	if err != nil {
		return err
	}

	current, err := core.CurrentStatus(history)
	if err != nil {
		return err
	}

	var names = &userNames{db: r.db, cache: make(map[int]string)}
	var rows = make([]historyRow, 0, len(history))
	for _, event := range history {
		rows = append(rows, historyRow{
			Status: event.Status(),
			Actor:  names.get(event.ActorId()),
			Ts:     event.Ts(),
			Notes:  template.HTML(notesParser.RenderToString([]byte(event.Notes()))),
		})
	}

	var options []core.StatusOption
	if r.Can(auth.AdvanceReview) {
		options = core.StatusOptions(r.User.Privilege(), core.PreviouslyApproved(history))
	}

	return reviewTmpl.Execute(w, &reviewData{
		Route:   r,
		Review:  rev,
		Project: project,
		Author:  names.get(rev.AuthorId()),
		Current: current,
		History: rows,
		Options: options,
	})
}

func updateReview(w http.ResponseWriter, req *http.Request, r *Route, params httprouter.Params) error {

	rev, err := selectedReview(r, params)
	if err != nil {
		return err
	}

	value, err := strconv.Atoi(req.PostFormValue("status"))
	if err != nil {
		return fmt.Errorf("%w: status value", core.ErrInvalidInput)
	}

	requested, err := core.ParseStatus(value)
	if err != nil {
		return err
	}

	// AdvanceStatus re-checks the actor's privilege and the workflow rules
	if err := r.db.AdvanceStatus(rev, requested, r.User, req.PostFormValue("notes")); err != nil {
		return err
	}

	r.Success("review #%d is now %s", rev.Id(), requested)
	r.SeeOther("/reviews/%d", rev.Id())
	return nil
}
