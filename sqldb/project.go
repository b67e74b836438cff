package sqldb

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/wansing/pawprint/core"
)

type project struct {
	id   int
	name string
}

func (p *project) Id() int {
	return p.id
}

func (p *project) Name() string {
	return p.name
}

type ProjectDB struct {
	*sql.DB
	get    *sql.Stmt
	getAll *sql.Stmt
}

func NewProjectDB(db *sql.DB) *ProjectDB {

	db.Exec(
		`CREATE TABLE IF NOT EXISTS project (
			id INTEGER PRIMARY KEY,
			name varchar(64) NOT NULL,
			UNIQUE(name)
		);`)

	var projectDB = &ProjectDB{}
	projectDB.DB = db
	projectDB.get = mustPrepare(db, "SELECT name FROM project WHERE id = ? LIMIT 1")
	projectDB.getAll = mustPrepare(db, "SELECT id, name FROM project ORDER BY name LIMIT ? OFFSET ?")
	return projectDB
}

func (db *ProjectDB) Writeable() bool {
	return true
}

// DeleteProject refuses to delete a project which still has reviews,
// because review.project is a required reference.
func (db *ProjectDB) DeleteProject(p core.DBProject) error {

	tx, err := db.Begin()
	if err != nil {
		return err
	}

	var reviews int
	if err := tx.QueryRow("SELECT COUNT(*) FROM review WHERE project = ?", p.Id()).Scan(&reviews); err != nil {
		tx.Rollback()
		return err
	}
	if reviews > 0 {
		tx.Rollback()
		return fmt.Errorf(`%w: project "%s" still has %d reviews`, core.ErrConflict, p.Name(), reviews)
	}

	if _, err := tx.Exec("DELETE FROM project WHERE id = ?", p.Id()); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit()
}

func (db *ProjectDB) GetProject(id int) (core.DBProject, error) {
	var p = &project{
		id: id,
	}
	err := db.get.QueryRow(id).Scan(&p.name)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: project %d", core.ErrNotFound, id)
	}
	return p, err
}

func (db *ProjectDB) GetAllProjects(limit, offset int) ([]core.DBProject, error) {

	rows, err := db.getAll.Query(limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var all = []core.DBProject{}

	for rows.Next() {
		var p = &project{}
		if err = rows.Scan(&p.id, &p.name); err != nil {
			return nil, err
		}
		all = append(all, p)
	}

	return all, nil
}

// InsertProject creates a project. The name must be unused, else
// core.ErrConflict is returned and nothing is written.
func (db *ProjectDB) InsertProject(name string) (core.DBProject, error) {

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: project name is required", core.ErrInvalidInput)
	}

	tx, err := db.Begin()
	if err != nil {
		return nil, err
	}

	if err := checkProjectName(tx, name, 0); err != nil {
		tx.Rollback()
		return nil, err
	}

	res, err := tx.Exec("INSERT INTO project (name) VALUES (?)", name)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	id, err := res.LastInsertId()
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return &project{
		id:   int(id),
		name: name,
	}, nil
}

func (db *ProjectDB) RenameProject(p core.DBProject, name string) error {

	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: project name is required", core.ErrInvalidInput)
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}

	if err := checkProjectName(tx, name, p.Id()); err != nil {
		tx.Rollback()
		return err
	}

	if _, err := tx.Exec("UPDATE project SET name = ? WHERE id = ?", name, p.Id()); err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	p.(*project).name = name
	return nil
}

// checkProjectName returns core.ErrConflict if another project uses the name.
func checkProjectName(tx *sql.Tx, name string, selfId int) error {
	var existing int
	err := tx.QueryRow("SELECT id FROM project WHERE name = ? AND id != ?", name, selfId).Scan(&existing)
	if err == nil {
		return fmt.Errorf("%w: a project with that name already exists", core.ErrConflict)
	}
	if err != sql.ErrNoRows {
		return err
	}
	return nil
}
