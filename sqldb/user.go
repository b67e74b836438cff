package sqldb

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/wansing/pawprint/auth"
	"github.com/wansing/pawprint/core"
	"github.com/wansing/pawprint/util"
)

func clean(mail string) string {
	mail = strings.TrimSpace(mail)
	mail = strings.ToLower(mail)
	return mail
}

func hash(salt string, password string) string {
	var hash = sha256.Sum256([]byte(password + salt))
	return hex.EncodeToString(hash[:])
}

type user struct {
	id        int
	firstName string
	lastName  string
	mail      string
	salt      string
	pass      string // hash
	privilege auth.Privilege
	created   int64
	updated   int64
}

func (u *user) hash(password string) string {
	return hash(u.salt, password)
}

func (u *user) Id() int                   { return u.id }
func (u *user) FirstName() string         { return u.firstName }
func (u *user) LastName() string          { return u.lastName }
func (u *user) Mail() string              { return u.mail }
func (u *user) Privilege() auth.Privilege { return u.privilege }
func (u *user) Created() int64            { return u.created }
func (u *user) Updated() int64            { return u.updated }

type UserDB struct {
	*sql.DB
	count        *sql.Stmt
	get          *sql.Stmt
	getAll       *sql.Stmt
	getByMail    *sql.Stmt
	login        *sql.Stmt
	setMail      *sql.Stmt
	setName      *sql.Stmt
	setPassword  *sql.Stmt
	setPrivilege *sql.Stmt
}

func NewUserDB(db *sql.DB) *UserDB {

	db.Exec(
		`CREATE TABLE IF NOT EXISTS usr (
			id INTEGER PRIMARY KEY,
			firstname varchar(64) NOT NULL,
			lastname varchar(64) NOT NULL,
			mail varchar(128) NOT NULL,
			salt varchar(64) NOT NULL,
			password varchar(64) NOT NULL,
			privilege int(11) NOT NULL,
			created int(11) NOT NULL,
			updated int(11) NOT NULL,
			UNIQUE(mail)
		);`)

	var userDB = &UserDB{}
	userDB.DB = db
	userDB.count = mustPrepare(db, "SELECT COUNT(*) FROM usr")
	userDB.get = mustPrepare(db, "SELECT firstname, lastname, mail, salt, password, privilege, created, updated FROM usr WHERE id = ? LIMIT 1")
	userDB.getAll = mustPrepare(db, "SELECT id, firstname, lastname, mail, salt, privilege, created, updated FROM usr ORDER BY mail LIMIT ? OFFSET ?")
	userDB.getByMail = mustPrepare(db, "SELECT id, firstname, lastname, salt, password, privilege, created, updated FROM usr WHERE mail = ? LIMIT 1")
	userDB.login = mustPrepare(db, "SELECT id, firstname, lastname, salt, password, privilege, created, updated FROM usr WHERE mail = ?")
	userDB.setMail = mustPrepare(db, "UPDATE usr SET mail = ?, updated = ? WHERE id = ?")
	userDB.setName = mustPrepare(db, "UPDATE usr SET firstname = ?, lastname = ?, updated = ? WHERE id = ?")
	userDB.setPassword = mustPrepare(db, "UPDATE usr SET salt = ?, password = ?, updated = ? WHERE id = ?")
	userDB.setPrivilege = mustPrepare(db, "UPDATE usr SET privilege = ?, updated = ? WHERE id = ?")
	return userDB
}

func (db *UserDB) Writeable() bool {
	return true
}

func (db *UserDB) CountUsers() (int, error) {
	var count int
	err := db.count.QueryRow().Scan(&count)
	return count, err
}

// ChangePassword verifies the old password before setting the new one.
func (db *UserDB) ChangePassword(u auth.DBUser, old, new string) error {
	if u.(*user).hash(old) != u.(*user).pass {
		return core.ErrCredentials
	}
	return db.SetPassword(u, new)
}

func (db *UserDB) GetUser(id int) (auth.DBUser, error) {
	var u = &user{
		id: id,
	}
	err := db.get.QueryRow(id).Scan(&u.firstName, &u.lastName, &u.mail, &u.salt, &u.pass, &u.privilege, &u.created, &u.updated)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: user %d", core.ErrNotFound, id)
	}
	return u, err
}

func (db *UserDB) GetUserByMail(mail string) (auth.DBUser, error) {
	mail = clean(mail)
	var u = &user{
		mail: mail,
	}
	err := db.getByMail.QueryRow(mail).Scan(&u.id, &u.firstName, &u.lastName, &u.salt, &u.pass, &u.privilege, &u.created, &u.updated)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: user %s", core.ErrNotFound, mail)
	}
	return u, err
}

func (db *UserDB) GetAllUsers(limit, offset int) ([]auth.DBUser, error) {

	var all = []auth.DBUser{}

	rows, err := db.getAll.Query(limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var u = &user{}
		err = rows.Scan(&u.id, &u.firstName, &u.lastName, &u.mail, &u.salt, &u.privilege, &u.created, &u.updated)
		if err != nil {
			return nil, err
		}
		all = append(all, u)
	}

	return all, nil
}

// InsertUser creates an account with an empty password field, which is safe
// because no hash value equals it. The mail address must be unused, else
// core.ErrConflict is returned and nothing is written.
func (db *UserDB) InsertUser(firstName, lastName, mail string, privilege auth.Privilege) (auth.DBUser, error) {

	firstName = strings.TrimSpace(firstName)
	lastName = strings.TrimSpace(lastName)
	mail = clean(mail)

	if firstName == "" || lastName == "" || mail == "" {
		return nil, fmt.Errorf("%w: name and email are required", core.ErrInvalidInput)
	}
	if !privilege.Valid() {
		return nil, fmt.Errorf("%w: unknown privilege value %d", core.ErrInvalidInput, int(privilege))
	}

	tx, err := db.Begin()
	if err != nil {
		return nil, err
	}

	var existing int
	err = tx.QueryRow("SELECT id FROM usr WHERE mail = ?", mail).Scan(&existing)
	if err == nil {
		tx.Rollback()
		return nil, fmt.Errorf("%w: a user with that email address already exists", core.ErrConflict)
	}
	if err != sql.ErrNoRows {
		tx.Rollback()
		return nil, err
	}

	var now = time.Now().Unix()

	res, err := tx.Exec("INSERT INTO usr (firstname, lastname, mail, salt, password, privilege, created, updated) VALUES (?, ?, ?, '', '', ?, ?, ?)",
		firstName, lastName, mail, int(privilege), now, now)
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

	return &user{
		id:        int(id),
		firstName: firstName,
		lastName:  lastName,
		mail:      mail,
		privilege: privilege,
		created:   now,
		updated:   now,
	}, nil
}

func (db *UserDB) LoginUser(mail, password string) (auth.DBUser, error) {

	mail = clean(mail)

	var u = &user{
		mail: mail,
	}

	err := db.login.QueryRow(mail).Scan(&u.id, &u.firstName, &u.lastName, &u.salt, &u.pass, &u.privilege, &u.created, &u.updated)
	if err == sql.ErrNoRows {
		return nil, core.ErrCredentials // user not found
	}
	if err != nil {
		return nil, err
	}

	if u.hash(password) != u.pass {
		return nil, core.ErrCredentials // wrong password
	}

	return u, nil
}

func (db *UserDB) SetMail(u auth.DBUser, mail string) error {

	mail = clean(mail)
	if mail == "" {
		return fmt.Errorf("%w: email is required", core.ErrInvalidInput)
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}

	var existing int
	err = tx.QueryRow("SELECT id FROM usr WHERE mail = ? AND id != ?", mail, u.Id()).Scan(&existing)
	if err == nil {
		tx.Rollback()
		return fmt.Errorf("%w: a user with that email address already exists", core.ErrConflict)
	}
	if err != sql.ErrNoRows {
		tx.Rollback()
		return err
	}

	if _, err := tx.Stmt(db.setMail).Exec(mail, time.Now().Unix(), u.Id()); err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	u.(*user).mail = mail
	return nil
}

func (db *UserDB) SetName(u auth.DBUser, firstName, lastName string) error {

	firstName = strings.TrimSpace(firstName)
	lastName = strings.TrimSpace(lastName)
	if firstName == "" || lastName == "" {
		return fmt.Errorf("%w: name is required", core.ErrInvalidInput)
	}

	if _, err := db.setName.Exec(firstName, lastName, time.Now().Unix(), u.Id()); err != nil {
		return err
	}

	u.(*user).firstName = firstName
	u.(*user).lastName = lastName
	return nil
}

func (db *UserDB) SetPassword(u auth.DBUser, password string) error {

	if password == "" {
		return fmt.Errorf("%w: no password given", core.ErrInvalidInput)
	}

	salt, err := util.RandomString32()
	if err != nil {
		return err
	}

	_, err = db.setPassword.Exec(salt, hash(salt, password), time.Now().Unix(), u.Id())
	if err != nil {
		return err
	}

	u.(*user).salt = salt
	u.(*user).pass = hash(salt, password)
	return nil
}

func (db *UserDB) SetPrivilege(u auth.DBUser, privilege auth.Privilege) error {

	if !privilege.Valid() {
		return fmt.Errorf("%w: unknown privilege value %d", core.ErrInvalidInput, int(privilege))
	}

	if _, err := db.setPrivilege.Exec(int(privilege), time.Now().Unix(), u.Id()); err != nil {
		return err
	}

	u.(*user).privilege = privilege
	return nil
}
