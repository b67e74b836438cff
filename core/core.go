// Package core ties the storage interfaces, the review workflow engine and
// the per-request state together. The App struct replaces any process-wide
// globals: main assembles it once and every handler receives it explicitly.
package core

import (
	"database/sql"
	"log"
	"net/http"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/wansing/pawprint/auth"
)

// default credential of the seed admin, see Bootstrap
const (
	BootstrapMail     = "admin@localhost"
	BootstrapPassword = "pawprint"
)

type App struct {
	ProjectDB
	ReviewDB
	Auth           *auth.AuthDB
	SessionManager *scs.SessionManager

	SqlDB *sql.DB // exported because main closes it
}

func (c *App) Init(sessionStore scs.Store, cookiePath string) {
	c.SessionManager = scs.New()
	c.SessionManager.Store = sessionStore
	c.SessionManager.Cookie.Path = cookiePath + "/"
	c.SessionManager.Cookie.Persist = false                 // don't store the cookie across browser sessions
	c.SessionManager.Cookie.SameSite = http.SameSiteLaxMode // good CSRF protection if HTTP GET doesn't modify anything
	c.SessionManager.Cookie.Secure = false                  // else running on localhost or behind a http proxy fails
	c.SessionManager.IdleTimeout = 12 * time.Hour
	c.SessionManager.Lifetime = 720 * time.Hour
}

// Bootstrap creates the seed admin account if and only if no users exist
// yet. The fixed initial password must be changed after the first sign-in.
func (c *App) Bootstrap() error {

	count, err := c.Auth.CountUsers()
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	admin, err := c.Auth.InsertUser("Admin", "Admin", BootstrapMail, auth.Admin)
	if err != nil {
		return err
	}
	if err := c.Auth.SetPassword(admin, BootstrapPassword); err != nil {
		return err
	}

	log.Printf(`created admin account "%s" with password "%s", please change it after signing in`, BootstrapMail, BootstrapPassword)
	return nil
}
