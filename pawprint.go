package main

import (
	"bytes"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/alexedwards/scs/v2"
	_ "github.com/mattn/go-sqlite3"
	"github.com/wansing/pawprint/auth"
	"github.com/wansing/pawprint/core"
	"github.com/wansing/pawprint/sqldb"
	"github.com/wansing/pawprint/sqldb/mysql"
	"github.com/wansing/pawprint/sqldb/sqlite3"
	"github.com/wansing/pawprint/util"
	"github.com/wansing/pawprint/web"
	"github.com/xo/dburl"
	"golang.org/x/crypto/ssh/terminal"
)

type prefixedResponseWriter struct {
	http.ResponseWriter
	prefix string // without trailing slash
}

// shadows the original WriteHeader func
func (w prefixedResponseWriter) WriteHeader(statusCode int) {
	// prepend prefix to Location header, so redirects work
	if w.prefix != "" {
		if location := w.Header().Get("Location"); len(location) > 0 && location[0] == '/' { // only absolute locations
			w.Header().Set("Location", w.prefix+location)
		}
	}
	w.ResponseWriter.WriteHeader(statusCode)
}

// prefix should be without trailing slash
func handleStrip(prefix string, handler http.Handler) {
	http.Handle(
		prefix+"/", // http mux needs trailing slash
		http.StripPrefix(
			prefix,
			http.HandlerFunc(
				func(w http.ResponseWriter, r *http.Request) {
					w = &prefixedResponseWriter{w, prefix}
					handler.ServeHTTP(w, r)
				},
			),
		),
	)
}

func init() {
	log.SetFlags(0) // no log prefixes, on most systems systemd-journald adds them
}

const defaultDB = "sqlite3:pawprint.sqlite3?_busy_timeout=10000&_journal=WAL&_sync=NORMAL&cache=shared"

func main() {

	var dbArg string // is in both FlagSets

	// default FlagSet

	// Your reverse proxy must not strip the prefix. So if you're using nginx, the "proxy_pass" value should not end with a slash.
	var base = flag.String("base", "", "strip off this `prefix` from every HTTP request and prepended it to every link")
	var configPath = flag.String("config", "", "read db, listen and base from this ini `file` unless given as a flag")
	flag.StringVar(&dbArg, "db", defaultDB, "sql database url, see github.com/xo/dburl")
	var listenAddr = flag.String("listen", "127.0.0.1:8080", "serve HTTP content at this `ip:port`")

	// init FlagSet

	var initFlags = flag.NewFlagSet("init", flag.ExitOnError)

	initFlags.StringVar(&dbArg, "db", defaultDB, "sql database url, see github.com/xo/dburl") // copied from above
	var initInsert = initFlags.Bool("insert", false, "creates the given user, prompting for a password")
	var initMakeAdmin = initFlags.Bool("make-admin", false, "gives admin privileges to the given user")
	var initSetPassword = initFlags.Bool("set-password", false, "sets the password of the given user")
	var mail = initFlags.String("user", "", "specifies a user `email`")
	var firstName = initFlags.String("first", "", "first `name` for -insert")
	var lastName = initFlags.String("last", "", "last `name` for -insert")

	if len(os.Args) > 1 && os.Args[1] == "init" {
		initFlags.Parse(os.Args[2:])
	} else {
		flag.Parse()
	}

	// config file fills in flags which were not set on the command line

	if *configPath != "" {

		cfg, err := util.Ini(*configPath)
		if err != nil {
			log.Printf("could not read config file: %v", err)
			return
		}

		var given = make(map[string]bool)
		flag.Visit(func(f *flag.Flag) {
			given[f.Name] = true
		})

		if v, ok := cfg["db"]; ok && !given["db"] {
			dbArg = v
		}
		if v, ok := cfg["listen"]; ok && !given["listen"] {
			*listenAddr = v
		}
		if v, ok := cfg["base"]; ok && !given["base"] {
			*base = v
		}
	}

	// database

	dbURL, err := dburl.Parse(dbArg)
	if err != nil {
		log.Printf("could not parse database url: %v", err)
		return
	}

	sqlDB, err := sql.Open(dbURL.Driver, dbURL.DSN)
	if err != nil {
		log.Printf("could not open sql database: %v", err)
		return
	}

	if err = sqlDB.Ping(); err != nil {
		log.Printf("could not ping sql database: %v", err)
		return
	}

	log.Printf("using database %s", dbURL.String())

	// base

	*base = strings.Trim(*base, "/")
	if *base != "" {
		*base = "/" + *base
	}

	// assemble stuff

	var sessionStore scs.Store
	switch dbURL.Driver {
	case "mysql":
		sessionStore = mysql.NewSessionStore(sqlDB)
	case "sqlite3":
		sessionStore = sqlite3.NewSessionStore(sqlDB)
	default:
		log.Printf("unknown database backend: %s", dbURL.Driver)
		return
	}

	db := &core.App{}
	db.Init(sessionStore, *base)

	db.Auth = &auth.AuthDB{UserDB: sqldb.NewUserDB(sqlDB)}
	db.ProjectDB = sqldb.NewProjectDB(sqlDB)
	db.ReviewDB = sqldb.NewReviewDB(sqlDB)
	db.SqlDB = sqlDB

	defer func() {
		log.Println("closing database")
		sqlDB.Close()
	}()

	// init

	if initFlags.Parsed() {
		if *mail == "" {
			log.Println("init requires -user")
			return
		}
		switch {
		case *initInsert:
			insertUser(db, *firstName, *lastName, *mail)
		case *initMakeAdmin:
			makeAdmin(db, *mail)
		case *initSetPassword:
			setPassword(db, *mail)
		}
		return
	}

	if err := db.Bootstrap(); err != nil {
		log.Printf("error bootstrapping: %v", err)
		return
	}

	listen(db, *listenAddr, *base)
}

func readPassword(mail string) (string, bool) {

	fmt.Printf("password for user %s: ", mail)
	pass1, err := terminal.ReadPassword(0)
	fmt.Println()
	if err != nil {
		log.Printf("error reading password: %v", err)
		return "", false
	}

	fmt.Printf("repeat password: ")
	pass2, err := terminal.ReadPassword(0)
	fmt.Println()
	if err != nil {
		log.Printf("error reading password: %v", err)
		return "", false
	}

	if !bytes.Equal(pass1, pass2) {
		log.Printf("passwords don't match")
		return "", false
	}

	return string(pass1), true
}

func insertUser(db *core.App, firstName, lastName, mail string) {

	password, ok := readPassword(mail)
	if !ok {
		return
	}

	user, err := db.Auth.InsertUser(firstName, lastName, mail, auth.None)
	if err != nil {
		log.Printf("error creating user %s: %v", mail, err)
		return
	}

	if err := db.Auth.SetPassword(user, password); err != nil {
		log.Printf("error setting password: %v", err)
		return
	}
}

func makeAdmin(db *core.App, mail string) {

	user, err := db.Auth.GetUserByMail(mail)
	if err != nil {
		log.Printf("error getting user %s: %v", mail, err)
		return
	}

	if err := db.Auth.SetPrivilege(user, auth.Admin); err != nil {
		log.Printf("error giving admin privileges: %v", err)
		return
	}
}

func setPassword(db *core.App, mail string) {

	user, err := db.Auth.GetUserByMail(mail)
	if err != nil {
		log.Printf("error getting user %s: %v", mail, err)
		return
	}

	password, ok := readPassword(mail)
	if !ok {
		return
	}

	if err := db.Auth.SetPassword(user, password); err != nil {
		log.Printf("error setting password: %v", err)
		return
	}
}

func listen(db *core.App, addr string, base string) {

	// golang mux recovers from panics, so the program won't crash

	handleStrip(base, web.NewRouter(db, base))

	sigintChannel := make(chan os.Signal, 1)

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		log.Println(err)
		return
	}

	log.Printf("listening to %s", addr)

	httpSrv := &http.Server{
		Handler:      db.SessionManager.LoadAndSave(http.DefaultServeMux),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		if err := httpSrv.Serve(listener); err != nil {

			// don't panic, we want a graceful shutdown
			if err != http.ErrServerClosed {
				log.Printf("error listening: %v", err)
			}

			// ensure graceful shutdown
			sigintChannel <- os.Interrupt
		}
	}()

	// graceful shutdown

	signal.Notify(sigintChannel, os.Interrupt, syscall.SIGTERM) // SIGINT (Interrupt) or SIGTERM
	<-sigintChannel

	log.Println("shutting down")
	httpSrv.Close()
}
