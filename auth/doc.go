// Package auth models user accounts, the ordered privilege levels and the
// authorization policy. Storage is accessed through the UserDB interface,
// which is implemented in the sqldb package.
package auth
