package auth

import "fmt"

// A Privilege is a user's role. The values are ordered, but authorization
// checks match exact sets, with Admin as the superset override.
type Privilege int

const (
	None      Privilege = 0 // default for new accounts
	ReadOnly  Privilege = 1 // can view reviews only
	Developer Privilege = 2 // can create review tickets
	Approver  Privilege = 3 // can approve tickets
	Admin     Privilege = 4 // can manage projects and user accounts
)

func (p Privilege) String() string {
	switch p {
	case None:
		return "none"
	case ReadOnly:
		return "read only"
	case Developer:
		return "developer"
	case Approver:
		return "approver"
	case Admin:
		return "admin"
	}
	return "unknown"
}

func (p Privilege) Valid() bool {
	return p >= None && p <= Admin
}

type PrivilegeItem struct {
	Name  string
	Value Privilege
}

var privilegeItems = []PrivilegeItem{
	{"none", None},
	{"read only", ReadOnly},
	{"developer", Developer},
	{"approver", Approver},
	{"admin", Admin},
}

// PrivilegeItems returns all privilege levels in ascending order.
func PrivilegeItems() []PrivilegeItem {
	return privilegeItems
}

// ParsePrivilege converts a submitted numeric value into a Privilege.
func ParsePrivilege(value int) (Privilege, error) {
	var p = Privilege(value)
	if !p.Valid() {
		return None, fmt.Errorf("unknown privilege value %d", value)
	}
	return p, nil
}
