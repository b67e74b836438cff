package auth

type DBUser interface {
	Id() int
	FirstName() string
	LastName() string
	Mail() string
	Privilege() Privilege
	Created() int64 // unix timestamp
	Updated() int64 // unix timestamp
}

type UserDB interface {
	ChangePassword(u DBUser, old, new string) error
	CountUsers() (int, error)
	GetUser(id int) (DBUser, error)
	GetUserByMail(mail string) (DBUser, error)
	GetAllUsers(limit, offset int) ([]DBUser, error)
	InsertUser(firstName, lastName, mail string, privilege Privilege) (DBUser, error)
	LoginUser(mail, password string) (DBUser, error)
	SetMail(u DBUser, mail string) error
	SetName(u DBUser, firstName, lastName string) error
	SetPassword(u DBUser, password string) error
	SetPrivilege(u DBUser, privilege Privilege) error
	Writeable() bool
}

type User DBUser

// Name returns the user's display name.
func Name(u DBUser) string {
	return u.FirstName() + " " + u.LastName()
}

// GetAllUsers shadows AuthDB.UserDB.GetAllUsers.
func (a *AuthDB) GetAllUsers(limit, offset int) ([]User, error) {
	users, err := a.UserDB.GetAllUsers(limit, offset)
	result := make([]User, len(users))
	for i := range users {
		result[i] = users[i]
	}
	return result, err
}
