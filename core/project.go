package core

type DBProject interface {
	Id() int
	Name() string
}

type ProjectDB interface {
	DeleteProject(p DBProject) error // must refuse while reviews reference the project
	GetProject(id int) (DBProject, error)
	GetAllProjects(limit, offset int) ([]DBProject, error)
	InsertProject(name string) (DBProject, error)
	RenameProject(p DBProject, name string) error
	Writeable() bool
}
