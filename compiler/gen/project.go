package gen

// Project is the input of schema-wide artifacts.
type Project struct {
	// Name is the Pascal-cased project name, e.g. "GeneratedApp".
	Name string
	// Module is the Go module path of golang projects.
	Module string
	Target Target
	// Dialect is the source database dialect.
	Dialect string
	// Connection is the connection string normalized for the target.
	Connection string
	// Tables are the table views in schema order.
	Tables []*TableView
	// Grouped reports that tables are placed under group directories.
	Grouped bool
	// Groups lists the groups holding at least one table: the configured
	// groups in configuration order, then the default group.
	Groups []*GroupView
}

// GroupView is a group and its tables.
type GroupView struct {
	Name   string
	Dir    string
	Tables []*TableView
}

// Group returns the named group, or nil.
func (p *Project) Group(name string) *GroupView {
	for _, g := range p.Groups {
		if g.Name == name {
			return g
		}
	}
	return nil
}

// HasSurrogates reports whether any table has a surrogate key.
func (p *Project) HasSurrogates() bool {
	for _, t := range p.Tables {
		if t.Surrogate {
			return true
		}
	}
	return false
}
