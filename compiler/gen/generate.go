package gen

import (
	"fmt"

	"github.com/syssam/archgen/schema"
)

// Engine runs the generation sequence of one Strategy.
type Engine struct {
	strategy Strategy
	config   *Config
}

// NewEngine creates an Engine for the strategy with the given options.
func NewEngine(s Strategy, opts ...Option) (*Engine, error) {
	if s == nil {
		return nil, NewConfigError("Strategy", nil, "strategy cannot be nil")
	}
	cfg, err := NewConfig(opts...)
	if err != nil {
		return nil, err
	}
	return &Engine{strategy: s, config: cfg}, nil
}

// Config returns the engine configuration.
func (e *Engine) Config() *Config { return e.config }

// Generate renders the project of schema s. conn is embedded in the
// generated configuration after normalization for the target; it may be
// empty.
//
// Tables are processed in schema order: nine artifacts per table, then the
// schema-wide artifacts once. A table name found in several schemas is
// qualified with the schema (see TableView.Qualify) so paths stay unique. On a rendering failure Generate returns a
// *GenerationError together with the files rendered so far, and
// Output.Complete is false.
func (e *Engine) Generate(s *schema.Schema, conn string) (*Output, error) {
	if s == nil {
		return nil, NewConfigError("Schema", nil, "schema cannot be nil")
	}
	var (
		cfg    = e.config
		logger = cfg.Logger.With("target", e.strategy.Target().String())
		mapper = e.strategy.TypeMapper()
		out    = &Output{Files: make(Files)}
	)
	s = s.Filter(cfg.Include, cfg.Exclude)
	out.Warnings = e.schemaWarnings(s)
	shared := s.SharedNames()

	e.progress(ProgressStart, MsgStart)
	views := make([]*TableView, 0, len(s.Tables))
	for i, t := range s.Tables {
		e.progress(tableProgress(i, len(s.Tables)), MsgTable(t.Name))
		group := ""
		if cfg.Grouped {
			group = cfg.Groups.GroupOf(t.Name)
		}
		v := NewTableView(t, mapper, group)
		v.Dialect = s.Dialect
		if shared[t.Name] {
			v.Qualify()
			logger.Debug("table name shared by schemas", "table", t.QualifiedName(), "name", v.Pascal)
		}
		for _, fk := range v.ForeignKeys {
			if shared[fk.References.Table] {
				fk.References.Qualify(t.Schema)
			}
		}
		if cfg.Grouped {
			v.Dir = e.strategy.GroupSegment(group)
		}
		if v.Surrogate {
			msg := fmt.Sprintf("no primary key; using surrogate key %q of type %s", v.PrimaryKey.Name, v.PrimaryKey.Type)
			logger.Warn("surrogate primary key", "table", t.QualifiedName(), "column", v.PrimaryKey.Name)
			out.Warnings = append(out.Warnings, Warning{Table: t.Name, Message: msg})
		}
		for _, a := range e.strategy.TableArtifacts() {
			p := a.Path(v)
			if err := out.add(p, func() (string, error) { return a.Render(v) }); err != nil {
				gerr := NewGenerationError("table", t.Name, p, err)
				gerr.Message = a.Kind.String()
				return out, gerr
			}
		}
		logger.Debug("table rendered", "table", t.QualifiedName(), "group", group)
		views = append(views, v)
	}

	e.progress(ProgressSchema, MsgSchema)
	project := e.project(s, conn, views)
	for _, a := range e.strategy.SchemaArtifacts() {
		p := a.Path(project)
		if err := out.add(p, func() (string, error) { return a.Render(project) }); err != nil {
			return out, NewGenerationError("schema", "", p, err)
		}
	}

	out.Complete = true
	e.progress(ProgressComplete, MsgComplete)
	logger.Info("generation complete",
		"tables", len(views),
		"files", len(out.Files),
		"bytes", out.Files.Size(),
		"warnings", len(out.Warnings),
	)
	return out, nil
}

// add renders one file. Two artifacts rendering to the same path are an
// error, since the later one would hide the earlier.
func (o *Output) add(path string, render func() (string, error)) error {
	if _, ok := o.Files[path]; ok {
		return fmt.Errorf("path %s already generated", path)
	}
	content, err := render()
	if err != nil {
		return err
	}
	o.Files[path] = content
	return nil
}

func (e *Engine) schemaWarnings(s *schema.Schema) []Warning {
	var ws []Warning
	for _, d := range s.DanglingReferences() {
		msg := fmt.Sprintf("column %s references missing %s.%s", d.Column, d.RefTable, d.RefColumn)
		e.config.Logger.Warn("dangling foreign key", "table", d.Table, "column", d.Column, "references", d.RefTable)
		ws = append(ws, Warning{Table: d.Table, Message: msg})
	}
	if e.config.Grouped {
		for _, name := range e.config.Groups.Unknown(s) {
			ws = append(ws, Warning{Message: fmt.Sprintf("grouped table %s not found in schema", name)})
		}
	}
	return ws
}

func (e *Engine) project(s *schema.Schema, conn string, views []*TableView) *Project {
	p := &Project{
		Name:       e.config.ProjectName,
		Module:     e.config.ModulePath,
		Target:     e.strategy.Target(),
		Dialect:    s.Dialect,
		Connection: e.strategy.ConnectionString(conn),
		Tables:     views,
		Grouped:    e.config.Grouped,
	}
	if !p.Grouped {
		return p
	}
	names := make([]string, 0, len(e.config.Groups)+1)
	for _, g := range e.config.Groups {
		names = append(names, g.Name)
	}
	names = append(names, schema.DefaultGroup)
	for _, name := range names {
		if p.Group(name) != nil {
			continue
		}
		g := &GroupView{Name: name, Dir: e.strategy.GroupSegment(name)}
		for _, v := range views {
			if v.Group == name {
				g.Tables = append(g.Tables, v)
			}
		}
		if len(g.Tables) > 0 {
			p.Groups = append(p.Groups, g)
		}
	}
	return p
}

func (e *Engine) progress(percent int, msg string) {
	if e.config.Progress != nil {
		e.config.Progress(percent, msg)
	}
}

// Generate is a shorthand for NewEngine followed by Engine.Generate.
func Generate(s Strategy, sch *schema.Schema, conn string, opts ...Option) (*Output, error) {
	e, err := NewEngine(s, opts...)
	if err != nil {
		return nil, err
	}
	return e.Generate(sch, conn)
}
