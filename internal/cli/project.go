package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/syssam/archgen/dsn"
	"github.com/syssam/archgen/schema"
)

// Project is the content of the project file (archgen.yaml):
//
//	dsn: postgres://app@localhost/shop
//	target: golang
//	out: ./shop
//	project: Shop
//	module: github.com/acme/shop
//	exclude: [schema_migrations]
//	groups:
//	  Sales: [orders, invoices]
type Project struct {
	DSN      string              `yaml:"dsn,omitempty"`
	Snapshot string              `yaml:"snapshot,omitempty"`
	Target   string              `yaml:"target,omitempty"`
	Out      string              `yaml:"out,omitempty"`
	Zip      string              `yaml:"zip,omitempty"`
	Project  string              `yaml:"project,omitempty"`
	Module   string              `yaml:"module,omitempty"`
	Schemas  []string            `yaml:"schemas,omitempty"`
	Include  []string            `yaml:"include,omitempty"`
	Exclude  []string            `yaml:"exclude,omitempty"`
	Groups   map[string][]string `yaml:"groups,omitempty"`
}

// Defaults of unset project values.
const (
	DefaultTarget = "dotnet"
	DefaultOut    = "generated"
)

// LoadProject reads a project file. A missing file yields an empty project
// unless required is set.
func LoadProject(path string, required bool) (*Project, error) {
	b, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist) && !required:
		return &Project{}, nil
	case err != nil:
		return nil, err
	}
	p := &Project{}
	if err := yaml.Unmarshal(b, p); err != nil {
		return nil, fmt.Errorf("archgen: project file %s: %w", path, err)
	}
	return p, nil
}

// merge overrides p with the non-zero values of o.
func (p *Project) merge(o *Project) {
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&p.DSN, o.DSN)
	set(&p.Snapshot, o.Snapshot)
	set(&p.Target, o.Target)
	set(&p.Out, o.Out)
	set(&p.Zip, o.Zip)
	set(&p.Project, o.Project)
	set(&p.Module, o.Module)
	if len(o.Schemas) > 0 {
		p.Schemas = o.Schemas
	}
	if len(o.Include) > 0 {
		p.Include = o.Include
	}
	if len(o.Exclude) > 0 {
		p.Exclude = o.Exclude
	}
}

func (p *Project) defaults() {
	if p.Target == "" {
		p.Target = DefaultTarget
	}
	if p.Out == "" {
		p.Out = DefaultOut
	}
}

// GroupSet returns the groups of the project ordered by name, or nil when
// none are configured.
func (p *Project) GroupSet() schema.Groups {
	if len(p.Groups) == 0 {
		return nil
	}
	return schema.NewGroups(p.Groups)
}

// ResolveDSN returns the connection descriptor of the project, falling back
// to the environment: ARCHGEN_DATABASE_URL, then POSTGRES_CONNECTION_STRING,
// then the POSTGRES_HOST family of variables.
func (p *Project) ResolveDSN(getenv func(string) string) string {
	if p.DSN != "" {
		return p.DSN
	}
	for _, key := range []string{"ARCHGEN_DATABASE_URL", "POSTGRES_CONNECTION_STRING"} {
		if v := getenv(key); v != "" {
			return v
		}
	}
	host := getenv("POSTGRES_HOST")
	if host == "" {
		return ""
	}
	return dsn.KeyValue(
		[2]string{"Host", host},
		[2]string{"Port", getenv("POSTGRES_PORT")},
		[2]string{"Database", getenv("POSTGRES_DATABASE")},
		[2]string{"Username", getenv("POSTGRES_USER")},
		[2]string{"Password", getenv("POSTGRES_PASSWORD")},
	)
}
