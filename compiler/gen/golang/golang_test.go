package golang

import (
	"go/parser"
	"go/token"
	"path"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"
	"golang.org/x/mod/modfile"
	"gopkg.in/yaml.v3"

	"github.com/syssam/archgen/compiler/gen"
	"github.com/syssam/archgen/schema"
	"github.com/syssam/archgen/schema/schematest"
)

func generate(t *testing.T, s *schema.Schema, conn string, opts ...gen.Option) gen.Files {
	t.Helper()
	out, err := gen.Generate(New(), s, conn, opts...)
	require.NoError(t, err)
	require.True(t, out.Complete)
	return out.Files
}

// parseGo fails the test unless every .go file is valid Go.
func parseGo(t *testing.T, files gen.Files) {
	t.Helper()
	fset := token.NewFileSet()
	for name, content := range files {
		if path.Ext(name) != ".go" {
			continue
		}
		_, err := parser.ParseFile(fset, name, content, parser.AllErrors)
		assert.NoError(t, err, name)
	}
}

func TestTableArtifactPaths(t *testing.T) {
	files := generate(t, schematest.Users(), "")
	for _, name := range []string{
		"entity.go",
		"repository.go",
		"repository_sql.go",
		"handler.go",
		"service.go",
		"service_impl.go",
		"create_request.go",
		"update_request.go",
		"validator.go",
	} {
		assert.Contains(t, files, "internal/users/"+name)
	}
	assert.Len(t, New().TableArtifacts(), len(gen.ArtifactKinds))
	for i, a := range New().TableArtifacts() {
		assert.Equal(t, gen.ArtifactKinds[i], a.Kind)
	}
}

func TestSchemaArtifacts(t *testing.T) {
	files := generate(t, schematest.Users(), "", gen.WithProjectName("shop api"), gen.WithModulePath("github.com/acme/shop"))
	for _, p := range []string{
		"cmd/server/main.go",
		"config/config.yaml",
		"config/config.development.yaml",
		"internal/platform/config/config.go",
		"internal/platform/database/database.go",
		"internal/app/container.go",
		"go.mod",
		"go.work",
		"api/schema.graphqls",
		"api/README.md",
		"gqlgen.yml",
		".gitignore",
		"README.md",
	} {
		assert.Contains(t, files, p)
	}
	assert.Len(t, files, 9+13)
	parseGo(t, files)

	main := files["cmd/server/main.go"]
	assert.Contains(t, main, `"github.com/acme/shop/internal/app"`)
	assert.Contains(t, main, "//   - /api/users (users)")
	assert.Contains(t, main, "app.New(db).Register(mux)")
	assert.Contains(t, files["README.md"], "# ShopApi")
	assert.Contains(t, files[".gitignore"], "/server")
}

func TestEntity(t *testing.T) {
	files := generate(t, schematest.Users(), "")
	entity := files["internal/users/entity.go"]

	assert.Contains(t, entity, "// Package users serves the public.users table.\npackage users")
	assert.Contains(t, entity, "type Users struct {")
	assert.Regexp(t, `ID\s+int32\s+`+"`"+`db:"id" json:"id"`+"`", entity)
	assert.Regexp(t, `Email\s+\*string\s+`+"`"+`db:"email" json:"email,omitempty"`+"`", entity)
	assert.Regexp(t, `CreatedAt\s+time\.Time\s+`, entity)
	assert.Contains(t, entity, `import "time"`)
	assert.Contains(t, entity, `return "public.users"`)
	for _, c := range []string{"id", "username", "email", "created_at"} {
		assert.Equal(t, 1, strings.Count(entity, `db:"`+c+`"`), c)
	}
}

func TestSQLRepository(t *testing.T) {
	files := generate(t, schematest.Users(), "")
	repo := files["internal/users/repository_sql.go"]
	assert.Contains(t, repo, `"SELECT id, username, email, created_at FROM public.users"`)
	assert.Contains(t, repo, `"INSERT INTO public.users (username, email, created_at) VALUES ($1, $2, $3) RETURNING id, username, email, created_at"`)
	assert.Contains(t, repo, `"UPDATE public.users SET username = $1, email = $2, created_at = $3 WHERE id = $4"`)
	assert.Contains(t, repo, `"DELETE FROM public.users WHERE id = $1"`)
	assert.Contains(t, repo, "return scan(r.db.QueryRowContext(ctx, insertQuery, e.Username, e.Email, e.CreatedAt))")
	assert.Contains(t, repo, "errors.Is(err, sql.ErrNoRows)")
	assert.Contains(t, files["internal/users/repository.go"], `var ErrNotFound = errors.New("users: not found")`)
}

func TestDialects(t *testing.T) {
	tests := []struct {
		dialect string
		insert  string
		create  string
		driver  string
	}{
		{
			dialect: "mysql",
			insert:  `"INSERT INTO public.users (username, email, created_at) VALUES (?, ?, ?)"`,
			create:  "return r.Get(ctx, int32(id))",
			driver:  `_ "github.com/go-sql-driver/mysql"`,
		},
		{
			dialect: "sqlite",
			insert:  `"INSERT INTO public.users (username, email, created_at) VALUES (?, ?, ?) RETURNING id, username, email, created_at"`,
			create:  "return scan(r.db.QueryRowContext(",
			driver:  `_ "modernc.org/sqlite"`,
		},
		{
			dialect: "postgres",
			insert:  "VALUES ($1, $2, $3) RETURNING",
			create:  "return scan(r.db.QueryRowContext(",
			driver:  `_ "github.com/lib/pq"`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.dialect, func(t *testing.T) {
			s := schematest.Users()
			s.Dialect = tt.dialect
			files := generate(t, s, "")
			parseGo(t, files)
			assert.Contains(t, files["internal/users/repository_sql.go"], tt.insert)
			assert.Contains(t, files["internal/users/repository_sql.go"], tt.create)
			assert.Contains(t, files["internal/platform/database/database.go"], tt.driver)

			mod, err := modfile.Parse("go.mod", []byte(files["go.mod"]), nil)
			require.NoError(t, err)
			var paths []string
			for _, r := range mod.Require {
				paths = append(paths, r.Mod.Path)
			}
			assert.Contains(t, paths, drivers[tt.dialect].Module.Path)
			assert.Len(t, paths, 3)
		})
	}
}

func TestForeignKeys(t *testing.T) {
	files := generate(t, schematest.Orders(), "")
	parseGo(t, files)

	repo := files["internal/orderitems/repository.go"]
	assert.Contains(t, repo, "ListByOrderID(ctx context.Context, orderID int32) ([]*OrderItems, error)")

	impl := files["internal/orderitems/repository_sql.go"]
	assert.Regexp(t, `selectQuery ?\+ ?" WHERE order_id = \$1", orderID`, impl)

	handler := files["internal/orderitems/handler.go"]
	assert.Contains(t, handler, `mux.HandleFunc("GET /api/order-items/by-order-id/{orderID}", h.listByOrderID)`)
	assert.Contains(t, handler, `mux.HandleFunc("GET /api/order-items/{id}", h.get)`)
	assert.Contains(t, handler, "func parseOrderID(s string) (int32, error)")
	assert.Contains(t, handler, "strconv.ParseInt(s, 10, 32)")
	assert.Contains(t, handler, "errors.As(err, &verr)")

	validator := files["internal/orderitems/validator.go"]
	assert.Contains(t, validator, "if req.OrderID <= 0 {")
	assert.Contains(t, validator, `"must reference an existing orders"`)
	assert.Contains(t, validator, "if utf8.RuneCountInString(req.Sku) > 32 {")
	assert.Contains(t, validator, "if req.Sku != nil && utf8.RuneCountInString(*req.Sku) > 32 {")
	assert.Contains(t, validator, "return errors.Join(errs...)")

	assert.Contains(t, files["internal/orderitems/service_impl.go"], "return s.repository.ListByOrderID(ctx, orderID)")
}

func TestRequests(t *testing.T) {
	files := generate(t, schematest.Orders(), "")

	create := files["internal/orders/create_request.go"]
	assert.Regexp(t, `CustomerName\s+string\s+`+"`"+`json:"customer_name"`+"`", create)
	assert.Regexp(t, `Total\s+\*string\s+`+"`"+`json:"total,omitempty"`+"`", create)

	update := files["internal/orders/update_request.go"]
	assert.Regexp(t, `CustomerName\s+\*string\s+`+"`"+`json:"customer_name,omitempty"`+"`", update)
	assert.Contains(t, update, "e.CustomerName = *r.CustomerName")
	assert.Contains(t, update, "e.Total = r.Total")
}

func TestSurrogateKey(t *testing.T) {
	out, err := gen.Generate(New(), schematest.Keyless(), "")
	require.NoError(t, err)
	parseGo(t, out.Files)
	entity := out.Files["internal/auditlog/entity.go"]
	assert.Contains(t, entity, "// surrogate key, not declared by the table")
	assert.Regexp(t, `Payload\s+json\.RawMessage\s+`, entity)
	assert.Contains(t, out.Files["internal/auditlog/repository.go"], "Get(ctx context.Context, id int32) (*AuditLog, error)")
	require.Len(t, out.Warnings, 1)
}

func TestGrouping(t *testing.T) {
	groups := schema.Groups{{Name: "sales", Tables: []string{"orders", "invoices"}}}
	files := generate(t, schematest.Shop(), "", gen.WithGroups(groups))
	parseGo(t, files)

	assert.Contains(t, files, "internal/sales/orders/entity.go")
	assert.Contains(t, files, "internal/sales/invoices/validator.go")
	assert.Contains(t, files, "internal/general/customers/entity.go")
	assert.NotContains(t, files, "internal/orders/entity.go")
	assert.Contains(t, files["internal/sales/orders/entity.go"], "package orders")

	container := files["internal/app/container.go"]
	assert.Contains(t, container, `"example.com/generated-app/internal/sales/orders"`)
	assert.Contains(t, container, `"example.com/generated-app/internal/general/customers"`)
	assert.Contains(t, container, "orders.NewService(orders.NewSQLRepository(db), orders.NewValidator())")

	var cfg gqlgenConfig
	require.NoError(t, yaml.Unmarshal([]byte(files["gqlgen.yml"]), &cfg))
	assert.Contains(t, cfg.Autobind, "example.com/generated-app/internal/sales/invoices")
	assert.Contains(t, files["README.md"], "### Sales")
	assert.Contains(t, files["README.md"], "### General")
}

func TestGraphQLSchema(t *testing.T) {
	files := generate(t, schematest.Merge(schematest.Shop(), schematest.Keyless()), "")
	sdl := files["api/schema.graphqls"]

	s, err := gqlparser.LoadSchema(&ast.Source{Name: "schema.graphqls", Input: sdl})
	require.Nil(t, err)

	orders := s.Types["Orders"]
	require.NotNil(t, orders)
	assert.Equal(t, "ID!", orders.Fields.ForName("id").Type.String())
	assert.Equal(t, "String!", orders.Fields.ForName("customerId").Type.String())
	assert.Equal(t, "Time", orders.Fields.ForName("placedAt").Type.String())

	assert.Equal(t, "String", s.Types["UpdateInvoicesInput"].Fields.ForName("amount").Type.String())
	assert.Equal(t, "String!", s.Types["CreateInvoicesInput"].Fields.ForName("amount").Type.String())
	assert.Equal(t, "Map", s.Types["AuditLog"].Fields.ForName("payload").Type.String())

	assert.NotNil(t, s.Query.Fields.ForName("orders"))
	assert.NotNil(t, s.Query.Fields.ForName("order"))
	assert.NotNil(t, s.Query.Fields.ForName("invoicesByOrderID"))
	assert.Equal(t, "Boolean!", s.Mutation.Fields.ForName("deleteCustomers").Type.String())
	assert.Contains(t, sdl, "scalar Map")
	assert.Contains(t, sdl, "scalar Time")
}

func TestEmptySchema(t *testing.T) {
	files := generate(t, &schema.Schema{Dialect: "postgres"}, "")
	parseGo(t, files)
	_, err := gqlparser.LoadSchema(&ast.Source{Name: "schema.graphqls", Input: files["api/schema.graphqls"]})
	require.Nil(t, err)
	assert.Contains(t, files["internal/app/container.go"], "type Container struct")
}

func TestGoModAndWork(t *testing.T) {
	files := generate(t, schematest.Users(), "", gen.WithModulePath("github.com/acme/shop"))

	mod, err := modfile.Parse("go.mod", []byte(files["go.mod"]), nil)
	require.NoError(t, err)
	assert.Equal(t, "github.com/acme/shop", mod.Module.Mod.Path)
	assert.Equal(t, goVersion, mod.Go.Version)
	require.Len(t, mod.Tool, 1)
	assert.Equal(t, gqlgenModule.Path, mod.Tool[0].Path)

	work, err := modfile.ParseWork("go.work", []byte(files["go.work"]), nil)
	require.NoError(t, err)
	require.Len(t, work.Use, 1)
	assert.Equal(t, ".", work.Use[0].Path)
}

func TestConfigFiles(t *testing.T) {
	files := generate(t, schematest.Users(), "Host=db;Database=shop;Username=app")

	var cfg appConfig
	require.NoError(t, yaml.Unmarshal([]byte(files["config/config.yaml"]), &cfg))
	assert.Equal(t, "postgres://app@db/shop", cfg.Database.DSN)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, ":8080", cfg.Server.Addr)

	require.NoError(t, yaml.Unmarshal([]byte(files["config/config.development.yaml"]), &cfg))
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "postgres://app@db/shop", cfg.Database.DSN)

	assert.Contains(t, files["internal/platform/config/config.go"], `os.Getenv("DATABASE_URL")`)
}

func TestConnectionString(t *testing.T) {
	s := New()
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"postgres url", "postgresql://app:pw@db:5433/shop", "postgresql://app:pw@db:5433/shop"},
		{"key value", "Host=db;Port=5433;Database=shop;Username=app;Password=pw", "postgres://app:pw@db:5433/shop"},
		{"mysql", "mysql://root:pw@db/shop", "root:pw@tcp(db:3306)/shop?parseTime=true"},
		{"sqlite", "./app.db", "./app.db"},
		{"sqlite url", "sqlite:///var/data/app.db", "/var/data/app.db"},
		{"empty", "", ""},
		{"garbage", "not a connection string", "not a connection string"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, s.ConnectionString(tt.input))
		})
	}
}

func TestTypeMapper(t *testing.T) {
	m := New().TypeMapper()
	tests := []struct {
		source   string
		nullable bool
		expected string
	}{
		{"integer", false, "int32"},
		{"integer", true, "*int32"},
		{"bigint", false, "int64"},
		{"smallint", false, "int16"},
		{"varchar(255)", true, "*string"},
		{"uuid", false, "string"},
		{"numeric(10,2)", false, "string"},
		{"timestamp with time zone", true, "*time.Time"},
		{"bytea", true, "[]byte"},
		{"jsonb", true, "json.RawMessage"},
		{"DATETIME", false, "time.Time"},
		{"order_status", false, "string"},
	}
	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			assert.Equal(t, tt.expected, m.MapType(tt.source, tt.nullable))
		})
	}
	assert.Equal(t, "Int", m.ColumnType("bigint"))
	assert.Equal(t, "Time", m.ColumnType("timestamp"))
	assert.Equal(t, "String", m.ColumnType("uuid"))
}

func TestNames(t *testing.T) {
	c := &gen.ColumnView{Name: "user_id"}
	assert.Equal(t, "UserID", FieldName(c))
	assert.Equal(t, "userID", ParamName(c))
	assert.Equal(t, "OrderItems", TypeName(&gen.TableView{Name: "OrderItems", Snake: "order_items"}))
}

func TestDeterminism(t *testing.T) {
	s := schematest.Merge(schematest.Orders(), schematest.Keyless())
	a := generate(t, s, "postgres://u:p@h/db")
	b := generate(t, s, "postgres://u:p@h/db")
	assert.Equal(t, a, b)
}
