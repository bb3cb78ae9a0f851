// Package gen provides the target-independent half of project generation.
//
// It turns a database schema into table views and drives one target
// framework's Strategy over them, collecting the rendered files in memory.
//
// # Architecture
//
// The generation pipeline follows this flow:
//
//	schema.Schema (introspected or read from a snapshot)
//	        ↓
//	   Filter (WithTables / WithExcludeTables)
//	        ↓
//	   TableView per table (names, target types, primary key)
//	        ↓
//	   Strategy.TableArtifacts (nine files per table)
//	        ↓
//	   Strategy.SchemaArtifacts (entry point, configuration, project files)
//	        ↓
//	   Output (Files, Warnings)
//
// # Key Types
//
//   - Engine: runs the generation sequence of one Strategy
//   - Strategy: paths, renderers and type mapping of a target framework
//   - TypeMapper: source column types to target types
//   - TableView, ColumnView: a table prepared for rendering
//   - Project: the input of schema-wide artifacts
//   - Output: the rendered files and the warnings of a run
//
// # Error Handling
//
// The package uses structured error types:
//
//   - ConfigError: invalid options, matched by ErrMissingConfig
//   - GenerationError: a failed artifact, matched by ErrGenerationFailed
//
// A GenerationError is returned together with the files rendered before the
// failure; Output.Complete tells them apart from a finished run:
//
//	out, err := gen.Generate(strategy, s, conn)
//	if gen.IsGenerationError(err) {
//	    log.Printf("stopped after %d files", len(out.Files))
//	}
//
// # Configuration
//
// Configuration is done via the functional options pattern:
//
//	out, err := gen.Generate(golang.New(), s, conn,
//	    gen.WithProjectName("shop"),
//	    gen.WithModulePath("github.com/acme/shop"),
//	    gen.WithGroups(schema.Groups{{Name: "Sales", Tables: []string{"orders"}}}),
//	    gen.WithProgress(func(percent int, msg string) {
//	        fmt.Printf("[%3d%%] %s\n", percent, msg)
//	    }),
//	)
//
// # Templates
//
// Targets render text with text/template (see ParseTemplates and Funcs) or,
// for Go sources, with Jennifer. Either way a renderer is a pure function of
// its view, so a schema always produces the same files.
package gen
