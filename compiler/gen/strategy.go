package gen

// ArtifactKind identifies one of the per-table artifacts every target
// renders.
type ArtifactKind int

// Per-table artifact kinds, in rendering order.
const (
	KindEntity ArtifactKind = iota
	KindRepository
	KindRepositoryImpl
	KindController
	KindService
	KindServiceImpl
	KindCreatePayload
	KindUpdatePayload
	KindValidator
)

// ArtifactKinds lists every per-table artifact kind in rendering order.
var ArtifactKinds = []ArtifactKind{
	KindEntity,
	KindRepository,
	KindRepositoryImpl,
	KindController,
	KindService,
	KindServiceImpl,
	KindCreatePayload,
	KindUpdatePayload,
	KindValidator,
}

var kindNames = [...]string{
	KindEntity:         "entity",
	KindRepository:     "repository",
	KindRepositoryImpl: "repository implementation",
	KindController:     "controller",
	KindService:        "service",
	KindServiceImpl:    "service implementation",
	KindCreatePayload:  "create payload",
	KindUpdatePayload:  "update payload",
	KindValidator:      "validator",
}

// String returns the kind name.
func (k ArtifactKind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// TableArtifact renders one file per table.
type TableArtifact struct {
	Kind ArtifactKind
	// Path returns the slash-separated output path of the table's file. It
	// must honor the view's Dir.
	Path func(*TableView) string
	// Render returns the file content.
	Render func(*TableView) (string, error)
}

// SchemaArtifact renders one file per project.
type SchemaArtifact struct {
	Path   func(*Project) string
	Render func(*Project) (string, error)
}

// StaticPath returns a SchemaArtifact path function for a fixed path.
func StaticPath(path string) func(*Project) string {
	return func(*Project) string { return path }
}

// Strategy is the capability interface of a target framework. The Engine
// drives the generation sequence; strategies only describe paths, renderers
// and type mapping.
//
//	┌────────────┐ uses ┌──────────────┐
//	│   Engine   │─────▶│   Strategy   │
//	└────────────┘      └──────┬───────┘
//	                           │ implemented by
//	            ┌──────────────┼──────────────┐
//	            ▼              ▼              ▼
//	      gen/dotnet     gen/fastapi     gen/golang
type Strategy interface {
	// Target returns the target the strategy generates.
	Target() Target
	// TypeMapper returns the type table of the target.
	TypeMapper() TypeMapper
	// GroupSegment normalizes a group name into a path segment.
	GroupSegment(group string) string
	// TableArtifacts returns the per-table artifacts, one per ArtifactKind,
	// in ArtifactKinds order.
	TableArtifacts() []TableArtifact
	// SchemaArtifacts returns the artifacts rendered once per project.
	SchemaArtifacts() []SchemaArtifact
	// ConnectionString converts a connection descriptor into the target's
	// idiom. Input it cannot interpret is returned unchanged.
	ConnectionString(raw string) string
}
