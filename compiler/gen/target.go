package gen

import (
	"fmt"
	"strings"
)

// Target selects the framework a project is generated for.
type Target string

// Supported targets.
const (
	// TargetDotnet is an ASP.NET Core solution with Dapper repositories.
	TargetDotnet Target = "dotnet"
	// TargetFastAPI is a FastAPI uv workspace with async SQLAlchemy.
	TargetFastAPI Target = "fastapi"
	// TargetGolang is a Go module with database/sql repositories.
	TargetGolang Target = "golang"
)

// Targets lists the supported targets in a stable order.
var Targets = []Target{TargetDotnet, TargetFastAPI, TargetGolang}

var targetAliases = map[string]Target{
	"dotnet":  TargetDotnet,
	"csharp":  TargetDotnet,
	"aspnet":  TargetDotnet,
	"fastapi": TargetFastAPI,
	"python":  TargetFastAPI,
	"golang":  TargetGolang,
	"go":      TargetGolang,
}

// ParseTarget returns the target named by s. Matching is case-insensitive and
// accepts a few aliases ("csharp", "python", "go").
func ParseTarget(s string) (Target, error) {
	if t, ok := targetAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return t, nil
	}
	return "", fmt.Errorf("%w %q (supported: dotnet, fastapi, golang)", ErrUnknownTarget, s)
}

// String returns the target name.
func (t Target) String() string { return string(t) }

// Valid reports whether t is a supported target.
func (t Target) Valid() bool {
	for _, v := range Targets {
		if v == t {
			return true
		}
	}
	return false
}

// UnmarshalText implements encoding.TextUnmarshaler, so targets can be read
// from project files.
func (t *Target) UnmarshalText(text []byte) error {
	v, err := ParseTarget(string(text))
	if err != nil {
		return err
	}
	*t = v
	return nil
}
