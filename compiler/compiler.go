// Package compiler runs the code generation strategy of a target over an
// introspected schema.
//
//	s, err := introspect.Read(ctx, "postgres://app@localhost/shop")
//	if err != nil {
//		return err
//	}
//	out, err := compiler.Generate(s, conn, gen.TargetGolang,
//		gen.WithModulePath("github.com/acme/shop"),
//	)
//
// Adding a target means adding a strategy package under compiler/gen and a
// case to StrategyFor.
package compiler

import (
	"context"

	"github.com/syssam/archgen/compiler/gen"
	"github.com/syssam/archgen/compiler/gen/dotnet"
	"github.com/syssam/archgen/compiler/gen/fastapi"
	"github.com/syssam/archgen/compiler/gen/golang"
	"github.com/syssam/archgen/introspect"
	"github.com/syssam/archgen/schema"
)

// StrategyFor returns the generation strategy of a target. Aliases accepted
// by gen.ParseTarget ("go", "python") resolve to their target.
func StrategyFor(t gen.Target) (gen.Strategy, error) {
	switch t {
	case gen.TargetDotnet:
		return dotnet.New(), nil
	case gen.TargetFastAPI:
		return fastapi.New(), nil
	case gen.TargetGolang:
		return golang.New(), nil
	}
	parsed, err := gen.ParseTarget(string(t))
	if err != nil {
		return nil, err
	}
	return StrategyFor(parsed)
}

// Generate renders the project of schema s for target t. conn is normalized
// for the target and embedded in the generated configuration.
func Generate(s *schema.Schema, conn string, t gen.Target, opts ...gen.Option) (*gen.Output, error) {
	strategy, err := StrategyFor(t)
	if err != nil {
		return nil, err
	}
	return gen.Generate(strategy, s, conn, opts...)
}

// GenerateFromDatabase introspects the database behind conn and renders its
// project for target t. Introspection failures are returned unchanged, so
// callers can test them with introspect.IsConnectivityError.
func GenerateFromDatabase(ctx context.Context, conn string, t gen.Target, read []introspect.Option, opts ...gen.Option) (*gen.Output, error) {
	strategy, err := StrategyFor(t)
	if err != nil {
		return nil, err
	}
	s, err := introspect.Read(ctx, conn, read...)
	if err != nil {
		return nil, err
	}
	return gen.Generate(strategy, s, conn, opts...)
}
