// Package datafetcher holds the resolution functions bound to schema field
// coordinates.
package datafetcher

import (
	"context"
	"fmt"

	dataloader "github.com/hanpama/gqlboot/internal/dataloader"
)

// Environment is everything a fetcher sees about the field being resolved.
type Environment struct {
	Context    context.Context
	ParentType string
	Field      string
	Source     any
	Arguments  map[string]any
}

// Coordinate is the "Type.field" name of the field being resolved.
func (e Environment) Coordinate() string { return e.ParentType + "." + e.Field }

// DataFetcher resolves one field for one parent value.
type DataFetcher interface {
	Get(env Environment) (any, error)
}

// BatchDataFetcher resolves one field for many parent values at once.
// Results are returned in the order of envs.
type BatchDataFetcher interface {
	DataFetcher
	GetMany(envs []Environment) []Result
}

// Result is the outcome for one parent of a batched resolution.
type Result = dataloader.Result

// Func adapts a function to DataFetcher.
type Func func(env Environment) (any, error)

func (f Func) Get(env Environment) (any, error) { return f(env) }

// Constant always returns the same value. It backs synthetic group fields
// whose only purpose is to let execution descend into the group's type.
type Constant struct {
	Value any
}

func (c Constant) Get(Environment) (any, error) { return c.Value, nil }

func (c Constant) String() string { return fmt.Sprintf("constant(%v)", c.Value) }
