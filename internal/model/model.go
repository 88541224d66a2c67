// Package model holds the declarative schema model handed to the bootstrap
// compiler. Values in this package are produced by an external scanner and are
// never mutated once compilation starts.
package model

import "sort"

type Schema struct {
	Queries          []Operation               `yaml:"queries,omitempty" json:"queries,omitempty"`
	GroupedQueries   []GroupedOperations       `yaml:"groupedQueries,omitempty" json:"groupedQueries,omitempty"`
	Mutations        []Operation               `yaml:"mutations,omitempty" json:"mutations,omitempty"`
	GroupedMutations []GroupedOperations       `yaml:"groupedMutations,omitempty" json:"groupedMutations,omitempty"`
	Types            map[string]*Type          `yaml:"types,omitempty" json:"types,omitempty"`
	Interfaces       map[string]*InterfaceType `yaml:"interfaces,omitempty" json:"interfaces,omitempty"`
	Inputs           map[string]*InputType     `yaml:"inputs,omitempty" json:"inputs,omitempty"`
	Enums            map[string]*EnumType      `yaml:"enums,omitempty" json:"enums,omitempty"`
	Errors           map[string]*ErrorInfo     `yaml:"errors,omitempty" json:"errors,omitempty"`
}

// HasOperations reports whether the model declares at least one root
// operation, directly or inside a group.
func (s *Schema) HasOperations() bool {
	if s == nil {
		return false
	}
	if len(s.Queries) > 0 || len(s.Mutations) > 0 {
		return true
	}
	for _, g := range s.GroupedQueries {
		if len(g.Operations) > 0 {
			return true
		}
	}
	for _, g := range s.GroupedMutations {
		if len(g.Operations) > 0 {
			return true
		}
	}
	return false
}

// SortedTypes returns the object types ordered by key.
func (s *Schema) SortedTypes() []*Type {
	out := make([]*Type, 0, len(s.Types))
	for _, k := range sortedKeys(s.Types) {
		out = append(out, s.Types[k])
	}
	return out
}

// SortedInterfaces returns the interface types ordered by key.
func (s *Schema) SortedInterfaces() []*InterfaceType {
	out := make([]*InterfaceType, 0, len(s.Interfaces))
	for _, k := range sortedKeys(s.Interfaces) {
		out = append(out, s.Interfaces[k])
	}
	return out
}

// SortedInputs returns the input types ordered by key.
func (s *Schema) SortedInputs() []*InputType {
	out := make([]*InputType, 0, len(s.Inputs))
	for _, k := range sortedKeys(s.Inputs) {
		out = append(out, s.Inputs[k])
	}
	return out
}

// SortedEnums returns the enum types ordered by key.
func (s *Schema) SortedEnums() []*EnumType {
	out := make([]*EnumType, 0, len(s.Enums))
	for _, k := range sortedKeys(s.Enums) {
		out = append(out, s.Enums[k])
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ReferenceType is the closed set of value-type kinds a Reference can carry.
type ReferenceType string

const (
	ReferenceTypeScalar    ReferenceType = "SCALAR"
	ReferenceTypeEnum      ReferenceType = "ENUM"
	ReferenceTypeType      ReferenceType = "TYPE"
	ReferenceTypeInterface ReferenceType = "INTERFACE"
	ReferenceTypeInput     ReferenceType = "INPUT"
)

// Valid reports whether t is one of the five known kinds.
func (t ReferenceType) Valid() bool {
	switch t {
	case ReferenceTypeScalar, ReferenceTypeEnum, ReferenceTypeType, ReferenceTypeInterface, ReferenceTypeInput:
		return true
	}
	return false
}

// Reference describes a value type: its GraphQL name, the runtime class
// backing it and the kind of GraphQL type it maps to.
type Reference struct {
	ClassName        string        `yaml:"className" json:"className"`
	Name             string        `yaml:"name" json:"name"`
	Type             ReferenceType `yaml:"type" json:"type"`
	GraphQLClassName string        `yaml:"graphqlClassName,omitempty" json:"graphqlClassName,omitempty"`
	Mapping          *Mapping      `yaml:"mapping,omitempty" json:"mapping,omitempty"`
}

// HasMapping reports whether the reference is globally mapped to another type.
func (r Reference) HasMapping() bool { return r.Mapping != nil && r.Mapping.Reference != nil }

// ExposedClassName is the class the value is exposed as on the wire.
func (r Reference) ExposedClassName() string {
	if r.GraphQLClassName != "" {
		return r.GraphQLClassName
	}
	return r.ClassName
}

// Mapping points a declared value type at a different wire type.
type Mapping struct {
	Reference *Reference `yaml:"reference" json:"reference"`
}

// Array is collection metadata for a field, argument or operation.
type Array struct {
	ClassName string `yaml:"className" json:"className"`
	Depth     int    `yaml:"depth" json:"depth"`
	NotEmpty  bool   `yaml:"notEmpty,omitempty" json:"notEmpty,omitempty"`
}

type Field struct {
	Name         string    `yaml:"name" json:"name"`
	PropertyName string    `yaml:"propertyName,omitempty" json:"propertyName,omitempty"`
	Description  string    `yaml:"description,omitempty" json:"description,omitempty"`
	Reference    Reference `yaml:"reference" json:"reference"`
	Array        *Array    `yaml:"array,omitempty" json:"array,omitempty"`
	NotNull      bool      `yaml:"notNull,omitempty" json:"notNull,omitempty"`
	DefaultValue string    `yaml:"defaultValue,omitempty" json:"defaultValue,omitempty"`
	Mapping      *Mapping  `yaml:"mapping,omitempty" json:"mapping,omitempty"`
}

func (f Field) HasArray() bool   { return f.Array != nil && f.Array.Depth > 0 }
func (f Field) HasMapping() bool { return f.Mapping != nil && f.Mapping.Reference != nil }

type Argument struct {
	Field          `yaml:",inline"`
	SourceArgument bool `yaml:"sourceArgument,omitempty" json:"sourceArgument,omitempty"`
}

// Operation is a field backed by a business method. ClassName and MethodName
// identify the method to invoke.
type Operation struct {
	Field      `yaml:",inline"`
	ClassName  string     `yaml:"className" json:"className"`
	MethodName string     `yaml:"methodName" json:"methodName"`
	Arguments  []Argument `yaml:"arguments,omitempty" json:"arguments,omitempty"`
	Batch      bool       `yaml:"batch,omitempty" json:"batch,omitempty"`
	Grouped    bool       `yaml:"grouped,omitempty" json:"grouped,omitempty"`
}

// Group nests a set of root operations under one synthetic field.
type Group struct {
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
}

type GroupedOperations struct {
	Group      Group       `yaml:"group" json:"group"`
	Operations []Operation `yaml:"operations" json:"operations"`
}

type EnumType struct {
	Name        string   `yaml:"name" json:"name"`
	Description string   `yaml:"description,omitempty" json:"description,omitempty"`
	ClassName   string   `yaml:"className" json:"className"`
	Values      []string `yaml:"values" json:"values"`
}

type InterfaceType struct {
	Name        string      `yaml:"name" json:"name"`
	Description string      `yaml:"description,omitempty" json:"description,omitempty"`
	ClassName   string      `yaml:"className" json:"className"`
	Fields      []Field     `yaml:"fields,omitempty" json:"fields,omitempty"`
	Interfaces  []Reference `yaml:"interfaces,omitempty" json:"interfaces,omitempty"`
}

type InputType struct {
	Name        string  `yaml:"name" json:"name"`
	Description string  `yaml:"description,omitempty" json:"description,omitempty"`
	ClassName   string  `yaml:"className" json:"className"`
	Fields      []Field `yaml:"fields,omitempty" json:"fields,omitempty"`
}

type Type struct {
	Name            string      `yaml:"name" json:"name"`
	Description     string      `yaml:"description,omitempty" json:"description,omitempty"`
	ClassName       string      `yaml:"className" json:"className"`
	Fields          []Field     `yaml:"fields,omitempty" json:"fields,omitempty"`
	Operations      []Operation `yaml:"operations,omitempty" json:"operations,omitempty"`
	BatchOperations []Operation `yaml:"batchOperations,omitempty" json:"batchOperations,omitempty"`
	Interfaces      []Reference `yaml:"interfaces,omitempty" json:"interfaces,omitempty"`
}

// HasBatchOperation reports whether a batch operation named name exists.
func (t *Type) HasBatchOperation(name string) bool {
	for _, op := range t.BatchOperations {
		if op.Name == name {
			return true
		}
	}
	return false
}

// ErrorInfo maps an error class to the code reported to clients.
type ErrorInfo struct {
	ClassName string `yaml:"className" json:"className"`
	ErrorCode string `yaml:"errorCode" json:"errorCode"`
}
