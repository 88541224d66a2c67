package model

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const petModel = `
queries:
  - name: pets
    className: petstore.PetService
    methodName: Pets
    reference: {name: Pet, className: petstore.Pet, type: TYPE}
    array: {className: list, depth: 1}
groupedMutations:
  - group: {name: admin, description: Admin operations}
    operations:
      - name: reset
        className: petstore.AdminService
        methodName: Reset
        reference: {name: Boolean, className: bool, type: SCALAR}
types:
  Pet:
    className: petstore.Pet
    fields:
      - name: id
        reference: {name: ID, className: string, type: SCALAR}
        notNull: true
    batchOperations:
      - name: owners
        className: petstore.OwnerService
        methodName: Owners
        batch: true
        reference: {name: Owner, className: petstore.Owner, type: TYPE}
        arguments:
          - name: pets
            sourceArgument: true
            reference: {name: Pet, className: petstore.Pet, type: TYPE}
enums:
  Species:
    className: petstore.Species
    values: [DOG, CAT]
`

func TestParse(t *testing.T) {
	s, err := Parse([]byte(petModel))
	require.NoError(t, err)
	require.True(t, s.HasOperations())
	require.Len(t, s.Queries, 1)
	require.Equal(t, "Pets", s.Queries[0].MethodName)
	require.Equal(t, 1, s.Queries[0].Array.Depth)
	require.Equal(t, "admin", s.GroupedMutations[0].Group.Name)

	pet := s.Types["Pet"]
	require.Equal(t, "Pet", pet.Name)
	require.True(t, pet.HasBatchOperation("owners"))
	require.False(t, pet.HasBatchOperation("id"))
	require.True(t, pet.BatchOperations[0].Arguments[0].SourceArgument)
	require.Equal(t, "Species", s.Enums["Species"].Name)
}

func TestParseRejectsMismatchedKey(t *testing.T) {
	_, err := Parse([]byte("types:\n  Pet:\n    name: Dog\n"))
	require.Error(t, err)
}

func TestParseKeepsUnknownReferenceKind(t *testing.T) {
	s, err := Parse([]byte("types:\n  Pet:\n    fields:\n      - name: tag\n        reference: {name: Tag, className: petstore.Tag, type: UNION}\n"))
	require.NoError(t, err)
	ref := s.Types["Pet"].Fields[0].Reference
	require.Equal(t, ReferenceType("UNION"), ref.Type)
	require.False(t, ref.Type.Valid())
	require.Equal(t, "Pet", s.Types["Pet"].Name)
}

func TestHasOperations(t *testing.T) {
	var nilSchema *Schema
	require.False(t, nilSchema.HasOperations())
	require.False(t, (&Schema{}).HasOperations())
	require.False(t, (&Schema{GroupedQueries: []GroupedOperations{{Group: Group{Name: "g"}}}}).HasOperations())
	require.True(t, (&Schema{GroupedQueries: []GroupedOperations{{Group: Group{Name: "g"}, Operations: []Operation{{}}}}}).HasOperations())
}

func TestReferenceHelpers(t *testing.T) {
	r := Reference{ClassName: "int64", Name: "Int", Type: ReferenceTypeScalar}
	require.Equal(t, "int64", r.ExposedClassName())
	r.GraphQLClassName = "string"
	require.Equal(t, "string", r.ExposedClassName())
	require.False(t, r.HasMapping())
	require.True(t, ReferenceTypeInput.Valid())
	require.False(t, ReferenceType("UNION").Valid())
}
