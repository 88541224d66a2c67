package resolver

import (
	"testing"

	"github.com/stretchr/testify/require"

	classes "github.com/hanpama/gqlboot/internal/classes"
)

type cat struct{}
type dog struct{}
type robot struct{}

type named struct{}

func (named) GraphQLTypeName() string { return "Cat" }

func TestInterfaceResolvesRegisteredClass(t *testing.T) {
	reg := NewOutputRegistry()
	pet := NewInterface("Pet", reg)

	// types registered after the resolver was created are still visible
	reg.Register(classes.NameOf(classes.Of[cat]()), "Cat", "Pet")
	reg.Register(classes.NameOf(classes.Of[dog]()), "Dog", "Pet")
	reg.Register(classes.NameOf(classes.Of[robot]()), "Robot")

	name, err := pet.ResolveType(&dog{})
	require.NoError(t, err)
	require.Equal(t, "Dog", name)

	name, err = pet.ResolveType(cat{})
	require.NoError(t, err)
	require.Equal(t, "Cat", name)

	name, err = pet.ResolveType(named{})
	require.NoError(t, err)
	require.Equal(t, "Cat", name)

	name, err = pet.ResolveType(map[string]any{"__typename": "Dog"})
	require.NoError(t, err)
	require.Equal(t, "Dog", name)

	_, err = pet.ResolveType(robot{})
	require.ErrorContains(t, err, "does not implement")

	_, err = pet.ResolveType(struct{}{})
	require.ErrorContains(t, err, "no object type registered")

	_, err = pet.ResolveType(nil)
	require.Error(t, err)
}
