package bootstrap

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	datafetcher "github.com/hanpama/gqlboot/internal/datafetcher"
	dataloader "github.com/hanpama/gqlboot/internal/dataloader"
	eventbus "github.com/hanpama/gqlboot/internal/eventbus"
	events "github.com/hanpama/gqlboot/internal/events"
	model "github.com/hanpama/gqlboot/internal/model"
	schema "github.com/hanpama/gqlboot/internal/schema"
)

type fieldVisibility string

func (v fieldVisibility) FieldVisibility() string { return string(v) }

func observed() (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zap.DebugLevel)
	return zap.New(core), logs
}

func TestBootstrapPetstoreSchema(t *testing.T) {
	res := bootstrapPetstore(t, newPetService())
	s := res.Schema

	require.Equal(t, "Query", s.QueryType)
	require.Equal(t, "Mutation", s.MutationType)
	require.Equal(t, "Query root", s.GetQueryType().Description)
	require.Equal(t, "Mutation root", s.GetMutationType().Description)

	q := s.GetQueryType()
	require.Equal(t, "[Pet]!", schema.RenderTypeRef(q.GetField("pets").Type))
	require.True(t, q.GetField("pets").Async)
	require.Equal(t, "adminQuery", schema.RenderTypeRef(q.GetField("admin").Type))
	require.False(t, q.GetField("admin").Async)
	require.Equal(t, "Administration", s.Types["adminQuery"].Description)
	require.False(t, s.GetMutationType().GetField("adopt").Async)

	limit := q.GetField("pets").Arguments[0]
	require.Equal(t, "limit", limit.Name)
	require.Equal(t, "2", limit.DefaultValue.(interface{ String() string }).String())

	pet := s.Types["Pet"]
	require.Equal(t, []string{"Named"}, pet.Interfaces)
	require.Equal(t, []string{"Pet"}, s.Types["Named"].PossibleTypes)
	require.Empty(t, pet.GetField("owner").Arguments, "source arguments are not exposed")
	require.True(t, pet.GetField("owner").Async)

	require.Equal(t, []string{"Pet_owner"}, res.Loaders.Names())
	require.True(t, res.Runtime.Registry().HasDataFetcher("Pet", "id"))
	require.True(t, res.Runtime.Registry().HasDataFetcher("Query", "admin"))
}

func TestBootstrapEnumDefaultRendersBare(t *testing.T) {
	m := petstore()
	m.Mutations[0].Arguments[1].DefaultValue = "DOG"
	methods := datafetcher.NewMethods()
	require.NoError(t, methods.RegisterService(serviceClass, newPetService()))
	res, err := Bootstrap(m, WithMethods(methods))
	require.NoError(t, err)

	species := res.Schema.GetMutationType().GetField("adopt").Arguments[1]
	require.Equal(t, "DOG", species.DefaultValue)
	require.Equal(t, "DOG", schema.RenderDefault(res.Schema, species))

	sdl := schema.Render(res.Schema)
	require.Contains(t, sdl, "adopt(name: String!, species: Species = DOG): Pet")
	require.NotContains(t, sdl, `"DOG"`)
	_, err = schema.ParseSDL(map[string]string{"petstore.graphql": sdl})
	require.NoError(t, err)
}

func TestBootstrapExecutesQueries(t *testing.T) {
	svc := newPetService()
	res := bootstrapPetstore(t, svc)

	got := execute(t, res, `{
		pets { name species owner { name } }
		admin { count }
		named { name ... on Pet { id } }
	}`, nil)
	require.Empty(t, got.Errors)
	want := map[string]any{
		"pets": []any{
			map[string]any{"name": "Rex", "species": "DOG", "owner": map[string]any{"name": "ann"}},
			map[string]any{"name": "Tom", "species": "CAT", "owner": map[string]any{"name": "bob"}},
		},
		"admin": map[string]any{"count": 3},
		"named": map[string]any{"name": "Rex", "id": "1"},
	}
	if diff := cmp.Diff(want, got.Data); diff != "" {
		t.Fatalf("data mismatch (-want +got):\n%s", diff)
	}
	require.Equal(t, int32(1), svc.ownerCalls.Load(), "owners are loaded in one batch")
}

func TestBootstrapExecutesMutations(t *testing.T) {
	svc := newPetService()
	res := bootstrapPetstore(t, svc)

	got := execute(t, res, `mutation($n: String!) { adopt(name: $n, species: CAT) { id name species } }`,
		map[string]any{"n": "Mia"})
	require.Empty(t, got.Errors)
	require.Equal(t, map[string]any{
		"adopt": map[string]any{"id": "4", "name": "Mia", "species": "CAT"},
	}, got.Data)
	require.Len(t, svc.pets, 4)
}

func TestBootstrapReportsErrorCodes(t *testing.T) {
	res := bootstrapPetstore(t, newPetService())

	got := execute(t, res, `{ pet(id: "9") { name } }`, nil)
	require.Len(t, got.Errors, 1)
	require.Equal(t, "no pet with id 9", got.Errors[0].Message)
	require.Equal(t, map[string]any{"code": "NOT_FOUND"}, got.Errors[0].Extensions)
}

func TestBootstrapWithoutMutations(t *testing.T) {
	m := petstore()
	m.Mutations = nil
	res, err := Bootstrap(m)
	require.NoError(t, err)
	require.Empty(t, res.Schema.MutationType)
	require.Nil(t, res.Schema.Types["Mutation"])
}

func TestBootstrapEmptyModel(t *testing.T) {
	logger, logs := observed()
	for _, m := range []*model.Schema{nil, {}, {Types: petstore().Types}} {
		res, err := Bootstrap(m, WithLogger(logger), WithConfig(fieldVisibility("no-introspection")))
		require.NoError(t, err)
		require.True(t, res.Empty())
		require.False(t, res.Visibility.Introspectable())
	}
	require.Equal(t, 3, logs.FilterMessage("empty or null schema model").Len())
}

func TestBootstrapDuplicateOperations(t *testing.T) {
	logger, logs := observed()
	m := petstore()
	first := op("count", scalar("Int", "int"))
	second := op("count", scalar("String", "string"))
	second.MethodName = "pets"
	m.Queries = append(m.Queries, first, second)
	m.GroupedQueries = append(m.GroupedQueries, model.GroupedOperations{
		Group:      model.Group{Name: "admin"},
		Operations: []model.Operation{op("pets", scalar("Int", "int"))},
	})

	res, err := Bootstrap(m, WithLogger(logger))
	require.NoError(t, err)
	require.Equal(t, "Int", schema.RenderTypeRef(res.Schema.GetQueryType().GetField("count").Type))
	require.Equal(t, 1, logs.FilterMessage("duplicate operation").Len())
	require.Equal(t, 1, logs.FilterMessage("duplicate group").Len())
	require.Nil(t, res.Schema.Types["adminQuery"].GetField("pets"))
}

func TestBootstrapBatchShadowsOperation(t *testing.T) {
	logger, logs := observed()
	m := petstore()
	plain := op("owner", object("Owner", ownerClass))
	m.Types["Pet"].Operations = []model.Operation{plain}

	res, err := Bootstrap(m, WithLogger(logger))
	require.NoError(t, err)
	require.Equal(t, 1, logs.FilterMessage("batch operation shadows operation").Len())
	_, isBatch := res.Runtime.Registry().Fetcher("Pet", "owner").(*datafetcher.Batch)
	require.True(t, isBatch)

	var owners int
	for _, f := range res.Schema.Types["Pet"].Fields {
		if f.Name == "owner" {
			owners++
		}
	}
	require.Equal(t, 1, owners)
}

func TestBootstrapOperationReplacesProperty(t *testing.T) {
	m := petstore()
	m.Types["Pet"].Operations = []model.Operation{op("name", scalar("String", "string"))}

	res, err := Bootstrap(m)
	require.NoError(t, err)
	_, isReflection := res.Runtime.Registry().Fetcher("Pet", "name").(*datafetcher.Reflection)
	require.True(t, isReflection)
	require.True(t, res.Schema.Types["Pet"].GetField("name").Async)
}

func TestBootstrapInterfaces(t *testing.T) {
	m := petstore()
	m.Interfaces["Entity"] = &model.InterfaceType{
		Name:   "Entity",
		Fields: []model.Field{{Name: "id", Reference: scalar("ID", "string"), NotNull: true}},
	}
	m.Interfaces["Named"].Interfaces = []model.Reference{{Name: "Entity"}}
	m.Interfaces["Named"].Fields = append(m.Interfaces["Named"].Fields, model.Field{
		Name: "id", Reference: scalar("ID", "string"), NotNull: true,
	})
	m.Types["Pet"].Interfaces = append(m.Types["Pet"].Interfaces, model.Reference{Name: "Ghost"})

	res, err := Bootstrap(m)
	require.NoError(t, err)
	s := res.Schema
	require.Equal(t, []string{"Named", "Entity"}, s.Types["Pet"].Interfaces)
	require.Equal(t, []string{"Entity"}, s.Types["Named"].Interfaces)
	require.Empty(t, s.Types["Robot"].Interfaces)
	require.Equal(t, []string{"Pet"}, s.Types["Entity"].PossibleTypes)

	name, err := res.Runtime.ResolveType(context.Background(), "Entity", &Pet{})
	require.NoError(t, err)
	require.Equal(t, "Pet", name)
	_, err = res.Runtime.ResolveType(context.Background(), "Named", &Robot{})
	require.Error(t, err)
}

func TestBootstrapGlobalMappingWins(t *testing.T) {
	m := petstore()
	m.Types["Pet"].Fields[0].Reference.Mapping = &model.Mapping{Reference: &model.Reference{
		Name: "String", ClassName: "string", Type: model.ReferenceTypeScalar,
	}}
	m.Types["Pet"].Fields[0].Mapping = &model.Mapping{Reference: &model.Reference{
		Name: "Int", ClassName: "int", Type: model.ReferenceTypeScalar,
	}}
	m.Types["Pet"].Fields[1].Mapping = &model.Mapping{Reference: &model.Reference{
		Name: "Label", ClassName: "string", Type: model.ReferenceTypeScalar,
	}}

	res, err := Bootstrap(m)
	require.NoError(t, err)
	pet := res.Schema.Types["Pet"]
	require.Equal(t, "String!", schema.RenderTypeRef(pet.GetField("id").Type))
	require.Equal(t, "Label", schema.RenderTypeRef(pet.GetField("name").Type))
	require.Equal(t, schema.TypeKindScalar, res.Schema.Types["Label"].Kind)
}

func TestBootstrapUnknownTypeFails(t *testing.T) {
	m := petstore()
	m.Queries = append(m.Queries, op("ghost", object("Ghost", "ghost.Ghost")))

	_, err := Bootstrap(m)
	require.ErrorContains(t, err, `Query.ghost references unknown type "Ghost"`)
}

func TestBootstrapExtension(t *testing.T) {
	var seen *schema.Type
	res := bootstrapPetstore(t, newPetService(), WithExtension(func(b *schema.Builder) *schema.Builder {
		seen = b.QueryType()
		return b.AdditionalType(schema.NewType("Upload", schema.TypeKindScalar, "A file part"))
	}))
	require.Same(t, res.Schema.GetQueryType(), seen)
	require.Equal(t, "A file part", res.Schema.Types["Upload"].Description)

	res = bootstrapPetstore(t, newPetService(), WithExtension(func(*schema.Builder) *schema.Builder { return nil }))
	require.NotNil(t, res.Schema.Types["Pet"])
}

func TestBootstrapOperationHook(t *testing.T) {
	res := bootstrapPetstore(t, newPetService(), WithOperationHook(func(o model.Operation) model.Operation {
		o.Description = "op:" + o.Name
		return o
	}))
	require.Equal(t, "op:pets", res.Schema.GetQueryType().GetField("pets").Description)
	require.Equal(t, "op:owner", res.Schema.Types["Pet"].GetField("owner").Description)
	require.Equal(t, "op:count", res.Schema.Types["adminQuery"].GetField("count").Description)
}

func TestBootstrapPublishesEvents(t *testing.T) {
	eventbus.Use(eventbus.New())
	defer eventbus.Use(nil)

	var start events.BootstrapStart
	var finish events.BootstrapFinish
	defer eventbus.Subscribe(func(_ context.Context, e events.BootstrapStart) { start = e })()
	defer eventbus.Subscribe(func(_ context.Context, e events.BootstrapFinish) { finish = e })()

	bootstrapPetstore(t, newPetService())
	require.Equal(t, 5, start.Types)
	require.Equal(t, 6, start.Operations)
	require.NoError(t, finish.Err)
	require.False(t, finish.Empty)
	require.Equal(t, 1, finish.Loaders)
	// Species, Named, Owner, Pet, Robot, adminQuery, Query, Mutation
	require.Equal(t, 8, finish.Types)
}

func TestResultRegisterDataLoader(t *testing.T) {
	res := bootstrapPetstore(t, newPetService())
	ownerPets := func(_ context.Context, keys []any) []dataloader.Result { return make([]dataloader.Result, len(keys)) }
	require.False(t, res.RegisterDataLoader("Pet_owner", ownerPets))
	require.True(t, res.RegisterDataLoader("Owner_pets", ownerPets))
	require.True(t, res.Runtime.Loaders().Has("Owner_pets"))
}
