package bootstrap

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	classes "github.com/hanpama/gqlboot/internal/classes"
	datafetcher "github.com/hanpama/gqlboot/internal/datafetcher"
	executor "github.com/hanpama/gqlboot/internal/executor"
	language "github.com/hanpama/gqlboot/internal/language"
	model "github.com/hanpama/gqlboot/internal/model"
)

type Species string

type Pet struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Species Species `json:"species"`
	OwnerID string  `json:"ownerId"`
}

type Owner struct {
	Name string `json:"name"`
}

type Robot struct {
	Name string
}

type PetNotFound struct{ ID string }

func (e *PetNotFound) Error() string { return "no pet with id " + e.ID }

type petService struct {
	pets       []*Pet
	ownerCalls atomic.Int32
}

func newPetService() *petService {
	return &petService{pets: []*Pet{
		{ID: "1", Name: "Rex", Species: "DOG", OwnerID: "ann"},
		{ID: "2", Name: "Tom", Species: "CAT", OwnerID: "bob"},
		{ID: "3", Name: "Kit", Species: "CAT", OwnerID: "ann"},
	}}
}

func (s *petService) Pets(ctx context.Context, limit int) []*Pet {
	if limit > len(s.pets) {
		limit = len(s.pets)
	}
	return s.pets[:limit]
}

func (s *petService) Pet(id string) (*Pet, error) {
	for _, p := range s.pets {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, &PetNotFound{ID: id}
}

func (s *petService) Owners(pets []*Pet) []*Owner {
	s.ownerCalls.Add(1)
	out := make([]*Owner, len(pets))
	for i, p := range pets {
		out[i] = &Owner{Name: p.OwnerID}
	}
	return out
}

func (s *petService) Adopt(name string, species Species) *Pet {
	p := &Pet{ID: "4", Name: name, Species: species}
	s.pets = append(s.pets, p)
	return p
}

func (s *petService) Count() int { return len(s.pets) }

func (s *petService) Named() any { return s.pets[0] }

const serviceClass = "petstore.PetService"

var (
	petClass     = classes.NameOf(classes.Of[Pet]())
	ownerClass   = classes.NameOf(classes.Of[Owner]())
	robotClass   = classes.NameOf(classes.Of[Robot]())
	speciesClass = classes.NameOf(classes.Of[Species]())
	missingClass = classes.NameOf(classes.Of[PetNotFound]())
)

func scalar(name, class string) model.Reference {
	return model.Reference{Name: name, ClassName: class, Type: model.ReferenceTypeScalar}
}

func object(name, class string) model.Reference {
	return model.Reference{Name: name, ClassName: class, Type: model.ReferenceTypeType}
}

func list(class string, depth int) *model.Array {
	return &model.Array{ClassName: class, Depth: depth}
}

func op(name string, ref model.Reference, args ...model.Argument) model.Operation {
	o := model.Operation{
		Field:      model.Field{Name: name, Reference: ref},
		ClassName:  serviceClass,
		MethodName: name,
		Arguments:  args,
	}
	return o
}

func arg(name string, ref model.Reference) model.Argument {
	return model.Argument{Field: model.Field{Name: name, Reference: ref}}
}

// petstore is a model with every kind of declaration the compiler handles.
func petstore() *model.Schema {
	pets := op("pets", object("Pet", petClass), model.Argument{Field: model.Field{
		Name: "limit", Reference: scalar("Int", "int"), DefaultValue: "2",
	}})
	pets.Array = list(classes.List, 1)
	pets.NotNull = true

	pet := op("pet", object("Pet", petClass), arg("id", scalar("ID", "string")))

	owner := op("owner", object("Owner", ownerClass), model.Argument{
		Field:          model.Field{Name: "pets", Reference: object("Pet", petClass), Array: list(classes.List, 1)},
		SourceArgument: true,
	})
	owner.MethodName = "owners"
	owner.Batch = true

	adoptName := arg("name", scalar("String", "string"))
	adoptName.NotNull = true
	adopt := op("adopt", object("Pet", petClass), adoptName,
		arg("species", model.Reference{Name: "Species", ClassName: speciesClass, Type: model.ReferenceTypeEnum}))

	named := op("named", model.Reference{Name: "Named", Type: model.ReferenceTypeInterface})

	return &model.Schema{
		Queries:   []model.Operation{pets, pet, named},
		Mutations: []model.Operation{adopt},
		GroupedQueries: []model.GroupedOperations{{
			Group:      model.Group{Name: "admin", Description: "Administration"},
			Operations: []model.Operation{op("count", scalar("Int", "int"))},
		}},
		Types: map[string]*model.Type{
			"Pet": {
				Name:      "Pet",
				ClassName: petClass,
				Fields: []model.Field{
					{Name: "id", Reference: scalar("ID", "string"), NotNull: true},
					{Name: "name", Reference: scalar("String", "string")},
					{Name: "species", Reference: model.Reference{Name: "Species", ClassName: speciesClass, Type: model.ReferenceTypeEnum}},
				},
				BatchOperations: []model.Operation{owner},
				Interfaces:      []model.Reference{{Name: "Named", Type: model.ReferenceTypeInterface}},
			},
			"Owner": {
				Name:      "Owner",
				ClassName: ownerClass,
				Fields:    []model.Field{{Name: "name", Reference: scalar("String", "string")}},
			},
			"Robot": {
				Name:      "Robot",
				ClassName: robotClass,
				Fields:    []model.Field{{Name: "name", Reference: scalar("String", "string")}},
			},
		},
		Interfaces: map[string]*model.InterfaceType{
			"Named": {
				Name:   "Named",
				Fields: []model.Field{{Name: "name", Reference: scalar("String", "string")}},
			},
		},
		Enums: map[string]*model.EnumType{
			"Species": {Name: "Species", ClassName: speciesClass, Values: []string{"CAT", "DOG"}},
		},
		Errors: map[string]*model.ErrorInfo{
			"missing": {ClassName: missingClass, ErrorCode: "NOT_FOUND"},
		},
	}
}

func bootstrapPetstore(t *testing.T, svc *petService, opts ...Option) *Result {
	t.Helper()
	methods := datafetcher.NewMethods()
	require.NoError(t, methods.RegisterService(serviceClass, svc))
	res, err := Bootstrap(petstore(), append([]Option{WithMethods(methods)}, opts...)...)
	require.NoError(t, err)
	require.False(t, res.Empty())
	return res
}

func execute(t *testing.T, res *Result, query string, vars map[string]any) *executor.ExecutionResult {
	t.Helper()
	doc, err := language.ParseQuery(query)
	require.NoError(t, err)
	return executor.NewExecutor(res.Runtime, res.Schema).ExecuteRequest(context.Background(), doc, "", vars, nil)
}
