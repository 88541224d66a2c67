package datafetcher

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	dataloader "github.com/hanpama/gqlboot/internal/dataloader"
	reqid "github.com/hanpama/gqlboot/internal/reqid"
)

type owner struct {
	ID   string
	Name string `json:"displayName"`
}

type pet struct {
	ID      string
	Kind    string
	OwnerID string
	nick    string
}

func (p *pet) Nickname() string { return p.nick }

type petFilter struct {
	Kind  string          `json:"kind"`
	Price decimal.Decimal `json:"price"`
}

type petService struct {
	owners map[string]*owner
	calls  int
}

func (s *petService) Pet(ctx context.Context, id string) (*pet, error) {
	if id == "missing" {
		return nil, nil
	}
	if id == "boom" {
		return nil, errors.New("boom")
	}
	return &pet{ID: id, Kind: "CAT"}, nil
}

func (s *petService) Search(filter petFilter, limit int) []pet {
	return []pet{{ID: filter.Kind + "-" + filter.Price.String()}}
}

func (s *petService) Owner(ctx context.Context, pets []*pet) ([]*owner, error) {
	s.calls++
	out := make([]*owner, len(pets))
	for i, p := range pets {
		out[i] = s.owners[p.OwnerID]
	}
	return out, nil
}

func TestProperty(t *testing.T) {
	p := &pet{ID: "1", Kind: "DOG", nick: "rex"}
	get := func(name, prop string, src any) any {
		v, err := NewProperty(name, prop).Get(Environment{Source: src})
		require.NoError(t, err)
		return v
	}
	require.Equal(t, "1", get("id", "ID", p))
	require.Equal(t, "DOG", get("kind", "", p))
	require.Equal(t, "DOG", get("kind", "", *p))
	require.Equal(t, "rex", get("nickname", "", p))
	require.Equal(t, "Ann", get("displayName", "", owner{Name: "Ann"}))
	require.Equal(t, 3, get("n", "", map[string]any{"n": 3}))
	require.Nil(t, get("missing", "", p))
	require.Nil(t, get("id", "", nil))
	require.Nil(t, get("id", "", (*pet)(nil)))
}

func TestReflection(t *testing.T) {
	methods := NewMethods()
	require.NoError(t, methods.RegisterService("pets.Service", &petService{}))

	f := NewReflection(methods, "pets.Service", "pet", []Argument{{Name: "id"}})
	v, err := f.Get(Environment{Context: context.Background(), ParentType: "Query", Field: "pet", Arguments: map[string]any{"id": "7"}})
	require.NoError(t, err)
	require.Equal(t, "7", v.(*pet).ID)

	v, err = f.Get(Environment{Arguments: map[string]any{"id": "missing"}})
	require.NoError(t, err)
	require.Nil(t, v)

	_, err = f.Get(Environment{Arguments: map[string]any{"id": "boom"}})
	require.EqualError(t, err, "boom")

	search := NewReflection(methods, "pets.Service", "Search", []Argument{
		{Name: "filter"},
		{Name: "limit", Default: 10, HasDefault: true},
	})
	v, err = search.Get(Environment{Arguments: map[string]any{
		"filter": map[string]any{"kind": "DOG", "price": 1.5},
	}})
	require.NoError(t, err)
	require.Equal(t, "DOG-1.5", v.([]pet)[0].ID)

	_, err = NewReflection(methods, "pets.Service", "nope", nil).Get(Environment{})
	require.True(t, errors.Is(err, ErrMethodNotFound))
}

func TestReflectionInvocationContext(t *testing.T) {
	methods := NewMethods()
	var got *reqid.Invocation
	require.NoError(t, methods.Register("svc", "whoami", func(ctx context.Context, src *pet) string {
		got, _ = reqid.InvocationFromContext(ctx)
		return src.ID
	}))
	f := NewReflection(methods, "svc", "whoami", []Argument{{Name: "pet", Source: true}})
	ctx := reqid.WithID(context.Background(), "r1")
	v, err := f.Get(Environment{Context: ctx, ParentType: "Pet", Field: "whoami", Source: &pet{ID: "3"}})
	require.NoError(t, err)
	require.Equal(t, "3", v)
	require.Equal(t, "r1", got.RequestID)
	require.Equal(t, "Pet", got.Type)
}

func TestRegisterRejectsBadSignatures(t *testing.T) {
	methods := NewMethods()
	require.Error(t, methods.Register("svc", "a", 42))
	require.Error(t, methods.Register("svc", "b", func() {}))
	require.Error(t, methods.Register("svc", "c", func() (int, int) { return 0, 0 }))
	require.Error(t, methods.Register("svc", "d", func(...int) int { return 0 }))
	require.NoError(t, methods.Register("svc", "e", func() (int, error) { return 0, nil }))
}

func TestBatch(t *testing.T) {
	svc := &petService{owners: map[string]*owner{"o1": {ID: "o1"}, "o2": {ID: "o2"}}}
	methods := NewMethods()
	require.NoError(t, methods.RegisterService("pets.Service", svc))

	args := []Argument{{Name: "pets", Source: true}}
	reg := dataloader.NewRegistry()
	reg.Register("Pet_owner", NewBatchFunc(methods, "pets.Service", "owner", args))
	ctx := dataloader.NewContext(context.Background(), reg.NewScope())

	b := NewBatch("Pet_owner", args)
	p1, p2, p3 := &pet{ID: "1", OwnerID: "o1"}, &pet{ID: "2", OwnerID: "o2"}, &pet{ID: "3", OwnerID: "o3"}
	res := b.GetMany([]Environment{
		{Context: ctx, ParentType: "Pet", Field: "owner", Source: p1},
		{Context: ctx, ParentType: "Pet", Field: "owner", Source: p2},
		{Context: ctx, ParentType: "Pet", Field: "owner", Source: p3},
	})
	require.Equal(t, 1, svc.calls)
	require.Len(t, res, 3)
	require.Equal(t, "o1", res[0].Value.(*owner).ID)
	require.Equal(t, "o2", res[1].Value.(*owner).ID)
	require.Nil(t, res[2].Value)
	require.NoError(t, res[2].Err)

	v, err := b.Get(Environment{Context: ctx, Source: p1})
	require.NoError(t, err)
	require.Equal(t, "o1", v.(*owner).ID)
	require.Equal(t, 1, svc.calls, "memoized within the request")

	_, err = b.Get(Environment{Context: context.Background(), Source: p1})
	require.True(t, errors.Is(err, ErrNoLoaderScope))
}

func TestConvert(t *testing.T) {
	v, err := Convert(int64(3), classesOf[int]())
	require.NoError(t, err)
	require.Equal(t, 3, v.Interface())

	v, err = Convert("2.50", classesOf[decimal.Decimal]())
	require.NoError(t, err)
	require.True(t, decimal.RequireFromString("2.5").Equal(v.Interface().(decimal.Decimal)))

	v, err = Convert([]any{"a", "b"}, classesOf[[]string]())
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b"}, v.Interface())

	v, err = Convert(nil, classesOf[*pet]())
	require.NoError(t, err)
	require.True(t, v.IsNil())
}

func TestConstant(t *testing.T) {
	v, err := Constant{Value: "group"}.Get(Environment{})
	require.NoError(t, err)
	require.Equal(t, "group", v)
}
