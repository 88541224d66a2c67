package bootstrap

import (
	"go.uber.org/zap"

	datafetcher "github.com/hanpama/gqlboot/internal/datafetcher"
	dataloader "github.com/hanpama/gqlboot/internal/dataloader"
	model "github.com/hanpama/gqlboot/internal/model"
	schema "github.com/hanpama/gqlboot/internal/schema"
)

// addQueries builds the query root. It is always present, even when only
// grouped queries exist.
func (c *compiler) addQueries(b *schema.Builder) {
	q := schema.NewType(queryRoot, schema.TypeKindObject, queryDescription)
	c.addRootOperations(q, c.model.Queries, true)
	c.addGroups(q, c.model.GroupedQueries, true)
	c.roots++
	b.Query(q)
}

// addMutations builds the mutation root and registers it only when it ended
// up with at least one field. Mutation fields resolve in document order.
func (c *compiler) addMutations(b *schema.Builder) {
	m := schema.NewType(mutationRoot, schema.TypeKindObject, mutationDescription)
	c.addRootOperations(m, c.model.Mutations, false)
	c.addGroups(m, c.model.GroupedMutations, false)
	if len(m.Fields) == 0 {
		return
	}
	c.roots++
	b.Mutation(m)
}

func (c *compiler) addRootOperations(root *schema.Type, ops []model.Operation, async bool) {
	for _, op := range ops {
		op = c.operation(op)
		if f := c.operationField(root.Name, op, async); f != nil {
			root.AddField(f)
		}
	}
}

// addGroups nests each group's operations under a synthetic type named
// after the group and the root. The root field resolves to a placeholder
// so execution can descend into it.
func (c *compiler) addGroups(root *schema.Type, groups []model.GroupedOperations, async bool) {
	for _, g := range groups {
		typeName := g.Group.Name + root.Name
		if c.registry.HasDataFetcher(root.Name, g.Group.Name) {
			c.warn("duplicate group", zap.String("root", root.Name), zap.String("group", g.Group.Name))
			continue
		}
		gt := schema.NewType(typeName, schema.TypeKindObject, g.Group.Description)
		for _, op := range g.Operations {
			op = c.operation(op)
			if f := c.operationField(typeName, op, async); f != nil {
				gt.AddField(f)
			}
		}
		c.registry.DataFetcherIfAbsent(root.Name, g.Group.Name, datafetcher.Constant{Value: typeName})
		root.AddField(schema.NewField(g.Group.Name, g.Group.Description, schema.NamedType(typeName)))
		c.fields++
		c.groups = append(c.groups, gt)
	}
}

// operationField binds op to a reflective fetcher on owner. The first
// operation bound to a coordinate wins; later ones are dropped.
func (c *compiler) operationField(owner string, op model.Operation, async bool) *schema.Field {
	if c.registry.HasDataFetcher(owner, op.Name) {
		c.warn("duplicate operation", zap.String("type", owner), zap.String("operation", op.Name))
		return nil
	}
	inputs, spec := c.arguments(op)
	c.registry.DataFetcher(owner, op.Name, datafetcher.NewReflection(c.opts.methods, op.ClassName, op.MethodName, spec))
	return c.field(op, inputs, async)
}

// batchOperationField binds op to a per-request batch loader named after
// owner and the operation.
func (c *compiler) batchOperationField(owner string, op model.Operation) *schema.Field {
	if c.registry.HasDataFetcher(owner, op.Name) {
		c.warn("duplicate operation", zap.String("type", owner), zap.String("operation", op.Name))
		return nil
	}
	inputs, spec := c.arguments(op)
	name := dataloader.Name(owner, op.Name)
	if !c.loaders.Register(name, datafetcher.NewBatchFunc(c.opts.methods, op.ClassName, op.MethodName, spec)) {
		c.warn("duplicate batch loader", zap.String("loader", name))
	}
	c.registry.DataFetcher(owner, op.Name, datafetcher.NewBatch(name, spec))
	return c.field(op, inputs, true)
}

func (c *compiler) field(op model.Operation, inputs []*schema.InputValue, async bool) *schema.Field {
	f := schema.NewField(op.Name, op.Description, c.typeRef(op.Field)).SetAsync(async)
	for _, in := range inputs {
		f.AddArgument(in)
	}
	c.fields++
	return f
}

// arguments splits the declared arguments into the client-facing input
// values and the parameter list the fetcher fills. Source arguments only
// appear in the latter.
func (c *compiler) arguments(op model.Operation) ([]*schema.InputValue, []datafetcher.Argument) {
	var inputs []*schema.InputValue
	spec := make([]datafetcher.Argument, 0, len(op.Arguments))
	for _, a := range op.Arguments {
		if a.SourceArgument {
			spec = append(spec, datafetcher.Argument{Name: a.Name, Source: true})
			continue
		}
		def := c.defaultValue(a.Field)
		v := schema.NewInputValue(a.Name, a.Description, c.typeRef(a.Field))
		if def != nil {
			v.SetDefault(def)
		}
		inputs = append(inputs, v)
		spec = append(spec, datafetcher.Argument{Name: a.Name, Default: def, HasDefault: def != nil})
	}
	return inputs, spec
}
