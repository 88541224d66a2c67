package bootstrap

import (
	"sort"

	"go.uber.org/zap"

	datafetcher "github.com/hanpama/gqlboot/internal/datafetcher"
	model "github.com/hanpama/gqlboot/internal/model"
	resolver "github.com/hanpama/gqlboot/internal/resolver"
	schema "github.com/hanpama/gqlboot/internal/schema"
)

func enumKey(e *model.EnumType) string {
	if e.ClassName != "" {
		return e.ClassName
	}
	return e.Name
}

func (c *compiler) createEnumTypes() {
	for _, e := range c.model.SortedEnums() {
		t := schema.NewType(e.Name, schema.TypeKindEnum, e.Description)
		for _, v := range e.Values {
			t.AddEnumValue(schema.NewEnumValue(v, ""))
		}
		c.enums[enumKey(e)] = t
	}
}

func (c *compiler) createInterfaceTypes() {
	for _, i := range c.model.SortedInterfaces() {
		t := schema.NewType(i.Name, schema.TypeKindInterface, i.Description)
		for _, f := range i.Fields {
			t.AddField(c.propertyField(i.Name, f))
		}
		for _, ref := range i.Interfaces {
			t.AddInterface(ref.Name)
		}
		c.registry.TypeResolver(i.Name, resolver.NewInterface(i.Name, c.outputs))
		c.interfaces[i.Name] = t
	}
}

func (c *compiler) createInputTypes() {
	for _, in := range c.model.SortedInputs() {
		t := schema.NewType(in.Name, schema.TypeKindInputObject, in.Description)
		for _, f := range in.Fields {
			v := schema.NewInputValue(f.Name, f.Description, c.typeRef(f))
			if def := c.defaultValue(f); def != nil {
				v.SetDefault(def)
			}
			t.AddInputField(v)
		}
		c.inputs[in.Name] = t
	}
}

func (c *compiler) createObjectTypes() {
	for _, mt := range c.model.SortedTypes() {
		c.createObjectType(mt)
	}
}

// createObjectType builds one object type. Operations replace properties of
// the same name, and a batch operation replaces a plain operation of the
// same name.
func (c *compiler) createObjectType(mt *model.Type) {
	t := schema.NewType(mt.Name, schema.TypeKindObject, mt.Description)

	shadowed := make(map[string]bool, len(mt.Operations)+len(mt.BatchOperations))
	for _, op := range mt.Operations {
		shadowed[op.Name] = true
	}
	for _, op := range mt.BatchOperations {
		shadowed[op.Name] = true
	}

	for _, f := range mt.Fields {
		if shadowed[f.Name] {
			continue
		}
		t.AddField(c.propertyField(mt.Name, f))
	}

	for _, op := range mt.Operations {
		if mt.HasBatchOperation(op.Name) {
			c.warn("batch operation shadows operation", zap.String("type", mt.Name), zap.String("operation", op.Name))
			continue
		}
		op = c.operation(op)
		if f := c.operationField(mt.Name, op, true); f != nil {
			t.AddField(f)
		}
	}
	for _, op := range mt.BatchOperations {
		op = c.operation(op)
		if f := c.batchOperationField(mt.Name, op); f != nil {
			t.AddField(f)
		}
	}

	ifaces := c.implemented(mt.Interfaces)
	for _, name := range ifaces {
		t.AddInterface(name)
	}

	c.types[mt.Name] = t
	c.outputs.Register(mt.ClassName, mt.Name, ifaces...)
}

// implemented returns the declared interfaces that exist in the model,
// followed by the interfaces they implement in turn.
func (c *compiler) implemented(refs []model.Reference) []string {
	var out []string
	seen := make(map[string]bool)
	var visit func(name string)
	visit = func(name string) {
		if seen[name] {
			return
		}
		mi, ok := c.model.Interfaces[name]
		if !ok || mi == nil {
			return
		}
		seen[name] = true
		out = append(out, name)
		for _, parent := range mi.Interfaces {
			visit(parent.Name)
		}
	}
	for _, ref := range refs {
		visit(ref.Name)
	}
	return out
}

// propertyField builds a field read straight off the parent value.
func (c *compiler) propertyField(owner string, f model.Field) *schema.Field {
	field := schema.NewField(f.Name, f.Description, c.typeRef(f))
	if !c.registry.DataFetcher(owner, f.Name, datafetcher.NewProperty(f.Name, f.PropertyName)) {
		c.warn("duplicate field", zap.String("type", owner), zap.String("field", f.Name))
	}
	c.fields++
	return field
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
