package bootstrap

import (
	"reflect"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	classes "github.com/hanpama/gqlboot/internal/classes"
	literal "github.com/hanpama/gqlboot/internal/literal"
	model "github.com/hanpama/gqlboot/internal/model"
)

// collectionLoader is implemented by class loaders that know abstract
// collection identifiers.
type collectionLoader interface {
	CollectionType(name string, elem reflect.Type) (reflect.Type, error)
}

// defaultValue coerces the declared default of f. It returns nil when f has
// no default.
//
// Structured literals decode into the declared class; if decoding fails the
// literal is treated like any other. Number-like classes yield a
// decimal.Decimal, booleans compare case-insensitively to "true" and
// everything else keeps the raw string.
func (c *compiler) defaultValue(f model.Field) any {
	raw := f.DefaultValue
	if raw == "" {
		return nil
	}
	if literal.LooksStructured(raw) {
		v, err := c.opts.decoder.Decode(raw, c.defaultTarget(f))
		if err == nil {
			return v
		}
		c.logger.Debug("default value is not a structured literal",
			zap.String("field", f.Name), zap.String("value", raw), zap.Error(err))
	}

	t, err := c.opts.classes.LoadClass(f.Reference.ExposedClassName())
	if err != nil {
		return raw
	}
	switch {
	case classes.IsNumberLike(t):
		d, err := decimal.NewFromString(raw)
		if err != nil {
			c.warn("default value is not a number", zap.String("field", f.Name), zap.String("value", raw))
			return raw
		}
		return d
	case classes.IsBoolean(t):
		return strings.EqualFold(raw, "true")
	}
	return raw
}

// defaultTarget is the Go type a structured default decodes into. A nil
// result decodes into a generic value.
func (c *compiler) defaultTarget(f model.Field) reflect.Type {
	elem, err := c.opts.classes.LoadClass(f.Reference.ClassName)
	if err != nil {
		elem = nil
	}
	if !f.HasArray() {
		return elem
	}
	inner := elem
	for i := 1; i < f.Array.Depth && inner != nil; i++ {
		inner = reflect.SliceOf(inner)
	}
	if cl, ok := c.opts.classes.(collectionLoader); ok {
		if t, err := cl.CollectionType(f.Array.ClassName, inner); err == nil {
			return t
		}
	}
	if t, err := c.opts.classes.LoadClass(f.Array.ClassName); err == nil {
		return t
	}
	return nil
}
