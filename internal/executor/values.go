package executor

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	language "github.com/hanpama/gqlboot/internal/language"
	schema "github.com/hanpama/gqlboot/internal/schema"
)

// coerceVariableValues coerces variable values according to their types
func coerceVariableValues(
	schema *schema.Schema,
	operation *language.OperationDefinition,
	variableValues map[string]any,
) (map[string]any, error) {
	if variableValues == nil {
		variableValues = make(map[string]any)
	}
	coerced := make(map[string]any)
	for _, varDef := range operation.VariableDefinitions {
		name := varDef.Variable
		t := varDef.Type
		val, ok := variableValues[name]
		if !ok {
			if v2, ok2 := variableValues[strings.TrimPrefix(name, "$")]; ok2 {
				val = v2
				ok = true
			}
		}
		if !ok {
			if varDef.DefaultValue != nil {
				val = astValueToGo(varDef.DefaultValue)
			} else if t.NonNull {
				return nil, fmt.Errorf("variable $%s of required type %s was not provided", name, t.String())
			} else {
				continue
			}
		}
		if val == nil && t.NonNull {
			return nil, fmt.Errorf("variable $%s of type %s cannot be null", name, t.String())
		}
		cv, err := coerceValue(val, typeRefFromAST(t))
		if err != nil {
			return nil, fmt.Errorf("variable $%s of type %s cannot be coerced: %v", name, t.String(), err)
		}
		coerced[name] = cv
	}
	return coerced, nil
}

// coerceArgumentValues coerces argument values for a field
func coerceArgumentValues(
	fieldDef *schema.Field,
	arguments language.ArgumentList,
	variableValues map[string]any,
	state *executionState,
	path Path,
) map[string]any {
	coerced := make(map[string]any)
	for _, arg := range arguments {
		var argDef *schema.InputValue
		for _, a := range fieldDef.Arguments {
			if a.Name == arg.Name {
				argDef = a
				break
			}
		}
		if argDef == nil {
			continue
		}
		val := valueFromASTWithVars(arg.Value, variableValues)
		cv, err := coerceValue(val, argDef.Type)
		if err != nil {
			state.addError(fmt.Sprintf("argument '%s' cannot be coerced: %v", arg.Name, err), path)
			continue
		}
		coerced[arg.Name] = cv
	}
	for _, argDef := range fieldDef.Arguments {
		name := argDef.Name
		if _, ok := coerced[name]; ok {
			continue
		}
		switch {
		case argDef.DefaultValue != nil:
			// bootstrap defaults carry numbers as decimals
			cv, err := coerceValue(argDef.DefaultValue, argDef.Type)
			if err != nil {
				state.addError(fmt.Sprintf("default of argument '%s' cannot be coerced: %v", name, err), path)
				continue
			}
			coerced[name] = cv
		case schema.IsNonNull(argDef.Type):
			state.addError(fmt.Sprintf("argument '%s' of required type was not provided", name), path)
		}
	}
	return coerced
}

// valueFromASTWithVars resolves variables and converts the rest of value.
func valueFromASTWithVars(value *language.Value, variableValues map[string]any) any {
	if value == nil {
		return nil
	}
	switch value.Kind {
	case language.Variable:
		if v, ok := variableValues[value.Raw]; ok {
			return v
		}
		return variableValues[strings.TrimPrefix(value.Raw, "$")]
	case language.ListValue:
		out := make([]any, len(value.Children))
		for i, c := range value.Children {
			out[i] = valueFromASTWithVars(c.Value, variableValues)
		}
		return out
	case language.ObjectValue:
		m := make(map[string]any, len(value.Children))
		for _, f := range value.Children {
			m[f.Name] = valueFromASTWithVars(f.Value, variableValues)
		}
		return m
	default:
		return astValueToGo(value)
	}
}

// astValueToGo converts a literal. Integers that overflow int and all float
// literals become decimals so BigInteger and BigDecimal arguments keep every
// digit; coercion narrows them for Int and Float.
func astValueToGo(value *language.Value) any {
	if value == nil {
		return nil
	}
	switch value.Kind {
	case language.IntValue:
		if iv, err := strconv.Atoi(value.Raw); err == nil {
			return iv
		}
		if d, err := decimal.NewFromString(value.Raw); err == nil {
			return d
		}
		return nil
	case language.FloatValue:
		if d, err := decimal.NewFromString(value.Raw); err == nil {
			return d
		}
		return nil
	case language.StringValue, language.BlockValue, language.EnumValue:
		return value.Raw
	case language.BooleanValue:
		return value.Raw == "true"
	case language.ListValue:
		out := make([]any, len(value.Children))
		for i, c := range value.Children {
			out[i] = astValueToGo(c.Value)
		}
		return out
	case language.ObjectValue:
		m := make(map[string]any, len(value.Children))
		for _, f := range value.Children {
			m[f.Name] = astValueToGo(f.Value)
		}
		return m
	}
	return nil
}

// coerceValue coerces value to targetType.
func coerceValue(value any, targetType *schema.TypeRef) (any, error) {
	if schema.IsNonNull(targetType) {
		if value == nil {
			return nil, fmt.Errorf("cannot provide null for non-null type")
		}
		return coerceValue(value, schema.Unwrap(targetType))
	}
	if value == nil {
		return nil, nil
	}
	if schema.IsList(targetType) {
		return coerceListValue(value, schema.Unwrap(targetType))
	}

	switch schema.GetNamedType(targetType) {
	case "Int":
		return coerceToInt(value)
	case "Float":
		return coerceToFloat(value)
	case "String":
		return coerceToString(value)
	case "Boolean":
		return coerceToBoolean(value)
	case "ID":
		return coerceToID(value)
	case "BigDecimal":
		return toDecimal(value)
	case "BigInteger":
		d, err := toDecimal(value)
		if err != nil {
			return nil, err
		}
		if !d.IsInteger() {
			return nil, fmt.Errorf("cannot coerce %s to a whole number", d)
		}
		return d, nil
	default:
		// enums, input objects and custom scalars are left to the resolver
		return value, nil
	}
}

// coerceListValue coerces each item of value; a single value becomes a list
// of one.
func coerceListValue(value any, itemType *schema.TypeRef) (any, error) {
	items, ok := value.([]any)
	if !ok {
		item, err := coerceValue(value, itemType)
		if err != nil {
			return nil, err
		}
		return []any{item}, nil
	}
	out := make([]any, len(items))
	for i, item := range items {
		cv, err := coerceValue(item, itemType)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		out[i] = cv
	}
	return out, nil
}

// toDecimal widens any numeric input, or a numeric string, to a decimal.
func toDecimal(value any) (decimal.Decimal, error) {
	switch v := value.(type) {
	case decimal.Decimal:
		return v, nil
	case int:
		return decimal.NewFromInt(int64(v)), nil
	case int32:
		return decimal.NewFromInt32(v), nil
	case int64:
		return decimal.NewFromInt(v), nil
	case float32:
		return decimal.NewFromFloat32(v), nil
	case float64:
		return decimal.NewFromFloat(v), nil
	case string:
		d, err := decimal.NewFromString(v)
		if err != nil {
			return decimal.Zero, fmt.Errorf("cannot coerce %q to a number", v)
		}
		return d, nil
	}
	return decimal.Zero, fmt.Errorf("cannot coerce %v (%T) to a number", value, value)
}

// coerceToInt accepts whole numbers within the signed 32-bit range.
func coerceToInt(value any) (any, error) {
	if _, ok := value.(bool); ok {
		return nil, fmt.Errorf("cannot coerce %v (%T) to int", value, value)
	}
	d, err := toDecimal(value)
	if err != nil {
		return nil, err
	}
	if !d.IsInteger() {
		return nil, fmt.Errorf("cannot coerce %s to int: not a whole number", d)
	}
	if d.LessThan(decimal.NewFromInt(math.MinInt32)) || d.GreaterThan(decimal.NewFromInt(math.MaxInt32)) {
		return nil, fmt.Errorf("cannot coerce %s to int: out of 32-bit range", d)
	}
	return int(d.IntPart()), nil
}

func coerceToFloat(value any) (any, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case bool:
		return nil, fmt.Errorf("cannot coerce %v (%T) to float", value, value)
	}
	d, err := toDecimal(value)
	if err != nil {
		return nil, err
	}
	return d.InexactFloat64(), nil
}

func coerceToString(value any) (any, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case fmt.Stringer:
		return v.String(), nil
	}
	return fmt.Sprintf("%v", value), nil
}

func coerceToBoolean(value any) (any, error) {
	if v, ok := value.(bool); ok {
		return v, nil
	}
	return nil, fmt.Errorf("cannot coerce %v (%T) to boolean", value, value)
}

// coerceToID accepts strings and whole numbers; numbers become their decimal
// string.
func coerceToID(value any) (any, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case bool:
		return nil, fmt.Errorf("cannot coerce %v (%T) to ID", value, value)
	}
	d, err := toDecimal(value)
	if err != nil {
		return nil, err
	}
	if !d.IsInteger() {
		return nil, fmt.Errorf("cannot coerce %s to ID: not a whole number", d)
	}
	return d.String(), nil
}
