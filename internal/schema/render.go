package schema

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
)

// Render produces SDL from the Schema.
// Deterministic ordering: type/directive names sorted lexicographically.
func Render(s *Schema) string {
	if s == nil {
		return ""
	}
	var b strings.Builder

	if s.Description != "" || !conventionalRoots(s) {
		renderSchemaDefinition(&b, s)
	}

	typeNames := make([]string, 0, len(s.Types))
	for name, typ := range s.Types {
		if isBuiltinScalar(typ) || strings.HasPrefix(name, "__") {
			continue
		}
		typeNames = append(typeNames, name)
	}
	sort.Strings(typeNames)

	for _, name := range typeNames {
		typ := s.Types[name]
		switch typ.Kind {
		case TypeKindScalar:
			renderScalar(&b, typ)
		case TypeKindEnum:
			renderEnum(&b, typ)
		case TypeKindInputObject:
			renderInputObject(&b, s, typ)
		case TypeKindObject:
			renderComposite(&b, s, "type", typ)
		case TypeKindInterface:
			renderComposite(&b, s, "interface", typ)
		case TypeKindUnion:
			renderUnion(&b, typ)
		}
	}

	directiveNames := make([]string, 0, len(s.Directives))
	for name, directive := range s.Directives {
		if directive == includeDirective || directive == skipDirective {
			continue
		}
		directiveNames = append(directiveNames, name)
	}
	sort.Strings(directiveNames)
	for _, name := range directiveNames {
		renderDirective(&b, s, s.Directives[name])
	}

	return strings.TrimRight(b.String(), "\n") + "\n"
}

func conventionalRoots(s *Schema) bool {
	return (s.QueryType == "" || s.QueryType == "Query") &&
		(s.MutationType == "" || s.MutationType == "Mutation") &&
		(s.SubscriptionType == "" || s.SubscriptionType == "Subscription")
}

func renderSchemaDefinition(b *strings.Builder, s *Schema) {
	renderDescription(b, s.Description, "")
	b.WriteString("schema {\n")
	if s.QueryType != "" {
		b.WriteString("  query: " + s.QueryType + "\n")
	}
	if s.MutationType != "" {
		b.WriteString("  mutation: " + s.MutationType + "\n")
	}
	if s.SubscriptionType != "" {
		b.WriteString("  subscription: " + s.SubscriptionType + "\n")
	}
	b.WriteString("}\n\n")
}

func renderDescription(b *strings.Builder, desc, indent string) {
	if desc == "" {
		return
	}
	b.WriteString(indent + "\"\"\"\n")
	for _, line := range strings.Split(strings.ReplaceAll(desc, `"""`, `\"""`), "\n") {
		b.WriteString(indent + line + "\n")
	}
	b.WriteString(indent + "\"\"\"\n")
}

func renderDeprecated(b *strings.Builder, deprecated bool, reason string) {
	if !deprecated {
		return
	}
	b.WriteString(" @deprecated")
	if reason != "" {
		b.WriteString("(reason: " + strconv.Quote(reason) + ")")
	}
}

func renderScalar(b *strings.Builder, typ *Type) {
	renderDescription(b, typ.Description, "")
	b.WriteString("scalar ")
	b.WriteString(typ.Name)
	if typ.SpecifiedByURL != nil {
		b.WriteString(" @specifiedBy(url: " + strconv.Quote(*typ.SpecifiedByURL) + ")")
	}
	b.WriteString("\n\n")
}

func renderEnum(b *strings.Builder, typ *Type) {
	renderDescription(b, typ.Description, "")
	b.WriteString("enum " + typ.Name + " {\n")
	for _, val := range typ.EnumValues {
		renderDescription(b, val.Description, "  ")
		b.WriteString("  " + val.Name)
		renderDeprecated(b, val.IsDeprecated, val.DeprecationReason)
		b.WriteString("\n")
	}
	b.WriteString("}\n\n")
}

func renderInputObject(b *strings.Builder, s *Schema, typ *Type) {
	renderDescription(b, typ.Description, "")
	b.WriteString("input " + typ.Name)
	if typ.OneOf {
		b.WriteString(" @oneOf")
	}
	b.WriteString(" {\n")
	for _, field := range typ.InputFields {
		renderDescription(b, field.Description, "  ")
		b.WriteString("  ")
		renderInputValue(b, s, field)
		b.WriteString("\n")
	}
	b.WriteString("}\n\n")
}

func renderComposite(b *strings.Builder, s *Schema, keyword string, typ *Type) {
	renderDescription(b, typ.Description, "")
	b.WriteString(keyword + " " + typ.Name)
	if len(typ.Interfaces) > 0 {
		b.WriteString(" implements " + strings.Join(typ.Interfaces, " & "))
	}
	b.WriteString(" {\n")
	for _, field := range typ.Fields {
		renderField(b, s, field)
	}
	b.WriteString("}\n\n")
}

func renderUnion(b *strings.Builder, typ *Type) {
	renderDescription(b, typ.Description, "")
	b.WriteString("union " + typ.Name + " = " + strings.Join(typ.PossibleTypes, " | "))
	b.WriteString("\n\n")
}

func renderField(b *strings.Builder, s *Schema, field *Field) {
	renderDescription(b, field.Description, "  ")
	b.WriteString("  " + field.Name)
	renderArguments(b, s, field.Arguments)
	b.WriteString(": " + renderTypeRef(field.Type))
	renderDeprecated(b, field.IsDeprecated, field.DeprecationReason)
	b.WriteString("\n")
}

func renderArguments(b *strings.Builder, s *Schema, args []*InputValue) {
	if len(args) == 0 {
		return
	}
	b.WriteString("(")
	for i, arg := range args {
		if i > 0 {
			b.WriteString(", ")
		}
		renderInputValue(b, s, arg)
	}
	b.WriteString(")")
}

func renderInputValue(b *strings.Builder, s *Schema, v *InputValue) {
	b.WriteString(v.Name + ": " + renderTypeRef(v.Type))
	if v.DefaultValue != nil {
		b.WriteString(" = " + RenderDefault(s, v))
	}
	renderDeprecated(b, v.IsDeprecated, v.DeprecationReason)
}

func renderDirective(b *strings.Builder, s *Schema, directive *Directive) {
	renderDescription(b, directive.Description, "")
	b.WriteString("directive @" + directive.Name)
	renderArguments(b, s, directive.Arguments)
	if directive.IsRepeatable {
		b.WriteString(" repeatable")
	}
	b.WriteString(" on " + strings.Join(directive.Locations, " | "))
	b.WriteString("\n\n")
}

// RenderTypeRef renders a wrapped type reference in SDL notation, e.g. [Int!]!.
func RenderTypeRef(typeRef *TypeRef) string { return renderTypeRef(typeRef) }

func renderTypeRef(typeRef *TypeRef) string {
	if typeRef == nil {
		return ""
	}
	switch typeRef.Kind {
	case TypeRefKindNamed:
		return typeRef.Named
	case TypeRefKindList:
		return "[" + renderTypeRef(typeRef.OfType) + "]"
	case TypeRefKindNonNull:
		return renderTypeRef(typeRef.OfType) + "!"
	default:
		return ""
	}
}

// RenderValue renders value as a GraphQL literal, the way default values
// appear in SDL and introspection.
func RenderValue(value any) string { return renderValue(value) }

func renderValue(value any) string {
	if value == nil {
		return "null"
	}
	switch v := value.(type) {
	case string:
		return strconv.Quote(v)
	case bool:
		return strconv.FormatBool(v)
	case int:
		return strconv.Itoa(v)
	case int32:
		return strconv.FormatInt(int64(v), 10)
	case int64:
		return strconv.FormatInt(v, 10)
	case float32:
		return strconv.FormatFloat(float64(v), 'g', -1, 32)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case fmt.Stringer:
		// decimals and enum-like values render bare
		return v.String()
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Pointer:
		if rv.IsNil() {
			return "null"
		}
		return renderValue(rv.Elem().Interface())
	case reflect.Slice, reflect.Array:
		parts := make([]string, rv.Len())
		for i := range parts {
			parts[i] = renderValue(rv.Index(i).Interface())
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case reflect.Map:
		keys := make([]string, 0, rv.Len())
		byKey := make(map[string]reflect.Value, rv.Len())
		for _, k := range rv.MapKeys() {
			ks := fmt.Sprint(k.Interface())
			keys = append(keys, ks)
			byKey[ks] = rv.MapIndex(k)
		}
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = k + ": " + renderValue(byKey[k].Interface())
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case reflect.Struct:
		parts := make([]string, 0, rv.NumField())
		for i := 0; i < rv.NumField(); i++ {
			f := rv.Type().Field(i)
			if !f.IsExported() {
				continue
			}
			parts = append(parts, lowerFirst(f.Name)+": "+renderValue(rv.Field(i).Interface()))
		}
		return "{" + strings.Join(parts, ", ") + "}"
	}
	return fmt.Sprint(value)
}

// RenderDefault renders the default value of v as a GraphQL literal. Strings
// that land on an enum type render bare, so a Species default of "DOG"
// reads DOG rather than "DOG".
func RenderDefault(s *Schema, v *InputValue) string {
	return renderTyped(s, v.Type, v.DefaultValue)
}

func renderTyped(s *Schema, ref *TypeRef, value any) string {
	if value == nil || s == nil || ref == nil {
		return renderValue(value)
	}
	rv := reflect.ValueOf(value)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return "null"
		}
		rv = rv.Elem()
	}
	switch ref.Kind {
	case TypeRefKindNonNull:
		return renderTyped(s, ref.OfType, rv.Interface())
	case TypeRefKindList:
		if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
			// a single value stands in for a one-element list
			return renderTyped(s, ref.OfType, rv.Interface())
		}
		parts := make([]string, rv.Len())
		for i := range parts {
			parts[i] = renderTyped(s, ref.OfType, rv.Index(i).Interface())
		}
		return "[" + strings.Join(parts, ", ") + "]"
	}

	typ := s.Types[ref.Named]
	if typ == nil {
		return renderValue(value)
	}
	switch {
	case typ.Kind == TypeKindEnum && rv.Kind() == reflect.String:
		return rv.String()
	case typ.Kind == TypeKindInputObject && rv.Kind() == reflect.Map:
		fields := make(map[string]*TypeRef, len(typ.InputFields))
		for _, f := range typ.InputFields {
			fields[f.Name] = f.Type
		}
		keys := make([]string, 0, rv.Len())
		byKey := make(map[string]reflect.Value, rv.Len())
		for _, k := range rv.MapKeys() {
			ks := fmt.Sprint(k.Interface())
			keys = append(keys, ks)
			byKey[ks] = rv.MapIndex(k)
		}
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = k + ": " + renderTyped(s, fields[k], byKey[k].Interface())
		}
		return "{" + strings.Join(parts, ", ") + "}"
	}
	return renderValue(value)
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
