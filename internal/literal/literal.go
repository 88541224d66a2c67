// Package literal decodes structured default-value literals into typed Go
// values.
package literal

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/tidwall/gjson"
)

var ErrInvalid = errors.New("invalid structured literal")

// Decoder parses a literal into a value of the target type.
type Decoder interface {
	Decode(literal string, target reflect.Type) (any, error)
}

// JSON is a strict JSON Decoder. Literals must be complete, well formed JSON
// documents and object members must map onto fields of the target.
type JSON struct {
	// AllowUnknownFields accepts object members with no matching struct field.
	AllowUnknownFields bool
}

func NewJSON() *JSON { return &JSON{} }

func (d *JSON) Decode(literal string, target reflect.Type) (any, error) {
	if !gjson.Valid(literal) {
		return nil, ErrInvalid
	}
	if target == nil {
		target = reflect.TypeOf((*any)(nil)).Elem()
	}
	ptr := reflect.New(target)
	dec := json.NewDecoder(strings.NewReader(literal))
	if !d.AllowUnknownFields {
		dec.DisallowUnknownFields()
	}
	if err := dec.Decode(ptr.Interface()); err != nil {
		return nil, fmt.Errorf("%w: decode into %s: %v", ErrInvalid, target, err)
	}
	return ptr.Elem().Interface(), nil
}

// LooksStructured reports whether a literal might be a JSON object or array.
func LooksStructured(literal string) bool {
	return strings.ContainsAny(literal, "{[")
}
