package model

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads a schema model from a YAML or JSON file.
func Load(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model %s: %w", path, err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse model %s: %w", path, err)
	}
	return s, nil
}

// Parse decodes a schema model. JSON input is accepted as YAML.
func Parse(data []byte) (*Schema, error) {
	var s Schema
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	if err := s.check(); err != nil {
		return nil, err
	}
	return &s, nil
}

// check fills empty names from their map keys and rejects nil entries and
// keys that disagree with the declared name. Reference kind tags pass through
// unchecked; the bootstrap resolves an unknown tag by name.
func (s *Schema) check() error {
	for key, t := range s.Types {
		if t == nil {
			return fmt.Errorf("type %q is empty", key)
		}
		if t.Name == "" {
			t.Name = key
		} else if t.Name != key {
			return fmt.Errorf("type key %q does not match name %q", key, t.Name)
		}
	}
	for key, t := range s.Interfaces {
		if t == nil {
			return fmt.Errorf("interface %q is empty", key)
		}
		if t.Name == "" {
			t.Name = key
		} else if t.Name != key {
			return fmt.Errorf("interface key %q does not match name %q", key, t.Name)
		}
	}
	for key, t := range s.Inputs {
		if t == nil {
			return fmt.Errorf("input %q is empty", key)
		}
		if t.Name == "" {
			t.Name = key
		} else if t.Name != key {
			return fmt.Errorf("input key %q does not match name %q", key, t.Name)
		}
	}
	for key, t := range s.Enums {
		if t == nil {
			return fmt.Errorf("enum %q is empty", key)
		}
		if t.Name == "" {
			t.Name = key
		}
	}
	return nil
}
