// Package errinfo maps declared error classes onto client-facing error codes.
package errinfo

import (
	"reflect"
	"sync"

	classes "github.com/hanpama/gqlboot/internal/classes"
	model "github.com/hanpama/gqlboot/internal/model"
)

// Map is safe for concurrent use.
type Map struct {
	mu    sync.RWMutex
	codes map[string]string
}

func NewMap() *Map { return &Map{codes: make(map[string]string)} }

// Register adds the declared error kinds of a model.
func (m *Map) Register(infos map[string]*model.ErrorInfo) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for class, info := range infos {
		if info == nil {
			continue
		}
		if info.ClassName != "" {
			class = info.ClassName
		}
		m.codes[class] = info.ErrorCode
	}
}

// Code returns the code of the first error in err's tree whose class is
// registered.
func (m *Map) Code(err error) (string, bool) {
	if m == nil || err == nil {
		return "", false
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if len(m.codes) == 0 {
		return "", false
	}
	var code string
	var found bool
	walk(err, func(e error) bool {
		t := reflect.TypeOf(e)
		for t.Kind() == reflect.Pointer {
			t = t.Elem()
		}
		code, found = m.codes[classes.NameOf(t)]
		return found
	})
	return code, found
}

// Attach wraps err so that it reports its code as the "code" extension.
// Errors without a registered class are returned unchanged.
func (m *Map) Attach(err error) error {
	code, ok := m.Code(err)
	if !ok {
		return err
	}
	return &CodedError{Err: err, Code: code}
}

// CodedError carries an error code next to the original error.
type CodedError struct {
	Err  error
	Code string
}

func (e *CodedError) Error() string { return e.Err.Error() }
func (e *CodedError) Unwrap() error { return e.Err }

// Extensions is merged into the GraphQL error's extensions.
func (e *CodedError) Extensions() map[string]any {
	return map[string]any{"code": e.Code}
}

// walk visits err and its wrapped errors depth first until visit returns true.
func walk(err error, visit func(error) bool) bool {
	if err == nil {
		return false
	}
	if visit(err) {
		return true
	}
	switch u := err.(type) {
	case interface{ Unwrap() error }:
		return walk(u.Unwrap(), visit)
	case interface{ Unwrap() []error }:
		for _, e := range u.Unwrap() {
			if walk(e, visit) {
				return true
			}
		}
	}
	return false
}

// Is reports whether err has a registered code.
func (m *Map) Is(err error) bool {
	_, ok := m.Code(err)
	return ok
}
