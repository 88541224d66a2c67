package language

import (
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/gqlerror"
	"github.com/vektah/gqlparser/v2/parser"
)

// Error is a located GraphQL error as produced by the parser.
type Error = gqlerror.Error

// Location is a line and column inside a GraphQL source.
type Location = gqlerror.Location

// ParseQuery parses an executable document. Syntax errors are returned as
// *Error carrying their source locations.
func ParseQuery(source string) (*QueryDocument, error) {
	doc, err := parser.ParseQuery(&ast.Source{Input: source})
	if err != nil {
		return nil, err
	}
	return doc, nil
}
