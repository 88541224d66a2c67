package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	bootstrap "github.com/hanpama/gqlboot/internal/bootstrap"
	config "github.com/hanpama/gqlboot/internal/config"
	datafetcher "github.com/hanpama/gqlboot/internal/datafetcher"
	model "github.com/hanpama/gqlboot/internal/model"
)

const greeterModel = `
queries:
  - name: greet
    className: greeter.Service
    methodName: Greet
    reference: {name: String, className: string, type: SCALAR}
    notNull: true
    arguments:
      - name: name
        reference: {name: String, className: string, type: SCALAR}
        defaultValue: world
types:
  Greeting:
    className: greeter.Greeting
    fields:
      - name: text
        reference: {name: String, className: string, type: SCALAR}
      - name: secret
        reference: {name: String, className: string, type: SCALAR}
`

func writeModel(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "model.yaml")
	require.NoError(t, os.WriteFile(path, []byte(greeterModel), 0o644))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCompile(t *testing.T) {
	out, err := execute(t, "compile", "--model", writeModel(t))
	require.NoError(t, err)
	require.Contains(t, out, "type Query {")
	require.Contains(t, out, `greet(name: String = "world"): String!`)
	require.Contains(t, out, "type Greeting {")
}

func TestCompileToFile(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "schema.graphql")
	_, err := execute(t, "compile", "--model", writeModel(t), "--out", dst)
	require.NoError(t, err)
	sdl, err := os.ReadFile(dst)
	require.NoError(t, err)
	require.True(t, strings.Contains(string(sdl), "greet("))
}

func TestCompileRequiresModel(t *testing.T) {
	_, err := execute(t, "compile")
	require.ErrorContains(t, err, "model")
}

func TestCompileEmptyModel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.yaml")
	require.NoError(t, os.WriteFile(path, []byte("types: {}\n"), 0o644))
	_, err := execute(t, "compile", "--model", path)
	require.ErrorContains(t, err, "declares no operations")
}

func TestHandler(t *testing.T) {
	m, err := model.Load(writeModel(t))
	require.NoError(t, err)
	cfg, err := config.Load("", nil)
	require.NoError(t, err)
	cfg.Visibility = "Greeting.secret"

	methods := datafetcher.NewMethods()
	require.NoError(t, methods.Register("greeter.Service", "Greet", func(name string) string { return "hello " + name }))

	h, err := newHandler(context.Background(), cfg, m, zap.NewNop(), bootstrap.WithMethods(methods))
	require.NoError(t, err)

	post := func(query string) string {
		req := httptest.NewRequest("POST", "/graphql", strings.NewReader(query))
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)
		return w.Body.String()
	}

	require.JSONEq(t, `{"data":{"greet":"hello world"}}`, post(`{"query":"{ greet }"}`))
	require.JSONEq(t, `{"data":{"greet":"hello rex"}}`, post(`{"query":"{ greet(name: \"rex\") }"}`))
	require.JSONEq(t,
		`{"data":{"__type":{"fields":[{"name":"text"}]}}}`,
		post(`{"query":"{ __type(name: \"Greeting\") { fields { name } } }"}`))
}

func TestHandlerWithoutMethods(t *testing.T) {
	m, err := model.Load(writeModel(t))
	require.NoError(t, err)
	cfg, err := config.Load("", nil)
	require.NoError(t, err)

	h, err := newHandler(context.Background(), cfg, m, zap.NewNop())
	require.NoError(t, err)
	req := httptest.NewRequest("POST", "/graphql", strings.NewReader(`{"query":"{ greet }"}`))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	require.Contains(t, w.Body.String(), "method not found")
}
