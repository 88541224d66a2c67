package server

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/require"

	executor "github.com/hanpama/gqlboot/internal/executor"
	reqid "github.com/hanpama/gqlboot/internal/reqid"
	schema "github.com/hanpama/gqlboot/internal/schema"
)

// helloRuntime answers Query.hello and records the request id it saw.
type helloRuntime struct {
	seen []string
}

func (r *helloRuntime) ResolveSync(ctx context.Context, _, field string, _ any, args map[string]any) (any, error) {
	id, _ := reqid.FromContext(ctx)
	r.seen = append(r.seen, id)
	switch field {
	case "hello":
		if name, ok := args["name"].(string); ok {
			return "hello " + name, nil
		}
		return "world", nil
	case "fail":
		return nil, errors.New("boom")
	}
	return nil, nil
}

func (r *helloRuntime) BatchResolveAsync(context.Context, []executor.AsyncResolveTask) []executor.AsyncResolveResult {
	return nil
}

func (r *helloRuntime) ResolveType(context.Context, string, any) (string, error) { return "", nil }

func (r *helloRuntime) SerializeLeafValue(_ context.Context, _ string, value any) (any, error) {
	return value, nil
}

func newTestHandler(t *testing.T, rt executor.Runtime, opts ...Option) *Handler {
	t.Helper()
	sch, err := schema.ParseSDL(map[string]string{"hello.graphql": `type Query { hello(name: String): String fail: String }`})
	require.NoError(t, err)
	h, err := New(rt, sch, opts...)
	require.NoError(t, err)
	return h
}

func post(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("POST", "/", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v))
}

func TestPostQuery(t *testing.T) {
	h := newTestHandler(t, &helloRuntime{})
	w := post(t, h, `{"query":"query($n: String) { hello(name: $n) }","variables":{"n":"rex"}}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))

	var got map[string]any
	decode(t, w, &got)
	require.Equal(t, map[string]any{"data": map[string]any{"hello": "hello rex"}}, got)
}

func TestGetQuery(t *testing.T) {
	h := newTestHandler(t, &helloRuntime{})
	req := httptest.NewRequest("GET", "/?query=%7Bhello%7D", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"data":{"hello":"world"}}`, w.Body.String())
}

func TestBatch(t *testing.T) {
	h := newTestHandler(t, &helloRuntime{})
	w := post(t, h, `[{"query":"{ hello }"},{"query":"{ fail }"}]`)
	require.Equal(t, http.StatusOK, w.Code)

	var got []map[string]any
	decode(t, w, &got)
	require.Len(t, got, 2)
	require.Equal(t, map[string]any{"hello": "world"}, got[0]["data"])
	errs := got[1]["errors"].([]any)
	require.Len(t, errs, 1)
	require.Equal(t, "boom", errs[0].(map[string]any)["message"])
	require.Equal(t, []any{"fail"}, errs[0].(map[string]any)["path"])
}

func TestSyntaxErrorCarriesLocation(t *testing.T) {
	h := newTestHandler(t, &helloRuntime{})
	w := post(t, h, `{"query":"{ hello "}`)
	require.Equal(t, http.StatusOK, w.Code)

	var got specResult
	decode(t, w, &got)
	require.Len(t, got.Errors, 1)
	require.NotEmpty(t, got.Errors[0].Locations)
	require.Equal(t, 1, got.Errors[0].Locations[0].Line)
}

func TestBadRequests(t *testing.T) {
	h := newTestHandler(t, &helloRuntime{})
	cases := []struct {
		body string
		want string
	}{
		{`{"query":""}`, "missing 'query'"},
		{`{nope`, "invalid JSON"},
		{`[]`, "empty batch"},
	}
	for _, tc := range cases {
		w := post(t, h, tc.body)
		require.Equal(t, http.StatusBadRequest, w.Code, tc.body)
		var got specResult
		decode(t, w, &got)
		require.Equal(t, tc.want, got.Errors[0].Message)
	}

	req := httptest.NewRequest("PUT", "/", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	require.Equal(t, http.StatusMethodNotAllowed, w.Code)

	req = httptest.NewRequest("POST", "/", bytes.NewBufferString(`query`))
	req.Header.Set("Content-Type", "text/plain")
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCORSAndPreflight(t *testing.T) {
	h := newTestHandler(t, &helloRuntime{}, WithCORS("*"))

	req := httptest.NewRequest("POST", "/", bytes.NewBufferString(`{"query":"{ hello }"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Origin", "http://example.com")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	require.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))

	pre := httptest.NewRequest("OPTIONS", "/", nil)
	pre.Header.Set("Origin", "http://example.com")
	pre.Header.Set("Access-Control-Request-Headers", "X-Test")
	pw := httptest.NewRecorder()
	h.ServeHTTP(pw, pre)
	require.Equal(t, http.StatusNoContent, pw.Code)
	require.Equal(t, "*", pw.Header().Get("Access-Control-Allow-Origin"))
	require.Equal(t, "X-Test", pw.Header().Get("Access-Control-Allow-Headers"))
}

func TestCORSSpecificOrigin(t *testing.T) {
	h := newTestHandler(t, &helloRuntime{}, WithCORS("http://a.example"))

	for origin, want := range map[string]string{"http://a.example": "http://a.example", "http://b.example": ""} {
		req := httptest.NewRequest("POST", "/", bytes.NewBufferString(`{"query":"{ hello }"}`))
		req.Header.Set("Origin", origin)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		require.Equal(t, want, w.Header().Get("Access-Control-Allow-Origin"), origin)
	}
}

func TestMaxBodyBytes(t *testing.T) {
	h := newTestHandler(t, &helloRuntime{}, WithMaxBodyBytes(10))
	w := post(t, h, `{"query":"1234567890"}`)
	require.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestRequestID(t *testing.T) {
	rt := &helloRuntime{}
	h := newTestHandler(t, rt)

	w := post(t, h, `{"query":"{ hello }"}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, rt.seen, 1)
	require.NotEmpty(t, rt.seen[0])
	require.Equal(t, rt.seen[0], w.Header().Get("X-Request-ID"))

	req := httptest.NewRequest("POST", "/", bytes.NewBufferString(`{"query":"{ hello }"}`))
	req.Header.Set("X-Request-ID", "upstream-1")
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	require.Equal(t, "upstream-1", rt.seen[1])
	require.Equal(t, "upstream-1", w.Header().Get("X-Request-ID"))
}

func TestDocumentCache(t *testing.T) {
	h := newTestHandler(t, &helloRuntime{}, WithDocumentCache(1))
	for i := 0; i < 2; i++ {
		w := post(t, h, `{"query":"{ hello }"}`)
		require.JSONEq(t, `{"data":{"hello":"world"}}`, w.Body.String())
	}
	require.Equal(t, 1, h.docs.Len())
	require.True(t, h.docs.Contains("{ hello }"))

	post(t, h, `{"query":"{ fail }"}`)
	require.Equal(t, 1, h.docs.Len())
	require.False(t, h.docs.Contains("{ hello }"))

	uncached := newTestHandler(t, &helloRuntime{}, WithDocumentCache(0))
	require.Nil(t, uncached.docs)
	require.JSONEq(t, `{"data":{"hello":"world"}}`, post(t, uncached, `{"query":"{ hello }"}`).Body.String())
}

func TestGraphiQL(t *testing.T) {
	h := newTestHandler(t, &helloRuntime{})
	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "graphiql")

	off := newTestHandler(t, &helloRuntime{}, WithGraphiQL(false))
	w = httptest.NewRecorder()
	off.ServeHTTP(w, req)
	require.Equal(t, http.StatusBadRequest, w.Code)
}
