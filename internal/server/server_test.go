package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dbnc/pkg/debounce"
)

func testServer(rules []debounce.RuleSpec) *Server {
	engine := &debounce.AtomicEngine{}
	engine.Store(debounce.BuildRuleSet(rules))
	return New(":0", engine, false)
}

func trackerRules() []debounce.RuleSpec {
	return []debounce.RuleSpec{{
		Include: []string{"https://tracker.example/*"},
		Action:  "redirect",
		Param:   "url",
	}}
}

func doRequest(s *Server, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestHandleResolveRedirect(t *testing.T) {
	s := testServer(trackerRules())

	rec := doRequest(s, "/resolve?url=https%3A%2F%2Ftracker.example%2Fgo%3Furl%3Dhttps%3A%2F%2Fdest.example%2F")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp ResolveResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Matched)
	assert.Equal(t, "https://dest.example/", resp.Redirect)
}

func TestHandleResolveNoMatch(t *testing.T) {
	s := testServer(trackerRules())

	rec := doRequest(s, "/resolve?url=https%3A%2F%2Fharmless.example%2F")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp ResolveResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Matched)
	assert.Empty(t, resp.Redirect)
}

func TestHandleResolveMissingURL(t *testing.T) {
	s := testServer(trackerRules())

	rec := doRequest(s, "/resolve")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleResolveMethodNotAllowed(t *testing.T) {
	s := testServer(trackerRules())

	rec := httptest.NewRecorder()
	s.Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/resolve?url=x", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHandleResolveEmptyEngine(t *testing.T) {
	s := New(":0", &debounce.AtomicEngine{}, false)

	rec := doRequest(s, "/resolve?url=https%3A%2F%2Ftracker.example%2F")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp ResolveResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Matched)
}

func TestHandleBounceRedirects(t *testing.T) {
	s := testServer(trackerRules())

	rec := doRequest(s, "/bounce?url=https%3A%2F%2Ftracker.example%2Fgo%3Furl%3Dhttps%3A%2F%2Fdest.example%2F")
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "https://dest.example/", rec.Header().Get("Location"))
}

func TestHandleBounceFallsBackToOriginal(t *testing.T) {
	s := testServer(trackerRules())

	rec := doRequest(s, "/bounce?url=https%3A%2F%2Fharmless.example%2Fpage")
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "https://harmless.example/page", rec.Header().Get("Location"))
}

func TestHandleHealth(t *testing.T) {
	s := testServer(nil)

	rec := doRequest(s, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
}
